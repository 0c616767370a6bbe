package postgres

import (
	"context"
	"fmt"

	"github.com/kozaktomas/immich-tools/internal/database"
	"gorm.io/gorm"
)

// albumAsset maps the album membership join table.
type albumAsset struct {
	AlbumsID string `gorm:"column:albumsId;primaryKey"`
	AssetsID string `gorm:"column:assetsId;primaryKey"`
}

func (albumAsset) TableName() string { return database.TableAlbumAssets }

type unnamedFaceCountRow struct {
	AssetID     string `gorm:"column:asset_id"`
	FaceCount   int    `gorm:"column:face_count"`
	HiddenCount int    `gorm:"column:hidden_count"`
}

type assetFaceRow struct {
	AssetID    string `gorm:"column:asset_id"`
	PersonID   string `gorm:"column:person_id"`
	PersonName string `gorm:"column:person_name"`
	IsHidden   bool   `gorm:"column:is_hidden"`
}

const hiddenSum = `COALESCE(SUM(CASE WHEN p."isHidden" THEN 1 ELSE 0 END), 0)`

// VisibilityRepository answers face visibility questions with gorm queries.
type VisibilityRepository struct {
	db *gorm.DB
}

// NewVisibilityRepository creates a repository on top of a gorm session.
func NewVisibilityRepository(db *gorm.DB) *VisibilityRepository {
	return &VisibilityRepository{db: db}
}

// unnamedFacesQuery counts, per asset, the faces whose person has an empty name.
// Only the exact empty string counts as unnamed; whitespace names do not.
func (r *VisibilityRepository) unnamedFacesQuery(ctx context.Context, minCount int) *gorm.DB {
	return r.db.WithContext(ctx).
		Table(database.TableAssetFaces+" AS af").
		Select(`af."assetId" AS asset_id, COUNT(*) AS face_count, `+hiddenSum+` AS hidden_count`).
		Joins(`JOIN `+database.TablePerson+` p ON af."personId" = p.id`).
		Where("p.name = ?", "").
		Group(`af."assetId"`).
		Having(`COUNT(*) - `+hiddenSum+` >= ?`, minCount)
}

// AssetsWithUnnamedFaces returns assets with at least minCount visible unnamed faces.
func (r *VisibilityRepository) AssetsWithUnnamedFaces(
	ctx context.Context, minCount int,
) ([]database.AssetFaceCount, error) {
	var rows []unnamedFaceCountRow
	if err := r.unnamedFacesQuery(ctx, minCount).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query assets with unnamed faces: %w", err)
	}

	counts := make([]database.AssetFaceCount, 0, len(rows))
	for _, row := range rows {
		counts = append(counts, database.AssetFaceCount{
			AssetID:     row.AssetID,
			FaceCount:   row.FaceCount,
			HiddenCount: row.HiddenCount,
		})
	}
	return counts, nil
}

func (r *VisibilityRepository) albumAssetsQuery(ctx context.Context, albumID string) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&albumAsset{}).
		Where(&albumAsset{AlbumsID: albumID}).
		Order(`"createdAt"`)
}

// AlbumAssetIDs returns the asset IDs of an album in the order they were added.
func (r *VisibilityRepository) AlbumAssetIDs(ctx context.Context, albumID string) ([]string, error) {
	var ids []string
	if err := r.albumAssetsQuery(ctx, albumID).Pluck("assetsId", &ids).Error; err != nil {
		return nil, fmt.Errorf("query assets of album %s: %w", albumID, err)
	}
	return ids, nil
}

func (r *VisibilityRepository) assetFacesQuery(ctx context.Context, assetID string) *gorm.DB {
	return r.db.WithContext(ctx).
		Table(database.TableAssetFaces+" AS af").
		Select(`af."assetId" AS asset_id, af."personId" AS person_id, COALESCE(p.name, '') AS person_name, p."isHidden" AS is_hidden`).
		Joins(`JOIN `+database.TablePerson+` p ON af."personId" = p.id`).
		Where(`af."assetId" = ?`, assetID)
}

// AssetFaces returns the faces of an asset that are assigned to a person.
func (r *VisibilityRepository) AssetFaces(ctx context.Context, assetID string) ([]database.AssetFace, error) {
	var rows []assetFaceRow
	if err := r.assetFacesQuery(ctx, assetID).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query faces of asset %s: %w", assetID, err)
	}

	faces := make([]database.AssetFace, 0, len(rows))
	for _, row := range rows {
		faces = append(faces, database.AssetFace(row))
	}
	return faces, nil
}

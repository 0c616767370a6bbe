package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/kozaktomas/immich-tools/internal/database"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
)

// SimilarityRepository ranks Immich persons with pgvector's cosine distance operator.
type SimilarityRepository struct {
	pool *Pool
}

// NewSimilarityRepository creates a new similarity repository.
func NewSimilarityRepository(pool *Pool) *SimilarityRepository {
	return &SimilarityRepository{pool: pool}
}

// TargetEmbedding returns the embedding of the face chosen as thumbnail of the
// first person with exactly the given name.
func (r *SimilarityRepository) TargetEmbedding(ctx context.Context, name string) (*database.TargetFace, error) {
	query := `
		SELECT p.id, fs."faceId", fs.embedding
		FROM face_search fs
		JOIN person p ON fs."faceId" = p."faceAssetId"
		WHERE p.name = $1
		LIMIT 1
	`

	var target database.TargetFace
	var vec pgvector.Vector
	err := r.pool.QueryRow(ctx, query, name).Scan(&target.PersonID, &target.FaceID, &vec)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w for %s", database.ErrNoEmbedding, name)
	}
	if err != nil {
		return nil, fmt.Errorf("query target embedding: %w", err)
	}

	target.Embedding = vec.Slice()
	return &target, nil
}

// FindSimilarPersons ranks every visible person except the target by
// 1 - (embedding <=> target), highest first.
func (r *SimilarityRepository) FindSimilarPersons(
	ctx context.Context, targetName string, embedding []float32, limit int,
) ([]database.SimilarPerson, error) {
	if limit <= 0 {
		limit = database.DefaultSimilarityLimit
	}

	query := `
		WITH target_person AS (
			SELECT id
			FROM person
			WHERE name = $1
			LIMIT 1
		)
		SELECT
			p.id,
			p.name,
			p."thumbnailPath",
			1 - (fs.embedding <=> $2::vector) AS cosine_similarity
		FROM face_search fs
		JOIN person p ON fs."faceId" = p."faceAssetId"
		WHERE p.name != $1
		AND p.id NOT IN (SELECT id FROM target_person)
		AND p."isHidden" = false
		ORDER BY cosine_similarity DESC
		LIMIT $3
	`

	rows, err := r.pool.Query(ctx, query, targetName, pgvector.NewVector(embedding), limit)
	if err != nil {
		return nil, fmt.Errorf("query similar persons: %w", err)
	}
	defer rows.Close()

	var persons []database.SimilarPerson
	for rows.Next() {
		var p database.SimilarPerson
		var name, thumbnail sql.NullString
		if err := rows.Scan(&p.PersonID, &name, &thumbnail, &p.CosineSimilarity); err != nil {
			return nil, fmt.Errorf("scan similar person: %w", err)
		}
		p.PersonName = name.String
		p.ThumbnailPath = thumbnail.String
		persons = append(persons, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate similar persons: %w", err)
	}

	return persons, nil
}

// PersonAssets collects the assets of every person. A person without any
// asset yields no row and is dropped from the result.
func (r *SimilarityRepository) PersonAssets(
	ctx context.Context, persons []database.SimilarPerson,
) ([]database.SimilarPerson, error) {
	query := `
		SELECT array_agg(af."assetId"::text)
		FROM asset_faces af
		WHERE af."personId" = $1
		GROUP BY af."personId"
	`

	results := make([]database.SimilarPerson, 0, len(persons))
	for _, p := range persons {
		var assetIDs pq.StringArray
		err := r.pool.QueryRow(ctx, query, p.PersonID).Scan(&assetIDs)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("query assets of person %s: %w", p.PersonID, err)
		}

		p.AssetIDs = make([]string, 0, len(assetIDs))
		for _, id := range assetIDs {
			p.AssetIDs = append(p.AssetIDs, NormalizeID(id))
		}
		results = append(results, p)
	}

	return results, nil
}

// NormalizeID returns the canonical form of a UUID, stripping braces and
// whitespace. Values that are not UUIDs are only trimmed.
func NormalizeID(id string) string {
	trimmed := strings.TrimSpace(strings.Trim(strings.TrimSpace(id), "{}"))
	if parsed, err := uuid.Parse(trimmed); err == nil {
		return parsed.String()
	}
	return trimmed
}

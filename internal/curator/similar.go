package curator

import (
	"context"
	"errors"
	"fmt"

	"github.com/kozaktomas/immich-tools/internal/database"
	"github.com/kozaktomas/immich-tools/internal/immich"
	"github.com/kozaktomas/immich-tools/internal/logging"
	"github.com/kozaktomas/immich-tools/internal/sidecar"
	"go.uber.org/zap"
)

// ErrInvalidSimilarity is returned for a minimum similarity outside [0, 1].
var ErrInvalidSimilarity = errors.New("minimum similarity must be between 0.0 and 1.0")

// SimilarOptions configures a similar pictures run.
type SimilarOptions struct {
	Name          string
	MinSimilarity float64
	Limit         int
	// Describe sets each matched asset's description to the matched person's URL.
	Describe bool
}

// Ranking is the output of RankSimilar.
type Ranking struct {
	Target  *database.TargetFace
	Persons []database.SimilarPerson
}

// SimilarResult describes what ApplySimilar changed.
type SimilarResult struct {
	AlbumID      string
	AlbumName    string
	AssetIDs     []string
	Descriptions Summary
	SidecarPath  string
	AlbumErr     error
}

// SimilarAlbumName is the name of the album created by ApplySimilar.
func SimilarAlbumName(name string) string {
	return name + " - similar pictures"
}

// RankSimilar finds persons similar to the named person, keeps those with at least
// opts.MinSimilarity and attaches their assets.
func RankSimilar(ctx context.Context, db database.SimilarityReader, opts SimilarOptions) (*Ranking, error) {
	if opts.MinSimilarity < 0 || opts.MinSimilarity > 1 {
		return nil, ErrInvalidSimilarity
	}

	target, err := db.TargetEmbedding(ctx, opts.Name)
	if err != nil {
		return nil, err
	}

	ranked, err := db.FindSimilarPersons(ctx, opts.Name, target.Embedding, opts.Limit)
	if err != nil {
		return nil, err
	}

	withAssets, err := db.PersonAssets(ctx, ranked)
	if err != nil {
		return nil, err
	}

	return &Ranking{
		Target:  target,
		Persons: database.FilterBySimilarity(withAssets, opts.MinSimilarity),
	}, nil
}

// PrintRanking writes one line per person: id, link and similarity.
func (c *Curator) PrintRanking(r *Ranking) {
	for _, p := range r.Persons {
		fmt.Fprintf(c.out, "%s\t%s\t%.4f\n", p.PersonID, c.immich.PersonURL(p.PersonID), p.CosineSimilarity)
	}
}

// ApplySimilar labels the matched assets, collects them into an album and writes
// the sidecar file. Failed description updates are counted, they do not stop the run.
func (c *Curator) ApplySimilar(ctx context.Context, opts SimilarOptions, r *Ranking) (*SimilarResult, error) {
	logger := logging.FromContext(ctx)
	result := &SimilarResult{AlbumName: SimilarAlbumName(opts.Name)}

	var assets []sidecar.Asset
	seen := make(map[string]struct{})
	for _, p := range r.Persons {
		for _, assetID := range p.AssetIDs {
			assets = append(assets, sidecar.Asset{AssetID: assetID, FaceID: p.PersonID})
			if _, ok := seen[assetID]; !ok {
				seen[assetID] = struct{}{}
				result.AssetIDs = append(result.AssetIDs, assetID)
			}
		}
	}

	if opts.Describe && len(assets) > 0 {
		bar := c.newBar(len(assets), "Updating descriptions", "assets")
		for _, a := range assets {
			err := c.api.UpdateAssetDescription(ctx, a.AssetID, c.immich.PersonURL(a.FaceID))
			if err != nil {
				logger.Warn("failed to update asset description",
					zap.String("asset_id", a.AssetID),
					zap.String("person_id", a.FaceID),
					zap.String("body", immich.ResponseBody(err)),
					zap.Error(err))
				result.Descriptions.Add(ItemResult{
					ID:      a.AssetID,
					Outcome: Failed,
					Message: fmt.Sprintf("Failed to update asset %s: %v", a.AssetID, err),
					Err:     err,
				})
			} else {
				result.Descriptions.Add(ItemResult{ID: a.AssetID, Outcome: Done})
			}
			bar.Add(1)
		}
		bar.Finish()
		fmt.Fprintf(c.out, "Updated %d asset descriptions, %d failed\n",
			result.Descriptions.Done, result.Descriptions.Failed)
	}

	if len(result.AssetIDs) == 0 {
		fmt.Fprintln(c.out, "\nNo assets found to create album")
	} else {
		description := "Automatically created album containing pictures similar to " + opts.Name
		albumID, err := c.api.CreateAlbum(ctx, result.AssetIDs, result.AlbumName, description)
		if err != nil {
			logger.Error("failed to create album",
				zap.String("album", result.AlbumName),
				zap.String("body", immich.ResponseBody(err)),
				zap.Error(err))
			fmt.Fprintf(c.out, "Failed to create album: %v\n", err)
			result.AlbumErr = err
		} else {
			result.AlbumID = albumID
			fmt.Fprintf(c.out, "Album created successfully with %d assets\n", len(result.AssetIDs))
			fmt.Fprintf(c.out, "\nCreated album with ID: %s\n", albumID)
		}
	}

	result.SidecarPath = c.path(sidecar.SimilarPicturesPath(opts.Name))
	err := sidecar.Write(result.SidecarPath, &sidecar.File{
		AlbumID:   result.AlbumID,
		AlbumName: result.AlbumName,
		Name:      opts.Name,
		FaceID:    r.Target.FaceID,
		Assets:    assets,
	})
	if err != nil {
		return result, err
	}
	fmt.Fprintf(c.out, "Output JSON file created: %s\n", result.SidecarPath)

	return result, nil
}

package curator

import (
	"context"
	"errors"
	"fmt"

	"github.com/kozaktomas/immich-tools/internal/immich"
	"github.com/kozaktomas/immich-tools/internal/logging"
	"github.com/kozaktomas/immich-tools/internal/sidecar"
	"go.uber.org/zap"
)

// DefaultNumberFaces is how many similar people go into a similar faces album.
const DefaultNumberFaces = 20

// SimilarAlbumResult describes a similar faces album run.
type SimilarAlbumResult struct {
	PersonID    string
	AlbumID     string
	AlbumName   string
	Assets      []sidecar.Asset
	Search      Summary
	SidecarPath string
}

// SimilarFacesAlbumName is the name of the album created by SimilarAlbum.
func SimilarFacesAlbumName(name string) string {
	return name + " - similar faces"
}

// SimilarAlbum asks Immich for the people closest to the named person, picks one
// asset of each of the first numberFaces and puts them into a new album. The
// asset to person mapping is saved so NameFaces can merge them later.
func (c *Curator) SimilarAlbum(ctx context.Context, name string, numberFaces int) (*SimilarAlbumResult, error) {
	logger := logging.FromContext(ctx)
	if numberFaces <= 0 {
		numberFaces = DefaultNumberFaces
	}

	personID, err := c.api.GetPersonID(ctx, name)
	switch {
	case errors.Is(err, immich.ErrNotFound):
		return nil, fmt.Errorf("no person named %q found: %w", name, err)
	case errors.Is(err, immich.ErrAmbiguous):
		return nil, fmt.Errorf("more than one person named %q, rename duplicates first: %w", name, err)
	case err != nil:
		return nil, fmt.Errorf("look up person %q: %w", name, err)
	}

	people, err := c.api.GetSimilarFaces(ctx, personID)
	if err != nil {
		return nil, fmt.Errorf("get faces similar to %q: %w", name, err)
	}

	result := &SimilarAlbumResult{PersonID: personID, AlbumName: SimilarFacesAlbumName(name)}

	candidates := make([]immich.Person, 0, numberFaces)
	for _, p := range people {
		if p.ID == personID {
			continue
		}
		candidates = append(candidates, p)
		if len(candidates) == numberFaces {
			break
		}
	}

	for _, p := range candidates {
		asset, err := c.api.SearchAssetsByPerson(ctx, p.ID)
		switch {
		case errors.Is(err, immich.ErrNotFound):
			result.Search.Add(ItemResult{ID: p.ID, Outcome: Skipped, Message: "no assets"})
			continue
		case err != nil:
			logger.Warn("failed to search assets of person",
				zap.String("person_id", p.ID),
				zap.String("body", immich.ResponseBody(err)),
				zap.Error(err))
			result.Search.Add(ItemResult{
				ID:      p.ID,
				Outcome: Failed,
				Message: fmt.Sprintf("Failed to search assets of person %s: %v", p.ID, err),
				Err:     err,
			})
			continue
		}
		result.Search.Add(ItemResult{ID: p.ID, Outcome: Done})
		result.Assets = append(result.Assets, sidecar.Asset{AssetID: asset.ID, FaceID: p.ID})
	}

	if len(result.Assets) == 0 {
		fmt.Fprintln(c.out, "No assets found to create album")
		return result, nil
	}

	// A group photo can be the first asset of several persons.
	assetIDs := make([]string, 0, len(result.Assets))
	seen := make(map[string]struct{}, len(result.Assets))
	for _, a := range result.Assets {
		if _, ok := seen[a.AssetID]; ok {
			continue
		}
		seen[a.AssetID] = struct{}{}
		assetIDs = append(assetIDs, a.AssetID)
	}

	description := "Automatically created album containing faces similar to " + name
	albumID, err := c.api.CreateAlbum(ctx, assetIDs, result.AlbumName, description)
	if err != nil {
		logger.Error("failed to create album",
			zap.String("album", result.AlbumName),
			zap.String("body", immich.ResponseBody(err)),
			zap.Error(err))
		return result, fmt.Errorf("create album %q: %w", result.AlbumName, err)
	}
	result.AlbumID = albumID
	fmt.Fprintf(c.out, "Album %q created with %d assets (ID: %s)\n", result.AlbumName, len(assetIDs), albumID)

	result.SidecarPath = c.path(sidecar.SimilarFacesPath(name))
	err = sidecar.Write(result.SidecarPath, &sidecar.File{
		AlbumID:   albumID,
		AlbumName: result.AlbumName,
		Name:      name,
		FaceID:    personID,
		Assets:    result.Assets,
	})
	if err != nil {
		return result, err
	}
	fmt.Fprintf(c.out, "Saved face mapping to %s\n", result.SidecarPath)
	fmt.Fprintln(c.out, "Remove the pictures that are not the same person from the album, then run again with --name-faces")

	return result, nil
}

// NameFaces reads the sidecar of a similar faces album and merges every person
// whose asset is still in the album into the named person. Assets removed from the
// album are reported as no match and skipped.
func (c *Curator) NameFaces(ctx context.Context, name string) (*Summary, error) {
	logger := logging.FromContext(ctx)

	f, err := sidecar.Read(c.path(sidecar.SimilarFacesPath(name)))
	if err != nil {
		return nil, err
	}
	if f.AlbumID == "" {
		return nil, fmt.Errorf("sidecar for %q has no album id", name)
	}

	targetID := f.FaceID
	if targetID == "" {
		if targetID, err = c.api.GetPersonID(ctx, name); err != nil {
			return nil, fmt.Errorf("look up person %q: %w", name, err)
		}
	}

	albumAssets, err := c.api.GetAssetsFromAlbum(ctx, f.AlbumID)
	if err != nil {
		return nil, fmt.Errorf("get assets of album %s: %w", f.AlbumID, err)
	}

	matched, missing := sidecar.Reconcile(f, albumAssets)
	summary := &Summary{}

	for _, a := range missing {
		fmt.Fprintf(c.out, "No match for asset %s, it is no longer in the album\n", a.AssetID)
		summary.Add(ItemResult{ID: a.AssetID, Outcome: Skipped, Message: "no match"})
	}

	for _, a := range matched {
		if a.FaceID == targetID {
			summary.Add(ItemResult{ID: a.AssetID, Outcome: Skipped, Message: "already merged"})
			continue
		}
		if err := c.api.MergePerson(ctx, targetID, a.FaceID); err != nil {
			logger.Warn("failed to merge person",
				zap.String("target_id", targetID),
				zap.String("person_id", a.FaceID),
				zap.String("body", immich.ResponseBody(err)),
				zap.Error(err))
			summary.Add(ItemResult{
				ID:      a.AssetID,
				Outcome: Failed,
				Message: fmt.Sprintf("Failed to merge person %s into %s: %v", a.FaceID, name, err),
				Err:     err,
			})
			continue
		}
		fmt.Fprintf(c.out, "Merged person %s into %s\n", c.immich.PersonLink(a.FaceID), name)
		summary.Add(ItemResult{ID: a.AssetID, Outcome: Done})
	}

	fmt.Fprintln(c.out, "\nSummary:")
	fmt.Fprintf(c.out, "Persons merged: %d\n", summary.Done)
	fmt.Fprintf(c.out, "Assets skipped: %d\n", summary.Skipped)
	fmt.Fprintf(c.out, "Merges failed: %d\n", summary.Failed)

	return summary, nil
}

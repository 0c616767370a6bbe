package curator

import (
	"context"
	"fmt"
	"sort"

	"github.com/kozaktomas/immich-tools/internal/database"
	"github.com/kozaktomas/immich-tools/internal/immich"
	"github.com/kozaktomas/immich-tools/internal/logging"
	"go.uber.org/zap"
)

// DefaultFaceCount is the default minimum number of unhidden unnamed faces.
const DefaultFaceCount = 20

// CrowdedResult describes a crowded album run.
type CrowdedResult struct {
	Assets    []database.AssetFaceCount
	AlbumID   string
	AlbumName string
}

// CrowdedAlbumName is the name of the album created by CrowdedAlbum.
func CrowdedAlbumName(faceCount int) string {
	return fmt.Sprintf("Pictures with %d or more unhidden faces", faceCount)
}

// CrowdedAlbum collects assets with at least faceCount visible unnamed faces into
// a new album. With dryRun the assets are only listed.
func (c *Curator) CrowdedAlbum(
	ctx context.Context, db database.VisibilityReader, faceCount int, dryRun bool,
) (*CrowdedResult, error) {
	counts, err := db.AssetsWithUnnamedFaces(ctx, faceCount)
	if err != nil {
		return nil, err
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].AssetID < counts[j].AssetID })

	result := &CrowdedResult{Assets: counts, AlbumName: CrowdedAlbumName(faceCount)}

	fmt.Fprintf(c.out, "Found %d assets with %d or more unhidden faces\n", len(counts), faceCount)
	for _, a := range counts {
		fmt.Fprintf(c.out, "Asset %s: %d total faces, %d hidden faces, %d unhidden faces\n",
			a.AssetID, a.FaceCount, a.HiddenCount, a.Unhidden())
	}

	if len(counts) == 0 {
		fmt.Fprintln(c.out, "No assets found to create album")
		return result, nil
	}
	if dryRun {
		fmt.Fprintf(c.out, "Dry run: album %q not created\n", result.AlbumName)
		return result, nil
	}

	assetIDs := make([]string, 0, len(counts))
	for _, a := range counts {
		assetIDs = append(assetIDs, a.AssetID)
	}

	description := fmt.Sprintf("Automatically created album containing pictures with %d or more unhidden faces", faceCount)
	albumID, err := c.api.CreateAlbum(ctx, assetIDs, result.AlbumName, description)
	if err != nil {
		logging.FromContext(ctx).Error("failed to create album",
			zap.String("album", result.AlbumName),
			zap.String("body", immich.ResponseBody(err)),
			zap.Error(err))
		return result, fmt.Errorf("create album %q: %w", result.AlbumName, err)
	}
	result.AlbumID = albumID
	fmt.Fprintf(c.out, "Album created successfully with %d assets\n", len(assetIDs))
	fmt.Fprintf(c.out, "Album ID: %s\n", albumID)

	return result, nil
}

// HideResult describes a hide faces run.
type HideResult struct {
	Summary
	// AssetErrors holds the assets whose faces could not be loaded. They are
	// not part of the face counts.
	AssetErrors []ItemResult
	ReportPath  string
}

// HideFaces hides every unnamed face on the assets of an album. Faces whose person
// has a non-blank name are skipped and never touched. When any face could not be
// hidden a failure report is written.
func (c *Curator) HideFaces(ctx context.Context, db database.VisibilityReader, albumID string) (*HideResult, error) {
	logger := logging.FromContext(ctx)
	started := c.now()

	assetIDs, err := db.AlbumAssetIDs(ctx, albumID)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(c.out, "Found %d assets in album %s\n", len(assetIDs), albumID)

	result := &HideResult{}
	bar := c.newBar(len(assetIDs), "Hiding faces", "assets")
	for _, assetID := range assetIDs {
		faces, err := db.AssetFaces(ctx, assetID)
		if err != nil {
			logger.Warn("failed to load faces", zap.String("asset_id", assetID), zap.Error(err))
			result.AssetErrors = append(result.AssetErrors, ItemResult{
				ID:      assetID,
				Outcome: Failed,
				Message: fmt.Sprintf("Failed to load faces in asset %s: %v", assetID, err),
				Err:     err,
			})
			bar.Add(1)
			continue
		}

		for _, face := range faces {
			result.Add(c.hideFace(ctx, face))
		}
		bar.Add(1)
	}
	bar.Finish()

	fmt.Fprintln(c.out, "\nSummary:")
	c.printHideSummary(&result.Summary)
	if len(result.AssetErrors) > 0 {
		fmt.Fprintf(c.out, "Assets whose faces could not be loaded: %d\n", len(result.AssetErrors))
	}

	if result.Failed == 0 && len(result.AssetErrors) == 0 {
		fmt.Fprintln(c.out, "\nAll faces were hidden successfully!")
		return result, nil
	}

	report := &FailureReport{
		AlbumID:     albumID,
		Time:        started,
		Summary:     &result.Summary,
		AssetErrors: result.AssetErrors,
	}
	result.ReportPath = c.path(report.FileName())
	if err := report.Write(result.ReportPath); err != nil {
		return result, err
	}
	if result.Failed > 0 {
		fmt.Fprintf(c.out, "\nFailed to hide %d faces. Details written to %s\n", result.Failed, result.ReportPath)
	} else {
		fmt.Fprintf(c.out, "\nFailed to load faces of %d assets. Details written to %s\n", len(result.AssetErrors), result.ReportPath)
	}

	return result, nil
}

func (c *Curator) hideFace(ctx context.Context, face database.AssetFace) ItemResult {
	logger := logging.FromContext(ctx)

	if face.IsNamed() {
		logger.Debug("skipping named face",
			zap.String("person_id", face.PersonID),
			zap.String("asset_id", face.AssetID),
			zap.String("name", face.PersonName))
		return ItemResult{ID: face.PersonID, Outcome: Skipped, Message: "named " + face.PersonName}
	}

	if err := c.api.HidePerson(ctx, face.PersonID); err != nil {
		logger.Warn("failed to hide face",
			zap.String("person_id", face.PersonID),
			zap.String("asset_id", face.AssetID),
			zap.String("body", immich.ResponseBody(err)),
			zap.Error(err))
		return ItemResult{
			ID:      face.PersonID,
			Outcome: Failed,
			Message: fmt.Sprintf("Failed to hide face %s in asset %s: %v", face.PersonID, face.AssetID, err),
			Err:     err,
		}
	}

	logger.Debug("hid face", zap.String("person_id", face.PersonID), zap.String("asset_id", face.AssetID))
	return ItemResult{ID: face.PersonID, Outcome: Done}
}

func (c *Curator) printHideSummary(s *Summary) {
	fmt.Fprintf(c.out, "Total faces processed: %d\n", s.Total())
	fmt.Fprintf(c.out, "Faces hidden: %d\n", s.Done)
	fmt.Fprintf(c.out, "Faces skipped (already named): %d\n", s.Skipped)
	fmt.Fprintf(c.out, "Faces failed to hide: %d\n", s.Failed)
}

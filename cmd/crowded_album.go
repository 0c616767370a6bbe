package cmd

import (
	"context"
	"fmt"

	"github.com/kozaktomas/immich-tools/internal/curator"
	"github.com/kozaktomas/immich-tools/internal/database/postgres"
	"github.com/spf13/cobra"
)

var crowdedAlbumCmd = &cobra.Command{
	Use:   "crowded-album",
	Short: "Create an album of pictures with many unnamed faces",
	Long: `Find pictures with at least --face-count visible faces that belong to
unnamed people and collect them into the album
"Pictures with <count> or more unhidden faces".

Review the album, then run hide-faces with its ID to hide the unnamed faces.

Examples:
  # List pictures with 10 or more unnamed faces without creating an album
  immich-tools crowded-album --face-count 10 --dry-run`,
	Args: cobra.NoArgs,
	RunE: runCrowdedAlbum,
}

func init() {
	rootCmd.AddCommand(crowdedAlbumCmd)

	crowdedAlbumCmd.Flags().Int("face-count", curator.DefaultFaceCount, "Minimum number of unhidden unnamed faces")
	crowdedAlbumCmd.Flags().Bool("dry-run", false, "List the pictures without creating an album")
}

func runCrowdedAlbum(cmd *cobra.Command, args []string) error {
	faceCount := mustGetInt(cmd, "face-count")
	dryRun := mustGetBool(cmd, "dry-run")
	if faceCount < 1 {
		return fmt.Errorf("--face-count must be at least 1, got %d", faceCount)
	}

	deps, err := initDeps(context.Background(), false)
	if err != nil {
		return err
	}
	defer deps.Close()

	gdb, err := deps.pool.Gorm(deps.logger)
	if err != nil {
		return err
	}

	_, err = deps.newCurator(false).CrowdedAlbum(deps.ctx, postgres.NewVisibilityRepository(gdb), faceCount, dryRun)
	return err
}

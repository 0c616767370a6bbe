package cmd

import (
	"context"
	"fmt"

	"github.com/kozaktomas/immich-tools/internal/database/postgres"
	"github.com/spf13/cobra"
)

var hideFacesCmd = &cobra.Command{
	Use:   "hide-faces",
	Short: "Hide every unnamed face in the pictures of an album",
	Long: `Hide the unnamed people on every picture of an album. Faces of named people
are skipped. If any face cannot be hidden, the failures are written to
failed_faces_<timestamp>.txt.

Examples:
  immich-tools hide-faces --album-id 6a3f1d52-5a37-4c2e-9b0f-0d6f0c1a2b3c`,
	Args: cobra.NoArgs,
	RunE: runHideFaces,
}

func init() {
	rootCmd.AddCommand(hideFacesCmd)

	hideFacesCmd.Flags().String("album-id", "", "ID of the album to process")
	_ = hideFacesCmd.MarkFlagRequired("album-id")
}

func runHideFaces(cmd *cobra.Command, args []string) error {
	albumID, err := getUUID(cmd, "album-id")
	if err != nil {
		return err
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

	fmt.Printf("Processing album %s for unnamed faces\n", albumID)
	_, err = deps.newCurator(false).HideFaces(deps.ctx, postgres.NewVisibilityRepository(gdb), albumID)
	return err
}

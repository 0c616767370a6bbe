package cmd

import (
	"context"

	"github.com/kozaktomas/immich-tools/internal/curator"
	"github.com/spf13/cobra"
)

var similarAlbumCmd = &cobra.Command{
	Use:   "similar-album",
	Short: "Create an album of faces Immich considers similar to a person, then merge them",
	Long: `Two step workflow for merging people that Immich did not recognise as the
named person.

Step 1 asks Immich for the people closest to the named person, takes one
picture of each of the first --number-faces people and puts them into the
album "<name> - similar faces". The picture to person mapping is saved to
similar_faces_<name>.json.

Review the album and remove every picture that does not show the person.

Step 2 (--name-faces) merges each person whose picture is still in the album
into the named person. Pictures removed from the album are reported as no
match and skipped.

Examples:
  # Step 1
  immich-tools similar-album --name Alice --number-faces 30

  # Step 2, after reviewing the album
  immich-tools similar-album --name Alice --name-faces`,
	Args: cobra.NoArgs,
	RunE: runSimilarAlbum,
}

func init() {
	rootCmd.AddCommand(similarAlbumCmd)

	similarAlbumCmd.Flags().String("name", "", "Name of the person")
	similarAlbumCmd.Flags().Int("number-faces", curator.DefaultNumberFaces, "Number of similar people to put into the album")
	similarAlbumCmd.Flags().Bool("name-faces", false, "Merge the people still in the album into the named person")
	_ = similarAlbumCmd.MarkFlagRequired("name")
}

func runSimilarAlbum(cmd *cobra.Command, args []string) error {
	name := mustGetString(cmd, "name")
	numberFaces := mustGetInt(cmd, "number-faces")
	nameFaces := mustGetBool(cmd, "name-faces")

	deps, err := initDeps(context.Background(), false)
	if err != nil {
		return err
	}
	defer deps.Close()

	c := deps.newCurator(false)
	if nameFaces {
		_, err = c.NameFaces(deps.ctx, name)
		return err
	}
	_, err = c.SimilarAlbum(deps.ctx, name, numberFaces)
	return err
}

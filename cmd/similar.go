package cmd

import (
	"context"
	"fmt"

	"github.com/kozaktomas/immich-tools/internal/curator"
	"github.com/kozaktomas/immich-tools/internal/database"
	"github.com/kozaktomas/immich-tools/internal/database/postgres"
	"github.com/spf13/cobra"
)

var similarCmd = &cobra.Command{
	Use:   "similar",
	Short: "Find people with faces similar to a person and collect their pictures",
	Long: `Find people whose face embedding is similar to the named person using the
pgvector cosine distance in the Immich database.

This command:
1. Loads the face embedding of the named person
2. Ranks every other visible person by cosine similarity
3. Prints person ID, link and similarity for persons above --min-similarity
4. Sets the description of each matched picture to the matched person's link
5. Creates the album "<name> - similar pictures" with all matched pictures
6. Writes <name>_similar_faces.json with the picture to person mapping

Examples:
  # Everyone resembling Alice
  immich-tools similar --name Alice

  # Only close matches, without touching descriptions
  immich-tools similar --name Alice --min-similarity 0.6 --no-describe

  # Ranking as YAML
  immich-tools similar --name Alice --output yaml`,
	Args: cobra.NoArgs,
	RunE: runSimilar,
}

func init() {
	rootCmd.AddCommand(similarCmd)

	similarCmd.Flags().String("name", "", "Name of the person to find similar faces to")
	similarCmd.Flags().Float64("min-similarity", 0.0, "Minimum similarity score (0.0 to 1.0)")
	similarCmd.Flags().Int("limit", database.DefaultSimilarityLimit, "Maximum number of persons to rank")
	similarCmd.Flags().Bool("no-describe", false, "Do not update asset descriptions")
	similarCmd.Flags().StringP("output", "o", outputTable, "Output format: table, json or yaml")
	_ = similarCmd.MarkFlagRequired("name")
}

func runSimilar(cmd *cobra.Command, args []string) error {
	opts := curator.SimilarOptions{
		Name:          mustGetString(cmd, "name"),
		MinSimilarity: mustGetFloat64(cmd, "min-similarity"),
		Limit:         mustGetInt(cmd, "limit"),
		Describe:      !mustGetBool(cmd, "no-describe"),
	}
	output, err := getOutputFormat(cmd)
	if err != nil {
		return err
	}
	if opts.MinSimilarity < 0 || opts.MinSimilarity > 1 {
		return fmt.Errorf("error: %w", curator.ErrInvalidSimilarity)
	}

	machineOutput := output != outputTable
	deps, err := initDeps(context.Background(), machineOutput)
	if err != nil {
		return err
	}
	defer deps.Close()

	repo := postgres.NewSimilarityRepository(deps.pool)
	ranking, err := curator.RankSimilar(deps.ctx, repo, opts)
	if err != nil {
		return err
	}

	c := deps.newCurator(machineOutput)
	switch output {
	case outputJSON:
		err = writeJSON(ranking.Persons)
	case outputYAML:
		err = writeYAML(ranking.Persons)
	default:
		c.PrintRanking(ranking)
	}
	if err != nil {
		return err
	}

	_, err = c.ApplySimilar(deps.ctx, opts, ranking)
	return err
}

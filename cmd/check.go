package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check the connection to the Immich API and database",
	Long: `Check that the Immich API accepts the configured API key and that the
database is reachable with the configured credentials.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().Bool("show-config", false, "Print the configuration with secrets redacted")
}

func runCheck(cmd *cobra.Command, args []string) error {
	deps, err := initDeps(context.Background(), false)
	if err != nil {
		return err
	}
	defer deps.Close()

	fmt.Printf("Immich server version: %s\n", deps.creds.ServerVersion)
	if mustGetBool(cmd, "show-config") {
		fmt.Printf("\n%s", deps.creds)
	}
	return nil
}

package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	captureDir string
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "immich-tools",
	Short: "A CLI tool for maintaining faces and people in Immich",
	Long: `Immich Tools is a CLI application that connects to an Immich server and
its PostgreSQL database to find similar faces, build review albums, merge
duplicate people and hide unnamed faces.

Configuration is read from the environment (and a .env file in the working
directory): IMMICH_SERVER_ADDRESS, IMMICH_API_KEY, DB_PATH, DB_USERNAME,
DB_PASSWORD and DB_NAME are required.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&captureDir, "capture", "", "Directory to save API responses for testing")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (environment variables take precedence)")
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}

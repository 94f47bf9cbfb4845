package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/coursegen-ai/coursegen/internal/cli"
	"github.com/coursegen-ai/coursegen/internal/cli/client"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "coursegen",
		Short: "Coursegen CLI - AI-generated course content",
		Long: `Coursegen CLI builds and browses AI-generated courses.

Environment variables:
  COURSEGEN_API_TOKEN   API bearer token (optional for open-access servers)
  COURSEGEN_API_URL     API base URL (default: http://localhost:8080)`,
		Version: version,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("api-token", "", "API bearer token (overrides env and config)")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env and config)")
	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(client.InitCmd())
	rootCmd.AddCommand(client.BuildCmd())
	rootCmd.AddCommand(client.GetCmd())
	rootCmd.AddCommand(client.ListCmd())
	rootCmd.AddCommand(client.SearchCmd())
	rootCmd.AddCommand(client.DownloadCmd())

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

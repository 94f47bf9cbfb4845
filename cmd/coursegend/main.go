package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/coursegen-ai/coursegen/internal/cli"
	"github.com/coursegen-ai/coursegen/internal/cli/admin"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "coursegend",
		Short: "Coursegen daemon",
		Long:  "Coursegen daemon for running the course generation API server",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

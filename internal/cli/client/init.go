package client

import (
	"fmt"

	"github.com/spf13/cobra"
)

// InitCmd creates the init command.
func InitCmd() *cobra.Command {
	var (
		apiToken string
		apiURL   string
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Save API credentials to the global config",
		Long:  "Stores the API URL and optional bearer token in the user config directory.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(apiToken, apiURL)
		},
	}

	cmd.Flags().StringVar(&apiToken, "token", "", "API bearer token (leave empty for open-access servers)")
	cmd.Flags().StringVar(&apiURL, "url", defaultAPIURL, "API server URL")

	return cmd
}

func runInit(apiToken, apiURL string) error {
	api, err := NewAPIClientWithConfig(apiToken, apiURL)
	if err != nil {
		return err
	}

	// Verify the server is reachable before persisting anything.
	if _, err := api.Get("/health"); err != nil {
		return fmt.Errorf("could not reach server at %s: %w", apiURL, err)
	}

	if err := SaveGlobalConfig(&GlobalConfig{APIToken: apiToken, APIURL: apiURL}); err != nil {
		return err
	}

	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	fmt.Printf("Configuration saved to %s\n", configPath)
	return nil
}

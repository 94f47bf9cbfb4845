package client

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

// DownloadURLAPIResponse represents the presigned download URL response.
type DownloadURLAPIResponse struct {
	URL string `json:"url"`
}

// DownloadCmd creates the course download command.
func DownloadCmd() *cobra.Command {
	var outFile string

	cmd := &cobra.Command{
		Use:   "download <id>",
		Short: "Download mirrored course JSON",
		Long:  "Downloads the bucket-mirrored JSON for a course via a presigned URL.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDownload(args[0], outFile)
		},
	}

	cmd.Flags().StringVarP(&outFile, "out", "o", "", "Output file path (defaults to <id>.json)")

	return cmd
}

func runDownload(courseID, outFile string) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	resp, err := api.Get("/courses/" + url.PathEscape(courseID) + "/download")
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}

	var urlResp DownloadURLAPIResponse
	if err := json.Unmarshal(resp.Data, &urlResp); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outFile == "" {
		outFile = courseID + ".json"
	}

	if err := api.DownloadFile(urlResp.URL, outFile); err != nil {
		return err
	}

	fmt.Printf("Course downloaded to %s\n", outFile)
	return nil
}

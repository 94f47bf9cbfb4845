package client

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// ListItemResponse represents a single course in the list response.
type ListItemResponse struct {
	ID           string `json:"id"`
	Topic        string `json:"topic"`
	LearningMode string `json:"learning_mode"`
	LessonCount  int    `json:"lesson_count"`
	CreatedAt    string `json:"created_at"`
}

// ListAPIResponse represents the course list API response.
type ListAPIResponse struct {
	Items   []ListItemResponse `json:"items"`
	Cursor  string             `json:"cursor,omitempty"`
	HasMore bool               `json:"has_more"`
}

// FilesAPIResponse represents the saved course files response.
type FilesAPIResponse struct {
	Files []string `json:"files"`
}

// ListCmd creates the course list command.
func ListCmd() *cobra.Command {
	var (
		limit  int
		cursor string
		files  bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List archived courses",
		Long:  "Lists archived courses newest first, or saved course files with --files.",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			if files {
				return runListFiles(outputJSON)
			}
			return runList(limit, cursor, outputJSON)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of results")
	cmd.Flags().StringVar(&cursor, "cursor", "", "Pagination cursor from previous response")
	cmd.Flags().BoolVar(&files, "files", false, "List saved course files instead of the archive")

	return cmd
}

func runList(limit int, cursor string, outputJSON bool) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	if cursor != "" {
		query.Set("cursor", cursor)
	}

	resp, err := api.Get("/courses?" + query.Encode())
	if err != nil {
		return fmt.Errorf("list failed: %w", err)
	}

	var listResp ListAPIResponse
	if err := json.Unmarshal(resp.Data, &listResp); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(listResp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(listResp.Items) == 0 {
		fmt.Println("No courses found.")
		return nil
	}

	fmt.Printf("Found %d courses:\n\n", len(listResp.Items))
	for i, item := range listResp.Items {
		fmt.Printf("%d. %s\n", i+1, item.Topic)
		if item.LearningMode != "" {
			fmt.Printf("   Mode: %s\n", item.LearningMode)
		}
		fmt.Printf("   Lessons: %d\n", item.LessonCount)
		if item.CreatedAt != "" {
			fmt.Printf("   Created: %s\n", item.CreatedAt)
		}
		fmt.Printf("   ID: %s\n", item.ID)
		if i < len(listResp.Items)-1 {
			fmt.Println(strings.Repeat("-", 40))
		}
	}

	if listResp.HasMore && listResp.Cursor != "" {
		fmt.Printf("\n%s\n", strings.Repeat("-", 40))
		fmt.Printf("More results available. Use --cursor %s\n", listResp.Cursor)
	}

	return nil
}

func runListFiles(outputJSON bool) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	resp, err := api.Get("/courses/files")
	if err != nil {
		return fmt.Errorf("list failed: %w", err)
	}

	var filesResp FilesAPIResponse
	if err := json.Unmarshal(resp.Data, &filesResp); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(filesResp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(filesResp.Files) == 0 {
		fmt.Println("No course files found.")
		return nil
	}

	for _, name := range filesResp.Files {
		fmt.Println(name)
	}
	return nil
}

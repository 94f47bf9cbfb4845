package client

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// SearchAPIRequest represents the course search API request.
type SearchAPIRequest struct {
	Query string `json:"query"`
}

// SearchResultResponse is one semantic search match.
type SearchResultResponse struct {
	ID           string  `json:"id"`
	Topic        string  `json:"topic"`
	LearningMode string  `json:"learning_mode"`
	LessonCount  int     `json:"lesson_count"`
	CreatedAt    string  `json:"created_at"`
	Score        float64 `json:"score"`
}

// SearchAPIResponse represents the course search API response.
type SearchAPIResponse struct {
	Results []SearchResultResponse `json:"results"`
}

// SearchCmd creates the course search command.
func SearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search archived courses",
		Long:  "Finds archived courses semantically similar to the query.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runSearch(strings.Join(args, " "), outputJSON)
		},
	}

	return cmd
}

func runSearch(query string, outputJSON bool) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	resp, err := api.Post("/courses/search", SearchAPIRequest{Query: query})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	var searchResp SearchAPIResponse
	if err := json.Unmarshal(resp.Data, &searchResp); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(searchResp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(searchResp.Results) == 0 {
		fmt.Println("No matching courses found.")
		return nil
	}

	fmt.Printf("Found %d matches:\n\n", len(searchResp.Results))
	for i, result := range searchResp.Results {
		fmt.Printf("%d. %s (score %.2f)\n", i+1, result.Topic, result.Score)
		fmt.Printf("   Lessons: %d\n", result.LessonCount)
		fmt.Printf("   ID: %s\n", result.ID)
		if i < len(searchResp.Results)-1 {
			fmt.Println(strings.Repeat("-", 40))
		}
	}

	return nil
}

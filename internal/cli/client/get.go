package client

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"

	"github.com/spf13/cobra"
)

// GetCmd creates the course get command.
func GetCmd() *cobra.Command {
	var (
		byTopic bool
		outFile string
	)

	cmd := &cobra.Command{
		Use:   "get <id|topic>",
		Short: "Fetch a course by ID or topic",
		Long:  "Fetches a course from the archive by ID, or by topic with --topic.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runGet(args[0], byTopic, outFile, outputJSON)
		},
	}

	cmd.Flags().BoolVarP(&byTopic, "topic", "t", false, "Look up by topic instead of ID")
	cmd.Flags().StringVarP(&outFile, "out", "o", "", "Write the course JSON to a file")

	return cmd
}

func runGet(key string, byTopic bool, outFile string, outputJSON bool) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	path := "/courses/" + url.PathEscape(key)
	if byTopic {
		path = "/courses/topic/" + url.PathEscape(key)
	}

	resp, err := api.Get(path)
	if err != nil {
		return fmt.Errorf("get failed: %w", err)
	}

	var course CourseResponse
	if err := json.Unmarshal(resp.Data, &course); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outFile != "" {
		data, _ := json.MarshalIndent(course, "", "  ")
		if err := os.WriteFile(outFile, data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", outFile, err)
		}
		fmt.Printf("Course written to %s\n", outFile)
		return nil
	}

	if outputJSON {
		output, _ := json.MarshalIndent(course, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	printCourseOutline(&course)
	return nil
}

package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// BuildAPIRequest represents the course build API request.
type BuildAPIRequest struct {
	Topic        string `json:"topic"`
	LearningMode string `json:"learning_mode,omitempty"`
	UseWeb       bool   `json:"use_web"`
	Filename     string `json:"filename,omitempty"`
}

// BuildAPIResponse represents the course build API response.
type BuildAPIResponse struct {
	Course CourseResponse `json:"course"`
	File   string         `json:"file"`
}

// CourseResponse mirrors the course payload returned by the API.
type CourseResponse struct {
	ID           string           `json:"id"`
	Topic        string           `json:"topic"`
	LearningMode string           `json:"learning_mode"`
	Menu         []ModuleResponse `json:"menu"`
	CreatedAt    string           `json:"created_at"`
}

// ModuleResponse is one module in a course menu.
type ModuleResponse struct {
	Module  string           `json:"module"`
	Section string           `json:"section"`
	Items   []LessonResponse `json:"items"`
}

// LessonResponse is one lesson within a module. The content blocks live
// under "lesson" as the server serializes them.
type LessonResponse struct {
	Title        string                 `json:"title"`
	Path         string                 `json:"path"`
	Blocks       []BlockResponse        `json:"lesson"`
	Notes        []NoteResponse         `json:"notes,omitempty"`
	QuickQuiz    []QuizQuestionResponse `json:"quickquiz,omitempty"`
	ProjectIdeas []BlockResponse        `json:"projectideas,omitempty"`
	Sources      []SourceRefResponse    `json:"sources,omitempty"`
}

// BlockResponse is one content block inside a lesson.
type BlockResponse struct {
	Type     string `json:"type"`
	Content  string `json:"content,omitempty"`
	Language string `json:"language,omitempty"`
	Src      string `json:"src,omitempty"`
}

// NoteResponse is a titled tip list attached to a lesson.
type NoteResponse struct {
	Title string   `json:"title"`
	Items []string `json:"items"`
}

// QuizQuestionResponse is a single multiple-choice question.
type QuizQuestionResponse struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
}

// SourceRefResponse points at a page the lesson was grounded on.
type SourceRefResponse struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// BuildCmd creates the course build command.
func BuildCmd() *cobra.Command {
	var (
		mode     string
		useWeb   bool
		filename string
	)

	cmd := &cobra.Command{
		Use:   "build <topic>",
		Short: "Generate a course for a topic",
		Long:  "Generates a full course (modules, lessons, quizzes) for the given topic and saves it on the server.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runBuild(args[0], mode, useWeb, filename, outputJSON)
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", "", "Learning mode (hands-on|theoretical|visual)")
	cmd.Flags().BoolVarP(&useWeb, "web", "w", false, "Ground lessons in live web search results")
	cmd.Flags().StringVarP(&filename, "file", "f", "", "Override the saved file name")

	return cmd
}

func runBuild(topic, mode string, useWeb bool, filename string, outputJSON bool) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	fmt.Printf("Building course for %q", topic)
	if useWeb {
		fmt.Print(" with web grounding")
	}
	fmt.Println("...")

	req := BuildAPIRequest{
		Topic:        topic,
		LearningMode: mode,
		UseWeb:       useWeb,
		Filename:     filename,
	}

	resp, err := api.Post("/courses", req)
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	var buildResp BuildAPIResponse
	if err := json.Unmarshal(resp.Data, &buildResp); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(buildResp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	printCourseOutline(&buildResp.Course)
	fmt.Printf("\nSaved to %s\n", buildResp.File)
	if buildResp.Course.ID != "" {
		fmt.Printf("Course ID: %s\n", buildResp.Course.ID)
	}

	return nil
}

func printCourseOutline(course *CourseResponse) {
	fmt.Printf("\n%s", course.Topic)
	if course.LearningMode != "" {
		fmt.Printf(" (%s)", course.LearningMode)
	}
	fmt.Println()

	for i, module := range course.Menu {
		fmt.Printf("\n%d. %s\n", i+1, module.Module)
		if module.Section != "" {
			fmt.Printf("   %s\n", module.Section)
		}
		for j, lesson := range module.Items {
			fmt.Printf("   %d.%d %s\n", i+1, j+1, lesson.Title)
		}
	}
}

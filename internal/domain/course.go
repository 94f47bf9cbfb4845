package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// LearningMode selects the instructional style used for lesson generation.
type LearningMode string

const (
	LearningModeHandsOn     LearningMode = "hands-on"
	LearningModeTheoretical LearningMode = "theoretical"
	LearningModeVisual      LearningMode = "visual"
)

// IsValidLearningMode reports whether m is a known learning mode.
func IsValidLearningMode(m LearningMode) bool {
	switch m {
	case LearningModeHandsOn, LearningModeTheoretical, LearningModeVisual:
		return true
	}
	return false
}

// BlockType identifies the kind of content block inside a lesson.
type BlockType string

const (
	BlockTypeHeading   BlockType = "heading"
	BlockTypeParagraph BlockType = "paragraph"
	BlockTypeFormula   BlockType = "formula"
	BlockTypeCode      BlockType = "code"
	BlockTypeImage     BlockType = "image"
	BlockTypeVideo     BlockType = "video"
	BlockTypeTask      BlockType = "task"
	BlockTypeQuiz      BlockType = "quiz"
)

// IsValidBlockType reports whether t is a known block type.
func IsValidBlockType(t BlockType) bool {
	switch t {
	case BlockTypeHeading, BlockTypeParagraph, BlockTypeFormula, BlockTypeCode,
		BlockTypeImage, BlockTypeVideo, BlockTypeTask, BlockTypeQuiz:
		return true
	}
	return false
}

// Block is one content unit inside a lesson. Exactly one payload field is
// meaningful per type: Src for images, Content for everything else; Language
// is set for code blocks only.
type Block struct {
	Type     BlockType `json:"type"`
	Content  string    `json:"content,omitempty"`
	Language string    `json:"language,omitempty"`
	Src      string    `json:"src,omitempty"`
}

// UnmarshalJSON validates the block type and its payload, failing closed on
// unknown types or missing payloads instead of producing a half-filled block.
func (b *Block) UnmarshalJSON(data []byte) error {
	type rawBlock Block
	var raw rawBlock
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if !IsValidBlockType(raw.Type) {
		return NewDomainErrorWithCause(ErrCodeGenerationParse,
			"invalid lesson block", fmt.Errorf("unknown block type %q", raw.Type))
	}

	switch raw.Type {
	case BlockTypeImage:
		if strings.TrimSpace(raw.Src) == "" {
			return NewDomainErrorWithCause(ErrCodeGenerationParse,
				"invalid lesson block", fmt.Errorf("image block missing src"))
		}
	default:
		if strings.TrimSpace(raw.Content) == "" {
			return NewDomainErrorWithCause(ErrCodeGenerationParse,
				"invalid lesson block", fmt.Errorf("%s block missing content", raw.Type))
		}
	}

	*b = Block(raw)
	return nil
}

// Note is a titled list of quick tips attached to a lesson.
type Note struct {
	Title string   `json:"title"`
	Items []string `json:"items"`
}

// QuizQuestion is a single multiple-choice question.
type QuizQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
}

// SourceRef points at a web page a lesson's content was grounded on.
type SourceRef struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Lesson is the structured content of one lesson page.
type Lesson struct {
	Title        string         `json:"title"`
	Path         string         `json:"path"`
	Blocks       []Block        `json:"lesson"`
	Notes        []Note         `json:"notes,omitempty"`
	QuickQuiz    []QuizQuestion `json:"quickquiz,omitempty"`
	ProjectIdeas []Block        `json:"projectideas,omitempty"`
	Sources      []SourceRef    `json:"sources,omitempty"`
}

// ParseLesson decodes and validates model output for a single lesson.
// Any schema mismatch fails closed with a GENERATION_PARSE error.
func ParseLesson(data []byte) (*Lesson, error) {
	var lesson Lesson
	if err := json.Unmarshal(data, &lesson); err != nil {
		if de, ok := err.(*DomainError); ok {
			return nil, de
		}
		return nil, NewDomainErrorWithCause(ErrCodeGenerationParse,
			"model output is not a valid lesson", err)
	}

	if strings.TrimSpace(lesson.Title) == "" {
		return nil, NewDomainErrorWithCause(ErrCodeGenerationParse,
			"model output is not a valid lesson", fmt.Errorf("missing title"))
	}
	if len(lesson.Blocks) == 0 {
		return nil, NewDomainErrorWithCause(ErrCodeGenerationParse,
			"model output is not a valid lesson", fmt.Errorf("lesson has no content blocks"))
	}

	return &lesson, nil
}

// ModuleOutline is one entry of the module list generated for a topic.
type ModuleOutline struct {
	Module  string `json:"module"`
	Section string `json:"section"`
}

// CourseModule groups the generated lessons of one module.
type CourseModule struct {
	Module  string   `json:"module"`
	Section string   `json:"section"`
	Items   []Lesson `json:"items"`
}

// Course is the full generated course for one topic.
type Course struct {
	ID           string         `json:"id,omitempty"`
	Topic        string         `json:"topic"`
	LearningMode LearningMode   `json:"learning_mode,omitempty"`
	Menu         []CourseModule `json:"menu"`
	CreatedAt    time.Time      `json:"created_at,omitempty"`
}

// CourseSummary is a course listing row without the full body.
type CourseSummary struct {
	ID           string       `json:"id"`
	Topic        string       `json:"topic"`
	LearningMode LearningMode `json:"learning_mode"`
	LessonCount  int          `json:"lesson_count"`
	CreatedAt    time.Time    `json:"created_at"`
}

// CourseSearchResult is one semantic archive search match.
type CourseSearchResult struct {
	CourseSummary
	Score float64 `json:"score"`
}

// LessonCount returns the number of lessons across all modules.
func (c *Course) LessonCount() int {
	n := 0
	for _, m := range c.Menu {
		n += len(m.Items)
	}
	return n
}

// EmbeddingText builds the text embedded for archive search: the topic
// followed by every module section title.
func (c *Course) EmbeddingText() string {
	parts := make([]string, 0, len(c.Menu)+1)
	parts = append(parts, c.Topic)
	for _, m := range c.Menu {
		if m.Section != "" {
			parts = append(parts, m.Section)
		}
	}
	return strings.Join(parts, "\n\n")
}

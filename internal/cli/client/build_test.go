package client

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursegen-ai/coursegen/internal/domain"
)

func TestBuildAPIResponse_DecodesServerCourse(t *testing.T) {
	course := &domain.Course{
		ID:           "c-123",
		Topic:        "Thermodynamics",
		LearningMode: domain.LearningModeHandsOn,
		Menu: []domain.CourseModule{
			{
				Module:  "Heat and Work",
				Section: "Heat and Work",
				Items: []domain.Lesson{
					{
						Title: "The First Law",
						Path:  "the-first-law",
						Blocks: []domain.Block{
							{Type: domain.BlockTypeHeading, Content: "The First Law"},
							{Type: domain.BlockTypeParagraph, Content: "Energy is conserved."},
							{Type: domain.BlockTypeCode, Content: "dU = dQ - dW", Language: "text"},
							{Type: domain.BlockTypeImage, Src: "https://example.com/piston.png"},
						},
						Notes: []domain.Note{
							{Title: "Remember", Items: []string{"Sign conventions matter."}},
						},
						QuickQuiz: []domain.QuizQuestion{
							{
								Question:      "What does the first law state?",
								Options:       []string{"Energy is conserved", "Entropy increases"},
								CorrectAnswer: "Energy is conserved",
							},
						},
						Sources: []domain.SourceRef{
							{Title: "Thermo Basics", URL: "https://example.com/thermo"},
						},
					},
				},
			},
		},
		CreatedAt: time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC),
	}

	payload, err := json.Marshal(struct {
		Course *domain.Course `json:"course"`
		File   string         `json:"file"`
	}{Course: course, File: "courses_json/thermodynamics_course.json"})
	require.NoError(t, err)

	var resp BuildAPIResponse
	require.NoError(t, json.Unmarshal(payload, &resp))

	assert.Equal(t, "c-123", resp.Course.ID)
	assert.Equal(t, "Thermodynamics", resp.Course.Topic)
	assert.Equal(t, "hands-on", resp.Course.LearningMode)
	assert.Equal(t, "courses_json/thermodynamics_course.json", resp.File)

	require.Len(t, resp.Course.Menu, 1)
	module := resp.Course.Menu[0]
	assert.Equal(t, "Heat and Work", module.Module)

	require.Len(t, module.Items, 1)
	lesson := module.Items[0]
	assert.Equal(t, "The First Law", lesson.Title)
	assert.Equal(t, "the-first-law", lesson.Path)

	require.Len(t, lesson.Blocks, 4)
	assert.Equal(t, "heading", lesson.Blocks[0].Type)
	assert.Equal(t, "Energy is conserved.", lesson.Blocks[1].Content)
	assert.Equal(t, "text", lesson.Blocks[2].Language)
	assert.Equal(t, "https://example.com/piston.png", lesson.Blocks[3].Src)

	require.Len(t, lesson.Notes, 1)
	assert.Equal(t, []string{"Sign conventions matter."}, lesson.Notes[0].Items)
	require.Len(t, lesson.QuickQuiz, 1)
	assert.Equal(t, "Energy is conserved", lesson.QuickQuiz[0].CorrectAnswer)
	require.Len(t, lesson.Sources, 1)
	assert.Equal(t, "https://example.com/thermo", lesson.Sources[0].URL)
}

func TestCourseResponse_DecodesBareCourse(t *testing.T) {
	course := &domain.Course{
		ID:    "c-456",
		Topic: "Linear Algebra",
		Menu: []domain.CourseModule{
			{
				Module:  "Vectors",
				Section: "Vectors",
				Items: []domain.Lesson{
					{
						Title: "Dot Products",
						Path:  "dot-products",
						Blocks: []domain.Block{
							{Type: domain.BlockTypeParagraph, Content: "A dot product measures alignment."},
						},
					},
				},
			},
		},
	}

	payload, err := json.Marshal(course)
	require.NoError(t, err)

	var resp CourseResponse
	require.NoError(t, json.Unmarshal(payload, &resp))

	assert.Equal(t, "c-456", resp.ID)
	require.Len(t, resp.Menu, 1)
	require.Len(t, resp.Menu[0].Items, 1)
	require.Len(t, resp.Menu[0].Items[0].Blocks, 1)
	assert.Equal(t, "paragraph", resp.Menu[0].Items[0].Blocks[0].Type)
}

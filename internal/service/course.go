package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/coursegen-ai/coursegen/internal/domain"
	"github.com/coursegen-ai/coursegen/internal/openai"
	"github.com/coursegen-ai/coursegen/internal/rag"
)

const (
	lessonContentTemperature = 0.8
	lessonContentMaxTokens   = 2500
)

// WebGrounder supplies real-time web context for lesson generation.
type WebGrounder interface {
	BuildIndex(ctx context.Context, query string) (*rag.Index, error)
	AnswerWithContext(ctx context.Context, index *rag.Index, question string) (*domain.GroundedAnswer, error)
}

// BuildOptions selects what course to build and how.
type BuildOptions struct {
	Topic        string
	LearningMode domain.LearningMode
	UseWeb       bool
}

// CourseBuilder generates a full course: module outline, lesson titles, and
// structured lesson content, optionally grounded in live web search results.
type CourseBuilder struct {
	chat    Completer
	modules *ModuleGenerator
	web     WebGrounder
	logger  *log.Logger
}

func NewCourseBuilder(chat Completer, web WebGrounder, logger *log.Logger) *CourseBuilder {
	if logger == nil {
		logger = log.Default()
	}
	return &CourseBuilder{
		chat:    chat,
		modules: NewModuleGenerator(chat),
		web:     web,
		logger:  logger,
	}
}

// BuildCourse generates a course for the topic. Failing to produce a module
// outline aborts the build; a lesson that cannot be generated or parsed is
// logged and skipped so one bad completion does not sink the course.
func (b *CourseBuilder) BuildCourse(ctx context.Context, opts BuildOptions) (*domain.Course, error) {
	topic := strings.TrimSpace(opts.Topic)
	if topic == "" {
		return nil, domain.ErrEmptyTopic
	}

	mode := opts.LearningMode
	if mode == "" {
		mode = domain.LearningModeHandsOn
	}
	if !domain.IsValidLearningMode(mode) {
		return nil, domain.ErrInvalidLearningMode
	}

	start := time.Now()
	b.logger.Printf("building course for topic %q in %s mode", topic, mode)

	modules, err := b.modules.GenerateModules(ctx, topic)
	if err != nil {
		return nil, err
	}

	var webIndex *rag.Index
	if opts.UseWeb && b.web != nil {
		webIndex, err = b.web.BuildIndex(ctx, topic)
		if err != nil {
			b.logger.Printf("web index build failed, continuing without web context: %v", err)
			webIndex = nil
		}
	}

	menu := make([]domain.CourseModule, 0, len(modules))
	for _, outline := range modules {
		moduleTitle := outline.Section
		b.logger.Printf("generating lessons for module %q", moduleTitle)

		titles, err := b.modules.GenerateLessonTitles(ctx, topic, moduleTitle)
		if err != nil {
			var domainErr *domain.DomainError
			if !errors.As(err, &domainErr) || domainErr.Code != domain.ErrCodeGenerationParse {
				return nil, err
			}
			b.logger.Printf("no lesson titles for %q, using fallback: %v", moduleTitle, err)
			titles = FallbackLessonTitles(moduleTitle)
		}

		module := domain.CourseModule{Module: moduleTitle, Section: moduleTitle}
		for _, title := range titles {
			lesson, err := b.generateLesson(ctx, topic, moduleTitle, title, mode, webIndex)
			if err != nil {
				b.logger.Printf("skipping lesson %q in %q: %v", title, moduleTitle, err)
				continue
			}
			module.Items = append(module.Items, *lesson)
		}
		menu = append(menu, module)
	}

	course := &domain.Course{
		ID:           uuid.NewString(),
		Topic:        topic,
		LearningMode: mode,
		Menu:         menu,
		CreatedAt:    time.Now().UTC(),
	}
	b.logger.Printf("course built for %q: %d modules, %d lessons in %s",
		topic, len(course.Menu), course.LessonCount(), time.Since(start).Round(time.Millisecond))
	return course, nil
}

func (b *CourseBuilder) generateLesson(ctx context.Context, topic, moduleTitle, lessonTitle string, mode domain.LearningMode, webIndex *rag.Index) (*domain.Lesson, error) {
	webContext, sources := b.webContext(ctx, webIndex, topic+" "+lessonTitle)

	out, err := b.chat.Complete(ctx, openai.CompletionRequest{
		SystemPrompt: lessonSystemPrompts[mode],
		UserPrompt:   lessonContentUserPrompt(topic, moduleTitle, lessonTitle, webContext, sources),
		Temperature:  lessonContentTemperature,
		MaxTokens:    lessonContentMaxTokens,
	})
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeUpstream,
			"lesson generation failed", err)
	}

	lesson, err := domain.ParseLesson([]byte(stripCodeFence(out)))
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(lesson.Path) == "" {
		lesson.Path = Slugify(lesson.Title)
	}
	if len(lesson.Sources) == 0 && len(sources) > 0 {
		lesson.Sources = sources
	}
	return lesson, nil
}

// webContext answers the lesson query against the prebuilt index. Failures
// degrade to an empty context; generation proceeds ungrounded.
func (b *CourseBuilder) webContext(ctx context.Context, webIndex *rag.Index, query string) (string, []domain.SourceRef) {
	if webIndex == nil || b.web == nil {
		return "", nil
	}

	answer, err := b.web.AnswerWithContext(ctx, webIndex, query)
	if err != nil {
		b.logger.Printf("web context fetch failed for %q: %v", query, err)
		return "", nil
	}
	return answer.Answer, answer.Sources
}

// Slugify converts a title into a URL path segment.
func Slugify(s string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

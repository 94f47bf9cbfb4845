package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/coursegen-ai/coursegen/internal/domain"
	"github.com/coursegen-ai/coursegen/internal/openai"
)

const (
	modulesTemperature = 0.6
	modulesMaxTokens   = 800
	lessonsTemperature = 0.8
	lessonsMaxTokens   = 700
)

// Completer generates a chat completion.
type Completer interface {
	Complete(ctx context.Context, req openai.CompletionRequest) (string, error)
}

// ModuleGenerator produces the module outline and lesson titles for a topic.
type ModuleGenerator struct {
	chat Completer
}

func NewModuleGenerator(chat Completer) *ModuleGenerator {
	return &ModuleGenerator{chat: chat}
}

// GenerateModules asks the model for the course's module outline. A response
// that cannot be parsed, or parses to zero modules, is a hard failure; there
// is no course without an outline.
func (g *ModuleGenerator) GenerateModules(ctx context.Context, topic string) ([]domain.ModuleOutline, error) {
	out, err := g.chat.Complete(ctx, openai.CompletionRequest{
		SystemPrompt: modulesSystemPrompt,
		UserPrompt:   modulesUserPrompt(topic),
		Temperature:  modulesTemperature,
		MaxTokens:    modulesMaxTokens,
	})
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeUpstream,
			"module generation failed", err)
	}

	var payload struct {
		Modules []domain.ModuleOutline `json:"modules"`
	}
	if err := json.Unmarshal([]byte(stripCodeFence(out)), &payload); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeGenerationParse,
			"model output is not a valid module list", err)
	}

	modules := payload.Modules[:0]
	for _, m := range payload.Modules {
		if strings.TrimSpace(m.Section) == "" {
			continue
		}
		modules = append(modules, m)
	}
	if len(modules) == 0 {
		return nil, domain.ErrNoModules
	}
	return modules, nil
}

// GenerateLessonTitles asks the model for lesson titles within one module.
// Parse failures surface as GENERATION_PARSE; the course builder substitutes
// fallback titles rather than aborting.
func (g *ModuleGenerator) GenerateLessonTitles(ctx context.Context, topic, moduleTitle string) ([]string, error) {
	out, err := g.chat.Complete(ctx, openai.CompletionRequest{
		SystemPrompt: lessonsSystemPrompt,
		UserPrompt:   lessonsUserPrompt(topic, moduleTitle),
		Temperature:  lessonsTemperature,
		MaxTokens:    lessonsMaxTokens,
	})
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeUpstream,
			"lesson title generation failed", err)
	}

	var payload struct {
		Lessons []string `json:"lessons"`
	}
	if err := json.Unmarshal([]byte(stripCodeFence(out)), &payload); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeGenerationParse,
			"model output is not a valid lesson list", err)
	}

	titles := payload.Lessons[:0]
	for _, title := range payload.Lessons {
		if strings.TrimSpace(title) != "" {
			titles = append(titles, strings.TrimSpace(title))
		}
	}
	if len(titles) == 0 {
		return nil, domain.ErrMalformedLessons
	}
	return titles, nil
}

// FallbackLessonTitles covers a module whose title generation failed.
func FallbackLessonTitles(moduleTitle string) []string {
	return []string{
		"Introduction to " + moduleTitle,
		"Advanced " + moduleTitle + " Concepts",
		moduleTitle + " Best Practices",
	}
}

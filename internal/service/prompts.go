package service

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/coursegen-ai/coursegen/internal/domain"
)

const modulesSystemPrompt = `You are an expert instructional designer who creates visually engaging, hands-on, and practical course modules similar to W3Schools and TutorialsPoint. You help students excel in the domain and skill they are choosing.

Each module should:
- Follow a clear learning progression from basics to mastery.
- Encourage learners to practice actively through examples, visuals, and small challenges.
- Include real-world relevance and coding demonstration opportunities.
- Be named in a way that excites curiosity (e.g. "Mastering Loops with Real Projects" instead of "Loops").
- Avoid overly academic phrasing. Keep it simple, approachable, and interactive.`

const lessonsSystemPrompt = `You are a course creator designing short, engaging, hands-on lessons. You help students excel in the domain and skill they are choosing.

Each lesson should:
- Be concise, unique, and relevant to the module theme.
- Encourage active learning through examples, visuals, and small challenges.
- Be named in a way that excites curiosity (e.g. "Build Your First Function" instead of "Introduction to Functions").
- Avoid overly academic phrasing. Keep it simple, approachable, and interactive.`

// lessonSystemPrompts selects the content generation persona per learning
// mode.
var lessonSystemPrompts = map[domain.LearningMode]string{
	domain.LearningModeHandsOn: `You are an expert educational content designer who creates fun, visual, and hands-on tutorials like W3Schools or TutorialsPoint. You help students excel in the domain and skill they are choosing.
Focus on engagement, not theory. Follow these rules:
- Keep explanations short, visual, and student-friendly.
- Include multiple content types: code blocks, formulas, quizzes, tasks, images, video ideas.
- Prioritize showing (examples, demos) over telling (definitions).
- Tone: simple, energetic, supportive, and visual.
- End lessons with quizzes or practice prompts.
Always output clean JSON that strictly follows the requested schema.`,

	domain.LearningModeTheoretical: `You are an academic course designer. Your lessons are clear, structured, and deeply explanatory. You help students excel in the domain and skill they are choosing.
Focus on accuracy, technical depth, and conceptual understanding.
Use formal tone and structured sections with theory, explanation, and example.
Always output valid JSON following the schema.`,

	domain.LearningModeVisual: `You are an educational designer who creates visually rich and conceptual tutorials. You help students excel in the domain and skill they are choosing.
Every explanation must include diagrams, visuals, analogies, and real-world metaphors.
Add references to images, animations, and charts.
Always output valid JSON following the schema.`,
}

func modulesUserPrompt(topic string) string {
	return fmt.Sprintf(`Create a JSON array of 4-6 modules for the topic %q.
Each module should represent a clear learning phase and have:
- "module": sequential module name (Module 1, Module 2, ...)
- "section": a short, catchy title describing the focus of that module.

Example:
{
  "modules": [
    {"module": "Module 1", "section": "Introduction & Basics"},
    {"module": "Module 2", "section": "Practical Coding"},
    {"module": "Module 3", "section": "Advanced Concepts"}
  ]
}
Output ONLY valid JSON.`, topic)
}

func lessonsUserPrompt(topic, moduleTitle string) string {
	return fmt.Sprintf(`For the module %q in the course %q, generate 3-5 interactive lesson titles.

Each lesson should be:
- Action-oriented (e.g. "Build Your First Function" instead of "Introduction to Functions")
- Clear, practical, and fun to try.
- Beginner-friendly but informative.

Example JSON:
{
  "lessons": [
    "Getting Started",
    "Writing and Running Your First Script",
    "Using Loops to Automate Tasks"
  ]
}
Output ONLY valid JSON.`, moduleTitle, topic)
}

func lessonContentUserPrompt(topic, moduleName, lessonTitle, webContext string, sources []domain.SourceRef) string {
	contextSection := ""
	if webContext != "" {
		contextSection = "\n\nHere is live web-based context to incorporate:\n" + webContext + "\n"
	}

	sourcesJSON, err := json.MarshalIndent(sources, "  ", "  ")
	if err != nil || sources == nil {
		sourcesJSON = []byte("[]")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Generate JSON content for one interactive and engaging lesson.\n")
	fmt.Fprintf(&b, "Topic: %s\nModule: %s\nLesson: %s\n", topic, moduleName, lessonTitle)
	b.WriteString(contextSection)
	b.WriteString("\nFollow this schema strictly. Return valid JSON only:\n")
	fmt.Fprintf(&b, `{
  "title": %q,
  "path": "<slug>",
  "lesson": [
    { "type": "heading", "content": "..." },
    { "type": "paragraph", "content": "..." },
    { "type": "formula", "content": "..." },
    { "type": "code", "language": "python", "content": "..." },
    { "type": "image", "src": "..." },
    { "type": "video", "content": "..." },
    { "type": "task", "content": "..." },
    { "type": "quiz", "content": "..." }
  ],
  "notes": [{ "title": "Quick Tips", "items": ["...", "..."] }],
  "quickquiz": [{ "question": "...", "options": ["..."], "correctAnswer": "..." }],
  "projectideas": [{ "type": "paragraph", "content": "Mini project related to this lesson." }],
  "sources": %s
}
`, lessonTitle, sourcesJSON)
	b.WriteString(`
Each lesson must include short, visual explanations, practice ideas, and mention cited sources where applicable.
Make it look like an interactive learning page:
- Use short sentences and examples.
- Add 'Try it yourself' coding challenges.
- Mention visual or animation ideas.
- End with a quiz or fun recap points.
`)
	return b.String()
}

// stripCodeFence removes a surrounding markdown code fence from model output.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"courseai/internal/config"

	"github.com/rs/zerolog"
)

// Generator is the boundary to an external text-generation model. One call
// to Generate is one outbound request; callers do not retry.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// maxResponseBytes caps how much of a provider response is read.
const maxResponseBytes = 4 << 20

// readResponse reads at most limit bytes from r and fails if there is more.
func readResponse(r io.Reader, limit int64) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("response larger than %d bytes", limit)
	}
	return body, nil
}

// NewGenerator returns the provider selected by GENERATION_PROVIDER.
func NewGenerator(cfg *config.Config, apiKey string, logger zerolog.Logger) (Generator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("generation API key is not configured")
	}
	switch strings.ToLower(cfg.GenerationProvider) {
	case "gemini":
		return NewGeminiClient(apiKey, cfg.GenerationModel, cfg.GenerationBaseURL, cfg.GenerationTimeout, logger), nil
	case "openai":
		return NewOpenAIClient(apiKey, cfg.GenerationModel, cfg.GenerationBaseURL, cfg.GenerationTimeout, logger), nil
	default:
		return nil, fmt.Errorf("unsupported generation provider %q", cfg.GenerationProvider)
	}
}

const coursePromptTemplate = `Create a detailed course outline for: "%s"

Return a JSON object with exactly these keys:
{
  "title": "course title",
  "description": "a short paragraph describing the course",
  "duration": "estimated duration, for example \"8 weeks\"",
  "level": "one of Beginner, Intermediate, Advanced",
  "objectives": ["3 to 5 learning objectives"],
  "modules": [
    {"title": "module title", "description": "what the module covers"}
  ]
}

Include between 4 and 6 modules. Respond with the JSON object only, without markdown or commentary.`

// BuildCoursePrompt embeds topic in the course outline template.
func BuildCoursePrompt(topic string) string {
	return fmt.Sprintf(coursePromptTemplate, strings.TrimSpace(topic))
}

const moduleContentPromptTemplate = `Create detailed learning content for the module "%s" of the course "%s".

Return a JSON object with exactly these keys:
{
  "concepts": ["key concepts explained in a sentence or two each"],
  "examples": ["worked examples"],
  "exercises": ["practice exercises"],
  "resources": ["further reading or references"]
}

Respond with the JSON object only, without markdown or commentary.`

// BuildModuleContentPrompt asks for the detailed material of one module.
func BuildModuleContentPrompt(courseTitle, moduleTitle string) string {
	return fmt.Sprintf(moduleContentPromptTemplate, moduleTitle, courseTitle)
}

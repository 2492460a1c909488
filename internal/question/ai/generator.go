package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/xeipuuv/gojsonschema"

	"github.com/gokatarajesh/quizboard/internal/question"
)

var (
	// ErrNotConfigured is returned when no API credential is available.
	ErrNotConfigured = errors.New("ai generator not configured")
	// ErrMalformedQuestion marks completions that do not describe a usable question.
	ErrMalformedQuestion = errors.New("malformed generated question")
)

const questionSchema = `{
  "type": "object",
  "required": ["question", "options", "correct"],
  "properties": {
    "question":    {"type": "string", "minLength": 1},
    "options":     {"type": "array", "items": {"type": "string"}, "minItems": 4, "maxItems": 4},
    "correct":     {"type": "integer", "minimum": 0, "maximum": 3},
    "explanation": {"type": "string"}
  }
}`

var compiledSchema = mustCompileSchema(questionSchema)

func mustCompileSchema(src string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("compile question schema: %v", err))
	}
	return schema
}

// Completer is the subset of CompletionClient the generator needs.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// Config holds model parameters for generation.
type Config struct {
	Model     string
	MaxTokens int
}

// Generator implements question.Generator on top of a completion API.
type Generator struct {
	completer Completer
	config    Config
	logger    zerolog.Logger
}

var _ question.Generator = (*Generator)(nil)

func NewGenerator(completer Completer, cfg Config, logger zerolog.Logger) *Generator {
	if cfg.Model == "" {
		cfg.Model = "gpt-3.5-turbo"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 200
	}
	return &Generator{
		completer: completer,
		config:    cfg,
		logger:    logger.With().Str("component", "ai_generator").Logger(),
	}
}

// Generate asks the model for one multiple-choice question about categoryName.
func (g *Generator) Generate(ctx context.Context, categoryName string) (question.Question, error) {
	if g.completer == nil {
		return question.Question{}, ErrNotConfigured
	}

	content, err := g.completer.Complete(ctx, CompletionRequest{
		Model:     g.config.Model,
		Prompt:    buildPrompt(categoryName),
		MaxTokens: g.config.MaxTokens,
	})
	if err != nil {
		return question.Question{}, fmt.Errorf("complete: %w", err)
	}

	q, err := ParseQuestion(content)
	if err != nil {
		g.logger.Debug().Str("category", categoryName).Str("content", content).Msg("unusable completion")
		return question.Question{}, err
	}
	return q, nil
}

func buildPrompt(categoryName string) string {
	return fmt.Sprintf(
		"Generate a multiple-choice quiz question for the category '%s'. "+
			"Provide the question, 4 options, the correct option index, and a brief explanation in JSON format: "+
			`{"question": "...", "options": ["..."], "correct": 0, "explanation": "..."}`,
		categoryName,
	)
}

type generatedQuestion struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Correct     int      `json:"correct"`
	Explanation string   `json:"explanation"`
}

// ParseQuestion extracts a question from model output, tolerating markdown
// code fences and prose around the JSON object.
func ParseQuestion(content string) (question.Question, error) {
	raw := extractJSONObject(content)
	if raw == "" {
		return question.Question{}, fmt.Errorf("%w: no JSON object in completion", ErrMalformedQuestion)
	}

	result, err := compiledSchema.Validate(gojsonschema.NewStringLoader(raw))
	if err != nil {
		return question.Question{}, fmt.Errorf("%w: %v", ErrMalformedQuestion, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return question.Question{}, fmt.Errorf("%w: %s", ErrMalformedQuestion, strings.Join(msgs, "; "))
	}

	var gq generatedQuestion
	if err := json.Unmarshal([]byte(raw), &gq); err != nil {
		return question.Question{}, fmt.Errorf("%w: %v", ErrMalformedQuestion, err)
	}
	return question.Question{
		Question:    strings.TrimSpace(gq.Question),
		Options:     gq.Options,
		Correct:     gq.Correct,
		Explanation: strings.TrimSpace(gq.Explanation),
	}, nil
}

func extractJSONObject(content string) string {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return ""
	}
	return content[start : end+1]
}

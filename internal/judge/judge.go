// Package judge wraps the single-turn LLM decisions the tutor relies on:
// intent classification, program output validation and quiz grading.
// Every operation degrades to a conservative answer when the model fails.
package judge

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"go.uber.org/zap"

	"github.com/abhisek/pysis/internal/llm"
)

// Intent is the category of a learner's message.
type Intent string

const (
	IntentAffirmative Intent = "AFFIRMATIVE"
	IntentNegative    Intent = "NEGATIVE"
	IntentQuestion    Intent = "QUESTION"
	IntentGreeting    Intent = "GREETING"
	IntentUnknown     Intent = "UNKNOWN"
)

// Config holds generation settings for judge calls.
type Config struct {
	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns deterministic settings with a small token budget.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   64,
		Temperature: 0,
	}
}

// Judge performs LLM-backed classification and grading.
type Judge struct {
	provider llm.Provider
	cfg      Config
	logger   *zap.Logger
}

// New creates a Judge. A nil logger discards warnings.
func New(provider llm.Provider, cfg Config, logger *zap.Logger) *Judge {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Judge{provider: provider, cfg: cfg, logger: logger}
}

type intentOutput struct {
	Intent string `json:"intent"`
}

type validateOutput struct {
	Confirmed bool `json:"confirmed"`
}

type gradeOutput struct {
	Correct bool `json:"correct"`
}

// ClassifyIntent returns the category of text, or IntentUnknown when the
// model fails or answers outside the known categories.
func (j *Judge) ClassifyIntent(ctx context.Context, text string) Intent {
	var out intentOutput
	err := j.ask(llm.WithPurpose(ctx, llm.PurposeIntent), IntentSchema, intentSystemPrompt,
		intentUserTemplate, struct{ Text string }{text}, &out)
	if err != nil {
		j.logger.Warn("intent classification failed", zap.Error(err))
		return IntentUnknown
	}

	switch intent := Intent(strings.ToUpper(strings.TrimSpace(out.Intent))); intent {
	case IntentAffirmative, IntentNegative, IntentQuestion, IntentGreeting:
		return intent
	default:
		j.logger.Warn("intent classification returned unknown category", zap.String("intent", out.Intent))
		return IntentUnknown
	}
}

// ValidateOutput reports whether description confirms that the learner saw
// expected. Failures count as not confirmed.
func (j *Judge) ValidateOutput(ctx context.Context, description, expected string) bool {
	var out validateOutput
	err := j.ask(llm.WithPurpose(ctx, llm.PurposeOutputValidation), OutputValidationSchema, validateSystemPrompt,
		validateUserTemplate, struct{ Description, Expected string }{description, expected}, &out)
	if err != nil {
		j.logger.Warn("output validation failed", zap.Error(err))
		return false
	}
	return out.Confirmed
}

// GradeAnswer reports whether answer is conceptually correct for question.
// Failures count as incorrect.
func (j *Judge) GradeAnswer(ctx context.Context, question, answer string) bool {
	var out gradeOutput
	err := j.ask(llm.WithPurpose(ctx, llm.PurposeQuizGrade), GradeSchema, gradeSystemPrompt,
		gradeUserTemplate, struct{ Question, Answer string }{question, answer}, &out)
	if err != nil {
		j.logger.Warn("quiz grading failed", zap.Error(err))
		return false
	}
	return out.Correct
}

func (j *Judge) ask(ctx context.Context, schema *llm.Schema, system string, tmpl *template.Template, data any, out any) error {
	userMsg, err := render(tmpl, data)
	if err != nil {
		return fmt.Errorf("build %s prompt: %w", schema.Name, err)
	}

	resp, err := j.provider.Generate(ctx, llm.Request{
		System:      system,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: userMsg}},
		Schema:      schema,
		MaxTokens:   j.cfg.MaxTokens,
		Temperature: j.cfg.Temperature,
	})
	if err != nil {
		return fmt.Errorf("LLM %s failed: %w", schema.Name, err)
	}

	if err := json.Unmarshal(resp.Content, out); err != nil {
		return fmt.Errorf("parse %s response: %w", schema.Name, err)
	}
	return nil
}

package llm

import "context"

// Purpose labels recorded with every LLM request event.
const (
	PurposeIntent           = "intent"
	PurposeOutputValidation = "output-validation"
	PurposeQuizGrade        = "quiz-grade"
	PurposeTutorAnswer      = "tutor-answer"
	PurposeCondenseQuestion = "condense-question"
)

type purposeKey struct{}

// WithPurpose labels the LLM calls made with ctx.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey{}, purpose)
}

// PurposeFrom returns the label set by WithPurpose, or "unknown".
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey{}).(string); ok && v != "" {
		return v
	}
	return "unknown"
}

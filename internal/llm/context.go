package llm

import "context"

type contextKey string

const purposeKey contextKey = "purpose"

// Purposes recorded with each request and grouped by `mastery llm usage`.
const (
	PurposeCurriculum = "curriculum"
	PurposeExam       = "exam"
)

// WithPurpose labels the request for the llm_requests event log.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey, purpose)
}

// PurposeFrom extracts the purpose label from the context.
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey).(string); ok {
		return v
	}
	return "unknown"
}

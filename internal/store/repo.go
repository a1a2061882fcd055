package store

import (
	"context"
	"time"
)

// DateLayout is the storage format for calendar dates.
const DateLayout = "2006-01-02"

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	From    time.Time // timestamp >= From
	To      time.Time // timestamp <= To
	Purpose string    // exact purpose match ("" = any)
}

// Learner is the persisted progress record for one learner.
// StartDate and LastAccessedDate are calendar dates at UTC midnight.
type Learner struct {
	ID               int64
	Name             string
	StartDate        time.Time
	LastAccessedDate time.Time
}

// Completion is the durable proof that a learner finished a lesson day's
// evaluation.
type Completion struct {
	LearnerID   int64
	LessonDay   int
	CompletedAt time.Time
	Score       float64
}

// Chunk is one embedded passage of a lesson day's material.
type Chunk struct {
	ID             int64
	LessonDay      int
	Ordinal        int
	Content        string
	Embedding      []float32
	EmbeddingModel string
	Source         string
}

// ProgressRepo persists learners and their lesson completions.
type ProgressRepo interface {
	// Learner returns the learner with id, or ErrNotFound.
	Learner(ctx context.Context, id int64) (*Learner, error)

	// PutLearner inserts or updates a learner.
	PutLearner(ctx context.Context, l *Learner) error

	// Completion returns the completion for (learnerID, day), or ErrNotFound.
	Completion(ctx context.Context, learnerID int64, day int) (*Completion, error)

	// RecordCompletion stores a completion. A second record for the same
	// (learner, day) pair is ignored.
	RecordCompletion(ctx context.Context, c Completion) error
}

// SessionRepo persists one opaque session blob per learner.
type SessionRepo interface {
	// LoadSession returns the stored blob, or ErrNotFound.
	LoadSession(ctx context.Context, learnerID int64) ([]byte, error)

	// SaveSession overwrites the blob for learnerID.
	SaveSession(ctx context.Context, learnerID int64, data []byte) error
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEventRecord is a stored LLM request event.
type LLMEventRecord struct {
	ID        int
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsage aggregates token usage for a purpose or model.
type LLMUsage struct {
	Purpose      string
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// EventRepo provides append and query access to LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEventRecord, error)

	// GetLLMEvent returns one event, or nil if it does not exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMEventRecord, error)

	// LLMUsageByPurpose aggregates usage per purpose label.
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error)

	// LLMUsageByModel aggregates usage per model.
	LLMUsageByModel(ctx context.Context) ([]LLMUsage, error)
}

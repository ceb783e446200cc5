package store

import (
	"context"
	"time"

	"github.com/abhisek/masteryengine/internal/curriculum"
	"github.com/abhisek/masteryengine/internal/progress"
	"github.com/abhisek/masteryengine/internal/roadmap"
)

// CurriculumSummary is the listing view of a stored curriculum.
type CurriculumSummary struct {
	ID        string
	Title     string
	Domain    string
	Lessons   int
	CreatedAt time.Time
}

// CurriculumRepo stores curricula per user.
type CurriculumRepo interface {
	// Save inserts or replaces a curriculum.
	Save(ctx context.Context, userID string, c *curriculum.Curriculum) error

	// Get returns a curriculum, or ErrNotFound.
	Get(ctx context.Context, userID, id string) (*curriculum.Curriculum, error)

	// List returns the user's curricula, newest first.
	List(ctx context.Context, userID string) ([]CurriculumSummary, error)
}

// ProgressRepo stores the fields of a progress.Record. Every append runs in
// its own transaction; entries are never deleted.
type ProgressRepo interface {
	// Load assembles the user's record for a curriculum. A user with no
	// progress gets an empty record, not an error.
	Load(ctx context.Context, userID, curriculumID string) (progress.Record, error)

	// AppendCompletion marks a lesson complete and logs a lesson-complete
	// activity. It reports false, and logs nothing, when the lesson was
	// already complete.
	AppendCompletion(ctx context.Context, userID, curriculumID, lessonID string, at time.Time, minutes int) (bool, error)

	// AppendExamResult stores an exam result when progress.Record.Accepts
	// allows it and logs an exam-attempt activity either way.
	AppendExamResult(ctx context.Context, userID, curriculumID, lessonID string, res progress.ExamResult) error

	// SetVideoPosition records the last-viewed video second for a lesson
	// and logs a video-watch activity.
	SetVideoPosition(ctx context.Context, userID, curriculumID, lessonID string, seconds int, at time.Time, minutes int) error

	// ActivityTimes returns every activity timestamp of the user across all
	// curricula, oldest first.
	ActivityTimes(ctx context.Context, userID string) ([]time.Time, error)
}

// RoadmapRepo stores roadmaps per user.
type RoadmapRepo interface {
	// Save inserts or replaces a roadmap.
	Save(ctx context.Context, userID string, r roadmap.Roadmap) error

	// Get returns a roadmap, or ErrNotFound.
	Get(ctx context.Context, userID, id string) (roadmap.Roadmap, error)

	// List returns the user's roadmaps, newest first.
	List(ctx context.Context, userID string) ([]roadmap.Roadmap, error)
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
}

// PurposeUsage aggregates recorded LLM requests by purpose.
type PurposeUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
	Failures     int
}

// EventRepo records operational events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error
}

// UsageRepo reads aggregated LLM usage.
type UsageRepo interface {
	// LLMUsageByPurpose returns request totals per purpose, sorted by purpose.
	LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error)
}

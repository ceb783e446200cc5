package progress

import (
	"encoding/json"
	"maps"
	"slices"
	"time"
)

// ActivityKind tags what a learner did.
type ActivityKind string

const (
	ActivityVideoWatch     ActivityKind = "video-watch"
	ActivityLessonComplete ActivityKind = "lesson-complete"
	ActivityExamAttempt    ActivityKind = "exam-attempt"
)

// Activity is one entry of the learner's activity log.
type Activity struct {
	Timestamp    time.Time    `json:"timestamp"`
	Kind         ActivityKind `json:"kind"`
	LessonID     string       `json:"lesson_id,omitempty"`
	CurriculumID string       `json:"curriculum_id,omitempty"`
	Minutes      int          `json:"minutes,omitempty"`
}

// ExamResult is the outcome of one exam submission.
type ExamResult struct {
	ExamID      string         `json:"exam_id"`
	Score       int            `json:"score"`
	Passed      bool           `json:"passed"`
	CompletedAt time.Time      `json:"completed_at"`
	Answers     map[string]int `json:"answers"`
}

// Set is a set of IDs.
type Set map[string]struct{}

// NewSet builds a set from ids.
func NewSet(ids ...string) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether id is in the set. A nil set contains nothing.
func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the members in lexical order.
func (s Set) Sorted() []string {
	return slices.Sorted(maps.Keys(s))
}

// MarshalJSON encodes the set as a sorted array.
func (s Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// UnmarshalJSON decodes an array of IDs, dropping duplicates.
func (s *Set) UnmarshalJSON(b []byte) error {
	var ids []string
	if err := json.Unmarshal(b, &ids); err != nil {
		return err
	}
	*s = NewSet(ids...)
	return nil
}

// Record is a learner's progress through one curriculum. It only grows:
// helpers return updated copies and never drop entries. The store applies
// the same helpers, so a record loaded back matches the one built here.
type Record struct {
	UserID         string                `json:"user_id"`
	CurriculumID   string                `json:"curriculum_id"`
	Completed      Set                   `json:"completed"`
	Exams          map[string]ExamResult `json:"exams"`
	VideoPositions map[string]int        `json:"video_positions"`
	Activities     []Activity            `json:"activities"`
}

// New returns an empty record for a user and curriculum.
func New(userID, curriculumID string) Record {
	return Record{
		UserID:         userID,
		CurriculumID:   curriculumID,
		Completed:      Set{},
		Exams:          map[string]ExamResult{},
		VideoPositions: map[string]int{},
	}
}

// Clone returns a deep copy of r.
func (r Record) Clone() Record {
	out := Record{
		UserID:         r.UserID,
		CurriculumID:   r.CurriculumID,
		Completed:      make(Set, len(r.Completed)),
		Exams:          make(map[string]ExamResult, len(r.Exams)),
		VideoPositions: make(map[string]int, len(r.VideoPositions)),
		Activities:     slices.Clone(r.Activities),
	}
	maps.Copy(out.Completed, r.Completed)
	for id, res := range r.Exams {
		res.Answers = maps.Clone(res.Answers)
		out.Exams[id] = res
	}
	maps.Copy(out.VideoPositions, r.VideoPositions)
	return out
}

// CompletedSet returns the set of completed lesson IDs.
func (r Record) CompletedSet() Set {
	if r.Completed == nil {
		return Set{}
	}
	return r.Completed
}

// IsCompleted reports whether the lesson has been completed.
func (r Record) IsCompleted(lessonID string) bool {
	return r.Completed.Has(lessonID)
}

// WithCompleted marks a lesson complete and logs a lesson-complete activity.
// Completing a lesson twice is a no-op.
func (r Record) WithCompleted(lessonID string, at time.Time, minutes int) Record {
	if r.IsCompleted(lessonID) {
		return r
	}
	out := r.Clone()
	out.Completed[lessonID] = struct{}{}
	out.Activities = append(out.Activities, Activity{
		Timestamp:    at,
		Kind:         ActivityLessonComplete,
		LessonID:     lessonID,
		CurriculumID: r.CurriculumID,
		Minutes:      minutes,
	})
	return out
}

// Accepts reports whether res would replace the result held for its exam.
// A later attempt replaces an earlier one, except that a passed result is
// never replaced by a failed one.
func (r Record) Accepts(res ExamResult) bool {
	prev, ok := r.Exams[res.ExamID]
	return !ok || !prev.Passed || res.Passed
}

// WithExamResult stores an exam result when Accepts allows it and logs the
// attempt either way.
func (r Record) WithExamResult(lessonID string, res ExamResult) Record {
	out := r.Clone()
	if r.Accepts(res) {
		out.Exams[res.ExamID] = res
	}
	out.Activities = append(out.Activities, Activity{
		Timestamp:    res.CompletedAt,
		Kind:         ActivityExamAttempt,
		LessonID:     lessonID,
		CurriculumID: r.CurriculumID,
	})
	return out
}

// WithVideoPosition records the last-viewed video timestamp for a lesson.
func (r Record) WithVideoPosition(lessonID string, seconds int, at time.Time, minutes int) Record {
	out := r.Clone()
	out.VideoPositions[lessonID] = seconds
	out.Activities = append(out.Activities, Activity{
		Timestamp:    at,
		Kind:         ActivityVideoWatch,
		LessonID:     lessonID,
		CurriculumID: r.CurriculumID,
		Minutes:      minutes,
	})
	return out
}

// ActivityTimes returns the timestamps of every logged activity.
func (r Record) ActivityTimes() []time.Time {
	out := make([]time.Time, len(r.Activities))
	for i, a := range r.Activities {
		out[i] = a.Timestamp
	}
	return out
}

// MinutesSpent sums the minutes of every logged activity.
func (r Record) MinutesSpent() int {
	total := 0
	for _, a := range r.Activities {
		total += a.Minutes
	}
	return total
}

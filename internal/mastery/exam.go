package mastery

import (
	"errors"
	"maps"
	"time"

	"github.com/abhisek/masteryengine/internal/curriculum"
	"github.com/abhisek/masteryengine/internal/progress"
)

// DefaultPassingScore is the exam threshold used when none is given.
const DefaultPassingScore = curriculum.DefaultPassingScore

// ErrInvalidExam is matched by every *InvalidExamError.
var ErrInvalidExam = errors.New("invalid exam")

// InvalidExamError reports exam input that cannot be scored.
type InvalidExamError struct {
	Reason string
}

func (e *InvalidExamError) Error() string {
	return "invalid exam: " + e.Reason
}

// Is lets errors.Is(err, ErrInvalidExam) match.
func (e *InvalidExamError) Is(target error) bool {
	return target == ErrInvalidExam
}

// EvaluateExam scores userAnswers against correctAnswers (question ID →
// option index). Unanswered questions count as wrong. The score is the
// percentage of correct answers rounded half-up, and the exam is passed when
// score >= passingScore. ExamID is left blank for the caller.
func EvaluateExam(correctAnswers, userAnswers map[string]int, passingScore int, now time.Time) (progress.ExamResult, error) {
	total := len(correctAnswers)
	if total == 0 {
		return progress.ExamResult{}, &InvalidExamError{Reason: "no questions to score"}
	}

	matches := 0
	for qid, want := range correctAnswers {
		if got, ok := userAnswers[qid]; ok && got == want {
			matches++
		}
	}

	score := percent(matches, total)
	answers := maps.Clone(userAnswers)
	if answers == nil {
		answers = map[string]int{}
	}
	return progress.ExamResult{
		Score:       score,
		Passed:      score >= passingScore,
		CompletedAt: now,
		Answers:     answers,
	}, nil
}

// percent returns round-half-up(100 * n / d) in integer arithmetic, or 0
// when d is 0.
func percent(n, d int) int {
	if d <= 0 {
		return 0
	}
	return (200*n + d) / (2 * d)
}

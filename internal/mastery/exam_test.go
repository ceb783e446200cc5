package mastery

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

var evalTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func answerKey(n int) map[string]int {
	key := make(map[string]int, n)
	for i := range n {
		key[fmt.Sprintf("q%d", i)] = i % 4
	}
	return key
}

// answersWithCorrect returns answers where the first k questions are right.
func answersWithCorrect(key map[string]int, k int) map[string]int {
	out := make(map[string]int, len(key))
	for i := range len(key) {
		qid := fmt.Sprintf("q%d", i)
		if i < k {
			out[qid] = key[qid]
		} else {
			out[qid] = key[qid] + 1
		}
	}
	return out
}

func TestEvaluateExam_Boundary(t *testing.T) {
	tests := []struct {
		questions, correct int
		wantScore          int
		wantPassed         bool
	}{
		{4, 3, 75, false},
		{20, 17, 85, true},
		{20, 16, 80, false},
		{4, 4, 100, true},
		{4, 0, 0, false},
		{3, 2, 67, false},  // 66.67 rounds up
		{8, 1, 13, false},  // 12.5 rounds half-up
		{40, 34, 85, true}, // exactly on the threshold
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d_of_%d", tt.correct, tt.questions), func(t *testing.T) {
			key := answerKey(tt.questions)
			res, err := EvaluateExam(key, answersWithCorrect(key, tt.correct), DefaultPassingScore, evalTime)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.Score != tt.wantScore {
				t.Errorf("score = %d, want %d", res.Score, tt.wantScore)
			}
			if res.Passed != tt.wantPassed {
				t.Errorf("passed = %v, want %v", res.Passed, tt.wantPassed)
			}
		})
	}
}

func TestEvaluateExam_MissingAnswersNeverMatch(t *testing.T) {
	key := map[string]int{"q1": 0, "q2": 0}
	res, err := EvaluateExam(key, map[string]int{"q1": 0}, 50, evalTime)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Score != 50 || !res.Passed {
		t.Errorf("got score %d passed %v, want 50 true", res.Score, res.Passed)
	}

	res, err = EvaluateExam(key, nil, 50, evalTime)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Score != 0 {
		t.Errorf("nil answers: score = %d, want 0", res.Score)
	}
	if res.Answers == nil {
		t.Error("answers should be an empty map, not nil")
	}
}

func TestEvaluateExam_ExtraAnswersIgnored(t *testing.T) {
	key := map[string]int{"q1": 2}
	res, err := EvaluateExam(key, map[string]int{"q1": 2, "bogus": 1}, 85, evalTime)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Score != 100 {
		t.Errorf("score = %d, want 100", res.Score)
	}
}

func TestEvaluateExam_ResultFields(t *testing.T) {
	answers := map[string]int{"q1": 1}
	res, err := EvaluateExam(map[string]int{"q1": 1}, answers, 85, evalTime)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ExamID != "" {
		t.Errorf("ExamID = %q, want blank", res.ExamID)
	}
	if !res.CompletedAt.Equal(evalTime) {
		t.Errorf("CompletedAt = %v, want %v", res.CompletedAt, evalTime)
	}
	answers["q1"] = 9
	if res.Answers["q1"] != 1 {
		t.Error("result should hold its own copy of the answers")
	}
}

func TestEvaluateExam_Deterministic(t *testing.T) {
	key := answerKey(7)
	answers := answersWithCorrect(key, 5)
	first, _ := EvaluateExam(key, answers, 70, evalTime)
	for i := 0; i < 20; i++ {
		again, err := EvaluateExam(key, answers, 70, evalTime)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if again.Score != first.Score || again.Passed != first.Passed {
			t.Fatalf("run %d: got %d/%v, want %d/%v", i, again.Score, again.Passed, first.Score, first.Passed)
		}
	}
}

func TestEvaluateExam_EmptyRejected(t *testing.T) {
	for _, key := range []map[string]int{nil, {}} {
		_, err := EvaluateExam(key, map[string]int{}, 85, evalTime)
		if err == nil {
			t.Fatal("expected error for empty exam, got nil")
		}
		if !errors.Is(err, ErrInvalidExam) {
			t.Errorf("errors.Is(err, ErrInvalidExam) = false for %v", err)
		}
		var ie *InvalidExamError
		if !errors.As(err, &ie) {
			t.Errorf("expected *InvalidExamError, got %T", err)
		}
	}
}

func TestEvaluateExam_ThresholdNotValidated(t *testing.T) {
	key := map[string]int{"q1": 0}
	res, err := EvaluateExam(key, map[string]int{}, -5, evalTime)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Passed {
		t.Error("score 0 >= -5 should pass")
	}
	res, _ = EvaluateExam(key, key, 150, evalTime)
	if res.Passed {
		t.Error("score 100 < 150 should fail")
	}
}

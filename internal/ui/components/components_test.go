package components

import (
	"strings"
	"testing"

	"github.com/abhisek/masteryengine/internal/curriculum"
	"github.com/abhisek/masteryengine/internal/mastery"
	"github.com/abhisek/masteryengine/internal/progress"
)

func TestProgressBar_Clamps(t *testing.T) {
	for _, pct := range []int{-10, 0, 50, 100, 250} {
		out := NewProgressBar("x", pct, true, 30).View()
		if out == "" {
			t.Fatalf("empty view for %d%%", pct)
		}
	}
	if !strings.Contains(NewProgressBar("", 42, true, 20).View(), "42%") {
		t.Error("expected percent label")
	}
}

func TestQuestion_View(t *testing.T) {
	q := curriculum.Question{
		ID: "q1", Kind: curriculum.QuestionMultipleChoice, Prompt: "Zero value of int?",
		Options: []string{"nil", "0"}, CorrectOption: 1, Explanation: "numeric zero",
	}

	plain := NewQuestion(1, q).View()
	for _, want := range []string{"Zero value of int?", "0) A  nil", "1) B  0"} {
		if !strings.Contains(plain, want) {
			t.Errorf("view missing %q:\n%s", want, plain)
		}
	}
	if strings.Contains(plain, "numeric zero") {
		t.Error("explanation shown before reveal")
	}

	revealed := NewQuestion(1, q)
	revealed.Chosen = 0
	revealed.Reveal = true
	if !strings.Contains(revealed.View(), "numeric zero") {
		t.Error("explanation missing after reveal")
	}
	if revealed.IsCorrect() {
		t.Error("option 0 is not correct")
	}
	revealed.Chosen = 1
	if !revealed.IsCorrect() {
		t.Error("option 1 is correct")
	}
}

func TestQuestion_Code(t *testing.T) {
	q := curriculum.Question{ID: "q2", Kind: curriculum.QuestionCode, Prompt: "Sum 1..10", Code: &curriculum.CodeSpec{Language: "go"}}
	if out := NewQuestion(2, q).View(); !strings.Contains(out, "not auto-graded") {
		t.Errorf("code question view:\n%s", out)
	}
}

func TestReport_View(t *testing.T) {
	rep := mastery.Report{
		Progress: 50, LessonsTotal: 2, LessonsCompleted: 1, LessonsMastered: 1, Next: "l2",
		Modules: []mastery.ModuleReport{{
			ID: "m1", Name: "Basics", State: mastery.NodeState{Status: mastery.StatusUnlocked, Progress: 50},
			Topics: []mastery.TopicReport{{
				ID: "t1", Name: "Values", State: mastery.NodeState{Status: mastery.StatusUnlocked, Progress: 50},
				Lessons: []mastery.LessonReport{
					{ID: "l1", Name: "Vars", Completed: true, State: mastery.NodeState{Status: mastery.StatusMastered, Progress: 100},
						Exam: &progress.ExamResult{Score: 90, Passed: true}},
					{ID: "l2", Name: "Consts", State: mastery.NodeState{Status: mastery.StatusUnlocked}},
				},
			}},
		}},
	}

	out := Report{Title: "Go", Report: rep, Width: 40}.View()
	for _, want := range []string{"Go", "1/2 lessons completed", "Vars (l1)", "exam 90%", "Next: l2", mastery.StatusMastered.Icon()} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

package curriculum

import (
	"errors"
	"strings"
	"testing"
)

// minimalCurriculum returns a valid one-module, one-topic, two-lesson plan.
func minimalCurriculum() *Curriculum {
	return &Curriculum{
		Title: "Minimal",
		Modules: []Module{{
			ID:   "m1",
			Name: "Module",
			Topics: []Topic{{
				ID:   "t1",
				Name: "Topic",
				Lessons: []Lesson{
					{ID: "l1", Name: "First", Exam: &Exam{
						ID: "e1",
						Questions: []Question{
							{ID: "q1", Kind: QuestionMultipleChoice, Prompt: "?", Options: []string{"a", "b"}, CorrectOption: 1},
						},
					}},
					{ID: "l2", Name: "Second", Prerequisites: []string{"l1"}},
				},
			}},
		}},
	}
}

func requireProblem(t *testing.T, err error, substr string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error mentioning %q, got nil", substr)
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if !strings.Contains(err.Error(), substr) {
		t.Errorf("error should mention %q, got: %v", substr, err)
	}
}

func TestValidate_MinimalPasses(t *testing.T) {
	if err := Validate(minimalCurriculum()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_Nil(t *testing.T) {
	requireProblem(t, Validate(nil), "nil")
}

func TestValidate_DetectsLessonCycle(t *testing.T) {
	c := minimalCurriculum()
	c.Modules[0].Topics[0].Lessons[0].Prerequisites = []string{"l2"}
	requireProblem(t, Validate(c), "cycle detected involving lessons: l1, l2")
}

func TestValidate_DetectsModuleCycle(t *testing.T) {
	c := minimalCurriculum()
	second := c.Modules[0]
	second.ID = "m2"
	second.Prerequisites = []string{"m1"}
	second.Topics = []Topic{{ID: "t1", Name: "T", Lessons: []Lesson{{ID: "l3", Name: "Third"}}}}
	c.Modules[0].Prerequisites = []string{"m2"}
	c.Modules = append(c.Modules, second)
	requireProblem(t, Validate(c), "cycle detected involving modules")
}

func TestValidate_DetectsTopicCycle(t *testing.T) {
	c := minimalCurriculum()
	m := &c.Modules[0]
	m.Topics[0].Prerequisites = []string{"t2"}
	m.Topics = append(m.Topics, Topic{ID: "t2", Name: "T2", Prerequisites: []string{"t1"}, Lessons: []Lesson{{ID: "l9", Name: "x"}}})
	requireProblem(t, Validate(c), `cycle detected involving topics in module "m1"`)
}

func TestValidate_TopicPrereqMustBeSibling(t *testing.T) {
	c := minimalCurriculum()
	c.Modules = append(c.Modules, Module{ID: "m2", Name: "M2", Topics: []Topic{
		{ID: "t2", Name: "T2", Prerequisites: []string{"t1"}, Lessons: []Lesson{{ID: "l3", Name: "x"}}},
	}})
	requireProblem(t, Validate(c), `topic "t2" references nonexistent prerequisite "t1" in module "m2"`)
}

func TestValidate_LessonPrereqsCrossModules(t *testing.T) {
	c := minimalCurriculum()
	c.Modules = append(c.Modules, Module{ID: "m2", Name: "M2", Topics: []Topic{
		{ID: "t2", Name: "T2", Lessons: []Lesson{{ID: "l3", Name: "x", Prerequisites: []string{"l2"}}}},
	}})
	if err := Validate(c); err != nil {
		t.Fatalf("lesson prerequisites are curriculum-wide, got: %v", err)
	}
}

func TestValidate_DetectsDanglingPrereq(t *testing.T) {
	c := minimalCurriculum()
	c.Modules[0].Topics[0].Lessons[1].Prerequisites = []string{"nonexistent"}
	requireProblem(t, Validate(c), "nonexistent")
}

func TestValidate_DetectsSelfPrereq(t *testing.T) {
	c := minimalCurriculum()
	c.Modules[0].Topics[0].Lessons[1].Prerequisites = []string{"l2"}
	requireProblem(t, Validate(c), "lists itself")
}

func TestValidate_DetectsDuplicateLessonID(t *testing.T) {
	c := minimalCurriculum()
	c.Modules[0].Topics[0].Lessons[1].ID = "l1"
	c.Modules[0].Topics[0].Lessons[1].Prerequisites = nil
	requireProblem(t, Validate(c), `duplicate lesson ID: "l1"`)
}

func TestValidate_EmptyStructure(t *testing.T) {
	requireProblem(t, Validate(&Curriculum{Title: "x"}), "no modules")
	requireProblem(t, Validate(&Curriculum{Modules: minimalCurriculum().Modules}), "no title")
	requireProblem(t, Validate(&Curriculum{Title: "x", Modules: []Module{{ID: "m"}}}), `module "m" has no topics`)
}

func TestValidate_Questions(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(q *Question)
		want   string
	}{
		{"too few options", func(q *Question) { q.Options = []string{"only"}; q.CorrectOption = 0 }, "at least 2 options"},
		{"correct out of range", func(q *Question) { q.CorrectOption = 5 }, "out of range"},
		{"negative correct", func(q *Question) { q.CorrectOption = -1 }, "out of range"},
		{"unknown kind", func(q *Question) { q.Kind = "essay" }, "unknown kind"},
		{"code without language", func(q *Question) { q.Kind = QuestionCode }, "needs a language"},
		{"negative points", func(q *Question) { q.Points = -2 }, "points"},
		{"bad difficulty", func(q *Question) { q.Difficulty = "extreme" }, "unknown difficulty"},
		{"missing id", func(q *Question) { q.ID = "" }, "ID is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := minimalCurriculum()
			tt.mutate(&c.Modules[0].Topics[0].Lessons[0].Exam.Questions[0])
			requireProblem(t, Validate(c), tt.want)
		})
	}
}

func TestValidate_ExamInvariants(t *testing.T) {
	c := minimalCurriculum()
	tooHigh := 120
	c.Modules[0].Topics[0].Lessons[0].Exam.PassingScore = &tooHigh
	requireProblem(t, Validate(c), "passing score")

	c = minimalCurriculum()
	zero := 0
	c.Modules[0].Topics[0].Lessons[0].Exam.PassingScore = &zero
	if err := Validate(c); err != nil {
		t.Errorf("explicit zero passing score should be accepted: %v", err)
	}

	c = minimalCurriculum()
	c.Modules[0].Topics[0].Lessons[0].ExamID = "other"
	requireProblem(t, Validate(c), "does not match")

	c = minimalCurriculum()
	c.Modules[0].Topics[0].Lessons[1].ExamID = "e1"
	requireProblem(t, Validate(c), "attached to both")

	c = minimalCurriculum()
	c.Modules[0].Topics[0].Lessons[0].Exam.Questions = nil
	requireProblem(t, Validate(c), "has no questions")
}

func TestValidate_Resources(t *testing.T) {
	c := minimalCurriculum()
	c.Modules[0].Topics[0].Lessons[0].Content.Resources = []Resource{{Kind: "podcast", Title: "x"}}
	err := Validate(c)
	requireProblem(t, err, "unknown kind")
	requireProblem(t, err, "url is required")
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	c := minimalCurriculum()
	c.Title = ""
	c.Modules[0].Topics[0].Lessons[1].Prerequisites = []string{"ghost"}
	c.Modules[0].Topics[0].Lessons[0].Exam.Questions[0].CorrectOption = 9

	var verr *ValidationError
	if !errors.As(Validate(c), &verr) {
		t.Fatal("expected *ValidationError")
	}
	if len(verr.Problems) != 3 {
		t.Errorf("got %d problems, want 3: %v", len(verr.Problems), verr.Problems)
	}
}

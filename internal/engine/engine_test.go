package engine

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/masteryengine/internal/curriculum"
	"github.com/abhisek/masteryengine/internal/mastery"
	"github.com/abhisek/masteryengine/internal/roadmap"
	"github.com/abhisek/masteryengine/internal/store"
)

const goBasics = "go-basics"

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestEngine(t *testing.T) (*Engine, *store.Store, *fakeClock) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "engine.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	clock := &fakeClock{t: time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)}
	e := New(st, "ada", WithClock(clock.Now), WithLocation(time.UTC))
	return e, st, clock
}

func importFixture(t *testing.T, e *Engine) {
	t.Helper()
	_, err := e.ImportFile(context.Background(), "../curriculum/testdata/go-basics.json")
	require.NoError(t, err)
}

func singleLesson(title string) *curriculum.Curriculum {
	return &curriculum.Curriculum{
		Title: title,
		Modules: []curriculum.Module{{
			ID: "m1", Name: "Only module",
			Topics: []curriculum.Topic{{
				ID: "t1", Name: "Only topic",
				Lessons: []curriculum.Lesson{{ID: "l1", Name: "Only lesson", Content: curriculum.Content{Summary: "s"}}},
			}},
		}},
	}
}

func lessonStatus(t *testing.T, e *Engine, lessonID string) mastery.Status {
	t.Helper()
	report, err := e.Status(context.Background(), goBasics)
	require.NoError(t, err)
	lr, ok := report.Lesson(lessonID)
	require.True(t, ok, "lesson %s missing from report", lessonID)
	return lr.State.Status
}

func TestImport(t *testing.T) {
	e, _, clock := newTestEngine(t)
	ctx := context.Background()

	c, err := e.Import(ctx, singleLesson("Shell"))
	require.NoError(t, err)
	_, err = uuid.Parse(c.ID)
	assert.NoError(t, err)
	assert.Equal(t, clock.Now(), c.CreatedAt)

	importFixture(t, e)
	list, err := e.Curricula(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	got, err := e.Curriculum(ctx, goBasics)
	require.NoError(t, err)
	assert.Equal(t, "Go Fundamentals", got.Title)
}

func TestImport_RejectsInvalid(t *testing.T) {
	e, _, _ := newTestEngine(t)

	_, err := e.ImportFile(context.Background(), "../curriculum/testdata/cyclic.json")
	require.Error(t, err)

	bad := singleLesson("")
	_, err = e.Import(context.Background(), bad)
	var verr *curriculum.ValidationError
	assert.True(t, errors.As(err, &verr), "got %v", err)
}

func TestCurriculum_NotFound(t *testing.T) {
	e, _, _ := newTestEngine(t)
	_, err := e.Status(context.Background(), "nope")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestStatusAndNext_Fresh(t *testing.T) {
	e, _, _ := newTestEngine(t)
	importFixture(t, e)
	ctx := context.Background()

	report, err := e.Status(ctx, goBasics)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Progress)
	assert.Equal(t, 4, report.LessonsTotal)
	assert.False(t, report.Complete)

	assert.Equal(t, mastery.StatusUnlocked, lessonStatus(t, e, "l-vars"))
	assert.Equal(t, mastery.StatusLocked, lessonStatus(t, e, "l-consts"))
	assert.Equal(t, mastery.StatusLocked, lessonStatus(t, e, "l-slices"))

	ref, ok, err := e.Next(ctx, goBasics)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "l-vars", ref.Lesson.ID)
	assert.Equal(t, "t-values", ref.TopicID)
}

func TestCompleteLesson(t *testing.T) {
	e, st, _ := newTestEngine(t)
	importFixture(t, e)
	ctx := context.Background()

	_, err := e.CompleteLesson(ctx, goBasics, "l-consts", 5)
	assert.ErrorIs(t, err, ErrLessonLocked)

	_, err = e.CompleteLesson(ctx, goBasics, "l-missing", 5)
	assert.ErrorIs(t, err, ErrUnknownLesson)

	added, err := e.CompleteLesson(ctx, goBasics, "l-vars", 15)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = e.CompleteLesson(ctx, goBasics, "l-vars", 15)
	require.NoError(t, err)
	assert.False(t, added, "second completion is a no-op")

	rec, err := st.ProgressRepo().Load(ctx, "ada", goBasics)
	require.NoError(t, err)
	assert.Len(t, rec.Activities, 1)
	assert.Equal(t, 15, rec.MinutesSpent())

	// l-consts only needs l-vars; l-loops also sits behind the t-values topic.
	assert.Equal(t, mastery.StatusUnlocked, lessonStatus(t, e, "l-consts"))
	assert.Equal(t, mastery.StatusLocked, lessonStatus(t, e, "l-loops"))

	_, err = e.CompleteLesson(ctx, goBasics, "l-consts", 10)
	require.NoError(t, err)
	assert.Equal(t, mastery.StatusUnlocked, lessonStatus(t, e, "l-loops"))
}

func TestSubmitExam(t *testing.T) {
	e, st, clock := newTestEngine(t)
	importFixture(t, e)
	ctx := context.Background()

	res, err := e.SubmitExam(ctx, goBasics, "l-vars", map[string]int{"q1": 1, "q2": 0})
	require.NoError(t, err)
	assert.Equal(t, "e-vars", res.ExamID)
	assert.Equal(t, 50, res.Score)
	assert.False(t, res.Passed)
	assert.Equal(t, mastery.StatusUnlocked, lessonStatus(t, e, "l-vars"))
	assert.Equal(t, mastery.StatusLocked, lessonStatus(t, e, "l-consts"), "a failed exam does not complete the lesson")

	clock.Advance(time.Hour)
	res, err = e.SubmitExam(ctx, goBasics, "l-vars", map[string]int{"q1": 1, "q2": 1})
	require.NoError(t, err)
	assert.Equal(t, 100, res.Score)
	assert.True(t, res.Passed)
	assert.Equal(t, clock.Now(), res.CompletedAt)
	assert.Equal(t, mastery.StatusMastered, lessonStatus(t, e, "l-vars"))
	assert.Equal(t, mastery.StatusUnlocked, lessonStatus(t, e, "l-consts"))

	// A later failure does not replace the pass.
	_, err = e.SubmitExam(ctx, goBasics, "l-vars", map[string]int{})
	require.NoError(t, err)
	assert.Equal(t, mastery.StatusMastered, lessonStatus(t, e, "l-vars"))

	rec, err := st.ProgressRepo().Load(ctx, "ada", goBasics)
	require.NoError(t, err)
	assert.Equal(t, 100, rec.Exams["e-vars"].Score)
	// three attempts plus the completion triggered by the pass
	assert.Len(t, rec.Activities, 4)
}

func TestSubmitExam_Errors(t *testing.T) {
	e, _, _ := newTestEngine(t)
	importFixture(t, e)
	ctx := context.Background()

	_, err := e.SubmitExam(ctx, goBasics, "l-slices", nil)
	assert.ErrorIs(t, err, ErrLessonLocked)

	_, err = e.SubmitExam(ctx, goBasics, "l-nope", nil)
	assert.ErrorIs(t, err, ErrUnknownLesson)

	_, err = e.CompleteLesson(ctx, goBasics, "l-vars", 0)
	require.NoError(t, err)
	_, err = e.SubmitExam(ctx, goBasics, "l-consts", map[string]int{"q1": 0})
	assert.ErrorIs(t, err, ErrNoExam)
}

func TestSubmitExam_CodeQuestionsNotScored(t *testing.T) {
	e, _, _ := newTestEngine(t)
	importFixture(t, e)
	ctx := context.Background()

	for _, id := range []string{"l-vars", "l-consts"} {
		_, err := e.CompleteLesson(ctx, goBasics, id, 0)
		require.NoError(t, err)
	}

	// e-loops has one multiple-choice and one code question; only the
	// multiple-choice one is in the key.
	res, err := e.SubmitExam(ctx, goBasics, "l-loops", map[string]int{"q1": 0})
	require.NoError(t, err)
	assert.Equal(t, 100, res.Score)
	assert.True(t, res.Passed)
}

func TestAttachExam(t *testing.T) {
	e, _, _ := newTestEngine(t)
	importFixture(t, e)
	ctx := context.Background()

	exam := &curriculum.Exam{
		ID: "generated",
		Questions: []curriculum.Question{
			{ID: "q1", Kind: curriculum.QuestionMultipleChoice, Prompt: "iota starts at?", Options: []string{"0", "1"}, CorrectOption: 0},
		},
	}
	require.NoError(t, e.AttachExam(ctx, goBasics, "l-consts", exam))

	c, err := e.Curriculum(ctx, goBasics)
	require.NoError(t, err)
	got := curriculum.NewGraph(c).Exam("l-consts")
	require.NotNil(t, got)
	assert.Equal(t, "e-consts", got.ID, "lesson exam id wins")

	_, err = e.CompleteLesson(ctx, goBasics, "l-vars", 0)
	require.NoError(t, err)
	res, err := e.SubmitExam(ctx, goBasics, "l-consts", map[string]int{"q1": 0})
	require.NoError(t, err)
	assert.Equal(t, "e-consts", res.ExamID)

	assert.ErrorIs(t, e.AttachExam(ctx, goBasics, "l-nope", exam), ErrUnknownLesson)
}

func TestAttachExam_KeepsEmbeddedExamID(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	question := func(prompt string) []curriculum.Question {
		return []curriculum.Question{
			{ID: "q1", Kind: curriculum.QuestionMultipleChoice, Prompt: prompt, Options: []string{"a", "b"}, CorrectOption: 1},
		}
	}
	c := singleLesson("Embedded")
	c.ID = "embedded"
	c.Modules[0].Topics[0].Lessons[0].Exam = &curriculum.Exam{ID: "e-old", Questions: question("first draft?")}
	_, err := e.Import(ctx, c)
	require.NoError(t, err)

	res, err := e.SubmitExam(ctx, "embedded", "l1", map[string]int{"q1": 1})
	require.NoError(t, err)
	require.True(t, res.Passed)
	require.Equal(t, "e-old", res.ExamID)

	status := func() mastery.Status {
		report, err := e.Status(ctx, "embedded")
		require.NoError(t, err)
		lr, ok := report.Lesson("l1")
		require.True(t, ok)
		return lr.State.Status
	}
	require.Equal(t, mastery.StatusMastered, status())

	regenerated := &curriculum.Exam{ID: "e-new", Questions: question("second draft?")}
	require.NoError(t, e.AttachExam(ctx, "embedded", "l1", regenerated))

	stored, err := e.Curriculum(ctx, "embedded")
	require.NoError(t, err)
	got := curriculum.NewGraph(stored).Exam("l1")
	require.NotNil(t, got)
	assert.Equal(t, "e-old", got.ID, "regenerated exam keeps the key earlier results are stored under")
	assert.Equal(t, "second draft?", got.Questions[0].Prompt)
	assert.Equal(t, mastery.StatusMastered, status(), "replacing the exam must not demote a mastered lesson")
}

func TestWatchVideo(t *testing.T) {
	e, st, _ := newTestEngine(t)
	importFixture(t, e)
	ctx := context.Background()

	require.NoError(t, e.WatchVideo(ctx, goBasics, "l-vars", 95, 2))
	// Watching does not require the lesson to be unlocked.
	require.NoError(t, e.WatchVideo(ctx, goBasics, "l-slices", 10, 1))

	rec, err := st.ProgressRepo().Load(ctx, "ada", goBasics)
	require.NoError(t, err)
	assert.Equal(t, 95, rec.VideoPositions["l-vars"])
	assert.Equal(t, 10, rec.VideoPositions["l-slices"])

	assert.ErrorIs(t, e.WatchVideo(ctx, goBasics, "l-nope", 1, 1), ErrUnknownLesson)
	assert.Error(t, e.WatchVideo(ctx, goBasics, "l-vars", -1, 0))
}

func TestStreak(t *testing.T) {
	e, _, clock := newTestEngine(t)
	importFixture(t, e)
	ctx := context.Background()

	s, err := e.Streak(ctx)
	require.NoError(t, err)
	assert.Equal(t, StreakSummary{Current: 0, Longest: 0, NextMilestone: 3}, s)

	require.NoError(t, e.WatchVideo(ctx, goBasics, "l-vars", 10, 5))
	clock.Advance(24 * time.Hour)
	require.NoError(t, e.WatchVideo(ctx, goBasics, "l-vars", 20, 5))
	clock.Advance(24 * time.Hour)
	_, err = e.CompleteLesson(ctx, goBasics, "l-vars", 5)
	require.NoError(t, err)

	s, err = e.Streak(ctx)
	require.NoError(t, err)
	assert.Equal(t, StreakSummary{Current: 3, Longest: 3, NextMilestone: 7}, s)

	// Skip a day: the streak resets, the longest run is remembered.
	clock.Advance(48 * time.Hour)
	s, err = e.Streak(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, s.Current)
	assert.Equal(t, 3, s.Longest)
}

func TestStatus_MinutesAndStreakPerCurriculum(t *testing.T) {
	e, _, clock := newTestEngine(t)
	importFixture(t, e)
	_, err := e.Import(context.Background(), singleLesson("Shell"))
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, e.WatchVideo(ctx, goBasics, "l-vars", 30, 4))
	clock.Advance(24 * time.Hour)
	_, err = e.CompleteLesson(ctx, goBasics, "l-vars", 20)
	require.NoError(t, err)

	report, err := e.Status(ctx, goBasics)
	require.NoError(t, err)
	assert.Equal(t, 24, report.MinutesSpent)
	assert.Equal(t, 2, report.Streak)
	assert.Equal(t, 1, report.LessonsCompleted)

	// Activity in go-basics does not count toward another curriculum.
	list, err := e.Curricula(ctx)
	require.NoError(t, err)
	for _, c := range list {
		if c.ID == goBasics {
			continue
		}
		other, err := e.Status(ctx, c.ID)
		require.NoError(t, err)
		assert.Zero(t, other.MinutesSpent)
		assert.Zero(t, other.Streak)
	}

	clock.Advance(48 * time.Hour)
	report, err = e.Status(ctx, goBasics)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Streak, "a missed day breaks the streak")
	assert.Equal(t, 24, report.MinutesSpent)
}

func TestRoadmap(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	first, err := e.Import(ctx, singleLesson("First"))
	require.NoError(t, err)
	second, err := e.Import(ctx, singleLesson("Second"))
	require.NoError(t, err)

	_, err = e.CreateRoadmap(ctx, "Path", []string{first.ID, "missing"}, "")
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = e.CreateRoadmap(ctx, "Path", []string{first.ID, first.ID}, "")
	assert.Error(t, err)
	_, err = e.CreateRoadmap(ctx, "Path", nil, "")
	assert.Error(t, err)

	r, err := e.CreateRoadmap(ctx, "Path", []string{first.ID, second.ID}, "Shell then more shell")
	require.NoError(t, err)
	assert.False(t, r.Curricula[0].Locked)
	assert.True(t, r.Curricula[1].Locked)

	_, err = e.CompleteRoadmapStep(ctx, r.ID, first.ID)
	assert.ErrorIs(t, err, ErrCurriculumIncomplete)

	_, err = e.CompleteLesson(ctx, second.ID, "l1", 0)
	require.NoError(t, err)
	_, err = e.CompleteRoadmapStep(ctx, r.ID, second.ID)
	assert.ErrorIs(t, err, roadmap.ErrLocked)

	_, err = e.CompleteRoadmapStep(ctx, r.ID, goBasics)
	assert.ErrorIs(t, err, roadmap.ErrUnknownCurriculum)

	_, err = e.CompleteLesson(ctx, first.ID, "l1", 0)
	require.NoError(t, err)
	r, err = e.CompleteRoadmapStep(ctx, r.ID, first.ID)
	require.NoError(t, err)
	assert.False(t, r.Curricula[1].Locked)
	assert.Equal(t, 50, r.Progress())

	r, err = e.CompleteRoadmapStep(ctx, r.ID, second.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, r.Progress())
	_, ok := r.Current()
	assert.False(t, ok)

	stored, err := e.Roadmap(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, stored.Progress())
	assert.Equal(t, "Shell then more shell", stored.Description)

	list, err := e.Roadmaps(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

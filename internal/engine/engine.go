// Package engine binds the pure mastery core to persistent storage for a
// single learner. Every operation loads what it needs, evaluates with the
// core packages and appends the result; nothing is cached between calls.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/masteryengine/internal/curriculum"
	"github.com/abhisek/masteryengine/internal/mastery"
	"github.com/abhisek/masteryengine/internal/progress"
	"github.com/abhisek/masteryengine/internal/store"
	"github.com/abhisek/masteryengine/internal/streak"
)

var (
	// ErrLessonLocked is returned when acting on a lesson whose
	// prerequisites are not yet completed.
	ErrLessonLocked = errors.New("lesson is locked")
	// ErrUnknownLesson is returned for a lesson ID the curriculum lacks.
	ErrUnknownLesson = errors.New("unknown lesson")
	// ErrNoExam is returned when submitting answers for a lesson that has
	// no exam attached.
	ErrNoExam = errors.New("lesson has no exam")
	// ErrCurriculumIncomplete is returned when completing a roadmap step
	// whose curriculum still has uncompleted lessons.
	ErrCurriculumIncomplete = errors.New("curriculum is not complete")
)

// Engine runs mastery operations for one user.
type Engine struct {
	user      string
	curricula store.CurriculumRepo
	progress  store.ProgressRepo
	roadmaps  store.RoadmapRepo
	log       *zap.Logger
	now       func() time.Time
	loc       *time.Location
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLocation sets the timezone streak days are counted in.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.loc = loc
		}
	}
}

// New creates an Engine for user over the repositories of st.
func New(st *store.Store, user string, opts ...Option) *Engine {
	e := &Engine{
		user:      user,
		curricula: st.CurriculumRepo(),
		progress:  st.ProgressRepo(),
		roadmaps:  st.RoadmapRepo(),
		log:       zap.NewNop(),
		now:       time.Now,
		loc:       time.Local,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.With(zap.String("user", user))
	return e
}

// User returns the learner this engine acts for.
func (e *Engine) User() string {
	return e.user
}

// Import validates and stores a curriculum. A missing ID is replaced by a
// fresh UUID and a zero CreatedAt by the current time. Importing an
// existing ID replaces the stored curriculum; progress is kept.
func (e *Engine) Import(ctx context.Context, c *curriculum.Curriculum) (*curriculum.Curriculum, error) {
	if err := curriculum.Validate(c); err != nil {
		return nil, err
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = e.now().UTC()
	}
	if err := e.curricula.Save(ctx, e.user, c); err != nil {
		return nil, err
	}
	e.log.Info("imported curriculum",
		zap.String("curriculum_id", c.ID),
		zap.String("title", c.Title),
		zap.Int("lessons", c.LessonCount()))
	return c, nil
}

// ImportFile loads a JSON or YAML curriculum file and imports it.
func (e *Engine) ImportFile(ctx context.Context, path string) (*curriculum.Curriculum, error) {
	c, err := curriculum.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return e.Import(ctx, c)
}

// Curriculum returns a stored curriculum.
func (e *Engine) Curriculum(ctx context.Context, id string) (*curriculum.Curriculum, error) {
	c, err := e.curricula.Get(ctx, e.user, id)
	if err != nil {
		return nil, fmt.Errorf("curriculum %q: %w", id, err)
	}
	return c, nil
}

// Curricula lists the user's curricula, newest first.
func (e *Engine) Curricula(ctx context.Context) ([]store.CurriculumSummary, error) {
	return e.curricula.List(ctx, e.user)
}

// load fetches a curriculum and the user's record for it.
func (e *Engine) load(ctx context.Context, curriculumID string) (*curriculum.Graph, progress.Record, error) {
	c, err := e.Curriculum(ctx, curriculumID)
	if err != nil {
		return nil, progress.Record{}, err
	}
	rec, err := e.progress.Load(ctx, e.user, curriculumID)
	if err != nil {
		return nil, progress.Record{}, fmt.Errorf("load progress: %w", err)
	}
	return curriculum.NewGraph(c), rec, nil
}

// Status is the evaluated curriculum plus the study time and streak logged
// against it.
type Status struct {
	mastery.Report
	MinutesSpent int `json:"minutes_spent"`
	// Streak counts consecutive study days in this curriculum only; see
	// Engine.Streak for the streak across all curricula.
	Streak int `json:"streak"`
}

// Status evaluates every node of a curriculum for the user.
func (e *Engine) Status(ctx context.Context, curriculumID string) (Status, error) {
	g, rec, err := e.load(ctx, curriculumID)
	if err != nil {
		return Status{}, err
	}
	return Status{
		Report:       mastery.Evaluate(g, rec),
		MinutesSpent: rec.MinutesSpent(),
		Streak:       streak.Current(rec.ActivityTimes(), e.now().In(e.loc)),
	}, nil
}

// Next returns the recommended next lesson. ok is false when every
// reachable lesson is completed.
func (e *Engine) Next(ctx context.Context, curriculumID string) (ref curriculum.LessonRef, ok bool, err error) {
	g, rec, err := e.load(ctx, curriculumID)
	if err != nil {
		return curriculum.LessonRef{}, false, err
	}
	report := mastery.Evaluate(g, rec)
	if report.Next == "" {
		return curriculum.LessonRef{}, false, nil
	}
	ref, err = g.Lesson(report.Next)
	if err != nil {
		return curriculum.LessonRef{}, false, err
	}
	return ref, true, nil
}

// openLesson checks that lessonID exists and is not locked.
func openLesson(g *curriculum.Graph, rec progress.Record, lessonID string) (mastery.LessonReport, error) {
	if !g.HasLesson(lessonID) {
		return mastery.LessonReport{}, fmt.Errorf("%w: %q", ErrUnknownLesson, lessonID)
	}
	lr, _ := mastery.Evaluate(g, rec).Lesson(lessonID)
	if lr.State.Status == mastery.StatusLocked {
		return lr, fmt.Errorf("%w: %q", ErrLessonLocked, lessonID)
	}
	return lr, nil
}

// CompleteLesson marks a lesson completed. It reports false when the
// lesson was already completed.
func (e *Engine) CompleteLesson(ctx context.Context, curriculumID, lessonID string, minutes int) (bool, error) {
	g, rec, err := e.load(ctx, curriculumID)
	if err != nil {
		return false, err
	}
	if _, err := openLesson(g, rec, lessonID); err != nil {
		return false, err
	}
	if minutes < 0 {
		return false, fmt.Errorf("minutes must be >= 0, got %d", minutes)
	}

	added, err := e.progress.AppendCompletion(ctx, e.user, curriculumID, lessonID, e.now().UTC(), minutes)
	if err != nil {
		return false, err
	}
	if added {
		e.log.Info("lesson completed",
			zap.String("curriculum_id", curriculumID),
			zap.String("lesson_id", lessonID))
	}
	return added, nil
}

// SubmitExam scores answers (question ID → option index) against the
// lesson's exam and stores the result. Passing also completes the lesson.
func (e *Engine) SubmitExam(ctx context.Context, curriculumID, lessonID string, answers map[string]int) (progress.ExamResult, error) {
	g, rec, err := e.load(ctx, curriculumID)
	if err != nil {
		return progress.ExamResult{}, err
	}
	if _, err := openLesson(g, rec, lessonID); err != nil {
		return progress.ExamResult{}, err
	}
	exam := g.Exam(lessonID)
	if exam == nil {
		return progress.ExamResult{}, fmt.Errorf("%w: %q", ErrNoExam, lessonID)
	}

	now := e.now().UTC()
	res, err := mastery.EvaluateExam(exam.AnswerKey(), answers, exam.Threshold(), now)
	if err != nil {
		return progress.ExamResult{}, fmt.Errorf("exam %q: %w", exam.ID, err)
	}
	res.ExamID = g.ExamID(lessonID)
	if res.ExamID == "" {
		res.ExamID = lessonID
	}

	if err := e.progress.AppendExamResult(ctx, e.user, curriculumID, lessonID, res); err != nil {
		return progress.ExamResult{}, err
	}
	e.log.Info("exam submitted",
		zap.String("curriculum_id", curriculumID),
		zap.String("lesson_id", lessonID),
		zap.String("exam_id", res.ExamID),
		zap.Int("score", res.Score),
		zap.Bool("passed", res.Passed))

	if res.Passed && !rec.IsCompleted(lessonID) {
		if _, err := e.progress.AppendCompletion(ctx, e.user, curriculumID, lessonID, now, 0); err != nil {
			return res, err
		}
	}
	return res, nil
}

// AttachExam replaces the exam of a lesson and stores the curriculum
// again. The result is revalidated before saving.
func (e *Engine) AttachExam(ctx context.Context, curriculumID, lessonID string, exam *curriculum.Exam) error {
	c, err := e.Curriculum(ctx, curriculumID)
	if err != nil {
		return err
	}
	found := false
	for mi := range c.Modules {
		for ti := range c.Modules[mi].Topics {
			lessons := c.Modules[mi].Topics[ti].Lessons
			for li := range lessons {
				if lessons[li].ID != lessonID {
					continue
				}
				// Results are keyed by exam ID; keep it so a replaced exam
				// does not orphan earlier results.
				if id := lessons[li].ExamKey(); id != "" {
					exam.ID = id
				}
				lessons[li].Exam = exam
				found = true
			}
		}
	}
	if !found {
		return fmt.Errorf("%w: %q", ErrUnknownLesson, lessonID)
	}
	if err := curriculum.Validate(c); err != nil {
		return err
	}
	return e.curricula.Save(ctx, e.user, c)
}

// WatchVideo records the last viewed second of a lesson's video.
func (e *Engine) WatchVideo(ctx context.Context, curriculumID, lessonID string, seconds, minutes int) error {
	g, _, err := e.load(ctx, curriculumID)
	if err != nil {
		return err
	}
	if !g.HasLesson(lessonID) {
		return fmt.Errorf("%w: %q", ErrUnknownLesson, lessonID)
	}
	if seconds < 0 || minutes < 0 {
		return fmt.Errorf("video position and minutes must be >= 0")
	}
	return e.progress.SetVideoPosition(ctx, e.user, curriculumID, lessonID, seconds, e.now().UTC(), minutes)
}

// Package generate asks a language model for curricula and exams and
// turns the replies into validated curriculum values.
package generate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/masteryengine/internal/curriculum"
	"github.com/abhisek/masteryengine/internal/llm"
)

// ErrEmptyTopic is returned when a curriculum is requested without a subject.
var ErrEmptyTopic = errors.New("generate: topic is required")

var (
	curriculumSchema = &llm.Schema{
		Name:        "curriculum",
		Description: "A modular learning curriculum with per-lesson exams",
		Definition:  curriculum.Schema,
	}
	examSchema = &llm.Schema{
		Name:        "lesson-exam",
		Description: "A multiple-choice exam for one lesson",
		Definition:  curriculum.ExamSchema,
	}
)

// CurriculumInput describes the curriculum to generate.
type CurriculumInput struct {
	Topic  string
	Level  string
	Domain string

	// Modules caps the module count; zero leaves it to the model.
	Modules int
}

// Generator produces curricula and exams through an llm.Provider.
type Generator struct {
	provider llm.Provider
	cfg      Config
	log      *zap.Logger
	now      func() time.Time
}

// New creates a Generator. A nil logger discards output.
func New(provider llm.Provider, cfg Config, log *zap.Logger) *Generator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Generator{provider: provider, cfg: cfg, log: log, now: time.Now}
}

// Curriculum generates a full curriculum. The result has passed schema and
// semantic validation and carries a fresh ID and creation time.
func (g *Generator) Curriculum(ctx context.Context, in CurriculumInput) (*curriculum.Curriculum, error) {
	if in.Topic == "" {
		return nil, ErrEmptyTopic
	}
	ctx = llm.WithPurpose(ctx, llm.PurposeCurriculum)

	resp, err := g.provider.Generate(ctx, llm.Request{
		System: curriculumSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildCurriculumUserMessage(in, g.cfg)},
		},
		Schema:      curriculumSchema,
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("generate curriculum: %w", err)
	}

	c, err := curriculum.Decode(resp.Content)
	if err != nil {
		return nil, fmt.Errorf("generated curriculum rejected: %w", err)
	}

	c.ID = uuid.NewString()
	if c.Domain == "" {
		c.Domain = in.Domain
	}
	c.CreatedAt = g.now().UTC()

	g.log.Info("generated curriculum",
		zap.String("curriculum_id", c.ID),
		zap.String("title", c.Title),
		zap.Int("modules", len(c.Modules)),
		zap.Int("lessons", c.LessonCount()),
		zap.String("model", resp.Model))
	return c, nil
}

// Exam generates an exam for a single lesson. A lesson that already has an
// exam key keeps it.
func (g *Generator) Exam(ctx context.Context, l curriculum.Lesson) (*curriculum.Exam, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeExam)

	resp, err := g.provider.Generate(ctx, llm.Request{
		System: examSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildExamUserMessage(l, g.cfg)},
		},
		Schema:      examSchema,
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("generate exam for %s: %w", l.ID, err)
	}

	e, err := curriculum.DecodeExam(resp.Content)
	if err != nil {
		return nil, fmt.Errorf("generated exam for %s rejected: %w", l.ID, err)
	}
	if id := l.ExamKey(); id != "" {
		e.ID = id
	}

	g.log.Debug("generated exam",
		zap.String("lesson_id", l.ID),
		zap.String("exam_id", e.ID),
		zap.Int("questions", len(e.Questions)))
	return e, nil
}

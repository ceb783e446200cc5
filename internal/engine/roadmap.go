package engine

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/masteryengine/internal/roadmap"
)

// CreateRoadmap stores a roadmap over existing curricula, in order.
func (e *Engine) CreateRoadmap(ctx context.Context, title string, curriculumIDs []string, description string) (roadmap.Roadmap, error) {
	if title == "" {
		return roadmap.Roadmap{}, errors.New("roadmap title is required")
	}
	if len(curriculumIDs) == 0 {
		return roadmap.Roadmap{}, errors.New("roadmap needs at least one curriculum")
	}
	seen := make(map[string]bool, len(curriculumIDs))
	for _, id := range curriculumIDs {
		if seen[id] {
			return roadmap.Roadmap{}, fmt.Errorf("curriculum %q listed twice", id)
		}
		seen[id] = true
		if _, err := e.Curriculum(ctx, id); err != nil {
			return roadmap.Roadmap{}, err
		}
	}

	r := roadmap.New(uuid.NewString(), title, curriculumIDs)
	r.CreatedAt = e.now().UTC()
	r.Description = description
	if err := e.roadmaps.Save(ctx, e.user, r); err != nil {
		return roadmap.Roadmap{}, err
	}
	e.log.Info("created roadmap", zap.String("roadmap_id", r.ID), zap.Int("curricula", len(curriculumIDs)))
	return r, nil
}

// Roadmap returns a stored roadmap.
func (e *Engine) Roadmap(ctx context.Context, id string) (roadmap.Roadmap, error) {
	r, err := e.roadmaps.Get(ctx, e.user, id)
	if err != nil {
		return roadmap.Roadmap{}, fmt.Errorf("roadmap %q: %w", id, err)
	}
	return r, nil
}

// Roadmaps lists the user's roadmaps, newest first.
func (e *Engine) Roadmaps(ctx context.Context) ([]roadmap.Roadmap, error) {
	return e.roadmaps.List(ctx, e.user)
}

// CompleteRoadmapStep marks a curriculum of the roadmap completed. The
// curriculum must be unlocked on the roadmap and every one of its lessons
// completed.
func (e *Engine) CompleteRoadmapStep(ctx context.Context, roadmapID, curriculumID string) (roadmap.Roadmap, error) {
	r, err := e.Roadmap(ctx, roadmapID)
	if err != nil {
		return roadmap.Roadmap{}, err
	}

	if !slices.ContainsFunc(r.Curricula, func(ref roadmap.CurriculumRef) bool {
		return ref.CurriculumID == curriculumID
	}) {
		return roadmap.Roadmap{}, fmt.Errorf("%w: %q", roadmap.ErrUnknownCurriculum, curriculumID)
	}

	report, err := e.Status(ctx, curriculumID)
	if err != nil {
		return roadmap.Roadmap{}, err
	}
	if !report.Complete {
		return roadmap.Roadmap{}, fmt.Errorf("%w: %d of %d lessons completed",
			ErrCurriculumIncomplete, report.LessonsCompleted, report.LessonsTotal)
	}

	updated, err := r.MarkCompleted(curriculumID)
	if err != nil {
		return roadmap.Roadmap{}, err
	}
	if err := e.roadmaps.Save(ctx, e.user, updated); err != nil {
		return roadmap.Roadmap{}, err
	}
	e.log.Info("roadmap step completed",
		zap.String("roadmap_id", roadmapID),
		zap.String("curriculum_id", curriculumID),
		zap.Int("progress", updated.Progress()))
	return updated, nil
}

// Package roadmap gates an ordered list of curricula: each one opens only
// after the one before it is completed.
package roadmap

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/abhisek/masteryengine/internal/progress"
)

var (
	// ErrLocked is returned when completing a curriculum whose predecessor
	// is not yet completed.
	ErrLocked = errors.New("curriculum is locked")
	// ErrUnknownCurriculum is returned for a curriculum not on the roadmap.
	ErrUnknownCurriculum = errors.New("curriculum not on roadmap")
)

// CurriculumRef places a curriculum on a roadmap.
type CurriculumRef struct {
	CurriculumID string `json:"curriculum_id"`
	Order        int    `json:"order"`
	Locked       bool   `json:"locked"`
}

// Roadmap is an ordered sequence of curricula with sequential gating.
type Roadmap struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	CreatedAt   time.Time       `json:"created_at"`
	Curricula   []CurriculumRef `json:"curricula"`
	Completed   progress.Set    `json:"completed"`
	Description string          `json:"description,omitempty"`
}

// New builds a roadmap over curriculumIDs in the given order. Only the first
// curriculum starts unlocked.
func New(id, title string, curriculumIDs []string) Roadmap {
	r := Roadmap{
		ID:        id,
		Title:     title,
		Completed: progress.Set{},
	}
	for i, cid := range curriculumIDs {
		r.Curricula = append(r.Curricula, CurriculumRef{CurriculumID: cid, Order: i})
	}
	return r.Refresh()
}

// IsUnlocked reports whether the curriculum at the given order may be
// started. Order 0 is always unlocked; order N needs N-1 completed.
func (r Roadmap) IsUnlocked(order int) bool {
	if order < 0 || order >= len(r.Curricula) {
		return false
	}
	if order == 0 {
		return true
	}
	return r.Completed.Has(r.Curricula[order-1].CurriculumID)
}

// Refresh returns a copy with every Locked flag recomputed from Completed.
func (r Roadmap) Refresh() Roadmap {
	out := r.clone()
	for i := range out.Curricula {
		out.Curricula[i].Locked = !out.IsUnlocked(i)
	}
	return out
}

// MarkCompleted returns a copy with the curriculum completed and the lock
// flags recomputed. Completing an already completed curriculum is a no-op.
func (r Roadmap) MarkCompleted(curriculumID string) (Roadmap, error) {
	i := r.index(curriculumID)
	if i < 0 {
		return r, fmt.Errorf("%w: %q", ErrUnknownCurriculum, curriculumID)
	}
	if !r.IsUnlocked(i) {
		return r, fmt.Errorf("%w: %q needs %q first", ErrLocked, curriculumID, r.Curricula[i-1].CurriculumID)
	}
	out := r.clone()
	out.Completed[curriculumID] = struct{}{}
	return out.Refresh(), nil
}

// Current returns the first unlocked curriculum not yet completed.
func (r Roadmap) Current() (CurriculumRef, bool) {
	for i, ref := range r.Curricula {
		if !r.IsUnlocked(i) {
			break
		}
		if !r.Completed.Has(ref.CurriculumID) {
			return ref, true
		}
	}
	return CurriculumRef{}, false
}

// Progress returns the share of curricula completed, 0-100.
func (r Roadmap) Progress() int {
	if len(r.Curricula) == 0 {
		return 0
	}
	done := 0
	for _, ref := range r.Curricula {
		if r.Completed.Has(ref.CurriculumID) {
			done++
		}
	}
	return (200*done + len(r.Curricula)) / (2 * len(r.Curricula))
}

func (r Roadmap) index(curriculumID string) int {
	return slices.IndexFunc(r.Curricula, func(ref CurriculumRef) bool {
		return ref.CurriculumID == curriculumID
	})
}

func (r Roadmap) clone() Roadmap {
	out := r
	out.Curricula = slices.Clone(r.Curricula)
	out.Completed = make(progress.Set, len(r.Completed))
	for id := range r.Completed {
		out.Completed[id] = struct{}{}
	}
	return out
}

package curriculum

import (
	"fmt"
	"slices"
)

// LessonRef locates a lesson inside the hierarchy.
type LessonRef struct {
	Lesson   Lesson
	ModuleID string
	TopicID  string
}

// Graph holds a curriculum with precomputed lesson indices.
// Build it once per curriculum and pass it to callers explicitly.
type Graph struct {
	c       *Curriculum
	byID    map[string]LessonRef
	order   []string
	prereqs map[string][]string
}

// NewGraph indexes the lessons of c. It does not validate; run Validate first
// when the curriculum comes from outside.
func NewGraph(c *Curriculum) *Graph {
	gr := &Graph{
		c:       c,
		byID:    make(map[string]LessonRef),
		prereqs: make(map[string][]string),
	}

	for _, m := range c.Modules {
		for _, t := range m.Topics {
			for _, l := range t.Lessons {
				if _, dup := gr.byID[l.ID]; dup {
					continue
				}
				gr.byID[l.ID] = LessonRef{Lesson: l, ModuleID: m.ID, TopicID: t.ID}
				gr.order = append(gr.order, l.ID)
				gr.prereqs[l.ID] = slices.Clone(l.Prerequisites)
			}
		}
	}
	return gr
}

// kahnOrder returns ids in a topological order that keeps the given
// sequence wherever the prerequisites allow it. Prerequisites that are not
// in ids are ignored. Nodes on a cycle are left out.
func kahnOrder(ids []string, prereqs map[string][]string) []string {
	known := make(map[string]bool, len(ids))
	for _, id := range ids {
		known[id] = true
	}

	inDegree := make(map[string]int, len(ids))
	next := make(map[string][]string)
	for _, id := range ids {
		for _, p := range prereqs[id] {
			if !known[p] {
				continue
			}
			inDegree[id]++
			next[p] = append(next[p], id)
		}
	}

	position := make(map[string]int, len(ids))
	for i, id := range ids {
		position[id] = i
	}

	var ready []string
	for _, id := range ids {
		if inDegree[id] == 0 {
			ready = append(ready, id)
		}
	}

	out := make([]string, 0, len(ids))
	for len(ready) > 0 {
		// Pick the ready node that appears first in the authored order.
		slices.SortFunc(ready, func(a, b string) int { return position[a] - position[b] })
		id := ready[0]
		ready = ready[1:]
		out = append(out, id)
		for _, dep := range next[id] {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				ready = append(ready, dep)
			}
		}
	}
	return out
}

// Curriculum returns the indexed curriculum.
func (g *Graph) Curriculum() *Curriculum {
	return g.c
}

// Lesson returns the lesson with the given ID.
func (g *Graph) Lesson(id string) (LessonRef, error) {
	ref, ok := g.byID[id]
	if !ok {
		return LessonRef{}, fmt.Errorf("lesson not found: %q", id)
	}
	return ref, nil
}

// HasLesson reports whether the curriculum contains the lesson.
func (g *Graph) HasLesson(id string) bool {
	_, ok := g.byID[id]
	return ok
}

// LessonOrder returns lesson IDs in module → topic → lesson nesting order.
func (g *Graph) LessonOrder() []string {
	return slices.Clone(g.order)
}

// Prerequisites returns the lesson → prerequisite IDs map.
func (g *Graph) Prerequisites() map[string][]string {
	out := make(map[string][]string, len(g.prereqs))
	for id, p := range g.prereqs {
		out[id] = slices.Clone(p)
	}
	return out
}

// Exam returns the exam attached to a lesson, or nil if it has none.
func (g *Graph) Exam(lessonID string) *Exam {
	ref, ok := g.byID[lessonID]
	if !ok {
		return nil
	}
	return ref.Lesson.Exam
}

// ExamID returns the exam identifier associated with a lesson.
func (g *Graph) ExamID(lessonID string) string {
	ref, ok := g.byID[lessonID]
	if !ok {
		return ""
	}
	return ref.Lesson.ExamKey()
}

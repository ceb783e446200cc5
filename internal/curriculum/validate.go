package curriculum

import (
	"fmt"
	"strings"
)

// ValidationError lists every structural problem found in a curriculum.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("curriculum validation failed:\n  %s", strings.Join(e.Problems, "\n  "))
}

// Validate performs all structural checks on c: unique IDs per scope,
// resolvable prerequisites, acyclic prerequisite graphs at module, topic and
// lesson scope, and well-formed exams and resources.
// Returns a *ValidationError describing all problems found, or nil if valid.
func Validate(c *Curriculum) error {
	if c == nil {
		return &ValidationError{Problems: []string{"curriculum is nil"}}
	}

	v := &validator{}
	if strings.TrimSpace(c.Title) == "" {
		v.addf("curriculum has no title")
	}
	if len(c.Modules) == 0 {
		v.addf("curriculum has no modules")
	}

	moduleIDs := make([]string, 0, len(c.Modules))
	modulePrereqs := make(map[string][]string, len(c.Modules))
	for _, m := range c.Modules {
		moduleIDs = append(moduleIDs, m.ID)
		modulePrereqs[m.ID] = m.Prerequisites
	}
	v.checkScope("module", "", moduleIDs, modulePrereqs)

	var lessonIDs []string
	lessonPrereqs := make(map[string][]string)
	examIDs := make(map[string]string)

	for _, m := range c.Modules {
		if len(m.Topics) == 0 {
			v.addf("module %q has no topics", m.ID)
		}
		topicIDs := make([]string, 0, len(m.Topics))
		topicPrereqs := make(map[string][]string, len(m.Topics))
		for _, t := range m.Topics {
			topicIDs = append(topicIDs, t.ID)
			topicPrereqs[t.ID] = t.Prerequisites

			if len(t.Lessons) == 0 {
				v.addf("topic %q in module %q has no lessons", t.ID, m.ID)
			}
			for _, l := range t.Lessons {
				lessonIDs = append(lessonIDs, l.ID)
				lessonPrereqs[l.ID] = append(lessonPrereqs[l.ID], l.Prerequisites...)
				v.checkLesson(l, examIDs)
			}
		}
		v.checkScope("topic", fmt.Sprintf(" in module %q", m.ID), topicIDs, topicPrereqs)
	}
	v.checkScope("lesson", "", lessonIDs, lessonPrereqs)

	if len(v.problems) > 0 {
		return &ValidationError{Problems: v.problems}
	}
	return nil
}

type validator struct {
	problems []string
}

func (v *validator) addf(format string, args ...any) {
	v.problems = append(v.problems, fmt.Sprintf(format, args...))
}

// checkScope validates one sibling scope: IDs present and unique,
// prerequisites resolvable inside the scope, and no cycles.
func (v *validator) checkScope(kind, where string, ids []string, prereqs map[string][]string) {
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == "" {
			v.addf("%s with empty ID%s", kind, where)
			continue
		}
		if seen[id] {
			v.addf("duplicate %s ID: %q%s", kind, id, where)
		}
		seen[id] = true
	}

	for _, id := range uniq(ids) {
		for _, p := range prereqs[id] {
			switch {
			case p == id:
				v.addf("%s %q lists itself as a prerequisite", kind, id)
			case !seen[p]:
				v.addf("%s %q references nonexistent prerequisite %q%s", kind, id, p, where)
			}
		}
	}

	unique := uniq(ids)
	ordered := kahnOrder(unique, prereqs)
	if len(ordered) < len(unique) {
		placed := make(map[string]bool, len(ordered))
		for _, id := range ordered {
			placed[id] = true
		}
		var cycleNodes []string
		for _, id := range unique {
			if !placed[id] {
				cycleNodes = append(cycleNodes, id)
			}
		}
		v.addf("cycle detected involving %ss%s: %s", kind, where, strings.Join(cycleNodes, ", "))
	}
}

func (v *validator) checkLesson(l Lesson, examIDs map[string]string) {
	if l.DurationMins < 0 {
		v.addf("lesson %q: duration must be >= 0, got %d", l.ID, l.DurationMins)
	}
	for i, r := range l.Content.Resources {
		if !r.Kind.Known() {
			v.addf("lesson %q resource %d: unknown kind %q", l.ID, i, r.Kind)
		}
		if strings.TrimSpace(r.URL) == "" {
			v.addf("lesson %q resource %d: url is required", l.ID, i)
		}
	}

	if l.Exam == nil {
		if l.ExamID != "" {
			v.claimExam(l.ExamID, l.ID, examIDs)
		}
		return
	}

	e := l.Exam
	if e.ID == "" {
		v.addf("lesson %q: exam has no ID", l.ID)
	}
	if l.ExamID != "" && e.ID != "" && l.ExamID != e.ID {
		v.addf("lesson %q: exam_id %q does not match exam %q", l.ID, l.ExamID, e.ID)
	}
	if e.ID != "" {
		v.claimExam(e.ID, l.ID, examIDs)
	}
	if p := e.PassingScore; p != nil && (*p < 0 || *p > 100) {
		v.addf("exam %q: passing score must be in [0, 100], got %d", e.ID, *p)
	}
	if e.TimeLimit < 0 {
		v.addf("exam %q: time limit must be >= 0, got %d", e.ID, e.TimeLimit)
	}
	if len(e.Questions) == 0 {
		v.addf("exam %q has no questions", e.ID)
	}

	qids := make(map[string]bool, len(e.Questions))
	for i, q := range e.Questions {
		prefix := fmt.Sprintf("exam %q question %d", e.ID, i)
		if q.ID == "" {
			v.addf("%s: ID is required", prefix)
		} else if qids[q.ID] {
			v.addf("%s: duplicate question ID %q", prefix, q.ID)
		}
		qids[q.ID] = true

		if q.Points < 0 {
			v.addf("%s: points must be >= 0, got %d", prefix, q.Points)
		}
		switch q.Difficulty {
		case "", DifficultyEasy, DifficultyMedium, DifficultyHard:
		default:
			v.addf("%s: unknown difficulty %q", prefix, q.Difficulty)
		}

		switch q.Kind {
		case QuestionMultipleChoice:
			if len(q.Options) < 2 {
				v.addf("%s: multiple-choice needs at least 2 options, got %d", prefix, len(q.Options))
			}
			if q.CorrectOption < 0 || q.CorrectOption >= len(q.Options) {
				v.addf("%s: correct option %d out of range", prefix, q.CorrectOption)
			}
		case QuestionCode:
			if q.Code == nil || q.Code.Language == "" {
				v.addf("%s: code question needs a language", prefix)
			}
		default:
			v.addf("%s: unknown kind %q", prefix, q.Kind)
		}
	}
}

func (v *validator) claimExam(examID, lessonID string, owners map[string]string) {
	if owner, ok := owners[examID]; ok && owner != lessonID {
		v.addf("exam %q is attached to both %q and %q", examID, owner, lessonID)
		return
	}
	owners[examID] = lessonID
}

func uniq(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

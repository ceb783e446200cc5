package mastery

import (
	"github.com/abhisek/masteryengine/internal/curriculum"
	"github.com/abhisek/masteryengine/internal/progress"
)

// Report is the evaluated state of a whole curriculum for one learner.
type Report struct {
	CurriculumID     string         `json:"curriculum_id"`
	Modules          []ModuleReport `json:"modules"`
	Progress         int            `json:"progress"`
	Next             string         `json:"next,omitempty"`
	LessonsTotal     int            `json:"lessons_total"`
	LessonsCompleted int            `json:"lessons_completed"`
	LessonsMastered  int            `json:"lessons_mastered"`
	// Complete is true when every lesson is completed. When Next is empty
	// and Complete is false, no remaining lesson is reachable.
	Complete bool `json:"complete"`
}

// ModuleReport is the evaluated state of one module.
type ModuleReport struct {
	ID     string        `json:"id"`
	Name   string        `json:"name"`
	State  NodeState     `json:"state"`
	Topics []TopicReport `json:"topics"`
}

// TopicReport is the evaluated state of one topic.
type TopicReport struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"`
	State   NodeState      `json:"state"`
	Lessons []LessonReport `json:"lessons"`
}

// LessonReport is the evaluated state of one lesson.
type LessonReport struct {
	ID        string               `json:"id"`
	Name      string               `json:"name"`
	State     NodeState            `json:"state"`
	Completed bool                 `json:"completed"`
	Exam      *progress.ExamResult `json:"exam,omitempty"`
}

// Evaluate computes the status of every module, topic and lesson of g's
// curriculum against rec.
//
// Gating is hierarchical: a module is unlocked when every lesson of each
// prerequisite module is completed, a topic likewise against its sibling
// topics, and a lesson against its own lesson prerequisites. Anything inside
// a locked container is locked. Module and topic progress is the share of
// child lessons mastered.
func Evaluate(g *curriculum.Graph, rec progress.Record) Report {
	c := g.Curriculum()
	completed := rec.CompletedSet()

	completedModules := progress.Set{}
	for _, m := range c.Modules {
		if allCompleted(moduleLessons(m), completed) {
			completedModules[m.ID] = struct{}{}
		}
	}

	report := Report{CurriculumID: c.ID}
	var reachable []string

	for _, m := range c.Modules {
		mr := ModuleReport{ID: m.ID, Name: m.Name}
		mr.State = NodeStatus(Node{ID: m.ID, Type: curriculum.NodeModule, Prerequisites: m.Prerequisites}, completedModules, rec.Exams)

		completedTopics := progress.Set{}
		for _, t := range m.Topics {
			if allCompleted(t.Lessons, completed) {
				completedTopics[t.ID] = struct{}{}
			}
		}

		moduleMastered, moduleTotal := 0, 0
		for _, t := range m.Topics {
			tr := TopicReport{ID: t.ID, Name: t.Name, State: lockedState}
			if mr.State.Status != StatusLocked {
				tr.State = NodeStatus(Node{ID: t.ID, Type: curriculum.NodeTopic, Prerequisites: t.Prerequisites}, completedTopics, rec.Exams)
			}

			topicMastered := 0
			for _, l := range t.Lessons {
				lr := LessonReport{ID: l.ID, Name: l.Name, State: lockedState, Completed: completed.Has(l.ID)}
				examID := g.ExamID(l.ID)
				if examID == "" {
					examID = l.ID
				}
				if res, ok := rec.Exams[examID]; ok {
					lr.Exam = &res
				}
				if tr.State.Status != StatusLocked {
					lr.State = NodeStatus(Node{ID: l.ID, Type: curriculum.NodeLesson, Prerequisites: l.Prerequisites, ExamID: examID}, completed, rec.Exams)
					reachable = append(reachable, l.ID)
				}

				if lr.State.Status == StatusMastered {
					topicMastered++
				}
				if lr.Completed {
					report.LessonsCompleted++
				}
				tr.Lessons = append(tr.Lessons, lr)
			}

			tr.State = aggregate(tr.State, topicMastered, len(t.Lessons))
			moduleMastered += topicMastered
			moduleTotal += len(t.Lessons)
			mr.Topics = append(mr.Topics, tr)
		}

		mr.State = aggregate(mr.State, moduleMastered, moduleTotal)
		report.LessonsMastered += moduleMastered
		report.LessonsTotal += moduleTotal
		report.Modules = append(report.Modules, mr)
	}

	report.Progress = percent(report.LessonsMastered, report.LessonsTotal)
	report.Complete = report.LessonsTotal > 0 && report.LessonsCompleted == report.LessonsTotal
	if next, ok := NextRecommendation(reachable, completed, g.Prerequisites()); ok {
		report.Next = next
	}
	return report
}

// aggregate fills in a container's progress from its child lessons.
func aggregate(gate NodeState, mastered, total int) NodeState {
	if gate.Status == StatusLocked {
		return lockedState
	}
	if total > 0 && mastered == total {
		return masteredState
	}
	return NodeState{Status: StatusUnlocked, Progress: percent(mastered, total)}
}

func moduleLessons(m curriculum.Module) []curriculum.Lesson {
	var out []curriculum.Lesson
	for _, t := range m.Topics {
		out = append(out, t.Lessons...)
	}
	return out
}

func allCompleted(lessons []curriculum.Lesson, completed progress.Set) bool {
	if len(lessons) == 0 {
		return false
	}
	for _, l := range lessons {
		if !completed.Has(l.ID) {
			return false
		}
	}
	return true
}

// Lesson finds a lesson report by ID.
func (r Report) Lesson(id string) (LessonReport, bool) {
	for _, m := range r.Modules {
		for _, t := range m.Topics {
			for _, l := range t.Lessons {
				if l.ID == id {
					return l, true
				}
			}
		}
	}
	return LessonReport{}, false
}

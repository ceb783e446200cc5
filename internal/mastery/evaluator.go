package mastery

import (
	"github.com/abhisek/masteryengine/internal/curriculum"
	"github.com/abhisek/masteryengine/internal/progress"
)

// Node is the part of a curriculum node the evaluator needs.
type Node struct {
	ID            string
	Type          curriculum.NodeType
	Prerequisites []string
	// ExamID names the lesson's exam. Lessons without one are looked up
	// by their own ID.
	ExamID string
}

// PrerequisitesSatisfied reports whether every prerequisite is in completed.
// An empty prerequisite list is always satisfied. IDs that name nothing in
// the curriculum are simply never satisfied.
func PrerequisitesSatisfied(prerequisites []string, completed progress.Set) bool {
	for _, id := range prerequisites {
		if !completed.Has(id) {
			return false
		}
	}
	return true
}

// NodeStatus resolves the prerequisite gate for a node and, for lessons,
// the exam gate. completed holds the IDs completed at the node's own scope
// (lesson IDs for lessons, module IDs for modules, topic IDs for topics).
//
// Modules and topics come back unlocked with zero progress when the gate is
// open; their progress is an aggregate over child lessons (see Evaluate).
func NodeStatus(node Node, completed progress.Set, exams map[string]progress.ExamResult) NodeState {
	if !PrerequisitesSatisfied(node.Prerequisites, completed) {
		return lockedState
	}
	if node.Type != curriculum.NodeLesson {
		return unlockedState
	}

	key := node.ExamID
	if key == "" {
		key = node.ID
	}
	if res, ok := exams[key]; ok && res.Passed {
		return masteredState
	}
	return unlockedState
}

// NextRecommendation returns the first lesson in order that is not yet
// completed and whose prerequisites are all completed. The caller decides
// the traversal order. ok is false when no lesson qualifies, which covers
// both a finished curriculum and one where nothing is reachable; compare
// len(completed) with the lesson count to tell them apart.
func NextRecommendation(order []string, completed progress.Set, prerequisites map[string][]string) (lessonID string, ok bool) {
	for _, id := range order {
		if completed.Has(id) {
			continue
		}
		if PrerequisitesSatisfied(prerequisites[id], completed) {
			return id, true
		}
	}
	return "", false
}

package curriculum

import "time"

// NodeType identifies the level of a node in the curriculum hierarchy.
type NodeType string

const (
	NodeModule NodeType = "module"
	NodeTopic  NodeType = "topic"
	NodeLesson NodeType = "lesson"
)

// DefaultPassingScore is the exam threshold (percent) used when an exam
// does not declare one.
const DefaultPassingScore = 85

// Curriculum is the root of a generated learning plan.
type Curriculum struct {
	ID        string    `json:"id,omitempty"`
	Title     string    `json:"title"`
	Domain    string    `json:"domain,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	Modules   []Module  `json:"modules"`
}

// Module groups topics. Prerequisites name other modules of the same curriculum.
type Module struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	Prerequisites []string `json:"prerequisites,omitempty"`
	Topics        []Topic  `json:"topics"`
}

// Topic groups lessons. Prerequisites name sibling topics in the same module.
type Topic struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	Prerequisites []string `json:"prerequisites,omitempty"`
	Lessons       []Lesson `json:"lessons"`
}

// Lesson is the leaf unit of progress tracking. Its prerequisites may name
// any lesson in the curriculum, across modules and topics.
type Lesson struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Prerequisites []string `json:"prerequisites,omitempty"`
	DurationMins  int      `json:"duration_mins,omitempty"`
	Content       Content  `json:"content"`
	ExamID        string   `json:"exam_id,omitempty"`
	Exam          *Exam    `json:"exam,omitempty"`
}

// ExamKey is the identifier exam results for this lesson are stored under:
// ExamID when set, else the embedded exam's ID. It is empty for a lesson
// with neither.
func (l Lesson) ExamKey() string {
	if l.ExamID != "" {
		return l.ExamID
	}
	if l.Exam != nil {
		return l.Exam.ID
	}
	return ""
}

// Content is the reading material attached to a lesson.
type Content struct {
	Summary   string     `json:"summary"`
	Resources []Resource `json:"resources,omitempty"`
}

// ResourceKind tags the kind of an external learning resource.
type ResourceKind string

const (
	ResourceVideo         ResourceKind = "video"
	ResourceArticle       ResourceKind = "article"
	ResourceDocumentation ResourceKind = "documentation"
	ResourceExercise      ResourceKind = "exercise"
)

// Known reports whether k is one of the declared resource kinds.
func (k ResourceKind) Known() bool {
	switch k {
	case ResourceVideo, ResourceArticle, ResourceDocumentation, ResourceExercise:
		return true
	}
	return false
}

// Resource is an external link a lesson points at.
type Resource struct {
	Kind        ResourceKind `json:"kind"`
	Title       string       `json:"title"`
	URL         string       `json:"url"`
	Description string       `json:"description,omitempty"`
}

// Exam belongs to exactly one lesson.
type Exam struct {
	ID           string     `json:"id"`
	Questions    []Question `json:"questions"`
	PassingScore *int       `json:"passing_score,omitempty"` // nil = DefaultPassingScore
	TimeLimit    int        `json:"time_limit_mins,omitempty"` // 0 = untimed
}

// Threshold returns the exam's passing score, falling back to
// DefaultPassingScore when none was set. An explicit 0 passes everyone.
func (e *Exam) Threshold() int {
	if e == nil || e.PassingScore == nil {
		return DefaultPassingScore
	}
	return *e.PassingScore
}

// AnswerKey maps question ID to correct option index for every
// multiple-choice question. Code questions are graded elsewhere and are
// not part of the key.
func (e *Exam) AnswerKey() map[string]int {
	key := make(map[string]int, len(e.Questions))
	for _, q := range e.Questions {
		if q.Kind == QuestionMultipleChoice {
			key[q.ID] = q.CorrectOption
		}
	}
	return key
}

// QuestionKind discriminates the question variants.
type QuestionKind string

const (
	QuestionMultipleChoice QuestionKind = "multiple-choice"
	QuestionCode           QuestionKind = "code"
)

// Difficulty tags a question.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Question is one exam item. Options/CorrectOption are set for
// multiple-choice questions; Code is set for code questions.
type Question struct {
	ID            string       `json:"id"`
	Kind          QuestionKind `json:"kind"`
	Prompt        string       `json:"prompt"`
	Options       []string     `json:"options,omitempty"`
	CorrectOption int          `json:"correct_option,omitempty"`
	Code          *CodeSpec    `json:"code,omitempty"`
	Explanation   string       `json:"explanation,omitempty"`
	Points        int          `json:"points,omitempty"`
	Difficulty    Difficulty   `json:"difficulty,omitempty"`
}

// CodeSpec carries the extra fields of a code question.
type CodeSpec struct {
	Language string `json:"language"`
	Starter  string `json:"starter,omitempty"`
	Solution string `json:"solution,omitempty"`
}

// LessonCount returns the total number of lessons in the curriculum.
func (c *Curriculum) LessonCount() int {
	n := 0
	for _, m := range c.Modules {
		for _, t := range m.Topics {
			n += len(t.Lessons)
		}
	}
	return n
}

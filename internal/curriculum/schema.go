package curriculum

// Schema definitions for curricula arriving from outside the process
// (generator output, imported files). Structural shape only; semantic
// checks live in Validate.

func stringProp(desc string) map[string]any {
	return map[string]any{"type": "string", "description": desc}
}

func stringList(desc string) map[string]any {
	return map[string]any{
		"type":        "array",
		"items":       map[string]any{"type": "string"},
		"description": desc,
	}
}

// QuestionSchema is the JSON schema of a single exam question.
var QuestionSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"id":     stringProp("Question identifier, unique within the exam"),
		"kind":   map[string]any{"type": "string", "enum": []any{"multiple-choice", "code"}},
		"prompt": stringProp("Question text shown to the learner"),
		"options": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
		"correct_option": map[string]any{"type": "integer", "minimum": 0},
		"code": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"language": stringProp("Programming language"),
				"starter":  stringProp("Starter code"),
				"solution": stringProp("Reference solution"),
			},
			"required": []any{"language"},
		},
		"explanation": stringProp("Why the correct answer is correct"),
		"points":      map[string]any{"type": "integer", "minimum": 0},
		"difficulty":  map[string]any{"type": "string", "enum": []any{"easy", "medium", "hard"}},
	},
	"required": []any{"id", "kind", "prompt"},
}

// ExamSchema is the JSON schema of an exam.
var ExamSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"id": stringProp("Exam identifier"),
		"questions": map[string]any{
			"type":     "array",
			"items":    QuestionSchema,
			"minItems": 1,
		},
		"passing_score":   map[string]any{"type": "integer", "minimum": 0, "maximum": 100},
		"time_limit_mins": map[string]any{"type": "integer", "minimum": 0},
	},
	"required": []any{"id", "questions"},
}

var resourceSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"kind":        map[string]any{"type": "string", "enum": []any{"video", "article", "documentation", "exercise"}},
		"title":       stringProp("Resource title"),
		"url":         stringProp("Resource URL"),
		"description": stringProp("Short description"),
	},
	"required": []any{"kind", "title", "url"},
}

var lessonSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"id":            stringProp("Lesson identifier, unique within the curriculum"),
		"name":          stringProp("Lesson name"),
		"prerequisites": stringList("IDs of lessons that must be completed first"),
		"duration_mins": map[string]any{"type": "integer", "minimum": 0},
		"content": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"summary": stringProp("Lesson summary"),
				"resources": map[string]any{
					"type":  "array",
					"items": resourceSchema,
				},
			},
			"required": []any{"summary"},
		},
		"exam_id": stringProp("Identifier of the lesson's exam"),
		"exam":    ExamSchema,
	},
	"required": []any{"id", "name", "content"},
}

var topicSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"id":            stringProp("Topic identifier, unique within its module"),
		"name":          stringProp("Topic name"),
		"description":   stringProp("Topic description"),
		"prerequisites": stringList("IDs of sibling topics that must be completed first"),
		"lessons": map[string]any{
			"type":     "array",
			"items":    lessonSchema,
			"minItems": 1,
		},
	},
	"required": []any{"id", "name", "lessons"},
}

var moduleSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"id":            stringProp("Module identifier"),
		"name":          stringProp("Module name"),
		"description":   stringProp("Module description"),
		"prerequisites": stringList("IDs of modules that must be completed first"),
		"topics": map[string]any{
			"type":     "array",
			"items":    topicSchema,
			"minItems": 1,
		},
	},
	"required": []any{"id", "name", "topics"},
}

// Schema is the JSON schema of a full curriculum document.
var Schema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"id":         stringProp("Curriculum identifier; generated on save when empty"),
		"title":      stringProp("Curriculum title"),
		"domain":     stringProp("Subject domain tag"),
		"created_at": stringProp("RFC 3339 creation time"),
		"modules": map[string]any{
			"type":     "array",
			"items":    moduleSchema,
			"minItems": 1,
		},
	},
	"required": []any{"title", "modules"},
}

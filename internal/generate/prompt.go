package generate

import (
	"fmt"
	"strings"

	"github.com/abhisek/masteryengine/internal/curriculum"
)

const curriculumSystemPrompt = `You design self-paced programming curricula. A curriculum is a list of modules, each module a list of topics, each topic a list of lessons. Every lesson ends with a short multiple-choice exam.`

func buildCurriculumUserMessage(in CurriculumInput, cfg Config) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Subject: %s\n", in.Topic)
	if in.Level != "" {
		fmt.Fprintf(&b, "Learner level: %s\n", in.Level)
	}
	if in.Domain != "" {
		fmt.Fprintf(&b, "Domain tag: %s\n", in.Domain)
	}
	if in.Modules > 0 {
		fmt.Fprintf(&b, "Modules: at most %d\n", in.Modules)
	}

	fmt.Fprintf(&b, `
Instructions:
1. Use short kebab-case IDs prefixed by level: "m-" for modules, "t-" for topics, "l-" for lessons. IDs must be unique across the whole curriculum.
2. Prerequisites: modules name other modules, topics name sibling topics in the same module, lessons may name any earlier lesson. Never create a cycle.
3. Give every lesson a one-paragraph content summary and up to three resources with real URLs.
4. Give every lesson an exam with %d multiple-choice questions. correct_option is the zero-based index into options.
5. Leave passing_score unset unless the lesson needs a stricter bar.`, cfg.Questions)

	return b.String()
}

const examSystemPrompt = `You write short exams that check whether a learner understood one programming lesson.`

func buildExamUserMessage(l curriculum.Lesson, cfg Config) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Lesson: %s\n", l.Name)
	fmt.Fprintf(&b, "Summary: %s\n", l.Content.Summary)
	if len(l.Content.Resources) > 0 {
		b.WriteString("\nResources:\n")
		for _, r := range l.Content.Resources {
			fmt.Fprintf(&b, "- %s (%s)\n", r.Title, r.Kind)
		}
	}

	fmt.Fprintf(&b, `
Instructions:
Write an exam with id %q and %d multiple-choice questions on this lesson only. Each question has 3-5 options and exactly one correct option; correct_option is its zero-based index. Add a one-sentence explanation per question.`, examID(l), cfg.Questions)

	return b.String()
}

func examID(l curriculum.Lesson) string {
	if l.ExamID != "" {
		return l.ExamID
	}
	return "e-" + strings.TrimPrefix(l.ID, "l-")
}

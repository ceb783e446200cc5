package components

import (
	"fmt"
	"strings"

	"github.com/abhisek/masteryengine/internal/curriculum"
	"github.com/abhisek/masteryengine/internal/ui/theme"
)

// Question renders one exam question. When Reveal is set the correct
// option and the learner's choice are highlighted.
type Question struct {
	Number   int
	Question curriculum.Question
	Chosen   int // -1 when unanswered
	Reveal   bool
}

// NewQuestion creates an unanswered, unrevealed question view.
func NewQuestion(number int, q curriculum.Question) Question {
	return Question{Number: number, Question: q, Chosen: -1}
}

// optionLabel returns A, B, C... for option indices.
func optionLabel(i int) string {
	if i < 26 {
		return string(rune('A' + i))
	}
	return fmt.Sprint(i)
}

// View renders the question.
func (m Question) View() string {
	q := m.Question
	var b strings.Builder

	header := fmt.Sprintf("%d. [%s] %s", m.Number, q.ID, q.Prompt)
	b.WriteString(theme.Body.Bold(true).Render(header) + "\n")

	if q.Kind == curriculum.QuestionCode {
		lang := ""
		if q.Code != nil {
			lang = q.Code.Language
		}
		b.WriteString(theme.Hint.Render(fmt.Sprintf("   code question (%s), not auto-graded", lang)) + "\n")
		if q.Code != nil && q.Code.Starter != "" {
			b.WriteString(theme.Card.Render(q.Code.Starter) + "\n")
		}
		return b.String()
	}

	for i, opt := range q.Options {
		line := fmt.Sprintf("   %d) %s  %s", i, optionLabel(i), opt)
		switch {
		case m.Reveal && i == q.CorrectOption:
			b.WriteString(theme.Correct.Render(line) + "\n")
		case m.Reveal && i == m.Chosen:
			b.WriteString(theme.Incorrect.Render(line) + "\n")
		case m.Reveal:
			b.WriteString(theme.Locked.Render(line) + "\n")
		default:
			b.WriteString(theme.Body.Render(line) + "\n")
		}
	}
	if m.Reveal && q.Explanation != "" {
		b.WriteString(theme.Hint.Render("   "+q.Explanation) + "\n")
	}

	return b.String()
}

// IsCorrect reports whether the chosen option is the correct one.
func (m Question) IsCorrect() bool {
	return m.Chosen >= 0 && m.Chosen == m.Question.CorrectOption
}

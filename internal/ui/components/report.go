package components

import (
	"fmt"
	"strings"

	"github.com/abhisek/masteryengine/internal/mastery"
	"github.com/abhisek/masteryengine/internal/ui/theme"
)

// statusLine renders "icon name  NN%" in the status color.
func statusLine(indent int, name string, st mastery.NodeState) string {
	pad := strings.Repeat("  ", indent)
	text := fmt.Sprintf("%s%s %s", pad, st.Status.Icon(), name)
	line := theme.ForStatus(st.Status).Render(text)
	if st.Status != mastery.StatusLocked {
		line += theme.Subtitle.Render(fmt.Sprintf("  %d%%", st.Progress))
	}
	return line
}

// Report renders a curriculum report as an indented tree with an overall
// progress bar on top.
type Report struct {
	Title  string
	Report mastery.Report
	Width  int
}

// View renders the report.
func (r Report) View() string {
	rep := r.Report
	var b strings.Builder

	b.WriteString(theme.Title.Render(r.Title) + "\n")
	b.WriteString(NewProgressBar("Mastery", rep.Progress, true, max(r.Width, 40)).View() + "\n")
	b.WriteString(theme.Subtitle.Render(fmt.Sprintf("%d/%d lessons completed, %d mastered",
		rep.LessonsCompleted, rep.LessonsTotal, rep.LessonsMastered)) + "\n\n")

	for _, m := range rep.Modules {
		b.WriteString(statusLine(0, m.Name, m.State) + "\n")
		for _, t := range m.Topics {
			b.WriteString(statusLine(1, t.Name, t.State) + "\n")
			for _, l := range t.Lessons {
				line := statusLine(2, fmt.Sprintf("%s (%s)", l.Name, l.ID), l.State)
				if l.Completed {
					line += theme.Subtitle.Render("  done")
				}
				if l.Exam != nil {
					mark := theme.Incorrect.Render(fmt.Sprintf("  exam %d%%", l.Exam.Score))
					if l.Exam.Passed {
						mark = theme.Correct.Render(fmt.Sprintf("  exam %d%%", l.Exam.Score))
					}
					line += mark
				}
				b.WriteString(line + "\n")
			}
		}
	}

	b.WriteString("\n")
	switch {
	case rep.Complete:
		b.WriteString(theme.Mastered.Render("Curriculum complete.") + "\n")
	case rep.Next != "":
		b.WriteString(theme.Hint.Render("Next: "+rep.Next) + "\n")
	default:
		b.WriteString(theme.Hint.Render("No lesson is reachable yet.") + "\n")
	}
	return b.String()
}

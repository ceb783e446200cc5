package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/masteryengine/internal/curriculum"
	"github.com/abhisek/masteryengine/internal/ui/theme"
)

var curriculumCmd = &cobra.Command{
	Use:     "curriculum",
	Aliases: []string{"cur"},
	Short:   "Import and inspect curricula",
}

var curriculumImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a curriculum from a JSON or YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		c, err := rt.engine.ImportFile(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %s (%s): %d modules, %d lessons\n",
			theme.Title.Render(c.Title), c.ID, len(c.Modules), c.LessonCount())
		return nil
	},
}

var curriculumListCmd = &cobra.Command{
	Use:   "list",
	Short: "List imported curricula",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		list, err := rt.engine.Curricula(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if wantJSON(cmd) {
			return printJSON(out, list)
		}
		if len(list) == 0 {
			fmt.Fprintln(out, "No curricula imported yet.")
			return nil
		}

		fmt.Fprintf(out, "%-36s  %-32s  %-12s  %7s  %s\n", "ID", "Title", "Domain", "Lessons", "Created")
		fmt.Fprintln(out, strings.Repeat("─", 104))
		for _, c := range list {
			fmt.Fprintf(out, "%-36s  %-32s  %-12s  %7d  %s\n",
				c.ID, truncate(c.Title, 32), truncate(c.Domain, 12), c.Lessons,
				c.CreatedAt.Local().Format("2006-01-02"))
		}
		return nil
	},
}

var curriculumShowCmd = &cobra.Command{
	Use:   "show <curriculum>",
	Short: "Show the structure of a curriculum",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		c, err := rt.engine.Curriculum(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if wantJSON(cmd) {
			return printJSON(out, c)
		}
		fmt.Fprint(out, renderStructure(c))
		return nil
	},
}

func renderStructure(c *curriculum.Curriculum) string {
	var b strings.Builder
	b.WriteString(theme.Title.Render(c.Title) + "\n")
	if c.Domain != "" {
		b.WriteString(theme.Subtitle.Render(c.Domain) + "\n")
	}
	for _, m := range c.Modules {
		b.WriteString("\n" + theme.Body.Bold(true).Render(m.Name) + theme.Subtitle.Render(" "+m.ID+requires(m.Prerequisites)) + "\n")
		for _, t := range m.Topics {
			b.WriteString("  " + theme.Body.Render(t.Name) + theme.Subtitle.Render(" "+t.ID+requires(t.Prerequisites)) + "\n")
			for _, l := range t.Lessons {
				line := fmt.Sprintf("    - %s (%s)", l.Name, l.ID)
				if l.DurationMins > 0 {
					line += fmt.Sprintf(" %dm", l.DurationMins)
				}
				if l.Exam != nil {
					line += fmt.Sprintf(" exam:%d questions, pass %d%%", len(l.Exam.Questions), l.Exam.Threshold())
				} else if l.ExamID != "" {
					line += " exam:" + l.ExamID + " (not attached)"
				}
				b.WriteString(line + theme.Subtitle.Render(requires(l.Prerequisites)) + "\n")
			}
		}
	}
	return b.String()
}

func requires(ids []string) string {
	if len(ids) == 0 {
		return ""
	}
	return " needs " + strings.Join(ids, ", ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func init() {
	addJSONFlag(curriculumListCmd)
	addJSONFlag(curriculumShowCmd)

	curriculumCmd.AddCommand(curriculumImportCmd)
	curriculumCmd.AddCommand(curriculumListCmd)
	curriculumCmd.AddCommand(curriculumShowCmd)
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/masteryengine/internal/ui/components"
	"github.com/abhisek/masteryengine/internal/ui/theme"
)

var statusCmd = &cobra.Command{
	Use:   "status <curriculum>",
	Short: "Show lock, unlock and mastery state of every node",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		ctx := cmd.Context()
		report, err := rt.engine.Status(ctx, args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if wantJSON(cmd) {
			return printJSON(out, report)
		}

		c, err := rt.engine.Curriculum(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Fprint(out, components.Report{Title: c.Title, Report: report.Report, Width: 60}.View())
		fmt.Fprintln(out, theme.Subtitle.Render(fmt.Sprintf("%d min studied, %d-day streak", report.MinutesSpent, report.Streak)))
		return nil
	},
}

var nextCmd = &cobra.Command{
	Use:   "next <curriculum>",
	Short: "Recommend the next lesson to study",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		ref, ok, err := rt.engine.Next(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if !ok {
			fmt.Fprintln(out, theme.Hint.Render("Nothing left to study: every reachable lesson is completed."))
			return nil
		}

		l := ref.Lesson
		fmt.Fprintln(out, theme.Title.Render(l.Name)+theme.Subtitle.Render(fmt.Sprintf(" (%s in %s/%s)", l.ID, ref.ModuleID, ref.TopicID)))
		if l.Content.Summary != "" {
			fmt.Fprintln(out, theme.Body.Render(l.Content.Summary))
		}
		for _, r := range l.Content.Resources {
			fmt.Fprintf(out, "  %s %s %s\n", theme.Label.Render(string(r.Kind)), r.Title, theme.Subtitle.Render(r.URL))
		}
		return nil
	},
}

func init() {
	addJSONFlag(statusCmd)
}

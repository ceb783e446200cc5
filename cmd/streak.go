package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/masteryengine/internal/ui/theme"
)

var streakCmd = &cobra.Command{
	Use:   "streak",
	Short: "Show the daily study streak",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		s, err := rt.engine.Streak(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if wantJSON(cmd) {
			return printJSON(out, s)
		}

		if s.Current == 0 {
			fmt.Fprintln(out, theme.Hint.Render("No active streak. Study today to start one."))
		} else {
			fmt.Fprintln(out, theme.Unlocked.Render(fmt.Sprintf("🔥 %d day streak", s.Current)))
		}
		fmt.Fprintf(out, "%s%d days\n", theme.Label.Render("Longest"), s.Longest)
		fmt.Fprintf(out, "%s%d days (%d to go)\n", theme.Label.Render("Next goal"), s.NextMilestone, s.NextMilestone-s.Current)
		return nil
	},
}

func init() {
	addJSONFlag(streakCmd)
}

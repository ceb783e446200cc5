package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/abhisek/masteryengine/internal/ui/theme"
)

var completeCmd = &cobra.Command{
	Use:   "complete <curriculum> <lesson>",
	Short: "Mark a lesson completed",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		minutes, _ := cmd.Flags().GetInt("minutes")

		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		added, err := rt.engine.CompleteLesson(cmd.Context(), args[0], args[1], minutes)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if !added {
			fmt.Fprintln(out, theme.Hint.Render(args[1]+" was already completed."))
			return nil
		}
		fmt.Fprintln(out, theme.Mastered.Render("Completed "+args[1]))
		return nil
	},
}

var videoCmd = &cobra.Command{
	Use:   "video <curriculum> <lesson> <seconds>",
	Short: "Record the last watched position of a lesson video",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		seconds, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid position %q: %w", args[2], err)
		}
		minutes, _ := cmd.Flags().GetInt("minutes")

		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		if err := rt.engine.WatchVideo(cmd.Context(), args[0], args[1], seconds, minutes); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %s at %ds\n", args[1], seconds)
		return nil
	},
}

func init() {
	completeCmd.Flags().Int("minutes", 0, "Minutes spent on the lesson")
	videoCmd.Flags().Int("minutes", 0, "Minutes spent watching")
}

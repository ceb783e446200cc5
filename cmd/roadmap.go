package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/masteryengine/internal/roadmap"
	"github.com/abhisek/masteryengine/internal/ui/components"
	"github.com/abhisek/masteryengine/internal/ui/theme"
)

var roadmapCmd = &cobra.Command{
	Use:   "roadmap",
	Short: "Chain curricula into a gated roadmap",
}

var roadmapCreateCmd = &cobra.Command{
	Use:   "create <title> <curriculum>...",
	Short: "Create a roadmap over curricula, in order",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		desc, _ := cmd.Flags().GetString("description")

		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		r, err := rt.engine.CreateRoadmap(cmd.Context(), args[0], args[1:], desc)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created roadmap %s (%s)\n", theme.Title.Render(r.Title), r.ID)
		return nil
	},
}

var roadmapListCmd = &cobra.Command{
	Use:   "list",
	Short: "List roadmaps",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		list, err := rt.engine.Roadmaps(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if wantJSON(cmd) {
			return printJSON(out, list)
		}
		if len(list) == 0 {
			fmt.Fprintln(out, "No roadmaps yet.")
			return nil
		}
		fmt.Fprintf(out, "%-36s  %-32s  %9s  %s\n", "ID", "Title", "Curricula", "Progress")
		fmt.Fprintln(out, strings.Repeat("─", 90))
		for _, r := range list {
			fmt.Fprintf(out, "%-36s  %-32s  %9d  %d%%\n", r.ID, truncate(r.Title, 32), len(r.Curricula), r.Progress())
		}
		return nil
	},
}

var roadmapShowCmd = &cobra.Command{
	Use:   "show <roadmap>",
	Short: "Show a roadmap and its gates",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		r, err := rt.engine.Roadmap(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if wantJSON(cmd) {
			return printJSON(out, r)
		}
		printRoadmap(out, r)
		return nil
	},
}

var roadmapCompleteCmd = &cobra.Command{
	Use:   "complete <roadmap> <curriculum>",
	Short: "Mark a finished curriculum completed on the roadmap",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		r, err := rt.engine.CompleteRoadmapStep(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		printRoadmap(cmd.OutOrStdout(), r)
		return nil
	},
}

func printRoadmap(out io.Writer, r roadmap.Roadmap) {
	fmt.Fprintln(out, theme.Title.Render(r.Title))
	if r.Description != "" {
		fmt.Fprintln(out, theme.Subtitle.Render(r.Description))
	}
	fmt.Fprintln(out, components.NewProgressBar("Roadmap", r.Progress(), true, 50).View())
	for _, ref := range r.Curricula {
		var line string
		switch {
		case r.Completed.Has(ref.CurriculumID):
			line = theme.Mastered.Render("✅ " + ref.CurriculumID)
		case ref.Locked:
			line = theme.Locked.Render("🔒 " + ref.CurriculumID)
		default:
			line = theme.Unlocked.Render("🔓 " + ref.CurriculumID)
		}
		fmt.Fprintf(out, "  %d. %s\n", ref.Order+1, line)
	}
}

func init() {
	roadmapCreateCmd.Flags().String("description", "", "Roadmap description")
	addJSONFlag(roadmapListCmd)
	addJSONFlag(roadmapShowCmd)

	roadmapCmd.AddCommand(roadmapCreateCmd)
	roadmapCmd.AddCommand(roadmapListCmd)
	roadmapCmd.AddCommand(roadmapShowCmd)
	roadmapCmd.AddCommand(roadmapCompleteCmd)
}

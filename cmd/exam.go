package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/masteryengine/internal/curriculum"
	"github.com/abhisek/masteryengine/internal/engine"
	"github.com/abhisek/masteryengine/internal/ui/components"
	"github.com/abhisek/masteryengine/internal/ui/theme"
)

var examCmd = &cobra.Command{
	Use:   "exam",
	Short: "Take lesson exams",
}

func lessonExam(cmd *cobra.Command, rt *runtime, curriculumID, lessonID string) (*curriculum.Exam, error) {
	c, err := rt.engine.Curriculum(cmd.Context(), curriculumID)
	if err != nil {
		return nil, err
	}
	g := curriculum.NewGraph(c)
	if !g.HasLesson(lessonID) {
		return nil, fmt.Errorf("%w: %q", engine.ErrUnknownLesson, lessonID)
	}
	exam := g.Exam(lessonID)
	if exam == nil {
		return nil, fmt.Errorf("%w: %q (try 'mastery generate exam')", engine.ErrNoExam, lessonID)
	}
	return exam, nil
}

var examShowCmd = &cobra.Command{
	Use:   "show <curriculum> <lesson>",
	Short: "Print the questions of a lesson's exam",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		exam, err := lessonExam(cmd, rt, args[0], args[1])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, theme.Title.Render("Exam "+exam.ID)+
			theme.Subtitle.Render(fmt.Sprintf("  pass mark %d%%", exam.Threshold())))
		if exam.TimeLimit > 0 {
			fmt.Fprintln(out, theme.Subtitle.Render(fmt.Sprintf("time limit %d minutes", exam.TimeLimit)))
		}
		fmt.Fprintln(out)
		for i, q := range exam.Questions {
			fmt.Fprintln(out, components.NewQuestion(i+1, q).View())
		}
		fmt.Fprintln(out, theme.Hint.Render(fmt.Sprintf("Answer with: mastery exam submit %s %s --answer <question>=<option> ...", args[0], args[1])))
		return nil
	},
}

var examSubmitCmd = &cobra.Command{
	Use:   "submit <curriculum> <lesson>",
	Short: "Submit answers for a lesson's exam",
	Long: `Submit answers as question=option pairs, where option is the zero-based
index printed by 'mastery exam show'. Unanswered questions count as wrong.`,
	Example: "  mastery exam submit go-basics l-vars --answer q1=1 --answer q2=1",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		answers, _ := cmd.Flags().GetStringToInt("answer")
		reveal, _ := cmd.Flags().GetBool("reveal")

		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		res, err := rt.engine.SubmitExam(cmd.Context(), args[0], args[1], answers)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if wantJSON(cmd) {
			return printJSON(out, res)
		}

		if reveal {
			exam, err := lessonExam(cmd, rt, args[0], args[1])
			if err != nil {
				return err
			}
			for i, q := range exam.Questions {
				v := components.NewQuestion(i+1, q)
				v.Reveal = true
				if a, ok := answers[q.ID]; ok {
					v.Chosen = a
				}
				fmt.Fprintln(out, v.View())
			}
		}

		summary := fmt.Sprintf("Score %d%%", res.Score)
		if res.Passed {
			fmt.Fprintln(out, theme.Correct.Render(summary+": passed"))
		} else {
			fmt.Fprintln(out, theme.Incorrect.Render(summary+": not passed yet"))
		}
		return nil
	},
}

func init() {
	examSubmitCmd.Flags().StringToIntP("answer", "a", nil, "Answer as question=option (repeatable)")
	examSubmitCmd.Flags().Bool("reveal", false, "Show correct answers after scoring")
	addJSONFlag(examSubmitCmd)

	examCmd.AddCommand(examShowCmd)
	examCmd.AddCommand(examSubmitCmd)
}

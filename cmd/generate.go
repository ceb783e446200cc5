package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/masteryengine/internal/curriculum"
	"github.com/abhisek/masteryengine/internal/generate"
	"github.com/abhisek/masteryengine/internal/llm"
	"github.com/abhisek/masteryengine/internal/ui/theme"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate curricula and exams with a language model",
}

// newGenerator builds an LLM-backed generator from the runtime config.
func newGenerator(ctx context.Context, rt *runtime) (*generate.Generator, error) {
	provider, err := llm.NewProvider(ctx, rt.cfg.LLM, rt.store.EventRepo(), rt.log)
	if err != nil {
		return nil, fmt.Errorf("LLM provider not configured: %w", err)
	}
	cfg := generate.DefaultConfig()
	if rt.cfg.LLM.MaxTokens > 0 {
		cfg.MaxTokens = rt.cfg.LLM.MaxTokens
	}
	rt.log.Debug("using llm provider", zap.String("provider", rt.cfg.LLM.Provider), zap.String("model", provider.ModelID()))
	return generate.New(provider, cfg, rt.log), nil
}

func withLLMTimeout(ctx context.Context, rt *runtime) (context.Context, context.CancelFunc) {
	if rt.cfg.LLM.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, rt.cfg.LLM.Timeout)
}

var generateCurriculumCmd = &cobra.Command{
	Use:   "curriculum <topic>",
	Short: "Generate and import a curriculum",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		level, _ := cmd.Flags().GetString("level")
		domain, _ := cmd.Flags().GetString("domain")
		modules, _ := cmd.Flags().GetInt("modules")
		outPath, _ := cmd.Flags().GetString("out")
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		gen, err := newGenerator(cmd.Context(), rt)
		if err != nil {
			return err
		}
		ctx, cancel := withLLMTimeout(cmd.Context(), rt)
		defer cancel()

		c, err := gen.Curriculum(ctx, generate.CurriculumInput{
			Topic: args[0], Level: level, Domain: domain, Modules: modules,
		})
		if err != nil {
			return err
		}

		if outPath != "" {
			if err := writeCurriculum(outPath, c); err != nil {
				return err
			}
		}
		out := cmd.OutOrStdout()
		if dryRun {
			fmt.Fprint(out, renderStructure(c))
			return nil
		}
		if _, err := rt.engine.Import(cmd.Context(), c); err != nil {
			return err
		}
		fmt.Fprintf(out, "Generated %s (%s): %d modules, %d lessons\n",
			theme.Title.Render(c.Title), c.ID, len(c.Modules), c.LessonCount())
		return nil
	},
}

func writeCurriculum(path string, c *curriculum.Curriculum) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if err := printJSON(f, c); err != nil {
		return err
	}
	return f.Close()
}

var generateExamCmd = &cobra.Command{
	Use:   "exam <curriculum> <lesson>",
	Short: "Generate an exam for a lesson and attach it",
	Args:  cobra.ExactArgs(2),
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
		ref, err := curriculum.NewGraph(c).Lesson(args[1])
		if err != nil {
			return err
		}

		gen, err := newGenerator(cmd.Context(), rt)
		if err != nil {
			return err
		}
		ctx, cancel := withLLMTimeout(cmd.Context(), rt)
		defer cancel()

		exam, err := gen.Exam(ctx, ref.Lesson)
		if err != nil {
			return err
		}
		if err := rt.engine.AttachExam(cmd.Context(), args[0], args[1], exam); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Attached exam %s with %d questions to %s\n", exam.ID, len(exam.Questions), args[1])
		return nil
	},
}

func init() {
	generateCurriculumCmd.Flags().String("level", "", "Learner level, e.g. beginner")
	generateCurriculumCmd.Flags().String("domain", "", "Domain tag stored with the curriculum")
	generateCurriculumCmd.Flags().Int("modules", 0, "Maximum number of modules (0 = model decides)")
	generateCurriculumCmd.Flags().String("out", "", "Also write the generated curriculum to this JSON file")
	generateCurriculumCmd.Flags().Bool("dry-run", false, "Print the curriculum without importing it")

	generateCmd.AddCommand(generateCurriculumCmd)
	generateCmd.AddCommand(generateExamCmd)
}

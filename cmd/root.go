package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/masteryengine/internal/config"
	"github.com/abhisek/masteryengine/internal/engine"
	"github.com/abhisek/masteryengine/internal/logger"
	"github.com/abhisek/masteryengine/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "mastery",
	Short: "Track progress through generated curricula",
	Long: `mastery keeps a learner's progress through modular curricula:
which lessons are unlocked, which exams are passed, what to study next
and how long the daily streak is.`,
	SilenceUsage: true,
}

// ExecuteContext runs the root command.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Config file (default $XDG_CONFIG_HOME/mastery/config.yaml)")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides MASTERY_DB env var)")
	rootCmd.PersistentFlags().String("user", "", "Learner ID (overrides MASTERY_USER env var)")

	rootCmd.AddCommand(curriculumCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(nextCmd)
	rootCmd.AddCommand(completeCmd)
	rootCmd.AddCommand(examCmd)
	rootCmd.AddCommand(videoCmd)
	rootCmd.AddCommand(streakCmd)
	rootCmd.AddCommand(roadmapCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// runtime is what a subcommand needs: resolved config, logger, store and
// an engine for the selected user.
type runtime struct {
	cfg    *config.Config
	log    *zap.Logger
	store  *store.Store
	engine *engine.Engine
}

func (r *runtime) Close() {
	r.store.Close()
	_ = r.log.Sync()
}

// loadConfig reads the config file and applies --db and --user.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.DB = p
	}
	if u, _ := cmd.Flags().GetString("user"); u != "" {
		cfg.User = u
	}
	return cfg, nil
}

// openRuntime wires config, logging, the store and the engine.
func openRuntime(cmd *cobra.Command) (*runtime, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	if err := store.EnsureDir(cfg.DB); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}
	st, err := store.Open(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	log.Debug("opened store", zap.String("path", cfg.DB), zap.String("config", cfg.File))

	loc, err := cfg.Location()
	if err != nil {
		st.Close()
		return nil, err
	}

	eng := engine.New(st, cfg.User, engine.WithLogger(log), engine.WithLocation(loc))
	return &runtime{cfg: cfg, log: log, store: st, engine: eng}, nil
}

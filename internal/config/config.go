// Package config loads mastery settings from an optional YAML file,
// MASTERY_* environment variables and built-in defaults, in that
// order of precedence (env wins).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/abhisek/masteryengine/internal/llm"
	"github.com/abhisek/masteryengine/internal/logger"
	"github.com/abhisek/masteryengine/internal/store"
)

// EnvPrefix prefixes every environment override, e.g. MASTERY_LLM_PROVIDER.
const EnvPrefix = "MASTERY"

// DefaultUser is the learner ID used when none is configured.
const DefaultUser = "default"

// Config is the resolved application configuration.
type Config struct {
	DB       string `mapstructure:"db"`
	User     string `mapstructure:"user"`
	Timezone string `mapstructure:"timezone"`

	Log logger.Config `mapstructure:"log"`
	LLM llm.Config    `mapstructure:"llm"`

	// File is the config file that was read, empty when none was found.
	File string `mapstructure:"-"`
}

// Location returns the configured timezone, used to bucket streak days.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone: %w", err)
	}
	return loc, nil
}

func setDefaults(v *viper.Viper, dbPath string) {
	v.SetDefault("db", dbPath)
	v.SetDefault("user", DefaultUser)
	v.SetDefault("timezone", "Local")

	lc := logger.DefaultConfig()
	v.SetDefault("log.level", lc.Level)
	v.SetDefault("log.format", lc.Format)
	v.SetDefault("log.file", lc.File)
	v.SetDefault("log.max_size_mb", lc.MaxSizeMB)
	v.SetDefault("log.max_backups", lc.MaxBackups)
	v.SetDefault("log.max_age_days", lc.MaxAgeDays)
	v.SetDefault("log.compress", lc.Compress)

	// Every key needs a default for AutomaticEnv to see it on Unmarshal.
	d := llm.DefaultConfig()
	v.SetDefault("llm.provider", "")
	v.SetDefault("llm.anthropic.api_key", "")
	v.SetDefault("llm.anthropic.model", d.Anthropic.Model)
	v.SetDefault("llm.openai.api_key", "")
	v.SetDefault("llm.openai.model", d.OpenAI.Model)
	v.SetDefault("llm.openai.base_url", "")
	v.SetDefault("llm.gemini.api_key", "")
	v.SetDefault("llm.gemini.model", d.Gemini.Model)
	v.SetDefault("llm.gemini.base_url", "")
	v.SetDefault("llm.openrouter.api_key", "")
	v.SetDefault("llm.openrouter.model", d.OpenRouter.Model)
	v.SetDefault("llm.openrouter.base_url", "")
	v.SetDefault("llm.retry.max_attempts", d.Retry.MaxAttempts)
	v.SetDefault("llm.retry.initial_wait", d.Retry.InitialWait)
	v.SetDefault("llm.retry.max_wait", d.Retry.MaxWait)
	v.SetDefault("llm.retry.multiplier", d.Retry.Multiplier)
	v.SetDefault("llm.retry.max_tokens_ceiling", d.Retry.MaxTokensCeiling)
	v.SetDefault("llm.timeout", d.Timeout)
	v.SetDefault("llm.max_tokens", d.MaxTokens)
}

// DefaultConfigFile returns $XDG_CONFIG_HOME/mastery/config.yaml, falling
// back to ~/.config/mastery/config.yaml.
func DefaultConfigFile() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "mastery", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "mastery", "config.yaml")
}

// Load resolves the configuration. An explicit path must exist; when path
// is empty the default config file is read if present.
//
// When no LLM provider is configured, the vendors' standard API key
// variables (GEMINI_API_KEY, OPENAI_API_KEY, ...) are checked.
func Load(path string) (*Config, error) {
	dbPath, err := store.DefaultDBPath()
	if err != nil {
		return nil, fmt.Errorf("default database path: %w", err)
	}

	v := viper.New()
	setDefaults(v, dbPath)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigType("yaml")
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile()
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			switch {
			case explicit:
				return nil, fmt.Errorf("read config %s: %w", path, err)
			case errors.As(err, &notFound), errors.Is(err, os.ErrNotExist):
			default:
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()
	if _, statErr := os.Stat(cfg.File); statErr != nil {
		cfg.File = ""
	}

	if cfg.LLM.Provider == "" {
		discovered, ok := llm.DiscoverConfig(cfg.LLM)
		if ok {
			cfg.LLM = discovered
		} else {
			cfg.LLM.Provider = llm.ProviderAnthropic
		}
	}

	if cfg.User == "" {
		return nil, errors.New("user must not be empty")
	}
	if _, err := cfg.Location(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Package config holds the YAML-backed configuration for the feedback
// server and UI, with environment overrides applied on load.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the unified configuration for both the MCP server and the
// interactive UI child process.
type Config struct {
	Enhancement EnhancementConfig `yaml:"enhancement"`
	Images      ImagesConfig      `yaml:"images"`
	History     HistoryConfig     `yaml:"history"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// EnhancementConfig configures the prompt-rewrite capability.
type EnhancementConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// ImagesConfig controls image attachment collection. Enabled is an explicit
// configuration value, not a process-wide constant; the UI additionally
// honors a --disable-image-upload override.
type ImagesConfig struct {
	Enabled  bool `yaml:"enabled"`
	MaxCount int  `yaml:"max_count"`
}

// HistoryConfig controls the optional SQLite feedback history.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// LoggingConfig controls the zap file logger. Stdout carries the MCP
// protocol, so logs never go there.
type LoggingConfig struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

// DefaultConfig returns the baseline configuration.
func DefaultConfig() Config {
	base := baseDir()
	return Config{
		Enhancement: EnhancementConfig{
			Model: "gemini-2.0-flash",
		},
		Images: ImagesConfig{
			Enabled:  true,
			MaxCount: 10,
		},
		History: HistoryConfig{
			Enabled: false,
			Path:    filepath.Join(base, "history.db"),
		},
		Logging: LoggingConfig{
			Path:  filepath.Join(base, "feedback.log"),
			Level: "info",
		},
	}
}

// DefaultConfigPath returns the conventional config file location.
func DefaultConfigPath() string {
	return filepath.Join(baseDir(), "config.yaml")
}

func baseDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".feedback"
	}
	return filepath.Join(home, ".feedback")
}

// Load reads the config at path, falling back to defaults when the file
// does not exist. Environment overrides are applied either way.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return cfg, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the config to path, creating parent directories as needed.
func (c Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides lets the environment win over the file, matching how
// the original deployment passed its credential.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.Enhancement.APIKey = key
	}
	if model := os.Getenv("FEEDBACK_MODEL"); model != "" {
		c.Enhancement.Model = model
	}
	if os.Getenv("FEEDBACK_DISABLE_IMAGES") == "1" {
		c.Images.Enabled = false
	}
}

// Validate checks invariants that would otherwise surface as confusing
// runtime failures.
func (c Config) Validate() error {
	if c.Enhancement.Model == "" {
		return fmt.Errorf("enhancement.model must not be empty")
	}
	if c.Images.MaxCount < 0 {
		return fmt.Errorf("images.max_count must be >= 0 (0 means unlimited)")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is not one of debug/info/warn/error", c.Logging.Level)
	}
	return nil
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"media-trimmer/domain/video"
)

// DefaultPath is where the CLI looks for configuration when --config is not given
const DefaultPath = "config/config.yaml"

// Config represents the complete application configuration
type Config struct {
	Engine   EngineConfig   `yaml:"engine"`
	Output   OutputConfig   `yaml:"output"`
	Trim     TrimConfig     `yaml:"trim"`
	Progress ProgressConfig `yaml:"progress"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// EngineConfig locates the media engine binaries and its scratch space
type EngineConfig struct {
	FFmpegPath    string        `yaml:"ffmpeg_path"`
	WorkspaceRoot string        `yaml:"workspace_root"`
	LoadTimeout   time.Duration `yaml:"load_timeout"`
	ProbeDuration bool          `yaml:"probe_duration"`
}

// OutputConfig contains where trimmed files are delivered
type OutputConfig struct {
	Directory string `yaml:"directory"`
}

// TrimConfig holds the range offered before the user chooses one
type TrimConfig struct {
	DefaultStart string `yaml:"default_start"`
	DefaultEnd   string `yaml:"default_end"`
}

// ProgressConfig tunes the simulated progress indicator
type ProgressConfig struct {
	Interval time.Duration `yaml:"interval"`
	MaxStep  int           `yaml:"max_step"`
}

// LoggingConfig selects log verbosity and encoding
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns a configuration that works without a config file
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			FFmpegPath:    "ffmpeg",
			LoadTimeout:   10 * time.Second,
			ProbeDuration: true,
		},
		Output: OutputConfig{
			Directory: ".",
		},
		Trim: TrimConfig{
			DefaultStart: video.DefaultStart,
			DefaultEnd:   video.DefaultEnd,
		},
		Progress: ProgressConfig{
			Interval: 500 * time.Millisecond,
			MaxStep:  10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads and parses the configuration from the specified YAML file.
// Fields the file leaves out keep their Default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return cfg, nil
}

// LoadOrDefault is Load, except a missing file yields Default and found=false
func LoadOrDefault(path string) (cfg *Config, found bool, err error) {
	cfg, err = Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return cfg, true, nil
}

// Save writes the configuration to the specified YAML file
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks values that would otherwise fail much later
func (c *Config) Validate() error {
	if c.Engine.FFmpegPath == "" {
		return fmt.Errorf("engine.ffmpeg_path is required")
	}
	if c.Engine.LoadTimeout < 0 {
		return fmt.Errorf("engine.load_timeout must not be negative")
	}
	if c.Output.Directory == "" {
		return fmt.Errorf("output.directory is required")
	}
	if _, err := video.ParseTimeRange(c.Trim.DefaultStart, c.Trim.DefaultEnd); err != nil {
		return fmt.Errorf("trim defaults: %w", err)
	}
	if c.Progress.Interval <= 0 {
		return fmt.Errorf("progress.interval must be positive")
	}
	if c.Progress.MaxStep < 1 {
		return fmt.Errorf("progress.max_step must be at least 1")
	}
	return nil
}

package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"media-trimmer/domain/video"
	"media-trimmer/infrastructure/config"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/spf13/cobra"
)

// Prompter interface for interactive prompts (allows mocking in tests)
type Prompter interface {
	Input(message string, defaultValue string) (string, error)
	Confirm(message string, defaultValue bool) (bool, error)
}

// SurveyPrompter implements Prompter using the survey library
type SurveyPrompter struct{}

func (p *SurveyPrompter) Input(message string, defaultValue string) (string, error) {
	result := ""
	prompt := &survey.Input{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return "", err
	}
	return result, nil
}

func (p *SurveyPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	result := defaultValue
	prompt := &survey.Confirm{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return false, err
	}
	return result, nil
}

// DefaultPrompter is the prompter used in production
var DefaultPrompter Prompter = &SurveyPrompter{}

// errPromptCancelled is returned when the user aborts a prompt (Ctrl+C)
var errPromptCancelled = errors.New("prompt cancelled")

func promptErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return errPromptCancelled
	}
	return fmt.Errorf("%w: %v", errPromptCancelled, err)
}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create configuration file interactively",
	Long: `Prompts for configuration values and creates config.yaml.

This command guides you through locating ffmpeg, choosing where trimmed
clips are saved, and picking the default trim range.`,
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	return RunSetupWithPrompter(DefaultPrompter, cfgFile, os.Stdout)
}

// RunSetupWithPrompter runs the setup with a given prompter (for testing)
func RunSetupWithPrompter(prompter Prompter, configPath string, out OutputWriter) error {
	if configPath == "" {
		configPath = config.DefaultPath
	}

	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil {
		overwrite, err := prompter.Confirm("config.yaml already exists. Overwrite?", false)
		if err != nil {
			return promptErr(err)
		}
		if !overwrite {
			fmt.Fprintln(out, "Setup cancelled.")
			return nil
		}
	}

	fmt.Fprintln(out, "Welcome to media-trimmer setup!")
	fmt.Fprintln(out)

	cfg := config.Default()

	if err := promptEngine(prompter, cfg); err != nil {
		return err
	}
	if err := promptOutput(prompter, cfg); err != nil {
		return err
	}
	if err := promptTrimDefaults(prompter, cfg); err != nil {
		return err
	}
	if err := promptLogging(prompter, cfg); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Ensure config directory exists
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := config.Save(cfg, configPath); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Configuration saved to %s\n", configPath)
	return nil
}

func promptEngine(prompter Prompter, cfg *config.Config) error {
	ffmpegPath, err := prompter.Input("Path to the ffmpeg binary?", cfg.Engine.FFmpegPath)
	if err != nil {
		return promptErr(err)
	}
	if ffmpegPath != "" {
		cfg.Engine.FFmpegPath = ffmpegPath
	}

	probe, err := prompter.Confirm("Check clip length with ffprobe (from PATH) before trimming?", cfg.Engine.ProbeDuration)
	if err != nil {
		return promptErr(err)
	}
	cfg.Engine.ProbeDuration = probe
	return nil
}

func promptOutput(prompter Prompter, cfg *config.Config) error {
	dir, err := prompter.Input("Where should trimmed videos go?", cfg.Output.Directory)
	if err != nil {
		return promptErr(err)
	}
	if dir == "" {
		return fmt.Errorf("output directory is required")
	}
	cfg.Output.Directory = dir
	return nil
}

func promptTrimDefaults(prompter Prompter, cfg *config.Config) error {
	start, end, err := promptRange(prompter, cfg.Trim.DefaultStart, cfg.Trim.DefaultEnd)
	if err != nil {
		return err
	}
	if _, err := video.ParseTimeRange(start, end); err != nil {
		return err
	}
	cfg.Trim.DefaultStart = start
	cfg.Trim.DefaultEnd = end
	return nil
}

func promptLogging(prompter Prompter, cfg *config.Config) error {
	level, err := prompter.Input("Log level (debug, info, warn, error)?", cfg.Logging.Level)
	if err != nil {
		return promptErr(err)
	}
	switch level {
	case "":
	case "debug", "info", "warn", "error":
		cfg.Logging.Level = level
	default:
		return fmt.Errorf("unknown log level %q", level)
	}
	return nil
}

// promptRange asks for a start and end time, offering the given values as
// defaults. An empty answer keeps the default.
func promptRange(prompter Prompter, start, end string) (string, string, error) {
	s, err := prompter.Input("Start time (HH:MM:SS)?", start)
	if err != nil {
		return "", "", promptErr(err)
	}
	if s == "" {
		s = start
	}

	e, err := prompter.Input("End time (HH:MM:SS)?", end)
	if err != nil {
		return "", "", promptErr(err)
	}
	if e == "" {
		e = end
	}
	return s, e, nil
}

package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"media-trimmer/infrastructure/config"

	"github.com/spf13/cobra"
)

// DefaultOutput is the default output writer for config commands
var DefaultOutput OutputWriter = os.Stdout

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the configuration",
	Long: `Inspect the configuration file.

Examples:
  media-trimmer config show
  media-trimmer config validate --config ./my-config.yaml`,
}

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
}

// --- SHOW command ---

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long: `Print every configuration value in effect, including defaults for
values the file leaves out.`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := GetConfig()
	if err != nil {
		return err
	}
	return RunConfigShowWithDependencies(cfg, cfgFile, cfgFound, DefaultOutput)
}

// RunConfigShowWithDependencies runs the show command with injected dependencies
func RunConfigShowWithDependencies(cfg *config.Config, configPath string, found bool, out OutputWriter) error {
	if found {
		fmt.Fprintf(out, "Config file: %s\n\n", configPath)
	} else {
		fmt.Fprintf(out, "Config file: %s (not found, using defaults)\n\n", configPath)
	}

	workspace := cfg.Engine.WorkspaceRoot
	if workspace == "" {
		workspace = os.TempDir()
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tVALUE")
	fmt.Fprintf(w, "engine.ffmpeg_path\t%s\n", cfg.Engine.FFmpegPath)
	fmt.Fprintf(w, "engine.workspace_root\t%s\n", workspace)
	fmt.Fprintf(w, "engine.load_timeout\t%s\n", cfg.Engine.LoadTimeout)
	fmt.Fprintf(w, "engine.probe_duration\t%t\n", cfg.Engine.ProbeDuration)
	fmt.Fprintf(w, "output.directory\t%s\n", cfg.Output.Directory)
	fmt.Fprintf(w, "trim.default_start\t%s\n", cfg.Trim.DefaultStart)
	fmt.Fprintf(w, "trim.default_end\t%s\n", cfg.Trim.DefaultEnd)
	fmt.Fprintf(w, "progress.interval\t%s\n", cfg.Progress.Interval)
	fmt.Fprintf(w, "progress.max_step\t%d\n", cfg.Progress.MaxStep)
	fmt.Fprintf(w, "logging.level\t%s\n", cfg.Logging.Level)
	fmt.Fprintf(w, "logging.format\t%s\n", cfg.Logging.Format)
	return w.Flush()
}

// --- VALIDATE command ---

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration file for errors",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunConfigValidateWithDependencies(cfgFile, DefaultOutput)
	},
}

// RunConfigValidateWithDependencies loads configPath strictly, without falling
// back to defaults
func RunConfigValidateWithDependencies(configPath string, out OutputWriter) error {
	if _, err := config.Load(configPath); err != nil {
		return err
	}
	fmt.Fprintf(out, "%s is valid\n", configPath)
	return nil
}

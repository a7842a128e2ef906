package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"media-trimmer/domain/engine"
	"media-trimmer/infrastructure/config"
	"media-trimmer/infrastructure/ffmpeg"

	"github.com/spf13/cobra"
)

// ErrDoctorFailed is returned when at least one check fails
var ErrDoctorFailed = errors.New("one or more checks failed")

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that the media engine can be loaded",
	Long: `Load the media engine the same way trim does and report whether the
tool is ready to trim. Also checks the output directory and, when length
probing is enabled, that ffprobe can be found.`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cfg, err := GetConfig()
	if err != nil {
		return err
	}

	eng := newEngine(cfg)
	defer eng.Close()

	return RunDoctorWithDependencies(cmd.Context(), eng, cfg, ffmpeg.NewProber().Locate, os.Stdout)
}

// RunDoctorWithDependencies runs the doctor checks with injected dependencies.
// locateProbe returns the ffprobe executable the length check would use.
func RunDoctorWithDependencies(
	ctx context.Context,
	eng engine.Engine,
	cfg *config.Config,
	locateProbe func(context.Context) (string, error),
	output OutputWriter,
) error {
	if ctx == nil {
		ctx = context.Background()
	}
	failed := false

	if err := eng.Load(ctx); err != nil {
		fmt.Fprintf(output, "[FAIL] engine: %v\n", err)
		failed = true
	} else {
		fmt.Fprintf(output, "[ OK ] engine: %s\n", eng.State())
	}

	if cfg.Engine.ProbeDuration {
		if path, err := locateProbe(ctx); err != nil {
			fmt.Fprintf(output, "[WARN] ffprobe: %v (clip length will not be checked)\n", err)
		} else {
			fmt.Fprintf(output, "[ OK ] ffprobe: %s\n", path)
		}
	}

	info, err := os.Stat(cfg.Output.Directory)
	switch {
	case errors.Is(err, os.ErrNotExist):
		fmt.Fprintf(output, "[ OK ] output: %s (will be created)\n", cfg.Output.Directory)
	case err != nil:
		fmt.Fprintf(output, "[FAIL] output: %v\n", err)
		failed = true
	case !info.IsDir():
		fmt.Fprintf(output, "[FAIL] output: %s is not a directory\n", cfg.Output.Directory)
		failed = true
	default:
		fmt.Fprintf(output, "[ OK ] output: %s\n", cfg.Output.Directory)
	}

	if failed {
		return ErrDoctorFailed
	}
	fmt.Fprintln(output, "Ready to trim.")
	return nil
}

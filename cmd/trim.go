package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	apptrim "media-trimmer/application/trim"
	"media-trimmer/domain/video"
	"media-trimmer/infrastructure/config"
	"media-trimmer/infrastructure/ffmpeg"
	"media-trimmer/infrastructure/filesystem"
	"media-trimmer/infrastructure/logging"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	trimSourcePath  string
	trimStartTime   string
	trimEndTime     string
	trimInteractive bool
)

var trimCmd = &cobra.Command{
	Use:   "trim",
	Short: "Trim a video to the given start and end time",
	Long: `Cut the range between --start and --end out of a video by stream copy.

The clip is written as trimmed_<source name> in the configured output
directory. An existing file is kept and the new clip gets a " (1)", " (2)"...
suffix instead. Omitted times fall back to the configured defaults, or are
asked for when --interactive is set.

Because nothing is re-encoded the cut snaps to the nearest keyframe, so the
clip may start slightly before the requested time.

Example:
  media-trimmer trim --source clip.mov --start 00:00:02 --end 00:00:07`,
	RunE: runTrim,
}

func init() {
	rootCmd.AddCommand(trimCmd)
	trimCmd.Flags().StringVar(&trimSourcePath, "source", "", "Path to source video file (required)")
	trimCmd.Flags().StringVar(&trimStartTime, "start", "", "Start timestamp in HH:MM:SS format")
	trimCmd.Flags().StringVar(&trimEndTime, "end", "", "End timestamp in HH:MM:SS format")
	trimCmd.Flags().BoolVarP(&trimInteractive, "interactive", "i", false, "Prompt for start and end times")
	trimCmd.MarkFlagRequired("source")
}

func runTrim(cmd *cobra.Command, args []string) error {
	cfg, err := GetConfig()
	if err != nil {
		return err
	}
	log := GetLogger()

	eng := newEngine(cfg)
	defer func() {
		if err := eng.Close(); err != nil {
			log.Warn("failed to clean engine workspace", "error", err)
		}
	}()

	session := apptrim.NewSession(eng, newTrimService(cfg, eng), cfg.Trim.DefaultStart, cfg.Trim.DefaultEnd)

	start, end := trimStartTime, trimEndTime
	if trimInteractive {
		defStart, defEnd := session.Range()
		if start != "" {
			defStart = start
		}
		if end != "" {
			defEnd = end
		}
		start, end, err = promptRange(DefaultPrompter, defStart, defEnd)
		if err != nil {
			return err
		}
	}

	return RunTrimWithDependencies(
		cmd.Context(),
		session,
		filesystem.NewMediaLoader(filesystem.NewChecker()),
		trimSourcePath,
		start,
		end,
		os.Stdout,
	)
}

func newEngine(cfg *config.Config) *ffmpeg.Engine {
	return ffmpeg.NewEngine(
		ffmpeg.WithFFmpegPath(cfg.Engine.FFmpegPath),
		ffmpeg.WithWorkspaceRoot(cfg.Engine.WorkspaceRoot),
		ffmpeg.WithLoadTimeout(cfg.Engine.LoadTimeout),
		ffmpeg.WithLogger(logging.WithComponent(GetLogger(), "engine")),
	)
}

func newTrimService(cfg *config.Config, eng *ffmpeg.Engine) *apptrim.Service {
	opts := []apptrim.Option{
		apptrim.WithLogger(GetLogger()),
		apptrim.WithProgress(apptrim.ProgressConfig{
			Interval: cfg.Progress.Interval,
			MaxStep:  cfg.Progress.MaxStep,
		}),
	}
	if cfg.Engine.ProbeDuration {
		prober := ffmpeg.NewProber()
		opts = append(opts, apptrim.WithProber(prober))
	}
	return apptrim.NewService(eng, filesystem.NewSaver(cfg.Output.Directory), opts...)
}

// OutputWriter allows capturing output in tests
type OutputWriter interface {
	Write(p []byte) (n int, err error)
}

// RunTrimWithDependencies runs the trim command with injected dependencies (for testing).
// Empty start or end keep the session's current value.
func RunTrimWithDependencies(
	ctx context.Context,
	session *apptrim.Session,
	loader video.MediaLoader,
	sourcePath string,
	startTime string,
	endTime string,
	output OutputWriter,
) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// The engine loads while the source is inspected
	session.Start(ctx)

	file, err := loader.Load(sourcePath)
	if err != nil {
		return err
	}
	if err := file.RequireVideo(); err != nil {
		fmt.Fprintf(output, "Warning: %v\n", err)
	}
	session.Select(file)

	start, end := session.Range()
	if startTime != "" {
		start = startTime
	}
	if endTime != "" {
		end = endTime
	}
	session.SetRange(start, end)

	if err := session.WaitReady(ctx); err != nil {
		return fmt.Errorf("media engine unavailable: %w", err)
	}

	fmt.Fprintf(output, "Trimming %s (%s) from %s to %s...\n", file.Name, humanize.Bytes(uint64(file.Size)), start, end)

	result, err := session.Trim(ctx, progressPrinter(output))
	if err != nil {
		if job := session.LastJob(); job != nil && job.Stage == video.StageErrored {
			fmt.Fprintf(output, "Job %s failed (see logs with job_id=%s)\n", job.ID, job.ID)
		}
		return err
	}

	fmt.Fprintf(output, "Successfully created: %s (%s in %s)\n",
		result.OutputPath,
		humanize.Bytes(uint64(len(result.Artifact.Data))),
		result.Elapsed.Round(time.Millisecond),
	)
	return nil
}

// progressPrinter reports stage changes and every 25% of progress while the
// job runs, plus the final done line
func progressPrinter(output OutputWriter) apptrim.ProgressFunc {
	var lastStage video.Stage
	lastBucket := -1
	return func(u apptrim.Update) {
		if !u.Stage.InFlight() && u.Stage != video.StageDone {
			return
		}
		bucket := u.Progress / 25
		if u.Stage == lastStage && bucket == lastBucket {
			return
		}
		lastStage, lastBucket = u.Stage, bucket
		fmt.Fprintf(output, "  %-10s %3d%%\n", u.Stage, u.Progress)
	}
}

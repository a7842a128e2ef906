// Package trim runs the trim workflow: stage a selected file into the engine's
// workspace, stream-copy the requested range, read the clip back and hand it to
// the user as a download.
package trim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"media-trimmer/domain/engine"
	"media-trimmer/domain/video"
	"media-trimmer/infrastructure/logging"
)

// ErrBusy is returned when a trim is triggered while another is still running
var ErrBusy = errors.New("a trim is already in progress")

// Input represents the input for a trim operation
type Input struct {
	File      *video.MediaFile
	StartTime string // HH:MM:SS
	EndTime   string // HH:MM:SS
}

// Result contains the result of a trim operation
type Result struct {
	JobID      string
	OutputPath string
	Artifact   *video.Artifact
	Range      video.TimeRange
	Elapsed    time.Duration
}

// Service coordinates trim jobs against a single engine. At most one job runs
// at a time.
type Service struct {
	engine   engine.Engine
	saver    video.Saver
	prober   video.Prober
	logger   *slog.Logger
	progress ProgressConfig
	newID    func() string
	rnd      func(int) int

	busy atomic.Bool

	mu   sync.Mutex
	last *video.TrimJob
}

// Option is a functional option for configuring Service
type Option func(*Service)

// WithProber enables the media-length check before staging
func WithProber(p video.Prober) Option {
	return func(s *Service) {
		s.prober = p
	}
}

// WithLogger sets the structured logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithProgress tunes the simulated progress indicator
func WithProgress(cfg ProgressConfig) Option {
	return func(s *Service) {
		if cfg.Interval > 0 {
			s.progress.Interval = cfg.Interval
		}
		if cfg.MaxStep > 0 {
			s.progress.MaxStep = cfg.MaxStep
		}
	}
}

// WithIDGenerator replaces uuid job ids (for testing)
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) {
		s.newID = gen
	}
}

// WithRandom replaces the progress increment source (for testing)
func WithRandom(rnd func(n int) int) Option {
	return func(s *Service) {
		s.rnd = rnd
	}
}

// NewService creates a new trim Service
func NewService(eng engine.Engine, saver video.Saver, opts ...Option) *Service {
	s := &Service{
		engine:   eng,
		saver:    saver,
		logger:   logging.Discard(),
		progress: DefaultProgressConfig(),
		newID:    uuid.NewString,
		rnd:      defaultRandom,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.logger = logging.WithComponent(s.logger, "trim")
	return s
}

// Busy reports whether a job is between Staging and Finalizing
func (s *Service) Busy() bool {
	return s.busy.Load()
}

// LastJob returns a copy of the most recent job, or nil before the first one
func (s *Service) LastJob() *video.TrimJob {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return nil
	}
	job := *s.last
	return &job
}

// Trim runs one job to completion. Invalid input is rejected before the engine
// is touched; a job that reached the engine always has its workspace entries
// removed afterwards, whatever the outcome.
func (s *Service) Trim(ctx context.Context, input Input, onProgress ProgressFunc) (*Result, error) {
	if input.File == nil {
		return nil, video.ErrNoFile
	}

	r, err := video.ParseTimeRange(input.StartTime, input.EndTime)
	if err != nil {
		return nil, err
	}

	if !s.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer s.busy.Store(false)

	job := video.NewTrimJob(s.newID(), input.File, r)
	view := *job
	s.mu.Lock()
	s.last = &view
	s.mu.Unlock()

	// the tracker owns job; LastJob reads the view, kept in step here
	t := newTracker(job, func(u Update) {
		s.mu.Lock()
		view.Stage, view.Progress, view.Err = u.Stage, u.Progress, u.Err
		s.mu.Unlock()
		if onProgress != nil {
			onProgress(u)
		}
	})
	log := logging.WithJobID(s.logger, job.ID)
	log.Info("trim requested",
		"file", input.File.Name,
		"size", input.File.Size,
		"start", r.Start.String(),
		"end", r.End.String(),
		"duration", r.Duration())

	artifact, path, err := s.run(ctx, job, t, log)
	if err != nil {
		t.fail(err)
		log.Error("trim failed", "stage", failedStage(err), "error", err)
		return nil, err
	}

	t.complete()
	elapsed := time.Since(job.StartedAt)
	log.Info("trim finished", "output", logging.SanitizePath(path), "bytes", len(artifact.Data), "elapsed", elapsed)

	return &Result{
		JobID:      job.ID,
		OutputPath: path,
		Artifact:   artifact,
		Range:      r,
		Elapsed:    elapsed,
	}, nil
}

func (s *Service) run(ctx context.Context, job *video.TrimJob, t *tracker, log *slog.Logger) (*video.Artifact, string, error) {
	if err := s.checkMediaLength(ctx, job, log); err != nil {
		return nil, "", stageError(video.StageIdle, err)
	}

	if !s.engine.IsReady() {
		log.Info("engine not ready, loading", "state", s.engine.State().String())
		if err := s.engine.Load(ctx); err != nil {
			return nil, "", stageError(video.StageIdle, err)
		}
	}

	t.stage(video.StageStaging)
	defer s.cleanup(log)

	data, err := job.File.ReadAll()
	if err != nil {
		return nil, "", stageError(video.StageStaging, err)
	}
	if err := s.engine.WriteFile(video.InputName, data); err != nil {
		return nil, "", stageError(video.StageStaging, err)
	}
	log.Debug("staged input", "bytes", len(data))

	t.stage(video.StageProcessing)
	stop := simulate(ctx, s.progress, s.rnd, t)
	err = s.engine.Run(ctx, job.Command()...)
	stop()
	if err != nil {
		return nil, "", stageError(video.StageProcessing, err)
	}

	t.stage(video.StageFinalizing)
	out, err := s.engine.ReadFile(video.OutputName)
	if err != nil {
		return nil, "", stageError(video.StageFinalizing, err)
	}

	artifact := video.NewArtifact(job.File, out)
	path, err := s.saver.Save(ctx, artifact)
	if err != nil {
		return nil, "", stageError(video.StageFinalizing, err)
	}

	return artifact, path, nil
}

// checkMediaLength refuses ranges that start past the end of the media. Probe
// failures only warn: the engine gets the final say.
func (s *Service) checkMediaLength(ctx context.Context, job *video.TrimJob, log *slog.Logger) error {
	if s.prober == nil || job.File.Path == "" {
		return nil
	}

	length, err := s.prober.Probe(ctx, job.File.Path)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Warn("could not probe media length", "error", err)
		return nil
	}

	if job.Range.Start.Duration() >= length {
		return fmt.Errorf("%w: start %s, media length %s",
			video.ErrRangeOutsideMedia, job.Range.Start, video.TimestampFromSeconds(int(length/time.Second)))
	}
	if job.Range.End.Duration() > length {
		log.Info("range ends past media end, clip will be shorter", "end", job.Range.End.String(), "length", length)
	}
	return nil
}

// cleanup removes both workspace entries so repeated jobs do not accumulate
// files. Failures are logged and never replace the job's own error.
func (s *Service) cleanup(log *slog.Logger) {
	for _, name := range []string{video.InputName, video.OutputName} {
		if err := s.engine.RemoveFile(name); err != nil {
			log.Warn("failed to remove workspace entry", "name", name, "error", err)
		}
	}
}

// StageError records which workflow stage a failure happened in
type StageError struct {
	Stage video.Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("trim failed during %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func stageError(stage video.Stage, err error) error {
	return &StageError{Stage: stage, Err: err}
}

func failedStage(err error) video.Stage {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return video.StageIdle
}

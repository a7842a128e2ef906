package trim

import (
	"context"
	"errors"
	"sync"

	"media-trimmer/domain/engine"
	"media-trimmer/domain/video"
)

// Session is the state behind the trimmer's controls: the selected file, the
// range fields, engine readiness and whether the trim action is enabled.
type Session struct {
	engine       engine.Engine
	service      *Service
	defaultStart string
	defaultEnd   string

	startOnce sync.Once
	loaded    chan struct{}

	mu      sync.Mutex
	file    *video.MediaFile
	start   string
	end     string
	loadErr error
}

// NewSession creates a session with the range fields set to the defaults.
// Empty defaults fall back to 00:00:00 and 00:00:10.
func NewSession(eng engine.Engine, service *Service, defaultStart, defaultEnd string) *Session {
	if defaultStart == "" {
		defaultStart = video.DefaultStart
	}
	if defaultEnd == "" {
		defaultEnd = video.DefaultEnd
	}
	return &Session{
		engine:       eng,
		service:      service,
		defaultStart: defaultStart,
		defaultEnd:   defaultEnd,
		loaded:       make(chan struct{}),
		start:        defaultStart,
		end:          defaultEnd,
	}
}

// Start begins loading the engine in the background. Later calls do nothing.
// The load outlives ctx; only an engine initialization failure is recorded.
func (s *Session) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		go func() {
			err := s.engine.Load(context.WithoutCancel(ctx))
			if errors.Is(err, engine.ErrLoadFailed) {
				s.mu.Lock()
				s.loadErr = err
				s.mu.Unlock()
			}
			close(s.loaded)
		}()
	})
}

// WaitReady blocks until the background load started by Start finishes
func (s *Session) WaitReady(ctx context.Context) error {
	select {
	case <-s.loaded:
		return s.LoadErr()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LoadErr returns the engine initialization failure, if any. A non-nil value
// is a blocking error: the session cannot trim.
func (s *Session) LoadErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadErr
}

// Select replaces the current selection. nil clears it.
func (s *Session) Select(file *video.MediaFile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.file = file
}

// Drop selects file only if it is a video. Anything else is rejected and the
// current selection is kept.
func (s *Session) Drop(file *video.MediaFile) error {
	if file == nil {
		return video.ErrNoFile
	}
	if err := file.RequireVideo(); err != nil {
		return err
	}
	s.Select(file)
	return nil
}

// Selection returns the selected file or nil
func (s *Session) Selection() *video.MediaFile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file
}

// SetRange stores the range fields as typed; they are validated on Trim
func (s *Session) SetRange(start, end string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.start, s.end = start, end
}

// Range returns the current range fields
func (s *Session) Range() (start, end string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.start, s.end
}

// CanTrim reports whether the trim action is enabled. It is disabled when no
// file is selected, when the engine is not ready or failed to load, and while
// a job runs.
func (s *Session) CanTrim() bool {
	if s.Selection() == nil || s.LoadErr() != nil {
		return false
	}
	if !s.engine.IsReady() {
		return false
	}
	return !s.service.Busy()
}

// Trim runs the workflow on the current selection and range
func (s *Session) Trim(ctx context.Context, onProgress ProgressFunc) (*Result, error) {
	if err := s.LoadErr(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	input := Input{File: s.file, StartTime: s.start, EndTime: s.end}
	s.mu.Unlock()

	return s.service.Trim(ctx, input, onProgress)
}

// LastJob returns a snapshot of the most recent job, or nil before the first
func (s *Session) LastJob() *video.TrimJob {
	return s.service.LastJob()
}

// Reset clears the selection and restores the default range
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.file = nil
	s.start, s.end = s.defaultStart, s.defaultEnd
}

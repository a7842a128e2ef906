package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"media-trimmer/domain/engine"
)

// DefaultLoadTimeout bounds the binary check performed by Load
const DefaultLoadTimeout = 10 * time.Second

// Engine implements engine.Engine on top of a local ffmpeg binary. Its virtual
// filesystem is a private temp directory created on Load; commands run with that
// directory as working directory so relative names resolve inside it.
type Engine struct {
	ffmpegPath    string
	workspaceRoot string
	loadTimeout   time.Duration
	runner        CommandRunner
	logger        *slog.Logger

	mu        sync.Mutex
	state     engine.State
	loading   chan struct{}
	loadErr   error
	workspace string
}

// EngineOption is a functional option for configuring Engine
type EngineOption func(*Engine)

// WithFFmpegPath sets a custom ffmpeg executable path
func WithFFmpegPath(path string) EngineOption {
	return func(e *Engine) {
		if path != "" {
			e.ffmpegPath = path
		}
	}
}

// WithCommandRunner sets a custom command runner (for testing)
func WithCommandRunner(runner CommandRunner) EngineOption {
	return func(e *Engine) {
		e.runner = runner
	}
}

// WithWorkspaceRoot sets the directory the scratch workspace is created under.
// Empty means the system temp directory.
func WithWorkspaceRoot(dir string) EngineOption {
	return func(e *Engine) {
		e.workspaceRoot = dir
	}
}

// WithLoadTimeout bounds the binary verification done by Load
func WithLoadTimeout(d time.Duration) EngineOption {
	return func(e *Engine) {
		if d > 0 {
			e.loadTimeout = d
		}
	}
}

// WithLogger sets the logger used for lifecycle events
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates an unloaded ffmpeg engine
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		ffmpegPath:  "ffmpeg",
		loadTimeout: DefaultLoadTimeout,
		runner:      &ExecCommandRunner{},
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		state:       engine.StateUninitialized,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Load initializes the engine. The first caller starts initialization in the
// background; every caller, including later ones, waits for that single result.
// A cancelled ctx abandons the wait without affecting the load itself.
func (e *Engine) Load(ctx context.Context) error {
	e.mu.Lock()
	switch e.state {
	case engine.StateReady:
		e.mu.Unlock()
		return nil
	case engine.StateFailed:
		err := e.loadErr
		e.mu.Unlock()
		return err
	case engine.StateUninitialized:
		e.state = engine.StateLoading
		e.loading = make(chan struct{})
		go e.initialize(e.loading)
	}
	done := e.loading
	e.mu.Unlock()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == engine.StateReady {
		return nil
	}
	return e.loadErr
}

func (e *Engine) initialize(done chan struct{}) {
	defer close(done)

	e.logger.Debug("loading engine", "ffmpeg", e.ffmpegPath)
	workspace, err := e.prepare()

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		e.state = engine.StateFailed
		e.loadErr = fmt.Errorf("%w: %w", engine.ErrLoadFailed, err)
		e.logger.Error("engine load failed", "error", err)
		return
	}
	e.workspace = workspace
	e.state = engine.StateReady
	e.logger.Info("engine ready", "workspace", workspace)
}

func (e *Engine) prepare() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), e.loadTimeout)
	defer cancel()

	if err := e.VerifyInstalled(ctx); err != nil {
		return "", err
	}

	if e.workspaceRoot != "" {
		if err := os.MkdirAll(e.workspaceRoot, 0o755); err != nil {
			return "", fmt.Errorf("failed to create workspace root: %w", err)
		}
	}

	dir, err := os.MkdirTemp(e.workspaceRoot, "media-trimmer-")
	if err != nil {
		return "", fmt.Errorf("failed to create workspace: %w", err)
	}
	return dir, nil
}

// VerifyInstalled checks that ffmpeg is available
func (e *Engine) VerifyInstalled(ctx context.Context) error {
	if _, err := e.runner.Output(ctx, e.ffmpegPath, "-version"); err != nil {
		return fmt.Errorf("ffmpeg not found or not executable: %w", err)
	}
	return nil
}

func (e *Engine) IsReady() bool {
	return e.State() == engine.StateReady
}

func (e *Engine) State() engine.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Workspace returns the scratch directory, empty until Ready
func (e *Engine) Workspace() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.workspace
}

// Run executes ffmpeg with args inside the workspace
func (e *Engine) Run(ctx context.Context, args ...string) error {
	ws, err := e.readyWorkspace()
	if err != nil {
		return err
	}

	e.logger.Debug("running engine command", "args", args)
	if err := e.runner.Run(ctx, ws, e.ffmpegPath, args...); err != nil {
		return fmt.Errorf("ffmpeg run failed: %w", err)
	}
	return nil
}

func (e *Engine) WriteFile(name string, data []byte) error {
	path, err := e.entryPath(name)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

func (e *Engine) ReadFile(name string) ([]byte, error) {
	path, err := e.entryPath(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", engine.ErrFileNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}

func (e *Engine) RemoveFile(name string) error {
	path, err := e.entryPath(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", name, err)
	}
	return nil
}

// Close deletes the workspace. The engine returns to Uninitialized and may be
// loaded again. A load in progress is waited for first, so the workspace it
// creates is removed too.
func (e *Engine) Close() error {
	e.mu.Lock()
	for e.state == engine.StateLoading {
		done := e.loading
		e.mu.Unlock()
		<-done
		e.mu.Lock()
	}
	defer e.mu.Unlock()

	ws := e.workspace
	e.workspace = ""
	if e.state == engine.StateReady {
		e.state = engine.StateUninitialized
	}
	if ws == "" {
		return nil
	}
	if err := os.RemoveAll(ws); err != nil {
		return fmt.Errorf("failed to remove workspace: %w", err)
	}
	return nil
}

func (e *Engine) readyWorkspace() (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != engine.StateReady {
		return "", fmt.Errorf("%w (state %s)", engine.ErrNotReady, e.state)
	}
	return e.workspace, nil
}

func (e *Engine) entryPath(name string) (string, error) {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", engine.ErrInvalidName, name)
	}
	ws, err := e.readyWorkspace()
	if err != nil {
		return "", err
	}
	return filepath.Join(ws, name), nil
}

// Ensure Engine implements engine.Engine
var _ engine.Engine = (*Engine)(nil)

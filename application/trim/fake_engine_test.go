package trim

import (
	"context"
	"errors"
	"sync"

	"media-trimmer/domain/engine"
	"media-trimmer/domain/video"
)

// fakeEngine is an in-memory engine.Engine that records every call
type fakeEngine struct {
	mu      sync.Mutex
	state   engine.State
	files   map[string][]byte
	loadErr  error
	loads    int
	loadGate chan struct{} // when set, Load blocks until it is closed or ctx ends

	writes  []writeCall
	runs    [][]string
	reads   []string
	removes []string

	runErr   error
	runGate  chan struct{} // when set, Run blocks until it is closed
	runStart chan struct{} // when set, receives once Run has begun
	output   []byte        // written as output.mp4 when Run succeeds
}

type writeCall struct {
	name string
	size int
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{
		state:  engine.StateUninitialized,
		files:  make(map[string][]byte),
		output: []byte("trimmed clip"),
	}
}

func newReadyEngine() *fakeEngine {
	e := newFakeEngine()
	e.state = engine.StateReady
	return e
}

func (e *fakeEngine) Load(ctx context.Context) error {
	e.mu.Lock()
	gate := e.loadGate
	e.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	switch e.state {
	case engine.StateReady:
		return nil
	case engine.StateFailed:
		return e.loadErr
	}
	e.loads++
	if e.loadErr != nil {
		e.state = engine.StateFailed
		e.loadErr = errors.Join(engine.ErrLoadFailed, e.loadErr)
		return e.loadErr
	}
	e.state = engine.StateReady
	return nil
}

func (e *fakeEngine) IsReady() bool {
	return e.State() == engine.StateReady
}

func (e *fakeEngine) State() engine.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *fakeEngine) Run(ctx context.Context, args ...string) error {
	e.mu.Lock()
	if e.state != engine.StateReady {
		e.mu.Unlock()
		return engine.ErrNotReady
	}
	e.runs = append(e.runs, append([]string(nil), args...))
	gate, started := e.runGate, e.runStart
	e.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.runErr != nil {
		return e.runErr
	}
	if _, ok := e.files[video.InputName]; !ok {
		return errors.New("input.mp4: No such file or directory")
	}
	e.files[video.OutputName] = e.output
	return nil
}

func (e *fakeEngine) WriteFile(name string, data []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != engine.StateReady {
		return engine.ErrNotReady
	}
	e.writes = append(e.writes, writeCall{name: name, size: len(data)})
	e.files[name] = data
	return nil
}

func (e *fakeEngine) ReadFile(name string) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != engine.StateReady {
		return nil, engine.ErrNotReady
	}
	e.reads = append(e.reads, name)
	data, ok := e.files[name]
	if !ok {
		return nil, engine.ErrFileNotFound
	}
	return data, nil
}

func (e *fakeEngine) RemoveFile(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.removes = append(e.removes, name)
	delete(e.files, name)
	return nil
}

func (e *fakeEngine) Close() error {
	return nil
}

func (e *fakeEngine) fileCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.files)
}

func (e *fakeEngine) runCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.runs)
}

// fakeSaver records artifacts instead of writing them
type fakeSaver struct {
	mu        sync.Mutex
	artifacts []*video.Artifact
	err       error
}

func (s *fakeSaver) Save(ctx context.Context, a *video.Artifact) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	s.artifacts = append(s.artifacts, a)
	return "/downloads/" + a.Name, nil
}

var _ engine.Engine = (*fakeEngine)(nil)

// Package engine describes the opaque media-processing capability the trim
// workflow drives: a stateful handle with an asynchronous load, a command runner
// and a private scratch filesystem.
package engine

import (
	"context"
	"errors"
)

// State is the lifecycle position of an Engine
type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

var (
	// ErrNotReady is returned by Run and the file primitives before Load completes
	ErrNotReady = errors.New("engine is not ready")

	// ErrLoadFailed wraps the cause of a failed Load. A failed engine stays failed.
	ErrLoadFailed = errors.New("engine failed to load")

	// ErrInvalidName is returned for workspace names that are not a single flat entry
	ErrInvalidName = errors.New("invalid workspace file name")

	// ErrFileNotFound is returned when reading a workspace entry that does not exist
	ErrFileNotFound = errors.New("workspace file not found")
)

// Engine is the media-processing handle.
//
// Load moves Uninitialized -> Loading -> Ready (or Failed). Concurrent Load
// calls share one initialization, and Load on a Ready engine returns nil. Run
// and the file primitives reject with ErrNotReady rather than waiting.
type Engine interface {
	Load(ctx context.Context) error
	IsReady() bool
	State() State

	// Run executes one command against the workspace
	Run(ctx context.Context, args ...string) error

	WriteFile(name string, data []byte) error
	ReadFile(name string) ([]byte, error)
	// RemoveFile deletes a workspace entry; a missing entry is not an error
	RemoveFile(name string) error

	Close() error
}

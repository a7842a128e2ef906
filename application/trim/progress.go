package trim

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"media-trimmer/domain/video"
)

// SimulatedCap is the highest value the simulated indicator reaches before the
// engine actually finishes
const SimulatedCap = 95

// Update is one observation of a job's stage and progress
type Update struct {
	JobID    string
	Stage    video.Stage
	Progress int
	Err      error
}

// ProgressFunc receives every stage and progress change of a job. Calls are
// serialized.
type ProgressFunc func(Update)

// ProgressConfig tunes the simulated indicator
type ProgressConfig struct {
	Interval time.Duration
	MaxStep  int
}

// DefaultProgressConfig matches the configuration file defaults
func DefaultProgressConfig() ProgressConfig {
	return ProgressConfig{Interval: 500 * time.Millisecond, MaxStep: 10}
}

// tracker owns a job's progress value. It keeps the value monotonic while the
// job runs and forwards every change to the observer.
type tracker struct {
	mu     sync.Mutex
	job    *video.TrimJob
	notify ProgressFunc
}

func newTracker(job *video.TrimJob, notify ProgressFunc) *tracker {
	return &tracker{job: job, notify: notify}
}

func (t *tracker) stage(s video.Stage) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.job.Stage = s
	t.emit()
}

// advance adds delta, never crossing SimulatedCap
func (t *tracker) advance(delta int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	next := t.job.Progress + delta
	if next > SimulatedCap {
		next = SimulatedCap
	}
	if next <= t.job.Progress {
		return
	}
	t.job.Progress = next
	t.emit()
}

func (t *tracker) complete() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.job.Progress = 100
	t.job.Stage = video.StageDone
	t.emit()
}

func (t *tracker) fail(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.job.Progress = 0
	t.job.Stage = video.StageErrored
	t.job.Err = err
	t.emit()
}

func (t *tracker) snapshot() Update {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.update()
}

func (t *tracker) update() Update {
	return Update{JobID: t.job.ID, Stage: t.job.Stage, Progress: t.job.Progress, Err: t.job.Err}
}

func (t *tracker) emit() {
	if t.notify != nil {
		t.notify(t.update())
	}
}

// simulate advances the tracker by a random 1..MaxStep every Interval until
// the returned stop func is called. The engine exposes no real progress, so
// this is decoration only. stop blocks until the ticker goroutine has exited.
func simulate(ctx context.Context, cfg ProgressConfig, rnd func(int) int, t *tracker) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				t.advance(1 + rnd(cfg.MaxStep))
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}
}

func defaultRandom(n int) int {
	return rand.IntN(n)
}

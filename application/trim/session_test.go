package trim

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"media-trimmer/domain/engine"
	"media-trimmer/domain/video"
)

func newTestSession(eng *fakeEngine) (*Session, *Service) {
	svc := newTestService(eng, &fakeSaver{})
	return NewSession(eng, svc, "", ""), svc
}

func TestSession_Defaults(t *testing.T) {
	s, _ := newTestSession(newFakeEngine())

	start, end := s.Range()
	if start != "00:00:00" || end != "00:00:10" {
		t.Errorf("Range() = %q, %q, want 00:00:00, 00:00:10", start, end)
	}
	if s.Selection() != nil {
		t.Error("expected no initial selection")
	}
}

func TestSession_CanTrimGuards(t *testing.T) {
	t.Run("no file selected", func(t *testing.T) {
		s, _ := newTestSession(newReadyEngine())
		if s.CanTrim() {
			t.Error("CanTrim() = true without a selection")
		}
	})

	t.Run("engine not ready", func(t *testing.T) {
		s, _ := newTestSession(newFakeEngine())
		s.Select(clipFile(8))
		if s.CanTrim() {
			t.Error("CanTrim() = true with an unloaded engine")
		}
	})

	t.Run("job in progress", func(t *testing.T) {
		eng := newReadyEngine()
		eng.runGate = make(chan struct{})
		eng.runStart = make(chan struct{}, 1)
		s, _ := newTestSession(eng)
		s.Select(clipFile(8))

		done := make(chan error, 1)
		go func() {
			_, err := s.Trim(context.Background(), nil)
			done <- err
		}()
		<-eng.runStart

		if s.CanTrim() {
			t.Error("CanTrim() = true while a job is in flight")
		}

		close(eng.runGate)
		if err := <-done; err != nil {
			t.Fatalf("Trim() unexpected error: %v", err)
		}
		if !s.CanTrim() {
			t.Error("CanTrim() = false after the job finished")
		}
	})

	t.Run("all conditions met", func(t *testing.T) {
		s, _ := newTestSession(newReadyEngine())
		s.Select(clipFile(8))
		if !s.CanTrim() {
			t.Error("CanTrim() = false with file, ready engine and idle service")
		}
	})
}

func TestSession_StartLoadsEngine(t *testing.T) {
	eng := newFakeEngine()
	s, _ := newTestSession(eng)

	s.Start(context.Background())
	s.Start(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.WaitReady(ctx); err != nil {
		t.Fatalf("WaitReady() unexpected error: %v", err)
	}
	if eng.State() != engine.StateReady {
		t.Errorf("state = %s, want ready", eng.State())
	}
	if eng.loads != 1 {
		t.Errorf("loads = %d, want 1", eng.loads)
	}
}

func TestSession_LoadFailureBlocksTrim(t *testing.T) {
	eng := newFakeEngine()
	eng.loadErr = errors.New("wasm core missing")
	s, _ := newTestSession(eng)
	s.Select(clipFile(8))

	s.Start(context.Background())
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := s.WaitReady(ctx); !errors.Is(err, engine.ErrLoadFailed) {
		t.Fatalf("WaitReady() error = %v, want ErrLoadFailed", err)
	}
	if s.CanTrim() {
		t.Error("CanTrim() = true after load failure")
	}
	if _, err := s.Trim(context.Background(), nil); !errors.Is(err, engine.ErrLoadFailed) {
		t.Errorf("Trim() error = %v, want ErrLoadFailed", err)
	}
	if eng.runCount() != 0 {
		t.Error("engine ran after load failure")
	}
}

func TestSession_DropIgnoresNonVideo(t *testing.T) {
	s, _ := newTestSession(newReadyEngine())
	original := clipFile(8)
	s.Select(original)

	notes := video.NewMemoryMediaFile("notes.txt", "text/plain", []byte("hello"))
	err := s.Drop(notes)
	if !errors.Is(err, video.ErrNotVideo) {
		t.Errorf("Drop(text file) error = %v, want ErrNotVideo", err)
	}
	if err != nil && !strings.Contains(err.Error(), "notes.txt") {
		t.Errorf("Drop(text file) error %q does not name the file", err)
	}
	if s.Selection() != original {
		t.Error("selection changed after dropping a non-video file")
	}

	if err := s.Drop(nil); !errors.Is(err, video.ErrNoFile) {
		t.Errorf("Drop(nil) error = %v, want ErrNoFile", err)
	}

	other := video.NewMemoryMediaFile("other.mp4", "video/mp4", []byte("x"))
	if err := s.Drop(other); err != nil {
		t.Errorf("Drop(video) unexpected error: %v", err)
	}
	if s.Selection() != other {
		t.Error("selection not replaced by dropped video")
	}
}

func TestSession_CancelledStartStillLoads(t *testing.T) {
	eng := newFakeEngine()
	eng.loadGate = make(chan struct{})
	s, _ := newTestSession(eng)
	s.Select(clipFile(8))

	startCtx, cancelStart := context.WithCancel(context.Background())
	s.Start(startCtx)
	cancelStart()

	waitCtx, cancelWait := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancelWait()
	if err := s.WaitReady(waitCtx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("WaitReady() before load = %v, want DeadlineExceeded", err)
	}

	close(eng.loadGate)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.WaitReady(ctx); err != nil {
		t.Fatalf("WaitReady() unexpected error: %v", err)
	}
	if err := s.LoadErr(); err != nil {
		t.Errorf("LoadErr() = %v, want nil", err)
	}
	if !s.CanTrim() {
		t.Error("CanTrim() = false after the engine loaded")
	}
	if _, err := s.Trim(context.Background(), nil); err != nil {
		t.Errorf("Trim() unexpected error: %v", err)
	}
}

func TestSession_LastJob(t *testing.T) {
	eng := newReadyEngine()
	eng.runErr = errors.New("moov atom not found")
	s, _ := newTestSession(eng)
	s.Select(clipFile(8))

	if s.LastJob() != nil {
		t.Fatal("LastJob() before any trim should be nil")
	}
	if _, err := s.Trim(context.Background(), nil); err == nil {
		t.Fatal("Trim() expected error")
	}

	job := s.LastJob()
	if job == nil {
		t.Fatal("LastJob() = nil after a trim")
	}
	if job.Stage != video.StageErrored {
		t.Errorf("LastJob().Stage = %s, want errored", job.Stage)
	}
	if job.ID == "" {
		t.Error("LastJob().ID is empty")
	}
}

func TestSession_TrimUsesRangeFields(t *testing.T) {
	eng := newReadyEngine()
	s, _ := newTestSession(eng)
	s.Select(clipFile(8))
	s.SetRange("00:00:02", "00:00:07")

	result, err := s.Trim(context.Background(), nil)
	if err != nil {
		t.Fatalf("Trim() unexpected error: %v", err)
	}
	if result.Artifact.Name != "trimmed_clip.mov" {
		t.Errorf("artifact name = %q", result.Artifact.Name)
	}
	if got := eng.runs[0][5]; got != "5" {
		t.Errorf("-t = %q, want 5", got)
	}
}

func TestSession_TrimInvalidRangeIssuesNoCommand(t *testing.T) {
	eng := newReadyEngine()
	s, _ := newTestSession(eng)
	s.Select(clipFile(8))
	s.SetRange("00:00:07", "00:00:02")

	if _, err := s.Trim(context.Background(), nil); !errors.Is(err, video.ErrInvalidTimeRange) {
		t.Errorf("Trim() error = %v, want ErrInvalidTimeRange", err)
	}
	if eng.runCount() != 0 {
		t.Error("engine ran for an invalid range")
	}
}

func TestSession_Reset(t *testing.T) {
	eng := newReadyEngine()
	svc := newTestService(eng, &fakeSaver{})
	s := NewSession(eng, svc, "00:00:05", "00:00:15")
	s.Select(clipFile(8))
	s.SetRange("00:01:00", "00:02:00")

	s.Reset()

	if s.Selection() != nil {
		t.Error("selection survived Reset")
	}
	if start, end := s.Range(); start != "00:00:05" || end != "00:00:15" {
		t.Errorf("Range() after Reset = %q, %q", start, end)
	}
}

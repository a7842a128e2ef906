package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := WithJobID(WithComponent(NewLogger("info", "json", &buf), "trim"), "job-1")

	logger.Debug("hidden")
	logger.Info("trim finished", "output", "trimmed_clip.mov")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 log line, got %d: %q", len(lines), buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	for key, want := range map[string]string{
		"msg":       "trim finished",
		"component": "trim",
		"job_id":    "job-1",
		"output":    "trimmed_clip.mov",
	} {
		if entry[key] != want {
			t.Errorf("entry[%q] = %v, want %q", key, entry[key], want)
		}
	}
}

func TestNewLogger_Text(t *testing.T) {
	var buf bytes.Buffer
	NewLogger("warn", "text", &buf).Warn("engine slow")
	if !strings.Contains(buf.String(), "msg=\"engine slow\"") {
		t.Errorf("unexpected text output: %q", buf.String())
	}
}

func TestSanitizePath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		t.Skip("no home directory")
	}
	got := SanitizePath(filepath.Join(home, "Videos", "clip.mov"))
	if want := "~" + string(filepath.Separator) + filepath.Join("Videos", "clip.mov"); got != want {
		t.Errorf("SanitizePath() = %q, want %q", got, want)
	}
	if got := SanitizePath("/srv/clip.mov"); got != "/srv/clip.mov" && !strings.HasPrefix(home, "/srv") {
		t.Errorf("SanitizePath() = %q, want unchanged", got)
	}
}

package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"media-trimmer/domain/video"
)

// Saver implements video.Saver by writing the artifact into a directory, the
// local stand-in for a browser download
type Saver struct {
	dir string
}

// NewSaver creates a saver that writes into dir
func NewSaver(dir string) *Saver {
	return &Saver{dir: dir}
}

// maxSuffix bounds the " (n)" names tried before Save gives up
const maxSuffix = 999

// Save writes the artifact as <dir>/<artifact name>. An existing file is never
// replaced: like a browser download the name gains a " (n)" suffix, so a second
// trimmed_clip.mov is saved as "trimmed_clip (1).mov". The write goes through a
// temp file so a partial artifact is never left under the final name.
func (s *Saver) Save(ctx context.Context, artifact *video.Artifact) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if artifact.Name == "" || artifact.Name != filepath.Base(artifact.Name) {
		return "", fmt.Errorf("invalid artifact name %q", artifact.Name)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".partial-*")
	if err != nil {
		return "", fmt.Errorf("failed to create output file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(artifact.Data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write output file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write output file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return "", fmt.Errorf("failed to set output permissions: %w", err)
	}

	dest, err := s.reserve(artifact.Name)
	if err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		os.Remove(dest)
		return "", fmt.Errorf("failed to save %s: %w", artifact.Name, err)
	}
	return dest, nil
}

// reserve creates an empty file under the first free name so concurrent saves
// cannot claim the same one
func (s *Saver) reserve(name string) (string, error) {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for n := 0; n <= maxSuffix; n++ {
		candidate := name
		if n > 0 {
			candidate = fmt.Sprintf("%s (%d)%s", base, n, ext)
		}
		path := filepath.Join(s.dir, candidate)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to create output file: %w", err)
		}
		f.Close()
		return path, nil
	}
	return "", fmt.Errorf("failed to save %s: no free name in %s", name, s.dir)
}

// Ensure Saver implements video.Saver
var _ video.Saver = (*Saver)(nil)

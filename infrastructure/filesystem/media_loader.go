package filesystem

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"media-trimmer/domain/video"
)

// MediaLoader implements video.MediaLoader for local files, sniffing the MIME
// type from content rather than trusting the extension
type MediaLoader struct {
	checker video.FileChecker
}

// NewMediaLoader creates a loader backed by the given existence checker
func NewMediaLoader(checker video.FileChecker) *MediaLoader {
	if checker == nil {
		checker = NewChecker()
	}
	return &MediaLoader{checker: checker}
}

// Load stats and sniffs path. It does not reject non-video content; callers
// decide whether that matters via MediaFile.IsVideo.
func (l *MediaLoader) Load(path string) (*video.MediaFile, error) {
	if !l.checker.Exists(path) {
		return nil, fmt.Errorf("source file does not exist: %s", path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to detect content type of %s: %w", path, err)
	}

	return video.NewMediaFile(path, filepath.Base(path), info.Size(), mimeTypeOf(mtype)), nil
}

// mimeTypeOf strips parameters such as "; charset=utf-8"
func mimeTypeOf(m *mimetype.MIME) string {
	s, _, _ := strings.Cut(m.String(), ";")
	return strings.TrimSpace(s)
}

// Ensure MediaLoader implements video.MediaLoader
var _ video.MediaLoader = (*MediaLoader)(nil)

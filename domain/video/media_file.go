package video

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
)

// OutputPrefix is prepended to the source name to form the artifact name
const OutputPrefix = "trimmed_"

// MediaFile is an immutable reference to a user-chosen binary blob
type MediaFile struct {
	Name     string
	Size     int64
	MimeType string
	Path     string

	open func() (io.ReadCloser, error)
}

// NewMediaFile describes a file on disk
func NewMediaFile(path, name string, size int64, mimeType string) *MediaFile {
	return &MediaFile{
		Name:     name,
		Size:     size,
		MimeType: mimeType,
		Path:     path,
		open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}
}

// NewMemoryMediaFile wraps an in-memory payload
func NewMemoryMediaFile(name, mimeType string, data []byte) *MediaFile {
	return &MediaFile{
		Name:     name,
		Size:     int64(len(data)),
		MimeType: mimeType,
		open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// Open returns the file's content stream. Callers close it.
func (f *MediaFile) Open() (io.ReadCloser, error) {
	if f.open == nil {
		return nil, fmt.Errorf("media file %q has no content", f.Name)
	}
	return f.open()
}

// ReadAll buffers the whole file in memory
func (f *MediaFile) ReadAll() ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", f.Name, err)
	}
	return data, nil
}

// IsVideo reports whether the MIME type carries a video/ prefix
func (f *MediaFile) IsVideo() bool {
	return strings.HasPrefix(f.MimeType, "video/")
}

// RequireVideo returns ErrNotVideo, naming the file and its type, unless
// IsVideo holds
func (f *MediaFile) RequireVideo() error {
	if !f.IsVideo() {
		return fmt.Errorf("%w: %s (%s)", ErrNotVideo, f.Name, f.MimeType)
	}
	return nil
}

// OutputFilename returns trimmed_<name>
func (f *MediaFile) OutputFilename() string {
	return OutputPrefix + f.Name
}

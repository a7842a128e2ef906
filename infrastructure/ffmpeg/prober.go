package ffmpeg

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xfrr/goffmpeg"
	"github.com/xfrr/goffmpeg/transcoder"

	"media-trimmer/domain/video"
)

// MetadataReader returns the container duration field reported by ffprobe
type MetadataReader func(ctx context.Context, path string) (string, error)

// Configurator resolves the ffmpeg and ffprobe executables
type Configurator func(ctx context.Context) (goffmpeg.Configuration, error)

// Prober implements video.Prober using goffmpeg's ffprobe metadata. goffmpeg
// resolves ffmpeg and ffprobe from PATH; there is no way to point it elsewhere.
type Prober struct {
	configure Configurator
	read      MetadataReader
}

// ProberOption is a functional option for configuring Prober
type ProberOption func(*Prober)

// WithConfigurator replaces the PATH lookup (for testing)
func WithConfigurator(configure Configurator) ProberOption {
	return func(p *Prober) {
		p.configure = configure
	}
}

// WithMetadataReader replaces the ffprobe call (for testing)
func WithMetadataReader(read MetadataReader) ProberOption {
	return func(p *Prober) {
		p.read = read
	}
}

// NewProber creates a new ffprobe-backed prober
func NewProber(opts ...ProberOption) *Prober {
	p := &Prober{configure: goffmpeg.Configure}
	for _, opt := range opts {
		opt(p)
	}
	if p.read == nil {
		p.read = p.goffmpegDuration
	}
	return p
}

// Locate returns the ffprobe executable goffmpeg will use
func (p *Prober) Locate(ctx context.Context) (string, error) {
	cfg, err := p.configure(ctx)
	if err != nil {
		return "", fmt.Errorf("ffprobe not found: %w", err)
	}
	if cfg.FFprobeBinPath() == "" {
		return "", fmt.Errorf("ffprobe not found")
	}
	return cfg.FFprobeBinPath(), nil
}

// Probe implements video.Prober. goffmpeg runs ffprobe without a context, so a
// cancelled ctx returns immediately and the abandoned ffprobe finishes on its own.
func (p *Prober) Probe(ctx context.Context, path string) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	type result struct {
		raw string
		err error
	}
	done := make(chan result, 1)
	go func() {
		raw, err := p.read(ctx, path)
		done <- result{raw: raw, err: err}
	}()

	var r result
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case r = <-done:
	}

	if r.err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w", r.err)
	}

	secs, err := strconv.ParseFloat(strings.TrimSpace(r.raw), 64)
	if err != nil || secs < 0 {
		return 0, fmt.Errorf("ffprobe reported unusable duration %q for %s", r.raw, path)
	}

	return time.Duration(secs * float64(time.Second)), nil
}

func (p *Prober) goffmpegDuration(ctx context.Context, path string) (string, error) {
	cfg, err := p.configure(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to locate ffprobe: %w", err)
	}

	trans := new(transcoder.Transcoder)
	trans.SetConfiguration(cfg)
	if err := trans.Initialize(path, ""); err != nil {
		return "", fmt.Errorf("failed to initialize transcoder for metadata: %w", err)
	}
	return trans.MediaFile().Metadata().Format.Duration, nil
}

// Ensure Prober implements video.Prober
var _ video.Prober = (*Prober)(nil)

package video

import (
	"context"
	"time"
)

// Saver delivers a finished artifact to the user, the local equivalent of a
// browser download. It returns where the artifact ended up.
type Saver interface {
	Save(ctx context.Context, artifact *Artifact) (string, error)
}

// Prober reports the playable length of a media file
type Prober interface {
	Probe(ctx context.Context, path string) (time.Duration, error)
}

// MediaLoader turns a user selection into a MediaFile
type MediaLoader interface {
	Load(path string) (*MediaFile, error)
}

// FileChecker defines the interface for checking file existence
type FileChecker interface {
	Exists(path string) bool
}

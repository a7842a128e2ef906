package video

import (
	"fmt"
	"time"
)

// Stage is a step of the trim workflow
type Stage string

const (
	StageIdle       Stage = "idle"
	StageStaging    Stage = "staging"
	StageProcessing Stage = "processing"
	StageFinalizing Stage = "finalizing"
	StageDone       Stage = "done"
	StageErrored    Stage = "errored"
)

// InFlight reports whether a job in this stage holds the engine
func (s Stage) InFlight() bool {
	switch s {
	case StageStaging, StageProcessing, StageFinalizing:
		return true
	}
	return false
}

const (
	// InputName is the workspace entry the source is staged under
	InputName = "input.mp4"
	// OutputName is the workspace entry the engine writes the clip to
	OutputName = "output.mp4"
	// OutputMimeType tags every produced artifact
	OutputMimeType = "video/mp4"
)

// TrimJob is one trigger of the workflow
type TrimJob struct {
	ID        string
	File      *MediaFile
	Range     TimeRange
	Stage     Stage
	Progress  int
	Err       error
	StartedAt time.Time
}

// NewTrimJob creates a job in the Idle stage
func NewTrimJob(id string, file *MediaFile, r TimeRange) *TrimJob {
	return &TrimJob{
		ID:        id,
		File:      file,
		Range:     r,
		Stage:     StageIdle,
		StartedAt: time.Now(),
	}
}

// Command returns the engine arguments for this job:
// -i input.mp4 -ss <start> -t <duration> -c copy output.mp4
func (j *TrimJob) Command() []string {
	return TrimCommand(InputName, OutputName, j.Range)
}

// TrimCommand builds the stream-copy trim command. -c copy skips re-encoding, so
// the cut lands on the nearest keyframe.
func TrimCommand(input, output string, r TimeRange) []string {
	return []string{
		"-i", input,
		"-ss", r.Start.String(),
		"-t", r.DurationArg(),
		"-c", "copy",
		output,
	}
}

// Artifact is the downloadable result of a finished job
type Artifact struct {
	Name     string
	MimeType string
	Data     []byte
}

// NewArtifact packages engine output for the given source file
func NewArtifact(file *MediaFile, data []byte) *Artifact {
	return &Artifact{
		Name:     file.OutputFilename(),
		MimeType: OutputMimeType,
		Data:     data,
	}
}

func (a *Artifact) String() string {
	return fmt.Sprintf("%s (%s, %d bytes)", a.Name, a.MimeType, len(a.Data))
}

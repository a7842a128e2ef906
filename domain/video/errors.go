package video

import "errors"

var (
	// ErrNoFile is returned when a trim is requested without a selected file
	ErrNoFile = errors.New("no media file selected")

	// ErrInvalidTimeRange is returned when the end of a range is not after its start
	ErrInvalidTimeRange = errors.New("invalid time range")

	// ErrNotVideo is returned when a file's content type is not video/*
	ErrNotVideo = errors.New("file is not a video")

	// ErrRangeOutsideMedia is returned when a range starts at or past the end of the media
	ErrRangeOutsideMedia = errors.New("time range starts beyond the end of the media")
)

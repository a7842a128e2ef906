package video

import (
	"fmt"
	"strconv"
)

const (
	// DefaultStart is the range start offered before the user picks one
	DefaultStart = "00:00:00"
	// DefaultEnd is the range end offered before the user picks one
	DefaultEnd = "00:00:10"
)

// TimeRange is the span of a media file to keep
type TimeRange struct {
	Start Timestamp
	End   Timestamp
}

// NewTimeRange builds a validated range
func NewTimeRange(start, end Timestamp) (TimeRange, error) {
	r := TimeRange{Start: start, End: end}
	if err := r.Validate(); err != nil {
		return TimeRange{}, err
	}
	return r, nil
}

// ParseTimeRange parses two HH:MM:SS strings into a validated range
func ParseTimeRange(start, end string) (TimeRange, error) {
	s, err := ParseTimestamp(start)
	if err != nil {
		return TimeRange{}, fmt.Errorf("invalid start time: %w", err)
	}

	e, err := ParseTimestamp(end)
	if err != nil {
		return TimeRange{}, fmt.Errorf("invalid end time: %w", err)
	}

	return NewTimeRange(s, e)
}

// Duration returns the clip length in whole seconds. It is negative or zero for
// a range that fails Validate.
func (r TimeRange) Duration() int {
	return r.End.TotalSeconds() - r.Start.TotalSeconds()
}

// DurationArg renders Duration the way the engine's -t flag expects it
func (r TimeRange) DurationArg() string {
	return strconv.Itoa(r.Duration())
}

// Validate reports ErrInvalidTimeRange unless End is strictly after Start
func (r TimeRange) Validate() error {
	if !r.End.After(r.Start) {
		return fmt.Errorf("%w: end time %s must be after start time %s", ErrInvalidTimeRange, r.End, r.Start)
	}
	return nil
}

func (r TimeRange) String() string {
	return r.Start.String() + "-" + r.End.String()
}

package video

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Timestamp is an offset into a media file expressed as HH:MM:SS
type Timestamp struct {
	Hours   int
	Minutes int
	Seconds int
}

var timestampPattern = regexp.MustCompile(`^(\d{2}):(\d{2}):(\d{2})$`)

// ParseTimestamp parses an HH:MM:SS string. Each field must be two digits and
// minutes/seconds must fall in 0-59.
func ParseTimestamp(s string) (Timestamp, error) {
	m := timestampPattern.FindStringSubmatch(s)
	if m == nil {
		return Timestamp{}, fmt.Errorf("invalid timestamp format %q: expected HH:MM:SS", s)
	}

	hours, _ := strconv.Atoi(m[1])
	minutes, _ := strconv.Atoi(m[2])
	seconds, _ := strconv.Atoi(m[3])

	if minutes > 59 {
		return Timestamp{}, fmt.Errorf("invalid timestamp %q: minutes must be 0-59", s)
	}
	if seconds > 59 {
		return Timestamp{}, fmt.Errorf("invalid timestamp %q: seconds must be 0-59", s)
	}

	return Timestamp{Hours: hours, Minutes: minutes, Seconds: seconds}, nil
}

// TimestampFromSeconds builds a Timestamp from a whole number of seconds.
// Negative input clamps to zero.
func TimestampFromSeconds(total int) Timestamp {
	if total < 0 {
		total = 0
	}
	return Timestamp{
		Hours:   total / 3600,
		Minutes: (total % 3600) / 60,
		Seconds: total % 60,
	}
}

func (t Timestamp) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hours, t.Minutes, t.Seconds)
}

// TotalSeconds returns ((H*60)+M)*60+S
func (t Timestamp) TotalSeconds() int {
	return ((t.Hours*60)+t.Minutes)*60 + t.Seconds
}

// Duration returns the offset as a time.Duration
func (t Timestamp) Duration() time.Duration {
	return time.Duration(t.TotalSeconds()) * time.Second
}

func (t Timestamp) After(other Timestamp) bool {
	return t.TotalSeconds() > other.TotalSeconds()
}

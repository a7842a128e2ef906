package video

import (
	"errors"
	"testing"
)

func TestParseTimeRange(t *testing.T) {
	tests := []struct {
		name         string
		start        string
		end          string
		wantDuration int
		wantErr      error
		errContains  string
	}{
		{name: "ten second clip", start: "00:00:05", end: "00:00:15", wantDuration: 10},
		{name: "defaults", start: DefaultStart, end: DefaultEnd, wantDuration: 10},
		{name: "crosses the hour", start: "00:59:30", end: "01:00:30", wantDuration: 60},
		{name: "one second", start: "00:00:00", end: "00:00:01", wantDuration: 1},
		{name: "end equals start", start: "00:00:10", end: "00:00:10", wantErr: ErrInvalidTimeRange},
		{name: "end before start", start: "00:01:00", end: "00:00:30", wantErr: ErrInvalidTimeRange},
		{name: "malformed start", start: "5", end: "00:00:10", errContains: "invalid start time"},
		{name: "malformed end", start: "00:00:00", end: "00:00:1O", errContains: "invalid end time"},
		{name: "seconds out of range", start: "00:00:00", end: "00:00:75", errContains: "seconds must be 0-59"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := ParseTimeRange(tt.start, tt.end)

			if tt.wantErr != nil || tt.errContains != "" {
				if err == nil {
					t.Fatalf("ParseTimeRange(%q, %q) expected error, got nil", tt.start, tt.end)
				}
				if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
				if tt.errContains != "" && !contains(err.Error(), tt.errContains) {
					t.Errorf("error = %v, want error containing %q", err, tt.errContains)
				}
				return
			}

			if err != nil {
				t.Fatalf("ParseTimeRange(%q, %q) unexpected error: %v", tt.start, tt.end, err)
			}
			if got := r.Duration(); got != tt.wantDuration {
				t.Errorf("Duration() = %d, want %d", got, tt.wantDuration)
			}
		})
	}
}

func TestTimeRange_DurationArg(t *testing.T) {
	r := TimeRange{Start: mustTimestamp(t, "00:00:02"), End: mustTimestamp(t, "00:00:07")}
	if got := r.DurationArg(); got != "5" {
		t.Errorf("DurationArg() = %q, want %q", got, "5")
	}
}

func TestTimeRange_ValidateMessage(t *testing.T) {
	r := TimeRange{Start: mustTimestamp(t, "00:00:20"), End: mustTimestamp(t, "00:00:10")}
	err := r.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	want := "invalid time range: end time 00:00:10 must be after start time 00:00:20"
	if err.Error() != want {
		t.Errorf("Validate() = %q, want %q", err.Error(), want)
	}
}

func TestTimeRange_String(t *testing.T) {
	r := TimeRange{Start: mustTimestamp(t, "00:00:05"), End: mustTimestamp(t, "00:00:15")}
	if got := r.String(); got != "00:00:05-00:00:15" {
		t.Errorf("String() = %q", got)
	}
}

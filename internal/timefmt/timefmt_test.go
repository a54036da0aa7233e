package timefmt

import "testing"

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input string
		want  int64
		ok    bool
	}{
		{"2d:15:30:00", 228600, true},
		{"15:30:00", 55800, true},
		{"0d:00:00:01", 1, true},
		{"00:00:00", 0, true},
		{"  23:59:59  ", 86399, true},
		{"2:15:30:45", 228645, true},
		{"", 0, false},
		{"invalid_text", 0, false},
		{"15:30", 0, false},
		{"1:2:3:4:5", 0, false},
		{"2d:xx:30:00", 0, false},
		{"aa:30:00", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseDuration(tt.input)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseDuration(%q) = (%d, %v), want (%d, %v)", tt.input, got, ok, tt.want, tt.ok)
		}
	}
}

func TestFormatCountdown(t *testing.T) {
	tests := []struct {
		seconds int64
		want    string
	}{
		{228645, "2d:15:30:45"},
		{84615, "23:30:15"},
		{0, "00:00:00"},
		{-5, "00:00:00"},
		{86400, "1d:00:00:00"},
		{86399, "23:59:59"},
		{59, "00:00:59"},
	}

	for _, tt := range tests {
		if got := FormatCountdown(tt.seconds); got != tt.want {
			t.Errorf("FormatCountdown(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

// Formatting then parsing any non-negative second count must return the same
// value, across day boundaries.
func TestRoundTrip(t *testing.T) {
	cases := []int64{0, 1, 59, 60, 3599, 3600, 86399, 86400, 86401, 228645, 10 * 86400, 31*86400 + 12345}

	for _, seconds := range cases {
		text := FormatCountdown(seconds)
		back, ok := ParseDuration(text)
		if !ok {
			t.Fatalf("ParseDuration(%q) failed", text)
		}
		if back != seconds {
			t.Errorf("round trip %d -> %q -> %d", seconds, text, back)
		}
	}
}

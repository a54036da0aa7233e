// Package timefmt converts between the dd:hh:mm:ss text representation used
// by timer inputs and a duration in seconds.
package timefmt

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

const secondsPerDay = 86400

// ParseDuration parses "dd:hh:mm:ss" or "hh:mm:ss" input into seconds. The
// day field may carry a trailing non-digit unit suffix ("2d"), which is
// stripped before parsing. Returns ok=false for any malformed input; it never
// returns a partially parsed value.
func ParseDuration(input string) (seconds int64, ok bool) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return 0, false
	}

	parts := strings.Split(trimmed, ":")

	switch len(parts) {
	case 4:
		days, err := strconv.ParseInt(stripUnitSuffix(parts[0]), 10, 64)
		if err != nil {
			return 0, false
		}
		rest, ok := parseClock(parts[1], parts[2], parts[3])
		if !ok {
			return 0, false
		}
		return days*secondsPerDay + rest, true
	case 3:
		return parseClock(parts[0], parts[1], parts[2])
	default:
		return 0, false
	}
}

func parseClock(h, m, s string) (int64, bool) {
	hours, errH := strconv.ParseInt(h, 10, 64)
	minutes, errM := strconv.ParseInt(m, 10, 64)
	secs, errS := strconv.ParseInt(s, 10, 64)
	if errH != nil || errM != nil || errS != nil {
		return 0, false
	}
	return hours*3600 + minutes*60 + secs, true
}

// stripUnitSuffix removes trailing non-digit characters from the day field.
func stripUnitSuffix(field string) string {
	return strings.TrimRightFunc(field, func(r rune) bool {
		return !unicode.IsDigit(r)
	})
}

// FormatCountdown renders seconds as "{days}d:hh:mm:ss", omitting the day
// field entirely below one day. Negative input is clamped to zero.
func FormatCountdown(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}

	days := seconds / secondsPerDay
	hours := (seconds % secondsPerDay) / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60

	if days > 0 {
		return fmt.Sprintf("%dd:%02d:%02d:%02d", days, hours, minutes, secs)
	}
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
}

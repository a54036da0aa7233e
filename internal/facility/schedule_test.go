package facility

import (
	"testing"
	"time"
)

func TestScheduleState(t *testing.T) {
	base := time.Unix(1_700_000_000, 0)

	tests := []struct {
		name     string
		openTime int64
		want     OpenState
	}{
		{"no schedule", 0, OpenStateClosing},
		{"already open", base.Unix() - 1, OpenStateOpening},
		{"opens exactly now", base.Unix(), OpenStateOpening},
		{"opens within the hour", base.Unix() + 1800, OpenStateSoon},
		{"opens at the hour boundary", base.Unix() + 3600, OpenStateSoon},
		{"opens later", base.Unix() + 3601, OpenStateClosing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ScheduleState(tt.openTime, base); got != tt.want {
				t.Errorf("ScheduleState(%d) = %s, want %s", tt.openTime, got, tt.want)
			}
		})
	}
}

func TestNextWeeklyOccurrence(t *testing.T) {
	// Wednesday 2023-11-15 10:00 UTC.
	wednesday := time.Date(2023, 11, 15, 10, 0, 0, 0, time.UTC)
	days := []time.Weekday{time.Monday, time.Wednesday, time.Friday}

	// Index 1 targets Wednesday; the 20:00 slot today has not passed yet.
	got := time.Unix(NextWeeklyOccurrence(wednesday, days, 20, 1), 0).UTC()
	want := time.Date(2023, 11, 15, 20, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("same-day slot: got %v, want %v", got, want)
	}

	// After 20:00 the same slot moves a full week out.
	late := time.Date(2023, 11, 15, 20, 0, 0, 0, time.UTC)
	got = time.Unix(NextWeeklyOccurrence(late, days, 20, 1), 0).UTC()
	want = time.Date(2023, 11, 22, 20, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("passed slot: got %v, want %v", got, want)
	}

	// Index 0 targets Monday, which already passed this week.
	got = time.Unix(NextWeeklyOccurrence(wednesday, days, 20, 0), 0).UTC()
	want = time.Date(2023, 11, 20, 20, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("earlier weekday: got %v, want %v", got, want)
	}

	// Round-robin: indexes spread across the weekday set.
	seen := map[time.Weekday]bool{}
	for i := 0; i < 12; i++ {
		ts := time.Unix(NextWeeklyOccurrence(wednesday, days, 20, i), 0).UTC()
		seen[ts.Weekday()] = true
	}
	if len(seen) != len(days) {
		t.Errorf("round-robin covered %d weekdays, want %d", len(seen), len(days))
	}

	if NextWeeklyOccurrence(wednesday, nil, 20, 0) != 0 {
		t.Error("empty weekday set should yield 0")
	}
}

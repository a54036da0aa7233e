package facility

import "time"

// OpenState is the schedule-driven status used by fortresses, strongholds and
// the sun city, which open on fixed times rather than cycling.
type OpenState string

const (
	OpenStateOpening OpenState = "opening"
	OpenStateSoon    OpenState = "soon"
	OpenStateClosing OpenState = "closing"
)

// soonWindow is how long before a scheduled opening the state flips to "soon".
const soonWindow int64 = 3600

// ScheduleState resolves the open state for a fixed opening time (Unix
// seconds). A zero openTime means no schedule is known and reads as closed.
func ScheduleState(openTime int64, now time.Time) OpenState {
	if openTime <= 0 {
		return OpenStateClosing
	}

	nowSec := now.Unix()
	if nowSec >= openTime {
		return OpenStateOpening
	}
	if openTime-nowSec <= soonWindow {
		return OpenStateSoon
	}
	return OpenStateClosing
}

// NextWeeklyOccurrence returns the next Unix time a weekly schedule fires.
// The schedule is a set of weekdays at a fixed local hour; index distributes
// instances of the same building type round-robin across the weekdays so they
// do not all open simultaneously. If today is a target day but the hour has
// passed, the occurrence moves a full week out.
func NextWeeklyOccurrence(now time.Time, weekdays []time.Weekday, hour int, index int) int64 {
	if len(weekdays) == 0 {
		return 0
	}

	target := weekdays[index%len(weekdays)]

	daysToAdd := int(target) - int(now.Weekday())
	if daysToAdd < 0 || (daysToAdd == 0 && now.Hour() >= hour) {
		daysToAdd += 7
	}

	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	next = next.AddDate(0, 0, daysToAdd)
	return next.Unix()
}

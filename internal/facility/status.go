// Package facility models the protected/contested control cycle of
// engineering stations as a pure two-state machine over wall-clock time.
//
// Once a protection end time exists, the two states tile time into
// contiguous windows: 3 days protected, then 24 hours contested, repeating.
// All functions take an explicit now so callers control the clock.
package facility

import "time"

type Status string

const (
	StatusProtected Status = "protected"
	StatusContested Status = "contested"
)

const (
	// ProtectionSeconds is the fixed length of a protection window (3 days).
	ProtectionSeconds int64 = 3 * 24 * 60 * 60
	// ContestedSeconds is the fixed length of a contested window (24 hours).
	ContestedSeconds int64 = 24 * 60 * 60
)

// TimeStatus describes where inside the control cycle a facility currently is,
// plus the display attributes derived from the state.
type TimeStatus struct {
	Status           Status `json:"status"`
	RemainingSeconds int64  `json:"remaining_seconds"`
	EndTime          int64  `json:"end_time"`
	Color            string `json:"color"`
	Icon             string `json:"icon"`
	Label            string `json:"label"`
}

func protectedStatus(endTime, now int64) TimeStatus {
	return TimeStatus{
		Status:           StatusProtected,
		RemainingSeconds: endTime - now,
		EndTime:          endTime,
		Color:            "#3b82f6",
		Icon:             "Shield",
		Label:            "Protected",
	}
}

func contestedStatus(endTime, now int64) TimeStatus {
	return TimeStatus{
		Status:           StatusContested,
		RemainingSeconds: endTime - now,
		EndTime:          endTime,
		Color:            "#ef4444",
		Icon:             "Swords",
		Label:            "Contested",
	}
}

// Calculate resolves the facility state at now for the given protection end
// time (Unix seconds, zero meaning never set).
//
// When the cycle has to restart, onUpdate is invoked once with the new
// protection end time so the caller can persist it. That happens in two
// cases: no end time was ever set (protection starts now), or more than a
// full protect+contest cycle has elapsed since the last known boundary. The
// restart anchors at now rather than the theoretical missed boundary, so an
// unobserved facility's schedule shifts phase instead of reconstructing
// historical windows. Malformed (negative) end times take the restart path;
// there are no error returns.
func Calculate(protectionEndTime int64, now time.Time, onUpdate func(newProtectionEndTime int64)) TimeStatus {
	nowSec := now.Unix()

	if protectionEndTime <= 0 {
		newEnd := nowSec + ProtectionSeconds
		if onUpdate != nil {
			onUpdate(newEnd)
		}
		return protectedStatus(newEnd, nowSec)
	}

	if nowSec < protectionEndTime {
		return protectedStatus(protectionEndTime, nowSec)
	}

	contestedEnd := protectionEndTime + ContestedSeconds
	if nowSec < contestedEnd {
		return contestedStatus(contestedEnd, nowSec)
	}

	// Contested window lapsed unobserved: restart the cycle from now.
	newEnd := nowSec + ProtectionSeconds
	if onUpdate != nil {
		onUpdate(newEnd)
	}
	return protectedStatus(newEnd, nowSec)
}

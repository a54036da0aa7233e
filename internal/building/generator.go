package building

import (
	"fmt"
	"math/rand"
	"time"

	"warmap-server/internal/facility"
)

// Weekly opening schedules: fortresses open Mon/Wed/Fri at 20:00 local time,
// strongholds Tue/Thu/Sat at 21:00, spread round-robin across instances so
// they do not all open at once.
var (
	fortressOpenDays   = []time.Weekday{time.Monday, time.Wednesday, time.Friday}
	strongholdOpenDays = []time.Weekday{time.Tuesday, time.Thursday, time.Saturday}
)

const (
	fortressOpenHour   = 20
	strongholdOpenHour = 21
)

// Sample rewards attached to generated fortresses and strongholds. The full
// per-cycle table lives in the reward package; these are the defaults shown
// until a cycle is selected.
var fortressRewards = []Reward{
	{Type: "resource", Name: "Rare Resource Box", Quantity: 2},
	{Type: "material", Name: "Building Materials", Quantity: 3},
	{Type: "speedup", Name: "Speed Up 1h", Quantity: 5},
}

var strongholdRewards = []Reward{
	{Type: "equipment", Name: "Epic Equipment Shard", Quantity: 5},
	{Type: "hero", Name: "Hero EXP Book", Quantity: 10},
	{Type: "gem", Name: "Gem Box", Quantity: 3},
}

// maxCaptureAge bounds the randomized "captured recently" window for
// generated engineering stations (0-2 days in the past).
const maxCaptureAge int64 = 2 * 24 * 3600

// Generate produces the full initial building roster from the embedded map
// layout. Structure (ids, coordinates, subtypes) is deterministic; timers are
// not: station capture times are randomized and the weekly schedules depend
// on the clock. Runs only when no persisted roster exists.
func Generate(data *MapData, now time.Time, rng *rand.Rand) []Building {
	buildings := make([]Building, 0, 1+len(data.Fortresses)+len(data.Strongholds)+len(data.EngineeringStations))

	sunX, sunY := data.MapInfo.Center[0], data.MapInfo.Center[1]
	if data.SunCity != nil {
		sunX, sunY = data.SunCity.X, data.SunCity.Y
	}
	buildings = append(buildings, Building{
		ID:          "SC01",
		Name:        "Sun City",
		Type:        TypeSunCity,
		Alliance:    AllianceUnassigned,
		Coordinates: Coordinates{X: sunX, Y: sunY},
		Status:      StatusOpening,
	})

	for i, f := range data.Fortresses {
		b := Building{
			ID:            fmt.Sprintf("F%02d", i+1),
			Name:          fmt.Sprintf("Fortress %02d", i+1),
			Type:          TypeFortress,
			Alliance:      AllianceUnassigned,
			FixedOpenTime: facility.NextWeeklyOccurrence(now, fortressOpenDays, fortressOpenHour, i),
			Reward:        &fortressRewards[i%len(fortressRewards)],
			Coordinates:   Coordinates{X: f.X, Y: f.Y},
		}
		b.Status = b.CalculateStatus(now)
		buildings = append(buildings, b)
	}

	for i, s := range data.Strongholds {
		b := Building{
			ID:            fmt.Sprintf("S%02d", i+1),
			Name:          fmt.Sprintf("Stronghold %02d", i+1),
			Type:          TypeStronghold,
			Alliance:      AllianceUnassigned,
			FixedOpenTime: facility.NextWeeklyOccurrence(now, strongholdOpenDays, strongholdOpenHour, i),
			Reward:        &strongholdRewards[i%len(strongholdRewards)],
			Coordinates:   Coordinates{X: s.X, Y: s.Y},
		}
		b.Status = b.CalculateStatus(now)
		buildings = append(buildings, b)
	}

	for _, e := range data.EngineeringStations {
		captureTime := now.Unix() - rng.Int63n(maxCaptureAge+1)
		protectionEnd := captureTime + facility.ProtectionSeconds

		subType, ok := StationTypeMap[e.Name]
		if !ok {
			subType = SubTypeProduction
		}

		b := Building{
			ID:                fmt.Sprintf("ES%02d", e.ID),
			Name:              fmt.Sprintf("%s %02d", StationTypeNames[subType], e.ID),
			Type:              TypeEngineeringStation,
			StationSubType:    subType,
			Alliance:          AllianceUnassigned,
			ProtectionEndTime: protectionEnd,
			OpenTime:          protectionEnd, // opens when protection ends
			Coordinates:       Coordinates{X: e.X, Y: e.Y},
		}
		b.Status = b.CalculateStatus(now)
		buildings = append(buildings, b)
	}

	return buildings
}

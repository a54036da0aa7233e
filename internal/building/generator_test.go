package building

import (
	"math/rand"
	"testing"
	"time"

	"warmap-server/internal/facility"
)

var genNow = time.Date(2023, 11, 15, 10, 0, 0, 0, time.UTC) // a Wednesday

func generateFixture(t *testing.T) []Building {
	t.Helper()
	data, err := LoadMapData()
	if err != nil {
		t.Fatalf("LoadMapData: %v", err)
	}
	return Generate(data, genNow, rand.New(rand.NewSource(1)))
}

func TestGenerate_RosterStructure(t *testing.T) {
	buildings := generateFixture(t)

	counts := map[Type]int{}
	ids := map[string]bool{}
	for _, b := range buildings {
		counts[b.Type]++
		if ids[b.ID] {
			t.Errorf("duplicate id %s", b.ID)
		}
		ids[b.ID] = true

		if b.Alliance != AllianceUnassigned {
			t.Errorf("%s generated with alliance %q", b.ID, b.Alliance)
		}
		if b.Coordinates.X < 0 || b.Coordinates.X > 1200 || b.Coordinates.Y < 0 || b.Coordinates.Y > 1200 {
			t.Errorf("%s coordinates out of the world grid: %+v", b.ID, b.Coordinates)
		}
	}

	if counts[TypeSunCity] != 1 || counts[TypeFortress] != 12 || counts[TypeStronghold] != 4 || counts[TypeEngineeringStation] != 74 {
		t.Fatalf("unexpected roster composition: %v", counts)
	}
}

func TestGenerate_StructureIsDeterministic(t *testing.T) {
	a := generateFixture(t)
	b := generateFixture(t)

	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].ID != b[i].ID || a[i].Type != b[i].Type ||
			a[i].StationSubType != b[i].StationSubType || a[i].Coordinates != b[i].Coordinates {
			t.Errorf("structure differs at %d: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestGenerate_StationTimers(t *testing.T) {
	buildings := generateFixture(t)

	for _, b := range buildings {
		if b.Type != TypeEngineeringStation {
			continue
		}
		if b.StationSubType == "" {
			t.Errorf("%s missing subtype", b.ID)
		}

		capture := b.ProtectionEndTime - facility.ProtectionSeconds
		age := genNow.Unix() - capture
		if age < 0 || age > 2*24*3600 {
			t.Errorf("%s capture age %ds outside 0-2 days", b.ID, age)
		}
		if b.OpenTime != b.ProtectionEndTime {
			t.Errorf("%s open time %d != protection end %d", b.ID, b.OpenTime, b.ProtectionEndTime)
		}
		if b.Status != StatusProtected && b.Status != StatusContested {
			t.Errorf("%s status %s, want protected or contested", b.ID, b.Status)
		}
	}
}

func TestGenerate_SchedulesSpreadAcrossDays(t *testing.T) {
	buildings := generateFixture(t)

	fortressDays := map[time.Weekday]bool{}
	for _, b := range buildings {
		switch b.Type {
		case TypeFortress:
			opens := time.Unix(b.FixedOpenTime, 0).UTC()
			if opens.Hour() != 20 {
				t.Errorf("%s opens at hour %d, want 20", b.ID, opens.Hour())
			}
			fortressDays[opens.Weekday()] = true
		case TypeStronghold:
			opens := time.Unix(b.FixedOpenTime, 0).UTC()
			if opens.Hour() != 21 {
				t.Errorf("%s opens at hour %d, want 21", b.ID, opens.Hour())
			}
		}
	}

	if len(fortressDays) != 3 {
		t.Errorf("fortress openings cover %d weekdays, want 3", len(fortressDays))
	}
}

func TestCalculateStatus(t *testing.T) {
	now := genNow

	sun := Building{Type: TypeSunCity}
	if got := sun.CalculateStatus(now); got != StatusOpening {
		t.Errorf("sun city status = %s, want opening", got)
	}

	station := Building{Type: TypeEngineeringStation, ProtectionEndTime: now.Unix() + 100, OpenTime: now.Unix() + 100}
	if got := station.CalculateStatus(now); got != StatusProtected {
		t.Errorf("protected station status = %s", got)
	}

	station.ProtectionEndTime = now.Unix() - 100
	station.OpenTime = station.ProtectionEndTime
	if got := station.CalculateStatus(now); got != StatusOpening {
		t.Errorf("expired station status = %s, want opening", got)
	}

	fortress := Building{Type: TypeFortress, FixedOpenTime: now.Unix() + 1800}
	if got := fortress.CalculateStatus(now); got != StatusSoon {
		t.Errorf("fortress 30m before opening = %s, want soon", got)
	}
	fortress.FixedOpenTime = now.Unix() + 7200
	if got := fortress.CalculateStatus(now); got != StatusClosing {
		t.Errorf("fortress 2h before opening = %s, want closing", got)
	}
}

package building

import (
	"time"

	"warmap-server/internal/facility"
)

type Type string

const (
	TypeFortress           Type = "fortress"
	TypeStronghold         Type = "stronghold"
	TypeEngineeringStation Type = "engineering_station"
	TypeSunCity            Type = "sun_city"
)

// StationSubType is one of the 8 engineering station categories.
type StationSubType string

const (
	SubTypeConstruction StationSubType = "construction"
	SubTypeGathering    StationSubType = "gathering"
	SubTypeProduction   StationSubType = "production"
	SubTypeTech         StationSubType = "tech"
	SubTypeWeapons      StationSubType = "weapons"
	SubTypeTraining     StationSubType = "training"
	SubTypeDefense      StationSubType = "defense"
	SubTypeExpedition   StationSubType = "expedition"
)

// StationTypeMap translates the station type names carried by the map data
// (Chinese) to the subtype enum.
var StationTypeMap = map[string]StationSubType{
	"建設設施": SubTypeConstruction,
	"採集設施": SubTypeGathering,
	"生產設施": SubTypeProduction,
	"科技設施": SubTypeTech,
	"武器設施": SubTypeWeapons,
	"訓練設施": SubTypeTraining,
	"防禦設施": SubTypeDefense,
	"遠征設施": SubTypeExpedition,
}

// StationTypeNames are the display names per subtype.
var StationTypeNames = map[StationSubType]string{
	SubTypeConstruction: "Construction Facility",
	SubTypeGathering:    "Gathering Facility",
	SubTypeProduction:   "Production Facility",
	SubTypeTech:         "Tech Facility",
	SubTypeWeapons:      "Weapons Facility",
	SubTypeTraining:     "Training Facility",
	SubTypeDefense:      "Defense Facility",
	SubTypeExpedition:   "Expedition Facility",
}

// Status is the time-derived building state. It is recomputed from the time
// fields and never trusted as a source of truth across restarts.
type Status string

const (
	StatusProtected Status = "protected"
	StatusOpening   Status = "opening"
	StatusSoon      Status = "soon"
	StatusClosing   Status = "closing"
	StatusContested Status = "contested"
)

type Coordinates struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Reward struct {
	Type     string `json:"type"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Icon     string `json:"icon,omitempty"`
}

// Building is one map entity. The JSON field names follow the persisted
// document format, which export/import round-trips verbatim.
type Building struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type Type   `json:"type"`

	StationSubType StationSubType `json:"stationSubType,omitempty"`

	Alliance     string `json:"alliance"`
	AllianceName string `json:"allianceName,omitempty"`

	// Engineering station cycle fields (Unix seconds).
	ProtectionEndTime int64 `json:"protectionEndTime,omitempty"`
	OpenTime          int64 `json:"openTime,omitempty"`

	// Fortress/stronghold fixed schedule (Unix seconds).
	FixedOpenTime int64 `json:"fixedOpenTime,omitempty"`

	Reward *Reward `json:"reward,omitempty"`

	Coordinates Coordinates `json:"coordinates"`

	Status Status `json:"status"`

	Notes string `json:"notes"`
}

// AllianceUnassigned is the pseudo-alliance every building starts in.
const AllianceUnassigned = "unassigned"

// CalculateStatus derives the building status at now. Engineering stations
// follow the protected/contested cycle; other types follow their fixed
// schedule. The sun city is always open.
func (b *Building) CalculateStatus(now time.Time) Status {
	switch b.Type {
	case TypeSunCity:
		return StatusOpening
	case TypeEngineeringStation:
		if b.ProtectionEndTime > 0 && now.Unix() < b.ProtectionEndTime {
			return StatusProtected
		}
		return Status(facility.ScheduleState(b.OpenTime, now))
	default:
		return Status(facility.ScheduleState(b.FixedOpenTime, now))
	}
}

// Marker sizing per building type: base pixel size at scale 1.
var markerBaseSizes = map[Type]float64{
	TypeFortress:           50,
	TypeStronghold:         60,
	TypeEngineeringStation: 24,
	TypeSunCity:            64,
}

const defaultMarkerBaseSize = 20

// MarkerBaseSize returns the rendered base size for a building type.
func MarkerBaseSize(t Type) float64 {
	if size, ok := markerBaseSizes[t]; ok {
		return size
	}
	return defaultMarkerBaseSize
}

const (
	// StationCullZoom hides engineering stations at or below this zoom.
	StationCullZoom = 0.8
	// MajorMinVisualSize keeps fortresses and strongholds at least this
	// many pixels when zoomed far out.
	MajorMinVisualSize = 24
)

// MinVisualSize returns the enforced on-screen pixel floor for a type, or 0.
func MinVisualSize(t Type) float64 {
	if t == TypeFortress || t == TypeStronghold {
		return MajorMinVisualSize
	}
	return 0
}

// CullBelowZoom returns the visibility zoom threshold for a type, or 0 when
// the type is always drawn.
func CullBelowZoom(t Type) float64 {
	if t == TypeEngineeringStation {
		return StationCullZoom
	}
	return 0
}

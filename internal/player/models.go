package player

// Player is one record returned by the lookup API, keyed by the numeric-string
// fid. Field names follow the upstream JSON.
type Player struct {
	FID            string `json:"fid"`
	Nickname       string `json:"nickname"`
	KID            int    `json:"kid"`
	StoveLv        int    `json:"stove_lv"`
	StoveLvContent string `json:"stove_lv_content,omitempty"`
	AvatarImage    string `json:"avatar_image"`
	LastUpdated    int64  `json:"lastUpdated,omitempty"`
}

// ColumnType enumerates the input kinds a custom group column can hold.
type ColumnType string

const (
	ColumnText   ColumnType = "text"
	ColumnNumber ColumnType = "number"
	ColumnSelect ColumnType = "select"
)

// Column is a user-defined per-group annotation column.
type Column struct {
	ID   string     `json:"id"`
	Name string     `json:"name"`
	Type ColumnType `json:"type"`
}

// GroupPlayer is a player placed in a group, with values for that group's
// custom columns keyed by column id.
type GroupPlayer struct {
	Player
	CustomData map[string]string `json:"customData"`
}

// Group is a user-named player collection.
type Group struct {
	ID      string        `json:"id"`
	Name    string        `json:"name"`
	Columns []Column      `json:"columns"`
	Players []GroupPlayer `json:"players"`
}

// RankLevel is an alliance rank, R4 highest.
type RankLevel string

const (
	RankR4 RankLevel = "R4"
	RankR3 RankLevel = "R3"
	RankR2 RankLevel = "R2"
	RankR1 RankLevel = "R1"
)

// RankLevels orders ranks highest first, matching the display order.
var RankLevels = []RankLevel{RankR4, RankR3, RankR2, RankR1}

// RankPlayer is a player slotted into a rank list.
type RankPlayer struct {
	Player
	Rank RankLevel `json:"rank"`
}

// Rank is one rank bucket; MaxPlayers of 0 means unlimited.
type Rank struct {
	ID         RankLevel    `json:"id"`
	Name       string       `json:"name"`
	MaxPlayers int          `json:"maxPlayers,omitempty"`
	Players    []RankPlayer `json:"players"`
}

// DefaultRanks returns the empty four-bucket rank layout. R4 is capped at the
// game's leadership slot count.
func DefaultRanks() []Rank {
	return []Rank{
		{ID: RankR4, Name: "R4 Leadership", MaxPlayers: 10, Players: []RankPlayer{}},
		{ID: RankR3, Name: "R3 Elites", Players: []RankPlayer{}},
		{ID: RankR2, Name: "R2 Members", Players: []RankPlayer{}},
		{ID: RankR1, Name: "R1 Recruits", Players: []RankPlayer{}},
	}
}

// ImportStatus summarizes a bulk fid import.
type ImportStatus struct {
	Total     int      `json:"total"`
	Success   int      `json:"success"`
	Failed    int      `json:"failed"`
	FailedIDs []string `json:"failedIds"`
}

package alliance

// Info is one alliance entry: display name, map abbreviation and color.
type Info struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Abbr  string `json:"abbr"`
	Color string `json:"color"`
	Notes string `json:"notes"`
}

// Config maps alliance id to its entry.
type Config map[string]Info

// Unassigned is the pseudo-alliance id; its entry is implicit and the id can
// never be deleted.
const Unassigned = "unassigned"

// DefaultConfig returns the 5-entry default configuration.
func DefaultConfig() Config {
	return Config{
		"allianceA": {ID: "allianceA", Name: "Alliance A", Abbr: "A", Color: "#ef4444"},
		"allianceB": {ID: "allianceB", Name: "Alliance B", Abbr: "B", Color: "#3b82f6"},
		"allianceC": {ID: "allianceC", Name: "Alliance C", Abbr: "C", Color: "#10b981"},
		"allianceD": {ID: "allianceD", Name: "Alliance D", Abbr: "D", Color: "#fbbf24"},
		"allianceE": {ID: "allianceE", Name: "Alliance E", Abbr: "E", Color: "#a855f7"},
	}
}

// UnassignedColor is the marker color for buildings without an owner.
const UnassignedColor = "#6b7280"

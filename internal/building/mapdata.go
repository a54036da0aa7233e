package building

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

//go:embed data/map_data.json
var mapDataSource []byte

// MapData is the static world layout the initial roster is generated from.
type MapData struct {
	MapInfo struct {
		Size             float64    `json:"size"`
		Center           [2]float64 `json:"center"`
		CoordinateSystem string     `json:"coordinate_system"`
	} `json:"map_info"`
	SunCity *struct {
		ID   int     `json:"id"`
		X    float64 `json:"x"`
		Y    float64 `json:"y"`
		Name string  `json:"name"`
	} `json:"sun_city"`
	Fortresses []struct {
		ID int     `json:"id"`
		X  float64 `json:"x"`
		Y  float64 `json:"y"`
	} `json:"fortresses"`
	Strongholds []struct {
		ID int     `json:"id"`
		X  float64 `json:"x"`
		Y  float64 `json:"y"`
	} `json:"strongholds"`
	EngineeringStations []struct {
		ID   int     `json:"id"`
		X    float64 `json:"x"`
		Y    float64 `json:"y"`
		Name string  `json:"name"`
	} `json:"engineering_stations"`
}

// LoadMapData parses the embedded world layout.
func LoadMapData() (*MapData, error) {
	var data MapData
	if err := json.Unmarshal(mapDataSource, &data); err != nil {
		return nil, fmt.Errorf("failed to parse embedded map data: %w", err)
	}
	return &data, nil
}

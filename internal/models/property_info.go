package models

// AreaInfo is a computed or estimated floor/footprint area with a
// display string for clients that render it verbatim.
type AreaInfo struct {
	Value   float64 `json:"value"`
	Unit    string  `json:"unit"`
	Display string  `json:"display"`
}

/*
PropertyInfo is the merged building metadata for an address. It is built
from zero or more sources; when every source is absent the record still
exists with BuildingType "unknown" and an empty Sources list.
*/
type PropertyInfo struct {
	Address     string         `json:"address"`
	Coordinates *GeoCoordinate `json:"coordinates,omitempty"`

	Area         *AreaInfo `json:"area,omitempty"`
	BuildingType string    `json:"building_type"`
	Levels       *int      `json:"levels,omitempty"`
	Material     *string   `json:"material,omitempty"`
	Use          *string   `json:"use,omitempty"`

	IsResidential bool `json:"is_residential"`
	IsCommercial  bool `json:"is_commercial"`

	Sources []string `json:"sources"`
	Note    string   `json:"note,omitempty"`
}

package models

// GeoCoordinate is a resolved point, optionally carrying the provider's
// normalized address string. Transient, one per request.
type GeoCoordinate struct {
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	FormattedAddress string  `json:"formatted_address,omitempty"`
}

/*
BookableSlot is a standardized one-hour booking window derived from a
wider raw availability interval.
*/
type BookableSlot struct {
	Day       string `json:"day"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Duration  string `json:"duration"`
	Available bool   `json:"available"`
}

/*
MatchCandidate is a transient search result. DistanceMeters is always the
straight-line distance; once road refinement has run, RoadDistanceMeters
becomes the primary ranking metric and DistanceMeters is retained as a
secondary field.
*/
type MatchCandidate struct {
	Agent *Agent `json:"agent"`

	DistanceMeters float64 `json:"distance_meters"`
	DistanceKm     float64 `json:"distance_km"`

	RoadDistanceMeters *float64 `json:"road_distance_meters,omitempty"`
	RoadDistanceKm     *float64 `json:"road_distance_km,omitempty"`
	TravelSeconds      *int     `json:"travel_seconds,omitempty"`
	DistanceEstimated  bool     `json:"distance_estimated,omitempty"`

	AvailableSlots []BookableSlot `json:"available_time_slots,omitempty"`
	PropertyInfo   *PropertyInfo  `json:"building_info,omitempty"`
}

package constants

import "time"

// Search defaults
const (
	DefaultSearchRadiusMeters = 50000
	DefaultNearbyLimit        = 5
	RoadRefinementPoolSize    = 10 // straight-line candidates fetched before road refinement
	RoadRefinementTopK        = 3  // candidates that get a real routing call
	MaxBookableSlots          = 3
	SlotDurationMinutes       = 60
)

// Provider call budgets. Each external call carries its own timeout;
// a slow call degrades only its own candidate or source.
const (
	RoutingCallTimeout   = 3 * time.Second
	GeocodingCallTimeout = 5 * time.Second
	PlacesCallTimeout    = 5 * time.Second
	OverpassCallTimeout  = 35 * time.Second
)

// Footprint lookup
const FootprintSearchRadiusMeters = 25

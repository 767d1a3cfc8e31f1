package utils

import "errors"

/*
   Sentinel errors for agent-finder domain logic.
   The controller can do: if errors.Is(err, ErrXYZ) { ... }
*/
var (
	ErrGeocodingFailed     = errors.New("geocoding_failed")
	ErrProviderUnavailable = errors.New("provider_unavailable")
	ErrAgentNotFound       = errors.New("agent_not_found")
	ErrSlotNotFound        = errors.New("slot_not_found")
	ErrInvalidTimeSlot     = errors.New("invalid_time_slot")
	ErrInvalidWeekday      = errors.New("invalid_weekday")
)

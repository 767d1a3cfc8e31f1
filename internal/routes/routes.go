package routes

const (
	// Health
	Health = "/health"

	// Agent matching
	FindClosest       = "/api/v1/agents/find-closest"
	FindClosestByRoad = "/api/v1/agents/find-closest-by-road"
	FindNearby        = "/api/v1/agents/find-nearby"

	// Property lookups
	BuildingInfo = "/api/v1/building-info"

	// Agent lifecycle
	AgentsBase        = "/api/v1/agents"
	AgentByID         = "/api/v1/agents/{id}"
	AgentReactivate   = "/api/v1/agents/{id}/reactivate"
	AgentTimeSlots    = "/api/v1/agents/{id}/timeslots"
	AgentTimeSlot     = "/api/v1/agents/{id}/timeslots/{slotId}"
	AgentAvailability = "/api/v1/agents/availability"

	// Discovery and analytics
	AgentsSearchArea = "/api/v1/agents/search/area"
	AnalyticsStats   = "/api/v1/analytics/stats"
)

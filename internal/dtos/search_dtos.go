package dtos

import "github.com/davidmmovement/agent-finder-api/internal/models"

/*
TimeSlotFilter narrows a search to agents available on a weekday at a
given time of day ("HH:MM").
*/
type TimeSlotFilter struct {
	Day  string `json:"day" validate:"required,oneof=monday tuesday wednesday thursday friday saturday sunday"`
	Time string `json:"time" validate:"required,len=5"`
}

type FindAgentRequest struct {
	HouseAddress        string          `json:"house_address" validate:"required"`
	TimeSlot            *TimeSlotFilter `json:"time_slot,omitempty" validate:"omitempty"`
	MaxDistance         float64         `json:"max_distance,omitempty" validate:"omitempty,gt=0"`
	Limit               int             `json:"limit,omitempty" validate:"omitempty,gt=0,lte=50"`
	IncludeBuildingInfo bool            `json:"include_building_info,omitempty"`
}

type BuildingInfoRequest struct {
	Address     string                `json:"address" validate:"required"`
	Coordinates *models.GeoCoordinate `json:"coordinates,omitempty"`
}

type SearchInfo struct {
	HouseAddress     string                `json:"house_address"`
	HouseCoordinates *models.GeoCoordinate `json:"house_coordinates"`
	SearchRadius     float64               `json:"search_radius"`
}

type MatchedAgentDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
	Street      string `json:"street"`
	City        string `json:"city"`
	State       string `json:"state"`
	ZipCode     string `json:"zip_code"`

	DistanceKm         float64  `json:"distance_km"`
	RoadDistanceKm     *float64 `json:"road_distance_km,omitempty"`
	TravelTimeMinutes  *int     `json:"travel_time_minutes,omitempty"`
	IsDistanceEstimate bool     `json:"is_distance_estimated,omitempty"`

	AvailableTimeSlots []models.BookableSlot `json:"available_time_slots"`
	BuildingInfo       *models.PropertyInfo  `json:"building_info,omitempty"`
}

type FindClosestResponse struct {
	Success    bool            `json:"success"`
	Agent      MatchedAgentDTO `json:"agent"`
	SearchInfo SearchInfo      `json:"search_info"`
}

type FindNearbyResponse struct {
	Success    bool              `json:"success"`
	Count      int               `json:"count"`
	Agents     []MatchedAgentDTO `json:"agents"`
	SearchInfo SearchInfo        `json:"search_info"`
}

type BuildingInfoResponse struct {
	Success      bool                 `json:"success"`
	BuildingInfo *models.PropertyInfo `json:"building_info"`
}

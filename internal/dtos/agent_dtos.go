package dtos

import "github.com/davidmmovement/agent-finder-api/internal/models"

type AddressPayload struct {
	Street  string `json:"street" validate:"required"`
	City    string `json:"city" validate:"required"`
	State   string `json:"state" validate:"required"`
	ZipCode string `json:"zip_code" validate:"required"`
}

type TimeSlotPayload struct {
	Day       string `json:"day" validate:"required,oneof=monday tuesday wednesday thursday friday saturday sunday"`
	StartTime string `json:"start_time" validate:"required,len=5"`
	EndTime   string `json:"end_time" validate:"required,len=5"`
	Available bool   `json:"available"`
}

type CreateAgentRequest struct {
	Name        string            `json:"name" validate:"required"`
	Email       string            `json:"email" validate:"omitempty,email"`
	PhoneNumber string            `json:"phone_number" validate:"required"`
	Address     AddressPayload    `json:"address" validate:"required"`
	TimeSlots   []TimeSlotPayload `json:"time_slots" validate:"omitempty,dive"`
}

type UpdateAgentRequest struct {
	Name        *string         `json:"name,omitempty"`
	Email       *string         `json:"email,omitempty" validate:"omitempty,email"`
	PhoneNumber *string         `json:"phone_number,omitempty"`
	Address     *AddressPayload `json:"address,omitempty"`
}

type UpdateAvailabilityRequest struct {
	AgentID    string `json:"agent_id" validate:"required,uuid"`
	TimeSlotID string `json:"time_slot_id" validate:"required,uuid"`
	Available  bool   `json:"available"`
}

type AgentResponse struct {
	Success bool          `json:"success"`
	Agent   *models.Agent `json:"agent"`
}

type AgentListResponse struct {
	Success bool            `json:"success"`
	Count   int             `json:"count"`
	Agents  []*models.Agent `json:"agents"`
}

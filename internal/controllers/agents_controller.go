package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/davidmmovement/agent-finder-api/internal/constants"
	"github.com/davidmmovement/agent-finder-api/internal/dtos"
	"github.com/davidmmovement/agent-finder-api/internal/services"
	"github.com/davidmmovement/agent-finder-api/internal/utils"
)

type AgentsController struct {
	agentService *services.AgentService
	validate     *validator.Validate
}

func NewAgentsController(as *services.AgentService) *AgentsController {
	return &AgentsController{
		agentService: as,
		validate:     validator.New(),
	}
}

// ----------------------------------------------------------------
// POST /api/v1/agents
// ----------------------------------------------------------------
func (c *AgentsController) CreateAgentHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.CreateAgentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload,
			"Invalid JSON payload", nil, err)
		return
	}
	if err := c.validate.Struct(req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeValidation,
			"Invalid agent payload", nil, err)
		return
	}

	agent, err := c.agentService.Create(r.Context(), &req)
	if err != nil {
		respondAgentError(w, err, "Failed to create agent")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dtos.AgentResponse{Success: true, Agent: agent})
}

// ----------------------------------------------------------------
// GET /api/v1/agents/{id}
// ----------------------------------------------------------------
func (c *AgentsController) GetAgentHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	agent, err := c.agentService.Get(r.Context(), id)
	if err != nil {
		respondAgentError(w, err, "Failed to fetch agent")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.AgentResponse{Success: true, Agent: agent})
}

// ----------------------------------------------------------------
// PATCH /api/v1/agents/{id}
// ----------------------------------------------------------------
func (c *AgentsController) UpdateAgentHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req dtos.UpdateAgentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload,
			"Invalid JSON payload", nil, err)
		return
	}
	if err := c.validate.Struct(req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeValidation,
			"Invalid agent payload", nil, err)
		return
	}

	agent, err := c.agentService.Update(r.Context(), id, &req)
	if err != nil {
		respondAgentError(w, err, "Failed to update agent")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.AgentResponse{Success: true, Agent: agent})
}

// ----------------------------------------------------------------
// DELETE /api/v1/agents/{id}
// ----------------------------------------------------------------
func (c *AgentsController) DeactivateAgentHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := c.agentService.Deactivate(r.Context(), id); err != nil {
		respondAgentError(w, err, "Failed to deactivate agent")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]any{"success": true})
}

// ----------------------------------------------------------------
// POST /api/v1/agents/{id}/reactivate
// ----------------------------------------------------------------
func (c *AgentsController) ReactivateAgentHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := c.agentService.Reactivate(r.Context(), id); err != nil {
		respondAgentError(w, err, "Failed to reactivate agent")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]any{"success": true})
}

// ----------------------------------------------------------------
// GET /api/v1/agents
// ----------------------------------------------------------------
func (c *AgentsController) ListAgentsHandler(w http.ResponseWriter, r *http.Request) {
	agents, err := c.agentService.List(r.Context())
	if err != nil {
		respondAgentError(w, err, "Failed to list agents")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.AgentListResponse{
		Success: true,
		Count:   len(agents),
		Agents:  agents,
	})
}

// ----------------------------------------------------------------
// GET /api/v1/agents/search/area?city=...&state=...&limit=...
// ----------------------------------------------------------------
func (c *AgentsController) SearchByAreaHandler(w http.ResponseWriter, r *http.Request) {
	city := r.URL.Query().Get("city")
	if city == "" {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeValidation,
			"city query parameter is required", nil, nil)
		return
	}
	state := r.URL.Query().Get("state")

	limit := constants.DefaultNearbyLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			utils.RespondErrorWithCode(
				w, http.StatusBadRequest, utils.ErrCodeValidation,
				"limit must be a positive integer", nil, err)
			return
		}
		limit = parsed
	}

	agents, err := c.agentService.ListByCity(r.Context(), city, state, limit)
	if err != nil {
		respondAgentError(w, err, "Failed to search agents by area")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.AgentListResponse{
		Success: true,
		Count:   len(agents),
		Agents:  agents,
	})
}

// ----------------------------------------------------------------
// GET /api/v1/analytics/stats
// ----------------------------------------------------------------
func (c *AgentsController) StatsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := c.agentService.Stats(r.Context())
	if err != nil {
		respondAgentError(w, err, "Failed to compute stats")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"stats":   stats,
	})
}

// ----------------------------------------------------------------
// POST /api/v1/agents/{id}/timeslots
// ----------------------------------------------------------------
func (c *AgentsController) AddTimeSlotHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req dtos.TimeSlotPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload,
			"Invalid JSON payload", nil, err)
		return
	}
	if err := c.validate.Struct(req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeValidation,
			"Invalid time slot payload", nil, err)
		return
	}

	slot, err := c.agentService.AddTimeSlot(r.Context(), id, &req)
	if err != nil {
		respondAgentError(w, err, "Failed to add time slot")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, map[string]any{
		"success":   true,
		"time_slot": slot,
	})
}

// ----------------------------------------------------------------
// DELETE /api/v1/agents/{id}/timeslots/{slotId}
// ----------------------------------------------------------------
func (c *AgentsController) RemoveTimeSlotHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	slotID, ok := pathUUID(w, r, "slotId")
	if !ok {
		return
	}

	if err := c.agentService.RemoveTimeSlot(r.Context(), id, slotID); err != nil {
		respondAgentError(w, err, "Failed to remove time slot")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]any{"success": true})
}

// ----------------------------------------------------------------
// PATCH /api/v1/agents/availability
// ----------------------------------------------------------------
func (c *AgentsController) UpdateAvailabilityHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.UpdateAvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload,
			"Invalid JSON payload", nil, err)
		return
	}
	if err := c.validate.Struct(req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeValidation,
			"agent_id and time_slot_id must be valid UUIDs", nil, err)
		return
	}

	agentID, _ := uuid.Parse(req.AgentID)
	slotID, _ := uuid.Parse(req.TimeSlotID)

	if err := c.agentService.SetTimeSlotAvailability(r.Context(), agentID, slotID, req.Available); err != nil {
		respondAgentError(w, err, "Failed to update availability")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]any{"success": true})
}

// -------------------------- helpers --------------------------

func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	raw := mux.Vars(r)[name]
	id, err := uuid.Parse(raw)
	if err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeValidation,
			name+" must be a valid UUID", nil, err)
		return uuid.Nil, false
	}
	return id, true
}

func respondAgentError(w http.ResponseWriter, err error, publicMessage string) {
	switch {
	case errors.Is(err, utils.ErrAgentNotFound):
		utils.RespondErrorWithCode(
			w, http.StatusNotFound, utils.ErrCodeNotFound,
			"Agent not found", nil, err)
	case errors.Is(err, utils.ErrSlotNotFound):
		utils.RespondErrorWithCode(
			w, http.StatusNotFound, utils.ErrCodeNotFound,
			"Time slot not found", nil, err)
	case errors.Is(err, utils.ErrInvalidTimeSlot), errors.Is(err, utils.ErrInvalidWeekday):
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeValidation,
			"Invalid time slot", nil, err)
	case errors.Is(err, utils.ErrGeocodingFailed):
		utils.RespondErrorWithCode(
			w, http.StatusUnprocessableEntity, utils.ErrCodeGeocodingFailed,
			"Could not resolve the agent address", nil, err)
	case errors.Is(err, utils.ErrProviderUnavailable):
		utils.RespondErrorWithCode(
			w, http.StatusServiceUnavailable, utils.ErrCodeProviderFailure,
			"Geocoding provider unavailable", nil, err)
	default:
		utils.RespondErrorWithCode(
			w, http.StatusInternalServerError, utils.ErrCodeInternal,
			publicMessage, nil, err)
	}
}

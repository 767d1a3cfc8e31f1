package controllers

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/davidmmovement/agent-finder-api/internal/constants"
	"github.com/davidmmovement/agent-finder-api/internal/dtos"
	"github.com/davidmmovement/agent-finder-api/internal/models"
	"github.com/davidmmovement/agent-finder-api/internal/services"
	"github.com/davidmmovement/agent-finder-api/internal/utils"
)

type SearchController struct {
	searchService *services.SearchService
	validate      *validator.Validate
}

func NewSearchController(ss *services.SearchService) *SearchController {
	return &SearchController{
		searchService: ss,
		validate:      validator.New(),
	}
}

// ----------------------------------------------------------------
// POST /api/v1/agents/find-closest
// ----------------------------------------------------------------
func (c *SearchController) FindClosestHandler(w http.ResponseWriter, r *http.Request) {
	req, ok := c.decodeFindRequest(w, r)
	if !ok {
		return
	}

	match, origin, err := c.searchService.FindClosest(r.Context(), req)
	if err != nil {
		respondSearchError(w, err)
		return
	}
	if match == nil {
		respondNoAgents(w, req, origin)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, dtos.FindClosestResponse{
		Success:    true,
		Agent:      toMatchedAgentDTO(match),
		SearchInfo: searchInfo(req, origin),
	})
}

// ----------------------------------------------------------------
// POST /api/v1/agents/find-closest-by-road
// ----------------------------------------------------------------
func (c *SearchController) FindClosestByRoadHandler(w http.ResponseWriter, r *http.Request) {
	req, ok := c.decodeFindRequest(w, r)
	if !ok {
		return
	}

	match, origin, err := c.searchService.FindClosestByRoad(r.Context(), req)
	if err != nil {
		respondSearchError(w, err)
		return
	}
	if match == nil {
		respondNoAgents(w, req, origin)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, dtos.FindClosestResponse{
		Success:    true,
		Agent:      toMatchedAgentDTO(match),
		SearchInfo: searchInfo(req, origin),
	})
}

// ----------------------------------------------------------------
// POST /api/v1/agents/find-nearby
// ----------------------------------------------------------------
func (c *SearchController) FindNearbyHandler(w http.ResponseWriter, r *http.Request) {
	req, ok := c.decodeFindRequest(w, r)
	if !ok {
		return
	}

	candidates, origin, err := c.searchService.FindNearby(r.Context(), req)
	if err != nil {
		respondSearchError(w, err)
		return
	}
	if len(candidates) == 0 {
		respondNoAgents(w, req, origin)
		return
	}

	agents := make([]dtos.MatchedAgentDTO, 0, len(candidates))
	for _, cand := range candidates {
		agents = append(agents, toMatchedAgentDTO(cand))
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.FindNearbyResponse{
		Success:    true,
		Count:      len(agents),
		Agents:     agents,
		SearchInfo: searchInfo(req, origin),
	})
}

// ----------------------------------------------------------------
// POST /api/v1/building-info
// ----------------------------------------------------------------
func (c *SearchController) BuildingInfoHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.BuildingInfoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload,
			"Invalid JSON payload", nil, err)
		return
	}
	if err := c.validate.Struct(req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeValidation,
			"address is required", nil, err)
		return
	}

	info := c.searchService.BuildingInfo(r.Context(), &req)
	utils.RespondWithJSON(w, http.StatusOK, dtos.BuildingInfoResponse{
		Success:      true,
		BuildingInfo: info,
	})
}

// -------------------------- helpers --------------------------

func (c *SearchController) decodeFindRequest(w http.ResponseWriter, r *http.Request) (*dtos.FindAgentRequest, bool) {
	var req dtos.FindAgentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload,
			"Invalid JSON payload", nil, err)
		return nil, false
	}
	if err := c.validate.Struct(req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeValidation,
			"house_address is required", nil, err)
		return nil, false
	}
	return &req, true
}

// An unresolvable address is the caller's problem (422); a dead
// geocoding provider is not (503). Each gets its own code so clients can
// distinguish both from an empty result.
func respondSearchError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, utils.ErrGeocodingFailed):
		utils.RespondErrorWithCode(
			w, http.StatusUnprocessableEntity, utils.ErrCodeGeocodingFailed,
			"Could not resolve the provided address", nil, err)
	case errors.Is(err, utils.ErrProviderUnavailable):
		utils.RespondErrorWithCode(
			w, http.StatusServiceUnavailable, utils.ErrCodeProviderFailure,
			"Geocoding provider unavailable", nil, err)
	default:
		utils.RespondErrorWithCode(
			w, http.StatusInternalServerError, utils.ErrCodeInternal,
			"Agent search failed", nil, err)
	}
}

func respondNoAgents(w http.ResponseWriter, req *dtos.FindAgentRequest, origin *models.GeoCoordinate) {
	utils.RespondErrorWithCode(
		w, http.StatusNotFound, utils.ErrCodeNoAgentsFound,
		"No agents matched the search criteria",
		searchInfo(req, origin), nil)
}

func searchInfo(req *dtos.FindAgentRequest, origin *models.GeoCoordinate) dtos.SearchInfo {
	radius := req.MaxDistance
	if radius <= 0 {
		radius = constants.DefaultSearchRadiusMeters
	}
	return dtos.SearchInfo{
		HouseAddress:     req.HouseAddress,
		HouseCoordinates: origin,
		SearchRadius:     radius,
	}
}

func toMatchedAgentDTO(cand *models.MatchCandidate) dtos.MatchedAgentDTO {
	dto := dtos.MatchedAgentDTO{
		ID:          cand.Agent.ID.String(),
		Name:        cand.Agent.Name,
		PhoneNumber: cand.Agent.PhoneNumber,
		Street:      cand.Agent.Street,
		City:        cand.Agent.City,
		State:       cand.Agent.State,
		ZipCode:     cand.Agent.ZipCode,

		DistanceKm:         cand.DistanceKm,
		RoadDistanceKm:     cand.RoadDistanceKm,
		IsDistanceEstimate: cand.DistanceEstimated,

		AvailableTimeSlots: cand.AvailableSlots,
		BuildingInfo:       cand.PropertyInfo,
	}
	if cand.TravelSeconds != nil {
		dto.TravelTimeMinutes = utils.Ptr(int(math.Round(float64(*cand.TravelSeconds) / 60)))
	}
	if dto.AvailableTimeSlots == nil {
		dto.AvailableTimeSlots = []models.BookableSlot{}
	}
	return dto
}

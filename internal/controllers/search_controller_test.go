package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/davidmmovement/agent-finder-api/internal/dtos"
	"github.com/davidmmovement/agent-finder-api/internal/models"
	"github.com/davidmmovement/agent-finder-api/internal/repositories"
	"github.com/davidmmovement/agent-finder-api/internal/services"
	"github.com/davidmmovement/agent-finder-api/internal/utils"
)

type stubAgentRepo struct {
	agents []*models.Agent
}

func (s *stubAgentRepo) Create(ctx context.Context, agent *models.Agent) error { return nil }
func (s *stubAgentRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Agent, error) {
	return nil, nil
}
func (s *stubAgentRepo) Update(ctx context.Context, agent *models.Agent) error      { return nil }
func (s *stubAgentRepo) SetActive(ctx context.Context, id uuid.UUID, ok bool) error { return nil }
func (s *stubAgentRepo) ListActive(ctx context.Context) ([]*models.Agent, error) {
	return s.agents, nil
}
func (s *stubAgentRepo) ListActiveNear(ctx context.Context, lat, lng, radiusMeters float64) ([]*models.Agent, error) {
	return s.agents, nil
}
func (s *stubAgentRepo) ListByCity(ctx context.Context, city, state string, limit int) ([]*models.Agent, error) {
	return s.agents, nil
}
func (s *stubAgentRepo) Stats(ctx context.Context) (*repositories.AgentStats, error) {
	return &repositories.AgentStats{}, nil
}
func (s *stubAgentRepo) AddTimeSlot(ctx context.Context, agentID uuid.UUID, slot *models.TimeSlot) error {
	return nil
}
func (s *stubAgentRepo) RemoveTimeSlot(ctx context.Context, agentID, slotID uuid.UUID) error {
	return nil
}
func (s *stubAgentRepo) SetTimeSlotAvailability(ctx context.Context, agentID, slotID uuid.UUID, ok bool) error {
	return nil
}

type stubResolver struct {
	coords *models.GeoCoordinate
	err    error
}

func (s *stubResolver) Resolve(ctx context.Context, address string) (*models.GeoCoordinate, error) {
	return s.coords, s.err
}

type stubRefiner struct{}

func (s *stubRefiner) RefineByRoad(ctx context.Context, origin *models.GeoCoordinate, candidates []*models.MatchCandidate, topK int) []*models.MatchCandidate {
	return candidates
}

type stubProperty struct{}

func (s *stubProperty) Lookup(ctx context.Context, address string, coords *models.GeoCoordinate) *models.PropertyInfo {
	return &models.PropertyInfo{Address: address, BuildingType: "house", Sources: []string{"osm"}}
}

func newTestSearchController(agents []*models.Agent, resolver *stubResolver) *SearchController {
	svc := services.NewSearchService(&stubAgentRepo{agents: agents}, resolver, &stubRefiner{}, &stubProperty{})
	return NewSearchController(svc)
}

func activeYerevanAgent(name string) *models.Agent {
	return &models.Agent{
		ID: uuid.New(), Name: name, City: "Yerevan",
		Latitude: 40.1778, Longitude: 44.5134, IsActive: true,
		TimeSlots: []models.TimeSlot{
			{ID: uuid.New(), Day: "monday", StartTime: "09:00", EndTime: "17:00", Available: true},
		},
	}
}

func postJSON(t *testing.T, handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestFindClosestHandlerSuccess(t *testing.T) {
	ctrl := newTestSearchController(
		[]*models.Agent{activeYerevanAgent("Tigran Ghukasyan")},
		&stubResolver{coords: &models.GeoCoordinate{Latitude: 40.1777, Longitude: 44.5133}})

	rec := postJSON(t, ctrl.FindClosestHandler, `{"house_address":"Republic Square, Yerevan"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp dtos.FindClosestResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.Equal(t, "Tigran Ghukasyan", resp.Agent.Name)
	require.NotNil(t, resp.SearchInfo.HouseCoordinates)
	require.NotEmpty(t, resp.Agent.AvailableTimeSlots)
}

func TestFindClosestHandlerMissingAddress(t *testing.T) {
	ctrl := newTestSearchController(nil, &stubResolver{})

	rec := postJSON(t, ctrl.FindClosestHandler, `{}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var errResp utils.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	require.Equal(t, utils.ErrCodeValidation, errResp.Code)
}

func TestFindClosestHandlerMalformedJSON(t *testing.T) {
	ctrl := newTestSearchController(nil, &stubResolver{})

	rec := postJSON(t, ctrl.FindClosestHandler, `{"house_address":`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFindClosestHandlerGeocodingFailure(t *testing.T) {
	ctrl := newTestSearchController(nil, &stubResolver{err: utils.ErrGeocodingFailed})

	rec := postJSON(t, ctrl.FindClosestHandler, `{"house_address":"???"}`)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var errResp utils.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	require.Equal(t, utils.ErrCodeGeocodingFailed, errResp.Code)
}

func TestFindClosestHandlerProviderUnavailable(t *testing.T) {
	ctrl := newTestSearchController(nil, &stubResolver{err: utils.ErrProviderUnavailable})

	rec := postJSON(t, ctrl.FindClosestHandler, `{"house_address":"15 Abovyan St, Yerevan"}`)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var errResp utils.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	require.Equal(t, utils.ErrCodeProviderFailure, errResp.Code)
}

func TestFindClosestHandlerNoAgents(t *testing.T) {
	ctrl := newTestSearchController(nil,
		&stubResolver{coords: &models.GeoCoordinate{Latitude: 40.1777, Longitude: 44.5133}})

	rec := postJSON(t, ctrl.FindClosestHandler, `{"house_address":"Republic Square, Yerevan"}`)

	require.Equal(t, http.StatusNotFound, rec.Code)
	var errResp utils.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	require.Equal(t, utils.ErrCodeNoAgentsFound, errResp.Code)
	// The search criteria ride along so callers can see what produced
	// the empty result.
	require.NotNil(t, errResp.Details)
}

func TestFindNearbyHandlerSuccess(t *testing.T) {
	ctrl := newTestSearchController(
		[]*models.Agent{activeYerevanAgent("Armen Sargsyan"), activeYerevanAgent("Anahit Petrosyan")},
		&stubResolver{coords: &models.GeoCoordinate{Latitude: 40.1777, Longitude: 44.5133}})

	rec := postJSON(t, ctrl.FindNearbyHandler, `{"house_address":"Republic Square, Yerevan","limit":5}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp dtos.FindNearbyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 2, resp.Count)
	require.Len(t, resp.Agents, 2)
}

func TestFindClosestByRoadHandlerSuccess(t *testing.T) {
	ctrl := newTestSearchController(
		[]*models.Agent{activeYerevanAgent("Davit Karapetyan")},
		&stubResolver{coords: &models.GeoCoordinate{Latitude: 40.1777, Longitude: 44.5133}})

	rec := postJSON(t, ctrl.FindClosestByRoadHandler, `{"house_address":"Republic Square, Yerevan"}`)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestBuildingInfoHandler(t *testing.T) {
	ctrl := newTestSearchController(nil,
		&stubResolver{coords: &models.GeoCoordinate{Latitude: 40.1777, Longitude: 44.5133}})

	rec := postJSON(t, ctrl.BuildingInfoHandler, `{"address":"12 Abovyan St, Yerevan"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp dtos.BuildingInfoResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.Equal(t, "house", resp.BuildingInfo.BuildingType)
}

func TestMatchedAgentTravelMinutesRoundToNearest(t *testing.T) {
	cand := &models.MatchCandidate{
		Agent:          activeYerevanAgent("Davit Karapetyan"),
		DistanceMeters: 1200,
		DistanceKm:     1.2,
	}

	cand.TravelSeconds = utils.Ptr(89)
	require.Equal(t, 1, *toMatchedAgentDTO(cand).TravelTimeMinutes)

	cand.TravelSeconds = utils.Ptr(90)
	require.Equal(t, 2, *toMatchedAgentDTO(cand).TravelTimeMinutes)

	cand.TravelSeconds = utils.Ptr(29)
	require.Equal(t, 0, *toMatchedAgentDTO(cand).TravelTimeMinutes)
}

func TestBuildingInfoHandlerMissingAddress(t *testing.T) {
	ctrl := newTestSearchController(nil, &stubResolver{})

	rec := postJSON(t, ctrl.BuildingInfoHandler, `{}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

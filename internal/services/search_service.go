package services

import (
	"context"
	"sort"

	"github.com/davidmmovement/agent-finder-api/internal/constants"
	"github.com/davidmmovement/agent-finder-api/internal/dtos"
	"github.com/davidmmovement/agent-finder-api/internal/models"
	"github.com/davidmmovement/agent-finder-api/internal/repositories"
	"github.com/davidmmovement/agent-finder-api/internal/utils"
)

type addressResolver interface {
	Resolve(ctx context.Context, address string) (*models.GeoCoordinate, error)
}

type roadRefiner interface {
	RefineByRoad(ctx context.Context, origin *models.GeoCoordinate, candidates []*models.MatchCandidate, topK int) []*models.MatchCandidate
}

type propertyLookup interface {
	Lookup(ctx context.Context, address string, coords *models.GeoCoordinate) *models.PropertyInfo
}

/*
SearchService matches a property address to nearby available agents.

The pipeline: resolve the address to coordinates, pull the active agents
inside a bounding box, apply the exact haversine radius cut, filter by
requested availability, attach bookable one-hour slots, and rank by
distance. Road-distance refinement is a separate, more expensive pass
used only by the closest-by-road flow.
*/
type SearchService struct {
	repo     repositories.AgentRepository
	geocoder addressResolver
	routing  roadRefiner
	property propertyLookup
}

func NewSearchService(
	repo repositories.AgentRepository,
	geocoder addressResolver,
	routing roadRefiner,
	property propertyLookup,
) *SearchService {
	return &SearchService{repo: repo, geocoder: geocoder, routing: routing, property: property}
}

// Search runs the straight-line matching pipeline and returns candidates
// sorted by ascending distance, capped at limit. An empty result is not
// an error; only geocoding and storage failures are.
func (s *SearchService) Search(ctx context.Context, req *dtos.FindAgentRequest) ([]*models.MatchCandidate, *models.GeoCoordinate, error) {
	origin, err := s.geocoder.Resolve(ctx, req.HouseAddress)
	if err != nil {
		return nil, nil, err
	}

	radius := req.MaxDistance
	if radius <= 0 {
		radius = constants.DefaultSearchRadiusMeters
	}

	agents, err := s.repo.ListActiveNear(ctx, origin.Latitude, origin.Longitude, radius)
	if err != nil {
		return nil, nil, err
	}

	candidates := make([]*models.MatchCandidate, 0, len(agents))
	for _, agent := range agents {
		distance := utils.DistanceMeters(
			origin.Latitude, origin.Longitude, agent.Latitude, agent.Longitude)
		if distance > radius {
			continue
		}
		if req.TimeSlot != nil {
			if !hasAvailabilityAt(agent, req.TimeSlot.Day, req.TimeSlot.Time) {
				continue
			}
		} else if !hasAnyAvailableSlot(agent) {
			// Without a time filter an agent still needs something
			// bookable; fully unavailable agents never match.
			continue
		}

		candidates = append(candidates, &models.MatchCandidate{
			Agent:          agent,
			DistanceMeters: distance,
			DistanceKm:     roundKm(distance),
			AvailableSlots: bookableSlotsFor(agent, req.TimeSlot),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].DistanceMeters < candidates[j].DistanceMeters
	})

	limit := req.Limit
	if limit <= 0 {
		limit = constants.DefaultNearbyLimit
	}
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	utils.Logger.WithFields(map[string]interface{}{
		"address":    req.HouseAddress,
		"radius":     radius,
		"prefilter":  len(agents),
		"candidates": len(candidates),
	}).Info("Agent search completed")

	return candidates, origin, nil
}

// FindNearby is Search with the default result cap applied.
func (s *SearchService) FindNearby(ctx context.Context, req *dtos.FindAgentRequest) ([]*models.MatchCandidate, *models.GeoCoordinate, error) {
	return s.Search(ctx, req)
}

// FindClosest returns the single nearest matching agent by straight-line
// distance, or nil when none matches.
func (s *SearchService) FindClosest(ctx context.Context, req *dtos.FindAgentRequest) (*models.MatchCandidate, *models.GeoCoordinate, error) {
	narrowed := *req
	narrowed.Limit = 1

	candidates, origin, err := s.Search(ctx, &narrowed)
	if err != nil {
		return nil, nil, err
	}
	if len(candidates) == 0 {
		return nil, origin, nil
	}

	match := candidates[0]
	if req.IncludeBuildingInfo && s.property != nil {
		match.PropertyInfo = s.property.Lookup(ctx, req.HouseAddress, origin)
	}
	return match, origin, nil
}

/*
FindClosestByRoad selects the winner by actual driving distance instead
of straight-line distance. It widens the straight-line pool, refines the
top candidates with the routing provider, and picks the head of the
re-ranked list. A near-by-air agent across a river can lose to one with
a better road approach.
*/
func (s *SearchService) FindClosestByRoad(ctx context.Context, req *dtos.FindAgentRequest) (*models.MatchCandidate, *models.GeoCoordinate, error) {
	widened := *req
	widened.Limit = constants.RoadRefinementPoolSize

	candidates, origin, err := s.Search(ctx, &widened)
	if err != nil {
		return nil, nil, err
	}
	if len(candidates) == 0 {
		return nil, origin, nil
	}

	refined := s.routing.RefineByRoad(ctx, origin, candidates, constants.RoadRefinementTopK)

	match := refined[0]
	if req.IncludeBuildingInfo && s.property != nil {
		match.PropertyInfo = s.property.Lookup(ctx, req.HouseAddress, origin)
	}
	return match, origin, nil
}

// BuildingInfo resolves coordinates when the caller omitted them, then
// delegates to the property aggregator. Never returns an error: missing
// data degrades to an "unknown" record.
func (s *SearchService) BuildingInfo(ctx context.Context, req *dtos.BuildingInfoRequest) *models.PropertyInfo {
	coords := req.Coordinates
	if coords == nil {
		if resolved, err := s.geocoder.Resolve(ctx, req.Address); err == nil {
			coords = resolved
		}
	}
	return s.property.Lookup(ctx, req.Address, coords)
}

// hasAvailabilityAt reports whether the agent has an available interval
// on the given weekday covering the "HH:MM" time. Zero-padded wall-clock
// strings compare correctly as plain strings.
func hasAnyAvailableSlot(agent *models.Agent) bool {
	for _, slot := range agent.TimeSlots {
		if slot.Available {
			return true
		}
	}
	return false
}

func hasAvailabilityAt(agent *models.Agent, day, timeOfDay string) bool {
	for _, slot := range agent.TimeSlots {
		if slot.Available && slot.Day == day &&
			slot.StartTime <= timeOfDay && timeOfDay <= slot.EndTime {
			return true
		}
	}
	return false
}

// bookableSlotsFor standardizes the agent's raw intervals into one-hour
// bookable slots. With a filter, only same-day intervals feed the
// generator and the requested time anchors the preference sort.
func bookableSlotsFor(agent *models.Agent, filter *dtos.TimeSlotFilter) []models.BookableSlot {
	var intervals []models.TimeSlot
	preferred := ""
	for _, slot := range agent.TimeSlots {
		if !slot.Available {
			continue
		}
		if filter != nil && slot.Day != filter.Day {
			continue
		}
		intervals = append(intervals, slot)
	}
	if filter != nil {
		preferred = filter.Time
	}
	return GenerateOneHourSlots(intervals, preferred)
}

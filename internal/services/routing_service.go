package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	routing "cloud.google.com/go/maps/routing/apiv2"
	"cloud.google.com/go/maps/routing/apiv2/routingpb"
	"google.golang.org/api/option"
	"google.golang.org/genproto/googleapis/type/latlng"
	"google.golang.org/grpc/metadata"

	"github.com/davidmmovement/agent-finder-api/internal/constants"
	"github.com/davidmmovement/agent-finder-api/internal/models"
	"github.com/davidmmovement/agent-finder-api/internal/utils"
)

// RouteLeg is a single origin→destination driving result.
type RouteLeg struct {
	DistanceMeters  float64
	DurationSeconds int
}

// routeFetcher abstracts the routing provider so tests can substitute a
// fake. A nil fetcher means "always estimate".
type routeFetcher interface {
	FetchRoute(ctx context.Context, origin, dest *models.GeoCoordinate) (*RouteLeg, error)
}

/*
RoutingService re-ranks straight-line candidates by real driving
distance. The top-K candidates each get one provider call, issued
concurrently and joined before re-sorting; any per-candidate failure
degrades that candidate to a haversine estimate, never the batch.
*/
type RoutingService struct {
	fetcher routeFetcher
}

func NewRoutingService(apiKey string) *RoutingService {
	if apiKey == "" {
		utils.Logger.Warn("Routing API key is empty; road distances will be Haversine estimates")
		return &RoutingService{}
	}
	return &RoutingService{fetcher: &gmapsRouteFetcher{apiKey: apiKey}}
}

func (s *RoutingService) RefineByRoad(
	ctx context.Context,
	origin *models.GeoCoordinate,
	candidates []*models.MatchCandidate,
	topK int,
) []*models.MatchCandidate {
	if len(candidates) == 0 {
		return candidates
	}

	k := topK
	if k > len(candidates) {
		k = len(candidates)
	}

	var wg sync.WaitGroup
	for i := 0; i < k; i++ {
		wg.Add(1)
		go func(cand *models.MatchCandidate) {
			defer wg.Done()
			s.resolveOne(ctx, origin, cand)
		}(candidates[i])
	}
	wg.Wait()

	// Candidates past the top K keep their straight-line figure as the
	// road estimate; every candidate ends up with a comparable metric.
	for _, cand := range candidates[k:] {
		applyEstimate(cand)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return *candidates[i].RoadDistanceMeters < *candidates[j].RoadDistanceMeters
	})
	return candidates
}

// resolveOne settles exactly one candidate: real route data on success,
// haversine estimate on no-route or provider failure.
func (s *RoutingService) resolveOne(ctx context.Context, origin *models.GeoCoordinate, cand *models.MatchCandidate) {
	if s.fetcher == nil {
		applyEstimate(cand)
		return
	}

	callCtx, cancel := context.WithTimeout(ctx, constants.RoutingCallTimeout)
	defer cancel()

	dest := &models.GeoCoordinate{Latitude: cand.Agent.Latitude, Longitude: cand.Agent.Longitude}
	leg, err := s.fetcher.FetchRoute(callCtx, origin, dest)
	if err != nil {
		utils.Logger.WithError(err).WithField("agent_id", cand.Agent.ID).
			Warn("Routing call failed; falling back to Haversine estimate")
		applyEstimate(cand)
		return
	}

	cand.RoadDistanceMeters = utils.Ptr(leg.DistanceMeters)
	cand.RoadDistanceKm = utils.Ptr(roundKm(leg.DistanceMeters))
	cand.TravelSeconds = utils.Ptr(leg.DurationSeconds)
	cand.DistanceEstimated = false
}

func applyEstimate(cand *models.MatchCandidate) {
	cand.RoadDistanceMeters = utils.Ptr(cand.DistanceMeters)
	cand.RoadDistanceKm = utils.Ptr(roundKm(cand.DistanceMeters))
	cand.TravelSeconds = nil
	cand.DistanceEstimated = true
}

func roundKm(meters float64) float64 {
	return math.Round(meters/1000*100) / 100
}

/*──────────── reusable, thread-safe Routes client ────────────*/

var (
	routesClientOnce sync.Once
	routesClient     *routing.RoutesClient
	routesClientErr  error
)

type gmapsRouteFetcher struct {
	apiKey string
}

func (f *gmapsRouteFetcher) client(ctx context.Context) (*routing.RoutesClient, error) {
	routesClientOnce.Do(func() {
		utils.Logger.Info("Initializing Google Maps Routes client...")
		routesClient, routesClientErr = routing.NewRoutesRESTClient(
			ctx,
			option.WithAPIKey(f.apiKey),
			option.WithEndpoint("https://routes.googleapis.com"),
		)
		if routesClientErr != nil {
			utils.Logger.WithError(routesClientErr).Error("Failed to initialize Google Maps Routes client")
		}
	})
	return routesClient, routesClientErr
}

func (f *gmapsRouteFetcher) FetchRoute(ctx context.Context, origin, dest *models.GeoCoordinate) (*RouteLeg, error) {
	cli, err := f.client(ctx)
	if err != nil {
		return nil, err
	}

	req := &routingpb.ComputeRoutesRequest{
		Origin: &routingpb.Waypoint{
			LocationType: &routingpb.Waypoint_Location{
				Location: &routingpb.Location{
					LatLng: &latlng.LatLng{Latitude: origin.Latitude, Longitude: origin.Longitude},
				},
			},
		},
		Destination: &routingpb.Waypoint{
			LocationType: &routingpb.Waypoint_Location{
				Location: &routingpb.Location{
					LatLng: &latlng.LatLng{Latitude: dest.Latitude, Longitude: dest.Longitude},
				},
			},
		},
		TravelMode:        routingpb.RouteTravelMode_DRIVE,
		RoutingPreference: routingpb.RoutingPreference_TRAFFIC_UNAWARE,
	}

	ctxWithFieldMask := metadata.AppendToOutgoingContext(
		ctx,
		"X-Goog-FieldMask",
		"routes.duration,routes.distanceMeters",
	)

	resp, err := cli.ComputeRoutes(ctxWithFieldMask, req)
	if err != nil {
		return nil, err
	}
	if len(resp.Routes) == 0 {
		return nil, fmt.Errorf("no routes returned")
	}

	route := resp.Routes[0]
	leg := &RouteLeg{DistanceMeters: float64(route.GetDistanceMeters())}
	if route.Duration != nil {
		leg.DurationSeconds = int(route.Duration.AsDuration().Seconds() + 0.5)
	}
	return leg, nil
}

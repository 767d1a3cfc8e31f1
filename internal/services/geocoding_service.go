package services

import (
	"context"
	"fmt"
	"strings"

	"googlemaps.github.io/maps"

	"github.com/davidmmovement/agent-finder-api/internal/constants"
	"github.com/davidmmovement/agent-finder-api/internal/models"
	"github.com/davidmmovement/agent-finder-api/internal/utils"
)

// geocodeClient is the slice of *maps.Client the geocoder uses; tests
// substitute a fake.
type geocodeClient interface {
	Geocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
}

/*
GeocodingService resolves a free-text address to coordinates. With an API
key it uses the Google Geocoding API: no-match fails with
ErrGeocodingFailed, a provider error with ErrProviderUnavailable. Without
a key it estimates from a static city table and never fails, which keeps
the engine usable offline.
*/
type GeocodingService struct {
	client geocodeClient
}

func NewGeocodingService(apiKey string) *GeocodingService {
	if apiKey == "" {
		return &GeocodingService{}
	}
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		utils.Logger.WithError(err).Error("Failed to initialize Google Maps client; geocoding will use offline estimates")
		return &GeocodingService{}
	}
	return &GeocodingService{client: client}
}

func (s *GeocodingService) Resolve(ctx context.Context, address string) (*models.GeoCoordinate, error) {
	if s.client == nil {
		return s.EstimateCoordinates(address), nil
	}

	callCtx, cancel := context.WithTimeout(ctx, constants.GeocodingCallTimeout)
	defer cancel()

	results, err := s.client.Geocode(callCtx, &maps.GeocodingRequest{Address: address})
	if err != nil {
		utils.Logger.WithError(err).WithField("address", address).Error("Geocoding request failed")
		return nil, fmt.Errorf("%w: %v", utils.ErrProviderUnavailable, err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: no results for %q", utils.ErrGeocodingFailed, address)
	}

	first := results[0]
	return &models.GeoCoordinate{
		Latitude:         first.Geometry.Location.Lat,
		Longitude:        first.Geometry.Location.Lng,
		FormattedAddress: first.FormattedAddress,
	}, nil
}

// Known city-name substrings for the offline path.
var cityEstimates = []struct {
	key string
	lat float64
	lng float64
}{
	{"new york", 40.7128, -74.0060},
	{"los angeles", 34.0522, -118.2437},
	{"chicago", 41.8781, -87.6298},
	{"houston", 29.7604, -95.3698},
	{"phoenix", 33.4484, -112.0740},
	{"yerevan", 40.1777, 44.5133},
}

// EstimateCoordinates maps known city-name substrings to approximate
// coordinates, defaulting to New York. Never fails.
func (s *GeocodingService) EstimateCoordinates(address string) *models.GeoCoordinate {
	lower := strings.ToLower(address)
	for _, c := range cityEstimates {
		if strings.Contains(lower, c.key) {
			return &models.GeoCoordinate{
				Latitude:         c.lat,
				Longitude:        c.lng,
				FormattedAddress: address,
			}
		}
	}
	return &models.GeoCoordinate{
		Latitude:         cityEstimates[0].lat,
		Longitude:        cityEstimates[0].lng,
		FormattedAddress: address,
	}
}

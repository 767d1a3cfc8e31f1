package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/davidmmovement/agent-finder-api/internal/models"
	"github.com/davidmmovement/agent-finder-api/internal/utils"
	"github.com/davidmmovement/agent-finder-api/internal/utils/overpass"
)

type fakeFootprints struct {
	footprints []overpass.Footprint
	err        error
}

func (f *fakeFootprints) BuildingsAround(ctx context.Context, lat, lng, radiusMeters float64) ([]overpass.Footprint, error) {
	return f.footprints, f.err
}

type fakePlaces struct {
	place  *placeContext
	coords *models.GeoCoordinate
	err    error
}

func (f *fakePlaces) FindPlace(ctx context.Context, address string) (*placeContext, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.place, nil
}

func (f *fakePlaces) GeocodePlace(ctx context.Context, address string) (*models.GeoCoordinate, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.coords, nil
}

func yerevanCoords() *models.GeoCoordinate {
	return &models.GeoCoordinate{Latitude: 40.1777, Longitude: 44.5133}
}

func TestLookupHouseFootprint(t *testing.T) {
	svc := &PropertyInfoService{
		footprints: &fakeFootprints{footprints: []overpass.Footprint{
			{Tags: map[string]string{
				"building":          "house",
				"building:levels":   "2",
				"building:material": "brick",
			}},
		}},
	}

	info := svc.Lookup(context.Background(), "12 Abovyan St, Yerevan", yerevanCoords())

	require.Equal(t, "house", info.BuildingType)
	require.True(t, info.IsResidential)
	require.False(t, info.IsCommercial)
	require.NotNil(t, info.Levels)
	require.Equal(t, 2, *info.Levels)
	require.NotNil(t, info.Material)
	require.Equal(t, "brick", *info.Material)
	require.Equal(t, []string{"osm"}, info.Sources)

	// No area tag and no geometry: per-type estimate scaled by levels.
	require.NotNil(t, info.Area)
	require.InDelta(t, 240, info.Area.Value, 0.01)
	require.Equal(t, "square_meters", info.Area.Unit)
	require.Equal(t, "240 m²", info.Area.Display)
}

func TestLookupGeometrySupersedesEstimate(t *testing.T) {
	// Roughly 100m x 100m square around the reference point.
	const d = 0.0009
	square := []utils.LatLng{
		{Lat: 40.1777, Lon: 44.5133},
		{Lat: 40.1777 + d, Lon: 44.5133},
		{Lat: 40.1777 + d, Lon: 44.5133 + d/0.7642},
		{Lat: 40.1777, Lon: 44.5133 + d/0.7642},
	}
	svc := &PropertyInfoService{
		footprints: &fakeFootprints{footprints: []overpass.Footprint{
			{Tags: map[string]string{"building": "house"}, Geometry: square},
		}},
	}

	info := svc.Lookup(context.Background(), "12 Abovyan St, Yerevan", yerevanCoords())

	require.NotNil(t, info.Area)
	require.InEpsilon(t, 10000, info.Area.Value, 0.06)
}

func TestLookupAreaDisplayRoundsToNearest(t *testing.T) {
	svc := &PropertyInfoService{
		footprints: &fakeFootprints{footprints: []overpass.Footprint{
			{Tags: map[string]string{"building": "house", "building:floor_area": "149.6"}},
		}},
	}

	info := svc.Lookup(context.Background(), "12 Abovyan St, Yerevan", yerevanCoords())

	require.NotNil(t, info.Area)
	require.InDelta(t, 149.6, info.Area.Value, 0.01)
	require.Equal(t, "150 m²", info.Area.Display)
}

func TestLookupExplicitAreaTag(t *testing.T) {
	svc := &PropertyInfoService{
		footprints: &fakeFootprints{footprints: []overpass.Footprint{
			{Tags: map[string]string{"building": "apartments", "building:floor_area": "1450"}},
		}},
	}

	info := svc.Lookup(context.Background(), "3 Tumanyan St, Yerevan", yerevanCoords())

	require.NotNil(t, info.Area)
	require.InDelta(t, 1450, info.Area.Value, 0.01)
}

func TestLookupClosestFootprintWins(t *testing.T) {
	near := overpass.Footprint{
		Tags: map[string]string{"building": "house"},
		Geometry: []utils.LatLng{
			{Lat: 40.17771, Lon: 44.51331},
			{Lat: 40.17772, Lon: 44.51332},
			{Lat: 40.17773, Lon: 44.51331},
		},
	}
	far := overpass.Footprint{
		Tags: map[string]string{"building": "commercial"},
		Geometry: []utils.LatLng{
			{Lat: 40.1790, Lon: 44.5150},
			{Lat: 40.1791, Lon: 44.5151},
			{Lat: 40.1792, Lon: 44.5150},
		},
	}
	svc := &PropertyInfoService{
		footprints: &fakeFootprints{footprints: []overpass.Footprint{far, near}},
	}

	info := svc.Lookup(context.Background(), "12 Abovyan St, Yerevan", yerevanCoords())

	require.Equal(t, "house", info.BuildingType)
}

func TestLookupGoogleFillsGapsOnly(t *testing.T) {
	svc := &PropertyInfoService{
		footprints: &fakeFootprints{footprints: []overpass.Footprint{
			{Tags: map[string]string{"building": "house"}},
		}},
		places: &fakePlaces{place: &placeContext{
			BuildingType:  "commercial",
			IsCommercial:  true,
			IsResidential: false,
			Types:         []string{"establishment"},
		}},
	}

	info := svc.Lookup(context.Background(), "12 Abovyan St, Yerevan", yerevanCoords())

	// Footprint finding is concrete; the place context must not overwrite it.
	require.Equal(t, "house", info.BuildingType)
	require.True(t, info.IsResidential)
	require.Equal(t, []string{"osm", "google"}, info.Sources)
}

func TestLookupGoogleSuppliesTypeWhenFootprintGeneric(t *testing.T) {
	svc := &PropertyInfoService{
		footprints: &fakeFootprints{footprints: nil},
		places: &fakePlaces{place: &placeContext{
			BuildingType:  "apartment",
			IsResidential: true,
			Types:         []string{"apartment_building"},
		}},
	}

	info := svc.Lookup(context.Background(), "3 Tumanyan St, Yerevan", yerevanCoords())

	require.Equal(t, "apartment", info.BuildingType)
	require.True(t, info.IsResidential)
	require.Equal(t, []string{"google"}, info.Sources)
}

func TestLookupNeverFails(t *testing.T) {
	svc := &PropertyInfoService{
		footprints: &fakeFootprints{err: errors.New("overpass unreachable")},
		places:     &fakePlaces{err: errors.New("quota exceeded")},
	}

	info := svc.Lookup(context.Background(), "nowhere at all", yerevanCoords())

	require.NotNil(t, info)
	require.Equal(t, "unknown", info.BuildingType)
	require.Empty(t, info.Sources)
	require.Equal(t, "Unable to retrieve property information", info.Note)
}

func TestLookupWithoutCoordinatesOrPlaces(t *testing.T) {
	svc := &PropertyInfoService{footprints: &fakeFootprints{}}

	info := svc.Lookup(context.Background(), "12 Abovyan St, Yerevan", nil)

	require.Equal(t, "unknown", info.BuildingType)
	require.Nil(t, info.Coordinates)
	require.Empty(t, info.Sources)
}

func TestOverpassClientParsesResponse(t *testing.T) {
	const body = `{"elements":[{"type":"way","id":42,"tags":{"building":"house","building:levels":"2"},"geometry":[{"lat":40.1777,"lon":44.5133},{"lat":40.1778,"lon":44.5133},{"lat":40.1778,"lon":44.5134}]}]}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseForm())
		require.Contains(t, r.PostForm.Get("data"), `way["building"]`)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	client := overpass.NewClient(srv.URL)
	footprints, err := client.BuildingsAround(context.Background(), 40.1777, 44.5133, 25)

	require.NoError(t, err)
	require.Len(t, footprints, 1)
	require.Equal(t, "house", footprints[0].Tags["building"])
	require.Len(t, footprints[0].Geometry, 3)
}

func TestBuildingTypeFromTags(t *testing.T) {
	cases := []struct {
		name string
		tags map[string]string
		want string
	}{
		{"explicit type", map[string]string{"building": "detached"}, "detached"},
		{"generic yes falls through to amenity", map[string]string{"building": "yes", "amenity": "cafe"}, "amenity:cafe"},
		{"shop prefix", map[string]string{"building": "yes", "shop": "bakery"}, "shop:bakery"},
		{"office prefix", map[string]string{"building": "yes", "office": "lawyer"}, "office:lawyer"},
		{"bare building", map[string]string{"building": "yes"}, "building"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, buildingTypeFromTags(tc.tags))
		})
	}
}

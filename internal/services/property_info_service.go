package services

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"googlemaps.github.io/maps"

	"github.com/davidmmovement/agent-finder-api/internal/constants"
	"github.com/davidmmovement/agent-finder-api/internal/models"
	"github.com/davidmmovement/agent-finder-api/internal/utils"
	"github.com/davidmmovement/agent-finder-api/internal/utils/overpass"
)

// footprintSource is the slice of the Overpass client the aggregator
// uses; tests substitute a fake.
type footprintSource interface {
	BuildingsAround(ctx context.Context, lat, lng, radiusMeters float64) ([]overpass.Footprint, error)
}

// placesSource supplies categorical place context and place-based
// geocoding. Nil when no provider credential is configured.
type placesSource interface {
	FindPlace(ctx context.Context, address string) (*placeContext, error)
	GeocodePlace(ctx context.Context, address string) (*models.GeoCoordinate, error)
}

type placeContext struct {
	BuildingType  string
	IsResidential bool
	IsCommercial  bool
	Types         []string
}

/*
PropertyInfoService merges building metadata from independent sources: a
community footprint dataset (OSM via Overpass) and a places/context
provider. Sources form a fixed-priority chain; later sources fill only
missing or "unknown" fields. Lookup never fails — total source absence
yields a minimal record with BuildingType "unknown".
*/
type PropertyInfoService struct {
	footprints footprintSource
	places     placesSource
}

func NewPropertyInfoService(apiKey, overpassURL string) *PropertyInfoService {
	svc := &PropertyInfoService{footprints: overpass.NewClient(overpassURL)}
	if apiKey != "" {
		client, err := maps.NewClient(maps.WithAPIKey(apiKey))
		if err != nil {
			utils.Logger.WithError(err).Error("Failed to initialize Places client; property lookups will use footprint data only")
		} else {
			svc.places = &gmapsPlacesSource{client: client}
		}
	}
	return svc
}

// partialPropertyRecord is one source's optional-field contribution.
// Merging fills only unset fields, in source order.
type partialPropertyRecord struct {
	source        string
	buildingType  string
	levels        *int
	material      *string
	use           *string
	isResidential *bool
	isCommercial  *bool
	areaSqMeters  *float64
	geometry      []utils.LatLng
}

func (s *PropertyInfoService) Lookup(ctx context.Context, address string, coords *models.GeoCoordinate) *models.PropertyInfo {
	result := &models.PropertyInfo{
		Address:      address,
		Coordinates:  coords,
		BuildingType: "unknown",
		Sources:      []string{},
	}

	// Place-lookup geocode is best effort; without coordinates the
	// geometry-dependent fields simply stay empty.
	if coords == nil && s.places != nil {
		callCtx, cancel := context.WithTimeout(ctx, constants.PlacesCallTimeout)
		geocoded, err := s.places.GeocodePlace(callCtx, address)
		cancel()
		if err != nil {
			utils.Logger.WithError(err).WithField("address", address).Debug("Place geocode failed; continuing without coordinates")
		} else {
			coords = geocoded
			result.Coordinates = coords
		}
	}

	var partials []partialPropertyRecord

	if coords != nil {
		if osm := s.footprintRecord(ctx, coords); osm != nil {
			partials = append(partials, *osm)
		}
	}

	if s.places != nil {
		if g := s.placesRecord(ctx, address); g != nil {
			partials = append(partials, *g)
		}
	}

	mergePartials(result, partials)

	if result.BuildingType == "" {
		result.BuildingType = "unknown"
	}
	if len(result.Sources) == 0 {
		result.Note = "Unable to retrieve property information"
	}
	return result
}

// footprintRecord queries the community dataset around the point and
// extracts tags from the closest candidate footprint.
func (s *PropertyInfoService) footprintRecord(ctx context.Context, coords *models.GeoCoordinate) *partialPropertyRecord {
	callCtx, cancel := context.WithTimeout(ctx, constants.OverpassCallTimeout)
	defer cancel()

	footprints, err := s.footprints.BuildingsAround(
		callCtx, coords.Latitude, coords.Longitude, constants.FootprintSearchRadiusMeters)
	if err != nil {
		utils.Logger.WithError(err).Warn("Footprint lookup failed; continuing without OSM data")
		return nil
	}
	if len(footprints) == 0 {
		return nil
	}

	building := closestFootprint(footprints, coords.Latitude, coords.Longitude)
	tags := building.Tags

	rec := &partialPropertyRecord{
		source:        "osm",
		buildingType:  buildingTypeFromTags(tags),
		isResidential: utils.Ptr(isResidentialOSM(tags)),
		isCommercial:  utils.Ptr(isCommercialOSM(tags)),
		geometry:      building.Geometry,
	}
	if v, ok := tags["building:levels"]; ok {
		if levels, err := strconv.Atoi(v); err == nil {
			rec.levels = &levels
		}
	}
	if v, ok := tags["building:material"]; ok {
		rec.material = &v
	}
	if use := firstTag(tags, "building:use", "amenity", "shop"); use != "" {
		rec.use = &use
	}
	rec.areaSqMeters = utils.Ptr(areaFromTags(tags))
	return rec
}

func (s *PropertyInfoService) placesRecord(ctx context.Context, address string) *partialPropertyRecord {
	callCtx, cancel := context.WithTimeout(ctx, constants.PlacesCallTimeout)
	defer cancel()

	place, err := s.places.FindPlace(callCtx, address)
	if err != nil {
		utils.Logger.WithError(err).Debug("Places context lookup failed; skipping supplementary data")
		return nil
	}
	return &partialPropertyRecord{
		source:        "google",
		buildingType:  place.BuildingType,
		isResidential: utils.Ptr(place.IsResidential),
		isCommercial:  utils.Ptr(place.IsCommercial),
	}
}

/*
mergePartials folds source records into the result in priority order.
A later source only fills fields the earlier sources left missing or
"unknown" — it never overwrites a concrete finding. Footprint geometry,
when present, supersedes any tag-derived area estimate via the spherical
shoelace formula.
*/
func mergePartials(result *models.PropertyInfo, partials []partialPropertyRecord) {
	var geometry []utils.LatLng
	var area *float64

	for _, p := range partials {
		result.Sources = append(result.Sources, p.source)

		if p.buildingType != "" && (result.BuildingType == "" || result.BuildingType == "unknown") {
			result.BuildingType = p.buildingType
			if p.isResidential != nil {
				result.IsResidential = *p.isResidential
			}
			if p.isCommercial != nil {
				result.IsCommercial = *p.isCommercial
			}
		}
		if result.Levels == nil && p.levels != nil {
			result.Levels = p.levels
		}
		if result.Material == nil && p.material != nil {
			result.Material = p.material
		}
		if result.Use == nil && p.use != nil {
			result.Use = p.use
		}
		if area == nil && p.areaSqMeters != nil {
			area = p.areaSqMeters
		}
		if geometry == nil && len(p.geometry) > 0 {
			geometry = p.geometry
		}
	}

	if len(geometry) >= 3 {
		area = utils.Ptr(utils.PolygonAreaSqMeters(geometry))
	}
	if area != nil && *area > 0 {
		result.Area = &models.AreaInfo{
			Value:   *area,
			Unit:    "square_meters",
			Display: fmt.Sprintf("%d m²", int(math.Round(*area))),
		}
	}
}

func closestFootprint(footprints []overpass.Footprint, lat, lng float64) overpass.Footprint {
	if len(footprints) == 1 {
		return footprints[0]
	}
	closest := footprints[0]
	minDistance := -1.0
	for _, fp := range footprints {
		if len(fp.Geometry) == 0 {
			continue
		}
		c := utils.Centroid(fp.Geometry)
		d := utils.DistanceMeters(lat, lng, c.Lat, c.Lon)
		if minDistance < 0 || d < minDistance {
			minDistance = d
			closest = fp
		}
	}
	return closest
}

/*──────────── OSM tag interpretation ────────────*/

func buildingTypeFromTags(tags map[string]string) string {
	if b := tags["building"]; b != "" && b != "yes" {
		return b
	}
	if v := tags["amenity"]; v != "" {
		return "amenity:" + v
	}
	if v := tags["shop"]; v != "" {
		return "shop:" + v
	}
	if v := tags["office"]; v != "" {
		return "office:" + v
	}
	return "building"
}

// Rough per-type footprint estimates in square meters, multiplied by
// level count. Only used when neither an explicit area tag nor usable
// geometry exists.
var areaEstimatesByType = map[string]float64{
	"house":       120,
	"detached":    150,
	"apartments":  800,
	"residential": 600,
	"commercial":  400,
	"office":      300,
	"retail":      200,
	"yes":         100,
}

func areaFromTags(tags map[string]string) float64 {
	if v, ok := tags["building:floor_area"]; ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	if v, ok := tags["area"]; ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}

	levels := 1
	if v, ok := tags["building:levels"]; ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			levels = n
		}
	}
	base, ok := areaEstimatesByType[tags["building"]]
	if !ok {
		base = areaEstimatesByType["yes"]
	}
	return base * float64(levels)
}

func isResidentialOSM(tags map[string]string) bool {
	switch tags["building"] {
	case "residential", "apartments", "house", "detached":
		return true
	}
	return tags["residential"] == "yes"
}

func isCommercialOSM(tags map[string]string) bool {
	switch tags["building"] {
	case "commercial", "office", "retail":
		return true
	}
	return tags["shop"] != "" || tags["office"] != "" || tags["amenity"] != ""
}

func firstTag(tags map[string]string, keys ...string) string {
	for _, k := range keys {
		if v := tags[k]; v != "" {
			return v
		}
	}
	return ""
}

/*──────────── Google Places source ────────────*/

type gmapsPlacesSource struct {
	client *maps.Client
}

func (g *gmapsPlacesSource) FindPlace(ctx context.Context, address string) (*placeContext, error) {
	resp, err := g.client.FindPlaceFromText(ctx, &maps.FindPlaceFromTextRequest{
		Input:     address,
		InputType: maps.FindPlaceFromTextInputTypeTextQuery,
		Fields: []maps.PlaceSearchFieldMask{
			maps.PlaceSearchFieldMaskPlaceID,
			maps.PlaceSearchFieldMaskTypes,
		},
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("no place candidates for %q", address)
	}

	types := resp.Candidates[0].Types
	return &placeContext{
		BuildingType:  buildingTypeFromPlaceTypes(types),
		IsResidential: hasAnyType(types, "subpremise", "apartment_building", "housing_complex"),
		IsCommercial:  hasAnyType(types, "establishment", "store", "office_building"),
		Types:         types,
	}, nil
}

func (g *gmapsPlacesSource) GeocodePlace(ctx context.Context, address string) (*models.GeoCoordinate, error) {
	resp, err := g.client.FindPlaceFromText(ctx, &maps.FindPlaceFromTextRequest{
		Input:     address,
		InputType: maps.FindPlaceFromTextInputTypeTextQuery,
		Fields: []maps.PlaceSearchFieldMask{
			maps.PlaceSearchFieldMaskGeometry,
		},
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("no place candidates for %q", address)
	}
	loc := resp.Candidates[0].Geometry.Location
	return &models.GeoCoordinate{Latitude: loc.Lat, Longitude: loc.Lng}, nil
}

func buildingTypeFromPlaceTypes(types []string) string {
	if hasAnyType(types, "apartment_building") {
		return "apartment"
	}
	if hasAnyType(types, "subpremise") {
		return "residential_unit"
	}
	if hasAnyType(types, "establishment") {
		return "commercial"
	}
	return "unknown"
}

func hasAnyType(types []string, wanted ...string) bool {
	for _, t := range types {
		for _, w := range wanted {
			if strings.EqualFold(t, w) {
				return true
			}
		}
	}
	return false
}

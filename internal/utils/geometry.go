package utils

import (
	"math"

	"github.com/umahmood/haversine"
)

const earthRadiusMeters = 6371000

// LatLng is a bare coordinate pair. Lon naming follows the footprint
// provider's payloads.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

/*────────────────────────────────────────────────────────────────────────────
  DistanceMeters uses Haversine for a direct “as-the-crow-flies” distance
  on a spherical Earth (R = 6371 km). City-scale approximation, no
  ellipsoidal correction.
────────────────────────────────────────────────────────────────────────────*/
func DistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := haversine.Coord{Lat: lat1, Lon: lon1}
	p2 := haversine.Coord{Lat: lat2, Lon: lon2}
	_, km := haversine.Distance(p1, p2)
	return km * 1000
}

// Centroid averages the vertices of a footprint outline. Good enough for
// picking the closest of a handful of candidate buildings.
func Centroid(points []LatLng) LatLng {
	if len(points) == 0 {
		return LatLng{}
	}
	var sumLat, sumLon float64
	for _, p := range points {
		sumLat += p.Lat
		sumLon += p.Lon
	}
	n := float64(len(points))
	return LatLng{Lat: sumLat / n, Lon: sumLon / n}
}

/*────────────────────────────────────────────────────────────────────────────
  PolygonAreaSqMeters is a spherical-coordinate analogue of the planar
  shoelace formula: cross products of successive vertices in radians,
  half the absolute sum, scaled by R². Approximate, but the magnitude is
  what downstream consumers expect; do not swap in exact geodesy.
────────────────────────────────────────────────────────────────────────────*/
func PolygonAreaSqMeters(points []LatLng) float64 {
	if len(points) < 3 {
		return 0
	}

	var area float64
	n := len(points)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		xi := points[i].Lon * math.Pi / 180
		yi := points[i].Lat * math.Pi / 180
		xj := points[j].Lon * math.Pi / 180
		yj := points[j].Lat * math.Pi / 180
		area += xi*yj - xj*yi
	}
	area = math.Abs(area) / 2

	return math.Round(area * earthRadiusMeters * earthRadiusMeters)
}

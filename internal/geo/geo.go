// Package geo implements the small amount of spherical geometry the server
// needs: great-circle distance for nearby-pin discovery and location
// jittering for privacy fuzzing.
package geo

import (
	"math"
	"math/rand/v2"
)

// EarthRadiusMeters is the mean Earth radius used for haversine distance.
const EarthRadiusMeters = 6371000.0

// DefaultJitterDegrees shifts a coordinate by up to ±0.002 degrees on each
// axis, roughly ±200 m of displacement at mid latitudes.
const DefaultJitterDegrees = 0.004

// Point is a WGS84 coordinate.
type Point struct {
	Lat float64
	Lng float64
}

// DistanceMeters returns the haversine great-circle distance between a and b.
func DistanceMeters(a, b Point) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)

	return 2 * EarthRadiusMeters * math.Asin(math.Sqrt(h))
}

// Fuzz returns p displaced by a uniformly random offset within
// ±spread/2 degrees on each axis. The real coordinate never leaves the
// server; only the fuzzed one is used for public discovery.
func Fuzz(p Point, spread float64) Point {
	return Point{
		Lat: p.Lat + (rand.Float64()-0.5)*spread,
		Lng: p.Lng + (rand.Float64()-0.5)*spread,
	}
}

// BoundingBox returns a lat/lng box that fully contains the circle of the
// given radius around center. Used to pre-filter rows with plain index
// range scans before the exact distance check.
func BoundingBox(center Point, radiusMeters float64) (minLat, maxLat, minLng, maxLng float64) {
	dLat := radiusMeters / EarthRadiusMeters * 180 / math.Pi
	minLat, maxLat = center.Lat-dLat, center.Lat+dLat

	cos := math.Cos(center.Lat * math.Pi / 180)
	if cos < 1e-6 {
		// polar query, give up on longitude filtering
		return minLat, maxLat, -180, 180
	}
	dLng := dLat / cos
	return minLat, maxLat, center.Lng - dLng, center.Lng + dLng
}

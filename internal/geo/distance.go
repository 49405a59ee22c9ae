package geo

import "math"

const earthRadiusKm = 6371

// LiveRadiusKm is the fixed radius used when filtering by the user's live position.
const LiveRadiusKm = 10.0

type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// DistanceKm returns the great-circle distance between two points on a spherical earth.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	// rounding can push a slightly past 1 for antipodal points
	a = math.Min(math.Max(a, 0), 1)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// WithinRadius reports whether point lies within radiusKm of origin.
// A missing coordinate on either side is never within radius.
func WithinRadius(origin, point *Coordinate, radiusKm float64) bool {
	if origin == nil || point == nil {
		return false
	}
	return DistanceKm(origin.Latitude, origin.Longitude, point.Latitude, point.Longitude) <= radiusKm
}

func toRad(deg float64) float64 {
	return deg * (math.Pi / 180)
}

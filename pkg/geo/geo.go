// Package geo provides great-circle distance math for proximity queries.
//
// Distances are in meters, computed with the haversine formula on a spherical
// earth model (mean radius 6371008.8 m, IUGG). The Postgres stores compute the
// same formula in SQL so in-memory and database proximity results agree.
package geo

import "math"

// EarthRadiusMeters is the IUGG mean earth radius.
const EarthRadiusMeters = 6371008.8

// Point is a WGS84 coordinate pair. Longitude first matches the GeoJSON
// ordering used on the wire.
type Point struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

// Distance returns the great-circle distance between two points in meters.
func Distance(a, b Point) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon

	return 2 * EarthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(h)))
}

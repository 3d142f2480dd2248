package geo

import (
	"math"

	"github.com/nileways/trip-planner/internal/models"
)

const earthRadiusKm = 6371.0

func toRad(deg float64) float64 { return deg * math.Pi / 180 }
func toDeg(rad float64) float64 { return rad * 180 / math.Pi }

// Distance returns the great-circle distance in kilometers between two
// coordinates using the haversine formula, rounded to 2 decimal places.
func Distance(a, b models.Coordinate) float64 {
	lat1 := toRad(a.Latitude)
	lon1 := toRad(a.Longitude)
	lat2 := toRad(b.Latitude)
	lon2 := toRad(b.Longitude)

	dlat := lat2 - lat1
	dlon := lon2 - lon1

	h := math.Pow(math.Sin(dlat/2), 2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(dlon/2), 2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return math.Round(earthRadiusKm*c*100) / 100
}

// Midpoint returns the geographic midpoint of two coordinates, computed in
// Cartesian space to stay correct across the antimeridian.
func Midpoint(a, b models.Coordinate) models.Coordinate {
	lat1 := toRad(a.Latitude)
	lon1 := toRad(a.Longitude)
	lat2 := toRad(b.Latitude)
	lon2 := toRad(b.Longitude)

	x1, y1, z1 := math.Cos(lat1)*math.Cos(lon1), math.Cos(lat1)*math.Sin(lon1), math.Sin(lat1)
	x2, y2, z2 := math.Cos(lat2)*math.Cos(lon2), math.Cos(lat2)*math.Sin(lon2), math.Sin(lat2)

	x := (x1 + x2) / 2
	y := (y1 + y2) / 2
	z := (z1 + z2) / 2

	lon := math.Atan2(y, x)
	hyp := math.Sqrt(x*x + y*y)
	lat := math.Atan2(z, hyp)

	return models.Coordinate{Latitude: toDeg(lat), Longitude: toDeg(lon)}
}

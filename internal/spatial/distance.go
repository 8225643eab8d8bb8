package spatial

import (
	"github.com/golang/geo/s2"

	"github.com/jengzang/routesync/internal/models"
)

// Constants
const (
	EarthRadiusMeters = 6371000.0 // Earth's mean radius in meters
)

// HaversineDistance calculates the great-circle distance between two points in meters
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lon1)
	p2 := s2.LatLngFromDegrees(lat2, lon2)
	return p1.Distance(p2).Radians() * EarthRadiusMeters
}

// SampleDistance is HaversineDistance between two route samples
func SampleDistance(a, b models.Sample) float64 {
	return HaversineDistance(a.Lat, a.Lon, b.Lat, b.Lon)
}

// PathLength calculates the total length of a route trace in meters.
// Fewer than two samples have zero length.
func PathLength(samples []models.Sample) float64 {
	if len(samples) < 2 {
		return 0
	}

	var total float64
	for i := 1; i < len(samples); i++ {
		total += SampleDistance(samples[i-1], samples[i])
	}
	return total
}

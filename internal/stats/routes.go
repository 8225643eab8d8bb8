package stats

import (
	"github.com/jengzang/routesync/internal/models"
)

// LengthFunc returns a route's length in meters
type LengthFunc func(models.RouteRecord) float64

// Aggregate reduces routes in one pass into per-type distance totals and
// the longest route per type. Ties keep the first route encountered.
// Routes of ActivityOther are ignored.
func Aggregate(routes []models.RouteRecord, length LengthFunc) models.AggregateStatistics {
	if length == nil {
		length = (*LengthCache)(nil).Length
	}

	var result models.AggregateStatistics
	for i := range routes {
		bucket, ok := result.For(routes[i].ActivityType)
		if !ok {
			continue
		}

		d := length(routes[i])
		bucket.TotalDistanceMeters += d
		bucket.RouteCount++
		if bucket.LongestRoute == nil || d > bucket.LongestDistanceMeters {
			r := routes[i]
			bucket.LongestRoute = &r
			bucket.LongestDistanceMeters = d
		}
	}
	return result
}

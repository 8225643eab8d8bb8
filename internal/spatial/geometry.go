package spatial

import (
	"github.com/golang/geo/s2"

	"github.com/jengzang/routesync/internal/models"
)

// BoundingRect calculates the minimal enclosing rectangle of a trace.
// The result is empty when there are no samples.
func BoundingRect(samples []models.Sample) s2.Rect {
	rect := s2.EmptyRect()
	for _, p := range samples {
		rect = rect.AddPoint(s2.LatLngFromDegrees(p.Lat, p.Lon))
	}
	return rect
}

// UnionRect unions the bounding rectangles of several routes, skipping
// routes without samples
func UnionRect(routes []models.RouteRecord) s2.Rect {
	rect := s2.EmptyRect()
	for _, r := range routes {
		if len(r.Samples) == 0 {
			continue
		}
		rect = rect.Union(BoundingRect(r.Samples))
	}
	return rect
}

// RectContains reports whether the rectangle contains a sample
func RectContains(rect s2.Rect, p models.Sample) bool {
	return rect.ContainsLatLng(s2.LatLngFromDegrees(p.Lat, p.Lon))
}

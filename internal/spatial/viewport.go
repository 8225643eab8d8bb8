package spatial

import (
	"errors"
	"math"

	"github.com/golang/geo/s2"

	"github.com/jengzang/routesync/internal/models"
)

// Fitting errors. Both mean "keep the previous viewport".
var (
	ErrEmptyRoute = errors.New("route has no sample points")
	ErrNoRoutes   = errors.New("no routes to fit")
)

// Viewport fitting parameters (degrees / ratios)
const (
	SingleRoutePadding = 0.20
	MultiRoutePadding  = 0.10
	ZeroExtentEpsilon  = 0.001
	MinSpanDegrees     = 0.005
	maxLatSpan         = 180.0
	maxLonSpan         = 360.0
)

// FitRoute computes a padded viewport around one route
func FitRoute(route models.RouteRecord) (models.Viewport, error) {
	if len(route.Samples) == 0 {
		return models.Viewport{}, ErrEmptyRoute
	}
	return fitRect(BoundingRect(route.Samples), SingleRoutePadding), nil
}

// FitRoutes computes a viewport around a set of routes. A single route is
// fitted like FitRoute; several routes are unioned and padded less.
func FitRoutes(routes []models.RouteRecord) (models.Viewport, error) {
	switch len(routes) {
	case 0:
		return models.Viewport{}, ErrNoRoutes
	case 1:
		return FitRoute(routes[0])
	}

	rect := UnionRect(routes)
	if rect.IsEmpty() {
		return models.Viewport{}, ErrEmptyRoute
	}
	return fitRect(rect, MultiRoutePadding), nil
}

func fitRect(rect s2.Rect, padding float64) models.Viewport {
	size := rect.Size()
	center := rect.Center()

	return models.Viewport{
		CenterLat: center.Lat.Degrees(),
		CenterLon: center.Lng.Degrees(),
		LatSpan:   padSpan(size.Lat.Degrees(), padding, maxLatSpan),
		LonSpan:   padSpan(size.Lng.Degrees(), padding, maxLonSpan),
	}
}

// padSpan substitutes epsilon for a degenerate extent, pads it and clamps
// it into [MinSpanDegrees, limit]
func padSpan(extent, padding, limit float64) float64 {
	if extent <= 0 || math.IsNaN(extent) {
		extent = ZeroExtentEpsilon
	}
	span := extent * (1 + padding)
	if span < MinSpanDegrees {
		span = MinSpanDegrees
	}
	if span > limit {
		span = limit
	}
	return span
}

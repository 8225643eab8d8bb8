package models

// ActivityTotals aggregates the routes of one activity type
type ActivityTotals struct {
	TotalDistanceMeters   float64      `json:"totalDistanceMeters"`
	RouteCount            int          `json:"routeCount"`
	LongestRoute          *RouteRecord `json:"longestRoute,omitempty"`
	LongestDistanceMeters float64      `json:"longestDistanceMeters"`
}

// AggregateStatistics holds per-activity totals and record-setting routes.
// It is derived on demand and never persisted.
type AggregateStatistics struct {
	Walking ActivityTotals `json:"walking"`
	Running ActivityTotals `json:"running"`
	Cycling ActivityTotals `json:"cycling"`
}

// For returns the bucket of an activity type; ok is false for ActivityOther
func (s *AggregateStatistics) For(t ActivityType) (totals *ActivityTotals, ok bool) {
	switch t {
	case ActivityWalking:
		return &s.Walking, true
	case ActivityRunning:
		return &s.Running, true
	case ActivityCycling:
		return &s.Cycling, true
	default:
		return nil, false
	}
}

// TotalDistance returns the summed distance for a type in meters
func (s AggregateStatistics) TotalDistance(t ActivityType) float64 {
	if b, ok := s.For(t); ok {
		return b.TotalDistanceMeters
	}
	return 0
}

// LongestRoute returns the longest route of a type, or nil
func (s AggregateStatistics) LongestRoute(t ActivityType) *RouteRecord {
	if b, ok := s.For(t); ok {
		return b.LongestRoute
	}
	return nil
}

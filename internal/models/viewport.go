package models

// Viewport is the map region currently rendered (degrees)
type Viewport struct {
	CenterLat float64 `json:"centerLat"`
	CenterLon float64 `json:"centerLon"`
	LatSpan   float64 `json:"latSpan"`
	LonSpan   float64 `json:"lonSpan"`
}

// IsZero reports whether no viewport was ever fitted
func (v Viewport) IsZero() bool {
	return v == Viewport{}
}

package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ActivityType is the workout category of a route
type ActivityType string

// ActivityType constants
const (
	ActivityWalking ActivityType = "walking"
	ActivityRunning ActivityType = "running"
	ActivityCycling ActivityType = "cycling"
	ActivityOther   ActivityType = "other"
)

// TrackedActivityTypes lists the activity types that have a visibility flag
var TrackedActivityTypes = []ActivityType{ActivityWalking, ActivityRunning, ActivityCycling}

// ParseActivityType maps a provider string to an ActivityType.
// Unknown values become ActivityOther.
func ParseActivityType(s string) ActivityType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "walking", "walk", "hiking":
		return ActivityWalking
	case "running", "run", "trail_run":
		return ActivityRunning
	case "cycling", "ride", "bike", "biking":
		return ActivityCycling
	default:
		return ActivityOther
	}
}

// Label returns a human readable label ("Running")
func (t ActivityType) Label() string {
	switch t {
	case ActivityWalking:
		return "Walking"
	case ActivityRunning:
		return "Running"
	case ActivityCycling:
		return "Cycling"
	default:
		return "Workout"
	}
}

// Sample is one GPS fix of a route
type Sample struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// RouteRecord represents one recorded workout with its GPS trace
type RouteRecord struct {
	ID             uuid.UUID    `json:"id"`
	Name           string       `json:"name,omitempty"` // empty when the user never named it
	ActivityType   ActivityType `json:"activityType"`
	StartTimestamp time.Time    `json:"startTimestamp"` // zero when the provider has no start time
	Samples        []Sample     `json:"samples"`        // chronological
}

// HasTimestamp reports whether the provider supplied a start time
func (r RouteRecord) HasTimestamp() bool {
	return !r.StartTimestamp.IsZero()
}

// DisplayName returns the user name or a generated "Running Jan 2, 2006" label
func (r RouteRecord) DisplayName() string {
	if r.Name != "" {
		return r.Name
	}
	if !r.HasTimestamp() {
		return r.ActivityType.Label()
	}
	return r.ActivityType.Label() + " " + r.StartTimestamp.Format(DateLayout)
}

// WithName returns a copy of the route carrying a different name.
// Samples are shared; routes are never mutated in place.
func (r RouteRecord) WithName(name string) RouteRecord {
	r.Name = name
	return r
}

// DateLayout is the date format shown in list rows and matched by search
const DateLayout = "Jan 2, 2006"

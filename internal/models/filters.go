package models

import (
	"fmt"
	"strings"
	"time"
)

// FilterCriteria is an immutable snapshot of the current filter selection.
// Both surfaces converge on one logical value of it.
type FilterCriteria struct {
	ShowWalking bool      `json:"showWalking"`
	ShowRunning bool      `json:"showRunning"`
	ShowCycling bool      `json:"showCycling"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
	SearchText  string    `json:"searchText"`
}

// DefaultCriteria shows every tracked activity type inside the given window
func DefaultCriteria(window DateWindow) FilterCriteria {
	return FilterCriteria{
		ShowWalking: true,
		ShowRunning: true,
		ShowCycling: true,
		StartDate:   window.Start,
		EndDate:     window.End,
	}
}

// Equal compares two criteria by value
func (c FilterCriteria) Equal(o FilterCriteria) bool {
	return c.ShowWalking == o.ShowWalking &&
		c.ShowRunning == o.ShowRunning &&
		c.ShowCycling == o.ShowCycling &&
		c.StartDate.Equal(o.StartDate) &&
		c.EndDate.Equal(o.EndDate) &&
		c.SearchText == o.SearchText
}

// Shows returns the visibility flag for an activity type. Other is never shown.
func (c FilterCriteria) Shows(t ActivityType) bool {
	switch t {
	case ActivityWalking:
		return c.ShowWalking
	case ActivityRunning:
		return c.ShowRunning
	case ActivityCycling:
		return c.ShowCycling
	default:
		return false
	}
}

// Contains reports whether ts lies inside [StartDate, EndDate]
func (c FilterCriteria) Contains(ts time.Time) bool {
	if ts.IsZero() {
		return false
	}
	return !ts.Before(c.StartDate) && !ts.After(c.EndDate)
}

// Window returns the criteria's date range
func (c FilterCriteria) Window() DateWindow {
	return DateWindow{Start: c.StartDate, End: c.EndDate}
}

// WithWindow returns a copy with a different date range
func (c FilterCriteria) WithWindow(w DateWindow) FilterCriteria {
	c.StartDate = w.Start
	c.EndDate = w.End
	return c
}

// IsSearching reports whether a search term is active
func (c FilterCriteria) IsSearching() bool {
	return strings.TrimSpace(c.SearchText) != ""
}

// DateWindow is an inclusive time range used for provider fetches
type DateWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Validate checks that the window is not inverted
func (w DateWindow) Validate() error {
	if w.End.Before(w.Start) {
		return fmt.Errorf("invalid date window: end %s before start %s", w.End.Format(time.RFC3339), w.Start.Format(time.RFC3339))
	}
	return nil
}

// SyncInterval selects how far back the list surface synchronizes
type SyncInterval string

// SyncInterval constants
const (
	SyncWeek    SyncInterval = "week"
	SyncMonth   SyncInterval = "month"
	SyncQuarter SyncInterval = "quarter"
	SyncYear    SyncInterval = "year"
	SyncAll     SyncInterval = "all"
)

// ParseSyncInterval validates a sync interval name
func ParseSyncInterval(s string) (SyncInterval, error) {
	switch iv := SyncInterval(strings.ToLower(strings.TrimSpace(s))); iv {
	case SyncWeek, SyncMonth, SyncQuarter, SyncYear, SyncAll:
		return iv, nil
	default:
		return "", fmt.Errorf("unknown sync interval %q", s)
	}
}

// Window derives the date window ending at now
func (iv SyncInterval) Window(now time.Time) DateWindow {
	var start time.Time
	switch iv {
	case SyncWeek:
		start = now.AddDate(0, 0, -7)
	case SyncQuarter:
		start = now.AddDate(0, -3, 0)
	case SyncYear:
		start = now.AddDate(-1, 0, 0)
	case SyncAll:
		start = time.Unix(0, 0).UTC()
	default:
		start = now.AddDate(0, -1, 0)
	}
	return DateWindow{Start: start, End: now}
}

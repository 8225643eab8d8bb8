package store

import (
	"bytes"
	"slices"

	"github.com/jengzang/routesync/internal/models"
)

// FilterRoutes applies the shared filtered-view pipeline: visibility flag,
// inclusive date window (routes without a timestamp are dropped), an
// optional extra predicate, then newest first. It is pure and never fails.
func FilterRoutes(cache []models.RouteRecord, c models.FilterCriteria, keep func(models.RouteRecord) bool) []models.RouteRecord {
	out := make([]models.RouteRecord, 0, len(cache))
	for _, r := range cache {
		if !c.Shows(r.ActivityType) {
			continue
		}
		if !c.Contains(r.StartTimestamp) {
			continue
		}
		if keep != nil && !keep(r) {
			continue
		}
		out = append(out, r)
	}

	slices.SortStableFunc(out, func(a, b models.RouteRecord) int {
		if n := b.StartTimestamp.Compare(a.StartTimestamp); n != 0 {
			return n
		}
		return bytes.Compare(a.ID[:], b.ID[:])
	})
	return out
}

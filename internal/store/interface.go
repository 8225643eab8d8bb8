package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jengzang/routesync/internal/models"
)

// RouteProvider supplies routes and persists renames. Implemented by the
// sqlite repository and by fakes in tests.
type RouteProvider interface {
	FetchRoutes(ctx context.Context, start, end time.Time) ([]models.RouteRecord, error)
	RenameRoute(ctx context.Context, id uuid.UUID, name string) error
}

// FilterEvents receives the list store's filter changes (the bridge)
type FilterEvents interface {
	FilterChanged(ctx context.Context, criteria models.FilterCriteria)
}

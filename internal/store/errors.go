package store

import "errors"

var (
	// ErrProviderFailure wraps a failed fetch. The cache is left untouched.
	ErrProviderFailure = errors.New("route provider failure")
	// ErrRenameFailure wraps a rejected rename. The previous name is restored.
	ErrRenameFailure = errors.New("route rename failed")
	// ErrRouteNotCached is returned when renaming a route the store does not hold
	ErrRouteNotCached = errors.New("route not in cache")
	// ErrStopped is returned once the store's update loop has exited
	ErrStopped = errors.New("store stopped")
)

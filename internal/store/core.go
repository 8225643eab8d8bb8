package store

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/jengzang/routesync/internal/metrics"
	"github.com/jengzang/routesync/internal/models"
	"github.com/jengzang/routesync/internal/stats"
	"github.com/jengzang/routesync/pkg/logger"
)

// core is the part shared by both surfaces: a private cache fed by
// sequence-numbered provider fetches. Fields below the loop are owned by
// the update loop and must only be touched from it.
type core struct {
	surface  string
	provider RouteProvider
	log      logger.Logger
	lengths  *stats.LengthCache
	loop     *updateLoop

	// set by the surface
	onChange func()
	publish  func()

	cache        []models.RouteRecord
	cacheVersion uint64
	criteria     models.FilterCriteria
	filtered     []models.RouteRecord
	generation   uint64
	issuedSeq    uint64
	appliedSeq   uint64
	inFlight     int
	lastErr      error

	recomputes atomic.Int64
}

func (c *core) init(surface string, provider RouteProvider, o options) {
	c.surface = surface
	c.provider = provider
	c.log = o.log.With("surface", surface)
	c.lengths = o.lengths
	c.loop = newUpdateLoop()
	c.criteria = o.initialCriteria()
}

// Run processes store updates until ctx is cancelled
func (c *core) Run(ctx context.Context) {
	c.loop.run(ctx)
}

// Done is closed once the update loop has exited
func (c *core) Done() <-chan struct{} {
	return c.loop.done
}

// RecomputeCount returns how many times the filtered view was derived
func (c *core) RecomputeCount() int64 {
	return c.recomputes.Load()
}

// Load fetches routes for the window and replaces the cache. Concurrent
// loads are allowed; a completion older than the last applied one is
// discarded. Failures keep the cache and return ErrProviderFailure.
func (c *core) Load(ctx context.Context, window models.DateWindow) error {
	if err := window.Validate(); err != nil {
		return err
	}
	ctx = logger.WithSurface(logger.WithAction(ctx, "load"), c.surface)

	var seq uint64
	if err := c.loop.do(ctx, func() {
		c.issuedSeq++
		seq = c.issuedSeq
		c.inFlight++
		c.publish()
	}); err != nil {
		return err
	}

	start := time.Now()
	routes, fetchErr := c.provider.FetchRoutes(ctx, window.Start, window.End)
	elapsed := time.Since(start)

	result := make(chan error, 1)
	if !c.loop.post(func() {
		result <- c.applyFetch(ctx, seq, routes, fetchErr, elapsed)
	}) {
		return ErrStopped
	}

	select {
	case err := <-result:
		return err
	case <-c.loop.done:
		return ErrStopped
	}
}

func (c *core) applyFetch(ctx context.Context, seq uint64, routes []models.RouteRecord, fetchErr error, elapsed time.Duration) error {
	c.inFlight--
	defer c.publish()

	if fetchErr != nil && ctx.Err() != nil && errors.Is(fetchErr, ctx.Err()) {
		// cancelled by the caller, not a provider failure
		metrics.RecordFetch(c.surface, "cancelled", elapsed)
		c.log.Debug(ctx, "fetch cancelled by caller", "seq", seq)
		return ctx.Err()
	}

	if fetchErr != nil {
		err := fmt.Errorf("%w: %w", ErrProviderFailure, fetchErr)
		if seq > c.appliedSeq {
			c.lastErr = err
		}
		metrics.RecordFetch(c.surface, "error", elapsed)
		c.log.Error(ctx, "failed to fetch routes, keeping cached routes", fetchErr, "seq", seq)
		return err
	}

	if seq <= c.appliedSeq {
		metrics.RecordFetch(c.surface, "stale", elapsed)
		c.log.Debug(ctx, "discarding stale fetch result", "seq", seq, "applied_seq", c.appliedSeq)
		return nil
	}

	c.appliedSeq = seq
	c.cache = append([]models.RouteRecord(nil), routes...)
	c.cacheVersion++
	c.lastErr = nil
	metrics.RecordFetch(c.surface, "success", elapsed)
	c.log.Debug(ctx, "routes loaded", "seq", seq, "count", len(routes), "elapsed", elapsed.String())

	c.onChange()
	return nil
}

// Rename optimistically renames a cached route and persists it through the
// provider. A rejected rename restores the previous name.
func (c *core) Rename(ctx context.Context, id uuid.UUID, name string) error {
	ctx = logger.WithSurface(logger.WithAction(ctx, "rename"), c.surface)

	var prior string
	found := false
	if err := c.loop.do(ctx, func() {
		idx := c.indexOf(id)
		if idx < 0 {
			return
		}
		found = true
		prior = c.cache[idx].Name
		c.setName(idx, name)
	}); err != nil {
		return err
	}
	if !found {
		return ErrRouteNotCached
	}

	// persist or revert even if the caller cancels
	ctx = context.WithoutCancel(ctx)
	err := c.provider.RenameRoute(ctx, id, name)
	metrics.RecordRename(err)
	if err == nil {
		return nil
	}

	c.log.Error(ctx, "rename rejected, restoring previous name", err, "route_id", id.String())
	revertErr := c.loop.do(ctx, func() {
		// a refetch may already have replaced the entry
		if idx := c.indexOf(id); idx >= 0 && c.cache[idx].Name == name {
			c.setName(idx, prior)
		}
	})
	return errors.Join(fmt.Errorf("%w: %w", ErrRenameFailure, err), revertErr)
}

// EchoName applies a rename already persisted elsewhere to this cache.
// Unknown ids are ignored.
func (c *core) EchoName(ctx context.Context, id uuid.UUID, name string) error {
	return c.loop.do(ctx, func() {
		if idx := c.indexOf(id); idx >= 0 && c.cache[idx].Name != name {
			c.setName(idx, name)
		}
	})
}

func (c *core) setName(idx int, name string) {
	c.cache[idx] = c.cache[idx].WithName(name)
	c.cacheVersion++
	c.onChange()
	c.publish()
}

func (c *core) indexOf(id uuid.UUID) int {
	for i := range c.cache {
		if c.cache[i].ID == id {
			return i
		}
	}
	return -1
}

func (c *core) countRecompute() {
	c.generation++
	c.recomputes.Add(1)
	metrics.RecomputationsTotal.WithLabelValues(c.surface).Inc()
}

func (c *core) errorString() string {
	if c.lastErr == nil {
		return ""
	}
	return c.lastErr.Error()
}

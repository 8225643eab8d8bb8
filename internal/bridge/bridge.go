package bridge

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/jengzang/routesync/internal/metrics"
	"github.com/jengzang/routesync/internal/models"
	"github.com/jengzang/routesync/pkg/logger"
)

// ErrUnwired is returned by Validate when a data-sync channel has no handler
var ErrUnwired = errors.New("bridge channel not wired")

// Channel names, used in logs and metrics
const (
	ChannelFilterChange = "filter_change"
	ChannelRouteSelect  = "route_select"
	ChannelClearZoom    = "clear_zoom"
	ChannelNavigate     = "navigate"
)

type (
	FilterHandler   func(ctx context.Context, criteria models.FilterCriteria) error
	SelectHandler   func(ctx context.Context, id uuid.UUID) error
	ClearHandler    func(ctx context.Context) error
	NavigateHandler func(ctx context.Context) error
)

// MapTarget is the part of the map surface the bridge forwards into
type MapTarget interface {
	SetFilter(ctx context.Context, criteria models.FilterCriteria) error
	SelectRoute(ctx context.Context, id uuid.UUID) error
	ClearZoom(ctx context.Context) error
}

// Bridge relays filter and selection events between surfaces that do not
// know each other. Dispatch is synchronous so an event has reached every
// handler before the raising call returns. Handler errors are logged and
// never returned to the raiser.
type Bridge struct {
	log logger.Logger

	mu       sync.RWMutex
	filter   []FilterHandler
	selects  []SelectHandler
	clears   []ClearHandler
	navigate map[string][]NavigateHandler
}

// New creates an empty bridge
func New(log logger.Logger) *Bridge {
	if log == nil {
		log = logger.Nop()
	}
	return &Bridge{
		log:      log.With("component", "bridge"),
		navigate: make(map[string][]NavigateHandler),
	}
}

// OnFilterChange registers a handler for FilterChanged
func (b *Bridge) OnFilterChange(h FilterHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.filter = append(b.filter, h)
}

// OnRouteSelect registers a handler for RouteSelected
func (b *Bridge) OnRouteSelect(h SelectHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.selects = append(b.selects, h)
}

// OnClearZoom registers a handler for ZoomCleared
func (b *Bridge) OnClearZoom(h ClearHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clears = append(b.clears, h)
}

// OnNavigate registers a handler for a named navigation trigger
func (b *Bridge) OnNavigate(name string, h NavigateHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.navigate[name] = append(b.navigate[name], h)
}

// BindMap forwards the three data-sync channels into a map surface
func (b *Bridge) BindMap(target MapTarget) {
	b.OnFilterChange(target.SetFilter)
	b.OnRouteSelect(target.SelectRoute)
	b.OnClearZoom(target.ClearZoom)
}

// Validate reports data-sync channels that have no handler
func (b *Bridge) Validate() error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var missing []string
	if len(b.filter) == 0 {
		missing = append(missing, ChannelFilterChange)
	}
	if len(b.selects) == 0 {
		missing = append(missing, ChannelRouteSelect)
	}
	if len(b.clears) == 0 {
		missing = append(missing, ChannelClearZoom)
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrUnwired, strings.Join(missing, ", "))
	}
	return nil
}

// FilterChanged raises the filter channel
func (b *Bridge) FilterChanged(ctx context.Context, criteria models.FilterCriteria) {
	b.mu.RLock()
	handlers := append([]FilterHandler(nil), b.filter...)
	b.mu.RUnlock()

	b.count(ChannelFilterChange)
	for _, h := range handlers {
		b.report(ctx, ChannelFilterChange, h(ctx, criteria))
	}
}

// RouteSelected raises the selection channel
func (b *Bridge) RouteSelected(ctx context.Context, id uuid.UUID) {
	b.mu.RLock()
	handlers := append([]SelectHandler(nil), b.selects...)
	b.mu.RUnlock()

	b.count(ChannelRouteSelect)
	for _, h := range handlers {
		b.report(ctx, ChannelRouteSelect, h(ctx, id), "route_id", id.String())
	}
}

// ZoomCleared raises the clear-zoom channel
func (b *Bridge) ZoomCleared(ctx context.Context) {
	b.mu.RLock()
	handlers := append([]ClearHandler(nil), b.clears...)
	b.mu.RUnlock()

	b.count(ChannelClearZoom)
	for _, h := range handlers {
		b.report(ctx, ChannelClearZoom, h(ctx))
	}
}

// Navigate raises a named navigation trigger. Unknown names are ignored.
func (b *Bridge) Navigate(ctx context.Context, name string) {
	b.mu.RLock()
	handlers := append([]NavigateHandler(nil), b.navigate[name]...)
	b.mu.RUnlock()

	if len(handlers) == 0 {
		b.log.Debug(ctx, "no handler for navigation trigger", "trigger", name)
		return
	}
	b.count(ChannelNavigate)
	for _, h := range handlers {
		b.report(ctx, ChannelNavigate, h(ctx), "trigger", name)
	}
}

func (b *Bridge) count(channel string) {
	metrics.BridgeEventsTotal.WithLabelValues(channel).Inc()
}

func (b *Bridge) report(ctx context.Context, channel string, err error, args ...any) {
	if err == nil {
		return
	}
	b.log.Error(logger.WithAction(ctx, channel), "bridge handler failed", err, args...)
}

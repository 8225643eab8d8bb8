package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jengzang/routesync/internal/bridge"
	"github.com/jengzang/routesync/internal/models"
	"github.com/jengzang/routesync/internal/stats"
	"github.com/jengzang/routesync/internal/store"
	"github.com/jengzang/routesync/pkg/logger"
)

// Options tune the composed stores. A zero DebounceWindow uses
// store.DefaultDebounceWindow; a negative one applies map filters at once.
type Options struct {
	DebounceWindow  time.Duration
	SyncInterval    models.SyncInterval
	LengthCacheSize int
	Clock           func() time.Time
}

// App hosts the list and map surfaces over one provider and keeps them in
// sync through the bridge
type App struct {
	Bridge *bridge.Bridge
	List   *store.ListStore
	Map    *store.MapStore

	log logger.Logger
}

// New composes the bridge and both stores and checks the wiring
func New(provider store.RouteProvider, opts Options, log logger.Logger) (*App, error) {
	if log == nil {
		log = logger.Nop()
	}
	if opts.LengthCacheSize <= 0 {
		opts.LengthCacheSize = stats.DefaultLengthCacheSize
	}
	if opts.SyncInterval == "" {
		opts.SyncInterval = models.SyncMonth
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.DebounceWindow == 0 {
		opts.DebounceWindow = store.DefaultDebounceWindow
	}

	lengths, err := stats.NewLengthCache(opts.LengthCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create length cache: %w", err)
	}

	b := bridge.New(log)
	shared := []store.Option{
		store.WithLogger(log),
		store.WithLengthCache(lengths),
		store.WithClock(opts.Clock),
		store.WithSyncInterval(opts.SyncInterval),
	}

	list := store.NewListStore(provider, b, shared...)
	mapStore := store.NewMapStore(provider, append(shared, store.WithDebounceWindow(opts.DebounceWindow))...)
	b.BindMap(mapStore)

	if err := b.Validate(); err != nil {
		return nil, err
	}

	return &App{Bridge: b, List: list, Map: mapStore, log: log.With("component", "app")}, nil
}

// Start runs both update loops until ctx ends and performs the first sync
func (a *App) Start(ctx context.Context) error {
	go a.List.Run(ctx)
	go a.Map.Run(ctx)

	window, err := a.List.SyncWindow(ctx)
	if err != nil {
		return err
	}
	return a.load(ctx, window)
}

// SetSyncInterval changes the list window and reloads both surfaces for it.
// The new criteria reach the map through the bridge.
func (a *App) SetSyncInterval(ctx context.Context, iv models.SyncInterval) (models.DateWindow, error) {
	ctx = logger.WithAction(ctx, "sync")

	window, err := a.List.SetSyncInterval(ctx, iv)
	if err != nil {
		return window, err
	}
	if err := a.Map.Load(ctx, window); err != nil {
		return window, err
	}

	a.log.Info(ctx, "sync interval changed", "interval", string(iv),
		"start", window.Start.Format(time.RFC3339), "end", window.End.Format(time.RFC3339))
	return window, nil
}

// Refresh reloads both surfaces for the current sync window
func (a *App) Refresh(ctx context.Context) error {
	window, err := a.List.SyncWindow(ctx)
	if err != nil {
		return err
	}
	return a.load(ctx, window)
}

// SelectRoute is raised when a list row is chosen
func (a *App) SelectRoute(ctx context.Context, id uuid.UUID) {
	a.Bridge.RouteSelected(ctx, id)
}

// ShowAll is raised by the "show all" action
func (a *App) ShowAll(ctx context.Context) {
	a.Bridge.ZoomCleared(ctx)
}

// Rename persists through the list store, then echoes the name into the
// map cache
func (a *App) Rename(ctx context.Context, id uuid.UUID, name string) error {
	if err := a.List.Rename(ctx, id, name); err != nil {
		return err
	}
	return a.Map.EchoName(context.WithoutCancel(ctx), id, name)
}

// load fetches the window into both surfaces. The surfaces are independent:
// one failing never cancels the other, and both errors are reported.
func (a *App) load(ctx context.Context, window models.DateWindow) error {
	var (
		g               errgroup.Group
		listErr, mapErr error
	)
	g.Go(func() error {
		listErr = a.List.Load(ctx, window)
		return nil
	})
	g.Go(func() error {
		mapErr = a.Map.Load(ctx, window)
		return nil
	})
	_ = g.Wait()

	if listErr != nil {
		listErr = fmt.Errorf("list: %w", listErr)
	}
	if mapErr != nil {
		mapErr = fmt.Errorf("map: %w", mapErr)
	}
	return errors.Join(listErr, mapErr)
}

package store

import (
	"time"

	"golang.org/x/text/language"

	"github.com/jengzang/routesync/internal/models"
	"github.com/jengzang/routesync/internal/stats"
	"github.com/jengzang/routesync/pkg/logger"
)

// DefaultDebounceWindow is the trailing window coalescing map filter bursts
const DefaultDebounceWindow = 300 * time.Millisecond

type options struct {
	log          logger.Logger
	lengths      *stats.LengthCache
	now          func() time.Time
	debounce     time.Duration
	syncInterval models.SyncInterval
	initial      *models.FilterCriteria
	displayLang  language.Tag
}

// Option configures a store
type Option func(*options)

// WithLogger sets the store logger
func WithLogger(l logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithLengthCache shares a route length memo between stores
func WithLengthCache(c *stats.LengthCache) Option {
	return func(o *options) { o.lengths = c }
}

// WithClock overrides time.Now (sync interval windows)
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithDebounceWindow sets the map store's debounce window
func WithDebounceWindow(d time.Duration) Option {
	return func(o *options) { o.debounce = d }
}

// WithSyncInterval sets the list store's initial sync interval
func WithSyncInterval(iv models.SyncInterval) Option {
	return func(o *options) { o.syncInterval = iv }
}

// WithInitialCriteria overrides the default criteria derived from the sync interval
func WithInitialCriteria(c models.FilterCriteria) Option {
	return func(o *options) { o.initial = &c }
}

// WithDisplayLanguage sets the language used for list row formatting
func WithDisplayLanguage(tag language.Tag) Option {
	return func(o *options) { o.displayLang = tag }
}

func buildOptions(opts []Option) options {
	o := options{
		now:          time.Now,
		debounce:     DefaultDebounceWindow,
		syncInterval: models.SyncMonth,
		displayLang:  language.English,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.Nop()
	}
	if o.lengths == nil {
		if c, err := stats.NewLengthCache(stats.DefaultLengthCacheSize); err == nil {
			o.lengths = c
		}
	}
	return o
}

func (o options) initialCriteria() models.FilterCriteria {
	if o.initial != nil {
		return *o.initial
	}
	return models.DefaultCriteria(o.syncInterval.Window(o.now()))
}

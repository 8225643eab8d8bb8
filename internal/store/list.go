package store

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jengzang/routesync/internal/models"
	"github.com/jengzang/routesync/internal/stats"
	"github.com/jengzang/routesync/pkg/logger"
)

// SurfaceList names the list surface in logs and metrics
const SurfaceList = "list"

// ListRow is one rendered row of the list surface
type ListRow struct {
	ID             uuid.UUID           `json:"id"`
	Title          string              `json:"title"`
	ActivityType   models.ActivityType `json:"activityType"`
	Distance       string              `json:"distance"`
	DistanceMeters float64             `json:"distanceMeters"`
	Date           string              `json:"date"`
	SampleCount    int                 `json:"sampleCount"`
}

// ListState is the published state of the list surface
type ListState struct {
	Routes       []models.RouteRecord  `json:"-"`
	Rows         []ListRow             `json:"rows"`
	Criteria     models.FilterCriteria `json:"criteria"`
	SyncInterval models.SyncInterval   `json:"syncInterval"`
	IsLoading    bool                  `json:"isLoading"`
	IsSearching  bool                  `json:"isSearching"`
	Error        string                `json:"error,omitempty"`
	Generation   uint64                `json:"generation"`
}

type indexEntry struct {
	text string
	row  ListRow
}

// ListStore backs the list surface. Besides the shared pipeline it matches
// search text and owns the sync-interval date window. Every SetFilter is
// relayed to FilterEvents so the map surface converges on the same criteria.
type ListStore struct {
	core

	events FilterEvents
	format *RowFormatter
	clock  func() time.Time

	// owned by the update loop
	interval     models.SyncInterval
	index        map[uuid.UUID]indexEntry
	indexVersion uint64
	rows         []ListRow
	stats        *models.AggregateStatistics
	statsGen     uint64

	subs broadcaster[ListState]
}

// NewListStore creates the list surface store. events may be nil when no
// other surface listens.
func NewListStore(provider RouteProvider, events FilterEvents, opts ...Option) *ListStore {
	o := buildOptions(opts)
	s := &ListStore{
		events:   events,
		format:   NewRowFormatter(o.displayLang),
		clock:    o.now,
		interval: o.syncInterval,
	}
	s.core.init(SurfaceList, provider, o)
	s.onChange = s.recompute
	s.publish = s.publishState
	return s
}

// SetFilter stores new criteria, recomputes the view immediately and
// relays the criteria to the other surface
func (s *ListStore) SetFilter(ctx context.Context, criteria models.FilterCriteria) error {
	ctx = logger.WithSurface(logger.WithAction(ctx, "set_filter"), SurfaceList)
	if err := s.loop.do(ctx, func() {
		s.applyCriteria(criteria)
	}); err != nil {
		return err
	}

	if s.events != nil {
		s.events.FilterChanged(ctx, criteria)
	}
	return nil
}

func (s *ListStore) applyCriteria(criteria models.FilterCriteria) {
	unchanged := criteria.Equal(s.criteria) && s.indexVersion == s.cacheVersion && s.index != nil
	s.criteria = criteria
	if unchanged {
		return
	}
	s.recompute()
	s.publishState()
}

// SetSyncInterval derives a new date window, applies it to the criteria
// (relayed like any SetFilter) and loads routes for it
func (s *ListStore) SetSyncInterval(ctx context.Context, iv models.SyncInterval) (models.DateWindow, error) {
	window := iv.Window(s.clock())

	var next models.FilterCriteria
	if err := s.loop.do(ctx, func() {
		s.interval = iv
		next = s.criteria.WithWindow(window)
	}); err != nil {
		return window, err
	}

	if err := s.SetFilter(ctx, next); err != nil {
		return window, err
	}
	return window, s.Load(ctx, window)
}

// SyncWindow returns the date window of the current sync interval
func (s *ListStore) SyncWindow(ctx context.Context) (models.DateWindow, error) {
	var iv models.SyncInterval
	err := s.loop.do(ctx, func() { iv = s.interval })
	return iv.Window(s.clock()), err
}

// State returns a snapshot of the published state
func (s *ListStore) State(ctx context.Context) (ListState, error) {
	var st ListState
	err := s.loop.do(ctx, func() { st = s.snapshot() })
	return st, err
}

// Subscribe streams published state; call cancel to unsubscribe
func (s *ListStore) Subscribe() (<-chan ListState, func()) {
	return s.subs.subscribe()
}

// Statistics aggregates the current filtered view. The result is memoized
// until the view changes.
func (s *ListStore) Statistics(ctx context.Context) (models.AggregateStatistics, error) {
	var out models.AggregateStatistics
	err := s.loop.do(ctx, func() {
		if s.stats == nil || s.statsGen != s.generation {
			agg := stats.Aggregate(s.filtered, s.lengths.Length)
			s.stats = &agg
			s.statsGen = s.generation
		}
		out = *s.stats
	})
	return out, err
}

func (s *ListStore) recompute() {
	s.ensureIndex()

	var match func(models.RouteRecord) bool
	if s.criteria.IsSearching() {
		query := s.format.Fold(strings.TrimSpace(s.criteria.SearchText))
		match = func(r models.RouteRecord) bool {
			return strings.Contains(s.index[r.ID].text, query)
		}
	}

	s.filtered = FilterRoutes(s.cache, s.criteria, match)
	rows := make([]ListRow, len(s.filtered))
	for i, r := range s.filtered {
		rows[i] = s.index[r.ID].row
	}
	s.rows = rows
	s.countRecompute()
}

// ensureIndex rebuilds searchable text and rendered rows once per cache
// version so keystrokes only run substring matches
func (s *ListStore) ensureIndex() {
	if s.index != nil && s.indexVersion == s.cacheVersion {
		return
	}

	index := make(map[uuid.UUID]indexEntry, len(s.cache))
	for _, r := range s.cache {
		meters := s.lengths.Length(r)
		index[r.ID] = indexEntry{
			text: s.format.SearchText(r, meters),
			row: ListRow{
				ID:             r.ID,
				Title:          r.DisplayName(),
				ActivityType:   r.ActivityType,
				Distance:       s.format.Distance(meters),
				DistanceMeters: meters,
				Date:           s.format.Date(r),
				SampleCount:    len(r.Samples),
			},
		}
	}
	s.index = index
	s.indexVersion = s.cacheVersion
}

func (s *ListStore) snapshot() ListState {
	return ListState{
		Routes:       s.filtered,
		Rows:         s.rows,
		Criteria:     s.criteria,
		SyncInterval: s.interval,
		IsLoading:    s.inFlight > 0,
		IsSearching:  s.criteria.IsSearching(),
		Error:        s.errorString(),
		Generation:   s.generation,
	}
}

func (s *ListStore) publishState() {
	s.subs.send(s.snapshot())
}

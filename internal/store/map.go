package store

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/jengzang/routesync/internal/metrics"
	"github.com/jengzang/routesync/internal/models"
	"github.com/jengzang/routesync/internal/spatial"
	"github.com/jengzang/routesync/pkg/logger"
)

// SurfaceMap names the map surface in logs and metrics
const SurfaceMap = "map"

// MapState is the published state of the map surface
type MapState struct {
	Routes        []models.RouteRecord  `json:"routes"`
	Criteria      models.FilterCriteria `json:"criteria"`
	ZoomTarget    *uuid.UUID            `json:"zoomTarget,omitempty"`
	Viewport      *models.Viewport      `json:"viewport,omitempty"`
	IsLoading     bool                  `json:"isLoading"`
	FilterPending bool                  `json:"filterPending"`
	Error         string                `json:"error,omitempty"`
	Generation    uint64                `json:"generation"`
}

// MapStore backs the map surface. Filter changes are coalesced with a
// trailing debounce before the view is recomputed and the viewport refit.
// Search text is ignored. A zoom target narrows the view to one route.
type MapStore struct {
	core

	debounce time.Duration
	fits     atomic.Int64

	// owned by the update loop
	pending  *models.FilterCriteria
	timer    *time.Timer
	timerSeq uint64
	zoom     uuid.UUID
	viewport models.Viewport
	fitted   bool

	subs broadcaster[MapState]
}

// NewMapStore creates the map surface store
func NewMapStore(provider RouteProvider, opts ...Option) *MapStore {
	o := buildOptions(opts)
	s := &MapStore{debounce: o.debounce}
	s.core.init(SurfaceMap, provider, o)
	s.criteria.SearchText = ""
	s.onChange = s.refresh
	s.publish = s.publishState
	return s
}

// SetFilter schedules new criteria. Bursts inside the debounce window
// collapse into one recomputation with the last value.
func (s *MapStore) SetFilter(ctx context.Context, criteria models.FilterCriteria) error {
	criteria.SearchText = ""
	return s.loop.do(ctx, func() {
		if s.pending == nil && criteria.Equal(s.criteria) {
			return
		}
		s.pending = &criteria
		if s.debounce <= 0 {
			s.flush(s.timerSeq)
			return
		}
		s.armDebounce()
		s.publishState()
	})
}

func (s *MapStore) armDebounce() {
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timerSeq++
	seq := s.timerSeq
	s.timer = time.AfterFunc(s.debounce, func() {
		s.loop.post(func() { s.flush(seq) })
	})
}

// flush applies the pending criteria unless a newer timer superseded it
func (s *MapStore) flush(seq uint64) {
	if seq != s.timerSeq || s.pending == nil {
		return
	}
	s.criteria = *s.pending
	s.pending = nil
	s.timer = nil

	s.log.Debug(logger.WithAction(context.Background(), "debounce_flush"), "applying debounced filter")
	s.refresh()
	s.publishState()
}

// SelectRoute zooms to one route. The view becomes that route, or empty
// when it is not part of the filtered set.
func (s *MapStore) SelectRoute(ctx context.Context, id uuid.UUID) error {
	return s.loop.do(ctx, func() {
		s.zoom = id
		s.refresh()
		s.publishState()
	})
}

// ClearZoom drops the zoom target and reverts to the full filtered view
func (s *MapStore) ClearZoom(ctx context.Context) error {
	return s.loop.do(ctx, func() {
		s.zoom = uuid.Nil
		s.refresh()
		s.publishState()
	})
}

// State returns a snapshot of the published state
func (s *MapStore) State(ctx context.Context) (MapState, error) {
	var st MapState
	err := s.loop.do(ctx, func() { st = s.snapshot() })
	return st, err
}

// Subscribe streams published state; call cancel to unsubscribe
func (s *MapStore) Subscribe() (<-chan MapState, func()) {
	return s.subs.subscribe()
}

// FitCount returns how many viewport fits were attempted
func (s *MapStore) FitCount() int64 {
	return s.fits.Load()
}

func (s *MapStore) refresh() {
	s.recompute()
	s.refit()
}

func (s *MapStore) recompute() {
	full := FilterRoutes(s.cache, s.criteria, nil)
	if s.zoom != uuid.Nil {
		zoomed := make([]models.RouteRecord, 0, 1)
		for _, r := range full {
			if r.ID == s.zoom {
				zoomed = append(zoomed, r)
			}
		}
		full = zoomed
	}
	s.filtered = full
	s.countRecompute()
}

// refit keeps the previous viewport when there is nothing to fit
func (s *MapStore) refit() {
	s.fits.Add(1)

	var (
		v    models.Viewport
		err  error
		kind = "overview"
	)
	if s.zoom != uuid.Nil {
		kind = "single"
		if len(s.filtered) == 0 {
			err = spatial.ErrNoRoutes
		} else {
			v, err = spatial.FitRoute(s.filtered[0])
		}
	} else {
		v, err = spatial.FitRoutes(s.filtered)
	}
	metrics.RecordFit(kind, err)

	if err != nil {
		if !errors.Is(err, spatial.ErrEmptyRoute) && !errors.Is(err, spatial.ErrNoRoutes) {
			s.log.Error(context.Background(), "viewport fit failed", err)
		}
		return
	}
	s.viewport = v
	s.fitted = true
}

func (s *MapStore) snapshot() MapState {
	st := MapState{
		Routes:        s.filtered,
		Criteria:      s.criteria,
		IsLoading:     s.inFlight > 0,
		FilterPending: s.pending != nil,
		Error:         s.errorString(),
		Generation:    s.generation,
	}
	if s.zoom != uuid.Nil {
		id := s.zoom
		st.ZoomTarget = &id
	}
	if s.fitted {
		v := s.viewport
		st.Viewport = &v
	}
	return st
}

func (s *MapStore) publishState() {
	s.subs.send(s.snapshot())
}

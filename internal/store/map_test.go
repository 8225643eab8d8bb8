package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/jengzang/routesync/internal/models"
	"github.com/jengzang/routesync/internal/spatial"
)

func mapFixture() []models.RouteRecord {
	return []models.RouteRecord{
		newRoute("loop", models.ActivityRunning, day(2024, 2, 1),
			models.Sample{Lat: 48.85, Lon: 2.29}, models.Sample{Lat: 48.86, Lon: 2.30}),
		newRoute("commute", models.ActivityCycling, day(2024, 2, 3),
			models.Sample{Lat: 48.80, Lon: 2.25}, models.Sample{Lat: 48.90, Lon: 2.40}),
		newRoute("stroll", models.ActivityWalking, day(2024, 2, 2),
			models.Sample{Lat: 48.87, Lon: 2.33}),
		newRoute("indoor", models.ActivityRunning, day(2024, 2, 4)),
	}
}

func newTestMapStore(t *testing.T, p *fakeProvider, opts ...Option) *MapStore {
	t.Helper()
	opts = append([]Option{WithInitialCriteria(fullRange())}, opts...)
	s := NewMapStore(p, opts...)
	start(t, s)
	if err := s.Load(context.Background(), fullRange().Window()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return s
}

func TestMapStore_LoadFitsOverview(t *testing.T) {
	routes := mapFixture()
	s := newTestMapStore(t, newFakeProvider(routes...))

	st, err := s.State(context.Background())
	if err != nil {
		t.Fatalf("State failed: %v", err)
	}
	if len(st.Routes) != len(routes) {
		t.Fatalf("expected %d routes, got %d", len(routes), len(st.Routes))
	}
	want, _ := spatial.FitRoutes(st.Routes)
	if st.Viewport == nil || *st.Viewport != want {
		t.Errorf("expected viewport %+v, got %+v", want, st.Viewport)
	}
	if s.FitCount() != 1 || s.RecomputeCount() != 1 {
		t.Errorf("expected one fit and one recompute, got %d and %d", s.FitCount(), s.RecomputeCount())
	}
}

func TestMapStore_RapidTogglesCoalesce(t *testing.T) {
	s := newTestMapStore(t, newFakeProvider(mapFixture()...), WithDebounceWindow(40*time.Millisecond))
	recomputes, fits := s.RecomputeCount(), s.FitCount()

	off := fullRange()
	off.ShowRunning = false
	for _, c := range []models.FilterCriteria{off, fullRange(), off, fullRange()} {
		if err := s.SetFilter(context.Background(), c); err != nil {
			t.Fatalf("SetFilter failed: %v", err)
		}
	}

	st, _ := s.State(context.Background())
	if !st.FilterPending {
		t.Error("expected a pending filter inside the debounce window")
	}

	waitFor(t, "debounce flush", func() bool {
		st, _ := s.State(context.Background())
		return !st.FilterPending
	})
	time.Sleep(80 * time.Millisecond)

	if got := s.RecomputeCount() - recomputes; got != 1 {
		t.Errorf("expected exactly one recompute, got %d", got)
	}
	if got := s.FitCount() - fits; got != 1 {
		t.Errorf("expected exactly one fit, got %d", got)
	}
	st, _ = s.State(context.Background())
	if !st.Criteria.ShowRunning {
		t.Error("expected the last toggle to win")
	}
}

func TestMapStore_EqualFilterIsDropped(t *testing.T) {
	s := newTestMapStore(t, newFakeProvider(mapFixture()...), WithDebounceWindow(time.Hour))

	if err := s.SetFilter(context.Background(), fullRange()); err != nil {
		t.Fatalf("SetFilter failed: %v", err)
	}
	st, _ := s.State(context.Background())
	if st.FilterPending {
		t.Error("an unchanged filter should not arm the debounce")
	}
}

func TestMapStore_IgnoresSearchText(t *testing.T) {
	routes := mapFixture()
	s := newTestMapStore(t, newFakeProvider(routes...), WithDebounceWindow(0))

	c := fullRange()
	c.ShowCycling = false
	c.SearchText = "loop"
	if err := s.SetFilter(context.Background(), c); err != nil {
		t.Fatalf("SetFilter failed: %v", err)
	}

	st, _ := s.State(context.Background())
	if st.Criteria.SearchText != "" {
		t.Errorf("expected search text to be stripped, got %q", st.Criteria.SearchText)
	}
	if len(st.Routes) != 3 {
		t.Errorf("expected every non-cycling route, got %v", ids(st.Routes))
	}
}

func TestMapStore_SelectThenClearRestoresView(t *testing.T) {
	routes := mapFixture()
	s := newTestMapStore(t, newFakeProvider(routes...), WithDebounceWindow(0))

	c := fullRange()
	c.ShowWalking = false
	_ = s.SetFilter(context.Background(), c)
	overview, _ := s.State(context.Background())

	target := routes[0]
	if err := s.SelectRoute(context.Background(), target.ID); err != nil {
		t.Fatalf("SelectRoute failed: %v", err)
	}
	zoomed, _ := s.State(context.Background())
	if len(zoomed.Routes) != 1 || zoomed.Routes[0].ID != target.ID {
		t.Fatalf("expected only the selected route, got %v", ids(zoomed.Routes))
	}
	if zoomed.ZoomTarget == nil || *zoomed.ZoomTarget != target.ID {
		t.Errorf("expected zoom target %s", target.ID)
	}
	want, _ := spatial.FitRoute(target)
	if zoomed.Viewport == nil || *zoomed.Viewport != want {
		t.Errorf("expected single-route viewport %+v, got %+v", want, zoomed.Viewport)
	}

	if err := s.ClearZoom(context.Background()); err != nil {
		t.Fatalf("ClearZoom failed: %v", err)
	}
	cleared, _ := s.State(context.Background())
	if !sameIDs(cleared.Routes, FilterRoutes(routes, c, nil)) {
		t.Errorf("expected the full filtered view back, got %v", ids(cleared.Routes))
	}
	if cleared.ZoomTarget != nil {
		t.Error("expected no zoom target")
	}
	if *cleared.Viewport != *overview.Viewport {
		t.Errorf("expected overview viewport %+v, got %+v", overview.Viewport, cleared.Viewport)
	}
}

func TestMapStore_SelectHiddenRouteEmptiesView(t *testing.T) {
	routes := mapFixture()
	s := newTestMapStore(t, newFakeProvider(routes...), WithDebounceWindow(0))
	before, _ := s.State(context.Background())

	c := fullRange()
	c.ShowCycling = false
	_ = s.SetFilter(context.Background(), c)
	kept, _ := s.State(context.Background())

	if err := s.SelectRoute(context.Background(), routes[1].ID); err != nil {
		t.Fatalf("SelectRoute failed: %v", err)
	}
	st, _ := s.State(context.Background())
	if len(st.Routes) != 0 {
		t.Errorf("expected an empty view, got %v", ids(st.Routes))
	}
	if st.Viewport == nil || *st.Viewport != *kept.Viewport {
		t.Errorf("expected the previous viewport to be kept, got %+v", st.Viewport)
	}
	if *before.Viewport == *kept.Viewport {
		t.Error("expected hiding the widest route to change the viewport")
	}

	if err := s.SelectRoute(context.Background(), uuid.New()); err != nil {
		t.Fatalf("SelectRoute failed: %v", err)
	}
	if st, _ = s.State(context.Background()); len(st.Routes) != 0 {
		t.Errorf("expected an empty view for an unknown route")
	}
}

func TestMapStore_ZeroSampleSelectionKeepsViewport(t *testing.T) {
	routes := mapFixture()
	s := newTestMapStore(t, newFakeProvider(routes...))
	before, _ := s.State(context.Background())

	indoor := routes[3]
	if err := s.SelectRoute(context.Background(), indoor.ID); err != nil {
		t.Fatalf("SelectRoute failed: %v", err)
	}
	st, _ := s.State(context.Background())
	if len(st.Routes) != 1 {
		t.Fatalf("expected the zero-sample route to stay selectable")
	}
	if *st.Viewport != *before.Viewport {
		t.Errorf("expected viewport to stay put, got %+v", st.Viewport)
	}
}

func TestMapStore_RenameRefreshesView(t *testing.T) {
	routes := mapFixture()
	s := newTestMapStore(t, newFakeProvider(routes...))

	if err := s.Rename(context.Background(), routes[2].ID, "Sunday stroll"); err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	st, _ := s.State(context.Background())
	for _, r := range st.Routes {
		if r.ID == routes[2].ID && r.Name != "Sunday stroll" {
			t.Errorf("expected the new name in the view, got %q", r.Name)
		}
	}
}

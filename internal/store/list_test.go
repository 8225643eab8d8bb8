package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/jengzang/routesync/internal/models"
)

func newTestListStore(t *testing.T, p *fakeProvider, events FilterEvents, opts ...Option) *ListStore {
	t.Helper()
	opts = append([]Option{WithInitialCriteria(fullRange())}, opts...)
	s := NewListStore(p, events, opts...)
	start(t, s)
	if err := s.Load(context.Background(), fullRange().Window()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return s
}

func TestListStore_ShowsRunningOnly(t *testing.T) {
	a := newRoute("A", models.ActivityRunning, day(2024, 1, 1))
	b := newRoute("B", models.ActivityWalking, day(2024, 1, 2), shortTrace()...)
	s := newTestListStore(t, newFakeProvider(a, b), nil)

	c := fullRange()
	c.ShowWalking = false
	c.ShowCycling = false
	if err := s.SetFilter(context.Background(), c); err != nil {
		t.Fatalf("SetFilter failed: %v", err)
	}

	st, err := s.State(context.Background())
	if err != nil {
		t.Fatalf("State failed: %v", err)
	}
	if len(st.Routes) != 1 || st.Routes[0].ID != a.ID {
		t.Fatalf("expected [A], got %v", ids(st.Routes))
	}
	if st.Rows[0].Distance != "0 m" || st.Rows[0].SampleCount != 0 {
		t.Errorf("unexpected row for zero-length route: %+v", st.Rows[0])
	}
}

func TestListStore_SearchIsCaseInsensitive(t *testing.T) {
	morning := newRoute("Morning Loop", models.ActivityRunning, day(2024, 1, 5), shortTrace()...)
	ride := newRoute("Evening Ride", models.ActivityCycling, day(2024, 1, 2),
		models.Sample{Lat: 0, Lon: 0}, models.Sample{Lat: 0.02, Lon: 0})
	unnamed := newRoute("", models.ActivityWalking, day(2024, 1, 3))
	s := newTestListStore(t, newFakeProvider(morning, ride, unnamed), nil)

	tests := []struct {
		query string
		want  []uuid.UUID
	}{
		{"morning", []uuid.UUID{morning.ID}},
		{"MORNING loop", []uuid.UUID{morning.ID}},
		{"  ride ", []uuid.UUID{ride.ID}},
		{"km", []uuid.UUID{ride.ID}},
		{"jan 5", []uuid.UUID{morning.ID}},
		{"walking", []uuid.UUID{unnamed.ID}},
		{"2024", []uuid.UUID{morning.ID, unnamed.ID, ride.ID}},
		{"nothing like this", nil},
		{"", []uuid.UUID{morning.ID, unnamed.ID, ride.ID}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			c := fullRange()
			c.SearchText = tt.query
			if err := s.SetFilter(context.Background(), c); err != nil {
				t.Fatalf("SetFilter failed: %v", err)
			}
			st, _ := s.State(context.Background())
			got := ids(st.Routes)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("position %d: expected %s, got %s", i, tt.want[i], got[i])
				}
			}
			if st.IsSearching != c.IsSearching() {
				t.Errorf("expected IsSearching %v", c.IsSearching())
			}
		})
	}
}

func TestListStore_UnchangedFilterSkipsRecompute(t *testing.T) {
	s := newTestListStore(t, newFakeProvider(newRoute("A", models.ActivityRunning, day(2024, 1, 1))), nil)

	before := s.RecomputeCount()
	if err := s.SetFilter(context.Background(), fullRange()); err != nil {
		t.Fatalf("SetFilter failed: %v", err)
	}
	if got := s.RecomputeCount() - before; got != 0 {
		t.Errorf("expected no recompute for an equal filter, got %d", got)
	}
}

func TestListStore_SetFilterRaisesEvent(t *testing.T) {
	events := &recordingEvents{}
	s := newTestListStore(t, newFakeProvider(), events)

	c := fullRange()
	c.ShowCycling = false
	c.SearchText = "park"
	if err := s.SetFilter(context.Background(), c); err != nil {
		t.Fatalf("SetFilter failed: %v", err)
	}
	if err := s.SetFilter(context.Background(), c); err != nil {
		t.Fatalf("SetFilter failed: %v", err)
	}

	got := events.all()
	if len(got) != 2 {
		t.Fatalf("expected an event per SetFilter, got %d", len(got))
	}
	if !got[1].Equal(c) {
		t.Errorf("expected relayed criteria %+v, got %+v", c, got[1])
	}
}

func TestListStore_SetSyncInterval(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	events := &recordingEvents{}
	p := newFakeProvider()
	s := newTestListStore(t, p, events, WithClock(func() time.Time { return now }))

	window, err := s.SetSyncInterval(context.Background(), models.SyncWeek)
	if err != nil {
		t.Fatalf("SetSyncInterval failed: %v", err)
	}
	if !window.Start.Equal(now.AddDate(0, 0, -7)) || !window.End.Equal(now) {
		t.Errorf("unexpected window %+v", window)
	}

	p.mu.Lock()
	last := p.calls[len(p.calls)-1]
	p.mu.Unlock()
	if last != window {
		t.Errorf("expected fetch for %+v, got %+v", window, last)
	}

	relayed := events.all()
	if len(relayed) != 1 || !relayed[0].StartDate.Equal(window.Start) {
		t.Errorf("expected the new window to be relayed, got %+v", relayed)
	}

	st, _ := s.State(context.Background())
	if st.SyncInterval != models.SyncWeek {
		t.Errorf("expected week interval, got %s", st.SyncInterval)
	}
	if got, _ := s.SyncWindow(context.Background()); got != window {
		t.Errorf("expected SyncWindow %+v, got %+v", window, got)
	}
}

func TestListStore_StaleLoadIsDiscarded(t *testing.T) {
	old := newRoute("old", models.ActivityRunning, day(2024, 1, 1))
	fresh := newRoute("fresh", models.ActivityRunning, day(2024, 1, 2))

	p := newFakeProvider()
	p.responses = [][]models.RouteRecord{{old}, {fresh}}
	gate := make(chan struct{})
	p.gates = []chan struct{}{gate}

	s := NewListStore(p, nil, WithInitialCriteria(fullRange()))
	start(t, s)

	firstDone := make(chan error, 1)
	go func() { firstDone <- s.Load(context.Background(), fullRange().Window()) }()
	waitFor(t, "first fetch to start", func() bool { return p.callCount() == 1 })

	st, _ := s.State(context.Background())
	if !st.IsLoading {
		t.Error("expected IsLoading while a fetch is in flight")
	}

	if err := s.Load(context.Background(), fullRange().Window()); err != nil {
		t.Fatalf("second Load failed: %v", err)
	}
	close(gate)
	if err := <-firstDone; err != nil {
		t.Fatalf("stale Load returned error: %v", err)
	}

	st, _ = s.State(context.Background())
	if len(st.Routes) != 1 || st.Routes[0].ID != fresh.ID {
		t.Fatalf("expected only the fresh result, got %v", ids(st.Routes))
	}
	if st.IsLoading {
		t.Error("expected IsLoading to clear")
	}
}

func TestListStore_ProviderFailureKeepsCache(t *testing.T) {
	a := newRoute("A", models.ActivityRunning, day(2024, 1, 1))
	p := newFakeProvider(a)
	s := newTestListStore(t, p, nil)

	p.mu.Lock()
	p.fetchErr = errors.New("disk unavailable")
	p.mu.Unlock()

	err := s.Load(context.Background(), fullRange().Window())
	if !errors.Is(err, ErrProviderFailure) {
		t.Fatalf("expected ErrProviderFailure, got %v", err)
	}

	st, _ := s.State(context.Background())
	if len(st.Routes) != 1 || st.Routes[0].ID != a.ID {
		t.Errorf("expected cached routes to survive, got %v", ids(st.Routes))
	}
	if st.Error == "" || st.IsLoading {
		t.Errorf("expected an error and no loading, got %+v", st)
	}

	p.mu.Lock()
	p.fetchErr = nil
	p.mu.Unlock()
	if err := s.Load(context.Background(), fullRange().Window()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if st, _ = s.State(context.Background()); st.Error != "" {
		t.Errorf("expected error to clear after a successful load, got %q", st.Error)
	}
}

func TestListStore_InvertedWindowRejected(t *testing.T) {
	s := newTestListStore(t, newFakeProvider(), nil)
	err := s.Load(context.Background(), models.DateWindow{Start: day(2024, 2, 1), End: day(2024, 1, 1)})
	if err == nil {
		t.Fatal("expected an error for an inverted window")
	}
}

func TestListStore_Rename(t *testing.T) {
	a := newRoute("Lunch Run", models.ActivityRunning, day(2024, 1, 1))
	p := newFakeProvider(a)
	s := newTestListStore(t, p, nil)

	if err := s.Rename(context.Background(), a.ID, "Tempo"); err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	st, _ := s.State(context.Background())
	if st.Rows[0].Title != "Tempo" {
		t.Errorf("expected renamed row, got %q", st.Rows[0].Title)
	}
	if p.renamedTo(a.ID) != "Tempo" {
		t.Errorf("expected provider to persist the name")
	}

	if err := s.Rename(context.Background(), uuid.New(), "x"); !errors.Is(err, ErrRouteNotCached) {
		t.Errorf("expected ErrRouteNotCached, got %v", err)
	}
}

func TestListStore_RejectedRenameReverts(t *testing.T) {
	a := newRoute("Lunch Run", models.ActivityRunning, day(2024, 1, 1))
	p := newFakeProvider(a)
	p.renameErr = errors.New("read-only store")
	s := newTestListStore(t, p, nil)

	err := s.Rename(context.Background(), a.ID, "Tempo")
	if !errors.Is(err, ErrRenameFailure) {
		t.Fatalf("expected ErrRenameFailure, got %v", err)
	}

	st, _ := s.State(context.Background())
	if st.Rows[0].Title != "Lunch Run" {
		t.Errorf("expected the previous name back, got %q", st.Rows[0].Title)
	}

	c := fullRange()
	c.SearchText = "tempo"
	_ = s.SetFilter(context.Background(), c)
	if st, _ = s.State(context.Background()); len(st.Routes) != 0 {
		t.Errorf("search index still holds the rejected name")
	}
}

func TestListStore_StatisticsFollowFilteredView(t *testing.T) {
	walk := newRoute("walk", models.ActivityWalking, day(2024, 1, 1), shortTrace()...)
	run := newRoute("run", models.ActivityRunning, day(2024, 1, 2), shortTrace()...)
	s := newTestListStore(t, newFakeProvider(walk, run), nil)

	first, err := s.Statistics(context.Background())
	if err != nil {
		t.Fatalf("Statistics failed: %v", err)
	}
	second, _ := s.Statistics(context.Background())
	if first.Walking.TotalDistanceMeters != second.Walking.TotalDistanceMeters || first.Walking.RouteCount != 1 {
		t.Errorf("unexpected statistics %+v / %+v", first, second)
	}

	c := fullRange()
	c.ShowWalking = false
	_ = s.SetFilter(context.Background(), c)

	after, _ := s.Statistics(context.Background())
	if after.Walking.RouteCount != 0 || after.Walking.TotalDistanceMeters != 0 {
		t.Errorf("expected hidden walks to drop out, got %+v", after.Walking)
	}
	if after.Running.LongestRoute == nil || after.Running.LongestRoute.ID != run.ID {
		t.Errorf("expected longest run %s", run.ID)
	}
}

func TestListStore_SubscribeReceivesLatest(t *testing.T) {
	s := newTestListStore(t, newFakeProvider(newRoute("A", models.ActivityRunning, day(2024, 1, 1))), nil)
	ch, cancel := s.Subscribe()
	defer cancel()

	c := fullRange()
	c.ShowRunning = false
	_ = s.SetFilter(context.Background(), c)

	select {
	case st := <-ch:
		if st.Criteria.ShowRunning || len(st.Routes) != 0 {
			t.Errorf("expected the filtered state, got %+v", st)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no state published")
	}
}

// blockLoop parks the store's update loop until the returned func is called
func blockLoop(t *testing.T, l *updateLoop) func() {
	t.Helper()
	release := make(chan struct{})
	parked := make(chan struct{})
	if !l.post(func() {
		close(parked)
		<-release
	}) {
		t.Fatal("update loop is not running")
	}
	<-parked
	return func() { close(release) }
}

func TestListStore_CancelledLoadClearsLoading(t *testing.T) {
	a := newRoute("A", models.ActivityRunning, day(2024, 1, 1))
	s := newTestListStore(t, newFakeProvider(a), nil)

	release := blockLoop(t, s.loop)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Load(ctx, fullRange().Window()) }()

	// let Load queue its op behind the parked one
	time.Sleep(20 * time.Millisecond)
	cancel()
	release()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Load did not return")
	}

	waitFor(t, "loading flag to clear", func() bool {
		st, err := s.State(context.Background())
		return err == nil && !st.IsLoading
	})
	st, _ := s.State(context.Background())
	if len(st.Routes) != 1 {
		t.Errorf("expected the cached route to survive, got %d", len(st.Routes))
	}
}

func TestListStore_CancelledRenameStaysConsistent(t *testing.T) {
	a := newRoute("Lunch Run", models.ActivityRunning, day(2024, 1, 1))
	p := newFakeProvider(a)
	s := newTestListStore(t, p, nil)

	release := blockLoop(t, s.loop)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Rename(ctx, a.ID, "Tempo") }()

	time.Sleep(20 * time.Millisecond)
	cancel()
	release()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Rename did not return")
	}

	st, err := s.State(context.Background())
	if err != nil {
		t.Fatalf("State failed: %v", err)
	}
	if got, stored := st.Rows[0].Title, p.renamedTo(a.ID); got != "Tempo" || stored != "Tempo" {
		t.Errorf("expected the rename to complete, cache shows %q and the provider stored %q", got, stored)
	}
}

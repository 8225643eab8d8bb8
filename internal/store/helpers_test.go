package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/jengzang/routesync/internal/models"
)

type fakeProvider struct {
	mu        sync.Mutex
	responses [][]models.RouteRecord // per call; the last one repeats
	gates     []chan struct{}        // optional per-call gate
	fetchErr  error
	renameErr error
	calls     []models.DateWindow
	renamed   map[uuid.UUID]string
}

func newFakeProvider(routes ...models.RouteRecord) *fakeProvider {
	return &fakeProvider{responses: [][]models.RouteRecord{routes}, renamed: make(map[uuid.UUID]string)}
}

func (p *fakeProvider) FetchRoutes(ctx context.Context, start, end time.Time) ([]models.RouteRecord, error) {
	p.mu.Lock()
	n := len(p.calls)
	p.calls = append(p.calls, models.DateWindow{Start: start, End: end})
	var gate chan struct{}
	if n < len(p.gates) {
		gate = p.gates[n]
	}
	resp := p.responses[len(p.responses)-1]
	if n < len(p.responses) {
		resp = p.responses[n]
	}
	err := p.fetchErr
	p.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (p *fakeProvider) RenameRoute(ctx context.Context, id uuid.UUID, name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.renameErr != nil {
		return p.renameErr
	}
	p.renamed[id] = name
	return nil
}

func (p *fakeProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

type recordingEvents struct {
	mu       sync.Mutex
	received []models.FilterCriteria
}

func (e *recordingEvents) FilterChanged(ctx context.Context, c models.FilterCriteria) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.received = append(e.received, c)
}

func (e *recordingEvents) all() []models.FilterCriteria {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]models.FilterCriteria(nil), e.received...)
}

type runner interface {
	Run(ctx context.Context)
}

func start(t *testing.T, stores ...runner) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	for _, s := range stores {
		go s.Run(ctx)
	}
	t.Cleanup(cancel)
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 8, 0, 0, 0, time.UTC)
}

func newRoute(name string, at models.ActivityType, ts time.Time, samples ...models.Sample) models.RouteRecord {
	return models.RouteRecord{ID: uuid.New(), Name: name, ActivityType: at, StartTimestamp: ts, Samples: samples}
}

// ~100 m of walking north from the equator
func shortTrace() []models.Sample {
	return []models.Sample{{Lat: 0, Lon: 0}, {Lat: 0.00045, Lon: 0}, {Lat: 0.0009, Lon: 0}}
}

func fullRange() models.FilterCriteria {
	return models.FilterCriteria{
		ShowWalking: true,
		ShowRunning: true,
		ShowCycling: true,
		StartDate:   day(2000, 1, 1),
		EndDate:     day(2100, 1, 1),
	}
}

func ids(routes []models.RouteRecord) []uuid.UUID {
	out := make([]uuid.UUID, len(routes))
	for i, r := range routes {
		out[i] = r.ID
	}
	return out
}

func sameIDs(a, b []models.RouteRecord) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			return false
		}
	}
	return true
}

func (p *fakeProvider) renamedTo(id uuid.UUID) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.renamed[id]
}

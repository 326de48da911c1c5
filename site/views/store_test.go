package views

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/pthm/hxsite/lib/async"
	"github.com/pthm/hxsite/lib/telemetry"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type nopSource struct{}

func (nopSource) Search(ctx context.Context, q async.RemoteQuery) ([]async.RawRecord, error) {
	return nil, nil
}

type nopSink struct{}

func (nopSink) Subscribe(ctx context.Context, email string) error { return nil }

func testDecls(sched async.Scheduler, built *int) []async.Declaration {
	return []async.Declaration{
		{Name: "hero", Priority: 10},
		{Name: "gallery", Priority: 1, Construct: func() async.Controller {
			*built++
			fc := async.NewFetchController(nopSource{}, async.WithScheduler(sched))
			fc.Start(async.RemoteQuery{Keyword: "art", PageSize: 1})
			return fc
		}},
		{Name: "newsletter", Priority: 1, Construct: func() async.Controller {
			return async.NewSubmitController(nopSink{}, async.WithScheduler(sched))
		}},
	}
}

func newTestStore(t *testing.T, opts ...Option) (*Store, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	opts = append([]Option{WithClock(clock.Now), WithTTL(10 * time.Minute)}, opts...)
	return NewStore(opts...), clock
}

func TestOpenGet(t *testing.T) {
	s, _ := newTestStore(t)
	built := 0
	v := s.Open("home", 5, testDecls(&async.ManualScheduler{}, &built)...)

	if v.ID == "" || v.Page != "home" {
		t.Fatalf("view = %+v", v)
	}
	got, ok := s.Get(v.ID)
	if !ok || got != v {
		t.Fatalf("Get() = %v, %v", got, ok)
	}
	if _, ok := s.Get("nope"); ok {
		t.Error("Get(unknown) = ok")
	}
	if v.Composition().Visibility("hero") != async.Ready {
		t.Errorf("eager static section not ready")
	}
	if built != 0 {
		t.Errorf("lazy section constructed at open")
	}
}

func TestViewControllers(t *testing.T) {
	s, _ := newTestStore(t)
	built := 0
	sched := &async.ManualScheduler{}
	v := s.Open("home", 5, testDecls(sched, &built)...)

	fc, err := v.Fetch("gallery")
	if err != nil {
		t.Fatal(err)
	}
	again, _ := v.Fetch("gallery")
	if fc != again || built != 1 {
		t.Errorf("controller constructed %d times", built)
	}
	if _, err := v.Submit("gallery"); !errors.Is(err, ErrWrongController) {
		t.Errorf("Submit(gallery) err = %v", err)
	}
	if _, err := v.Submit("newsletter"); err != nil {
		t.Errorf("Submit(newsletter) err = %v", err)
	}
	if _, err := v.Fetch("missing"); !errors.Is(err, async.ErrUnknownSection) {
		t.Errorf("Fetch(missing) err = %v", err)
	}
}

func TestCloseDestroysControllers(t *testing.T) {
	s, _ := newTestStore(t)
	built := 0
	sched := &async.ManualScheduler{}
	v := s.Open("home", 5, testDecls(sched, &built)...)
	fc, _ := v.Fetch("gallery")

	if !s.Close(v.ID) {
		t.Fatal("Close() = false")
	}
	if s.Close(v.ID) {
		t.Error("second Close() = true")
	}
	sched.RunAll()
	if fc.State().Phase != async.FetchLoading {
		t.Errorf("destroyed controller applied a late result: %v", fc.State())
	}
	if _, err := v.Request("gallery"); !errors.Is(err, async.ErrCompositionClosed) {
		t.Errorf("Request after close err = %v", err)
	}
}

func TestSweep(t *testing.T) {
	s, clock := newTestStore(t)
	built := 0
	old := s.Open("home", 5, testDecls(&async.ManualScheduler{}, &built)...)
	clock.Advance(6 * time.Minute)
	fresh := s.Open("pricing", 5)
	clock.Advance(6 * time.Minute)

	if n := s.Sweep(clock.Now()); n != 1 {
		t.Fatalf("Sweep() = %d, want 1", n)
	}
	if _, ok := s.Get(old.ID); ok {
		t.Error("idle view survived sweep")
	}
	if _, ok := s.Get(fresh.ID); !ok {
		t.Error("fresh view swept")
	}
}

func TestGetKeepsViewAlive(t *testing.T) {
	s, clock := newTestStore(t)
	v := s.Open("home", 5)
	for i := 0; i < 5; i++ {
		clock.Advance(8 * time.Minute)
		if _, ok := s.Get(v.ID); !ok {
			t.Fatalf("view gone after %d touches", i)
		}
		s.Sweep(clock.Now())
	}
}

func TestMaxViewsEvictsOldest(t *testing.T) {
	s, clock := newTestStore(t, WithMaxViews(2))
	a := s.Open("a", 0)
	clock.Advance(time.Second)
	b := s.Open("b", 0)
	clock.Advance(time.Second)
	s.Get(a.ID)
	c := s.Open("c", 0)

	if s.Len() != 2 {
		t.Fatalf("Len() = %d", s.Len())
	}
	if _, ok := s.Get(b.ID); ok {
		t.Error("least recently seen view not evicted")
	}
	for _, v := range []*View{a, c} {
		if _, ok := s.Get(v.ID); !ok {
			t.Errorf("view %s evicted", v.Page)
		}
	}
}

func TestRunClosesOnCancel(t *testing.T) {
	s, _ := newTestStore(t, WithSweepInterval(time.Hour))
	s.Open("home", 0)
	s.Open("pricing", 0)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return")
	}
	if s.Len() != 0 {
		t.Errorf("Len() = %d after shutdown", s.Len())
	}
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := telemetry.NewMetrics(telemetry.WithRegistry(reg), telemetry.WithNamespace("t"))
	s, _ := newTestStore(t, WithMetrics(m))
	built := 0

	v := s.Open("home", 5, testDecls(&async.ManualScheduler{}, &built)...)
	v.Fetch("gallery")
	v.Fetch("gallery")
	s.Open("pricing", 0)
	s.Close(v.ID)

	expected := `
# HELP t_active_views Page views currently holding controllers.
# TYPE t_active_views gauge
t_active_views 1
# HELP t_section_requests_total Page sections requested, by section name.
# TYPE t_section_requests_total counter
t_section_requests_total{section="gallery"} 1
t_section_requests_total{section="hero"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "t_active_views", "t_section_requests_total"); err != nil {
		t.Error(err)
	}
}

func TestConcurrentRequestsCountOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := telemetry.NewMetrics(telemetry.WithRegistry(reg), telemetry.WithNamespace("c"))
	s, _ := newTestStore(t, WithMetrics(m))
	built := 0
	v := s.Open("home", 5, testDecls(&async.ManualScheduler{}, &built)...)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := v.Request("gallery"); err != nil {
				t.Errorf("Request() = %v", err)
			}
		}()
	}
	wg.Wait()

	if built != 1 {
		t.Errorf("gallery constructed %d times, want 1", built)
	}
	expected := `
# HELP c_section_requests_total Page sections requested, by section name.
# TYPE c_section_requests_total counter
c_section_requests_total{section="gallery"} 1
c_section_requests_total{section="hero"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "c_section_requests_total"); err != nil {
		t.Error(err)
	}
}

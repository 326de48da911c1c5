// Package views keeps the per-page-view state of the site: one
// async.Composition per rendered page, addressed by a random ID that the
// page's sections carry in their props.
package views

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pthm/hxsite/lib/async"
	"github.com/pthm/hxsite/lib/telemetry"
)

// Defaults for Store options.
const (
	DefaultTTL           = 30 * time.Minute
	DefaultSweepInterval = time.Minute
	DefaultMaxViews      = 10000
)

// ErrWrongController is returned when a section's controller is not of the
// requested kind.
var ErrWrongController = errors.New("views: section has a different controller type")

// View is one rendered page and the sections it owns.
type View struct {
	ID   string
	Page string

	comp    *async.Composition
	metrics *telemetry.Metrics

	mu       sync.Mutex
	lastSeen time.Time
}

// Composition returns the view's sections.
func (v *View) Composition() *async.Composition {
	return v.comp
}

// Request asks for a section's controller, constructing it on first use.
func (v *View) Request(name string) (async.Controller, error) {
	ctrl, first, err := v.comp.Activate(name)
	if err != nil {
		return nil, err
	}
	if first {
		v.metrics.SectionRequested(name)
	}
	return ctrl, nil
}

// Fetch returns the named section's FetchController.
func (v *View) Fetch(name string) (*async.FetchController, error) {
	ctrl, err := v.Request(name)
	if err != nil {
		return nil, err
	}
	fc, ok := ctrl.(*async.FetchController)
	if !ok {
		return nil, fmt.Errorf("%w: %s is %T", ErrWrongController, name, ctrl)
	}
	return fc, nil
}

// Submit returns the named section's SubmitController.
func (v *View) Submit(name string) (*async.SubmitController, error) {
	ctrl, err := v.Request(name)
	if err != nil {
		return nil, err
	}
	sc, ok := ctrl.(*async.SubmitController)
	if !ok {
		return nil, fmt.Errorf("%w: %s is %T", ErrWrongController, name, ctrl)
	}
	return sc, nil
}

func (v *View) touch(now time.Time) {
	v.mu.Lock()
	v.lastSeen = now
	v.mu.Unlock()
}

func (v *View) seen() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lastSeen
}

// Option configures a Store.
type Option func(*Store)

// WithTTL sets how long an idle view is kept.
func WithTTL(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.ttl = d
		}
	}
}

// WithSweepInterval sets how often Run evicts idle views.
func WithSweepInterval(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithMaxViews caps the number of live views; opening one more evicts the
// least recently seen.
func WithMaxViews(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxViews = n
		}
	}
}

// WithLogger sets the store's logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics records view and section counts.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Store holds live page views. Removing a view, whether by Close, Sweep or
// eviction, destroys its composition and so every controller in it.
type Store struct {
	mu    sync.Mutex
	views map[string]*View

	ttl      time.Duration
	interval time.Duration
	maxViews int
	now      func() time.Time
	logger   *slog.Logger
	metrics  *telemetry.Metrics
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		views:    make(map[string]*View),
		ttl:      DefaultTTL,
		interval: DefaultSweepInterval,
		maxViews: DefaultMaxViews,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "views")
	return s
}

// Open registers a new view for page. Sections with priority at or above
// threshold are requested immediately.
func (s *Store) Open(page string, threshold int, decls ...async.Declaration) *View {
	v := &View{
		ID:       uuid.NewString(),
		Page:     page,
		metrics:  s.metrics,
		lastSeen: s.now(),
	}
	v.comp = async.NewComposition(threshold, decls...)
	for _, name := range v.comp.Names() {
		if v.comp.Eager(name) {
			s.metrics.SectionRequested(name)
		}
	}

	s.mu.Lock()
	var evicted *View
	if len(s.views) >= s.maxViews {
		evicted = s.oldestLocked()
		if evicted != nil {
			delete(s.views, evicted.ID)
		}
	}
	s.views[v.ID] = v
	s.mu.Unlock()

	if evicted != nil {
		s.destroy(evicted, "capacity")
	}
	s.metrics.ViewOpened()
	s.logger.Debug("view opened", "view", v.ID, "page", page)
	return v
}

// Get returns a live view and marks it as recently used.
func (s *Store) Get(id string) (*View, bool) {
	s.mu.Lock()
	v, ok := s.views[id]
	s.mu.Unlock()
	if !ok {
		return nil, false
	}
	v.touch(s.now())
	return v, true
}

// Close removes a view. It reports whether the view existed.
func (s *Store) Close(id string) bool {
	s.mu.Lock()
	v, ok := s.views[id]
	delete(s.views, id)
	s.mu.Unlock()
	if ok {
		s.destroy(v, "closed")
	}
	return ok
}

// Len returns the number of live views.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.views)
}

// Sweep removes views idle for longer than the TTL as of now and returns
// how many it removed.
func (s *Store) Sweep(now time.Time) int {
	s.mu.Lock()
	var expired []*View
	for id, v := range s.views {
		if now.Sub(v.seen()) > s.ttl {
			expired = append(expired, v)
			delete(s.views, id)
		}
	}
	remaining := len(s.views)
	s.mu.Unlock()

	for _, v := range expired {
		s.destroy(v, "expired")
	}
	if len(expired) > 0 {
		s.logger.Debug("swept idle views", "count", len(expired), "remaining", remaining)
	}
	return len(expired)
}

// Run sweeps periodically until ctx is done, then closes every view.
func (s *Store) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Sweep(s.now())
		case <-ctx.Done():
			s.CloseAll()
			return
		}
	}
}

// CloseAll removes every view.
func (s *Store) CloseAll() {
	s.mu.Lock()
	all := s.views
	s.views = make(map[string]*View)
	s.mu.Unlock()

	for _, v := range all {
		s.destroy(v, "shutdown")
	}
}

func (s *Store) oldestLocked() *View {
	var oldest *View
	for _, v := range s.views {
		if oldest == nil || v.seen().Before(oldest.seen()) {
			oldest = v
		}
	}
	return oldest
}

func (s *Store) destroy(v *View, reason string) {
	v.comp.Destroy()
	s.metrics.ViewClosed()
	s.logger.Debug("view closed", "view", v.ID, "page", v.Page, "reason", reason)
}

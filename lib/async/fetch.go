package async

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Placeholder text substituted for missing provider fields.
const (
	UntitledTitle       = "Untitled"
	MissingDescription  = "No description available"
	GenericFetchFailure = "An error occurred"
)

// fixedTags is attached to every item; the provider has no per-item tags.
var fixedTags = [...]string{"Abstract", "Digital", "Art"}

// RemoteQuery is a single search request. It is immutable once issued.
type RemoteQuery struct {
	Keyword  string
	PageSize int
}

// Validate reports whether the query can be issued.
func (q RemoteQuery) Validate() error {
	if strings.TrimSpace(q.Keyword) == "" {
		return fmt.Errorf("%w: empty keyword", ErrInvalidQuery)
	}
	if q.PageSize <= 0 {
		return fmt.Errorf("%w: page size must be positive, got %d", ErrInvalidQuery, q.PageSize)
	}
	return nil
}

// RawRecord is one provider result as returned by a RemoteDataSource. Alt is
// optional; an empty value means the provider had none.
type RawRecord struct {
	ID              string
	Alt             string
	ImageURL        string
	Photographer    string
	PhotographerURL string
}

// DisplayItem is one gallery entry. Build it with MapRecord.
type DisplayItem struct {
	ID              string
	Title           string
	Description     string
	ImageRef        string
	AttributionName string
	AttributionURI  string
	Tags            []string
}

// MapRecord normalizes a provider record into a DisplayItem.
func MapRecord(raw RawRecord) DisplayItem {
	title, desc := UntitledTitle, MissingDescription
	if alt := strings.TrimSpace(raw.Alt); alt != "" {
		title, desc = alt, alt
	}
	return DisplayItem{
		ID:              raw.ID,
		Title:           title,
		Description:     desc,
		ImageRef:        raw.ImageURL,
		AttributionName: raw.Photographer,
		AttributionURI:  raw.PhotographerURL,
		Tags:            append([]string(nil), fixedTags[:]...),
	}
}

// RemoteDataSource performs searches against the photo provider.
type RemoteDataSource interface {
	Search(ctx context.Context, q RemoteQuery) ([]RawRecord, error)
}

// FetchPhase enumerates the FetchState variants.
type FetchPhase int

const (
	FetchLoading FetchPhase = iota
	FetchSuccess
	FetchFailure
)

func (p FetchPhase) String() string {
	switch p {
	case FetchLoading:
		return "loading"
	case FetchSuccess:
		return "success"
	case FetchFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// FetchState is the observable state of a FetchController. Items is set only
// in FetchSuccess, Message only in FetchFailure.
type FetchState struct {
	Phase   FetchPhase
	Items   []DisplayItem
	Message string
}

func (s FetchState) clone() FetchState {
	if s.Items == nil {
		return s
	}
	items := slices.Clone(s.Items)
	for i := range items {
		items[i].Tags = slices.Clone(items[i].Tags)
	}
	s.Items = items
	return s
}

// Loading returns the loading state.
func Loading() FetchState { return FetchState{Phase: FetchLoading} }

// Success returns a success state holding items. A nil slice is normalized
// to an empty one.
func Success(items []DisplayItem) FetchState {
	if items == nil {
		items = []DisplayItem{}
	}
	return FetchState{Phase: FetchSuccess, Items: items}
}

// Failure returns a failure state with a user-facing message.
func Failure(message string) FetchState {
	return FetchState{Phase: FetchFailure, Message: message}
}

// FetchController drives one remote read at a time. At most one request is
// in flight per controller; a Start issued meanwhile is dropped and the
// in-flight result still applies.
type FetchController struct {
	src       RemoteDataSource
	scheduler Scheduler
	observer  func(FetchState)

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	state     FetchState
	query     RemoteQuery
	started   bool
	inFlight  bool
	resolved  bool
	destroyed bool
	requests  int
}

// NewFetchController creates a controller in the Loading state. Nothing is
// requested until Start.
func NewFetchController(src RemoteDataSource, opts ...Option) *FetchController {
	o := buildOptions(opts)
	ctx, cancel := context.WithCancel(o.ctx)
	return &FetchController{
		src:       src,
		scheduler: o.scheduler,
		observer:  o.onFetch,
		ctx:       ctx,
		cancel:    cancel,
		state:     Loading(),
	}
}

// Start enters Loading and issues exactly one search for q. It reports
// whether a request was issued: a call made while another request is in
// flight, or after Destroy, is a no-op.
func (c *FetchController) Start(q RemoteQuery) bool {
	c.mu.Lock()
	if c.destroyed || c.inFlight {
		c.mu.Unlock()
		return false
	}
	c.query = q
	c.started = true
	c.inFlight = true
	c.requests++
	c.state = Loading()
	st := c.state
	c.mu.Unlock()

	c.notify(st)
	c.scheduler.Go(func() {
		records, err := c.search(q)
		c.complete(records, err)
	})
	return true
}

// Retry starts over with the last query. It is only valid from Failure.
func (c *FetchController) Retry() error {
	c.mu.Lock()
	if c.destroyed || !c.started || c.inFlight || c.state.Phase != FetchFailure {
		c.mu.Unlock()
		return ErrInvalidTransition
	}
	q := c.query
	c.mu.Unlock()

	if !c.Start(q) {
		return ErrInvalidTransition
	}
	return nil
}

// State returns a copy of the current state. Callers may modify it freely.
func (c *FetchController) State() FetchState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Query returns the last issued query.
func (c *FetchController) Query() RemoteQuery {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}

// Requests returns how many searches have been issued.
func (c *FetchController) Requests() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.requests
}

// Resolved reports whether the controller has reached a terminal state at
// least once.
func (c *FetchController) Resolved() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resolved
}

// Destroy discards the controller. Any completion that arrives afterwards
// is ignored.
func (c *FetchController) Destroy() {
	c.mu.Lock()
	c.destroyed = true
	c.mu.Unlock()
	c.cancel()
}

func (c *FetchController) search(q RemoteQuery) (records []RawRecord, err error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("async: data source panic: %v", r)
		}
	}()
	return c.src.Search(c.ctx, q)
}

func (c *FetchController) complete(records []RawRecord, err error) {
	var next FetchState
	if err != nil {
		next = Failure(fetchMessage(err))
	} else {
		items := make([]DisplayItem, 0, len(records))
		for _, rec := range records {
			items = append(items, MapRecord(rec))
		}
		next = Success(items)
	}

	c.mu.Lock()
	if c.destroyed {
		c.mu.Unlock()
		return
	}
	c.inFlight = false
	c.resolved = true
	c.state = next
	c.mu.Unlock()

	c.notify(next.clone())
}

func (c *FetchController) notify(st FetchState) {
	if c.observer != nil {
		c.observer(st)
	}
}

func fetchMessage(err error) string {
	var perr *ProviderError
	if errors.As(err, &perr) && perr.Message != "" {
		return perr.Message
	}
	return GenericFetchFailure
}

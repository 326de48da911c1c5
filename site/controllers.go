package site

import (
	"context"

	"github.com/pthm/hxsite/lib/async"
	"github.com/pthm/hxsite/lib/telemetry"
	"github.com/pthm/hxsite/site/components"
)

// Section priorities. Sections at or above Threshold are requested when
// the page view opens; the rest wait for the browser to ask.
const (
	PriorityEager    = 10
	PriorityDeferred = 0
	Threshold        = 5
)

// Controllers builds the controllers behind a page view's sections.
type Controllers struct {
	Source  async.RemoteDataSource
	Sink    async.SubscriptionSink
	Query   async.RemoteQuery
	Metrics *telemetry.Metrics

	// Context is the parent of every controller's context. Nil means
	// context.Background.
	Context context.Context
	// Scheduler runs remote calls. Nil means a goroutine per call.
	Scheduler async.Scheduler
}

// newGallery constructs and starts a FetchController for the configured
// query.
func (c Controllers) newGallery() async.Controller {
	fc := async.NewFetchController(c.Source,
		async.WithContext(c.Context),
		async.WithScheduler(c.Scheduler),
		async.WithFetchObserver(c.Metrics.FetchObserver()),
	)
	fc.Start(c.Query)
	return fc
}

func (c Controllers) newNewsletter() async.Controller {
	return async.NewSubmitController(c.Sink,
		async.WithContext(c.Context),
		async.WithScheduler(c.Scheduler),
		async.WithSubmitObserver(c.Metrics.SubmitObserver()),
	)
}

// HomeSections declares the home page.
func (c Controllers) HomeSections() []async.Declaration {
	return []async.Declaration{
		{Name: components.SectionHero, Priority: PriorityEager},
		{Name: components.SectionFeatures, Priority: PriorityEager},
		{Name: components.SectionShowcase, Priority: PriorityDeferred},
		{Name: components.SectionGallery, Priority: PriorityDeferred, Construct: c.newGallery},
		{Name: components.SectionNewsletter, Priority: PriorityDeferred, Construct: c.newNewsletter},
	}
}

// GallerySections declares the gallery page.
func (c Controllers) GallerySections() []async.Declaration {
	return []async.Declaration{
		{Name: components.SectionGallery, Priority: PriorityDeferred, Construct: c.newGallery},
		{Name: components.SectionNewsletter, Priority: PriorityDeferred, Construct: c.newNewsletter},
	}
}

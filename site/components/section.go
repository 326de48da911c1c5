package components

import (
	"errors"
	"fmt"
	"time"

	"github.com/pthm/hxsite"
	"github.com/pthm/hxsite/lib/async"
	"github.com/pthm/hxsite/site/views"
)

// Section names shared by pages and components.
const (
	SectionHero       = "hero"
	SectionFeatures   = "features"
	SectionShowcase   = "fonts"
	SectionGallery    = "gallery"
	SectionNewsletter = "newsletter"
)

// Events sent in HX-Trigger.
const (
	EventSubscribed    = "newsletter:subscribed"
	EventGalleryLoaded = "gallery:loaded"
)

// lookupView resolves the page view a section request belongs to.
func lookupView(store *views.Store, id string) (*views.View, error) {
	v, ok := store.Get(id)
	if !ok {
		return nil, hxsite.ErrViewExpired
	}
	return v, nil
}

// sectionErr maps a closed composition to an expired view.
func sectionErr(err error) error {
	if errors.Is(err, async.ErrCompositionClosed) {
		return fmt.Errorf("%w: %w", hxsite.ErrViewExpired, err)
	}
	return err
}

// every formats d as an htmx polling trigger.
func every(d time.Duration) string {
	if d <= 0 {
		d = time.Second
	}
	if d%time.Second == 0 {
		return fmt.Sprintf("every %ds", int(d/time.Second))
	}
	return fmt.Sprintf("every %dms", d.Milliseconds())
}

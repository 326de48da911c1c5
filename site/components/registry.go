package components

import (
	"time"

	"github.com/pthm/hxsite"
	"github.com/pthm/hxsite/site/views"
)

// Set holds the site's component instances.
type Set struct {
	Gallery    *Gallery
	Newsletter *Newsletter
	Showcase   *Showcase
}

// Init creates every component and registers it with reg.
func Init(reg *hxsite.Registry, store *views.Store, poll time.Duration) (*Set, error) {
	s := &Set{
		Gallery:    NewGallery(store, poll),
		Newsletter: NewNewsletter(store, poll),
		Showcase:   NewShowcase(store, nil),
	}
	if err := reg.Add(s.Gallery, s.Newsletter, s.Showcase); err != nil {
		return nil, err
	}
	return s, nil
}

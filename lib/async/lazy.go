package async

import (
	"fmt"
	"sync"
)

// SectionVisibility tracks whether a section's controller exists yet. It
// only moves forward: NotRequested, Requested, Ready.
type SectionVisibility int

const (
	NotRequested SectionVisibility = iota
	Requested
	Ready
)

func (v SectionVisibility) String() string {
	switch v {
	case NotRequested:
		return "not-requested"
	case Requested:
		return "requested"
	case Ready:
		return "ready"
	default:
		return "unknown"
	}
}

// Controller is the part of a section controller the composition needs.
// FetchController and SubmitController both satisfy it.
type Controller interface {
	Resolved() bool
	Destroy()
}

// Declaration describes one section of a page. A nil Construct declares a
// static section that has no controller.
type Declaration struct {
	Name      string
	Priority  int
	Construct func() Controller
}

// Section is a declared section and, once requested, its controller.
type Section struct {
	decl       Declaration
	visibility SectionVisibility
	ctrl       Controller
}

// Composition owns the sections of one page view. Sections are independent:
// requesting or failing one never blocks another.
type Composition struct {
	mu        sync.Mutex
	threshold int
	order     []string
	sections  map[string]*Section
	destroyed bool
}

// NewComposition builds a composition. Sections whose priority is at or
// above threshold are requested immediately; the rest stay NotRequested.
// It panics on duplicate or empty section names.
func NewComposition(threshold int, decls ...Declaration) *Composition {
	c := &Composition{
		threshold: threshold,
		sections:  make(map[string]*Section, len(decls)),
	}
	for _, d := range decls {
		if d.Name == "" {
			panic("async: section declared without a name")
		}
		if _, dup := c.sections[d.Name]; dup {
			panic(fmt.Sprintf("async: duplicate section %q", d.Name))
		}
		c.sections[d.Name] = &Section{decl: d}
		c.order = append(c.order, d.Name)
	}
	for _, name := range c.order {
		if s := c.sections[name]; s.decl.Priority >= threshold {
			c.request(s)
		}
	}
	return c
}

// Names returns section names in declaration order.
func (c *Composition) Names() []string {
	return append([]string(nil), c.order...)
}

// Eager reports whether the named section is constructed at page load.
func (c *Composition) Eager(name string) bool {
	s, ok := c.sections[name]
	return ok && s.decl.Priority >= c.threshold
}

// Request moves the named section to Requested, constructing its controller
// on the first call. Later calls return the same controller. The controller
// is nil for static sections.
func (c *Composition) Request(name string) (Controller, error) {
	ctrl, _, err := c.Activate(name)
	return ctrl, err
}

// Activate is Request that also reports whether this call was the one that
// moved the section out of NotRequested. Exactly one caller sees first set,
// however many race.
func (c *Composition) Activate(name string) (ctrl Controller, first bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.destroyed {
		return nil, false, ErrCompositionClosed
	}
	s, ok := c.sections[name]
	if !ok {
		return nil, false, fmt.Errorf("%w: %q", ErrUnknownSection, name)
	}
	first = s.visibility == NotRequested
	return c.request(s), first, nil
}

// Controller returns the named section's controller without requesting it.
// It returns nil while the section is NotRequested.
func (c *Composition) Controller(name string) Controller {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.sections[name]; ok {
		return s.ctrl
	}
	return nil
}

// Visibility returns the named section's visibility, promoting Requested to
// Ready once its controller has resolved. Unknown names are NotRequested.
func (c *Composition) Visibility(name string) SectionVisibility {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.sections[name]
	if !ok {
		return NotRequested
	}
	c.promote(s)
	return s.visibility
}

// Destroy destroys every constructed controller. Further requests fail with
// ErrCompositionClosed.
func (c *Composition) Destroy() {
	c.mu.Lock()
	if c.destroyed {
		c.mu.Unlock()
		return
	}
	c.destroyed = true
	var ctrls []Controller
	for _, name := range c.order {
		if s := c.sections[name]; s.ctrl != nil {
			ctrls = append(ctrls, s.ctrl)
		}
	}
	c.mu.Unlock()

	for _, ctrl := range ctrls {
		ctrl.Destroy()
	}
}

// request must be called with c.mu held (or before c is shared).
func (c *Composition) request(s *Section) Controller {
	if s.visibility == NotRequested {
		s.visibility = Requested
		if s.decl.Construct != nil {
			s.ctrl = s.decl.Construct()
		}
	}
	c.promote(s)
	return s.ctrl
}

func (c *Composition) promote(s *Section) {
	if s.visibility != Requested {
		return
	}
	if s.ctrl == nil || s.ctrl.Resolved() {
		s.visibility = Ready
	}
}

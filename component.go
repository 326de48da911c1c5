package hxsite

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/a-h/templ"
)

// Handler handles a named action. It receives hydrated props and returns a
// Result describing what to render.
type Handler[P any] func(ctx context.Context, props P, r *http.Request) Result[P]

type actionDef[P any] struct {
	name    string
	method  string
	handler Handler[P]
}

// Component is the base type embedded by site sections. P is the props type;
// props travel signed (or encrypted, see Sensitive) in every URL the
// component builds.
//
//	type Gallery struct {
//	    *hxsite.Component[GalleryProps]
//	    views *views.Store
//	}
//
//	func NewGallery(store *views.Store) *Gallery {
//	    c := &Gallery{Component: hxsite.New[GalleryProps]("gallery"), views: store}
//	    c.Action("retry", c.handleRetry)
//	    return c
//	}
//
// The embedding type must implement Hydrater[P] and Renderer[P]; Registry.Add
// checks this when the component is registered.
type Component[P any] struct {
	name      string
	prefix    string
	sensitive bool
	actions   map[string]*actionDef[P]

	encoder  *Encoder
	hydrater Hydrater[P]
	renderer Renderer[P]
	onError  func(http.ResponseWriter, *http.Request, error)
	logger   *slog.Logger
}

// New creates a component. Its URL prefix is derived from name and the
// file:line of the caller, so two instances with the same name still get
// distinct routes.
func New[P any](name string) *Component[P] {
	return &Component[P]{
		name:    name,
		prefix:  "/_c/" + name + "-" + componentHash(name, 1),
		actions: make(map[string]*actionDef[P]),
		logger:  slog.Default(),
	}
}

// Sensitive switches props from signed to encrypted.
func (c *Component[P]) Sensitive() *Component[P] {
	c.sensitive = true
	return c
}

// Name returns the component's name.
func (c *Component[P]) Name() string {
	return c.name
}

// HXPrefix returns the URL prefix all of the component's routes live under.
func (c *Component[P]) HXPrefix() string {
	return c.prefix
}

// IsSensitive reports whether props are encrypted.
func (c *Component[P]) IsSensitive() bool {
	return c.sensitive
}

// Action registers a named action, POST by default:
//
//	c.Action("submit", c.handleSubmit)
//	c.Action("state", c.handleState).Method(http.MethodGet)
func (c *Component[P]) Action(name string, h Handler[P]) *ActionBuilder {
	def := &actionDef[P]{name: name, method: http.MethodPost, handler: h}
	c.actions[name] = def
	return &ActionBuilder{method: &def.method}
}

// Refresh returns an Action that re-renders the component with props.
func (c *Component[P]) Refresh(props P) *Action {
	return NewAction(c.prefix+"/", http.MethodGet, c.encode(props))
}

// Call returns an Action for the named action. It panics if the action was
// never registered.
func (c *Component[P]) Call(action string, props P) *Action {
	def, ok := c.actions[action]
	if !ok {
		panic(fmt.Sprintf("hxsite: %s has no action %q", c.name, action))
	}
	return NewAction(c.prefix+"/"+action, def.method, c.encode(props))
}

// Lazy renders placeholder now and loads the component when the placeholder
// scrolls into view ("intersect once").
func (c *Component[P]) Lazy(props P, placeholder templ.Component) templ.Component {
	return deferred(c.Refresh(props), placeholder, "intersect once")
}

// Defer renders placeholder now and loads the component right after the
// page has loaded.
func (c *Component[P]) Defer(props P, placeholder templ.Component) templ.Component {
	return deferred(c.Refresh(props), placeholder, "load")
}

// Inline renders the component in place with the given props, running
// Hydrate first. Use it for eager sections on a full page render.
func (c *Component[P]) Inline(props P) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if c.hydrater == nil || c.renderer == nil {
			return fmt.Errorf("hxsite: %s rendered before registration", c.name)
		}
		if err := c.hydrater.Hydrate(ctx, &props); err != nil {
			return fmt.Errorf("%w: %w", ErrHydrationFailed, err)
		}
		return c.renderer.Render(ctx, props).Render(ctx, w)
	})
}

// mount binds the component to its registry. parent is the value that
// embeds this Component.
func (c *Component[P]) mount(parent any, reg *Registry) error {
	h, ok := parent.(Hydrater[P])
	if !ok {
		return fmt.Errorf("hxsite: %T does not implement Hydrater", parent)
	}
	r, ok := parent.(Renderer[P])
	if !ok {
		return fmt.Errorf("hxsite: %T does not implement Renderer", parent)
	}
	c.hydrater = h
	c.renderer = r
	c.encoder = reg.Encoder()
	c.onError = reg.handleError
	c.logger = reg.logger.With("component", c.name)
	return nil
}

// HXServeHTTP resolves the route, decodes props, hydrates and dispatches to
// the render or action handler. Requests rejected by routing never reach
// Hydrate.
func (c *Component[P]) HXServeHTTP(w http.ResponseWriter, r *http.Request) {
	var def *actionDef[P]
	name := strings.Trim(strings.TrimPrefix(r.URL.Path, c.prefix), "/")
	if name == "" {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
	} else {
		var ok bool
		if def, ok = c.actions[name]; !ok {
			c.fail(w, r, ErrNotFound)
			return
		}
		if def.method != r.Method {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
	}

	var props P
	if encoded := r.FormValue("p"); encoded != "" {
		if err := c.encoder.Decode(encoded, c.sensitive, &props); err != nil {
			c.fail(w, r, fmt.Errorf("%w: %w", ErrInvalidProps, err))
			return
		}
	}

	if err := c.hydrater.Hydrate(r.Context(), &props); err != nil {
		c.fail(w, r, fmt.Errorf("%w: %w", ErrHydrationFailed, err))
		return
	}

	if def == nil {
		c.write(w, r, OK(props))
		return
	}
	c.write(w, r, def.handler(r.Context(), props, r))
}

func (c *Component[P]) write(w http.ResponseWriter, r *http.Request, result Result[P]) {
	if err := result.GetErr(); err != nil {
		c.fail(w, r, err)
		return
	}

	for k, v := range result.GetHeaders() {
		w.Header().Set(k, v)
	}
	if redirect := result.GetRedirect(); redirect != "" {
		w.Header().Set("HX-Redirect", redirect)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if trigger := BuildTriggerHeader(result.GetTrigger(), result.GetTriggerData()); trigger != "" {
		w.Header().Set("HX-Trigger", trigger)
	}
	if result.ShouldSkip() {
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if status := result.GetStatus(); status != 0 {
		w.WriteHeader(status)
	}
	if err := c.renderer.Render(r.Context(), result.GetProps()).Render(r.Context(), w); err != nil {
		c.logger.Error("render failed", "path", r.URL.Path, "err", err)
		return
	}
	if flashes := result.GetFlashes(); len(flashes) > 0 {
		io.WriteString(w, RenderFlashesOOB(flashes))
	}
}

func (c *Component[P]) fail(w http.ResponseWriter, r *http.Request, err error) {
	if c.onError != nil {
		c.onError(w, r, err)
		return
	}
	http.Error(w, "Internal error", http.StatusInternalServerError)
}

func (c *Component[P]) encode(props P) string {
	if c.encoder == nil {
		return ""
	}
	encoded, err := c.encoder.Encode(props, c.sensitive)
	if err != nil {
		c.logger.Error("encode props", "err", err)
		return ""
	}
	return encoded
}

// componentHash derives a short, stable suffix from the caller's file:line.
func componentHash(name string, skip int) string {
	input := name
	if _, file, line, ok := runtime.Caller(skip + 1); ok {
		input = fmt.Sprintf("%s:%d:%s", filepath.Base(file), line, name)
	}
	h := sha256.Sum256([]byte(input))
	return hex.EncodeToString(h[:4])
}

// deferred wraps placeholder in an element that swaps itself for the
// component once trigger fires.
func deferred(a *Action, placeholder templ.Component, trigger string) templ.Component {
	attrs := a.On(trigger).Attrs()
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, "<div"+FormatAttrs(attrs)+">"); err != nil {
			return err
		}
		if placeholder != nil {
			if err := placeholder.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</div>")
		return err
	})
}

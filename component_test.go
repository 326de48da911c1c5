package hxsite

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/a-h/templ"
)

var testSecret = []byte("test-secret-for-props-0123456789")

type counterProps struct {
	View  string `msgpack:"v"`
	Count int    `msgpack:"c"`
}

type counter struct {
	*Component[counterProps]
	expired  map[string]bool
	hydrated int
}

func newCounter() *counter {
	c := &counter{Component: New[counterProps]("counter"), expired: map[string]bool{}}
	c.Action("inc", c.handleInc)
	c.Action("peek", c.handlePeek).Method(http.MethodGet)
	c.Action("fail", func(ctx context.Context, p counterProps, r *http.Request) Result[counterProps] {
		return Err(p, errors.New("boom"))
	})
	return c
}

func (c *counter) Hydrate(ctx context.Context, p *counterProps) error {
	c.hydrated++
	if c.expired[p.View] {
		return ErrViewExpired
	}
	return nil
}

func (c *counter) Render(ctx context.Context, p counterProps) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<div id="counter">%d</div>`, p.Count)
		return err
	})
}

func (c *counter) handleInc(ctx context.Context, p counterProps, r *http.Request) Result[counterProps] {
	p.Count++
	if r.FormValue("note") != "" {
		return OK(p).Flash(FlashInfo, r.FormValue("note")).Trigger("counter:changed")
	}
	return OK(p).Trigger("counter:changed")
}

func (c *counter) handlePeek(ctx context.Context, p counterProps, r *http.Request) Result[counterProps] {
	return OK(p).Header("Cache-Control", "no-store")
}

func newTestRegistry(t *testing.T) (*Registry, *counter) {
	t.Helper()
	reg, err := NewRegistry(testSecret)
	if err != nil {
		t.Fatal(err)
	}
	c := newCounter()
	if err := reg.Add(c); err != nil {
		t.Fatal(err)
	}
	return reg, c
}

func TestComponentRefresh(t *testing.T) {
	reg, c := newTestRegistry(t)

	res := TestGet(reg.Handler(), c.Refresh(counterProps{View: "v", Count: 4}))
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body = %s", res.StatusCode, res.HTML)
	}
	if !res.HTMLContains(`<div id="counter">4</div>`) {
		t.Errorf("body = %s", res.HTML)
	}
}

func TestComponentAction(t *testing.T) {
	reg, c := newTestRegistry(t)

	res := TestPost(reg.Handler(), c.Call("inc", counterProps{Count: 1}), map[string]string{"note": "bumped"})
	if !res.HTMLContains(`<div id="counter">2</div>`) {
		t.Errorf("body = %s", res.HTML)
	}
	if !res.HasEvent("counter:changed") {
		t.Errorf("events = %v", res.TriggeredEvents)
	}
	if !res.HasFlash(FlashInfo, "bumped") {
		t.Errorf("flashes = %v", res.Flashes)
	}
}

func TestComponentGETAction(t *testing.T) {
	reg, c := newTestRegistry(t)

	a := c.Call("peek", counterProps{Count: 9})
	if a.Method() != http.MethodGet {
		t.Fatalf("method = %s", a.Method())
	}
	res := TestGet(reg.Handler(), a)
	if res.Headers.Get("Cache-Control") != "no-store" || !res.HTMLContains(">9<") {
		t.Errorf("status=%d headers=%v body=%s", res.StatusCode, res.Headers, res.HTML)
	}
}

func TestComponentMethodMismatch(t *testing.T) {
	reg, c := newTestRegistry(t)

	res := TestRequest(reg.Handler(), http.MethodGet, c.HXPrefix()+"/inc", nil)
	if res.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", res.StatusCode)
	}
	res = TestPost(reg.Handler(), NewAction(c.HXPrefix()+"/", http.MethodPost, c.encode(counterProps{Count: 1})), nil)
	if res.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("POST render status = %d, want 405", res.StatusCode)
	}
	res = TestGet(reg.Handler(), NewAction(c.HXPrefix()+"/inc", http.MethodGet, c.encode(counterProps{Count: 1})))
	if res.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("GET with props status = %d, want 405", res.StatusCode)
	}
	if c.hydrated != 0 {
		t.Errorf("rejected requests hydrated %d times", c.hydrated)
	}
}

func TestComponentUnknownAction(t *testing.T) {
	reg, c := newTestRegistry(t)

	res := TestPost(reg.Handler(), NewAction(c.HXPrefix()+"/missing", http.MethodPost, c.encode(counterProps{Count: 1})), nil)
	if res.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", res.StatusCode)
	}
	if c.hydrated != 0 {
		t.Errorf("unknown action hydrated %d times", c.hydrated)
	}
}

func TestComponentSensitiveProps(t *testing.T) {
	reg, err := NewRegistry(testSecret)
	if err != nil {
		t.Fatal(err)
	}
	c := &counter{Component: New[counterProps]("secret-counter").Sensitive(), expired: map[string]bool{}}
	if err := reg.Add(c); err != nil {
		t.Fatal(err)
	}
	if !c.IsSensitive() {
		t.Fatal("IsSensitive() = false after Sensitive()")
	}

	a := c.Refresh(counterProps{View: "private-view", Count: 7})
	var signed counterProps
	if err := reg.Encoder().Decode(a.encoded, false, &signed); err == nil {
		t.Error("encrypted props decoded as signed")
	}

	res := TestGet(reg.Handler(), a)
	if res.StatusCode != http.StatusOK || !res.HTMLContains(`<div id="counter">7</div>`) {
		t.Errorf("status = %d, body = %s", res.StatusCode, res.HTML)
	}
}

func TestComponentCallUnknownPanics(t *testing.T) {
	c := newCounter()
	defer func() {
		if recover() == nil {
			t.Error("Call with unknown action did not panic")
		}
	}()
	c.Call("nope", counterProps{})
}

func TestComponentTamperedProps(t *testing.T) {
	reg, c := newTestRegistry(t)

	a := c.Refresh(counterProps{Count: 1})
	res := TestRequest(reg.Handler(), http.MethodGet, strings.Replace(a.URL(), "p=", "p=x", 1), nil)
	if res.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", res.StatusCode)
	}
}

func TestComponentExpiredView(t *testing.T) {
	reg, c := newTestRegistry(t)
	c.expired["gone"] = true

	res := TestGet(reg.Handler(), c.Refresh(counterProps{View: "gone"}))
	if res.StatusCode != StatusStopPolling {
		t.Errorf("status = %d, want %d", res.StatusCode, StatusStopPolling)
	}
	if !res.HTMLContains("expired") {
		t.Errorf("body = %s", res.HTML)
	}
}

func TestComponentHandlerError(t *testing.T) {
	var got error
	reg, err := NewRegistry(testSecret, WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
		got = err
		w.WriteHeader(http.StatusTeapot)
	}))
	if err != nil {
		t.Fatal(err)
	}
	c := newCounter()
	if err := reg.Add(c); err != nil {
		t.Fatal(err)
	}

	res := TestPost(reg.Handler(), c.Call("fail", counterProps{}), nil)
	if res.StatusCode != http.StatusTeapot {
		t.Errorf("status = %d", res.StatusCode)
	}
	if got == nil || got.Error() != "boom" {
		t.Errorf("handler saw %v", got)
	}
}

func TestComponentLazyAndDefer(t *testing.T) {
	_, c := newTestRegistry(t)
	placeholder := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<div class="skeleton"></div>`)
		return err
	})

	tests := []struct {
		name    string
		comp    templ.Component
		trigger string
	}{
		{"lazy", c.Lazy(counterProps{}, placeholder), `hx-trigger="intersect once"`},
		{"defer", c.Defer(counterProps{}, placeholder), `hx-trigger="load"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sb strings.Builder
			if err := tt.comp.Render(context.Background(), &sb); err != nil {
				t.Fatal(err)
			}
			html := sb.String()
			if !strings.Contains(html, tt.trigger) || !strings.Contains(html, `class="skeleton"`) {
				t.Errorf("html = %s", html)
			}
			if !strings.Contains(html, `hx-get="`+c.HXPrefix()+`/?p=`) {
				t.Errorf("missing refresh URL: %s", html)
			}
		})
	}
}

func TestComponentInline(t *testing.T) {
	_, c := newTestRegistry(t)
	var sb strings.Builder
	if err := c.Inline(counterProps{Count: 7}).Render(context.Background(), &sb); err != nil {
		t.Fatal(err)
	}
	if sb.String() != `<div id="counter">7</div>` {
		t.Errorf("html = %s", sb.String())
	}

	c.expired["x"] = true
	err := c.Inline(counterProps{View: "x"}).Render(context.Background(), &strings.Builder{})
	if !errors.Is(err, ErrViewExpired) || !errors.Is(err, ErrHydrationFailed) {
		t.Errorf("err = %v", err)
	}
}

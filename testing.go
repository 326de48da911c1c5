package hxsite

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
)

// TestResult holds a rendered response for assertions in tests.
type TestResult struct {
	HTML            string
	StatusCode      int
	Headers         http.Header
	TriggeredEvents []string
	Flashes         []Flash
	RedirectURL     string
}

// TestableComponent combines Hydrater and Renderer.
type TestableComponent[P any] interface {
	Hydrater[P]
	Renderer[P]
}

// TestRender runs Hydrate and Render with props directly, without going
// through HTTP or the props codec.
func TestRender[P any](ctx context.Context, comp TestableComponent[P], props P) (*TestResult, error) {
	if err := comp.Hydrate(ctx, &props); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := comp.Render(ctx, props).Render(ctx, &buf); err != nil {
		return nil, err
	}
	return &TestResult{
		HTML:       buf.String(),
		StatusCode: http.StatusOK,
		Headers:    make(http.Header),
	}, nil
}

// TestRequest sends an htmx request to h and collects the response.
// h is usually a registry handler or a single component.
func TestRequest(h http.Handler, method, target string, form map[string]string) *TestResult {
	values := url.Values{}
	for k, v := range form {
		values.Set(k, v)
	}
	req := httptest.NewRequest(method, target, strings.NewReader(values.Encode()))
	if len(form) > 0 {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	req.Header.Set("HX-Request", "true")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	res := &TestResult{
		HTML:        rec.Body.String(),
		StatusCode:  rec.Code,
		Headers:     rec.Header(),
		RedirectURL: rec.Header().Get("HX-Redirect"),
	}
	res.TriggeredEvents = parseTriggerHeader(rec.Header().Get("HX-Trigger"))
	res.Flashes = parseFlashesFromHTML(res.HTML)
	return res
}

// TestGet sends an htmx GET to the URL an Action points at.
func TestGet(h http.Handler, a *Action) *TestResult {
	return TestRequest(h, http.MethodGet, a.URL(), nil)
}

// TestPost sends an Action's request with its props plus extra form fields.
func TestPost(h http.Handler, a *Action, form map[string]string) *TestResult {
	all := map[string]string{}
	for k, v := range form {
		all[k] = v
	}
	if a.encoded != "" {
		all["p"] = a.encoded
	}
	return TestRequest(h, a.Method(), a.path, all)
}

// HTMLContains reports whether the body contains all substrings.
func (r *TestResult) HTMLContains(substrs ...string) bool {
	for _, s := range substrs {
		if !strings.Contains(r.HTML, s) {
			return false
		}
	}
	return true
}

// HasEvent reports whether event was sent in HX-Trigger.
func (r *TestResult) HasEvent(event string) bool {
	for _, e := range r.TriggeredEvents {
		if e == event {
			return true
		}
	}
	return false
}

// HasFlash reports whether a toast with level and message was rendered.
func (r *TestResult) HasFlash(level, message string) bool {
	for _, f := range r.Flashes {
		if f.Level == level && f.Message == message {
			return true
		}
	}
	return false
}

// parseTriggerHeader returns the event names in an HX-Trigger value, which
// is either a comma-separated list or a JSON object keyed by event.
func parseTriggerHeader(trigger string) []string {
	trigger = strings.TrimSpace(trigger)
	if trigger == "" {
		return nil
	}
	if strings.HasPrefix(trigger, "{") {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal([]byte(trigger), &obj); err != nil {
			return nil
		}
		events := make([]string, 0, len(obj))
		for k := range obj {
			events = append(events, k)
		}
		return events
	}
	var events []string
	for _, p := range strings.Split(trigger, ",") {
		if p = strings.TrimSpace(p); p != "" {
			events = append(events, p)
		}
	}
	return events
}

// parseFlashesFromHTML extracts toasts written by RenderFlashesOOB.
func parseFlashesFromHTML(html string) []Flash {
	const prefix = `<div class="toast toast-`
	var flashes []Flash
	for {
		start := strings.Index(html, prefix)
		if start == -1 {
			return flashes
		}
		html = html[start+len(prefix):]
		levelEnd := strings.IndexByte(html, '"')
		tagEnd := strings.IndexByte(html, '>')
		if levelEnd == -1 || tagEnd == -1 {
			return flashes
		}
		level := html[:levelEnd]
		html = html[tagEnd+1:]
		end := strings.Index(html, "</div>")
		if end == -1 {
			return flashes
		}
		flashes = append(flashes, Flash{Level: level, Message: unescapeText(html[:end])})
		html = html[end:]
	}
}

var textUnescaper = strings.NewReplacer("&amp;", "&", "&lt;", "<", "&gt;", ">", "&#34;", `"`, "&#39;", "'", "&quot;", `"`)

func unescapeText(s string) string {
	return textUnescaper.Replace(s)
}

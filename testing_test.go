package hxsite

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sort"
	"testing"

	"github.com/a-h/templ"
	"github.com/google/go-cmp/cmp"
)

func TestTestRender(t *testing.T) {
	c := newCounter()
	res, err := TestRender(context.Background(), c, counterProps{Count: 3})
	if err != nil {
		t.Fatal(err)
	}
	if !res.HTMLContains(`<div id="counter">3</div>`) {
		t.Errorf("html = %s", res.HTML)
	}

	c.expired["v"] = true
	if _, err := TestRender(context.Background(), c, counterProps{View: "v"}); !errors.Is(err, ErrViewExpired) {
		t.Errorf("err = %v", err)
	}
}

func TestTestRequestSetsHXRequest(t *testing.T) {
	var got string
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("HX-Request")
		w.Header().Set("HX-Redirect", "/pricing")
		w.Header().Set("HX-Trigger", `{"a":1,"b":{"x":true}}`)
	})
	res := TestRequest(h, http.MethodPost, "/", map[string]string{"k": "v"})
	if got != "true" {
		t.Errorf("HX-Request = %q", got)
	}
	if res.RedirectURL != "/pricing" {
		t.Errorf("redirect = %q", res.RedirectURL)
	}
	events := append([]string(nil), res.TriggeredEvents...)
	sort.Strings(events)
	if diff := cmp.Diff([]string{"a", "b"}, events); diff != "" {
		t.Errorf("events (-want +got):\n%s", diff)
	}
}

func TestParseTriggerHeader(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"one", []string{"one"}},
		{"one, two", []string{"one", "two"}},
		{`{"solo":{"k":"a,b"}}`, []string{"solo"}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, parseTriggerHeader(tt.in)); diff != "" {
			t.Errorf("parseTriggerHeader(%q) (-want +got):\n%s", tt.in, diff)
		}
	}
}

func TestParseFlashesFromHTMLNone(t *testing.T) {
	if got := parseFlashesFromHTML("<p>plain</p>"); got != nil {
		t.Errorf("got %v", got)
	}
}

func TestTestPostUsesActionMethod(t *testing.T) {
	var method, p string
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method, p = r.Method, r.FormValue("p")
		templ.Handler(templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
			_, err := io.WriteString(w, "ok")
			return err
		})).ServeHTTP(w, r)
	})
	res := TestPost(h, NewAction("/x", http.MethodPut, "enc"), nil)
	if method != http.MethodPut || p != "enc" {
		t.Errorf("method=%s p=%s", method, p)
	}
	if res.HTML != "ok" {
		t.Errorf("html = %q", res.HTML)
	}
}

package hxsite

import (
	"net/http"
	"testing"

	"github.com/a-h/templ"
)

func TestNewAction(t *testing.T) {
	a := NewAction("/_c/gallery-1/retry", http.MethodPost, "abc.def")

	if a.URL() != "/_c/gallery-1/retry" {
		t.Errorf("URL() = %q, want path without props", a.URL())
	}
	attrs := a.Attrs()
	if attrs["hx-post"] != "/_c/gallery-1/retry" {
		t.Errorf("hx-post = %v", attrs["hx-post"])
	}
	if attrs["hx-vals"] != `{"p":"abc.def"}` {
		t.Errorf("hx-vals = %v", attrs["hx-vals"])
	}
	if attrs["hx-swap"] != "outerHTML" {
		t.Errorf("hx-swap = %v, want outerHTML", attrs["hx-swap"])
	}
}

func TestActionGETCarriesPropsInURL(t *testing.T) {
	a := NewAction("/_c/gallery-1/", http.MethodGet, "abc.def")
	if got := a.URL(); got != "/_c/gallery-1/?p=abc.def" {
		t.Errorf("URL() = %q", got)
	}
	attrs := a.Attrs()
	if attrs["hx-get"] != "/_c/gallery-1/?p=abc.def" {
		t.Errorf("hx-get = %v", attrs["hx-get"])
	}
	if _, ok := attrs["hx-vals"]; ok {
		t.Error("GET action should not set hx-vals")
	}
}

func TestActionMethods(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		wantAttr string
	}{
		{"GET", http.MethodGet, "hx-get"},
		{"POST", http.MethodPost, "hx-post"},
		{"PUT", http.MethodPut, "hx-put"},
		{"PATCH", http.MethodPatch, "hx-patch"},
		{"DELETE", http.MethodDelete, "hx-delete"},
		{"empty defaults to GET", "", "hx-get"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attrs := NewAction("/url", tt.method, "").Attrs()
			if _, ok := attrs[tt.wantAttr]; !ok {
				t.Errorf("expected attribute %q, got %v", tt.wantAttr, attrs)
			}
		})
	}
}

func TestActionModifiers(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*Action) *Action
		attr  string
		want  string
	}{
		{"Target", func(a *Action) *Action { return a.Target("#x") }, "hx-target", "#x"},
		{"TargetThis", func(a *Action) *Action { return a.TargetThis() }, "hx-target", "this"},
		{"TargetClosest", func(a *Action) *Action { return a.TargetClosest("section") }, "hx-target", "closest section"},
		{"Swap", func(a *Action) *Action { return a.Swap(SwapInner) }, "hx-swap", "innerHTML"},
		{"On", func(a *Action) *Action { return a.On("every 1s") }, "hx-trigger", "every 1s"},
		{"Confirm", func(a *Action) *Action { return a.Confirm("Sure?") }, "hx-confirm", "Sure?"},
		{"DisableWhileRequesting", func(a *Action) *Action { return a.DisableWhileRequesting("find button") }, "hx-disabled-elt", "find button"},
		{"Indicator", func(a *Action) *Action { return a.Indicator("#spin") }, "hx-indicator", "#spin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attrs := tt.setup(NewAction("/url", http.MethodPost, "")).Attrs()
			if attrs[tt.attr] != tt.want {
				t.Errorf("%s = %v, want %q", tt.attr, attrs[tt.attr], tt.want)
			}
		})
	}
}

func TestActionBuilderMethod(t *testing.T) {
	method := http.MethodPost
	ab := &ActionBuilder{method: &method}
	ab.Method(http.MethodGet)
	if method != http.MethodGet {
		t.Errorf("method = %q, want GET", method)
	}
}

func TestFormatAttrs(t *testing.T) {
	got := FormatAttrs(templ.Attributes{
		"hx-get":   "/a?p=1&q=2",
		"disabled": true,
		"hidden":   false,
		"class":    `x"y`,
	})
	want := ` class="x&#34;y" disabled hx-get="/a?p=1&amp;q=2"`
	if got != want {
		t.Errorf("FormatAttrs() = %q, want %q", got, want)
	}
}

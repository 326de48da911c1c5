package hxsite

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"

	"github.com/a-h/templ"
)

// ActionBuilder adjusts an action at registration time.
type ActionBuilder struct {
	method *string
}

// Method overrides the default POST method:
//
//	c.Action("state", c.handleState).Method(http.MethodGet)
func (ab *ActionBuilder) Method(m string) *ActionBuilder {
	*ab.method = m
	return ab
}

// Action builds the HTMX attributes for one request to a component.
//
// GET actions carry props in the query string; other methods send them in
// hx-vals so the URL stays clean.
//
//	<button {c.Call("retry", props).Target("closest section").Attrs()...}>
type Action struct {
	path        string
	method      string
	encoded     string
	target      string
	swap        SwapMode
	trigger     string
	confirm     string
	disabledElt string
	indicator   string
}

// NewAction creates an Action for path. encoded holds the already-encoded
// props and may be empty.
func NewAction(path, method, encoded string) *Action {
	if method == "" {
		method = http.MethodGet
	}
	return &Action{path: path, method: method, encoded: encoded, swap: SwapOuter}
}

// URL returns the request URL. For GET actions it includes the props.
func (a *Action) URL() string {
	if a.method == http.MethodGet && a.encoded != "" {
		return a.path + "?p=" + a.encoded
	}
	return a.path
}

// Method returns the HTTP method.
func (a *Action) Method() string {
	return a.method
}

// Target sets hx-target.
func (a *Action) Target(selector string) *Action {
	a.target = selector
	return a
}

// TargetThis targets the element carrying the attributes.
func (a *Action) TargetThis() *Action {
	return a.Target("this")
}

// TargetClosest targets the closest ancestor matching selector.
func (a *Action) TargetClosest(selector string) *Action {
	return a.Target("closest " + selector)
}

// Swap sets hx-swap.
func (a *Action) Swap(mode SwapMode) *Action {
	a.swap = mode
	return a
}

// On sets hx-trigger, e.g. "load", "intersect once" or "every 1s".
func (a *Action) On(trigger string) *Action {
	a.trigger = trigger
	return a
}

// Confirm asks the user before sending the request.
func (a *Action) Confirm(message string) *Action {
	a.confirm = message
	return a
}

// DisableWhileRequesting sets hx-disabled-elt so the matched elements are
// disabled for the duration of the request.
func (a *Action) DisableWhileRequesting(selector string) *Action {
	a.disabledElt = selector
	return a
}

// Indicator sets hx-indicator.
func (a *Action) Indicator(selector string) *Action {
	a.indicator = selector
	return a
}

// Attrs returns the attributes for the action.
func (a *Action) Attrs() templ.Attributes {
	attrs := templ.Attributes{}
	switch a.method {
	case http.MethodGet:
		attrs["hx-get"] = a.URL()
	case http.MethodPut:
		attrs["hx-put"] = a.path
	case http.MethodPatch:
		attrs["hx-patch"] = a.path
	case http.MethodDelete:
		attrs["hx-delete"] = a.path
	default:
		attrs["hx-post"] = a.path
	}
	if a.method != http.MethodGet && a.encoded != "" {
		vals, _ := json.Marshal(map[string]string{"p": a.encoded})
		attrs["hx-vals"] = string(vals)
	}
	if a.swap != "" {
		attrs["hx-swap"] = string(a.swap)
	}
	if a.target != "" {
		attrs["hx-target"] = a.target
	}
	if a.trigger != "" {
		attrs["hx-trigger"] = a.trigger
	}
	if a.confirm != "" {
		attrs["hx-confirm"] = a.confirm
	}
	if a.disabledElt != "" {
		attrs["hx-disabled-elt"] = a.disabledElt
	}
	if a.indicator != "" {
		attrs["hx-indicator"] = a.indicator
	}
	return attrs
}

// String renders the attributes for inclusion in a start tag.
func (a *Action) String() string {
	return FormatAttrs(a.Attrs())
}

// FormatAttrs renders attrs as ` key="value"` pairs in key order. String
// values are escaped; true booleans render as bare attributes and false ones
// are omitted.
func FormatAttrs(attrs templ.Attributes) string {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		switch v := attrs[k].(type) {
		case bool:
			if v {
				sb.WriteString(" " + templ.EscapeString(k))
			}
		case string:
			sb.WriteString(" " + templ.EscapeString(k) + `="` + templ.EscapeString(v) + `"`)
		}
	}
	return sb.String()
}

package hxsite

import (
	"encoding/json"
	"net/http"

	"github.com/a-h/templ"
)

// StatusStopPolling tells htmx to cancel an hx-trigger="every ..." poll.
const StatusStopPolling = 286

// Render writes a templ component as the HTML response.
func Render(w http.ResponseWriter, r *http.Request, component templ.Component) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return component.Render(r.Context(), w)
}

// IsHTMX reports whether the request was sent by htmx.
func IsHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// IsBoosted reports whether the request is an hx-boost navigation.
func IsBoosted(r *http.Request) bool {
	return r.Header.Get("HX-Boosted") == "true"
}

// TriggerName returns the name of the element that sent the request.
func TriggerName(r *http.Request) string {
	return r.Header.Get("HX-Trigger-Name")
}

// BuildTriggerHeader formats an HX-Trigger value. Without data the event
// name is used as is; with data it becomes {"event": data}.
func BuildTriggerHeader(trigger string, data map[string]any) string {
	if trigger == "" {
		return ""
	}
	if data == nil {
		return trigger
	}
	b, err := json.Marshal(map[string]any{trigger: data})
	if err != nil {
		return trigger
	}
	return string(b)
}

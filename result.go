package hxsite

// Result is returned from action handlers to describe the response: the
// props to render with, flash toasts, events, headers and status.
//
//	return hxsite.OK(props)
//	return hxsite.OK(props).Flash(hxsite.FlashSuccess, "Subscribed!")
//	return hxsite.OK(props).Trigger("newsletter:subscribed")
//	return hxsite.Err(props, err)
//
// Errors returned with Err go to the registry's error handler; they are
// never rendered by the component itself.
type Result[P any] struct {
	props       P
	err         error
	redirect    string
	flashes     []Flash
	trigger     string
	triggerData map[string]any
	headers     map[string]string
	status      int
	skip        bool
}

// OK creates a result that renders the component with props.
func OK[P any](props P) Result[P] {
	return Result[P]{props: props}
}

// Err creates a result that hands err to the registry's error handler.
func Err[P any](props P, err error) Result[P] {
	return Result[P]{props: props, err: err}
}

// Skip creates a result for handlers that wrote their own response.
func Skip[P any]() Result[P] {
	return Result[P]{skip: true}
}

// Redirect creates a result that navigates the browser via HX-Redirect.
func Redirect[P any](url string) Result[P] {
	return Result[P]{redirect: url}
}

// Flash appends a toast. See the Flash* level constants.
func (r Result[P]) Flash(level, message string) Result[P] {
	r.flashes = append(r.flashes, Flash{Level: level, Message: message})
	return r
}

// Trigger emits event through the HX-Trigger header, optionally with data
// that listeners receive as evt.detail.
func (r Result[P]) Trigger(event string, data ...map[string]any) Result[P] {
	r.trigger = event
	if len(data) > 0 {
		r.triggerData = data[0]
	}
	return r
}

// Header sets a response header.
func (r Result[P]) Header(key, value string) Result[P] {
	if r.headers == nil {
		r.headers = make(map[string]string)
	}
	r.headers[key] = value
	return r
}

// Status sets the HTTP status code. Zero means 200.
func (r Result[P]) Status(code int) Result[P] {
	r.status = code
	return r
}

// GetProps returns the props from the result.
func (r Result[P]) GetProps() P { return r.props }

// GetErr returns the error from the result.
func (r Result[P]) GetErr() error { return r.err }

// GetRedirect returns the redirect URL.
func (r Result[P]) GetRedirect() string { return r.redirect }

// GetFlashes returns the flash messages.
func (r Result[P]) GetFlashes() []Flash { return r.flashes }

// GetTrigger returns the trigger event name.
func (r Result[P]) GetTrigger() string { return r.trigger }

// GetTriggerData returns the trigger event data.
func (r Result[P]) GetTriggerData() map[string]any { return r.triggerData }

// GetHeaders returns the response headers.
func (r Result[P]) GetHeaders() map[string]string { return r.headers }

// GetStatus returns the HTTP status code (0 means not set).
func (r Result[P]) GetStatus() int { return r.status }

// ShouldSkip reports whether the handler wrote its own response.
func (r Result[P]) ShouldSkip() bool { return r.skip }

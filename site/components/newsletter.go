package components

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/a-h/templ"

	"github.com/pthm/hxsite"
	"github.com/pthm/hxsite/lib/async"
	"github.com/pthm/hxsite/site/internal/markup"
	"github.com/pthm/hxsite/site/views"
)

// Copy shown by the newsletter section.
const (
	SubscribedTitle = "Successfully Subscribed!"
	SubscribedBody  = "Thank you for subscribing to our newsletter. You'll receive updates soon!"
	SubscribedToast = "You're subscribed to our newsletter."
)

// fieldMessages turns validation reasons into form copy.
var fieldMessages = map[string]string{
	async.ReasonMissing: "Please enter your email address",
	async.ReasonFormat:  "Please enter a valid email address",
}

// FieldMessage returns the visitor-facing text for a validation reason.
func FieldMessage(reason string) string {
	if msg, ok := fieldMessages[reason]; ok {
		return msg
	}
	return reason
}

// NewsletterProps address one newsletter section.
type NewsletterProps struct {
	View    string `msgpack:"v"`
	Section string `msgpack:"s"`
	Phase   string `msgpack:"ph,omitempty"`

	ctrl  *async.SubmitController
	state async.SubmissionState
}

// Newsletter is the sign-up form backed by a SubmitController.
type Newsletter struct {
	*hxsite.Component[NewsletterProps]
	views *views.Store
	poll  time.Duration
}

// NewNewsletter creates the newsletter component.
func NewNewsletter(store *views.Store, poll time.Duration) *Newsletter {
	c := &Newsletter{
		Component: hxsite.New[NewsletterProps]("newsletter"),
		views:     store,
		poll:      poll,
	}
	c.Action("state", c.handleState).Method(http.MethodGet)
	c.Action("submit", c.handleSubmit)
	c.Action("reset", c.handleReset)
	return c
}

// Hydrate resolves the section's controller and snapshots its state.
func (c *Newsletter) Hydrate(ctx context.Context, props *NewsletterProps) error {
	v, err := lookupView(c.views, props.View)
	if err != nil {
		return err
	}
	if props.Section == "" {
		props.Section = SectionNewsletter
	}
	sc, err := v.Submit(props.Section)
	if err != nil {
		return sectionErr(err)
	}
	props.ctrl = sc
	props.state = sc.State()
	return nil
}

func (c *Newsletter) handleState(ctx context.Context, props NewsletterProps, r *http.Request) hxsite.Result[NewsletterProps] {
	return c.respond(props)
}

// handleSubmit stores the posted address as the draft and submits it.
// Requests that arrive while a write is in flight just re-render.
func (c *Newsletter) handleSubmit(ctx context.Context, props NewsletterProps, r *http.Request) hxsite.Result[NewsletterProps] {
	err := props.ctrl.UpdateDraft(r.FormValue("email"))
	if err == nil {
		err = props.ctrl.Submit()
	}
	if err != nil && !errors.Is(err, async.ErrInvalidTransition) {
		return hxsite.Err(props, err)
	}
	return c.respond(props)
}

func (c *Newsletter) handleReset(ctx context.Context, props NewsletterProps, r *http.Request) hxsite.Result[NewsletterProps] {
	if err := props.ctrl.Reset(); err != nil && !errors.Is(err, async.ErrInvalidTransition) {
		return hxsite.Err(props, err)
	}
	return c.respond(props)
}

// respond re-reads the controller. The first response that shows Submitted
// carries a toast and the subscribed event.
func (c *Newsletter) respond(props NewsletterProps) hxsite.Result[NewsletterProps] {
	prev := props.Phase
	props.state = props.ctrl.State()
	props.Phase = props.state.Phase.String()

	res := hxsite.OK(props)
	if props.state.Phase == async.SubmitSubmitted && prev != props.Phase {
		res = res.Flash(hxsite.FlashSuccess, SubscribedToast).Trigger(EventSubscribed)
	}
	return res
}

// Render draws the form, the pending form or the confirmation.
func (c *Newsletter) Render(ctx context.Context, props NewsletterProps) templ.Component {
	props.Phase = props.state.Phase.String()
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := markup.New(ctx, w)
		attrs := templ.Attributes{"id": props.Section, "class": "newsletter"}

		switch props.state.Phase {
		case async.SubmitSubmitted:
			m.Open("section", attrs)
			m.Open("div", templ.Attributes{"class": "newsletter-success", "role": "status"})
			m.Raw(`<svg class="icon-check" fill="none" stroke="currentColor" viewBox="0 0 24 24" aria-hidden="true">`,
				`<path stroke-linecap="round" stroke-linejoin="round" stroke-width="2" d="M9 12l2 2 4-4m6 2a9 9 0 11-18 0 9 9 0 0118 0z"/></svg>`)
			m.Elem("h3", nil, SubscribedTitle)
			m.Elem("p", nil, SubscribedBody)
			reset := c.Call("reset", props).TargetClosest("section").Attrs()
			m.Elem("button", markup.Merge(reset, templ.Attributes{"type": "button", "class": "btn-link"}), "Subscribe another email")
			m.Close("div")

		case async.SubmitSubmitting:
			attrs["aria-busy"] = "true"
			poll := c.Call("state", props).Target("this").On(every(c.poll)).Attrs()
			m.Open("section", markup.Merge(attrs, poll))
			newsletterIntro(m)
			newsletterForm(m, props.state, nil)

		default:
			m.Open("section", attrs)
			newsletterIntro(m)
			submit := c.Call("submit", props).
				TargetClosest("section").
				DisableWhileRequesting("find button").
				Attrs()
			newsletterForm(m, props.state, submit)
		}

		m.Close("section")
		return m.Err()
	})
}

func newsletterIntro(m *markup.Writer) {
	m.Elem("h2", nil, "Stay Updated")
	m.Elem("p", markup.Class("newsletter-lede"), "Subscribe to our newsletter for the latest articles and updates")
}

// newsletterForm draws the form. A nil action renders it disabled.
func newsletterForm(m *markup.Writer, st async.SubmissionState, action templ.Attributes) {
	busy := action == nil
	formAttrs := markup.Merge(templ.Attributes{"class": "newsletter-form", "novalidate": true}, action)
	m.Open("form", formAttrs)
	m.Open("div", markup.Class("newsletter-row"))

	input := templ.Attributes{
		"type":         "email",
		"name":         "email",
		"value":        st.Draft,
		"placeholder":  "Enter your email",
		"autocomplete": "email",
		"required":     true,
		"disabled":     busy,
	}
	if st.FieldError != "" {
		input["aria-invalid"] = "true"
		input["aria-describedby"] = "newsletter-error"
	}
	m.Open("input", input)

	label := "Subscribe"
	if busy {
		label = "Subscribing..."
	}
	m.Elem("button", templ.Attributes{"type": "submit", "class": "btn btn-primary", "disabled": busy}, label)
	m.Close("div")

	if st.FieldError != "" {
		m.Elem("p", templ.Attributes{"id": "newsletter-error", "class": "field-error", "role": "alert"}, FieldMessage(st.FieldError))
	}
	if st.Phase == async.SubmitFailure {
		m.Elem("p", templ.Attributes{"class": "form-error", "role": "alert"}, st.Message)
	}
	m.Close("form")
}

// NewsletterSkeleton is the placeholder shown until the form loads.
func NewsletterSkeleton() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := markup.New(ctx, w)
		m.Open("section", templ.Attributes{"class": "newsletter skeleton", "aria-hidden": "true"})
		m.Raw(`<div class="line title"></div><div class="line"></div>`,
			`<div class="newsletter-row"><div class="input"></div><div class="button"></div></div>`)
		m.Close("section")
		return m.Err()
	})
}

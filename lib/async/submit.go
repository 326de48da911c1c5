package async

import (
	"context"
	"fmt"
	"sync"
)

// GenericSubmitFailure is shown when a subscription write fails.
const GenericSubmitFailure = "Something went wrong. Please try again."

// SubscriptionSink records newsletter subscriptions.
type SubscriptionSink interface {
	Subscribe(ctx context.Context, email string) error
}

// SubmitPhase enumerates the SubmissionState variants.
type SubmitPhase int

const (
	SubmitIdle SubmitPhase = iota
	SubmitSubmitting
	SubmitSubmitted
	SubmitFailure
)

func (p SubmitPhase) String() string {
	switch p {
	case SubmitIdle:
		return "idle"
	case SubmitSubmitting:
		return "submitting"
	case SubmitSubmitted:
		return "submitted"
	case SubmitFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// SubmissionState is the observable state of a SubmitController.
//
// Draft is meaningful in Idle, Submitting and Failure. FieldError is only
// set in Idle after a rejected submit; Message only in Failure.
type SubmissionState struct {
	Phase      SubmitPhase
	Draft      string
	FieldError string
	Message    string
}

// Editable reports whether the draft may be changed or submitted.
func (s SubmissionState) Editable() bool {
	return s.Phase == SubmitIdle || s.Phase == SubmitFailure
}

// SubmitController drives a single form write: validate, submit once,
// confirm or fail. Failures are never retried automatically.
type SubmitController struct {
	sink      SubscriptionSink
	policy    Policy
	scheduler Scheduler
	observer  func(SubmissionState)

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	state     SubmissionState
	destroyed bool
	writes    int
}

// NewSubmitController creates a controller in Idle with an empty draft.
func NewSubmitController(sink SubscriptionSink, opts ...Option) *SubmitController {
	o := buildOptions(opts)
	ctx, cancel := context.WithCancel(o.ctx)
	return &SubmitController{
		sink:      sink,
		policy:    o.policy,
		scheduler: o.scheduler,
		observer:  o.onSubmit,
		ctx:       ctx,
		cancel:    cancel,
		state:     SubmissionState{Phase: SubmitIdle},
	}
}

// UpdateDraft replaces the draft and clears any field error. From Failure it
// returns the controller to Idle.
func (c *SubmitController) UpdateDraft(value string) error {
	c.mu.Lock()
	if c.destroyed || !c.state.Editable() {
		c.mu.Unlock()
		return ErrInvalidTransition
	}
	c.state = SubmissionState{Phase: SubmitIdle, Draft: value}
	st := c.state
	c.mu.Unlock()

	c.notify(st)
	return nil
}

// Submit validates the draft and, if it passes, issues one write. An invalid
// draft leaves the controller in Idle with FieldError set and contacts
// nothing. Submit is rejected while Submitting or after Submitted.
func (c *SubmitController) Submit() error {
	c.mu.Lock()
	if c.destroyed || !c.state.Editable() {
		c.mu.Unlock()
		return ErrInvalidTransition
	}
	draft := c.state.Draft
	if err := c.policy(draft); err != nil {
		c.state = SubmissionState{Phase: SubmitIdle, Draft: draft, FieldError: ReasonOf(err)}
		st := c.state
		c.mu.Unlock()
		c.notify(st)
		return nil
	}
	c.state = SubmissionState{Phase: SubmitSubmitting, Draft: draft}
	c.writes++
	st := c.state
	c.mu.Unlock()

	c.notify(st)
	c.scheduler.Go(func() {
		c.complete(draft, c.subscribe(draft))
	})
	return nil
}

// Reset returns a Submitted controller to an empty Idle so another address
// can be entered. From any other phase it is rejected and changes nothing.
func (c *SubmitController) Reset() error {
	c.mu.Lock()
	if c.destroyed || c.state.Phase != SubmitSubmitted {
		c.mu.Unlock()
		return ErrInvalidTransition
	}
	c.state = SubmissionState{Phase: SubmitIdle}
	st := c.state
	c.mu.Unlock()

	c.notify(st)
	return nil
}

// State returns the current state.
func (c *SubmitController) State() SubmissionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Writes returns how many writes have been issued.
func (c *SubmitController) Writes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writes
}

// Resolved is always true: Idle is already a renderable state.
func (c *SubmitController) Resolved() bool {
	return true
}

// Destroy discards the controller. A write still in flight is cancelled and
// its completion ignored.
func (c *SubmitController) Destroy() {
	c.mu.Lock()
	c.destroyed = true
	c.mu.Unlock()
	c.cancel()
}

func (c *SubmitController) subscribe(email string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("async: subscription sink panic: %v", r)
		}
	}()
	return c.sink.Subscribe(c.ctx, email)
}

func (c *SubmitController) complete(draft string, err error) {
	next := SubmissionState{Phase: SubmitSubmitted}
	if err != nil {
		next = SubmissionState{Phase: SubmitFailure, Draft: draft, Message: GenericSubmitFailure}
	}

	c.mu.Lock()
	if c.destroyed || c.state.Phase != SubmitSubmitting {
		c.mu.Unlock()
		return
	}
	c.state = next
	c.mu.Unlock()

	c.notify(next)
}

func (c *SubmitController) notify(st SubmissionState) {
	if c.observer != nil {
		c.observer(st)
	}
}

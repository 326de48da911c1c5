package async

import "context"

// Option configures a controller.
type Option func(*options)

type options struct {
	scheduler Scheduler
	ctx       context.Context
	policy    Policy
	onFetch   func(FetchState)
	onSubmit  func(SubmissionState)
}

func defaultOptions() options {
	return options{
		scheduler: GoScheduler{},
		ctx:       context.Background(),
		policy:    ValidateEmail,
	}
}

func buildOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithScheduler sets where remote calls run. Defaults to GoScheduler.
func WithScheduler(s Scheduler) Option {
	return func(o *options) {
		if s != nil {
			o.scheduler = s
		}
	}
}

// WithContext sets the parent context for remote calls. Destroy cancels the
// controller's derived context.
func WithContext(ctx context.Context) Option {
	return func(o *options) {
		if ctx != nil {
			o.ctx = ctx
		}
	}
}

// WithPolicy replaces the validation policy used by SubmitController.
func WithPolicy(p Policy) Option {
	return func(o *options) {
		if p != nil {
			o.policy = p
		}
	}
}

// WithFetchObserver registers a function called after every FetchController
// transition, outside the controller's lock.
func WithFetchObserver(fn func(FetchState)) Option {
	return func(o *options) {
		o.onFetch = fn
	}
}

// WithSubmitObserver registers a function called after every
// SubmitController transition, outside the controller's lock.
func WithSubmitObserver(fn func(SubmissionState)) Option {
	return func(o *options) {
		o.onSubmit = fn
	}
}

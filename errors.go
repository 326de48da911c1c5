package hxsite

import "errors"

// Sentinel errors for component requests.
var (
	ErrNotFound        = errors.New("hxsite: resource not found")
	ErrInvalidProps    = errors.New("hxsite: invalid props")
	ErrHydrationFailed = errors.New("hxsite: hydration failed")
	ErrViewExpired     = errors.New("hxsite: page view expired")
)

// IsNotFound checks if err is a not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsExpired checks if err reports a page view that no longer exists.
func IsExpired(err error) bool {
	return errors.Is(err, ErrViewExpired)
}

// IsBadProps checks if err came from props that failed to decode or verify.
func IsBadProps(err error) bool {
	return errors.Is(err, ErrInvalidProps)
}

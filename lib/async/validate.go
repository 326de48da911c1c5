package async

import (
	"errors"
	"strings"
)

// Validation reasons reported by ValidateEmail.
const (
	ReasonMissing = "missing value"
	ReasonFormat  = "invalid format"
)

// Policy validates a draft value. A nil return means the value is valid.
type Policy func(input string) error

// ValidationError reports why an input was rejected.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// ValidateEmail is the newsletter policy: the trimmed input must be non-empty
// and must contain "@". The first failing rule wins.
func ValidateEmail(input string) error {
	if strings.TrimSpace(input) == "" {
		return &ValidationError{Reason: ReasonMissing}
	}
	if !strings.Contains(input, "@") {
		return &ValidationError{Reason: ReasonFormat}
	}
	return nil
}

// ReasonOf returns the reason carried by a ValidationError, or the error text
// for any other error. It returns "" for nil.
func ReasonOf(err error) string {
	if err == nil {
		return ""
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Reason
	}
	return err.Error()
}

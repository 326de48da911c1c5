package async

import "errors"

// Sentinel errors for controller and composition operations.
var (
	ErrInvalidTransition = errors.New("async: operation not allowed in current state")
	ErrUnknownSection    = errors.New("async: unknown section")
	ErrCompositionClosed = errors.New("async: composition destroyed")
	ErrInvalidQuery      = errors.New("async: invalid query")
)

// ProviderError carries a message from a remote collaborator that is safe to
// show to the user as-is.
type ProviderError struct {
	Message string
}

func (e *ProviderError) Error() string {
	return e.Message
}

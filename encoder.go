package hxsite

import "github.com/pthm/hxsite/lib/encoding"

// Encoder is an alias for encoding.Encoder for convenience.
type Encoder = encoding.Encoder

// NewEncoder creates an encoder from a secret of at least
// encoding.MinKeyLen bytes.
func NewEncoder(secret []byte) (*Encoder, error) {
	return encoding.NewEncoder(secret)
}

package signing

import "errors"

var (
	// ErrMalformedAddress is returned for address text that is not 20 bytes of hex.
	ErrMalformedAddress = errors.New("malformed address")
	// ErrMalformedSignature is returned when a signature cannot be split into r, s and v.
	ErrMalformedSignature = errors.New("malformed signature")
	// ErrMissingCredential is returned when no private key is available for signing.
	ErrMissingCredential = errors.New("missing signing credential")
)

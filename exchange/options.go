package exchange

import (
	"time"

	"github.com/rs/zerolog"
)

// Option is a functional option for New
type Option func(*Exchange)

// WithTransport replaces the default REST transport, e.g. with a
// websocket manager.
func WithTransport(t Transport) Option {
	return func(e *Exchange) {
		e.transport = t
	}
}

// WithLogger sets the logger submissions are reported to
func WithLogger(l zerolog.Logger) Option {
	return func(e *Exchange) {
		e.log = l
	}
}

// WithClock sets the time source nonces are derived from
func WithClock(now func() time.Time) Option {
	return func(e *Exchange) {
		e.now = now
	}
}

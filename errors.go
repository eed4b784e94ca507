package uvcstream

import "errors"

var (
	// ErrNegotiationFailed wraps any failure between claiming the streaming
	// interface and selecting the alternate setting. Negotiation is not
	// retried: the device stays in whatever state the failing step left it.
	ErrNegotiationFailed = errors.New("stream negotiation failed")

	// ErrSessionClosed is returned by operations on a session after Close.
	ErrSessionClosed = errors.New("session closed")
)

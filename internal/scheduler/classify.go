package scheduler

import (
	"context"
	"errors"
	"net"
)

// FallbackKind labels failures whose kind cannot be determined.
const FallbackKind = "?"

// Error kinds reported to the frontier for classifiable failures.
const (
	KindCanceled = "Canceled"
	KindTimeout  = "Timeout"
	KindDNS      = "DNSError"
)

// Error tags a failure with an explicit kind for frontier reporting.
// Downloaders wrap transport failures in it when they know the kind.
type Error struct {
	Kind string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind
	}
	return e.Kind + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ErrorKind maps any failure to a stable short label. Classification is
// total: failures it cannot place map to FallbackKind rather than
// propagating an error of their own.
func ErrorKind(err error) string {
	if err == nil {
		return FallbackKind
	}
	var tagged *Error
	if errors.As(err, &tagged) && tagged.Kind != "" {
		return tagged.Kind
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return KindDNS
	}
	if errors.Is(err, context.Canceled) {
		return KindCanceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	return FallbackKind
}

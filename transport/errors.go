package transport

import (
	"errors"
	"fmt"
)

// Sentinel errors, one per failure class. A *Error matches exactly one of
// them through errors.Is.
var (
	ErrConnection = errors.New("agent unreachable")
	ErrStatus     = errors.New("agent returned non-success status")
	ErrDecode     = errors.New("agent response could not be decoded")
)

// Sentinel errors for configuration and the endpoint registry.
var (
	ErrInvalidEndpoint   = errors.New("invalid endpoint")
	ErrEndpointNotFound  = errors.New("endpoint not found")
	ErrEndpointExists    = errors.New("endpoint already registered")
	ErrEmptyEndpointName = errors.New("endpoint name is empty")
)

// Kind classifies a failed round trip.
type Kind int

const (
	// KindConnection covers dial, write, read, timeout, and cancellation failures.
	KindConnection Kind = iota + 1
	// KindStatus is a response with a non-2xx status code.
	KindStatus
	// KindDecode is a 2xx response whose body is not the expected shape.
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindConnection:
		return "connection"
	case KindStatus:
		return "status"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindConnection:
		return ErrConnection
	case KindStatus:
		return ErrStatus
	case KindDecode:
		return ErrDecode
	default:
		return nil
	}
}

// Error is the failure of one Send. The chat controller treats every Kind the
// same way; the detail is kept for logs.
type Error struct {
	Kind       Kind
	Endpoint   string
	StatusCode int    // set for KindStatus
	Body       string // truncated response body, set for KindStatus
	Err        error  // underlying cause, may be nil
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindStatus:
		if e.Body != "" {
			return fmt.Sprintf("%s: %s: status %d: %s", e.Kind.sentinel(), e.Endpoint, e.StatusCode, e.Body)
		}
		return fmt.Sprintf("%s: %s: status %d", e.Kind.sentinel(), e.Endpoint, e.StatusCode)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s: %s: %v", e.Kind.sentinel(), e.Endpoint, e.Err)
		}
		return fmt.Sprintf("%s: %s", e.Kind.sentinel(), e.Endpoint)
	}
}

// Unwrap exposes both the Kind sentinel and the underlying cause, so
// errors.Is(err, ErrConnection) and errors.Is(err, context.DeadlineExceeded)
// both hold for a timed-out request.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if s := e.Kind.sentinel(); s != nil {
		errs = append(errs, s)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// KindOf returns the Kind of a transport failure, or 0 when err is not one.
func KindOf(err error) Kind {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind
	}
	return 0
}

package chat

import "errors"

var (
	// ErrBlankInput rejects a submit whose text is empty after trimming.
	ErrBlankInput = errors.New("input is blank")

	// ErrBusy rejects a submit while a turn is in flight.
	ErrBusy = errors.New("a turn is already in flight")

	// ErrClosed rejects a submit after Close.
	ErrClosed = errors.New("controller is closed")

	// ErrTransportPanic reports a transport client that panicked during Send.
	ErrTransportPanic = errors.New("transport panicked")

	// ErrInvalidConfig reports an unusable configuration value.
	ErrInvalidConfig = errors.New("invalid configuration")
)

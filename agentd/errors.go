package agentd

import "errors"

var (
	// ErrResponder wraps failures of the reply generator.
	ErrResponder = errors.New("responder failed")

	// ErrHistory wraps failures of the conversation history backend.
	ErrHistory = errors.New("history store failed")

	// ErrInvalidConfig reports an unusable configuration value.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Package response decodes agent service reply bodies.
package response

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMissingReply is returned by ParseAsk when the body is valid JSON but
// carries no string reply field.
var ErrMissingReply = errors.New("response has no reply field")

// AskResponse is the agent service's answer to one turn. Error is set by the
// service when it produced a fallback reply after an internal failure.
type AskResponse struct {
	Reply string `json:"reply"`
	Error string `json:"error,omitempty"`
}

// ParseAsk parses an ask response from JSON bytes. The reply field must be
// present and must be a string; it may be empty.
func ParseAsk(body []byte) (*AskResponse, error) {
	var raw struct {
		Reply *string `json:"reply"`
		Error string  `json:"error,omitempty"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse ask response: %w", err)
	}
	if raw.Reply == nil {
		return nil, ErrMissingReply
	}
	return &AskResponse{Reply: *raw.Reply, Error: raw.Error}, nil
}

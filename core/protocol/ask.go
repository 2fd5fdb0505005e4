package protocol

// DefaultSessionID is the session assumed by the agent service when a request
// omits session_id.
const DefaultSessionID = "default"

// AskRequest is the body of one turn sent to the agent service.
//
// Example:
//
//	{"message": "Where is my order?", "session_id": "0190b6c2-..."}
type AskRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

// Session returns the request's session id, falling back to DefaultSessionID.
func (r AskRequest) Session() string {
	if r.SessionID == "" {
		return DefaultSessionID
	}
	return r.SessionID
}

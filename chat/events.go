package chat

import "github.com/tailored-agentic-units/supportchat/observability"

// Controller event types.
const (
	EventTurnStart      observability.EventType = "chat.turn.start"
	EventTurnComplete   observability.EventType = "chat.turn.complete"
	EventTurnError      observability.EventType = "chat.turn.error"
	EventSubmitRejected observability.EventType = "chat.submit.rejected"
	EventHookPanic      observability.EventType = "chat.hook.panic"
)

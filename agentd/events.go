package agentd

import "github.com/tailored-agentic-units/supportchat/observability"

// Service event types.
const (
	EventRequest      observability.EventType = "agentd.request"
	EventAskReply     observability.EventType = "agentd.ask.reply"
	EventAskFallback  observability.EventType = "agentd.ask.fallback"
	EventHistoryError observability.EventType = "agentd.history.error"
	EventOrderTracked observability.EventType = "agentd.order.tracked"
)

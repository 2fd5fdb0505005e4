package agentd

import (
	"context"
	"fmt"
	"strings"
)

// Prompt is everything a Responder may use to answer one message.
type Prompt struct {
	SessionID string
	Message   string
	Order     *Order // the session's tracked order, if it is in the catalog
	OrderID   string // the session's tracked order id, known or not
	Context   string // knowledge, order summary, and recent exchanges
	Text      string // the full instruction prompt for a language model
}

// Responder produces the agent's reply to a Prompt.
type Responder interface {
	Respond(ctx context.Context, p Prompt) (string, error)
}

// BuildContext assembles the prompt context: the store knowledge, the
// tracked order when the catalog knows it, and the given exchanges.
func BuildContext(knowledge string, order *Order, history []Exchange) string {
	parts := []string{knowledge}

	if order != nil {
		parts = append(parts, order.Summary())
	}

	if len(history) > 0 {
		parts = append(parts, "Recent Messages:")
		for _, ex := range history {
			parts = append(parts, "Customer: "+ex.User)
			parts = append(parts, "Assistant: "+ex.Reply)
		}
	}

	return strings.Join(parts, "\n\n")
}

// BuildPrompt renders the instruction prompt for a language model.
func BuildPrompt(assistant, context, message string) string {
	return fmt.Sprintf(`ROLE: You are %[1]s, the AI assistant for %[1]s's Shopping Store. Your personality:
- Friendly and approachable
- Knowledgeable about all store products and policies
- Professional but warm tone

CONTEXT:
%[2]s

CUSTOMER MESSAGE: %[3]s

INSTRUCTIONS:
1. First check if this relates to an existing order
2. For order questions, verify details before responding
3. Answer general questions using the store knowledge
4. Keep responses concise but helpful (1-2 paragraphs max)
5. End with a relevant follow-up question when appropriate
6. Manage delays in order processing with empathy
`, assistant, context, message)
}

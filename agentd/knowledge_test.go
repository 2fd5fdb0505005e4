package agentd_test

import (
	"context"
	"strings"
	"testing"

	"github.com/tailored-agentic-units/supportchat/agentd"
)

func TestDetectOrderID(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{text: "Where is ORD123?", want: "ORD123"},
		{text: "order ord456 please", want: "ORD456"},
		{text: "ORD12 and ORD34", want: "ORD12"},
		{text: "my order number is 123", want: ""},
		{text: "ORD", want: ""},
		{text: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := agentd.DetectOrderID(tt.text); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCatalog_Lookup(t *testing.T) {
	c := agentd.DefaultCatalog()

	o, ok := c.Lookup("ord123")
	if !ok || o.Status != "Shipped" || o.Total != "$89.98" {
		t.Errorf("got %+v, %v", o, ok)
	}
	if _, ok := c.Lookup("ORD999"); ok {
		t.Error("unknown order found")
	}
	if _, ok := c.Lookup(""); ok {
		t.Error("empty id found")
	}
}

func TestBuildContext(t *testing.T) {
	order, _ := agentd.DefaultCatalog().Lookup("ORD456")

	tests := []struct {
		name    string
		order   *agentd.Order
		history []agentd.Exchange
		want    string
	}{
		{
			name: "knowledge only",
			want: "K",
		},
		{
			name:  "with order",
			order: &order,
			want:  "K\n\nCurrent Order: ORD456\nStatus: Processing\nItems: Organic Face Cream, Bamboo Hairbrush\nTotal: $42.50",
		},
		{
			name:    "with history",
			history: []agentd.Exchange{{User: "hi", Reply: "hello"}},
			want:    "K\n\nRecent Messages:\n\nCustomer: hi\n\nAssistant: hello",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := agentd.BuildContext("K", tt.order, tt.history); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	got := agentd.BuildPrompt("Ayesha", "CTX", "where is my order?")

	for _, want := range []string{
		"ROLE: You are Ayesha, the AI assistant for Ayesha's Shopping Store.",
		"CONTEXT:\nCTX\n",
		"CUSTOMER MESSAGE: where is my order?",
		"INSTRUCTIONS:",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestCatalogResponder(t *testing.T) {
	order, _ := agentd.DefaultCatalog().Lookup("ORD123")
	r := agentd.CatalogResponder{Assistant: "Ayesha"}

	tests := []struct {
		name   string
		prompt agentd.Prompt
		want   string
	}{
		{name: "order status", prompt: agentd.Prompt{Message: "where is my order?", Order: &order, OrderID: "ORD123"}, want: "Your order ORD123 is shipped"},
		{name: "unknown order", prompt: agentd.Prompt{Message: "ORD999?", OrderID: "ORD999"}, want: "couldn't find order ORD999"},
		{name: "order without number", prompt: agentd.Prompt{Message: "check my order"}, want: "share your order number"},
		{name: "shipping", prompt: agentd.Prompt{Message: "How long does shipping take?"}, want: "Shipping is free on orders over $50"},
		{name: "returns", prompt: agentd.Prompt{Message: "can I get a refund"}, want: "30 days"},
		{name: "promotions", prompt: agentd.Prompt{Message: "any discount today?"}, want: "Summer Sale"},
		{name: "greeting", prompt: agentd.Prompt{Message: "hello"}, want: "Hi, I'm Ayesha!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Respond(context.Background(), tt.prompt)
			if err != nil {
				t.Fatalf("Respond failed: %v", err)
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("got %q, want it to contain %q", got, tt.want)
			}
		})
	}
}

func TestCatalogResponder_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := (agentd.CatalogResponder{}).Respond(ctx, agentd.Prompt{Message: "hi"}); err == nil {
		t.Error("expected error for cancelled context")
	}
}

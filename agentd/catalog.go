package agentd

import (
	"context"
	"fmt"
	"strings"
)

// CatalogResponder answers from the order catalog and store policies
// without a language model.
type CatalogResponder struct {
	Assistant string
}

type topic struct {
	keywords []string
	reply    string
}

var topics = []topic{
	{
		keywords: []string{"ship", "delivery", "deliver"},
		reply:    "Shipping is free on orders over $50 and usually takes 3-5 business days. Is there an order you'd like me to check?",
	},
	{
		keywords: []string{"return", "refund", "exchange"},
		reply:    "You can return items within 30 days in their original packaging. Would you like help starting a return?",
	},
	{
		keywords: []string{"sale", "promo", "discount", "coupon", "deal"},
		reply:    "Right now we have a Summer Sale with 20% off all dresses, and new customers get 15% off their first order. Can I help you find something?",
	},
	{
		keywords: []string{"contact", "email", "phone", "call", "human"},
		reply:    "You can reach our team at support@ayeshastore.com or (555) 123-4567. Is there anything I can help with in the meantime?",
	},
	{
		keywords: []string{"dress", "jewel", "earring", "beauty", "decor", "product", "sell"},
		reply:    "We carry fashion apparel for women, men, and kids, handmade jewelry and accessories, organic beauty products, and home decor. What are you shopping for today?",
	},
}

func (r CatalogResponder) Respond(ctx context.Context, p Prompt) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	text := strings.ToLower(p.Message)
	mentionsOrder := DetectOrderID(p.Message) != "" || strings.Contains(text, "order")

	if mentionsOrder && p.Order != nil {
		o := p.Order
		return fmt.Sprintf("Your order %s is %s (delivery: %s). It includes %s, for a total of %s. Is there anything else I can help you with?",
			o.ID, strings.ToLower(o.Status), o.Delivery, strings.Join(o.Items, " and "), o.Total), nil
	}
	if mentionsOrder && p.OrderID != "" {
		return fmt.Sprintf("I couldn't find order %s. Could you double-check the order number? It should look like ORD123.", p.OrderID), nil
	}

	for _, t := range topics {
		for _, kw := range t.keywords {
			if strings.Contains(text, kw) {
				return t.reply, nil
			}
		}
	}

	if mentionsOrder {
		return "I'd be happy to check on your order. Could you share your order number? It looks like ORD123.", nil
	}

	name := r.Assistant
	if name == "" {
		name = "your shopping assistant"
	}
	return fmt.Sprintf("Hi, I'm %s! I can help with orders, products, shipping, returns, and current promotions. What can I do for you?", name), nil
}

package agentd

import (
	"fmt"
	"regexp"
	"strings"
)

// StoreKnowledge is the store description given to the responder with every
// prompt.
const StoreKnowledge = `## About Ayesha's Shopping Store
We're a premium online retailer specializing in:
- Fashion apparel (women's, men's, kids)
- Handmade jewelry and accessories
- Organic beauty products
- Home decor items

## Policies
- Shipping: Free on orders over $50 (3-5 business days)
- Returns: 30 days with original packaging
- Contact: support@ayeshastore.com or (555) 123-4567

## Current Promotions
1. Summer Sale - 20% off all dresses
2. New customer discount - 15% off first order`

// Order is one entry of the order catalog.
type Order struct {
	ID       string   `json:"id"`
	Status   string   `json:"status"`
	Delivery string   `json:"delivery"`
	Items    []string `json:"items"`
	Total    string   `json:"total"`
}

// Summary renders the order the way it is placed in the prompt context.
func (o Order) Summary() string {
	return fmt.Sprintf("Current Order: %s\nStatus: %s\nItems: %s\nTotal: %s",
		o.ID, o.Status, strings.Join(o.Items, ", "), o.Total)
}

// Catalog maps order ids to orders.
type Catalog map[string]Order

// DefaultCatalog returns the demo orders.
func DefaultCatalog() Catalog {
	return Catalog{
		"ORD123": {
			ID:       "ORD123",
			Status:   "Shipped",
			Delivery: "June 20, 2025",
			Items:    []string{"Silk Maxi Dress (Size M)", "Gold Hoop Earrings"},
			Total:    "$89.98",
		},
		"ORD456": {
			ID:       "ORD456",
			Status:   "Processing",
			Delivery: "Est. June 25, 2025",
			Items:    []string{"Organic Face Cream", "Bamboo Hairbrush"},
			Total:    "$42.50",
		},
	}
}

// Lookup returns the order with the given id.
func (c Catalog) Lookup(id string) (Order, bool) {
	o, ok := c[strings.ToUpper(id)]
	return o, ok
}

var orderPattern = regexp.MustCompile(`ORD\d+`)

// DetectOrderID returns the first order number in text, matched
// case-insensitively and returned upper-cased, or "" when there is none.
func DetectOrderID(text string) string {
	return orderPattern.FindString(strings.ToUpper(text))
}

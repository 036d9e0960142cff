package cart

import (
	"fmt"
	"sort"
	"strings"
)

// Line is one product+variant+quantity entry in a shopper's selection.
// CompositeID is the line's local primary key, conventionally
// "{productId}-{variant}". ProductID is the producer's best guess at the
// catalog id when the line was added; it may be absent, stale, or malformed,
// which is why checkout runs identity resolution instead of trusting it.
type Line struct {
	CompositeID     string `json:"composite_id"`
	ProductID       string `json:"product_id,omitempty"`
	Name            string `json:"name"`
	SelectedVariant string `json:"selected_variant,omitempty"`
	UnitPriceCents  int    `json:"unit_price_cents"`
	Quantity        int    `json:"quantity"`
}

// Cart holds the in-memory lines for one shopper. It is not safe for
// concurrent use; Store serializes access per owner.
type Cart struct {
	lines map[string]*Line
}

// NewCart returns an empty cart.
func NewCart() *Cart {
	return &Cart{lines: map[string]*Line{}}
}

// CompositeID builds the line key for a product and variant. Lines without
// a variant key on the bare product id.
func CompositeID(productID, variant string) string {
	id := strings.TrimSpace(productID)
	v := strings.TrimSpace(variant)
	if v == "" {
		return id
	}
	return fmt.Sprintf("%s-%s", id, v)
}

// AddInput carries the fields needed to add a product to the cart.
type AddInput struct {
	ProductID      string
	Name           string
	Variant        string
	UnitPriceCents int
	Quantity       int
}

// Add merges the product into the cart. Adding the same product+variant
// twice increments the existing line instead of creating a duplicate.
// Quantities below 1 are treated as 1.
func (c *Cart) Add(input AddInput) *Line {
	qty := input.Quantity
	if qty < 1 {
		qty = 1
	}
	key := CompositeID(input.ProductID, input.Variant)
	if existing, ok := c.lines[key]; ok {
		existing.Quantity += qty
		return existing
	}
	line := &Line{
		CompositeID:     key,
		ProductID:       strings.TrimSpace(input.ProductID),
		Name:            strings.TrimSpace(input.Name),
		SelectedVariant: strings.TrimSpace(input.Variant),
		UnitPriceCents:  input.UnitPriceCents,
		Quantity:        qty,
	}
	c.lines[key] = line
	return line
}

// UpdateQuantity overwrites the line's quantity. A quantity below 1 removes
// the line; the cart never stores a line at quantity 0.
func (c *Cart) UpdateQuantity(compositeID string, quantity int) (removed bool, ok bool) {
	line, found := c.lines[compositeID]
	if !found {
		return false, false
	}
	if quantity < 1 {
		delete(c.lines, compositeID)
		return true, true
	}
	line.Quantity = quantity
	return false, true
}

// Remove deletes the line. Reports whether it existed.
func (c *Cart) Remove(compositeID string) bool {
	if _, found := c.lines[compositeID]; !found {
		return false
	}
	delete(c.lines, compositeID)
	return true
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.lines = map[string]*Line{}
}

// Lines returns the cart contents ordered by composite id for stable output.
func (c *Cart) Lines() []Line {
	out := make([]Line, 0, len(c.lines))
	for _, line := range c.lines {
		out = append(out, *line)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CompositeID < out[j].CompositeID })
	return out
}

// Get returns a copy of the line with the given composite id.
func (c *Cart) Get(compositeID string) (Line, bool) {
	line, found := c.lines[compositeID]
	if !found {
		return Line{}, false
	}
	return *line, true
}

// TotalCents is the sum of price times quantity across all lines.
func (c *Cart) TotalCents() int {
	total := 0
	for _, line := range c.lines {
		total += line.UnitPriceCents * line.Quantity
	}
	return total
}

// ItemCount is the sum of quantities across all lines.
func (c *Cart) ItemCount() int {
	count := 0
	for _, line := range c.lines {
		count += line.Quantity
	}
	return count
}

// Package cart folds a list of checkout lines into aggregated line items.
// Lines are keyed by product id plus the canonically-serialized variant
// selection, so the same product in two different variants stays two lines.
package cart

import (
	"encoding/json"
	"sort"
)

// Line is one aggregated cart entry.
type Line struct {
	ProductID int64
	Variant   string
	Quantity  int
	UnitPrice float64
}

// Cart maps composite keys to line items, preserving insertion order.
type Cart struct {
	lines map[string]*Line
	order []string
}

// New creates an empty cart.
func New() *Cart {
	return &Cart{lines: make(map[string]*Line)}
}

// VariantKey canonicalizes a variant selection so that the same choices
// serialize identically regardless of map ordering on the client.
func VariantKey(selections map[string]string) string {
	if len(selections) == 0 {
		return ""
	}
	keys := make([]string, 0, len(selections))
	for k := range selections {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ordered := make([][2]string, 0, len(keys))
	for _, k := range keys {
		ordered = append(ordered, [2]string{k, selections[k]})
	}
	b, _ := json.Marshal(ordered)
	return string(b)
}

func key(productID int64, variant string) string {
	b, _ := json.Marshal([2]interface{}{productID, variant})
	return string(b)
}

// Add merges quantity into the line for (productID, variant), creating it if
// absent. A resulting quantity below 1 removes the line entirely.
func (c *Cart) Add(productID int64, variant string, quantity int, unitPrice float64) {
	k := key(productID, variant)
	line, ok := c.lines[k]
	if !ok {
		if quantity < 1 {
			return
		}
		c.lines[k] = &Line{ProductID: productID, Variant: variant, Quantity: quantity, UnitPrice: unitPrice}
		c.order = append(c.order, k)
		return
	}

	line.Quantity += quantity
	if line.Quantity < 1 {
		delete(c.lines, k)
		for i, existing := range c.order {
			if existing == k {
				c.order = append(c.order[:i], c.order[i+1:]...)
				break
			}
		}
	}
}

// Lines returns the aggregated lines in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, 0, len(c.order))
	for _, k := range c.order {
		out = append(out, *c.lines[k])
	}
	return out
}

// Subtotal is the derived sum of price times quantity over all lines.
func (c *Cart) Subtotal() float64 {
	var total float64
	for _, l := range c.lines {
		total += l.UnitPrice * float64(l.Quantity)
	}
	return total
}

// Count is the derived total quantity over all lines.
func (c *Cart) Count() int {
	var n int
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// Len returns the number of distinct lines.
func (c *Cart) Len() int {
	return len(c.lines)
}

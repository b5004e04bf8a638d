// Package cart holds the selected dishes of one session.
//
// A Cart keeps at most one line per menu entry id and never stores a line
// with quantity below 1. Every mutation goes through upsert, which either
// writes the new quantity or deletes the line, so callers can never observe
// a line at zero. A Cart is not safe for concurrent use; its owner
// (see package session) serializes access.
package cart

import (
	"southern-night/internal/models"
)

// MaxQuantity caps the quantity of a single line. Adds and adjustments
// past it saturate.
const MaxQuantity = 999

type Cart struct {
	lines []models.CartLine
	index map[string]int // entry id -> position in lines
}

// New returns an empty cart
func New() *Cart {
	return &Cart{index: make(map[string]int)}
}

// Add puts one more unit of entry into the cart and returns the resulting quantity
func (c *Cart) Add(entry models.MenuEntry) int {
	q := 1
	if i, ok := c.index[entry.ID]; ok {
		q = nextQuantity(c.lines[i].Quantity, 1)
	}
	c.upsert(entry, q)
	return q
}

// Remove deletes the line for id. Unknown ids are ignored.
func (c *Cart) Remove(id string) {
	if i, ok := c.index[id]; ok {
		c.upsert(c.lines[i].MenuEntry, 0)
	}
}

// Adjust changes the quantity of the line for id by delta. A result of zero
// or less removes the line; a result above MaxQuantity is capped. Unknown
// ids are ignored. It returns the new quantity and whether a line for id
// existed.
func (c *Cart) Adjust(id string, delta int) (int, bool) {
	i, ok := c.index[id]
	if !ok {
		return 0, false
	}
	q := nextQuantity(c.lines[i].Quantity, delta)
	c.upsert(c.lines[i].MenuEntry, q)
	return q, true
}

// nextQuantity returns current+delta clamped to [0, MaxQuantity] without
// overflowing. current is always within that range.
func nextQuantity(current, delta int) int {
	if delta > MaxQuantity-current {
		return MaxQuantity
	}
	if q := current + delta; q > 0 {
		return q
	}
	return 0
}

// upsert sets the quantity of entry's line, inserting it at the end when
// missing and deleting it when quantity <= 0.
func (c *Cart) upsert(entry models.MenuEntry, quantity int) {
	i, ok := c.index[entry.ID]
	switch {
	case quantity <= 0 && ok:
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
		delete(c.index, entry.ID)
		for j := i; j < len(c.lines); j++ {
			c.index[c.lines[j].ID] = j
		}
	case quantity <= 0:
	case ok:
		c.lines[i].Quantity = quantity
	default:
		c.index[entry.ID] = len(c.lines)
		c.lines = append(c.lines, models.CartLine{MenuEntry: entry, Quantity: quantity})
	}
}

// Total returns the sum of price times quantity over all lines
func (c *Cart) Total() int64 {
	var total int64
	for _, l := range c.lines {
		total += l.Subtotal()
	}
	return total
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// Len returns the number of distinct lines
func (c *Cart) Len() int {
	return len(c.lines)
}

// Quantity returns the quantity for id, or 0 if there is no such line
func (c *Cart) Quantity(id string) int {
	if i, ok := c.index[id]; ok {
		return c.lines[i].Quantity
	}
	return 0
}

// Lines returns a copy of the lines in insertion order
func (c *Cart) Lines() []models.CartLine {
	out := make([]models.CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

// Clear removes every line
func (c *Cart) Clear() {
	c.lines = nil
	c.index = make(map[string]int)
}

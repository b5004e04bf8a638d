package catalog

import (
	"errors"
	"fmt"

	"southern-night/internal/models"
)

// ErrEntryNotFound is returned by Lookup for unknown ids
var ErrEntryNotFound = errors.New("menu entry not found")

// Catalog is the read-only menu. It is built once and never mutated, so it
// can be shared between sessions without locking.
type Catalog struct {
	entries []models.MenuEntry
	byID    map[string]int
}

// Section is one category of the menu with its entries
type Section struct {
	Category models.Category    `json:"category"`
	Entries  []models.MenuEntry `json:"entries"`
}

// New builds a catalog from entries, rejecting duplicates and invalid records
func New(entries []models.MenuEntry) (*Catalog, error) {
	c := &Catalog{
		entries: make([]models.MenuEntry, 0, len(entries)),
		byID:    make(map[string]int, len(entries)),
	}
	for i, e := range entries {
		if err := validateEntry(e); err != nil {
			return nil, fmt.Errorf("entries[%d]: %w", i, err)
		}
		if _, dup := c.byID[e.ID]; dup {
			return nil, fmt.Errorf("entries[%d]: duplicate id %q", i, e.ID)
		}
		c.byID[e.ID] = len(c.entries)
		c.entries = append(c.entries, e)
	}
	return c, nil
}

func validateEntry(e models.MenuEntry) error {
	if e.ID == "" {
		return fmt.Errorf("id is required")
	}
	if e.Name == "" {
		return fmt.Errorf("entry %s: name is required", e.ID)
	}
	if e.Price <= 0 {
		return fmt.Errorf("entry %s: price must be positive", e.ID)
	}
	if !e.Category.Valid() {
		return fmt.Errorf("entry %s: unknown category %q", e.ID, e.Category)
	}
	return nil
}

// Lookup returns the entry with the given id
func (c *Catalog) Lookup(id string) (models.MenuEntry, error) {
	i, ok := c.byID[id]
	if !ok {
		return models.MenuEntry{}, fmt.Errorf("%w: %s", ErrEntryNotFound, id)
	}
	return c.entries[i], nil
}

// All returns every entry in load order
func (c *Catalog) All() []models.MenuEntry {
	out := make([]models.MenuEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

// ByCategory returns the entries of one category in load order
func (c *Catalog) ByCategory(category models.Category) []models.MenuEntry {
	var out []models.MenuEntry
	for _, e := range c.entries {
		if e.Category == category {
			out = append(out, e)
		}
	}
	return out
}

// Sections groups the menu by category in display order, skipping empty ones
func (c *Catalog) Sections() []Section {
	var out []Section
	for _, cat := range models.Categories {
		if entries := c.ByCategory(cat); len(entries) > 0 {
			out = append(out, Section{Category: cat, Entries: entries})
		}
	}
	return out
}

// Len returns the number of entries
func (c *Catalog) Len() int {
	return len(c.entries)
}

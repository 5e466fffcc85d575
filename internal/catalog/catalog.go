package catalog

import (
	"slices"

	"github.com/rs/zerolog/log"
)

// Catalog is an ordered, read-only set of items indexed by id.
type Catalog struct {
	items  []Item
	byID   map[string]int
	counts map[Category]int
}

// New builds a catalog from items that are already in display order.
// On an id collision the first item wins.
func New(items []Item) *Catalog {
	c := &Catalog{
		items:  make([]Item, 0, len(items)),
		byID:   make(map[string]int, len(items)),
		counts: make(map[Category]int),
	}
	for _, item := range items {
		if _, dup := c.byID[item.ID]; dup {
			log.Warn().Str("id", item.ID).Msg("Duplicate catalog id; keeping first")
			continue
		}
		c.byID[item.ID] = len(c.items)
		c.items = append(c.items, item)
		c.counts[item.Category]++
	}
	return c
}

// Items returns a copy of the catalog in display order.
func (c *Catalog) Items() []Item {
	if c == nil {
		return nil
	}
	return slices.Clone(c.items)
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.items)
}

// Lookup returns the item with the given id.
func (c *Catalog) Lookup(id string) (Item, bool) {
	if c == nil {
		return Item{}, false
	}
	i, ok := c.byID[id]
	if !ok {
		return Item{}, false
	}
	return c.items[i], true
}

// Counts returns the number of items per category.
func (c *Catalog) Counts() map[Category]int {
	out := make(map[Category]int)
	if c == nil {
		return out
	}
	for k, v := range c.counts {
		out[k] = v
	}
	return out
}

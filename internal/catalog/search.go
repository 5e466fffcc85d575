package catalog

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// minFuzzyTerm is the shortest term that falls back to fuzzy matching.
const minFuzzyTerm = 3

// Filter returns the items whose name or category contains term, ignoring
// case. An empty term returns the whole catalog. When nothing contains the
// term, names within a small edit distance are returned instead, closest first.
func (c *Catalog) Filter(term string) []Item {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return c.Items()
	}
	if c == nil {
		return nil
	}

	var out []Item
	for _, item := range c.items {
		if strings.Contains(strings.ToLower(item.Name), term) ||
			strings.Contains(strings.ToLower(string(item.Category)), term) {
			out = append(out, item)
		}
	}
	if len(out) > 0 || len(term) < minFuzzyTerm {
		return out
	}
	return c.fuzzy(term)
}

type fuzzyHit struct {
	item Item
	dist int
}

func (c *Catalog) fuzzy(term string) []Item {
	limit := levenshteinLimit(len(term))
	var hits []fuzzyHit
	for _, item := range c.items {
		best := -1
		name := strings.ToLower(item.Name)
		for _, word := range append(strings.Fields(name), name) {
			d := levenshtein.ComputeDistance(term, word)
			if best < 0 || d < best {
				best = d
			}
		}
		if best >= 0 && best <= limit {
			hits = append(hits, fuzzyHit{item: item, dist: best})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].dist < hits[j].dist })

	out := make([]Item, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.item)
	}
	return out
}

func levenshteinLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}

package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/sync/errgroup"
)

// Loader builds a Catalog from a Source, one fetch per category.
type Loader struct {
	source     Source
	categories []Category
	schema     *jsonschema.Schema
}

// NewLoader creates a loader for the given categories. An empty list loads
// every category.
func NewLoader(source Source, categories []Category) (*Loader, error) {
	schema, err := compileRecordSchema()
	if err != nil {
		return nil, err
	}
	if len(categories) == 0 {
		categories = AllCategories
	}
	return &Loader{
		source:     source,
		categories: append([]Category(nil), categories...),
		schema:     schema,
	}, nil
}

type categoryResult struct {
	items   []Item
	skipped int
	ok      bool
}

// Load fetches every category in parallel and returns the merged catalog
// sorted by average value, highest first. It never fails: a category that
// cannot be fetched or decoded contributes nothing, and an unexpected panic
// yields an empty catalog.
func (l *Loader) Load(ctx context.Context) (cat *Catalog) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Catalog load aborted; continuing with empty catalog")
			cat = New(nil)
		}
	}()

	results := make([]categoryResult, len(l.categories))

	var g errgroup.Group
	for i, category := range l.categories {
		i, category := i, category
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					log.Error().Interface("panic", r).Str("category", string(category)).Msg("Category load aborted")
					results[i] = categoryResult{}
				}
			}()
			results[i] = l.loadCategory(ctx, category)
			return nil
		})
	}
	_ = g.Wait()

	var all []Item
	loaded, skipped := 0, 0
	for _, res := range results {
		all = append(all, res.items...)
		skipped += res.skipped
		if res.ok && len(res.items) > 0 {
			loaded++
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].ValueAvg > all[j].ValueAvg
	})

	log.Info().
		Int("items", len(all)).
		Int("skipped", skipped).
		Int("categories_loaded", loaded).
		Int("categories_total", len(l.categories)).
		Msg("Catalog loaded")

	return New(all)
}

func (l *Loader) loadCategory(ctx context.Context, category Category) categoryResult {
	data, err := l.source.Fetch(ctx, category)
	if err != nil {
		evt := log.Warn().Err(err).Str("category", string(category))
		var fetchErr *FetchError
		if errors.As(err, &fetchErr) {
			evt = evt.Str("kind", fetchErr.Kind)
		}
		evt.Msg("Failed to load category")
		return categoryResult{}
	}

	records, err := decodeCategory(data)
	if err != nil {
		log.Warn().Err(err).Str("category", string(category)).Msg("Category payload is not a JSON array")
		return categoryResult{}
	}

	res := categoryResult{ok: true, items: make([]Item, 0, len(records))}
	for i, raw := range records {
		item, err := normalizeRecord(l.schema, category, raw)
		if err != nil {
			log.Debug().
				Err(err).
				Str("category", string(category)).
				Int("index", i).
				Msg("Skipping catalog record")
			res.skipped++
			continue
		}
		res.items = append(res.items, item)
	}

	log.Debug().
		Str("category", string(category)).
		Int("items", len(res.items)).
		Int("skipped", res.skipped).
		Msg("Loaded category")
	return res
}

func decodeCategory(data []byte) ([]json.RawMessage, error) {
	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode category: %w", err)
	}
	return records, nil
}

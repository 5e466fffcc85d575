package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// OffCatalogValue is the average assigned to items whose value range is off-catalog.
const OffCatalogValue = 999_999_999

// offCatalogMarker is the literal used by the source data for off-catalog bounds.
const offCatalogMarker = "O/C"

// Category is one of the fixed catalog buckets.
type Category string

const (
	Legendaries        Category = "legendaries"
	ShinyLegendaries   Category = "shinylegendarys"
	Mythics            Category = "mythics"
	ShinyMythics       Category = "shinymythics"
	Transcendents      Category = "transcendents"
	ShinyTranscendents Category = "shinytranscendents"
	Omegas             Category = "omegas"
	ShinyOmegas        Category = "shinyomegas"
	Page               Category = "page"
	ShinyPage          Category = "shinypage"
)

// AllCategories lists every category in load order.
var AllCategories = []Category{
	Legendaries,
	ShinyLegendaries,
	Mythics,
	ShinyMythics,
	Transcendents,
	ShinyTranscendents,
	Omegas,
	ShinyOmegas,
	Page,
	ShinyPage,
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, known := range AllCategories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory converts a string into a Category.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}

// ValueKind tags the state of a Value.
type ValueKind uint8

const (
	ValueUnset ValueKind = iota
	ValueNumeric
	ValueOffCatalog
)

// Value is one bound of an item's trade value range.
type Value struct {
	Kind   ValueKind
	Amount float64
}

// Numeric returns a numeric Value.
func Numeric(amount float64) Value {
	return Value{Kind: ValueNumeric, Amount: amount}
}

// OffCatalog returns the off-catalog Value.
func OffCatalog() Value {
	return Value{Kind: ValueOffCatalog}
}

func (v Value) IsNumeric() bool    { return v.Kind == ValueNumeric }
func (v Value) IsOffCatalog() bool { return v.Kind == ValueOffCatalog }

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case ValueNumeric:
		return json.Marshal(v.Amount)
	case ValueOffCatalog:
		return json.Marshal(offCatalogMarker)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts a non-negative finite number, the off-catalog marker,
// or anything else as unset.
func (v *Value) UnmarshalJSON(data []byte) error {
	*v = Value{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == offCatalogMarker {
			*v = OffCatalog()
		}
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("decode value: %w", err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return fmt.Errorf("value %v out of range", f)
	}
	*v = Numeric(f)
	return nil
}

// Item is a normalised catalog entry. Items are never modified after load.
type Item struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Category Category `json:"category"`
	ValueMin Value    `json:"value_min"`
	ValueMax Value    `json:"value_max"`
	ValueAvg float64  `json:"value_avg"`
	Demand   string   `json:"demand,omitempty"`
	Status   string   `json:"status,omitempty"`
	Image    string   `json:"image,omitempty"`
}

// AverageValue computes the average trade value for a min/max pair. The
// halves are summed so bounds near the float64 limit stay finite.
func AverageValue(min, max Value) float64 {
	switch {
	case min.IsNumeric() && max.IsNumeric():
		return min.Amount/2 + max.Amount/2
	case min.IsOffCatalog() || max.IsOffCatalog():
		return OffCatalogValue
	default:
		return 0
	}
}

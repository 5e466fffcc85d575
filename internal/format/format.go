// Package format renders trade values the way the calculator displays them.
package format

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/LugersVoucherService/balltd/internal/catalog"
)

// Number abbreviates large values with B, M and k suffixes using two
// decimals, dropping a trailing ".00". Values under a thousand are floored.
func Number(v float64) string {
	if math.IsNaN(v) {
		return "0"
	}
	var scaled float64
	var suffix string
	switch {
	case v >= 1_000_000_000:
		scaled, suffix = v/1_000_000_000, "B"
	case v >= 1_000_000:
		scaled, suffix = v/1_000_000, "M"
	case v >= 1_000:
		scaled, suffix = v/1_000, "k"
	default:
		return strconv.FormatFloat(math.Floor(v), 'f', 0, 64)
	}
	return strings.TrimSuffix(strconv.FormatFloat(scaled, 'f', 2, 64), ".00") + suffix
}

// Range renders an item's value bounds.
func Range(item catalog.Item) string {
	switch {
	case item.ValueMin.IsOffCatalog() || item.ValueMax.IsOffCatalog():
		return "O/C"
	case item.ValueMin.IsNumeric() && item.ValueMax.IsNumeric():
		if item.ValueMin.Amount == item.ValueMax.Amount {
			return Number(item.ValueMin.Amount)
		}
		return Number(item.ValueMin.Amount) + " – " + Number(item.ValueMax.Amount)
	default:
		return "0"
	}
}

// Difference renders mine minus theirs with an explicit sign. Differences
// smaller than one gem are shown as zero.
func Difference(diff float64) string {
	if math.IsNaN(diff) || math.Abs(diff) < 1 {
		return "0"
	}
	if diff > 0 {
		return "+" + Number(diff)
	}
	return "-" + Number(-diff)
}

// CategoryName turns a category key into a display label.
func CategoryName(c catalog.Category) string {
	var sb strings.Builder
	for i, r := range string(c) {
		if i > 0 && unicode.IsUpper(r) {
			sb.WriteRune(' ')
		}
		if i == 0 {
			r = unicode.ToUpper(r)
		}
		sb.WriteRune(r)
	}
	return strings.TrimSpace(sb.String())
}

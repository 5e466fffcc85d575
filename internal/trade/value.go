package trade

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency is a non-item asset that can be added to a side.
type Currency string

const (
	Gems  Currency = "gems"
	Coins Currency = "coins"
	Robux Currency = "robux"
)

// Currencies lists every currency kind.
var Currencies = []Currency{Gems, Coins, Robux}

// rates converts one unit of each currency into gem-equivalents.
var rates = map[Currency]decimal.Decimal{
	Gems:  decimal.NewFromInt(1),
	Coins: decimal.RequireFromString("0.01"),
	Robux: decimal.RequireFromString("0.1"),
}

func (c Currency) Valid() bool {
	_, ok := rates[c]
	return ok
}

// ParseCurrency converts a wire name into a Currency.
func ParseCurrency(s string) (Currency, error) {
	c := Currency(strings.ToLower(s))
	if !c.Valid() {
		return "", fmt.Errorf("unknown currency %q", s)
	}
	return c, nil
}

// Rate returns the gem-equivalent of one unit of c.
func Rate(c Currency) float64 {
	return rates[c].InexactFloat64()
}

// RateTable returns every conversion rate.
func RateTable() map[Currency]float64 {
	out := make(map[Currency]float64, len(rates))
	for c, r := range rates {
		out[c] = r.InexactFloat64()
	}
	return out
}

var leadingNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// ParseAbbreviation reads free-text amounts such as "2.5k", "1m" or "3b".
// The leading number is used and any k/m/b suffix multiplies it. Text
// without a leading number parses to 0.
func ParseAbbreviation(raw string) float64 {
	v := strings.ToLower(strings.TrimSpace(raw))
	m := leadingNumber.FindString(v)
	if m == "" {
		return 0
	}
	n, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}

	switch {
	case strings.HasSuffix(v, "b"):
		n *= 1_000_000_000
	case strings.HasSuffix(v, "m"):
		n *= 1_000_000
	case strings.HasSuffix(v, "k"):
		n *= 1_000
	}
	if math.IsInf(n, 0) || math.IsNaN(n) {
		return 0
	}
	return n
}

// SideValue converts a side's items and currencies into gem-equivalents.
// Each selected instance counts once. Non-finite addends are skipped and
// totals beyond float64 range are clamped to math.MaxFloat64.
func SideValue(side *SideState) float64 {
	if side == nil {
		return 0
	}
	total := decimal.Zero
	for _, sel := range side.Items {
		if !finite(sel.Item.ValueAvg) {
			continue
		}
		total = total.Add(decimal.NewFromFloat(sel.Item.ValueAvg))
	}
	for _, c := range Currencies {
		amount := side.Currencies[c]
		if amount == 0 || !finite(amount) {
			continue
		}
		total = total.Add(decimal.NewFromFloat(amount).Mul(rates[c]))
	}
	v := total.InexactFloat64()
	if math.IsInf(v, 1) {
		return math.MaxFloat64
	}
	return v
}

func finite(v float64) bool {
	return !math.IsInf(v, 0) && !math.IsNaN(v)
}

// Difference is mine minus theirs.
func Difference(mine, theirs float64) float64 {
	return mine - theirs
}

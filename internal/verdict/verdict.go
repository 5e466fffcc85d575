// Package verdict classifies a trade from the totals of both sides.
package verdict

import (
	"strings"

	"github.com/LugersVoucherService/balltd/internal/catalog"
)

// Tier is the colour band a verdict is displayed with.
type Tier string

const (
	TierNeutral Tier = "neutral"
	TierSuccess Tier = "success"
	TierWarning Tier = "warning"
	TierDanger  Tier = "danger"
)

const (
	LabelWaiting = "Waiting"
	LabelBigL    = "Big L"
	LabelSmallL  = "Small L"
	LabelBigW    = "Big W"
	LabelSmallW  = "Small W"
	LabelFair    = "Fair"
)

// Verdict is the fairness call for a trade.
type Verdict struct {
	Label   string `json:"label"`
	Tier    Tier   `json:"tier"`
	Subtext string `json:"subtext"`
}

// Ratio divides my total by their total, floored at one.
func Ratio(myTotal, theirTotal float64) float64 {
	return myTotal / max(theirTotal, 1)
}

// Classify maps both totals and the selected items to a verdict. Losing
// bands explain themselves with the counterparty's demand; winning bands
// with the caller's own.
func Classify(myTotal, theirTotal float64, mine, theirs []catalog.Item) Verdict {
	if myTotal == 0 && theirTotal == 0 {
		return Verdict{Label: LabelWaiting, Tier: TierNeutral, Subtext: "Add items to calculate"}
	}

	ratio := Ratio(myTotal, theirTotal)
	switch {
	case ratio > 1.5:
		if label, ok := sideDemand(theirs); ok {
			return Verdict{LabelBigL, TierDanger, "Overpaying (they have " + label + ")"}
		}
		return Verdict{LabelBigL, TierDanger, "Overpaying significantly"}
	case ratio > 1.1:
		if label, ok := sideDemand(theirs); ok {
			return Verdict{LabelSmallL, TierWarning, "Slightly over (" + label + ")"}
		}
		return Verdict{LabelSmallL, TierWarning, "Slightly over"}
	case ratio < 0.5:
		if label, ok := sideDemand(mine); ok {
			return Verdict{LabelBigW, TierSuccess, "Huge win (you get " + label + ")"}
		}
		return Verdict{LabelBigW, TierSuccess, "Huge win"}
	case ratio < 0.9:
		if label, ok := sideDemand(mine); ok {
			return Verdict{LabelSmallW, TierSuccess, "Good deal (" + label + ")"}
		}
		return Verdict{LabelSmallW, TierSuccess, "Good deal"}
	case ratio >= 0.95 && ratio <= 1.05:
		return Verdict{LabelFair, TierNeutral, "Fair trade"}
	case ratio > 1:
		return Verdict{LabelSmallL, TierWarning, "Slightly over"}
	default:
		return Verdict{LabelSmallW, TierSuccess, "Slight win"}
	}
}

func sideDemand(items []catalog.Item) (string, bool) {
	tier, ok := DemandTier(items)
	if !ok {
		return "", false
	}
	return DemandLabel(tier), true
}

// demandLevels is ordered; the first contained word wins when a tag is not
// an exact match.
var demandLevels = []struct {
	word  string
	level int
}{
	{"poor", 1},
	{"low", 2},
	{"below", 3},
	{"normal", 4},
	{"above", 5},
	{"great", 6},
	{"godly", 7},
	{"supreme", 8},
}

const defaultDemandLevel = 4

// TagLevel maps one demand tag to its numeric level.
func TagLevel(tag string) int {
	tag = strings.ToLower(strings.TrimSpace(tag))
	for _, d := range demandLevels {
		if tag == d.word {
			return d.level
		}
	}
	for _, d := range demandLevels {
		if strings.Contains(tag, d.word) {
			return d.level
		}
	}
	return defaultDemandLevel
}

// DemandTier averages the demand levels of items. Items without a tag, or
// tagged unknown, are ignored; ok is false when none remain.
func DemandTier(items []catalog.Item) (tier float64, ok bool) {
	sum, n := 0, 0
	for _, item := range items {
		tag := strings.ToLower(strings.TrimSpace(item.Demand))
		if tag == "" || tag == "unknown" {
			continue
		}
		sum += TagLevel(tag)
		n++
	}
	if n == 0 {
		return 0, false
	}
	return float64(sum) / float64(n), true
}

// DemandLabel describes an average demand tier.
func DemandLabel(tier float64) string {
	switch {
	case tier < 3:
		return "low demand"
	case tier >= 6:
		return "high demand"
	default:
		return "stable demand"
	}
}

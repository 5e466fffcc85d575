package dispatch

import (
	"maps"
	"slices"

	"github.com/LugersVoucherService/balltd/internal/format"
	"github.com/LugersVoucherService/balltd/internal/trade"
	"github.com/LugersVoucherService/balltd/internal/verdict"
)

// SideSnapshot is the rendered view of one side.
type SideSnapshot struct {
	Items      []trade.Selection          `json:"items"`
	Currencies map[trade.Currency]float64 `json:"currencies"`
	Total      float64                    `json:"total"`
	Display    string                     `json:"display"`
}

// Snapshot is what the presentation layer draws after an intent.
type Snapshot struct {
	Sequence          uint64          `json:"sequence"`
	Mine              SideSnapshot    `json:"mine"`
	Theirs            SideSnapshot    `json:"theirs"`
	Difference        float64         `json:"difference"`
	DifferenceDisplay string          `json:"difference_display"`
	Verdict           verdict.Verdict `json:"verdict"`
	SearchTerm        string          `json:"search_term"`
	Results           []string        `json:"results"`
}

// Summarize evaluates st.
func Summarize(st State) Snapshot {
	tr := st.Trade
	if tr == nil {
		tr = trade.NewState()
	}
	mine := summarizeSide(&tr.Mine)
	theirs := summarizeSide(&tr.Theirs)
	diff := trade.Difference(mine.Total, theirs.Total)

	results := make([]string, 0, len(st.Results))
	for _, item := range st.Results {
		results = append(results, item.ID)
	}

	return Snapshot{
		Mine:              mine,
		Theirs:            theirs,
		Difference:        diff,
		DifferenceDisplay: format.Difference(diff),
		Verdict:           verdict.Classify(mine.Total, theirs.Total, tr.Mine.CatalogItems(), tr.Theirs.CatalogItems()),
		SearchTerm:        st.SearchTerm,
		Results:           results,
	}
}

func summarizeSide(side *trade.SideState) SideSnapshot {
	total := trade.SideValue(side)
	items := slices.Clone(side.Items)
	if items == nil {
		items = []trade.Selection{}
	}
	return SideSnapshot{
		Items:      items,
		Currencies: maps.Clone(side.Currencies),
		Total:      total,
		Display:    format.Number(total),
	}
}

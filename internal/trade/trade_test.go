package trade

import (
	"math"
	"testing"

	"github.com/LugersVoucherService/balltd/internal/catalog"
)

func TestParseAbbreviation(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"2.5k", 2500},
		{"1m", 1_000_000},
		{"3b", 3_000_000_000},
		{"abc", 0},
		{"", 0},
		{"  42  ", 42},
		{"1.5M", 1_500_000},
		{".5k", 500},
		{"10gems", 10},
		{"1,000", 1},
		{"1e3", 1000},
		{"-5", -5},
		{"1e999", 0},
	}
	for _, tt := range tests {
		if got := ParseAbbreviation(tt.in); got != tt.want {
			t.Errorf("ParseAbbreviation(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSideValue(t *testing.T) {
	tests := []struct {
		name       string
		currencies map[Currency]string
		items      []float64
		want       float64
	}{
		{"empty", nil, nil, 0},
		{"gems", map[Currency]string{Gems: "10"}, nil, 10},
		{"coins", map[Currency]string{Coins: "100"}, nil, 1},
		{"robux", map[Currency]string{Robux: "10"}, nil, 1},
		{"items and currencies", map[Currency]string{Gems: "1k", Coins: "250"}, []float64{15, 2.5}, 1020},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := NewState()
			for c, raw := range tt.currencies {
				st.SetCurrency(Mine, c, raw)
			}
			for i, v := range tt.items {
				st.AddSelection(Mine, catalog.Item{ID: string(rune('a' + i)), ValueAvg: v})
			}
			if got := SideValue(st.Side(Mine)); got != tt.want {
				t.Errorf("SideValue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSideValueCountsRepeatedSelections(t *testing.T) {
	st := NewState()
	item := catalog.Item{ID: "page-a", ValueAvg: 7}
	st.AddSelection(Theirs, item)
	st.AddSelection(Theirs, item)
	st.AddSelection(Theirs, item)
	if got := SideValue(st.Side(Theirs)); got != 21 {
		t.Errorf("SideValue() = %v, want 21", got)
	}
	if got := SideValue(nil); got != 0 {
		t.Errorf("SideValue(nil) = %v, want 0", got)
	}
}

func TestSideValueStaysFinite(t *testing.T) {
	st := NewState()
	huge := catalog.Item{ID: "omegas-huge", ValueAvg: 1.7e308}
	st.AddSelection(Mine, huge)
	st.AddSelection(Mine, huge)
	st.AddSelection(Mine, catalog.Item{ID: "omegas-broken", ValueAvg: math.Inf(1)})
	st.AddSelection(Mine, catalog.Item{ID: "omegas-nan", ValueAvg: math.NaN()})

	if got := SideValue(st.Side(Mine)); got != math.MaxFloat64 {
		t.Errorf("SideValue() = %v, want math.MaxFloat64", got)
	}

	st.AddSelection(Theirs, catalog.Item{ID: "page-a", ValueAvg: 5})
	st.AddSelection(Theirs, catalog.Item{ID: "omegas-broken", ValueAvg: math.Inf(1)})
	if got := SideValue(st.Side(Theirs)); got != 5 {
		t.Errorf("SideValue() = %v, want 5", got)
	}
}

func TestRemoveSelectionRemovesOnlyThatInstance(t *testing.T) {
	st := NewState()
	item := catalog.Item{ID: "omegas-a", ValueAvg: 10}
	first := st.AddSelection(Mine, item)
	second := st.AddSelection(Mine, item)
	third := st.AddSelection(Mine, item)

	if first == "" || first == second || second == third {
		t.Fatalf("Expected distinct instance ids, got %q %q %q", first, second, third)
	}

	if !st.RemoveSelection(Mine, second) {
		t.Fatal("Expected RemoveSelection to succeed")
	}
	if len(st.Mine.Items) != 2 {
		t.Fatalf("Expected 2 selections, got %d", len(st.Mine.Items))
	}
	if st.Mine.Items[0].InstanceID != first || st.Mine.Items[1].InstanceID != third {
		t.Errorf("Unexpected remaining selections: %+v", st.Mine.Items)
	}
	if st.RemoveSelection(Mine, second) {
		t.Error("Removing the same instance twice should fail")
	}
	if st.RemoveSelection(Theirs, first) {
		t.Error("Removing from the wrong side should fail")
	}
}

func TestSetCurrency(t *testing.T) {
	st := NewState()
	if got := st.SetCurrency(Theirs, Coins, "2.5k"); got != 2500 {
		t.Errorf("SetCurrency = %v, want 2500", got)
	}
	if got := st.SetCurrency(Theirs, Gems, "-30"); got != 0 {
		t.Errorf("Negative amount stored as %v, want 0", got)
	}
	if got := st.SetCurrency(Theirs, Robux, "lots"); got != 0 {
		t.Errorf("Non-numeric amount stored as %v, want 0", got)
	}
	if st.Theirs.Currencies[Coins] != 2500 {
		t.Errorf("Currencies[coins] = %v", st.Theirs.Currencies[Coins])
	}
	if got := st.SetCurrency(Side("nobody"), Gems, "5"); got != 0 {
		t.Errorf("Unknown side should be ignored, got %v", got)
	}
	if got := st.SetCurrency(Mine, Currency("gold"), "5"); got != 0 {
		t.Errorf("Unknown currency should be ignored, got %v", got)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	st := NewState()
	st.AddSelection(Mine, catalog.Item{ID: "a", ValueAvg: 1})
	st.SetCurrency(Mine, Gems, "5")

	cp := st.Clone()
	cp.AddSelection(Mine, catalog.Item{ID: "b", ValueAvg: 2})
	cp.SetCurrency(Mine, Gems, "50")
	cp.RemoveSelection(Mine, st.Mine.Items[0].InstanceID)

	if len(st.Mine.Items) != 1 || st.Mine.Items[0].Item.ID != "a" {
		t.Errorf("Original items changed: %+v", st.Mine.Items)
	}
	if st.Mine.Currencies[Gems] != 5 {
		t.Errorf("Original gems changed: %v", st.Mine.Currencies[Gems])
	}
}

func TestParseSideAndCurrency(t *testing.T) {
	for in, want := range map[string]Side{"mine": Mine, "my": Mine, "theirs": Theirs, "their": Theirs} {
		if got, err := ParseSide(in); err != nil || got != want {
			t.Errorf("ParseSide(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseSide("ours"); err == nil {
		t.Error("Expected error for unknown side")
	}
	if c, err := ParseCurrency("Robux"); err != nil || c != Robux {
		t.Errorf("ParseCurrency(Robux) = %q, %v", c, err)
	}
	if _, err := ParseCurrency("gold"); err == nil {
		t.Error("Expected error for unknown currency")
	}
}

func TestRateTable(t *testing.T) {
	want := map[Currency]float64{Gems: 1, Coins: 0.01, Robux: 0.1}
	got := RateTable()
	for c, r := range want {
		if got[c] != r {
			t.Errorf("rate[%s] = %v, want %v", c, got[c], r)
		}
	}
	if Rate(Coins) != 0.01 {
		t.Errorf("Rate(coins) = %v", Rate(Coins))
	}
}

package format

import (
	"math"
	"testing"

	"github.com/LugersVoucherService/balltd/internal/catalog"
)

func TestNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{999.9, "999"},
		{1000, "1k"},
		{1500, "1.50k"},
		{2_500_000, "2.50M"},
		{3_000_000_000, "3B"},
		{catalog.OffCatalogValue, "1000M"},
		{math.NaN(), "0"},
	}
	for _, tt := range tests {
		if got := Number(tt.in); got != tt.want {
			t.Errorf("Number(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRange(t *testing.T) {
	tests := []struct {
		name string
		item catalog.Item
		want string
	}{
		{"off-catalog", catalog.Item{ValueMin: catalog.OffCatalog(), ValueMax: catalog.Numeric(1)}, "O/C"},
		{"equal", catalog.Item{ValueMin: catalog.Numeric(2000), ValueMax: catalog.Numeric(2000)}, "2k"},
		{"range", catalog.Item{ValueMin: catalog.Numeric(10), ValueMax: catalog.Numeric(1_000_000)}, "10 – 1M"},
		{"unset", catalog.Item{}, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Range(tt.item); got != tt.want {
				t.Errorf("Range() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDifference(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0.5, "0"},
		{-0.99, "0"},
		{250, "+250"},
		{-12_000, "-12k"},
	}
	for _, tt := range tests {
		if got := Difference(tt.in); got != tt.want {
			t.Errorf("Difference(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCategoryName(t *testing.T) {
	if got := CategoryName(catalog.ShinyLegendaries); got != "Shinylegendarys" {
		t.Errorf("CategoryName = %q", got)
	}
	if got := CategoryName(catalog.Category("shinyPage")); got != "Shiny Page" {
		t.Errorf("CategoryName = %q", got)
	}
}

// Package budget summarizes development budget line items into a single
// capital cost.
package budget

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Category groups development costs.
type Category string

const (
	CategoryHard  Category = "hard"
	CategorySoft  Category = "soft"
	CategoryLand  Category = "land"
	CategoryOther Category = "other"
)

// NormalizeCategory maps free-form category names onto the known set.
// Unrecognized names fall into CategoryOther.
func NormalizeCategory(name string) Category {
	switch Category(strings.ToLower(strings.TrimSpace(name))) {
	case CategoryHard:
		return CategoryHard
	case CategorySoft:
		return CategorySoft
	case CategoryLand:
		return CategoryLand
	default:
		return CategoryOther
	}
}

// LineItem is a single development cost with its own contingency.
type LineItem struct {
	Name           string  `json:"name" yaml:"name" mapstructure:"name" validate:"required"`
	Category       string  `json:"category" yaml:"category" mapstructure:"category"`
	Cost           float64 `json:"cost" yaml:"cost" mapstructure:"cost" validate:"gte=0"`
	ContingencyPct float64 `json:"contingencyPct" yaml:"contingencyPct" mapstructure:"contingency_pct" validate:"gte=0,lte=1"`
}

// Summary is the summarized development budget. Category totals exclude
// contingency, which is reported separately.
type Summary struct {
	HardCosts   float64 `json:"hardCosts" yaml:"hardCosts"`
	SoftCosts   float64 `json:"softCosts" yaml:"softCosts"`
	LandCosts   float64 `json:"landCosts" yaml:"landCosts"`
	OtherCosts  float64 `json:"otherCosts" yaml:"otherCosts"`
	BaseCost    float64 `json:"baseCost" yaml:"baseCost"`
	Contingency float64 `json:"contingency" yaml:"contingency"`
	TotalBudget float64 `json:"totalBudget" yaml:"totalBudget"`
	LineItems   int     `json:"lineItems" yaml:"lineItems"`
}

// Summarize totals the line items. Each item contributes
// Cost x (1 + ContingencyPct) to TotalBudget.
func Summarize(items []LineItem) Summary {
	totals := map[Category]decimal.Decimal{}
	base := decimal.Zero
	contingency := decimal.Zero

	for _, item := range items {
		cost := decimal.NewFromFloat(item.Cost)
		category := NormalizeCategory(item.Category)
		totals[category] = totals[category].Add(cost)
		base = base.Add(cost)
		contingency = contingency.Add(cost.Mul(decimal.NewFromFloat(item.ContingencyPct)))
	}

	return Summary{
		HardCosts:   totals[CategoryHard].InexactFloat64(),
		SoftCosts:   totals[CategorySoft].InexactFloat64(),
		LandCosts:   totals[CategoryLand].InexactFloat64(),
		OtherCosts:  totals[CategoryOther].InexactFloat64(),
		BaseCost:    base.InexactFloat64(),
		Contingency: contingency.InexactFloat64(),
		TotalBudget: base.Add(contingency).InexactFloat64(),
		LineItems:   len(items),
	}
}

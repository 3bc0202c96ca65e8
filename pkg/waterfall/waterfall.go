// Package waterfall splits distributable cash between the general partner
// and limited partners through ordered hurdle tiers.
package waterfall

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInvalidTier is returned for a tier whose shares are negative or do not
// sum to one.
var ErrInvalidTier = errors.New("invalid waterfall tier")

// Tier is one step of the waterfall. A tier with a Hurdle only absorbs cash
// until cumulative distributions reach Hurdle x equity; a tier without a
// Hurdle absorbs everything that reaches it.
type Tier struct {
	Name    string   `json:"name" yaml:"name" mapstructure:"name"`
	Hurdle  *float64 `json:"hurdle,omitempty" yaml:"hurdle,omitempty" mapstructure:"hurdle"`
	GPShare float64  `json:"gpShare" yaml:"gpShare" mapstructure:"gp_share" validate:"gte=0,lte=1"`
	LPShare float64  `json:"lpShare" yaml:"lpShare" mapstructure:"lp_share" validate:"gte=0,lte=1"`
}

// TierResult is the cash a tier distributed.
type TierResult struct {
	Name        string  `json:"name" yaml:"name"`
	Distributed float64 `json:"distributed" yaml:"distributed"`
	GP          float64 `json:"gp" yaml:"gp"`
	LP          float64 `json:"lp" yaml:"lp"`
}

// Result is the outcome of running all cash flows through the waterfall.
type Result struct {
	TotalDistributed float64      `json:"totalDistributed" yaml:"totalDistributed"`
	GPTotal          float64      `json:"gpTotal" yaml:"gpTotal"`
	LPTotal          float64      `json:"lpTotal" yaml:"lpTotal"`
	GPPercentage     float64      `json:"gpPercentage" yaml:"gpPercentage"`
	Undistributed    float64      `json:"undistributed" yaml:"undistributed"`
	Tiers            []TierResult `json:"tiers" yaml:"tiers"`
}

var shareTolerance = decimal.New(1, -6)

type tierTotals struct {
	distributed decimal.Decimal
	gp          decimal.Decimal
	lp          decimal.Decimal
}

// Distribute runs each positive cash flow through the tiers in order.
// Negative and zero flows are skipped. Cash left after the last tier is
// reported as Undistributed.
func Distribute(cashFlows []float64, tiers []Tier, totalEquity float64) (Result, error) {
	for i, tier := range tiers {
		if tier.GPShare < 0 || tier.LPShare < 0 {
			return Result{}, fmt.Errorf("%w: tier %d has a negative share", ErrInvalidTier, i+1)
		}
		sum := decimal.NewFromFloat(tier.GPShare).Add(decimal.NewFromFloat(tier.LPShare))
		if sum.Sub(decimal.NewFromInt(1)).Abs().GreaterThan(shareTolerance) {
			return Result{}, fmt.Errorf("%w: tier %d shares sum to %s", ErrInvalidTier, i+1, sum.String())
		}
		if tier.Hurdle != nil && *tier.Hurdle < 0 {
			return Result{}, fmt.Errorf("%w: tier %d has a negative hurdle", ErrInvalidTier, i+1)
		}
	}

	equity := decimal.NewFromFloat(totalEquity)
	totals := make([]tierTotals, len(tiers))
	cumulative := decimal.Zero
	undistributed := decimal.Zero

	for _, cf := range cashFlows {
		remaining := decimal.NewFromFloat(cf)
		if !remaining.IsPositive() {
			continue
		}
		for i, tier := range tiers {
			if !remaining.IsPositive() {
				break
			}
			amount := remaining
			if tier.Hurdle != nil && equity.IsPositive() {
				room := equity.Mul(decimal.NewFromFloat(*tier.Hurdle)).Sub(cumulative)
				if room.IsNegative() {
					room = decimal.Zero
				}
				amount = decimal.Min(remaining, room)
			}
			if amount.IsZero() {
				continue
			}
			totals[i].distributed = totals[i].distributed.Add(amount)
			totals[i].gp = totals[i].gp.Add(amount.Mul(decimal.NewFromFloat(tier.GPShare)))
			totals[i].lp = totals[i].lp.Add(amount.Mul(decimal.NewFromFloat(tier.LPShare)))
			cumulative = cumulative.Add(amount)
			remaining = remaining.Sub(amount)
		}
		undistributed = undistributed.Add(remaining)
	}

	result := Result{Tiers: make([]TierResult, len(tiers))}
	gp, lp := decimal.Zero, decimal.Zero
	for i, tier := range tiers {
		gp = gp.Add(totals[i].gp)
		lp = lp.Add(totals[i].lp)
		result.Tiers[i] = TierResult{
			Name:        tier.Name,
			Distributed: totals[i].distributed.InexactFloat64(),
			GP:          totals[i].gp.InexactFloat64(),
			LP:          totals[i].lp.InexactFloat64(),
		}
	}
	result.TotalDistributed = cumulative.InexactFloat64()
	result.GPTotal = gp.InexactFloat64()
	result.LPTotal = lp.InexactFloat64()
	result.Undistributed = undistributed.InexactFloat64()
	if cumulative.IsPositive() {
		result.GPPercentage = gp.Div(cumulative).InexactFloat64()
	}
	return result, nil
}

package config

import (
	"fmt"
	"math"
	"strings"

	"github.com/iwvelando/proforma/internal/proforma"
	"github.com/iwvelando/proforma/internal/sensitivity"
	"github.com/iwvelando/proforma/pkg/loans"
	"github.com/iwvelando/proforma/pkg/mathutil"
	"github.com/iwvelando/proforma/pkg/waterfall"
)

// DebtSizingConfig selects the lender constraints used to size the
// acquisition loan.
type DebtSizingConfig struct {
	LoanType string `yaml:"loanType,omitempty" mapstructure:"loan_type" validate:"omitempty,oneof=permanent construction bridge"`
}

// Normalize defaults to a permanent loan.
func (d *DebtSizingConfig) Normalize() {
	d.LoanType = strings.ToLower(strings.TrimSpace(d.LoanType))
	if d.LoanType == "" {
		d.LoanType = string(loans.LoanTypePermanent)
	}
}

// WaterfallConfig describes how distributable cash is split between the
// general and limited partners.
type WaterfallConfig struct {
	// Equity is the contributed equity the hurdles are measured against.
	// Zero uses the modeled equity requirement.
	Equity float64          `yaml:"equity,omitempty" mapstructure:"equity" validate:"gte=0"`
	Tiers  []waterfall.Tier `yaml:"tiers" mapstructure:"tiers" validate:"required,min=1,dive"`
}

// shareTolerance bounds how far a tier's GP and LP shares may sum from one.
const shareTolerance = 1e-6

// Validate checks that each tier splits all of its cash. A nil waterfall is
// valid and disables the distribution.
func (w *WaterfallConfig) Validate() error {
	if w == nil {
		return nil
	}
	for i, tier := range w.Tiers {
		if !mathutil.WithinTolerance(tier.GPShare+tier.LPShare, 1, shareTolerance) {
			return fmt.Errorf("waterfall tier %d (%s) shares sum to %.4f, expected 1", i+1, tier.Name, tier.GPShare+tier.LPShare)
		}
		if tier.Hurdle != nil && *tier.Hurdle < 0 {
			return fmt.Errorf("waterfall tier %d (%s) has a negative hurdle", i+1, tier.Name)
		}
	}
	return nil
}

func (w *WaterfallConfig) hasResidualTier() bool {
	for _, tier := range w.Tiers {
		if tier.Hurdle == nil {
			return true
		}
	}
	return false
}

// SensitivityRanges parses the configured sensitivity variables. Unknown
// variable names are an error.
func (c *Configuration) SensitivityRanges() (map[sensitivity.Variable][]float64, error) {
	if len(c.Sensitivity) == 0 {
		return nil, nil
	}
	ranges := make(map[sensitivity.Variable][]float64, len(c.Sensitivity))
	for name, values := range c.Sensitivity {
		variable, err := sensitivity.ParseVariable(name)
		if err != nil {
			return nil, err
		}
		if len(values) == 0 {
			return nil, fmt.Errorf("sensitivity variable %s has no values", variable)
		}
		ranges[variable] = values
	}
	return ranges, nil
}

// DefaultSensitivityRanges brackets each variable around the deal's own
// assumption: caps and rates move 50 and 100 basis points, prices and
// leverage move 10%.
func DefaultSensitivityRanges(a proforma.Assumptions) map[sensitivity.Variable][]float64 {
	return map[sensitivity.Variable][]float64{
		sensitivity.ExitCapRate:   bracket(a.Exit.ExitCapRate, 0.005, 0.0001, math.Inf(1)),
		sensitivity.RentGrowth:    bracket(a.Income.RentGrowthPct, 0.01, -1, math.Inf(1)),
		sensitivity.InterestRate:  bracket(a.Financing.InterestRate, 0.01, 0, math.Inf(1)),
		sensitivity.Vacancy:       bracket(a.Income.VacancyPct, 0.05, 0, 1),
		sensitivity.PurchasePrice: bracket(a.Acquisition.PurchasePrice, a.Acquisition.PurchasePrice*0.10, 1, math.Inf(1)),
		sensitivity.LTV:           bracket(a.Financing.LtvPct, 0.10, 0, 0.95),
	}
}

// bracket returns base-step, base, base+step clamped to [lo, hi] with
// duplicates from clamping removed.
func bracket(base, step, lo, hi float64) []float64 {
	var values []float64
	for _, v := range []float64{base - step, base, base + step} {
		v = math.Min(math.Max(v, lo), hi)
		if len(values) > 0 && values[len(values)-1] == v {
			continue
		}
		values = append(values, v)
	}
	return values
}

// Package sensitivity re-runs a pro forma across ranges of a single input
// to show how returns respond to it.
package sensitivity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iwvelando/proforma/internal/proforma"
	"go.uber.org/zap"
)

// ErrUnknownVariable is returned for a variable the analysis cannot override.
var ErrUnknownVariable = errors.New("unknown sensitivity variable")

// Variable names an overridable assumption.
type Variable string

const (
	ExitCapRate   Variable = "exit_cap_rate"
	RentGrowth    Variable = "rent_growth"
	InterestRate  Variable = "interest_rate"
	Vacancy       Variable = "vacancy"
	PurchasePrice Variable = "purchase_price"
	LTV           Variable = "ltv"
)

// Variables lists the supported variables in report order.
func Variables() []Variable {
	return []Variable{ExitCapRate, RentGrowth, InterestRate, Vacancy, PurchasePrice, LTV}
}

// ParseVariable maps a configured name onto a Variable.
func ParseVariable(name string) (Variable, error) {
	v := Variable(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Variables() {
		if v == known {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownVariable, name)
}

// Apply returns a copy of the assumptions with the variable set to value.
func Apply(a proforma.Assumptions, v Variable, value float64) (proforma.Assumptions, error) {
	switch v {
	case ExitCapRate:
		a.Exit.ExitCapRate = value
	case RentGrowth:
		a.Income.RentGrowthPct = value
	case InterestRate:
		a.Financing.InterestRate = value
	case Vacancy:
		a.Income.VacancyPct = value
	case PurchasePrice:
		a.Acquisition.PurchasePrice = value
	case LTV:
		a.Financing.LtvPct = value
	default:
		return a, fmt.Errorf("%w: %q", ErrUnknownVariable, v)
	}
	return a, nil
}

// Point is the outcome at one variable value.
type Point struct {
	Value          float64                 `json:"value" yaml:"value"`
	LeveredIRR     *float64                `json:"leveredIrr" yaml:"leveredIrr"`
	EquityMultiple float64                 `json:"equityMultiple" yaml:"equityMultiple"`
	NetProfit      float64                 `json:"netProfit" yaml:"netProfit"`
	DSCR           float64                 `json:"dscr" yaml:"dscr"`
	Recommendation proforma.Recommendation `json:"recommendation" yaml:"recommendation"`
}

// Series is every point for one variable.
type Series struct {
	Variable Variable `json:"variable" yaml:"variable"`
	Points   []Point  `json:"points" yaml:"points"`
}

// Run evaluates each variable over its values. Series are returned in
// Variables order regardless of map iteration order.
func Run(ctx context.Context, logger *zap.Logger, engine *proforma.Engine, in proforma.Input, ranges map[Variable][]float64) ([]Series, error) {
	if engine == nil {
		return nil, fmt.Errorf("engine cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	for v := range ranges {
		if _, err := ParseVariable(string(v)); err != nil {
			return nil, err
		}
	}

	var out []Series
	for _, v := range Variables() {
		values, ok := ranges[v]
		if !ok {
			continue
		}
		series := Series{Variable: v, Points: make([]Point, 0, len(values))}
		for _, value := range values {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			modified := in
			assumptions, err := Apply(in.Assumptions, v, value)
			if err != nil {
				return nil, err
			}
			modified.Assumptions = assumptions
			result, err := engine.Calculate(modified)
			if err != nil {
				return nil, fmt.Errorf("sensitivity %s=%g: %w", v, value, err)
			}
			series.Points = append(series.Points, Point{
				Value:          value,
				LeveredIRR:     result.LeveredIRR,
				EquityMultiple: result.EquityMultiple,
				NetProfit:      result.NetProfit,
				DSCR:           result.DSCR,
				Recommendation: result.Recommendation,
			})
		}
		logger.Debug("sensitivity series complete",
			zap.String("op", "sensitivity.Run"),
			zap.String("variable", string(v)),
			zap.Int("points", len(series.Points)),
		)
		out = append(out, series)
	}
	return out, nil
}

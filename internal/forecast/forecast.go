// Package forecast runs a deal file through the pro forma engine and the
// optional analyses, collecting everything into one report.
package forecast

import (
	"context"
	"fmt"

	"github.com/iwvelando/proforma/internal/config"
	"github.com/iwvelando/proforma/internal/optimizer"
	"github.com/iwvelando/proforma/internal/proforma"
	"github.com/iwvelando/proforma/internal/sensitivity"
	"github.com/iwvelando/proforma/pkg/loans"
	"github.com/iwvelando/proforma/pkg/mathutil"
	"github.com/iwvelando/proforma/pkg/waterfall"
	"go.uber.org/zap"
)

// Forecast holds all information produced for a deal.
type Forecast struct {
	RunID       string               `json:"runId" yaml:"runId"`
	Name        string               `json:"name,omitempty" yaml:"name,omitempty"`
	Result      *proforma.Result     `json:"result" yaml:"result"`
	DebtSizing  loans.DebtSizing     `json:"debtSizing" yaml:"debtSizing"`
	Analysis    *optimizer.Analysis  `json:"analysis,omitempty" yaml:"analysis,omitempty"`
	Sensitivity []sensitivity.Series `json:"sensitivity,omitempty" yaml:"sensitivity,omitempty"`
	Waterfall   *waterfall.Result    `json:"waterfall,omitempty" yaml:"waterfall,omitempty"`
	Warnings    []string             `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Options selects the analyses run alongside the base pro forma. Each one
// also runs when the deal file enables it.
type Options struct {
	RunID       string
	Optimize    bool
	Sensitivity bool
}

// GetForecast evaluates the deal over its assumed hold and runs the enabled
// analyses. The configuration must already be validated.
func GetForecast(ctx context.Context, logger *zap.Logger, conf config.Configuration, opts Options) (*Forecast, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	engine := proforma.NewEngine(logger, proforma.DefaultPolicy())
	in := conf.ToInput()

	result, err := engine.Calculate(in)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate pro forma: %w", err)
	}

	report := &Forecast{
		RunID:      opts.RunID,
		Name:       conf.Name,
		Result:     result,
		DebtSizing: sizeDebt(conf, result),
		Warnings:   conf.ValidateConfiguration(),
	}

	if opts.Optimize || conf.Optimizer.Enabled {
		runner, err := optimizer.NewRunner(logger, engine, conf.Optimizer.Options())
		if err != nil {
			return nil, err
		}
		report.Analysis, err = runner.Run(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("failed to optimize exit timing: %w", err)
		}
	}

	if opts.Sensitivity || len(conf.Sensitivity) > 0 {
		ranges, err := conf.SensitivityRanges()
		if err != nil {
			return nil, err
		}
		if ranges == nil {
			ranges = config.DefaultSensitivityRanges(conf.Deal)
		}
		report.Sensitivity, err = sensitivity.Run(ctx, logger, engine, in, ranges)
		if err != nil {
			return nil, fmt.Errorf("failed to run sensitivity analysis: %w", err)
		}
	}

	if conf.Waterfall != nil {
		equity := conf.Waterfall.Equity
		if equity == 0 {
			equity = result.Basis.EquityRequired
		}
		distribution, err := waterfall.Distribute(result.DistributableCashFlows(), conf.Waterfall.Tiers, equity)
		if err != nil {
			return nil, fmt.Errorf("failed to distribute cash flows: %w", err)
		}
		report.Waterfall = &distribution
	}

	logger.Info("computed forecast",
		zap.String("op", "forecast.GetForecast"),
		zap.String("deal", conf.Name),
		zap.String("recommendation", string(result.Recommendation)),
		zap.Bool("optimized", report.Analysis != nil),
		zap.Int("sensitivityVariables", len(report.Sensitivity)),
		zap.Bool("waterfall", report.Waterfall != nil),
		zap.Int("warnings", len(report.Warnings)),
	)

	return report, nil
}

// sizeDebt sizes the acquisition loan on year one NOI against the purchase
// price.
func sizeDebt(conf config.Configuration, result *proforma.Result) loans.DebtSizing {
	var noi float64
	if len(result.CashFlows) > 0 {
		noi = result.CashFlows[0].NOI
	}
	financing := conf.Deal.Financing
	sizing := loans.SizeDebt(noi, conf.Deal.Acquisition.PurchasePrice, loans.LoanType(conf.DebtSizing.LoanType),
		financing.InterestRate, financing.AmortizationYears)

	sizing.MaxByLTV = mathutil.RoundCurrency(sizing.MaxByLTV)
	sizing.MaxByDSCR = mathutil.RoundCurrency(sizing.MaxByDSCR)
	sizing.MaxByDebtYield = mathutil.RoundCurrency(sizing.MaxByDebtYield)
	sizing.RecommendedLoan = mathutil.RoundCurrency(sizing.RecommendedLoan)
	sizing.RecommendedLTV = mathutil.RoundRatio(sizing.RecommendedLTV)
	sizing.RecommendedDSCR = mathutil.RoundRatio(sizing.RecommendedDSCR)
	return sizing
}

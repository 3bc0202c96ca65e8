package proforma

import (
	"errors"
	"fmt"

	"github.com/iwvelando/proforma/pkg/budget"
	"github.com/iwvelando/proforma/pkg/constants"
	"github.com/iwvelando/proforma/pkg/irr"
	"github.com/iwvelando/proforma/pkg/loans"
	"github.com/iwvelando/proforma/pkg/mathutil"
	"github.com/iwvelando/proforma/pkg/rentroll"
	"go.uber.org/zap"
)

// ErrInvalidTiming is returned when a hold or refinance year is out of range.
var ErrInvalidTiming = errors.New("invalid timing")

// Policy holds the model-wide rates that are not deal assumptions.
type Policy struct {
	// ExpenseInflation grows fixed operating expenses after year one.
	ExpenseInflation float64
}

// DefaultPolicy returns the standard underwriting policy.
func DefaultPolicy() Policy {
	return Policy{ExpenseInflation: constants.DefaultExpenseInflation}
}

// Engine calculates pro formas. It holds no per-deal state and is safe for
// concurrent use.
type Engine struct {
	logger *zap.Logger
	policy Policy
}

// NewEngine creates a new engine instance.
func NewEngine(logger *zap.Logger, policy Policy) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger, policy: policy}
}

// Timing selects when the deal exits and, optionally, refinances.
type Timing struct {
	HoldYears int
	// RefinanceYear is zero when the acquisition loan is held to exit.
	RefinanceYear int
}

// Model is a deal prepared for evaluation. The basis, budget and rent roll
// are computed once and shared by every timing evaluated against it.
type Model struct {
	logger      *zap.Logger
	policy      Policy
	schedules   *loans.ScheduleGenerator
	assumptions Assumptions
	basis       AcquisitionBasis
	budget      budget.Summary
	sourcesUses SourcesUses
	rentRoll    rentroll.RentRoll
	leaseTerms  rentroll.RentRoll
}

// Result is a fully evaluated pro forma. Currency fields are rounded to
// whole units and ratios to four decimals.
type Result struct {
	HoldYears                int                   `json:"holdYears" yaml:"holdYears"`
	RefinanceYear            *int                  `json:"refinanceYear,omitempty" yaml:"refinanceYear,omitempty"`
	Basis                    AcquisitionBasis      `json:"basis" yaml:"basis"`
	SourcesUses              SourcesUses           `json:"sourcesUses" yaml:"sourcesUses"`
	CashFlows                []CashFlowRow         `json:"cashFlows" yaml:"cashFlows"`
	DebtSchedule             []loans.AnnualPayment `json:"debtSchedule" yaml:"debtSchedule"`
	Refinance                *RefinanceEvent       `json:"refinance,omitempty" yaml:"refinance,omitempty"`
	Exit                     ExitAnalysis          `json:"exit" yaml:"exit"`
	LeveredIRR               *float64              `json:"leveredIrr" yaml:"leveredIrr"`
	LeveredIRRStatus         irr.Status            `json:"leveredIrrStatus" yaml:"leveredIrrStatus"`
	UnleveredIRR             *float64              `json:"unleveredIrr" yaml:"unleveredIrr"`
	UnleveredIRRStatus       irr.Status            `json:"unleveredIrrStatus" yaml:"unleveredIrrStatus"`
	EquityMultiple           float64               `json:"equityMultiple" yaml:"equityMultiple"`
	CashOnCashYear1          float64               `json:"cashOnCashYear1" yaml:"cashOnCashYear1"`
	NetProfit                float64               `json:"netProfit" yaml:"netProfit"`
	GoingInCapRate           float64               `json:"goingInCapRate" yaml:"goingInCapRate"`
	AnnualDebtService        float64               `json:"annualDebtService" yaml:"annualDebtService"`
	DSCR                     float64               `json:"dscr" yaml:"dscr"`
	DebtYield                float64               `json:"debtYield" yaml:"debtYield"`
	WeightedAverageLeaseTerm float64               `json:"weightedAverageLeaseTerm" yaml:"weightedAverageLeaseTerm"`
	RentRoll                 rentroll.RentRoll     `json:"rentRoll" yaml:"rentRoll"`
	DevelopmentBudget        budget.Summary        `json:"developmentBudget" yaml:"developmentBudget"`
	Recommendation           Recommendation        `json:"recommendation" yaml:"recommendation"`
}

// Prepare validates the input and computes everything that does not depend
// on the exit timing.
func (e *Engine) Prepare(in Input) (*Model, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	a := in.Assumptions
	dev := budget.Summarize(in.Budget)

	// The deal's own hold fixes the reported lease term; the revenue
	// schedule runs to the longest supported hold so any timing can be
	// evaluated against it.
	opts := rentroll.Options{
		HoldYears:        a.Exit.HoldYears,
		AnalysisStart:    in.AnalysisStart,
		MarketRentPerSf:  a.Income.RentPerSf,
		MarketVacancyPct: a.Income.VacancyPct,
	}
	reported, err := rentroll.Aggregate(in.Leases, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAssumptions, err)
	}
	opts.HoldYears = constants.MaxHoldYears
	roll, err := rentroll.Aggregate(in.Leases, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAssumptions, err)
	}

	basis := computeBasis(a, dev)
	return &Model{
		logger:      e.logger,
		policy:      e.policy,
		schedules:   loans.NewScheduleGenerator(e.logger),
		assumptions: a,
		basis:       basis,
		budget:      dev,
		sourcesUses: reconcile(basis, in.CapitalStack),
		rentRoll:    roll,
		leaseTerms:  reported,
	}, nil
}

// Calculate evaluates the deal over its assumed hold period.
func (e *Engine) Calculate(in Input) (*Result, error) {
	model, err := e.Prepare(in)
	if err != nil {
		return nil, err
	}
	return model.Evaluate(Timing{HoldYears: in.Assumptions.Exit.HoldYears})
}

// Assumptions returns the assumptions the model was prepared from.
func (m *Model) Assumptions() Assumptions {
	return m.assumptions
}

// Evaluate runs the cash flow, exit and return calculations for one timing.
func (m *Model) Evaluate(t Timing) (*Result, error) {
	if t.HoldYears < constants.MinHoldYears || t.HoldYears > constants.MaxHoldYears {
		return nil, fmt.Errorf("%w: hold years must be between %d and %d, got %d",
			ErrInvalidTiming, constants.MinHoldYears, constants.MaxHoldYears, t.HoldYears)
	}
	if t.RefinanceYear < 0 || (t.RefinanceYear > 0 && t.RefinanceYear >= t.HoldYears) {
		return nil, fmt.Errorf("%w: refinance year %d must precede exit year %d", ErrInvalidTiming, t.RefinanceYear, t.HoldYears)
	}

	p := m.project(t)
	exit := m.exit(p)
	ret := m.returns(p, exit)

	debtYears := t.HoldYears
	if t.RefinanceYear > 0 {
		debtYears = t.RefinanceYear
	}

	result := &Result{
		HoldYears:                t.HoldYears,
		Basis:                    m.basis.rounded(),
		SourcesUses:              m.sourcesUses.rounded(),
		CashFlows:                make([]CashFlowRow, len(p.rows)),
		DebtSchedule:             roundSchedule(m.schedules.GenerateAnnualSchedule(m.acquisitionLoan(), debtYears)),
		Exit:                     exit.rounded(),
		LeveredIRR:               mathutil.RoundRatioPtr(ret.levered.Value()),
		LeveredIRRStatus:         ret.levered.Status,
		UnleveredIRR:             mathutil.RoundRatioPtr(ret.unlevered.Value()),
		UnleveredIRRStatus:       ret.unlevered.Status,
		EquityMultiple:           mathutil.RoundRatio(ret.equityMultiple),
		CashOnCashYear1:          mathutil.RoundRatio(ret.cashOnCashYear1),
		NetProfit:                mathutil.RoundCurrency(exit.Profit),
		GoingInCapRate:           mathutil.RoundRatio(ret.goingInCapRate),
		AnnualDebtService:        mathutil.RoundCurrency(ret.debtServiceYear1),
		DSCR:                     mathutil.RoundRatio(ret.dscr),
		DebtYield:                mathutil.RoundRatio(ret.debtYield),
		WeightedAverageLeaseTerm: mathutil.RoundRatio(m.leaseTerms.WeightedAverageLeaseTerm),
		RentRoll:                 m.reportedRentRoll(t.HoldYears),
		DevelopmentBudget:        m.budget,
		Recommendation:           Recommend(ret.levered.Value(), ret.equityMultiple, ret.dscr),
	}
	for i, row := range p.rows {
		result.CashFlows[i] = row.rounded()
	}
	if t.RefinanceYear > 0 {
		year := t.RefinanceYear
		result.RefinanceYear = &year
		event := p.refinance.rounded()
		result.Refinance = &event
	}

	m.logger.Debug("evaluated pro forma",
		zap.String("op", "proforma.Evaluate"),
		zap.Int("holdYears", t.HoldYears),
		zap.Int("refinanceYear", t.RefinanceYear),
		zap.Float64("equityRequired", m.basis.EquityRequired),
		zap.Float64("netProceeds", exit.NetProceeds),
		zap.Stringer("leveredIrrStatus", ret.levered.Status),
		zap.Int("irrIterations", ret.levered.Iterations),
	)

	return result, nil
}

// reportedRentRoll combines the lease terms underwritten for the deal's own
// hold with the revenue schedule for the evaluated hold.
func (m *Model) reportedRentRoll(holdYears int) rentroll.RentRoll {
	roll := m.leaseTerms
	if roll.HasLeases {
		n := holdYears
		if n > len(m.rentRoll.AnnualSchedule) {
			n = len(m.rentRoll.AnnualSchedule)
		}
		roll.AnnualSchedule = m.rentRoll.AnnualSchedule[:n]
	}
	return roll.Rounded()
}

func (r RefinanceEvent) rounded() RefinanceEvent {
	return RefinanceEvent{
		Year:           r.Year,
		PropertyValue:  mathutil.RoundCurrency(r.PropertyValue),
		NewLoanAmount:  mathutil.RoundCurrency(r.NewLoanAmount),
		LoanPayoff:     mathutil.RoundCurrency(r.LoanPayoff),
		Costs:          mathutil.RoundCurrency(r.Costs),
		NetProceeds:    mathutil.RoundCurrency(r.NetProceeds),
		NewDebtService: mathutil.RoundCurrency(r.NewDebtService),
	}
}

func roundSchedule(schedule []loans.AnnualPayment) []loans.AnnualPayment {
	out := make([]loans.AnnualPayment, len(schedule))
	for i, row := range schedule {
		out[i] = loans.AnnualPayment{
			Year:          row.Year,
			Payment:       mathutil.RoundCurrency(row.Payment),
			Interest:      mathutil.RoundCurrency(row.Interest),
			Principal:     mathutil.RoundCurrency(row.Principal),
			EndingBalance: mathutil.RoundCurrency(row.EndingBalance),
			InterestOnly:  row.InterestOnly,
		}
	}
	return out
}

// DistributableCashFlows returns the levered cash flow for each year with
// the net sale proceeds added to the exit year.
func (r *Result) DistributableCashFlows() []float64 {
	flows := make([]float64, len(r.CashFlows))
	for i, row := range r.CashFlows {
		flows[i] = row.LeveredCashFlow
	}
	if n := len(flows); n > 0 {
		flows[n-1] += r.Exit.NetProceeds
	}
	return flows
}

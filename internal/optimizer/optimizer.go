// Package optimizer searches exit timings for a deal and ranks them by
// levered return.
package optimizer

import (
	"context"
	"fmt"
	"runtime"
	"sort"

	"github.com/iwvelando/proforma/internal/proforma"
	"github.com/iwvelando/proforma/pkg/constants"
	"github.com/iwvelando/proforma/pkg/irr"
	"github.com/iwvelando/proforma/pkg/mathutil"
	"github.com/iwvelando/proforma/pkg/optimization"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Path is an exit strategy family.
type Path string

const (
	PathSell          Path = "sell"
	PathRefinanceHold Path = "refinance_hold"
	PathStabilization Path = "stabilization_disposition"
)

// pathOrder fixes the descriptor ordering used to break ranking ties.
var pathOrder = map[Path]int{
	PathSell:          0,
	PathRefinanceHold: 1,
	PathStabilization: 2,
}

// Options bounds the search.
type Options struct {
	// Horizon is the last exit year searched. Zero means the default of ten.
	Horizon int
	// Workers caps concurrent scenario evaluations. Zero means GOMAXPROCS.
	Workers int
}

// Scenario is one evaluated exit timing.
type Scenario struct {
	ID                string                  `json:"id" yaml:"id"`
	Label             string                  `json:"label" yaml:"label"`
	Path              Path                    `json:"path" yaml:"path"`
	SellYear          int                     `json:"sellYear" yaml:"sellYear"`
	RefinanceYear     *int                    `json:"refinanceYear,omitempty" yaml:"refinanceYear,omitempty"`
	ExitYear          int                     `json:"exitYear" yaml:"exitYear"`
	ExitValue         float64                 `json:"exitValue" yaml:"exitValue"`
	EquityProceeds    float64                 `json:"equityProceeds" yaml:"equityProceeds"`
	RefinanceProceeds float64                 `json:"refinanceProceeds" yaml:"refinanceProceeds"`
	EquityMultiple    float64                 `json:"equityMultiple" yaml:"equityMultiple"`
	IRR               *float64                `json:"irr" yaml:"irr"`
	IRRStatus         irr.Status              `json:"irrStatus" yaml:"irrStatus"`
	NetProfit         float64                 `json:"netProfit" yaml:"netProfit"`
	BestTiming        optimization.Timing     `json:"bestTiming" yaml:"bestTiming"`
	Recommendation    proforma.Recommendation `json:"recommendation" yaml:"recommendation"`
}

// Timing returns the scenario's own schedule. The refinance year is copied
// so the result shares no memory with s.
func (s Scenario) Timing() optimization.Timing {
	return optimization.Timing{SellYear: s.SellYear, RefinanceYear: copyYear(s.RefinanceYear), ExitYear: s.ExitYear}
}

func copyYear(year *int) *int {
	if year == nil {
		return nil
	}
	y := *year
	return &y
}

// Analysis is the ranked result of a search. Scenarios are ranked on the
// reported IRR, rounded to four decimals; IRRs equal at that precision tie
// and the equity multiple decides.
type Analysis struct {
	Horizon            int                    `json:"horizon" yaml:"horizon"`
	Scenarios          []Scenario             `json:"scenarios" yaml:"scenarios"`
	Best               *Scenario              `json:"best,omitempty" yaml:"best,omitempty"`
	BestSell           *Scenario              `json:"bestSell,omitempty" yaml:"bestSell,omitempty"`
	BestRefinance      *Scenario              `json:"bestRefinance,omitempty" yaml:"bestRefinance,omitempty"`
	BestStabilization  *Scenario              `json:"bestStabilization,omitempty" yaml:"bestStabilization,omitempty"`
	SellCount          int                    `json:"sellCount" yaml:"sellCount"`
	RefinanceCount     int                    `json:"refinanceCount" yaml:"refinanceCount"`
	StabilizationCount int                    `json:"stabilizationCount" yaml:"stabilizationCount"`
	Families           []optimization.Summary `json:"families" yaml:"families"`
}

// Empty indicates whether any scenarios were evaluated.
func (a Analysis) Empty() bool {
	return len(a.Scenarios) == 0
}

// Runner evaluates exit scenarios against a pro forma engine.
type Runner struct {
	logger *zap.Logger
	engine *proforma.Engine
	opts   Options
}

// descriptor is an unevaluated scenario.
type descriptor struct {
	path          Path
	refinanceYear int
	exitYear      int
}

// NewRunner constructs a Runner for the provided engine.
func NewRunner(logger *zap.Logger, engine *proforma.Engine, opts Options) (*Runner, error) {
	if engine == nil {
		return nil, fmt.Errorf("engine cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Horizon == 0 {
		opts.Horizon = constants.DefaultOptimizerHorizon
	}
	if opts.Horizon < constants.MinHoldYears || opts.Horizon > constants.MaxHoldYears {
		return nil, fmt.Errorf("optimizer horizon must be between %d and %d, got %d",
			constants.MinHoldYears, constants.MaxHoldYears, opts.Horizon)
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	return &Runner{logger: logger, engine: engine, opts: opts}, nil
}

// descriptors enumerates every timing in the search: each sell year, each
// refinance/exit pair with the refinance strictly first, and one
// stabilization sale two years after the interest-only period.
func (r *Runner) descriptors(a proforma.Assumptions) []descriptor {
	h := r.opts.Horizon
	out := make([]descriptor, 0, h+h*(h-1)/2+1)
	for exit := 1; exit <= h; exit++ {
		out = append(out, descriptor{path: PathSell, exitYear: exit})
	}
	for refi := 1; refi < h; refi++ {
		for exit := refi + 1; exit <= h; exit++ {
			out = append(out, descriptor{path: PathRefinanceHold, refinanceYear: refi, exitYear: exit})
		}
	}
	stabilization := a.Exit.HoldYears
	if ioExit := a.Financing.IOPeriodYears + constants.StabilizationYearsAfterIO; ioExit < stabilization {
		stabilization = ioExit
	}
	out = append(out, descriptor{path: PathStabilization, exitYear: mathutil.ClampInt(stabilization, constants.MinHoldYears, h)})
	return out
}

// Run evaluates every scenario concurrently and ranks the results.
// Cancelling ctx abandons the sweep.
func (r *Runner) Run(ctx context.Context, in proforma.Input) (*Analysis, error) {
	model, err := r.engine.Prepare(in)
	if err != nil {
		return nil, fmt.Errorf("optimizer: %w", err)
	}

	descriptors := r.descriptors(model.Assumptions())
	scenarios := make([]Scenario, len(descriptors))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)
	for i, d := range descriptors {
		i, d := i, d
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			result, err := model.Evaluate(proforma.Timing{HoldYears: d.exitYear, RefinanceYear: d.refinanceYear})
			if err != nil {
				return fmt.Errorf("optimizer scenario %s: %w", d.id(), err)
			}
			scenarios[i] = newScenario(d, result)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	analysis := summarize(r.opts.Horizon, scenarios)
	r.logResults(analysis)
	return analysis, nil
}

func (d descriptor) id() string {
	switch d.path {
	case PathRefinanceHold:
		return fmt.Sprintf("refi-y%d-exit-y%d", d.refinanceYear, d.exitYear)
	case PathStabilization:
		return fmt.Sprintf("stabilization-y%d", d.exitYear)
	default:
		return fmt.Sprintf("sell-y%d", d.exitYear)
	}
}

func (d descriptor) label() string {
	switch d.path {
	case PathRefinanceHold:
		return fmt.Sprintf("Refinance in year %d, sell in year %d", d.refinanceYear, d.exitYear)
	case PathStabilization:
		return fmt.Sprintf("Stabilization sale in year %d", d.exitYear)
	default:
		return fmt.Sprintf("Sell in year %d", d.exitYear)
	}
}

func newScenario(d descriptor, result *proforma.Result) Scenario {
	s := Scenario{
		ID:             d.id(),
		Label:          d.label(),
		Path:           d.path,
		SellYear:       d.exitYear,
		ExitYear:       d.exitYear,
		ExitValue:      result.Exit.SalePrice,
		EquityProceeds: result.Exit.NetProceeds,
		EquityMultiple: result.EquityMultiple,
		IRR:            result.LeveredIRR,
		IRRStatus:      result.LeveredIRRStatus,
		NetProfit:      result.NetProfit,
		Recommendation: result.Recommendation,
	}
	if d.refinanceYear > 0 {
		year := d.refinanceYear
		s.RefinanceYear = &year
	}
	if result.Refinance != nil {
		s.RefinanceProceeds = result.Refinance.NetProceeds
	}
	return s
}

// compareIRR orders IRRs descending with nil below every solved rate.
// It returns a negative value when a ranks first.
func compareIRR(a, b *float64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case *a > *b:
		return -1
	case *a < *b:
		return 1
	default:
		return 0
	}
}

func refinanceYear(s Scenario) int {
	if s.RefinanceYear == nil {
		return 0
	}
	return *s.RefinanceYear
}

// ranksBefore reports whether a ranks above b: higher reported IRR, then
// higher equity multiple, then descriptor order.
func ranksBefore(a, b Scenario) bool {
	if c := compareIRR(a.IRR, b.IRR); c != 0 {
		return c < 0
	}
	if a.EquityMultiple != b.EquityMultiple {
		return a.EquityMultiple > b.EquityMultiple
	}
	if pathOrder[a.Path] != pathOrder[b.Path] {
		return pathOrder[a.Path] < pathOrder[b.Path]
	}
	if a.ExitYear != b.ExitYear {
		return a.ExitYear < b.ExitYear
	}
	return refinanceYear(a) < refinanceYear(b)
}

func rank(scenarios []Scenario) {
	sort.SliceStable(scenarios, func(i, j int) bool {
		return ranksBefore(scenarios[i], scenarios[j])
	})
}

// summarize ranks the scenarios, tags each with its family's best timing and
// picks the per-family winners.
func summarize(horizon int, scenarios []Scenario) *Analysis {
	rank(scenarios)

	analysis := &Analysis{Horizon: horizon, Scenarios: scenarios}
	bestIndex := map[Path]int{}
	counts := map[Path]int{}
	for i, s := range scenarios {
		counts[s.Path]++
		if _, ok := bestIndex[s.Path]; !ok {
			bestIndex[s.Path] = i
		}
	}
	for i := range scenarios {
		scenarios[i].BestTiming = scenarios[bestIndex[scenarios[i].Path]].Timing()
	}

	pick := func(path Path) *Scenario {
		i, ok := bestIndex[path]
		if !ok {
			return nil
		}
		best := scenarios[i]
		best.RefinanceYear = copyYear(best.RefinanceYear)
		best.BestTiming.RefinanceYear = copyYear(best.BestTiming.RefinanceYear)
		return &best
	}
	if len(scenarios) > 0 {
		best := scenarios[0]
		analysis.Best = &best
	}
	analysis.BestSell = pick(PathSell)
	analysis.BestRefinance = pick(PathRefinanceHold)
	analysis.BestStabilization = pick(PathStabilization)
	analysis.SellCount = counts[PathSell]
	analysis.RefinanceCount = counts[PathRefinanceHold]
	analysis.StabilizationCount = counts[PathStabilization]

	for _, path := range []Path{PathSell, PathRefinanceHold, PathStabilization} {
		best := pick(path)
		if best == nil {
			continue
		}
		summary := optimization.Summary{
			Path:               string(path),
			Scenarios:          counts[path],
			BestID:             best.ID,
			BestLabel:          best.Label,
			BestTiming:         best.Timing(),
			BestIRR:            best.IRR,
			BestEquityMultiple: best.EquityMultiple,
		}
		if best.IRRStatus == irr.BestEffort {
			summary.Notes = append(summary.Notes, "best IRR did not fully converge")
		}
		if best.IRR == nil {
			summary.Notes = append(summary.Notes, "no scenario in this family has a solvable IRR")
		}
		analysis.Families = append(analysis.Families, summary)
	}
	return analysis
}

func (r *Runner) logResults(a *Analysis) {
	for _, family := range a.Families {
		irrValue := 0.0
		if family.BestIRR != nil {
			irrValue = *family.BestIRR
		}
		r.logger.Info("optimizer selected best timing",
			zap.String("op", "optimizer.Run"),
			zap.String("path", family.Path),
			zap.String("scenario", family.BestID),
			zap.Int("candidates", family.Scenarios),
			zap.Float64("irr", irrValue),
			zap.Float64("equityMultiple", family.BestEquityMultiple),
		)
	}
	if a.Best != nil {
		r.logger.Info("optimizer complete",
			zap.String("op", "optimizer.Run"),
			zap.String("best", a.Best.ID),
			zap.Int("scenarios", len(a.Scenarios)),
		)
	}
}

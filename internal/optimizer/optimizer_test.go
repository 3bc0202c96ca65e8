package optimizer

import (
	"context"
	"testing"

	"github.com/iwvelando/proforma/internal/proforma"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stabilizedDeal is a leveraged deal with a two year interest-only period
// whose returns keep improving out to year ten.
func stabilizedDeal() proforma.Input {
	return proforma.Input{Assumptions: proforma.Assumptions{
		Acquisition: proforma.Acquisition{PurchasePrice: 5500000, ClosingCostsPct: 0.02},
		Income:      proforma.Income{RentPerSf: 12, VacancyPct: 0.05, RentGrowthPct: 0.03},
		Expenses: proforma.Expenses{
			OpexPerSf:        3,
			ManagementFeePct: 0.03,
			CapexReserves:    0.25,
			Insurance:        0.5,
			Taxes:            1.0,
		},
		Financing: proforma.Financing{
			InterestRate:      0.055,
			LtvPct:            0.65,
			LoanFeePct:        0.01,
			AmortizationYears: 25,
			IOPeriodYears:     2,
		},
		Exit:        proforma.Exit{HoldYears: 7, ExitCapRate: 0.065, DispositionCostsPct: 0.02},
		BuildableSf: 50000,
	}}
}

func newTestRunner(t *testing.T, opts Options) *Runner {
	t.Helper()
	runner, err := NewRunner(zap.NewNop(), proforma.NewEngine(zap.NewNop(), proforma.DefaultPolicy()), opts)
	require.NoError(t, err)
	return runner
}

func floatPtr(v float64) *float64 {
	return &v
}

func intPtr(v int) *int {
	return &v
}

func TestRunScenarioCounts(t *testing.T) {
	analysis, err := newTestRunner(t, Options{}).Run(context.Background(), stabilizedDeal())
	require.NoError(t, err)

	assert.Equal(t, 10, analysis.Horizon)
	assert.Len(t, analysis.Scenarios, 56)
	assert.Equal(t, 10, analysis.SellCount)
	assert.Equal(t, 45, analysis.RefinanceCount)
	assert.Equal(t, 1, analysis.StabilizationCount)
	assert.Len(t, analysis.Families, 3)
	assert.False(t, analysis.Empty())

	seen := map[string]bool{}
	for _, s := range analysis.Scenarios {
		assert.False(t, seen[s.ID], "duplicate scenario %s", s.ID)
		seen[s.ID] = true
		if s.RefinanceYear != nil {
			assert.Less(t, *s.RefinanceYear, s.ExitYear, "scenario %s", s.ID)
		}
		assert.GreaterOrEqual(t, s.ExitYear, 1)
		assert.LessOrEqual(t, s.ExitYear, 10)
	}
}

func TestRunRanksAndSelectsBest(t *testing.T) {
	analysis, err := newTestRunner(t, Options{}).Run(context.Background(), stabilizedDeal())
	require.NoError(t, err)

	for i := 1; i < len(analysis.Scenarios); i++ {
		assert.False(t, ranksBefore(analysis.Scenarios[i], analysis.Scenarios[i-1]),
			"%s ranks above %s", analysis.Scenarios[i].ID, analysis.Scenarios[i-1].ID)
	}

	require.NotNil(t, analysis.Best)
	assert.Equal(t, analysis.Scenarios[0], *analysis.Best)
	assert.Equal(t, PathRefinanceHold, analysis.Best.Path)
	assert.Equal(t, 10, analysis.Best.ExitYear)
	require.NotNil(t, analysis.Best.IRR)
	assert.InDelta(t, 0.108, *analysis.Best.IRR, 1e-3)

	require.NotNil(t, analysis.BestSell)
	assert.Equal(t, "sell-y10", analysis.BestSell.ID)
	require.NotNil(t, analysis.BestSell.IRR)
	assert.InDelta(t, 0.1065, *analysis.BestSell.IRR, 1e-3)
	assert.InDelta(t, 2.4104, analysis.BestSell.EquityMultiple, 1e-3)

	require.NotNil(t, analysis.BestRefinance)
	assert.Equal(t, analysis.Best.ID, analysis.BestRefinance.ID)

	// Exit hold of 7 with a two year IO period stabilizes in year 4.
	require.NotNil(t, analysis.BestStabilization)
	assert.Equal(t, "stabilization-y4", analysis.BestStabilization.ID)
	assert.Equal(t, 4, analysis.BestStabilization.ExitYear)
}

func TestRunAnnotatesFamilyBestTiming(t *testing.T) {
	analysis, err := newTestRunner(t, Options{}).Run(context.Background(), stabilizedDeal())
	require.NoError(t, err)

	best := map[Path]Scenario{
		PathSell:          *analysis.BestSell,
		PathRefinanceHold: *analysis.BestRefinance,
		PathStabilization: *analysis.BestStabilization,
	}
	for _, s := range analysis.Scenarios {
		assert.Equal(t, best[s.Path].Timing(), s.BestTiming, "scenario %s", s.ID)
	}
	for _, family := range analysis.Families {
		assert.Equal(t, best[Path(family.Path)].ID, family.BestID)
	}
}

func TestRunBestTimingIsIndependent(t *testing.T) {
	analysis, err := newTestRunner(t, Options{}).Run(context.Background(), stabilizedDeal())
	require.NoError(t, err)

	winner := analysis.Scenarios[0]
	require.NotNil(t, winner.RefinanceYear)
	winnerYear := *winner.RefinanceYear

	var seen []*int
	for _, s := range analysis.Scenarios {
		if s.Path != PathRefinanceHold {
			continue
		}
		require.NotNil(t, s.BestTiming.RefinanceYear, "scenario %s", s.ID)
		assert.NotSame(t, winner.RefinanceYear, s.BestTiming.RefinanceYear, "scenario %s", s.ID)
		for _, other := range seen {
			assert.NotSame(t, other, s.BestTiming.RefinanceYear, "scenario %s", s.ID)
		}
		seen = append(seen, s.BestTiming.RefinanceYear)
	}

	// Editing the reported winner leaves the ranked list untouched.
	*analysis.BestRefinance.RefinanceYear = 99
	*seen[len(seen)-1] = 98
	assert.Equal(t, winnerYear, *analysis.Scenarios[0].RefinanceYear)
	assert.Equal(t, winnerYear, *analysis.Scenarios[0].BestTiming.RefinanceYear)
}

func TestRunRefinanceInjection(t *testing.T) {
	analysis, err := newTestRunner(t, Options{}).Run(context.Background(), stabilizedDeal())
	require.NoError(t, err)

	var found *Scenario
	for i := range analysis.Scenarios {
		if analysis.Scenarios[i].ID == "refi-y4-exit-y5" {
			found = &analysis.Scenarios[i]
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, intPtr(4), found.RefinanceYear)
	assert.Equal(t, 5, found.SellYear)
	assert.NotZero(t, found.RefinanceProceeds)
	assert.Equal(t, "Refinance in year 4, sell in year 5", found.Label)
}

func TestRunDeterministicAcrossWorkerCounts(t *testing.T) {
	serial, err := newTestRunner(t, Options{Workers: 1}).Run(context.Background(), stabilizedDeal())
	require.NoError(t, err)
	parallel, err := newTestRunner(t, Options{Workers: 8}).Run(context.Background(), stabilizedDeal())
	require.NoError(t, err)
	assert.Equal(t, serial, parallel)
}

func TestRunCustomHorizon(t *testing.T) {
	analysis, err := newTestRunner(t, Options{Horizon: 3}).Run(context.Background(), stabilizedDeal())
	require.NoError(t, err)

	assert.Equal(t, 3, analysis.SellCount)
	assert.Equal(t, 3, analysis.RefinanceCount)
	assert.Equal(t, 1, analysis.StabilizationCount)
	// Stabilization year 4 is clamped into the horizon.
	assert.Equal(t, 3, analysis.BestStabilization.ExitYear)
}

func TestRunSingleYearHorizonHasNoRefinance(t *testing.T) {
	analysis, err := newTestRunner(t, Options{Horizon: 1}).Run(context.Background(), stabilizedDeal())
	require.NoError(t, err)

	assert.Equal(t, 1, analysis.SellCount)
	assert.Equal(t, 0, analysis.RefinanceCount)
	assert.Nil(t, analysis.BestRefinance)
	assert.Len(t, analysis.Families, 2)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestRunner(t, Options{Workers: 2}).Run(ctx, stabilizedDeal())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunInvalidInput(t *testing.T) {
	in := stabilizedDeal()
	in.Assumptions.Acquisition.PurchasePrice = 0

	_, err := newTestRunner(t, Options{}).Run(context.Background(), in)
	assert.ErrorIs(t, err, proforma.ErrInvalidAssumptions)
}

func TestNewRunnerValidation(t *testing.T) {
	engine := proforma.NewEngine(nil, proforma.DefaultPolicy())

	_, err := NewRunner(nil, nil, Options{})
	assert.Error(t, err)

	_, err = NewRunner(nil, engine, Options{Horizon: 31})
	assert.Error(t, err)

	_, err = NewRunner(nil, engine, Options{Horizon: -1})
	assert.Error(t, err)

	runner, err := NewRunner(nil, engine, Options{})
	require.NoError(t, err)
	assert.Equal(t, 10, runner.opts.Horizon)
	assert.Positive(t, runner.opts.Workers)
}

func TestRanksBefore(t *testing.T) {
	tests := []struct {
		name     string
		a        Scenario
		b        Scenario
		expected bool
	}{
		{
			name:     "Higher IRR first",
			a:        Scenario{IRR: floatPtr(0.12), EquityMultiple: 1.5},
			b:        Scenario{IRR: floatPtr(0.10), EquityMultiple: 3.0},
			expected: true,
		},
		{
			name:     "Nil IRR ranks last",
			a:        Scenario{IRR: nil, EquityMultiple: 5.0},
			b:        Scenario{IRR: floatPtr(-0.50), EquityMultiple: 0.1},
			expected: false,
		},
		{
			name:     "Solved IRR beats nil",
			a:        Scenario{IRR: floatPtr(-0.50)},
			b:        Scenario{IRR: nil},
			expected: true,
		},
		{
			name:     "Equal IRR breaks on multiple",
			a:        Scenario{IRR: floatPtr(0.10), EquityMultiple: 2.0},
			b:        Scenario{IRR: floatPtr(0.10), EquityMultiple: 1.9},
			expected: true,
		},
		{
			name:     "IRRs equal at reported precision break on multiple",
			a:        Scenario{IRR: floatPtr(0.1234), EquityMultiple: 1.9},
			b:        Scenario{IRR: floatPtr(0.1234), EquityMultiple: 2.0},
			expected: false,
		},
		{
			name:     "Both nil break on multiple",
			a:        Scenario{EquityMultiple: 0.5},
			b:        Scenario{EquityMultiple: 0.7},
			expected: false,
		},
		{
			name:     "Full tie breaks on path",
			a:        Scenario{Path: PathStabilization, ExitYear: 2},
			b:        Scenario{Path: PathSell, ExitYear: 2},
			expected: false,
		},
		{
			name:     "Full tie breaks on exit year",
			a:        Scenario{Path: PathSell, ExitYear: 2},
			b:        Scenario{Path: PathSell, ExitYear: 3},
			expected: true,
		},
		{
			name:     "Full tie breaks on refinance year",
			a:        Scenario{Path: PathRefinanceHold, ExitYear: 5, RefinanceYear: intPtr(3)},
			b:        Scenario{Path: PathRefinanceHold, ExitYear: 5, RefinanceYear: intPtr(2)},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ranksBefore(tt.a, tt.b); got != tt.expected {
				t.Errorf("ranksBefore() = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestSummarizeEmpty(t *testing.T) {
	analysis := summarize(10, nil)
	assert.True(t, analysis.Empty())
	assert.Nil(t, analysis.Best)
	assert.Empty(t, analysis.Families)
}

// Package irr solves for the internal rate of return of annual cash flows.
package irr

import (
	"fmt"
	"math"

	"github.com/iwvelando/proforma/pkg/constants"
)

// Status reports how a Solve call terminated.
type Status int

const (
	// Unsolvable means the cash flows have no sign change, or no rate above
	// -1 brings NPV near zero.
	Unsolvable Status = iota
	// Converged means NPV or the rate step fell below tolerance.
	Converged
	// BestEffort means Newton-Raphson stalled and no root could be bracketed
	// for bisection, but the last iterate nearly zeroes NPV. Rate holds that
	// iterate.
	BestEffort
)

func (s Status) String() string {
	switch s {
	case Converged:
		return "converged"
	case BestEffort:
		return "best_effort"
	default:
		return "unsolvable"
	}
}

// MarshalText renders the status by name in JSON and YAML output.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a status name written by MarshalText.
func (s *Status) UnmarshalText(text []byte) error {
	switch string(text) {
	case "converged":
		*s = Converged
	case "best_effort":
		*s = BestEffort
	case "unsolvable":
		*s = Unsolvable
	default:
		return fmt.Errorf("unknown irr status %q", text)
	}
	return nil
}

// Result is the outcome of Solve.
type Result struct {
	Rate       float64
	Status     Status
	Iterations int
}

// Value returns the solved rate, or nil when the cash flows are unsolvable.
func (r Result) Value() *float64 {
	if r.Status == Unsolvable {
		return nil
	}
	rate := r.Rate
	return &rate
}

// NPV discounts cash flows indexed by year (index 0 is undiscounted).
func NPV(rate float64, cashFlows []float64) float64 {
	npv, _ := npvAndDeriv(rate, cashFlows)
	return npv
}

// Solve finds the rate at which the NPV of cashFlows is zero using
// Newton-Raphson from a 10% initial guess. Steps that would cross the
// rate = -1 pole are halved. When Newton-Raphson stalls the root is
// bisected on [IRRMinRate, IRRMaxRate]. Cash flows without at least one
// strictly positive and one strictly negative value are Unsolvable.
func Solve(cashFlows []float64) Result {
	return solveFrom(cashFlows, constants.IRRInitialGuess)
}

func solveFrom(cashFlows []float64, guess float64) Result {
	if !hasSignChange(cashFlows) {
		return Result{Status: Unsolvable}
	}

	rate := guess
	iter := 0
	for ; iter < constants.IRRMaxIterations; iter++ {
		npv, deriv := npvAndDeriv(rate, cashFlows)
		if math.Abs(npv) < constants.IRRTolerance && rate > -1 {
			return Result{Rate: rate, Status: Converged, Iterations: iter + 1}
		}
		if deriv == 0 || math.IsNaN(deriv) || math.IsInf(deriv, 0) {
			break
		}

		step := npv / deriv
		next := rate - step
		if math.IsNaN(next) || math.IsInf(next, 0) {
			break
		}
		for halvings := 0; 1+next <= 0 && halvings < maxStepHalvings; halvings++ {
			step /= 2
			next = rate - step
		}
		if 1+next <= 0 {
			break
		}
		if math.Abs(next-rate) < constants.IRRTolerance {
			return Result{Rate: next, Status: Converged, Iterations: iter + 1}
		}
		rate = next
	}

	if root, n, ok := bisect(cashFlows); ok {
		return Result{Rate: root, Status: Converged, Iterations: iter + n}
	}
	if rate > -1 && rate <= constants.IRRMaxRate && nearRoot(rate, cashFlows) {
		return Result{Rate: rate, Status: BestEffort, Iterations: iter}
	}
	return Result{Status: Unsolvable, Iterations: iter}
}

const maxStepHalvings = 64

// nearRoot reports whether NPV at rate is negligible relative to the gross
// cash flows.
func nearRoot(rate float64, cashFlows []float64) bool {
	var gross float64
	for _, cf := range cashFlows {
		gross += math.Abs(cf)
	}
	return math.Abs(NPV(rate, cashFlows)) <= constants.IRRBestEffortTolerance*gross
}

// bisect searches [IRRMinRate, IRRMaxRate] for a sign change of NPV. It
// reports false when the bracket does not straddle a root.
func bisect(cashFlows []float64) (float64, int, bool) {
	low, high := constants.IRRMinRate, constants.IRRMaxRate
	npvLow := NPV(low, cashFlows)
	npvHigh := NPV(high, cashFlows)
	switch {
	case npvLow == 0:
		return low, 0, true
	case npvHigh == 0:
		return high, 0, true
	case math.IsNaN(npvLow) || math.IsNaN(npvHigh) || npvLow*npvHigh > 0:
		return 0, 0, false
	}

	mid := low
	for i := 0; i < constants.IRRMaxIterations; i++ {
		mid = (low + high) / 2
		npvMid := NPV(mid, cashFlows)
		if math.Abs(npvMid) < constants.IRRTolerance {
			return mid, i + 1, true
		}
		if npvLow*npvMid < 0 {
			high = mid
		} else {
			low, npvLow = mid, npvMid
		}
	}
	return mid, constants.IRRMaxIterations, true
}

// npvAndDeriv returns NPV(rate) and dNPV/drate.
//
//	NPV   = Σ CF_t / (1+r)^t
//	dNPV  = Σ −t · CF_t / (1+r)^(t+1)
func npvAndDeriv(rate float64, cashFlows []float64) (float64, float64) {
	var npv, deriv float64
	base := 1 + rate
	for t, cf := range cashFlows {
		disc := math.Pow(base, float64(t))
		npv += cf / disc
		if t > 0 {
			deriv -= float64(t) * cf / (disc * base)
		}
	}
	return npv, deriv
}

func hasSignChange(cashFlows []float64) bool {
	positive, negative := false, false
	for _, cf := range cashFlows {
		if cf > 0 {
			positive = true
		} else if cf < 0 {
			negative = true
		}
		if positive && negative {
			return true
		}
	}
	return false
}

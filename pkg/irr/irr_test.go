package irr

import (
	"encoding/json"
	"math"
	"testing"
)

func TestSolve(t *testing.T) {
	tests := []struct {
		name      string
		cashFlows []float64
		expected  float64
	}{
		{"Single period", []float64{-100, 110}, 0.10},
		{"Uneven inflows", []float64{-1000, 300, 400, 500}, 0.088963},
		{"Bond at par", []float64{-1000, 100, 100, 100, 100, 1100}, 0.10},
		{"Leveraged hold with sale", []float64{-500000, 40000, 40000, 40000, 40000, 640000}, 0.111987},
		{"Negative return", []float64{-1000, 0, 0, 800}, -0.071682},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Solve(tt.cashFlows)
			if result.Status != Converged {
				t.Fatalf("Solve() status = %s, expected converged", result.Status)
			}
			if math.Abs(result.Rate-tt.expected) > 1e-4 {
				t.Errorf("Solve() = %.6f, expected %.6f", result.Rate, tt.expected)
			}
			if math.Abs(NPV(result.Rate, tt.cashFlows)) > 1e-2 {
				t.Errorf("NPV at solved rate = %.6f, expected ~0", NPV(result.Rate, tt.cashFlows))
			}
			if result.Value() == nil {
				t.Errorf("Value() = nil for a converged result")
			}
		})
	}
}

func TestSolveRequiresSignChange(t *testing.T) {
	tests := []struct {
		name      string
		cashFlows []float64
	}{
		{"Empty", nil},
		{"All positive", []float64{100, 200, 300}},
		{"All negative", []float64{-100, -200, -300}},
		{"All zero", []float64{0, 0, 0}},
		{"Negative and zeros", []float64{-100, 0, 0}},
		{"Positive and zeros", []float64{0, 0, 50}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Solve(tt.cashFlows)
			if result.Status != Unsolvable {
				t.Errorf("Solve() status = %s, expected unsolvable", result.Status)
			}
			if result.Value() != nil {
				t.Errorf("Value() = %v, expected nil", *result.Value())
			}
		})
	}
}

func TestSolveDeepLosses(t *testing.T) {
	tests := []struct {
		name      string
		cashFlows []float64
		expected  float64
	}{
		{"One year at a 46% loss", []float64{-714000, 383100}, -0.463445},
		{"Negative year then partial recovery", []float64{-714000, -20000, 150000}, -0.555442},
		{"Five year hold with a weak sale", []float64{-714000, 5000, 5000, 5000, 5000, 120000}, -0.289650},
		{"Near total loss", []float64{-1000, 1}, -0.999},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Solve(tt.cashFlows)
			if result.Status != Converged {
				t.Fatalf("Solve() status = %s, expected converged", result.Status)
			}
			if result.Rate <= -1 {
				t.Fatalf("Solve() = %v, expected a rate above -1", result.Rate)
			}
			if math.Abs(result.Rate-tt.expected) > 1e-4 {
				t.Errorf("Solve() = %.6f, expected %.6f", result.Rate, tt.expected)
			}
		})
	}
}

func TestSolveVanishingDerivativeBisects(t *testing.T) {
	// At an astronomically large guess every discounted term underflows, so
	// the derivative is exactly zero and the root is bisected instead.
	result := solveFrom([]float64{-1000, 500, 700}, 1e300)
	if result.Status != Converged {
		t.Fatalf("solveFrom() status = %s, expected converged", result.Status)
	}
	if math.Abs(result.Rate-0.123212) > 1e-4 {
		t.Errorf("solveFrom() = %.6f, expected %.6f", result.Rate, 0.123212)
	}
}

func TestSolveGuessBelowPole(t *testing.T) {
	result := solveFrom([]float64{-714000, 383100}, -5)
	if result.Status != Converged {
		t.Fatalf("solveFrom() status = %s, expected converged", result.Status)
	}
	if math.Abs(result.Rate+0.463445) > 1e-4 {
		t.Errorf("solveFrom() = %.6f, expected %.6f", result.Rate, -0.463445)
	}
}

func TestSolveWithoutRoot(t *testing.T) {
	tests := []struct {
		name      string
		cashFlows []float64
	}{
		// 100 - 300v + 250v^2 has no real root in v = 1/(1+r).
		{"No real root", []float64{100, -300, 250}},
		// A sale that fails to repay the loan loses more than the equity.
		{"Loss beyond equity", []float64{-612000, 14770, 5770, -3410, -12774, -112757}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Solve(tt.cashFlows)
			if result.Status != Unsolvable {
				t.Errorf("Solve() status = %s (rate %v), expected unsolvable", result.Status, result.Rate)
			}
			if result.Value() != nil {
				t.Errorf("Value() = %v, expected nil", *result.Value())
			}
		})
	}
}

func TestSolveNearDoubleRootIsBestEffort(t *testing.T) {
	// NPV touches down to about 100 near r = 0 without crossing zero.
	result := Solve([]float64{1e9, -2e9, 1e9 + 100})
	if result.Status != BestEffort {
		t.Fatalf("Solve() status = %s, expected best_effort", result.Status)
	}
	if math.Abs(result.Rate) > 1e-3 {
		t.Errorf("Solve() = %v, expected a rate near 0", result.Rate)
	}
	if result.Value() == nil {
		t.Errorf("Value() should report a best-effort rate")
	}
}

func TestSolveIsDeterministic(t *testing.T) {
	cashFlows := []float64{-742000, 61234.5, 63001.25, 64800, 66650.75, 1250000}
	first := Solve(cashFlows)
	for i := 0; i < 10; i++ {
		if again := Solve(cashFlows); again != first {
			t.Fatalf("Solve() run %d = %+v, expected %+v", i, again, first)
		}
	}
}

func TestNPV(t *testing.T) {
	tests := []struct {
		name      string
		rate      float64
		cashFlows []float64
		expected  float64
	}{
		{"Zero rate sums flows", 0, []float64{-100, 60, 60}, 20},
		{"Year zero is undiscounted", 0.5, []float64{-100}, -100},
		{"Ten percent", 0.10, []float64{-100, 110}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NPV(tt.rate, tt.cashFlows); math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("NPV() = %.6f, expected %.6f", got, tt.expected)
			}
		})
	}
}

func TestStatusString(t *testing.T) {
	tests := map[Status]string{
		Converged:  "converged",
		BestEffort: "best_effort",
		Unsolvable: "unsolvable",
	}
	for status, expected := range tests {
		if status.String() != expected {
			t.Errorf("Status(%d).String() = %s, expected %s", status, status.String(), expected)
		}
		text, err := status.MarshalText()
		if err != nil || string(text) != expected {
			t.Errorf("Status(%d).MarshalText() = %s, %v", status, text, err)
		}
	}
}

func TestStatusTextRoundTrip(t *testing.T) {
	type report struct {
		Status Status `json:"status"`
	}
	for _, status := range []Status{Converged, BestEffort, Unsolvable} {
		data, err := json.Marshal(report{Status: status})
		if err != nil {
			t.Fatalf("json.Marshal(%s) error = %v", status, err)
		}
		var decoded report
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("json.Unmarshal(%s) error = %v", data, err)
		}
		if decoded.Status != status {
			t.Errorf("round trip of %s = %s, expected %s", data, decoded.Status, status)
		}
	}

	var s Status
	if err := s.UnmarshalText([]byte("diverged")); err == nil {
		t.Errorf("UnmarshalText(diverged) expected error but got none")
	}
}

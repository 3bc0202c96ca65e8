package waterfall

import (
	"errors"
	"math"
	"testing"
)

func hurdle(v float64) *float64 {
	return &v
}

func TestDistribute(t *testing.T) {
	promote := []Tier{
		{Name: "Return of capital", Hurdle: hurdle(1.0), GPShare: 0.10, LPShare: 0.90},
		{Name: "Preferred", Hurdle: hurdle(1.5), GPShare: 0.20, LPShare: 0.80},
		{Name: "Promote", GPShare: 0.30, LPShare: 0.70},
	}

	tests := []struct {
		name          string
		cashFlows     []float64
		tiers         []Tier
		equity        float64
		expectedGP    float64
		expectedLP    float64
		expectedTiers []float64
		undistributed float64
	}{
		{
			name:          "All cash inside first hurdle",
			cashFlows:     []float64{-1000, 300, 400},
			tiers:         promote,
			equity:        1000,
			expectedGP:    70,
			expectedLP:    630,
			expectedTiers: []float64{700, 0, 0},
		},
		{
			name:          "Cash crosses every tier",
			cashFlows:     []float64{-1000, 200, 2000},
			tiers:         promote,
			equity:        1000,
			expectedGP:    100 + 100 + 210,
			expectedLP:    900 + 400 + 490,
			expectedTiers: []float64{1000, 500, 700},
		},
		{
			name:          "No equity disables hurdles",
			cashFlows:     []float64{500},
			tiers:         promote,
			equity:        0,
			expectedGP:    50,
			expectedLP:    450,
			expectedTiers: []float64{500, 0, 0},
		},
		{
			name:          "Cash beyond capped tiers is undistributed",
			cashFlows:     []float64{1500},
			tiers:         promote[:1],
			equity:        1000,
			expectedGP:    100,
			expectedLP:    900,
			expectedTiers: []float64{1000},
			undistributed: 500,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Distribute(tt.cashFlows, tt.tiers, tt.equity)
			if err != nil {
				t.Fatalf("Distribute() error = %v", err)
			}
			if math.Abs(result.GPTotal-tt.expectedGP) > 1e-9 {
				t.Errorf("Distribute() GPTotal = %.2f, expected %.2f", result.GPTotal, tt.expectedGP)
			}
			if math.Abs(result.LPTotal-tt.expectedLP) > 1e-9 {
				t.Errorf("Distribute() LPTotal = %.2f, expected %.2f", result.LPTotal, tt.expectedLP)
			}
			for i, want := range tt.expectedTiers {
				if math.Abs(result.Tiers[i].Distributed-want) > 1e-9 {
					t.Errorf("Distribute() tier %d = %.2f, expected %.2f", i+1, result.Tiers[i].Distributed, want)
				}
			}
			if math.Abs(result.Undistributed-tt.undistributed) > 1e-9 {
				t.Errorf("Distribute() Undistributed = %.2f, expected %.2f", result.Undistributed, tt.undistributed)
			}
			total := tt.expectedGP + tt.expectedLP
			if total > 0 && math.Abs(result.GPPercentage-tt.expectedGP/total) > 1e-9 {
				t.Errorf("Distribute() GPPercentage = %.4f, expected %.4f", result.GPPercentage, tt.expectedGP/total)
			}
		})
	}
}

func TestDistributeNoPositiveCash(t *testing.T) {
	result, err := Distribute([]float64{-100, 0}, []Tier{{GPShare: 0.2, LPShare: 0.8}}, 100)
	if err != nil {
		t.Fatalf("Distribute() error = %v", err)
	}
	if result.TotalDistributed != 0 || result.GPPercentage != 0 {
		t.Errorf("Distribute() = %+v, expected nothing distributed", result)
	}
}

func TestDistributeInvalidTiers(t *testing.T) {
	tests := []struct {
		name string
		tier Tier
	}{
		{"Shares do not sum to one", Tier{GPShare: 0.2, LPShare: 0.7}},
		{"Negative share", Tier{GPShare: -0.2, LPShare: 1.2}},
		{"Negative hurdle", Tier{Hurdle: hurdle(-1), GPShare: 0.2, LPShare: 0.8}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Distribute([]float64{100}, []Tier{tt.tier}, 100)
			if !errors.Is(err, ErrInvalidTier) {
				t.Errorf("Distribute() error = %v, expected ErrInvalidTier", err)
			}
		})
	}
}

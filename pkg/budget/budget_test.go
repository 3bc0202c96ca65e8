package budget

import "testing"

func TestSummarize(t *testing.T) {
	tests := []struct {
		name                string
		items               []LineItem
		expectedTotal       float64
		expectedContingency float64
		expectedHard        float64
		expectedOther       float64
	}{
		{
			name:          "Empty budget",
			items:         nil,
			expectedTotal: 0,
		},
		{
			name: "Single item without contingency",
			items: []LineItem{
				{Name: "Site work", Category: "hard", Cost: 100000},
			},
			expectedTotal: 100000,
			expectedHard:  100000,
		},
		{
			name: "Mixed categories with contingency",
			items: []LineItem{
				{Name: "Shell", Category: "Hard", Cost: 1000000, ContingencyPct: 0.10},
				{Name: "Architect", Category: "soft", Cost: 150000, ContingencyPct: 0.05},
				{Name: "Permits", Category: "fees", Cost: 20000},
			},
			expectedTotal:       1277500,
			expectedContingency: 107500,
			expectedHard:        1000000,
			expectedOther:       20000,
		},
		{
			name: "Fractional contingency stays exact",
			items: []LineItem{
				{Name: "TI", Category: "hard", Cost: 0.1, ContingencyPct: 0.2},
				{Name: "TI", Category: "hard", Cost: 0.2, ContingencyPct: 0.1},
			},
			expectedTotal:       0.34,
			expectedContingency: 0.04,
			expectedHard:        0.3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Summarize(tt.items)
			if s.TotalBudget != tt.expectedTotal {
				t.Errorf("Summarize() TotalBudget = %v, expected %v", s.TotalBudget, tt.expectedTotal)
			}
			if s.Contingency != tt.expectedContingency {
				t.Errorf("Summarize() Contingency = %v, expected %v", s.Contingency, tt.expectedContingency)
			}
			if s.HardCosts != tt.expectedHard {
				t.Errorf("Summarize() HardCosts = %v, expected %v", s.HardCosts, tt.expectedHard)
			}
			if s.OtherCosts != tt.expectedOther {
				t.Errorf("Summarize() OtherCosts = %v, expected %v", s.OtherCosts, tt.expectedOther)
			}
			if s.LineItems != len(tt.items) {
				t.Errorf("Summarize() LineItems = %d, expected %d", s.LineItems, len(tt.items))
			}
		})
	}
}

func TestNormalizeCategory(t *testing.T) {
	tests := []struct {
		input    string
		expected Category
	}{
		{"hard", CategoryHard},
		{" SOFT ", CategorySoft},
		{"Land", CategoryLand},
		{"fees", CategoryOther},
		{"", CategoryOther},
	}
	for _, tt := range tests {
		if got := NormalizeCategory(tt.input); got != tt.expected {
			t.Errorf("NormalizeCategory(%q) = %s, expected %s", tt.input, got, tt.expected)
		}
	}
}

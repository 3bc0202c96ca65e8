// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/iwvelando/proforma/internal/optimizer"
	"github.com/iwvelando/proforma/internal/sensitivity"
)

// FindScenario finds a scenario by ID in the analysis scenarios.
// Returns a pointer to the scenario if found, nil otherwise.
func FindScenario(scenarios []optimizer.Scenario, id string) *optimizer.Scenario {
	for i := range scenarios {
		if scenarios[i].ID == id {
			return &scenarios[i]
		}
	}
	return nil
}

// FindSeries finds the sensitivity series for a variable.
func FindSeries(series []sensitivity.Series, variable sensitivity.Variable) *sensitivity.Series {
	for i := range series {
		if series[i].Variable == variable {
			return &series[i]
		}
	}
	return nil
}

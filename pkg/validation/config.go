// Package validation provides configuration validation utilities.
package validation

import (
	"fmt"
	"math"

	"github.com/iwvelando/proforma/pkg/constants"
	"github.com/iwvelando/proforma/pkg/datetime"
)

// ValidateLeaseDates checks whether a lease contributes revenue inside the
// analysis window that starts at analysisStart and runs for holdYears.
func ValidateLeaseDates(leaseName, startDate, endDate, analysisStart string, holdYears int) ([]string, error) {
	var warnings []string

	if endDate != "" {
		expired, err := datetime.DateBeforeDate(endDate, analysisStart)
		if err != nil {
			return nil, err
		}
		if expired {
			warnings = append(warnings, fmt.Sprintf("Lease '%s' expires before the analysis start (%s < %s)",
				leaseName, endDate, analysisStart))
		}
	}

	holdMonths := holdYears * constants.MonthsPerYear
	analysisEnd, err := datetime.OffsetDate(analysisStart, datetime.DateTimeLayout, holdMonths)
	if err != nil {
		return nil, err
	}
	monthsToStart, err := datetime.MonthsBetween(analysisStart, startDate)
	if err != nil {
		return nil, err
	}
	if monthsToStart >= holdMonths {
		warnings = append(warnings, fmt.Sprintf("Lease '%s' starts after the hold period ends (%s >= %s)",
			leaseName, startDate, analysisEnd))
	}

	return warnings, nil
}

// ValidateCapitalStack reports a capital stack whose sources do not cover
// the total uses within one currency unit.
func ValidateCapitalStack(totalSources, totalUses float64) string {
	delta := totalSources - totalUses
	if math.Abs(delta) <= constants.CurrencyTolerance {
		return ""
	}
	if delta < 0 {
		return fmt.Sprintf("Capital stack is short of total uses by %.0f (%.0f sources < %.0f uses)",
			-delta, totalSources, totalUses)
	}
	return fmt.Sprintf("Capital stack exceeds total uses by %.0f (%.0f sources > %.0f uses)",
		delta, totalSources, totalUses)
}

// ValidateInterestOnly reports an interest-only period that outlasts the hold,
// in which case no principal is repaid before exit.
func ValidateInterestOnly(ioYears, holdYears int) string {
	if ioYears > 0 && ioYears >= holdYears {
		return fmt.Sprintf("Interest-only period of %d years covers the full %d year hold - no principal is repaid before exit",
			ioYears, holdYears)
	}
	return ""
}

// ConfigValidator collects the deal details needed for the non-fatal checks.
type ConfigValidator struct {
	AnalysisStart   string
	HoldYears       int
	IOPeriodYears   int
	ExitCapRate     float64
	Leases          []LeaseConfig
	HasCapitalStack bool
	TotalSources    float64
	TotalUses       float64
}

// LeaseConfig is the subset of a lease the date checks need.
type LeaseConfig struct {
	Name      string
	StartDate string
	EndDate   string
}

// ValidateAll validates the entire configuration and returns warnings
func (cv *ConfigValidator) ValidateAll() []string {
	var warnings []string

	if cv.AnalysisStart != "" {
		for _, lease := range cv.Leases {
			leaseWarnings, err := ValidateLeaseDates(lease.Name, lease.StartDate, lease.EndDate, cv.AnalysisStart, cv.HoldYears)
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("Lease '%s' has unreadable dates: %v", lease.Name, err))
				continue
			}
			warnings = append(warnings, leaseWarnings...)
		}
	}

	if cv.HasCapitalStack {
		if warning := ValidateCapitalStack(cv.TotalSources, cv.TotalUses); warning != "" {
			warnings = append(warnings, warning)
		}
	}

	if warning := ValidateInterestOnly(cv.IOPeriodYears, cv.HoldYears); warning != "" {
		warnings = append(warnings, warning)
	}

	if cv.ExitCapRate <= 0 {
		warnings = append(warnings, "Exit cap rate is zero - the modeled sale price will be zero")
	}

	return warnings
}

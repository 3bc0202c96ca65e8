// Package loans provides loan amortization and debt service utilities.
package loans

import (
	"math"

	"github.com/iwvelando/proforma/pkg/constants"
	"go.uber.org/zap"
)

// Terms describes a loan for debt service purposes. Rates are annual
// fractions (0.055 for 5.5%).
type Terms struct {
	Name              string
	Principal         float64
	InterestRate      float64
	AmortizationYears int
	IOPeriodYears     int
}

// AnnualPayment holds the debt service split for one loan year.
type AnnualPayment struct {
	Year          int
	Payment       float64
	Interest      float64
	Principal     float64
	EndingBalance float64
	InterestOnly  bool
}

// MonthlyPayment calculates the monthly payment for a fully amortizing loan
// using the standard amortization formula. It returns 0 when any input is not
// strictly positive.
func MonthlyPayment(principal, annualRate float64, amortYears int) float64 {
	if principal <= 0 || annualRate <= 0 || amortYears <= 0 {
		return 0
	}

	periodicRate := annualRate / constants.MonthsPerYear
	termMonths := float64(amortYears * constants.MonthsPerYear)
	power := math.Pow(1.00+periodicRate, termMonths)
	discountFactor := (power - 1.00) / power
	return principal * periodicRate / discountFactor
}

// AnnualDebtService returns twelve monthly amortizing payments.
func AnnualDebtService(principal, annualRate float64, amortYears int) float64 {
	return MonthlyPayment(principal, annualRate, amortYears) * constants.MonthsPerYear
}

// InterestOnlyDebtService returns one year of interest on the principal.
func InterestOnlyDebtService(principal, annualRate float64) float64 {
	if principal <= 0 || annualRate <= 0 {
		return 0
	}
	return principal * annualRate
}

// RemainingBalance returns the outstanding principal after yearsElapsed years
// of amortizing payments. A zero rate reduces principal on a straight line.
// The result is never negative.
func RemainingBalance(principal, annualRate float64, amortYears, yearsElapsed int) float64 {
	if principal <= 0 {
		return 0
	}
	if yearsElapsed <= 0 || amortYears <= 0 {
		return principal
	}
	if yearsElapsed >= amortYears {
		return 0
	}

	if annualRate <= 0 {
		return math.Max(0, principal*(1-float64(yearsElapsed)/float64(amortYears)))
	}

	periodicRate := annualRate / constants.MonthsPerYear
	months := float64(yearsElapsed * constants.MonthsPerYear)
	growth := math.Pow(1+periodicRate, months)
	payment := MonthlyPayment(principal, annualRate, amortYears)
	balance := principal*growth - payment*(growth-1)/periodicRate
	return math.Max(0, balance)
}

// ScheduleGenerator builds year-by-year debt schedules.
type ScheduleGenerator struct {
	logger *zap.Logger
}

// NewScheduleGenerator creates a new generator instance
func NewScheduleGenerator(logger *zap.Logger) *ScheduleGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleGenerator{logger: logger}
}

// DebtServiceForYear returns the debt service owed in loan year y (1-based).
// Years inside the interest-only period pay interest only; every later year
// pays the same amortizing payment computed once from the full amortization
// term.
func DebtServiceForYear(terms Terms, year int) float64 {
	if year <= terms.IOPeriodYears {
		return InterestOnlyDebtService(terms.Principal, terms.InterestRate)
	}
	return AnnualDebtService(terms.Principal, terms.InterestRate, terms.AmortizationYears)
}

// BalanceAfterYear returns the balance owed at the end of loan year y. The
// interest-only period does not reduce principal.
func BalanceAfterYear(terms Terms, year int) float64 {
	amortizingYears := year - terms.IOPeriodYears
	if amortizingYears < 0 {
		amortizingYears = 0
	}
	return RemainingBalance(terms.Principal, terms.InterestRate, terms.AmortizationYears, amortizingYears)
}

// GenerateAnnualSchedule returns one row per loan year for the given number
// of years.
func (g *ScheduleGenerator) GenerateAnnualSchedule(terms Terms, years int) []AnnualPayment {
	if years <= 0 {
		return nil
	}

	schedule := make([]AnnualPayment, 0, years)
	previousBalance := math.Max(0, terms.Principal)
	for year := 1; year <= years; year++ {
		row := AnnualPayment{
			Year:         year,
			Payment:      DebtServiceForYear(terms, year),
			InterestOnly: year <= terms.IOPeriodYears,
		}
		row.EndingBalance = BalanceAfterYear(terms, year)
		row.Principal = previousBalance - row.EndingBalance
		row.Interest = row.Payment - row.Principal
		if row.Interest < 0 {
			row.Interest = 0
		}
		schedule = append(schedule, row)
		previousBalance = row.EndingBalance
	}

	g.logger.Debug("generated annual debt schedule",
		zap.String("op", "loans.GenerateAnnualSchedule"),
		zap.String("loan", terms.Name),
		zap.Float64("principal", terms.Principal),
		zap.Int("years", years),
		zap.Float64("endingBalance", previousBalance),
	)

	return schedule
}

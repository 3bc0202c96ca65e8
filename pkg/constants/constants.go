// Package constants provides shared constants for the proforma application.
package constants

// DateTimeLayout is the format expected for lease and analysis dates in deal
// files and is also the output date format.
const DateTimeLayout = "2006-01"

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// DefaultExpenseInflation is the annual growth applied to fixed operating
	// expenses after year one.
	DefaultExpenseInflation = 0.02

	// DSCRSentinel is reported as the debt service coverage ratio when annual
	// debt service is zero.
	DSCRSentinel = 999.0

	// CurrencyPrecision is the number of decimal places kept on currency outputs.
	CurrencyPrecision = 0

	// RatioPrecision is the number of decimal places kept on ratio outputs.
	RatioPrecision = 4
)

// Hold period limits
const (
	// MinHoldYears is the shortest supported hold period.
	MinHoldYears = 1

	// MaxHoldYears is the longest supported hold period.
	MaxHoldYears = 30

	// DefaultOptimizerHorizon is the last exit year searched by the exit
	// scenario optimizer.
	DefaultOptimizerHorizon = 10

	// StabilizationYearsAfterIO is the number of years after the end of the
	// interest-only period at which a stabilization sale is modeled.
	StabilizationYearsAfterIO = 2
)

// IRR solver settings
const (
	// IRRInitialGuess is the starting rate for Newton-Raphson.
	IRRInitialGuess = 0.10

	// IRRMaxIterations bounds the Newton-Raphson loop.
	IRRMaxIterations = 100

	// IRRTolerance is the convergence tolerance on both NPV and the rate step.
	IRRTolerance = 1e-4

	// IRRMinRate and IRRMaxRate bracket the bisection fallback.
	IRRMinRate = -0.9999
	IRRMaxRate = 10.0

	// IRRBestEffortTolerance is the largest NPV, relative to the gross cash
	// flows, accepted from a stalled solve.
	IRRBestEffortTolerance = 1e-6
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"

	// OutputFormatYAML is the YAML output format
	OutputFormatYAML = "yaml"

	// OutputFormatXLSX is the Excel workbook output format
	OutputFormatXLSX = "xlsx"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default deal file name
	DefaultConfigFile = "deal.yaml"
)

// Validation constants
const (
	// CurrencyTolerance is the tolerance for currency comparisons (1 unit)
	CurrencyTolerance = 1.0

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0
)

// Package config defines the deal file structures and includes functions for
// loading, normalizing and validating them.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/iwvelando/proforma/internal/proforma"
	"github.com/iwvelando/proforma/pkg/budget"
	"github.com/iwvelando/proforma/pkg/constants"
	"github.com/iwvelando/proforma/pkg/datetime"
	"github.com/iwvelando/proforma/pkg/rentroll"
	"github.com/iwvelando/proforma/pkg/validation"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ErrInvalidConfiguration is returned when a deal file fails validation.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// DateTimeLayout is the format expected in deal files and is also the output
// date format.
const DateTimeLayout = constants.DateTimeLayout

// EnvPrefix namespaces environment overrides, e.g. PROFORMA_LOGGING_LEVEL.
const EnvPrefix = "PROFORMA"

// Configuration holds everything a deal file can describe.
type Configuration struct {
	Name          string                   `yaml:"name,omitempty" mapstructure:"name"`
	Deal          proforma.Assumptions     `yaml:"deal" mapstructure:"deal"`
	AnalysisStart string                   `yaml:"analysisStart,omitempty" mapstructure:"analysis_start"`
	Leases        []rentroll.Lease         `yaml:"leases,omitempty" mapstructure:"leases" validate:"dive"`
	Budget        []budget.LineItem        `yaml:"budget,omitempty" mapstructure:"budget" validate:"dive"`
	CapitalStack  []proforma.CapitalSource `yaml:"capitalStack,omitempty" mapstructure:"capital_stack" validate:"dive"`
	DebtSizing    DebtSizingConfig         `yaml:"debtSizing,omitempty" mapstructure:"debt_sizing"`
	Optimizer     OptimizerConfig          `yaml:"optimizer,omitempty" mapstructure:"optimizer"`
	Sensitivity   map[string][]float64     `yaml:"sensitivity,omitempty" mapstructure:"sensitivity"`
	Waterfall     *WaterfallConfig         `yaml:"waterfall,omitempty" mapstructure:"waterfall"`
	Logging       LoggingConfig            `yaml:"logging,omitempty" mapstructure:"logging"`
	Output        OutputConfig             `yaml:"output,omitempty" mapstructure:"output"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty" mapstructure:"level"`            // debug, info, warn, error
	Format     string `yaml:"format,omitempty" mapstructure:"format"`          // json, console
	OutputFile string `yaml:"outputFile,omitempty" mapstructure:"output_file"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty" mapstructure:"format"` // pretty, csv, json, yaml, xlsx
	File   string `yaml:"file,omitempty" mapstructure:"file"`
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// deal file there. A .env file next to the deal file is loaded first so its
// variables can override deal file keys.
func LoadConfiguration(configPath string) (*Configuration, error) {
	envFile := filepath.Join(filepath.Dir(configPath), ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error reading env file %s: %w", envFile, err)
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %w", err)
	}

	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}

	return &configuration, nil
}

// Normalize applies defaults and canonical values before validation.
func (c *Configuration) Normalize() {
	if c == nil {
		return
	}
	if c.Deal.Exit.HoldYears < constants.MinHoldYears {
		c.Deal.Exit.HoldYears = constants.MinHoldYears
	}
	if c.Deal.Exit.HoldYears > constants.MaxHoldYears {
		c.Deal.Exit.HoldYears = constants.MaxHoldYears
	}
	c.AnalysisStart = strings.TrimSpace(c.AnalysisStart)
	for i := range c.CapitalStack {
		c.CapitalStack[i].Kind = proforma.SourceKind(strings.ToUpper(strings.TrimSpace(string(c.CapitalStack[i].Kind))))
	}
	for i := range c.Budget {
		c.Budget[i].Category = string(budget.NormalizeCategory(c.Budget[i].Category))
	}

	c.DebtSizing.Normalize()
	c.Optimizer.Normalize()
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Output.Format = strings.ToLower(strings.TrimSpace(c.Output.Format))
	if c.Output.Format == "" {
		c.Output.Format = constants.OutputFormatPretty
	}
}

// Validate normalizes the configuration and returns an error wrapping
// ErrInvalidConfiguration when the deal cannot be modeled.
func (c *Configuration) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: configuration cannot be nil", ErrInvalidConfiguration)
	}

	c.Normalize()

	if err := validator.New().Struct(c); err != nil {
		var fieldErrors validator.ValidationErrors
		if errors.As(err, &fieldErrors) {
			problems := make([]string, len(fieldErrors))
			for i, fe := range fieldErrors {
				problems[i] = fmt.Sprintf("%s failed %s", fe.Namespace(), describeTag(fe))
			}
			return fmt.Errorf("%w: %s", ErrInvalidConfiguration, strings.Join(problems, "; "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}

	financing := c.Deal.Financing
	if financing.IOPeriodYears > financing.AmortizationYears {
		return fmt.Errorf("%w: interest-only period of %d years exceeds amortization of %d years",
			ErrInvalidConfiguration, financing.IOPeriodYears, financing.AmortizationYears)
	}
	if equity := c.equityRequired(); equity <= 0 {
		return fmt.Errorf("%w: deal requires no equity (%.2f); reduce the LTV below 100%%",
			ErrInvalidConfiguration, equity)
	}
	if c.AnalysisStart != "" {
		if _, err := datetime.MonthIndex(c.AnalysisStart); err != nil {
			return fmt.Errorf("%w: analysis start: %v", ErrInvalidConfiguration, err)
		}
	}
	if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}
	if err := c.Optimizer.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}
	if _, err := c.SensitivityRanges(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}
	if err := c.Waterfall.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}

	return nil
}

func describeTag(fe validator.FieldError) string {
	if fe.Param() == "" {
		return fe.Tag()
	}
	return fe.Tag() + "=" + fe.Param()
}

// totalUses mirrors the acquisition basis: purchase, closing costs,
// development budget and loan fees.
func (c *Configuration) totalUses() (totalBasis, loanAmount float64) {
	deal := c.Deal
	basisBeforeDebt := deal.Acquisition.PurchasePrice*(1+deal.Acquisition.ClosingCostsPct) +
		budget.Summarize(c.Budget).TotalBudget
	loanAmount = basisBeforeDebt * deal.Financing.LtvPct
	return basisBeforeDebt + loanAmount*deal.Financing.LoanFeePct, loanAmount
}

func (c *Configuration) equityRequired() float64 {
	totalBasis, loanAmount := c.totalUses()
	return totalBasis - loanAmount
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	cv := validation.ConfigValidator{
		AnalysisStart:   c.AnalysisStart,
		HoldYears:       c.Deal.Exit.HoldYears,
		IOPeriodYears:   c.Deal.Financing.IOPeriodYears,
		ExitCapRate:     c.Deal.Exit.ExitCapRate,
		HasCapitalStack: len(c.CapitalStack) > 0,
	}
	for i, lease := range c.Leases {
		cv.Leases = append(cv.Leases, validation.LeaseConfig{
			Name:      leaseName(lease, i),
			StartDate: lease.StartDate,
			EndDate:   lease.EndDate,
		})
	}
	for _, source := range c.CapitalStack {
		cv.TotalSources += source.Amount
	}
	cv.TotalUses, _ = c.totalUses()

	warnings := cv.ValidateAll()
	if c.Waterfall != nil && !c.Waterfall.hasResidualTier() {
		warnings = append(warnings, "Waterfall has no tier without a hurdle - cash above the last hurdle stays undistributed")
	}
	return warnings
}

func leaseName(lease rentroll.Lease, index int) string {
	switch {
	case lease.Unit != "" && lease.Tenant != "":
		return lease.Unit + " (" + lease.Tenant + ")"
	case lease.Unit != "":
		return lease.Unit
	case lease.Tenant != "":
		return lease.Tenant
	}
	return fmt.Sprintf("lease %d", index+1)
}

// ToInput converts the deal file into engine input.
func (c *Configuration) ToInput() proforma.Input {
	return proforma.Input{
		Assumptions:   c.Deal,
		Leases:        c.Leases,
		Budget:        c.Budget,
		CapitalStack:  c.CapitalStack,
		AnalysisStart: c.AnalysisStart,
	}
}

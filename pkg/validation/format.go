// Package validation provides common validation utilities.
package validation

import (
	"fmt"
	"strings"

	"github.com/iwvelando/proforma/pkg/constants"
)

// SupportedOutputFormats lists the output formats in the order they are
// reported in error messages.
var SupportedOutputFormats = []string{
	constants.OutputFormatPretty,
	constants.OutputFormatCSV,
	constants.OutputFormatJSON,
	constants.OutputFormatYAML,
	constants.OutputFormatXLSX,
}

// ValidateOutputFormat checks if the output format is one of the supported formats.
func ValidateOutputFormat(format string) error {
	for _, supported := range SupportedOutputFormats {
		if format == supported {
			return nil
		}
	}
	return fmt.Errorf("expected output format of %s, got %s",
		strings.Join(SupportedOutputFormats, ", "), format)
}

// ValidateOutputTarget checks that formats which cannot be streamed to
// stdout are given a file.
func ValidateOutputTarget(format, outputFile string) error {
	if format == constants.OutputFormatXLSX && strings.TrimSpace(outputFile) == "" {
		return fmt.Errorf("output format %s requires an output file", format)
	}
	return nil
}

// Package format renders engine values as display strings.
package format

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Currency returns a whole-unit currency string with a dollar sign and
// thousands separators (e.g., "-$1,234,568").
func Currency(amount float64) string {
	formatted := formatPositiveCurrency(math.Abs(amount))
	if amount < 0 && formatted != "0" {
		return "-$" + formatted
	}
	return "$" + formatted
}

// NumericCurrency returns a whole-unit currency string without a currency
// symbol but with separators (e.g., "-1,234,568").
func NumericCurrency(amount float64) string {
	formatted := formatPositiveCurrency(math.Abs(amount))
	if amount < 0 && formatted != "0" {
		return "-" + formatted
	}
	return formatted
}

// Percent renders a fraction as a percentage with two decimals ("12.34%").
// A nil value renders as "n/a".
func Percent(value *float64) string {
	if value == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f%%", *value*100)
}

// Multiple renders an equity multiple or coverage ratio ("1.85x").
func Multiple(value float64) string {
	return fmt.Sprintf("%.2fx", value)
}

func formatPositiveCurrency(value float64) string {
	return printer.Sprintf("%.0f", value)
}

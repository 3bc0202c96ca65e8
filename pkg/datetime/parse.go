// Package datetime provides month-granularity date utilities.
package datetime

import (
	"fmt"
	"strings"
	"time"

	"github.com/iwvelando/proforma/pkg/constants"
)

const (
	// DateTimeLayout is the format expected in deal files and is also the
	// output date format.
	DateTimeLayout = constants.DateTimeLayout
)

// OffsetDate returns the string-formatted date offset by the given number of
// months relative to the given date.
func OffsetDate(date, layout string, months int) (string, error) {
	t, err := time.Parse(layout, date)
	if err != nil {
		return date, err
	}
	return t.AddDate(0, months, 0).Format(layout), nil
}

// MonthIndex parses a YYYY-MM date into an absolute month count so that
// month arithmetic reduces to integer subtraction.
func MonthIndex(date string) (int, error) {
	value := strings.TrimSpace(date)
	if value == "" {
		return 0, fmt.Errorf("month value cannot be empty")
	}
	t, err := time.Parse(DateTimeLayout, value)
	if err != nil {
		return 0, fmt.Errorf("invalid month %q: %w", date, err)
	}
	return t.Year()*constants.MonthsPerYear + int(t.Month()) - 1, nil
}

// MonthsBetween returns the number of months from start to end. The result
// is negative when end precedes start.
func MonthsBetween(start, end string) (int, error) {
	startIndex, err := MonthIndex(start)
	if err != nil {
		return 0, err
	}
	endIndex, err := MonthIndex(end)
	if err != nil {
		return 0, err
	}
	return endIndex - startIndex, nil
}

// DateBeforeDate returns true if firstDate is strictly before secondDate.
func DateBeforeDate(firstDate string, secondDate string) (bool, error) {
	firstDateT, err := time.Parse(DateTimeLayout, firstDate)
	if err != nil {
		return false, err
	}
	secondDateT, err := time.Parse(DateTimeLayout, secondDate)
	if err != nil {
		return false, err
	}
	return firstDateT.Before(secondDateT), nil
}

package format

import "testing"

func TestCurrency(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		expected string
	}{
		{"Zero", 0, "$0"},
		{"Small", 999, "$999"},
		{"Thousands", 1234, "$1,234"},
		{"Millions rounded", 1234567.6, "$1,234,568"},
		{"Negative", -45000, "-$45,000"},
		{"Negative rounds to zero", -0.2, "$0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Currency(tt.amount); got != tt.expected {
				t.Errorf("Currency(%v) = %q, expected %q", tt.amount, got, tt.expected)
			}
		})
	}
}

func TestNumericCurrency(t *testing.T) {
	if got := NumericCurrency(-1234567); got != "-1,234,567" {
		t.Errorf("NumericCurrency(-1234567) = %q, expected %q", got, "-1,234,567")
	}
	if got := NumericCurrency(12); got != "12" {
		t.Errorf("NumericCurrency(12) = %q, expected %q", got, "12")
	}
}

func TestPercent(t *testing.T) {
	v := 0.12345
	if got := Percent(&v); got != "12.35%" && got != "12.34%" {
		t.Errorf("Percent(%v) = %q", v, got)
	}
	w := 0.0825
	if got := Percent(&w); got != "8.25%" {
		t.Errorf("Percent(%v) = %q, expected %q", w, got, "8.25%")
	}
	if got := Percent(nil); got != "n/a" {
		t.Errorf("Percent(nil) = %q, expected %q", got, "n/a")
	}
}

func TestMultiple(t *testing.T) {
	if got := Multiple(1.8549); got != "1.85x" {
		t.Errorf("Multiple(1.8549) = %q, expected %q", got, "1.85x")
	}
	if got := Multiple(999); got != "999.00x" {
		t.Errorf("Multiple(999) = %q, expected %q", got, "999.00x")
	}
}

// Package normalize converts raw receipt strings into canonical values.
package normalize

import (
	"regexp"

	"github.com/shopspring/decimal"
)

var reNonAmount = regexp.MustCompile(`[^\d.]`)

// Amount strips everything but digits and '.' and parses the rest.
// Unparseable input yields 0.
func Amount(raw string) float64 {
	v, _ := AmountOK(raw)
	return v
}

// AmountOK is Amount that also reports whether parsing succeeded.
func AmountOK(raw string) (float64, bool) {
	cleaned := reNonAmount.ReplaceAllString(raw, "")
	if cleaned == "" {
		return 0, false
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, false
	}
	f, _ := d.Float64()
	return f, true
}

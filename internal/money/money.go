// Package money centralizes decimal conversions for invoice amounts. All
// amounts in the portal's XML and JSON are decimal strings; converting through
// shopspring/decimal keeps totals reconciliation free of float drift.
package money

import (
	"github.com/shopspring/decimal"
)

// Zero is decimal zero
var Zero = decimal.Zero

// FromString parses a decimal amount from its source string
func FromString(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}

// MustFromString parses a decimal amount, panics on error (test fixtures only)
func MustFromString(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Sum sums a slice of decimals
func Sum(values []decimal.Decimal) decimal.Decimal {
	result := Zero
	for _, v := range values {
		result = result.Add(v)
	}
	return result
}

// RoundGTQ rounds to 2 places (quetzal cents)
func RoundGTQ(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

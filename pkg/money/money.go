// Package money converts between integer cents and display amounts.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// FromCents converts an integer cent amount to a decimal major-unit amount.
func FromCents(cents int64) decimal.Decimal {
	return decimal.NewFromInt(cents).Shift(-2)
}

// ToCents converts a decimal major-unit amount to integer cents,
// rounding half away from zero.
func ToCents(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

// Format renders a cent amount with its currency code, e.g. "1250.00 USD".
func Format(cents int64, currency string) string {
	code := strings.ToUpper(strings.TrimSpace(currency))
	if code == "" {
		code = "USD"
	}
	return fmt.Sprintf("%s %s", FromCents(cents).StringFixed(2), code)
}

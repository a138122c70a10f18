package message

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sirosfoundation/go-emandates/pkg/emandate"
)

// MaxAmountDigits is the largest number of digits a MaxAmount may have
const MaxAmountDigits = 11

// CheckMaxAmount applies the MaxAmount rules of the instrument. A nil amount
// is always accepted.
func CheckMaxAmount(inst emandate.Instrumentation, amount *decimal.Decimal) error {
	if amount == nil {
		return nil
	}
	if inst != emandate.B2B {
		return ErrMaxAmountNotAllowed
	}
	if amount.IsZero() {
		return ErrMaxAmountZero
	}
	if amount.IsNegative() {
		return fmt.Errorf("%w: MaxAmount must be positive", ErrValidation)
	}
	if !amount.Equal(amount.Truncate(2)) {
		return ErrMaxAmountPrecision
	}
	digits := strings.Replace(amount.String(), ".", "", 1)
	if len(digits) > MaxAmountDigits {
		return ErrMaxAmountDigits
	}
	return nil
}

// FormatAmount renders an amount with two decimals.
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

// ParseAmount parses an amount from a document. An empty value is zero.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

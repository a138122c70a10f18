package message

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is returned when a request breaks a business rule
	ErrValidation = errors.New("request validation failed")

	ErrMaxAmountNotAllowed = fmt.Errorf("%w: MaxAmount is only allowed for B2B", ErrValidation)
	ErrMaxAmountZero       = fmt.Errorf("%w: MaxAmount can't be 0", ErrValidation)
	ErrMaxAmountPrecision  = fmt.Errorf("%w: no more than 2 decimal places allowed for MaxAmount", ErrValidation)
	ErrMaxAmountDigits     = fmt.Errorf("%w: MaxAmount should have maximum 11 digits", ErrValidation)
	ErrExpirationPeriod    = fmt.Errorf("%w: ExpirationPeriod should be less than 7 days", ErrValidation)
	ErrMissingField        = fmt.Errorf("%w: required field is empty", ErrValidation)
)

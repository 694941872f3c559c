package orchestrators

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"studio/internal/domain/day"
	"studio/internal/domain/errs"
)

var inputValidator = validator.New(validator.WithRequiredStructEnabled())

// validateInput runs the struct tags on an orchestrator input.
// POST: Returns nil, or an errs.ErrValidation naming the first failing field
func validateInput(input any) error {
	err := inputValidator.Struct(input)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		fe := ve[0]
		if fe.Param() != "" {
			return fmt.Errorf("%w: %s failed %s=%s", errs.ErrValidation, fe.Field(), fe.Tag(), fe.Param())
		}
		return fmt.Errorf("%w: %s failed %s", errs.ErrValidation, fe.Field(), fe.Tag())
	}
	return fmt.Errorf("%w: %v", errs.ErrValidation, err)
}

// parseAmount parses a decimal money string.
func parseAmount(field, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %s must be a decimal amount", errs.ErrValidation, field)
	}
	return d, nil
}

// parseOptionalDay parses an optional ISO date; "" yields nil.
func parseOptionalDay(s string) (*time.Time, error) {
	return day.ParseOptional(strings.TrimSpace(s))
}

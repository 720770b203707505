package tax

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	validator "github.com/go-playground/validator/v10"

	"github.com/noah-isme/taxy/internal/common"
)

// ErrInvalidIncome is returned for amounts that are not finite non-negative numbers.
var ErrInvalidIncome = errors.New("invalid income amount")

// CalculateRequest is the validated input of a calculation.
type CalculateRequest struct {
	Regime string  `validate:"required"`
	Income float64 `validate:"gte=0"`
}

func newValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

// ParseIncome converts a raw path segment to an income amount.
func ParseIncome(raw string) (float64, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, invalidIncome(raw, "amount is required")
	}
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, invalidIncome(raw, "amount must be a number")
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, invalidIncome(raw, "amount must be finite")
	}
	if v < 0 {
		return 0, invalidIncome(raw, "amount must not be negative")
	}
	return v, nil
}

func invalidIncome(raw, reason string) *common.AppError {
	appErr := common.NewAppError("INVALID_AMOUNT", reason, http.StatusBadRequest, fmt.Errorf("%w: %q", ErrInvalidIncome, raw))
	appErr.Details = map[string]any{"amount": raw}
	return appErr
}

func validationError(err error) *common.AppError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[strings.ToLower(fe.Field())] = fe.Tag()
		}
		code := "INVALID_REQUEST"
		base := err
		if _, ok := fields["income"]; ok {
			code = "INVALID_AMOUNT"
			base = fmt.Errorf("%w: %v", ErrInvalidIncome, err)
		}
		appErr := common.NewAppError(code, "request validation failed", http.StatusBadRequest, base)
		appErr.Details = fields
		return appErr
	}
	return common.NewAppError("INVALID_REQUEST", "request validation failed", http.StatusBadRequest, err)
}

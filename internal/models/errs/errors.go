package errs

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Common sentinel errors.
var (
	ErrNotFound           = errors.New("not found")
	ErrDataConflict       = errors.New("data conflict")
	ErrRateLimit          = errors.New("rate limit")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidRequest     = errors.New("invalid request")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrDailyLimitExceeded = errors.New("daily limit exceeded")
)

// Type just for marshalling purpose.
// Should only be used immediately before marshalling.
type JSON struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Code returns the stable machine-readable code for the given error.
// Clients dispatch on these; the message text may change, the codes must not.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return "INVALID_CREDENTIALS"
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrInvalidAmount):
		return "INVALID_AMOUNT"
	case errors.Is(err, ErrInsufficientFunds):
		return "INSUFFICIENT_FUNDS"
	case errors.Is(err, ErrDailyLimitExceeded):
		return "DAILY_LIMIT_EXCEEDED"
	case errors.Is(err, ErrDataConflict):
		return "CONFLICT"
	case errors.Is(err, ErrRateLimit):
		return "RATE_LIMITED"
	case errors.Is(err, ErrInvalidRequest):
		return "INVALID_REQUEST"
	}
	return "INTERNAL_ERROR"
}

// Let users know which required request parameter is not provided.
type RequiredJSONBodyParamError struct {
	ParamName string
}

func (e *RequiredJSONBodyParamError) Error() string {
	return fmt.Sprintf("JSON body argument %q is required, but not found", e.ParamName)
}

func (e *RequiredJSONBodyParamError) Unwrap() error {
	return ErrInvalidRequest
}

// InvalidAmountError reports why a requested amount was rejected.
type InvalidAmountError struct {
	Reason string
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("invalid amount: %s", e.Reason)
}

func (e *InvalidAmountError) Unwrap() error {
	return ErrInvalidAmount
}

// DailyLimitExceededError carries how much of the daily limit is still
// available, so the client can show it to the cardholder.
type DailyLimitExceededError struct {
	RemainingCents int64
}

func (e *DailyLimitExceededError) Error() string {
	return fmt.Sprintf("would exceed daily limit, remaining: $%s", Dollars(e.RemainingCents))
}

func (e *DailyLimitExceededError) Unwrap() error {
	return ErrDailyLimitExceeded
}

// Dollars renders an amount of minor units as a decimal dollar figure
// for human-facing messages. All arithmetic stays in integer cents.
func Dollars(cents int64) string {
	return decimal.NewFromInt(cents).Div(decimal.NewFromInt(100)).String()
}

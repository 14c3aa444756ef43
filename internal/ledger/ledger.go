// Package ledger implements the account balance rules: the daily-limit
// rollover, withdrawal validation and deposit. It is pure computation over
// an account record; loading and persisting the record is the caller's job.
package ledger

import (
	"fmt"
	"time"

	"atm-service/internal/models/account"
	"atm-service/internal/models/errs"
)

// Limits are the withdrawal rules applied to every account. They are
// injected from configuration, never process-wide globals.
type Limits struct {
	DailyLimitCents          int64
	MinWithdrawalCents       int64
	WithdrawalIncrementCents int64
}

// DateUTC truncates t to its UTC calendar date (midnight UTC).
// All daily-window comparisons operate on values produced by it.
func DateUTC(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Rollover resets the daily-withdrawn counter when a new calendar day has
// begun since the last withdrawal. It reports whether the account changed,
// so callers can skip a write when nothing moved. Applying it twice for
// the same today is a no-op the second time.
func Rollover(a *account.Account, today time.Time) bool {
	today = DateUTC(today)
	if a.LastWithdrawalDate != nil && !a.LastWithdrawalDate.Before(today) {
		return false
	}
	a.DailyWithdrawnCents = 0
	a.LastWithdrawalDate = &today
	return true
}

// Withdraw debits amountCents from the account. Checks run in a fixed
// order, first failure wins: rollover, minimum, increment, balance, daily
// limit. On success balance, daily-withdrawn and the withdrawal date all
// move together; on failure the rollover may still have changed the account.
func Withdraw(a *account.Account, amountCents int64, today time.Time, limits Limits) error {
	Rollover(a, today)

	if amountCents < limits.MinWithdrawalCents {
		return &errs.InvalidAmountError{
			Reason: fmt.Sprintf("minimum withdrawal is $%s", errs.Dollars(limits.MinWithdrawalCents)),
		}
	}

	if amountCents%limits.WithdrawalIncrementCents != 0 {
		return &errs.InvalidAmountError{
			Reason: fmt.Sprintf("must be a multiple of $%s", errs.Dollars(limits.WithdrawalIncrementCents)),
		}
	}

	if amountCents > a.BalanceCents {
		return errs.ErrInsufficientFunds
	}

	if a.DailyWithdrawnCents+amountCents > limits.DailyLimitCents {
		return &errs.DailyLimitExceededError{
			RemainingCents: limits.DailyLimitCents - a.DailyWithdrawnCents,
		}
	}

	day := DateUTC(today)
	a.BalanceCents -= amountCents
	a.DailyWithdrawnCents += amountCents
	a.LastWithdrawalDate = &day

	return nil
}

// Deposit credits amountCents to the account. Deposits are unbounded and
// do not interact with the daily window.
func Deposit(a *account.Account, amountCents int64) error {
	if amountCents <= 0 {
		return &errs.InvalidAmountError{Reason: "must be positive"}
	}

	a.BalanceCents += amountCents

	return nil
}

package account

import "time"

// Account is the single stateful ledger entity. All amounts are int64
// minor units (cents); floats never touch balances.
//
// LastWithdrawalDate is the UTC calendar date of the most recent
// withdrawal, nil if the account has never been debited. It anchors the
// daily withdrawal window together with DailyWithdrawnCents.
type Account struct {
	LastWithdrawalDate  *time.Time `db:"last_withdrawal_date" json:"last_withdrawal_date"`
	BalanceCents        int64      `db:"balance_cents" json:"balance_cents"`
	DailyWithdrawnCents int64      `db:"daily_withdrawn_cents" json:"daily_withdrawn_cents"`
	ID                  int        `db:"id" json:"id"`
	UserID              int        `db:"user_id" json:"user_id"`
}

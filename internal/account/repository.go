package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"atm-service/internal/models/account"
	"atm-service/internal/models/errs"
	"atm-service/pkg/logger"
	trmsql "github.com/avito-tech/go-transaction-manager/drivers/sql/v2"
)

type Repository interface {
	// GetAccountByUserID loads the account and, when called inside a
	// transaction, locks its row until the transaction ends.
	GetAccountByUserID(ctx context.Context, userID int) (*account.Account, error)
	// SaveAccount persists balance, daily-withdrawn and the withdrawal
	// date in one statement; the fields never update separately.
	SaveAccount(ctx context.Context, acc *account.Account) error
	CreateAccount(ctx context.Context, userID int, initialBalanceCents int64) error
}

type Repo struct {
	db     *sql.DB
	getter *trmsql.CtxGetter
	logger logger.Logger
}

func NewRepository(db *sql.DB, getter *trmsql.CtxGetter, logger logger.Logger) (*Repo, error) {
	if db == nil {
		return nil, errors.New("nil dependency: database")
	}
	if getter == nil {
		return nil, errors.New("nil dependency: transaction getter")
	}

	return &Repo{db: db, getter: getter, logger: logger}, nil
}

var _ Repository = (*Repo)(nil)

func (r *Repo) GetAccountByUserID(ctx context.Context, userID int) (*account.Account, error) {
	const query = `
		SELECT id, user_id, balance_cents, daily_withdrawn_cents, last_withdrawal_date
		FROM accounts WHERE user_id = $1
		FOR UPDATE
	`

	acc := new(account.Account)

	err := r.getter.DefaultTrOrDB(ctx, r.db).QueryRowContext(ctx, query, userID).Scan(
		&acc.ID,
		&acc.UserID,
		&acc.BalanceCents,
		&acc.DailyWithdrawnCents,
		&acc.LastWithdrawalDate,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}

	return acc, nil
}

func (r *Repo) SaveAccount(ctx context.Context, acc *account.Account) error {
	const query = `
		UPDATE accounts SET
			balance_cents = $1,
			daily_withdrawn_cents = $2,
			last_withdrawal_date = $3
		WHERE id = $4
	`

	res, err := r.getter.DefaultTrOrDB(ctx, r.db).ExecContext(ctx, query,
		acc.BalanceCents,
		acc.DailyWithdrawnCents,
		acc.LastWithdrawalDate,
		acc.ID,
	)
	if err != nil {
		return fmt.Errorf("save account: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save account: %w", err)
	}
	if affected == 0 {
		return errs.ErrNotFound
	}

	return nil
}

func (r *Repo) CreateAccount(ctx context.Context, userID int, initialBalanceCents int64) error {
	const query = "INSERT INTO accounts (user_id, balance_cents) VALUES ($1, $2)"

	_, err := r.getter.DefaultTrOrDB(ctx, r.db).ExecContext(ctx, query, userID, initialBalanceCents)
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}

	return nil
}

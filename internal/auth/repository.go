package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"atm-service/internal/models/errs"
	"atm-service/internal/models/user"
	"atm-service/pkg/logger"
	trmsql "github.com/avito-tech/go-transaction-manager/drivers/sql/v2"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

type Repository interface {
	GetUserByID(ctx context.Context, userID int) (*user.User, error)
	GetUserByAccountNumber(ctx context.Context, accountNumber string) (*user.User, error)
	CreateUser(ctx context.Context, accountNumber, pinHash string) (id int, err error)
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

func (r *Repo) GetUserByID(ctx context.Context, userID int) (*user.User, error) {
	const query = `
		SELECT id, account_number, pin_hash, created_at, updated_at
		FROM users WHERE id = $1
	`

	u := new(user.User)

	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&u.ID,
		&u.AccountNumber,
		&u.PINHash,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}

	return u, nil
}

func (r *Repo) GetUserByAccountNumber(ctx context.Context, accountNumber string) (*user.User, error) {
	const query = `
		SELECT id, account_number, pin_hash, created_at, updated_at
		FROM users WHERE account_number = $1
	`

	u := new(user.User)

	err := r.db.QueryRowContext(ctx, query, accountNumber).Scan(
		&u.ID,
		&u.AccountNumber,
		&u.PINHash,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}

	return u, nil
}

func (r *Repo) CreateUser(ctx context.Context, accountNumber, pinHash string) (int, error) {
	const query = "INSERT INTO users (account_number, pin_hash) VALUES ($1, $2) RETURNING id"

	var id int

	err := r.getter.DefaultTrOrDB(ctx, r.db).QueryRowContext(ctx, query, accountNumber, pinHash).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == pgerrcode.UniqueViolation {
				return -1, errs.ErrDataConflict
			}
		}
		return -1, fmt.Errorf("create user: %w", err)
	}

	return id, nil
}

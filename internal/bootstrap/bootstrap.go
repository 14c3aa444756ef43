// Package bootstrap creates the database schema and, when enabled,
// a couple of demo cardholders to poke the API with.
package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "embed"

	"atm-service/internal/account"
	"atm-service/internal/auth"
	"atm-service/internal/config"
	"atm-service/internal/models/errs"
	"atm-service/pkg/logger"
	"github.com/avito-tech/go-transaction-manager/trm/v2"
	"golang.org/x/crypto/bcrypt"
)

//go:embed schema.sql
var schema string

type seedUser struct {
	accountNumber string
	pin           string
	balanceCents  int64
}

var seedUsers = []seedUser{
	{accountNumber: "1234567890", pin: "1234", balanceCents: 100000}, // $1000
	{accountNumber: "0987654321", pin: "4321", balanceCents: 50000},  // $500
}

// Run applies the schema and seeds demo users if cfg.Seed is set.
// Seeding is idempotent: existing account numbers are left untouched.
func Run(
	ctx context.Context,
	db *sql.DB,
	trManager trm.Manager,
	users auth.Repository,
	accounts account.Repository,
	cfg *config.Config,
	log logger.Logger,
) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	if !cfg.Seed {
		return nil
	}

	for _, su := range seedUsers {
		_, err := users.GetUserByAccountNumber(ctx, su.accountNumber)
		if err == nil {
			continue
		}
		if !errors.Is(err, errs.ErrNotFound) {
			return fmt.Errorf("look up seed user: %w", err)
		}

		pinHash, err := bcrypt.GenerateFromPassword([]byte(su.pin), cfg.PINHashCost)
		if err != nil {
			return fmt.Errorf("hash seed PIN: %w", err)
		}

		// User and account appear together or not at all.
		err = trManager.Do(ctx, func(ctx context.Context) error {
			id, err := users.CreateUser(ctx, su.accountNumber, string(pinHash))
			if err != nil {
				return err
			}
			return accounts.CreateAccount(ctx, id, su.balanceCents)
		})
		if err != nil {
			return fmt.Errorf("seed user %s: %w", su.accountNumber, err)
		}

		log.Infof("seeded demo account %s", su.accountNumber)
	}

	return nil
}

package account

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"atm-service/internal/config"
	"atm-service/internal/ledger"
	"atm-service/internal/models/account"
	"atm-service/internal/models/errs"
	"atm-service/internal/models/user"
	"atm-service/pkg/logger"
	"github.com/avito-tech/go-transaction-manager/trm/v2"
)

type Service struct {
	repo   Repository
	trm    trm.Manager
	logger logger.Logger
	config *config.Config
	// One mutex per user id. Serializes the load-validate-save cycle so
	// two in-flight withdrawals can never both pass the balance or daily
	// limit checks against the same stale read. The database row lock
	// taken by the repository guards against other processes.
	locks sync.Map
}

func NewService(repo Repository, trm trm.Manager, logger logger.Logger, config *config.Config) (*Service, error) {
	if config == nil {
		return nil, errors.New("nil dependency: config")
	}
	if trm == nil {
		return nil, errors.New("nil dependency: transaction manager")
	}
	return &Service{repo: repo, trm: trm, logger: logger, config: config}, nil
}

var _ ServerInterface = (*Service)(nil)

func (s *Service) limits() ledger.Limits {
	return ledger.Limits{
		DailyLimitCents:          s.config.Ledger.DailyLimitCents,
		MinWithdrawalCents:       s.config.Ledger.MinWithdrawalCents,
		WithdrawalIncrementCents: s.config.Ledger.WithdrawalIncrementCents,
	}
}

// lock acquires the per-user mutex and returns its release func.
func (s *Service) lock(userID int) func() {
	v, _ := s.locks.LoadOrStore(userID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

type balanceResponse struct {
	Balance        int64 `json:"balance"`
	DailyLimit     int64 `json:"daily_limit"`
	DailyWithdrawn int64 `json:"daily_withdrawn"`
}

type withdrawResponse struct {
	NewBalance int64 `json:"new_balance"`
	Withdrawn  int64 `json:"withdrawn"`
}

type depositResponse struct {
	NewBalance int64 `json:"new_balance"`
	Deposited  int64 `json:"deposited"`
}

// Get balance and daily limit state (GET /account/balance).
//
// A rollover triggered by the read is persisted, so the stored counter
// always matches what the cardholder was shown.
func (s *Service) GetBalance(w http.ResponseWriter, r *http.Request) {
	u, found := user.FromContext(r.Context())
	if !found {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	unlock := s.lock(u.ID)
	defer unlock()

	var snapshot account.Account

	err := s.trm.Do(r.Context(), func(ctx context.Context) error {
		acc, err := s.repo.GetAccountByUserID(ctx, u.ID)
		if err != nil {
			return err
		}

		if ledger.Rollover(acc, time.Now()) {
			if err = s.repo.SaveAccount(ctx, acc); err != nil {
				return err
			}
		}

		snapshot = *acc
		return nil
	})
	if err != nil {
		ErrorHandlerFunc(w, r, err)
		return
	}

	s.respond(w, r, balanceResponse{
		Balance:        snapshot.BalanceCents,
		DailyLimit:     s.config.Ledger.DailyLimitCents,
		DailyWithdrawn: snapshot.DailyWithdrawnCents,
	})
}

// Withdraw funds (POST /account/withdraw).
func (s *Service) Withdraw(w http.ResponseWriter, r *http.Request, params WithdrawParams) {
	u, found := user.FromContext(r.Context())
	if !found {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	unlock := s.lock(u.ID)
	defer unlock()

	var snapshot account.Account

	err := s.trm.Do(r.Context(), func(ctx context.Context) error {
		acc, err := s.repo.GetAccountByUserID(ctx, u.ID)
		if err != nil {
			return err
		}

		if err = ledger.Withdraw(acc, params.Amount, time.Now(), s.limits()); err != nil {
			return err
		}

		if err = s.repo.SaveAccount(ctx, acc); err != nil {
			return err
		}

		snapshot = *acc
		return nil
	})
	if err != nil {
		ErrorHandlerFunc(w, r, err)
		return
	}

	s.respond(w, r, withdrawResponse{
		NewBalance: snapshot.BalanceCents,
		Withdrawn:  params.Amount,
	})
}

// Deposit funds (POST /account/deposit).
func (s *Service) Deposit(w http.ResponseWriter, r *http.Request, params DepositParams) {
	u, found := user.FromContext(r.Context())
	if !found {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	unlock := s.lock(u.ID)
	defer unlock()

	var snapshot account.Account

	err := s.trm.Do(r.Context(), func(ctx context.Context) error {
		acc, err := s.repo.GetAccountByUserID(ctx, u.ID)
		if err != nil {
			return err
		}

		if err = ledger.Deposit(acc, params.Amount); err != nil {
			return err
		}

		if err = s.repo.SaveAccount(ctx, acc); err != nil {
			return err
		}

		snapshot = *acc
		return nil
	})
	if err != nil {
		ErrorHandlerFunc(w, r, err)
		return
	}

	s.respond(w, r, depositResponse{
		NewBalance: snapshot.BalanceCents,
		Deposited:  params.Amount,
	})
}

func (s *Service) respond(w http.ResponseWriter, r *http.Request, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		ErrorHandlerFunc(w, r, err)
	}
}

// ErrorHandlerFunc handles sending of an error in the JSON format,
// writing appropriate status code and handling the failure to marshal that.
func ErrorHandlerFunc(w http.ResponseWriter, _ *http.Request, err error) {
	errJSON := errs.JSON{Code: errs.Code(err), Message: err.Error()}
	code := http.StatusInternalServerError

	switch {
	// Status Bad Request (400): every ledger validation failure.
	case errors.Is(err, errs.ErrInvalidAmount) ||
		errors.Is(err, errs.ErrInsufficientFunds) ||
		errors.Is(err, errs.ErrDailyLimitExceeded) ||
		errors.Is(err, errs.ErrInvalidRequest):
		code = http.StatusBadRequest

	// Status Not Found (404): no account for the authenticated user.
	case errors.Is(err, errs.ErrNotFound):
		code = http.StatusNotFound
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err = json.NewEncoder(w).Encode(errJSON); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

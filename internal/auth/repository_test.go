package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"atm-service/internal/models/errs"
	"atm-service/internal/models/user"
)

// Lock in case of t.Parallel call.
type mockRepository struct {
	items []user.User
	mu    sync.RWMutex
}

func (m *mockRepository) GetUserByID(_ context.Context, userID int) (*user.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, item := range m.items {
		if item.ID == userID {
			return &item, nil
		}
	}
	return &user.User{}, errs.ErrNotFound
}

func (m *mockRepository) GetUserByAccountNumber(_ context.Context, accountNumber string) (*user.User, error) {
	if accountNumber == "panic" {
		return &user.User{}, errors.New("don't panic!")
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, item := range m.items {
		if item.AccountNumber == accountNumber {
			return &item, nil
		}
	}
	return &user.User{}, errs.ErrNotFound
}

func (m *mockRepository) CreateUser(_ context.Context, accountNumber, pinHash string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	maxID := -1
	for _, item := range m.items {
		if item.AccountNumber == accountNumber {
			return -1, errs.ErrDataConflict
		}
		maxID = max(maxID, item.ID)
	}
	m.items = append(m.items, user.User{
		ID:            maxID + 1,
		AccountNumber: accountNumber,
		PINHash:       pinHash,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	})
	return maxID + 1, nil
}

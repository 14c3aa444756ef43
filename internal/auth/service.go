package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"atm-service/internal/config"
	"atm-service/internal/jwt"
	"atm-service/internal/models/errs"
	"atm-service/internal/models/user"
	"atm-service/pkg/limiter"
	"atm-service/pkg/logger"
	"golang.org/x/crypto/bcrypt"
)

type Service struct {
	repo     Repository
	attempts *limiter.AttemptLimiter
	logger   logger.Logger
	config   *config.Config
}

func NewService(repo Repository, attempts *limiter.AttemptLimiter, logger logger.Logger, config *config.Config) (*Service, error) {
	if config == nil {
		return nil, errors.New("nil dependency: config")
	}
	if attempts == nil {
		return nil, errors.New("nil dependency: attempt limiter")
	}
	return &Service{repo: repo, attempts: attempts, logger: logger, config: config}, nil
}

var _ ServerInterface = (*Service)(nil)

// loginResponse is the token payload returned on successful authentication.
type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Authentication (POST /auth/login).
func (s *Service) Login(w http.ResponseWriter, r *http.Request, params LoginParams) {
	// Throttle before touching the database or bcrypt.
	if !s.attempts.Allow(params.AccountNumber) {
		ErrorHandlerFunc(w, r, fmt.Errorf("%w: too many login attempts", errs.ErrRateLimit))
		return
	}

	// Retrieve user with the provided account number.
	u, err := s.repo.GetUserByAccountNumber(r.Context(), params.AccountNumber)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			// Same error as a wrong PIN; do not leak which part failed.
			ErrorHandlerFunc(w, r, fmt.Errorf("%w: wrong account number or PIN",
				errs.ErrInvalidCredentials))
			return
		}
		ErrorHandlerFunc(w, r, fmt.Errorf("get user: %w", err))
		return
	}

	// Compare stored and provided PINs.
	err = bcrypt.CompareHashAndPassword([]byte(u.PINHash), []byte(params.PIN))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			ErrorHandlerFunc(w, r, fmt.Errorf("%w: wrong account number or PIN",
				errs.ErrInvalidCredentials))
			return
		}
		ErrorHandlerFunc(w, r, fmt.Errorf("compare PINs: %w", err))
		return
	}

	// Build authentication token.
	authToken, err := jwt.BuildString(u.ID, u.AccountNumber, s.config.JWT.SigningKey, s.config.JWT.Expiration)
	if err != nil {
		ErrorHandlerFunc(w, r, fmt.Errorf("build token: %w", err))
		return
	}

	s.attempts.Reset(params.AccountNumber)

	w.Header().Set("Content-Type", "application/json")
	if err = json.NewEncoder(w).Encode(loginResponse{
		AccessToken: authToken,
		TokenType:   "bearer",
	}); err != nil {
		ErrorHandlerFunc(w, r, err)
	}
}

// Middleware resolves the bearer token of a request into the user it
// belongs to and stores the user in the request context.
func (s *Service) Middleware(next http.Handler) http.Handler {
	f := func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			ErrorHandlerFunc(w, r, fmt.Errorf("authorization token: %w", errs.ErrNotFound))
			return
		}

		userID, err := jwt.GetUserID(authHeader, s.config.JWT.SigningKey)
		if err != nil {
			ErrorHandlerFunc(w, r, fmt.Errorf("%w: parse token: %s", errs.ErrInvalidCredentials, err))
			return
		}

		u, err := s.repo.GetUserByID(r.Context(), userID)
		if err != nil {
			ErrorHandlerFunc(w, r, fmt.Errorf("get user %d: %w", userID, err))
			return
		}

		r = r.WithContext(user.NewContext(r.Context(), u))

		next.ServeHTTP(w, r)
	}

	return http.HandlerFunc(f)
}

// ErrorHandlerFunc handles sending of an error in the JSON format,
// writing appropriate status code and handling the failure to marshal that.
func ErrorHandlerFunc(w http.ResponseWriter, _ *http.Request, err error) {
	errJSON := errs.JSON{Code: errs.Code(err), Message: err.Error()}
	code := http.StatusInternalServerError

	switch {
	// Status Bad Request.
	case errors.Is(err, errs.ErrInvalidRequest):
		code = http.StatusBadRequest

	// Status Unauthorized.
	case errors.Is(err, errs.ErrNotFound) ||
		errors.Is(err, errs.ErrInvalidCredentials):
		code = http.StatusUnauthorized

	// Status Conflict.
	case errors.Is(err, errs.ErrDataConflict):
		code = http.StatusConflict

	// Status Too Many Requests.
	case errors.Is(err, errs.ErrRateLimit):
		code = http.StatusTooManyRequests
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err = json.NewEncoder(w).Encode(errJSON); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

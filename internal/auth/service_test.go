package auth

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"atm-service/internal/config"
	"atm-service/internal/jwt"
	"atm-service/internal/models/errs"
	"atm-service/internal/models/user"
	"atm-service/pkg/limiter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testAuthConfig() *config.Config {
	return &config.Config{
		PINHashCost: bcrypt.MinCost,
		JWT: config.JWT{
			Expiration: 15 * time.Minute,
			SigningKey: "Kyoto",
		},
		Login: config.Login{
			AttemptInterval: time.Minute,
			AttemptBurst:    5,
		},
	}
}

func hashPIN(t *testing.T, pin string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.MinCost)
	require.NoError(t, err, "failed to hash PIN")
	return string(hash)
}

func newTestService(t *testing.T, repo Repository, cfg *config.Config) *Service {
	t.Helper()

	attempts := limiter.NewAttemptLimiter(cfg.Login.AttemptInterval, cfg.Login.AttemptBurst)

	s, err := NewService(repo, attempts, nil, cfg)
	require.NoError(t, err, "failed to init service")
	return s
}

func TestLoginHandler(t *testing.T) {
	path := "/api/auth/login"

	cfg := testAuthConfig()

	type want struct {
		response   string
		code       string
		statusCode int
	}

	tests := []struct {
		name    string
		params  LoginParams
		repo    func(t *testing.T) Repository
		want    want
		wantErr bool
	}{
		{
			name: "OK",
			params: LoginParams{
				AccountNumber: "1234567890",
				PIN:           "1234",
			},
			repo: func(t *testing.T) Repository {
				return &mockRepository{items: []user.User{
					{ID: 1, AccountNumber: "1234567890", PINHash: hashPIN(t, "1234")},
				}}
			},
			want: want{
				statusCode: http.StatusOK,
			},
			wantErr: false,
		},
		{
			name: "no such account number",
			params: LoginParams{
				AccountNumber: "0000000000",
				PIN:           "1234",
			},
			repo: func(_ *testing.T) Repository { return &mockRepository{} },
			want: want{
				statusCode: http.StatusUnauthorized,
				code:       "INVALID_CREDENTIALS",
				response: fmt.Sprintf("%v: wrong account number or PIN",
					errs.ErrInvalidCredentials),
			},
			wantErr: true,
		},
		{
			name: "wrong PIN",
			params: LoginParams{
				AccountNumber: "1234567890",
				PIN:           "9999",
			},
			repo: func(t *testing.T) Repository {
				return &mockRepository{items: []user.User{
					{ID: 1, AccountNumber: "1234567890", PINHash: hashPIN(t, "1234")},
				}}
			},
			want: want{
				statusCode: http.StatusUnauthorized,
				code:       "INVALID_CREDENTIALS",
				response: fmt.Sprintf("%v: wrong account number or PIN",
					errs.ErrInvalidCredentials),
			},
			wantErr: true,
		},
		{
			name: "failed to get user from database",
			params: LoginParams{
				AccountNumber: "panic",
				PIN:           "oh-my-zsh",
			},
			repo: func(_ *testing.T) Repository { return &mockRepository{} },
			want: want{
				statusCode: http.StatusInternalServerError,
				code:       "INTERNAL_ERROR",
				response:   "get user: don't panic!",
			},
			wantErr: true,
		},
		{
			name: "internal error: wrong hash saved to db",
			params: LoginParams{
				AccountNumber: "1234567890",
				PIN:           "1234",
			},
			repo: func(_ *testing.T) Repository {
				return &mockRepository{items: []user.User{
					{ID: 1, AccountNumber: "1234567890", PINHash: "too_short_hash_LT_59_bytes"},
				}}
			},
			want: want{
				statusCode: http.StatusInternalServerError,
				code:       "INTERNAL_ERROR",
				response:   fmt.Sprintf("compare PINs: %v", bcrypt.ErrHashTooShort),
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := httptest.NewRequest(http.MethodPost, path, http.NoBody)

			w := httptest.NewRecorder()

			authHandler := newTestService(t, tt.repo(t), cfg)

			authHandler.Login(w, r, tt.params)

			res := w.Result()
			defer res.Body.Close()

			assert.Equal(t, tt.want.statusCode, res.StatusCode, "status mismatch")

			if tt.wantErr {
				errorResponse := new(errs.JSON)
				err := json.NewDecoder(res.Body).Decode(&errorResponse)
				require.NoError(t, err, "failed to decode JSON response")
				assert.Equal(t, tt.want.response, errorResponse.Message, "error message mismatch")
				assert.Equal(t, tt.want.code, errorResponse.Code, "error code mismatch")
				return
			}

			var token struct {
				AccessToken string `json:"access_token"`
				TokenType   string `json:"token_type"`
			}
			require.NoError(t, json.NewDecoder(res.Body).Decode(&token))
			require.NotEmpty(t, token.AccessToken, "the call was successful, but no token was issued")
			assert.Equal(t, "bearer", token.TokenType)

			id, err := jwt.GetUserID(token.AccessToken, cfg.JWT.SigningKey)
			require.NoError(t, err, "jwt: get user id")
			assert.Equal(t, 1, id, "token user id mismatch")
		})
	}
}

func TestLoginRateLimited(t *testing.T) {
	cfg := testAuthConfig()
	cfg.Login.AttemptBurst = 2

	repo := &mockRepository{}
	service := newTestService(t, repo, cfg)

	params := LoginParams{AccountNumber: "1234567890", PIN: "0000"}

	// Burn through the burst with failed attempts.
	for i := 0; i < cfg.Login.AttemptBurst; i++ {
		w := httptest.NewRecorder()
		service.Login(w, httptest.NewRequest(http.MethodPost, "/api/auth/login", http.NoBody), params)
		assert.Equal(t, http.StatusUnauthorized, w.Result().StatusCode)
	}

	w := httptest.NewRecorder()
	service.Login(w, httptest.NewRequest(http.MethodPost, "/api/auth/login", http.NoBody), params)

	res := w.Result()
	defer res.Body.Close()

	assert.Equal(t, http.StatusTooManyRequests, res.StatusCode)

	errorResponse := new(errs.JSON)
	require.NoError(t, json.NewDecoder(res.Body).Decode(&errorResponse))
	assert.Equal(t, "RATE_LIMITED", errorResponse.Code)
}

func TestMiddleware(t *testing.T) {
	cfg := testAuthConfig()

	repo := &mockRepository{items: []user.User{
		{ID: 1, AccountNumber: "1234567890"},
	}}
	service := newTestService(t, repo, cfg)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, found := user.FromContext(r.Context())
		require.True(t, found, "user must be in the context")
		assert.Equal(t, 1, u.ID)
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name       string
		header     func(t *testing.T) string
		statusCode int
	}{
		{
			name: "OK",
			header: func(t *testing.T) string {
				t.Helper()
				token, err := jwt.BuildString(1, "1234567890", cfg.JWT.SigningKey, cfg.JWT.Expiration)
				require.NoError(t, err)
				return "Bearer " + token
			},
			statusCode: http.StatusNoContent,
		},
		{
			name:       "missing header",
			header:     func(_ *testing.T) string { return "" },
			statusCode: http.StatusUnauthorized,
		},
		{
			name:       "garbage token",
			header:     func(_ *testing.T) string { return "Bearer not-a-token" },
			statusCode: http.StatusUnauthorized,
		},
		{
			name: "expired token",
			header: func(t *testing.T) string {
				t.Helper()
				token, err := jwt.BuildString(1, "1234567890", cfg.JWT.SigningKey, -time.Minute)
				require.NoError(t, err)
				return "Bearer " + token
			},
			statusCode: http.StatusUnauthorized,
		},
		{
			name: "token of a deleted user",
			header: func(t *testing.T) string {
				t.Helper()
				token, err := jwt.BuildString(42, "0000000000", cfg.JWT.SigningKey, cfg.JWT.Expiration)
				require.NoError(t, err)
				return "Bearer " + token
			},
			statusCode: http.StatusUnauthorized,
		},
	}
	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := httptest.NewRequest(http.MethodGet, "/api/account/balance", http.NoBody)
			if h := tt.header(t); h != "" {
				r.Header.Set("Authorization", h)
			}

			w := httptest.NewRecorder()

			service.Middleware(next).ServeHTTP(w, r)

			assert.Equal(t, tt.statusCode, w.Result().StatusCode, "status mismatch")
		})
	}
}

func TestTokenRoundTrip(t *testing.T) {
	token, err := jwt.BuildString(7, "1234567890", "secret", 15*time.Minute)
	require.NoError(t, err)

	id, err := jwt.GetUserID(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, 7, id)

	_, err = jwt.GetUserID(token, "wrong-secret")
	require.Error(t, err, "a token must not verify under another key")

}

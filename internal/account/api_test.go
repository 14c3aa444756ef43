package account

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"atm-service/internal/models/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockAccountService struct {
	withdrawParams *WithdrawParams
	depositParams  *DepositParams
}

func (m *mockAccountService) GetBalance(w http.ResponseWriter, r *http.Request) {}

func (m *mockAccountService) Withdraw(w http.ResponseWriter, r *http.Request, params WithdrawParams) {
	m.withdrawParams = &params
}

func (m *mockAccountService) Deposit(w http.ResponseWriter, r *http.Request, params DepositParams) {
	m.depositParams = &params
}

func TestWithdrawOperationMiddleware(t *testing.T) {
	path := "/api/account/withdraw"

	type want struct {
		response   string
		statusCode int
		amount     int64
	}

	tests := []struct {
		name        string
		contentType string
		payload     io.Reader
		want        want
		wantErr     bool
	}{
		{
			name:        "OK",
			contentType: "application/json",
			payload:     strings.NewReader(`{"amount":2000}`),
			want: want{
				statusCode: http.StatusOK,
				amount:     2000,
			},
			wantErr: false,
		},
		{
			name:        "invalid content type",
			contentType: "text/plain; charset=utf-8",
			payload:     strings.NewReader(""),
			want: want{
				statusCode: http.StatusBadRequest,
				response:   fmt.Sprintf("%v: content type must be application/json", errs.ErrInvalidRequest),
			},
			wantErr: true,
		},
		{
			name:        "empty body",
			contentType: "application/json",
			payload:     strings.NewReader(""),
			want: want{
				statusCode: http.StatusBadRequest,
				response:   fmt.Sprintf("%v: empty body", errs.ErrInvalidRequest),
			},
			wantErr: true,
		},
		{
			name:        "invalid data type: amount is string",
			contentType: "application/json",
			payload:     strings.NewReader(`{"amount":"20"}`),
			want: want{
				statusCode: http.StatusBadRequest,
				response: fmt.Sprintf("%v: amount must be of type int64, got string",
					errs.ErrInvalidRequest),
			},
			wantErr: true,
		},
		{
			name:        "invalid data type: amount is fractional",
			contentType: "application/json",
			payload:     strings.NewReader(`{"amount":20.5}`),
			want: want{
				statusCode: http.StatusBadRequest,
				response: fmt.Sprintf("%v: amount must be of type int64, got number 20.5",
					errs.ErrInvalidRequest),
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := httptest.NewRequest(http.MethodPost, path, tt.payload)
			r.Header.Set("Content-Type", tt.contentType)

			w := httptest.NewRecorder()

			mock := new(mockAccountService)
			siw := ServerInterfaceWrapper{
				Handler:          mock,
				ErrorHandlerFunc: ErrorHandlerFunc,
			}

			siw.Withdraw(w, r)

			res := w.Result()

			errorResponse := new(errs.JSON)

			if tt.wantErr {
				err := json.NewDecoder(res.Body).Decode(&errorResponse)
				require.NoError(t, err, "failed to decode JSON response")
			}
			res.Body.Close()

			assert.Equal(t, tt.want.statusCode, res.StatusCode, "status mismatch")
			if tt.wantErr {
				assert.Equal(t, tt.want.response, errorResponse.Message, "error message mismatch")
				assert.Equal(t, "INVALID_REQUEST", errorResponse.Code, "error code mismatch")
				assert.Nil(t, mock.withdrawParams, "handler must not run on invalid payload")
			} else {
				require.NotNil(t, mock.withdrawParams, "handler did not run")
				assert.Equal(t, tt.want.amount, mock.withdrawParams.Amount, "amount mismatch")
			}
		})
	}
}

func TestDepositOperationMiddleware(t *testing.T) {
	path := "/api/account/deposit"

	t.Run("OK", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{"amount":5000}`))
		r.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()

		mock := new(mockAccountService)
		siw := ServerInterfaceWrapper{Handler: mock, ErrorHandlerFunc: ErrorHandlerFunc}

		siw.Deposit(w, r)

		assert.Equal(t, http.StatusOK, w.Result().StatusCode)
		require.NotNil(t, mock.depositParams, "handler did not run")
		assert.Equal(t, int64(5000), mock.depositParams.Amount)
	})

	t.Run("amount is bool", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{"amount":true}`))
		r.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()

		mock := new(mockAccountService)
		siw := ServerInterfaceWrapper{Handler: mock, ErrorHandlerFunc: ErrorHandlerFunc}

		siw.Deposit(w, r)

		res := w.Result()
		defer res.Body.Close()

		assert.Equal(t, http.StatusBadRequest, res.StatusCode)

		errorResponse := new(errs.JSON)
		require.NoError(t, json.NewDecoder(res.Body).Decode(&errorResponse))
		assert.Equal(t, fmt.Sprintf("%v: amount must be of type int64, got bool",
			errs.ErrInvalidRequest), errorResponse.Message)
		assert.Nil(t, mock.depositParams, "handler must not run on invalid payload")
	})
}

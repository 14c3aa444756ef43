package account

import (
	"encoding/json"
	"fmt"
	"net/http"

	"atm-service/internal/models/errs"
	"atm-service/internal/rest"
	"github.com/go-chi/chi/v5"
)

// WithdrawParams defines parameters for Withdraw. Amount is in cents.
type WithdrawParams struct {
	Amount int64 `json:"amount"`
}

// DepositParams defines parameters for Deposit. Amount is in cents.
type DepositParams struct {
	Amount int64 `json:"amount"`
}

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// Balance inquiry (GET /account/balance)
	GetBalance(w http.ResponseWriter, r *http.Request)
	// Withdrawal (POST /account/withdraw)
	Withdraw(w http.ResponseWriter, r *http.Request, params WithdrawParams)
	// Deposit (POST /account/deposit)
	Deposit(w http.ResponseWriter, r *http.Request, params DepositParams)
}

// ServerInterfaceWrapper converts payloads to parameters.
type ServerInterfaceWrapper struct {
	Handler          ServerInterface
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

type MiddlewareFunc func(http.Handler) http.Handler

// GetBalance operation middleware.
func (siw *ServerInterfaceWrapper) GetBalance(w http.ResponseWriter, r *http.Request) {
	siw.Handler.GetBalance(w, r)
}

// Withdraw operation middleware.
func (siw *ServerInterfaceWrapper) Withdraw(w http.ResponseWriter, r *http.Request) {
	params, ok := siw.decodeAmount(w, r)
	if !ok {
		return
	}

	siw.Handler.Withdraw(w, r, WithdrawParams(params))
}

// Deposit operation middleware.
func (siw *ServerInterfaceWrapper) Deposit(w http.ResponseWriter, r *http.Request) {
	params, ok := siw.decodeAmount(w, r)
	if !ok {
		return
	}

	siw.Handler.Deposit(w, r, params)
}

// decodeAmount reads an {"amount": n} body shared by withdraw and deposit.
// Whether the amount itself is acceptable is the ledger's decision, not a
// payload question; only shape problems are rejected here.
func (siw *ServerInterfaceWrapper) decodeAmount(w http.ResponseWriter, r *http.Request) (DepositParams, bool) {
	var params DepositParams

	if !rest.IsApplicationJSONContentType(r) {
		siw.ErrorHandlerFunc(w, r, fmt.Errorf("%w: content type must be application/json",
			errs.ErrInvalidRequest))
		return params, false
	}

	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		siw.ErrorHandlerFunc(w, r, rest.CheckJSONDecodeError(err))
		return params, false
	}

	return params, true
}

type ChiServerOptions struct {
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
	BaseRouter       chi.Router
	BaseURL          string
	Middlewares      []MiddlewareFunc
}

// HandlerWithOptions creates http.Handler with additional options.
func HandlerWithOptions(si ServerInterface, options ChiServerOptions) http.Handler {
	r := options.BaseRouter

	if r == nil {
		r = chi.NewRouter()
	}
	if options.ErrorHandlerFunc == nil {
		options.ErrorHandlerFunc = func(w http.ResponseWriter, r *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	}
	wrapper := ServerInterfaceWrapper{
		Handler:          si,
		ErrorHandlerFunc: options.ErrorHandlerFunc,
	}

	r.Group(func(r chi.Router) {
		for _, middleware := range options.Middlewares {
			r.Use(middleware)
		}
		r.Get(options.BaseURL+"/account/balance", wrapper.GetBalance)
		r.Post(options.BaseURL+"/account/withdraw", wrapper.Withdraw)
		r.Post(options.BaseURL+"/account/deposit", wrapper.Deposit)
	})

	return r
}

package auth

import (
	"encoding/json"
	"fmt"
	"net/http"

	"atm-service/internal/models/errs"
	"atm-service/internal/rest"
	"github.com/go-chi/chi/v5"
)

// LoginParams defines parameters for Login.
type LoginParams struct {
	AccountNumber string `json:"account_number"`
	PIN           string `json:"pin"`
}

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// Authentication (POST /auth/login)
	Login(w http.ResponseWriter, r *http.Request, params LoginParams)
}

// ServerInterfaceWrapper converts payloads to parameters.
type ServerInterfaceWrapper struct {
	Handler            ServerInterface
	ErrorHandlerFunc   func(w http.ResponseWriter, r *http.Request, err error)
	HandlerMiddlewares []MiddlewareFunc
}

type MiddlewareFunc func(http.Handler) http.Handler

// Login operation middleware.
func (siw *ServerInterfaceWrapper) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !rest.IsApplicationJSONContentType(r) {
		siw.ErrorHandlerFunc(w, r, fmt.Errorf("%w: content type must be application/json",
			errs.ErrInvalidRequest))
		return
	}

	// Parameter object where we will unmarshal all parameters from the body.
	var params LoginParams

	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		siw.ErrorHandlerFunc(w, r, rest.CheckJSONDecodeError(err))
		return
	}
	r.Body.Close()

	// ------------- Required JSON body parameter "account_number" ----

	if params.AccountNumber == "" {
		siw.ErrorHandlerFunc(w, r,
			&errs.RequiredJSONBodyParamError{ParamName: "account_number"})
		return
	}

	// ------------- Required JSON body parameter "pin" ---------------

	if params.PIN == "" {
		siw.ErrorHandlerFunc(w, r,
			&errs.RequiredJSONBodyParamError{ParamName: "pin"})
		return
	}

	handler := http.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.Login(w, r, params)
	}))

	for _, middleware := range siw.HandlerMiddlewares {
		handler = middleware(handler)
	}

	handler.ServeHTTP(w, r.WithContext(ctx))
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
		Handler:            si,
		HandlerMiddlewares: options.Middlewares,
		ErrorHandlerFunc:   options.ErrorHandlerFunc,
	}

	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/auth/login", wrapper.Login)
	})

	return r
}

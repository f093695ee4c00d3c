package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/coopandes/accounts-ledger/src/internal/adapter/http/models"
	"github.com/coopandes/accounts-ledger/src/internal/commons"
	"github.com/coopandes/accounts-ledger/src/internal/domain"
	"github.com/coopandes/accounts-ledger/src/internal/logger"
	"github.com/coopandes/accounts-ledger/src/internal/usecase/service_interfaces"
)

type AccountController struct {
	service service_interfaces.AccountService
}

func NewAccountController(service service_interfaces.AccountService) *AccountController {
	return &AccountController{service: service}
}

func (c *AccountController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /accounts", c.createAccount)
	mux.HandleFunc("GET /accounts", c.listAccounts)
	mux.HandleFunc("GET /accounts/{id}", c.getAccount)
	mux.HandleFunc("GET /accounts/owner/{ownerId}", c.listAccountsByOwner)
	mux.HandleFunc("PUT /accounts/{id}", c.updateAccount)
	mux.HandleFunc("DELETE /accounts/{id}", c.deleteAccount)
	mux.HandleFunc("POST /accounts/{id}/deposit", c.deposit)
	mux.HandleFunc("POST /accounts/{id}/withdraw", c.withdraw)
}

func (c *AccountController) createAccount(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.CreateAccountRequest
	if !decodeBody[models.AccountResponse](w, r, &req, start) {
		return
	}
	logRequest(r)

	response, err := c.service.CreateAccount(r.Context(), req)
	reply(w, r, http.StatusCreated, response, err, start)
}

func (c *AccountController) listAccounts(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r)

	query := r.URL.Query()
	page, pageErr := intParam(query.Get("page"), 0)
	size, sizeErr := intParam(query.Get("size"), models.DefaultPageSize)
	if err := errors.Join(pageErr, sizeErr); err != nil {
		verr := domain.NewValidationError("page and size must be integers")
		reply(w, r, http.StatusOK, commons.ErrorResponse[commons.Page[models.AccountResponse]]("validation failed", verr.Problems...), verr, start)
		return
	}

	response, err := c.service.ListAccounts(r.Context(), models.ListAccountsRequest{
		Page:   page,
		Size:   size,
		Search: query.Get("search"),
	})
	reply(w, r, http.StatusOK, response, err, start)
}

func (c *AccountController) getAccount(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r)

	response, err := c.service.GetAccount(r.Context(), r.PathValue("id"))
	reply(w, r, http.StatusOK, response, err, start)
}

func (c *AccountController) listAccountsByOwner(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r)

	response, err := c.service.ListAccountsByOwner(r.Context(), r.PathValue("ownerId"))
	reply(w, r, http.StatusOK, response, err, start)
}

func (c *AccountController) updateAccount(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.UpdateAccountRequest
	if !decodeBody[models.AccountResponse](w, r, &req, start) {
		return
	}
	logRequest(r)

	response, err := c.service.UpdateAccount(r.Context(), r.PathValue("id"), req)
	reply(w, r, http.StatusOK, response, err, start)
}

func (c *AccountController) deleteAccount(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r)

	response, err := c.service.DeleteAccount(r.Context(), r.PathValue("id"))
	if err != nil {
		reply(w, r, http.StatusNoContent, response, err, start)
		return
	}

	w.WriteHeader(http.StatusNoContent)
	logResponse(r, http.StatusNoContent, response, start)
}

func (c *AccountController) deposit(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.AmountRequest
	if !decodeBody[models.AccountResponse](w, r, &req, start) {
		return
	}
	logRequest(r)

	response, err := c.service.Deposit(r.Context(), r.PathValue("id"), req)
	reply(w, r, http.StatusOK, response, err, start)
}

func (c *AccountController) withdraw(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.AmountRequest
	if !decodeBody[models.AccountResponse](w, r, &req, start) {
		return
	}
	logRequest(r)

	response, err := c.service.Withdraw(r.Context(), r.PathValue("id"), req)
	reply(w, r, http.StatusOK, response, err, start)
}

// decodeBody reads one JSON object with no unknown fields into dst. On failure
// it writes the error response itself and returns false.
func decodeBody[T any](w http.ResponseWriter, r *http.Request, dst any, start time.Time) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err == nil {
		if _, next := dec.Token(); !errors.Is(next, io.EOF) {
			err = fmt.Errorf("request body must contain a single JSON object")
		}
	}
	if err == nil {
		return true
	}

	logError(r, err, nil)
	status := http.StatusBadRequest
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		status = http.StatusRequestEntityTooLarge
	}
	response := commons.ErrorResponse[T]("invalid request body", err.Error())
	writeJSON(w, status, response)
	logResponse(r, status, response, start)
	return false
}

// reply writes response with okStatus, or with the status matching err.
func reply[T any](w http.ResponseWriter, r *http.Request, okStatus int, response commons.Response[T], err error, start time.Time) {
	status := okStatus
	if err != nil {
		status = statusFor(err)
		if status == http.StatusInternalServerError {
			logError(r, err, logger.Fields{"message": response.Message})
		}
	}

	writeJSON(w, status, response)
	logResponse(r, status, response, start)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func intParam(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

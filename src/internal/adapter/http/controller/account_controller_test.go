package controller_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coopandes/accounts-ledger/src/internal/adapter/http/controller"
	"github.com/coopandes/accounts-ledger/src/internal/adapter/http/models"
	"github.com/coopandes/accounts-ledger/src/internal/adapter/repository/memory"
	"github.com/coopandes/accounts-ledger/src/internal/commons"
	"github.com/coopandes/accounts-ledger/src/internal/usecase/service_interfaces"
	"github.com/coopandes/accounts-ledger/src/internal/usecase/services"
)

const ownerID = "0b6c7a52-3f0e-4d7b-8c11-2a9e5f4d3c21"

func newMux(svc service_interfaces.AccountService) *http.ServeMux {
	mux := http.NewServeMux()
	controller.NewAccountController(svc).RegisterRoutes(mux)
	return mux
}

func newLedgerMux() *http.ServeMux {
	return newMux(services.NewAccountService(memory.NewAccountRepository(), nil))
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) commons.Response[T] {
	t.Helper()
	var resp commons.Response[T]
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
	return resp
}

func createAccount(t *testing.T, h http.Handler, number, balance string) models.AccountResponse {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/accounts", `{"ownerId":"`+ownerID+`","accountNumber":"`+number+`","balance":`+balance+`,"accountType":"SAVINGS"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	resp := decode[models.AccountResponse](t, rec)
	return *resp.Data
}

func TestAccountControllerLifecycle(t *testing.T) {
	mux := newLedgerMux()
	account := createAccount(t, mux, "001-100000005", "1000")

	rec := do(t, mux, http.MethodGet, "/accounts/"+account.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected application/json, got %q", ct)
	}

	rec = do(t, mux, http.MethodPost, "/accounts/"+account.ID+"/withdraw", `{"amount":500}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("withdraw: expected 200, got %d", rec.Code)
	}
	if got := decode[models.AccountResponse](t, rec).Data.Balance; got != "500.00" {
		t.Fatalf("expected balance 500.00, got %s", got)
	}

	rec = do(t, mux, http.MethodPost, "/accounts/"+account.ID+"/withdraw", `{"amount":"600"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("overdraw: expected 422, got %d", rec.Code)
	}

	rec = do(t, mux, http.MethodPost, "/accounts/"+account.ID+"/deposit", `{"amount":100}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("deposit: expected 200, got %d", rec.Code)
	}
	if got := decode[models.AccountResponse](t, rec).Data.Balance; got != "600.00" {
		t.Fatalf("expected balance 600.00, got %s", got)
	}

	rec = do(t, mux, http.MethodDelete, "/accounts/"+account.ID, "")
	if rec.Code != http.StatusNoContent || rec.Body.Len() != 0 {
		t.Fatalf("delete: expected empty 204, got %d %q", rec.Code, rec.Body.String())
	}

	rec = do(t, mux, http.MethodGet, "/accounts/"+account.ID, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete: expected 404, got %d", rec.Code)
	}

	rec = do(t, mux, http.MethodDelete, "/accounts/"+account.ID, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second delete: expected 404, got %d", rec.Code)
	}
}

func TestAccountControllerCreateConflict(t *testing.T) {
	mux := newLedgerMux()
	createAccount(t, mux, "ACC-0001", "1")

	rec := do(t, mux, http.MethodPost, "/accounts", `{"ownerId":"`+ownerID+`","accountNumber":"ACC-0001","balance":2,"accountType":"CHECKING"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	resp := decode[models.AccountResponse](t, rec)
	if resp.Success || resp.Message != "Account number already in use" {
		t.Fatalf("unexpected body %+v", resp)
	}
}

func TestAccountControllerRejectsMalformedBodies(t *testing.T) {
	mux := newLedgerMux()

	tests := []struct {
		name string
		body string
		code int
	}{
		{"unknown field", `{"ownerId":"` + ownerID + `","accountNumber":"ACC-0002","balance":1,"accountType":"SAVINGS","status":"INACTIVE"}`, http.StatusBadRequest},
		{"trailing data", `{"ownerId":"` + ownerID + `","accountNumber":"ACC-0002","balance":1,"accountType":"SAVINGS"} {}`, http.StatusBadRequest},
		{"not json", `ownerId=1`, http.StatusBadRequest},
		{"invalid fields", `{"ownerId":"x","accountNumber":"a","balance":-1,"accountType":"GOLD"}`, http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, mux, http.MethodPost, "/accounts", tc.body)
			if rec.Code != tc.code {
				t.Fatalf("expected %d, got %d: %s", tc.code, rec.Code, rec.Body.String())
			}
			if resp := decode[models.AccountResponse](t, rec); resp.Success || len(resp.Errors) == 0 {
				t.Fatalf("expected error details, got %+v", resp)
			}
		})
	}
}

func TestAccountControllerBodyTooLarge(t *testing.T) {
	mux := newLedgerMux()
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, 16)
		mux.ServeHTTP(w, r)
	})

	rec := do(t, handler, http.MethodPost, "/accounts", `{"ownerId":"`+ownerID+`","accountNumber":"ACC-0003","balance":1,"accountType":"SAVINGS"}`)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", rec.Code)
	}
}

func TestAccountControllerListAccounts(t *testing.T) {
	mux := newLedgerMux()
	createAccount(t, mux, "LST-0001", "1")
	createAccount(t, mux, "LST-0002", "1")
	createAccount(t, mux, "ZZZ-0003", "1")

	rec := do(t, mux, http.MethodGet, "/accounts?page=0&size=1&search=lst", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	page := decode[commons.Page[models.AccountResponse]](t, rec).Data
	if page.Total != 2 || len(page.Items) != 1 || page.Size != 1 {
		t.Fatalf("unexpected page %+v", page)
	}

	rec = do(t, mux, http.MethodGet, "/accounts?page=abc", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-integer page, got %d", rec.Code)
	}
}

func TestAccountControllerListByOwner(t *testing.T) {
	mux := newLedgerMux()
	createAccount(t, mux, "OWN-0001", "1")

	rec := do(t, mux, http.MethodGet, "/accounts/owner/"+ownerID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if items := *decode[[]models.AccountResponse](t, rec).Data; len(items) != 1 {
		t.Fatalf("expected one account, got %d", len(items))
	}

	rec = do(t, mux, http.MethodGet, "/accounts/owner/unknown", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for unknown owner, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"data":[]`) {
		t.Fatalf("expected empty data array, got %s", rec.Body.String())
	}
}

func TestAccountControllerUpdateAccount(t *testing.T) {
	mux := newLedgerMux()
	account := createAccount(t, mux, "UPD-0001", "1")
	createAccount(t, mux, "UPD-0002", "1")

	rec := do(t, mux, http.MethodPut, "/accounts/"+account.ID, `{"accountNumber":"UPD-0003","balance":"12.30","accountType":"CHECKING"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	updated := decode[models.AccountResponse](t, rec).Data
	if updated.AccountNumber != "UPD-0003" || updated.Balance != "12.30" {
		t.Fatalf("unexpected update result %+v", updated)
	}

	rec = do(t, mux, http.MethodPut, "/accounts/"+account.ID, `{"accountNumber":"UPD-0002","balance":1,"accountType":"CHECKING"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestAccountControllerMalformedIDIsNotFound(t *testing.T) {
	mux := newLedgerMux()

	for _, tc := range []struct{ method, target, body string }{
		{http.MethodGet, "/accounts/42", ""},
		{http.MethodDelete, "/accounts/42", ""},
		{http.MethodPost, "/accounts/42/deposit", `{"amount":1}`},
	} {
		if rec := do(t, mux, tc.method, tc.target, tc.body); rec.Code != http.StatusNotFound {
			t.Fatalf("%s %s: expected 404, got %d", tc.method, tc.target, rec.Code)
		}
	}
}

type failingService struct {
	service_interfaces.AccountService
}

func (failingService) GetAccount(context.Context, string) (commons.Response[models.AccountResponse], error) {
	return commons.ErrorResponse[models.AccountResponse]("failed to get account", "Unable to get account right now"), errors.New("db down")
}

func TestAccountControllerInfrastructureErrorIs500(t *testing.T) {
	mux := newMux(failingService{})

	rec := do(t, mux, http.MethodGet, "/accounts/"+ownerID, "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "db down") {
		t.Fatal("internal error detail leaked to the client")
	}
}

func TestAccountControllerRejectsExtremeMoneyExponentsQuickly(t *testing.T) {
	mux := newLedgerMux()
	account := createAccount(t, mux, "EXP-0001", "10")

	tests := []struct {
		name, method, target, body string
	}{
		{"deposit", http.MethodPost, "/accounts/" + account.ID + "/deposit", `{"amount":1e30000000}`},
		{"withdraw", http.MethodPost, "/accounts/" + account.ID + "/withdraw", `{"amount":"1e-30000000"}`},
		{"create", http.MethodPost, "/accounts", `{"ownerId":"` + ownerID + `","accountNumber":"EXP-0002","balance":1e30000000,"accountType":"SAVINGS"}`},
		{"update", http.MethodPut, "/accounts/" + account.ID, `{"accountNumber":"EXP-0001","balance":1e30000000,"accountType":"SAVINGS"}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			start := time.Now()
			rec := do(t, mux, tc.method, tc.target, tc.body)
			elapsed := time.Since(start)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
			if !strings.Contains(rec.Body.String(), "out of range") {
				t.Fatalf("expected out of range problem, got %s", rec.Body.String())
			}
			if elapsed > time.Second {
				t.Fatalf("rejecting %s took %v", tc.body, elapsed)
			}
		})
	}

	rec := do(t, mux, http.MethodGet, "/accounts/"+account.ID, "")
	if got := decode[models.AccountResponse](t, rec).Data.Balance; got != "10.00" {
		t.Fatalf("expected balance untouched at 10.00, got %s", got)
	}
}

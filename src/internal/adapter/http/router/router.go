package router

import (
	"net/http"

	"github.com/coopandes/accounts-ledger/src/internal/adapter/http/middleware"
)

type RouteRegistrar interface {
	RegisterRoutes(mux *http.ServeMux)
}

// New builds the API mux: health, API docs, then every registrar's routes,
// wrapped by middlewares (first listed is outermost).
func New(registrars []RouteRegistrar, middlewares ...func(http.Handler) http.Handler) http.Handler {
	mux := http.NewServeMux()
	registerSwaggerRoutes(mux)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	for _, registrar := range registrars {
		if registrar != nil {
			registrar.RegisterRoutes(mux)
		}
	}

	return middleware.Chain(mux, middlewares...)
}

package controller

import (
	"net/http"
	"time"

	"github.com/coopandes/accounts-ledger/src/internal/logger"
)

// logRequest omits the body; services log it once validation has bounded it.
func logRequest(r *http.Request) {
	logger.Info("http request", logger.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
		"query":  r.URL.RawQuery,
	})
}

func logResponse(r *http.Request, status int, payload any, start time.Time) {
	fields := logger.Fields{
		"method":     r.Method,
		"path":       r.URL.Path,
		"status":     status,
		"durationMs": time.Since(start).Milliseconds(),
	}
	if status >= http.StatusBadRequest {
		fields["response"] = logger.SanitizePayload(payload)
	}
	logger.Info("http response", fields)
}

func logError(r *http.Request, err error, extra logger.Fields) {
	fields := logger.With(logger.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
		"query":  r.URL.RawQuery,
	}, extra)
	logger.Error("http handler error", err, fields)
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestSecurityHeaders_SetsHardeningHeaders(t *testing.T) {
	rr := httptest.NewRecorder()
	SecurityHeaders()(okHandler()).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	for _, header := range []string{"Content-Security-Policy", "Strict-Transport-Security", "X-Frame-Options", "X-Content-Type-Options"} {
		if rr.Header().Get(header) == "" {
			t.Fatalf("expected %s to be set", header)
		}
	}
	if rr.Header().Get("X-Frame-Options") != "DENY" {
		t.Fatalf("expected frame deny, got %q", rr.Header().Get("X-Frame-Options"))
	}
}

func TestCORS_AllowsConfiguredOrigin(t *testing.T) {
	mw := CORS([]string{"http://localhost:4200"})

	req := httptest.NewRequest(http.MethodGet, "/accounts", nil)
	req.Header.Set("Origin", "http://localhost:4200")
	rr := httptest.NewRecorder()
	mw(okHandler()).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if rr.Header().Get("Access-Control-Allow-Origin") != "http://localhost:4200" {
		t.Fatalf("expected origin to be echoed, got %q", rr.Header().Get("Access-Control-Allow-Origin"))
	}
}

func TestCORS_PreflightFromUnknownOriginIsRejected(t *testing.T) {
	mw := CORS([]string{"http://localhost:4200"})

	req := httptest.NewRequest(http.MethodOptions, "/accounts", nil)
	req.Header.Set("Origin", "http://evil.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	mw(okHandler()).ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected status %d, got %d", http.StatusForbidden, rr.Code)
	}
	if rr.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatal("expected no allow-origin header for unknown origin")
	}
}

func TestCORS_PreflightFromKnownOrigin(t *testing.T) {
	mw := CORS([]string{"http://localhost:3000"})

	req := httptest.NewRequest(http.MethodOptions, "/accounts/1", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodDelete)
	rr := httptest.NewRecorder()
	mw(okHandler()).ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d", http.StatusNoContent, rr.Code)
	}
	if !strings.Contains(rr.Header().Get("Access-Control-Allow-Methods"), "DELETE") {
		t.Fatalf("expected DELETE to be allowed, got %q", rr.Header().Get("Access-Control-Allow-Methods"))
	}
}

func TestRateLimiter_RejectsAfterBudgetIsSpent(t *testing.T) {
	limiter := NewRateLimiter(2, time.Minute)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }
	handler := limiter.Middleware()(okHandler())

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/accounts", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("unexpected status sequence %v", codes)
	}

	other := httptest.NewRequest(http.MethodGet, "/accounts", nil)
	other.RemoteAddr = "10.0.0.2:5555"
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, other)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected other client to be unaffected, got %d", rr.Code)
	}

	now = now.Add(time.Minute)
	again := httptest.NewRequest(http.MethodGet, "/accounts", nil)
	again.RemoteAddr = "10.0.0.1:5555"
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, again)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected budget to refill after the window, got %d", rr.Code)
	}
}

func TestRecover_ConvertsPanicTo500(t *testing.T) {
	panicking := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})

	rr := httptest.NewRecorder()
	Recover()(panicking).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, rr.Code)
	}
}

func TestChain_OrdersOutermostFirst(t *testing.T) {
	var order []string
	tag := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	Chain(okHandler(), tag("a"), tag("b")).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if strings.Join(order, ",") != "a,b" {
		t.Fatalf("expected a,b got %v", order)
	}
}

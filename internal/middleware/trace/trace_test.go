package trace

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	applog "movimentos/internal/log"
)

func TestMiddlewarePropagatesRequestID(t *testing.T) {
	var buf bytes.Buffer
	cfg := applog.DefaultConfig()
	cfg.Output = &buf
	m := NewMiddleware(applog.New(cfg), func(*http.Request) string { return "203.0.113.9" })

	var seenID string
	var seenLogger *applog.Logger
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = GetRequestID(r.Context())
		seenLogger = applog.FromContext(r.Context())
		http.Error(w, "nope", http.StatusUnprocessableEntity)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/movements", nil))

	if !strings.HasPrefix(seenID, "req_") || rr.Header().Get("X-Request-ID") != seenID {
		t.Fatalf("request id %q, header %q", seenID, rr.Header().Get("X-Request-ID"))
	}
	if seenLogger == nil || seenLogger.Component() != applog.ComponentHTTP {
		t.Fatalf("request logger not stored in context")
	}

	out := buf.String()
	for _, want := range []string{"HTTP request completed", "status_code=422", "level=WARN", "client_ip=203.0.113.9", seenID} {
		if !strings.Contains(out, want) {
			t.Fatalf("log output missing %q:\n%s", want, out)
		}
	}

	if got := m.GetMetrics(); got.TotalRequests != 1 || got.ServerErrors != 0 {
		t.Fatalf("unexpected metrics %+v", got)
	}
}

func TestMiddlewareKeepsIncomingRequestID(t *testing.T) {
	m := NewMiddleware(nil, nil)
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetRequestID(r.Context()) != "abc123" {
			t.Errorf("id = %q", GetRequestID(r.Context()))
		}
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc123")
	h.ServeHTTP(httptest.NewRecorder(), req)
}

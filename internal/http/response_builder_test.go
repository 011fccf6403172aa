package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHTMXResponseBuilder_Basic(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		Status(http.StatusOK).
		Body([]byte("test")).
		Write(w)

	if w.Code != http.StatusOK {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusOK)
	}
	if w.Body.String() != "test" {
		t.Errorf("Body = %q, want %q", w.Body.String(), "test")
	}
}

func TestHTMXResponseBuilder_Triggers(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		TriggerLedgerChanged(7).
		TriggerFormReset().
		TriggerSuccessNotification("Movimento registrado").
		Write(w)

	var triggers map[string]json.RawMessage
	if err := json.Unmarshal([]byte(w.Header().Get("HX-Trigger")), &triggers); err != nil {
		t.Fatalf("HX-Trigger is not JSON: %v", err)
	}
	for _, name := range []string{EventLedgerChanged, EventFormReset, EventShowNotification} {
		if _, ok := triggers[name]; !ok {
			t.Errorf("HX-Trigger missing %q", name)
		}
	}
	if got := string(triggers[EventLedgerChanged]); got != `{"revision":7}` {
		t.Errorf("ledger:changed payload = %s", got)
	}
}

func TestHTMXResponseBuilder_BlockingNotice(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		Status(http.StatusUnprocessableEntity).
		TriggerBlockingNotice("Por favor, preencha todos os campos corretamente.").
		Write(w)

	var triggers map[string]map[string]any
	if err := json.Unmarshal([]byte(w.Header().Get("HX-Trigger")), &triggers); err != nil {
		t.Fatalf("HX-Trigger is not JSON: %v", err)
	}
	n := triggers[EventShowNotification]
	if n["blocking"] != true {
		t.Errorf("blocking = %v, want true", n["blocking"])
	}
	if n["message"] != "Por favor, preencha todos os campos corretamente." {
		t.Errorf("message = %v", n["message"])
	}
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("Status code = %d", w.Code)
	}
}

func TestHTMXResponseBuilder_CustomHeader(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		Header("X-Custom", "value").
		Write(w)

	if got := w.Header().Get("X-Custom"); got != "value" {
		t.Errorf("X-Custom = %q, want %q", got, "value")
	}
	if w.Header().Get("HX-Trigger") != "" {
		t.Error("HX-Trigger should be absent without triggers")
	}
}

func TestHTMXResponseBuilder_JSON(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().JSON(map[string]int{"count": 2}).Write(w)

	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	if strings.TrimSpace(w.Body.String()) != `{"count":2}` {
		t.Errorf("Body = %q", w.Body.String())
	}
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name   string
		build  func(string) *HTMXResponseBuilder
		status int
	}{
		{"bad request", BadRequestError, http.StatusBadRequest},
		{"conflict", ConflictError, http.StatusConflict},
		{"not found", NotFoundError, http.StatusNotFound},
		{"internal", InternalServerError, http.StatusInternalServerError},
		{"too many", TooManyRequestsError, http.StatusTooManyRequests},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.build("<b>falhou</b>").Write(w)

			if w.Code != tt.status {
				t.Errorf("Status code = %d, want %d", w.Code, tt.status)
			}
			body := w.Body.String()
			if strings.Contains(body, "<b>") {
				t.Errorf("message not escaped: %s", body)
			}
			if !strings.Contains(body, `class="error"`) {
				t.Errorf("missing error wrapper: %s", body)
			}
			if ct := w.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
				t.Errorf("Content-Type = %q", ct)
			}
		})
	}
}

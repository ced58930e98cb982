package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestBuilderTriggers(t *testing.T) {
	w := httptest.NewRecorder()
	NewHTMXResponse().
		TriggerEntryCreated(2024, 3).
		TriggerFormReset().
		BodyHTML(`<div class="success">ok</div>`).
		Write(w)

	if w.Code != http.StatusOK {
		t.Fatalf("status: %d", w.Code)
	}
	var triggers map[string]any
	if err := json.Unmarshal([]byte(w.Header().Get("HX-Trigger")), &triggers); err != nil {
		t.Fatalf("HX-Trigger not valid JSON: %v", err)
	}
	if _, ok := triggers["entry:created"]; !ok {
		t.Error("missing entry:created trigger")
	}
	if _, ok := triggers["form:reset"]; !ok {
		t.Error("missing form:reset trigger")
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type: %q", ct)
	}
}

func TestBuilderNoTriggersNoHeader(t *testing.T) {
	w := httptest.NewRecorder()
	NewHTMXResponse().BodyHTML("<p>hi</p>").Write(w)
	if got := w.Header().Get("HX-Trigger"); got != "" {
		t.Errorf("unexpected HX-Trigger: %q", got)
	}
}

func TestErrorResponseEscapesHTML(t *testing.T) {
	w := httptest.NewRecorder()
	UnprocessableEntityError(`<script>alert(1)</script>`).Write(w)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status: %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "<script>") {
		t.Error("error message not escaped")
	}
}

func TestMethodNotAllowed(t *testing.T) {
	w := httptest.NewRecorder()
	MethodNotAllowedError("POST, DELETE").Write(w)
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status: %d", w.Code)
	}
	if got := w.Header().Get("Allow"); got != "POST, DELETE" {
		t.Errorf("Allow: %q", got)
	}
}

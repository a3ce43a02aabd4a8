package httperr

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dgbank/dgbank/internal/domain"
)

func TestWriteStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"not found", domain.ErrAccountNotFound, http.StatusNotFound},
		{"validation", fmt.Errorf("%w: amount must be positive", domain.ErrValidation), http.StatusBadRequest},
		{"business rule", domain.ErrInsufficientFunds, http.StatusBadRequest},
		{"access denied", domain.ErrAccessDenied, http.StatusForbidden},
		{"invalid token", domain.ErrInvalidToken, http.StatusForbidden},
		{"unexpected", fmt.Errorf("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		Write(rec, tt.err)
		if rec.Code != tt.wantStatus {
			t.Errorf("%s: status = %d, want %d", tt.name, rec.Code, tt.wantStatus)
		}
	}
}

func TestWriteHidesInternalDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	Write(rec, fmt.Errorf("dial tcp 10.0.0.1:5432: connection refused"))

	if strings.Contains(rec.Body.String(), "10.0.0.1") {
		t.Errorf("internal error detail leaked to the client: %q", rec.Body.String())
	}
}

func TestJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusCreated, map[string]string{"status": "ok"})

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusCreated)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q, want application/json", ct)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("body = %q", rec.Body.String())
	}
}

package userhandler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dgbank/dgbank/internal/domain"
)

type stubUserService struct {
	registered *domain.User
	loginErr   error
}

func (s *stubUserService) Register(_ context.Context, user *domain.User, _ string) (string, error) {
	s.registered = user
	return "signed-token", nil
}

func (s *stubUserService) Login(_ context.Context, _, _ string) (string, error) {
	if s.loginErr != nil {
		return "", s.loginErr
	}
	return "signed-token", nil
}

const registerBody = `{
	"email": "mario.rossi@example.com",
	"password": "Str0ngPassword",
	"first_name": "Mario",
	"last_name": "Rossi",
	"date_of_birth": "1990-03-15",
	"phone_number": "+390212345678",
	"document": {
		"type": "PASSPORT",
		"number": "AA1234567",
		"issuer": "Questura di Milano",
		"expiry_date": "2030-01-01"
	},
	"address": {
		"street": "Via Roma 1",
		"city": "Milano",
		"postal_code": "20121",
		"country": "IT"
	}
}`

func TestRegister(t *testing.T) {
	srv := &stubUserService{}
	handler := New(srv)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(registerBody))
	rec := httptest.NewRecorder()
	handler.Register(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	if got := rec.Header().Get("Authorization"); got != "Bearer signed-token" {
		t.Errorf("Authorization = %q, want %q", got, "Bearer signed-token")
	}

	if srv.registered == nil {
		t.Fatal("service did not receive the user")
	}
	if srv.registered.Document == nil || srv.registered.Document.Number != "AA1234567" {
		t.Error("document was not carried to the service")
	}
	if srv.registered.Address == nil || srv.registered.Address.City != "Milano" {
		t.Error("address was not carried to the service")
	}
}

func TestRegisterRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"email":`},
		{"invalid email", strings.Replace(registerBody, "mario.rossi@example.com", "not-an-email", 1)},
		{"weak password", strings.Replace(registerBody, "Str0ngPassword", "weak", 1)},
		{"missing first name", strings.Replace(registerBody, "Mario", "", 1)},
		{"future date of birth", strings.Replace(registerBody, "1990-03-15", "2090-01-01", 1)},
		{"unparseable date of birth", strings.Replace(registerBody, "1990-03-15", "15/03/1990", 1)},
	}

	for _, tt := range tests {
		srv := &stubUserService{}
		handler := New(srv)

		req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(tt.body))
		rec := httptest.NewRecorder()
		handler.Register(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want %d", tt.name, rec.Code, http.StatusBadRequest)
		}
		if srv.registered != nil {
			t.Errorf("%s: invalid request reached the service", tt.name)
		}
	}
}

func TestLogin(t *testing.T) {
	handler := New(&stubUserService{})

	body := `{"email":"mario.rossi@example.com","password":"Str0ngPassword"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.Login(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := rec.Header().Get("Authorization"); got != "Bearer signed-token" {
		t.Errorf("Authorization = %q, want %q", got, "Bearer signed-token")
	}
}

func TestLoginIncorrectCredentials(t *testing.T) {
	handler := New(&stubUserService{loginErr: domain.ErrIncorrectCredentials})

	body := `{"email":"mario.rossi@example.com","password":"wrong"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.Login(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}

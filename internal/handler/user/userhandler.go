package userhandler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/dgbank/dgbank/internal/domain"
	"github.com/dgbank/dgbank/internal/handler/httperr"
	"github.com/dgbank/dgbank/internal/validation"
	"github.com/dgbank/dgbank/pkg/dto"
	"github.com/dgbank/dgbank/pkg/logger"
)

const dateLayout = "2006-01-02"

type UserService interface {
	Register(ctx context.Context, user *domain.User, password string) (string, error)
	Login(ctx context.Context, email, password string) (string, error)
}

type UserHandler struct {
	srv UserService
}

func New(srv UserService) *UserHandler {
	return &UserHandler{
		srv: srv,
	}
}

func (uh *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.Register

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Log.Warn("error while decoding a register request")
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	user, err := userFromRequest(req)
	if err != nil {
		logger.Log.Warn("invalid register request", logger.Error(err))
		httperr.Write(w, err)
		return
	}

	token, err := uh.srv.Register(r.Context(), user, req.Password)
	if err != nil {
		httperr.Write(w, err)
		return
	}

	w.Header().Set("Authorization", "Bearer "+token)
	w.WriteHeader(http.StatusCreated)
}

func (uh *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.Login

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Log.Warn("error while decoding a login request")
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if err := validation.Email(req.Email); err != nil {
		httperr.Write(w, err)
		return
	}
	if err := validation.RequiredField(req.Password, "password"); err != nil {
		httperr.Write(w, err)
		return
	}

	token, err := uh.srv.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httperr.Write(w, err)
		return
	}

	w.Header().Set("Authorization", "Bearer "+token)
	w.WriteHeader(http.StatusOK)
}

func userFromRequest(req dto.Register) (*domain.User, error) {
	if err := validation.Email(req.Email); err != nil {
		return nil, err
	}
	if err := validation.Password(req.Password); err != nil {
		return nil, err
	}
	for field, name := range map[string]string{
		req.FirstName:       "first name",
		req.LastName:        "last name",
		req.PhoneNumber:     "phone number",
		req.Document.Type:   "document type",
		req.Document.Number: "document number",
		req.Document.Issuer: "document issuer",
		req.Address.Street:  "street",
		req.Address.City:    "city",
		req.Address.Country: "country",
	} {
		if err := validation.RequiredField(field, name); err != nil {
			return nil, err
		}
	}

	dateOfBirth, err := time.Parse(dateLayout, req.DateOfBirth)
	if err != nil {
		return nil, validation.Errorf("invalid date of birth")
	}
	if err := validation.Date(dateOfBirth, time.Now()); err != nil {
		return nil, err
	}

	documentExpiry, err := time.Parse(dateLayout, req.Document.ExpiryDate)
	if err != nil {
		return nil, validation.Errorf("invalid document expiry date")
	}

	return &domain.User{
		Email:       req.Email,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		DateOfBirth: dateOfBirth,
		PhoneNumber: req.PhoneNumber,
		Document: &domain.Document{
			Type:       domain.DocumentType(req.Document.Type),
			Number:     req.Document.Number,
			Issuer:     req.Document.Issuer,
			ExpiryDate: documentExpiry,
		},
		Address: &domain.Address{
			Street:     req.Address.Street,
			City:       req.Address.City,
			PostalCode: req.Address.PostalCode,
			Country:    req.Address.Country,
		},
	}, nil
}

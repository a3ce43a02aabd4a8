package accounthandler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/dgbank/dgbank/internal/domain"
	"github.com/dgbank/dgbank/internal/handler/httperr"
	"github.com/dgbank/dgbank/internal/handler/middleware"
	"github.com/dgbank/dgbank/internal/validation"
	"github.com/dgbank/dgbank/pkg/dto"
	"github.com/dgbank/dgbank/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type accountService interface {
	Create(ctx context.Context, userID int64) (*domain.Account, error)
	ByID(ctx context.Context, accountID int64) (*domain.Account, error)
	ByUser(ctx context.Context, userID int64) ([]domain.Account, error)
	Freeze(ctx context.Context, accountID int64) error
	Unfreeze(ctx context.Context, accountID int64) error
	Balance(ctx context.Context, accountID int64) (decimal.Decimal, error)
	TotalBalance(ctx context.Context, userID int64) (decimal.Decimal, error)
}

type authGuard interface {
	UserAccess(ctx context.Context, email string, userID int64) error
	AccountAccess(ctx context.Context, email string, accountID int64) error
}

type AccountHandler struct {
	srv   accountService
	guard authGuard
}

func New(srv accountService, guard authGuard) *AccountHandler {
	return &AccountHandler{
		srv:   srv,
		guard: guard,
	}
}

func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAccount
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Log.Warn("error while decoding a create account request")
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if err := validation.ID(req.UserID, "user"); err != nil {
		httperr.Write(w, err)
		return
	}

	if err := h.guard.UserAccess(r.Context(), caller(r), req.UserID); err != nil {
		httperr.Write(w, err)
		return
	}

	account, err := h.srv.Create(r.Context(), req.UserID)
	if err != nil {
		httperr.Write(w, err)
		return
	}

	httperr.JSON(w, http.StatusCreated, toDTO(*account))
}

func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.authorizedAccountID(w, r)
	if !ok {
		return
	}

	account, err := h.srv.ByID(r.Context(), accountID)
	if err != nil {
		httperr.Write(w, err)
		return
	}

	httperr.JSON(w, http.StatusOK, toDTO(*account))
}

func (h *AccountHandler) Balance(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.authorizedAccountID(w, r)
	if !ok {
		return
	}

	balance, err := h.srv.Balance(r.Context(), accountID)
	if err != nil {
		httperr.Write(w, err)
		return
	}

	httperr.JSON(w, http.StatusOK, dto.Balance{Balance: balance.StringFixed(2)})
}

func (h *AccountHandler) Freeze(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.authorizedAccountID(w, r)
	if !ok {
		return
	}

	if err := h.srv.Freeze(r.Context(), accountID); err != nil {
		httperr.Write(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *AccountHandler) Unfreeze(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.authorizedAccountID(w, r)
	if !ok {
		return
	}

	if err := h.srv.Unfreeze(r.Context(), accountID); err != nil {
		httperr.Write(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *AccountHandler) ByUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authorizedUserID(w, r)
	if !ok {
		return
	}

	accounts, err := h.srv.ByUser(r.Context(), userID)
	if err != nil {
		httperr.Write(w, err)
		return
	}

	dtos := make([]dto.Account, len(accounts))
	for i, account := range accounts {
		dtos[i] = toDTO(account)
	}

	httperr.JSON(w, http.StatusOK, dtos)
}

func (h *AccountHandler) TotalBalance(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authorizedUserID(w, r)
	if !ok {
		return
	}

	total, err := h.srv.TotalBalance(r.Context(), userID)
	if err != nil {
		httperr.Write(w, err)
		return
	}

	httperr.JSON(w, http.StatusOK, dto.Balance{Balance: total.StringFixed(2)})
}

func (h *AccountHandler) authorizedAccountID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	accountID, err := strconv.ParseInt(chi.URLParam(r, "accountID"), 10, 64)
	if err != nil {
		logger.Log.Warn("invalid account ID", logger.Error(err))
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return 0, false
	}
	if err := validation.ID(accountID, "account"); err != nil {
		httperr.Write(w, err)
		return 0, false
	}

	if err := h.guard.AccountAccess(r.Context(), caller(r), accountID); err != nil {
		httperr.Write(w, err)
		return 0, false
	}

	return accountID, true
}

func (h *AccountHandler) authorizedUserID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		logger.Log.Warn("invalid user ID", logger.Error(err))
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return 0, false
	}
	if err := validation.ID(userID, "user"); err != nil {
		httperr.Write(w, err)
		return 0, false
	}

	if err := h.guard.UserAccess(r.Context(), caller(r), userID); err != nil {
		httperr.Write(w, err)
		return 0, false
	}

	return userID, true
}

func caller(r *http.Request) string {
	return r.Header.Get(middleware.CallerHeader)
}

func toDTO(account domain.Account) dto.Account {
	return dto.Account{
		ID:       account.ID,
		IBAN:     account.IBAN,
		Balance:  account.Balance.StringFixed(2),
		IsActive: account.IsActive,
		OpenedAt: account.OpenedAt.Format(time.RFC3339),
	}
}

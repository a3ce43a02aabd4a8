package transactionhandler

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

type transactionService interface {
	Deposit(ctx context.Context, accountID int64, amount decimal.Decimal, description string) (*domain.Transaction, error)
	Withdraw(ctx context.Context, accountID int64, amount decimal.Decimal, description string) (*domain.Transaction, error)
	Transfer(ctx context.Context, fromAccountID int64, toIBAN string, amount decimal.Decimal, description string) (*domain.Transaction, error)
	Cancel(ctx context.Context, transactionID int64) error
	ByID(ctx context.Context, transactionID int64) (*domain.Transaction, error)
	ByAccount(ctx context.Context, accountID int64) ([]domain.Transaction, error)
	ByAccountPaginated(ctx context.Context, accountID int64, page, size int) ([]domain.Transaction, error)
	ByUserPaginated(ctx context.Context, userID int64, page, size int) ([]domain.Transaction, error)
	RecentByAccount(ctx context.Context, accountID int64, limit int) ([]domain.Transaction, error)
	RecentByUser(ctx context.Context, userID int64, limit int) ([]domain.Transaction, error)
	IncomesSince(ctx context.Context, userID int64, since time.Time) (decimal.Decimal, error)
	ExpensesSince(ctx context.Context, userID int64, since time.Time) (decimal.Decimal, error)
}

type authGuard interface {
	UserAccess(ctx context.Context, email string, userID int64) error
	AccountAccess(ctx context.Context, email string, accountID int64) error
	TransactionAccess(ctx context.Context, email string, transactionID int64) error
}

type TransactionHandler struct {
	srv   transactionService
	guard authGuard
}

func New(srv transactionService, guard authGuard) *TransactionHandler {
	return &TransactionHandler{
		srv:   srv,
		guard: guard,
	}
}

func (h *TransactionHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	var req dto.DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Log.Warn("error while decoding a deposit request")
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	amount, err := h.authorizedMovement(r, req.AccountID, req.Amount)
	if err != nil {
		httperr.Write(w, err)
		return
	}

	t, err := h.srv.Deposit(r.Context(), req.AccountID, amount, req.Description)
	if err != nil {
		httperr.Write(w, err)
		return
	}

	httperr.JSON(w, http.StatusCreated, toDTO(*t))
}

func (h *TransactionHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	var req dto.WithdrawalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Log.Warn("error while decoding a withdrawal request")
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	amount, err := h.authorizedMovement(r, req.AccountID, req.Amount)
	if err != nil {
		httperr.Write(w, err)
		return
	}

	t, err := h.srv.Withdraw(r.Context(), req.AccountID, amount, req.Description)
	if err != nil {
		httperr.Write(w, err)
		return
	}

	httperr.JSON(w, http.StatusCreated, toDTO(*t))
}

func (h *TransactionHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req dto.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Log.Warn("error while decoding a transfer request")
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if err := validation.IBAN(req.ToIBAN); err != nil {
		httperr.Write(w, err)
		return
	}

	amount, err := h.authorizedMovement(r, req.FromAccountID, req.Amount)
	if err != nil {
		httperr.Write(w, err)
		return
	}

	t, err := h.srv.Transfer(r.Context(), req.FromAccountID, req.ToIBAN, amount, req.Description)
	if err != nil {
		httperr.Write(w, err)
		return
	}

	httperr.JSON(w, http.StatusCreated, toDTO(*t))
}

func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	transactionID, ok := h.authorizedTransactionID(w, r)
	if !ok {
		return
	}

	t, err := h.srv.ByID(r.Context(), transactionID)
	if err != nil {
		httperr.Write(w, err)
		return
	}

	httperr.JSON(w, http.StatusOK, toDTO(*t))
}

func (h *TransactionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	transactionID, ok := h.authorizedTransactionID(w, r)
	if !ok {
		return
	}

	if err := h.srv.Cancel(r.Context(), transactionID); err != nil {
		httperr.Write(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *TransactionHandler) ByAccount(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.authorizedAccountID(w, r)
	if !ok {
		return
	}

	transactions, err := h.srv.ByAccount(r.Context(), accountID)
	if err != nil {
		httperr.Write(w, err)
		return
	}

	httperr.JSON(w, http.StatusOK, toDTOs(transactions))
}

func (h *TransactionHandler) ByAccountPaginated(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.authorizedAccountID(w, r)
	if !ok {
		return
	}

	page, size, err := pagination(r)
	if err != nil {
		httperr.Write(w, err)
		return
	}

	transactions, err := h.srv.ByAccountPaginated(r.Context(), accountID, page, size)
	if err != nil {
		httperr.Write(w, err)
		return
	}

	httperr.JSON(w, http.StatusOK, toDTOs(transactions))
}

func (h *TransactionHandler) ByUserPaginated(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authorizedUserID(w, r)
	if !ok {
		return
	}

	page, size, err := pagination(r)
	if err != nil {
		httperr.Write(w, err)
		return
	}

	transactions, err := h.srv.ByUserPaginated(r.Context(), userID, page, size)
	if err != nil {
		httperr.Write(w, err)
		return
	}

	httperr.JSON(w, http.StatusOK, toDTOs(transactions))
}

func (h *TransactionHandler) RecentByAccount(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.authorizedAccountID(w, r)
	if !ok {
		return
	}

	limit, err := recentLimit(r)
	if err != nil {
		httperr.Write(w, err)
		return
	}

	transactions, err := h.srv.RecentByAccount(r.Context(), accountID, limit)
	if err != nil {
		httperr.Write(w, err)
		return
	}

	httperr.JSON(w, http.StatusOK, toDTOs(transactions))
}

func (h *TransactionHandler) RecentByUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authorizedUserID(w, r)
	if !ok {
		return
	}

	limit, err := recentLimit(r)
	if err != nil {
		httperr.Write(w, err)
		return
	}

	transactions, err := h.srv.RecentByUser(r.Context(), userID, limit)
	if err != nil {
		httperr.Write(w, err)
		return
	}

	httperr.JSON(w, http.StatusOK, toDTOs(transactions))
}

// recentLimit reads the optional limit query parameter, defaulting
// to 10.
func recentLimit(r *http.Request) (int, error) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return 0, validation.Errorf("invalid limit")
		}
		limit = parsed
	}
	if err := validation.Limit(limit); err != nil {
		return 0, err
	}

	return limit, nil
}

func (h *TransactionHandler) IncomesSince(w http.ResponseWriter, r *http.Request) {
	h.aggregateSince(w, r, h.srv.IncomesSince)
}

func (h *TransactionHandler) ExpensesSince(w http.ResponseWriter, r *http.Request) {
	h.aggregateSince(w, r, h.srv.ExpensesSince)
}

func (h *TransactionHandler) aggregateSince(
	w http.ResponseWriter,
	r *http.Request,
	aggregate func(ctx context.Context, userID int64, since time.Time) (decimal.Decimal, error),
) {
	userID, ok := h.authorizedUserID(w, r)
	if !ok {
		return
	}

	since, err := time.Parse(time.RFC3339, r.URL.Query().Get("since"))
	if err != nil {
		httperr.Write(w, validation.Errorf("invalid since date"))
		return
	}
	if err := validation.Date(since, time.Now()); err != nil {
		httperr.Write(w, err)
		return
	}

	total, err := aggregate(r.Context(), userID, since)
	if err != nil {
		httperr.Write(w, err)
		return
	}

	httperr.JSON(w, http.StatusOK, dto.Amount{Amount: total.StringFixed(2)})
}

// authorizedMovement validates the amount and checks that the caller
// owns the account funds are moving out of or into.
func (h *TransactionHandler) authorizedMovement(r *http.Request, accountID int64, rawAmount string) (decimal.Decimal, error) {
	if err := validation.ID(accountID, "account"); err != nil {
		return decimal.Zero, err
	}

	amount, err := decimal.NewFromString(rawAmount)
	if err != nil {
		return decimal.Zero, validation.Errorf("invalid amount")
	}
	if err := validation.Amount(amount); err != nil {
		return decimal.Zero, err
	}

	if err := h.guard.AccountAccess(r.Context(), caller(r), accountID); err != nil {
		return decimal.Zero, err
	}

	return amount, nil
}

func (h *TransactionHandler) authorizedTransactionID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	transactionID, err := parseID(r, "transactionID")
	if err != nil {
		httperr.Write(w, err)
		return 0, false
	}

	if err := h.guard.TransactionAccess(r.Context(), caller(r), transactionID); err != nil {
		httperr.Write(w, err)
		return 0, false
	}

	return transactionID, true
}

func (h *TransactionHandler) authorizedAccountID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	accountID, err := parseID(r, "accountID")
	if err != nil {
		httperr.Write(w, err)
		return 0, false
	}

	if err := h.guard.AccountAccess(r.Context(), caller(r), accountID); err != nil {
		httperr.Write(w, err)
		return 0, false
	}

	return accountID, true
}

func (h *TransactionHandler) authorizedUserID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, err := parseID(r, "userID")
	if err != nil {
		httperr.Write(w, err)
		return 0, false
	}

	if err := h.guard.UserAccess(r.Context(), caller(r), userID); err != nil {
		httperr.Write(w, err)
		return 0, false
	}

	return userID, true
}

func pagination(r *http.Request) (int, int, error) {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil {
		return 0, 0, validation.Errorf("invalid page")
	}
	size, err := strconv.Atoi(r.URL.Query().Get("size"))
	if err != nil {
		return 0, 0, validation.Errorf("invalid page size")
	}
	if err := validation.Pagination(page, size); err != nil {
		return 0, 0, err
	}

	return page, size, nil
}

func parseID(r *http.Request, param string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil {
		return 0, validation.Errorf("invalid %s", param)
	}
	if err := validation.ID(id, param); err != nil {
		return 0, err
	}

	return id, nil
}

func caller(r *http.Request) string {
	return r.Header.Get(middleware.CallerHeader)
}

func toDTO(t domain.Transaction) dto.Transaction {
	return dto.Transaction{
		ID:            t.ID,
		TransactionID: t.TransactionID,
		FromAccountID: t.FromAccountID,
		ToAccountID:   t.ToAccountID,
		Amount:        t.Amount.StringFixed(2),
		Description:   t.Description,
		Type:          string(t.Type),
		Status:        string(t.Status),
		CreatedAt:     t.CreatedAt.Format(time.RFC3339),
	}
}

func toDTOs(transactions []domain.Transaction) []dto.Transaction {
	dtos := make([]dto.Transaction, len(transactions))
	for i, t := range transactions {
		dtos[i] = toDTO(t)
	}
	return dtos
}

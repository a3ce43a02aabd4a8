package cardhandler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/dgbank/dgbank/internal/domain"
	"github.com/dgbank/dgbank/internal/handler/httperr"
	"github.com/dgbank/dgbank/internal/handler/middleware"
	"github.com/dgbank/dgbank/internal/validation"
	"github.com/dgbank/dgbank/pkg/dto"
	"github.com/dgbank/dgbank/pkg/logger"
	"github.com/go-chi/chi/v5"
)

const expiryLayout = "2006-01-02"

type cardService interface {
	Issue(ctx context.Context, accountID int64) (*domain.Card, error)
	Block(ctx context.Context, cardID int64) error
	Activate(ctx context.Context, cardID int64) error
	ByID(ctx context.Context, cardID int64) (*domain.Card, error)
	ByNumber(ctx context.Context, number string) (*domain.Card, error)
	ByUser(ctx context.Context, userID int64) ([]domain.Card, error)
	ByAccount(ctx context.Context, accountID int64) ([]domain.Card, error)
}

type authGuard interface {
	UserAccess(ctx context.Context, email string, userID int64) error
	AccountAccess(ctx context.Context, email string, accountID int64) error
	CardAccess(ctx context.Context, email string, cardID int64) error
}

type CardHandler struct {
	srv   cardService
	guard authGuard
}

func New(srv cardService, guard authGuard) *CardHandler {
	return &CardHandler{
		srv:   srv,
		guard: guard,
	}
}

func (h *CardHandler) Issue(w http.ResponseWriter, r *http.Request) {
	var req dto.IssueCard
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Log.Warn("error while decoding an issue card request")
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if err := validation.ID(req.AccountID, "account"); err != nil {
		httperr.Write(w, err)
		return
	}

	if err := h.guard.AccountAccess(r.Context(), caller(r), req.AccountID); err != nil {
		httperr.Write(w, err)
		return
	}

	card, err := h.srv.Issue(r.Context(), req.AccountID)
	if err != nil {
		httperr.Write(w, err)
		return
	}

	// the one response that carries the full number and CVV
	httperr.JSON(w, http.StatusCreated, dto.Card{
		ID:         card.ID,
		Number:     card.Number,
		CVV:        card.CVV,
		ExpiryDate: card.ExpiryDate.Format(expiryLayout),
		IsActive:   card.IsActive,
		AccountID:  card.AccountID,
	})
}

func (h *CardHandler) Get(w http.ResponseWriter, r *http.Request) {
	cardID, ok := h.authorizedCardID(w, r)
	if !ok {
		return
	}

	card, err := h.srv.ByID(r.Context(), cardID)
	if err != nil {
		httperr.Write(w, err)
		return
	}

	httperr.JSON(w, http.StatusOK, toDTO(*card))
}

func (h *CardHandler) Block(w http.ResponseWriter, r *http.Request) {
	cardID, ok := h.authorizedCardID(w, r)
	if !ok {
		return
	}

	if err := h.srv.Block(r.Context(), cardID); err != nil {
		httperr.Write(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *CardHandler) Activate(w http.ResponseWriter, r *http.Request) {
	cardID, ok := h.authorizedCardID(w, r)
	if !ok {
		return
	}

	if err := h.srv.Activate(r.Context(), cardID); err != nil {
		httperr.Write(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// ByNumber resolves a card from its full number, passed as a query
// parameter. Ownership is checked after the lookup, so strangers
// probing numbers get an access error rather than card data.
func (h *CardHandler) ByNumber(w http.ResponseWriter, r *http.Request) {
	card, err := h.srv.ByNumber(r.Context(), r.URL.Query().Get("number"))
	if err != nil {
		httperr.Write(w, err)
		return
	}

	if err := h.guard.CardAccess(r.Context(), caller(r), card.ID); err != nil {
		httperr.Write(w, err)
		return
	}

	httperr.JSON(w, http.StatusOK, toDTO(*card))
}

func (h *CardHandler) ByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := parseID(r, "userID")
	if err != nil {
		httperr.Write(w, err)
		return
	}

	if err := h.guard.UserAccess(r.Context(), caller(r), userID); err != nil {
		httperr.Write(w, err)
		return
	}

	cards, err := h.srv.ByUser(r.Context(), userID)
	if err != nil {
		httperr.Write(w, err)
		return
	}

	httperr.JSON(w, http.StatusOK, toDTOs(cards))
}

func (h *CardHandler) ByAccount(w http.ResponseWriter, r *http.Request) {
	accountID, err := parseID(r, "accountID")
	if err != nil {
		httperr.Write(w, err)
		return
	}

	if err := h.guard.AccountAccess(r.Context(), caller(r), accountID); err != nil {
		httperr.Write(w, err)
		return
	}

	cards, err := h.srv.ByAccount(r.Context(), accountID)
	if err != nil {
		httperr.Write(w, err)
		return
	}

	httperr.JSON(w, http.StatusOK, toDTOs(cards))
}

func (h *CardHandler) authorizedCardID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	cardID, err := parseID(r, "cardID")
	if err != nil {
		httperr.Write(w, err)
		return 0, false
	}

	if err := h.guard.CardAccess(r.Context(), caller(r), cardID); err != nil {
		httperr.Write(w, err)
		return 0, false
	}

	return cardID, true
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

func toDTO(card domain.Card) dto.Card {
	return dto.Card{
		ID:         card.ID,
		Number:     card.Masked(),
		ExpiryDate: card.ExpiryDate.Format(expiryLayout),
		IsActive:   card.IsActive,
		AccountID:  card.AccountID,
	}
}

func toDTOs(cards []domain.Card) []dto.Card {
	dtos := make([]dto.Card, len(cards))
	for i, card := range cards {
		dtos[i] = toDTO(card)
	}
	return dtos
}

package service

import (
	"context"
	"strconv"
	"time"

	"github.com/dgbank/dgbank/internal/domain"
	"github.com/dgbank/dgbank/internal/validation"
	"github.com/dgbank/dgbank/pkg/logger"
	"github.com/theplant/luhn"
)

// Cards expire this many years after issuance.
const cardValidityYears = 4

type cardRepository interface {
	CreateCard(ctx context.Context, card *domain.Card) error
	CardByID(ctx context.Context, id int64) (*domain.Card, error)
	CardByNumber(ctx context.Context, number string) (*domain.Card, error)
	CardsByOwner(ctx context.Context, ownerID int64) ([]domain.Card, error)
	CardsByAccount(ctx context.Context, accountID int64) ([]domain.Card, error)
	SetCardActive(ctx context.Context, cardID int64, active bool) (bool, error)
}

type cardAccountRepository interface {
	AccountByID(ctx context.Context, id int64) (*domain.Account, error)
	AccountExists(ctx context.Context, id int64) (bool, error)
}

type cardUserRepository interface {
	UserByID(ctx context.Context, id int64) (*domain.User, error)
	UserExists(ctx context.Context, id int64) (bool, error)
}

type CardService struct {
	cards    cardRepository
	accounts cardAccountRepository
	users    cardUserRepository
	ids      *IdentifierGenerator
	now      func() time.Time
}

func NewCardService(cards cardRepository, accounts cardAccountRepository, users cardUserRepository, ids *IdentifierGenerator) *CardService {
	return &CardService{
		cards:    cards,
		accounts: accounts,
		users:    users,
		ids:      ids,
		now:      time.Now,
	}
}

// Issue creates a card for an active account whose owner is active and
// identity-verified.
func (s *CardService) Issue(ctx context.Context, accountID int64) (*domain.Card, error) {
	account, err := s.accounts.AccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !account.IsActive {
		logger.Log.Warn("card issue for frozen account", logger.Int64("account_id", accountID))
		return nil, domain.ErrAccountNotActive
	}

	owner, err := s.users.UserByID(ctx, account.OwnerID)
	if err != nil {
		return nil, err
	}
	if !owner.IsActive {
		logger.Log.Warn("card issue for inactive owner", logger.Int64("user_id", owner.ID))
		return nil, domain.ErrUserNotActive
	}
	if !owner.ValidIdentity(s.now()) {
		logger.Log.Warn("card issue with invalid identity document", logger.Int64("user_id", owner.ID))
		return nil, domain.ErrInvalidIdentity
	}

	number, err := s.ids.CardNumber(ctx)
	if err != nil {
		return nil, err
	}

	card := &domain.Card{
		Number:     number,
		CVV:        s.ids.CVV(),
		ExpiryDate: s.now().AddDate(cardValidityYears, 0, 0),
		AccountID:  account.ID,
		OwnerID:    owner.ID,
	}
	if err := s.cards.CreateCard(ctx, card); err != nil {
		return nil, err
	}

	return card, nil
}

func (s *CardService) Block(ctx context.Context, cardID int64) error {
	changed, err := s.cards.SetCardActive(ctx, cardID, false)
	if err != nil {
		return err
	}
	if !changed {
		return domain.ErrCardBlocked
	}

	return nil
}

func (s *CardService) Activate(ctx context.Context, cardID int64) error {
	changed, err := s.cards.SetCardActive(ctx, cardID, true)
	if err != nil {
		return err
	}
	if !changed {
		return domain.ErrCardActive
	}

	return nil
}

func (s *CardService) ByID(ctx context.Context, cardID int64) (*domain.Card, error) {
	return s.cards.CardByID(ctx, cardID)
}

// ByNumber checks the number's shape and Luhn check digit before
// hitting the store.
func (s *CardService) ByNumber(ctx context.Context, number string) (*domain.Card, error) {
	if err := validation.CardNumber(number); err != nil {
		return nil, err
	}

	digits, err := strconv.ParseInt(whitespace.ReplaceAllString(number, ""), 10, 64)
	if err != nil || !luhn.Valid(int(digits)) {
		return nil, validation.Errorf("invalid card number")
	}

	return s.cards.CardByNumber(ctx, number)
}

func (s *CardService) ByUser(ctx context.Context, userID int64) ([]domain.Card, error) {
	exists, err := s.users.UserExists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrUserNotFound
	}

	return s.cards.CardsByOwner(ctx, userID)
}

func (s *CardService) ByAccount(ctx context.Context, accountID int64) ([]domain.Card, error) {
	exists, err := s.accounts.AccountExists(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrAccountNotFound
	}

	return s.cards.CardsByAccount(ctx, accountID)
}

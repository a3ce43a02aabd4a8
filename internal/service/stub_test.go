package service

import (
	"context"
	"sync"
	"time"

	"github.com/dgbank/dgbank/internal/domain"
	"github.com/shopspring/decimal"
)

// stubStore is an in-memory implementation of every repository
// interface the services consume. Mutations run under one mutex so the
// concurrency-sensitive tests observe atomic behavior comparable to
// the real store.
type stubStore struct {
	mu sync.Mutex

	users        map[int64]*domain.User
	accounts     map[int64]*domain.Account
	cards        map[int64]*domain.Card
	transactions map[int64]*domain.Transaction

	nextAccountID     int64
	nextCardID        int64
	nextTransactionID int64

	creditErr   error
	debitErr    error
	transferErr error
}

func newStubStore() *stubStore {
	return &stubStore{
		users:        map[int64]*domain.User{},
		accounts:     map[int64]*domain.Account{},
		cards:        map[int64]*domain.Card{},
		transactions: map[int64]*domain.Transaction{},
	}
}

func (s *stubStore) addUser(user domain.User) *domain.User {
	s.users[user.ID] = &user
	return &user
}

func (s *stubStore) addAccount(account domain.Account) *domain.Account {
	if account.ID == 0 {
		s.nextAccountID++
		account.ID = s.nextAccountID
	} else if account.ID > s.nextAccountID {
		s.nextAccountID = account.ID
	}
	s.accounts[account.ID] = &account
	return &account
}

func (s *stubStore) addTransaction(t domain.Transaction) *domain.Transaction {
	if t.ID == 0 {
		s.nextTransactionID++
		t.ID = s.nextTransactionID
	}
	s.transactions[t.ID] = &t
	return &t
}

func (s *stubStore) UserByID(_ context.Context, id int64) (*domain.User, error) {
	if user, ok := s.users[id]; ok {
		u := *user
		return &u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (s *stubStore) UserByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range s.users {
		if user.Email == email {
			u := *user
			return &u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (s *stubStore) UserExists(_ context.Context, id int64) (bool, error) {
	_, ok := s.users[id]
	return ok, nil
}

func (s *stubStore) EmailExists(_ context.Context, email string) (bool, error) {
	for _, user := range s.users {
		if user.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubStore) DocumentNumberExists(_ context.Context, number string) (bool, error) {
	for _, user := range s.users {
		if user.Document != nil && user.Document.Number == number {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubStore) CreateUser(_ context.Context, user *domain.User) error {
	user.ID = int64(len(s.users) + 1)
	user.IsActive = true
	s.users[user.ID] = user
	return nil
}

func (s *stubStore) CreateAccount(_ context.Context, ownerID int64, iban string) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextAccountID++
	account := &domain.Account{
		ID:       s.nextAccountID,
		IBAN:     iban,
		Balance:  decimal.Zero,
		IsActive: true,
		OwnerID:  ownerID,
		OpenedAt: time.Now(),
	}
	s.accounts[account.ID] = account

	a := *account
	return &a, nil
}

func (s *stubStore) AccountByID(_ context.Context, id int64) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if account, ok := s.accounts[id]; ok {
		a := *account
		return &a, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (s *stubStore) AccountByIBAN(_ context.Context, iban string) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, account := range s.accounts {
		if account.IBAN == iban {
			a := *account
			return &a, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (s *stubStore) AccountsByOwner(_ context.Context, ownerID int64) ([]domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var accounts []domain.Account
	for _, account := range s.accounts {
		if account.OwnerID == ownerID {
			accounts = append(accounts, *account)
		}
	}
	return accounts, nil
}

func (s *stubStore) AccountExists(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.accounts[id]
	return ok, nil
}

func (s *stubStore) IBANExists(_ context.Context, iban string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, account := range s.accounts {
		if account.IBAN == iban {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubStore) Credit(_ context.Context, accountID int64, amount decimal.Decimal) error {
	if s.creditErr != nil {
		return s.creditErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[accountID]
	if !ok {
		return domain.ErrAccountNotFound
	}
	account.Balance = account.Balance.Add(amount)
	return nil
}

func (s *stubStore) Debit(_ context.Context, accountID int64, amount decimal.Decimal) error {
	if s.debitErr != nil {
		return s.debitErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[accountID]
	if !ok {
		return domain.ErrAccountNotFound
	}
	if account.Balance.Cmp(amount) < 0 {
		return domain.ErrInsufficientFunds
	}
	account.Balance = account.Balance.Sub(amount)
	return nil
}

func (s *stubStore) SetAccountActive(_ context.Context, accountID int64, active bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[accountID]
	if !ok {
		return false, domain.ErrAccountNotFound
	}
	if account.IsActive == active {
		return false, nil
	}
	account.IsActive = active
	return true, nil
}

func (s *stubStore) TotalActiveBalance(_ context.Context, ownerID int64) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := decimal.Zero
	for _, account := range s.accounts {
		if account.OwnerID == ownerID && account.IsActive {
			total = total.Add(account.Balance)
		}
	}
	return total, nil
}

func (s *stubStore) ApplyTransfer(_ context.Context, fromID, toID int64, amount decimal.Decimal) error {
	if s.transferErr != nil {
		return s.transferErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	from, ok := s.accounts[fromID]
	if !ok {
		return domain.ErrAccountNotFound
	}
	to, ok := s.accounts[toID]
	if !ok {
		return domain.ErrAccountNotFound
	}
	if from.Balance.Cmp(amount) < 0 {
		return domain.ErrInsufficientFunds
	}
	from.Balance = from.Balance.Sub(amount)
	to.Balance = to.Balance.Add(amount)
	return nil
}

func (s *stubStore) CreateCard(_ context.Context, card *domain.Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextCardID++
	card.ID = s.nextCardID
	card.IsActive = true
	c := *card
	s.cards[card.ID] = &c
	return nil
}

func (s *stubStore) CardByID(_ context.Context, id int64) (*domain.Card, error) {
	if card, ok := s.cards[id]; ok {
		c := *card
		return &c, nil
	}
	return nil, domain.ErrCardNotFound
}

func (s *stubStore) CardByNumber(_ context.Context, number string) (*domain.Card, error) {
	for _, card := range s.cards {
		if card.Number == number {
			c := *card
			return &c, nil
		}
	}
	return nil, domain.ErrCardNotFound
}

func (s *stubStore) CardsByOwner(_ context.Context, ownerID int64) ([]domain.Card, error) {
	var cards []domain.Card
	for _, card := range s.cards {
		if card.OwnerID == ownerID {
			cards = append(cards, *card)
		}
	}
	return cards, nil
}

func (s *stubStore) CardsByAccount(_ context.Context, accountID int64) ([]domain.Card, error) {
	var cards []domain.Card
	for _, card := range s.cards {
		if card.AccountID == accountID {
			cards = append(cards, *card)
		}
	}
	return cards, nil
}

func (s *stubStore) CardNumberExists(_ context.Context, number string) (bool, error) {
	for _, card := range s.cards {
		if card.Number == number {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubStore) SetCardActive(_ context.Context, cardID int64, active bool) (bool, error) {
	card, ok := s.cards[cardID]
	if !ok {
		return false, domain.ErrCardNotFound
	}
	if card.IsActive == active {
		return false, nil
	}
	card.IsActive = active
	return true, nil
}

func (s *stubStore) CreateTransaction(_ context.Context, t *domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextTransactionID++
	t.ID = s.nextTransactionID
	t.CreatedAt = time.Now()
	stored := *t
	s.transactions[t.ID] = &stored
	return nil
}

func (s *stubStore) UpdateTransactionStatus(_ context.Context, id int64, status domain.TransactionStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.transactions[id]
	if !ok {
		return domain.ErrTransactionNotFound
	}
	t.Status = status
	return nil
}

func (s *stubStore) CancelPendingTransaction(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.transactions[id]
	if !ok {
		return domain.ErrTransactionNotFound
	}
	if t.Status != domain.StatusPending {
		return domain.ErrCannotCancel
	}
	t.Status = domain.StatusCancelled
	return nil
}

func (s *stubStore) TransactionByID(_ context.Context, id int64) (*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.transactions[id]; ok {
		stored := *t
		return &stored, nil
	}
	return nil, domain.ErrTransactionNotFound
}

func (s *stubStore) TransactionsByAccount(_ context.Context, accountID int64) ([]domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var transactions []domain.Transaction
	for _, t := range s.transactions {
		if t.FromAccountID == accountID || t.ToAccountID == accountID {
			transactions = append(transactions, *t)
		}
	}
	return transactions, nil
}

func (s *stubStore) TransactionsByAccountPaginated(ctx context.Context, accountID int64, page, size int) ([]domain.Transaction, error) {
	all, err := s.TransactionsByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return paginate(all, page, size), nil
}

func (s *stubStore) TransactionsByUserPaginated(_ context.Context, userID int64, page, size int) ([]domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var transactions []domain.Transaction
	for _, t := range s.transactions {
		if s.ownerOf(t.FromAccountID) == userID || s.ownerOf(t.ToAccountID) == userID {
			transactions = append(transactions, *t)
		}
	}
	return paginate(transactions, page, size), nil
}

func (s *stubStore) IncomesSince(_ context.Context, userID int64, since time.Time) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := decimal.Zero
	for _, t := range s.transactions {
		incoming := t.Type == domain.TypeDeposit || t.Type == domain.TypeTransfer
		if incoming && s.ownerOf(t.ToAccountID) == userID && t.CreatedAt.After(since) {
			total = total.Add(t.Amount)
		}
	}
	return total, nil
}

func (s *stubStore) ExpensesSince(_ context.Context, userID int64, since time.Time) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := decimal.Zero
	for _, t := range s.transactions {
		if t.Type != domain.TypeDeposit && s.ownerOf(t.FromAccountID) == userID && t.CreatedAt.After(since) {
			total = total.Add(t.Amount)
		}
	}
	return total, nil
}

func (s *stubStore) ownerOf(accountID int64) int64 {
	if account, ok := s.accounts[accountID]; ok {
		return account.OwnerID
	}
	return 0
}

func paginate(transactions []domain.Transaction, page, size int) []domain.Transaction {
	start := page * size
	if start >= len(transactions) {
		return nil
	}
	end := start + size
	if end > len(transactions) {
		end = len(transactions)
	}
	return transactions[start:end]
}

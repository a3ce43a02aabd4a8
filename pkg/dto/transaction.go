package dto

type DepositRequest struct {
	AccountID   int64  `json:"account_id"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
}

type WithdrawalRequest struct {
	AccountID   int64  `json:"account_id"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
}

type TransferRequest struct {
	FromAccountID int64  `json:"from_account_id"`
	ToIBAN        string `json:"to_iban"`
	Amount        string `json:"amount"`
	Description   string `json:"description"`
}

type Transaction struct {
	ID            int64  `json:"id"`
	TransactionID string `json:"transaction_id"`
	FromAccountID int64  `json:"from_account_id"`
	ToAccountID   int64  `json:"to_account_id"`
	Amount        string `json:"amount"`
	Description   string `json:"description"`
	Type          string `json:"type"`
	Status        string `json:"status"`
	CreatedAt     string `json:"created_at"`
}

type Amount struct {
	Amount string `json:"amount"`
}

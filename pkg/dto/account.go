package dto

type CreateAccount struct {
	UserID int64 `json:"user_id"`
}

type Account struct {
	ID       int64  `json:"id"`
	IBAN     string `json:"iban"`
	Balance  string `json:"balance"`
	IsActive bool   `json:"is_active"`
	OpenedAt string `json:"opened_at"`
}

type Balance struct {
	Balance string `json:"balance"`
}

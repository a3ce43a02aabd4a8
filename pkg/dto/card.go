package dto

type IssueCard struct {
	AccountID int64 `json:"account_id"`
}

// Card carries the full number and CVV only in the issue response;
// everywhere else the number is masked and the CVV omitted.
type Card struct {
	ID         int64  `json:"id"`
	Number     string `json:"number"`
	CVV        string `json:"cvv,omitempty"`
	ExpiryDate string `json:"expiry_date"`
	IsActive   bool   `json:"is_active"`
	AccountID  int64  `json:"account_id"`
}

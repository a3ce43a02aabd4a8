package dto

type Register struct {
	Email       string   `json:"email"`
	Password    string   `json:"password"`
	FirstName   string   `json:"first_name"`
	LastName    string   `json:"last_name"`
	DateOfBirth string   `json:"date_of_birth"`
	PhoneNumber string   `json:"phone_number"`
	Document    Document `json:"document"`
	Address     Address  `json:"address"`
}

type Document struct {
	Type       string `json:"type"`
	Number     string `json:"number"`
	Issuer     string `json:"issuer"`
	ExpiryDate string `json:"expiry_date"`
}

type Address struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type Login struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

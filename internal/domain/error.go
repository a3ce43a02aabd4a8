package domain

import (
	"errors"
	"fmt"
)

// Base error kinds. Specific errors wrap exactly one of these so the
// boundary can classify with a single errors.Is check per kind.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrBusinessRule = errors.New("business rule violated")
	ErrUnauthorized = errors.New("unauthorized")
)

var (
	ErrUserNotFound        = fmt.Errorf("user %w", ErrNotFound)
	ErrAccountNotFound     = fmt.Errorf("account %w", ErrNotFound)
	ErrCardNotFound        = fmt.Errorf("card %w", ErrNotFound)
	ErrTransactionNotFound = fmt.Errorf("transaction %w", ErrNotFound)
	ErrRecipientNotFound   = fmt.Errorf("recipient iban %w", ErrNotFound)
)

var (
	ErrEmailTaken    = fmt.Errorf("%w: email already registered", ErrValidation)
	ErrDocumentTaken = fmt.Errorf("%w: document already registered", ErrValidation)
)

var (
	ErrUserNotActive       = fmt.Errorf("%w: user is not active", ErrBusinessRule)
	ErrUserNotAdult        = fmt.Errorf("%w: user must be an adult", ErrBusinessRule)
	ErrInvalidIdentity     = fmt.Errorf("%w: identity document missing or expired", ErrBusinessRule)
	ErrAccountNotActive    = fmt.Errorf("%w: account is not active", ErrBusinessRule)
	ErrAccountFrozen       = fmt.Errorf("%w: account is already frozen", ErrBusinessRule)
	ErrAccountActive       = fmt.Errorf("%w: account is already active", ErrBusinessRule)
	ErrInsufficientFunds   = fmt.Errorf("%w: insufficient funds", ErrBusinessRule)
	ErrSameAccountTransfer = fmt.Errorf("%w: cannot transfer to the same account", ErrBusinessRule)
	ErrCardBlocked         = fmt.Errorf("%w: card is already blocked", ErrBusinessRule)
	ErrCardActive          = fmt.Errorf("%w: card is already active", ErrBusinessRule)
	ErrCannotCancel        = fmt.Errorf("%w: only pending transactions can be cancelled", ErrBusinessRule)
	ErrCannotRollback      = fmt.Errorf("%w: only completed transactions can be rolled back", ErrBusinessRule)
)

var (
	ErrInvalidToken         = fmt.Errorf("%w: invalid token", ErrUnauthorized)
	ErrAccessDenied         = fmt.Errorf("%w: access denied", ErrUnauthorized)
	ErrIncorrectCredentials = fmt.Errorf("%w: incorrect email or password", ErrUnauthorized)
)

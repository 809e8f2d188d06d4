// file: model/request.go

package model

import "github.com/shopspring/decimal"

// RegisterRequest defines the payload for creating a new user.
// It includes validation tags to ensure data integrity at the entry point.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest defines the payload for user authentication.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// OpenAccountRequest defines the payload for opening a new bank account.
// InterestRate only applies to savings accounts, OverdraftLimit only to
// checking accounts; both are ignored for the other types.
type OpenAccountRequest struct {
	Type           AccountType     `json:"account_type" validate:"required,oneof=standard savings checking"`
	InitialDeposit decimal.Decimal `json:"initial_deposit" validate:"required"`
	InterestRate   decimal.Decimal `json:"interest_rate" validate:"gte=0"`
	OverdraftLimit decimal.Decimal `json:"overdraft_limit" validate:"gte=0"`
}

// AmountRequest defines the payload for deposits and withdrawals.
type AmountRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required"`
}

// TransferRequest defines the payload for a money transfer.
type TransferRequest struct {
	FromAccountID int             `json:"from_account_id" validate:"required"`
	ToAccountID   int             `json:"to_account_id" validate:"required"`
	Amount        decimal.Decimal `json:"amount" validate:"required"`
}

package model

import "errors"

// Domain errors returned by Account operations. The service layer maps
// them onto its own result types; the HTTP layer maps them to status codes.
var (
	// ErrInvalidAmount rejects amounts that are zero or negative.
	ErrInvalidAmount = errors.New("amount must be greater than zero")

	// ErrInsufficientFunds rejects withdrawals that would push the balance
	// below the account's floor.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInterestNotSupported rejects interest calculation on anything but
	// a savings account.
	ErrInterestNotSupported = errors.New("account type does not earn interest")
)

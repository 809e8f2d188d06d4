package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType selects the withdrawal policy for an account.
type AccountType string

const (
	AccountTypeStandard AccountType = "standard"
	AccountTypeSavings  AccountType = "savings"
	AccountTypeChecking AccountType = "checking"
)

// Account is a customer bank account. Type decides which of the variant
// fields is meaningful: InterestRate for savings, OverdraftLimit for
// checking; standard accounts carry neither.
type Account struct {
	ID             int             `json:"id"`
	UserID         int             `json:"user_id"`
	AccountNumber  string          `json:"account_number"`
	Type           AccountType     `json:"account_type"`
	Balance        decimal.Decimal `json:"balance"`
	InterestRate   decimal.Decimal `json:"interest_rate,omitempty"`
	OverdraftLimit decimal.Decimal `json:"overdraft_limit,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// floor is the lowest balance a withdrawal may leave behind.
func (a *Account) floor() decimal.Decimal {
	switch a.Type {
	case AccountTypeChecking:
		return a.OverdraftLimit.Neg()
	default:
		return decimal.Zero
	}
}

// Deposit increases the balance. Amounts must be strictly positive; there
// is no upper bound.
func (a *Account) Deposit(amount decimal.Decimal) error {
	if amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	a.Balance = a.Balance.Add(amount)
	return nil
}

// Withdraw decreases the balance, subject to the account's policy:
// standard and savings accounts may not go negative, checking accounts may
// go down to -OverdraftLimit.
func (a *Account) Withdraw(amount decimal.Decimal) error {
	if amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if a.Balance.Sub(amount).LessThan(a.floor()) {
		return ErrInsufficientFunds
	}
	a.Balance = a.Balance.Sub(amount)
	return nil
}

// CalculateInterest credits one interest period onto a savings account:
// balance += balance * rate / 100, rounded to cents. It returns the amount
// credited. A non-positive interest amount leaves the balance untouched
// and credits nothing.
func (a *Account) CalculateInterest() (decimal.Decimal, error) {
	if a.Type != AccountTypeSavings {
		return decimal.Zero, ErrInterestNotSupported
	}
	interest := a.Balance.Mul(a.InterestRate).Div(decimal.NewFromInt(100)).Round(2)
	if interest.Sign() <= 0 {
		return decimal.Zero, nil
	}
	a.Balance = a.Balance.Add(interest)
	return interest, nil
}

package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind encodes the direction of a balance change. Amounts are
// always positive; the kind carries the sign.
type TransactionKind string

const (
	TransactionDeposit     TransactionKind = "Deposit"
	TransactionWithdrawal  TransactionKind = "Withdrawal"
	TransactionTransferOut TransactionKind = "Transfer Out"
	TransactionTransferIn  TransactionKind = "Transfer In"
)

// Transaction is one immutable record of a balance-affecting event. It is
// written exactly once per accepted operation and never updated or deleted.
type Transaction struct {
	ID          int             `json:"id"`
	AccountID   int             `json:"account_id"`
	Kind        TransactionKind `json:"kind"`
	Amount      decimal.Decimal `json:"amount"`
	CreatedAt   time.Time       `json:"created_at"`
	Description string          `json:"description"`
}

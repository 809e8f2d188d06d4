package events

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// TransferCompleted is emitted after a transfer has been committed to the
// database. Delivery is best-effort: publish failures are logged and
// dropped, never rolled back into the ledger.
type TransferCompleted struct {
	OutTransactionID int             `json:"out_transaction_id"`
	InTransactionID  int             `json:"in_transaction_id"`
	FromAccountID    int             `json:"from_account_id"`
	ToAccountID      int             `json:"to_account_id"`
	Amount           decimal.Decimal `json:"amount"`
	OccurredAt       time.Time       `json:"occurred_at"`
}

// Publisher delivers ledger events to interested consumers.
type Publisher interface {
	Publish(ctx context.Context, event any) error
}

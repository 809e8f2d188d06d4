package repository

import (
	"database/sql"
	"go-bank-ledger/logger"
	"go-bank-ledger/model"

	"github.com/sirupsen/logrus"
)

// ITransactionRepository defines the contract for the append-only
// transaction log. Records are never updated or deleted.
type ITransactionRepository interface {
	CreateTransaction(tx *sql.Tx, transaction *model.Transaction) error
	GetTransactionsByAccountID(accountID int) ([]*model.Transaction, error)
	GetTransactionByID(transactionID int) (*model.Transaction, error)
}

// TransactionRepository implements ITransactionRepository.
type TransactionRepository struct {
	DB *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{DB: db}
}

func (r *TransactionRepository) CreateTransaction(tx *sql.Tx, transaction *model.Transaction) error {
	log := logger.Log.WithFields(logrus.Fields{
		"account_id": transaction.AccountID,
		"kind":       transaction.Kind,
		"amount":     transaction.Amount,
	})
	log.Info("Executing query to create a new transaction")

	query := `INSERT INTO transactions (account_id, kind, amount, created_at, description)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`
	err := tx.QueryRow(query, transaction.AccountID, transaction.Kind, transaction.Amount,
		transaction.CreatedAt, transaction.Description).Scan(&transaction.ID)
	if err != nil {
		log.WithError(err).Error("Failed to execute create transaction query")
		return err
	}
	return nil
}

// GetTransactionsByAccountID retrieves the full history of an account in
// insertion order.
func (r *TransactionRepository) GetTransactionsByAccountID(accountID int) ([]*model.Transaction, error) {
	log := logger.Log.WithField("account_id", accountID)
	log.Info("Executing query to get transactions by account ID")

	query := `
		SELECT id, account_id, kind, amount, created_at, description
		FROM transactions
		WHERE account_id = $1
		ORDER BY id ASC`

	rows, err := r.DB.Query(query, accountID)
	if err != nil {
		log.WithError(err).Error("Failed to execute query for transactions by account ID")
		return nil, err
	}
	defer rows.Close()

	var transactions []*model.Transaction
	for rows.Next() {
		var t model.Transaction
		if err := rows.Scan(&t.ID, &t.AccountID, &t.Kind, &t.Amount, &t.CreatedAt, &t.Description); err != nil {
			log.WithError(err).Error("Failed to scan transaction row")
			return nil, err
		}
		transactions = append(transactions, &t)
	}

	return transactions, rows.Err()
}

// GetTransactionByID retrieves a single transaction record.
func (r *TransactionRepository) GetTransactionByID(transactionID int) (*model.Transaction, error) {
	log := logger.Log.WithField("transaction_id", transactionID)
	log.Info("Executing query to get transaction by ID")

	t := &model.Transaction{}
	query := `SELECT id, account_id, kind, amount, created_at, description FROM transactions WHERE id = $1`
	err := r.DB.QueryRow(query, transactionID).Scan(&t.ID, &t.AccountID, &t.Kind, &t.Amount, &t.CreatedAt, &t.Description)
	if err != nil {
		if err != sql.ErrNoRows {
			log.WithError(err).Error("Failed to execute get transaction by ID query")
		}
		return nil, err
	}
	return t, nil
}

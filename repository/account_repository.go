package repository

import (
	"database/sql"
	"go-bank-ledger/logger"
	"go-bank-ledger/model"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// IAccountRepository defines the contract for account database operations.
type IAccountRepository interface {
	CreateAccount(account *model.Account) error
	GetAccountByID(accountID int) (*model.Account, error)
	GetAccountsByUserID(userID int) ([]*model.Account, error)
	GetAccountForUpdate(tx *sql.Tx, accountID int) (*model.Account, error)
	UpdateAccountBalance(tx *sql.Tx, accountID int, newBalance decimal.Decimal) error
	DeleteAccount(tx *sql.Tx, accountID int) error
}

// AccountRepository implements IAccountRepository on Postgres.
type AccountRepository struct {
	DB *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{DB: db}
}

const accountColumns = `id, user_id, account_number, account_type, balance, interest_rate, overdraft_limit, created_at`

func scanAccount(row interface{ Scan(...interface{}) error }, acc *model.Account) error {
	return row.Scan(&acc.ID, &acc.UserID, &acc.AccountNumber, &acc.Type,
		&acc.Balance, &acc.InterestRate, &acc.OverdraftLimit, &acc.CreatedAt)
}

// CreateAccount adds a new account to the database.
func (r *AccountRepository) CreateAccount(account *model.Account) error {
	log := logger.Log.WithFields(logrus.Fields{
		"user_id":        account.UserID,
		"account_number": account.AccountNumber,
		"account_type":   account.Type,
	})
	log.Info("Executing query to create a new account")

	query := `INSERT INTO accounts (user_id, account_number, account_type, balance, interest_rate, overdraft_limit)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at`
	err := r.DB.QueryRow(query, account.UserID, account.AccountNumber, account.Type,
		account.Balance, account.InterestRate, account.OverdraftLimit).Scan(&account.ID, &account.CreatedAt)
	if err != nil {
		log.WithError(err).Error("Failed to execute create account query")
		return err
	}
	return nil
}

// GetAccountByID retrieves a single account.
func (r *AccountRepository) GetAccountByID(accountID int) (*model.Account, error) {
	log := logger.Log.WithField("account_id", accountID)
	log.Info("Executing query to get account by ID")

	account := &model.Account{}
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	if err := scanAccount(r.DB.QueryRow(query, accountID), account); err != nil {
		if err != sql.ErrNoRows {
			log.WithError(err).Error("Failed to execute get account by ID query")
		}
		return nil, err
	}
	return account, nil
}

// GetAccountsByUserID retrieves all accounts for a specific user.
func (r *AccountRepository) GetAccountsByUserID(userID int) ([]*model.Account, error) {
	log := logger.Log.WithField("user_id", userID)
	log.Info("Executing query to get accounts by user ID")

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = $1 ORDER BY id`
	rows, err := r.DB.Query(query, userID)
	if err != nil {
		log.WithError(err).Error("Failed to execute query for accounts by user ID")
		return nil, err
	}
	defer rows.Close()

	var accounts []*model.Account
	for rows.Next() {
		var acc model.Account
		if err := scanAccount(rows, &acc); err != nil {
			log.WithError(err).Error("Failed to scan account row")
			return nil, err
		}
		accounts = append(accounts, &acc)
	}
	return accounts, rows.Err()
}

// GetAccountForUpdate loads an account inside tx with a row lock, so the
// read-modify-write on the balance cannot interleave with another writer.
func (r *AccountRepository) GetAccountForUpdate(tx *sql.Tx, accountID int) (*model.Account, error) {
	log := logger.Log.WithField("account_id", accountID)
	log.Info("Executing query to get account for update")

	account := &model.Account{}
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 FOR UPDATE`
	if err := scanAccount(tx.QueryRow(query, accountID), account); err != nil {
		if err == sql.ErrNoRows {
			log.Info("Account not found for update")
		} else {
			log.WithError(err).Error("Failed to execute get account for update query")
		}
		return nil, err
	}
	return account, nil
}

func (r *AccountRepository) UpdateAccountBalance(tx *sql.Tx, accountID int, newBalance decimal.Decimal) error {
	log := logger.Log.WithFields(logrus.Fields{
		"account_id":  accountID,
		"new_balance": newBalance,
	})
	log.Info("Executing query to update account balance")

	query := `UPDATE accounts SET balance = $1 WHERE id = $2`
	_, err := tx.Exec(query, newBalance, accountID)
	if err != nil {
		log.WithError(err).Error("Failed to execute update account balance query")
		return err
	}
	return nil
}

// DeleteAccount removes a closed account. The caller must have verified a
// zero balance under the same transaction's row lock.
func (r *AccountRepository) DeleteAccount(tx *sql.Tx, accountID int) error {
	log := logger.Log.WithField("account_id", accountID)
	log.Info("Executing query to delete account")

	query := `DELETE FROM accounts WHERE id = $1`
	_, err := tx.Exec(query, accountID)
	if err != nil {
		log.WithError(err).Error("Failed to execute delete account query")
		return err
	}
	return nil
}

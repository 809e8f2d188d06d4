package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"go-bank-ledger/events"
	"go-bank-ledger/logger"
	"go-bank-ledger/model"
	"go-bank-ledger/repository"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var (
	ErrAccountNotFound         = errors.New("account not found")
	ErrSenderAccountNotFound   = errors.New("sender account not found")
	ErrReceiverAccountNotFound = errors.New("receiver account not found")
	ErrSameAccountTransfer     = errors.New("cannot transfer money to the same account")
	ErrPermissionDenied        = errors.New("you can only operate on your own account")
	ErrNonZeroBalance          = errors.New("account balance must be exactly zero to close")
)

// LedgerService executes every balance-changing operation as one database
// transaction: the affected account rows are locked with FOR UPDATE, the
// policy check and mutation run on the loaded entity, and the balance
// update plus transaction record commit together or not at all.
type LedgerService struct {
	db              *sql.DB
	accountRepo     repository.IAccountRepository
	transactionRepo repository.ITransactionRepository
	cache           ICacheClient
	publisher       events.Publisher
	clock           Clock
}

// NewLedgerService wires the ledger orchestrator. cache and publisher may
// be nil; the corresponding side effects are then skipped.
func NewLedgerService(db *sql.DB, accountRepo repository.IAccountRepository,
	transactionRepo repository.ITransactionRepository, cache ICacheClient,
	publisher events.Publisher, clock Clock) *LedgerService {
	if clock == nil {
		clock = NewSystemClock()
	}
	return &LedgerService{
		db:              db,
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		cache:           cache,
		publisher:       publisher,
		clock:           clock,
	}
}

// TransferResult carries both post-transfer balances and the pair of
// transaction records written for the transfer.
type TransferResult struct {
	FromAccount    *model.Account     `json:"from_account"`
	ToAccount      *model.Account     `json:"to_account"`
	OutTransaction *model.Transaction `json:"out_transaction"`
	InTransaction  *model.Transaction `json:"in_transaction"`
}

// OpenAccount creates an account funded with the initial deposit. The
// opening deposit is not logged as a Deposit transaction; the history of
// an account starts with its first explicit operation.
func (s *LedgerService) OpenAccount(ctx context.Context, userID int, req model.OpenAccountRequest) (*model.Account, error) {
	log := logger.Log.WithFields(logrus.Fields{
		"user_id":         userID,
		"account_type":    req.Type,
		"initial_deposit": req.InitialDeposit,
	})
	log.Info("Opening a new account")

	if req.InitialDeposit.Sign() <= 0 {
		return nil, model.ErrInvalidAmount
	}

	account := &model.Account{
		UserID:        userID,
		AccountNumber: fmt.Sprintf("%d%d", userID, s.clock.Now().Unix()),
		Type:          req.Type,
		Balance:       req.InitialDeposit,
	}
	switch req.Type {
	case model.AccountTypeSavings:
		account.InterestRate = req.InterestRate
	case model.AccountTypeChecking:
		account.OverdraftLimit = req.OverdraftLimit
	}

	if err := s.accountRepo.CreateAccount(account); err != nil {
		return nil, fmt.Errorf("could not create account: %w", err)
	}

	s.invalidateAccountsCache(ctx, userID)
	log.WithField("account_id", account.ID).Info("Account opened")
	return account, nil
}

// CloseAccount deletes an account whose balance is exactly zero.
func (s *LedgerService) CloseAccount(ctx context.Context, userID, accountID int) error {
	log := logger.Log.WithFields(logrus.Fields{
		"user_id":    userID,
		"account_id": accountID,
	})
	log.Info("Closing account")

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	account, err := s.accountRepo.GetAccountForUpdate(tx, accountID)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrAccountNotFound
		}
		return err
	}
	if account.UserID != userID {
		return ErrPermissionDenied
	}
	if !account.Balance.IsZero() {
		return ErrNonZeroBalance
	}

	if err := s.accountRepo.DeleteAccount(tx, accountID); err != nil {
		return fmt.Errorf("could not delete account: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}

	s.invalidateAccountsCache(ctx, userID)
	log.Info("Account closed")
	return nil
}

// Deposit credits amount to the account and appends a Deposit record.
func (s *LedgerService) Deposit(ctx context.Context, userID, accountID int, amount decimal.Decimal) (*model.Account, error) {
	return s.applyOperation(ctx, userID, accountID, amount, model.TransactionDeposit, "Deposit to account")
}

// Withdraw debits amount from the account, subject to the account's
// withdrawal policy, and appends a Withdrawal record.
func (s *LedgerService) Withdraw(ctx context.Context, userID, accountID int, amount decimal.Decimal) (*model.Account, error) {
	return s.applyOperation(ctx, userID, accountID, amount, model.TransactionWithdrawal, "Withdrawal from account")
}

func (s *LedgerService) applyOperation(ctx context.Context, userID, accountID int,
	amount decimal.Decimal, kind model.TransactionKind, description string) (*model.Account, error) {
	log := logger.Log.WithFields(logrus.Fields{
		"user_id":    userID,
		"account_id": accountID,
		"amount":     amount,
		"kind":       kind,
	})
	log.Info("Starting balance operation")

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	account, err := s.accountRepo.GetAccountForUpdate(tx, accountID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	if account.UserID != userID {
		return nil, ErrPermissionDenied
	}

	switch kind {
	case model.TransactionDeposit:
		err = account.Deposit(amount)
	default:
		err = account.Withdraw(amount)
	}
	if err != nil {
		return nil, err
	}

	if err := s.accountRepo.UpdateAccountBalance(tx, account.ID, account.Balance); err != nil {
		return nil, fmt.Errorf("could not update account balance: %w", err)
	}

	record := &model.Transaction{
		AccountID:   account.ID,
		Kind:        kind,
		Amount:      amount,
		CreatedAt:   s.clock.Now(),
		Description: description,
	}
	if err := s.transactionRepo.CreateTransaction(tx, record); err != nil {
		return nil, fmt.Errorf("could not create transaction record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("could not commit transaction: %w", err)
	}

	s.invalidateAccountsCache(ctx, account.UserID)
	log.WithField("new_balance", account.Balance).Info("Balance operation completed")
	return account, nil
}

// Transfer moves amount between two accounts atomically. Both rows are
// locked in ascending account-id order so that two opposite-direction
// transfers cannot deadlock. The two transaction records share one
// timestamp and a description that names both accounts.
func (s *LedgerService) Transfer(ctx context.Context, userID int, req model.TransferRequest) (*TransferResult, error) {
	log := logger.Log.WithFields(logrus.Fields{
		"user_id":         userID,
		"from_account_id": req.FromAccountID,
		"to_account_id":   req.ToAccountID,
		"amount":          req.Amount,
	})
	log.Info("Starting money transfer process")

	if req.FromAccountID == req.ToAccountID {
		return nil, ErrSameAccountTransfer
	}
	if req.Amount.Sign() <= 0 {
		return nil, model.ErrInvalidAmount
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	fromAccount, toAccount, err := s.lockAccountPair(tx, req.FromAccountID, req.ToAccountID)
	if err != nil {
		return nil, err
	}
	if fromAccount.UserID != userID {
		return nil, ErrPermissionDenied
	}

	if err := fromAccount.Withdraw(req.Amount); err != nil {
		return nil, err
	}
	if err := toAccount.Deposit(req.Amount); err != nil {
		return nil, err
	}

	if err := s.accountRepo.UpdateAccountBalance(tx, fromAccount.ID, fromAccount.Balance); err != nil {
		return nil, fmt.Errorf("could not update sender balance: %w", err)
	}
	if err := s.accountRepo.UpdateAccountBalance(tx, toAccount.ID, toAccount.Balance); err != nil {
		return nil, fmt.Errorf("could not update receiver balance: %w", err)
	}

	now := s.clock.Now()
	description := fmt.Sprintf("Transfer from account %d to account %d", fromAccount.ID, toAccount.ID)
	outRecord := &model.Transaction{
		AccountID:   fromAccount.ID,
		Kind:        model.TransactionTransferOut,
		Amount:      req.Amount,
		CreatedAt:   now,
		Description: description,
	}
	inRecord := &model.Transaction{
		AccountID:   toAccount.ID,
		Kind:        model.TransactionTransferIn,
		Amount:      req.Amount,
		CreatedAt:   now,
		Description: description,
	}
	if err := s.transactionRepo.CreateTransaction(tx, outRecord); err != nil {
		return nil, fmt.Errorf("could not create transaction record: %w", err)
	}
	if err := s.transactionRepo.CreateTransaction(tx, inRecord); err != nil {
		return nil, fmt.Errorf("could not create transaction record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("could not commit transaction: %w", err)
	}

	s.invalidateAccountsCache(ctx, fromAccount.UserID)
	s.invalidateAccountsCache(ctx, toAccount.UserID)
	s.publishTransferCompleted(ctx, outRecord, inRecord)

	log.Info("Transfer completed successfully")
	return &TransferResult{
		FromAccount:    fromAccount,
		ToAccount:      toAccount,
		OutTransaction: outRecord,
		InTransaction:  inRecord,
	}, nil
}

// lockAccountPair loads both accounts FOR UPDATE in ascending id order and
// hands them back as (from, to).
func (s *LedgerService) lockAccountPair(tx *sql.Tx, fromID, toID int) (*model.Account, *model.Account, error) {
	firstID, secondID := fromID, toID
	if secondID < firstID {
		firstID, secondID = secondID, firstID
	}

	locked := make(map[int]*model.Account, 2)
	for _, id := range []int{firstID, secondID} {
		account, err := s.accountRepo.GetAccountForUpdate(tx, id)
		if err != nil {
			if err == sql.ErrNoRows {
				if id == fromID {
					return nil, nil, ErrSenderAccountNotFound
				}
				return nil, nil, ErrReceiverAccountNotFound
			}
			return nil, nil, err
		}
		locked[id] = account
	}
	return locked[fromID], locked[toID], nil
}

// ApplyInterest credits one interest period to a savings account and logs
// the credit as a Deposit record. A zero-balance account earns nothing and
// no record is written.
func (s *LedgerService) ApplyInterest(ctx context.Context, userID, accountID int) (*model.Account, error) {
	log := logger.Log.WithFields(logrus.Fields{
		"user_id":    userID,
		"account_id": accountID,
	})
	log.Info("Applying interest")

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	account, err := s.accountRepo.GetAccountForUpdate(tx, accountID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	if account.UserID != userID {
		return nil, ErrPermissionDenied
	}

	interest, err := account.CalculateInterest()
	if err != nil {
		return nil, err
	}
	if interest.Sign() <= 0 {
		return account, nil
	}

	if err := s.accountRepo.UpdateAccountBalance(tx, account.ID, account.Balance); err != nil {
		return nil, fmt.Errorf("could not update account balance: %w", err)
	}

	record := &model.Transaction{
		AccountID:   account.ID,
		Kind:        model.TransactionDeposit,
		Amount:      interest,
		CreatedAt:   s.clock.Now(),
		Description: "Interest credit",
	}
	if err := s.transactionRepo.CreateTransaction(tx, record); err != nil {
		return nil, fmt.Errorf("could not create transaction record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("could not commit transaction: %w", err)
	}

	s.invalidateAccountsCache(ctx, account.UserID)
	log.WithField("interest", interest).Info("Interest applied")
	return account, nil
}

// GetAccount loads a single account owned by userID.
func (s *LedgerService) GetAccount(ctx context.Context, userID, accountID int) (*model.Account, error) {
	account, err := s.accountRepo.GetAccountByID(accountID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	if account.UserID != userID {
		return nil, ErrPermissionDenied
	}
	return account, nil
}

// ListTransactions retrieves the transaction history for an account owned
// by userID, in insertion order.
func (s *LedgerService) ListTransactions(ctx context.Context, userID, accountID int) ([]*model.Transaction, error) {
	if _, err := s.GetAccount(ctx, userID, accountID); err != nil {
		return nil, err
	}
	return s.transactionRepo.GetTransactionsByAccountID(accountID)
}

func (s *LedgerService) invalidateAccountsCache(ctx context.Context, userID int) {
	if s.cache == nil {
		return
	}
	s.cache.Del(ctx, fmt.Sprintf("accounts:%d", userID))
}

func (s *LedgerService) publishTransferCompleted(ctx context.Context, out, in *model.Transaction) {
	if s.publisher == nil {
		return
	}
	event := events.TransferCompleted{
		OutTransactionID: out.ID,
		InTransactionID:  in.ID,
		FromAccountID:    out.AccountID,
		ToAccountID:      in.AccountID,
		Amount:           out.Amount,
		OccurredAt:       out.CreatedAt,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		logger.Log.WithError(err).Warn("Failed to publish transfer completed event")
	}
}

// service/ledger_service_test.go
package service

import (
	"context"
	"database/sql"
	"go-bank-ledger/events"
	"go-bank-ledger/logger"
	"go-bank-ledger/model"
	"os"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// TestMain runs setup before any tests in this package are executed.
func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decEq(expected string) interface{} {
	return mock.MatchedBy(func(d decimal.Decimal) bool {
		return d.Equal(dec(expected))
	})
}

// fixedClock pins transaction timestamps for assertions.
type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// MockAccountRepository is a mock for IAccountRepository.
type MockAccountRepository struct{ mock.Mock }

func (m *MockAccountRepository) CreateAccount(account *model.Account) error {
	args := m.Called(account)
	return args.Error(0)
}

func (m *MockAccountRepository) GetAccountByID(accountID int) (*model.Account, error) {
	args := m.Called(accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Account), args.Error(1)
}

func (m *MockAccountRepository) GetAccountsByUserID(userID int) ([]*model.Account, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Account), args.Error(1)
}

func (m *MockAccountRepository) GetAccountForUpdate(tx *sql.Tx, accountID int) (*model.Account, error) {
	args := m.Called(tx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Account), args.Error(1)
}

func (m *MockAccountRepository) UpdateAccountBalance(tx *sql.Tx, accountID int, newBalance decimal.Decimal) error {
	args := m.Called(tx, accountID, newBalance)
	return args.Error(0)
}

func (m *MockAccountRepository) DeleteAccount(tx *sql.Tx, accountID int) error {
	args := m.Called(tx, accountID)
	return args.Error(0)
}

// MockTransactionRepository is a mock for ITransactionRepository.
type MockTransactionRepository struct{ mock.Mock }

func (m *MockTransactionRepository) CreateTransaction(tx *sql.Tx, tr *model.Transaction) error {
	args := m.Called(tx, tr)
	return args.Error(0)
}

func (m *MockTransactionRepository) GetTransactionsByAccountID(accountID int) ([]*model.Transaction, error) {
	args := m.Called(accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) GetTransactionByID(transactionID int) (*model.Transaction, error) {
	args := m.Called(transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Transaction), args.Error(1)
}

func newLedgerForTest(t *testing.T) (*LedgerService, sqlmock.Sqlmock, *MockAccountRepository, *MockTransactionRepository, func()) {
	db, dbMock, err := sqlmock.New()
	assert.NoError(t, err)

	mockAccountRepo := new(MockAccountRepository)
	mockTxnRepo := new(MockTransactionRepository)
	clock := fixedClock{t: time.Date(2024, 5, 17, 10, 30, 0, 0, time.UTC)}

	ledger := NewLedgerService(db, mockAccountRepo, mockTxnRepo, nil, nil, clock)
	return ledger, dbMock, mockAccountRepo, mockTxnRepo, func() { db.Close() }
}

func TestLedgerService_Deposit(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		ledger, dbMock, accountRepo, txnRepo, done := newLedgerForTest(t)
		defer done()

		account := &model.Account{ID: 1, UserID: 1, Type: model.AccountTypeStandard, Balance: dec("100.00")}

		dbMock.ExpectBegin()
		accountRepo.On("GetAccountForUpdate", mock.Anything, 1).Return(account, nil).Once()
		accountRepo.On("UpdateAccountBalance", mock.Anything, 1, decEq("150.00")).Return(nil).Once()
		txnRepo.On("CreateTransaction", mock.Anything, mock.MatchedBy(func(tr *model.Transaction) bool {
			return tr.AccountID == 1 &&
				tr.Kind == model.TransactionDeposit &&
				tr.Amount.Equal(dec("50.00")) &&
				tr.CreatedAt.Equal(time.Date(2024, 5, 17, 10, 30, 0, 0, time.UTC))
		})).Return(nil).Once()
		dbMock.ExpectCommit()

		updated, err := ledger.Deposit(ctx, 1, 1, dec("50.00"))

		assert.NoError(t, err)
		assert.True(t, updated.Balance.Equal(dec("150.00")))
		accountRepo.AssertExpectations(t)
		txnRepo.AssertExpectations(t)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("account not found", func(t *testing.T) {
		ledger, dbMock, accountRepo, txnRepo, done := newLedgerForTest(t)
		defer done()

		dbMock.ExpectBegin()
		accountRepo.On("GetAccountForUpdate", mock.Anything, 42).Return(nil, sql.ErrNoRows).Once()
		dbMock.ExpectRollback()

		_, err := ledger.Deposit(ctx, 1, 42, dec("50.00"))

		assert.ErrorIs(t, err, ErrAccountNotFound)
		txnRepo.AssertNotCalled(t, "CreateTransaction", mock.Anything, mock.Anything)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("invalid amount writes nothing", func(t *testing.T) {
		ledger, dbMock, accountRepo, txnRepo, done := newLedgerForTest(t)
		defer done()

		account := &model.Account{ID: 1, UserID: 1, Type: model.AccountTypeStandard, Balance: dec("100.00")}

		dbMock.ExpectBegin()
		accountRepo.On("GetAccountForUpdate", mock.Anything, 1).Return(account, nil).Once()
		dbMock.ExpectRollback()

		_, err := ledger.Deposit(ctx, 1, 1, dec("-5.00"))

		assert.ErrorIs(t, err, model.ErrInvalidAmount)
		assert.True(t, account.Balance.Equal(dec("100.00")), "balance must be unchanged")
		accountRepo.AssertNotCalled(t, "UpdateAccountBalance", mock.Anything, mock.Anything, mock.Anything)
		txnRepo.AssertNotCalled(t, "CreateTransaction", mock.Anything, mock.Anything)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("permission denied for foreign account", func(t *testing.T) {
		ledger, dbMock, accountRepo, _, done := newLedgerForTest(t)
		defer done()

		account := &model.Account{ID: 1, UserID: 2, Type: model.AccountTypeStandard, Balance: dec("100.00")}

		dbMock.ExpectBegin()
		accountRepo.On("GetAccountForUpdate", mock.Anything, 1).Return(account, nil).Once()
		dbMock.ExpectRollback()

		_, err := ledger.Deposit(ctx, 1, 1, dec("50.00"))

		assert.ErrorIs(t, err, ErrPermissionDenied)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})
}

func TestLedgerService_Withdraw(t *testing.T) {
	ctx := context.Background()

	t.Run("standard account within balance", func(t *testing.T) {
		ledger, dbMock, accountRepo, txnRepo, done := newLedgerForTest(t)
		defer done()

		account := &model.Account{ID: 1, UserID: 1, Type: model.AccountTypeStandard, Balance: dec("100.00")}

		dbMock.ExpectBegin()
		accountRepo.On("GetAccountForUpdate", mock.Anything, 1).Return(account, nil).Once()
		accountRepo.On("UpdateAccountBalance", mock.Anything, 1, decEq("50.00")).Return(nil).Once()
		txnRepo.On("CreateTransaction", mock.Anything, mock.MatchedBy(func(tr *model.Transaction) bool {
			return tr.Kind == model.TransactionWithdrawal && tr.Amount.Equal(dec("50.00"))
		})).Return(nil).Once()
		dbMock.ExpectCommit()

		updated, err := ledger.Withdraw(ctx, 1, 1, dec("50.00"))

		assert.NoError(t, err)
		assert.True(t, updated.Balance.Equal(dec("50.00")))
		accountRepo.AssertExpectations(t)
		txnRepo.AssertExpectations(t)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("checking account may overdraw to its limit", func(t *testing.T) {
		ledger, dbMock, accountRepo, txnRepo, done := newLedgerForTest(t)
		defer done()

		account := &model.Account{ID: 1, UserID: 1, Type: model.AccountTypeChecking,
			Balance: dec("0.00"), OverdraftLimit: dec("100.00")}

		dbMock.ExpectBegin()
		accountRepo.On("GetAccountForUpdate", mock.Anything, 1).Return(account, nil).Once()
		accountRepo.On("UpdateAccountBalance", mock.Anything, 1, decEq("-80.00")).Return(nil).Once()
		txnRepo.On("CreateTransaction", mock.Anything, mock.AnythingOfType("*model.Transaction")).Return(nil).Once()
		dbMock.ExpectCommit()

		updated, err := ledger.Withdraw(ctx, 1, 1, dec("80.00"))

		assert.NoError(t, err)
		assert.True(t, updated.Balance.Equal(dec("-80.00")))
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("checking account beyond its limit writes nothing", func(t *testing.T) {
		ledger, dbMock, accountRepo, txnRepo, done := newLedgerForTest(t)
		defer done()

		account := &model.Account{ID: 1, UserID: 1, Type: model.AccountTypeChecking,
			Balance: dec("-80.00"), OverdraftLimit: dec("100.00")}

		dbMock.ExpectBegin()
		accountRepo.On("GetAccountForUpdate", mock.Anything, 1).Return(account, nil).Once()
		dbMock.ExpectRollback()

		_, err := ledger.Withdraw(ctx, 1, 1, dec("50.00"))

		assert.ErrorIs(t, err, model.ErrInsufficientFunds)
		assert.True(t, account.Balance.Equal(dec("-80.00")), "balance must be unchanged")
		accountRepo.AssertNotCalled(t, "UpdateAccountBalance", mock.Anything, mock.Anything, mock.Anything)
		txnRepo.AssertNotCalled(t, "CreateTransaction", mock.Anything, mock.Anything)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})
}

func TestLedgerService_Transfer(t *testing.T) {
	ctx := context.Background()

	t.Run("success creates two records with one timestamp", func(t *testing.T) {
		ledger, dbMock, accountRepo, txnRepo, done := newLedgerForTest(t)
		defer done()

		fromAccount := &model.Account{ID: 1, UserID: 1, Type: model.AccountTypeStandard, Balance: dec("200.00")}
		toAccount := &model.Account{ID: 2, UserID: 2, Type: model.AccountTypeStandard, Balance: dec("0.00")}

		var records []*model.Transaction

		dbMock.ExpectBegin()
		accountRepo.On("GetAccountForUpdate", mock.Anything, 1).Return(fromAccount, nil).Once()
		accountRepo.On("GetAccountForUpdate", mock.Anything, 2).Return(toAccount, nil).Once()
		accountRepo.On("UpdateAccountBalance", mock.Anything, 1, decEq("0.00")).Return(nil).Once()
		accountRepo.On("UpdateAccountBalance", mock.Anything, 2, decEq("200.00")).Return(nil).Once()
		txnRepo.On("CreateTransaction", mock.Anything, mock.AnythingOfType("*model.Transaction")).
			Run(func(args mock.Arguments) {
				records = append(records, args.Get(1).(*model.Transaction))
			}).Return(nil).Twice()
		dbMock.ExpectCommit()

		result, err := ledger.Transfer(ctx, 1, model.TransferRequest{
			FromAccountID: 1, ToAccountID: 2, Amount: dec("200.00"),
		})

		assert.NoError(t, err)
		assert.True(t, result.FromAccount.Balance.Equal(dec("0.00")))
		assert.True(t, result.ToAccount.Balance.Equal(dec("200.00")))

		assert.Len(t, records, 2)
		assert.Equal(t, model.TransactionTransferOut, records[0].Kind)
		assert.Equal(t, 1, records[0].AccountID)
		assert.Equal(t, model.TransactionTransferIn, records[1].Kind)
		assert.Equal(t, 2, records[1].AccountID)
		assert.True(t, records[0].CreatedAt.Equal(records[1].CreatedAt), "both records must share one timestamp")
		assert.Equal(t, "Transfer from account 1 to account 2", records[0].Description)
		assert.Equal(t, records[0].Description, records[1].Description)

		accountRepo.AssertExpectations(t)
		txnRepo.AssertExpectations(t)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("insufficient funds leaves both accounts untouched", func(t *testing.T) {
		ledger, dbMock, accountRepo, txnRepo, done := newLedgerForTest(t)
		defer done()

		fromAccount := &model.Account{ID: 1, UserID: 1, Type: model.AccountTypeStandard, Balance: dec("50.00")}
		toAccount := &model.Account{ID: 2, UserID: 2, Type: model.AccountTypeStandard, Balance: dec("10.00")}

		dbMock.ExpectBegin()
		accountRepo.On("GetAccountForUpdate", mock.Anything, 1).Return(fromAccount, nil).Once()
		accountRepo.On("GetAccountForUpdate", mock.Anything, 2).Return(toAccount, nil).Once()
		dbMock.ExpectRollback()

		_, err := ledger.Transfer(ctx, 1, model.TransferRequest{
			FromAccountID: 1, ToAccountID: 2, Amount: dec("100.00"),
		})

		assert.ErrorIs(t, err, model.ErrInsufficientFunds)
		assert.True(t, fromAccount.Balance.Equal(dec("50.00")))
		assert.True(t, toAccount.Balance.Equal(dec("10.00")))
		accountRepo.AssertNotCalled(t, "UpdateAccountBalance", mock.Anything, mock.Anything, mock.Anything)
		txnRepo.AssertNotCalled(t, "CreateTransaction", mock.Anything, mock.Anything)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("same account is rejected", func(t *testing.T) {
		ledger, _, _, _, done := newLedgerForTest(t)
		defer done()

		_, err := ledger.Transfer(ctx, 1, model.TransferRequest{
			FromAccountID: 1, ToAccountID: 1, Amount: dec("10.00"),
		})

		assert.ErrorIs(t, err, ErrSameAccountTransfer)
	})

	t.Run("receiver not found", func(t *testing.T) {
		ledger, dbMock, accountRepo, _, done := newLedgerForTest(t)
		defer done()

		fromAccount := &model.Account{ID: 1, UserID: 1, Type: model.AccountTypeStandard, Balance: dec("50.00")}

		dbMock.ExpectBegin()
		accountRepo.On("GetAccountForUpdate", mock.Anything, 1).Return(fromAccount, nil).Once()
		accountRepo.On("GetAccountForUpdate", mock.Anything, 2).Return(nil, sql.ErrNoRows).Once()
		dbMock.ExpectRollback()

		_, err := ledger.Transfer(ctx, 1, model.TransferRequest{
			FromAccountID: 1, ToAccountID: 2, Amount: dec("10.00"),
		})

		assert.ErrorIs(t, err, ErrReceiverAccountNotFound)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("locks are acquired in ascending account id order", func(t *testing.T) {
		ledger, dbMock, accountRepo, txnRepo, done := newLedgerForTest(t)
		defer done()

		// Transfer 5 -> 2: account 2 must be locked first.
		fromAccount := &model.Account{ID: 5, UserID: 1, Type: model.AccountTypeStandard, Balance: dec("100.00")}
		toAccount := &model.Account{ID: 2, UserID: 2, Type: model.AccountTypeStandard, Balance: dec("0.00")}

		var lockOrder []int

		dbMock.ExpectBegin()
		accountRepo.On("GetAccountForUpdate", mock.Anything, 2).
			Run(func(mock.Arguments) { lockOrder = append(lockOrder, 2) }).Return(toAccount, nil).Once()
		accountRepo.On("GetAccountForUpdate", mock.Anything, 5).
			Run(func(mock.Arguments) { lockOrder = append(lockOrder, 5) }).Return(fromAccount, nil).Once()
		accountRepo.On("UpdateAccountBalance", mock.Anything, 5, decEq("60.00")).Return(nil).Once()
		accountRepo.On("UpdateAccountBalance", mock.Anything, 2, decEq("40.00")).Return(nil).Once()
		txnRepo.On("CreateTransaction", mock.Anything, mock.AnythingOfType("*model.Transaction")).Return(nil).Twice()
		dbMock.ExpectCommit()

		_, err := ledger.Transfer(ctx, 1, model.TransferRequest{
			FromAccountID: 5, ToAccountID: 2, Amount: dec("40.00"),
		})

		assert.NoError(t, err)
		assert.Equal(t, []int{2, 5}, lockOrder)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})
}

// fakePublisher records every published event.
type fakePublisher struct{ published []any }

func (p *fakePublisher) Publish(ctx context.Context, event any) error {
	p.published = append(p.published, event)
	return nil
}

func TestLedgerService_TransferPublishesEvent(t *testing.T) {
	db, dbMock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	accountRepo := new(MockAccountRepository)
	txnRepo := new(MockTransactionRepository)
	publisher := &fakePublisher{}
	now := time.Date(2024, 5, 17, 10, 30, 0, 0, time.UTC)

	ledger := NewLedgerService(db, accountRepo, txnRepo, nil, publisher, fixedClock{t: now})

	fromAccount := &model.Account{ID: 1, UserID: 1, Type: model.AccountTypeStandard, Balance: dec("200.00")}
	toAccount := &model.Account{ID: 2, UserID: 2, Type: model.AccountTypeStandard, Balance: dec("0.00")}

	dbMock.ExpectBegin()
	accountRepo.On("GetAccountForUpdate", mock.Anything, 1).Return(fromAccount, nil).Once()
	accountRepo.On("GetAccountForUpdate", mock.Anything, 2).Return(toAccount, nil).Once()
	accountRepo.On("UpdateAccountBalance", mock.Anything, mock.Anything, mock.Anything).Return(nil).Twice()
	txnRepo.On("CreateTransaction", mock.Anything, mock.AnythingOfType("*model.Transaction")).Return(nil).Twice()
	dbMock.ExpectCommit()

	_, err = ledger.Transfer(context.Background(), 1, model.TransferRequest{
		FromAccountID: 1, ToAccountID: 2, Amount: dec("75.00"),
	})

	assert.NoError(t, err)
	assert.Len(t, publisher.published, 1)
	event := publisher.published[0].(events.TransferCompleted)
	assert.Equal(t, 1, event.FromAccountID)
	assert.Equal(t, 2, event.ToAccountID)
	assert.True(t, event.Amount.Equal(dec("75.00")))
	assert.True(t, event.OccurredAt.Equal(now))
}

func TestLedgerService_OpenAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects non-positive initial deposit", func(t *testing.T) {
		ledger, _, accountRepo, _, done := newLedgerForTest(t)
		defer done()

		_, err := ledger.OpenAccount(ctx, 1, model.OpenAccountRequest{
			Type: model.AccountTypeStandard, InitialDeposit: dec("0.00"),
		})

		assert.ErrorIs(t, err, model.ErrInvalidAmount)
		accountRepo.AssertNotCalled(t, "CreateAccount", mock.Anything)
	})

	t.Run("opening deposit is not logged as a transaction", func(t *testing.T) {
		ledger, _, accountRepo, txnRepo, done := newLedgerForTest(t)
		defer done()

		accountRepo.On("CreateAccount", mock.MatchedBy(func(acc *model.Account) bool {
			return acc.UserID == 7 &&
				acc.Type == model.AccountTypeSavings &&
				acc.Balance.Equal(dec("500.00")) &&
				acc.InterestRate.Equal(dec("2.50")) &&
				acc.AccountNumber != ""
		})).Return(nil).Once()

		account, err := ledger.OpenAccount(ctx, 7, model.OpenAccountRequest{
			Type:           model.AccountTypeSavings,
			InitialDeposit: dec("500.00"),
			InterestRate:   dec("2.50"),
		})

		assert.NoError(t, err)
		assert.True(t, account.Balance.Equal(dec("500.00")))
		txnRepo.AssertNotCalled(t, "CreateTransaction", mock.Anything, mock.Anything)
		accountRepo.AssertExpectations(t)
	})
}

func TestLedgerService_CloseAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("success on zero balance", func(t *testing.T) {
		ledger, dbMock, accountRepo, _, done := newLedgerForTest(t)
		defer done()

		account := &model.Account{ID: 1, UserID: 1, Type: model.AccountTypeStandard, Balance: dec("0.00")}

		dbMock.ExpectBegin()
		accountRepo.On("GetAccountForUpdate", mock.Anything, 1).Return(account, nil).Once()
		accountRepo.On("DeleteAccount", mock.Anything, 1).Return(nil).Once()
		dbMock.ExpectCommit()

		err := ledger.CloseAccount(ctx, 1, 1)

		assert.NoError(t, err)
		accountRepo.AssertExpectations(t)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("one cent is still a funded account", func(t *testing.T) {
		ledger, dbMock, accountRepo, _, done := newLedgerForTest(t)
		defer done()

		account := &model.Account{ID: 1, UserID: 1, Type: model.AccountTypeStandard, Balance: dec("0.01")}

		dbMock.ExpectBegin()
		accountRepo.On("GetAccountForUpdate", mock.Anything, 1).Return(account, nil).Once()
		dbMock.ExpectRollback()

		err := ledger.CloseAccount(ctx, 1, 1)

		assert.ErrorIs(t, err, ErrNonZeroBalance)
		accountRepo.AssertNotCalled(t, "DeleteAccount", mock.Anything, mock.Anything)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		ledger, dbMock, accountRepo, _, done := newLedgerForTest(t)
		defer done()

		dbMock.ExpectBegin()
		accountRepo.On("GetAccountForUpdate", mock.Anything, 9).Return(nil, sql.ErrNoRows).Once()
		dbMock.ExpectRollback()

		err := ledger.CloseAccount(ctx, 1, 9)

		assert.ErrorIs(t, err, ErrAccountNotFound)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})
}

func TestLedgerService_ApplyInterest(t *testing.T) {
	ctx := context.Background()

	t.Run("savings account earns interest and logs a deposit record", func(t *testing.T) {
		ledger, dbMock, accountRepo, txnRepo, done := newLedgerForTest(t)
		defer done()

		account := &model.Account{ID: 1, UserID: 1, Type: model.AccountTypeSavings,
			Balance: dec("1000.00"), InterestRate: dec("2.50")}

		dbMock.ExpectBegin()
		accountRepo.On("GetAccountForUpdate", mock.Anything, 1).Return(account, nil).Once()
		accountRepo.On("UpdateAccountBalance", mock.Anything, 1, decEq("1025.00")).Return(nil).Once()
		txnRepo.On("CreateTransaction", mock.Anything, mock.MatchedBy(func(tr *model.Transaction) bool {
			return tr.Kind == model.TransactionDeposit &&
				tr.Amount.Equal(dec("25.00")) &&
				tr.Description == "Interest credit"
		})).Return(nil).Once()
		dbMock.ExpectCommit()

		updated, err := ledger.ApplyInterest(ctx, 1, 1)

		assert.NoError(t, err)
		assert.True(t, updated.Balance.Equal(dec("1025.00")))
		accountRepo.AssertExpectations(t)
		txnRepo.AssertExpectations(t)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("non-positive interest writes nothing and reports the stored balance", func(t *testing.T) {
		ledger, dbMock, accountRepo, txnRepo, done := newLedgerForTest(t)
		defer done()

		account := &model.Account{ID: 1, UserID: 1, Type: model.AccountTypeSavings,
			Balance: dec("1000.00"), InterestRate: dec("-5.00")}

		dbMock.ExpectBegin()
		accountRepo.On("GetAccountForUpdate", mock.Anything, 1).Return(account, nil).Once()
		dbMock.ExpectRollback()

		updated, err := ledger.ApplyInterest(ctx, 1, 1)

		assert.NoError(t, err)
		assert.True(t, updated.Balance.Equal(dec("1000.00")), "reported balance must match stored state")
		accountRepo.AssertNotCalled(t, "UpdateAccountBalance", mock.Anything, mock.Anything, mock.Anything)
		txnRepo.AssertNotCalled(t, "CreateTransaction", mock.Anything, mock.Anything)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("standard account does not earn interest", func(t *testing.T) {
		ledger, dbMock, accountRepo, _, done := newLedgerForTest(t)
		defer done()

		account := &model.Account{ID: 1, UserID: 1, Type: model.AccountTypeStandard, Balance: dec("1000.00")}

		dbMock.ExpectBegin()
		accountRepo.On("GetAccountForUpdate", mock.Anything, 1).Return(account, nil).Once()
		dbMock.ExpectRollback()

		_, err := ledger.ApplyInterest(ctx, 1, 1)

		assert.ErrorIs(t, err, model.ErrInterestNotSupported)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})
}

func TestLedgerService_ListTransactions(t *testing.T) {
	ctx := context.Background()

	t.Run("returns history in insertion order", func(t *testing.T) {
		ledger, _, accountRepo, txnRepo, done := newLedgerForTest(t)
		defer done()

		account := &model.Account{ID: 1, UserID: 1, Type: model.AccountTypeStandard, Balance: dec("50.00")}
		history := []*model.Transaction{
			{ID: 1, AccountID: 1, Kind: model.TransactionDeposit, Amount: dec("100.00")},
			{ID: 2, AccountID: 1, Kind: model.TransactionWithdrawal, Amount: dec("50.00")},
		}

		accountRepo.On("GetAccountByID", 1).Return(account, nil).Once()
		txnRepo.On("GetTransactionsByAccountID", 1).Return(history, nil).Once()

		transactions, err := ledger.ListTransactions(ctx, 1, 1)

		assert.NoError(t, err)
		assert.Equal(t, history, transactions)
	})

	t.Run("denies access to a foreign account", func(t *testing.T) {
		ledger, _, accountRepo, txnRepo, done := newLedgerForTest(t)
		defer done()

		account := &model.Account{ID: 1, UserID: 2, Type: model.AccountTypeStandard}

		accountRepo.On("GetAccountByID", 1).Return(account, nil).Once()

		_, err := ledger.ListTransactions(ctx, 1, 1)

		assert.ErrorIs(t, err, ErrPermissionDenied)
		txnRepo.AssertNotCalled(t, "GetTransactionsByAccountID", mock.Anything)
	})
}

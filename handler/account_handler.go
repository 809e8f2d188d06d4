package handler

import (
	"context"
	"encoding/json"
	"errors"
	"go-bank-ledger/common"
	"go-bank-ledger/logger"
	"go-bank-ledger/model"
	"go-bank-ledger/service"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// AccountHandler holds dependencies for account-related handlers.
type AccountHandler struct {
	ledger   *service.LedgerService
	accounts *service.AccountService
}

func NewAccountHandler(ledger *service.LedgerService, accounts *service.AccountService) *AccountHandler {
	return &AccountHandler{ledger: ledger, accounts: accounts}
}

// mapLedgerError translates ledger errors into HTTP status codes.
func mapLedgerError(err error, fallback string) *common.AppError {
	switch {
	case errors.Is(err, service.ErrAccountNotFound),
		errors.Is(err, service.ErrSenderAccountNotFound),
		errors.Is(err, service.ErrReceiverAccountNotFound):
		return common.NewAppError(http.StatusNotFound, err.Error(), err)
	case errors.Is(err, service.ErrPermissionDenied):
		return common.NewAppError(http.StatusForbidden, err.Error(), err)
	case errors.Is(err, model.ErrInvalidAmount),
		errors.Is(err, model.ErrInterestNotSupported),
		errors.Is(err, service.ErrSameAccountTransfer):
		return common.NewAppError(http.StatusBadRequest, err.Error(), err)
	case errors.Is(err, model.ErrInsufficientFunds),
		errors.Is(err, service.ErrNonZeroBalance):
		return common.NewAppError(http.StatusConflict, err.Error(), err)
	default:
		return common.NewAppError(http.StatusInternalServerError, fallback, err)
	}
}

func accountIDFromPath(r *http.Request) (int, *common.AppError) {
	accountID, err := strconv.Atoi(r.PathValue("accountId"))
	if err != nil {
		return 0, common.NewAppError(http.StatusBadRequest, "Invalid account ID in URL path", err)
	}
	return accountID, nil
}

// OpenAccount godoc
// @Summary      Open a new bank account
// @Description  Opens a standard, savings or checking account funded with the initial deposit.
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        account body model.OpenAccountRequest true "Account type, initial deposit and variant parameters"
// @Success      201  {object}  model.Account
// @Failure      400  {object}  common.AppError "Invalid initial deposit"
// @Failure      401  {object}  common.AppError "Unauthorized: Invalid or missing token"
// @Router       /api/accounts [post]
func (h *AccountHandler) OpenAccount(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.OpenAccountRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	userID, ok := r.Context().Value(UserIDKey).(int)
	if !ok {
		return common.NewAppError(http.StatusUnauthorized, "Invalid user ID in token", nil)
	}

	log := logger.Log.WithFields(logrus.Fields{
		"user_id":      userID,
		"account_type": req.Type,
	})
	log.Info("Open account request received")

	account, err := h.ledger.OpenAccount(r.Context(), userID, req)
	if err != nil {
		return mapLedgerError(err, "Could not open account")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(account)
	return nil
}

// ListAccounts lists all accounts owned by the authenticated user.
func (h *AccountHandler) ListAccounts(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, ok := r.Context().Value(UserIDKey).(int)
	if !ok {
		return common.NewAppError(http.StatusUnauthorized, "Invalid user ID in token", nil)
	}

	accounts, err := h.accounts.ListAccountsForUser(r.Context(), userID)
	if err != nil {
		return common.NewAppError(http.StatusInternalServerError, "Could not retrieve accounts", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(accounts)
	return nil
}

// GetAccount returns a single account with its current balance.
func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, ok := r.Context().Value(UserIDKey).(int)
	if !ok {
		return common.NewAppError(http.StatusUnauthorized, "Invalid user ID in token", nil)
	}
	accountID, appErr := accountIDFromPath(r)
	if appErr != nil {
		return appErr
	}

	account, err := h.ledger.GetAccount(r.Context(), userID, accountID)
	if err != nil {
		return mapLedgerError(err, "Could not retrieve account")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(account)
	return nil
}

// CloseAccount godoc
// @Summary      Close an account
// @Description  Deletes an account whose balance is exactly zero.
// @Tags         accounts
// @Security     BearerAuth
// @Param        accountId path int true "The ID of the account to close"
// @Success      204
// @Failure      404  {object}  common.AppError "Account not found"
// @Failure      409  {object}  common.AppError "Account still holds funds"
// @Router       /api/accounts/{accountId} [delete]
func (h *AccountHandler) CloseAccount(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, ok := r.Context().Value(UserIDKey).(int)
	if !ok {
		return common.NewAppError(http.StatusUnauthorized, "Invalid user ID in token", nil)
	}
	accountID, appErr := accountIDFromPath(r)
	if appErr != nil {
		return appErr
	}

	if err := h.ledger.CloseAccount(r.Context(), userID, accountID); err != nil {
		return mapLedgerError(err, "Could not close account")
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}

// Deposit credits funds to an account.
func (h *AccountHandler) Deposit(w http.ResponseWriter, r *http.Request) *common.AppError {
	return h.applyAmount(w, r, h.ledger.Deposit)
}

// Withdraw debits funds from an account.
func (h *AccountHandler) Withdraw(w http.ResponseWriter, r *http.Request) *common.AppError {
	return h.applyAmount(w, r, h.ledger.Withdraw)
}

func (h *AccountHandler) applyAmount(w http.ResponseWriter, r *http.Request,
	op func(ctx context.Context, userID, accountID int, amount decimal.Decimal) (*model.Account, error)) *common.AppError {
	var req model.AmountRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	userID, ok := r.Context().Value(UserIDKey).(int)
	if !ok {
		return common.NewAppError(http.StatusUnauthorized, "Invalid user ID in token", nil)
	}
	accountID, appErr := accountIDFromPath(r)
	if appErr != nil {
		return appErr
	}

	account, err := op(r.Context(), userID, accountID, req.Amount)
	if err != nil {
		return mapLedgerError(err, "Could not process operation")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(account)
	return nil
}

// ApplyInterest credits one interest period onto a savings account.
func (h *AccountHandler) ApplyInterest(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, ok := r.Context().Value(UserIDKey).(int)
	if !ok {
		return common.NewAppError(http.StatusUnauthorized, "Invalid user ID in token", nil)
	}
	accountID, appErr := accountIDFromPath(r)
	if appErr != nil {
		return appErr
	}

	account, err := h.ledger.ApplyInterest(r.Context(), userID, accountID)
	if err != nil {
		return mapLedgerError(err, "Could not apply interest")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(account)
	return nil
}

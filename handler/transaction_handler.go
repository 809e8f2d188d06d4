package handler

import (
	"encoding/json"
	"go-bank-ledger/common"
	"go-bank-ledger/model"
	"go-bank-ledger/service"
	"net/http"
)

// TransactionHandler holds dependencies for transaction-related handlers.
type TransactionHandler struct {
	ledger *service.LedgerService
}

// NewTransactionHandler creates a new TransactionHandler with its dependencies.
func NewTransactionHandler(ledger *service.LedgerService) *TransactionHandler {
	return &TransactionHandler{ledger: ledger}
}

// CreateTransfer godoc
// @Summary      Transfer money between accounts
// @Description  Moves a specified amount from one account to another. The user must own the source account.
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        transfer body model.TransferRequest true "Details of the transfer"
// @Success      201  {object}  service.TransferResult
// @Failure      400  {object}  common.AppError "Bad Request (e.g., invalid amount, same-account transfer)"
// @Failure      401  {object}  common.AppError "Unauthorized: Invalid or missing token"
// @Failure      403  {object}  common.AppError "Forbidden: User does not own the source account"
// @Failure      404  {object}  common.AppError "Sender or receiver account not found"
// @Failure      409  {object}  common.AppError "Insufficient funds"
// @Router       /api/transfers [post]
func (h *TransactionHandler) CreateTransfer(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.TransferRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	userID, ok := r.Context().Value(UserIDKey).(int)
	if !ok {
		return common.NewAppError(http.StatusUnauthorized, "Invalid user ID in token", nil)
	}

	result, err := h.ledger.Transfer(r.Context(), userID, req)
	if err != nil {
		return mapLedgerError(err, "Could not process transfer")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(result)
	return nil
}

// ListTransactionsForAccount godoc
// @Summary      List account transaction history
// @Description  Retrieves the transaction history for a specific account owned by the authenticated user, in insertion order.
// @Tags         transactions
// @Produce      json
// @Security     BearerAuth
// @Param        accountId path int true "The ID of the account to retrieve transactions for"
// @Success      200  {array}   model.Transaction "A list of transactions for the account"
// @Failure      400  {object}  common.AppError "Invalid account ID in URL path"
// @Failure      401  {object}  common.AppError "Unauthorized: Invalid or missing token"
// @Failure      403  {object}  common.AppError "Forbidden: User does not own the specified account"
// @Failure      404  {object}  common.AppError "Account with the specified ID not found"
// @Router       /api/accounts/{accountId}/transactions [get]
func (h *TransactionHandler) ListTransactionsForAccount(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, ok := r.Context().Value(UserIDKey).(int)
	if !ok {
		return common.NewAppError(http.StatusUnauthorized, "Invalid user ID in token", nil)
	}
	accountID, appErr := accountIDFromPath(r)
	if appErr != nil {
		return appErr
	}

	transactions, err := h.ledger.ListTransactions(r.Context(), userID, accountID)
	if err != nil {
		return mapLedgerError(err, "Could not retrieve transactions")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(transactions)
	return nil
}

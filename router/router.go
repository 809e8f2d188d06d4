package router

import (
	"go-bank-ledger/handler"
	"go-bank-ledger/middleware"
	"net/http"
)

func NewRouter(userHandler *handler.UserHandler, accountHandler *handler.AccountHandler, transactionHandler *handler.TransactionHandler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", handler.HealthCheck)

	mux.Handle("POST /register", handler.ErrorHandlingMiddleware(userHandler.Register))
	mux.Handle("POST /login", handler.ErrorHandlingMiddleware(userHandler.Login))
	mux.Handle("POST /refresh", handler.ErrorHandlingMiddleware(userHandler.Refresh))

	// Everything under /api requires a valid access token.
	api := http.NewServeMux()
	api.Handle("POST /api/accounts", handler.ErrorHandlingMiddleware(accountHandler.OpenAccount))
	api.Handle("GET /api/accounts", handler.ErrorHandlingMiddleware(accountHandler.ListAccounts))
	api.Handle("GET /api/accounts/{accountId}", handler.ErrorHandlingMiddleware(accountHandler.GetAccount))
	api.Handle("DELETE /api/accounts/{accountId}", handler.ErrorHandlingMiddleware(accountHandler.CloseAccount))
	api.Handle("POST /api/accounts/{accountId}/deposit", handler.ErrorHandlingMiddleware(accountHandler.Deposit))
	api.Handle("POST /api/accounts/{accountId}/withdraw", handler.ErrorHandlingMiddleware(accountHandler.Withdraw))
	api.Handle("POST /api/accounts/{accountId}/interest", handler.ErrorHandlingMiddleware(accountHandler.ApplyInterest))
	api.Handle("GET /api/accounts/{accountId}/transactions", handler.ErrorHandlingMiddleware(transactionHandler.ListTransactionsForAccount))
	api.Handle("POST /api/transfers", handler.ErrorHandlingMiddleware(transactionHandler.CreateTransfer))

	mux.Handle("/api/", handler.AuthMiddleware(api))

	return middleware.RequestID(mux)
}

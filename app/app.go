// File: app/app.go
package app

import (
	"context"
	"database/sql"
	"go-bank-ledger/config"
	"go-bank-ledger/db"
	"go-bank-ledger/events"
	"go-bank-ledger/handler"
	"go-bank-ledger/logger"
	"go-bank-ledger/repository"
	"go-bank-ledger/router"
	"go-bank-ledger/service"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
)

func Run() {
	config.LoadConfig(".")
	logger.Init()
	logger.Log.Info("Logger initialized")
	logger.Log.Info("Configuration loaded successfully")

	database, err := db.Connect()
	if err != nil {
		logger.Log.Fatalf("Error connecting to the database: %v", err)
	}
	defer database.Close()

	if err := db.Migrate(); err != nil {
		logger.Log.Fatalf("Error running database migrations: %v", err)
	}

	redisClient, err := db.ConnectRedis()
	if err != nil {
		logger.Log.Fatalf("Error connecting to redis: %v", err)
	}
	defer redisClient.Close()

	var publisher events.Publisher
	if config.AppConfig.Kafka.Enabled {
		kafkaPublisher := events.NewKafkaPublisher(config.AppConfig.Kafka.Brokers, config.AppConfig.Kafka.Topic)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	}

	r := buildRouter(database, redisClient, publisher)

	// --- Start the Server with Graceful Shutdown ---
	port := config.AppConfig.Server.Port
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		logger.Log.Infof("Server starting on port :%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Warn("Shutdown signal received. Starting graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Log.Info("Server exited properly")
}

// buildRouter wires repositories, services and handlers together.
func buildRouter(database *sql.DB, redisClient *redis.Client, publisher events.Publisher) http.Handler {
	userRepo := repository.NewUserRepository(database)
	tokenRepo := repository.NewTokenRepository(database)
	accountRepo := repository.NewAccountRepository(database)
	transactionRepo := repository.NewTransactionRepository(database)

	authService := service.NewAuthService(userRepo, tokenRepo)
	userService := service.NewUserService(userRepo, authService)
	accountService := service.NewAccountService(accountRepo, redisClient)
	ledgerService := service.NewLedgerService(database, accountRepo, transactionRepo,
		redisClient, publisher, service.NewSystemClock())

	userHandler := handler.NewUserHandler(userService, authService)
	accountHandler := handler.NewAccountHandler(ledgerService, accountService)
	transactionHandler := handler.NewTransactionHandler(ledgerService)

	return router.NewRouter(userHandler, accountHandler, transactionHandler)
}

// TestApp exposes the wired router plus its backing connections for
// integration tests.
type TestApp struct {
	DB     *sql.DB
	Router http.Handler
}

func NewTestApp(database *sql.DB, redisClient *redis.Client) *TestApp {
	return &TestApp{
		DB:     database,
		Router: buildRouter(database, redisClient, nil),
	}
}

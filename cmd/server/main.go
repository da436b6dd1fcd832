/*
main.go - Application entry point

PURPOSE:

	Initializes and starts the asset ledger server.
	Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
 1. Load optional .env file, parse command-line flags
 2. Initialize SQLite store
 3. Create API handler with dependencies
 4. Configure HTTP router
 5. Start server with graceful shutdown

CONFIGURATION:

	Flags override environment, environment overrides defaults.

	-port / PORT                  HTTP server port (default: 8080)
	-db / DB_PATH                 SQLite database path (default: ledger.db)
	                              Use ":memory:" for in-memory database
	-expense-account / EXPENSE_ACCOUNT
	                              Depreciation expense account (default: 92)
	-workers / ACCRUAL_WORKERS    Accrual run pool size (default: 4)

GRACEFUL SHUTDOWN:

	On SIGINT/SIGTERM:
	1. Stop accepting new connections
	2. Wait for active requests to complete (30s timeout)
	3. Close database connection
	4. Exit

EXAMPLES:

	# Run with file database
	./server -db="./data/ledger.db"

	# Run with in-memory database
	./server -db=":memory:"

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/warp/asset-ledger/api"
	"github.com/warp/asset-ledger/store/sqlite"
)

func main() {
	// A .env file is optional; absence is not an error.
	_ = godotenv.Load()

	port := flag.Int("port", envInt("PORT", 8080), "HTTP server port")
	dbPath := flag.String("db", envStr("DB_PATH", "ledger.db"), "SQLite database path")
	expenseAccount := flag.String("expense-account", envStr("EXPENSE_ACCOUNT", ""), "depreciation expense account (23/91/92/93)")
	workers := flag.Int("workers", envInt("ACCRUAL_WORKERS", 4), "accrual run worker pool size")
	flag.Parse()

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Initialize handler; the SQLite store also serves as the audit log.
	handler := api.NewHandler(store, store)
	handler.Processor.ExpenseAccount = *expenseAccount
	handler.Run.Workers = *workers

	// Create router
	router := api.NewRouter(handler)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server starting on http://localhost:%d", *port)
		log.Printf("API available at http://localhost:%d/api", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

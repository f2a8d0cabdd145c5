package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"expense-api/internal/auth"
	"expense-api/internal/config"
	"expense-api/internal/handlers"
	"expense-api/internal/storage"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	creds, err := newCredentials(cfg)
	if err != nil {
		return err
	}

	key, generated, err := cfg.SigningKey()
	if err != nil {
		return err
	}
	if generated {
		logger.Warn("JWT_SECRET not set, using a random key; tokens will not survive a restart")
	}
	tokens, err := auth.NewTokenService(key, cfg.TokenTTL)
	if err != nil {
		return err
	}

	store, closeStore, err := newStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()
	logger.Info("using store", "store", cfg.Store)

	if cfg.SeedExpenses {
		if err := storage.Seed(context.Background(), store, storage.DefaultSeed); err != nil {
			return err
		}
	}

	h := handlers.NewHandlers(store, creds, tokens, logger)

	httpServer := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           setupRouter(h),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", cfg.ListenAddr(), "user", creds.Username())
		errCh <- httpServer.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info("shutdown requested")
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	}

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(ctxShutdown)
}

// setupRouter maps each method and path to its handler. Everything except
// login goes through the auth middleware.
func setupRouter(h *handlers.Handlers) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/login", h.Login)

	protected := func(fn http.HandlerFunc) http.Handler {
		return h.AuthMiddleware(fn)
	}
	mux.Handle("GET /api/expenses", protected(h.ListExpenses))
	mux.Handle("POST /api/expenses", protected(h.CreateExpense))
	mux.Handle("PUT /api/expenses/{id}", protected(h.UpdateExpense))
	mux.Handle("DELETE /api/expenses/{id}", protected(h.DeleteExpense))
	mux.Handle("GET /api/expense", protected(h.TotalExpense))

	var handler http.Handler = mux
	handler = h.Recover(handler)
	handler = h.Logging(handler)
	handler = handlers.RequestID(handler)
	return handler
}

// newCredentials prefers a precomputed hash and falls back to hashing the
// plaintext password once at startup.
func newCredentials(cfg config.Config) (*auth.Credentials, error) {
	hash := cfg.AdminPasswordHash
	if hash == "" {
		var err error
		hash, err = auth.HashPassword(cfg.AdminPassword)
		if err != nil {
			return nil, fmt.Errorf("failed to hash admin password: %w", err)
		}
	}
	creds, err := auth.NewCredentials(cfg.AdminUser, hash)
	if err != nil {
		return nil, fmt.Errorf("admin credentials: %w", err)
	}
	return creds, nil
}

func newStore(cfg config.Config) (storage.ExpenseStore, func(), error) {
	switch cfg.Store {
	case config.StoreSQLite:
		db, err := storage.NewDB()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open database: %w", err)
		}
		return db, func() { db.Close() }, nil
	case config.StoreMemory, "":
		return storage.NewMemoryStore(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/praneeth1335/backend/internal/auth"
	"github.com/praneeth1335/backend/internal/cache"
	"github.com/praneeth1335/backend/internal/config"
	"github.com/praneeth1335/backend/internal/email"
	"github.com/praneeth1335/backend/internal/ledger"
	"github.com/praneeth1335/backend/internal/server"
	"github.com/praneeth1335/backend/internal/service"
	"github.com/praneeth1335/backend/internal/storage"
	"github.com/praneeth1335/backend/internal/storage/memory"
	"github.com/praneeth1335/backend/internal/storage/postgres"
	"github.com/praneeth1335/backend/internal/storage/sqlite"
	"github.com/praneeth1335/backend/pkg/logging"
)

func main() {
	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	store, err := newStore(cfg)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "driver", cfg.DBDriver)

	codes, err := newCodeCache(cfg)
	if err != nil {
		slog.Error("Failed to initialize code cache", "error", err)
		os.Exit(1)
	}

	mail := newMailSender(cfg)

	calculator := ledger.NewCalculator(store, store)
	updater := ledger.NewUpdater(store, store, calculator)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpire)
	authenticator := auth.NewPasswordAuthenticator(store)

	srv := server.New(
		service.NewAuthService(store, authenticator, jwtManager, codes, mail, updater),
		service.NewFriendService(store, calculator, updater),
		service.NewTransactionService(store, calculator, updater),
	)

	// h2c serves HTTP/2 without TLS for clients that want it; plain HTTP/1.1
	// still works.
	handler := h2c.NewHandler(srv.Router(jwtManager, store), &http2.Server{})

	addr := fmt.Sprintf(":%d", cfg.Port)
	slog.Info("Server starting", "address", addr, "url", fmt.Sprintf("http://localhost%s", addr))
	if err := http.ListenAndServe(addr, handler); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func newStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.DBDriver {
	case "postgres":
		return postgres.New(cfg.DatabaseURL)
	case "memory":
		return memory.New(), nil
	default:
		return sqlite.New(cfg.DBPath)
	}
}

func newCodeCache(cfg *config.Config) (cache.Codes, error) {
	if cfg.RedisAddr == "" {
		slog.Info("No REDIS_ADDR configured, using in-memory code cache")
		return cache.NewInMemoryCodes(), nil
	}
	codes, err := cache.NewRedisCodes(context.Background(), cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, err
	}
	slog.Info("Redis code cache initialized", "addr", cfg.RedisAddr)
	return codes, nil
}

func newMailSender(cfg *config.Config) email.Sender {
	if cfg.SMTPHost == "" {
		slog.Info("No SMTP_HOST configured, logging outbound email instead")
		return email.LogSender{}
	}
	return email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.EmailFrom)
}

// Command seal-tokens encrypts OAuth tokens that were stored before
// ENCRYPTION_KEY was configured.
//
// Usage:
//
//	seal-tokens [--dry-run]
//
// It reads the same environment as the bot (STORE_BACKEND, DB_DSN,
// REDIS_ADDR, REDIS_PREFIX) and requires ENCRYPTION_KEY.
//
// Example:
//
//	export ENCRYPTION_KEY="$(openssl rand -base64 32)"
//	./seal-tokens --dry-run
//	./seal-tokens
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/onnwee/chat-thief/config"
	"github.com/onnwee/chat-thief/docstore"
	"github.com/onnwee/chat-thief/oauth"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "Show what would be sealed without making changes")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *dryRun); err != nil {
		slog.Error("sealing failed", slog.Any("err", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, dryRun bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.EncryptionKey == "" {
		return fmt.Errorf("ENCRYPTION_KEY environment variable is required")
	}
	if cfg.StoreBackend == config.BackendMemory {
		return fmt.Errorf("STORE_BACKEND=memory has nothing to seal")
	}
	if err := cfg.ValidateStore(); err != nil {
		return err
	}
	sealer, err := oauth.NewSealer(cfg.EncryptionKey)
	if err != nil {
		return fmt.Errorf("initialize sealer: %w", err)
	}
	store, closeStore, err := docstore.Open(ctx, docstore.OpenOptions{
		Backend:     cfg.StoreBackend,
		DSN:         cfg.DBDsn,
		RedisAddr:   cfg.RedisAddr,
		RedisPrefix: cfg.RedisPrefix,
	})
	if err != nil {
		return err
	}
	defer closeStore()

	providers, err := oauth.NewTokenStore(store, sealer).SealPlaintext(ctx, dryRun)
	if err != nil {
		return err
	}
	if len(providers) == 0 {
		slog.Info("no plaintext tokens found")
		return nil
	}
	for _, p := range providers {
		if dryRun {
			slog.Info("would seal token (dry-run)", slog.String("provider", p))
		} else {
			slog.Info("sealed token", slog.String("provider", p))
		}
	}
	slog.Info("sealing summary", slog.Int("tokens", len(providers)), slog.Bool("dry_run", dryRun))
	return nil
}

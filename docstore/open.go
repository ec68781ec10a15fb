package docstore

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/onnwee/chat-thief/db"
)

// Backend names accepted by Open.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// OpenOptions selects and configures a backend.
type OpenOptions struct {
	Backend string
	// DSN is the Postgres URL or SQLite file path.
	DSN         string
	RedisAddr   string
	RedisPrefix string
}

// Open connects to the configured backend, running migrations for SQL
// backends. The returned func releases the connection.
func Open(ctx context.Context, opts OpenOptions) (Store, func(), error) {
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case BackendMemory:
		slog.Warn("using in-memory store; state is lost on restart", slog.String("component", "store"))
		return NewMemory(), func() {}, nil

	case BackendRedis:
		client := redis.NewClient(&redis.Options{Addr: opts.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("ping redis %s: %w", opts.RedisAddr, err)
		}
		slog.Info("connected to redis", slog.String("addr", opts.RedisAddr), slog.String("component", "store"))
		return NewRedis(client, opts.RedisPrefix), func() {
			if err := client.Close(); err != nil {
				slog.Error("failed to close redis client", slog.Any("err", err))
			}
		}, nil

	default:
		dialect, err := db.ParseDialect(opts.Backend)
		if err != nil {
			return nil, nil, err
		}
		database, err := db.Connect(ctx, dialect, opts.DSN)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("running database migrations", slog.String("dialect", string(dialect)), slog.String("component", "db_migrate"))
		if err := db.RunMigrations(database, dialect); err != nil {
			_ = database.Close()
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		return NewSQL(database, dialect), func() {
			if err := database.Close(); err != nil {
				slog.Error("failed to close database", slog.Any("err", err))
			}
		}, nil
	}
}

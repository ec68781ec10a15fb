// Command chat-thief runs the Twitch chat economy bot.
// It:
//   - Loads configuration and initializes structured logging.
//   - Opens the document store (memory, SQLite, Postgres or Redis) and runs migrations.
//   - Registers the sound effect catalog from SFX_DIR.
//   - Joins Twitch chat and routes every line through the command router.
//   - Keeps the bot token fresh and exposes /healthz, /readyz, /metrics and the admin API.
//
// Shutdown is graceful on SIGINT/SIGTERM.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/onnwee/chat-thief/chat"
	"github.com/onnwee/chat-thief/config"
	"github.com/onnwee/chat-thief/docstore"
	"github.com/onnwee/chat-thief/draw"
	"github.com/onnwee/chat-thief/economy"
	"github.com/onnwee/chat-thief/oauth"
	"github.com/onnwee/chat-thief/router"
	"github.com/onnwee/chat-thief/server"
	"github.com/onnwee/chat-thief/telemetry"
)

const (
	serviceName    = "chat-thief"
	serviceVersion = "1.0.0"
)

func main() {
	// Load .env file if present (local dev convenience only; production relies on real env)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}
	slog.SetDefault(newLogger(cfg.LogLevel, cfg.LogFormat))

	if err := cfg.ValidateStore(); err != nil {
		slog.Error("invalid store configuration", slog.Any("err", err))
		os.Exit(1)
	}
	policy, err := cfg.Policy()
	if err != nil {
		slog.Error("invalid economy configuration", slog.Any("err", err))
		os.Exit(1)
	}

	telemetry.Init()
	shutdownTracing, err := telemetry.InitTracing(serviceName, serviceVersion, cfg.OTLPEndpoint)
	if err != nil {
		slog.Error("tracing initialization failed", slog.Any("err", err))
		os.Exit(1)
	}
	defer shutdownTracing()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := docstore.Open(ctx, docstore.OpenOptions{
		Backend:     cfg.StoreBackend,
		DSN:         cfg.DBDsn,
		RedisAddr:   cfg.RedisAddr,
		RedisPrefix: cfg.RedisPrefix,
	})
	if err != nil {
		slog.Error("failed to open store", slog.String("backend", cfg.StoreBackend), slog.Any("err", err))
		os.Exit(1)
	}
	defer closeStore()

	var sealer *oauth.Sealer
	if cfg.EncryptionKey != "" {
		if sealer, err = oauth.NewSealer(cfg.EncryptionKey); err != nil {
			slog.Error("invalid ENCRYPTION_KEY", slog.Any("err", err))
			os.Exit(1)
		}
	}
	tokens := oauth.NewTokenStore(store, sealer)
	if cfg.TwitchRefreshToken != "" {
		seeded, err := tokens.SeedIfMissing(ctx, oauth.Token{
			Provider:     oauth.ProviderTwitch,
			AccessToken:  strings.TrimPrefix(cfg.TwitchOAuthToken, "oauth:"),
			RefreshToken: cfg.TwitchRefreshToken,
			Scope:        cfg.TwitchScopes,
		})
		if err != nil {
			slog.Warn("failed to seed twitch token", slog.Any("err", err))
		} else if seeded {
			slog.Info("seeded twitch token from environment", slog.String("component", "oauth"))
		}
	}

	audience := chat.NewAudience(store, cfg.AudienceWindow)
	plays := chat.NewPlayQueue(store)
	ledger := economy.NewLedger(store, policy.StartingMana)
	picker := &draw.Picker{Rand: draw.Default(), Pool: audience, Invalid: cfg.Invalid()}
	eco := economy.New(ledger, picker, policy, plays)

	if cfg.SFXDir != "" {
		names, err := loadCatalog(cfg.SFXDir)
		if err != nil {
			slog.Error("failed to read sound effects", slog.String("dir", cfg.SFXDir), slog.Any("err", err))
			os.Exit(1)
		}
		created, err := ledger.Seed(ctx, names)
		if err != nil {
			slog.Error("failed to seed commands", slog.Any("err", err))
			os.Exit(1)
		}
		slog.Info("sound effect catalog loaded", slog.Int("found", len(names)), slog.Int("created", created))
	}

	tiers := router.NewTiers(cfg.StreamLords, cfg.StreamGods)
	rt := router.New(eco, tiers, cfg.Ignored())

	bot := &chat.Bot{
		Channel:  cfg.TwitchChannel,
		Username: cfg.TwitchBotUsername,
		Handler:  rt,
		Audience: audience,
	}
	if cfg.TwitchOAuthToken != "" || cfg.TwitchRefreshToken != "" {
		bot.Token = tokens.AccessTokenFunc(oauth.ProviderTwitch, cfg.TwitchOAuthToken)
	}

	if cfg.CanRefreshToken() {
		oauth.StartRefresher(ctx, tokens, oauth.ProviderTwitch, 5*time.Minute, 15*time.Minute,
			oauth.TwitchRefreshFunc(cfg.TwitchClientID, cfg.TwitchClientSecret, cfg.TwitchTokenURL))
	}

	deps := server.Deps{Store: store, Economy: eco, Plays: plays, Lines: rt, Tokens: tokens}
	opts := server.Options{
		AdminUsername:          cfg.AdminUsername,
		AdminPassword:          cfg.AdminPassword,
		AdminToken:             cfg.AdminToken,
		RateLimitEnabled:       cfg.RateLimitEnabled,
		RateLimitRequestsPerIP: cfg.RateLimitRequestsPerIP,
		RateLimitWindow:        cfg.RateLimitWindow,
		CORSPermissive:         cfg.CORSIsPermissive(),
		CORSAllowedOrigins:     cfg.CORSAllowedOrigins,
		TwitchClientID:         cfg.TwitchClientID,
		TwitchClientSecret:     cfg.TwitchClientSecret,
		TwitchRedirectURI:      cfg.TwitchRedirectURI,
		TwitchScopes:           strings.Fields(cfg.TwitchScopes),
		TwitchTokenURL:         cfg.TwitchTokenURL,
	}

	slog.Info("starting chat-thief",
		slog.String("channel", cfg.TwitchChannel),
		slog.String("store", cfg.StoreBackend),
		slog.String("revolution", policy.Revolution.Name()),
		slog.Int("lords", len(cfg.StreamLords)),
		slog.Int("gods", len(cfg.StreamGods)))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return server.Start(gctx, deps, opts, cfg.HTTPAddr) })
	g.Go(func() error { return bot.Run(gctx) })
	g.Go(func() error { return pruneAudience(gctx, audience, cfg.AudienceWindow) })

	if err := g.Wait(); err != nil {
		slog.Error("service exited with error", slog.Any("err", err))
		os.Exit(1)
	}
	slog.Info("shut down cleanly")
}

// newLogger configures logging (level + format). Defaults: level=info, format=text.
func newLogger(level, format string) *slog.Logger {
	lvl := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	case "info", "":
	default:
		slog.Warn("unknown LOG_LEVEL, using info", slog.String("value", level))
	}
	var handler slog.Handler
	switch strings.ToLower(format) {
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	default:
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	}
	return slog.New(handler)
}

// pruneAudience drops stale chatter records once per window.
func pruneAudience(ctx context.Context, audience *chat.Audience, window time.Duration) error {
	if window <= 0 {
		window = chat.DefaultAudienceWindow
	}
	ticker := time.NewTicker(window)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			removed, err := audience.Prune(ctx)
			if err != nil {
				slog.Warn("audience prune failed", slog.Any("err", err), slog.String("component", "chat"))
				continue
			}
			if removed > 0 {
				slog.Debug("audience pruned", slog.Int("removed", removed), slog.String("component", "chat"))
			}
		}
	}
}

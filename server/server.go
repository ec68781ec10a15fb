// Package server exposes the HTTP API: health, metrics, read-only views of the
// economy, the sound effect play queue for the audio player, and the Twitch
// OAuth flow for the bot token. It injects correlation IDs into request
// contexts for consistent logging.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/onnwee/chat-thief/chat"
	"github.com/onnwee/chat-thief/docstore"
	"github.com/onnwee/chat-thief/economy"
	"github.com/onnwee/chat-thief/oauth"
	"github.com/onnwee/chat-thief/telemetry"
)

// Deps are the services the handlers read from.
type Deps struct {
	Store   docstore.Store
	Economy *economy.Economy
	Plays   *chat.PlayQueue
	// Lines routes simulated chat lines posted to /admin/chat.
	Lines chat.LineHandler
	// Tokens is optional; without it the OAuth endpoints answer 404.
	Tokens *oauth.TokenStore
}

// Options configure the middleware and OAuth flow.
type Options struct {
	AdminUsername string
	AdminPassword string
	AdminToken    string

	RateLimitEnabled       bool
	RateLimitRequestsPerIP int
	RateLimitWindow        time.Duration

	CORSPermissive     bool
	CORSAllowedOrigins []string

	TwitchClientID     string
	TwitchClientSecret string
	TwitchRedirectURI  string
	TwitchScopes       []string
	// TwitchAuthURL and TwitchTokenURL override the Twitch endpoints.
	TwitchAuthURL  string
	TwitchTokenURL string
}

// NewMux returns the HTTP handler with all routes.
// The provided context bounds the rate limiter cleanup goroutine.
func NewMux(ctx context.Context, deps Deps, opts Options) http.Handler {
	rateLimiter := newIPRateLimiter(ctx, &rateLimiterConfig{
		enabled:       opts.RateLimitEnabled,
		requestsPerIP: opts.RateLimitRequestsPerIP,
		window:        opts.RateLimitWindow,
	})
	authCfg := newAuthConfig(opts.AdminUsername, opts.AdminPassword, opts.AdminToken)
	corsCfg := newCORSConfig(opts.CORSPermissive, opts.CORSAllowedOrigins)

	h := NewHandlers(deps, opts)

	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /healthz", h.HandleHealthz)
	mux.HandleFunc("GET /readyz", h.HandleReadyz)

	mux.HandleFunc("GET /users/{name}", h.HandleUser)
	mux.HandleFunc("GET /commands", h.HandleCommands)
	mux.HandleFunc("GET /commands/{name}", h.HandleCommand)
	mux.HandleFunc("GET /leaderboard", h.HandleLeaderboard)

	mux.HandleFunc("GET /auth/twitch/start", h.HandleTwitchOAuthStart)
	mux.HandleFunc("GET /auth/twitch/callback", h.HandleTwitchOAuthCallback)

	admin := http.NewServeMux()
	admin.HandleFunc("GET /admin/plays", h.HandleAdminPlays)
	admin.HandleFunc("DELETE /admin/plays/{id}", h.HandleAdminAckPlay)
	admin.HandleFunc("POST /admin/chat", h.HandleAdminChat)
	mux.Handle("/admin/", adminAuth(rateLimitMiddleware(admin, rateLimiter), authCfg))

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Reuse corr header if provided else generate
		corr := r.Header.Get("X-Correlation-ID")
		if corr == "" {
			corr = uuid.New().String()
		}
		ctx := telemetry.WithCorrelation(r.Context(), corr)
		w.Header().Set("X-Correlation-ID", corr)

		ctx, span := telemetry.StartSpan(ctx, "http-server", r.Method+" "+r.URL.Path,
			attribute.String("http.method", r.Method),
			attribute.String("http.route", r.URL.Path),
		)
		defer span.End()

		telemetry.LoggerWithCorr(ctx).Debug("request start", slog.String("method", r.Method), slog.String("path", r.URL.Path), slog.String("component", "http"))

		wrappedWriter := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		mux.ServeHTTP(wrappedWriter, r.WithContext(ctx))

		span.SetAttributes(attribute.Int("http.status_code", wrappedWriter.statusCode))
		if wrappedWriter.statusCode >= 400 {
			span.SetStatus(codes.Error, fmt.Sprintf("HTTP %d", wrappedWriter.statusCode))
		}
	})
	return withCORSConfig(handler, corsCfg)
}

// statusRecorder wraps ResponseWriter to capture status code
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (r *statusRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}

// Flush implements http.Flusher if the underlying ResponseWriter supports it
func (r *statusRecorder) Flush() {
	if flusher, ok := r.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// Start runs the HTTP server and shuts down gracefully on context cancellation.
func Start(ctx context.Context, deps Deps, opts Options, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      NewMux(ctx, deps, opts),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		// Use WithoutCancel to inherit context values but allow shutdown to complete
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("http server shutdown error", slog.Any("err", err))
		}
	}()

	slog.Info("http server listening", slog.String("addr", addr), slog.String("component", "http"))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("http server error", slog.Any("err", err))
		return err
	}
	return nil
}

// pathName normalizes a {name} path value the way the ledger keys records.
func pathName(r *http.Request) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimPrefix(r.PathValue("name"), "@"), "!"))
}

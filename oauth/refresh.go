// Package oauth keeps the bot's Twitch token alive. Tokens live in the
// oauth_tokens document table; a refresher performs jittered checks and
// refreshes when expiry falls within a configured window.
package oauth

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"time"

	"github.com/onnwee/chat-thief/docstore"
	"github.com/onnwee/chat-thief/telemetry"
)

// RefreshFunc performs provider-specific refresh and returns (access, refresh, expiry, scope)
type RefreshFunc func(ctx context.Context, refreshToken string) (string, string, time.Time, string, error)

// RefreshOnce refreshes provider's token when it expires within window. It
// reports whether a refresh happened.
func RefreshOnce(ctx context.Context, tokens *TokenStore, provider string, window time.Duration, fn RefreshFunc) (bool, error) {
	tok, err := tokens.Load(ctx, provider)
	if errors.Is(err, docstore.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if tok.RefreshToken == "" || time.Until(tok.ExpiresAt) > window {
		telemetry.IncRefresh("skipped")
		return false, nil
	}

	ctx2, cancel := context.WithTimeout(ctx, 15*time.Second)
	newAT, newRT, newExp, newScope, err := fn(ctx2, tok.RefreshToken)
	cancel()
	if err != nil {
		telemetry.IncRefresh("error")
		return false, err
	}
	if newRT == "" {
		newRT = tok.RefreshToken
	}
	if newScope == "" {
		newScope = tok.Scope
	}
	if err := tokens.Save(ctx, Token{Provider: provider, AccessToken: newAT, RefreshToken: newRT, ExpiresAt: newExp, Scope: newScope}); err != nil {
		telemetry.IncRefresh("error")
		return false, err
	}
	telemetry.IncRefresh("success")
	return true, nil
}

// StartRefresher launches a goroutine that periodically checks a stored token
// and refreshes it.
// interval: how often to wake up and check.
// window: refresh when remaining lifetime <= window.
func StartRefresher(ctx context.Context, tokens *TokenStore, provider string, interval, window time.Duration, fn RefreshFunc) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if window <= 0 {
		window = 15 * time.Minute
	}
	//nolint:gosec // G404: math/rand is sufficient for scheduling jitter, not used for security
	initialJitter := time.Duration(rand.Int63n(int64(interval/2) + 1))
	go func() {
		select {
		case <-ctx.Done():
			return
		case <-time.After(initialJitter):
		}
		for {
			// per-iteration jitter of +/-20% keeps replicas apart
			jitterRange := int64(interval / 5)
			//nolint:gosec // G404: math/rand is sufficient for scheduling jitter, not used for security
			jitter := time.Duration(rand.Int63n(jitterRange*2+1) - jitterRange)
			nextSleep := interval + jitter
			if nextSleep < interval/2 {
				nextSleep = interval / 2
			}
			refreshed, err := RefreshOnce(ctx, tokens, provider, window, fn)
			switch {
			case err != nil:
				slog.Warn("token refresh failed", slog.String("provider", provider), slog.Any("err", err), slog.String("component", "oauth"))
			case refreshed:
				slog.Info("token refreshed", slog.String("provider", provider), slog.String("component", "oauth"))
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(nextSleep):
			}
		}
	}()
}

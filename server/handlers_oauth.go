package server

import (
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/http"
	"time"

	"github.com/onnwee/chat-thief/oauth"
)

// HandleTwitchOAuthStart initiates the Twitch OAuth flow by redirecting to Twitch.
func (h *Handlers) HandleTwitchOAuthStart(w http.ResponseWriter, r *http.Request) {
	if h.oauth == nil || h.deps.Tokens == nil {
		http.Error(w, "oauth not configured (need TWITCH_CLIENT_ID + TWITCH_REDIRECT_URI)", http.StatusNotFound)
		return
	}
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		http.Error(w, "state gen error", http.StatusInternalServerError)
		return
	}
	st := hex.EncodeToString(b)
	h.addOAuthState(st, time.Now().Add(10*time.Minute))
	http.Redirect(w, r, h.oauth.AuthCodeURL(st), http.StatusFound)
}

// HandleTwitchOAuthCallback exchanges the code and stores the bot token.
func (h *Handlers) HandleTwitchOAuthCallback(w http.ResponseWriter, r *http.Request) {
	if h.oauth == nil || h.deps.Tokens == nil {
		http.Error(w, "oauth not configured", http.StatusNotFound)
		return
	}
	code := r.URL.Query().Get("code")
	st := r.URL.Query().Get("state")
	if code == "" || st == "" {
		http.Error(w, "missing code/state", http.StatusBadRequest)
		return
	}
	if !h.consumeOAuthState(st) {
		http.Error(w, "invalid state", http.StatusBadRequest)
		return
	}
	ctx := r.Context()
	tok, err := h.oauth.Exchange(ctx, code)
	if err != nil {
		loggerFor(r).Warn("twitch code exchange failed", slog.Any("err", err))
		http.Error(w, "token exchange failed", http.StatusBadGateway)
		return
	}
	scope := oauth.ScopeString(tok.Extra("scope"))
	if err := h.deps.Tokens.Save(ctx, oauth.Token{
		Provider:     oauth.ProviderTwitch,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    tok.Expiry,
		Scope:        scope,
	}); err != nil {
		h.storeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "scope": scope, "expires_at": tok.Expiry})
}

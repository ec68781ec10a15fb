package oauth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/twitch"

	"github.com/onnwee/chat-thief/docstore"
)

// ProviderTwitch keys the bot's chat token.
const ProviderTwitch = "twitch"

// TableTokens holds one document per provider.
const TableTokens = "oauth_tokens"

// Token is a stored OAuth credential.
type Token struct {
	Provider     string
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	Scope        string
}

type tokenDoc struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	Scope        string    `json:"scope"`
	Sealed       bool      `json:"sealed"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TokenStore persists tokens in the document store, sealing them when a
// Sealer is configured.
type TokenStore struct {
	store  docstore.Store
	sealer *Sealer
}

// NewTokenStore returns a TokenStore. sealer may be nil.
func NewTokenStore(store docstore.Store, sealer *Sealer) *TokenStore {
	return &TokenStore{store: store, sealer: sealer}
}

// Load returns the provider's token or docstore.ErrNotFound.
func (s *TokenStore) Load(ctx context.Context, provider string) (Token, error) {
	var doc tokenDoc
	if err := docstore.GetInto(ctx, s.store, TableTokens, provider, &doc); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return Token{}, err
		}
		return Token{}, fmt.Errorf("load %s token: %w", provider, err)
	}
	tok := Token{Provider: provider, AccessToken: doc.AccessToken, RefreshToken: doc.RefreshToken, ExpiresAt: doc.ExpiresAt, Scope: doc.Scope}
	if doc.Sealed {
		if s.sealer == nil {
			return Token{}, fmt.Errorf("%s token is encrypted but no ENCRYPTION_KEY is set", provider)
		}
		var err error
		if tok.AccessToken, err = s.sealer.Open(doc.AccessToken); err != nil {
			return Token{}, fmt.Errorf("open %s access token: %w", provider, err)
		}
		if tok.RefreshToken, err = s.sealer.Open(doc.RefreshToken); err != nil {
			return Token{}, fmt.Errorf("open %s refresh token: %w", provider, err)
		}
	}
	return tok, nil
}

// Save upserts a token.
func (s *TokenStore) Save(ctx context.Context, tok Token) error {
	doc := tokenDoc{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    tok.ExpiresAt.UTC(),
		Scope:        strings.TrimSpace(tok.Scope),
		UpdatedAt:    time.Now().UTC(),
	}
	if s.sealer != nil {
		var err error
		if doc.AccessToken, err = s.sealer.Seal(tok.AccessToken); err != nil {
			return fmt.Errorf("seal %s access token: %w", tok.Provider, err)
		}
		if doc.RefreshToken, err = s.sealer.Seal(tok.RefreshToken); err != nil {
			return fmt.Errorf("seal %s refresh token: %w", tok.Provider, err)
		}
		doc.Sealed = true
	}
	if err := docstore.PutFrom(ctx, s.store, TableTokens, tok.Provider, doc); err != nil {
		return fmt.Errorf("save %s token: %w", tok.Provider, err)
	}
	return nil
}

// SeedIfMissing stores tok unless the provider already has a token. It
// reports whether tok was written.
func (s *TokenStore) SeedIfMissing(ctx context.Context, tok Token) (bool, error) {
	if _, err := s.Load(ctx, tok.Provider); err == nil {
		return false, nil
	} else if !errors.Is(err, docstore.ErrNotFound) {
		return false, err
	}
	return true, s.Save(ctx, tok)
}

// AccessTokenFunc returns the stored access token for provider, or fallback
// when nothing is stored.
func (s *TokenStore) AccessTokenFunc(provider, fallback string) func(ctx context.Context) (string, error) {
	return func(ctx context.Context) (string, error) {
		tok, err := s.Load(ctx, provider)
		if errors.Is(err, docstore.ErrNotFound) || (err == nil && tok.AccessToken == "") {
			return fallback, nil
		}
		if err != nil {
			return "", err
		}
		return tok.AccessToken, nil
	}
}

// TwitchRefreshFunc refreshes tokens against the Twitch token endpoint.
// tokenURL overrides the endpoint (tests, proxies).
func TwitchRefreshFunc(clientID, clientSecret, tokenURL string) RefreshFunc {
	endpoint := twitch.Endpoint
	if tokenURL != "" {
		endpoint.TokenURL = tokenURL
	}
	cfg := &oauth2.Config{ClientID: clientID, ClientSecret: clientSecret, Endpoint: endpoint}
	return func(ctx context.Context, refreshToken string) (string, string, time.Time, string, error) {
		tok, err := cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
		if err != nil {
			return "", "", time.Time{}, "", fmt.Errorf("twitch token refresh: %w", err)
		}
		return tok.AccessToken, tok.RefreshToken, tok.Expiry, ScopeString(tok.Extra("scope")), nil
	}
}

// ScopeString flattens an OAuth scope field, which Twitch returns as a JSON array.
func ScopeString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case []string:
		return strings.Join(s, " ")
	case []any:
		parts := make([]string, 0, len(s))
		for _, p := range s {
			if str, ok := p.(string); ok {
				parts = append(parts, str)
			}
		}
		return strings.Join(parts, " ")
	default:
		return ""
	}
}

// SealPlaintext rewrites every unsealed stored token in sealed form and
// returns the affected providers. With dryRun nothing is written.
func (s *TokenStore) SealPlaintext(ctx context.Context, dryRun bool) ([]string, error) {
	if s.sealer == nil {
		return nil, errors.New("sealing tokens requires ENCRYPTION_KEY")
	}
	providers, err := s.store.Keys(ctx, TableTokens)
	if err != nil {
		return nil, fmt.Errorf("list tokens: %w", err)
	}
	var sealed []string
	for _, provider := range providers {
		var doc tokenDoc
		if err := docstore.GetInto(ctx, s.store, TableTokens, provider, &doc); err != nil {
			if errors.Is(err, docstore.ErrNotFound) {
				continue
			}
			return sealed, fmt.Errorf("load %s token: %w", provider, err)
		}
		if doc.Sealed {
			continue
		}
		if !dryRun {
			tok := Token{Provider: provider, AccessToken: doc.AccessToken, RefreshToken: doc.RefreshToken, ExpiresAt: doc.ExpiresAt, Scope: doc.Scope}
			if err := s.Save(ctx, tok); err != nil {
				return sealed, err
			}
		}
		sealed = append(sealed, provider)
	}
	return sealed, nil
}

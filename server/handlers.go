package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/twitch"
)

const (
	// Maximum number of OAuth states to keep in memory
	maxOAuthStates = 10000
)

// Handlers holds dependencies for all HTTP handlers.
type Handlers struct {
	deps       Deps
	oauth      *oauth2.Config
	stateStore map[string]time.Time
	stateMu    sync.RWMutex
}

// NewHandlers creates a new Handlers instance with the given dependencies.
func NewHandlers(deps Deps, opts Options) *Handlers {
	h := &Handlers{deps: deps, stateStore: make(map[string]time.Time)}
	if opts.TwitchClientID != "" && opts.TwitchRedirectURI != "" {
		endpoint := twitch.Endpoint
		if opts.TwitchAuthURL != "" {
			endpoint.AuthURL = opts.TwitchAuthURL
		}
		if opts.TwitchTokenURL != "" {
			endpoint.TokenURL = opts.TwitchTokenURL
		}
		h.oauth = &oauth2.Config{
			ClientID:     opts.TwitchClientID,
			ClientSecret: opts.TwitchClientSecret,
			RedirectURL:  opts.TwitchRedirectURI,
			Scopes:       opts.TwitchScopes,
			Endpoint:     endpoint,
		}
	}
	return h
}

// cleanExpiredStates removes expired OAuth states from the store.
// This should be called with stateMu locked.
func (h *Handlers) cleanExpiredStates() {
	now := time.Now()
	for state, expiry := range h.stateStore {
		if now.After(expiry) {
			delete(h.stateStore, state)
		}
	}
}

// addOAuthState adds a new OAuth state to the store with cleanup if needed.
func (h *Handlers) addOAuthState(state string, expiry time.Time) {
	h.stateMu.Lock()
	defer h.stateMu.Unlock()

	if len(h.stateStore)%100 == 0 {
		h.cleanExpiredStates()
	}
	// Refusing new states fails the flow instead of growing without bound
	if len(h.stateStore) >= maxOAuthStates {
		return
	}
	h.stateStore[state] = expiry
}

// consumeOAuthState reports whether state was issued and unexpired, and
// forgets it either way.
func (h *Handlers) consumeOAuthState(state string) bool {
	h.stateMu.Lock()
	defer h.stateMu.Unlock()
	exp, ok := h.stateStore[state]
	delete(h.stateStore, state)
	return ok && time.Now().Before(exp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to encode JSON response", slog.Any("err", err))
	}
}

// parseIntQuery extracts an int parameter from query string with a default value.
func parseIntQuery(r *http.Request, key string, def int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

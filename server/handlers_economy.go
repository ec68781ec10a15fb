package server

import (
	"log/slog"
	"net/http"

	"github.com/onnwee/chat-thief/economy"
)

type userView struct {
	economy.User
	Commands []string `json:"commands"`
}

// HandleUser returns a user's balances and owned commands.
func (h *Handlers) HandleUser(w http.ResponseWriter, r *http.Request) {
	ledger := h.deps.Economy.Ledger()
	name := pathName(r)
	u, ok, err := ledger.FindUser(r.Context(), name)
	if err != nil {
		h.storeError(w, r, err)
		return
	}
	if !ok {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}
	owned, err := ledger.CommandsOwnedBy(r.Context(), name)
	if err != nil {
		h.storeError(w, r, err)
		return
	}
	if owned == nil {
		owned = []string{}
	}
	writeJSON(w, http.StatusOK, userView{User: u, Commands: owned})
}

// HandleCommands lists every command.
func (h *Handlers) HandleCommands(w http.ResponseWriter, r *http.Request) {
	cmds, err := h.deps.Economy.Ledger().Commands(r.Context())
	if err != nil {
		h.storeError(w, r, err)
		return
	}
	if cmds == nil {
		cmds = []economy.Command{}
	}
	writeJSON(w, http.StatusOK, cmds)
}

// HandleCommand returns one command.
func (h *Handlers) HandleCommand(w http.ResponseWriter, r *http.Request) {
	c, ok, err := h.deps.Economy.Ledger().FindCommand(r.Context(), pathName(r))
	if err != nil {
		h.storeError(w, r, err)
		return
	}
	if !ok {
		http.Error(w, "command not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// HandleLeaderboard lists the richest users. ?limit= caps the list (default 10).
func (h *Handlers) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	users, err := h.deps.Economy.Ranked(r.Context())
	if err != nil {
		h.storeError(w, r, err)
		return
	}
	limit := parseIntQuery(r, "limit", 10)
	if limit > 0 && len(users) > limit {
		users = users[:limit]
	}
	if users == nil {
		users = []economy.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *Handlers) storeError(w http.ResponseWriter, r *http.Request, err error) {
	loggerFor(r).Error("store request failed", slog.String("path", r.URL.Path), slog.Any("err", err))
	http.Error(w, "store unavailable", http.StatusServiceUnavailable)
}

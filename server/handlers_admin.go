package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/onnwee/chat-thief/chat"
	"github.com/onnwee/chat-thief/telemetry"
)

// HandleAdminPlays lists queued sound effect plays, oldest first.
func (h *Handlers) HandleAdminPlays(w http.ResponseWriter, r *http.Request) {
	plays, err := h.deps.Plays.Pending(r.Context())
	if err != nil {
		h.storeError(w, r, err)
		return
	}
	if plays == nil {
		plays = []chat.PlayRequest{}
	}
	writeJSON(w, http.StatusOK, plays)
}

// HandleAdminAckPlay removes a play the audio player has handled.
func (h *Handlers) HandleAdminAckPlay(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Plays.Ack(r.Context(), r.PathValue("id")); err != nil {
		h.storeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type chatLineRequest struct {
	User string `json:"user"`
	Text string `json:"text"`
}

// HandleAdminChat routes a chat line as if user had typed it and returns the
// reply lines instead of saying them.
func (h *Handlers) HandleAdminChat(w http.ResponseWriter, r *http.Request) {
	var body chatLineRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&body); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(body.User) == "" || strings.TrimSpace(body.Text) == "" {
		http.Error(w, "user and text are required", http.StatusBadRequest)
		return
	}
	lines, err := h.deps.Lines.HandleChatLine(r.Context(), body.User, body.Text)
	if err != nil {
		h.storeError(w, r, err)
		return
	}
	if lines == nil {
		lines = []string{}
	}
	loggerFor(r).Info("admin chat line", slog.String("user", body.User), slog.Int("replies", len(lines)))
	writeJSON(w, http.StatusOK, map[string]any{"lines": lines})
}

func loggerFor(r *http.Request) *slog.Logger {
	return telemetry.LoggerWithCorr(r.Context()).With(slog.String("component", "http"))
}

package chat

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/onnwee/chat-thief/docstore"
)

// TablePlayRequests holds sound effect plays waiting for the audio player.
const TablePlayRequests = "play_requests"

// PlayRequest is one queued sound effect play.
type PlayRequest struct {
	ID          string `json:"id"`
	User        string `json:"user"`
	Command     string `json:"command"`
	RequestedAt int64  `json:"requested_at"`
}

// PlayQueue implements economy.Player over the document store.
type PlayQueue struct {
	store docstore.Store
	now   func() time.Time
}

func NewPlayQueue(store docstore.Store) *PlayQueue {
	return &PlayQueue{store: store, now: time.Now}
}

// Enqueue stores a play request under a fresh id.
func (q *PlayQueue) Enqueue(ctx context.Context, user, command string) error {
	req := PlayRequest{ID: uuid.NewString(), User: user, Command: command, RequestedAt: q.now().UnixNano()}
	if err := docstore.PutFrom(ctx, q.store, TablePlayRequests, req.ID, req); err != nil {
		return fmt.Errorf("queue play %s: %w", command, err)
	}
	return nil
}

// Pending lists queued plays, oldest first.
func (q *PlayQueue) Pending(ctx context.Context) ([]PlayRequest, error) {
	keys, err := q.store.Keys(ctx, TablePlayRequests)
	if err != nil {
		return nil, fmt.Errorf("list plays: %w", err)
	}
	out := make([]PlayRequest, 0, len(keys))
	for _, k := range keys {
		var req PlayRequest
		if err := docstore.GetInto(ctx, q.store, TablePlayRequests, k, &req); err != nil {
			if errors.Is(err, docstore.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("load play %s: %w", k, err)
		}
		out = append(out, req)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].RequestedAt != out[j].RequestedAt {
			return out[i].RequestedAt < out[j].RequestedAt
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Ack removes a play once the player has handled it. Unknown ids are ignored.
func (q *PlayQueue) Ack(ctx context.Context, id string) error {
	if err := q.store.Delete(ctx, TablePlayRequests, id); err != nil {
		return fmt.Errorf("ack play %s: %w", id, err)
	}
	return nil
}

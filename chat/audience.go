package chat

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/onnwee/chat-thief/docstore"
	"github.com/onnwee/chat-thief/telemetry"
)

// TableChatters holds one document per user seen in chat.
const TableChatters = "chatters"

// DefaultAudienceWindow is how long a chatter stays eligible for random picks.
const DefaultAudienceWindow = 2 * time.Hour

type chatter struct {
	Name     string `json:"name"`
	LastSeen int64  `json:"last_seen"`
}

// Audience tracks who has spoken recently. It implements draw.AudiencePool.
type Audience struct {
	store  docstore.Store
	window time.Duration
	now    func() time.Time
}

// NewAudience returns an Audience over store. A non-positive window uses
// DefaultAudienceWindow.
func NewAudience(store docstore.Store, window time.Duration) *Audience {
	if window <= 0 {
		window = DefaultAudienceWindow
	}
	return &Audience{store: store, window: window, now: time.Now}
}

// Seen marks user as active now.
func (a *Audience) Seen(ctx context.Context, user string) error {
	user = strings.ToLower(strings.TrimSpace(user))
	if user == "" {
		return nil
	}
	c := chatter{Name: user, LastSeen: a.now().Unix()}
	if err := docstore.PutFrom(ctx, a.store, TableChatters, user, c); err != nil {
		return fmt.Errorf("record chatter %s: %w", user, err)
	}
	return nil
}

// RecentActiveUsers lists users seen within the window, sorted.
func (a *Audience) RecentActiveUsers(ctx context.Context) ([]string, error) {
	keys, err := a.store.Keys(ctx, TableChatters)
	if err != nil {
		return nil, fmt.Errorf("list chatters: %w", err)
	}
	cutoff := a.now().Add(-a.window).Unix()
	users := make([]string, 0, len(keys))
	for _, k := range keys {
		var c chatter
		if err := docstore.GetInto(ctx, a.store, TableChatters, k, &c); err != nil {
			if errors.Is(err, docstore.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("load chatter %s: %w", k, err)
		}
		if c.LastSeen >= cutoff {
			users = append(users, k)
		}
	}
	sort.Strings(users)
	telemetry.SetAudienceSize(len(users))
	return users, nil
}

// Prune deletes chatters that fell out of the window and reports how many.
func (a *Audience) Prune(ctx context.Context) (int, error) {
	keys, err := a.store.Keys(ctx, TableChatters)
	if err != nil {
		return 0, fmt.Errorf("list chatters: %w", err)
	}
	cutoff := a.now().Add(-a.window).Unix()
	removed := 0
	for _, k := range keys {
		var c chatter
		if err := docstore.GetInto(ctx, a.store, TableChatters, k, &c); err != nil {
			if errors.Is(err, docstore.ErrNotFound) {
				continue
			}
			return removed, fmt.Errorf("load chatter %s: %w", k, err)
		}
		if c.LastSeen < cutoff {
			if err := a.store.Delete(ctx, TableChatters, k); err != nil {
				return removed, fmt.Errorf("prune chatter %s: %w", k, err)
			}
			removed++
		}
	}
	return removed, nil
}

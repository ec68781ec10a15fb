package economy

import (
	"context"
	"fmt"

	"github.com/onnwee/chat-thief/telemetry"
)

// CanPlay reports whether user may play command right now.
func (e *Economy) CanPlay(ctx context.Context, user, command string) (bool, error) {
	user, command = normalizeName(user), normalizeName(command)
	c, ok, err := e.ledger.FindCommand(ctx, command)
	if err != nil || !ok {
		return false, err
	}
	if !c.PlayableBy(user) || !c.Active() || c.Muted() {
		return false, nil
	}
	u, ok, err := e.ledger.FindUser(ctx, user)
	if err != nil {
		return false, err
	}
	if ok && !u.Active() {
		return false, nil
	}
	return true, nil
}

// Play queues command for user when allowed. It never produces chat lines.
func (e *Economy) Play(ctx context.Context, user, command string) (Result, error) {
	ok, err := e.CanPlay(ctx, user, command)
	if err != nil {
		return Result{}, err
	}
	if !ok {
		return fail(Rejected), nil
	}
	if e.player != nil {
		if err := e.player.Enqueue(ctx, normalizeName(user), normalizeName(command)); err != nil {
			return Result{}, fmt.Errorf("enqueue play: %w", err)
		}
	}
	telemetry.Inc(telemetry.PlayRequests)
	return succeed(), nil
}

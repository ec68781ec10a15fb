package economy

import (
	"context"
	"slices"
	"sync"
	"testing"

	"github.com/onnwee/chat-thief/docstore"
	"github.com/onnwee/chat-thief/draw"
	"github.com/onnwee/chat-thief/testutil"
)

type fixedPool []string

func (f fixedPool) RecentActiveUsers(context.Context) ([]string, error) { return f, nil }

type recordingPlayer struct {
	mu    sync.Mutex
	plays []string
}

func (p *recordingPlayer) Enqueue(_ context.Context, user, command string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.plays = append(p.plays, user+":"+command)
	return nil
}

type fixture struct {
	eco    *Economy
	ledger *Ledger
	rand   *testutil.SeqRand
	player *recordingPlayer
}

func newFixture(t *testing.T, audience ...string) *fixture {
	t.Helper()
	r := &testutil.SeqRand{}
	ledger := NewLedger(docstore.NewMemory(), 3)
	player := &recordingPlayer{}
	picker := &draw.Picker{Rand: r, Pool: fixedPool(audience), Invalid: []string{"nightbot"}}
	return &fixture{
		eco:    New(ledger, picker, DefaultPolicy(), player),
		ledger: ledger,
		rand:   r,
		player: player,
	}
}

func (f *fixture) user(t *testing.T, name string) User {
	t.Helper()
	u, err := f.ledger.User(context.Background(), name)
	if err != nil {
		t.Fatalf("User(%s): %v", name, err)
	}
	return u
}

func (f *fixture) setUser(t *testing.T, name string, fn func(*User)) {
	t.Helper()
	if _, err := f.ledger.UpdateUser(context.Background(), name, func(u *User) error {
		fn(u)
		return nil
	}); err != nil {
		t.Fatalf("UpdateUser(%s): %v", name, err)
	}
}

func (f *fixture) command(t *testing.T, name string) Command {
	t.Helper()
	c, err := f.ledger.Command(context.Background(), name)
	if err != nil {
		t.Fatalf("Command(%s): %v", name, err)
	}
	return c
}

func (f *fixture) own(t *testing.T, command string, users ...string) {
	t.Helper()
	for _, u := range users {
		if _, err := f.ledger.Allow(context.Background(), command, u); err != nil {
			t.Fatalf("Allow(%s, %s): %v", command, u, err)
		}
	}
}

func (f *fixture) owns(t *testing.T, user, command string) bool {
	t.Helper()
	owned, err := f.ledger.CommandsOwnedBy(context.Background(), user)
	if err != nil {
		t.Fatalf("CommandsOwnedBy(%s): %v", user, err)
	}
	return slices.Contains(owned, command)
}

func wantLines(t *testing.T, res Result, want ...string) {
	t.Helper()
	if !slices.Equal(res.Lines, want) {
		t.Errorf("lines = %q, want %q", res.Lines, want)
	}
}

func wantOutcome(t *testing.T, res Result, want Outcome) {
	t.Helper()
	if res.Outcome != want {
		t.Errorf("outcome = %v, want %v (lines %q)", res.Outcome, want, res.Lines)
	}
}

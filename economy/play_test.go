package economy

import (
	"context"
	"slices"
	"testing"
)

func TestPlay(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.own(t, "clap", "uzi")
	f.command(t, "artmattdank")
	f.command(t, "damn")

	tests := []struct {
		user, command string
		queued        bool
	}{
		{"uzi", "clap", true},
		{"future", "clap", false},
		{"artmattdank", "artmattdank", true},
		{"beginbot", "artmattdank", false},
		{"uzi", "damn", false},
		{"uzi", "ghost", false},
	}
	for _, tt := range tests {
		res, err := f.eco.Play(ctx, tt.user, tt.command)
		if err != nil {
			t.Fatalf("Play(%s, %s): %v", tt.user, tt.command, err)
		}
		if len(res.Lines) != 0 {
			t.Errorf("Play produced chat lines: %q", res.Lines)
		}
		queued := slices.Contains(f.player.plays, tt.user+":"+tt.command)
		if queued != tt.queued {
			t.Errorf("Play(%s, %s) queued = %v, want %v", tt.user, tt.command, queued, tt.queued)
		}
	}
}

func TestPlayBlockedWhenMutedOrSilenced(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.own(t, "clap", "uzi")
	_, _ = f.eco.Detract(ctx, "future", "clap")
	if ok, _ := f.eco.CanPlay(ctx, "uzi", "clap"); ok {
		t.Error("muted command playable")
	}
	_, _ = f.eco.Support(ctx, "future", "clap")
	if ok, _ := f.eco.CanPlay(ctx, "uzi", "clap"); !ok {
		t.Error("supported command not playable")
	}
	f.setUser(t, "uzi", func(u *User) { u.Status = UserBanned })
	if ok, _ := f.eco.CanPlay(ctx, "uzi", "clap"); ok {
		t.Error("banned user can play")
	}
}

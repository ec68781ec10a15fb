package economy

import (
	"context"
	"fmt"
	"testing"
)

func registerUsers(t *testing.T, f *fixture, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		f.user(t, fmt.Sprintf("user%02d", i))
	}
}

func TestVoteOverwrites(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	res, err := f.eco.Vote(ctx, "uzi", "Peace")
	if err != nil {
		t.Fatal(err)
	}
	wantLines(t, res, "Thank you for your vote @uzi")
	if _, err := f.eco.Vote(ctx, "uzi", "revolution"); err != nil {
		t.Fatal(err)
	}
	peace, revolution, err := f.eco.Tally(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if peace != 0 || revolution != 1 {
		t.Errorf("tally = %d/%d, want 0/1", peace, revolution)
	}

	res, _ = f.eco.Vote(ctx, "uzi", "chaos")
	wantOutcome(t, res, ParseError)
}

func TestCoupUndecided(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	registerUsers(t, f, 16)

	res, err := f.eco.Coup(ctx, "uzi")
	if err != nil {
		t.Fatal(err)
	}
	wantLines(t, res, "The Will of the People have not chosen: 2 votes must be cast for either Peace or Revolution")

	_, _ = f.eco.Vote(ctx, "user00", "peace")
	_, _ = f.eco.Vote(ctx, "user01", "revolution")
	res, _ = f.eco.Coup(ctx, "uzi")
	wantOutcome(t, res, Rejected)
}

func TestCoupNoopPolicy(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	registerUsers(t, f, 8)
	f.setUser(t, "uzi", func(u *User) { u.CoolPoints = 15 })
	f.own(t, "clap", "user00")
	_, _ = f.eco.Vote(ctx, "user00", "peace")
	_, _ = f.eco.Vote(ctx, "user01", "revolution")
	_, _ = f.eco.Vote(ctx, "user02", "revolution")

	res, err := f.eco.Coup(ctx, "uzi")
	if err != nil {
		t.Fatal(err)
	}
	wantLines(t, res, "@uzi triggered a Coup! The People have chosen REVOLUTION")
	if cp := f.user(t, "uzi").CoolPoints; cp != 5 {
		t.Errorf("trigger cool points = %d, want 5", cp)
	}
	if !f.owns(t, "user00", "clap") {
		t.Error("noop policy moved a command")
	}
	votes, _ := f.eco.Votes(ctx)
	if len(votes) != 0 {
		t.Errorf("votes not reset: %v", votes)
	}
}

func TestCoupStripPolicy(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.eco.policy.Revolution = StripRevolution{}
	registerUsers(t, f, 8)
	f.setUser(t, "uzi", func(u *User) { u.CoolPoints = 10 })
	f.own(t, "clap", "user00")
	_, _ = f.eco.Vote(ctx, "user00", "peace")
	_, _ = f.eco.Vote(ctx, "user01", "revolution")
	_, _ = f.eco.Vote(ctx, "user02", "revolution")

	res, err := f.eco.Coup(ctx, "uzi")
	if err != nil {
		t.Fatal(err)
	}
	wantLines(t, res,
		"@uzi triggered a Coup! The People have chosen REVOLUTION",
		"@user01 was gifted !clap",
	)
	if f.owns(t, "user00", "clap") || !f.owns(t, "user01", "clap") {
		t.Error("strip policy did not move clap to a winner")
	}
}

func TestCoupTriggerCannotPay(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	registerUsers(t, f, 8)
	f.setUser(t, "uzi", func(u *User) {
		u.CoolPoints = 3
		u.StreetCred = 7
	})
	_, _ = f.eco.Vote(ctx, "user01", "revolution")

	res, err := f.eco.Coup(ctx, "uzi")
	if err != nil {
		t.Fatal(err)
	}
	wantOutcome(t, res, InsufficientFunds)
	u := f.user(t, "uzi")
	if u.CoolPoints != 0 || u.StreetCred != 0 {
		t.Errorf("trigger not bankrupted: %+v", u)
	}
	if votes, _ := f.eco.Votes(ctx); len(votes) != 1 {
		t.Errorf("votes reset on a failed coup: %v", votes)
	}
}

func TestParseRevolutionPolicy(t *testing.T) {
	for in, want := range map[string]string{"": "noop", "noop": "noop", "STRIP": "strip"} {
		p, err := ParseRevolutionPolicy(in)
		if err != nil || p.Name() != want {
			t.Errorf("ParseRevolutionPolicy(%q) = %v, %v", in, p, err)
		}
	}
	if _, err := ParseRevolutionPolicy("chaos"); err == nil {
		t.Error("expected error for unknown policy")
	}
}

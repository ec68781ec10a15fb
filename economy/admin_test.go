package economy

import (
	"context"
	"fmt"
	"testing"

	"github.com/onnwee/chat-thief/parse"
)

func TestSilenceAndRevive(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.command(t, "clap")

	res, err := f.eco.Silence(ctx, parse.Resolve("beginbot", []string{"!clap"}, parse.Options{}))
	if err != nil {
		t.Fatal(err)
	}
	wantLines(t, res, "!clap has been silenced")
	if f.command(t, "clap").Active() {
		t.Error("clap still active")
	}

	res, _ = f.eco.Silence(ctx, parse.Resolve("beginbot", []string{"@uzi"}, parse.Options{}))
	wantLines(t, res, "@uzi has been silenced")
	if f.user(t, "uzi").Active() {
		t.Error("uzi still active")
	}

	_, _ = f.eco.Revive(ctx, parse.Resolve("beginbot", []string{"!clap"}, parse.Options{}))
	_, _ = f.eco.Revive(ctx, parse.Resolve("beginbot", []string{"@uzi"}, parse.Options{}))
	if !f.command(t, "clap").Active() || !f.user(t, "uzi").Active() {
		t.Error("revive did not reactivate")
	}

	res, _ = f.eco.Silence(ctx, parse.Resolve("beginbot", []string{"!ghost"}, parse.Options{}))
	wantOutcome(t, res, Rejected)
}

func TestDoOver(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.setUser(t, "uzi", func(u *User) {
		u.CoolPoints = 50
		u.StreetCred = 5
	})
	f.own(t, "clap", "uzi", "future")

	res, err := f.eco.DoOver(ctx)
	if err != nil {
		t.Fatal(err)
	}
	wantLines(t, res, "Society now must rebuild")
	u := f.user(t, "uzi")
	if u.CoolPoints != 0 || u.StreetCred != 0 {
		t.Errorf("uzi not bankrupt: %+v", u)
	}
	if owners := f.command(t, "clap").PermittedUsers; len(owners) != 0 {
		t.Errorf("clap still owned by %v", owners)
	}
}

func TestPaperup(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	if _, err := f.eco.Paperup(ctx, parse.Named("uzi"), 0, false); err != nil {
		t.Fatal(err)
	}
	if u := f.user(t, "uzi"); u.CoolPoints != 100 || u.StreetCred != 100 {
		t.Errorf("uzi = %+v, want 100/100", u)
	}
	if _, err := f.eco.Paperup(ctx, parse.Named("uzi"), 5, true); err != nil {
		t.Fatal(err)
	}
	if u := f.user(t, "uzi"); u.CoolPoints != 105 {
		t.Errorf("cool points = %d, want 105", u.CoolPoints)
	}
	res, _ := f.eco.Paperup(ctx, parse.TargetSpec{}, 0, false)
	wantOutcome(t, res, ParseError)
}

func TestDropeffect(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "wheezy")
	f.command(t, "clap")
	f.command(t, "damn")

	res, err := f.eco.Dropeffect(ctx, parse.Resolve("beginbot", []string{"@uzi", "!damn"}, parse.Options{}))
	if err != nil {
		t.Fatal(err)
	}
	wantLines(t, res, "@uzi now has access to Sound Effect: !damn")

	res, err = f.eco.Dropeffect(ctx, parse.Resolve("beginbot", []string{"2"}, parse.Options{}))
	if err != nil {
		t.Fatal(err)
	}
	wantLines(t, res,
		"@wheezy now has access to Sound Effect: !clap",
		"@wheezy now has access to Sound Effect: !damn",
	)
}

func TestDropeffectLiteralTargetsDropOnce(t *testing.T) {
	f := newFixture(t)
	f.command(t, "damn")

	res, err := f.eco.Dropeffect(context.Background(), parse.Resolve("beginbot", []string{"@uzi", "!damn", "1000000000"}, parse.Options{}))
	if err != nil {
		t.Fatal(err)
	}
	wantLines(t, res, "@uzi now has access to Sound Effect: !damn")
}

func TestDropeffectIsCapped(t *testing.T) {
	audience := make([]string, 80)
	for i := range audience {
		audience[i] = fmt.Sprintf("viewer%02d", i)
	}
	f := newFixture(t, audience...)
	f.command(t, "clap")

	res, err := f.eco.Dropeffect(context.Background(), parse.Resolve("beginbot", []string{"!clap", "1000000000"}, parse.Options{}))
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Lines) != DefaultMaxDrops {
		t.Errorf("dropped %d times, want %d", len(res.Lines), DefaultMaxDrops)
	}
}

func TestSetCost(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.command(t, "damn")
	res, err := f.eco.SetCost(ctx, parse.Named("damn"), 300, true)
	if err != nil {
		t.Fatal(err)
	}
	wantLines(t, res, "!damn now costs 300")
	if c := f.command(t, "damn").Cost; c != 300 {
		t.Errorf("cost = %d", c)
	}
	res, _ = f.eco.SetCost(ctx, parse.Named("damn"), 0, true)
	wantOutcome(t, res, Rejected)
}

package economy

import (
	"context"
	"testing"

	"github.com/onnwee/chat-thief/parse"
)

func TestGive(t *testing.T) {
	f := newFixture(t)
	f.own(t, "damn", "young.thug")

	res, err := f.eco.Give(context.Background(), "young.thug", parse.Named("uzi"), parse.Named("damn"))
	if err != nil {
		t.Fatal(err)
	}
	wantLines(t, res, "@uzi now has access to !damn", "@young.thug lost access to !damn")
	if !f.owns(t, "uzi", "damn") || f.owns(t, "young.thug", "damn") {
		t.Error("ownership did not move")
	}
}

func TestGiveNotOwned(t *testing.T) {
	f := newFixture(t)
	f.command(t, "damn")
	res, err := f.eco.Give(context.Background(), "young.thug", parse.Named("uzi"), parse.Named("damn"))
	if err != nil {
		t.Fatal(err)
	}
	wantOutcome(t, res, NotOwned)
	if f.owns(t, "uzi", "damn") {
		t.Error("uzi gained damn")
	}
}

func TestGiveToYourself(t *testing.T) {
	f := newFixture(t)
	f.own(t, "damn", "uzi")
	res, err := f.eco.Give(context.Background(), "uzi", parse.Named("uzi"), parse.Named("damn"))
	if err != nil {
		t.Fatal(err)
	}
	wantOutcome(t, res, Rejected)
	if !f.owns(t, "uzi", "damn") {
		t.Error("uzi lost damn")
	}
}

func TestGiveRandomReceiverSkipsOwners(t *testing.T) {
	f := newFixture(t, "future", "uzi", "wheezy", "young.thug")
	f.own(t, "damn", "young.thug", "future")

	res, err := f.eco.Give(context.Background(), "young.thug", parse.RandomSpec(), parse.RandomSpec())
	if err != nil {
		t.Fatal(err)
	}
	wantLines(t, res, "@uzi now has access to !damn", "@young.thug lost access to !damn")
}

func TestGiveMissingCommand(t *testing.T) {
	f := newFixture(t)
	res, err := f.eco.Give(context.Background(), "uzi", parse.Named("future"), parse.TargetSpec{})
	if err != nil {
		t.Fatal(err)
	}
	wantOutcome(t, res, ParseError)
}

func TestShare(t *testing.T) {
	f := newFixture(t)
	f.own(t, "damn", "young.thug")

	res, err := f.eco.Share(context.Background(), "young.thug", parse.Named("damn"), parse.Named("uzi"))
	if err != nil {
		t.Fatal(err)
	}
	wantLines(t, res, "young.thug shared @uzi now has access to !damn")
	if !f.owns(t, "uzi", "damn") || !f.owns(t, "young.thug", "damn") {
		t.Error("share must keep the sharer's access and add the friend")
	}
}

func TestShareNotOwned(t *testing.T) {
	f := newFixture(t)
	f.command(t, "damn")
	res, err := f.eco.Share(context.Background(), "young.thug", parse.Named("damn"), parse.Named("uzi"))
	if err != nil {
		t.Fatal(err)
	}
	wantOutcome(t, res, NotOwned)
}

func TestDonate(t *testing.T) {
	f := newFixture(t, "not_streamlord", "young.thug", "uzi")
	f.own(t, "clap", "uzi")

	res, err := f.eco.Donate(context.Background(), "uzi", parse.Named("young.thug"))
	if err != nil {
		t.Fatal(err)
	}
	wantLines(t, res, "@young.thug was gifted !clap")
	if !f.owns(t, "young.thug", "clap") || f.owns(t, "uzi", "clap") {
		t.Error("clap did not move to young.thug")
	}
}

func TestDonateRandomGroupsByRecipient(t *testing.T) {
	f := newFixture(t, "uzi", "wheezy")
	f.own(t, "clap", "uzi")
	f.own(t, "damn", "uzi")
	f.own(t, "handbag", "uzi", "wheezy")

	res, err := f.eco.Donate(context.Background(), "uzi", parse.TargetSpec{})
	if err != nil {
		t.Fatal(err)
	}
	// wheezy already owns handbag and is the only other chatter
	wantLines(t, res, "@wheezy was gifted !clap !damn")
	if !f.owns(t, "uzi", "handbag") {
		t.Error("handbag should stay with uzi when nobody can take it")
	}
}

func TestDonateNothing(t *testing.T) {
	f := newFixture(t, "wheezy")
	res, err := f.eco.Donate(context.Background(), "uzi", parse.TargetSpec{})
	if err != nil {
		t.Fatal(err)
	}
	wantOutcome(t, res, Rejected)
}

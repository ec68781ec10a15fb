package parse

import (
	"reflect"
	"testing"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		opts      Options
		user      TargetSpec
		command   TargetSpec
		amount    int
		hasAmount bool
		unparsed  []string
	}{
		{name: "user sigil", args: []string{"@ArtMattDank"}, user: Named("artmattdank")},
		{name: "command sigil", args: []string{"!Clap"}, command: Named("clap")},
		{name: "bare token is a command", args: []string{"clap"}, command: Named("clap")},
		{name: "bare token prefers user", args: []string{"wheezy"}, opts: Options{PreferUser: true}, user: Named("wheezy")},
		{name: "second bare token fills user", args: []string{"damn", "uzi"}, command: Named("damn"), user: Named("uzi")},
		{name: "second bare token fills command when preferring users", args: []string{"uzi", "damn"}, opts: Options{PreferUser: true}, user: Named("uzi"), command: Named("damn")},
		{name: "amount", args: []string{"@uzi", "5"}, user: Named("uzi"), amount: 5, hasAmount: true},
		{name: "second amount unparsed", args: []string{"3", "4"}, amount: 3, hasAmount: true, unparsed: []string{"4"}},
		{name: "random command", args: []string{"random", "3"}, command: RandomSpec(), amount: 3, hasAmount: true},
		{name: "random user when preferring users", args: []string{"RANDOM", "2"}, opts: Options{PreferUser: true}, user: RandomSpec(), amount: 2, hasAmount: true},
		{name: "random twice", args: []string{"random", "random"}, command: RandomSpec(), user: RandomSpec()},
		{name: "sigil random", args: []string{"@random"}, user: RandomSpec()},
		{name: "invalid characters", args: []string{"cl@p#"}, unparsed: []string{"cl@p#"}},
		{name: "all slots taken", args: []string{"a", "b", "c"}, command: Named("a"), user: Named("b"), unparsed: []string{"c"}},
		{name: "duplicate user sigil", args: []string{"@a", "@b"}, user: Named("a"), unparsed: []string{"@b"}},
		{name: "nothing", args: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve("requester", tt.args, tt.opts)
			if got.Requester != "requester" {
				t.Errorf("Requester = %q", got.Requester)
			}
			if got.User != tt.user {
				t.Errorf("User = %v, want %v", got.User, tt.user)
			}
			if got.Command != tt.command {
				t.Errorf("Command = %v, want %v", got.Command, tt.command)
			}
			if got.Amount != tt.amount || got.HasAmount != tt.hasAmount {
				t.Errorf("Amount = %d (%v), want %d (%v)", got.Amount, got.HasAmount, tt.amount, tt.hasAmount)
			}
			if !reflect.DeepEqual(got.Unparsed, tt.unparsed) {
				t.Errorf("Unparsed = %q, want %q", got.Unparsed, tt.unparsed)
			}
		})
	}
}

func TestPermsTargetIsCaseInsensitive(t *testing.T) {
	got := Resolve("fake_user", []string{"@ArtMattDank"}, Options{})
	if !got.User.IsLiteral() || got.User.Name != "artmattdank" {
		t.Fatalf("User = %v, want artmattdank", got.User)
	}
	if !got.Command.IsMissing() {
		t.Fatalf("Command = %v, want missing", got.Command)
	}
}

func TestTargetSpecString(t *testing.T) {
	if s := Named("clap").String(); s != "clap" {
		t.Errorf("Named.String() = %q", s)
	}
	if s := RandomSpec().String(); s != "random" {
		t.Errorf("Random.String() = %q", s)
	}
	if s := (TargetSpec{}).String(); s != "missing" {
		t.Errorf("Missing.String() = %q", s)
	}
}

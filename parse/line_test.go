package parse

import (
	"reflect"
	"testing"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name     string
		identity string
		text     string
		want     Message
		ok       bool
	}{
		{"bare login", "Uzi", "!buy clap", Message{User: "uzi", Command: "buy", Args: []string{"clap"}}, true},
		{"irc prefix", ":Young.Thug!young.thug@young.thug.tmi.twitch.tv", "!PROPS @Uzi 3", Message{User: "young.thug", Command: "props", Args: []string{"@Uzi", "3"}}, true},
		{"no args", "uzi", "!me", Message{User: "uzi", Command: "me", Args: []string{}}, true},
		{"extra whitespace", "uzi", "  !steal   !clap  @future ", Message{User: "uzi", Command: "steal", Args: []string{"!clap", "@future"}}, true},
		{"double bang", "uzi", "!!clap", Message{}, false},
		{"lone bang", "uzi", "! clap", Message{}, false},
		{"plain chat", "uzi", "hello chat", Message{}, false},
		{"empty", "uzi", "", Message{}, false},
		{"no identity", "", "!me", Message{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseLine(tt.identity, tt.text)
			if ok != tt.ok {
				t.Fatalf("ParseLine ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			if got.User != tt.want.User || got.Command != tt.want.Command {
				t.Errorf("ParseLine = %+v, want %+v", got, tt.want)
			}
			if len(got.Args) != len(tt.want.Args) || (len(got.Args) > 0 && !reflect.DeepEqual(got.Args, tt.want.Args)) {
				t.Errorf("Args = %q, want %q", got.Args, tt.want.Args)
			}
		})
	}
}

func TestLogin(t *testing.T) {
	cases := map[string]string{
		"beginbot":                "beginbot",
		":Nightbot!nightbot@x.tv": "nightbot",
		"  ArtMattDank  ":         "artmattdank",
		"uzi@uzi.tmi.twitch.tv":   "uzi",
	}
	for in, want := range cases {
		if got := Login(in); got != want {
			t.Errorf("Login(%q) = %q, want %q", in, got, want)
		}
	}
}

// Package parse turns raw chat lines into commands and resolves their
// arguments into user, command and amount targets.
package parse

import "strings"

// Message is one chat command: who sent it, the lowercased command name and
// the remaining whitespace separated arguments with their case preserved.
type Message struct {
	User    string
	Command string
	Args    []string
}

// ParseLine extracts a command from a chat line. identity is either a bare
// login or an IRC prefix such as ":nick!nick@nick.tmi.twitch.tv". It reports
// false when the text is not a command; that is never an error.
func ParseLine(identity, text string) (Message, bool) {
	user := Login(identity)
	if user == "" {
		return Message{}, false
	}
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return Message{}, false
	}
	head := fields[0]
	// "!!" is how chat escapes a bang, not a command
	if len(head) < 2 || head[0] != '!' || head[1] == '!' {
		return Message{}, false
	}
	return Message{
		User:    user,
		Command: strings.ToLower(head[1:]),
		Args:    fields[1:],
	}, true
}

// Login normalizes an IRC identity to a lowercase login name.
func Login(identity string) string {
	id := strings.TrimSpace(identity)
	id = strings.TrimPrefix(id, ":")
	if i := strings.IndexByte(id, '!'); i >= 0 {
		id = id[:i]
	}
	if i := strings.IndexByte(id, '@'); i >= 0 {
		id = id[:i]
	}
	return strings.ToLower(id)
}

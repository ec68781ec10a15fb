package router

import (
	"sort"
	"strings"
)

// Tier is a permission level. Higher tiers pass every lower tier check.
type Tier int

const (
	Viewer Tier = iota
	Lord
	God
)

func (t Tier) String() string {
	switch t {
	case Lord:
		return "lord"
	case God:
		return "god"
	default:
		return "viewer"
	}
}

// Tiers is the static stream lord and stream god configuration.
type Tiers struct {
	lords map[string]struct{}
	gods  map[string]struct{}
}

// NewTiers builds tiers from name lists. Gods are lords too.
func NewTiers(lords, gods []string) Tiers {
	t := Tiers{lords: make(map[string]struct{}), gods: make(map[string]struct{})}
	for _, g := range gods {
		if g = strings.ToLower(strings.TrimSpace(g)); g != "" {
			t.gods[g] = struct{}{}
			t.lords[g] = struct{}{}
		}
	}
	for _, l := range lords {
		if l = strings.ToLower(strings.TrimSpace(l)); l != "" {
			t.lords[l] = struct{}{}
		}
	}
	return t
}

// Of returns user's tier.
func (t Tiers) Of(user string) Tier {
	if _, ok := t.gods[user]; ok {
		return God
	}
	if _, ok := t.lords[user]; ok {
		return Lord
	}
	return Viewer
}

// Allows reports whether user meets the required tier.
func (t Tiers) Allows(user string, required Tier) bool { return t.Of(user) >= required }

// Lords lists every lord (gods included), sorted.
func (t Tiers) Lords() []string { return sortedKeys(t.lords) }

// Gods lists every god, sorted.
func (t Tiers) Gods() []string { return sortedKeys(t.gods) }

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

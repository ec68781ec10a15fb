package economy

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// RevolutionPolicy is what a decided coup does to the economy. votes maps each
// voter to their choice.
type RevolutionPolicy interface {
	Name() string
	Apply(ctx context.Context, e *Economy, winner string, votes map[string]string) ([]string, error)
}

// ParseRevolutionPolicy maps a config value to a policy.
func ParseRevolutionPolicy(name string) (RevolutionPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "noop", "none":
		return NoopRevolution{}, nil
	case "strip":
		return StripRevolution{}, nil
	default:
		return nil, fmt.Errorf("unknown revolution policy %q", name)
	}
}

// NoopRevolution announces the result and changes nothing.
type NoopRevolution struct{}

func (NoopRevolution) Name() string { return "noop" }

func (NoopRevolution) Apply(context.Context, *Economy, string, map[string]string) ([]string, error) {
	return nil, nil
}

// StripRevolution moves every command owned by a losing voter to a random
// winning voter who does not own it yet.
type StripRevolution struct{}

func (StripRevolution) Name() string { return "strip" }

func (StripRevolution) Apply(ctx context.Context, e *Economy, winner string, votes map[string]string) ([]string, error) {
	var winners, losers []string
	for voter, choice := range votes {
		if choice == winner {
			winners = append(winners, voter)
		} else {
			losers = append(losers, voter)
		}
	}
	sort.Strings(winners)
	sort.Strings(losers)

	var g gifts
	for _, loser := range losers {
		owned, err := e.ledger.CommandsOwnedBy(ctx, loser)
		if err != nil {
			return nil, err
		}
		for _, name := range owned {
			c, _, err := e.ledger.FindCommand(ctx, name)
			if err != nil {
				return nil, err
			}
			to, ok, err := e.pick(ctx, winners, c.PermittedUsers, e.notBanned(nil))
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			if _, err := e.ledger.UpdateCommand(ctx, name, func(c *Command) error {
				c.PermittedUsers, _ = addMember(c.PermittedUsers, to)
				c.PermittedUsers, _ = removeMember(c.PermittedUsers, loser)
				return nil
			}); err != nil {
				return nil, err
			}
			g.add(to, name)
		}
	}
	return g.lines(), nil
}

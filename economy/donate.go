package economy

import (
	"context"
	"fmt"

	"github.com/onnwee/chat-thief/parse"
)

// Donate gives away every command user owns. Each goes to target when target
// is a literal user who does not already own it, otherwise to a random
// audience member who does not own it. Commands nobody can take are kept.
func (e *Economy) Donate(ctx context.Context, user string, target parse.TargetSpec) (Result, error) {
	user = normalizeName(user)
	if res, stop, err := e.refuseBanned(ctx, user); stop {
		return res, err
	}
	owned, err := e.ledger.CommandsOwnedBy(ctx, user)
	if err != nil {
		return Result{}, err
	}
	if len(owned) == 0 {
		return fail(Rejected, fmt.Sprintf("@%s has nothing to donate", user)), nil
	}

	var g gifts
	for _, name := range owned {
		c, ok, err := e.ledger.FindCommand(ctx, name)
		if err != nil {
			return Result{}, err
		}
		if !ok {
			continue
		}
		to := ""
		if target.IsLiteral() {
			if t := normalizeName(target.Name); t != user && !c.Allows(t) {
				to = t
			}
		}
		if to == "" {
			exclude := append([]string{user}, c.PermittedUsers...)
			picked, ok, err := e.pickUser(ctx, exclude, nil)
			if err != nil {
				return Result{}, err
			}
			if !ok {
				continue
			}
			to = picked
		}
		if _, err := e.ledger.UpdateCommand(ctx, name, func(c *Command) error {
			c.PermittedUsers, _ = addMember(c.PermittedUsers, to)
			c.PermittedUsers, _ = removeMember(c.PermittedUsers, user)
			return nil
		}); err != nil {
			return Result{}, err
		}
		g.add(to, name)
	}
	lines := g.lines()
	if len(lines) == 0 {
		return fail(NoEligibleCandidate, fmt.Sprintf("@%s couldn't find anyone to donate to", user)), nil
	}
	return succeed(lines...), nil
}

package economy

import (
	"context"
	"fmt"

	"github.com/onnwee/chat-thief/parse"
	"github.com/onnwee/chat-thief/telemetry"
)

// Steal tries to take sfx from victim. Random or missing targets are drawn:
// the victim from the audience (never the thief, and only users who own the
// wanted command or anything at all), the command from the victim's commands.
func (e *Economy) Steal(ctx context.Context, thief string, victim, sfx parse.TargetSpec) (Result, error) {
	thief = normalizeName(thief)
	if res, stop, err := e.refuseBanned(ctx, thief); stop {
		return res, err
	}

	victimName := victim.Name
	if !victim.IsLiteral() {
		accept := func(ctx context.Context, candidate string) (bool, error) {
			if sfx.IsLiteral() {
				c, ok, err := e.ledger.FindCommand(ctx, sfx.Name)
				return ok && c.Allows(candidate), err
			}
			owned, err := e.ledger.CommandsOwnedBy(ctx, candidate)
			return len(owned) > 0, err
		}
		name, ok, err := e.pickUser(ctx, []string{thief}, accept)
		if err != nil {
			return Result{}, err
		}
		if !ok {
			return fail(NoEligibleCandidate, fmt.Sprintf("@%s couldn't find anyone to steal from", thief)), nil
		}
		victimName = name
	}

	sfxName := sfx.Name
	if !sfx.IsLiteral() {
		owned, err := e.ledger.CommandsOwnedBy(ctx, victimName)
		if err != nil {
			return Result{}, err
		}
		name, ok, err := e.pick(ctx, owned, nil, nil)
		if err != nil {
			return Result{}, err
		}
		if !ok {
			return fail(NoEligibleCandidate, fmt.Sprintf("@%s has nothing for @%s to steal", victimName, thief)), nil
		}
		sfxName = name
	}

	return e.steal(ctx, thief, normalizeName(victimName), normalizeName(sfxName))
}

func (e *Economy) steal(ctx context.Context, thief, victim, sfx string) (Result, error) {
	if thief == victim {
		return fail(Rejected, fmt.Sprintf("You can't steal from yourself @%s", thief)), nil
	}
	c, ok, err := e.ledger.FindCommand(ctx, sfx)
	if err != nil {
		return Result{}, err
	}
	if !ok || !c.Allows(victim) {
		telemetry.IncSteal("not_owned")
		return fail(NotOwned, fmt.Sprintf("@%s failed to steal !%s from @%s", thief, sfx, victim)), nil
	}
	if c.Allows(thief) {
		return fail(Rejected, fmt.Sprintf("@%s already has access to !%s", thief, sfx)), nil
	}

	t, err := e.ledger.User(ctx, thief)
	if err != nil {
		return Result{}, err
	}
	if t.Mana <= 0 {
		telemetry.IncSteal("no_mana")
		return fail(InsufficientFunds, fmt.Sprintf("@%s has no Mana to steal from @%s", thief, victim)), nil
	}
	v, err := e.ledger.User(ctx, victim)
	if err != nil {
		return Result{}, err
	}

	odds := e.policy.StealCatchOdds
	if v.CoolPoints > t.CoolPoints {
		odds -= e.policy.RichVictimDiscount
	}
	if odds < 0 {
		odds = 0
	}

	if e.rand.Float64() < odds {
		if _, err := e.ledger.UpdateUser(ctx, thief, func(u *User) error {
			u.Mana = 0
			u.Notoriety++
			return nil
		}); err != nil {
			return Result{}, err
		}
		telemetry.IncSteal("caught")
		return succeed(fmt.Sprintf("@%s WAS CAUGHT STEALING! The Odds: %.1f%%", thief, odds*100)), nil
	}

	if _, err := e.ledger.UpdateUser(ctx, thief, func(u *User) error {
		u.Mana -= e.policy.StealManaCost
		if u.Mana < 0 {
			u.Mana = 0
		}
		return nil
	}); err != nil {
		return Result{}, err
	}
	if _, err := e.ledger.UpdateCommand(ctx, sfx, func(c *Command) error {
		c.PermittedUsers, _ = addMember(c.PermittedUsers, thief)
		c.PermittedUsers, _ = removeMember(c.PermittedUsers, victim)
		c.Cost *= 2
		return nil
	}); err != nil {
		return Result{}, err
	}
	telemetry.IncSteal("success")
	return succeed(fmt.Sprintf("@%s stole !%s from @%s", thief, sfx, victim)), nil
}

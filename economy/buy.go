package economy

import (
	"context"
	"errors"
	"fmt"

	"github.com/onnwee/chat-thief/parse"
	"github.com/onnwee/chat-thief/telemetry"
)

// Buy spends cool points on a command. A Random or Missing target buys count
// random affordable commands, re-checking funds before every purchase and
// stopping as soon as nothing affordable is left.
func (e *Economy) Buy(ctx context.Context, user string, target parse.TargetSpec, count int) (Result, error) {
	user = normalizeName(user)
	if res, stop, err := e.refuseBanned(ctx, user); stop {
		return res, err
	}
	if target.IsLiteral() {
		bought, res, err := e.buyOne(ctx, user, target.Name)
		if err != nil || !bought {
			return res, err
		}
		return succeed(fmt.Sprintf("@%s bought 1 SFXs: !%s", user, target.Name)), nil
	}

	if count < 1 {
		count = 1
	}
	var bought []string
	last := fail(NoEligibleCandidate, fmt.Sprintf("@%s there is nothing left to buy", user))
	for i := 0; i < count; i++ {
		u, err := e.ledger.User(ctx, user)
		if err != nil {
			return Result{}, err
		}
		cmds, err := e.ledger.Commands(ctx)
		if err != nil {
			return Result{}, err
		}
		var affordable []string
		unowned := 0
		for _, c := range cmds {
			if c.Allows(user) || !c.Active() {
				continue
			}
			unowned++
			if c.Cost <= u.CoolPoints {
				affordable = append(affordable, c.Name)
			}
		}
		if len(affordable) == 0 {
			if unowned > 0 {
				last = fail(InsufficientFunds, fmt.Sprintf("@%s BROKE BOI! Nothing costs %d Cool Points or less", user, u.CoolPoints))
			}
			break
		}
		name, ok, err := e.pick(ctx, affordable, nil, nil)
		if err != nil {
			return Result{}, err
		}
		if !ok {
			break
		}
		ok, res, err := e.buyOne(ctx, user, name)
		if err != nil {
			return Result{}, err
		}
		if !ok {
			last = res
			break
		}
		bought = append(bought, name)
	}
	if len(bought) == 0 {
		return last, nil
	}
	return succeed(fmt.Sprintf("@%s bought %d SFXs: %s", user, len(bought), commandList(bought))), nil
}

// buyOne purchases a single named command. It reports false with the failure
// Result when the purchase was refused.
func (e *Economy) buyOne(ctx context.Context, user, name string) (bool, Result, error) {
	name = normalizeName(name)
	c, ok, err := e.ledger.FindCommand(ctx, name)
	if err != nil {
		return false, Result{}, err
	}
	if !ok {
		return false, fail(Rejected, fmt.Sprintf("@%s !%s is not a real command", user, name)), nil
	}
	if !c.Active() {
		return false, fail(Rejected, fmt.Sprintf("@%s !%s has been silenced", user, name)), nil
	}
	if c.Allows(user) {
		return false, fail(Rejected, fmt.Sprintf("@%s already has access to !%s", user, name)), nil
	}

	cost := c.Cost
	_, err = e.ledger.UpdateUser(ctx, user, func(u *User) error {
		if u.CoolPoints < cost {
			return errInsufficient
		}
		u.CoolPoints -= cost
		return nil
	})
	if errors.Is(err, errInsufficient) {
		u, err := e.ledger.User(ctx, user)
		if err != nil {
			return false, Result{}, err
		}
		return false, fail(InsufficientFunds, fmt.Sprintf("@%s BROKE BOI! !%s costs %d Cool Points, you have %d", user, name, cost, u.CoolPoints)), nil
	}
	if err != nil {
		return false, Result{}, err
	}

	if _, err := e.ledger.UpdateCommand(ctx, name, func(c *Command) error {
		c.PermittedUsers, _ = addMember(c.PermittedUsers, user)
		c.Purchases++
		c.Cost++
		return nil
	}); err != nil {
		return false, Result{}, err
	}
	telemetry.Inc(telemetry.Purchases)
	return true, Result{}, nil
}

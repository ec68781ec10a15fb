package economy

import (
	"context"
	"fmt"

	"github.com/onnwee/chat-thief/parse"
)

// Silence bans a user or silences a command.
func (e *Economy) Silence(ctx context.Context, t parse.Targets) (Result, error) {
	switch {
	case t.Command.IsLiteral():
		name := normalizeName(t.Command.Name)
		if _, ok, err := e.ledger.FindCommand(ctx, name); err != nil || !ok {
			if err != nil {
				return Result{}, err
			}
			return fail(Rejected, fmt.Sprintf("Could not find !%s", name)), nil
		}
		if _, err := e.ledger.UpdateCommand(ctx, name, func(c *Command) error {
			c.Status = CommandSilenced
			return nil
		}); err != nil {
			return Result{}, err
		}
		return succeed(fmt.Sprintf("!%s has been silenced", name)), nil
	case t.User.IsLiteral():
		name := normalizeName(t.User.Name)
		if _, err := e.ledger.UpdateUser(ctx, name, func(u *User) error {
			u.Status = UserBanned
			return nil
		}); err != nil {
			return Result{}, err
		}
		return succeed(fmt.Sprintf("@%s has been silenced", name)), nil
	default:
		return fail(ParseError), nil
	}
}

// Revive reactivates a user or a command; a revived command is created when
// it does not exist yet.
func (e *Economy) Revive(ctx context.Context, t parse.Targets) (Result, error) {
	switch {
	case t.Command.IsLiteral():
		name := normalizeName(t.Command.Name)
		if _, err := e.ledger.UpdateCommand(ctx, name, func(c *Command) error {
			c.Status = CommandActive
			return nil
		}); err != nil {
			return Result{}, err
		}
		return succeed(fmt.Sprintf("!%s has been revived", name)), nil
	case t.User.IsLiteral():
		name := normalizeName(t.User.Name)
		if _, err := e.ledger.UpdateUser(ctx, name, func(u *User) error {
			u.Status = UserActive
			return nil
		}); err != nil {
			return Result{}, err
		}
		return succeed(fmt.Sprintf("@%s has been revived", name)), nil
	default:
		return fail(ParseError), nil
	}
}

// DoOver bankrupts every user and clears every command's owners.
func (e *Economy) DoOver(ctx context.Context) (Result, error) {
	users, err := e.ledger.UserNames(ctx)
	if err != nil {
		return Result{}, err
	}
	for _, name := range users {
		if _, err := e.ledger.UpdateUser(ctx, name, func(u *User) error {
			u.CoolPoints = 0
			u.StreetCred = 0
			return nil
		}); err != nil {
			return Result{}, err
		}
	}
	cmds, err := e.ledger.CommandNames(ctx)
	if err != nil {
		return Result{}, err
	}
	for _, name := range cmds {
		if _, err := e.ledger.UpdateCommand(ctx, name, func(c *Command) error {
			c.PermittedUsers = nil
			return nil
		}); err != nil {
			return Result{}, err
		}
	}
	return succeed("Society now must rebuild"), nil
}

// Paperup grants cool points and street cred to a user. amount defaults to
// the policy's PaperupAmount.
func (e *Economy) Paperup(ctx context.Context, target parse.TargetSpec, amount int, hasAmount bool) (Result, error) {
	if !target.IsLiteral() {
		return fail(ParseError, "Who are we papering up? !paperup @user"), nil
	}
	if !hasAmount {
		amount = e.policy.PaperupAmount
	}
	name := normalizeName(target.Name)
	if _, err := e.ledger.UpdateUser(ctx, name, func(u *User) error {
		u.CoolPoints += amount
		u.StreetCred += amount
		return nil
	}); err != nil {
		return Result{}, err
	}
	return succeed(fmt.Sprintf("@%s has been Papered Up: +%d Cool Points +%d Street Cred", name, amount, amount)), nil
}

// Dropeffect airdrops commands. A missing or random user is drawn from the
// audience members who lack a literal command, and a missing or random command
// from those that user lacks.
// amount repeats the drop, up to Policy.MaxDrops. A drop with both targets
// literal happens at most once.
func (e *Economy) Dropeffect(ctx context.Context, t parse.Targets) (Result, error) {
	n := 1
	if t.HasAmount && t.Amount > 0 {
		n = t.Amount
	}
	if t.User.IsLiteral() && t.Command.IsLiteral() {
		n = 1
	}
	limit := e.policy.MaxDrops
	if limit <= 0 {
		limit = DefaultMaxDrops
	}
	n = min(n, limit)

	var lines []string
	for i := 0; i < n; i++ {
		user := normalizeName(t.User.Name)
		if !t.User.IsLiteral() {
			var owners []string
			if t.Command.IsLiteral() {
				c, _, err := e.ledger.FindCommand(ctx, t.Command.Name)
				if err != nil {
					return Result{}, err
				}
				owners = c.PermittedUsers
			}
			picked, ok, err := e.pickUser(ctx, owners, nil)
			if err != nil {
				return Result{}, err
			}
			if !ok {
				break
			}
			user = picked
		}

		cmd := normalizeName(t.Command.Name)
		if !t.Command.IsLiteral() {
			names, err := e.ledger.CommandNames(ctx)
			if err != nil {
				return Result{}, err
			}
			accept := func(ctx context.Context, name string) (bool, error) {
				c, ok, err := e.ledger.FindCommand(ctx, name)
				return ok && c.Active() && !c.Allows(user) && name != user, err
			}
			picked, ok, err := e.pick(ctx, names, nil, accept)
			if err != nil {
				return Result{}, err
			}
			if !ok {
				break
			}
			cmd = picked
		}

		changed, err := e.ledger.Allow(ctx, cmd, user)
		if err != nil {
			return Result{}, err
		}
		if _, err := e.ledger.User(ctx, user); err != nil {
			return Result{}, err
		}
		if changed {
			lines = append(lines, fmt.Sprintf("@%s now has access to Sound Effect: !%s", user, cmd))
		}
	}
	if len(lines) == 0 {
		return fail(NoEligibleCandidate, "Nothing to drop"), nil
	}
	return succeed(lines...), nil
}

// DropReward airdrops one random command to one random audience member.
func (e *Economy) DropReward(ctx context.Context) (Result, error) {
	return e.Dropeffect(ctx, parse.Targets{User: parse.RandomSpec(), Command: parse.RandomSpec()})
}

// SetCost overrides a command's cost.
func (e *Economy) SetCost(ctx context.Context, command parse.TargetSpec, cost int, hasCost bool) (Result, error) {
	if !command.IsLiteral() || !hasCost {
		return fail(ParseError, "Usage: !set_cost !command AMOUNT"), nil
	}
	if cost < 1 {
		return fail(Rejected, "Cost must be at least 1"), nil
	}
	name := normalizeName(command.Name)
	if _, ok, err := e.ledger.FindCommand(ctx, name); err != nil || !ok {
		if err != nil {
			return Result{}, err
		}
		return fail(Rejected, fmt.Sprintf("Could not find !%s", name)), nil
	}
	if _, err := e.ledger.UpdateCommand(ctx, name, func(c *Command) error {
		c.Cost = cost
		return nil
	}); err != nil {
		return Result{}, err
	}
	return succeed(fmt.Sprintf("!%s now costs %d", name, cost)), nil
}

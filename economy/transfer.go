package economy

import (
	"context"
	"fmt"

	"github.com/onnwee/chat-thief/parse"
)

// resolveOwnedCommand turns a command spec into one of user's commands.
func (e *Economy) resolveOwnedCommand(ctx context.Context, user string, spec parse.TargetSpec) (string, bool, error) {
	switch spec.Kind {
	case parse.Literal:
		return normalizeName(spec.Name), true, nil
	case parse.Random:
		owned, err := e.ledger.CommandsOwnedBy(ctx, user)
		if err != nil {
			return "", false, err
		}
		return e.pick(ctx, owned, nil, nil)
	default:
		return "", false, nil
	}
}

// resolveRecipient turns a user spec into a recipient. Random or missing
// specs draw from the audience, skipping user and the command's owners.
func (e *Economy) resolveRecipient(ctx context.Context, user, command string, spec parse.TargetSpec) (string, bool, error) {
	if spec.IsLiteral() {
		return normalizeName(spec.Name), true, nil
	}
	c, _, err := e.ledger.FindCommand(ctx, command)
	if err != nil {
		return "", false, err
	}
	exclude := append([]string{user}, c.PermittedUsers...)
	return e.pickUser(ctx, exclude, nil)
}

// Give moves giver's access to a command to receiver at no cost.
func (e *Economy) Give(ctx context.Context, giver string, receiver, command parse.TargetSpec) (Result, error) {
	giver = normalizeName(giver)
	if res, stop, err := e.refuseBanned(ctx, giver); stop {
		return res, err
	}
	cmd, ok, err := e.resolveOwnedCommand(ctx, giver, command)
	if err != nil {
		return Result{}, err
	}
	if !ok {
		if command.IsRandom() {
			return fail(NoEligibleCandidate, fmt.Sprintf("@%s has no commands to give", giver)), nil
		}
		return fail(ParseError, fmt.Sprintf("Error Giving - Command: %s | User: %s", command, receiver)), nil
	}
	to, ok, err := e.resolveRecipient(ctx, giver, cmd, receiver)
	if err != nil {
		return Result{}, err
	}
	if !ok {
		return fail(NoEligibleCandidate, fmt.Sprintf("@%s found nobody to give !%s to", giver, cmd)), nil
	}
	if to == giver {
		return fail(Rejected, fmt.Sprintf("@%s you can't give !%s to yourself", giver, cmd)), nil
	}

	c, found, err := e.ledger.FindCommand(ctx, cmd)
	if err != nil {
		return Result{}, err
	}
	if !found || !c.Allows(giver) {
		return fail(NotOwned, fmt.Sprintf("@%s does not own !%s", giver, cmd)), nil
	}
	if c.Allows(to) {
		return fail(Rejected, fmt.Sprintf("@%s already has access to !%s", to, cmd)), nil
	}

	if _, err := e.ledger.UpdateCommand(ctx, cmd, func(c *Command) error {
		c.PermittedUsers, _ = addMember(c.PermittedUsers, to)
		c.PermittedUsers, _ = removeMember(c.PermittedUsers, giver)
		return nil
	}); err != nil {
		return Result{}, err
	}
	if _, err := e.ledger.User(ctx, to); err != nil {
		return Result{}, err
	}
	return succeed(
		fmt.Sprintf("@%s now has access to !%s", to, cmd),
		fmt.Sprintf("@%s lost access to !%s", giver, cmd),
	), nil
}

// Share grants friend access to one of user's commands; user keeps it.
func (e *Economy) Share(ctx context.Context, user string, command, friend parse.TargetSpec) (Result, error) {
	user = normalizeName(user)
	if res, stop, err := e.refuseBanned(ctx, user); stop {
		return res, err
	}
	cmd, ok, err := e.resolveOwnedCommand(ctx, user, command)
	if err != nil {
		return Result{}, err
	}
	if !ok {
		if command.IsRandom() {
			return fail(NoEligibleCandidate, fmt.Sprintf("@%s has no commands to share", user)), nil
		}
		return fail(ParseError, fmt.Sprintf("Error Sharing - Command: %s | User: %s", command, friend)), nil
	}
	if friend.IsMissing() {
		return fail(ParseError, fmt.Sprintf("Error Sharing - Command: %s | User: %s", cmd, friend)), nil
	}
	to, ok, err := e.resolveRecipient(ctx, user, cmd, friend)
	if err != nil {
		return Result{}, err
	}
	if !ok {
		return fail(NoEligibleCandidate, fmt.Sprintf("@%s found nobody to share !%s with", user, cmd)), nil
	}

	c, found, err := e.ledger.FindCommand(ctx, cmd)
	if err != nil {
		return Result{}, err
	}
	if !found || !c.Allows(user) {
		return fail(NotOwned, fmt.Sprintf("@%s does not own !%s", user, cmd)), nil
	}
	if c.Allows(to) {
		return fail(Rejected, fmt.Sprintf("@%s already has access to !%s", to, cmd)), nil
	}
	if _, err := e.ledger.Allow(ctx, cmd, to); err != nil {
		return Result{}, err
	}
	if _, err := e.ledger.User(ctx, to); err != nil {
		return Result{}, err
	}
	return succeed(fmt.Sprintf("%s shared @%s now has access to !%s", user, to, cmd)), nil
}

package economy

import (
	"context"
	"errors"
	"fmt"

	"github.com/onnwee/chat-thief/draw"
	"github.com/onnwee/chat-thief/parse"
)

// Props moves street cred from user to target as cool points. A Random target
// with an amount is batch mode: amount distinct random users get 1 each.
func (e *Economy) Props(ctx context.Context, user string, target parse.TargetSpec, amount int, hasAmount bool) (Result, error) {
	user = normalizeName(user)
	if res, stop, err := e.refuseBanned(ctx, user); stop {
		return res, err
	}

	if target.IsRandom() && hasAmount {
		return e.propsBatch(ctx, user, amount)
	}
	if !hasAmount {
		amount = 1
	}

	to := normalizeName(target.Name)
	if !target.IsLiteral() {
		picked, ok, err := e.pickUser(ctx, []string{user}, nil)
		if err != nil {
			return Result{}, err
		}
		if !ok {
			return fail(NoEligibleCandidate, fmt.Sprintf("@%s found nobody to give props to", user)), nil
		}
		to = picked
	}
	if to == user {
		return fail(Rejected, fmt.Sprintf("You can't props yourself @%s", user)), nil
	}
	if banned, err := e.Banned(ctx, to); err != nil {
		return Result{}, err
	} else if banned {
		return fail(Rejected, fmt.Sprintf("@%s is banned and can't take props", to)), nil
	}
	if amount < 1 {
		return fail(Rejected, fmt.Sprintf("@%s props must be at least 1 Street Cred", user)), nil
	}

	res, err := e.transferCred(ctx, user, to, amount)
	if err != nil || !res.OK() {
		return res, err
	}
	return succeed(fmt.Sprintf("@%s gave %d Street Cred to @%s", user, amount, to)), nil
}

func (e *Economy) propsBatch(ctx context.Context, user string, n int) (Result, error) {
	if n < 1 {
		return fail(Rejected, fmt.Sprintf("@%s props must be at least 1 Street Cred", user)), nil
	}
	targets, err := e.picker.PickUsers(ctx, n, []string{user}, e.notBanned(nil))
	if err != nil {
		if errors.Is(err, draw.ErrNoEligibleCandidate) {
			return fail(NoEligibleCandidate, fmt.Sprintf("@%s found nobody to give props to", user)), nil
		}
		return Result{}, fmt.Errorf("pick users: %w", err)
	}
	var given []string
	last := Result{}
	for _, to := range targets {
		res, err := e.transferCred(ctx, user, to, 1)
		if err != nil {
			return Result{}, err
		}
		if !res.OK() {
			last = res
			break
		}
		given = append(given, to)
	}
	if len(given) == 0 {
		return last, nil
	}
	return succeed(fmt.Sprintf("@%s gave 1 Street Cred to %s each", user, userList(given))), nil
}

// transferCred debits from's street cred and credits to's cool points.
func (e *Economy) transferCred(ctx context.Context, from, to string, amount int) (Result, error) {
	_, err := e.ledger.UpdateUser(ctx, from, func(u *User) error {
		if u.StreetCred < amount {
			return errInsufficient
		}
		u.StreetCred -= amount
		return nil
	})
	if errors.Is(err, errInsufficient) {
		return fail(InsufficientFunds, fmt.Sprintf("@%s doesn't have %d Street Cred to give", from, amount)), nil
	}
	if err != nil {
		return Result{}, err
	}
	if _, err := e.ledger.AddCoolPoints(ctx, to, amount); err != nil {
		return Result{}, err
	}
	return succeed(), nil
}

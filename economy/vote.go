package economy

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/onnwee/chat-thief/docstore"
)

// Vote choices.
const (
	Peace      = "peace"
	Revolution = "revolution"
)

type voteDoc struct {
	Choice  string `json:"choice"`
	VotedAt int64  `json:"voted_at"`
}

// Vote records user's stance; a later vote replaces an earlier one.
func (e *Economy) Vote(ctx context.Context, user, choice string) (Result, error) {
	user = normalizeName(user)
	if res, stop, err := e.refuseBanned(ctx, user); stop {
		return res, err
	}
	choice = strings.ToLower(strings.TrimSpace(choice))
	if choice != Peace && choice != Revolution {
		return fail(ParseError, fmt.Sprintf("@%s you can only vote for peace or revolution", user)), nil
	}
	if err := docstore.PutFrom(ctx, e.ledger.store, TableVotes, user, voteDoc{Choice: choice, VotedAt: time.Now().Unix()}); err != nil {
		return Result{}, fmt.Errorf("save vote: %w", err)
	}
	return succeed(fmt.Sprintf("Thank you for your vote @%s", user)), nil
}

// Votes returns every current vote keyed by user.
func (e *Economy) Votes(ctx context.Context) (map[string]string, error) {
	keys, err := e.ledger.store.Keys(ctx, TableVotes)
	if err != nil {
		return nil, fmt.Errorf("list votes: %w", err)
	}
	votes := make(map[string]string, len(keys))
	for _, k := range keys {
		var v voteDoc
		err := docstore.GetInto(ctx, e.ledger.store, TableVotes, k, &v)
		if errors.Is(err, docstore.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load vote %s: %w", k, err)
		}
		votes[k] = v.Choice
	}
	return votes, nil
}

// Tally counts the current votes per choice.
func (e *Economy) Tally(ctx context.Context) (peace, revolution int, err error) {
	votes, err := e.Votes(ctx)
	if err != nil {
		return 0, 0, err
	}
	for _, choice := range votes {
		switch choice {
		case Peace:
			peace++
		case Revolution:
			revolution++
		}
	}
	return peace, revolution, nil
}

// CoupThreshold is the number of votes a side needs: a floored eighth of all
// registered users.
func (e *Economy) CoupThreshold(ctx context.Context) (int, error) {
	users, err := e.ledger.UserNames(ctx)
	if err != nil {
		return 0, err
	}
	return len(users) / 8, nil
}

// Coup resolves the vote. Below the threshold or on a tie nothing happens.
// Otherwise user pays CoupCost (or is bankrupted and the coup is called off),
// the revolution policy runs for the winning side, and the votes are reset.
func (e *Economy) Coup(ctx context.Context, user string) (Result, error) {
	user = normalizeName(user)
	if res, stop, err := e.refuseBanned(ctx, user); stop {
		return res, err
	}
	threshold, err := e.CoupThreshold(ctx)
	if err != nil {
		return Result{}, err
	}
	votes, err := e.Votes(ctx)
	if err != nil {
		return Result{}, err
	}
	peace, revolution := 0, 0
	for _, c := range votes {
		switch c {
		case Peace:
			peace++
		case Revolution:
			revolution++
		}
	}
	if peace+revolution < threshold || peace == revolution {
		return fail(Rejected, fmt.Sprintf("The Will of the People have not chosen: %d votes must be cast for either Peace or Revolution", threshold)), nil
	}
	winner := Peace
	if revolution > peace {
		winner = Revolution
	}

	cost := e.policy.CoupCost
	_, err = e.ledger.UpdateUser(ctx, user, func(u *User) error {
		if u.CoolPoints < cost {
			return errInsufficient
		}
		u.CoolPoints -= cost
		return nil
	})
	if errors.Is(err, errInsufficient) {
		if _, err := e.ledger.UpdateUser(ctx, user, func(u *User) error {
			u.CoolPoints = 0
			u.StreetCred = 0
			return nil
		}); err != nil {
			return Result{}, err
		}
		return fail(InsufficientFunds, fmt.Sprintf("@%s couldn't afford the %d Cool Points to trigger a Coup and lost all their Cool Points and Street Cred", user, cost)), nil
	}
	if err != nil {
		return Result{}, err
	}

	lines := []string{fmt.Sprintf("@%s triggered a Coup! The People have chosen %s", user, strings.ToUpper(winner))}
	effect, err := e.policy.Revolution.Apply(ctx, e, winner, votes)
	if err != nil {
		return Result{}, fmt.Errorf("%s policy: %w", e.policy.Revolution.Name(), err)
	}
	lines = append(lines, effect...)

	for voter := range votes {
		if err := e.ledger.store.Delete(ctx, TableVotes, voter); err != nil {
			return Result{}, fmt.Errorf("reset vote %s: %w", voter, err)
		}
	}
	return succeed(lines...), nil
}

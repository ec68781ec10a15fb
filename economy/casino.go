package economy

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/onnwee/chat-thief/docstore"
)

const casinoStateKey = "state"

// CubeBet is one guess of how long the cube solve takes.
type CubeBet struct {
	Name     string `json:"name"`
	Duration int    `json:"duration"`
	PlacedAt int64  `json:"placed_at"`
}

type casinoState struct {
	Solving bool `json:"solving"`
}

// Solving reports whether a solve is in progress.
func (e *Economy) Solving(ctx context.Context) (bool, error) {
	var st casinoState
	err := docstore.GetInto(ctx, e.ledger.store, TableCasino, casinoStateKey, &st)
	if errors.Is(err, docstore.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load casino state: %w", err)
	}
	return st.Solving, nil
}

func (e *Economy) setSolving(ctx context.Context, solving bool) error {
	if err := docstore.PutFrom(ctx, e.ledger.store, TableCasino, casinoStateKey, casinoState{Solving: solving}); err != nil {
		return fmt.Errorf("save casino state: %w", err)
	}
	return nil
}

// Bet places or replaces user's guess.
func (e *Economy) Bet(ctx context.Context, user string, seconds int, hasSeconds bool) (Result, error) {
	user = normalizeName(user)
	if res, stop, err := e.refuseBanned(ctx, user); stop {
		return res, err
	}
	solving, err := e.Solving(ctx)
	if err != nil {
		return Result{}, err
	}
	if solving {
		return fail(Rejected, "NO BETS WHILE BEGINBOT IS SOLVING"), nil
	}
	if !hasSeconds {
		return fail(ParseError, fmt.Sprintf("@%s bet how many seconds the solve takes: !bet 45", user)), nil
	}
	bet := CubeBet{Name: user, Duration: seconds, PlacedAt: time.Now().Unix()}
	if err := docstore.PutFrom(ctx, e.ledger.store, TableBets, user, bet); err != nil {
		return Result{}, fmt.Errorf("save bet: %w", err)
	}
	return succeed(fmt.Sprintf("Thank you for your bet: @%s: %ds", user, seconds)), nil
}

// AllBets lists the open bets sorted by bettor.
func (e *Economy) AllBets(ctx context.Context) ([]CubeBet, error) {
	keys, err := e.ledger.store.Keys(ctx, TableBets)
	if err != nil {
		return nil, fmt.Errorf("list bets: %w", err)
	}
	bets := make([]CubeBet, 0, len(keys))
	for _, k := range keys {
		var b CubeBet
		err := docstore.GetInto(ctx, e.ledger.store, TableBets, k, &b)
		if errors.Is(err, docstore.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load bet %s: %w", k, err)
		}
		if b.Name == "" {
			b.Name = k
		}
		bets = append(bets, b)
	}
	sort.Slice(bets, func(i, j int) bool { return bets[i].Name < bets[j].Name })
	return bets, nil
}

// Bets formats the open bets.
func (e *Economy) Bets(ctx context.Context) (Result, error) {
	bets, err := e.AllBets(ctx)
	if err != nil {
		return Result{}, err
	}
	if len(bets) == 0 {
		return succeed("No bets yet"), nil
	}
	parts := make([]string, len(bets))
	for i, b := range bets {
		parts[i] = fmt.Sprintf("@%s: %ds", b.Name, b.Duration)
	}
	return succeed(strings.Join(parts, " | ")), nil
}

// StartSolve closes betting.
func (e *Economy) StartSolve(ctx context.Context) (Result, error) {
	if err := e.setSolving(ctx, true); err != nil {
		return Result{}, err
	}
	return succeed("The cube is being solved! Betting is closed"), nil
}

// NewCube clears all bets and reopens betting.
func (e *Economy) NewCube(ctx context.Context) (Result, error) {
	if err := e.purgeBets(ctx); err != nil {
		return Result{}, err
	}
	if err := e.setSolving(ctx, false); err != nil {
		return Result{}, err
	}
	return succeed("New cube! Place your bets with !bet SECONDS"), nil
}

// Gamble settles the bets against the actual solve time. The closest guesses
// win CubeReward cool points each; ties all win. The pool is cleared and
// betting reopened whatever the outcome.
func (e *Economy) Gamble(ctx context.Context, actual int) (Result, error) {
	bets, err := e.AllBets(ctx)
	if err != nil {
		return Result{}, err
	}

	var winners []string
	best := -1
	for _, b := range bets {
		diff := b.Duration - actual
		if diff < 0 {
			diff = -diff
		}
		switch {
		case best < 0 || diff < best:
			best = diff
			winners = []string{b.Name}
		case diff == best:
			winners = append(winners, b.Name)
		}
	}
	for _, w := range winners {
		if _, err := e.ledger.AddCoolPoints(ctx, w, e.policy.CubeReward); err != nil {
			return Result{}, err
		}
	}

	if err := e.purgeBets(ctx); err != nil {
		return Result{}, err
	}
	if err := e.setSolving(ctx, false); err != nil {
		return Result{}, err
	}

	if len(winners) == 0 {
		return succeed(fmt.Sprintf("The cube took %ds. Nobody bet", actual)), nil
	}
	return succeed(fmt.Sprintf("The cube took %ds. Winners: %s won %d Cool Points each", actual, userList(winners), e.policy.CubeReward)), nil
}

func (e *Economy) purgeBets(ctx context.Context) error {
	keys, err := e.ledger.store.Keys(ctx, TableBets)
	if err != nil {
		return fmt.Errorf("list bets: %w", err)
	}
	for _, k := range keys {
		if err := e.ledger.store.Delete(ctx, TableBets, k); err != nil {
			return fmt.Errorf("purge bet %s: %w", k, err)
		}
	}
	return nil
}

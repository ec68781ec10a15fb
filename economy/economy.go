package economy

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/onnwee/chat-thief/draw"
)

// Policy holds the tunable constants of the economy.
type Policy struct {
	StartingMana       int
	StealCatchOdds     float64
	RichVictimDiscount float64
	StealManaCost      int
	CoupCost           int
	CubeReward         int
	PaperupAmount      int
	// MaxDrops caps how many drops one dropeffect may attempt.
	MaxDrops   int
	Revolution RevolutionPolicy
}

// DefaultMaxDrops bounds a single dropeffect when Policy.MaxDrops is unset.
const DefaultMaxDrops = 50

// DefaultPolicy returns the stock economy constants.
func DefaultPolicy() Policy {
	return Policy{
		StartingMana:       3,
		StealCatchOdds:     0.70,
		RichVictimDiscount: 0.10,
		StealManaCost:      1,
		CoupCost:           10,
		CubeReward:         10,
		PaperupAmount:      100,
		MaxDrops:           DefaultMaxDrops,
		Revolution:         NoopRevolution{},
	}
}

// Player queues an allowed sound effect play for the external audio player.
type Player interface {
	Enqueue(ctx context.Context, user, command string) error
}

// Economy runs the economic operations against a Ledger.
type Economy struct {
	ledger *Ledger
	picker *draw.Picker
	rand   draw.Rand
	policy Policy
	player Player
}

// New wires an Economy. picker.Rand also drives the steal odds; a nil player
// drops allowed plays.
func New(ledger *Ledger, picker *draw.Picker, policy Policy, player Player) *Economy {
	if picker == nil {
		picker = &draw.Picker{}
	}
	r := picker.Rand
	if r == nil {
		r = draw.Default()
		picker.Rand = r
	}
	if policy.Revolution == nil {
		policy.Revolution = NoopRevolution{}
	}
	return &Economy{ledger: ledger, picker: picker, rand: r, policy: policy, player: player}
}

// Ledger returns the underlying ledger.
func (e *Economy) Ledger() *Ledger { return e.ledger }

// Policy returns the active policy.
func (e *Economy) Policy() Policy { return e.policy }

// Picker returns the random selection service.
func (e *Economy) Picker() *draw.Picker { return e.picker }

// Banned reports whether user is on the ledger with a banned status. Users the
// ledger has never seen are not banned.
func (e *Economy) Banned(ctx context.Context, user string) (bool, error) {
	u, ok, err := e.ledger.FindUser(ctx, user)
	if err != nil {
		return false, err
	}
	return ok && !u.Active(), nil
}

// refuseBanned stops an operation started by a banned user. The refusal is
// silent: stop is true with an empty Rejected result.
func (e *Economy) refuseBanned(ctx context.Context, user string) (res Result, stop bool, err error) {
	banned, err := e.Banned(ctx, user)
	if err != nil {
		return Result{}, true, err
	}
	if banned {
		return Result{Outcome: Rejected}, true, nil
	}
	return Result{}, false, nil
}

// notBanned wraps accept so banned users never qualify as a random pick.
func (e *Economy) notBanned(accept draw.AcceptFunc) draw.AcceptFunc {
	return func(ctx context.Context, name string) (bool, error) {
		banned, err := e.Banned(ctx, name)
		if err != nil || banned {
			return false, err
		}
		if accept == nil {
			return true, nil
		}
		return accept(ctx, name)
	}
}

// pickUser draws a random audience member who is not banned; ok is false when
// nobody qualified.
func (e *Economy) pickUser(ctx context.Context, exclude []string, accept draw.AcceptFunc) (string, bool, error) {
	u, err := e.picker.PickUser(ctx, exclude, e.notBanned(accept))
	if errors.Is(err, draw.ErrNoEligibleCandidate) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("pick user: %w", err)
	}
	return u, true, nil
}

// pick draws one of candidates; ok is false when nothing qualified.
func (e *Economy) pick(ctx context.Context, candidates, exclude []string, accept draw.AcceptFunc) (string, bool, error) {
	c, err := e.picker.Pick(ctx, candidates, exclude, accept)
	if errors.Is(err, draw.ErrNoEligibleCandidate) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("pick: %w", err)
	}
	return c, true, nil
}

func commandList(names []string) string {
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = "!" + n
	}
	return strings.Join(parts, " ")
}

func userList(names []string) string {
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = "@" + n
	}
	return strings.Join(parts, " ")
}

// gifts collects commands per recipient in first-seen order.
type gifts struct {
	order []string
	byTo  map[string][]string
}

func (g *gifts) add(to, command string) {
	if g.byTo == nil {
		g.byTo = make(map[string][]string)
	}
	if _, ok := g.byTo[to]; !ok {
		g.order = append(g.order, to)
	}
	g.byTo[to] = append(g.byTo[to], command)
}

func (g *gifts) lines() []string {
	out := make([]string, 0, len(g.order))
	for _, to := range g.order {
		out = append(out, fmt.Sprintf("@%s was gifted %s", to, commandList(g.byTo[to])))
	}
	return out
}

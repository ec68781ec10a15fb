// Package draw picks random users and commands for "random" targets.
//
// Selection is bounded: a Picker visits eligible candidates in random order
// and gives up after MaxAttempts rejected accept checks.
package draw

import (
	"context"
	"errors"
	"sort"
)

// DefaultMaxAttempts bounds rejected accept checks when Picker.MaxAttempts is
// zero.
const DefaultMaxAttempts = 25

// ErrNoEligibleCandidate is returned when no candidate passed the checks.
var ErrNoEligibleCandidate = errors.New("draw: no eligible candidate")

// AudiencePool supplies the users eligible for random user selection.
type AudiencePool interface {
	RecentActiveUsers(ctx context.Context) ([]string, error)
}

// AcceptFunc decides whether a candidate is eligible. A nil AcceptFunc accepts
// everything.
type AcceptFunc func(ctx context.Context, candidate string) (bool, error)

// Picker selects uniformly among candidates, skipping Invalid identities and a
// per-call exclude list.
type Picker struct {
	Rand        Rand
	Pool        AudiencePool
	Invalid     []string
	MaxAttempts int
}

// PickUser draws one user from the audience pool.
func (p *Picker) PickUser(ctx context.Context, exclude []string, accept AcceptFunc) (string, error) {
	picked, err := p.PickUsers(ctx, 1, exclude, accept)
	if err != nil {
		return "", err
	}
	return picked[0], nil
}

// PickUsers draws up to n distinct users from the audience pool. It fails only
// when none qualify.
func (p *Picker) PickUsers(ctx context.Context, n int, exclude []string, accept AcceptFunc) ([]string, error) {
	if p.Pool == nil {
		return nil, ErrNoEligibleCandidate
	}
	users, err := p.Pool.RecentActiveUsers(ctx)
	if err != nil {
		return nil, err
	}
	return p.PickN(ctx, users, n, exclude, accept)
}

// Pick draws one candidate.
func (p *Picker) Pick(ctx context.Context, candidates, exclude []string, accept AcceptFunc) (string, error) {
	picked, err := p.PickN(ctx, candidates, 1, exclude, accept)
	if err != nil {
		return "", err
	}
	return picked[0], nil
}

// PickN draws up to n distinct candidates.
func (p *Picker) PickN(ctx context.Context, candidates []string, n int, exclude []string, accept AcceptFunc) ([]string, error) {
	if n <= 0 {
		return nil, ErrNoEligibleCandidate
	}
	pool := p.eligible(candidates, exclude)
	r := p.Rand
	if r == nil {
		r = Default()
	}
	budget := p.MaxAttempts
	if budget <= 0 {
		budget = DefaultMaxAttempts
	}

	var picked []string
	// partial Fisher-Yates: each step moves a uniformly chosen unvisited
	// candidate into position i
	for i := 0; i < len(pool) && len(picked) < n && budget > 0; i++ {
		j := i + r.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
		candidate := pool[i]
		if accept != nil {
			ok, err := accept(ctx, candidate)
			if err != nil {
				return nil, err
			}
			if !ok {
				// only rejections spend the budget
				budget--
				continue
			}
		}
		picked = append(picked, candidate)
	}
	if len(picked) == 0 {
		return nil, ErrNoEligibleCandidate
	}
	return picked, nil
}

// eligible returns the sorted, de-duplicated candidates minus invalid and
// excluded names. Sorting keeps draws reproducible under a seeded Rand.
func (p *Picker) eligible(candidates, exclude []string) []string {
	skip := make(map[string]struct{}, len(p.Invalid)+len(exclude))
	for _, name := range p.Invalid {
		skip[name] = struct{}{}
	}
	for _, name := range exclude {
		skip[name] = struct{}{}
	}
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if _, ok := skip[c]; ok {
			continue
		}
		skip[c] = struct{}{}
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

package economy

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/onnwee/chat-thief/parse"
)

const boardSize = 5

// Stats is the one line summary of a user.
func (u User) Stats() string {
	s := fmt.Sprintf("@%s - Mana: %d | Street Cred: %d | Cool Points: %d | Notoriety: %d", u.Name, u.Mana, u.StreetCred, u.CoolPoints, u.Notoriety)
	if u.RideOrDie != "" {
		s += " | Ride or Die: @" + u.RideOrDie
	}
	return s
}

// Me describes user and the commands they own.
func (e *Economy) Me(ctx context.Context, user string) (Result, error) {
	u, err := e.ledger.User(ctx, user)
	if err != nil {
		return Result{}, err
	}
	owned, err := e.ledger.CommandsOwnedBy(ctx, u.Name)
	if err != nil {
		return Result{}, err
	}
	if len(owned) == 0 {
		return succeed(u.Stats()), nil
	}
	return succeed(u.Stats() + " | " + commandList(owned)), nil
}

// Perms describes a command, or the commands of a user (the requester when no
// target was given). Tokens that resolved to nothing are an error reply.
func (e *Economy) Perms(ctx context.Context, t parse.Targets) (Result, error) {
	if t.Command.IsMissing() && t.User.IsMissing() && len(t.Unparsed) > 0 {
		return fail(ParseError, "Could not find user or command: "+strings.Join(t.Unparsed, " ")), nil
	}
	if t.Command.IsLiteral() {
		name := normalizeName(t.Command.Name)
		c, ok, err := e.ledger.FindCommand(ctx, name)
		if err != nil {
			return Result{}, err
		}
		if !ok {
			c = newCommand(name)
		}
		line := fmt.Sprintf("!%s | Cost: %d | Health: %d | Like Ratio %.0f%%", c.Name, c.Cost, c.Health(), c.LikeRatio())
		if len(c.PermittedUsers) > 0 {
			line += " | " + userList(c.PermittedUsers)
		}
		return succeed(line), nil
	}
	who := t.Requester
	if t.User.IsLiteral() {
		who = t.User.Name
	}
	who = normalizeName(who)
	owned, err := e.ledger.CommandsOwnedBy(ctx, who)
	if err != nil {
		return Result{}, err
	}
	if len(owned) == 0 {
		return succeed(fmt.Sprintf("@%s has no commands", who)), nil
	}
	return succeed(fmt.Sprintf("@%s: %s", who, commandList(owned))), nil
}

// MarketCap is the total cool points held by all users.
func (e *Economy) MarketCap(ctx context.Context) (int, error) {
	users, err := e.ledger.Users(ctx)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, u := range users {
		total += u.CoolPoints
	}
	return total, nil
}

// Market reports the total cool points in circulation.
func (e *Economy) Market(ctx context.Context) (Result, error) {
	total, err := e.MarketCap(ctx)
	if err != nil {
		return Result{}, err
	}
	return succeed(fmt.Sprintf("Total Cool Points in Market: %d", total)), nil
}

// MostPopular lists the commands with the most owners.
func (e *Economy) MostPopular(ctx context.Context) (Result, error) {
	cmds, err := e.ledger.Commands(ctx)
	if err != nil {
		return Result{}, err
	}
	sort.SliceStable(cmds, func(i, j int) bool {
		return len(cmds[i].PermittedUsers) > len(cmds[j].PermittedUsers)
	})
	var parts []string
	for _, c := range cmds {
		if len(parts) == boardSize || len(c.PermittedUsers) == 0 {
			break
		}
		parts = append(parts, fmt.Sprintf("!%s: %d", c.Name, len(c.PermittedUsers)))
	}
	if len(parts) == 0 {
		return succeed("Nobody owns anything yet"), nil
	}
	return succeed(strings.Join(parts, " | ")), nil
}

// Ranked returns users ordered by cool points, richest first, ties by name.
func (e *Economy) Ranked(ctx context.Context) ([]User, error) {
	users, err := e.ledger.Users(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(users, func(i, j int) bool {
		if users[i].CoolPoints != users[j].CoolPoints {
			return users[i].CoolPoints > users[j].CoolPoints
		}
		return users[i].Name < users[j].Name
	})
	return users, nil
}

// Leaderboard lists the richest users.
func (e *Economy) Leaderboard(ctx context.Context) (Result, error) {
	users, err := e.Ranked(ctx)
	if err != nil {
		return Result{}, err
	}
	if len(users) > boardSize {
		users = users[:boardSize]
	}
	return succeed(board(users)), nil
}

// Loserboard lists the poorest users, poorest first.
func (e *Economy) Loserboard(ctx context.Context) (Result, error) {
	users, err := e.Ranked(ctx)
	if err != nil {
		return Result{}, err
	}
	out := make([]User, 0, boardSize)
	for i := len(users) - 1; i >= 0 && len(out) < boardSize; i-- {
		out = append(out, users[i])
	}
	return succeed(board(out)), nil
}

func board(users []User) string {
	if len(users) == 0 {
		return "Nobody here yet"
	}
	parts := make([]string, len(users))
	for i, u := range users {
		parts[i] = fmt.Sprintf("%d. @%s: %d", i+1, u.Name, u.CoolPoints)
	}
	return strings.Join(parts, " | ")
}

// Facts summarizes the catalog.
func (e *Economy) Facts(ctx context.Context) (Result, error) {
	cmds, err := e.ledger.Commands(ctx)
	if err != nil {
		return Result{}, err
	}
	available := 0
	for _, c := range cmds {
		if c.Active() && len(c.PermittedUsers) == 0 {
			available++
		}
	}
	return succeed(fmt.Sprintf("%d of %d sounds have no owner", available, len(cmds))), nil
}

// Support records user's like of a command and clears any dislike.
func (e *Economy) Support(ctx context.Context, user, command string) (Result, error) {
	return e.voteOnCommand(ctx, user, command, true)
}

// Detract records user's dislike of a command and clears any like.
func (e *Economy) Detract(ctx context.Context, user, command string) (Result, error) {
	return e.voteOnCommand(ctx, user, command, false)
}

func (e *Economy) voteOnCommand(ctx context.Context, user, command string, support bool) (Result, error) {
	user, command = normalizeName(user), normalizeName(command)
	if res, stop, err := e.refuseBanned(ctx, user); stop {
		return res, err
	}
	if _, ok, err := e.ledger.FindCommand(ctx, command); err != nil || !ok {
		if err != nil {
			return Result{}, err
		}
		return fail(Rejected, fmt.Sprintf("Could not find !%s", command)), nil
	}
	c, err := e.ledger.UpdateCommand(ctx, command, func(c *Command) error {
		if support {
			c.Supporters, _ = addMember(c.Supporters, user)
			c.Detractors, _ = removeMember(c.Detractors, user)
		} else {
			c.Detractors, _ = addMember(c.Detractors, user)
			c.Supporters, _ = removeMember(c.Supporters, user)
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return succeed(fmt.Sprintf("!%s supporters: %d | detractors %d", c.Name, len(c.Supporters), len(c.Detractors))), nil
}

// RideOrDie makes target user's ride or die.
func (e *Economy) RideOrDie(ctx context.Context, user, target string) (Result, error) {
	user, target = normalizeName(user), normalizeName(target)
	if res, stop, err := e.refuseBanned(ctx, user); stop {
		return res, err
	}
	if user == target {
		return fail(Rejected, fmt.Sprintf("You can love yourself in real life, but not in Beginworld @%s", user)), nil
	}
	if _, err := e.ledger.UpdateUser(ctx, user, func(u *User) error {
		u.RideOrDie = target
		return nil
	}); err != nil {
		return Result{}, err
	}
	return succeed(fmt.Sprintf("@%s Made @%s their Ride or Die", user, target)), nil
}

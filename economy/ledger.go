package economy

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/onnwee/chat-thief/docstore"
)

// Document store tables.
const (
	TableUsers    = "users"
	TableCommands = "commands"
	TableVotes    = "votes"
	TableBets     = "cube_bets"
	TableCasino   = "casino"
	TableIssues   = "issues"
)

// errInsufficient aborts an update whose balance check failed. Operations map
// it to the InsufficientFunds outcome.
var errInsufficient = errors.New("insufficient balance")

// Ledger owns user and command records.
type Ledger struct {
	store        docstore.Store
	startingMana int
	locks        keyedMutex
}

// NewLedger builds a ledger. New users start with startingMana.
func NewLedger(store docstore.Store, startingMana int) *Ledger {
	return &Ledger{store: store, startingMana: startingMana}
}

// Store exposes the backing store for the small side tables (votes, bets).
func (l *Ledger) Store() docstore.Store { return l.store }

func normalizeName(name string) string { return strings.ToLower(strings.TrimSpace(name)) }

func (l *Ledger) newUser(name string) User {
	return User{Name: name, Mana: l.startingMana, Status: UserActive}
}

func newCommand(name string) Command {
	return Command{Name: name, Cost: 1, Status: CommandActive}
}

func (u *User) normalize(name string) {
	u.Name = name
	if u.Status == "" {
		u.Status = UserActive
	}
}

func (c *Command) normalize(name string) {
	c.Name = name
	if c.Cost < 1 {
		c.Cost = 1
	}
	if c.Status == "" {
		c.Status = CommandActive
	}
}

// FindUser loads a user without creating one.
func (l *Ledger) FindUser(ctx context.Context, name string) (User, bool, error) {
	name = normalizeName(name)
	var u User
	err := docstore.GetInto(ctx, l.store, TableUsers, name, &u)
	if errors.Is(err, docstore.ErrNotFound) {
		return User{}, false, nil
	}
	if err != nil {
		return User{}, false, fmt.Errorf("load user %s: %w", name, err)
	}
	u.normalize(name)
	return u, true, nil
}

// User returns the user, creating it on first reference. Calling it again
// returns the stored record unchanged.
func (l *Ledger) User(ctx context.Context, name string) (User, error) {
	name = normalizeName(name)
	unlock := l.locks.Lock(TableUsers + "/" + name)
	defer unlock()
	return l.loadOrCreateUser(ctx, name)
}

func (l *Ledger) loadOrCreateUser(ctx context.Context, name string) (User, error) {
	u, ok, err := l.FindUser(ctx, name)
	if err != nil || ok {
		return u, err
	}
	u = l.newUser(name)
	if err := docstore.PutFrom(ctx, l.store, TableUsers, name, u); err != nil {
		return User{}, fmt.Errorf("create user %s: %w", name, err)
	}
	return u, nil
}

// UpdateUser applies fn to the user under its lock and saves the result.
// Nothing is written when fn fails.
func (l *Ledger) UpdateUser(ctx context.Context, name string, fn func(*User) error) (User, error) {
	name = normalizeName(name)
	unlock := l.locks.Lock(TableUsers + "/" + name)
	defer unlock()

	u, err := l.loadOrCreateUser(ctx, name)
	if err != nil {
		return User{}, err
	}
	if err := fn(&u); err != nil {
		return User{}, err
	}
	u.normalize(name)
	if u.CoolPoints < 0 || u.StreetCred < 0 || u.Mana < 0 || u.Notoriety < 0 {
		return User{}, errInsufficient
	}
	if err := docstore.PutFrom(ctx, l.store, TableUsers, name, u); err != nil {
		return User{}, fmt.Errorf("save user %s: %w", name, err)
	}
	return u, nil
}

// AddCoolPoints adds delta (may be negative) to a user's cool points.
func (l *Ledger) AddCoolPoints(ctx context.Context, name string, delta int) (User, error) {
	return l.UpdateUser(ctx, name, func(u *User) error {
		u.CoolPoints += delta
		return nil
	})
}

// AddStreetCred adds delta (may be negative) to a user's street cred.
func (l *Ledger) AddStreetCred(ctx context.Context, name string, delta int) (User, error) {
	return l.UpdateUser(ctx, name, func(u *User) error {
		u.StreetCred += delta
		return nil
	})
}

// FindCommand loads a command without creating one.
func (l *Ledger) FindCommand(ctx context.Context, name string) (Command, bool, error) {
	name = normalizeName(name)
	var c Command
	err := docstore.GetInto(ctx, l.store, TableCommands, name, &c)
	if errors.Is(err, docstore.ErrNotFound) {
		return Command{}, false, nil
	}
	if err != nil {
		return Command{}, false, fmt.Errorf("load command %s: %w", name, err)
	}
	c.normalize(name)
	return c, true, nil
}

// Command returns the command, creating it at cost 1 when missing.
func (l *Ledger) Command(ctx context.Context, name string) (Command, error) {
	name = normalizeName(name)
	unlock := l.locks.Lock(TableCommands + "/" + name)
	defer unlock()
	return l.loadOrCreateCommand(ctx, name)
}

func (l *Ledger) loadOrCreateCommand(ctx context.Context, name string) (Command, error) {
	c, ok, err := l.FindCommand(ctx, name)
	if err != nil || ok {
		return c, err
	}
	c = newCommand(name)
	if err := docstore.PutFrom(ctx, l.store, TableCommands, name, c); err != nil {
		return Command{}, fmt.Errorf("create command %s: %w", name, err)
	}
	return c, nil
}

// UpdateCommand applies fn to the command under its lock and saves the result.
func (l *Ledger) UpdateCommand(ctx context.Context, name string, fn func(*Command) error) (Command, error) {
	name = normalizeName(name)
	unlock := l.locks.Lock(TableCommands + "/" + name)
	defer unlock()

	c, err := l.loadOrCreateCommand(ctx, name)
	if err != nil {
		return Command{}, err
	}
	if err := fn(&c); err != nil {
		return Command{}, err
	}
	c.normalize(name)
	if err := docstore.PutFrom(ctx, l.store, TableCommands, name, c); err != nil {
		return Command{}, fmt.Errorf("save command %s: %w", name, err)
	}
	return c, nil
}

// Allow adds user to the command's permitted set. It reports whether the set
// changed.
func (l *Ledger) Allow(ctx context.Context, command, user string) (bool, error) {
	var changed bool
	_, err := l.UpdateCommand(ctx, command, func(c *Command) error {
		c.PermittedUsers, changed = addMember(c.PermittedUsers, normalizeName(user))
		return nil
	})
	return changed, err
}

// Unallow removes user from the command's permitted set.
func (l *Ledger) Unallow(ctx context.Context, command, user string) (bool, error) {
	var changed bool
	_, err := l.UpdateCommand(ctx, command, func(c *Command) error {
		c.PermittedUsers, changed = removeMember(c.PermittedUsers, normalizeName(user))
		return nil
	})
	return changed, err
}

// UserNames lists every registered user, sorted.
func (l *Ledger) UserNames(ctx context.Context) ([]string, error) {
	names, err := l.store.Keys(ctx, TableUsers)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return names, nil
}

// CommandNames lists every known command, sorted.
func (l *Ledger) CommandNames(ctx context.Context) ([]string, error) {
	names, err := l.store.Keys(ctx, TableCommands)
	if err != nil {
		return nil, fmt.Errorf("list commands: %w", err)
	}
	return names, nil
}

// Users loads every user record.
func (l *Ledger) Users(ctx context.Context) ([]User, error) {
	names, err := l.UserNames(ctx)
	if err != nil {
		return nil, err
	}
	users := make([]User, 0, len(names))
	for _, name := range names {
		u, ok, err := l.FindUser(ctx, name)
		if err != nil {
			return nil, err
		}
		if ok {
			users = append(users, u)
		}
	}
	return users, nil
}

// Commands loads every command record.
func (l *Ledger) Commands(ctx context.Context) ([]Command, error) {
	names, err := l.CommandNames(ctx)
	if err != nil {
		return nil, err
	}
	cmds := make([]Command, 0, len(names))
	for _, name := range names {
		c, ok, err := l.FindCommand(ctx, name)
		if err != nil {
			return nil, err
		}
		if ok {
			cmds = append(cmds, c)
		}
	}
	return cmds, nil
}

// CommandsOwnedBy lists the commands whose permitted set contains user, sorted.
func (l *Ledger) CommandsOwnedBy(ctx context.Context, user string) ([]string, error) {
	user = normalizeName(user)
	cmds, err := l.Commands(ctx)
	if err != nil {
		return nil, err
	}
	var owned []string
	for _, c := range cmds {
		if c.Allows(user) {
			owned = append(owned, c.Name)
		}
	}
	sort.Strings(owned)
	return owned, nil
}

// Seed registers commands that do not exist yet. Existing records are left
// untouched.
func (l *Ledger) Seed(ctx context.Context, names []string) (int, error) {
	created := 0
	for _, name := range names {
		name = normalizeName(name)
		if name == "" {
			continue
		}
		_, ok, err := l.FindCommand(ctx, name)
		if err != nil {
			return created, err
		}
		if ok {
			continue
		}
		if _, err := l.Command(ctx, name); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

package economy

import "slices"

// UserStatus is a user's standing.
type UserStatus string

const (
	UserActive UserStatus = "active"
	UserBanned UserStatus = "banned"
)

// CommandStatus is a command's standing.
type CommandStatus string

const (
	CommandActive   CommandStatus = "active"
	CommandSilenced CommandStatus = "silenced"
)

// User is one chatter's balances.
type User struct {
	Name       string     `json:"name"`
	CoolPoints int        `json:"cool_points"`
	StreetCred int        `json:"street_cred"`
	Mana       int        `json:"mana"`
	Notoriety  int        `json:"notoriety"`
	Status     UserStatus `json:"status"`
	RideOrDie  string     `json:"ride_or_die,omitempty"`
}

// Active reports whether the user is not banned.
func (u User) Active() bool { return u.Status != UserBanned }

// Command is a purchasable sound effect permission.
type Command struct {
	Name           string        `json:"name"`
	Cost           int           `json:"cost"`
	PermittedUsers []string      `json:"permitted_users"`
	Supporters     []string      `json:"supporters"`
	Detractors     []string      `json:"detractors"`
	Status         CommandStatus `json:"status"`
	Purchases      int           `json:"purchases"`
}

// Allows reports whether user is in the permitted set.
func (c Command) Allows(user string) bool { return slices.Contains(c.PermittedUsers, user) }

// PlayableBy reports whether user may play the command: owners and, for a
// theme song, the user it is named after.
func (c Command) PlayableBy(user string) bool { return c.Name == user || c.Allows(user) }

// Active reports whether the command has not been silenced.
func (c Command) Active() bool { return c.Status != CommandSilenced }

// Muted reports whether detractors outnumber supporters.
func (c Command) Muted() bool { return len(c.Detractors) > len(c.Supporters) }

// Health is supporters minus detractors.
func (c Command) Health() int { return len(c.Supporters) - len(c.Detractors) }

// LikeRatio is the share of supporters among all votes, 100 with no votes.
func (c Command) LikeRatio() float64 {
	total := len(c.Supporters) + len(c.Detractors)
	if total == 0 {
		return 100
	}
	return float64(len(c.Supporters)) * 100 / float64(total)
}

func addMember(set []string, name string) ([]string, bool) {
	if slices.Contains(set, name) {
		return set, false
	}
	return append(set, name), true
}

func removeMember(set []string, name string) ([]string, bool) {
	i := slices.Index(set, name)
	if i < 0 {
		return set, false
	}
	return slices.Delete(set, i, i+1), true
}

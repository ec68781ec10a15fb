package parse

import (
	"regexp"
	"strconv"
	"strings"
)

// SpecKind tags a TargetSpec.
type SpecKind int

const (
	Missing SpecKind = iota
	Literal
	Random
)

func (k SpecKind) String() string {
	switch k {
	case Literal:
		return "literal"
	case Random:
		return "random"
	default:
		return "missing"
	}
}

// TargetSpec is what a chat argument asked for: nothing, a named entity, or a
// random pick left to the caller.
type TargetSpec struct {
	Kind SpecKind
	Name string
}

// Named returns a Literal spec for name.
func Named(name string) TargetSpec { return TargetSpec{Kind: Literal, Name: name} }

// RandomSpec returns the Random spec.
func RandomSpec() TargetSpec { return TargetSpec{Kind: Random} }

func (s TargetSpec) IsMissing() bool { return s.Kind == Missing }
func (s TargetSpec) IsLiteral() bool { return s.Kind == Literal }
func (s TargetSpec) IsRandom() bool  { return s.Kind == Random }

func (s TargetSpec) String() string {
	if s.Kind == Literal {
		return s.Name
	}
	return s.Kind.String()
}

// Options tune how bare tokens are read.
type Options struct {
	// PreferUser puts a bare token in the user slot first.
	PreferUser bool
}

// Targets is the resolved argument list of one command.
type Targets struct {
	Requester string
	User      TargetSpec
	Command   TargetSpec
	Amount    int
	HasAmount bool
	// Unparsed holds tokens that could not be placed.
	Unparsed []string
}

var (
	validName = regexp.MustCompile(`^[a-z0-9_.]+$`)
	amountRe  = regexp.MustCompile(`^\d+$`)
)

// ValidName reports whether name is a normalized user or command name.
func ValidName(name string) bool { return validName.MatchString(name) }

// Resolve reads args into targets. It never fails: tokens it cannot place end
// up in Unparsed and the caller decides whether that matters.
func Resolve(requester string, args []string, opts Options) Targets {
	t := Targets{Requester: requester}
	for _, arg := range args {
		if !t.place(arg, opts) {
			t.Unparsed = append(t.Unparsed, arg)
		}
	}
	return t
}

func (t *Targets) place(arg string, opts Options) bool {
	switch {
	case strings.HasPrefix(arg, "@"):
		return t.fill(&t.User, normalize(arg[1:]))
	case strings.HasPrefix(arg, "!"):
		return t.fill(&t.Command, normalize(arg[1:]))
	case amountRe.MatchString(arg):
		if t.HasAmount {
			return false
		}
		n, err := strconv.Atoi(arg)
		if err != nil {
			return false
		}
		t.Amount, t.HasAmount = n, true
		return true
	}

	first, second := &t.Command, &t.User
	if opts.PreferUser {
		first, second = second, first
	}
	var spec TargetSpec
	if strings.EqualFold(arg, "random") {
		spec = RandomSpec()
	} else {
		name := normalize(arg)
		if !ValidName(name) {
			return false
		}
		spec = Named(name)
	}
	if first.IsMissing() {
		*first = spec
		return true
	}
	if second.IsMissing() {
		*second = spec
		return true
	}
	return false
}

// fill sets a sigil-addressed slot. "@random" and "!random" are Random specs.
func (t *Targets) fill(slot *TargetSpec, name string) bool {
	if !slot.IsMissing() {
		return false
	}
	if name == "random" {
		*slot = RandomSpec()
		return true
	}
	if !ValidName(name) {
		return false
	}
	*slot = Named(name)
	return true
}

func normalize(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

package economy

// Outcome classifies the result of an economic operation.
type Outcome int

const (
	OK Outcome = iota
	InsufficientFunds
	NotOwned
	NoEligibleCandidate
	Rejected
	ParseError
)

func (o Outcome) String() string {
	switch o {
	case OK:
		return "ok"
	case InsufficientFunds:
		return "insufficient_funds"
	case NotOwned:
		return "not_owned"
	case NoEligibleCandidate:
		return "no_eligible_candidate"
	case Rejected:
		return "rejected"
	case ParseError:
		return "parse_error"
	default:
		return "unknown"
	}
}

// Result is what an operation tells chat.
type Result struct {
	Outcome Outcome
	Lines   []string
}

func succeed(lines ...string) Result { return Result{Outcome: OK, Lines: lines} }

func fail(o Outcome, lines ...string) Result { return Result{Outcome: o, Lines: lines} }

// OK reports whether the operation succeeded.
func (r Result) OK() bool { return r.Outcome == OK }

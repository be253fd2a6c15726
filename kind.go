package hpolog

import "fmt"

// Kind identifies how the configuration of a block was produced.
type Kind int

const (
	// KindRandom marks a configuration drawn at random.
	KindRandom Kind = iota + 1

	// KindBO marks a configuration proposed by Bayesian optimization. Only BO
	// blocks accept state, targets, GP params, fantasies, the BO start config
	// and the evaluation count.
	KindBO
)

// String returns "random" or "BO".
func (k Kind) String() string {
	switch k {
	case KindRandom:
		return "random"
	case KindBO:
		return "BO"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind parses "random" or "BO".
func ParseKind(s string) (Kind, error) {
	switch s {
	case "random":
		return KindRandom, nil
	case "BO", "bo":
		return KindBO, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

func (k Kind) valid() bool {
	return k == KindRandom || k == KindBO
}

// Package resource implements the resource-aware configuration transform used
// by multi-fidelity searches.
//
// An extended configuration is a base configuration plus one resource
// attribute (epochs, training steps, data fraction, ...). Extended
// configurations that share a base configuration share its config ID:
//
//	epochs := resource.NewAttribute("epochs").WithRange(1, 81)
//	printer := hpolog.NewPrinter().WithExtractor(epochs)
//
//	ext, _ := epochs.Extend(cfg, 9)
//	id, _ := printer.ConfigID(ext) // "3:9"
package resource

import (
	"errors"
	"fmt"
	"math"

	"github.com/rickchristie/hpolog"
)

var (
	// ErrOutOfRange is returned when a resource value lies outside the
	// attribute's range.
	ErrOutOfRange = errors.New("resource: value out of range")

	// ErrNotInteger is returned when a ranged attribute gets a value that is
	// not a whole number.
	ErrNotInteger = errors.New("resource: value is not an integer")

	// ErrAlreadyExtended is returned by Extend when the configuration already
	// carries the attribute.
	ErrAlreadyExtended = errors.New("resource: config is already extended")
)

// Attribute names the resource parameter of extended configurations.
//
// Without a range, any scalar value is accepted. With a range, values must be
// whole numbers in [min, max].
type Attribute struct {
	name     string
	min, max int64
	ranged   bool
}

// NewAttribute creates an unranged Attribute.
func NewAttribute(name string) *Attribute {
	return &Attribute{name: name}
}

// WithRange restricts resource values to integers in [lo, hi].
func (a *Attribute) WithRange(lo, hi int64) *Attribute {
	if lo > hi {
		lo, hi = hi, lo
	}
	a.min, a.max, a.ranged = lo, hi, true
	return a
}

// ResourceName returns the attribute name.
func (a *Attribute) ResourceName() string {
	return a.name
}

// Range returns the attribute range and whether one is set.
func (a *Attribute) Range() (lo, hi int64, ok bool) {
	return a.min, a.max, a.ranged
}

// Strip removes the attribute from cfg. The input is never modified.
func (a *Attribute) Strip(cfg hpolog.Configuration) (hpolog.Configuration, any, bool) {
	r, ok := cfg[a.name]
	if !ok || r == nil {
		return cfg, nil, false
	}
	base := make(hpolog.Configuration, len(cfg)-1)
	for k, v := range cfg {
		if k != a.name {
			base[k] = v
		}
	}
	return base, r, true
}

// Extend returns a copy of base with the attribute set to r.
func (a *Attribute) Extend(base hpolog.Configuration, r any) (hpolog.Configuration, error) {
	if _, ok := base[a.name]; ok {
		return nil, fmt.Errorf("%w: %s is set", ErrAlreadyExtended, a.name)
	}
	if err := a.Check(r); err != nil {
		return nil, err
	}
	out := base.Clone()
	if out == nil {
		out = make(hpolog.Configuration, 1)
	}
	out[a.name] = r
	return out, nil
}

// Check validates a resource value against the attribute range. Canonicalize
// calls it for every stripped value, so a ranged Attribute also bounds the
// configurations a Registry accepts.
func (a *Attribute) Check(r any) error {
	if !a.ranged {
		return nil
	}
	n, err := toInt(r)
	if err != nil {
		return fmt.Errorf("%s: %w", a.name, err)
	}
	if n < a.min || n > a.max {
		return fmt.Errorf("%w: %s = %d not in [%d, %d]", ErrOutOfRange, a.name, n, a.min, a.max)
	}
	return nil
}

func toInt(r any) (int64, error) {
	switch x := r.(type) {
	case int:
		return int64(x), nil
	case int8:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case int64:
		return x, nil
	case uint:
		return int64(x), nil
	case uint8:
		return int64(x), nil
	case uint16:
		return int64(x), nil
	case uint32:
		return int64(x), nil
	case uint64:
		if x > math.MaxInt64 {
			return 0, fmt.Errorf("%w: %d", ErrOutOfRange, x)
		}
		return int64(x), nil
	case float32:
		return floatToInt(float64(x))
	case float64:
		return floatToInt(x)
	default:
		return 0, fmt.Errorf("%w: %T", ErrNotInteger, r)
	}
}

func floatToInt(f float64) (int64, error) {
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, fmt.Errorf("%w: %v", ErrNotInteger, f)
	}
	return int64(f), nil
}

var (
	_ hpolog.Extractor       = (*Attribute)(nil)
	_ hpolog.ResourceChecker = (*Attribute)(nil)
)

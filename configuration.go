package hpolog

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Configuration maps hyperparameter names to scalar values.
//
// Supported value types are string, bool and every Go integer and float kind.
// Entry order is irrelevant: two configurations with the same entries are the
// same configuration.
type Configuration map[string]any

// Clone returns a shallow copy of the configuration. Values are scalars, so the
// copy is independent of the original.
func (c Configuration) Clone() Configuration {
	if c == nil {
		return nil
	}
	out := make(Configuration, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Names returns the parameter names in sorted order.
func (c Configuration) Names() []string {
	names := make([]string, 0, len(c))
	for k := range c {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Lines renders one "name: value" line per entry, sorted by name.
func (c Configuration) Lines() []string {
	lines := make([]string, 0, len(c))
	for _, name := range c.Names() {
		lines = append(lines, name+": "+FormatValue(c[name]))
	}
	return lines
}

// Extractor is the resource-aware configuration transform.
//
// Strip reports whether cfg carries the resource attribute. When it does, it
// returns the resource value and a copy of cfg without that attribute. When it
// doesn't, base is cfg itself and ok is false.
//
// See the resource package for the standard implementation.
type Extractor interface {
	ResourceName() string
	Strip(cfg Configuration) (base Configuration, resource any, ok bool)
}

// ResourceChecker is implemented by extractors that restrict resource values.
// Canonicalize rejects a stripped value for which Check fails.
type ResourceChecker interface {
	Check(resource any) error
}

// Canonicalize computes the lookup key of cfg.
//
// If ext is non-nil and cfg carries the resource attribute, the attribute is
// removed first and returned separately. If ext is also a ResourceChecker, the
// value must pass its Check; otherwise the error wraps ErrInvalidResource.
//
// The key is a JSON object of the remaining entries with names in sorted
// order, so it depends only on the non-resource content of cfg. Floats always
// carry a fraction or exponent in the key: 1 and 1.0 are different values.
func Canonicalize(
	cfg Configuration,
	ext Extractor,
) (key string, base Configuration, resource any, err error) {
	base = cfg
	if ext != nil {
		if stripped, r, ok := ext.Strip(cfg); ok {
			base, resource = stripped, r
		}
		if c, ok := ext.(ResourceChecker); ok && resource != nil {
			if err := c.Check(resource); err != nil {
				return "", nil, nil, fmt.Errorf("%w: %w", ErrInvalidResource, err)
			}
		}
	}

	values := make(map[string]any, len(base))
	for name, v := range base {
		if err := checkScalar(v); err != nil {
			return "", nil, nil, fmt.Errorf("%w: %s: %v", ErrUnsupportedValue, name, err)
		}
		values[name] = keyValue(v)
	}

	// encoding/json writes map keys in sorted order.
	data, err := json.Marshal(values)
	if err != nil {
		return "", nil, nil, fmt.Errorf("%w: %v", ErrUnsupportedValue, err)
	}
	return string(data), base, resource, nil
}

// keyValue renders floats as json.Number with a fraction or exponent, so an
// integral float never shares a key with the equal integer.
func keyValue(v any) any {
	var s string
	switch x := v.(type) {
	case float32:
		s = strconv.FormatFloat(float64(x), 'g', -1, 32)
	case float64:
		s = strconv.FormatFloat(x, 'g', -1, 64)
	default:
		return v
	}
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return json.Number(s)
}

func checkScalar(v any) error {
	switch x := v.(type) {
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return nil
	case float32:
		return checkFinite(float64(x))
	case float64:
		return checkFinite(x)
	default:
		return fmt.Errorf("type %T is not a scalar", v)
	}
}

func checkFinite(f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("non-finite number %v", f)
	}
	return nil
}

// FormatValue renders a scalar for display. Floats use the shortest
// representation that round-trips.
func FormatValue(v any) string {
	switch x := v.(type) {
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case string:
		return x
	default:
		return fmt.Sprint(v)
	}
}

// FormatVector renders a vector the way numpy prints a 1-d array: "[a b c]".
func FormatVector(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// FormatMatrix renders each row as a vector on its own line.
func FormatMatrix(rows [][]float64) string {
	lines := make([]string, len(rows))
	for i, row := range rows {
		lines[i] = FormatVector(row)
	}
	return strings.Join(lines, "\n")
}

// FormatMapping renders a parameter mapping as "{a: 1, b: x}" with names sorted.
func FormatMapping(m map[string]any) string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + ": " + formatAny(m[name])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func formatAny(v any) string {
	switch x := v.(type) {
	case []float64:
		return FormatVector(x)
	case map[string]any:
		return FormatMapping(x)
	default:
		return FormatValue(v)
	}
}

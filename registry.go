package hpolog

import (
	"fmt"
	"strconv"
)

// Registry maps base (non-extended) configurations to config IDs 0, 1, 2, ...
//
// IDs are minted only by Insert, densely and in call order. Lookups through
// Identifier ignore the resource attribute, so an extended configuration
// resolves to the ID of its base configuration with a ":<resource>" suffix.
//
// # Thread Safety
//
// Registry is NOT thread-safe. It is meant to be driven by a single search
// loop; callers with several workers must serialize access externally.
type Registry struct {
	counter int
	ids     map[string]int
	ext     Extractor
}

// NewRegistry creates an empty Registry. ext may be nil, in which case every
// configuration is treated as a base configuration.
func NewRegistry(ext Extractor) *Registry {
	return &Registry{
		ids: make(map[string]int),
		ext: ext,
	}
}

// Extractor returns the resource transform used for canonicalization, or nil.
func (r *Registry) Extractor() Extractor {
	return r.ext
}

// Counter returns the next ID to be assigned. It always equals Len.
func (r *Registry) Counter() int {
	return r.counter
}

// Len returns the number of registered configurations.
func (r *Registry) Len() int {
	return len(r.ids)
}

// Insert assigns the next ID to cfg.
//
// It returns cfg without its resource attribute and the resource value (nil if
// absent). Inserting a configuration whose base was inserted before fails with
// ErrDuplicateConfig, whatever the resource value.
func (r *Registry) Insert(cfg Configuration) (Configuration, any, error) {
	key, base, resource, err := Canonicalize(cfg, r.ext)
	if err != nil {
		return nil, nil, err
	}
	if id, ok := r.ids[key]; ok {
		return nil, nil, fmt.Errorf(
			"%w: config %s already has config ID = %d", ErrDuplicateConfig, key, id)
	}
	r.ids[key] = r.counter
	r.counter++
	return base, resource, nil
}

// Identifier returns the display ID of cfg: "<id>" for a base configuration and
// "<id>:<resource>" for an extended one. It never mutates the Registry.
func (r *Registry) Identifier(cfg Configuration) (string, error) {
	key, _, resource, err := Canonicalize(cfg, r.ext)
	if err != nil {
		return "", err
	}
	id, ok := r.ids[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownConfig, key)
	}
	s := strconv.Itoa(id)
	if resource != nil {
		s += ":" + FormatValue(resource)
	}
	return s, nil
}

// ExportState returns a point-in-time copy of the assignment table.
func (r *Registry) ExportState() Snapshot {
	table := make(map[string]int, len(r.ids))
	for k, v := range r.ids {
		table[k] = v
	}
	return Snapshot{Counter: r.counter, Table: table}
}

// RestoreState replaces the assignment table with a copy of snap. The
// extractor is kept. The snapshot is validated first and left unapplied if it
// is inconsistent.
func (r *Registry) RestoreState(snap Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}
	ids := make(map[string]int, len(snap.Table))
	for k, v := range snap.Table {
		ids[k] = v
	}
	r.ids = ids
	r.counter = snap.Counter
	return nil
}

package checkpoint

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rickchristie/hpolog"
)

var (
	// ErrUnknownFormat is returned for locations without a known extension.
	ErrUnknownFormat = errors.New("checkpoint: unknown format")

	// ErrDecode is returned when a document cannot be decoded into a snapshot.
	ErrDecode = errors.New("checkpoint: cannot decode snapshot")
)

// Format is a snapshot serialization format.
type Format int

const (
	FormatJSON Format = iota + 1
	FormatYAML
)

// String returns "json" or "yaml".
func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// FormatFromPath picks the format from the extension of p.
func FormatFromPath(p string) (Format, error) {
	switch strings.ToLower(path.Ext(p)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownFormat, p)
}

// Encode serializes snap.
func Encode(snap hpolog.Snapshot, f Format) ([]byte, error) {
	if snap.Table == nil {
		snap.Table = map[string]int{}
	}
	switch f {
	case FormatJSON:
		data, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case FormatYAML:
		return yaml.Marshal(snap)
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownFormat, f)
}

// Decode parses and validates a snapshot document.
func Decode(data []byte, f Format) (hpolog.Snapshot, error) {
	doc, err := toJSON(data, f)
	if err != nil {
		return hpolog.Snapshot{}, err
	}
	if err := SnapshotSchema.Validate(doc); err != nil {
		return hpolog.Snapshot{}, err
	}

	var snap hpolog.Snapshot
	dec := json.NewDecoder(bytes.NewReader(doc))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&snap); err != nil {
		return hpolog.Snapshot{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if err := snap.Validate(); err != nil {
		return hpolog.Snapshot{}, err
	}
	return snap, nil
}

// toJSON converts a document to JSON so both formats share one validation path.
func toJSON(data []byte, f Format) ([]byte, error) {
	switch f {
	case FormatJSON:
		return data, nil
	case FormatYAML:
		var v any
		if err := yaml.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecode, err)
		}
		doc, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecode, err)
		}
		return doc, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownFormat, f)
}

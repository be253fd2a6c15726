package hpolog

import "errors"

// Protocol violations. These indicate misuse of the block lifecycle by the caller.
var (
	ErrBlockOpen           = errors.New("hpolog: block is currently open")
	ErrNoBlockOpen         = errors.New("hpolog: no block open right now")
	ErrNotBOBlock          = errors.New("hpolog: need to be in 'BO' block")
	ErrExtendedFinalConfig = errors.New("hpolog: final config must not be extended")
	ErrFinalConfigSet      = errors.New("hpolog: final config already set for this block")
	ErrMissingFinalConfig  = errors.New("hpolog: final config was not set for this block")
	ErrUnknownKind         = errors.New("hpolog: unknown block kind")
	ErrNilState            = errors.New("hpolog: state source is nil")
)

// Data errors raised by the Registry.
var (
	ErrDuplicateConfig  = errors.New("hpolog: config has already been assigned a config ID")
	ErrUnknownConfig    = errors.New("hpolog: config has no config ID")
	ErrUnsupportedValue = errors.New("hpolog: unsupported config value")
	ErrInvalidSnapshot  = errors.New("hpolog: invalid registry snapshot")
	ErrInvalidResource  = errors.New("hpolog: invalid resource value")
)

// ErrSink wraps failures returned by a Sink while emitting a report.
var ErrSink = errors.New("hpolog: sink failed")

package sink

import (
	"errors"

	"github.com/rickchristie/hpolog"
)

// Fanout delivers reports to several sinks.
//
// Sinks are called in the order they are registered. Every sink receives the
// report even if an earlier one fails; the failures are joined into the
// returned error.
//
// Fanout is NOT thread-safe. Register all sinks before the first flush.
type Fanout struct {
	sinks []hpolog.Sink
}

// NewFanout creates a Fanout with no sinks.
func NewFanout() *Fanout {
	return &Fanout{sinks: make([]hpolog.Sink, 0)}
}

// Register adds a sink. Nil sinks are ignored.
func (f *Fanout) Register(s hpolog.Sink) *Fanout {
	if s != nil {
		f.sinks = append(f.sinks, s)
	}
	return f
}

// Len returns the number of registered sinks.
func (f *Fanout) Len() int {
	return len(f.sinks)
}

// Emit sends r to every registered sink.
func (f *Fanout) Emit(r hpolog.Report) error {
	var errs []error
	for _, s := range f.sinks {
		if err := s.Emit(r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var _ hpolog.Sink = (*Fanout)(nil)

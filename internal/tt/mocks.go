package tt

import (
	"github.com/rickchristie/hpolog"
)

// -----------------------------------------------------------------------------
// MockSink - implements hpolog.Sink
// -----------------------------------------------------------------------------

// MockSink records emitted reports and can be told to fail.
type MockSink struct {
	Reports []hpolog.Report
	err     error
}

// NewMockSink creates a MockSink that accepts every report.
func NewMockSink() *MockSink {
	return &MockSink{}
}

// WithError makes every subsequent Emit return err. The report is still recorded.
func (m *MockSink) WithError(err error) *MockSink {
	m.err = err
	return m
}

// Emit records r.
func (m *MockSink) Emit(r hpolog.Report) error {
	m.Reports = append(m.Reports, r)
	return m.err
}

// Last returns the most recent report. Panics if none was emitted.
func (m *MockSink) Last() hpolog.Report {
	return m.Reports[len(m.Reports)-1]
}

var _ hpolog.Sink = (*MockSink)(nil)

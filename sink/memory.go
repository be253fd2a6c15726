package sink

import (
	"sync"

	"github.com/rickchristie/hpolog"
)

// Memory keeps every emitted report. It is safe to read from another goroutine
// while a Printer emits into it.
type Memory struct {
	mu      sync.RWMutex
	reports []hpolog.Report
}

// NewMemory creates an empty Memory sink.
func NewMemory() *Memory {
	return &Memory{}
}

// Emit stores r.
func (m *Memory) Emit(r hpolog.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports = append(m.reports, r)
	return nil
}

// Reports returns a copy of the stored reports in emission order.
func (m *Memory) Reports() []hpolog.Report {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]hpolog.Report, len(m.reports))
	copy(out, m.reports)
	return out
}

// ByConfigID returns the report of the given config ID.
func (m *Memory) ByConfigID(id int) (hpolog.Report, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.reports {
		if r.ConfigID == id {
			return r, true
		}
	}
	return hpolog.Report{}, false
}

// Len returns the number of stored reports.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.reports)
}

// Reset drops all stored reports.
func (m *Memory) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports = nil
}

var _ hpolog.Sink = (*Memory)(nil)

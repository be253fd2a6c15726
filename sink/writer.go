package sink

import (
	"fmt"
	"io"

	"github.com/rickchristie/hpolog"
)

// Writer writes each report to an io.Writer followed by a blank line.
type Writer struct {
	out    io.Writer
	layout string
}

// NewWriter creates a Writer without timestamps.
func NewWriter(w io.Writer) *Writer {
	return &Writer{out: w}
}

// WithTimestamp prefixes each report with a ">>> <time>" line formatted with
// layout.
func (w *Writer) WithTimestamp(layout string) *Writer {
	w.layout = layout
	return w
}

// Emit writes r.
func (w *Writer) Emit(r hpolog.Report) error {
	if w.layout != "" {
		if _, err := fmt.Fprintf(w.out, ">>> %s\n", r.Time.Format(w.layout)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w.out, "%s\n\n", r.Text)
	return err
}

var _ hpolog.Sink = (*Writer)(nil)

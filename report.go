package hpolog

import (
	"time"

	"go.uber.org/zap"
)

// Report is the output of one flushed block.
type Report struct {
	// ConfigID is the ID minted by the block's final configuration.
	ConfigID int
	Kind     Kind
	// NumEvaluations is the acquisition evaluation count, if it was set.
	NumEvaluations *int
	// Text is the complete human-readable report.
	Text string
	// Missing lists expected BO parts that were not supplied, in report order.
	Missing []string
	Time    time.Time
}

// Sink consumes flushed reports. Each report is delivered as a single call.
type Sink interface {
	Emit(r Report) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(r Report) error

// Emit calls f(r).
func (f SinkFunc) Emit(r Report) error {
	return f(r)
}

// LoggerSink writes every report as one Info entry of a zap logger.
type LoggerSink struct {
	logger *zap.Logger
}

// NewLoggerSink creates a LoggerSink. A nil logger discards reports.
func NewLoggerSink(logger *zap.Logger) *LoggerSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggerSink{logger: logger}
}

// Emit logs the report text.
func (s *LoggerSink) Emit(r Report) error {
	s.logger.Info(r.Text,
		zap.Int("config_id", r.ConfigID),
		zap.Stringer("kind", r.Kind),
	)
	return nil
}

var (
	_ Sink = SinkFunc(nil)
	_ Sink = (*LoggerSink)(nil)
)

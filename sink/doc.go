// Package sink provides consumers for reports flushed by an hpolog.Printer.
//
// # Available Sinks
//
//   - [Writer]: writes report text to an io.Writer, one report per paragraph
//   - [Memory]: keeps every report in memory, for tests and post-processing
//   - [Fanout]: delivers each report to several sinks in registration order
//   - [Async]: delivers to another sink on a background goroutine
//
// The zap-backed default lives in the root package as hpolog.LoggerSink.
//
// # Example
//
//	mem := sink.NewMemory()
//	out := sink.NewFanout().
//	    Register(sink.NewWriter(os.Stderr).WithTimestamp(time.RFC3339)).
//	    Register(mem)
//
//	printer := hpolog.NewPrinter().WithSink(out)
package sink

// Package hpolog records, in human-readable blocks, how each configuration of a
// hyperparameter search was chosen.
//
// Every time a searcher proposes a configuration it opens a block, fills in what
// it knows, and flushes. The flush assigns the configuration a stable integer ID
// and emits one report. Configurations that differ only in their resource
// attribute (for example the number of epochs in multi-fidelity search) share an
// ID, so a report refers to them as "<id>:<resource>".
//
// # Quick Start
//
//	printer := hpolog.NewPrinter().
//	    WithExtractor(resource.NewAttribute("epochs")).
//	    WithLogger(logger)
//
//	// random proposal
//	if err := printer.StartBlock(hpolog.KindRandom); err != nil {
//	    return err
//	}
//	if err := printer.SetFinalConfig(cfg); err != nil {
//	    return err
//	}
//	report, err := printer.Flush()
//
// A Bayesian optimization proposal also records the search state, the
// surrogate's targets and parameters, and optionally the configuration the
// acquisition optimizer started from:
//
//	printer.StartBlock(hpolog.KindBO)
//	printer.SetState(jobState)
//	printer.SetTargets(targets)
//	printer.SetGPParams(map[string]any{"noise": 0.01})
//	printer.SetInitConfig(start, topScores)
//	printer.SetFinalConfig(proposal)
//	report, err := printer.Flush()
//
// Missing BO parts do not fail the flush. They are logged at info level and
// listed in [Report.Missing].
//
// # Reports
//
// A report starts with a header line and lists the final configuration one
// "name: value" line per attribute, sorted by name:
//
//	[3: BO] (12 evaluations)
//	batch_size: 64
//	lr: 0.0031
//	Started BO from (top scorer):
//	batch_size: 32
//	lr: 0.001
//	Labeled: 0:1, 1:1, 2:3. Pending: 4:1
//	Targets: [0.91 0.88 0.93]
//	GP params: {lengthscale: [0.4 1.2], noise: 0.01}
//
// Reports go to a [Sink]. The default is [LoggerSink], which logs through zap.
// The sink package has writers, fan-out and in-memory sinks.
//
// # Errors
//
// Protocol violations return sentinel errors that can be matched with
// errors.Is: [ErrBlockOpen], [ErrNoBlockOpen], [ErrNotBOBlock],
// [ErrFinalConfigSet], [ErrMissingFinalConfig], [ErrExtendedFinalConfig] and
// [ErrDuplicateConfig]. A rejected call leaves the open block unchanged. A
// sink failure closes the block and wraps [ErrSink].
//
// # Checkpointing
//
// [Printer.ExportState] and [Printer.RestoreState] move the ID table in and out
// as a [Snapshot]. The checkpoint package stores snapshots as JSON or YAML on
// disk or in Google Cloud Storage.
//
// # Time
//
// Report timestamps come from a [Clock]. Tests use [FixedClock]:
//
//	clock := hpolog.NewFixedClock(time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC))
//	printer := hpolog.NewPrinter().WithClock(clock)
package hpolog

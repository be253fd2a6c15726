package hpolog

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Report part names. The BO parts listed in expectedBOParts should be present
// in every BO block; a missing one is recorded in Report.Missing.
const (
	PartState   = "state"
	PartTargets = "targets"
	PartParams  = "params"
)

var expectedBOParts = []string{PartState, PartTargets, PartParams}

// Printer collects the debug information of one search iteration and emits it
// as a single report.
//
// Configurations are mapped to config IDs 0, 1, 2, ... as they are finalized.
// For multi-fidelity searches, extended configurations are shown as "<k>:<r>",
// k the ID of the base configuration and r the resource value. Finalized
// configurations are never extended.
//
// # Block Lifecycle
//
//	p := hpolog.NewPrinter().WithSink(sink)
//
//	p.StartBlock(hpolog.KindBO)
//	p.SetFinalConfig(cfg)         // mints the config ID
//	p.SetState(jobState)          // BO only
//	p.SetTargets(targets)         // BO only
//	p.SetGPParams(params)         // BO only
//	report, err := p.Flush()      // emits and resets
//
// At most one block is open at a time. Calling a BO-only setter outside a BO
// block, opening a second block, or flushing with no block open fails.
//
// # Thread Safety
//
// Printer is NOT thread-safe. Use one Printer per search loop.
type Printer struct {
	registry *Registry
	block    *block
	sink     Sink
	logger   *zap.Logger
	clock    Clock
}

type block struct {
	kind     Kind
	hasFinal bool
	finalID  int
	final    string
	extra    []string
	bo       *boFields // nil unless kind is KindBO
}

type boFields struct {
	startConfig *string
	state       *string
	targets     *string
	params      *string
	fantasies   *string
	numEvals    *int
}

// NewPrinter creates an idle Printer with an empty Registry and no resource
// attribute. Reports go to a LoggerSink over a no-op logger until WithSink or
// WithLogger is called.
func NewPrinter() *Printer {
	logger := zap.NewNop()
	return &Printer{
		registry: NewRegistry(nil),
		sink:     NewLoggerSink(logger),
		logger:   logger,
		clock:    SystemClock{},
	}
}

// WithExtractor is like SetExtractor but panics if a block is open.
// Use it when building the Printer.
func (p *Printer) WithExtractor(ext Extractor) *Printer {
	if err := p.SetExtractor(ext); err != nil {
		panic(err)
	}
	return p
}

// WithSink sets where flushed reports are delivered.
func (p *Printer) WithSink(sink Sink) *Printer {
	p.sink = sink
	return p
}

// WithLogger sets the logger used for block tracing and diagnostics. If no sink
// was set explicitly, reports are logged through it as well.
func (p *Printer) WithLogger(logger *zap.Logger) *Printer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ls, ok := p.sink.(*LoggerSink); ok && ls.logger == p.logger {
		p.sink = NewLoggerSink(logger)
	}
	p.logger = logger
	return p
}

// WithClock sets the clock used to stamp reports.
func (p *Printer) WithClock(clock Clock) *Printer {
	p.clock = clock
	return p
}

// SetExtractor replaces the Registry with a fresh one using ext. All
// previously assigned IDs are forgotten.
func (p *Printer) SetExtractor(ext Extractor) error {
	if err := p.requireIdle(); err != nil {
		return err
	}
	p.registry = NewRegistry(ext)
	return nil
}

// Registry returns the underlying Registry.
func (p *Printer) Registry() *Registry {
	return p.registry
}

// IsOpen reports whether a block is open.
func (p *Printer) IsOpen() bool {
	return p.block != nil
}

// OpenKind returns the kind of the open block and whether one is open.
func (p *Printer) OpenKind() (Kind, bool) {
	if p.block == nil {
		return 0, false
	}
	return p.block.kind, true
}

// ConfigID returns the display ID of cfg. See Registry.Identifier.
func (p *Printer) ConfigID(cfg Configuration) (string, error) {
	return p.registry.Identifier(cfg)
}

// StartBlock opens a block of the given kind.
func (p *Printer) StartBlock(kind Kind) error {
	if !kind.valid() {
		return fmt.Errorf("%w: %v", ErrUnknownKind, kind)
	}
	if err := p.requireIdle(); err != nil {
		return err
	}
	p.block = &block{kind: kind}
	if kind == KindBO {
		p.block.bo = &boFields{}
	}
	p.logger.Info("starting get_config",
		zap.Stringer("kind", kind),
		zap.Int("config_id", p.registry.Counter()),
	)
	return nil
}

// SetFinalConfig registers the configuration chosen by this iteration and
// mints its config ID. cfg must not carry a resource value; an extended
// configuration is rejected before anything is registered.
func (p *Printer) SetFinalConfig(cfg Configuration) error {
	if p.block == nil {
		return ErrNoBlockOpen
	}
	if p.block.hasFinal {
		return fmt.Errorf("%w: config ID %d", ErrFinalConfigSet, p.block.finalID)
	}
	if ext := p.registry.Extractor(); ext != nil {
		if _, r, ok := ext.Strip(cfg); ok {
			return fmt.Errorf("%w: %s = %s",
				ErrExtendedFinalConfig, ext.ResourceName(), FormatValue(r))
		}
	}

	base, _, err := p.registry.Insert(cfg)
	if err != nil {
		return err
	}
	p.block.hasFinal = true
	p.block.finalID = p.registry.Counter() - 1
	p.block.final = strings.Join(base.Lines(), "\n")
	return nil
}

// SetState records the IDs of labeled and pending configurations. A nil state
// fails with ErrNilState.
func (p *Printer) SetState(state StateSource) error {
	bo, err := p.requireBO()
	if err != nil {
		return err
	}
	if state == nil {
		return ErrNilState
	}
	labeled, err := p.identifiers(state.LabeledConfigs())
	if err != nil {
		return err
	}
	pending, err := p.identifiers(state.PendingConfigs())
	if err != nil {
		return err
	}
	msg := "Labeled: " + labeled + ". Pending: " + pending
	bo.state = &msg
	return nil
}

// SetTargets records the observed target values.
func (p *Printer) SetTargets(targets []float64) error {
	bo, err := p.requireBO()
	if err != nil {
		return err
	}
	msg := "Targets: " + FormatVector(targets)
	bo.targets = &msg
	return nil
}

// SetGPParams records the surrogate model parameters.
func (p *Printer) SetGPParams(params map[string]any) error {
	bo, err := p.requireBO()
	if err != nil {
		return err
	}
	msg := "GP params: " + FormatMapping(params)
	bo.params = &msg
	return nil
}

// SetFantasies records fantasized target values, one row per line.
func (p *Printer) SetFantasies(fantasies [][]float64) error {
	bo, err := p.requireBO()
	if err != nil {
		return err
	}
	msg := "Fantasized targets:\n" + FormatMatrix(fantasies)
	bo.fantasies = &msg
	return nil
}

// SetInitConfig records the configuration the acquisition optimizer started
// from, with any resource attribute removed. topScores may be nil.
func (p *Printer) SetInitConfig(cfg Configuration, topScores []float64) error {
	bo, err := p.requireBO()
	if err != nil {
		return err
	}
	_, base, _, err := Canonicalize(cfg, p.registry.Extractor())
	if err != nil {
		return err
	}
	lines := append([]string{"Started BO from (top scorer):"}, base.Lines()...)
	if topScores != nil {
		lines = append(lines, "Top score values: "+FormatVector(topScores))
	}
	msg := strings.Join(lines, "\n")
	bo.startConfig = &msg
	return nil
}

// SetNumEvaluations records how many acquisition function evaluations were
// done in this iteration.
func (p *Printer) SetNumEvaluations(n int) error {
	bo, err := p.requireBO()
	if err != nil {
		return err
	}
	bo.numEvals = &n
	return nil
}

// AppendExtra adds free-form text to the block. Successive calls are joined
// with newlines.
func (p *Printer) AppendExtra(text string) error {
	if p.block == nil {
		return ErrNoBlockOpen
	}
	p.block.extra = append(p.block.extra, text)
	return nil
}

// Flush renders the open block, delivers it to the sink and closes the block.
//
// The final configuration must have been set; otherwise Flush fails with
// ErrMissingFinalConfig and the block stays open. Missing state, targets or
// GP params of a BO block do not fail the flush: they are left out of the text,
// logged and listed in Report.Missing.
//
// If the sink fails, the block is closed anyway and the error wraps ErrSink.
func (p *Printer) Flush() (Report, error) {
	b := p.block
	if b == nil {
		return Report{}, ErrNoBlockOpen
	}
	if !b.hasFinal {
		return Report{}, ErrMissingFinalConfig
	}

	report := Report{ConfigID: b.finalID, Kind: b.kind, Time: p.clock.Now()}
	header := fmt.Sprintf("[%d: %s]", b.finalID, b.kind)
	if b.bo != nil && b.bo.numEvals != nil {
		n := *b.bo.numEvals
		report.NumEvaluations = &n
		header += fmt.Sprintf(" (%d evaluations)", n)
	}

	parts := []string{header, b.final}
	if bo := b.bo; bo != nil {
		if bo.startConfig != nil {
			parts = append(parts, *bo.startConfig)
		}
		for i, v := range []*string{bo.state, bo.targets, bo.params} {
			if v != nil {
				parts = append(parts, *v)
				continue
			}
			name := expectedBOParts[i]
			report.Missing = append(report.Missing, name)
			p.logger.Info("write_block: part is missing",
				zap.String("part", name),
				zap.Int("config_id", b.finalID),
			)
		}
		if bo.fantasies != nil {
			parts = append(parts, *bo.fantasies)
		}
	}
	if len(b.extra) > 0 {
		parts = append(parts, strings.Join(b.extra, "\n"))
	}
	report.Text = strings.Join(parts, "\n")

	p.block = nil
	if err := p.sink.Emit(report); err != nil {
		return report, fmt.Errorf("%w: %w", ErrSink, err)
	}
	return report, nil
}

// ExportState returns the Registry checkpoint.
func (p *Printer) ExportState() Snapshot {
	return p.registry.ExportState()
}

// RestoreState restores the Registry from a checkpoint. It fails while a block
// is open.
func (p *Printer) RestoreState(snap Snapshot) error {
	if err := p.requireIdle(); err != nil {
		return err
	}
	if err := p.registry.RestoreState(snap); err != nil {
		return err
	}
	p.block = nil
	return nil
}

func (p *Printer) requireIdle() error {
	if p.block != nil {
		return fmt.Errorf("%w: block for get_config of type '%s'", ErrBlockOpen, p.block.kind)
	}
	return nil
}

func (p *Printer) requireBO() (*boFields, error) {
	if p.block == nil {
		return nil, fmt.Errorf("%w: %w", ErrNotBOBlock, ErrNoBlockOpen)
	}
	if p.block.bo == nil {
		return nil, fmt.Errorf("%w: block is of type '%s'", ErrNotBOBlock, p.block.kind)
	}
	return p.block.bo, nil
}

func (p *Printer) identifiers(configs []Configuration) (string, error) {
	ids := make([]string, len(configs))
	for i, cfg := range configs {
		id, err := p.registry.Identifier(cfg)
		if err != nil {
			return "", err
		}
		ids[i] = id
	}
	return strings.Join(ids, ", "), nil
}

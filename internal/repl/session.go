// Package repl interprets line commands against an hpolog.Printer.
//
// Configurations, parameter mappings and matrices are written as JSON:
//
//	start BO
//	final {"lr": 0.01, "depth": 4}
//	state [{"lr": 0.1, "depth": 2}] [{"lr": 0.1, "depth": 2, "epochs": 3}]
//	targets 0.31 0.27
//	params {"kernel": "matern52", "noise": 0.001}
//	flush
package repl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/rickchristie/hpolog"
	"github.com/rickchristie/hpolog/checkpoint"
)

var (
	// ErrUnknownCommand is returned for lines that do not start with a command.
	ErrUnknownCommand = errors.New("repl: unknown command")

	// ErrUsage is returned when a command has malformed arguments.
	ErrUsage = errors.New("repl: bad arguments")

	// ErrQuit is returned by the quit command.
	ErrQuit = errors.New("repl: quit")
)

type command struct {
	usage string
	help  string
	run   func(s *Session, ctx context.Context, args string) (string, error)
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"start":     {"start random|BO", "open a block", (*Session).start},
		"final":     {"final <config>", "set the final config (mints its ID)", (*Session).final},
		"state":     {"state <labeled configs> [<pending configs>]", "set labeled and pending configs (BO)", (*Session).state},
		"targets":   {"targets <v> ...", "set observed targets (BO)", (*Session).targets},
		"params":    {"params <mapping>", "set GP params (BO)", (*Session).params},
		"fantasies": {"fantasies <matrix>", "set fantasized targets (BO)", (*Session).fantasies},
		"init":      {"init <config> [<scores>]", "set the BO start config (BO)", (*Session).initConfig},
		"evals":     {"evals <n>", "set the number of evaluations (BO)", (*Session).evals},
		"extra":     {"extra <text>", "append free-form text", (*Session).extra},
		"flush":     {"flush", "emit the block and close it", (*Session).flush},
		"id":        {"id <config>", "show the ID of a config", (*Session).id},
		"status":    {"status", "show the block state and counter", (*Session).status},
		"save":      {"save [<location>]", "save a checkpoint", (*Session).save},
		"load":      {"load [<location>]", "restore a checkpoint", (*Session).load},
		"help":      {"help", "list commands", (*Session).help},
		"quit":      {"quit", "leave the session", (*Session).quit},
	}
}

// Session holds the Printer driven by a sequence of commands.
type Session struct {
	printer    *hpolog.Printer
	store      *checkpoint.Store
	logger     *zap.Logger
	checkpoint string
}

// NewSession creates a Session around p.
func NewSession(p *hpolog.Printer, store *checkpoint.Store) *Session {
	return &Session{printer: p, store: store, logger: zap.NewNop()}
}

// WithCheckpoint sets the default save/load location. When set, the
// checkpoint is saved after every successful flush.
func (s *Session) WithCheckpoint(location string) *Session {
	s.checkpoint = location
	return s
}

// WithLogger sets the logger used for session diagnostics.
func (s *Session) WithLogger(logger *zap.Logger) *Session {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// Printer returns the driven Printer.
func (s *Session) Printer() *hpolog.Printer {
	return s.printer
}

// Exec runs one command line and returns its output.
func (s *Session) Exec(ctx context.Context, line string) (string, error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", nil
	}
	name, args, _ := strings.Cut(line, " ")
	cmd, ok := commands[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
	return cmd.run(s, ctx, strings.TrimSpace(args))
}

// Run executes every line of r, writing outputs to w. It stops at the first
// error or at quit.
func (s *Session) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	for n, line := range strings.Split(string(data), "\n") {
		out, err := s.Exec(ctx, line)
		if errors.Is(err, ErrQuit) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("line %d: %w", n+1, err)
		}
		if out != "" {
			fmt.Fprintln(w, out)
		}
	}
	return nil
}

func (s *Session) start(_ context.Context, args string) (string, error) {
	kind, err := hpolog.ParseKind(args)
	if err != nil {
		return "", err
	}
	if err := s.printer.StartBlock(kind); err != nil {
		return "", err
	}
	return fmt.Sprintf("opened %s block for config %d", kind, s.printer.Registry().Counter()), nil
}

func (s *Session) final(_ context.Context, args string) (string, error) {
	cfg, err := parseConfig(args)
	if err != nil {
		return "", err
	}
	return "", s.printer.SetFinalConfig(cfg)
}

func (s *Session) state(_ context.Context, args string) (string, error) {
	values, err := decodeAll(args)
	if err != nil {
		return "", err
	}
	if len(values) == 0 || len(values) > 2 {
		return "", fmt.Errorf("%w: state takes one or two config lists", ErrUsage)
	}
	var st hpolog.JobState
	labeled, err := toConfigs(values[0])
	if err != nil {
		return "", err
	}
	for _, cfg := range labeled {
		st.Evaluations = append(st.Evaluations, hpolog.CandidateEvaluation{Candidate: cfg})
	}
	if len(values) == 2 {
		if st.Pending, err = toConfigs(values[1]); err != nil {
			return "", err
		}
	}
	return "", s.printer.SetState(st)
}

func (s *Session) targets(_ context.Context, args string) (string, error) {
	v, err := parseFloats(strings.Fields(args))
	if err != nil {
		return "", err
	}
	return "", s.printer.SetTargets(v)
}

func (s *Session) params(_ context.Context, args string) (string, error) {
	values, err := decodeAll(args)
	if err != nil {
		return "", err
	}
	if len(values) != 1 {
		return "", fmt.Errorf("%w: params takes one mapping", ErrUsage)
	}
	m, ok := values[0].(map[string]any)
	if !ok {
		return "", fmt.Errorf("%w: params must be a JSON object", ErrUsage)
	}
	return "", s.printer.SetGPParams(m)
}

func (s *Session) fantasies(_ context.Context, args string) (string, error) {
	var rows [][]float64
	if err := json.Unmarshal([]byte(args), &rows); err != nil {
		return "", fmt.Errorf("%w: fantasies must be a JSON matrix: %v", ErrUsage, err)
	}
	return "", s.printer.SetFantasies(rows)
}

func (s *Session) initConfig(_ context.Context, args string) (string, error) {
	values, err := decodeAll(args)
	if err != nil {
		return "", err
	}
	if len(values) == 0 || len(values) > 2 {
		return "", fmt.Errorf("%w: init takes a config and optional scores", ErrUsage)
	}
	cfg, err := toConfig(values[0])
	if err != nil {
		return "", err
	}
	var scores []float64
	if len(values) == 2 {
		list, ok := values[1].([]any)
		if !ok {
			return "", fmt.Errorf("%w: scores must be a JSON array", ErrUsage)
		}
		scores = make([]float64, len(list))
		for i, v := range list {
			f, ok := v.(float64)
			if !ok {
				if n, isInt := v.(int64); isInt {
					f, ok = float64(n), true
				}
			}
			if !ok {
				return "", fmt.Errorf("%w: score %v is not a number", ErrUsage, v)
			}
			scores[i] = f
		}
	}
	return "", s.printer.SetInitConfig(cfg, scores)
}

func (s *Session) evals(_ context.Context, args string) (string, error) {
	n, err := strconv.Atoi(args)
	if err != nil {
		return "", fmt.Errorf("%w: evals takes an integer: %v", ErrUsage, err)
	}
	return "", s.printer.SetNumEvaluations(n)
}

func (s *Session) extra(_ context.Context, args string) (string, error) {
	return "", s.printer.AppendExtra(args)
}

func (s *Session) flush(ctx context.Context, _ string) (string, error) {
	report, err := s.printer.Flush()
	if err != nil && !errors.Is(err, hpolog.ErrSink) {
		return "", err
	}
	if err != nil {
		s.logger.Warn("report sink failed", zap.Error(err))
	}
	if s.checkpoint != "" {
		if err := s.store.Save(ctx, s.checkpoint, s.printer.ExportState()); err != nil {
			return report.Text, fmt.Errorf("checkpoint after flush: %w", err)
		}
	}
	return report.Text, nil
}

func (s *Session) id(_ context.Context, args string) (string, error) {
	cfg, err := parseConfig(args)
	if err != nil {
		return "", err
	}
	return s.printer.ConfigID(cfg)
}

func (s *Session) status(_ context.Context, _ string) (string, error) {
	counter := s.printer.Registry().Counter()
	if kind, ok := s.printer.OpenKind(); ok {
		return fmt.Sprintf("open %s block, next config ID %d", kind, counter), nil
	}
	return fmt.Sprintf("idle, next config ID %d", counter), nil
}

func (s *Session) save(ctx context.Context, args string) (string, error) {
	location, err := s.location(args)
	if err != nil {
		return "", err
	}
	snap := s.printer.ExportState()
	if err := s.store.Save(ctx, location, snap); err != nil {
		return "", err
	}
	return fmt.Sprintf("saved %d configs to %s", snap.Counter, location), nil
}

func (s *Session) load(ctx context.Context, args string) (string, error) {
	location, err := s.location(args)
	if err != nil {
		return "", err
	}
	snap, err := s.store.Load(ctx, location)
	if err != nil {
		return "", err
	}
	if err := s.printer.RestoreState(snap); err != nil {
		return "", err
	}
	return fmt.Sprintf("restored %d configs from %s", snap.Counter, location), nil
}

func (s *Session) help(_ context.Context, _ string) (string, error) {
	return Help(), nil
}

func (s *Session) quit(_ context.Context, _ string) (string, error) {
	return "", ErrQuit
}

func (s *Session) location(args string) (string, error) {
	if args != "" {
		return args, nil
	}
	if s.checkpoint == "" {
		return "", fmt.Errorf("%w: no location given and no default checkpoint", ErrUsage)
	}
	return s.checkpoint, nil
}

// Help lists the commands with their usage.
func Help() string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	for i, name := range names {
		if i > 0 {
			sb.WriteByte('\n')
		}
		cmd := commands[name]
		fmt.Fprintf(&sb, "%-46s %s", cmd.usage, cmd.help)
	}
	return sb.String()
}

// Commands returns the command names, for completion.
func Commands() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// -----------------------------------------------------------------------------
// Argument parsing
// -----------------------------------------------------------------------------

// decodeAll decodes consecutive JSON values. Integers stay int64.
func decodeAll(args string) ([]any, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(args)))
	dec.UseNumber()
	var out []any
	for {
		var v any
		err := dec.Decode(&v)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUsage, err)
		}
		out = append(out, normalize(v))
	}
}

func normalize(v any) any {
	switch x := v.(type) {
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n
		}
		f, _ := x.Float64()
		return f
	case []any:
		for i := range x {
			x[i] = normalize(x[i])
		}
		return x
	case map[string]any:
		for k := range x {
			x[k] = normalize(x[k])
		}
		return x
	default:
		return v
	}
}

func parseConfig(args string) (hpolog.Configuration, error) {
	values, err := decodeAll(args)
	if err != nil {
		return nil, err
	}
	if len(values) != 1 {
		return nil, fmt.Errorf("%w: expected one config", ErrUsage)
	}
	return toConfig(values[0])
}

func toConfig(v any) (hpolog.Configuration, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: config must be a JSON object", ErrUsage)
	}
	return hpolog.Configuration(m), nil
}

func toConfigs(v any) ([]hpolog.Configuration, error) {
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected a JSON array of configs", ErrUsage)
	}
	out := make([]hpolog.Configuration, len(list))
	for i, item := range list {
		cfg, err := toConfig(item)
		if err != nil {
			return nil, err
		}
		out[i] = cfg
	}
	return out, nil
}

func parseFloats(fields []string) ([]float64, error) {
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUsage, err)
		}
		out[i] = v
	}
	return out, nil
}

package repl

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rickchristie/hpolog"
	"github.com/rickchristie/hpolog/checkpoint"
	"github.com/rickchristie/hpolog/internal/tt"
	"github.com/rickchristie/hpolog/resource"
)

func newTestSession() *Session {
	p := hpolog.NewPrinter().WithExtractor(resource.NewAttribute("epochs"))
	return NewSession(p, checkpoint.NewStore())
}

func TestSession_Script(t *testing.T) {
	script := `
# first iteration
start random
final {"lr": 0.1, "depth": 2}
flush

start BO
final {"lr": 0.01, "depth": 4}
evals 50
init {"lr": 0.02, "depth": 4, "epochs": 3} [-0.5, 1]
state [{"lr": 0.1, "depth": 2, "epochs": 1}] [{"lr": 0.1, "depth": 2, "epochs": 3}]
targets 0.31
params {"kernel": "matern52", "noise": 0.001}
fantasies [[0.1, 0.2]]
extra acquisition: EI
flush
id {"lr": 0.01, "depth": 4, "epochs": 9}
quit
start random
`
	var out bytes.Buffer
	s := newTestSession()

	require.NoError(t, s.Run(context.Background(), strings.NewReader(script), &out))

	tt.AssertText(t, tt.Lines(
		"opened random block for config 0",
		"[0: random]",
		"depth: 2",
		"lr: 0.1",
		"opened BO block for config 1",
		"[1: BO] (50 evaluations)",
		"depth: 4",
		"lr: 0.01",
		"Started BO from (top scorer):",
		"depth: 4",
		"lr: 0.02",
		"Top score values: [-0.5 1]",
		"Labeled: 0:1. Pending: 0:3",
		"Targets: [0.31]",
		"GP params: {kernel: matern52, noise: 0.001}",
		"Fantasized targets:",
		"[0.1 0.2]",
		"acquisition: EI",
		"1:9",
		"",
	), out.String())
	assert.False(t, s.Printer().IsOpen(), "commands after quit are not run")
}

func TestSession_Errors(t *testing.T) {
	tests := []struct {
		name     string
		setup    []string
		line     string
		expected error
	}{
		{name: "unknown command", line: "open BO", expected: ErrUnknownCommand},
		{name: "unknown kind", line: "start grid", expected: hpolog.ErrUnknownKind},
		{name: "double start", setup: []string{"start BO"}, line: "start random", expected: hpolog.ErrBlockOpen},
		{name: "BO setter in random block", setup: []string{"start random"}, line: "targets 1 2", expected: hpolog.ErrNotBOBlock},
		{name: "bad targets", setup: []string{"start BO"}, line: "targets 1 x", expected: ErrUsage},
		{name: "config not an object", setup: []string{"start random"}, line: "final [1]", expected: ErrUsage},
		{name: "bad json", setup: []string{"start random"}, line: `final {"x": }`, expected: ErrUsage},
		{name: "flush without block", line: "flush", expected: hpolog.ErrNoBlockOpen},
		{name: "unknown id", line: `id {"x": 1}`, expected: hpolog.ErrUnknownConfig},
		{name: "save without location", line: "save", expected: ErrUsage},
		{name: "evals not a number", setup: []string{"start BO"}, line: "evals many", expected: ErrUsage},
		{name: "params not an object", setup: []string{"start BO"}, line: "params [1]", expected: ErrUsage},
		{name: "extended final", setup: []string{"start random"}, line: `final {"x": 1, "epochs": 3}`, expected: hpolog.ErrExtendedFinalConfig},
		{name: "quit", line: "quit", expected: ErrQuit},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			s := newTestSession()
			for _, line := range tc.setup {
				_, err := s.Exec(ctx, line)
				require.NoError(t, err)
			}

			_, err := s.Exec(ctx, tc.line)
			assert.ErrorIs(t, err, tc.expected)
		})
	}
}

func TestSession_IntegersStayIntegers(t *testing.T) {
	ctx := context.Background()
	s := newTestSession()

	_, err := s.Exec(ctx, "start random")
	require.NoError(t, err)
	_, err = s.Exec(ctx, `final {"depth": 4, "lr": 0.5}`)
	require.NoError(t, err)
	_, err = s.Exec(ctx, "flush")
	require.NoError(t, err)

	id, err := s.Printer().ConfigID(tt.Config("depth", 4, "lr", 0.5))
	require.NoError(t, err)
	assert.Equal(t, "0", id)
}

func TestSession_CheckpointAfterFlush(t *testing.T) {
	ctx := context.Background()
	location := filepath.Join(t.TempDir(), "state.json")
	s := newTestSession().WithCheckpoint(location)

	for _, line := range []string{"start random", `final {"x": 1}`, "flush"} {
		_, err := s.Exec(ctx, line)
		require.NoError(t, err)
	}

	resumed := newTestSession().WithCheckpoint(location)
	out, err := resumed.Exec(ctx, "load")
	require.NoError(t, err)
	assert.Equal(t, "restored 1 configs from "+location, out)

	out, err = resumed.Exec(ctx, "status")
	require.NoError(t, err)
	assert.Equal(t, "idle, next config ID 1", out)

	_, err = resumed.Exec(ctx, "start BO")
	require.NoError(t, err)
	out, err = resumed.Exec(ctx, "status")
	require.NoError(t, err)
	assert.Equal(t, "open BO block, next config ID 1", out)

	_, err = resumed.Exec(ctx, "load")
	assert.ErrorIs(t, err, hpolog.ErrBlockOpen)
}

func TestSession_SaveExplicitLocation(t *testing.T) {
	ctx := context.Background()
	location := filepath.Join(t.TempDir(), "state.yaml")
	s := newTestSession()

	out, err := s.Exec(ctx, "save "+location)
	require.NoError(t, err)
	assert.Equal(t, "saved 0 configs to "+location, out)
}

func TestHelp(t *testing.T) {
	help := Help()

	for _, name := range Commands() {
		assert.Contains(t, help, name)
	}
	assert.Equal(t, len(Commands()), strings.Count(help, "\n")+1)
}

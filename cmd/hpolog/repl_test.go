package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rickchristie/hpolog"
	"github.com/rickchristie/hpolog/checkpoint"
	"github.com/rickchristie/hpolog/internal/tt"
)

// savedSnapshot writes a checkpoint holding n configs {"x": 0} .. {"x": n-1}.
func savedSnapshot(t *testing.T, location string, n int) {
	t.Helper()
	p := hpolog.NewPrinter()
	for i := 0; i < n; i++ {
		require.NoError(t, p.StartBlock(hpolog.KindRandom))
		require.NoError(t, p.SetFinalConfig(tt.Config("x", i)))
		_, err := p.Flush()
		require.NoError(t, err)
	}
	require.NoError(t, checkpoint.NewStore().Save(context.Background(), location, p.ExportState()))
}

func TestRestoreCheckpoint(t *testing.T) {
	dir := t.TempDir()
	saved := filepath.Join(dir, "saved.json")
	savedSnapshot(t, saved, 2)
	corrupt := filepath.Join(dir, "corrupt.json")
	require.NoError(t, os.WriteFile(corrupt, []byte(`{"counter": 1, "table": {}}`), 0644))

	type expected struct {
		counter int
		msg     string
		err     error
	}

	tests := []struct {
		name     string
		input    string
		expected expected
	}{
		{
			name:     "no checkpoint configured",
			input:    "",
			expected: expected{},
		},
		{
			name:     "missing file starts fresh",
			input:    filepath.Join(dir, "missing.json"),
			expected: expected{msg: "starting fresh"},
		},
		{
			name:     "saved file is restored",
			input:    saved,
			expected: expected{counter: 2, msg: "restored 2 configs"},
		},
		{
			name:     "corrupt file fails",
			input:    corrupt,
			expected: expected{err: hpolog.ErrInvalidSnapshot},
		},
		{
			name:     "unreadable remote fails instead of starting fresh",
			input:    "gs://runs/state.json",
			expected: expected{err: checkpoint.ErrNoGCSClient},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := hpolog.NewPrinter()

			msg, err := restoreCheckpoint(context.Background(), p, checkpoint.NewStore(), tc.input)

			if tc.expected.err != nil {
				assert.ErrorIs(t, err, tc.expected.err)
				assert.Zero(t, p.Registry().Counter())
				return
			}
			require.NoError(t, err)
			assert.Contains(t, msg, tc.expected.msg)
			assert.Equal(t, tc.expected.counter, p.Registry().Counter())
		})
	}
}

func TestApp_Session(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	state := filepath.Join(dir, "state.json")
	reports := filepath.Join(dir, "reports.log")
	savedSnapshot(t, state, 2)

	opts := DefaultOptions()
	opts.Checkpoint = state
	opts.ReportFile = reports
	opts.ResourceAttr = "epochs"
	opts.ResourceMin = 1
	opts.ResourceMax = 81
	a := &app{opts: opts, logger: zap.NewNop()}

	var out bytes.Buffer
	session, closeSink, err := a.session(ctx, checkpoint.NewStore(), &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "restored 2 configs")

	for _, line := range []string{"start random", `final {"x": 7}`, "flush"} {
		_, err := session.Exec(ctx, line)
		require.NoError(t, err, line)
	}

	id, err := session.Exec(ctx, `id {"x": 7, "epochs": 27}`)
	require.NoError(t, err)
	assert.Equal(t, "2:27", id)
	_, err = session.Exec(ctx, `id {"x": 7, "epochs": 500}`)
	assert.ErrorIs(t, err, hpolog.ErrInvalidResource)

	require.NoError(t, closeSink())

	data, err := os.ReadFile(reports)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[2: random]\nx: 7\n\n")

	snap, err := checkpoint.NewStore().Load(ctx, state)
	require.NoError(t, err)
	assert.Equal(t, 3, snap.Counter)
}

func TestApp_SessionStartsFresh(t *testing.T) {
	ctx := context.Background()
	state := filepath.Join(t.TempDir(), "run", "state.yaml")

	opts := DefaultOptions()
	opts.Checkpoint = state
	a := &app{opts: opts, logger: zap.NewNop()}

	var out bytes.Buffer
	session, closeSink, err := a.session(ctx, checkpoint.NewStore(), &out)
	require.NoError(t, err)
	defer closeSink()
	assert.Contains(t, out.String(), "starting fresh")

	for _, line := range []string{"start random", `final {"x": 1}`, "flush"} {
		_, err := session.Exec(ctx, line)
		require.NoError(t, err, line)
	}

	snap, err := checkpoint.NewStore().Load(ctx, state)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Counter)
}

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOptions(t *testing.T) {
	type expected struct {
		opts Options
		err  bool
	}

	tests := []struct {
		name     string
		input    string
		expected expected
	}{
		{
			name: "full file",
			input: `
resource_attr: epochs
resource_min: 1
resource_max: 81
checkpoint: run/state.yaml
log_level: debug
log_format: json
`,
			expected: expected{opts: Options{
				ResourceAttr: "epochs",
				ResourceMin:  1,
				ResourceMax:  81,
				Checkpoint:   "run/state.yaml",
				LogLevel:     "debug",
				LogFormat:    "json",
				HistoryFile:  ".hpolog_history",
			}},
		},
		{
			name:     "defaults kept",
			input:    "checkpoint: state.json\n",
			expected: expected{opts: func() Options { o := DefaultOptions(); o.Checkpoint = "state.json"; return o }()},
		},
		{
			name:     "bad level",
			input:    "log_level: loud\n",
			expected: expected{err: true},
		},
		{
			name:     "bad format",
			input:    "log_format: xml\n",
			expected: expected{err: true},
		},
		{
			name:     "range without attribute",
			input:    "resource_max: 10\n",
			expected: expected{err: true},
		},
		{
			name:     "inverted range",
			input:    "resource_attr: epochs\nresource_min: 9\nresource_max: 3\n",
			expected: expected{err: true},
		},
		{
			name:     "not yaml",
			input:    "log_level: [\n",
			expected: expected{err: true},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "hpolog.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tc.input), 0644))

			opts, err := LoadOptions(path)
			if tc.expected.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected.opts, opts)
		})
	}
}

func TestLoadOptions_NoFile(t *testing.T) {
	opts, err := LoadOptions("")

	require.NoError(t, err)
	assert.Equal(t, DefaultOptions(), opts)
}

func TestOptions_Extractor(t *testing.T) {
	assert.Nil(t, DefaultOptions().Extractor())

	opts := DefaultOptions()
	opts.ResourceAttr = "epochs"
	opts.ResourceMin, opts.ResourceMax = 1, 27
	attr := opts.Extractor()

	require.NotNil(t, attr)
	assert.Equal(t, "epochs", attr.ResourceName())
	lo, hi, ok := attr.Range()
	assert.True(t, ok)
	assert.Equal(t, int64(1), lo)
	assert.Equal(t, int64(27), hi)
}

func TestOptions_Logger(t *testing.T) {
	for _, format := range []string{"console", "json"} {
		opts := DefaultOptions()
		opts.LogFormat = format

		logger, err := opts.Logger()
		require.NoError(t, err)
		assert.NotNil(t, logger)
	}
}

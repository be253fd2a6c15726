package checkpoint

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rickchristie/hpolog"
)

func testSnapshot() hpolog.Snapshot {
	return hpolog.Snapshot{
		Counter: 3,
		Table: map[string]int{
			`{"lr":0.1,"opt":"adam"}`:  0,
			`{"lr":0.01,"opt":"adam"}`: 1,
			`{"lr":0.1,"opt":"sgd"}`:   2,
		},
	}
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	for _, f := range []Format{FormatJSON, FormatYAML} {
		t.Run(f.String(), func(t *testing.T) {
			data, err := Encode(testSnapshot(), f)
			require.NoError(t, err)

			got, err := Decode(data, f)
			require.NoError(t, err)

			if diff := cmp.Diff(testSnapshot(), got); diff != "" {
				t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEncode_EmptySnapshot(t *testing.T) {
	for _, f := range []Format{FormatJSON, FormatYAML} {
		t.Run(f.String(), func(t *testing.T) {
			data, err := Encode(hpolog.Snapshot{}, f)
			require.NoError(t, err)

			got, err := Decode(data, f)
			require.NoError(t, err)
			assert.Equal(t, 0, got.Counter)
			assert.Empty(t, got.Table)
		})
	}
}

func TestDecode_Rejects(t *testing.T) {
	type input struct {
		format Format
		data   string
	}

	tests := []struct {
		name             string
		input            input
		expectValidation bool
		expected         error
	}{
		{
			name:             "unknown field",
			input:            input{FormatJSON, `{"counter": 0, "table": {}, "extra": 1}`},
			expectValidation: true,
		},
		{
			name:             "missing table",
			input:            input{FormatJSON, `{"counter": 0}`},
			expectValidation: true,
		},
		{
			name:             "negative counter",
			input:            input{FormatYAML, "counter: -1\ntable: {}\n"},
			expectValidation: true,
		},
		{
			name:             "string id",
			input:            input{FormatYAML, "counter: 1\ntable:\n  '{\"x\":1}': zero\n"},
			expectValidation: true,
		},
		{
			name:             "fractional counter",
			input:            input{FormatJSON, `{"counter": 1.5, "table": {}}`},
			expectValidation: true,
		},
		{
			name:     "counter does not match table",
			input:    input{FormatJSON, `{"counter": 2, "table": {"{\"x\":1}": 0}}`},
			expected: hpolog.ErrInvalidSnapshot,
		},
		{
			name:     "malformed yaml",
			input:    input{FormatYAML, "counter: [1\n"},
			expected: ErrDecode,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode([]byte(tc.input.data), tc.input.format)
			require.Error(t, err)

			if tc.expectValidation {
				var ve *ValidationError
				assert.True(t, errors.As(err, &ve), "expected ValidationError, got %v", err)
				return
			}
			assert.ErrorIs(t, err, tc.expected)
		})
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		input    string
		expected Format
		err      error
	}{
		{input: "state.json", expected: FormatJSON},
		{input: "dir/state.YAML", expected: FormatYAML},
		{input: "state.yml", expected: FormatYAML},
		{input: "gs://bucket/run/state.json", expected: FormatJSON},
		{input: "state.pkl", err: ErrUnknownFormat},
		{input: "state", err: ErrUnknownFormat},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			f, err := FormatFromPath(tc.input)
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, f)
		})
	}
}

func TestSnapshotSchema_Raw(t *testing.T) {
	raw := SnapshotSchema.Raw()

	assert.Equal(t, "object", raw["type"])
	assert.Equal(t, []string{"counter", "table"}, raw["required"])
}

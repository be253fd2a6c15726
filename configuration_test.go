package hpolog_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rickchristie/hpolog"
	"github.com/rickchristie/hpolog/internal/tt"
	"github.com/rickchristie/hpolog/resource"
)

func TestCanonicalize(t *testing.T) {
	type input struct {
		cfg hpolog.Configuration
		ext hpolog.Extractor
	}

	type expected struct {
		key      string
		base     hpolog.Configuration
		resource any
		err      error
	}

	tests := []struct {
		name     string
		input    input
		expected expected
	}{
		{
			name:  "sorted by name",
			input: input{cfg: tt.Config("y", 2, "x", 1)},
			expected: expected{
				key:  `{"x":1,"y":2}`,
				base: tt.Config("y", 2, "x", 1),
			},
		},
		{
			name:  "mixed scalar types",
			input: input{cfg: tt.Config("lr", 0.5, "opt", "adam", "bn", true)},
			expected: expected{
				key:  `{"bn":true,"lr":0.5,"opt":"adam"}`,
				base: tt.Config("lr", 0.5, "opt", "adam", "bn", true),
			},
		},
		{
			name:  "empty config",
			input: input{cfg: hpolog.Configuration{}},
			expected: expected{
				key:  `{}`,
				base: hpolog.Configuration{},
			},
		},
		{
			name: "resource removed",
			input: input{
				cfg: tt.Config("x", 1, "epochs", 5),
				ext: resource.NewAttribute("epochs"),
			},
			expected: expected{
				key:      `{"x":1}`,
				base:     tt.Config("x", 1),
				resource: 5,
			},
		},
		{
			name: "resource attribute absent",
			input: input{
				cfg: tt.Config("x", 1),
				ext: resource.NewAttribute("epochs"),
			},
			expected: expected{
				key:  `{"x":1}`,
				base: tt.Config("x", 1),
			},
		},
		{
			name: "resource kept without extractor",
			input: input{
				cfg: tt.Config("x", 1, "epochs", 5),
			},
			expected: expected{
				key:  `{"epochs":5,"x":1}`,
				base: tt.Config("x", 1, "epochs", 5),
			},
		},
		{
			name:  "integral float keeps its fraction",
			input: input{cfg: tt.Config("x", 1.0, "y", float32(2))},
			expected: expected{
				key:  `{"x":1.0,"y":2.0}`,
				base: tt.Config("x", 1.0, "y", float32(2)),
			},
		},
		{
			name:  "float exponent",
			input: input{cfg: tt.Config("lr", 1e-7)},
			expected: expected{
				key:  `{"lr":1e-07}`,
				base: tt.Config("lr", 1e-7),
			},
		},
		{
			name: "resource in range",
			input: input{
				cfg: tt.Config("x", 1, "epochs", 27),
				ext: resource.NewAttribute("epochs").WithRange(1, 81),
			},
			expected: expected{
				key:      `{"x":1}`,
				base:     tt.Config("x", 1),
				resource: 27,
			},
		},
		{
			name: "resource out of range",
			input: input{
				cfg: tt.Config("x", 1, "epochs", 5000),
				ext: resource.NewAttribute("epochs").WithRange(1, 81),
			},
			expected: expected{err: resource.ErrOutOfRange},
		},
		{
			name: "fractional resource",
			input: input{
				cfg: tt.Config("x", 1, "epochs", 2.5),
				ext: resource.NewAttribute("epochs").WithRange(1, 81),
			},
			expected: expected{err: hpolog.ErrInvalidResource},
		},
		{
			name:     "non-scalar value",
			input:    input{cfg: tt.Config("layers", []int{1, 2})},
			expected: expected{err: hpolog.ErrUnsupportedValue},
		},
		{
			name:     "NaN value",
			input:    input{cfg: tt.Config("lr", math.NaN())},
			expected: expected{err: hpolog.ErrUnsupportedValue},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			key, base, r, err := hpolog.Canonicalize(tc.input.cfg, tc.input.ext)

			if tc.expected.err != nil {
				assert.ErrorIs(t, err, tc.expected.err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.expected.key, key)
			assert.Equal(t, tc.expected.base, base)
			assert.Equal(t, tc.expected.resource, r)
		})
	}
}

func TestCanonicalize_DoesNotModifyInput(t *testing.T) {
	cfg := tt.Config("x", 1, "epochs", 5)

	_, base, _, err := hpolog.Canonicalize(cfg, resource.NewAttribute("epochs"))

	assert.NoError(t, err)
	assert.Equal(t, tt.Config("x", 1), base)
	assert.Equal(t, tt.Config("x", 1, "epochs", 5), cfg)
}

func TestConfiguration_Lines(t *testing.T) {
	cfg := tt.Config("lr", 0.001, "opt", "sgd", "depth", 3)

	assert.Equal(t, []string{"depth: 3", "lr: 0.001", "opt: sgd"}, cfg.Lines())
}

func TestFormatVector(t *testing.T) {
	tests := []struct {
		name     string
		input    []float64
		expected string
	}{
		{name: "empty", input: nil, expected: "[]"},
		{name: "single", input: []float64{0.5}, expected: "[0.5]"},
		{name: "several", input: []float64{1, -2.25, 1e-7}, expected: "[1 -2.25 1e-07]"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, hpolog.FormatVector(tc.input))
		})
	}
}

func TestFormatMapping(t *testing.T) {
	params := map[string]any{
		"noise":       0.01,
		"kernel":      "matern",
		"lengthscale": []float64{1, 2},
	}

	assert.Equal(t,
		"{kernel: matern, lengthscale: [1 2], noise: 0.01}",
		hpolog.FormatMapping(params))
}

func TestFormatMatrix(t *testing.T) {
	assert.Equal(t, "[0.1 0.2]\n[0.3 0.4]",
		hpolog.FormatMatrix([][]float64{{0.1, 0.2}, {0.3, 0.4}}))
}

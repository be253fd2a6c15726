package tt

import (
	"strings"
	"testing"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/stretchr/testify/assert"

	"github.com/rickchristie/hpolog"
)

// -----------------------------------------------------------------------------
// Report Assertions
// -----------------------------------------------------------------------------

// Lines joins lines with newlines. Use it to spell out expected report text one
// line per argument.
func Lines(lines ...string) string {
	return strings.Join(lines, "\n")
}

// AssertText compares report text and prints a unified diff on mismatch.
func AssertText(t *testing.T, expected, actual string) bool {
	t.Helper()
	if expected == actual {
		return true
	}
	diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(expected + "\n"),
		B:        difflib.SplitLines(actual + "\n"),
		FromFile: "expected",
		ToFile:   "actual",
		Context:  2,
	})
	return assert.Fail(t, "report text mismatch", "\n%s", diff)
}

// AssertReport checks the header fields and text of a report.
func AssertReport(
	t *testing.T,
	expectedID int,
	expectedKind hpolog.Kind,
	expectedText string,
	actual hpolog.Report,
) {
	t.Helper()
	assert.Equal(t, expectedID, actual.ConfigID, "config id")
	assert.Equal(t, expectedKind, actual.Kind, "kind")
	AssertText(t, expectedText, actual.Text)
}

// -----------------------------------------------------------------------------
// Fixtures
// -----------------------------------------------------------------------------

// Config builds a configuration from alternating name/value arguments.
func Config(kv ...any) hpolog.Configuration {
	if len(kv)%2 != 0 {
		panic("tt.Config: odd number of arguments")
	}
	cfg := make(hpolog.Configuration, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		cfg[kv[i].(string)] = kv[i+1]
	}
	return cfg
}

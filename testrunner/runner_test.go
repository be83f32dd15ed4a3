package testrunner

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shibukawa/snappeg"
)

func TestRunAllPassing(t *testing.T) {
	runner := NewGrammarTestRunner(filepath.Join("testdata", "pass"))

	summary, err := runner.RunAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, summary.TotalTests)
	assert.Equal(t, 3, summary.PassedTests)
	assert.Equal(t, 0, summary.FailedTests)

	for _, result := range summary.Results {
		assert.True(t, result.Success, result.TestName)
		assert.Equal(t, filepath.Join("testdata", "pass", "calc.peg.md"), result.File)
	}
}

func TestRunAllFailing(t *testing.T) {
	runner := NewGrammarTestRunner(filepath.Join("testdata", "fail"))

	summary, err := runner.RunAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 6, summary.TotalTests)
	assert.Equal(t, 1, summary.PassedTests)
	assert.Equal(t, 5, summary.FailedTests)

	require.Len(t, summary.Results, 6)
	assert.ErrorIs(t, summary.Results[0].Error, snappeg.ErrGrammar)

	byName := make(map[string]TestResult)
	for _, result := range summary.Results[1:] {
		byName[result.TestName] = result
	}

	assert.ErrorIs(t, byName["wrong output"].Error, ErrOutputMismatch)
	assert.Equal(t, "- <13>\n+ <12>\n", byName["wrong output"].Diff)
	assert.ErrorIs(t, byName["unexpected error"].Error, ErrUnexpectedError)
	assert.ErrorIs(t, byName["missing error"].Error, ErrUnexpectedOutput)
	assert.ErrorIs(t, byName["wrong error message"].Error, ErrErrorMismatch)
	assert.True(t, byName["passes"].Success)
	assert.Greater(t, byName["wrong output"].Line, 0)
}

func TestRunPattern(t *testing.T) {
	runner := NewGrammarTestRunner(filepath.Join("testdata", "fail"))
	runner.SetRunPattern("mis")

	var out bytes.Buffer

	runner.SetVerbose(true)
	runner.SetOutput(&out)

	summary, err := runner.RunAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, summary.TotalTests)
	assert.Contains(t, out.String(), "Found 1 grammar documents")
	assert.Contains(t, out.String(), "--- FAIL: mismatch.peg.md/wrong output")
	assert.Contains(t, out.String(), "--- PASS: mismatch.peg.md/passes")
}

func TestRunAllCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewGrammarTestRunner(filepath.Join("testdata", "pass")).RunAll(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestPrintSummary(t *testing.T) {
	summary := &TestSummary{}
	summary.add(TestResult{TestName: "ok", Success: true})
	summary.add(TestResult{
		File:     "calc.peg.md",
		TestName: "sum",
		Line:     12,
		Error:    ErrOutputMismatch,
		Diff:     "- 3\n+ 4\n",
	})

	var out bytes.Buffer
	PrintSummary(&out, summary)

	assert.Contains(t, out.String(), "Tests: 2 total, 1 passed, 1 failed")
	assert.Contains(t, out.String(), "  sum (calc.peg.md:12)\n    Error: output mismatch\n    - 3\n    + 4\n")
}

func TestLineDiff(t *testing.T) {
	tests := []struct {
		name     string
		expected string
		actual   string
		diff     string
	}{
		{name: "changed line", expected: "a\nb\n", actual: "a\nc\n", diff: "  a\n- b\n+ c\n"},
		{name: "added line", expected: "a\n", actual: "a\nb\n", diff: "  a\n+ b\n"},
		{name: "equal", expected: "a\n", actual: "a\n", diff: "  a\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.diff, lineDiff(tt.expected, tt.actual))
		})
	}
}

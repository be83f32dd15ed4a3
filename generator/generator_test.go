package generator

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"

	"github.com/shibukawa/snappeg"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()

	err := os.MkdirAll(filepath.Dir(path), 0o755)
	assert.NoError(t, err)

	err = os.WriteFile(path, []byte(content), 0o644)
	assert.NoError(t, err)
}

func readFile(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	assert.NoError(t, err)

	return string(data)
}

const document = `---
name: number_list
package: lists
---
# Numbers

## Grammar

~~~peg
main = n:[0-9]+ (',' [0-9]+)* -> $(n)
~~~
`

func TestTargetPath(t *testing.T) {
	tests := []struct {
		source   string
		suffix   string
		expected string
	}{
		{filepath.Join("g", "calc.peg"), "", filepath.Join("g", "calc.peg.go")},
		{filepath.Join("g", "calc.peg.md"), ".go", filepath.Join("g", "calc.peg.go")},
		{filepath.Join("g", "Calc.PEG"), "_gen.go", filepath.Join("g", "Calc.peg_gen.go")},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			assert.Equal(t, tt.expected, TargetPath(tt.source, tt.suffix))
		})
	}
}

func TestIsGrammarFile(t *testing.T) {
	assert.True(t, IsGrammarFile("calc.peg"))
	assert.True(t, IsGrammarFile("dir/calc.peg.md"))
	assert.False(t, IsGrammarFile("calc.peg.go"))
	assert.False(t, IsGrammarFile("README.md"))
}

func TestRun(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "calc")
	writeFile(t, filepath.Join(dir, "digits.peg"), "main = [0-9]+ -> $(1)$(:endl)\n")
	writeFile(t, filepath.Join(dir, "sub", "numbers.peg.md"), document)
	writeFile(t, filepath.Join(dir, "notes.md"), "# not a grammar\n")

	results, err := Run(dir, Options{Format: true})
	assert.NoError(t, err)
	assert.Equal(t, 2, len(results))

	for _, result := range results {
		assert.Equal(t, StatusGenerated, result.Status)
		assert.NoError(t, result.Err)
	}

	digits := readFile(t, filepath.Join(dir, "digits.peg.go"))
	assert.True(t, strings.HasPrefix(digits, "// Code generated by snappeg from digits.peg. DO NOT EDIT."))
	assert.Contains(t, digits, "package calc\n")
	assert.Contains(t, digits, "func DigitsRules() parser.RuleSet {")

	numbers := readFile(t, filepath.Join(dir, "sub", "numbers.peg.go"))
	assert.Contains(t, numbers, "package lists\n")
	assert.Contains(t, numbers, "func NumberListRules() parser.RuleSet {")

	// nothing changed
	results, err = Run(dir, Options{Format: true})
	assert.NoError(t, err)

	for _, result := range results {
		assert.Equal(t, StatusUpToDate, result.Status)
	}

	// touched source
	future := time.Now().Add(time.Hour)
	err = os.Chtimes(filepath.Join(dir, "digits.peg"), future, future)
	assert.NoError(t, err)

	results, err = Run(dir, Options{Format: true})
	assert.NoError(t, err)
	assert.Equal(t, StatusGenerated, results[0].Status)
	assert.Equal(t, StatusUpToDate, results[1].Status)

	// forced
	results, err = Run(dir, Options{Force: true, Package: "override"})
	assert.NoError(t, err)
	assert.Equal(t, StatusGenerated, results[1].Status)
	assert.Contains(t, readFile(t, filepath.Join(dir, "sub", "numbers.peg.go")), "package override\n")
}

func TestRunReportsFailuresPerFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "mixed")
	writeFile(t, filepath.Join(dir, "bad.peg"), "main = missing\n")
	writeFile(t, filepath.Join(dir, "good.peg"), "main = 'a'\n")

	results, err := Run(dir, Options{})
	assert.NoError(t, err)
	assert.Equal(t, 2, len(results))

	assert.Equal(t, StatusFailed, results[0].Status)
	assert.True(t, errors.Is(results[0].Err, snappeg.ErrGrammar))
	_, err = os.Stat(filepath.Join(dir, "bad.peg.go"))
	assert.True(t, os.IsNotExist(err))

	assert.Equal(t, StatusGenerated, results[1].Status)
	assert.Contains(t, readFile(t, filepath.Join(dir, "good.peg.go")), "package mixed")
}

func TestRunSingleFile(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "single.peg")
	writeFile(t, source, "main = 'a'\n")

	results, err := Run(source, Options{Package: "single"})
	assert.NoError(t, err)
	assert.Equal(t, 1, len(results))
	assert.Equal(t, filepath.Join(dir, "single.peg.go"), results[0].Target)
}

func TestRunWithoutGrammarFiles(t *testing.T) {
	_, err := Run(t.TempDir(), Options{})
	assert.True(t, errors.Is(err, ErrNoGrammarFiles))
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "generated", StatusGenerated.String())
	assert.Equal(t, "up to date", StatusUpToDate.String())
	assert.Equal(t, "failed", StatusFailed.String())
}

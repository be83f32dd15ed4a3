package generator

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
)

func TestWatcherRegeneratesChangedGrammar(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "watched")
	err := os.MkdirAll(dir, 0o755)
	assert.NoError(t, err)

	w, err := NewWatcher(dir)
	assert.NoError(t, err)

	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	generated := make(chan Result, 16)
	done := make(chan error, 1)

	go func() {
		done <- w.Run(ctx, Options{}, func(result Result, err error) {
			if err == nil && result.Status == StatusGenerated {
				generated <- result
			}
		})
	}()

	source := filepath.Join(dir, "words.peg")
	writeFile(t, source, "main = [a-z]+\n")

	select {
	case result := <-generated:
		assert.Equal(t, source, result.Source)
		assert.Contains(t, readFile(t, result.Target), "func WordsRules() parser.RuleSet {")
	case <-time.After(5 * time.Second):
		t.Fatal("grammar was not regenerated")
	}

	cancel()
	assert.NoError(t, <-done)
}

func TestWatcherSingleFile(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "words.peg")
	other := filepath.Join(dir, "other.peg")
	writeFile(t, source, "main = [a-z]+\n")

	w, err := NewWatcher(source)
	assert.NoError(t, err)

	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	generated := make(chan Result, 16)
	done := make(chan error, 1)

	go func() {
		done <- w.Run(ctx, Options{}, func(result Result, err error) {
			if err == nil && result.Status == StatusGenerated {
				generated <- result
			}
		})
	}()

	writeFile(t, other, "main = [0-9]+\n")
	writeFile(t, source, "main = [a-z]+ eof\n")

	select {
	case result := <-generated:
		assert.Equal(t, source, result.Source)
		assert.Contains(t, readFile(t, result.Target), "func WordsRules() parser.RuleSet {")
	case <-time.After(5 * time.Second):
		t.Fatal("grammar was not regenerated")
	}

	_, err = os.Stat(TargetPath(other, ".go"))
	assert.True(t, os.IsNotExist(err), "other grammar in the directory was regenerated")

	cancel()
	assert.NoError(t, <-done)
}

func TestNewWatcherMissingInput(t *testing.T) {
	_, err := NewWatcher(filepath.Join(t.TempDir(), "none.peg"))
	assert.Error(t, err)
}

// Package generator turns grammar files (*.peg and *.peg.md) into Go source
// files that return the compiled rule set, regenerating only stale outputs.
package generator

import (
	"bytes"
	"errors"
	"fmt"
	"go/token"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/shibukawa/snappeg"
	"github.com/shibukawa/snappeg/langs/gogen"
	"github.com/shibukawa/snappeg/markdownparser"
)

// File name suffixes of grammar sources
const (
	GrammarSuffix  = ".peg"
	DocumentSuffix = ".peg.md"
)

// ErrNoGrammarFiles is returned when the input holds no grammar source.
var ErrNoGrammarFiles = errors.New("no grammar files found")

// Options controls code generation
type Options struct {
	OutputSuffix  string // Appended to the grammar name, ".go" when empty
	Package       string // Overrides the package name of every file
	Force         bool   // Regenerate even when the output is up to date
	Format        bool   // Run gofmt on the output
	CodeBlockLang string // Info string of grammar blocks in documents
}

// Status is the outcome of processing one grammar file
type Status int

const (
	StatusGenerated Status = iota
	StatusUpToDate
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusGenerated:
		return "generated"
	case StatusUpToDate:
		return "up to date"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result describes one processed grammar file
type Result struct {
	Source string
	Target string
	Status Status
	Err    error
}

// IsGrammarFile reports whether path names a grammar source
func IsGrammarFile(path string) bool {
	name := strings.ToLower(filepath.Base(path))
	return strings.HasSuffix(name, GrammarSuffix) || strings.HasSuffix(name, DocumentSuffix)
}

// GrammarName returns the file name without its grammar suffix
func GrammarName(path string) string {
	name := filepath.Base(path)
	for _, suffix := range []string{DocumentSuffix, GrammarSuffix} {
		if strings.HasSuffix(strings.ToLower(name), suffix) {
			return name[:len(name)-len(suffix)]
		}
	}

	return name
}

// TargetPath returns the Go file generated next to a grammar source:
// calc.peg and calc.peg.md both become calc.peg.go.
func TargetPath(source, suffix string) string {
	if suffix == "" {
		suffix = ".go"
	}

	return filepath.Join(filepath.Dir(source), GrammarName(source)+GrammarSuffix+suffix)
}

// IsStale reports whether target is missing or older than source
func IsStale(source, target string) (bool, error) {
	sourceInfo, err := os.Stat(source)
	if err != nil {
		return false, err
	}

	targetInfo, err := os.Stat(target)
	if os.IsNotExist(err) {
		return true, nil
	}

	if err != nil {
		return false, err
	}

	return sourceInfo.ModTime().After(targetInfo.ModTime()), nil
}

// FindGrammarFiles finds all grammar sources below dir in lexical order
func FindGrammarFiles(dir string) ([]string, error) {
	var files []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			if path != dir && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}

			return nil
		}

		if IsGrammarFile(path) {
			files = append(files, path)
		}

		return nil
	})

	sort.Strings(files)

	return files, err
}

// Run processes every grammar file below input, which may also be a single
// file. A failure in one file does not stop the others; it is reported in
// its Result.
func Run(input string, opts Options) ([]Result, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, fmt.Errorf("input does not exist: %w", err)
	}

	files := []string{input}
	if info.IsDir() {
		files, err = FindGrammarFiles(input)
		if err != nil {
			return nil, fmt.Errorf("failed to process input directory: %w", err)
		}
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoGrammarFiles, input)
	}

	results := make([]Result, 0, len(files))
	for _, file := range files {
		results = append(results, GenerateFile(file, opts))
	}

	return results, nil
}

// GenerateFile generates the Go file of one grammar source when it is stale
func GenerateFile(source string, opts Options) Result {
	result := Result{Source: source, Target: TargetPath(source, opts.OutputSuffix)}

	if !opts.Force {
		stale, err := IsStale(source, result.Target)
		if err != nil {
			result.Status, result.Err = StatusFailed, err
			return result
		}

		if !stale {
			result.Status = StatusUpToDate
			return result
		}
	}

	code, err := generateCode(source, opts)
	if err != nil {
		result.Status, result.Err = StatusFailed, err
		return result
	}

	if err := writeFileAtomic(result.Target, code); err != nil {
		result.Status, result.Err = StatusFailed, err
		return result
	}

	result.Status = StatusGenerated

	return result
}

func generateCode(source string, opts Options) ([]byte, error) {
	content, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", source, err)
	}

	grammar := string(content)
	name := GrammarName(source)
	pkg := opts.Package

	if strings.HasSuffix(strings.ToLower(source), DocumentSuffix) {
		mdOpts := []markdownparser.Option{}
		if opts.CodeBlockLang != "" {
			mdOpts = append(mdOpts, markdownparser.WithCodeBlockLang(opts.CodeBlockLang))
		}

		doc, err := markdownparser.Parse(bytes.NewReader(content), mdOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to parse markdown %s: %w", source, err)
		}

		grammar = doc.Grammar

		if doc.FrontMatter.Name != "" {
			name = doc.FrontMatter.Name
		}

		if pkg == "" {
			pkg = doc.FrontMatter.Package
		}
	}

	if pkg == "" {
		pkg = packageFromDir(source)
	}

	rules, err := snappeg.Compile(grammar)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}

	var buf bytes.Buffer

	g := gogen.New(rules,
		gogen.WithPackageName(pkg),
		gogen.WithGrammarName(name),
		gogen.WithSource(filepath.Base(source)),
		gogen.WithFormat(opts.Format),
	)

	if err := g.Generate(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate Go code for %s: %w", source, err)
	}

	return buf.Bytes(), nil
}

// packageFromDir infers the package name from the directory of source
func packageFromDir(source string) string {
	abs, err := filepath.Abs(filepath.Dir(source))
	if err != nil {
		return "grammar"
	}

	name := strings.ToLower(strings.NewReplacer("-", "_", ".", "_").Replace(filepath.Base(abs)))
	if !token.IsIdentifier(name) || token.Lookup(name).IsKeyword() {
		return "grammar"
	}

	return name
}

// writeFileAtomic writes data to a temporary file next to path and renames
// it into place, so readers never observe a partial file.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".snappeg-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)

		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}

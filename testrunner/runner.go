// Package testrunner runs the test cases embedded in literate grammar
// documents (*.peg.md).
package testrunner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shibukawa/snappeg"
	"github.com/shibukawa/snappeg/ast"
	"github.com/shibukawa/snappeg/markdownparser"
	"github.com/shibukawa/snappeg/parser"
)

// DocumentSuffix is the file name suffix of literate grammar documents.
const DocumentSuffix = ".peg.md"

var (
	ErrOutputMismatch   = errors.New("output mismatch")
	ErrUnexpectedError  = errors.New("unexpected parse error")
	ErrUnexpectedOutput = errors.New("expected parse error but succeeded")
	ErrErrorMismatch    = errors.New("parse error does not contain expected message")
)

// GrammarTestRunner manages test execution of grammar documents
type GrammarTestRunner struct {
	projectRoot   string
	verbose       bool
	runPattern    string
	codeBlockLang string
	resolver      ast.FuncResolver
	output        io.Writer
}

// NewGrammarTestRunner creates a new test runner for the documents below projectRoot
func NewGrammarTestRunner(projectRoot string) *GrammarTestRunner {
	return &GrammarTestRunner{
		projectRoot:   projectRoot,
		codeBlockLang: markdownparser.DefaultCodeBlockLang,
		output:        os.Stdout,
	}
}

// SetVerbose enables or disables verbose output
func (tr *GrammarTestRunner) SetVerbose(verbose bool) {
	tr.verbose = verbose
}

// SetRunPattern sets the document name prefix filter
func (tr *GrammarTestRunner) SetRunPattern(pattern string) {
	tr.runPattern = pattern
}

// SetCodeBlockLang sets the info string of grammar code blocks
func (tr *GrammarTestRunner) SetCodeBlockLang(lang string) {
	tr.codeBlockLang = lang
}

// SetResolver sets the template functions shared by all documents
func (tr *GrammarTestRunner) SetResolver(fr ast.FuncResolver) {
	tr.resolver = fr
}

// SetOutput sets the writer for verbose progress output
func (tr *GrammarTestRunner) SetOutput(w io.Writer) {
	tr.output = w
}

// TestResult represents the result of a single test case
type TestResult struct {
	File     string
	TestName string
	Line     int
	Success  bool
	Duration time.Duration
	Diff     string
	Error    error
}

// TestSummary represents the summary of test execution
type TestSummary struct {
	TotalTests    int
	PassedTests   int
	FailedTests   int
	TotalDuration time.Duration
	Results       []TestResult
}

func (s *TestSummary) add(result TestResult) {
	s.TotalTests++
	if result.Success {
		s.PassedTests++
	} else {
		s.FailedTests++
	}

	s.Results = append(s.Results, result)
}

// RunAll executes the test cases of every grammar document
func (tr *GrammarTestRunner) RunAll(ctx context.Context) (*TestSummary, error) {
	files, err := tr.findDocuments()
	if err != nil {
		return nil, fmt.Errorf("failed to find grammar documents: %w", err)
	}

	if tr.verbose {
		fmt.Fprintf(tr.output, "Found %d grammar documents\n", len(files))
	}

	summary := &TestSummary{}
	startTime := time.Now()

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		results, err := tr.RunFile(file)
		if err != nil {
			// A document that cannot be compiled counts as one failed test
			summary.add(TestResult{File: file, TestName: filepath.Base(file), Error: err})
			continue
		}

		for _, result := range results {
			summary.add(result)

			if tr.verbose {
				status := "PASS"
				if !result.Success {
					status = "FAIL"
				}

				fmt.Fprintf(tr.output, "--- %s: %s/%s (%.3fs)\n", status, filepath.Base(file), result.TestName, result.Duration.Seconds())
			}
		}
	}

	summary.TotalDuration = time.Since(startTime)

	return summary, nil
}

// RunFile runs the test cases of one grammar document
func (tr *GrammarTestRunner) RunFile(path string) ([]TestResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	doc, err := markdownparser.Parse(file, markdownparser.WithCodeBlockLang(tr.codeBlockLang))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	results, err := RunDocument(doc, tr.resolver)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	for i := range results {
		results[i].File = path
	}

	return results, nil
}

// RunDocument compiles the grammar of doc and runs its test cases. Functions
// declared in the front matter take precedence over fr.
func RunDocument(doc *markdownparser.GrammarDocument, fr ast.FuncResolver) ([]TestResult, error) {
	rules, err := snappeg.Compile(doc.Grammar)
	if err != nil {
		return nil, err
	}

	resolver := documentResolver(doc.FrontMatter.Functions, fr)

	var opts []parser.Option
	if doc.FrontMatter.StartRule != "" {
		opts = append(opts, parser.WithStartRule(doc.FrontMatter.StartRule))
	}

	results := make([]TestResult, 0, len(doc.TestCases))

	for _, tc := range doc.TestCases {
		start := time.Now()
		result := TestResult{TestName: tc.Name, Line: tc.Line}
		result.Diff, result.Error = runTestCase(rules, tc, resolver, opts)
		result.Success = result.Error == nil
		result.Duration = time.Since(start)
		results = append(results, result)
	}

	return results, nil
}

func runTestCase(rules parser.RuleSet, tc markdownparser.TestCase, fr ast.FuncResolver, opts []parser.Option) (string, error) {
	tree, err := rules.Parse(tc.Input, opts...)
	if tc.ExpectError {
		if err == nil {
			return "", ErrUnexpectedOutput
		}

		if !strings.Contains(err.Error(), tc.Error) {
			return "", fmt.Errorf("%w: %s", ErrErrorMismatch, err)
		}

		return "", nil
	}

	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnexpectedError, err)
	}

	actual, err := tree.Render(fr)
	if err != nil {
		return "", err
	}

	expected := strings.TrimRight(tc.Output, "\n")
	actual = strings.TrimRight(actual, "\n")

	if expected != actual {
		return lineDiff(expected+"\n", actual+"\n"), ErrOutputMismatch
	}

	return "", nil
}

func documentResolver(functions map[string]string, fr ast.FuncResolver) ast.FuncResolver {
	if len(functions) == 0 {
		return fr
	}

	return ast.ResolverFunc(func(name string) (string, bool) {
		if v, ok := functions[name]; ok {
			return v, true
		}

		if fr != nil {
			return fr.Resolve(name)
		}

		return "", false
	})
}

// findDocuments finds grammar documents matching the run pattern
func (tr *GrammarTestRunner) findDocuments() ([]string, error) {
	var files []string

	err := walkAndProcessFiles(tr.projectRoot, func(p string) {
		name := filepath.Base(p)
		if !strings.HasSuffix(name, DocumentSuffix) {
			return
		}

		// Use prefix matching like Go's -run flag
		if strings.HasPrefix(strings.TrimSuffix(name, DocumentSuffix), tr.runPattern) {
			files = append(files, p)
		}
	})

	return files, err
}

// PrintSummary prints the test execution summary
func PrintSummary(w io.Writer, summary *TestSummary) {
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "=== Grammar Test Summary ===\n")
	fmt.Fprintf(w, "Tests: %d total, %d passed, %d failed\n",
		summary.TotalTests, summary.PassedTests, summary.FailedTests)
	fmt.Fprintf(w, "Duration: %.3fs\n", summary.TotalDuration.Seconds())

	if summary.FailedTests == 0 {
		return
	}

	fmt.Fprintf(w, "\nFailed tests:\n")

	for _, result := range summary.Results {
		if result.Success {
			continue
		}

		location := result.File
		if result.Line > 0 {
			location = fmt.Sprintf("%s:%d", result.File, result.Line)
		}

		fmt.Fprintf(w, "  %s (%s)\n", result.TestName, location)

		if result.Error != nil {
			fmt.Fprintf(w, "    Error: %v\n", result.Error)
		}

		for _, line := range strings.SplitAfter(result.Diff, "\n") {
			if line != "" {
				fmt.Fprintf(w, "    %s", line)
			}
		}
	}
}

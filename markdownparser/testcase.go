package markdownparser

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark/ast"
)

// TestCase is one example of the Test Cases section:
//
//	### sum
//	```input
//	1+2
//	```
//	```output
//	3
//	```
//
// An ```error block instead of ```output expects parsing to fail with a
// message containing its text.
type TestCase struct {
	Name        string
	Description string
	Line        int
	Input       string
	Output      string
	Error       string
	ExpectError bool

	hasInput  bool
	hasOutput bool
}

// parseTestCases parses test cases from the nodes of the test section
func parseTestCases(nodes []ast.Node, src source) ([]TestCase, error) {
	var (
		testCases []TestCase
		current   *TestCase
	)

	flush := func() error {
		if current == nil {
			return nil
		}

		if err := validateTestCase(current); err != nil {
			return err
		}

		testCases = append(testCases, *current)

		return nil
	}

	for _, node := range nodes {
		switch n := node.(type) {
		case *ast.Heading:
			if err := flush(); err != nil {
				return nil, err
			}

			current = &TestCase{
				Name: extractText(n, src),
				Line: headingLine(n, src),
			}

		case *ast.Paragraph:
			if current != nil {
				current.Description = strings.TrimSpace(current.Description + " " + extractText(n, src))
			}

		case *ast.FencedCodeBlock:
			if current == nil {
				continue
			}

			content := codeBlockContent(n, src)

			switch strings.ToLower(codeBlockInfo(n, src)) {
			case "input":
				current.Input = strings.TrimSuffix(content, "\n")
				current.hasInput = true
			case "output":
				current.Output = content
				current.hasOutput = true
			case "error":
				current.Error = strings.TrimSpace(content)
				current.ExpectError = true
			}
		}
	}

	if err := flush(); err != nil {
		return nil, err
	}

	return testCases, nil
}

// validateTestCase checks that a test case has an input and exactly one expectation
func validateTestCase(testCase *TestCase) error {
	if testCase.Name == "" {
		return fmt.Errorf("%w: line %d: missing name", ErrInvalidTestCase, testCase.Line)
	}

	if !testCase.hasInput {
		return fmt.Errorf("%w: '%s': missing ```input block", ErrInvalidTestCase, testCase.Name)
	}

	if testCase.hasOutput == testCase.ExpectError {
		return fmt.Errorf("%w: '%s': needs either an ```output or an ```error block", ErrInvalidTestCase, testCase.Name)
	}

	return nil
}

func headingLine(heading *ast.Heading, src source) int {
	if heading.Lines().Len() > 0 {
		return src.line(heading.Lines().At(0).Start)
	}

	return 0
}

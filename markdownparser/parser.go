// Package markdownparser reads literate grammar documents: Markdown files
// whose "Grammar" section holds the grammar in fenced code blocks and whose
// "Test Cases" section lists inputs with their expected output.
package markdownparser

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// DefaultCodeBlockLang is the info string of grammar code blocks.
const DefaultCodeBlockLang = "peg"

// GrammarDocument represents a parsed literate grammar
type GrammarDocument struct {
	Title            string
	FrontMatter      FrontMatter
	Grammar          string
	GrammarStartLine int // Line number of the first grammar line in the file
	TestCases        []TestCase
}

// Section represents a level-2 markdown section with its AST nodes
type Section struct {
	HeadingText string
	Content     []ast.Node
}

type options struct {
	codeBlockLang string
}

// Option configures Parse
type Option func(*options)

// WithCodeBlockLang sets the info string that marks grammar code blocks
func WithCodeBlockLang(lang string) Option {
	return func(o *options) {
		o.codeBlockLang = lang
	}
}

// source is the markdown body with the line offset of the stripped front matter.
type source struct {
	content    []byte
	lineOffset int
}

func (s source) text(seg text.Segment) string {
	return string(seg.Value(s.content))
}

// line returns the 1-based line number of a byte offset in the original file.
func (s source) line(offset int) int {
	return s.lineOffset + bytes.Count(s.content[:offset], []byte("\n")) + 1
}

// Parse parses a markdown grammar file and returns a GrammarDocument
func Parse(reader io.Reader, opts ...Option) (*GrammarDocument, error) {
	o := options{codeBlockLang: DefaultCodeBlockLang}
	for _, opt := range opts {
		opt(&o)
	}

	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read content: %w", err)
	}

	frontMatter, body, err := parseFrontMatter(string(content))
	if err != nil {
		return nil, err
	}

	src := source{
		content:    []byte(body),
		lineOffset: countFrontMatterLines(string(content)),
	}

	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
	)

	doc := md.Parser().Parse(text.NewReader(src.content))

	title, sections := extractSections(doc, src)

	grammarSection, ok := sections["grammar"]
	if !ok {
		return nil, fmt.Errorf("%w: grammar", ErrMissingRequiredSection)
	}

	grammar, startLine := extractGrammar(grammarSection.Content, src, o.codeBlockLang)
	if startLine == 0 {
		return nil, fmt.Errorf("%w: grammar code block (```%s)", ErrMissingRequiredSection, o.codeBlockLang)
	}

	document := &GrammarDocument{
		Title:            title,
		FrontMatter:      frontMatter,
		Grammar:          grammar,
		GrammarStartLine: startLine,
	}

	for _, sectionName := range []string{"test cases", "tests", "test", "testcases"} {
		if testSection, exists := sections[sectionName]; exists {
			testCases, err := parseTestCases(testSection.Content, src)
			if err != nil {
				return nil, fmt.Errorf("failed to parse test cases: %w", err)
			}

			document.TestCases = testCases

			break
		}
	}

	return document, nil
}

// extractSections splits the top-level nodes at level-2 headings. The first
// level-1 heading is the title; deeper headings stay inside their section.
func extractSections(doc ast.Node, src source) (string, map[string]Section) {
	sections := make(map[string]Section)

	var (
		title   string
		current *Section
	)

	flush := func() {
		if current != nil {
			sections[strings.ToLower(current.HeadingText)] = *current
		}
	}

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if heading, ok := n.(*ast.Heading); ok && heading.Level <= 2 {
			flush()

			current = nil
			headingText := extractText(heading, src)

			if heading.Level == 1 {
				if title == "" {
					title = headingText
				}

				continue
			}

			current = &Section{HeadingText: headingText}

			continue
		}

		if current != nil {
			current.Content = append(current.Content, n)
		}
	}

	flush()

	return title, sections
}

// extractGrammar concatenates the code blocks tagged with lang. It returns
// the line of the first block, or 0 when there is none.
func extractGrammar(nodes []ast.Node, src source, lang string) (string, int) {
	var (
		blocks    []string
		startLine int
	)

	for _, node := range nodes {
		block, ok := node.(*ast.FencedCodeBlock)
		if !ok || !strings.EqualFold(codeBlockInfo(block, src), lang) {
			continue
		}

		if startLine == 0 {
			startLine = codeBlockLine(block, src)
		}

		blocks = append(blocks, codeBlockContent(block, src))
	}

	return strings.Join(blocks, "\n"), startLine
}

// extractText extracts the text content of an inline container node
func extractText(node ast.Node, src source) string {
	var result strings.Builder

	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch t := n.(type) {
		case *ast.Text:
			result.WriteString(src.text(t.Segment))

			if t.SoftLineBreak() {
				result.WriteByte(' ')
			}
		case *ast.String:
			result.Write(t.Value)
		}

		return ast.WalkContinue, nil
	})

	return strings.TrimSpace(result.String())
}

// codeBlockInfo returns the language word of a fenced code block's info string
func codeBlockInfo(block *ast.FencedCodeBlock, src source) string {
	if block.Info == nil {
		return ""
	}

	fields := strings.Fields(src.text(block.Info.Segment))
	if len(fields) == 0 {
		return ""
	}

	return fields[0]
}

// codeBlockContent returns the lines of a code block, each ending in a newline
func codeBlockContent(block ast.Node, src source) string {
	var result strings.Builder

	lines := block.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		result.WriteString(src.text(line))
	}

	return result.String()
}

// codeBlockLine returns the line of the first content line of a code block.
// An empty block reports the line after its opening fence.
func codeBlockLine(block *ast.FencedCodeBlock, src source) int {
	if block.Lines().Len() > 0 {
		return src.line(block.Lines().At(0).Start)
	}

	if block.Info != nil {
		return src.line(block.Info.Segment.Start) + 1
	}

	return 1
}

package gogen

import (
	"bytes"
	"fmt"
	"go/format"
	"go/token"
	"io"
	"strconv"
	"strings"
	"text/template"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/shibukawa/snappeg/parser"
)

// Generator generates a Go source file whose function returns a rule set
type Generator struct {
	PackageName string
	FuncName    string
	Source      string // Grammar file the rules were compiled from (optional)
	Format      bool   // Run gofmt on the output
	Rules       parser.RuleSet
}

// Option is a function that configures Generator
type Option func(*Generator)

// WithPackageName sets the package name for generated code
func WithPackageName(name string) Option {
	return func(g *Generator) {
		g.PackageName = name
	}
}

// WithFuncName sets the exact name of the generated function
func WithFuncName(name string) Option {
	return func(g *Generator) {
		g.FuncName = name
	}
}

// WithGrammarName derives the function name from a grammar name, so that
// "json_value" becomes JsonValueRules.
func WithGrammarName(name string) Option {
	return func(g *Generator) {
		g.FuncName = ExportedName(name) + "Rules"
	}
}

// WithSource records the grammar file name in the generated header
func WithSource(path string) Option {
	return func(g *Generator) {
		g.Source = path
	}
}

// WithFormat enables or disables gofmt formatting of the output
func WithFormat(enabled bool) Option {
	return func(g *Generator) {
		g.Format = enabled
	}
}

// New creates a new Generator
func New(rules parser.RuleSet, opts ...Option) *Generator {
	g := &Generator{
		PackageName: "grammar",
		FuncName:    "Rules",
		Format:      true,
		Rules:       rules,
	}
	for _, opt := range opts {
		opt(g)
	}

	return g
}

type ruleData struct {
	Name  string
	Descr string
	Expr  string
}

// Generate generates Go code and writes it to the writer
func (g *Generator) Generate(w io.Writer) error {
	if !token.IsIdentifier(g.PackageName) {
		return fmt.Errorf("%w: invalid package name %q", ErrGenerateGoCode, g.PackageName)
	}

	if !token.IsIdentifier(g.FuncName) {
		return fmt.Errorf("%w: invalid function name %q", ErrGenerateGoCode, g.FuncName)
	}

	if len(g.Rules) == 0 {
		return fmt.Errorf("%w: empty rule set", ErrGenerateGoCode)
	}

	lw := &literalWriter{}
	rules := make([]ruleData, 0, len(g.Rules))

	for _, name := range g.Rules.Names() {
		info := g.Rules[name]

		expr, err := lw.expr(info.Expr)
		if err != nil {
			return fmt.Errorf("rule %s: %w", name, err)
		}

		rd := ruleData{Name: strconv.Quote(name), Expr: expr}
		if info.Descr != "" {
			rd.Descr = strconv.Quote(info.Descr)
		}

		rules = append(rules, rd)
	}

	data := struct {
		PackageName string
		FuncName    string
		Source      string
		UsesAST     bool
		Rules       []ruleData
	}{
		PackageName: g.PackageName,
		FuncName:    g.FuncName,
		Source:      g.Source,
		UsesAST:     lw.usesAST,
		Rules:       rules,
	}

	tmpl, err := template.New("go").Parse(goTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer

	err = tmpl.Execute(&buf, data)
	if err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	src := buf.Bytes()
	if g.Format {
		src, err = format.Source(src)
		if err != nil {
			return fmt.Errorf("%w: failed to format generated code: %w", ErrGenerateGoCode, err)
		}
	}

	_, err = w.Write(src)

	return err
}

// ExportedName converts a grammar name such as "json_value" or "calc-v2"
// into an exported Go identifier.
func ExportedName(name string) string {
	caser := cases.Title(language.English)

	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-' || r == '.' || r == ' '
	})

	var b strings.Builder
	for _, part := range parts {
		b.WriteString(caser.String(part))
	}

	result := b.String()
	if result == "" || !token.IsIdentifier(result) || !token.IsExported(result) {
		return "X" + result
	}

	return result
}

const goTemplate = `// Code generated by snappeg{{if .Source}} from {{.Source}}{{end}}. DO NOT EDIT.

package {{.PackageName}}

import (
{{- if .UsesAST}}
	"github.com/shibukawa/snappeg/ast"
{{- end}}
	"github.com/shibukawa/snappeg/parser"
)

// {{.FuncName}} returns the compiled rules of the grammar.
func {{.FuncName}}() parser.RuleSet {
	return parser.RuleSet{
{{- range .Rules}}
		{{.Name}}: {Expr: {{.Expr}}{{if .Descr}}, Descr: {{.Descr}}{{end}}},
{{- end}}
	}
}
`

package parser

import (
	"fmt"
	"strings"

	"github.com/shibukawa/snappeg/ast"
)

// Unbounded is the Repeat.Max value for repetitions without an upper limit.
const Unbounded = -1

// Expression is a node of a rule body.
type Expression interface {
	fmt.Stringer
	expression()
}

// Range is an inclusive character range.
type Range struct {
	From rune
	To   rune
}

// Atoms

type Literal struct {
	Text string
}

// Match accepts one character from Chars or from any of Ranges.
type Match struct {
	Chars  string
	Ranges []Range
}

// Expected always fails with a critical error carrying Message.
type Expected struct {
	Message string
}

type Dot struct{}

type EOF struct{}

// Composites

type And struct {
	Exprs []Expression
}

type Or struct {
	Exprs []Expression
}

type Not struct {
	Expr Expression
}

type Peek struct {
	Expr Expression
}

type Repeat struct {
	Expr Expression
	Min  int
	Max  int
}

type RuleName struct {
	Name string
}

// Named tags the result of Expr with a capture name.
type Named struct {
	Name string
	Expr Expression
}

// Transf2 matches Exprs in sequence and attaches Template to the result.
type Transf2 struct {
	Exprs    []Expression
	Template ast.Template
}

func (Literal) expression()  {}
func (Match) expression()    {}
func (Expected) expression() {}
func (Dot) expression()      {}
func (EOF) expression()      {}
func (And) expression()      {}
func (Or) expression()       {}
func (Not) expression()      {}
func (Peek) expression()     {}
func (Repeat) expression()   {}
func (RuleName) expression() {}
func (Named) expression()    {}
func (Transf2) expression()  {}

// Builders

func Lit(s string) Expression { return Literal{Text: s} }

func Chars(chars string) Expression { return Match{Chars: chars} }

func Class(chars string, ranges ...Range) Expression { return Match{Chars: chars, Ranges: ranges} }

func Span(from, to rune) Range { return Range{From: from, To: to} }

func Expect(msg string) Expression { return Expected{Message: msg} }

func Any() Expression { return Dot{} }

func End() Expression { return EOF{} }

func Seq(exprs ...Expression) Expression { return And{Exprs: exprs} }

func Choice(exprs ...Expression) Expression { return Or{Exprs: exprs} }

func Neg(e Expression) Expression { return Not{Expr: e} }

func Look(e Expression) Expression { return Peek{Expr: e} }

func Rep(e Expression, min, max int) Expression { return Repeat{Expr: e, Min: min, Max: max} }

func ZeroOrMore(e Expression) Expression { return Repeat{Expr: e, Min: 0, Max: Unbounded} }

func OneOrMore(e Expression) Expression { return Repeat{Expr: e, Min: 1, Max: Unbounded} }

func Optional(e Expression) Expression { return Repeat{Expr: e, Min: 0, Max: 1} }

func Ref(name string) Expression { return RuleName{Name: name} }

func Name(name string, e Expression) Expression { return Named{Name: name, Expr: e} }

func Transform(tmpl ast.Template, exprs ...Expression) Expression {
	return Transf2{Exprs: exprs, Template: tmpl}
}

// String renderings use the grammar notation.

func (e Literal) String() string { return quote(e.Text) }

func (e Match) String() string {
	var sb strings.Builder

	sb.WriteString("[")
	sb.WriteString(escapeClass(e.Chars))

	for _, r := range e.Ranges {
		sb.WriteString(escapeClass(string(r.From)))
		sb.WriteString("-")
		sb.WriteString(escapeClass(string(r.To)))
	}

	sb.WriteString("]")

	return sb.String()
}

func (e Expected) String() string { return "expected(" + quote(e.Message) + ")" }

func (Dot) String() string { return "." }

func (EOF) String() string { return "eof" }

func (e And) String() string { return joinExprs(e.Exprs, " ") }

func (e Or) String() string { return joinExprs(e.Exprs, " / ") }

func (e Not) String() string { return "!" + group(e.Expr) }

func (e Peek) String() string { return "&" + group(e.Expr) }

func (e Repeat) String() string {
	inner := group(e.Expr)

	switch {
	case e.Min == 0 && e.Max == Unbounded:
		return inner + "*"
	case e.Min == 1 && e.Max == Unbounded:
		return inner + "+"
	case e.Min == 0 && e.Max == 1:
		return inner + "?"
	case e.Max == Unbounded:
		return fmt.Sprintf("%s{%d,}", inner, e.Min)
	case e.Min == e.Max:
		return fmt.Sprintf("%s{%d}", inner, e.Min)
	default:
		return fmt.Sprintf("%s{%d,%d}", inner, e.Min, e.Max)
	}
}

func (e RuleName) String() string { return e.Name }

func (e Named) String() string { return e.Name + ":" + group(e.Expr) }

func (e Transf2) String() string {
	return "(" + joinExprs(e.Exprs, " ") + " -> " + e.Template.String() + ")"
}

func joinExprs(exprs []Expression, sep string) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = group(e)
	}

	return strings.Join(parts, sep)
}

// group parenthesizes sequences and choices used as operands.
func group(e Expression) string {
	switch v := e.(type) {
	case And:
		if len(v.Exprs) != 1 {
			return "(" + v.String() + ")"
		}
	case Or:
		if len(v.Exprs) != 1 {
			return "(" + v.String() + ")"
		}
	}

	return e.String()
}

func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, "\n", `\n`, "\r", `\r`, "\t", `\t`, `'`, `\'`)
	return "'" + r.Replace(s) + "'"
}

func escapeClass(s string) string {
	r := strings.NewReplacer(`\`, `\\`, "\n", `\n`, "\r", `\r`, "\t", `\t`, "]", `\]`, "-", `\-`)
	return r.Replace(s)
}

// describe is the text used in an error's expected list.
func describe(e Expression) string {
	switch v := e.(type) {
	case Literal:
		return v.Text
	case Dot:
		return "any character"
	case EOF:
		return "end of input"
	case Expected:
		return v.Message
	default:
		return e.String()
	}
}


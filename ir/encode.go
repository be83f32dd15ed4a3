package ir

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shibukawa/snappeg/ast"
	"github.com/shibukawa/snappeg/parser"
)

type writer struct {
	sb strings.Builder
}

func (w *writer) tag(tag string) {
	w.sb.WriteString(tag)
	w.sb.WriteByte('\n')
}

func (w *writer) arg(s string) {
	w.sb.WriteString(Escape(s))
	w.sb.WriteByte('\n')
}

// Encode writes rs as a command stream. Rules are written in name order.
func Encode(rs parser.RuleSet) string {
	var w writer

	for _, name := range rs.Names() {
		info := rs[name]

		w.tag(TagRule)
		w.arg(name)
		w.tag(TagDescr)
		w.arg(info.Descr)
		w.expr(info.Expr)
	}

	w.tag(TagEnd)

	return w.sb.String()
}

func (w *writer) expr(e parser.Expression) {
	switch v := e.(type) {
	case parser.Literal:
		w.tag(TagAtom)
		w.tag(TagLiteral)
		w.arg(v.Text)

	case parser.RuleName:
		w.tag(TagAtom)
		w.tag(TagRuleRef)
		w.arg(v.Name)

	case parser.Dot:
		w.tag(TagAtom)
		w.tag(TagDot)

	case parser.EOF:
		w.tag(TagAtom)
		w.tag(TagEOF)

	case parser.Match:
		w.tag(TagMatch)

		if v.Chars != "" {
			w.tag(TagChars)
			w.arg(v.Chars)
		}

		if len(v.Ranges) > 0 {
			w.tag(TagBetween)

			for _, r := range v.Ranges {
				w.arg(string(r.From))
				w.arg(string(r.To))
			}

			w.tag(TagEndBetween)
		}

	case parser.Expected:
		w.tag(TagExpected)
		w.arg(v.Message)

	case parser.And:
		w.tag(TagAnd)
		w.list(v.Exprs)

	case parser.Or:
		w.tag(TagOr)
		w.list(v.Exprs)

	case parser.Not:
		w.tag(TagNegate)
		w.expr(v.Expr)

	case parser.Peek:
		w.tag(TagPeek)
		w.expr(v.Expr)

	case parser.Repeat:
		w.tag(TagRepeat)
		w.arg(strconv.Itoa(v.Min))

		if v.Max == parser.Unbounded {
			w.arg(Unbounded)
		} else {
			w.arg(strconv.Itoa(v.Max))
		}

		w.expr(v.Expr)

	case parser.Named:
		w.tag(TagNamed)
		w.arg(v.Name)
		w.expr(v.Expr)

	case parser.Transf2:
		w.tag(TagTransf2)
		w.template(v.Template)
		w.tag(TagEndTransf2)
		w.tag(TagAnd)
		w.list(v.Exprs)

	default:
		panic(fmt.Sprintf("ir: unsupported expression %T", e))
	}
}

func (w *writer) list(exprs []parser.Expression) {
	for _, e := range exprs {
		w.expr(e)
	}

	w.tag(TagCloseExpr)
}

func (w *writer) template(t ast.Template) {
	for _, item := range t {
		switch item.Kind {
		case ast.ItemText:
			w.tag(TagText)
			w.arg(item.Text)
		case ast.ItemByPos:
			w.tag(TagPos)
			w.arg(strconv.Itoa(item.Pos + 1))
		case ast.ItemByName:
			w.tag(TagNamed)
			w.arg(item.Text)
		case ast.ItemByNameOpt:
			w.tag(TagNamedOpt)
			w.arg(item.Text)
		case ast.ItemFunction:
			w.tag(TagFunction)
			w.arg(item.Text)
		}
	}
}

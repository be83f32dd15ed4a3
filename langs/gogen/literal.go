package gogen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shibukawa/snappeg/ast"
	"github.com/shibukawa/snappeg/parser"
)

// literalWriter renders expressions as calls to the parser builders.
type literalWriter struct {
	usesAST bool
}

func (lw *literalWriter) expr(e parser.Expression) (string, error) {
	switch v := e.(type) {
	case parser.Literal:
		return "parser.Lit(" + strconv.Quote(v.Text) + ")", nil

	case parser.Match:
		if len(v.Ranges) == 0 {
			return "parser.Chars(" + strconv.Quote(v.Chars) + ")", nil
		}

		args := []string{strconv.Quote(v.Chars)}
		for _, r := range v.Ranges {
			args = append(args, fmt.Sprintf("parser.Span(%s, %s)", strconv.QuoteRune(r.From), strconv.QuoteRune(r.To)))
		}

		return "parser.Class(" + strings.Join(args, ", ") + ")", nil

	case parser.Expected:
		return "parser.Expect(" + strconv.Quote(v.Message) + ")", nil

	case parser.Dot:
		return "parser.Any()", nil

	case parser.EOF:
		return "parser.End()", nil

	case parser.And:
		return lw.call("parser.Seq", nil, v.Exprs)

	case parser.Or:
		return lw.call("parser.Choice", nil, v.Exprs)

	case parser.Not:
		return lw.call("parser.Neg", nil, []parser.Expression{v.Expr})

	case parser.Peek:
		return lw.call("parser.Look", nil, []parser.Expression{v.Expr})

	case parser.Repeat:
		return lw.repeat(v)

	case parser.RuleName:
		return "parser.Ref(" + strconv.Quote(v.Name) + ")", nil

	case parser.Named:
		return lw.call("parser.Name", []string{strconv.Quote(v.Name)}, []parser.Expression{v.Expr})

	case parser.Transf2:
		return lw.call("parser.Transform", []string{lw.template(v.Template)}, v.Exprs)

	default:
		return "", fmt.Errorf("%w: unsupported expression %T", ErrGenerateGoCode, e)
	}
}

func (lw *literalWriter) repeat(v parser.Repeat) (string, error) {
	inner := []parser.Expression{v.Expr}

	switch {
	case v.Min == 0 && v.Max == parser.Unbounded:
		return lw.call("parser.ZeroOrMore", nil, inner)
	case v.Min == 1 && v.Max == parser.Unbounded:
		return lw.call("parser.OneOrMore", nil, inner)
	case v.Min == 0 && v.Max == 1:
		return lw.call("parser.Optional", nil, inner)
	}

	body, err := lw.expr(v.Expr)
	if err != nil {
		return "", err
	}

	maxText := strconv.Itoa(v.Max)
	if v.Max == parser.Unbounded {
		maxText = "parser.Unbounded"
	}

	return fmt.Sprintf("parser.Rep(%s, %d, %s)", body, v.Min, maxText), nil
}

// call renders fn(leading..., exprs...).
func (lw *literalWriter) call(fn string, leading []string, exprs []parser.Expression) (string, error) {
	args := append([]string{}, leading...)

	for _, e := range exprs {
		s, err := lw.expr(e)
		if err != nil {
			return "", err
		}

		args = append(args, s)
	}

	return fn + "(" + strings.Join(args, ", ") + ")", nil
}

func (lw *literalWriter) template(t ast.Template) string {
	if len(t) == 0 {
		return "nil"
	}

	lw.usesAST = true

	items := make([]string, 0, len(t))

	for _, item := range t {
		switch item.Kind {
		case ast.ItemText:
			items = append(items, "ast.Text("+strconv.Quote(item.Text)+")")
		case ast.ItemByPos:
			items = append(items, "ast.ByPos("+strconv.Itoa(item.Pos)+")")
		case ast.ItemByName:
			items = append(items, "ast.ByName("+strconv.Quote(item.Text)+")")
		case ast.ItemByNameOpt:
			items = append(items, "ast.ByNameOpt("+strconv.Quote(item.Text)+")")
		case ast.ItemFunction:
			items = append(items, "ast.Function("+strconv.Quote(item.Text)+")")
		}
	}

	return "ast.Template{" + strings.Join(items, ", ") + "}"
}

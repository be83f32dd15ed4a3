// Package bootstrap holds the rule set that reads the grammar notation.
//
// Rules is written by hand with the parser builders. GrammarSource is the
// same grammar written in the notation itself, and compiling it with Rules
// yields Rules again.
package bootstrap

import (
	_ "embed"

	"github.com/shibukawa/snappeg/ast"
	"github.com/shibukawa/snappeg/parser"
)

//go:embed grammar.peg
var GrammarSource string

var (
	ref      = parser.Ref
	lit      = parser.Lit
	name     = parser.Name
	seq      = parser.Seq
	choice   = parser.Choice
	neg      = parser.Neg
	many     = parser.ZeroOrMore
	some     = parser.OneOrMore
	opt      = parser.Optional
	tf       = parser.Transform
	text     = ast.Text
	byName   = ast.ByName
	ws       = parser.Ref("_")
	eolChar  = parser.Ref("eol_char")
	anyChar  = parser.Any()
	spaceTab = parser.Chars(" \t")
)

// escaped matches a backslash escape that stays on one line.
func escaped() parser.Expression {
	return seq(lit(`\`), neg(eolChar), anyChar)
}

// charExcept matches one character other than stop on the current line.
func charExcept(stop parser.Expression) parser.Expression {
	return seq(neg(stop), neg(eolChar), anyChar)
}

// Rules returns the rule set of the grammar notation. Parsing a grammar with
// it and rendering the tree produces the IR command stream.
func Rules() parser.RuleSet {
	return parser.RuleSet{
		"main": {Expr: tf(
			ast.Template{byName("rs"), text("EOP\n")},
			ws, name("rs", some(ref("rule"))),
		)},

		"rule": {Descr: "rule", Expr: tf(
			ast.Template{text("RULE\n"), byName("n"), text("\nDESCR\n"), ast.ByNameOpt("rule_descr"), text("\n"), byName("e")},
			name("n", ref("identifier")), ws, opt(ref("rule_descr")), lit("="), ws, name("e", ref("expr")), ws,
		)},

		"rule_descr": {Expr: tf(
			ast.Template{byName("q")},
			name("q", ref("quoted")), ws,
		)},

		"rule_start": {Expr: seq(ref("identifier"), ws, opt(ref("rule_descr")), lit("="))},

		"expr": {Descr: "expression", Expr: choice(
			tf(ast.Template{text("OR\n"), byName("s"), byName("t"), text("CLOSE_MEXPR\n")},
				name("s", ref("seq")), name("t", some(ref("alt_tail")))),
			ref("seq"),
		)},

		"alt_tail": {Expr: tf(
			ast.Template{byName("s")},
			ws, lit("/"), ws, name("s", ref("seq")),
		)},

		"seq": {Expr: choice(
			tf(ast.Template{text("AND\n"), byName("s"), byName("t"), text("CLOSE_MEXPR\n")},
				name("s", ref("segment")), name("t", some(ref("seg_tail")))),
			ref("segment"),
		)},

		"seg_tail": {Expr: tf(
			ast.Template{byName("s")},
			ws, name("s", ref("segment")),
		)},

		"segment": {Expr: choice(
			tf(ast.Template{text("TRANSF2\n"), byName("t"), text("EOTRANSF2\nAND\n"), byName("i"), text("CLOSE_MEXPR\n")},
				name("i", ref("item_seq")), ws, lit("->"), name("t", ref("template"))),
			ref("item"),
		)},

		"item_seq": {Expr: tf(
			ast.Template{byName("i"), byName("t")},
			name("i", ref("item")), name("t", many(ref("item_tail"))),
		)},

		"item_tail": {Expr: tf(
			ast.Template{byName("i")},
			ws, name("i", ref("item")),
		)},

		"item": {Expr: choice(
			tf(ast.Template{text("NAMED\n"), byName("n"), text("\n"), byName("u")},
				name("n", ref("identifier")), lit(":"), name("u", ref("unary"))),
			ref("unary"),
		)},

		"unary": {Expr: choice(
			tf(ast.Template{text("NEGATE\n"), byName("p")}, lit("!"), ws, name("p", ref("unary"))),
			tf(ast.Template{text("PEEK\n"), byName("p")}, lit("&"), ws, name("p", ref("unary"))),
			ref("postfix"),
		)},

		"postfix": {Expr: tf(
			ast.Template{byName("q"), byName("p")},
			name("p", ref("primary")), name("q", opt(ref("quant"))),
		)},

		"quant": {Expr: choice(
			tf(ast.Template{text("REPEAT\n0\ninf\n")}, lit("*")),
			tf(ast.Template{text("REPEAT\n1\ninf\n")}, lit("+")),
			tf(ast.Template{text("REPEAT\n0\n1\n")}, lit("?")),
			tf(ast.Template{text("REPEAT\n"), byName("lo"), text("\n"), byName("hi"), text("\n")},
				lit("{"), ws, name("lo", ref("number")), ws, lit(","), ws, name("hi", ref("number")), ws, lit("}")),
			tf(ast.Template{text("REPEAT\n"), byName("lo"), text("\ninf\n")},
				lit("{"), ws, name("lo", ref("number")), ws, lit(","), ws, lit("}")),
			tf(ast.Template{text("REPEAT\n"), byName("lo"), text("\n"), byName("lo"), text("\n")},
				lit("{"), ws, name("lo", ref("number")), ws, lit("}")),
		)},

		"primary": {Expr: choice(
			tf(ast.Template{byName("e")},
				lit("("), ws, name("e", ref("expr")), ws, lit(")")),
			tf(ast.Template{text("ATOM\nLIT\n"), byName("q"), text("\n")},
				name("q", ref("quoted"))),
			tf(ast.Template{text("MATCH\n"), byName("m")},
				lit("["), name("m", many(ref("class_item"))), lit("]")),
			tf(ast.Template{text("EXPECTED\n"), byName("q"), text("\n")},
				lit("expected"), ws, lit("("), ws, name("q", ref("quoted")), ws, lit(")")),
			tf(ast.Template{text("ATOM\nDOT\n")},
				lit(".")),
			tf(ast.Template{text("ATOM\nEOF\n")},
				lit("eof"), neg(ref("id_char"))),
			tf(ast.Template{text("ATOM\nRULREF\n"), byName("n"), text("\n")},
				neg(ref("rule_start")), name("n", ref("identifier"))),
		)},

		"class_item": {Expr: choice(
			tf(ast.Template{text("BETW\n"), byName("a"), text("\n"), byName("b"), text("\nEOBETW\n")},
				name("a", ref("class_char")), lit("-"), name("b", ref("class_char"))),
			tf(ast.Template{text("CHARS\n"), byName("c"), text("\n")},
				name("c", ref("class_char"))),
		)},

		"class_char": {Expr: choice(escaped(), charExcept(lit("]")))},

		"quoted": {Descr: "quoted string", Expr: choice(
			tf(ast.Template{byName("b")}, lit(`"`), name("b", many(ref("dq_char"))), lit(`"`)),
			tf(ast.Template{byName("b")}, lit("'"), name("b", many(ref("sq_char"))), lit("'")),
		)},

		"dq_char": {Expr: choice(escaped(), charExcept(lit(`"`)))},

		"sq_char": {Expr: choice(escaped(), charExcept(lit("'")))},

		"template": {Descr: "template", Expr: tf(
			ast.Template{byName("i")},
			many(spaceTab), name("i", many(ref("tmpl_item"))),
		)},

		"tmpl_item": {Expr: choice(
			tf(ast.Template{text("NAMED_OPT\n"), byName("n"), text("\n")},
				lit("$(?"), name("n", ref("identifier")), lit(")")),
			tf(ast.Template{text("FUNCT\n"), byName("n"), text("\n")},
				lit("$(:"), name("n", ref("identifier")), lit(")")),
			tf(ast.Template{text("POS\n"), byName("p"), text("\n")},
				lit("$("), name("p", ref("number")), lit(")")),
			tf(ast.Template{text("NAMED\n"), byName("n"), text("\n")},
				lit("$("), name("n", ref("identifier")), lit(")")),
			tf(ast.Template{text("TEXT\n"), byName("t"), text("\n")},
				name("t", some(ref("tmpl_char")))),
		)},

		"tmpl_char": {Expr: choice(escaped(), seq(neg(lit("$(")), neg(ref("tmpl_end")), anyChar))},

		"tmpl_end": {Expr: seq(many(spaceTab), choice(eolChar, parser.End()))},

		"identifier": {Descr: "identifier", Expr: seq(
			parser.Class("_", parser.Span('a', 'z'), parser.Span('A', 'Z')),
			many(ref("id_char")),
		)},

		"id_char": {Expr: parser.Class("_", parser.Span('a', 'z'), parser.Span('A', 'Z'), parser.Span('0', '9'))},

		"number": {Descr: "number", Expr: some(parser.Class("", parser.Span('0', '9')))},

		"eol_char": {Expr: parser.Chars("\n\r")},

		"_": {Expr: tf(nil, many(choice(parser.Chars(" \t\r\n"), ref("comment"))))},

		"comment": {Expr: seq(lit("//"), many(seq(neg(eolChar), anyChar)))},
	}
}

package snappeg

import (
	"errors"
	"slices"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/shibukawa/snappeg/ast"
	"github.com/shibukawa/snappeg/bootstrap"
	"github.com/shibukawa/snappeg/ir"
	"github.com/shibukawa/snappeg/parser"
	"github.com/shibukawa/snappeg/testhelper"
)

func TestBootstrapFixedPoint(t *testing.T) {
	compiled, err := Compile(bootstrap.GrammarSource)
	assert.NoError(t, err)
	assert.Equal(t, "", cmp.Diff(bootstrap.Rules(), compiled, cmpopts.EquateEmpty()))
}

func TestBootstrapIRIsStable(t *testing.T) {
	first, err := CompileIR(bootstrap.GrammarSource)
	assert.NoError(t, err)

	compiled, err := ir.Decode(first)
	assert.NoError(t, err)

	// the compiled rules read the grammar the same way the built-in ones do
	tree, err := compiled.Parse(bootstrap.GrammarSource)
	assert.NoError(t, err)

	second, err := tree.Render(nil)
	assert.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, ir.Encode(bootstrap.Rules()), ir.Encode(compiled))
}

func TestCompileIR(t *testing.T) {
	actual, err := CompileIR("main = 'a'")
	assert.NoError(t, err)
	assert.Equal(t, "RULE\nmain\nDESCR\n\nATOM\nLIT\na\nEOP\n", actual)
}

func TestCompileNotation(t *testing.T) {
	tests := []struct {
		name     string
		grammar  string
		expected parser.RuleSet
	}{
		{
			name:    "sequence and choice",
			grammar: `main = 'a'+ ('b' / "c")`,
			expected: parser.RuleSet{
				"main": {Expr: parser.Seq(parser.OneOrMore(parser.Lit("a")), parser.Choice(parser.Lit("b"), parser.Lit("c")))},
			},
		},
		{
			name:    "quantifiers",
			grammar: `main = 'a'{2} 'b'{1,} 'c'{ 1 , 2 } 'd'? 'e'*`,
			expected: parser.RuleSet{
				"main": {Expr: parser.Seq(
					parser.Rep(parser.Lit("a"), 2, 2),
					parser.Rep(parser.Lit("b"), 1, parser.Unbounded),
					parser.Rep(parser.Lit("c"), 1, 2),
					parser.Optional(parser.Lit("d")),
					parser.ZeroOrMore(parser.Lit("e")),
				)},
			},
		},
		{
			name:    "escapes",
			grammar: `main = '\n' "\"" [\]\-] '\\' 'it\'s'`,
			expected: parser.RuleSet{
				"main": {Expr: parser.Seq(
					parser.Lit("\n"),
					parser.Lit(`"`),
					parser.Chars("]-"),
					parser.Lit(`\`),
					parser.Lit("it's"),
				)},
			},
		},
		{
			name:    "classes dot eof and lookahead",
			grammar: `main = [a-z0-9_] . !'x' &'y' eof`,
			expected: parser.RuleSet{
				"main": {Expr: parser.Seq(
					parser.Class("_", parser.Span('a', 'z'), parser.Span('0', '9')),
					parser.Any(),
					parser.Neg(parser.Lit("x")),
					parser.Look(parser.Lit("y")),
					parser.End(),
				)},
			},
		},
		{
			name:    "stacked prefixes",
			grammar: `main = !!'a' !&'b' & ! 'c' .`,
			expected: parser.RuleSet{
				"main": {Expr: parser.Seq(
					parser.Neg(parser.Neg(parser.Lit("a"))),
					parser.Neg(parser.Look(parser.Lit("b"))),
					parser.Look(parser.Neg(parser.Lit("c"))),
					parser.Any(),
				)},
			},
		},
		{
			name: "rules descriptions and comments",
			grammar: testhelper.TrimIndent(t, `
				// numbers
				main = num (',' num)*  // list
				num "number"
				    = [0-9]+
				    / expected("a number")
			`),
			expected: parser.RuleSet{
				"main": {Expr: parser.Seq(
					parser.Ref("num"),
					parser.ZeroOrMore(parser.Seq(parser.Lit(","), parser.Ref("num"))),
				)},
				"num": {Descr: "number", Expr: parser.Choice(
					parser.OneOrMore(parser.Class("", parser.Span('0', '9'))),
					parser.Expect("a number"),
				)},
			},
		},
		{
			name:    "template items",
			grammar: `main = x:'a' y:'b'? -> <$(1)|$(x)|$(?y)|$(:endl)>\t\$(z)   `,
			expected: parser.RuleSet{
				"main": {Expr: parser.Transform(
					ast.Template{
						ast.Text("<"), ast.ByPos(0), ast.Text("|"), ast.ByName("x"), ast.Text("|"),
						ast.ByNameOpt("y"), ast.Text("|"), ast.Function("endl"), ast.Text(">\t$(z)"),
					},
					parser.Name("x", parser.Lit("a")),
					parser.Name("y", parser.Optional(parser.Lit("b"))),
				)},
			},
		},
		{
			name: "templates on several segments",
			grammar: testhelper.TrimIndent(t, `
				main = 'a' -> A
				       'b' 'c' -> BC
				       'd'
			`),
			expected: parser.RuleSet{
				"main": {Expr: parser.Seq(
					parser.Transform(ast.Template{ast.Text("A")}, parser.Lit("a")),
					parser.Transform(ast.Template{ast.Text("BC")}, parser.Lit("b"), parser.Lit("c")),
					parser.Lit("d"),
				)},
			},
		},
		{
			name:    "empty template",
			grammar: "main = ' '* ->\n",
			expected: parser.RuleSet{
				"main": {Expr: parser.Transform(nil, parser.ZeroOrMore(parser.Lit(" ")))},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actual, err := Compile(tt.grammar)
			assert.NoError(t, err)
			assert.Equal(t, "", cmp.Diff(tt.expected, actual, cmpopts.EquateEmpty()))
		})
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name     string
		grammar  string
		expected error
	}{
		{name: "unterminated literal", grammar: "main = 'a", expected: parser.ErrParse},
		{name: "missing expression", grammar: "main = ", expected: parser.ErrParse},
		{name: "undefined rule", grammar: "main = other", expected: parser.ErrUndefinedRule},
		{name: "inverted bounds", grammar: "main = 'a'{3,2}", expected: ir.ErrInvalidNumber},
		{name: "duplicate rule", grammar: "main = 'a'\nmain = 'b'", expected: ir.ErrDuplicateRule},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.grammar)
			assert.Error(t, err)
			assert.True(t, errors.Is(err, ErrGrammar))
			assert.True(t, errors.Is(err, tt.expected), "got %v", err)
		})
	}
}

func TestCompileErrorContext(t *testing.T) {
	_, err := Compile("main = !")

	var perr *parser.Error
	assert.True(t, errors.As(err, &perr), "got %v", err)
	assert.Equal(t, 8, perr.Pos.Offset)
	assert.Equal(t, "expression", perr.Alternatives.Context)
	assert.True(t, slices.Contains(perr.Alternatives.Expected, `"`), "got %v", perr.Alternatives.Expected)
}

func TestParseExamples(t *testing.T) {
	rules := MustCompile(`main = 'a'+ ('b' / 'c')`)

	_, err := rules.Parse("aaab")
	assert.NoError(t, err)

	_, err = rules.Parse("aaad")

	var perr *parser.Error
	assert.True(t, errors.As(err, &perr))
	assert.Equal(t, 3, perr.Pos.Offset)
	assert.Equal(t, []string{"b", "c"}, perr.Alternatives.Expected)
}

func TestFurthestFailureAcrossAlternatives(t *testing.T) {
	rules := MustCompile(`main = 'abc' 'x' / 'abcde' 'y'`)

	_, err := rules.Parse("abcdeq")

	var perr *parser.Error
	assert.True(t, errors.As(err, &perr))
	assert.Equal(t, 5, perr.Pos.Offset)
}

func TestRenderExamples(t *testing.T) {
	tests := []struct {
		name     string
		grammar  string
		input    string
		resolver ast.FuncResolver
		expected string
	}{
		{
			name:     "positional child and endl",
			grammar:  `main = [0-9]+ -> PUSH $(1)$(:endl)`,
			input:    "5",
			expected: "PUSH 5\n",
		},
		{
			name:     "named capture",
			grammar:  `main = x:'a' -> $(x)`,
			input:    "a",
			expected: "a",
		},
		{
			name: "custom function",
			grammar: testhelper.TrimIndent(t, `
				main    =   char+
				char    =   'a'     -> $(:el)A
				        /   'b'     -> $(:el)B
				        /   ch:.    -> $(:el)$(ch)
			`),
			input:    "abc",
			resolver: ast.FuncMap{"el": "\n"},
			expected: "\nA\nB\nc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actual, err := Transform(tt.grammar, tt.input, tt.resolver)
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, actual)
		})
	}
}

func TestRenderUnresolvedFunction(t *testing.T) {
	_, err := Transform(`main = 'a' -> $(:el)`, "a", nil)
	assert.True(t, errors.Is(err, ast.ErrUnresolvedFunction))
}

const calculator = `
// stack machine code for arithmetic expressions
main        =   _ e:expr _ eof                          -> $(e)

expr        =   term (_ op:add_op _ t:operand           -> $(t)$(op)
                )*

operand     =   term
            /   expected("number or parenthesis after operator")

term        =   factor (_ op:mult_op _ f:factor         -> $(f)$(op)
                )*

factor      =   '(' _ expr _ ')'                        -> $(expr)
            /   number                                  -> PUSH $(number)$(:endl)

number "number" = [0-9]+ ('.' [0-9]+)?

add_op      =   '+'                                     -> EXEC ADD$(:endl)
            /   '-'                                     -> EXEC SUB$(:endl)

mult_op     =   '*'                                     -> EXEC MUL$(:endl)
            /   '/'                                     -> EXEC DIV$(:endl)

_           =   [ \t]*
`

func TestCalculator(t *testing.T) {
	rules := MustCompile(calculator)

	tests := []struct {
		input    string
		expected string
	}{
		{"1", "PUSH 1\n"},
		{"1 + 2 * 3", "PUSH 1\nPUSH 2\nPUSH 3\nEXEC MUL\nEXEC ADD\n"},
		{"(1+2)*3", "PUSH 1\nPUSH 2\nEXEC ADD\nPUSH 3\nEXEC MUL\n"},
		{" 2.5 / 4 - 1 ", "PUSH 2.5\nPUSH 4\nEXEC DIV\nPUSH 1\nEXEC SUB\n"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tree, err := rules.Parse(tt.input)
			assert.NoError(t, err)

			actual, err := tree.Render(nil)
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, actual)
		})
	}
}

func TestCalculatorErrors(t *testing.T) {
	rules := MustCompile(calculator)

	t.Run("missing operand", func(t *testing.T) {
		_, err := rules.Parse("1+")

		var perr *parser.Error
		assert.True(t, errors.As(err, &perr))
		assert.Equal(t, 2, perr.Pos.Offset)
		assert.Equal(t, parser.PriorityCritical, perr.Priority)
		assert.Equal(t, []string{"(", "[0-9]", "number or parenthesis after operator"}, perr.Alternatives.Expected)
	})

	t.Run("unclosed parenthesis", func(t *testing.T) {
		_, err := rules.Parse("(1")

		var perr *parser.Error
		assert.True(t, errors.As(err, &perr))
		assert.Equal(t, 2, perr.Pos.Offset)
		assert.Equal(t, parser.PriorityNormal, perr.Priority)
		assert.True(t, slices.Contains(perr.Alternatives.Expected, ")"), "got %v", perr.Alternatives.Expected)
	})
}

package parser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shibukawa/snappeg/ast"
)

func TestRuleSetAdd(t *testing.T) {
	rs := RuleSet{}
	require.NoError(t, rs.Add("main", Lit("a"), ""))

	err := rs.Add("main", Lit("b"), "")
	assert.True(t, errors.Is(err, ErrDuplicateRule))
	assert.Equal(t, Lit("a"), rs["main"].Expr)
}

func TestRuleSetMerge(t *testing.T) {
	rs := RuleSet{"main": {Expr: Ref("a")}}

	require.NoError(t, rs.Merge(RuleSet{"a": {Expr: Lit("a")}}))
	assert.Equal(t, []string{"a", "main"}, rs.Names())

	err := rs.Merge(RuleSet{"a": {Expr: Lit("x")}, "b": {Expr: Lit("b")}})
	assert.ErrorIs(t, err, ErrDuplicateRule)
	assert.NotContains(t, rs, "b")
}

func TestRuleSetValidate(t *testing.T) {
	tests := []struct {
		name     string
		rules    RuleSet
		expected error
		message  string
	}{
		{
			name: "valid",
			rules: RuleSet{
				"main": {Expr: Seq(Ref("a"), Not{Expr: Ref("a")})},
				"a":    {Expr: Lit("a")},
			},
		},
		{
			name: "undefined references are listed once",
			rules: RuleSet{
				"main": {Expr: Choice(Ref("x"), Ref("y"), Name("n", Ref("x")))},
			},
			expected: ErrUndefinedRule,
			message:  "undefined rule: x, y",
		},
		{
			name: "min greater than max",
			rules: RuleSet{
				"main": {Expr: Rep(Lit("a"), 3, 2)},
			},
			expected: ErrInvalidRepeat,
			message:  "invalid repeat bounds: rule main: 'a'{3,2}",
		},
		{
			name: "inside template",
			rules: RuleSet{
				"main": {Expr: Transform(ast.Template{ast.ByPos(0)}, Ref("gone"))},
			},
			expected: ErrUndefinedRule,
			message:  "undefined rule: gone",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rules.Validate()
			if tt.expected == nil {
				assert.NoError(t, err)
				return
			}

			assert.ErrorIs(t, err, tt.expected)
			assert.EqualError(t, err, tt.message)
		})
	}
}

func TestRuleSetReferences(t *testing.T) {
	rs := RuleSet{
		"main": {Expr: Seq(Ref("b"), ZeroOrMore(Ref("a")), Ref("b"))},
	}

	assert.Equal(t, []string{"a", "b"}, rs.References("main"))
	assert.Nil(t, rs.References("nothing"))
}

func TestExpressionString(t *testing.T) {
	tests := []struct {
		expr     Expression
		expected string
	}{
		{Seq(Lit("a"), Choice(Lit("b"), Lit("c"))), "'a' ('b' / 'c')"},
		{OneOrMore(Ref("x")), "x+"},
		{Optional(Seq(Lit("a"), Lit("b"))), "('a' 'b')?"},
		{Rep(Ref("d"), 2, Unbounded), "d{2,}"},
		{Rep(Ref("d"), 2, 2), "d{2}"},
		{Rep(Ref("d"), 1, 3), "d{1,3}"},
		{Name("n", Class("_", Span('a', 'z'))), "n:[_a-z]"},
		{Neg(Any()), "!."},
		{Look(End()), "&eof"},
		{Expect("number"), "expected('number')"},
		{Lit("it's\n"), `'it\'s\n'`},
		{Transform(ast.Template{ast.Text("X"), ast.ByPos(0)}, Ref("a")), "(a -> X$(1))"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.expr.String())
		})
	}
}

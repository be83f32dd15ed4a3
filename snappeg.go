// Package snappeg compiles grammars written in the snappeg notation into
// parser.RuleSet values.
//
//	rules, err := snappeg.Compile(`main = n:[0-9]+ -> PUSH $(n)$(:endl)`)
//	tree, err := rules.Parse("42")
//	out, err := tree.Render(nil) // "PUSH 42\n"
package snappeg

import (
	"fmt"

	"github.com/shibukawa/snappeg/ast"
	"github.com/shibukawa/snappeg/bootstrap"
	"github.com/shibukawa/snappeg/ir"
	"github.com/shibukawa/snappeg/parser"
)

// CompileIR parses grammar text and returns the IR command stream its
// templates render to.
func CompileIR(grammar string) (string, error) {
	tree, err := bootstrap.Rules().Parse(grammar)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrGrammar, err)
	}

	text, err := tree.Render(nil)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrGrammar, err)
	}

	return text, nil
}

// Compile turns grammar text into a rule set. Every rule referenced by the
// grammar must be defined in it.
func Compile(grammar string) (parser.RuleSet, error) {
	text, err := CompileIR(grammar)
	if err != nil {
		return nil, err
	}

	rules, err := ir.Decode(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGrammar, err)
	}

	if err := rules.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGrammar, err)
	}

	return rules, nil
}

// MustCompile is Compile that panics on error. It is meant for grammars
// fixed at build time.
func MustCompile(grammar string) parser.RuleSet {
	rules, err := Compile(grammar)
	if err != nil {
		panic(err)
	}

	return rules
}

// Transform compiles grammar, parses input with it and renders the result.
func Transform(grammar, input string, fr ast.FuncResolver, opts ...parser.Option) (string, error) {
	rules, err := Compile(grammar)
	if err != nil {
		return "", err
	}

	tree, err := rules.Parse(input, opts...)
	if err != nil {
		return "", err
	}

	return tree.Render(fr)
}

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/goccy/go-yaml"

	"github.com/shibukawa/snappeg"
	"github.com/shibukawa/snappeg/ast"
	"github.com/shibukawa/snappeg/parser"
)

// ParseCmd represents the parse command
type ParseCmd struct {
	Grammar string `arg:"" help:"Grammar file (.peg or .peg.md)" type:"path"`
	Input   string `arg:"" optional:"" help:"Input file, stdin when omitted or '-'"`
	Text    string `short:"e" help:"Parse this text instead of a file"`
	Start   string `short:"s" help:"Start rule (overrides config and front matter)"`
	Trace   bool   `help:"Print every rule attempt"`
	Tree    bool   `help:"Print the parse tree instead of the rendered result"`
	Format  string `help:"Parse tree format: text or yaml" enum:"text,yaml" default:"text"`
}

func (p *ParseCmd) Run(ctx *Context) error {
	config, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	g, err := loadGrammar(p.Grammar, config)
	if err != nil {
		return err
	}

	rules, err := snappeg.Compile(g.Source)
	if err != nil {
		return fmt.Errorf("%s: %w", p.Grammar, err)
	}

	input, err := p.readInput(ctx)
	if err != nil {
		return err
	}

	start := g.StartRule
	if p.Start != "" {
		start = p.Start
	}

	if _, ok := rules[start]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownRule, start)
	}

	var (
		tree  *ast.Node
		trace parser.Trace
	)

	if p.Trace {
		tree, trace, err = rules.ParseWithTrace(input, parser.WithStartRule(start))
		printTrace(ctx.Stdout, trace)
	} else {
		tree, err = rules.Parse(input, parser.WithStartRule(start))
	}

	if err != nil {
		var perr *parser.Error
		if errors.As(err, &perr) && !ctx.Quiet {
			color.Red("%s", perr.Detail())
		}

		return err
	}

	if p.Tree {
		return printTree(ctx.Stdout, tree, p.Format)
	}

	out, err := tree.Render(g.resolver(config))
	if err != nil {
		return err
	}

	_, err = io.WriteString(ctx.Stdout, out)

	return err
}

func (p *ParseCmd) readInput(ctx *Context) (string, error) {
	if p.Text != "" {
		if p.Input != "" {
			return "", ErrConflictingInput
		}

		return p.Text, nil
	}

	if p.Input == "" || p.Input == "-" {
		data, err := io.ReadAll(ctx.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}

		return string(data), nil
	}

	data, err := os.ReadFile(p.Input)
	if err != nil {
		return "", fmt.Errorf("failed to read input %s: %w", p.Input, err)
	}

	return string(data), nil
}

func printTrace(w io.Writer, trace parser.Trace) {
	for _, ev := range trace {
		status := "ok"
		if !ev.Matched {
			status = "fail"
		}

		fmt.Fprintf(w, "%s%s %d:%d-%d:%d %s\n",
			strings.Repeat("  ", ev.Depth), ev.Rule,
			ev.Start.Line, ev.Start.Column, ev.End.Line, ev.End.Column, status)
	}
}

// treeNode is the YAML form of a parse tree node
type treeNode struct {
	Kind     string     `yaml:"kind"`
	Name     string     `yaml:"name,omitempty"`
	Text     string     `yaml:"text,omitempty"`
	Template string     `yaml:"template,omitempty"`
	Children []treeNode `yaml:"children,omitempty"`
}

func toTreeNode(n *ast.Node) treeNode {
	t := treeNode{
		Kind: n.Kind.String(),
		Name: n.Name,
		Text: n.Text,
	}

	if n.Kind == ast.NodeTransf2 {
		t.Template = n.Template.String()
	}

	for _, child := range n.Children {
		t.Children = append(t.Children, toTreeNode(child))
	}

	return t
}

func printTree(w io.Writer, tree *ast.Node, format string) error {
	switch format {
	case "", "text":
		return ast.Dump(w, tree)
	case "yaml":
		data, err := yaml.Marshal(toTreeNode(tree))
		if err != nil {
			return fmt.Errorf("failed to marshal parse tree: %w", err)
		}

		_, err = w.Write(data)

		return err
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}

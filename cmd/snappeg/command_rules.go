package main

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/shibukawa/snappeg"
	"github.com/shibukawa/snappeg/parser"
)

// RulesCmd represents the rules command
type RulesCmd struct {
	Grammar string `arg:"" help:"Grammar file (.peg or .peg.md)" type:"path"`
	Expr    bool   `help:"Show the expression of every rule"`
}

func (c *RulesCmd) Run(ctx *Context) error {
	config, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	g, err := loadGrammar(c.Grammar, config)
	if err != nil {
		return err
	}

	rules, err := snappeg.Compile(g.Source)
	if err != nil {
		return fmt.Errorf("%s: %w", c.Grammar, err)
	}

	header := []string{"Rule", "Description", "References"}
	if c.Expr {
		header = append(header, "Expression")
	}

	table := tablewriter.NewWriter(ctx.Stdout)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	for _, row := range ruleRows(rules, g.StartRule, c.Expr) {
		table.Append(row)
	}

	table.Render()

	return nil
}

// ruleRows lists the rules in name order, marking the start rule with "*"
func ruleRows(rules parser.RuleSet, start string, withExpr bool) [][]string {
	rows := make([][]string, 0, len(rules))

	for _, name := range rules.Names() {
		label := name
		if name == start {
			label = name + " *"
		}

		row := []string{label, rules[name].Descr, strings.Join(rules.References(name), ", ")}
		if withExpr {
			row = append(row, rules[name].Expr.String())
		}

		rows = append(rows, row)
	}

	return rows
}

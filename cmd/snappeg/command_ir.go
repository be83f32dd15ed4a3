package main

import (
	"fmt"
	"io"

	"github.com/shibukawa/snappeg"
	"github.com/shibukawa/snappeg/ir"
)

// IRCmd represents the ir command
type IRCmd struct {
	Grammar   string `arg:"" help:"Grammar file (.peg or .peg.md)" type:"path"`
	Canonical bool   `help:"Print the stream re-encoded from the decoded rules, sorted by rule name"`
}

func (c *IRCmd) Run(ctx *Context) error {
	config, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	g, err := loadGrammar(c.Grammar, config)
	if err != nil {
		return err
	}

	if c.Canonical {
		rules, err := snappeg.Compile(g.Source)
		if err != nil {
			return fmt.Errorf("%s: %w", c.Grammar, err)
		}

		_, err = io.WriteString(ctx.Stdout, ir.Encode(rules))

		return err
	}

	stream, err := snappeg.CompileIR(g.Source)
	if err != nil {
		return fmt.Errorf("%s: %w", c.Grammar, err)
	}

	_, err = io.WriteString(ctx.Stdout, stream)

	return err
}

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
)

// Context represents the global context for commands
type Context struct {
	Config  string
	Verbose bool
	Quiet   bool
	Stdout  io.Writer
	Stdin   io.Reader
}

// CLI represents the command-line interface
var CLI struct {
	Config   string      `help:"Configuration file path" default:"snappeg.yaml"`
	Verbose  bool        `help:"Enable verbose output" short:"v"`
	Quiet    bool        `help:"Suppress output" short:"q"`
	Generate GenerateCmd `cmd:"" help:"Generate Go rule sets from grammar files"`
	Parse    ParseCmd    `cmd:"" help:"Parse input with a grammar and print the rendered result"`
	IR       IRCmd       `cmd:"ir" help:"Print the intermediate command stream of a grammar"`
	Rules    RulesCmd    `cmd:"" help:"List the rules of a grammar"`
	Test     TestCmd     `cmd:"" help:"Run the test cases of grammar documents"`
	Init     InitCmd     `cmd:"" help:"Initialize a new snappeg project"`
	Version  VersionCmd  `cmd:"" help:"Show version information"`
}

// VersionCmd represents the version command
type VersionCmd struct{}

// Run executes the version command
func (cmd *VersionCmd) Run(ctx *Context) error {
	fmt.Fprintln(ctx.Stdout, "snappeg v0.1.0")
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("snappeg"),
		kong.Description("PEG grammar compiler with rewrite templates"),
	)

	appCtx := &Context{
		Config:  CLI.Config,
		Verbose: CLI.Verbose,
		Quiet:   CLI.Quiet,
		Stdout:  os.Stdout,
		Stdin:   os.Stdin,
	}

	err := ctx.Run(appCtx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

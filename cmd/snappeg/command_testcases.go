package main

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"

	"github.com/shibukawa/snappeg/testrunner"
)

// TestCmd represents the test command
type TestCmd struct {
	Path       string `arg:"" optional:"" help:"Grammar document or directory (defaults to input_dir)" type:"path"`
	RunPattern string `help:"Run only documents whose name starts with the pattern" short:"r"`
	Timeout    string `help:"Test timeout duration" default:"10m"`
}

// Run executes the test command
func (cmd *TestCmd) Run(ctx *Context) error {
	config, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	timeout, err := time.ParseDuration(cmd.Timeout)
	if err != nil {
		return fmt.Errorf("invalid timeout duration: %w", err)
	}

	root := cmd.Path
	if root == "" {
		root = resolveInputDir(ctx, config)
	}

	if ctx.Verbose {
		fmt.Fprintf(ctx.Stdout, "Starting grammar tests in: %s\n", root)
		fmt.Fprintf(ctx.Stdout, "Timeout: %s\n", timeout)

		if cmd.RunPattern != "" {
			fmt.Fprintf(ctx.Stdout, "Test pattern: %s\n", cmd.RunPattern)
		}

		fmt.Fprintln(ctx.Stdout)
	}

	runner := testrunner.NewGrammarTestRunner(root)
	runner.SetVerbose(ctx.Verbose)
	runner.SetOutput(ctx.Stdout)
	runner.SetRunPattern(cmd.RunPattern)
	runner.SetCodeBlockLang(config.Markdown.CodeBlockLang)
	runner.SetResolver(config.Resolver())

	testCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	summary, err := runner.RunAll(testCtx)
	if err != nil {
		return fmt.Errorf("test execution failed: %w", err)
	}

	if !ctx.Quiet {
		testrunner.PrintSummary(ctx.Stdout, summary)
	}

	if summary.FailedTests > 0 {
		if !ctx.Quiet {
			color.Red("\nSome grammar tests failed!")
		}

		return fmt.Errorf("%w: %d of %d", ErrTestsFailed, summary.FailedTests, summary.TotalTests)
	}

	if !ctx.Quiet {
		color.Green("\nAll grammar tests passed!")
	}

	return nil
}


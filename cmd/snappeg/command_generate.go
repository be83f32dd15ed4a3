package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/fatih/color"

	"github.com/shibukawa/snappeg/generator"
)

// GenerateCmd represents the generate command
type GenerateCmd struct {
	Input   string `short:"i" help:"Input file or directory" type:"path"`
	Package string `help:"Package name of the generated files"`
	Force   bool   `help:"Regenerate files that are up to date"`
	Watch   bool   `help:"Watch for file changes and regenerate automatically"`
}

func (g *GenerateCmd) Run(ctx *Context) error {
	config, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	inputPath := g.Input
	if inputPath == "" {
		inputPath = resolveInputDir(ctx, config)
		if ctx.Verbose {
			color.Cyan("Resolved input_dir to %s", inputPath)
		}
	}

	pkg := g.Package
	if pkg == "" {
		pkg = config.Generation.Package
	}

	opts := generator.Options{
		OutputSuffix:  config.Generation.OutputSuffix,
		Package:       pkg,
		Force:         g.Force || config.Generation.Force,
		Format:        config.Generation.FormatOutput(),
		CodeBlockLang: config.Markdown.CodeBlockLang,
	}

	if ctx.Verbose {
		color.Blue("Generating Go files from %s", inputPath)
	}

	results, err := generator.Run(inputPath, opts)
	if err != nil {
		return err
	}

	failed := 0
	for _, result := range results {
		reportResult(ctx, result)

		if result.Status == generator.StatusFailed {
			failed++
		}
	}

	if g.Watch {
		return g.watch(ctx, inputPath, opts)
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrGenerateFailed, failed, len(results))
	}

	return nil
}

func (g *GenerateCmd) watch(ctx *Context, inputPath string, opts generator.Options) error {
	w, err := generator.NewWatcher(inputPath)
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", inputPath, err)
	}
	defer w.Close()

	if !ctx.Quiet {
		color.Cyan("Watching %s for changes (Ctrl+C to stop)", inputPath)
	}

	watchCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Changes are regenerated even when they look up to date
	opts.Force = true

	return w.Run(watchCtx, opts, func(result generator.Result, err error) {
		if err != nil {
			if !ctx.Quiet {
				color.Red("Watch error: %v", err)
			}

			return
		}

		reportResult(ctx, result)
	})
}

func reportResult(ctx *Context, result generator.Result) {
	switch result.Status {
	case generator.StatusGenerated:
		if !ctx.Quiet {
			color.Green("Generated: %s", result.Target)
		}
	case generator.StatusUpToDate:
		if ctx.Verbose {
			color.White("Up to date: %s", result.Target)
		}
	case generator.StatusFailed:
		if !ctx.Quiet {
			color.Red("Failed: %s: %v", result.Source, result.Err)
		}
	}
}

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shibukawa/snappeg"
	"github.com/shibukawa/snappeg/ast"
	"github.com/shibukawa/snappeg/markdownparser"
)

// grammarFile is a loaded grammar with the settings of its document
type grammarFile struct {
	Path      string
	Source    string
	StartRule string
	Functions map[string]string
}

// loadConfig loads the configuration, falling back to defaults when the
// file does not exist
func loadConfig(ctx *Context) (*snappeg.Config, error) {
	config, err := snappeg.LoadConfig(ctx.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	return config, nil
}

// loadGrammar reads a .peg file, or the grammar blocks of a .peg.md document
func loadGrammar(path string, config *snappeg.Config) (*grammarFile, error) {
	if !fileExists(path) {
		return nil, fmt.Errorf("%w: %s", ErrInputFileNotExist, path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}

	g := &grammarFile{
		Path:      path,
		Source:    string(content),
		StartRule: config.StartRule,
	}

	if !strings.HasSuffix(strings.ToLower(path), ".md") {
		return g, nil
	}

	doc, err := markdownparser.Parse(strings.NewReader(g.Source), markdownparser.WithCodeBlockLang(config.Markdown.CodeBlockLang))
	if err != nil {
		return nil, fmt.Errorf("failed to parse markdown %s: %w", path, err)
	}

	g.Source = doc.Grammar
	g.Functions = doc.FrontMatter.Functions

	if doc.FrontMatter.StartRule != "" {
		g.StartRule = doc.FrontMatter.StartRule
	}

	return g, nil
}

// resolver layers the document functions over the configured ones
func (g *grammarFile) resolver(config *snappeg.Config) ast.FuncResolver {
	functions := make(ast.FuncMap, len(config.Functions)+len(g.Functions))
	for name, value := range config.Functions {
		functions[name] = value
	}

	for name, value := range g.Functions {
		functions[name] = value
	}

	return functions
}

// resolveInputDir makes a relative input_dir relative to the config file
func resolveInputDir(ctx *Context, config *snappeg.Config) string {
	if filepath.IsAbs(config.InputDir) || !fileExists(ctx.Config) {
		return config.InputDir
	}

	return filepath.Clean(filepath.Join(filepath.Dir(ctx.Config), config.InputDir))
}

func createDir(path string) error {
	return os.MkdirAll(path, 0o755)
}

func writeFile(path, content string) error {
	if fileExists(path) {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, path)
	}

	return os.WriteFile(path, []byte(content), 0o644)
}

// fileExists checks if file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

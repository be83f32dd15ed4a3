package snappeg

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"

	"github.com/shibukawa/snappeg/ast"
	"github.com/shibukawa/snappeg/parser"
)

// Config represents the snappeg configuration
type Config struct {
	InputDir   string            `yaml:"input_dir"`
	StartRule  string            `yaml:"start_rule"`
	Functions  map[string]string `yaml:"functions"`
	Generation GenerationConfig  `yaml:"generation"`
	Markdown   MarkdownConfig    `yaml:"markdown"`
}

// GenerationConfig represents Go code generation settings
type GenerationConfig struct {
	Package      string `yaml:"package"`
	OutputSuffix string `yaml:"output_suffix"`
	Force        bool   `yaml:"force"`
	// Gofmt is a pointer to distinguish between unset and false.
	Gofmt *bool `yaml:"gofmt"`
}

// FormatOutput reports whether generated code is passed through gofmt.
func (g *GenerationConfig) FormatOutput() bool {
	return g.Gofmt == nil || *g.Gofmt
}

// MarkdownConfig represents settings for grammars written in Markdown
type MarkdownConfig struct {
	CodeBlockLang string `yaml:"code_block_lang"`
}

// Resolver returns the configured template functions as a resolver.
func (c *Config) Resolver() ast.FuncResolver {
	return ast.FuncMap(c.Functions)
}

var validIdentifier = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// LoadConfig loads configuration from the specified file
func LoadConfig(configPath string) (*Config, error) {
	// Load .env files first
	err := loadEnvFiles()
	if err != nil {
		return nil, fmt.Errorf("failed to load environment files: %w", err)
	}

	// Return default configuration if file doesn't exist
	if !fileExists(configPath) {
		config := getDefaultConfig()
		expandConfigEnvVars(config)

		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML with strict mode to detect unknown fields
	var config Config

	err = yaml.UnmarshalWithOptions(data, &config, yaml.Strict())
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	applyDefaults(&config)
	expandConfigEnvVars(&config)

	return &config, nil
}

// validateConfig validates the configuration for common errors and inconsistencies
func validateConfig(config *Config) error {
	if config.StartRule != "" && !validIdentifier.MatchString(config.StartRule) {
		return fmt.Errorf("%w: invalid start_rule '%s': must be an identifier", ErrConfigValidation, config.StartRule)
	}

	for name := range config.Functions {
		if !validIdentifier.MatchString(name) {
			return fmt.Errorf("%w: invalid function name '%s': must be an identifier", ErrConfigValidation, name)
		}
	}

	if config.Generation.Package != "" && !validIdentifier.MatchString(config.Generation.Package) {
		return fmt.Errorf("%w: invalid generation.package '%s'", ErrConfigValidation, config.Generation.Package)
	}

	if suffix := config.Generation.OutputSuffix; suffix != "" && !strings.HasSuffix(suffix, ".go") {
		return fmt.Errorf("%w: generation.output_suffix '%s' must end with .go", ErrConfigValidation, suffix)
	}

	return nil
}

func getDefaultConfig() *Config {
	return &Config{
		InputDir:  "./grammars",
		StartRule: parser.DefaultStartRule,
		Functions: make(map[string]string),
		Generation: GenerationConfig{
			OutputSuffix: ".go",
		},
		Markdown: MarkdownConfig{
			CodeBlockLang: "peg",
		},
	}
}

// applyDefaults fills in values that were left empty in the config file
func applyDefaults(config *Config) {
	defaults := getDefaultConfig()

	if config.InputDir == "" {
		config.InputDir = defaults.InputDir
	}

	if config.StartRule == "" {
		config.StartRule = defaults.StartRule
	}

	if config.Functions == nil {
		config.Functions = defaults.Functions
	}

	if config.Generation.OutputSuffix == "" {
		config.Generation.OutputSuffix = defaults.Generation.OutputSuffix
	}

	if config.Markdown.CodeBlockLang == "" {
		config.Markdown.CodeBlockLang = defaults.Markdown.CodeBlockLang
	}
}

// loadEnvFiles loads .env file if it exists
func loadEnvFiles() error {
	if fileExists(".env") {
		err := godotenv.Load(".env")
		if err != nil {
			return fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	return nil
}

var (
	bracedEnvVar = regexp.MustCompile(`\$\{([^}]+)\}`)
	plainEnvVar  = regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
)

// expandEnvVars expands ${VAR} and $VAR references
func expandEnvVars(s string) string {
	s = bracedEnvVar.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(match[2 : len(match)-1])
	})

	return plainEnvVar.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(match[1:])
	})
}

// expandConfigEnvVars expands environment variables in paths and function values.
// Function values are template output, so only ${VAR} references are expanded there.
func expandConfigEnvVars(config *Config) {
	config.InputDir = expandEnvVars(config.InputDir)

	for name, value := range config.Functions {
		config.Functions[name] = bracedEnvVar.ReplaceAllStringFunc(value, func(match string) string {
			return os.Getenv(match[2 : len(match)-1])
		})
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

package main

import (
	"fmt"
	"path/filepath"

	"github.com/fatih/color"
)

// InitCmd represents the init command
type InitCmd struct {
	Dir string `arg:"" optional:"" help:"Project directory" default:"." type:"path"`
}

func (i *InitCmd) Run(ctx *Context) error {
	if ctx.Verbose {
		color.Blue("Initializing snappeg project in %s", i.Dir)
	}

	grammarDir := filepath.Join(i.Dir, "grammars")

	err := createDir(grammarDir)
	if err != nil {
		return fmt.Errorf("failed to create directory %s: %w", grammarDir, err)
	}

	if ctx.Verbose {
		color.Green("Created directory: %s", grammarDir)
	}

	files := []struct {
		path    string
		content string
	}{
		{filepath.Join(i.Dir, "snappeg.yaml"), sampleConfig},
		{filepath.Join(grammarDir, "calc.peg.md"), sampleGrammar},
	}

	for _, f := range files {
		if err := writeFile(f.path, f.content); err != nil {
			return fmt.Errorf("failed to create %s: %w", f.path, err)
		}

		if ctx.Verbose {
			color.Green("Created file: %s", f.path)
		}
	}

	if !ctx.Quiet {
		color.Green("snappeg project initialized successfully")
		fmt.Fprintln(ctx.Stdout, "\nNext steps:")
		fmt.Fprintln(ctx.Stdout, "1. Write grammars in the grammars/ directory (*.peg or *.peg.md)")
		fmt.Fprintln(ctx.Stdout, "2. Run 'snappeg test' to check the test cases of grammar documents")
		fmt.Fprintln(ctx.Stdout, "3. Run 'snappeg generate' to generate Go rule sets")
	}

	return nil
}

const sampleConfig = `# Directory holding *.peg and *.peg.md grammars
input_dir: "./grammars"

# Rule parsing starts from
start_rule: "main"

# Template functions available as $(:name)
functions:
  el: "\n"

# Go code generation
generation:
  package: ""          # defaults to the directory name
  output_suffix: ".go" # calc.peg -> calc.peg.go
  force: false
  gofmt: true

markdown:
  code_block_lang: "peg"
`

const sampleGrammar = `---
name: calc
---
# Calculator

Translates arithmetic expressions into stack machine code.

## Grammar

~~~peg
main        =   _ e:expr _ eof                          -> $(e)

expr        =   term (_ op:add_op _ t:operand           -> $(t)$(op)
                )*

operand     =   term
            /   expected("number or parenthesis after operator")

term        =   factor (_ op:mult_op _ f:factor         -> $(f)$(op)
                )*

factor      =   '(' _ expr _ ')'                        -> $(expr)
            /   number                                  -> PUSH $(number)$(:el)

number "number" = [0-9]+ ('.' [0-9]+)?

add_op      =   '+'                                     -> EXEC ADD$(:el)
            /   '-'                                     -> EXEC SUB$(:el)

mult_op     =   '*'                                     -> EXEC MUL$(:el)
            /   '/'                                     -> EXEC DIV$(:el)

_           =   [ \t]*
~~~

## Test Cases

### precedence

~~~input
1 + 2 * 3
~~~

~~~output
PUSH 1
PUSH 2
PUSH 3
EXEC MUL
EXEC ADD
~~~

### missing operand

~~~input
1+
~~~

~~~error
number or parenthesis after operator
~~~
`

package ast

import (
	"fmt"
	"strings"
)

// ItemKind is the kind of a template item.
type ItemKind int

const (
	ItemText ItemKind = iota
	ItemByPos
	ItemByName
	ItemByNameOpt
	ItemFunction
)

// ReplItem is one element of a replacement template.
// Text carries the literal text, capture name or function name. Pos is the
// zero-based child index of ItemByPos.
type ReplItem struct {
	Kind ItemKind
	Text string
	Pos  int
}

// Template is an ordered list of replacement items.
type Template []ReplItem

func Text(s string) ReplItem         { return ReplItem{Kind: ItemText, Text: s} }
func ByPos(n int) ReplItem           { return ReplItem{Kind: ItemByPos, Pos: n} }
func ByName(name string) ReplItem    { return ReplItem{Kind: ItemByName, Text: name} }
func ByNameOpt(name string) ReplItem { return ReplItem{Kind: ItemByNameOpt, Text: name} }
func Function(name string) ReplItem  { return ReplItem{Kind: ItemFunction, Text: name} }

// String returns the template in grammar notation.
func (t Template) String() string {
	var sb strings.Builder

	for _, item := range t {
		switch item.Kind {
		case ItemText:
			sb.WriteString(escapeText(item.Text))
		case ItemByPos:
			fmt.Fprintf(&sb, "$(%d)", item.Pos+1)
		case ItemByName:
			fmt.Fprintf(&sb, "$(%s)", item.Text)
		case ItemByNameOpt:
			fmt.Fprintf(&sb, "$(?%s)", item.Text)
		case ItemFunction:
			fmt.Fprintf(&sb, "$(:%s)", item.Text)
		}
	}

	return sb.String()
}

func escapeText(s string) string {
	r := strings.NewReplacer(`\`, `\\`, "\n", `\n`, "\r", `\r`, "\t", `\t`, "$(", `\$(`)
	return r.Replace(s)
}

// RenderTemplate renders t against the children of one Transf2 node.
func RenderTemplate(t Template, scope []*Node, fr FuncResolver) (string, error) {
	var sb strings.Builder

	for _, item := range t {
		switch item.Kind {
		case ItemText:
			sb.WriteString(item.Text)

		case ItemByPos:
			if item.Pos < 0 || item.Pos >= len(scope) {
				return "", fmt.Errorf("%w: $(%d) with %d children", ErrPositionOutOfRange, item.Pos+1, len(scope))
			}

			v, err := scope[item.Pos].Render(fr)
			if err != nil {
				return "", err
			}

			sb.WriteString(v)

		case ItemByName, ItemByNameOpt:
			n, ok := Lookup(scope, item.Text)
			if !ok {
				if item.Kind == ItemByNameOpt {
					continue
				}

				return "", fmt.Errorf("%w: %s", ErrMissingCapture, item.Text)
			}

			v, err := n.Render(fr)
			if err != nil {
				return "", err
			}

			sb.WriteString(v)

		case ItemFunction:
			v, ok := resolve(fr, item.Text)
			if !ok {
				return "", fmt.Errorf("%w: %s", ErrUnresolvedFunction, item.Text)
			}

			sb.WriteString(v)
		}
	}

	return sb.String(), nil
}

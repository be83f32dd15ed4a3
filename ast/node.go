package ast

import (
	"fmt"
	"io"
	"strings"
)

// NodeKind identifies how a node was produced by the matcher.
type NodeKind int

const (
	// NodeValue holds the text matched by an atom.
	NodeValue NodeKind = iota
	// NodeGroup holds the children of a sequence, repetition or lookahead.
	NodeGroup
	// NodeRule wraps the result of a rule reference. Name is the rule name.
	NodeRule
	// NodeNamed wraps a capture. Name is the capture name.
	NodeNamed
	// NodeTransf2 holds a sequence whose value is produced by Template.
	NodeTransf2
)

func (k NodeKind) String() string {
	switch k {
	case NodeValue:
		return "value"
	case NodeGroup:
		return "group"
	case NodeRule:
		return "rule"
	case NodeNamed:
		return "named"
	case NodeTransf2:
		return "transf2"
	default:
		return "unknown"
	}
}

// Node is an element of the parse tree.
type Node struct {
	Kind     NodeKind
	Name     string
	Text     string
	Children []*Node
	Template Template
}

func NewValue(text string) *Node {
	return &Node{Kind: NodeValue, Text: text}
}

func NewGroup(children ...*Node) *Node {
	return &Node{Kind: NodeGroup, Children: children}
}

func NewRule(name string, child *Node) *Node {
	return &Node{Kind: NodeRule, Name: name, Children: []*Node{child}}
}

func NewNamed(name string, child *Node) *Node {
	return &Node{Kind: NodeNamed, Name: name, Children: []*Node{child}}
}

func NewTransf2(tmpl Template, children ...*Node) *Node {
	return &Node{Kind: NodeTransf2, Template: tmpl, Children: children}
}

// Render returns the value of the node.
//
// Atoms yield their matched text and Transf2 nodes yield their template
// rendered against their own children. Every other node yields the
// concatenation of its children's values. Nested templates are resolved
// before the templates that contain them.
func (n *Node) Render(fr FuncResolver) (string, error) {
	if n == nil {
		return "", nil
	}

	switch n.Kind {
	case NodeValue:
		return n.Text, nil
	case NodeTransf2:
		return RenderTemplate(n.Template, n.Children, fr)
	}

	var sb strings.Builder

	for _, child := range n.Children {
		v, err := child.Render(fr)
		if err != nil {
			return "", err
		}

		sb.WriteString(v)
	}

	return sb.String(), nil
}

// Matched returns the input text covered by the node, ignoring templates.
func (n *Node) Matched() string {
	if n == nil {
		return ""
	}

	if n.Kind == NodeValue {
		return n.Text
	}

	var sb strings.Builder
	for _, child := range n.Children {
		sb.WriteString(child.Matched())
	}

	return sb.String()
}

// Lookup finds a capture or rule node by name among the nodes of one scope.
// Groups are transparent. Rule, named and Transf2 nodes are not entered.
func Lookup(scope []*Node, name string) (*Node, bool) {
	for _, n := range scope {
		if n == nil {
			continue
		}

		switch n.Kind {
		case NodeGroup:
			if found, ok := Lookup(n.Children, name); ok {
				return found, true
			}
		case NodeRule, NodeNamed:
			if n.Name == name {
				return n, true
			}
		}
	}

	return nil, false
}

// Dump writes an indented representation of the tree.
func Dump(w io.Writer, n *Node) error {
	return dump(w, n, 0)
}

func dump(w io.Writer, n *Node, depth int) error {
	if n == nil {
		return nil
	}

	indent := strings.Repeat("  ", depth)

	var err error

	switch n.Kind {
	case NodeValue:
		_, err = fmt.Fprintf(w, "%s%q\n", indent, n.Text)
	case NodeRule:
		_, err = fmt.Fprintf(w, "%s%s\n", indent, n.Name)
	case NodeNamed:
		_, err = fmt.Fprintf(w, "%s%s:\n", indent, n.Name)
	case NodeTransf2:
		_, err = fmt.Fprintf(w, "%s-> %s\n", indent, n.Template)
	default:
		_, err = fmt.Fprintf(w, "%s(%d)\n", indent, len(n.Children))
	}

	if err != nil {
		return err
	}

	for _, child := range n.Children {
		if err := dump(w, child, depth+1); err != nil {
			return err
		}
	}

	return nil
}

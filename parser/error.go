package parser

import (
	"fmt"
	"strings"
)

// ErrPriority ranks errors reported at the same offset.
type ErrPriority int

const (
	PriorityNormal ErrPriority = iota
	// PriorityCritical marks errors raised by an expected() directive.
	PriorityCritical
)

func (p ErrPriority) String() string {
	if p == PriorityCritical {
		return "critical"
	}

	return "normal"
}

// ErrorAlternatives lists what could have matched at the error position.
type ErrorAlternatives struct {
	Context  string
	Expected []string
}

// Error is a parse failure.
type Error struct {
	Pos          Position
	Alternatives ErrorAlternatives
	// LineBefore is the text of the failing line up to the position.
	LineBefore string
	// LineAfter is the rest of the failing line.
	LineAfter string
	// ParsingRules is the rule path at the failure. Only set when tracing.
	ParsingRules []string
	Priority     ErrPriority
}

func (e *Error) Error() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s at %s", ErrParse, e.Pos)

	if e.Alternatives.Context != "" {
		fmt.Fprintf(&sb, " in %s", e.Alternatives.Context)
	}

	if len(e.Alternatives.Expected) > 0 {
		fmt.Fprintf(&sb, ": expected %s", strings.Join(e.Alternatives.Expected, " or "))
	}

	return sb.String()
}

func (e *Error) Unwrap() error {
	return ErrParse
}

// Detail returns the message followed by the failing line and a caret.
func (e *Error) Detail() string {
	var sb strings.Builder

	sb.WriteString(e.Error())
	sb.WriteString("\n")
	sb.WriteString(e.LineBefore)
	sb.WriteString(e.LineAfter)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat(" ", e.Pos.Column-1))
	sb.WriteString("^")

	if len(e.ParsingRules) > 0 {
		sb.WriteString("\nrules: ")
		sb.WriteString(strings.Join(e.ParsingRules, " > "))
	}

	return sb.String()
}

// withContext returns a copy carrying ctx unless a context is already set.
func (e *Error) withContext(ctx string) *Error {
	if e == nil || ctx == "" || e.Alternatives.Context != "" {
		return e
	}

	c := *e
	c.Alternatives.Context = ctx

	return &c
}

// mergeErrors keeps the error at the larger offset. Errors at the same
// offset have their alternatives joined whatever their priority, and the
// merged error takes the higher priority. Contexts that disagree are
// dropped, so the innermost rule enclosing both failures supplies one.
// Neither argument is modified.
func mergeErrors(a, b *Error) *Error {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case a.Pos.Offset > b.Pos.Offset:
		return a
	case a.Pos.Offset < b.Pos.Offset:
		return b
	}

	merged := *a
	merged.Alternatives.Expected = make([]string, 0, len(a.Alternatives.Expected)+len(b.Alternatives.Expected))
	merged.Alternatives.Expected = append(merged.Alternatives.Expected, a.Alternatives.Expected...)
	merged.Alternatives.Expected = append(merged.Alternatives.Expected, b.Alternatives.Expected...)
	merged.Priority = max(a.Priority, b.Priority)

	if a.Alternatives.Context != b.Alternatives.Context {
		merged.Alternatives.Context = ""
	}

	return &merged
}

// furthest returns b only when it is strictly further than a.
func furthest(a, b *Error) *Error {
	if a == nil {
		return b
	}

	if b != nil && b.Pos.Offset > a.Pos.Offset {
		return b
	}

	return a
}

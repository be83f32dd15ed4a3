package parser

import (
	"github.com/shibukawa/snappeg/ast"
)

// DefaultStartRule is the rule a parse starts from unless overridden.
const DefaultStartRule = "main"

type parseOptions struct {
	startRule string
}

// Option configures a parse.
type Option func(*parseOptions)

// WithStartRule sets the rule a parse starts from.
func WithStartRule(name string) Option {
	return func(o *parseOptions) {
		if name != "" {
			o.startRule = name
		}
	}
}

// TraceEvent records one attempt to match a rule.
type TraceEvent struct {
	Rule    string
	Depth   int
	Start   Position
	End     Position
	Matched bool
}

// Trace lists rule attempts in the order they started.
type Trace []TraceEvent

type tracer struct {
	events Trace
}

func (t *tracer) enter(rule string, depth int, pos Position) int {
	if t == nil {
		return -1
	}

	t.events = append(t.events, TraceEvent{Rule: rule, Depth: depth, Start: pos})

	return len(t.events) - 1
}

func (t *tracer) leave(ev int, pos Position, matched bool) {
	if t == nil || ev < 0 {
		return
	}

	t.events[ev].End = pos
	t.events[ev].Matched = matched
}

// Parse matches the whole input against the start rule.
// The returned error is a *Error.
func (rs RuleSet) Parse(input string, opts ...Option) (*ast.Node, error) {
	node, _, err := rs.parse(input, false, opts)
	return node, err
}

// ParseWithTrace is Parse that also records every rule attempt and fills
// Error.ParsingRules.
func (rs RuleSet) ParseWithTrace(input string, opts ...Option) (*ast.Node, Trace, error) {
	return rs.parse(input, true, opts)
}

func (rs RuleSet) parse(input string, trace bool, opts []Option) (*ast.Node, Trace, error) {
	o := parseOptions{startRule: DefaultStartRule}
	for _, opt := range opts {
		opt(&o)
	}

	st := status{
		input: input,
		pos:   StartPosition(),
		rules: rs,
	}

	if trace {
		st.tracer = &tracer{}
	}

	next, node, perr := st.match(RuleName{Name: o.startRule})

	var events Trace
	if st.tracer != nil {
		events = st.tracer.events
	}

	if perr != nil {
		return nil, events, perr
	}

	if next.pos.Offset == len(input) {
		return node, events, nil
	}

	if next.potential != nil && next.potential.Pos.Offset >= next.pos.Offset {
		return nil, events, next.potential
	}

	perr = next.fail(PriorityNormal, describe(EOF{}))
	perr.Alternatives.Context = "not consumed full input"

	return nil, events, perr
}

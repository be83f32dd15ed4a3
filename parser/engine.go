package parser

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/shibukawa/snappeg/ast"
)

// status is the matcher state. It is passed and returned by value, so a
// failed branch is abandoned by dropping its copy.
type status struct {
	input     string
	pos       Position
	rules     RuleSet
	potential *Error
	path      []string
	tracer    *tracer
}

func (st status) rest() string {
	return st.input[st.pos.Offset:]
}

func (st status) fail(priority ErrPriority, expected ...string) *Error {
	lineEnd := strings.IndexByte(st.rest(), '\n')
	if lineEnd < 0 {
		lineEnd = len(st.rest())
	}

	err := &Error{
		Pos:          st.pos,
		Alternatives: ErrorAlternatives{Expected: expected},
		LineBefore:   st.input[st.pos.LineStart:st.pos.Offset],
		LineAfter:    strings.TrimSuffix(st.rest()[:lineEnd], "\r"),
		Priority:     priority,
	}

	if st.tracer != nil {
		err.ParsingRules = slices.Clone(st.path)
	}

	return err
}

// match evaluates e at the current position. On failure the returned status
// is st itself.
func (st status) match(e Expression) (status, *ast.Node, *Error) {
	switch v := e.(type) {
	case Literal:
		if !strings.HasPrefix(st.rest(), v.Text) {
			return st, nil, st.fail(PriorityNormal, describe(v))
		}

		next := st
		next.pos = st.pos.Advance(v.Text)

		return next, ast.NewValue(v.Text), nil

	case Match:
		r, size := utf8.DecodeRuneInString(st.rest())
		if size == 0 || !v.accepts(r) {
			return st, nil, st.fail(PriorityNormal, describe(v))
		}

		return st.consume(size)

	case Dot:
		_, size := utf8.DecodeRuneInString(st.rest())
		if size == 0 {
			return st, nil, st.fail(PriorityNormal, describe(v))
		}

		return st.consume(size)

	case EOF:
		if st.pos.Offset != len(st.input) {
			return st, nil, st.fail(PriorityNormal, describe(v))
		}

		return st, ast.NewValue(""), nil

	case Expected:
		return st, nil, st.fail(PriorityCritical, v.Message)

	case And:
		next, children, err := st.matchSeq(v.Exprs)
		if err != nil {
			return st, nil, err
		}

		return next, ast.NewGroup(children...), nil

	case Or:
		return st.matchOr(v)

	case Not:
		_, _, err := st.match(v.Expr)
		if err == nil {
			return st, nil, st.fail(PriorityNormal, v.String())
		}

		return st, ast.NewGroup(), nil

	case Peek:
		_, node, err := st.match(v.Expr)
		if err != nil {
			return st, nil, err
		}

		return st, node, nil

	case Repeat:
		return st.matchRepeat(v)

	case RuleName:
		return st.matchRule(v.Name)

	case Named:
		next, node, err := st.match(v.Expr)
		if err != nil {
			return st, nil, err
		}

		return next, ast.NewNamed(v.Name, node), nil

	case Transf2:
		next, children, err := st.matchSeq(v.Exprs)
		if err != nil {
			return st, nil, err
		}

		return next, ast.NewTransf2(v.Template, children...), nil

	default:
		return st, nil, st.fail(PriorityCritical, "unsupported expression")
	}
}

func (st status) consume(size int) (status, *ast.Node, *Error) {
	text := st.rest()[:size]
	next := st
	next.pos = st.pos.Advance(text)

	return next, ast.NewValue(text), nil
}

func (m Match) accepts(r rune) bool {
	if strings.ContainsRune(m.Chars, r) {
		return true
	}

	for _, rg := range m.Ranges {
		if rg.From <= r && r <= rg.To {
			return true
		}
	}

	return false
}

// matchSeq matches exprs one after another. The error of the failing
// element is returned unless an error recorded earlier in the sequence
// reached further.
func (st status) matchSeq(exprs []Expression) (status, []*ast.Node, *Error) {
	cur := st
	children := make([]*ast.Node, 0, len(exprs))

	for _, e := range exprs {
		next, node, err := cur.match(e)
		if err != nil {
			return st, nil, furthest(err, cur.potential)
		}

		children = append(children, node)
		cur = next
	}

	return cur, children, nil
}

// matchOr tries every alternative from the same status until one succeeds.
// Failures of the earlier alternatives are merged and kept as the potential
// error of the winner.
func (st status) matchOr(e Or) (status, *ast.Node, *Error) {
	var failures *Error

	for _, alt := range e.Exprs {
		next, node, err := st.match(alt)
		if err == nil {
			next.potential = mergeErrors(next.potential, failures)
			return next, node, nil
		}

		failures = mergeErrors(failures, err)
	}

	if failures == nil {
		failures = st.fail(PriorityNormal)
	}

	return st, nil, failures
}

// matchRepeat is greedy. An iteration that succeeds without consuming input
// ends the loop: the body is nullable at this position, so every further
// iteration would match the same way. Its node is repeated up to the
// minimum. The error that stopped the loop stays in the potential error
// because it may be the real failure point.
func (st status) matchRepeat(e Repeat) (status, *ast.Node, *Error) {
	cur := st
	count := 0

	var (
		children []*ast.Node
		last     *Error
	)

	for e.Max == Unbounded || count < e.Max {
		next, node, err := cur.match(e.Expr)
		if err != nil {
			last = err
			break
		}

		children = append(children, node)
		count++

		if next.pos.Offset == cur.pos.Offset {
			for ; count < e.Min; count++ {
				children = append(children, node)
			}

			cur = next

			break
		}

		cur = next
	}

	if count < e.Min {
		return st, nil, furthest(last, cur.potential)
	}

	cur.potential = mergeErrors(cur.potential, last)

	return cur, ast.NewGroup(children...), nil
}

func (st status) matchRule(name string) (status, *ast.Node, *Error) {
	info, ok := st.rules[name]
	if !ok {
		err := st.fail(PriorityCritical, name)
		err.Alternatives.Context = ErrUndefinedRule.Error()

		return st, nil, err
	}

	inner := st
	if st.tracer != nil {
		inner.path = append(st.path[:len(st.path):len(st.path)], name)
	}

	ev := st.tracer.enter(name, len(st.path), st.pos)

	next, node, err := inner.match(info.Expr)
	if err != nil {
		st.tracer.leave(ev, st.pos, false)
		return st, nil, err.withContext(info.Descr)
	}

	st.tracer.leave(ev, next.pos, true)
	next.path = st.path

	return next, ast.NewRule(name, node), nil
}

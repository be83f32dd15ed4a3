package parser

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func errAt(offset int, priority ErrPriority, expected ...string) *Error {
	return &Error{
		Pos:          Position{Offset: offset, Line: 1, Column: offset + 1},
		Alternatives: ErrorAlternatives{Expected: expected},
		Priority:     priority,
	}
}

func TestMergeErrors(t *testing.T) {
	tests := []struct {
		name     string
		a, b     *Error
		offset   int
		priority ErrPriority
		expected []string
	}{
		{
			name:     "larger offset wins",
			a:        errAt(3, PriorityNormal, "a"),
			b:        errAt(5, PriorityNormal, "b"),
			offset:   5,
			expected: []string{"b"},
		},
		{
			name:     "priority does not override offset",
			a:        errAt(3, PriorityCritical, "a"),
			b:        errAt(5, PriorityNormal, "b"),
			offset:   5,
			expected: []string{"b"},
		},
		{
			name:     "same offset joins alternatives",
			a:        errAt(2, PriorityNormal, "a", "b"),
			b:        errAt(2, PriorityNormal, "b"),
			offset:   2,
			expected: []string{"a", "b", "b"},
		},
		{
			name:     "same offset keeps normal alternatives next to critical",
			a:        errAt(2, PriorityNormal, "a"),
			b:        errAt(2, PriorityCritical, "msg"),
			offset:   2,
			priority: PriorityCritical,
			expected: []string{"a", "msg"},
		},
		{
			name:     "same offset critical first",
			a:        errAt(2, PriorityCritical, "msg"),
			b:        errAt(2, PriorityNormal, "a"),
			offset:   2,
			priority: PriorityCritical,
			expected: []string{"msg", "a"},
		},
		{
			name:     "nil left",
			b:        errAt(1, PriorityNormal, "x"),
			offset:   1,
			expected: []string{"x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merged := mergeErrors(tt.a, tt.b)
			assert.Equal(t, tt.offset, merged.Pos.Offset)
			assert.Equal(t, tt.priority, merged.Priority)
			assert.Equal(t, tt.expected, merged.Alternatives.Expected)
		})
	}
}

func TestMergeErrorsContext(t *testing.T) {
	withContext := func(e *Error, ctx string) *Error {
		e.Alternatives.Context = ctx
		return e
	}

	tests := []struct {
		name     string
		a, b     *Error
		expected string
	}{
		{
			name:     "same context kept",
			a:        withContext(errAt(1, PriorityNormal, "a"), "number"),
			b:        withContext(errAt(1, PriorityNormal, "b"), "number"),
			expected: "number",
		},
		{
			name:     "context of one branch dropped",
			a:        errAt(1, PriorityNormal, "("),
			b:        withContext(errAt(1, PriorityNormal, `"`), "quoted string"),
			expected: "",
		},
		{
			name:     "different contexts dropped",
			a:        withContext(errAt(1, PriorityNormal, "a"), "number"),
			b:        withContext(errAt(1, PriorityNormal, "b"), "identifier"),
			expected: "",
		},
		{
			name:     "context of further error kept",
			a:        errAt(1, PriorityNormal, "a"),
			b:        withContext(errAt(2, PriorityNormal, "b"), "identifier"),
			expected: "identifier",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, mergeErrors(tt.a, tt.b).Alternatives.Context)
		})
	}
}

func TestMergeErrorsDoesNotModifyInputs(t *testing.T) {
	a := errAt(2, PriorityNormal, "a")
	b := errAt(2, PriorityNormal, "b")

	_ = mergeErrors(a, b)

	assert.Equal(t, []string{"a"}, a.Alternatives.Expected)
	assert.Equal(t, []string{"b"}, b.Alternatives.Expected)
}

func TestErrorDetail(t *testing.T) {
	err := &Error{
		Pos:          Position{Offset: 6, Line: 2, Column: 3, LineStart: 4},
		Alternatives: ErrorAlternatives{Context: "term", Expected: []string{"(", "number"}},
		LineBefore:   "1+",
		LineAfter:    "*2",
		ParsingRules: []string{"main", "term"},
	}

	assert.Equal(t, "parse error at line 2, column 3 in term: expected ( or number\n1+*2\n  ^\nrules: main > term", err.Detail())
}

func TestPositionAdvance(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected Position
	}{
		{name: "plain", text: "abc", expected: Position{Offset: 3, Line: 1, Column: 4}},
		{name: "newline", text: "ab\nc", expected: Position{Offset: 4, Line: 2, Column: 2, LineStart: 3}},
		{name: "crlf", text: "a\r\nb", expected: Position{Offset: 4, Line: 2, Column: 2, LineStart: 3}},
		{name: "multibyte", text: "日本", expected: Position{Offset: 6, Line: 1, Column: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StartPosition().Advance(tt.text))
		})
	}
}

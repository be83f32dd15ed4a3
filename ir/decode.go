package ir

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	pc "github.com/shibukawa/parsercombinator"

	"github.com/shibukawa/snappeg/ast"
	"github.com/shibukawa/snappeg/parser"
)

// entity is a line of the stream on input and a decoded value on output.
type entity struct {
	line  string
	value any
}

type (
	streamParser = pc.Parser[entity]
	streamToken  = pc.Token[entity]
	streamCtx    = pc.ParseContext[entity]
)

// ruleEntry is the decoded value of a RULE block.
type ruleEntry struct {
	name string
	info parser.RuleInfo
}

// decodeError reports a malformed line. It is critical, so the combinators
// stop instead of trying further alternatives.
type decodeError struct {
	err  error
	line int
	text string
}

func (e *decodeError) Error() string {
	if e.line == 0 {
		return e.err.Error()
	}

	return fmt.Sprintf("%s: line %d: %q", e.err, e.line, e.text)
}

func (e *decodeError) Unwrap() []error {
	return []error{e.err, pc.ErrCritical}
}

func unexpectedEnd() error {
	return &decodeError{err: ErrUnexpectedEnd}
}

func malformed(err error, t streamToken) error {
	return &decodeError{err: err, line: t.Pos.Line, text: t.Raw}
}

func tokenize(text string) []streamToken {
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	tokens := make([]streamToken, len(lines))

	for i, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		tokens[i] = streamToken{
			Type: "line",
			Pos:  &pc.Pos{Line: i + 1, Col: 1, Index: i},
			Val:  entity{line: line},
			Raw:  line,
		}
	}

	return tokens
}

func isTag(t streamToken, tags ...string) bool {
	return slices.Contains(tags, strings.TrimSpace(t.Val.line))
}

// tag matches a line holding one of the tags.
func tag(tags ...string) streamParser {
	return func(pctx *streamCtx, tokens []streamToken) (int, []streamToken, error) {
		if len(tokens) > 0 && isTag(tokens[0], tags...) {
			return 1, tokens[:1], nil
		}

		return 0, nil, pc.ErrNotMatch
	}
}

// marker consumes a mandatory tag line without producing a value.
func marker(name string) streamParser {
	return required(func(pctx *streamCtx, tokens []streamToken) (int, []streamToken, error) {
		if len(tokens) > 0 && isTag(tokens[0], name) {
			return 1, nil, nil
		}

		return 0, nil, pc.ErrNotMatch
	})
}

// arg reads the argument line that follows a tag.
func arg() streamParser {
	return func(pctx *streamCtx, tokens []streamToken) (int, []streamToken, error) {
		if len(tokens) == 0 {
			return 0, nil, unexpectedEnd()
		}

		return 1, value(tokens[0], Unescape(tokens[0].Val.line)), nil
	}
}

// bound reads the first side of a BETW range. EOBETW ends the ranges.
func bound() streamParser {
	return func(pctx *streamCtx, tokens []streamToken) (int, []streamToken, error) {
		if len(tokens) == 0 || isTag(tokens[0], TagEndBetween) {
			return 0, nil, pc.ErrNotMatch
		}

		return 1, value(tokens[0], Unescape(tokens[0].Val.line)), nil
	}
}

// required turns a mismatch into a decode error at the current line.
func required(p streamParser) streamParser {
	return func(pctx *streamCtx, tokens []streamToken) (int, []streamToken, error) {
		n, out, err := p(pctx, tokens)
		if err == nil || errors.Is(err, pc.ErrCritical) {
			return n, out, err
		}

		if len(tokens) == 0 {
			return 0, nil, unexpectedEnd()
		}

		return 0, nil, malformed(ErrUnknownTag, tokens[0])
	}
}

func value(at streamToken, v any) []streamToken {
	return []streamToken{{Type: "value", Pos: at.Pos, Val: entity{value: v}, Raw: at.Raw}}
}

func str(t streamToken) string {
	return t.Val.value.(string)
}

func exprOf(t streamToken) parser.Expression {
	return t.Val.value.(parser.Expression)
}

func exprsOf(tokens []streamToken) []parser.Expression {
	exprs := make([]parser.Expression, 0, len(tokens))
	for _, t := range tokens {
		exprs = append(exprs, exprOf(t))
	}

	return exprs
}

// newStreamParser builds the grammar of the command stream. Every construct
// starts with its own tag, so at most one alternative of an Or can match.
func newStreamParser() streamParser {
	var expression streamParser

	lazy := pc.Lazy(func() streamParser { return expression })
	expr := required(lazy)
	exprs := pc.ZeroOrMore("expressions", lazy)

	atom := pc.Seq(tag(TagAtom), required(pc.Or(
		pc.Trans(pc.Seq(tag(TagLiteral), arg()), func(pctx *streamCtx, tokens []streamToken) ([]streamToken, error) {
			return value(tokens[0], parser.Literal{Text: str(tokens[1])}), nil
		}),
		pc.Trans(pc.Seq(tag(TagRuleRef), arg()), func(pctx *streamCtx, tokens []streamToken) ([]streamToken, error) {
			return value(tokens[0], parser.RuleName{Name: strings.TrimSpace(str(tokens[1]))}), nil
		}),
		pc.Trans(tag(TagDot), func(pctx *streamCtx, tokens []streamToken) ([]streamToken, error) {
			return value(tokens[0], parser.Dot{}), nil
		}),
		pc.Trans(tag(TagEOF), func(pctx *streamCtx, tokens []streamToken) ([]streamToken, error) {
			return value(tokens[0], parser.EOF{}), nil
		}),
	)))

	charRange := pc.Trans(pc.Seq(bound(), arg()), decodeRange)

	match := pc.ZeroOrMore("match blocks", pc.Or(
		pc.Trans(pc.Seq(tag(TagChars), arg()), func(pctx *streamCtx, tokens []streamToken) ([]streamToken, error) {
			return tokens[1:], nil
		}),
		pc.Trans(pc.Seq(tag(TagBetween), pc.ZeroOrMore("ranges", charRange), marker(TagEndBetween)), func(pctx *streamCtx, tokens []streamToken) ([]streamToken, error) {
			return tokens[1:], nil
		}),
	))

	templateItem := pc.Or(
		pc.Trans(pc.Seq(tag(TagText), arg()), replItem(ast.Text)),
		pc.Trans(pc.Seq(tag(TagNamed), arg()), replItem(ast.ByName)),
		pc.Trans(pc.Seq(tag(TagNamedOpt), arg()), replItem(ast.ByNameOpt)),
		pc.Trans(pc.Seq(tag(TagFunction), arg()), replItem(ast.Function)),
		pc.Trans(pc.Seq(tag(TagPos), arg()), decodePos),
	)

	expression = pc.Or(
		pc.Trans(atom, func(pctx *streamCtx, tokens []streamToken) ([]streamToken, error) {
			return tokens[1:], nil
		}),
		pc.Trans(pc.Seq(tag(TagAnd), exprs, marker(TagCloseExpr)), func(pctx *streamCtx, tokens []streamToken) ([]streamToken, error) {
			return value(tokens[0], parser.And{Exprs: exprsOf(tokens[1:])}), nil
		}),
		pc.Trans(pc.Seq(tag(TagOr), exprs, marker(TagCloseExpr)), func(pctx *streamCtx, tokens []streamToken) ([]streamToken, error) {
			return value(tokens[0], parser.Or{Exprs: exprsOf(tokens[1:])}), nil
		}),
		pc.Trans(pc.Seq(tag(TagRepeat), arg(), arg(), expr), decodeRepeat),
		pc.Trans(pc.Seq(tag(TagMatch), match), decodeMatch),
		pc.Trans(pc.Seq(tag(TagNamed), arg(), expr), func(pctx *streamCtx, tokens []streamToken) ([]streamToken, error) {
			return value(tokens[0], parser.Named{Name: strings.TrimSpace(str(tokens[1])), Expr: exprOf(tokens[2])}), nil
		}),
		pc.Trans(pc.Seq(tag(TagNegate), expr), func(pctx *streamCtx, tokens []streamToken) ([]streamToken, error) {
			return value(tokens[0], parser.Not{Expr: exprOf(tokens[1])}), nil
		}),
		pc.Trans(pc.Seq(tag(TagPeek), expr), func(pctx *streamCtx, tokens []streamToken) ([]streamToken, error) {
			return value(tokens[0], parser.Peek{Expr: exprOf(tokens[1])}), nil
		}),
		pc.Trans(pc.Seq(tag(TagExpected), arg()), func(pctx *streamCtx, tokens []streamToken) ([]streamToken, error) {
			return value(tokens[0], parser.Expected{Message: str(tokens[1])}), nil
		}),
		pc.Trans(pc.Seq(tag(TagTransf2), pc.ZeroOrMore("template items", templateItem), marker(TagEndTransf2), expr), decodeTransf2),
	)

	rule := pc.Trans(pc.Seq(tag(TagRule), arg(), marker(TagDescr), arg(), expr), func(pctx *streamCtx, tokens []streamToken) ([]streamToken, error) {
		return value(tokens[0], ruleEntry{
			name: strings.TrimSpace(str(tokens[1])),
			info: parser.RuleInfo{Expr: exprOf(tokens[3]), Descr: strings.TrimSpace(str(tokens[2]))},
		}), nil
	})

	return pc.Seq(pc.ZeroOrMore("rules", rule), marker(TagEnd))
}

// Decode rebuilds a rule set from a command stream.
func Decode(text string) (parser.RuleSet, error) {
	tokens := tokenize(text)

	pctx := pc.NewParseContext[entity]()
	pctx.OrMode = pc.OrModeTryFast

	consumed, entries, err := newStreamParser()(pctx, tokens)
	if err != nil {
		if !errors.Is(err, ErrDecode) {
			err = fmt.Errorf("%w: %w", ErrDecode, err)
		}

		return nil, err
	}

	for _, rest := range tokens[consumed:] {
		if strings.TrimSpace(rest.Val.line) != "" {
			return nil, malformed(ErrTrailingContent, rest)
		}
	}

	rules := parser.RuleSet{}

	for _, t := range entries {
		entry := t.Val.value.(ruleEntry)
		if _, ok := rules[entry.name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateRule, entry.name)
		}

		rules[entry.name] = entry.info
	}

	return rules, nil
}

func replItem(build func(string) ast.ReplItem) func(*streamCtx, []streamToken) ([]streamToken, error) {
	return func(pctx *streamCtx, tokens []streamToken) ([]streamToken, error) {
		s := str(tokens[1])
		if !isTag(tokens[0], TagText) {
			s = strings.TrimSpace(s)
		}

		return value(tokens[0], build(s)), nil
	}
}

// decodePos converts the 1-based wire position to a child index.
func decodePos(pctx *streamCtx, tokens []streamToken) ([]streamToken, error) {
	n, err := strconv.Atoi(strings.TrimSpace(str(tokens[1])))
	if err != nil || n < 1 {
		return nil, malformed(ErrInvalidNumber, tokens[1])
	}

	return value(tokens[0], ast.ByPos(n-1)), nil
}

func decodeRepeat(pctx *streamCtx, tokens []streamToken) ([]streamToken, error) {
	minCount, err := strconv.Atoi(strings.TrimSpace(str(tokens[1])))
	if err != nil || minCount < 0 {
		return nil, malformed(ErrInvalidNumber, tokens[1])
	}

	maxCount := parser.Unbounded

	if maxText := strings.TrimSpace(str(tokens[2])); maxText != Unbounded {
		n, err := strconv.Atoi(maxText)
		if err != nil || n < minCount {
			return nil, malformed(ErrInvalidNumber, tokens[2])
		}

		maxCount = n
	}

	return value(tokens[0], parser.Repeat{Expr: exprOf(tokens[3]), Min: minCount, Max: maxCount}), nil
}

func decodeChar(t streamToken) (rune, error) {
	s := str(t)
	if utf8.RuneCountInString(s) != 1 {
		return 0, malformed(ErrInvalidRange, t)
	}

	c, _ := utf8.DecodeRuneInString(s)

	return c, nil
}

func decodeRange(pctx *streamCtx, tokens []streamToken) ([]streamToken, error) {
	from, err := decodeChar(tokens[0])
	if err != nil {
		return nil, err
	}

	to, err := decodeChar(tokens[1])
	if err != nil {
		return nil, err
	}

	if from > to {
		return nil, malformed(ErrInvalidRange, tokens[1])
	}

	return value(tokens[0], parser.Range{From: from, To: to}), nil
}

// decodeMatch joins the CHARS and BETW blocks that follow MATCH.
func decodeMatch(pctx *streamCtx, tokens []streamToken) ([]streamToken, error) {
	var (
		chars  strings.Builder
		ranges []parser.Range
	)

	for _, t := range tokens[1:] {
		switch v := t.Val.value.(type) {
		case string:
			chars.WriteString(v)
		case parser.Range:
			ranges = append(ranges, v)
		}
	}

	return value(tokens[0], parser.Match{Chars: chars.String(), Ranges: ranges}), nil
}

// decodeTransf2 takes the template items and the expression that follows
// EOTRANSF2. An AND expression supplies the matched sequence directly.
func decodeTransf2(pctx *streamCtx, tokens []streamToken) ([]streamToken, error) {
	items := tokens[1 : len(tokens)-1]

	var tmpl ast.Template
	for _, t := range items {
		tmpl = append(tmpl, t.Val.value.(ast.ReplItem))
	}

	inner := exprOf(tokens[len(tokens)-1])
	if and, ok := inner.(parser.And); ok {
		return value(tokens[0], parser.Transf2{Exprs: and.Exprs, Template: tmpl}), nil
	}

	return value(tokens[0], parser.Transf2{Exprs: []parser.Expression{inner}, Template: tmpl}), nil
}

// Package ir reads and writes the line protocol that the grammar notation
// is rendered into.
//
// Every line is either a tag or an argument. Each tag is followed by a fixed
// number of argument lines and nested expressions. Variable length lists are
// closed by CLOSE_MEXPR, EOTRANSF2 or EOBETW, and the stream ends with EOP.
// Argument lines use backslash escapes for backslash, LF, CR and TAB.
package ir

const (
	TagRule       = "RULE"
	TagDescr      = "DESCR"
	TagAtom       = "ATOM"
	TagAnd        = "AND"
	TagOr         = "OR"
	TagRepeat     = "REPEAT"
	TagMatch      = "MATCH"
	TagNamed      = "NAMED"
	TagNegate     = "NEGATE"
	TagExpected   = "EXPECTED"
	TagTransf2    = "TRANSF2"
	TagPeek       = "PEEK"
	TagChars      = "CHARS"
	TagBetween    = "BETW"
	TagEndBetween = "EOBETW"
	TagText       = "TEXT"
	TagPos        = "POS"
	TagFunction   = "FUNCT"
	TagNamedOpt   = "NAMED_OPT"
	TagEndTransf2 = "EOTRANSF2"
	TagCloseExpr  = "CLOSE_MEXPR"
	TagLiteral    = "LIT"
	TagRuleRef    = "RULREF"
	TagDot        = "DOT"
	TagEOF        = "EOF"
	TagEnd        = "EOP"

	// Unbounded is the REPEAT maximum without limit.
	Unbounded = "inf"
)

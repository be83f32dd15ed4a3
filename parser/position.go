package parser

import (
	"fmt"
	"unicode/utf8"
)

// Position is a cursor location in the input.
// Offset is in bytes. Line and Column are 1-based and Column counts runes.
// LineStart is the offset of the first byte of the current line.
type Position struct {
	Offset    int
	Line      int
	Column    int
	LineStart int
}

// StartPosition is the position before the first character.
func StartPosition() Position {
	return Position{Line: 1, Column: 1}
}

func (p Position) String() string {
	return fmt.Sprintf("line %d, column %d", p.Line, p.Column)
}

// Advance returns the position after consuming s.
func (p Position) Advance(s string) Position {
	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		s = s[size:]
		p.Offset += size

		switch r {
		case '\n':
			p.Line++
			p.Column = 1
			p.LineStart = p.Offset
		case '\r':
			p.Column = 1
		default:
			p.Column++
		}
	}

	return p
}

package parser

import "errors"

// Sentinel errors - rule set and parse failures
var (
	ErrParse         = errors.New("parse error")
	ErrUndefinedRule = errors.New("undefined rule")
	ErrDuplicateRule = errors.New("duplicate rule")
	ErrInvalidRepeat = errors.New("invalid repeat bounds")
)

package gogen

import "errors"

// ErrGenerateGoCode is returned when a rule set cannot be rendered as Go code.
var ErrGenerateGoCode = errors.New("gogen: generate go code failure")

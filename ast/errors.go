package ast

import (
	"errors"
	"fmt"
)

// Sentinel errors for template rendering.
var (
	ErrRender             = errors.New("render error")
	ErrMissingCapture     = fmt.Errorf("%w: missing capture", ErrRender)
	ErrUnresolvedFunction = fmt.Errorf("%w: unresolved function", ErrRender)
	ErrPositionOutOfRange = fmt.Errorf("%w: position out of range", ErrRender)
)

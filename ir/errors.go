package ir

import (
	"errors"
	"fmt"
)

// Decode failures mean the command stream itself is malformed.
var (
	ErrDecode          = errors.New("ir decode error")
	ErrUnexpectedEnd   = fmt.Errorf("%w: unexpected end of stream", ErrDecode)
	ErrUnknownTag      = fmt.Errorf("%w: unknown tag", ErrDecode)
	ErrInvalidNumber   = fmt.Errorf("%w: invalid number", ErrDecode)
	ErrInvalidRange    = fmt.Errorf("%w: invalid range", ErrDecode)
	ErrDuplicateRule   = fmt.Errorf("%w: duplicate rule", ErrDecode)
	ErrTrailingContent = fmt.Errorf("%w: content after EOP", ErrDecode)
)

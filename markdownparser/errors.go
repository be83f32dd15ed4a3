package markdownparser

import "errors"

// Sentinel errors
var (
	ErrInvalidFrontMatter     = errors.New("invalid front matter")
	ErrMissingRequiredSection = errors.New("missing required section")
	ErrInvalidTestCase        = errors.New("invalid test case")
)

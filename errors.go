package snappeg

import "errors"

// Common errors used throughout the snappeg package
var (
	// ErrGrammar is returned when grammar text cannot be compiled into a rule set.
	ErrGrammar = errors.New("grammar error")
	// ErrConfigValidation is returned when configuration validation fails.
	ErrConfigValidation = errors.New("configuration validation failed")
)

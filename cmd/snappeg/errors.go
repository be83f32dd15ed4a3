package main

import "errors"

// Sentinel errors for command operations
var (
	ErrInputFileNotExist = errors.New("input file does not exist")
	ErrConflictingInput  = errors.New("--text and an input file are mutually exclusive")
	ErrUnknownFormat     = errors.New("unknown output format")
	ErrUnknownRule       = errors.New("unknown rule")
	ErrTestsFailed       = errors.New("some grammar tests failed")
	ErrGenerateFailed    = errors.New("some grammar files failed to generate")
	ErrAlreadyExists     = errors.New("file already exists")
)

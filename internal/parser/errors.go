package parser

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingRecord is returned when a file ends before a required line.
	ErrMissingRecord = errors.New("missing record")
	// ErrInvalidNumber is returned for tokens that do not parse as numbers.
	ErrInvalidNumber = errors.New("invalid number")
	// ErrLayout is returned when interface.csv rows cannot be mapped to series.
	ErrLayout = errors.New("unrecognised interface layout")
)

// ParseError records where in an input file parsing failed.
type ParseError struct {
	File  string
	Line  int // 1-based; 0 when the failure is not tied to a line
	Field string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("%s (%s): %v", e.File, e.Field, e.Err)
	}
	return fmt.Sprintf("%s line %d (%s): %v", e.File, e.Line, e.Field, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

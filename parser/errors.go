package parser

import "fmt"

// ParseError is returned for any syntax error: a message plus the position
// it occurred at (spec.md §4.1 "Error semantics").
type ParseError struct {
	Line, Column int
	Message      string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
}

package codegen

import "fmt"

// Error represents a single problem found during code generation. It is a
// plain data struct — not an error interface implementation — so the
// generator can accumulate many of them and keep going.
type Error struct {
	Message string
	Line    int
	Column  int
}

// String returns a human-readable "line:column: message" representation.
func (e Error) String() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
}

package link

import "fmt"

// Error represents a single problem found while linking: an undefined
// symbol, a cyclic constant chain, a fix-up that overflows its field, or
// similar. A plain struct, not the error interface, so
// the linker can keep patching the rest of the image after one fix-up
// fails.
type Error struct {
	Message string
	Line    int
	Column  int
	Warning bool
}

func (e Error) String() string {
	kind := "error"
	if e.Warning {
		kind = "warning"
	}
	return fmt.Sprintf("%d:%d: %s: %s", e.Line, e.Column, kind, e.Message)
}

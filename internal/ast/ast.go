// Package ast defines the tagged-variant value types the front end produces:
// expressions (number, literal, register, symbol, unary, binary, paren,
// memory, duplicate) and the top-level statements of a translation unit
// (section, label, constant, instruction, define-data, align, offset,
// origin, stack).
//
// Every node carries a Location for diagnostics. Expression nodes are plain
// Go interfaces with a marker method, in place of the C++ source's
// Is<T>()/GetAs<T>() dynamic-dispatch idiom — selection, encoding, and
// expression walks become type switches.
package ast

// Location is a 1-based line/column position in a source file.
type Location struct {
	Line   int
	Column int
}

// Node is embedded by every AST value to carry its source location.
type Node struct {
	Loc Location
}

func (n Node) Location() Location { return n.Loc }

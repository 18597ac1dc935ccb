// Package symtab holds the mutable state the code generator accumulates
// and the linker consumes: sections (code buffer + fix-up list) and the
// symbol table (name -> declaration + optional resolved value).
package symtab

import "github.com/keurnel/assembler8086/internal/ast"

// FixupKind distinguishes how a deferred patch's resolved value is used.
type FixupKind uint8

const (
	FixupValue FixupKind = iota
	FixupAbsoluteAddress
	FixupRelativeAddress
)

// FixupValueType distinguishes integer from floating-point fix-ups (the
// emitter only ever produces Integer; Float is carried for completeness
// data model).
type FixupValueType uint8

const (
	ValueInteger FixupValueType = iota
	ValueFloat
)

// Fixup is a deferred numeric patch inside a section's bytes, resolved at
// link time once all symbols are known.
type Fixup struct {
	Expression     ast.Expression
	Kind           FixupKind
	ByteOffset     int // offset of the patch site within the section
	Size           int // 1, 2, 4, 8 or 10 bytes
	RelativeOrigin int // only meaningful for FixupRelativeAddress
	ValueType      FixupValueType
}

// Section is a named code buffer plus the fix-ups recorded against it
// during code generation.
type Section struct {
	Name   string
	Code   []byte
	Fixups []Fixup
}

// Offset returns the current write position, i.e. the byte offset the next
// appended byte will occupy.
func (s *Section) Offset() int { return len(s.Code) }

// Append appends raw bytes to the section's code buffer.
func (s *Section) Append(b ...byte) { s.Code = append(s.Code, b...) }

// AddFixup records a deferred patch against the current section.
func (s *Section) AddFixup(f Fixup) { s.Fixups = append(s.Fixups, f) }

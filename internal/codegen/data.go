package codegen

import (
	"github.com/keurnel/assembler8086/internal/ast"
	"github.com/keurnel/assembler8086/internal/symtab"
)

func (g *Generator) generateDefineData(s *ast.DefineDataStmt) {
	sec := g.section()
	for _, v := range s.Values {
		g.emitDataValue(sec, s.UnitSize, v)
	}
}

// emitDataValue appends one value of a DB/DW/DD/DQ/DT list. A multi-byte
// string literal expands byte by byte regardless of unit size; an `N
// DUP(value)` construct repeats its inner value N times; anything else is
// a single scalar of unitSize bytes.
func (g *Generator) emitDataValue(sec *symtab.Section, unitSize int, expr ast.Expression) {
	switch e := expr.(type) {
	case *ast.LiteralExpr:
		if len(e.Value) <= 1 {
			g.emitScalar(sec, unitSize, expr)
			return
		}
		for i := 0; i < len(e.Value); i++ {
			sec.Append(e.Value[i])
		}
	case *ast.DuplicateExpr:
		count := e.Count.Resolve(g.finalKnown())
		for i := int64(0); i < count; i++ {
			g.emitDataValue(sec, unitSize, e.Value)
		}
	default:
		g.emitScalar(sec, unitSize, expr)
	}
}

func (g *Generator) emitScalar(sec *symtab.Section, unitSize int, expr ast.Expression) {
	final := g.finalKnown()
	if !expr.IsDependent() || allKnown(expr, final) {
		sec.Append(leBytes(expr.Resolve(final), unitSize)...)
		return
	}
	offset := sec.Offset()
	sec.Append(make([]byte, unitSize)...)
	sec.AddFixup(symtab.Fixup{
		Expression: expr,
		Kind:       symtab.FixupValue,
		ByteOffset: offset,
		Size:       unitSize,
		ValueType:  symtab.ValueInteger,
	})
}

func leBytes(v int64, width int) []byte {
	out := make([]byte, width)
	for i := 0; i < width; i++ {
		out[i] = byte(v >> (8 * uint(i)))
	}
	return out
}

// generateReserve emits Count*UnitSize zero bytes. The count must be a
// compile-time constant: a reserve whose length depends on link-time
// addresses cannot size its own section.
func (g *Generator) generateReserve(s *ast.ReserveStmt) {
	final := g.finalKnown()
	if s.Count.IsDependent() && !allKnown(s.Count, final) {
		g.recordError(s.Location(), "reserve count must be a compile-time constant")
		return
	}
	count := s.Count.Resolve(final)
	if count < 0 {
		g.recordError(s.Location(), "reserve count must not be negative")
		return
	}
	g.section().Append(make([]byte, count*int64(s.UnitSize))...)
}

// generateAlign pads the current section with zero bytes up to the next
// multiple of its (compile-time constant) boundary.
func (g *Generator) generateAlign(s *ast.AlignStmt) {
	final := g.finalKnown()
	if s.Expression.IsDependent() && !allKnown(s.Expression, final) {
		g.recordError(s.Location(), "align boundary must be a compile-time constant")
		return
	}
	boundary := s.Expression.Resolve(final)
	if boundary <= 0 {
		g.recordError(s.Location(), "align boundary must be a positive constant")
		return
	}
	sec := g.section()
	offset := int64(sec.Offset())
	pad := (boundary - offset%boundary) % boundary
	sec.Append(make([]byte, pad)...)
}

func (g *Generator) generateOrg(s *ast.OrgDecl) {
	final := g.finalKnown()
	if s.Expression.IsDependent() && !allKnown(s.Expression, final) {
		g.recordError(s.Location(), "ORG address must be a compile-time constant")
		return
	}
	g.tu.Origin = s.Expression.Resolve(final)
	g.tu.HasOrigin = true
}

func (g *Generator) generateStack(s *ast.StackStmt) {
	final := g.finalKnown()
	if s.Expression.IsDependent() && !allKnown(s.Expression, final) {
		g.recordError(s.Location(), "STACK size must be a compile-time constant")
		return
	}
	g.tu.StackSize = s.Expression.Resolve(final)
	g.tu.HasStack = true
}

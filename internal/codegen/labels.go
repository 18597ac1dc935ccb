package codegen

import (
	"fmt"

	"github.com/keurnel/assembler8086/internal/ast"
	"github.com/keurnel/assembler8086/internal/symtab"
)

// qualifiedLabelName resolves a LabelStmt's source name to its full
// symbol-table key: local labels (leading '.') are scoped under the most
// recent non-local label.
func (g *Generator) qualifiedLabelName(s *ast.LabelStmt) string {
	if s.Local {
		parent := s.Parent
		if parent == "" {
			parent = g.lastGlobalLabel
		}
		return parent + s.Name
	}
	return s.Name
}

func (g *Generator) declareLabel(s *ast.LabelStmt) {
	name := g.qualifiedLabelName(s)
	if !s.Local {
		g.lastGlobalLabel = s.Name
	}

	if g.symbols.Has(name) {
		g.recordError(s.Location(), fmt.Sprintf("duplicate label %q", name))
		return
	}

	offset := int64(g.section().Offset())
	sym := &symtab.Symbol{Name: name, Declaration: s, Section: g.current}
	sym.Evaluate(symtab.SymbolValue{Kind: symtab.ValueKindAddress, Int: offset})
	g.symbols.Add(sym)
	g.localOffsets[name] = offset
}

func (g *Generator) declareConstant(s *ast.ConstantStmt) {
	if g.symbols.Has(s.Name) {
		g.recordError(s.Location(), fmt.Sprintf("duplicate symbol %q", s.Name))
		return
	}

	sym := &symtab.Symbol{Name: s.Name, Declaration: s}
	g.symbols.Add(sym)

	if !s.Expression.IsDependent() || allKnown(s.Expression, g.constants) {
		v := s.Expression.Resolve(g.constants)
		sym.Evaluate(symtab.SymbolValue{Kind: symtab.ValueKindLiteral, Int: v})
		g.constants[s.Name] = v
	}
}

func allKnown(expr ast.Expression, known map[string]int64) bool {
	for _, dep := range expr.Dependencies() {
		if _, ok := known[dep]; !ok {
			return false
		}
	}
	return true
}

package symtab

import "github.com/keurnel/assembler8086/internal/ast"

// SymbolValueKind distinguishes a symbol bound to a code/data address from
// one bound to a plain numeric literal (EQU constant).
type SymbolValueKind uint8

const (
	ValueKindAddress SymbolValueKind = iota
	ValueKindLiteral
)

// SymbolValue is a symbol's resolved value once evaluated.
type SymbolValue struct {
	Kind SymbolValueKind
	Int  int64
}

// Symbol is { declaration reference, evaluated?, value }.
// Declaration is the owning ast.Statement: *ast.ConstantStmt or
// *ast.LabelStmt; it is nil for the synthetic @section symbols.
//
// Section names the section a ValueKindAddress symbol's Value.Int is
// relative to (empty for a ValueKindLiteral constant). The linker combines
// it with that section's link-time base offset to produce an absolute
// address.
type Symbol struct {
	Name        string
	Declaration ast.Statement
	Section     string

	evaluated bool
	value     SymbolValue
}

// IsEvaluated reports whether Evaluate has been called.
func (s *Symbol) IsEvaluated() bool { return s.evaluated }

// Value returns the symbol's resolved value. Call only after IsEvaluated.
func (s *Symbol) Value() SymbolValue { return s.value }

// Evaluate binds the symbol's value. Code generation calls this for label
// symbols as each section fills. The linker does not call it: it keeps
// its own name -> value map of resolved constants and absolute addresses.
func (s *Symbol) Evaluate(v SymbolValue) {
	s.value = v
	s.evaluated = true
}

// SymbolTable is name -> Symbol.
type SymbolTable struct {
	symbols map[string]*Symbol
	order   []string
}

// NewSymbolTable returns an empty symbol table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{symbols: make(map[string]*Symbol)}
}

// Add inserts a new symbol. Declarations are added unevaluated; callers
// that already know the value should call Evaluate immediately after.
func (t *SymbolTable) Add(sym *Symbol) {
	if _, exists := t.symbols[sym.Name]; !exists {
		t.order = append(t.order, sym.Name)
	}
	t.symbols[sym.Name] = sym
}

// Get looks up a symbol by name.
func (t *SymbolTable) Get(name string) (*Symbol, bool) {
	sym, ok := t.symbols[name]
	return sym, ok
}

// Has reports whether name is declared.
func (t *SymbolTable) Has(name string) bool {
	_, ok := t.symbols[name]
	return ok
}

// All returns every symbol in insertion order.
func (t *SymbolTable) All() []*Symbol {
	out := make([]*Symbol, len(t.order))
	for i, name := range t.order {
		out[i] = t.symbols[name]
	}
	return out
}

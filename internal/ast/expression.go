package ast

import "github.com/keurnel/assembler8086/internal/isa"

// Expression is a closed variant: Number,
// Literal, Symbol, Register, Paren, Memory, Unary, Binary, Duplicate.
//
// Resolve folds the expression against a name->value map, assuming every
// free name it depends on appears there; the caller (internal/codegen,
// internal/operand, internal/link) is responsible for checking IsDependent/Dependencies first. Dependencies
// returns the set of symbol names this expression (transitively) refers to.
type Expression interface {
	expressionNode()
	Location() Location
	Resolve(symbols map[string]int64) int64
	IsDependent() bool
	Dependencies() []string
}

// NumberExpr is a literal integer constant.
type NumberExpr struct {
	Node
	Value int64
}

func (*NumberExpr) expressionNode()                             {}
func (e *NumberExpr) Resolve(map[string]int64) int64             { return e.Value }
func (*NumberExpr) IsDependent() bool                             { return false }
func (*NumberExpr) Dependencies() []string                        { return nil }

// LiteralExpr is a quoted string. When used as a DB value it resolves to its single
// byte value iff its length is 1; a longer literal is dependent (DB/DW must
// emit it as a byte sequence, not fold it to one integer).
type LiteralExpr struct {
	Node
	Value string
}

func (*LiteralExpr) expressionNode() {}
func (e *LiteralExpr) Resolve(map[string]int64) int64 {
	if len(e.Value) == 1 {
		return int64(e.Value[0])
	}
	return 0
}
func (e *LiteralExpr) IsDependent() bool   { return len(e.Value) != 1 }
func (*LiteralExpr) Dependencies() []string { return nil }

// SymbolExpr refers to a named symbol (label or constant) resolved later
// against the symbol table's name->value map.
type SymbolExpr struct {
	Node
	Name string
}

func (*SymbolExpr) expressionNode() {}
func (e *SymbolExpr) Resolve(symbols map[string]int64) int64 {
	return symbols[e.Name]
}
func (*SymbolExpr) IsDependent() bool          { return true }
func (e *SymbolExpr) Dependencies() []string    { return []string{e.Name} }

// RegisterExpr names a concrete register operand. It never contributes a
// numeric value to expression folding (Resolve returns 0); it is consumed
// directly by the operand evaluator and emitter instead.
type RegisterExpr struct {
	Node
	ID isa.RegisterID
}

func (*RegisterExpr) expressionNode() {}
func (*RegisterExpr) Resolve(map[string]int64) int64 { return 0 }
func (*RegisterExpr) IsDependent() bool               { return false }
func (*RegisterExpr) Dependencies() []string           { return nil }

// Register looks up the full isa.Register record for this expression.
func (e *RegisterExpr) Register() isa.Register {
	for _, r := range isa.Registers {
		if r.ID == e.ID {
			return r
		}
	}
	return isa.Register{}
}

// UnaryExpr applies a prefix operator: '+' (identity), '-' (negate), '~'
// (bitwise complement).
type UnaryExpr struct {
	Node
	Op    byte
	Child Expression
}

func (*UnaryExpr) expressionNode() {}
func (e *UnaryExpr) Resolve(symbols map[string]int64) int64 {
	v := e.Child.Resolve(symbols)
	switch e.Op {
	case '-':
		return -v
	case '~':
		return ^v
	default:
		return v
	}
}
func (e *UnaryExpr) IsDependent() bool        { return e.Child.IsDependent() }
func (e *UnaryExpr) Dependencies() []string    { return e.Child.Dependencies() }

// BinaryExpr applies an infix operator: + - * / < (shift-left) > (shift-right) & | ^.
type BinaryExpr struct {
	Node
	Op          byte
	Left, Right Expression
}

func (*BinaryExpr) expressionNode() {}
func (e *BinaryExpr) Resolve(symbols map[string]int64) int64 {
	l := e.Left.Resolve(symbols)
	r := e.Right.Resolve(symbols)
	switch e.Op {
	case '+':
		return l + r
	case '-':
		return l - r
	case '*':
		return l * r
	case '/':
		return l / r
	case '<':
		return l << uint(r)
	case '>':
		return l >> uint(r)
	case '&':
		return l & r
	case '|':
		return l | r
	case '^':
		return l ^ r
	default:
		return 0
	}
}
func (e *BinaryExpr) IsDependent() bool {
	return e.Left.IsDependent() || e.Right.IsDependent()
}
func (e *BinaryExpr) Dependencies() []string {
	return append(e.Left.Dependencies(), e.Right.Dependencies()...)
}

// ParenExpr is a parenthesized sub-expression; it exists as a distinct node
// (rather than being folded away by the parser) so that the memory-operand
// validator can still see where grouping occurred.
type ParenExpr struct {
	Node
	Child Expression
}

func (*ParenExpr) expressionNode()                                 {}
func (e *ParenExpr) Resolve(symbols map[string]int64) int64         { return e.Child.Resolve(symbols) }
func (e *ParenExpr) IsDependent() bool                               { return e.Child.IsDependent() }
func (e *ParenExpr) Dependencies() []string                          { return e.Child.Dependencies() }

// MemoryExpr is a `[...]` addressing expression. By invariant,
// a Memory node never nests another Memory node. SizeOverride is the
// BYTE/WORD/DWORD/... qualifier in bytes (0 = none). SegOverride is the
// optional `sreg:` prefix.
type MemoryExpr struct {
	Node
	Body         Expression
	SizeOverride int // bytes; 0 = no PTR qualifier
	SegOverride  *isa.RegisterID
}

func (*MemoryExpr) expressionNode()                                {}
func (e *MemoryExpr) Resolve(symbols map[string]int64) int64        { return e.Body.Resolve(symbols) }
func (e *MemoryExpr) IsDependent() bool                              { return e.Body.IsDependent() }
func (e *MemoryExpr) Dependencies() []string                         { return e.Body.Dependencies() }

// BaseRegisters walks the memory body collecting every register term. Per
// register terms may only appear under '+' (and, on the
// right-hand side, '-'); the emitter rejects any other shape.
func (e *MemoryExpr) BaseRegisters() (regs []isa.RegisterID, valid bool) {
	return collectBaseRegisters(e.Body, true)
}

func collectBaseRegisters(expr Expression, additive bool) ([]isa.RegisterID, bool) {
	switch n := expr.(type) {
	case *RegisterExpr:
		if !additive {
			return nil, false
		}
		return []isa.RegisterID{n.ID}, true
	case *ParenExpr:
		return collectBaseRegisters(n.Child, additive)
	case *UnaryExpr:
		if n.Op == '-' {
			return collectBaseRegisters(n.Child, false)
		}
		return collectBaseRegisters(n.Child, additive)
	case *BinaryExpr:
		if n.Op != '+' && n.Op != '-' {
			if containsRegister(n.Left) || containsRegister(n.Right) {
				return nil, false
			}
			return nil, true
		}
		lhs, ok := collectBaseRegisters(n.Left, additive)
		if !ok {
			return nil, false
		}
		rhsAdditive := additive
		if n.Op == '-' {
			rhsAdditive = false
		}
		rhs, ok := collectBaseRegisters(n.Right, rhsAdditive)
		if !ok {
			return nil, false
		}
		return append(lhs, rhs...), true
	default:
		return nil, true
	}
}

func containsRegister(expr Expression) bool {
	switch n := expr.(type) {
	case *RegisterExpr:
		return true
	case *ParenExpr:
		return containsRegister(n.Child)
	case *UnaryExpr:
		return containsRegister(n.Child)
	case *BinaryExpr:
		return containsRegister(n.Left) || containsRegister(n.Right)
	default:
		return false
	}
}

// DuplicateExpr is the `N DUP(value)` data-definition construct.
type DuplicateExpr struct {
	Node
	Count Expression
	Value Expression
}

func (*DuplicateExpr) expressionNode() {}
func (e *DuplicateExpr) Resolve(symbols map[string]int64) int64 {
	return e.Value.Resolve(symbols)
}
func (e *DuplicateExpr) IsDependent() bool {
	return e.Count.IsDependent() || e.Value.IsDependent()
}
func (e *DuplicateExpr) Dependencies() []string {
	return append(e.Count.Dependencies(), e.Value.Dependencies()...)
}

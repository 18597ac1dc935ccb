package ast

// Statement is a top-level item of a translation unit.
type Statement interface {
	statementNode()
	Location() Location
}

// SectionStmt switches the active section (SECTION/SEGMENT name).
type SectionStmt struct {
	Node
	Name string
}

func (*SectionStmt) statementNode() {}

// LabelStmt declares a label at the current code-generation offset. Local
// labels (leading '.') are scoped to the preceding non-local label; Parent
// holds that name (empty for non-local labels).
type LabelStmt struct {
	Node
	Name   string
	Parent string
	Local  bool
}

func (*LabelStmt) statementNode() {}

// ConstantStmt declares `name EQU expr`.
type ConstantStmt struct {
	Node
	Name       string
	Expression Expression
}

func (*ConstantStmt) statementNode() {}

// Operand is one operand of an InstructionStmt: a register, a memory
// expression, or anything else (resolved as an immediate/relative/pointer
// value by the operand evaluator).
type Operand struct {
	Node
	Expression Expression
}

// InstructionStmt is a mnemonic plus its operand list.
type InstructionStmt struct {
	Node
	Mnemonic string
	Operands []Operand
}

func (*InstructionStmt) statementNode() {}

// DefineDataStmt is a DB/DW/DD/DQ/DT directive. Each value is either a
// LiteralExpr (expanded byte-by-byte), a DuplicateExpr (N DUP(v)), or an
// ordinary expression (emitted at UnitSize, fixed-up if dependent).
type DefineDataStmt struct {
	Node
	Mnemonic string // DB, DW, DD, DQ, DT
	UnitSize int    // bytes per unit
	Values   []Expression
}

func (*DefineDataStmt) statementNode() {}

// ReserveStmt is a RESB/RESW/RESD/RESQ/REST directive: Count*UnitSize zero
// bytes (see SPEC_FULL.md's Open Question decisions).
type ReserveStmt struct {
	Node
	Mnemonic string
	UnitSize int
	Count    Expression
}

func (*ReserveStmt) statementNode() {}

// AlignStmt pads the current section to the next multiple of Expression.
type AlignStmt struct {
	Node
	Expression Expression
}

func (*AlignStmt) statementNode() {}

// OffsetStmt is a top-level `OFFSET expr` statement. Code generation emits
// no bytes and records no symbol for it.
type OffsetStmt struct {
	Node
	Expression Expression
}

func (*OffsetStmt) statementNode() {}

// OrgDecl sets the translation unit's load origin.
type OrgDecl struct {
	Node
	Expression Expression
}

func (*OrgDecl) statementNode() {}

// StackStmt declares the required stack size (STACK expr).
type StackStmt struct {
	Node
	Expression Expression
}

func (*StackStmt) statementNode() {}

// SymbolScope marks a symbol GLOBAL or EXTERN.
type SymbolScope struct {
	Node
	Name   string
	Global bool
}

func (*SymbolScope) statementNode() {}

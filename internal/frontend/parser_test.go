package frontend

import (
	"testing"

	"github.com/keurnel/assembler8086/internal/ast"
	"github.com/keurnel/assembler8086/internal/isa"
)

func parse(t *testing.T, source string) []ast.Statement {
	t.Helper()
	tokens := NewLexer(source).Tokenize()
	p := NewParser(tokens)
	stmts := p.Parse()
	if len(p.Errors()) != 0 {
		t.Fatalf("unexpected parse errors: %v", p.Errors())
	}
	return stmts
}

func TestParseSection(t *testing.T) {
	stmts := parse(t, "SECTION .TEXT\n")
	if len(stmts) != 1 {
		t.Fatalf("got %d statements, want 1", len(stmts))
	}
	sec, ok := stmts[0].(*ast.SectionStmt)
	if !ok || sec.Name != ".TEXT" {
		t.Fatalf("got %#v, want SectionStmt{.TEXT}", stmts[0])
	}
}

func TestParseLabelAndLocalLabel(t *testing.T) {
	stmts := parse(t, "start:\n.loop:\n")
	label, ok := stmts[0].(*ast.LabelStmt)
	if !ok || label.Name != "start" || label.Local {
		t.Fatalf("got %#v", stmts[0])
	}
	local, ok := stmts[1].(*ast.LabelStmt)
	if !ok || local.Name != ".loop" || !local.Local {
		t.Fatalf("got %#v", stmts[1])
	}
}

func TestParseConstant(t *testing.T) {
	stmts := parse(t, "SIZE EQU 5\n")
	c, ok := stmts[0].(*ast.ConstantStmt)
	if !ok || c.Name != "SIZE" {
		t.Fatalf("got %#v", stmts[0])
	}
	if got := c.Expression.Resolve(nil); got != 5 {
		t.Errorf("got %d, want 5", got)
	}
}

func TestParseConstantChain(t *testing.T) {
	// A EQU B; B EQU C; C EQU 5 resolves A to 5.
	stmts := parse(t, "A EQU B\nB EQU C\nC EQU 5\n")
	if len(stmts) != 3 {
		t.Fatalf("got %d statements", len(stmts))
	}
	known := map[string]int64{}
	order := []*ast.ConstantStmt{
		stmts[2].(*ast.ConstantStmt), // C
		stmts[1].(*ast.ConstantStmt), // B
		stmts[0].(*ast.ConstantStmt), // A
	}
	for _, c := range order {
		known[c.Name] = c.Expression.Resolve(known)
	}
	if known["A"] != 5 {
		t.Errorf("A resolved to %d, want 5", known["A"])
	}
}

func TestParseMovImmediate(t *testing.T) {
	// MOV AX, 0x1234 should assemble to B8 34 12.
	stmts := parse(t, "MOV AX, 0x1234\n")
	instr, ok := stmts[0].(*ast.InstructionStmt)
	if !ok || instr.Mnemonic != "MOV" {
		t.Fatalf("got %#v", stmts[0])
	}
	if len(instr.Operands) != 2 {
		t.Fatalf("got %d operands, want 2", len(instr.Operands))
	}
	reg, ok := instr.Operands[0].Expression.(*ast.RegisterExpr)
	if !ok || reg.ID != isa.AX {
		t.Fatalf("operand 0: got %#v, want AX", instr.Operands[0].Expression)
	}
	if v := instr.Operands[1].Expression.Resolve(nil); v != 0x1234 {
		t.Errorf("operand 1 resolved to 0x%x, want 0x1234", v)
	}
}

func TestParseMemoryOperandWithDisplacement(t *testing.T) {
	// MOV [BX+SI+4], AX should assemble to 89 40 04.
	stmts := parse(t, "MOV [BX+SI+4], AX\n")
	instr := stmts[0].(*ast.InstructionStmt)
	mem, ok := instr.Operands[0].Expression.(*ast.MemoryExpr)
	if !ok {
		t.Fatalf("operand 0: got %#v, want MemoryExpr", instr.Operands[0].Expression)
	}
	regs, valid := mem.BaseRegisters()
	if !valid || len(regs) != 2 {
		t.Fatalf("got regs=%v valid=%v, want [BX SI] valid", regs, valid)
	}
}

func TestParseSegmentOverrideAndSizeOverride(t *testing.T) {
	stmts := parse(t, "MOV AL, BYTE PTR DS:[0x200]\n")
	instr := stmts[0].(*ast.InstructionStmt)
	mem, ok := instr.Operands[1].Expression.(*ast.MemoryExpr)
	if !ok {
		t.Fatalf("operand 1: got %#v", instr.Operands[1].Expression)
	}
	if mem.SizeOverride != 1 {
		t.Errorf("got size override %d, want 1", mem.SizeOverride)
	}
	if mem.SegOverride == nil || *mem.SegOverride != isa.DS {
		t.Errorf("got seg override %v, want DS", mem.SegOverride)
	}
}

func TestParseDefineDataStringAndDup(t *testing.T) {
	stmts := parse(t, `DB "Hi", 0`+"\n"+`DW 3 DUP(1)`+"\n")
	db := stmts[0].(*ast.DefineDataStmt)
	if db.Mnemonic != "DB" || db.UnitSize != 1 || len(db.Values) != 2 {
		t.Fatalf("got %#v", db)
	}
	lit, ok := db.Values[0].(*ast.LiteralExpr)
	if !ok || lit.Value != "Hi" {
		t.Fatalf("got %#v, want LiteralExpr{Hi}", db.Values[0])
	}

	dw := stmts[1].(*ast.DefineDataStmt)
	dup, ok := dw.Values[0].(*ast.DuplicateExpr)
	if !ok {
		t.Fatalf("got %#v, want DuplicateExpr", dw.Values[0])
	}
	if dup.Count.Resolve(nil) != 3 || dup.Value.Resolve(nil) != 1 {
		t.Errorf("got count=%d value=%d, want 3/1", dup.Count.Resolve(nil), dup.Value.Resolve(nil))
	}
}

func TestParseReserve(t *testing.T) {
	stmts := parse(t, "RESB 10\n")
	r := stmts[0].(*ast.ReserveStmt)
	if r.Mnemonic != "RESB" || r.UnitSize != 1 || r.Count.Resolve(nil) != 10 {
		t.Fatalf("got %#v", r)
	}
}

func TestParseOrgAlignStackGlobalExtern(t *testing.T) {
	stmts := parse(t, "ORG 0x100\nALIGN 16\nSTACK 0x200\nGLOBAL foo\nEXTERN bar\n")
	if _, ok := stmts[0].(*ast.OrgDecl); !ok {
		t.Errorf("stmt 0: got %#v", stmts[0])
	}
	if _, ok := stmts[1].(*ast.AlignStmt); !ok {
		t.Errorf("stmt 1: got %#v", stmts[1])
	}
	if _, ok := stmts[2].(*ast.StackStmt); !ok {
		t.Errorf("stmt 2: got %#v", stmts[2])
	}
	scope, ok := stmts[3].(*ast.SymbolScope)
	if !ok || scope.Name != "foo" || !scope.Global {
		t.Errorf("stmt 3: got %#v", stmts[3])
	}
	scope, ok = stmts[4].(*ast.SymbolScope)
	if !ok || scope.Name != "bar" || scope.Global {
		t.Errorf("stmt 4: got %#v", stmts[4])
	}
}

func TestParseExpressionPrecedence(t *testing.T) {
	stmts := parse(t, "X EQU 1 + 2 * 3\n")
	c := stmts[0].(*ast.ConstantStmt)
	if got := c.Expression.Resolve(nil); got != 7 {
		t.Errorf("got %d, want 7 (1 + (2*3))", got)
	}
}

func TestParseInvalidMemoryExpressionRejectedByBaseRegisters(t *testing.T) {
	// [BX*2] is not a valid 16-bit addressing expression: the register
	// appears under '*', not an additive position.
	stmts := parse(t, "MOV AX, [BX*2]\n")
	instr := stmts[0].(*ast.InstructionStmt)
	mem := instr.Operands[1].Expression.(*ast.MemoryExpr)
	if _, valid := mem.BaseRegisters(); valid {
		t.Errorf("expected BaseRegisters to reject [BX*2]")
	}
}

func TestParseUnknownMnemonicStillParsesAsInstruction(t *testing.T) {
	// Mnemonic validity is checked by internal/isa at codegen time, not by
	// the parser: an unrecognized identifier still produces an
	// InstructionStmt so codegen can report "unknown mnemonic".
	stmts := parse(t, "FROB AX\n")
	if _, ok := stmts[0].(*ast.InstructionStmt); !ok {
		t.Fatalf("got %#v", stmts[0])
	}
}

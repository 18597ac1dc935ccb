package operand

import (
	"testing"

	"github.com/keurnel/assembler8086/internal/ast"
	"github.com/keurnel/assembler8086/internal/isa"
)

func TestEvaluateRegisterGeneralPurpose(t *testing.T) {
	ev := Evaluate(&ast.RegisterExpr{ID: isa.BX}, nil)
	if ev.Kind != KindRegister {
		t.Fatalf("expected KindRegister, got %v", ev.Kind)
	}
	if !ev.Has(isa.OpR) || !ev.Has(isa.OpRM) {
		t.Error("general-purpose register must carry both r and rm")
	}
	if ev.MinBits != 16 {
		t.Errorf("expected 16 bits for BX, got %d", ev.MinBits)
	}
}

func TestEvaluateRegisterAXIsAlsoFixedSlot(t *testing.T) {
	ev := Evaluate(&ast.RegisterExpr{ID: isa.AX}, nil)
	if !ev.Has(isa.OpAX) {
		t.Error("AX must carry the fixed-slot AX tag")
	}
	if !ev.Has(isa.OpR) {
		t.Error("AX must still carry the generic r tag")
	}
}

func TestEvaluateRegisterSegment(t *testing.T) {
	ev := Evaluate(&ast.RegisterExpr{ID: isa.DS}, nil)
	if !ev.Has(isa.OpSReg) || !ev.Has(isa.OpDS) {
		t.Error("DS must carry sreg and the fixed DS tag")
	}
	if ev.Has(isa.OpR) {
		t.Error("a segment register must not carry the generic r tag")
	}
}

func TestEvaluateImmediateKnownSmall(t *testing.T) {
	ev := Evaluate(&ast.NumberExpr{Value: 1}, nil)
	if ev.Kind != KindImmediate {
		t.Fatal("expected KindImmediate")
	}
	if !ev.HasKnownValue || ev.KnownValue != 1 {
		t.Fatal("expected known value 1")
	}
	if !ev.Has(isa.OpOne) {
		t.Error("value 1 must carry the ONE tag")
	}
	if ev.MinBits != 8 {
		t.Errorf("expected 8 bits, got %d", ev.MinBits)
	}
	if ev.Sign != SignNone {
		t.Errorf("expected SignNone for 1, got %v", ev.Sign)
	}
}

func TestEvaluateImmediateUnsignedHighBit(t *testing.T) {
	ev := Evaluate(&ast.NumberExpr{Value: 0x80}, nil)
	if ev.MinBits != 8 {
		t.Fatalf("expected 8 bits for 0x80, got %d", ev.MinBits)
	}
	if ev.Sign != SignUnsigned {
		t.Errorf("expected SignUnsigned for 0x80, got %v", ev.Sign)
	}
}

func TestEvaluateImmediateNegative(t *testing.T) {
	ev := Evaluate(&ast.UnaryExpr{Op: '-', Child: &ast.NumberExpr{Value: 5}}, nil)
	if ev.Sign != SignSigned {
		t.Errorf("expected SignSigned for -5, got %v", ev.Sign)
	}
	if ev.MinBits != 8 {
		t.Errorf("expected 8 bits for -5, got %d", ev.MinBits)
	}
}

func TestEvaluateImmediateWide(t *testing.T) {
	ev := Evaluate(&ast.NumberExpr{Value: 0x1234}, nil)
	if ev.MinBits != 16 {
		t.Errorf("expected 16 bits for 0x1234, got %d", ev.MinBits)
	}
}

func TestEvaluateImmediateUnresolvedIsConservative(t *testing.T) {
	ev := Evaluate(&ast.SymbolExpr{Name: "later"}, map[string]int64{})
	if ev.HasKnownValue {
		t.Fatal("expected an unresolvable symbol to have no known value")
	}
	if ev.MinBits != 16 {
		t.Errorf("expected conservative 16 bits, got %d", ev.MinBits)
	}
}

func TestEvaluateImmediateResolvesWhenSymbolKnown(t *testing.T) {
	ev := Evaluate(&ast.SymbolExpr{Name: "count"}, map[string]int64{"count": 3})
	if !ev.HasKnownValue || ev.KnownValue != 3 {
		t.Fatal("expected count to resolve to 3")
	}
}

func TestEvaluateMemoryWithBase(t *testing.T) {
	mem := &ast.MemoryExpr{Body: &ast.RegisterExpr{ID: isa.BX}}
	ev := Evaluate(mem, nil)
	if ev.Kind != KindMemory {
		t.Fatal("expected KindMemory")
	}
	if !ev.Has(isa.OpM) || !ev.Has(isa.OpRM) {
		t.Error("memory operand must carry m and rm")
	}
	if ev.Has(isa.OpMoffs) {
		t.Error("a based memory operand must not carry moffs")
	}
	if len(ev.BaseRegisters) != 1 || ev.BaseRegisters[0] != isa.BX {
		t.Errorf("expected [BX] base set, got %v", ev.BaseRegisters)
	}
}

func TestEvaluateMemoryDirect(t *testing.T) {
	mem := &ast.MemoryExpr{Body: &ast.NumberExpr{Value: 0x200}}
	ev := Evaluate(mem, nil)
	if !ev.IsDirect {
		t.Error("a pure-displacement operand must be direct")
	}
	if !ev.Has(isa.OpMoffs) {
		t.Error("a direct memory operand must carry moffs")
	}
}

func TestEvaluateMemorySizeOverride(t *testing.T) {
	mem := &ast.MemoryExpr{Body: &ast.RegisterExpr{ID: isa.BX}, SizeOverride: 2}
	ev := Evaluate(mem, nil)
	if ev.MinBits != 16 {
		t.Errorf("expected 16 bits from a WORD PTR override, got %d", ev.MinBits)
	}
}

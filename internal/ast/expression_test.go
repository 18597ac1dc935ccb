package ast

import (
	"reflect"
	"testing"

	"github.com/keurnel/assembler8086/internal/isa"
)

func TestNumberExprResolve(t *testing.T) {
	e := &NumberExpr{Value: 42}
	if e.Resolve(nil) != 42 {
		t.Errorf("expected 42, got %d", e.Resolve(nil))
	}
	if e.IsDependent() {
		t.Error("a number literal must not be dependent")
	}
}

func TestLiteralExprSingleCharResolvesToByte(t *testing.T) {
	e := &LiteralExpr{Value: "A"}
	if e.IsDependent() {
		t.Error("single-character literal must not be dependent")
	}
	if e.Resolve(nil) != int64('A') {
		t.Errorf("expected 65, got %d", e.Resolve(nil))
	}
}

func TestLiteralExprMultiCharIsDependent(t *testing.T) {
	e := &LiteralExpr{Value: "Hi"}
	if !e.IsDependent() {
		t.Error("multi-character literal must be dependent")
	}
}

func TestSymbolExprResolve(t *testing.T) {
	e := &SymbolExpr{Name: "foo"}
	if !e.IsDependent() {
		t.Error("a symbol reference is always dependent")
	}
	if got, want := e.Dependencies(), []string{"foo"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Dependencies() = %v, want %v", got, want)
	}
	if e.Resolve(map[string]int64{"foo": 7}) != 7 {
		t.Errorf("expected 7")
	}
}

func TestBinaryExprResolve(t *testing.T) {
	cases := []struct {
		op   byte
		l, r int64
		want int64
	}{
		{'+', 3, 4, 7},
		{'-', 10, 4, 6},
		{'*', 3, 4, 12},
		{'/', 12, 4, 3},
		{'<', 1, 4, 16},
		{'>', 16, 4, 1},
		{'&', 0b1100, 0b1010, 0b1000},
		{'|', 0b1100, 0b1010, 0b1110},
		{'^', 0b1100, 0b1010, 0b0110},
	}
	for _, c := range cases {
		e := &BinaryExpr{Op: c.op, Left: &NumberExpr{Value: c.l}, Right: &NumberExpr{Value: c.r}}
		if got := e.Resolve(nil); got != c.want {
			t.Errorf("op %q: got %d, want %d", c.op, got, c.want)
		}
	}
}

func TestUnaryExprResolve(t *testing.T) {
	neg := &UnaryExpr{Op: '-', Child: &NumberExpr{Value: 5}}
	if neg.Resolve(nil) != -5 {
		t.Errorf("expected -5, got %d", neg.Resolve(nil))
	}
	not := &UnaryExpr{Op: '~', Child: &NumberExpr{Value: 0}}
	if not.Resolve(nil) != -1 {
		t.Errorf("expected -1, got %d", not.Resolve(nil))
	}
}

func TestConstantChainResolution(t *testing.T) {
	// A EQU B; B EQU C; C EQU 5 -> A resolves to 5.
	symbols := map[string]int64{"C": 5}
	b := &SymbolExpr{Name: "C"}
	symbols["B"] = b.Resolve(symbols)
	a := &SymbolExpr{Name: "B"}
	symbols["A"] = a.Resolve(symbols)

	if symbols["A"] != 5 {
		t.Errorf("expected A to resolve to 5, got %d", symbols["A"])
	}
}

func TestMemoryExprBaseRegisters(t *testing.T) {
	bx := isa.BX
	si := isa.SI
	// [BX+SI+4]
	body := Expression(&BinaryExpr{
		Op:   '+',
		Left: &BinaryExpr{Op: '+', Left: &RegisterExpr{ID: bx}, Right: &RegisterExpr{ID: si}},
		Right: &NumberExpr{Value: 4},
	})
	mem := &MemoryExpr{Body: body}

	regs, ok := mem.BaseRegisters()
	if !ok {
		t.Fatal("expected a valid base-register combination")
	}
	if len(regs) != 2 {
		t.Fatalf("expected 2 base registers, got %d", len(regs))
	}
}

func TestMemoryExprRejectsMultiplyingRegister(t *testing.T) {
	// [BX*2] is not a valid 16-bit addressing expression.
	body := Expression(&BinaryExpr{Op: '*', Left: &RegisterExpr{ID: isa.BX}, Right: &NumberExpr{Value: 2}})
	mem := &MemoryExpr{Body: body}

	if _, ok := mem.BaseRegisters(); ok {
		t.Error("expected [BX*2] to be rejected as an invalid memory expression")
	}
}

func TestMemoryExprEmptyBaseSet(t *testing.T) {
	mem := &MemoryExpr{Body: &NumberExpr{Value: 0x200}}
	regs, ok := mem.BaseRegisters()
	if !ok {
		t.Fatal("a pure-displacement memory expression must be valid")
	}
	if len(regs) != 0 {
		t.Errorf("expected no base registers, got %v", regs)
	}
}

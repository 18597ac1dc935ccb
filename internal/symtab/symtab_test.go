package symtab

import "testing"

func TestTranslationUnitSectionGetOrMake(t *testing.T) {
	tu := NewTranslationUnit()
	a := tu.Section(".text")
	b := tu.Section(".text")
	if a != b {
		t.Error("expected the same *Section on repeated lookup")
	}
	if !tu.HasSection(".text") {
		t.Error("expected .text to be registered")
	}
	if tu.HasSection(".data") {
		t.Error(".data was never declared")
	}
}

func TestTranslationUnitSectionOrderIsStable(t *testing.T) {
	tu := NewTranslationUnit()
	tu.Section(".data")
	tu.Section(".text")
	tu.Section(".bss")

	got := tu.Sections()
	want := []string{".data", ".text", ".bss"}
	for i, s := range got {
		if s.Name != want[i] {
			t.Errorf("Sections()[%d] = %q, want %q", i, s.Name, want[i])
		}
	}
}

func TestSectionAppendAndOffset(t *testing.T) {
	s := &Section{Name: ".text"}
	if s.Offset() != 0 {
		t.Fatal("expected offset 0 for an empty section")
	}
	s.Append(0xB8, 0x34, 0x12)
	if s.Offset() != 3 {
		t.Errorf("expected offset 3, got %d", s.Offset())
	}
}

func TestSymbolTableAddAndGet(t *testing.T) {
	st := NewSymbolTable()
	st.Add(&Symbol{Name: "start"})

	sym, ok := st.Get("start")
	if !ok {
		t.Fatal("expected 'start' to be found")
	}
	if sym.IsEvaluated() {
		t.Error("a freshly added symbol must be unevaluated")
	}

	sym.Evaluate(SymbolValue{Kind: ValueKindAddress, Int: 0x100})
	if !sym.IsEvaluated() {
		t.Error("expected symbol to be evaluated after Evaluate()")
	}
	if sym.Value().Int != 0x100 {
		t.Errorf("expected value 0x100, got %#x", sym.Value().Int)
	}
}

func TestSymbolTableOrderPreserved(t *testing.T) {
	st := NewSymbolTable()
	st.Add(&Symbol{Name: "c"})
	st.Add(&Symbol{Name: "a"})
	st.Add(&Symbol{Name: "b"})

	names := make([]string, 0, 3)
	for _, s := range st.All() {
		names = append(names, s.Name)
	}
	want := []string{"c", "a", "b"}
	for i, n := range names {
		if n != want[i] {
			t.Errorf("All()[%d] = %q, want %q", i, n, want[i])
		}
	}
}

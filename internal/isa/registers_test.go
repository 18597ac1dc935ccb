package isa

import "testing"

func TestLookupRegister(t *testing.T) {
	cases := []struct {
		name string
		want RegisterID
	}{
		{"AX", AX},
		{"ax", AX},
		{"Bp", BP},
		{"DS", DS},
		{"CR0", CR0},
	}
	for _, c := range cases {
		reg, ok := LookupRegister(c.name)
		if !ok {
			t.Errorf("LookupRegister(%q): not found", c.name)
			continue
		}
		if reg.ID != c.want {
			t.Errorf("LookupRegister(%q) = %v, want ID %v", c.name, reg.ID, c.want)
		}
	}
}

func TestLookupRegisterUnknown(t *testing.T) {
	if _, ok := LookupRegister("ZZ"); ok {
		t.Error("expected ZZ to be unknown")
	}
}

func TestRmRegsCombination(t *testing.T) {
	cases := []struct {
		regs []RegisterID
		want RmCode
	}{
		{[]RegisterID{BX, SI}, RmBxSi},
		{[]RegisterID{SI, BX}, RmBxSi}, // order independent
		{[]RegisterID{BP, DI}, RmBpDi},
		{[]RegisterID{BP}, RmBp},
		{[]RegisterID{BX}, RmBx},
		{nil, RmDisp16Direct},
	}
	for _, c := range cases {
		code, _, ok := LookupRmCode(c.regs)
		if !ok {
			t.Errorf("LookupRmCode(%v): not found", c.regs)
			continue
		}
		if code != c.want {
			t.Errorf("LookupRmCode(%v) = %v, want %v", c.regs, code, c.want)
		}
	}
}

func TestRmRegsCombinationInvalid(t *testing.T) {
	if _, _, ok := LookupRmCode([]RegisterID{SI, DI}); ok {
		t.Error("expected {SI,DI} to be an invalid combination")
	}
}

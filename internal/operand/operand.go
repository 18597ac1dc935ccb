// Package operand implements the operand evaluator: it turns
// one AST operand expression into an OperandEval describing how the
// instruction selector and emitter may use it, without yet knowing which
// instruction variant it will end up feeding.
package operand

import (
	"github.com/keurnel/assembler8086/internal/ast"
	"github.com/keurnel/assembler8086/internal/isa"
)

// Kind classifies an operand at the shape level, ahead of variant selection.
type Kind uint8

const (
	KindRegister Kind = iota
	KindMemory
	KindImmediate
)

func (k Kind) String() string {
	switch k {
	case KindRegister:
		return "register"
	case KindMemory:
		return "memory"
	case KindImmediate:
		return "immediate"
	default:
		return "unknown"
	}
}

// Sign records what the selector needs to know about a known immediate's
// bit pattern relative to its minimal width: Signed covers every negative
// value, Unsigned marks a positive value whose top bit at MinBits is set
// (the form a sign-extending imm8 encoding cannot represent).
type Sign uint8

const (
	SignNone Sign = iota
	SignUnsigned
	SignSigned
)

// Eval is the operand evaluator's result for a single operand.
type Eval struct {
	Kind          Kind
	Candidates    map[isa.OperandType]bool
	MinBits       int
	KnownValue    int64
	HasKnownValue bool
	Sign          Sign

	// Register is populated only when Kind == KindRegister.
	Register isa.Register
	// BaseRegisters, IsDirect, and MemoryValid are populated only when
	// Kind == KindMemory. MemoryValid is false when the body's registers
	// appear outside an additive position (e.g. [BX*2]); the emitter
	// reports that as "Invalid memory expression" rather than silently
	// treating it as a zero-register direct address.
	BaseRegisters []isa.RegisterID
	IsDirect      bool
	MemoryValid   bool
	SegOverride   *isa.RegisterID
}

// Has reports whether t is among the operand's candidate types.
func (e Eval) Has(t isa.OperandType) bool { return e.Candidates[t] }

// Evaluate classifies expr three cases. known carries
// every symbol value resolvable at the point expr appears (already-evaluated
// constants, `$`/`$$`, and, while selecting a variant, same-section label
// offsets); code generation is its only caller.
func Evaluate(expr ast.Expression, known map[string]int64) Eval {
	switch e := expr.(type) {
	case *ast.RegisterExpr:
		return evaluateRegister(e)
	case *ast.MemoryExpr:
		return evaluateMemory(e, known)
	default:
		return evaluateImmediate(expr, known)
	}
}

func evaluateRegister(e *ast.RegisterExpr) Eval {
	reg := e.Register()
	cand := map[isa.OperandType]bool{}
	switch reg.Group {
	case isa.Segment:
		cand[isa.OpSReg] = true
	case isa.Control:
		cand[isa.OpCReg] = true
	default:
		cand[isa.OpR] = true
		cand[isa.OpRM] = true
	}
	switch e.ID {
	case isa.AL:
		cand[isa.OpAL] = true
	case isa.AX:
		cand[isa.OpAX] = true
	case isa.DX:
		cand[isa.OpDX] = true
	case isa.CL:
		cand[isa.OpCL] = true
	case isa.CS:
		cand[isa.OpCS] = true
	case isa.DS:
		cand[isa.OpDS] = true
	case isa.ES:
		cand[isa.OpES] = true
	case isa.SS:
		cand[isa.OpSS] = true
	case isa.FS:
		cand[isa.OpFS] = true
	case isa.GS:
		cand[isa.OpGS] = true
	}
	return Eval{Kind: KindRegister, Candidates: cand, MinBits: reg.Size, Register: reg}
}

func evaluateMemory(e *ast.MemoryExpr, known map[string]int64) Eval {
	cand := map[isa.OperandType]bool{isa.OpM: true, isa.OpRM: true}
	regs, valid := e.BaseRegisters()
	isDirect := valid && len(regs) == 0
	if isDirect {
		cand[isa.OpMoffs] = true
	}
	ev := Eval{
		Kind:          KindMemory,
		Candidates:    cand,
		MinBits:       e.SizeOverride * 8,
		BaseRegisters: regs,
		IsDirect:      isDirect,
		MemoryValid:   valid,
		SegOverride:   e.SegOverride,
	}
	if !valid {
		return ev
	}
	if !e.Body.IsDependent() || allKnown(e.Body, known) {
		v := e.Body.Resolve(known)
		ev.KnownValue = v
		ev.HasKnownValue = true
	}
	return ev
}

func evaluateImmediate(expr ast.Expression, known map[string]int64) Eval {
	cand := map[isa.OperandType]bool{isa.OpImm: true, isa.OpRel: true, isa.OpPtr: true}
	ev := Eval{Kind: KindImmediate, Candidates: cand}

	if !expr.IsDependent() || allKnown(expr, known) {
		v := expr.Resolve(known)
		ev.HasKnownValue = true
		ev.KnownValue = v
		if v == 1 {
			cand[isa.OpOne] = true
		}
		ev.MinBits = minBitsForValue(v)
		switch {
		case v < 0:
			ev.Sign = SignSigned
		case v > 0 && highBitSet(v, ev.MinBits):
			ev.Sign = SignUnsigned
		default:
			ev.Sign = SignNone
		}
		return ev
	}

	// Unresolved: conservative 16-bit width
	ev.MinBits = 16
	return ev
}

func allKnown(expr ast.Expression, known map[string]int64) bool {
	for _, dep := range expr.Dependencies() {
		if _, ok := known[dep]; !ok {
			return false
		}
	}
	return true
}

// minBitsForValue is the narrowest whole-byte width, minimum one byte, that
// holds value: unsigned for a non-negative value, two's complement for a
// negative one.
func minBitsForValue(v int64) int {
	mag := v
	limit := int64(1) << 8
	if mag < 0 {
		mag = -mag - 1 // -128 fits in one signed byte, -129 needs two
		limit = int64(1) << 7
	}
	bytes := 1
	for mag >= limit {
		bytes++
		limit <<= 8
	}
	return bytes * 8
}

func highBitSet(v int64, bits int) bool {
	if bits <= 0 {
		return false
	}
	mask := int64(1) << uint(bits-1)
	return v&mask != 0
}

// Package emit implements the ModR/M encoder and immediate emitter: given
// a selected instruction variant and its evaluated operands, produce the
// trailing bytes of the instruction (modr/m, displacement, immediate) plus
// any deferred fix-ups.
package emit

import (
	"fmt"

	"github.com/keurnel/assembler8086/internal/ast"
	"github.com/keurnel/assembler8086/internal/isa"
	"github.com/keurnel/assembler8086/internal/operand"
	"github.com/keurnel/assembler8086/internal/symtab"
)

// PendingFixup describes a deferred patch whose byte offset the caller
// fills in once it knows where these bytes land in the section.
type PendingFixup struct {
	Expression ast.Expression
	Kind       symtab.FixupKind
	Size       int
	ValueType  symtab.FixupValueType
}

// RMEncoding is the result of encoding one rm operand: an optional
// segment-override prefix (emitted before the opcode), the modr/m byte
// itself (reg field already OR'd in), and optional displacement bytes.
type RMEncoding struct {
	Prefix []byte
	ModRM  byte
	Disp   []byte
	Fixup  *PendingFixup // non-nil iff Disp is a zero-filled placeholder
}

// EncodeRM produces the modr/m + displacement bytes for op, whose Kind
// must be KindRegister or KindMemory. reg is the value to OR into the
// modr/m.reg field: either the other operand's register encoding (MR/RM)
// or the variant's opcode extension (M/MI/M1/MC); callers pass 0 for
// encodings where the field carries no meaning.
func EncodeRM(op operand.Eval, reg int, body ast.Expression) (RMEncoding, error) {
	if op.Kind == operand.KindRegister {
		modrm := 0xC0 | byte(reg&7)<<3 | op.Register.Encoding&7
		return RMEncoding{ModRM: modrm}, nil
	}
	if op.Kind != operand.KindMemory {
		return RMEncoding{}, fmt.Errorf("EncodeRM: operand is neither a register nor a memory expression")
	}
	return encodeMemory(op, reg, body)
}

func encodeMemory(op operand.Eval, reg int, body ast.Expression) (RMEncoding, error) {
	if !op.MemoryValid {
		return RMEncoding{}, fmt.Errorf("invalid memory expression: registers may only appear additively")
	}
	if len(op.BaseRegisters) > 2 {
		return RMEncoding{}, fmt.Errorf("invalid memory expression: too many base registers")
	}
	code, isDirect, ok := isa.LookupRmCode(op.BaseRegisters)
	if !ok {
		return RMEncoding{}, fmt.Errorf("invalid memory expression: unsupported base register combination")
	}

	var enc RMEncoding
	if op.SegOverride != nil {
		prefix, ok := isa.SegmentOverridePrefix[*op.SegOverride]
		if !ok {
			return RMEncoding{}, fmt.Errorf("invalid segment override")
		}
		enc.Prefix = []byte{prefix}
	}

	regBits := byte(reg&7) << 3
	rmBits := byte(code) & 7

	switch {
	case isDirect:
		enc.ModRM = 0x00 | regBits | rmBits
		if op.HasKnownValue {
			enc.Disp = []byte{byte(op.KnownValue), byte(op.KnownValue >> 8)}
		} else {
			enc.Disp, enc.Fixup = dispPlaceholder(body, 2)
		}
		return enc, nil

	case !op.HasKnownValue:
		enc.ModRM = 0x80 | regBits | rmBits // mod=10, disp16
		enc.Disp, enc.Fixup = dispPlaceholder(body, 2)
		return enc, nil

	case op.KnownValue == 0 && !isOnlyBP(op.BaseRegisters):
		enc.ModRM = 0x00 | regBits | rmBits // mod=00, no displacement
		return enc, nil

	default:
		if fitsSignedByte(op.KnownValue) {
			enc.ModRM = 0x40 | regBits | rmBits // mod=01, disp8
			enc.Disp = []byte{byte(op.KnownValue)}
		} else {
			enc.ModRM = 0x80 | regBits | rmBits // mod=10, disp16
			enc.Disp = []byte{byte(op.KnownValue), byte(op.KnownValue >> 8)}
		}
		return enc, nil
	}
}

func isOnlyBP(regs []isa.RegisterID) bool {
	return len(regs) == 1 && regs[0] == isa.BP
}

func fitsSignedByte(v int64) bool { return v >= -128 && v <= 127 }

// dispPlaceholder returns a width-byte zero placeholder plus the fix-up
// to patch it at link time. A dependent memory displacement always
// fixes up as an AbsoluteAddress, carrying the memory body expression
// that EncodeRM was given.
func dispPlaceholder(body ast.Expression, width int) ([]byte, *PendingFixup) {
	return make([]byte, width), &PendingFixup{Expression: body, Kind: symtab.FixupAbsoluteAddress, Size: width, ValueType: symtab.ValueInteger}
}

// ImmEncoding is the result of encoding one immediate/rel/ptr/moffs
// operand: its bytes (actual value, or a zero placeholder) and an
// optional fix-up.
type ImmEncoding struct {
	Bytes []byte
	Fixup *PendingFixup
}

// EncodeImmediate produces the trailing immediate bytes for proto, whose
// type is imm, rel, ptr, or moffs. expr is the operand's
// original expression, carried into the fix-up when one is needed.
func EncodeImmediate(proto isa.OperandPrototype, op operand.Eval, expr ast.Expression) ImmEncoding {
	width := proto.Size / 8
	if proto.Type == isa.OpMoffs || proto.Type == isa.OpPtr {
		width = 2
	}

	if op.HasKnownValue {
		return ImmEncoding{Bytes: leBytes(op.KnownValue, width)}
	}

	kind := symtab.FixupValue
	switch proto.Type {
	case isa.OpRel:
		kind = symtab.FixupRelativeAddress
	case isa.OpPtr, isa.OpMoffs:
		kind = symtab.FixupAbsoluteAddress
	case isa.OpImm:
		kind = symtab.FixupValue
	}
	return ImmEncoding{
		Bytes: make([]byte, width),
		Fixup: &PendingFixup{Expression: expr, Kind: kind, Size: width, ValueType: symtab.ValueInteger},
	}
}

func leBytes(v int64, width int) []byte {
	out := make([]byte, width)
	for i := 0; i < width; i++ {
		out[i] = byte(v >> (8 * uint(i)))
	}
	return out
}

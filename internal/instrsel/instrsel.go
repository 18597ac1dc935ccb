// Package instrsel implements the instruction selector: it
// scores each candidate encoding variant of a mnemonic against a concrete
// operand list and picks the best fit.
package instrsel

import (
	"github.com/keurnel/assembler8086/internal/isa"
	"github.com/keurnel/assembler8086/internal/operand"
)

// Target describes what the selector knows about a relative-branch target
// at the point the instruction is being selected. CurrentOffset is the
// byte offset of the instruction itself. Known is false when TargetValue
// is not known at selection time; rel scoring then falls back to the
// ordinary size check.
type Target struct {
	Known         bool
	TargetValue   int64
	CurrentOffset int64
}

// Select returns the highest-scoring variant among those whose arity
// matches len(operands), or ok=false if no candidate scored above zero.
// rel is consulted only for operands whose prototype type is isa.OpRel;
// pass a zero Target when none of the operands are a jump/call target.
func Select(instr *isa.Instruction, operands []operand.Eval, rel Target) (isa.InstructionVariant, bool) {
	candidates := instr.VariantsByArity(len(operands))

	var best isa.InstructionVariant
	bestScore := 0
	found := false

	for _, v := range candidates {
		score := scoreVariant(instr, v, operands, rel)
		if score > bestScore {
			bestScore = score
			best = v
			found = true
		}
	}
	return best, found
}

func scoreVariant(instr *isa.Instruction, v isa.InstructionVariant, operands []operand.Eval, rel Target) int {
	score := 0
	if len(v.Operands) == 0 {
		score = 1
	}

	for i, proto := range v.Operands {
		op := operands[i]

		if !op.Has(proto.Type) {
			return 0
		}

		if proto.Type == isa.OpRel && rel.Known {
			delta := rel.TargetValue - rel.CurrentOffset
			if proto.Size == 8 && hasSiblingRel16(instr, v) && (delta < -128 || delta > 127) {
				return 0
			}
			score += 2
		} else {
			if proto.Size > 0 && op.MinBits > proto.Size {
				return 0
			}
			if proto.Size > 0 && requiresExactFit(op) && op.MinBits != proto.Size {
				return 0
			}
		}

		if v.Feature == isa.FeatureSignExtended {
			switch op.Sign {
			case operand.SignSigned:
				score++
			case operand.SignUnsigned:
				score -= op.MinBits
			}
			if op.Kind == operand.KindImmediate && proto.Size == 8 && op.Sign == operand.SignUnsigned {
				return 0
			}
		}

		if proto.Size > 0 && op.MinBits == proto.Size {
			score++
		}

		score += typePriority(proto.Type)
	}

	if score > 0 && (v.Encoding == isa.ZO || v.Encoding == isa.O) {
		score += 2
	}
	return score
}

// requiresExactFit reports whether op's kind forces exact-size matching
// rather than a "fits within" check: Register
// operands always require it; Memory operands require it only when they
// carry an explicit size override (MinBits > 0 already encodes that here,
// since an un-overridden memory operand evaluates to MinBits == 0).
func requiresExactFit(op operand.Eval) bool {
	switch op.Kind {
	case operand.KindRegister:
		return true
	case operand.KindMemory:
		return op.MinBits > 0
	default:
		return false
	}
}

func typePriority(t isa.OperandType) int {
	switch t {
	case isa.OpR, isa.OpM, isa.OpRM, isa.OpImm:
		return 1
	case isa.OpNone:
		return 0
	default:
		// Fixed-register/segment/control/ONE tags (AL, AX, DX, CL, CS, DS,
		// ES, SS, FS, GS, ONE, sreg, creg, moffs, rel, ptr).
		return 2
	}
}

// hasSiblingRel16 reports whether instr has another same-arity variant
// whose rel prototype is 16-bit, i.e. whether rejecting v's out-of-range
// rel8 still leaves a wider encoding to fall back to.
func hasSiblingRel16(instr *isa.Instruction, v isa.InstructionVariant) bool {
	for _, other := range instr.Variants {
		if len(other.Operands) != len(v.Operands) {
			continue
		}
		for _, proto := range other.Operands {
			if proto.Type == isa.OpRel && proto.Size == 16 {
				return true
			}
		}
	}
	return false
}

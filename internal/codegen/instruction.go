package codegen

import (
	"fmt"

	"github.com/keurnel/assembler8086/internal/ast"
	"github.com/keurnel/assembler8086/internal/emit"
	"github.com/keurnel/assembler8086/internal/instrsel"
	"github.com/keurnel/assembler8086/internal/isa"
	"github.com/keurnel/assembler8086/internal/operand"
	"github.com/keurnel/assembler8086/internal/symtab"
)

func (g *Generator) generateInstruction(s *ast.InstructionStmt) {
	instr, ok := isa.Lookup(s.Mnemonic)
	if !ok {
		g.recordError(s.Location(), fmt.Sprintf("unknown mnemonic %q", s.Mnemonic))
		return
	}

	instrStart := g.section().Offset() // also latches g.current for sizingKnown()

	sizing := g.sizingKnown()
	final := g.finalKnown()

	sizeEvals := make([]operand.Eval, len(s.Operands))
	finalEvals := make([]operand.Eval, len(s.Operands))
	for i, o := range s.Operands {
		sizeEvals[i] = operand.Evaluate(o.Expression, sizing)
		finalEvals[i] = operand.Evaluate(o.Expression, final)
	}
	target := instrsel.Target{}
	if len(sizeEvals) == 1 && sizeEvals[0].Kind == operand.KindImmediate && sizeEvals[0].HasKnownValue {
		target = instrsel.Target{Known: true, TargetValue: sizeEvals[0].KnownValue, CurrentOffset: int64(instrStart)}
	}

	variant, ok := instrsel.Select(instr, sizeEvals, target)
	if !ok {
		g.recordError(s.Location(), fmt.Sprintf("no encoding of %s fits the given operand(s)", s.Mnemonic))
		return
	}

	g.emitVariant(s, variant, finalEvals)
}

func (g *Generator) emitVariant(s *ast.InstructionStmt, v isa.InstructionVariant, evals []operand.Eval) {
	sec := g.section()
	opcode := append([]byte(nil), v.Opcode...)
	regExt := v.OpcodeExtension
	if regExt == isa.NoOpcodeExtension {
		regExt = 0
	}

	switch v.Encoding {
	case isa.ZO:
		sec.Append(opcode...)

	case isa.O:
		idx, ok := findGenericRegister(v.Operands)
		if !ok {
			g.recordError(s.Location(), "internal error: O-encoded variant has no generic register operand")
			return
		}
		opcode[len(opcode)-1] |= evals[idx].Register.Encoding & 7
		sec.Append(opcode...)

	case isa.I:
		sec.Append(opcode...)
		idx, ok := findImmediateLike(v.Operands)
		if !ok {
			g.recordError(s.Location(), "internal error: I-encoded variant has no immediate operand")
			return
		}
		g.appendImmediate(sec, v.Operands[idx], evals[idx], s.Operands[idx].Expression)

	case isa.D:
		sec.Append(opcode...)
		g.appendImmediate(sec, v.Operands[0], evals[0], s.Operands[0].Expression)

	case isa.OI:
		idx, ok := findGenericRegister(v.Operands)
		if !ok {
			g.recordError(s.Location(), "internal error: OI-encoded variant has no generic register operand")
			return
		}
		opcode[len(opcode)-1] |= evals[idx].Register.Encoding & 7
		sec.Append(opcode...)
		immIdx := 1 - idx
		g.appendImmediate(sec, v.Operands[immIdx], evals[immIdx], s.Operands[immIdx].Expression)

	case isa.FD:
		sec.Append(opcode...)
		g.appendImmediate(sec, v.Operands[1], evals[1], s.Operands[1].Expression)

	case isa.TD:
		sec.Append(opcode...)
		g.appendImmediate(sec, v.Operands[0], evals[0], s.Operands[0].Expression)

	case isa.M, isa.M1, isa.MC:
		if !g.appendModRM(s, sec, opcode, evals[0], regExt, s.Operands[0].Expression) {
			return
		}

	case isa.MI:
		if !g.appendModRM(s, sec, opcode, evals[0], regExt, s.Operands[0].Expression) {
			return
		}
		g.appendImmediate(sec, v.Operands[1], evals[1], s.Operands[1].Expression)

	case isa.MR:
		reg := int(evals[1].Register.Encoding)
		g.appendModRM(s, sec, opcode, evals[0], reg, s.Operands[0].Expression)

	case isa.RM:
		reg := int(evals[0].Register.Encoding)
		g.appendModRM(s, sec, opcode, evals[1], reg, s.Operands[1].Expression)

	case isa.RMI:
		reg := int(evals[0].Register.Encoding)
		if !g.appendModRM(s, sec, opcode, evals[1], reg, s.Operands[1].Expression) {
			return
		}
		g.appendImmediate(sec, v.Operands[2], evals[2], s.Operands[2].Expression)

	case isa.S:
		g.recordError(s.Location(), "far pointer (seg:offset) encoding is not implemented")
	}
}

func findGenericRegister(protos []isa.OperandPrototype) (int, bool) {
	for i, p := range protos {
		if p.Type == isa.OpR {
			return i, true
		}
	}
	return 0, false
}

func findImmediateLike(protos []isa.OperandPrototype) (int, bool) {
	for i, p := range protos {
		switch p.Type {
		case isa.OpImm, isa.OpRel, isa.OpPtr, isa.OpMoffs:
			return i, true
		}
	}
	return 0, false
}

func memoryBody(expr ast.Expression) ast.Expression {
	if m, ok := expr.(*ast.MemoryExpr); ok {
		return m.Body
	}
	return nil
}

// appendModRM encodes a register-or-memory operand and appends it (prefix,
// opcode, modr/m, displacement) to sec, recording a fix-up if the
// displacement is dependent. Returns false (and records an error) if the
// memory expression is invalid.
func (g *Generator) appendModRM(s *ast.InstructionStmt, sec *symtab.Section, opcode []byte, rm operand.Eval, reg int, rmExpr ast.Expression) bool {
	enc, err := emit.EncodeRM(rm, reg, memoryBody(rmExpr))
	if err != nil {
		g.recordError(s.Location(), err.Error())
		return false
	}
	sec.Append(enc.Prefix...)
	sec.Append(opcode...)
	sec.Append(enc.ModRM)
	if len(enc.Disp) > 0 {
		dispOffset := sec.Offset()
		sec.Append(enc.Disp...)
		if enc.Fixup != nil {
			sec.AddFixup(symtab.Fixup{
				Expression: enc.Fixup.Expression,
				Kind:       enc.Fixup.Kind,
				ByteOffset: dispOffset,
				Size:       enc.Fixup.Size,
				ValueType:  enc.Fixup.ValueType,
			})
		}
	}
	return true
}

// appendImmediate encodes an immediate/rel/ptr/moffs operand and appends
// it to sec, recording a fix-up if its value is dependent. For a rel
// fix-up, relative_origin is the offset just past the field itself
// ("jump displacements are from the byte after the
// displacement field").
func (g *Generator) appendImmediate(sec *symtab.Section, proto isa.OperandPrototype, ev operand.Eval, expr ast.Expression) {
	enc := emit.EncodeImmediate(proto, ev, expr)
	offset := sec.Offset()
	sec.Append(enc.Bytes...)
	if enc.Fixup == nil {
		return
	}
	relOrigin := 0
	if enc.Fixup.Kind == symtab.FixupRelativeAddress {
		relOrigin = offset + enc.Fixup.Size
	}
	sec.AddFixup(symtab.Fixup{
		Expression:     enc.Fixup.Expression,
		Kind:           enc.Fixup.Kind,
		ByteOffset:     offset,
		Size:           enc.Fixup.Size,
		RelativeOrigin: relOrigin,
		ValueType:      enc.Fixup.ValueType,
	})
}

package codegen

import (
	"github.com/keurnel/assembler8086/internal/ast"
	"github.com/keurnel/assembler8086/internal/isa"
)

// computeWorstCaseLabelOffsets performs a single sizing pass over the full
// statement list before any bytes are generated, mirroring the original
// assembler's parser-side pre-pass (currentStmtOffset += GetMaxStmtByteSize(),
// stamping each LabelDecl.sectionStmtOffset as it is declared): every
// statement's maximum possible encoded length is summed per section, and
// every label — forward or backward — is recorded at the running total
// reached when it is declared.
//
// The result is pessimistic, never exact: a later instruction's real
// variant may end up shorter (a sign-extended imm8 instead of imm16, a
// zero-displacement addressing mode instead of disp16), so a forward
// label's recorded offset is always >= its true final offset. That is
// exactly the property sizingKnown needs: if even the worst case still
// fits a short rel8 displacement, the real one will too.
//
// Offsets are scoped per section, matching Generator.localOffsets: a
// label name declared in one section says nothing about an
// identically-named label in another, and sizingKnown only ever consults
// the current section's entries.
func computeWorstCaseLabelOffsets(stmts []ast.Statement) map[string]map[string]int64 {
	offsets := make(map[string]map[string]int64)
	sectionOffsets := make(map[string]int64)
	constants := make(map[string]int64)
	current := ".TEXT"
	var lastGlobalLabel string

	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *ast.SectionStmt:
			current = s.Name
		case *ast.LabelStmt:
			name := s.Name
			if s.Local {
				parent := s.Parent
				if parent == "" {
					parent = lastGlobalLabel
				}
				name = parent + s.Name
			} else {
				lastGlobalLabel = s.Name
			}
			if offsets[current] == nil {
				offsets[current] = make(map[string]int64)
			}
			offsets[current][name] = sectionOffsets[current]
		case *ast.ConstantStmt:
			if !s.Expression.IsDependent() || allKnown(s.Expression, constants) {
				constants[s.Name] = s.Expression.Resolve(constants)
			}
		default:
			sectionOffsets[current] += maxStmtByteSize(stmt, constants)
		}
	}
	return offsets
}

// maxStmtByteSize conservatively bounds the number of bytes stmt could
// ever emit. Non-byte-emitting statements (sections, constants, scope
// declarations) contribute 0 and are handled by the caller instead.
func maxStmtByteSize(stmt ast.Statement, constants map[string]int64) int64 {
	switch s := stmt.(type) {
	case *ast.InstructionStmt:
		return maxInstructionSize(s)
	case *ast.DefineDataStmt:
		var total int64
		for _, v := range s.Values {
			total += maxDataValueSize(s.UnitSize, v, constants)
		}
		return total
	case *ast.ReserveStmt:
		count := s.Count.Resolve(constants)
		if count < 0 {
			count = 0
		}
		return count * int64(s.UnitSize)
	case *ast.AlignStmt:
		boundary := s.Expression.Resolve(constants)
		if boundary <= 0 {
			return 0
		}
		return boundary - 1 // worst case: one short of the next boundary
	default:
		return 0
	}
}

func maxDataValueSize(unitSize int, expr ast.Expression, constants map[string]int64) int64 {
	switch e := expr.(type) {
	case *ast.LiteralExpr:
		if len(e.Value) <= 1 {
			return int64(unitSize)
		}
		return int64(len(e.Value))
	case *ast.DuplicateExpr:
		count := e.Count.Resolve(constants)
		if count < 0 {
			count = 0
		}
		return count * maxDataValueSize(unitSize, e.Value, constants)
	default:
		return int64(unitSize)
	}
}

// maxInstructionSize takes the widest encoding among every variant whose
// arity matches the instruction, without regard to whether that variant
// would actually be selected for these operands: the selector only ever
// narrows a size down from this bound (a sign-extended or zero-displacement
// form), never widens past it.
func maxInstructionSize(s *ast.InstructionStmt) int64 {
	instr, ok := isa.Lookup(s.Mnemonic)
	if !ok {
		return 0
	}
	var widest int64
	for _, v := range instr.VariantsByArity(len(s.Operands)) {
		if n := int64(variantMaxBytes(v)); n > widest {
			widest = n
		}
	}
	return widest
}

// modRMMaxBytes is the widest a ModR/M-bearing operand ever gets: the
// ModR/M byte itself, an optional segment-override prefix, and a disp16.
func modRMMaxBytes() int { return 1 + 1 + 2 }

func protoMaxBytes(p isa.OperandPrototype) int {
	switch p.Type {
	case isa.OpMoffs, isa.OpPtr:
		return 2
	default:
		if p.Size > 0 {
			return p.Size / 8
		}
		return 0
	}
}

func widestProto(protos []isa.OperandPrototype) int {
	widest := 0
	for _, p := range protos {
		if b := protoMaxBytes(p); b > widest {
			widest = b
		}
	}
	return widest
}

func variantMaxBytes(v isa.InstructionVariant) int {
	n := len(v.Opcode)
	switch v.Encoding {
	case isa.ZO, isa.O:
		// opcode bytes only
	case isa.I, isa.OI:
		n += widestProto(v.Operands)
	case isa.D:
		n += protoMaxBytes(v.Operands[0])
	case isa.FD, isa.TD:
		n += 2 // moffs is always 2 bytes in this 16-bit-only assembler
	case isa.M, isa.M1, isa.MC, isa.MR, isa.RM:
		n += modRMMaxBytes()
	case isa.MI:
		n += modRMMaxBytes() + widestProto(v.Operands[1:])
	case isa.RMI:
		n += modRMMaxBytes() + protoMaxBytes(v.Operands[2])
	case isa.S:
		n += 4 // far ptr32
	}
	return n
}

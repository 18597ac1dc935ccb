package isa

// proto is a short constructor for OperandPrototype used throughout the
// table below.
func proto(t OperandType, size int) OperandPrototype { return OperandPrototype{Type: t, Size: size} }

func vrt(opcode []byte, enc EncodingKind, ops ...OperandPrototype) InstructionVariant {
	return InstructionVariant{Opcode: opcode, Encoding: enc, Operands: ops, OpcodeExtension: NoOpcodeExtension}
}

// ext returns a copy of v carrying the given modr/m.reg opcode extension.
func ext(v InstructionVariant, e int) InstructionVariant {
	v.OpcodeExtension = e
	return v
}

// signExtended returns a copy of v flagged as a sign-extended-immediate
// short form (e.g. "ADD AX, 1" -> 83 /0 ib).
func signExtended(v InstructionVariant) InstructionVariant {
	v.Feature = FeatureSignExtended
	return v
}

var (
	r8   = proto(OpR, 8)
	r16  = proto(OpR, 16)
	rm8  = proto(OpRM, 8)
	rm16 = proto(OpRM, 16)
	m    = proto(OpM, 0)
	imm8 = proto(OpImm, 8)
	imm16 = proto(OpImm, 16)
	rel8  = proto(OpRel, 8)
	rel16 = proto(OpRel, 16)
	moffs8  = proto(OpMoffs, 8)
	moffs16 = proto(OpMoffs, 16)
	sreg   = proto(OpSReg, 0)
	one    = proto(OpOne, 0)
	cl     = proto(OpCL, 0)
	al     = proto(OpAL, 0)
	ax     = proto(OpAX, 0)
	dx     = proto(OpDX, 0)
	cs     = proto(OpCS, 0)
	ds     = proto(OpDS, 0)
	es     = proto(OpES, 0)
	ss     = proto(OpSS, 0)
	ptr32  = proto(OpPtr, 32)
)

// arith builds the nine-variant matrix shared by ADD/ADC/SUB/SBB/CMP/AND/
// OR/XOR: accumulator-immediate, register<->r/m in both directions, and
// r/m-immediate (full width and sign-extended 8-bit).
func arith(opcodeBase byte, extension int) []InstructionVariant {
	return []InstructionVariant{
		vrt([]byte{opcodeBase + 2}, I, al, imm8),
		vrt([]byte{opcodeBase + 3}, I, ax, imm16),
		vrt([]byte{opcodeBase}, RM, r8, rm8),
		vrt([]byte{opcodeBase + 1}, RM, r16, rm16),
		vrt([]byte{opcodeBase - 2}, MR, rm8, r8),
		vrt([]byte{opcodeBase - 1}, MR, rm16, r16),
		ext(vrt([]byte{0x80}, MI, rm8, imm8), extension),
		ext(vrt([]byte{0x81}, MI, rm16, imm16), extension),
		signExtended(ext(vrt([]byte{0x83}, MI, rm16, imm8), extension)),
	}
}

// shiftFamily builds the six-variant matrix shared by SHL/SAL/SHR/SAR/ROL/
// ROR/RCL/RCR: literal-1 (M1), CL-count (MC), and imm8-count (MI) forms for
// both operand widths.
func shiftFamily(extension int) []InstructionVariant {
	return []InstructionVariant{
		ext(vrt([]byte{0xD0}, M1, rm8, one), extension),
		ext(vrt([]byte{0xD1}, M1, rm16, one), extension),
		ext(vrt([]byte{0xD2}, MC, rm8, cl), extension),
		ext(vrt([]byte{0xD3}, MC, rm16, cl), extension),
		ext(vrt([]byte{0xC0}, MI, rm8, imm8), extension),
		ext(vrt([]byte{0xC1}, MI, rm16, imm8), extension),
	}
}

// jcc builds the rel8/rel16 pair shared by every conditional jump.
func jcc(short byte, near byte) []InstructionVariant {
	return []InstructionVariant{
		vrt([]byte{short}, D, rel8),
		vrt([]byte{0x0F, near}, D, rel16),
	}
}

func instructions() map[string]*Instruction {
	t := make(map[string]*Instruction, 96)
	add := func(mnemonic string, variants ...InstructionVariant) {
		t[mnemonic] = &Instruction{Mnemonic: mnemonic, Variants: variants}
	}
	alias := func(name, of string) {
		t[name] = &Instruction{Mnemonic: name, Variants: t[of].Variants}
	}

	// --- Data transfer ---
	add("MOV",
		vrt([]byte{0x88}, MR, rm8, r8),
		vrt([]byte{0x89}, MR, rm16, r16),
		vrt([]byte{0x8A}, RM, r8, rm8),
		vrt([]byte{0x8B}, RM, r16, rm16),
		vrt([]byte{0x8C}, MR, rm16, sreg),
		vrt([]byte{0x8E}, RM, sreg, rm16),
		vrt([]byte{0xA0}, FD, al, moffs8),
		vrt([]byte{0xA1}, FD, ax, moffs16),
		vrt([]byte{0xA2}, TD, moffs8, al),
		vrt([]byte{0xA3}, TD, moffs16, ax),
		vrt([]byte{0xB0}, OI, r8, imm8),
		vrt([]byte{0xB8}, OI, r16, imm16),
		ext(vrt([]byte{0xC6}, MI, rm8, imm8), 0),
		ext(vrt([]byte{0xC7}, MI, rm16, imm16), 0),
	)
	add("PUSH",
		ext(vrt([]byte{0xFF}, M, rm16), 6),
		vrt([]byte{0x50}, O, r16),
		vrt([]byte{0x6A}, I, imm8),
		vrt([]byte{0x68}, I, imm16),
		vrt([]byte{0x06}, ZO, es),
		vrt([]byte{0x0E}, ZO, cs),
		vrt([]byte{0x16}, ZO, ss),
		vrt([]byte{0x1E}, ZO, ds),
	)
	add("POP",
		ext(vrt([]byte{0x8F}, M, rm16), 0),
		vrt([]byte{0x58}, O, r16),
		vrt([]byte{0x07}, ZO, es),
		vrt([]byte{0x17}, ZO, ss),
		vrt([]byte{0x1F}, ZO, ds),
	)
	add("PUSHA", vrt([]byte{0x60}, ZO))
	add("POPA", vrt([]byte{0x61}, ZO))
	add("PUSHF", vrt([]byte{0x9C}, ZO))
	add("POPF", vrt([]byte{0x9D}, ZO))
	add("XCHG",
		vrt([]byte{0x90}, O, ax, r16),
		vrt([]byte{0x90}, O, r16, ax),
		vrt([]byte{0x86}, MR, rm8, r8),
		vrt([]byte{0x87}, MR, rm16, r16),
	)
	add("XLAT", vrt([]byte{0xD7}, ZO))
	add("IN",
		vrt([]byte{0xE4}, I, al, imm8),
		vrt([]byte{0xE5}, I, ax, imm8),
		vrt([]byte{0xEC}, ZO, al, dx),
		vrt([]byte{0xED}, ZO, ax, dx),
	)
	add("OUT",
		vrt([]byte{0xE6}, I, imm8, al),
		vrt([]byte{0xE7}, I, imm8, ax),
		vrt([]byte{0xEE}, ZO, dx, al),
		vrt([]byte{0xEF}, ZO, dx, ax),
	)
	add("LEA", vrt([]byte{0x8D}, RM, r16, m))
	add("LDS", vrt([]byte{0xC5}, RM, r16, m))
	add("LES", vrt([]byte{0xC4}, RM, r16, m))
	add("LAHF", vrt([]byte{0x9F}, ZO))
	add("SAHF", vrt([]byte{0x9E}, ZO))

	// --- Arithmetic ---
	add("ADD", arith(0x02, 0)...)
	add("OR", arith(0x0A, 1)...)
	add("ADC", arith(0x12, 2)...)
	add("SBB", arith(0x1A, 3)...)
	add("AND", arith(0x22, 4)...)
	add("SUB", arith(0x2A, 5)...)
	add("XOR", arith(0x32, 6)...)
	add("CMP", arith(0x3A, 7)...)
	add("TEST",
		vrt([]byte{0xA8}, I, al, imm8),
		vrt([]byte{0xA9}, I, ax, imm16),
		ext(vrt([]byte{0xF6}, MI, rm8, imm8), 0),
		ext(vrt([]byte{0xF7}, MI, rm16, imm16), 0),
		vrt([]byte{0x84}, MR, rm8, r8),
		vrt([]byte{0x85}, MR, rm16, r16),
	)
	add("INC",
		ext(vrt([]byte{0xFE}, M, rm8), 0),
		ext(vrt([]byte{0xFF}, M, rm16), 0),
		// The O form's opcode-extension byte is spurious: OpEn::O never
		// reads it. Left present and inert per the table's own precedent.
		ext(vrt([]byte{0x40}, O, r16), 0),
	)
	add("DEC",
		ext(vrt([]byte{0xFE}, M, rm8), 1),
		ext(vrt([]byte{0xFF}, M, rm16), 1),
		ext(vrt([]byte{0x48}, O, r16), 0),
	)
	add("NEG", ext(vrt([]byte{0xF6}, M, rm8), 3), ext(vrt([]byte{0xF7}, M, rm16), 3))
	add("NOT", ext(vrt([]byte{0xF6}, M, rm8), 2), ext(vrt([]byte{0xF7}, M, rm16), 2))
	add("MUL", ext(vrt([]byte{0xF6}, M, rm8), 4), ext(vrt([]byte{0xF7}, M, rm16), 4))
	add("DIV", ext(vrt([]byte{0xF6}, M, rm8), 6), ext(vrt([]byte{0xF7}, M, rm16), 6))
	add("IDIV", ext(vrt([]byte{0xF6}, M, rm8), 7), ext(vrt([]byte{0xF7}, M, rm16), 7))
	add("IMUL",
		ext(vrt([]byte{0xF6}, M, rm8), 5),
		ext(vrt([]byte{0xF7}, M, rm16), 5),
		vrt([]byte{0x0F, 0xAF}, RM, r16, rm16),
		signExtended(vrt([]byte{0x6B}, RMI, r16, rm16, imm8)),
		vrt([]byte{0x69}, RMI, r16, rm16, imm16),
	)
	add("AAA", vrt([]byte{0x37}, ZO))
	add("AAS", vrt([]byte{0x3F}, ZO))
	add("DAA", vrt([]byte{0x27}, ZO))
	add("DAS", vrt([]byte{0x2F}, ZO))
	add("AAM", vrt([]byte{0xD4, 0x0A}, ZO))
	add("AAD", vrt([]byte{0xD5, 0x0A}, ZO))
	add("CBW", vrt([]byte{0x98}, ZO))
	add("CWD", vrt([]byte{0x99}, ZO))

	// --- Shifts / rotates ---
	add("ROL", shiftFamily(0)...)
	add("ROR", shiftFamily(1)...)
	add("RCL", shiftFamily(2)...)
	add("RCR", shiftFamily(3)...)
	add("SHL", shiftFamily(4)...)
	alias("SAL", "SHL")
	add("SHR", shiftFamily(5)...)
	add("SAR", shiftFamily(7)...)

	// --- Bit test (cataloged; realized only at 16-bit width) ---
	add("BT", vrt([]byte{0x0F, 0xA3}, MR, rm16, r16), ext(vrt([]byte{0x0F, 0xBA}, MI, rm16, imm8), 4))
	add("BTC", vrt([]byte{0x0F, 0xBB}, MR, rm16, r16), ext(vrt([]byte{0x0F, 0xBA}, MI, rm16, imm8), 7))

	// --- Control transfer ---
	add("JMP",
		vrt([]byte{0xEB}, D, rel8),
		vrt([]byte{0xE9}, D, rel16),
		ext(vrt([]byte{0xFF}, M, rm16), 4),
		vrt([]byte{0xEA}, S, ptr32),
		ext(vrt([]byte{0xFF}, M, rm16), 5),
	)
	add("CALL",
		vrt([]byte{0xE8}, D, rel16),
		ext(vrt([]byte{0xFF}, M, rm16), 2),
		ext(vrt([]byte{0xFF}, M, rm16), 3),
	)
	add("RET", vrt([]byte{0xC3}, ZO))
	add("RETN", vrt([]byte{0xC2}, I, imm16), vrt([]byte{0xC3}, ZO))
	add("LEAVE", vrt([]byte{0xC9}, ZO))
	add("LOOP", vrt([]byte{0xE2}, D, rel8))
	add("LOOPE", vrt([]byte{0xE1}, D, rel8))
	alias("LOOPZ", "LOOPE")
	add("LOOPNE", vrt([]byte{0xE0}, D, rel8))
	alias("LOOPNZ", "LOOPNE")
	add("JCXZ", vrt([]byte{0xE3}, D, rel8))

	add("JO", jcc(0x70, 0x80)...)
	add("JNO", jcc(0x71, 0x81)...)
	add("JB", jcc(0x72, 0x82)...)
	alias("JC", "JB")
	alias("JNAE", "JB")
	add("JAE", jcc(0x73, 0x83)...)
	alias("JNB", "JAE")
	alias("JNC", "JAE")
	add("JE", jcc(0x74, 0x84)...)
	alias("JZ", "JE")
	add("JNE", jcc(0x75, 0x85)...)
	alias("JNZ", "JNE")
	add("JBE", jcc(0x76, 0x86)...)
	alias("JNA", "JBE")
	add("JA", jcc(0x77, 0x87)...)
	alias("JNBE", "JA")
	add("JS", jcc(0x78, 0x88)...)
	add("JNS", jcc(0x79, 0x89)...)
	add("JP", jcc(0x7A, 0x8A)...)
	alias("JPE", "JP")
	add("JNP", jcc(0x7B, 0x8B)...)
	alias("JPO", "JNP")
	add("JL", jcc(0x7C, 0x8C)...)
	alias("JNGE", "JL")
	add("JGE", jcc(0x7D, 0x8D)...)
	alias("JNL", "JGE")
	add("JLE", jcc(0x7E, 0x8E)...)
	alias("JNG", "JLE")
	add("JG", jcc(0x7F, 0x8F)...)
	alias("JNLE", "JG")

	// --- Flags / misc ---
	add("NOP", vrt([]byte{0x90}, ZO))
	add("HLT", vrt([]byte{0xF4}, ZO))
	add("STC", vrt([]byte{0xF9}, ZO))
	add("CLC", vrt([]byte{0xF8}, ZO))
	add("CMC", vrt([]byte{0xF5}, ZO))
	add("STD", vrt([]byte{0xFD}, ZO))
	add("CLD", vrt([]byte{0xFC}, ZO))
	add("STI", vrt([]byte{0xFB}, ZO))
	add("CLI", vrt([]byte{0xFA}, ZO))
	add("INT", vrt([]byte{0xCD}, I, imm8))
	add("INT3", vrt([]byte{0xCC}, ZO))
	add("INTO", vrt([]byte{0xCE}, ZO))
	add("IRET", vrt([]byte{0xCF}, ZO))
	add("CPUID", vrt([]byte{0x0F, 0xA2}, ZO))

	return t
}

// Table is the complete mnemonic -> candidate-variant catalog, built once
// at init. Mnemonic keys are upper-case; Lookup/IsMnemonic normalize case.
var Table = instructions()

package isa

// EncodingKind names how an instruction variant's operands map onto bytes.
// The comment on each constant describes its kind.
type EncodingKind uint8

const (
	ZO  EncodingKind = iota // opcode only
	I                       // implicit operand + immediate
	D                       // rel/ptr immediate
	M                       // opcode + modr/m, ext in .reg, rm = operand 0
	O                       // register index folded into the last opcode byte
	MR                      // modr/m, reg <- op1, rm <- op0
	RM                      // modr/m, reg <- op0, rm <- op1
	MI                      // modr/m ext + immediate
	RMI                     // modr/m + immediate tied to operand 2
	OI                      // O + immediate
	FD                      // no modr/m, encodes a 16-bit memory offset (A0/A1 style)
	TD                      // no modr/m, encodes a 16-bit memory offset (A2/A3 style)
	M1                      // modr/m, second operand is the literal 1
	MC                      // modr/m, second operand is CL (imm8 counts use MI)
	S                       // seg-reg + pointer; cataloged, not realized
)

func (k EncodingKind) String() string {
	names := [...]string{"ZO", "I", "D", "M", "O", "MR", "RM", "MI", "RMI", "OI", "FD", "TD", "M1", "MC", "S"}
	if int(k) < len(names) {
		return names[k]
	}
	return "unknown"
}

// SpecialFeature flags a variant that needs extra selector/emitter logic
// beyond opcode + operand matching.
type SpecialFeature uint8

const (
	FeatureNone SpecialFeature = iota
	// FeatureSignExtended marks a shorter form that carries an 8-bit
	// immediate and sign-extends it to the full operand width, e.g.
	// "ADD AX, 1" selecting 83 /0 ib instead of the 16-bit-immediate form.
	FeatureSignExtended
)

// NoOpcodeExtension marks an InstructionVariant whose modr/m.reg field, if
// any, does not carry an opcode extension (it is either the other
// operand's register or simply unused).
const NoOpcodeExtension = -1

package isa

import "sort"

// RmCode is a 3-bit modr/m.rm value for a memory operand with mod != 11.
type RmCode uint8

const (
	RmBxSi RmCode = 0b000
	RmBxDi RmCode = 0b001
	RmBpSi RmCode = 0b010
	RmBpDi RmCode = 0b011
	RmSi   RmCode = 0b100
	RmDi   RmCode = 0b101
	RmBp   RmCode = 0b110 // only valid with mod != 00 (mod=00/rm=110 means disp16-direct)
	RmBx   RmCode = 0b111
	// RmDisp16Direct shares bit pattern with RmBp; the two are disambiguated
	// by mod (00 => disp16-direct, otherwise => [BP]+disp).
	RmDisp16Direct RmCode = 0b110
)

// rmKey canonicalizes a base-register multiset the way arch-8086.cpp does:
// sort the register identifiers, then compare against each table row.
func rmKey(regs []RegisterID) string {
	sorted := append([]RegisterID(nil), regs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	key := make([]byte, len(sorted))
	for i, r := range sorted {
		key[i] = byte(r)
	}
	return string(key)
}

// rmRegsCombinations maps a base-register multiset (0, 1 or 2 of
// BX/BP/SI/DI) to its modr/m.rm code, transcribed from
// arch-8086.cpp's RmRegsCombinations table.
var rmRegsCombinations = map[string]RmCode{
	rmKey([]RegisterID{BX, SI}): RmBxSi,
	rmKey([]RegisterID{BX, DI}): RmBxDi,
	rmKey([]RegisterID{BP, SI}): RmBpSi,
	rmKey([]RegisterID{BP, DI}): RmBpDi,
	rmKey([]RegisterID{SI}):     RmSi,
	rmKey([]RegisterID{DI}):     RmDi,
	rmKey([]RegisterID{BP}):     RmBp,
	rmKey([]RegisterID{BX}):     RmBx,
	rmKey(nil):                  RmDisp16Direct,
}

// LookupRmCode resolves a memory operand's base-register multiset to its
// modr/m.rm code. ok is false for any combination absent from the table
// (e.g. {SI, DI} together), which the emitter reports as "Invalid memory
// expression".
func LookupRmCode(regs []RegisterID) (code RmCode, isDirect bool, ok bool) {
	c, found := rmRegsCombinations[rmKey(regs)]
	if !found {
		return 0, false, false
	}
	return c, len(regs) == 0, true
}

// SegmentOverridePrefix maps a segment register to the prefix byte emitted
// ahead of an instruction when the operand carries an explicit segment
// override, transcribed from arch-8086.cpp's SregToSegOverride.
var SegmentOverridePrefix = map[RegisterID]byte{
	CS: 0x2E,
	SS: 0x36,
	DS: 0x3E,
	ES: 0x26,
	FS: 0x64,
	GS: 0x65,
}

// DataDefinitionSizes maps DB/DW/DD/DQ/DT to their per-unit byte size.
var DataDefinitionSizes = map[string]int{
	"DB": 1,
	"DW": 2,
	"DD": 4,
	"DQ": 8,
	"DT": 10,
}

// ReserveSizes maps RESB/RESW/RESD/RESQ/REST to their per-unit byte size.
// These directives emit size*count zero bytes.
var ReserveSizes = map[string]int{
	"RESB": 1,
	"RESW": 2,
	"RESD": 4,
	"RESQ": 8,
	"REST": 10,
}

package envelope

import (
	"encoding/binary"
	"testing"

	"github.com/keurnel/assembler8086/internal/link"
)

func u16(b []byte, offset int) uint16 {
	return binary.LittleEndian.Uint16(b[offset : offset+2])
}

func TestBuildRawConcatenatesCodeVerbatim(t *testing.T) {
	img := &link.Image{Code: []byte{0x90, 0x90, 0xCD, 0x20}}
	out, warnings := BuildRaw(img)
	if string(out) != string(img.Code) {
		t.Errorf("got % X, want % X", out, img.Code)
	}
	if len(warnings) != 0 {
		t.Errorf("expected no warnings, got %v", warnings)
	}
}

func TestBuildRawWarnsOnStackDirective(t *testing.T) {
	img := &link.Image{Code: []byte{0x90}, HasStack: true, StackSize: 256}
	_, warnings := BuildRaw(img)
	if len(warnings) != 1 {
		t.Fatalf("expected one warning, got %v", warnings)
	}
}

func TestBuildMZHeaderFieldsNoStackNoRelocations(t *testing.T) {
	img := &link.Image{Code: []byte{}}
	out, warnings := BuildMZ(img)

	if len(warnings) != 1 {
		t.Fatalf("expected a missing-stack warning, got %v", warnings)
	}
	if len(out) != 256 {
		t.Fatalf("expected a 256-byte file (empty-image case), got %d", len(out))
	}
	if out[0] != 'M' || out[1] != 'Z' {
		t.Fatalf("expected MZ signature, got %c%c", out[0], out[1])
	}
	if got := u16(out, 2); got != 256 {
		t.Errorf("bytes_in_last_page: got %d, want 256", got)
	}
	if got := u16(out, 4); got != 1 {
		t.Errorf("file_size_in_pages: got %d, want 1", got)
	}
	if got := u16(out, 6); got != 0 {
		t.Errorf("num_relocations: got %d, want 0", got)
	}
	if got := u16(out, 8); got != 16 {
		t.Errorf("header_size_in_paragraphs: got %d, want 16", got)
	}
	if got := u16(out, 10); got != 0 {
		t.Errorf("min_alloc_paragraphs: got %d, want 0", got)
	}
	if got := u16(out, 12); got != 0xFFFF {
		t.Errorf("max_alloc_paragraphs: got %d, want 0xFFFF", got)
	}
	if got := u16(out, 24); got != 28 {
		t.Errorf("relocation_table_offset: got %d, want 28", got)
	}
}

func TestBuildMZSetsStackFields(t *testing.T) {
	img := &link.Image{Code: make([]byte, 32), HasStack: true, StackSize: 0x1000}
	out, warnings := BuildMZ(img)
	if len(warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", warnings)
	}
	if got := u16(out, 14); got != 2 { // 32 bytes of code = 2 paragraphs
		t.Errorf("initial_SS: got %d, want 2", got)
	}
	if got := u16(out, 16); got != 0x1000 {
		t.Errorf("initial_SP: got 0x%04X, want 0x1000", got)
	}
}

func TestBuildMZEncodesRelocationTable(t *testing.T) {
	img := &link.Image{Code: []byte{0x01, 0x02}, Relocations: []link.Relocation{{Offset: 20}}}
	out, _ := BuildMZ(img)

	if got := u16(out, 6); got != 1 {
		t.Fatalf("num_relocations: got %d, want 1", got)
	}
	recOffset := u16(out, mzHeaderSize)
	recSegment := u16(out, mzHeaderSize+2)
	if recOffset != 4 || recSegment != 1 {
		t.Errorf("relocation record: got offset=%d segment=%d, want offset=4 segment=1", recOffset, recSegment)
	}

	headerSize := mzHeaderSize + 4
	headerAlign := 0
	if rem := headerSize % pageSize; rem != 0 {
		headerAlign = pageSize - rem
	}
	codeStart := headerSize + headerAlign
	if string(out[codeStart:]) != string(img.Code) {
		t.Errorf("code should start at byte %d", codeStart)
	}
}

// Package envelope frames a linked image for output:
// either a bare concatenation of section bytes (RawBinary, used for .bin
// and .com targets) or an MS-DOS MZ executable header followed by a
// relocation table and the image.
package envelope

import (
	"encoding/binary"

	"github.com/keurnel/assembler8086/internal/link"
)

// Warning is a non-fatal diagnostic raised while framing an image, such as
// a STACK directive that a raw binary target has no use for.
type Warning struct {
	Message string
}

const (
	mzHeaderSize  = 28
	pageSize      = 256
	paragraphSize = 16
)

// BuildRaw concatenates an image's bytes with no header. A STACK directive
// has no meaning for a raw binary and is reported as a warning, not an
// error.
func BuildRaw(img *link.Image) ([]byte, []Warning) {
	var warnings []Warning
	if img.HasStack {
		warnings = append(warnings, Warning{Message: "STACK directive is ignored for raw binary output"})
	}
	return img.Code, warnings
}

// BuildMZ frames an image as an MS-DOS MZ executable: a fixed 28-byte
// header, the relocation table, zero padding out to a page (256-byte)
// boundary, then the code.
func BuildMZ(img *link.Image) ([]byte, []Warning) {
	var warnings []Warning

	relocSize := len(img.Relocations) * 4
	headerSize := mzHeaderSize + relocSize
	headerAlign := 0
	if rem := headerSize % pageSize; rem != 0 {
		headerAlign = pageSize - rem
	}
	headerAligned := headerSize + headerAlign

	fileSize := headerAligned + len(img.Code)

	var bytesInLastPage, fileSizeInPages uint16
	if rem := fileSize % pageSize; rem != 0 {
		fileSizeInPages = uint16(fileSize/pageSize) + 1
		bytesInLastPage = uint16(rem)
	} else {
		fileSizeInPages = uint16(fileSize / pageSize)
		bytesInLastPage = pageSize
	}

	headerSizeInParagraphs := uint16(headerAligned / paragraphSize)
	minAllocParagraphs := uint16(fileSize/paragraphSize) - headerSizeInParagraphs

	var initialSS, initialSP uint16
	if !img.HasStack || img.StackSize == 0 {
		warnings = append(warnings, Warning{Message: "no STACK directive; MZ executable has no stack segment"})
	} else {
		imageParagraphs := (len(img.Code) + paragraphSize - 1) / paragraphSize
		initialSS = uint16(imageParagraphs)
		initialSP = uint16(img.StackSize)
	}

	out := make([]byte, 0, fileSize)
	out = append(out, 'M', 'Z')
	out = appendUint16(out, bytesInLastPage)
	out = appendUint16(out, fileSizeInPages)
	out = appendUint16(out, uint16(len(img.Relocations)))
	out = appendUint16(out, headerSizeInParagraphs)
	out = appendUint16(out, minAllocParagraphs)
	out = appendUint16(out, 0xFFFF) // max_alloc_paragraphs
	out = appendUint16(out, initialSS)
	out = appendUint16(out, initialSP)
	out = appendUint16(out, 0) // checksum
	out = appendUint16(out, 0) // initial_IP
	out = appendUint16(out, 0) // initial_CS
	out = appendUint16(out, mzHeaderSize)
	out = appendUint16(out, 0) // overlay_number

	for _, r := range img.Relocations {
		out = appendUint16(out, uint16(r.Offset%paragraphSize))
		out = appendUint16(out, uint16(r.Offset/paragraphSize))
	}

	if headerAlign > 0 {
		out = append(out, make([]byte, headerAlign)...)
	}
	out = append(out, img.Code...)

	return out, warnings
}

func appendUint16(b []byte, v uint16) []byte {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	return append(b, buf[:]...)
}

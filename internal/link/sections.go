package link

import (
	"sort"

	"github.com/keurnel/assembler8086/internal/symtab"
)

// sectionPriority implements a fixed priority table. Matching
// is case-sensitive with an optional leading dot, exactly as written;
// anything unrecognized (including a differently-cased name) falls back
// to the lowest priority rather than erroring, since a custom section name
// is always legal.
func sectionPriority(name string) int {
	switch name {
	case ".TEXT", "TEXT", ".CODE", "CODE":
		return 2
	case ".DATA", "DATA", ".BSS", "BSS":
		return 1
	case ".STACK", "STACK":
		return 0
	default:
		return 0
	}
}

// orderSections drops empty sections and stable-sorts the rest by
// descending priority.
func orderSections(tu *symtab.TranslationUnit) []*symtab.Section {
	all := tu.Sections()
	ordered := make([]*symtab.Section, 0, len(all))
	for _, s := range all {
		if len(s.Code) > 0 {
			ordered = append(ordered, s)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return sectionPriority(ordered[i].Name) > sectionPriority(ordered[j].Name)
	})
	return ordered
}

const paragraphSize = 16

// layout concatenates ordered sections into one byte image, padding every
// section but the last to the next 16-byte (paragraph) boundary, and
// returns each section's byte offset within that image.
func layout(ordered []*symtab.Section) (code []byte, baseOffset map[string]int64) {
	baseOffset = make(map[string]int64, len(ordered))
	for i, s := range ordered {
		baseOffset[s.Name] = int64(len(code))
		code = append(code, s.Code...)
		if i != len(ordered)-1 {
			if rem := len(code) % paragraphSize; rem != 0 {
				code = append(code, make([]byte, paragraphSize-rem)...)
			}
		}
	}
	return code, baseOffset
}

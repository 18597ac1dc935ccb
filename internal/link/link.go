// Package link implements the linker: it orders
// a translation unit's sections, resolves every symbol to an integer, and
// patches each section's deferred fix-ups into one flat byte image.
//
// Output-envelope framing (raw binary vs. MZ executable header) is
// deliberately out of scope here; internal/envelope consumes the
// Image this package produces.
package link

import (
	"fmt"
	"strings"

	"github.com/keurnel/assembler8086/internal/ast"
	"github.com/keurnel/assembler8086/internal/debugcontext"
	"github.com/keurnel/assembler8086/internal/symtab"
)

// Mode selects how an address-kind (label) symbol resolves:
// raw-binary output wants a true absolute address (origin + section
// base folded in); an MZ executable wants a segment-relative offset, since
// the loader supplies the segment at load time.
type Mode int

const (
	ModeAbsolute Mode = iota
	ModeRelocatable
)

const maxEvalDepth = 1000

// Relocation marks a byte offset within Image.Code whose patched value
// depends on a section's load segment, which only the MZ loader knows
// (see DESIGN.md).
type Relocation struct {
	Offset int
}

// Image is the linker's output: one resolved byte sequence plus whatever
// an output envelope needs to frame it.
type Image struct {
	Code         []byte
	SectionBases map[string]int64 // section name -> byte offset within Code
	Relocations  []Relocation
	Origin       int64
	HasOrigin    bool
	HasStack     bool
	StackSize    int64
}

// Linker resolves symbols and applies fix-ups against one translation unit.
type Linker struct {
	tu      *symtab.TranslationUnit
	symbols *symtab.SymbolTable

	symbolMap map[string]int64
	errors    []Error
	debugCtx  *debugcontext.DebugContext
}

// NewLinker returns a Linker over tu and symbols, as produced by
// internal/codegen.
func NewLinker(tu *symtab.TranslationUnit, symbols *symtab.SymbolTable) *Linker {
	return &Linker{tu: tu, symbols: symbols, symbolMap: make(map[string]int64)}
}

// WithDebugContext attaches a diagnostic sink; returns the linker for
// chaining.
func (l *Linker) WithDebugContext(ctx *debugcontext.DebugContext) *Linker {
	l.debugCtx = ctx
	return l
}

// Errors returns every error and warning recorded so far.
func (l *Linker) Errors() []Error { return l.errors }

// HasFatalErrors reports whether any recorded diagnostic is an error
// rather than a warning ("nonzero -> abort before writing
// output").
func (l *Linker) HasFatalErrors() bool {
	for _, e := range l.errors {
		if !e.Warning {
			return true
		}
	}
	return false
}

func (l *Linker) recordError(loc ast.Location, message string) {
	l.errors = append(l.errors, Error{Message: message, Line: loc.Line, Column: loc.Column})
	if l.debugCtx != nil {
		l.debugCtx.Error(l.debugCtx.Loc(loc.Line, loc.Column), message)
	}
}

func (l *Linker) recordWarning(loc ast.Location, message string) {
	l.errors = append(l.errors, Error{Message: message, Line: loc.Line, Column: loc.Column, Warning: true})
	if l.debugCtx != nil {
		l.debugCtx.Warning(l.debugCtx.Loc(loc.Line, loc.Column), message)
	}
}

// Link orders sections, resolves every symbol, and patches every fix-up,
// returning the resolved image and any diagnostics. Call HasFatalErrors
// before using Image when errors may be present.
func (l *Linker) Link(mode Mode) (*Image, []Error) {
	if l.debugCtx != nil {
		l.debugCtx.SetPhase("link")
	}

	ordered := orderSections(l.tu)
	code, bases := layout(ordered)

	for name, base := range bases {
		l.symbolMap["@"+name] = base / paragraphSize
	}

	origin := l.tu.Origin
	if !l.tu.HasOrigin {
		origin = 0
	}

	for _, sym := range l.symbols.All() {
		if strings.HasPrefix(sym.Name, "@") {
			continue
		}
		l.evaluateSymbol(sym.Name, mode, origin, bases, 0)
	}

	img := &Image{
		Code:         code,
		SectionBases: bases,
		Origin:       origin,
		HasOrigin:    l.tu.HasOrigin,
		HasStack:     l.tu.HasStack,
		StackSize:    l.tu.StackSize,
	}

	for _, s := range ordered {
		sectionStart := bases[s.Name]
		for _, fixup := range s.Fixups {
			l.applyFixup(img, s, sectionStart, fixup, mode, origin)
		}
	}

	return img, l.errors
}

func (l *Linker) evaluateSymbol(name string, mode Mode, origin int64, bases map[string]int64, depth int) {
	if _, done := l.symbolMap[name]; done {
		return
	}
	sym, ok := l.symbols.Get(name)
	if !ok {
		return
	}

	switch decl := sym.Declaration.(type) {
	case *ast.ConstantStmt:
		for _, dep := range decl.Expression.Dependencies() {
			if _, done := l.symbolMap[dep]; done {
				continue
			}
			if depth >= maxEvalDepth {
				l.recordError(decl.Location(), fmt.Sprintf(
					"unable to evaluate %q: evaluation depth exceeded (cyclic or excessive dependency chain)", name))
				return
			}
			l.evaluateSymbol(dep, mode, origin, bases, depth+1)
		}
		l.symbolMap[name] = decl.Expression.Resolve(l.symbolMap)

	case *ast.LabelStmt:
		if !sym.IsEvaluated() {
			l.recordError(decl.Location(), fmt.Sprintf("unevaluated address symbol at linking stage: %q", name))
			return
		}
		value := sym.Value().Int
		if mode == ModeAbsolute {
			value += origin + bases[sym.Section]
		}
		l.symbolMap[name] = value

	default:
		// Synthetic @section symbols are seeded directly in Link; anything
		// else has no linker-time value to contribute.
	}
}

func (l *Linker) applyFixup(img *Image, sec *symtab.Section, sectionStart int64, fixup symtab.Fixup, mode Mode, origin int64) {
	deps := fixup.Expression.Dependencies()
	for _, dep := range deps {
		if _, ok := l.symbolMap[dep]; !ok {
			l.evaluateSymbol(dep, mode, origin, img.SectionBases, 0)
		}
	}
	for _, dep := range deps {
		if _, ok := l.symbolMap[dep]; !ok {
			l.recordError(fixup.Expression.Location(), "undefined symbol")
			return
		}
	}

	// A relocation is keyed purely on whether the fix-up depends on a
	// synthetic @section symbol, not on what kind of fix-up it is: a
	// plain FixupValue that embeds a section's paragraph base (e.g.
	// `DW @.DATA`) is exactly as segment-dependent as an address fix-up,
	// and needs the same loader-applied patch at load time.
	if mode == ModeRelocatable {
		for _, dep := range deps {
			if strings.HasPrefix(dep, "@") {
				img.Relocations = append(img.Relocations, Relocation{Offset: int(sectionStart) + fixup.ByteOffset})
				break
			}
		}
	}

	value := fixup.Expression.Resolve(l.symbolMap)
	if fixup.Kind == symtab.FixupRelativeAddress {
		value -= origin + int64(fixup.RelativeOrigin) + sectionStart
	}

	// fixup.Size is 1, 2, 4 or, rarely, 8 or 10 bytes (a dependent DQ or
	// DT data value). An int64 trivially fits within 8 bytes, so the overflow
	// check only applies below that width.
	if fixup.Size < 8 {
		limit := int64(1) << uint(8*fixup.Size)
		magnitude := value
		if magnitude < 0 {
			magnitude = -magnitude
		}
		if magnitude > limit {
			l.recordError(fixup.Expression.Location(), "value overflow while linking")
			return
		}
		half := limit / 2
		if value < -half || value > half-1 {
			l.recordWarning(fixup.Expression.Location(), "signed value may be corrupted")
		}
	}

	patchAt := int(sectionStart) + fixup.ByteOffset
	for i := 0; i < fixup.Size; i++ {
		img.Code[patchAt+i] = byte(value >> uint(8*i))
	}
}

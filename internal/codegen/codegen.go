// Package codegen walks a parsed translation unit once, selecting an
// encoding variant for every instruction and filling section buffers with
// bytes and deferred fix-ups.
//
// A forward branch target's real byte offset is unknowable at the point
// its instruction is selected, but a conservative worst-case offset is
// not: a preliminary sizing pass over the full statement list (see
// labelsizing.go, computeWorstCaseLabelOffsets) stamps every label,
// forward or backward, with the maximum offset it could possibly reach.
// A forward jcc/jmp/loop takes the short rel8 form whenever even that
// pessimistic distance still fits; otherwise it falls back to the wider
// rel16 encoding. See DESIGN.md for the rationale.
package codegen

import (
	"fmt"

	"github.com/keurnel/assembler8086/internal/ast"
	"github.com/keurnel/assembler8086/internal/debugcontext"
	"github.com/keurnel/assembler8086/internal/symtab"
)

// Generator transforms a parsed statement list into a *symtab.TranslationUnit
// (section buffers + fix-ups) and a *symtab.SymbolTable (labels + constants).
type Generator struct {
	tu      *symtab.TranslationUnit
	symbols *symtab.SymbolTable

	current      string           // active section name
	localOffsets map[string]int64 // label name -> section-relative offset, reset per section
	constants    map[string]int64 // fully link-independent EQU values, never reset

	// worstCaseOffsets is the pre-pass result, section name -> label name
	// -> maximum section-relative offset it could possibly reach,
	// computed once before Generate's main loop starts.
	worstCaseOffsets map[string]map[string]int64

	lastGlobalLabel string // most recent non-local label, for '.' scoping

	errors   []Error
	debugCtx *debugcontext.DebugContext
}

// NewGenerator returns a Generator ready to run Generate.
func NewGenerator() *Generator {
	return &Generator{
		tu:           symtab.NewTranslationUnit(),
		symbols:      symtab.NewSymbolTable(),
		localOffsets: make(map[string]int64),
		constants:    make(map[string]int64),
	}
}

// WithDebugContext attaches a diagnostic sink; returns the generator for
// chaining.
func (g *Generator) WithDebugContext(ctx *debugcontext.DebugContext) *Generator {
	g.debugCtx = ctx
	return g
}

// Generate walks stmts once and returns the populated translation unit,
// symbol table, and any errors encountered. A non-empty error slice means
// the caller should not proceed to linking.
func (g *Generator) Generate(stmts []ast.Statement) (*symtab.TranslationUnit, *symtab.SymbolTable, []Error) {
	if g.debugCtx != nil {
		g.debugCtx.SetPhase("codegen")
	}

	g.worstCaseOffsets = computeWorstCaseLabelOffsets(stmts)

	for _, stmt := range stmts {
		g.generateStatement(stmt)
	}

	if g.debugCtx != nil {
		g.debugCtx.Trace(g.debugCtx.Loc(0, 0), fmt.Sprintf(
			"code generation complete: %d section(s), %d error(s)", len(g.tu.Sections()), len(g.errors)))
	}

	return g.tu, g.symbols, g.errors
}

func (g *Generator) generateStatement(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.SectionStmt:
		g.switchSection(s.Name)
	case *ast.LabelStmt:
		g.declareLabel(s)
	case *ast.ConstantStmt:
		g.declareConstant(s)
	case *ast.InstructionStmt:
		g.generateInstruction(s)
	case *ast.DefineDataStmt:
		g.generateDefineData(s)
	case *ast.ReserveStmt:
		g.generateReserve(s)
	case *ast.AlignStmt:
		g.generateAlign(s)
	case *ast.OrgDecl:
		g.generateOrg(s)
	case *ast.StackStmt:
		g.generateStack(s)
	case *ast.SymbolScope:
		// GLOBAL/EXTERN declarations carry no bytes; linking visibility is
		// a Non-goal in a single-translation-unit assembler.
	case *ast.OffsetStmt:
		// A top-level `OFFSET expr` statement emits no bytes and is
		// ignored here.
	}
}

func (g *Generator) switchSection(name string) {
	g.current = name
	g.tu.Section(name)
	g.localOffsets = make(map[string]int64)

	synthetic := "@" + name
	if !g.symbols.Has(synthetic) {
		g.symbols.Add(&symtab.Symbol{Name: synthetic})
	}
}

func (g *Generator) section() *symtab.Section {
	if g.current == "" {
		g.switchSection(".TEXT")
	}
	return g.tu.Section(g.current)
}

func (g *Generator) recordError(loc ast.Location, message string) {
	g.errors = append(g.errors, Error{Message: message, Line: loc.Line, Column: loc.Column})
	if g.debugCtx != nil {
		g.debugCtx.Error(g.debugCtx.Loc(loc.Line, loc.Column), message)
	}
}

// sizingKnown is consulted only to pick a variant (rel8 vs rel16,
// sign-extended-imm8 vs imm16): constants, every label's worst-case offset
// from the pre-pass (forward references), overridden by the exact
// same-section backward offset once a label has actually been passed,
// plus the current-offset magic symbols.
func (g *Generator) sizingKnown() map[string]int64 {
	forward := g.worstCaseOffsets[g.current]
	merged := make(map[string]int64, len(g.constants)+len(forward)+len(g.localOffsets)+2)
	for k, v := range g.constants {
		merged[k] = v
	}
	for k, v := range forward {
		merged[k] = v
	}
	for k, v := range g.localOffsets {
		merged[k] = v
	}
	g.addOffsetSymbols(merged)
	return merged
}

// addOffsetSymbols binds the `$` (current section offset) and `$$`
// (current section start, always 0: sections are emitted linearly from
// their own beginning) magic tokens into known. These are
// resolved eagerly at code-gen time, never deferred to a link-time
// fix-up, since the linker has no notion of "the current statement".
func (g *Generator) addOffsetSymbols(known map[string]int64) {
	known["$"] = int64(g.section().Offset())
	known["$$"] = 0
}

// finalKnown is consulted when baking actual bytes: only truly
// link-independent constants, never label offsets (those always go
// through a fix-up resolved at link time), plus the current-offset magic
// symbols (which must be known before any byte of the current statement
// is baked, so they are never deferred either).
func (g *Generator) finalKnown() map[string]int64 {
	merged := make(map[string]int64, len(g.constants)+2)
	for k, v := range g.constants {
		merged[k] = v
	}
	g.addOffsetSymbols(merged)
	return merged
}

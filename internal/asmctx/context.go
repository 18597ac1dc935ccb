// Package asmctx unifies the pieces a single assembly run threads through
// every pipeline phase: the translation unit being filled in, its symbol
// table, and the diagnostic sink every phase reports into.
//
// It mirrors internal/assembler_context.AssemblerContext's shape (a thin
// struct bundling per-run state) filled in for the 8086 domain, generalizing
// original_source's context.cpp/.h AssemblyContext (the C++ source's single
// god-object holding the symbol table, section map, and message list
// together).
package asmctx

import (
	"fmt"

	"github.com/keurnel/assembler8086/internal/ast"
	"github.com/keurnel/assembler8086/internal/codegen"
	"github.com/keurnel/assembler8086/internal/debugcontext"
	"github.com/keurnel/assembler8086/internal/envelope"
	"github.com/keurnel/assembler8086/internal/frontend"
	"github.com/keurnel/assembler8086/internal/link"
	"github.com/keurnel/assembler8086/internal/symtab"
)

// Format selects the output envelope (-f/-format).
type Format int

const (
	FormatRaw Format = iota
	FormatMZ
)

// ParseFormat maps a CLI format string to a Format. "bin" and "com" both
// select the raw envelope; "exe" selects MZ; "obj" is a cataloged format
// not realized by the core (object-file emission is out of scope).
func ParseFormat(s string) (Format, error) {
	switch s {
	case "bin", "com":
		return FormatRaw, nil
	case "exe":
		return FormatMZ, nil
	case "obj":
		return 0, fmt.Errorf("output format %q is cataloged but not implemented by this assembler's core", s)
	default:
		return 0, fmt.Errorf("unknown output format %q", s)
	}
}

// Context carries one source file's full assembly run: its source text,
// diagnostic sink, and (once Assemble has run) the resulting translation
// unit, symbol table, and linked image.
type Context struct {
	SourcePath string
	Debug      *debugcontext.DebugContext

	TranslationUnit *symtab.TranslationUnit
	Symbols         *symtab.SymbolTable
	Image           *link.Image
}

// New returns a Context ready for Assemble, tagging every diagnostic with
// sourcePath.
func New(sourcePath string) *Context {
	return &Context{
		SourcePath: sourcePath,
		Debug:      debugcontext.NewDebugContext(sourcePath),
	}
}

// Assemble runs the full pipeline over source text: lex, parse, generate
// code, and link. It stops (and returns an error summarizing the failed
// phase's count, e.g. "build failed: N error(s)") as soon as a phase
// reports any error-severity diagnostic.
func (c *Context) Assemble(source string, mode link.Mode) error {
	tokens := frontend.NewLexer(source).Tokenize()
	parser := frontend.NewParser(tokens).WithDebugContext(c.Debug)
	stmts := parser.Parse()
	if n := len(parser.Errors()); n > 0 {
		return fmt.Errorf("build failed: %d error(s)", n)
	}
	return c.Generate(stmts, mode)
}

// Generate runs code generation and linking over an already-parsed
// statement list, skipping the lex/parse phase. Callers that need the
// parsed AST for a debug dump before running the rest of the pipeline
// (internal/cli's -show-ast) should parse once themselves and call this
// instead of Assemble.
func (c *Context) Generate(stmts []ast.Statement, mode link.Mode) error {
	gen := codegen.NewGenerator().WithDebugContext(c.Debug)
	tu, symbols, errs := gen.Generate(stmts)
	c.TranslationUnit = tu
	c.Symbols = symbols
	if len(errs) > 0 {
		return fmt.Errorf("build failed: %d error(s)", len(errs))
	}

	linker := link.NewLinker(tu, symbols).WithDebugContext(c.Debug)
	img, linkErrs := linker.Link(mode)
	if linker.HasFatalErrors() {
		n := 0
		for _, e := range linkErrs {
			if !e.Warning {
				n++
			}
		}
		return fmt.Errorf("build failed: %d error(s)", n)
	}
	c.Image = img
	return nil
}

// Envelope frames c.Image (set by a prior successful Assemble) per format,
// returning the final output bytes plus any non-fatal warnings.
func (c *Context) Envelope(format Format) ([]byte, []envelope.Warning, error) {
	if c.Image == nil {
		return nil, nil, fmt.Errorf("no linked image: Assemble must succeed first")
	}
	switch format {
	case FormatMZ:
		out, warnings := envelope.BuildMZ(c.Image)
		return out, warnings, nil
	default:
		out, warnings := envelope.BuildRaw(c.Image)
		return out, warnings, nil
	}
}

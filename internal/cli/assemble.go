package cli

import (
	"fmt"

	"github.com/keurnel/assembler8086/internal/asmctx"
	"github.com/keurnel/assembler8086/internal/ast"
	"github.com/keurnel/assembler8086/internal/envelope"
	"github.com/keurnel/assembler8086/internal/frontend"
	"github.com/keurnel/assembler8086/internal/link"
)

// Result is everything a caller (the assemble subcommand, or a test) needs
// after one successful or failed run: the final output bytes (nil on
// failure), any envelope warnings, the accumulated diagnostics, and the
// optional -show-* dumps.
type Result struct {
	Output      []byte
	Warnings    []envelope.Warning
	Diagnostics []string
	ASTDump     []string
	SectionDump []string
	LinkDump    []string
}

// Assemble runs the full pipeline (lex, parse, codegen, link, envelope) over
// one source file's text and returns a Result. The returned *Result is
// non-nil even on error, so the caller can still print diagnostics and
// -show-* dumps collected before the failure.
func Assemble(path, source, formatName string) (*Result, error) {
	fmtKind, err := asmctx.ParseFormat(formatName)
	if err != nil {
		return &Result{}, err
	}

	mode := link.ModeAbsolute
	if fmtKind == asmctx.FormatMZ {
		mode = link.ModeRelocatable
	}

	ctx := asmctx.New(path)
	result := &Result{}

	tokens := frontend.NewLexer(source).Tokenize()
	parser := frontend.NewParser(tokens).WithDebugContext(ctx.Debug)
	stmts := parser.Parse()
	result.ASTDump = dumpStatements(stmts)
	if n := len(parser.Errors()); n > 0 {
		result.Diagnostics = collectDiagnostics(ctx)
		return result, fmt.Errorf("build failed: %d error(s)", n)
	}

	if err := ctx.Generate(stmts, mode); err != nil {
		result.Diagnostics = collectDiagnostics(ctx)
		if ctx.TranslationUnit != nil {
			result.SectionDump = dumpSections(ctx)
		}
		return result, err
	}

	result.SectionDump = dumpSections(ctx)
	result.LinkDump = dumpLink(ctx)

	out, warnings, err := ctx.Envelope(fmtKind)
	if err != nil {
		result.Diagnostics = collectDiagnostics(ctx)
		return result, err
	}
	result.Output = out
	result.Warnings = warnings
	result.Diagnostics = collectDiagnostics(ctx)
	return result, nil
}

func collectDiagnostics(ctx *asmctx.Context) []string {
	var lines []string
	for _, e := range ctx.Debug.Entries() {
		lines = append(lines, e.String())
	}
	return lines
}

func dumpSections(ctx *asmctx.Context) []string {
	var lines []string
	for _, sec := range ctx.TranslationUnit.Sections() {
		lines = append(lines, fmt.Sprintf("%-12s %6d bytes, %d fixup(s)", sec.Name, len(sec.Code), len(sec.Fixups)))
	}
	return lines
}

func dumpLink(ctx *asmctx.Context) []string {
	var lines []string
	if ctx.Image == nil {
		return lines
	}
	lines = append(lines, fmt.Sprintf("image: %d bytes, %d relocation(s)", len(ctx.Image.Code), len(ctx.Image.Relocations)))
	for name, base := range ctx.Image.SectionBases {
		lines = append(lines, fmt.Sprintf("  @%s = 0x%x (byte offset 0x%x)", name, base/16, base))
	}
	return lines
}

// dumpStatements renders the parsed statement list one line per top-level
// statement, following test_namespace_global.go's switch-based printGroup
// dumping idiom for parsed structure.
func dumpStatements(stmts []ast.Statement) []string {
	lines := make([]string, 0, len(stmts))
	for _, s := range stmts {
		lines = append(lines, describeStatement(s))
	}
	return lines
}

func describeStatement(s ast.Statement) string {
	loc := s.Location()
	switch v := s.(type) {
	case *ast.SectionStmt:
		return fmt.Sprintf("%d: SECTION %s", loc.Line, v.Name)
	case *ast.LabelStmt:
		return fmt.Sprintf("%d: LABEL %s (local=%v)", loc.Line, v.Name, v.Local)
	case *ast.ConstantStmt:
		return fmt.Sprintf("%d: CONSTANT %s", loc.Line, v.Name)
	case *ast.InstructionStmt:
		return fmt.Sprintf("%d: INSTRUCTION %s (%d operand(s))", loc.Line, v.Mnemonic, len(v.Operands))
	case *ast.DefineDataStmt:
		return fmt.Sprintf("%d: %s (%d value(s))", loc.Line, v.Mnemonic, len(v.Values))
	case *ast.ReserveStmt:
		return fmt.Sprintf("%d: %s", loc.Line, v.Mnemonic)
	case *ast.AlignStmt:
		return fmt.Sprintf("%d: ALIGN", loc.Line)
	case *ast.OffsetStmt:
		return fmt.Sprintf("%d: OFFSET", loc.Line)
	case *ast.OrgDecl:
		return fmt.Sprintf("%d: ORG", loc.Line)
	case *ast.StackStmt:
		return fmt.Sprintf("%d: STACK", loc.Line)
	case *ast.SymbolScope:
		return fmt.Sprintf("%d: SCOPE %s (global=%v)", loc.Line, v.Name, v.Global)
	default:
		return fmt.Sprintf("%d: <unknown statement>", loc.Line)
	}
}

package frontend

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/keurnel/assembler8086/internal/ast"
	"github.com/keurnel/assembler8086/internal/debugcontext"
	"github.com/keurnel/assembler8086/internal/isa"
)

// ParseError is one parse-time diagnostic: a plain {Message, Line, Column}
// struct (v0/kasm/parse_error.go's shape) rather than the error interface,
// so parsing can continue past a bad statement and report every problem in
// one pass.
type ParseError struct {
	Message string
	Line    int
	Column  int
}

func (e ParseError) String() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
}

var sizeKeywords = map[string]int{
	"BYTE":  1,
	"WORD":  2,
	"DWORD": 4,
	"QWORD": 8,
	"TWORD": 10,
}

// Parser holds the token slice, current position, and accumulated errors.
// Mirrors v0/kasm's Parser shape (Position/Tokens/errors/debugCtx with
// current/peek/advance/expect helpers), generalized to the 8086 statement
// grammar.
type Parser struct {
	tokens []Token
	pos    int

	lastGlobalLabel string
	errors          []ParseError
	debugCtx        *debugcontext.DebugContext
}

// NewParser returns a Parser over the token slice produced by Lexer.Tokenize.
func NewParser(tokens []Token) *Parser {
	return &Parser{tokens: tokens}
}

// WithDebugContext attaches a diagnostic sink; returns the parser for chaining.
func (p *Parser) WithDebugContext(ctx *debugcontext.DebugContext) *Parser {
	p.debugCtx = ctx
	return p
}

// Errors returns every accumulated parse error.
func (p *Parser) Errors() []ParseError { return p.errors }

func (p *Parser) current() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: TokenEOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) peek() Token {
	if p.pos+1 >= len(p.tokens) {
		return Token{Type: TokenEOF}
	}
	return p.tokens[p.pos+1]
}

func (p *Parser) advance() Token {
	tok := p.current()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *Parser) addError(tok Token, message string) {
	p.errors = append(p.errors, ParseError{Message: message, Line: tok.Line, Column: tok.Column})
	if p.debugCtx != nil {
		p.debugCtx.Error(p.debugCtx.Loc(tok.Line, tok.Column), message)
	}
}

func (p *Parser) loc(tok Token) ast.Location {
	return ast.Location{Line: tok.Line, Column: tok.Column}
}

// skipStatementSeparators consumes any run of blank newlines between
// statements.
func (p *Parser) skipStatementSeparators() {
	for p.current().Type == TokenNewline {
		p.advance()
	}
}

// skipToNextLine discards tokens up to (and including) the next newline,
// used to resynchronize after a malformed statement so parsing can
// continue reporting further errors.
func (p *Parser) skipToNextLine() {
	for p.current().Type != TokenNewline && p.current().Type != TokenEOF {
		p.advance()
	}
	if p.current().Type == TokenNewline {
		p.advance()
	}
}

// Parse consumes the entire token stream and returns the statement list;
// accumulated errors are available from Errors.
func (p *Parser) Parse() []ast.Statement {
	var stmts []ast.Statement
	p.skipStatementSeparators()
	for p.current().Type != TokenEOF {
		before := p.pos
		stmt := p.parseStatement()
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
		if p.pos == before {
			// parseStatement made no progress; force advancement to avoid
			// an infinite loop on an unrecognized token.
			p.advance()
		}
		if p.current().Type != TokenEOF && p.current().Type != TokenNewline {
			p.skipToNextLine()
		} else {
			p.skipStatementSeparators()
		}
	}
	return stmts
}

func identEquals(tok Token, word string) bool {
	return tok.Type == TokenIdent && strings.EqualFold(tok.Literal, word)
}

func (p *Parser) parseStatement() ast.Statement {
	tok := p.current()

	switch {
	case tok.Type == TokenIdent && (identEquals(tok, "SECTION") || identEquals(tok, "SEGMENT")):
		p.advance()
		name := p.advance()
		return &ast.SectionStmt{Node: ast.Node{Loc: p.loc(tok)}, Name: name.Literal}

	case tok.Type == TokenIdent && identEquals(tok, "GLOBAL"):
		p.advance()
		name := p.advance()
		return &ast.SymbolScope{Node: ast.Node{Loc: p.loc(tok)}, Name: name.Literal, Global: true}

	case tok.Type == TokenIdent && identEquals(tok, "EXTERN"):
		p.advance()
		name := p.advance()
		return &ast.SymbolScope{Node: ast.Node{Loc: p.loc(tok)}, Name: name.Literal, Global: false}

	case tok.Type == TokenIdent && identEquals(tok, "ORG"):
		p.advance()
		expr := p.parseExpression()
		return &ast.OrgDecl{Node: ast.Node{Loc: p.loc(tok)}, Expression: expr}

	case tok.Type == TokenIdent && identEquals(tok, "ALIGN"):
		p.advance()
		expr := p.parseExpression()
		return &ast.AlignStmt{Node: ast.Node{Loc: p.loc(tok)}, Expression: expr}

	case tok.Type == TokenIdent && identEquals(tok, "OFFSET"):
		p.advance()
		expr := p.parseExpression()
		return &ast.OffsetStmt{Node: ast.Node{Loc: p.loc(tok)}, Expression: expr}

	case tok.Type == TokenIdent && identEquals(tok, "STACK"):
		p.advance()
		expr := p.parseExpression()
		return &ast.StackStmt{Node: ast.Node{Loc: p.loc(tok)}, Expression: expr}

	case tok.Type == TokenIdent && isDataMnemonic(tok.Literal):
		return p.parseDefineData(tok)

	case tok.Type == TokenIdent && isReserveMnemonic(tok.Literal):
		return p.parseReserve(tok)

	case (tok.Type == TokenIdent || tok.Type == TokenLocalIdent) && p.peek().Type == TokenColon:
		return p.parseLabel(tok)

	case tok.Type == TokenIdent && p.peek().Type == TokenIdent && identEquals(p.peek(), "EQU"):
		return p.parseConstant(tok)

	case tok.Type == TokenIdent:
		return p.parseInstruction(tok)

	case tok.Type == TokenNewline:
		return nil

	default:
		p.addError(tok, fmt.Sprintf("unexpected token %q", tok.Literal))
		p.advance()
		return nil
	}
}

func (p *Parser) parseLabel(tok Token) ast.Statement {
	local := tok.Type == TokenLocalIdent
	p.advance() // name
	p.advance() // ':'
	label := &ast.LabelStmt{Node: ast.Node{Loc: p.loc(tok)}, Name: tok.Literal, Local: local}
	if !local {
		p.lastGlobalLabel = tok.Literal
	}
	return label
}

func (p *Parser) parseConstant(tok Token) ast.Statement {
	p.advance() // name
	p.advance() // EQU
	expr := p.parseExpression()
	return &ast.ConstantStmt{Node: ast.Node{Loc: p.loc(tok)}, Name: tok.Literal, Expression: expr}
}

func isDataMnemonic(name string) bool {
	_, ok := isa.DataDefinitionSizes[strings.ToUpper(name)]
	return ok
}

func isReserveMnemonic(name string) bool {
	_, ok := isa.ReserveSizes[strings.ToUpper(name)]
	return ok
}

func (p *Parser) parseDefineData(tok Token) ast.Statement {
	p.advance()
	mnemonic := strings.ToUpper(tok.Literal)
	unit := isa.DataDefinitionSizes[mnemonic]
	stmt := &ast.DefineDataStmt{Node: ast.Node{Loc: p.loc(tok)}, Mnemonic: mnemonic, UnitSize: unit}
	for {
		stmt.Values = append(stmt.Values, p.parseDataValue())
		if p.current().Type != TokenComma {
			break
		}
		p.advance()
	}
	return stmt
}

// parseDataValue parses one comma-separated entry of a DB/DW/... list:
// a string literal, an `N DUP(value)` construct, `?` (uninitialized
// placeholder, realized as a zero value), or an
// ordinary expression.
func (p *Parser) parseDataValue() ast.Expression {
	tok := p.current()
	if tok.Type == TokenQuestion {
		p.advance()
		return &ast.NumberExpr{Node: ast.Node{Loc: p.loc(tok)}, Value: 0}
	}
	if tok.Type == TokenString {
		p.advance()
		return &ast.LiteralExpr{Node: ast.Node{Loc: p.loc(tok)}, Value: tok.Literal}
	}

	expr := p.parseExpression()
	if identEquals(p.current(), "DUP") {
		p.advance()
		p.expect(TokenLParen)
		value := p.parseDataValue()
		p.expect(TokenRParen)
		return &ast.DuplicateExpr{Node: ast.Node{Loc: p.loc(tok)}, Count: expr, Value: value}
	}
	return expr
}

func (p *Parser) parseReserve(tok Token) ast.Statement {
	p.advance()
	mnemonic := strings.ToUpper(tok.Literal)
	unit := isa.ReserveSizes[mnemonic]
	count := p.parseExpression()
	return &ast.ReserveStmt{Node: ast.Node{Loc: p.loc(tok)}, Mnemonic: mnemonic, UnitSize: unit, Count: count}
}

func (p *Parser) parseInstruction(tok Token) ast.Statement {
	p.advance()
	stmt := &ast.InstructionStmt{Node: ast.Node{Loc: p.loc(tok)}, Mnemonic: strings.ToUpper(tok.Literal)}
	if p.current().Type == TokenNewline || p.current().Type == TokenEOF {
		return stmt
	}
	for {
		opTok := p.current()
		expr := p.parseOperand()
		stmt.Operands = append(stmt.Operands, ast.Operand{Node: ast.Node{Loc: p.loc(opTok)}, Expression: expr})
		if p.current().Type != TokenComma {
			break
		}
		p.advance()
	}
	return stmt
}

func (p *Parser) expect(t TokenType) (Token, bool) {
	if p.current().Type == t {
		return p.advance(), true
	}
	p.addError(p.current(), fmt.Sprintf("unexpected token %q", p.current().Literal))
	return p.current(), false
}

// parseOperand parses one instruction operand: an optional BYTE/WORD/DWORD/
// QWORD [PTR] size override, an optional `sreg:` segment override, then a
// register, a `[...]` memory expression, or a general expression.
func (p *Parser) parseOperand() ast.Expression {
	tok := p.current()
	size := 0
	if tok.Type == TokenIdent {
		if sz, ok := sizeKeywords[strings.ToUpper(tok.Literal)]; ok {
			size = sz
			p.advance()
			if identEquals(p.current(), "PTR") {
				p.advance()
			}
		}
	}

	var seg *isa.RegisterID
	if p.current().Type == TokenIdent && p.peek().Type == TokenColon {
		if reg, ok := isa.LookupRegister(p.current().Literal); ok && reg.Group == isa.Segment {
			id := reg.ID
			seg = &id
			p.advance() // reg
			p.advance() // ':'
		}
	}

	expr := p.parsePrimaryOperand()
	if mem, ok := expr.(*ast.MemoryExpr); ok {
		mem.SizeOverride = size
		mem.SegOverride = seg
	}
	return expr
}

func (p *Parser) parsePrimaryOperand() ast.Expression {
	if p.current().Type == TokenLBracket {
		tok := p.advance()
		body := p.parseExpression()
		p.expect(TokenRBracket)
		return &ast.MemoryExpr{Node: ast.Node{Loc: p.loc(tok)}, Body: body}
	}
	return p.parseExpression()
}

// --- expression grammar: bitOr > bitXor > bitAnd > shift > additive > term > unary > primary ---

func (p *Parser) parseExpression() ast.Expression { return p.parseBitOr() }

func (p *Parser) parseBitOr() ast.Expression {
	left := p.parseBitXor()
	for p.current().Type == TokenPipe {
		tok := p.advance()
		right := p.parseBitXor()
		left = &ast.BinaryExpr{Node: ast.Node{Loc: p.loc(tok)}, Op: '|', Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseBitXor() ast.Expression {
	left := p.parseBitAnd()
	for p.current().Type == TokenCaret {
		tok := p.advance()
		right := p.parseBitAnd()
		left = &ast.BinaryExpr{Node: ast.Node{Loc: p.loc(tok)}, Op: '^', Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseBitAnd() ast.Expression {
	left := p.parseShift()
	for p.current().Type == TokenAmp {
		tok := p.advance()
		right := p.parseShift()
		left = &ast.BinaryExpr{Node: ast.Node{Loc: p.loc(tok)}, Op: '&', Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseShift() ast.Expression {
	left := p.parseAdditive()
	for p.current().Type == TokenShl || p.current().Type == TokenShr {
		tok := p.advance()
		op := byte('<')
		if tok.Type == TokenShr {
			op = '>'
		}
		right := p.parseAdditive()
		left = &ast.BinaryExpr{Node: ast.Node{Loc: p.loc(tok)}, Op: op, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseAdditive() ast.Expression {
	left := p.parseTerm()
	for p.current().Type == TokenPlus || p.current().Type == TokenMinus {
		tok := p.advance()
		op := byte('+')
		if tok.Type == TokenMinus {
			op = '-'
		}
		right := p.parseTerm()
		left = &ast.BinaryExpr{Node: ast.Node{Loc: p.loc(tok)}, Op: op, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseTerm() ast.Expression {
	left := p.parseUnary()
	for p.current().Type == TokenStar || p.current().Type == TokenSlash {
		tok := p.advance()
		op := byte('*')
		if tok.Type == TokenSlash {
			op = '/'
		}
		right := p.parseUnary()
		left = &ast.BinaryExpr{Node: ast.Node{Loc: p.loc(tok)}, Op: op, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseUnary() ast.Expression {
	tok := p.current()
	switch tok.Type {
	case TokenPlus:
		p.advance()
		return &ast.UnaryExpr{Node: ast.Node{Loc: p.loc(tok)}, Op: '+', Child: p.parseUnary()}
	case TokenMinus:
		p.advance()
		return &ast.UnaryExpr{Node: ast.Node{Loc: p.loc(tok)}, Op: '-', Child: p.parseUnary()}
	case TokenTilde:
		p.advance()
		return &ast.UnaryExpr{Node: ast.Node{Loc: p.loc(tok)}, Op: '~', Child: p.parseUnary()}
	default:
		return p.parsePrimary()
	}
}

func (p *Parser) parsePrimary() ast.Expression {
	tok := p.current()
	switch tok.Type {
	case TokenNumber:
		p.advance()
		return &ast.NumberExpr{Node: ast.Node{Loc: p.loc(tok)}, Value: parseNumber(tok.Literal)}
	case TokenString:
		p.advance()
		return &ast.LiteralExpr{Node: ast.Node{Loc: p.loc(tok)}, Value: tok.Literal}
	case TokenDollar:
		p.advance()
		return &ast.SymbolExpr{Node: ast.Node{Loc: p.loc(tok)}, Name: "$"}
	case TokenDollar2:
		p.advance()
		return &ast.SymbolExpr{Node: ast.Node{Loc: p.loc(tok)}, Name: "$$"}
	case TokenAt:
		p.advance()
		name := p.advance()
		return &ast.SymbolExpr{Node: ast.Node{Loc: p.loc(tok)}, Name: "@" + name.Literal}
	case TokenLParen:
		p.advance()
		inner := p.parseExpression()
		p.expect(TokenRParen)
		return &ast.ParenExpr{Node: ast.Node{Loc: p.loc(tok)}, Child: inner}
	case TokenLBracket:
		p.advance()
		body := p.parseExpression()
		p.expect(TokenRBracket)
		return &ast.MemoryExpr{Node: ast.Node{Loc: p.loc(tok)}, Body: body}
	case TokenLocalIdent:
		p.advance()
		return &ast.SymbolExpr{Node: ast.Node{Loc: p.loc(tok)}, Name: p.lastGlobalLabel + tok.Literal}
	case TokenIdent:
		p.advance()
		if reg, ok := isa.LookupRegister(tok.Literal); ok {
			return &ast.RegisterExpr{Node: ast.Node{Loc: p.loc(tok)}, ID: reg.ID}
		}
		return &ast.SymbolExpr{Node: ast.Node{Loc: p.loc(tok)}, Name: tok.Literal}
	default:
		p.addError(tok, fmt.Sprintf("unexpected token %q in expression", tok.Literal))
		p.advance()
		return &ast.NumberExpr{Node: ast.Node{Loc: p.loc(tok)}, Value: 0}
	}
}

// parseNumber accepts "0x1A", "1Ah"/"1AH", and plain decimal literals.
func parseNumber(lit string) int64 {
	if strings.HasPrefix(lit, "0x") || strings.HasPrefix(lit, "0X") {
		v, _ := strconv.ParseInt(lit[2:], 16, 64)
		return v
	}
	if strings.HasSuffix(lit, "h") || strings.HasSuffix(lit, "H") {
		v, _ := strconv.ParseInt(lit[:len(lit)-1], 16, 64)
		return v
	}
	v, _ := strconv.ParseInt(lit, 10, 64)
	return v
}

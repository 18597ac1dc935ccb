package frontend

import "testing"

func tokenTypes(tokens []Token) []TokenType {
	out := make([]TokenType, len(tokens))
	for i, t := range tokens {
		out[i] = t.Type
	}
	return out
}

func TestLexerSimpleInstruction(t *testing.T) {
	tokens := NewLexer("MOV AX, 0x1234").Tokenize()
	want := []TokenType{TokenIdent, TokenIdent, TokenComma, TokenNumber, TokenEOF}
	got := tokenTypes(tokens)
	if len(got) != len(want) {
		t.Fatalf("got %d tokens %v, want %d", len(got), got, len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestLexerSkipsCommentAndWhitespace(t *testing.T) {
	tokens := NewLexer("NOP ; this is a comment\nRET").Tokenize()
	if len(tokens) != 4 {
		t.Fatalf("expected NOP, newline, RET, EOF, got %d: %+v", len(tokens), tokens)
	}
	if tokens[0].Literal != "NOP" || tokens[1].Type != TokenNewline || tokens[2].Literal != "RET" {
		t.Errorf("unexpected tokens: %+v", tokens)
	}
}

func TestLexerLocalLabelToken(t *testing.T) {
	tokens := NewLexer(".loop:").Tokenize()
	if tokens[0].Type != TokenLocalIdent || tokens[0].Literal != ".loop" {
		t.Errorf("got %+v, want local ident .loop", tokens[0])
	}
	if tokens[1].Type != TokenColon {
		t.Errorf("expected colon after local label, got %+v", tokens[1])
	}
}

func TestLexerHexSuffixAndPrefix(t *testing.T) {
	tokens := NewLexer("1Ah 0x1A").Tokenize()
	if tokens[0].Type != TokenNumber || tokens[0].Literal != "1Ah" {
		t.Errorf("got %+v", tokens[0])
	}
	if tokens[1].Type != TokenNumber || tokens[1].Literal != "0x1A" {
		t.Errorf("got %+v", tokens[1])
	}
}

func TestLexerShiftOperators(t *testing.T) {
	tokens := NewLexer("1 << 2 >> 3").Tokenize()
	if tokens[1].Type != TokenShl || tokens[1].Literal != "<<" {
		t.Errorf("got %+v, want <<", tokens[1])
	}
	if tokens[3].Type != TokenShr || tokens[3].Literal != ">>" {
		t.Errorf("got %+v, want >>", tokens[3])
	}
}

func TestLexerDollarTokens(t *testing.T) {
	tokens := NewLexer("$ $$ @foo").Tokenize()
	if tokens[0].Type != TokenDollar {
		t.Errorf("got %+v, want $", tokens[0])
	}
	if tokens[1].Type != TokenDollar2 {
		t.Errorf("got %+v, want $$", tokens[1])
	}
	if tokens[2].Type != TokenAt || tokens[3].Literal != "foo" {
		t.Errorf("got %+v %+v, want @ foo", tokens[2], tokens[3])
	}
}

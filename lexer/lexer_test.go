package lexer

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/titivuk/golox/diag"
	"github.com/titivuk/golox/token"
)

func TestScanTokens(t *testing.T) {
	input := `var five = 5.5;
// a comment with "quotes" and symbols @#
fun add(x, y) { return x + y; }
!= == <= >= < > ! = - * / . ,
"multi
line"
classy class _a1
`

	tests := []struct {
		expectedType   token.TokenType
		expectedLexeme string
		expectedLine   int
	}{
		{token.VAR, "var", 1},
		{token.IDENT, "five", 1},
		{token.ASSIGN, "=", 1},
		{token.NUMBER, "5.5", 1},
		{token.SEMICOLON, ";", 1},
		{token.FUNCTION, "fun", 3},
		{token.IDENT, "add", 3},
		{token.LPAREN, "(", 3},
		{token.IDENT, "x", 3},
		{token.COMMA, ",", 3},
		{token.IDENT, "y", 3},
		{token.RPAREN, ")", 3},
		{token.LBRACE, "{", 3},
		{token.RETURN, "return", 3},
		{token.IDENT, "x", 3},
		{token.PLUS, "+", 3},
		{token.IDENT, "y", 3},
		{token.SEMICOLON, ";", 3},
		{token.RBRACE, "}", 3},
		{token.NOT_EQ, "!=", 4},
		{token.EQ, "==", 4},
		{token.LT_EQ, "<=", 4},
		{token.GT_EQ, ">=", 4},
		{token.LT, "<", 4},
		{token.GT, ">", 4},
		{token.BANG, "!", 4},
		{token.ASSIGN, "=", 4},
		{token.MINUS, "-", 4},
		{token.ASTERISK, "*", 4},
		{token.SLASH, "/", 4},
		{token.DOT, ".", 4},
		{token.COMMA, ",", 4},
		{token.STRING, "\"multi\nline\"", 6},
		{token.IDENT, "classy", 7},
		{token.CLASS, "class", 7},
		{token.IDENT, "_a1", 7},
		{token.EOF, "", 8},
	}

	var stderr bytes.Buffer
	tokens := New(input, diag.New(&stderr)).ScanTokens()

	if stderr.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %s", stderr.String())
	}
	if len(tokens) != len(tests) {
		t.Fatalf("wrong number of tokens. expected=%d, got=%d", len(tests), len(tokens))
	}

	for i, tt := range tests {
		tok := tokens[i]
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q", i, tt.expectedType, tok.Type)
		}
		if tok.Lexeme != tt.expectedLexeme {
			t.Fatalf("tests[%d] - lexeme wrong. expected=%q, got=%q", i, tt.expectedLexeme, tok.Lexeme)
		}
		if tok.Line != tt.expectedLine {
			t.Fatalf("tests[%d] - line wrong. expected=%d, got=%d", i, tt.expectedLine, tok.Line)
		}
	}
}

func TestLiterals(t *testing.T) {
	tests := []struct {
		input    string
		expected []any
	}{
		{`3.0`, []any{3.0, nil}},
		{`12`, []any{12.0, nil}},
		{`0.125`, []any{0.125, nil}},
		// a trailing dot is not a fraction
		{`3.`, []any{3.0, nil, nil}},
		{`"hello world"`, []any{"hello world", nil}},
		{`""`, []any{"", nil}},
	}

	for _, tt := range tests {
		var stderr bytes.Buffer
		tokens := New(tt.input, diag.New(&stderr)).ScanTokens()

		got := make([]any, len(tokens))
		for i, tok := range tokens {
			got[i] = tok.Literal
		}
		if diff := cmp.Diff(tt.expected, got); diff != "" {
			t.Errorf("literals of %q mismatch (-want +got):\n%s", tt.input, diff)
		}
	}
}

func TestScanErrors(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		expectedTypes []token.TokenType
		expectedErr   string
	}{
		{
			name:          "unexpected character is skipped",
			input:         "var @ x;",
			expectedTypes: []token.TokenType{token.VAR, token.IDENT, token.SEMICOLON, token.EOF},
			expectedErr:   "[line 1] Error: Unexpected character.\n",
		},
		{
			name:          "unterminated string is reported at end of input",
			input:         "print \"abc\n\ndef",
			expectedTypes: []token.TokenType{token.PRINT, token.EOF},
			expectedErr:   "[line 3] Error: Unterminated string.\n",
		},
		{
			name:          "scanning continues after an error",
			input:         "1 # 2 $ 3",
			expectedTypes: []token.TokenType{token.NUMBER, token.NUMBER, token.NUMBER, token.EOF},
			expectedErr:   "[line 1] Error: Unexpected character.\n[line 1] Error: Unexpected character.\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stderr bytes.Buffer
			reporter := diag.New(&stderr)
			tokens := New(tt.input, reporter).ScanTokens()

			got := make([]token.TokenType, len(tokens))
			for i, tok := range tokens {
				got[i] = tok.Type
			}
			if diff := cmp.Diff(tt.expectedTypes, got); diff != "" {
				t.Errorf("token types mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.expectedErr, stderr.String()); diff != "" {
				t.Errorf("diagnostics mismatch (-want +got):\n%s", diff)
			}
			if !reporter.HadError() {
				t.Errorf("reporter.HadError() = false, want true")
			}
		})
	}
}

func TestEmptyInput(t *testing.T) {
	var stderr bytes.Buffer
	tokens := New("  \n\t// only a comment", diag.New(&stderr)).ScanTokens()

	if len(tokens) != 1 || tokens[0].Type != token.EOF {
		t.Fatalf("expected a single EOF token, got %v", tokens)
	}
	if tokens[0].Line != 2 {
		t.Errorf("EOF line = %d, want 2", tokens[0].Line)
	}
}

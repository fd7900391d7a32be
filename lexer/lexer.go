package lexer

import (
	"strconv"

	"github.com/titivuk/golox/diag"
	"github.com/titivuk/golox/token"
)

// Lexer supports only ASCII
// it allows us to use byte and access ch by index
type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current read position in input (after current char)
	ch           byte // current char under examination
	line         int

	reporter *diag.Reporter
}

func New(input string, reporter *diag.Reporter) *Lexer {
	l := &Lexer{input: input, line: 1, reporter: reporter}
	l.readChar()
	return l
}

// ScanTokens scans the whole input. The result always ends with exactly one
// EOF token; malformed input is reported and left out.
func (l *Lexer) ScanTokens() []token.Token {
	tokens := []token.Token{}
	for {
		tok, ok := l.NextToken()
		if !ok {
			continue
		}
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			return tokens
		}
	}
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}

	l.position = l.readPosition
	l.readPosition += 1
}

func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

func (l *Lexer) atEnd() bool {
	return l.position >= len(l.input)
}

// NextToken returns the next token. ok is false when the characters under the
// cursor did not form a token; the error has already been reported.
func (l *Lexer) NextToken() (tok token.Token, ok bool) {
	l.skipWhitespace()

	if l.atEnd() {
		return token.Token{Type: token.EOF, Line: l.line}, true
	}

	switch l.ch {
	case '(':
		tok = l.newToken(token.LPAREN)
	case ')':
		tok = l.newToken(token.RPAREN)
	case '{':
		tok = l.newToken(token.LBRACE)
	case '}':
		tok = l.newToken(token.RBRACE)
	case ',':
		tok = l.newToken(token.COMMA)
	case '.':
		tok = l.newToken(token.DOT)
	case ';':
		tok = l.newToken(token.SEMICOLON)
	case '+':
		tok = l.newToken(token.PLUS)
	case '-':
		tok = l.newToken(token.MINUS)
	case '*':
		tok = l.newToken(token.ASTERISK)
	case '/':
		tok = l.newToken(token.SLASH)
	case '!':
		tok = l.twoCharToken('=', token.NOT_EQ, token.BANG)
	case '=':
		tok = l.twoCharToken('=', token.EQ, token.ASSIGN)
	case '<':
		tok = l.twoCharToken('=', token.LT_EQ, token.LT)
	case '>':
		tok = l.twoCharToken('=', token.GT_EQ, token.GT)
	case '"':
		return l.readString()
	default:
		if isLetter(l.ch) {
			lexeme := l.readIdentifier()
			return token.Token{Type: token.LookupIdent(lexeme), Lexeme: lexeme, Line: l.line}, true
		} else if isDigit(l.ch) {
			return l.readNumber(), true
		}

		l.reporter.Error(l.line, "Unexpected character.")
		l.readChar()
		return token.Token{}, false
	}

	l.readChar()

	return tok, true
}

func (l *Lexer) newToken(tokenType token.TokenType) token.Token {
	return token.Token{Type: tokenType, Lexeme: string(l.ch), Line: l.line}
}

// twoCharToken is greedy: it produces matched when the next char is next,
// leaving the cursor on the second char.
func (l *Lexer) twoCharToken(next byte, matched, single token.TokenType) token.Token {
	if l.peekChar() == next {
		ch := l.ch
		l.readChar()
		return token.Token{Type: matched, Lexeme: string(ch) + string(l.ch), Line: l.line}
	}
	return l.newToken(single)
}

func (l *Lexer) skipWhitespace() {
	for !l.atEnd() {
		switch {
		case l.ch == '\n':
			l.line++
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\r':
		case l.ch == '/' && l.peekChar() == '/':
			// a comment goes until the end of the line
			for !l.atEnd() && l.ch != '\n' {
				l.readChar()
			}
			continue
		default:
			return
		}
		l.readChar()
	}
}

func (l *Lexer) readIdentifier() string {
	position := l.position

	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}

	return l.input[position:l.position]
}

// digits with an optional fraction; a trailing '.' is not part of the number
func (l *Lexer) readNumber() token.Token {
	position := l.position

	for isDigit(l.ch) {
		l.readChar()
	}

	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	lexeme := l.input[position:l.position]
	// a digit run with an optional fraction always parses
	value, _ := strconv.ParseFloat(lexeme, 64)

	return token.Token{Type: token.NUMBER, Lexeme: lexeme, Literal: value, Line: l.line}
}

// strings may span lines; the token carries the line where it ends
func (l *Lexer) readString() (token.Token, bool) {
	position := l.position
	l.readChar()

	for !l.atEnd() && l.ch != '"' {
		if l.ch == '\n' {
			l.line++
		}
		l.readChar()
	}

	if l.atEnd() {
		l.reporter.Error(l.line, "Unterminated string.")
		return token.Token{}, false
	}

	// consume the closing quote
	l.readChar()

	lexeme := l.input[position:l.position]
	return token.Token{
		Type:    token.STRING,
		Lexeme:  lexeme,
		Literal: lexeme[1 : len(lexeme)-1],
		Line:    l.line,
	}, true
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

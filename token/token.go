package token

import (
	"fmt"
	"math"
	"strconv"
)

const (
	EOF = "EOF" // EOF stands for "end of file", which tells our parser later on that it can stop

	// identifiers + literals
	IDENT  = "IDENTIFIER" // add, x, foo, ...
	STRING = "STRING"     // "foo"
	NUMBER = "NUMBER"     // 12.5

	// operators
	ASSIGN   = "EQUAL"
	EQ       = "EQUAL_EQUAL"
	BANG     = "BANG"
	NOT_EQ   = "BANG_EQUAL"
	LT       = "LESS"
	LT_EQ    = "LESS_EQUAL"
	GT       = "GREATER"
	GT_EQ    = "GREATER_EQUAL"
	PLUS     = "PLUS"
	MINUS    = "MINUS"
	ASTERISK = "STAR"
	SLASH    = "SLASH"

	// Delimeters
	COMMA     = "COMMA"
	DOT       = "DOT"
	SEMICOLON = "SEMICOLON"

	LPAREN = "LEFT_PAREN"
	RPAREN = "RIGHT_PAREN"
	LBRACE = "LEFT_BRACE"
	RBRACE = "RIGHT_BRACE"

	// Keywords
	AND      = "AND"
	CLASS    = "CLASS"
	ELSE     = "ELSE"
	FALSE    = "FALSE"
	FOR      = "FOR"
	FUNCTION = "FUN"
	IF       = "IF"
	NIL      = "NIL"
	OR       = "OR"
	PRINT    = "PRINT"
	RETURN   = "RETURN"
	SUPER    = "SUPER"
	THIS     = "THIS"
	TRUE     = "TRUE"
	VAR      = "VAR"
	WHILE    = "WHILE"
)

var keywords = map[string]TokenType{
	"and":    AND,
	"class":  CLASS,
	"else":   ELSE,
	"false":  FALSE,
	"for":    FOR,
	"fun":    FUNCTION,
	"if":     IF,
	"nil":    NIL,
	"or":     OR,
	"print":  PRINT,
	"return": RETURN,
	"super":  SUPER,
	"this":   THIS,
	"true":   TRUE,
	"var":    VAR,
	"while":  WHILE,
}

type TokenType string

// Token is immutable once produced by the lexer.
// Literal holds a float64 for NUMBER and a string for STRING, nil otherwise.
type Token struct {
	Type    TokenType
	Lexeme  string
	Literal any
	Line    int
}

// Display renders the token as "TYPE lexeme literal", nil literals print as "null".
func (t Token) Display() string {
	literal := "null"
	switch v := t.Literal.(type) {
	case float64:
		literal = strconv.FormatFloat(v, 'f', -1, 64)
		if math.Trunc(v) == v && !math.IsInf(v, 0) {
			literal += ".0"
		}
	case string:
		literal = v
	}
	return fmt.Sprintf("%s %s %s", t.Type, t.Lexeme, literal)
}

func (t Token) String() string {
	return fmt.Sprintf("Token{type=%s,lexeme=%q,line=%d}", t.Type, t.Lexeme, t.Line)
}

func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}

	return IDENT

}

// StartsDeclaration reports whether a statement or declaration can begin at t.
// The parser uses it to find a safe place to resume after an error.
func StartsDeclaration(t TokenType) bool {
	switch t {
	case CLASS, FOR, FUNCTION, IF, PRINT, RETURN, VAR, WHILE:
		return true
	}
	return false
}

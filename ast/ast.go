package ast

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/titivuk/golox/token"
)

// Node is implemented by every statement and expression.
// The sets of statements and expressions are closed: the unexported marker
// methods keep other packages from adding variants, so a type switch over
// the types below is exhaustive.
type Node interface {
	TokenLiteral() string
	String() string
}

type Statement interface {
	Node
	statementNode()
}

type Expression interface {
	Node
	expressionNode()
}

// root node of AST
type Program struct {
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}

	return ""
}

func (p *Program) String() string {
	var out strings.Builder
	for _, s := range p.Statements {
		out.WriteString(s.String())
	}
	return out.String()
}

// Statements

type ExpressionStatement struct {
	Token      token.Token // the first token of the expression
	Expression Expression
}

func (es *ExpressionStatement) statementNode()       {}
func (es *ExpressionStatement) TokenLiteral() string { return es.Token.Lexeme }
func (es *ExpressionStatement) String() string       { return "(; " + es.Expression.String() + ")" }

type PrintStatement struct {
	Token token.Token // the token.PRINT token
	Value Expression
}

func (ps *PrintStatement) statementNode()       {}
func (ps *PrintStatement) TokenLiteral() string { return ps.Token.Lexeme }
func (ps *PrintStatement) String() string       { return "(print " + ps.Value.String() + ")" }

type VarStatement struct {
	Token       token.Token // the token.VAR token
	Name        token.Token // hold the identifier of the binding
	Initializer Expression  // nil when the variable starts as nil
}

func (vs *VarStatement) statementNode()       {}
func (vs *VarStatement) TokenLiteral() string { return vs.Token.Lexeme }

func (vs *VarStatement) String() string {
	if vs.Initializer == nil {
		return "(var " + vs.Name.Lexeme + ")"
	}
	return "(var " + vs.Name.Lexeme + " = " + vs.Initializer.String() + ")"
}

type BlockStatement struct {
	Token      token.Token // the token.LBRACE token
	Statements []Statement
}

func (bs *BlockStatement) statementNode()       {}
func (bs *BlockStatement) TokenLiteral() string { return bs.Token.Lexeme }

func (bs *BlockStatement) String() string {
	var out strings.Builder
	out.WriteString("{")
	for _, s := range bs.Statements {
		out.WriteString(s.String())
	}
	out.WriteString("}")
	return out.String()
}

type IfStatement struct {
	Token       token.Token // the token.IF token
	Condition   Expression
	Consequence Statement
	Alternative Statement // nil without an else branch
}

func (is *IfStatement) statementNode()       {}
func (is *IfStatement) TokenLiteral() string { return is.Token.Lexeme }

func (is *IfStatement) String() string {
	if is.Alternative == nil {
		return "(if " + is.Condition.String() + " " + is.Consequence.String() + ")"
	}
	return "(if-else " + is.Condition.String() + " " + is.Consequence.String() + " " + is.Alternative.String() + ")"
}

// WhileStatement is also what a for loop becomes after parsing.
type WhileStatement struct {
	Token     token.Token // the token.WHILE or token.FOR token
	Condition Expression
	Body      Statement
}

func (ws *WhileStatement) statementNode()       {}
func (ws *WhileStatement) TokenLiteral() string { return ws.Token.Lexeme }
func (ws *WhileStatement) String() string {
	return "(while " + ws.Condition.String() + " " + ws.Body.String() + ")"
}

// FunctionStatement declares a named function, or a method inside a class body.
type FunctionStatement struct {
	Name   token.Token
	Params []token.Token
	Body   []Statement
}

func (fs *FunctionStatement) statementNode()       {}
func (fs *FunctionStatement) TokenLiteral() string { return fs.Name.Lexeme }

func (fs *FunctionStatement) String() string {
	params := make([]string, len(fs.Params))
	for i, p := range fs.Params {
		params[i] = p.Lexeme
	}
	var out strings.Builder
	fmt.Fprintf(&out, "(fun %s(%s) ", fs.Name.Lexeme, strings.Join(params, " "))
	for _, s := range fs.Body {
		out.WriteString(s.String())
	}
	out.WriteString(")")
	return out.String()
}

type ReturnStatement struct {
	Token       token.Token // the token.RETURN token
	ReturnValue Expression  // nil for a bare return
}

func (rs *ReturnStatement) statementNode()       {}
func (rs *ReturnStatement) TokenLiteral() string { return rs.Token.Lexeme }

func (rs *ReturnStatement) String() string {
	if rs.ReturnValue == nil {
		return "(return)"
	}
	return "(return " + rs.ReturnValue.String() + ")"
}

type ClassStatement struct {
	Name       token.Token
	Superclass *Identifier // nil when the class has no superclass
	Methods    []*FunctionStatement
}

func (cs *ClassStatement) statementNode()       {}
func (cs *ClassStatement) TokenLiteral() string { return cs.Name.Lexeme }

func (cs *ClassStatement) String() string {
	var out strings.Builder
	out.WriteString("(class " + cs.Name.Lexeme)
	if cs.Superclass != nil {
		out.WriteString(" < " + cs.Superclass.String())
	}
	for _, m := range cs.Methods {
		out.WriteString(" " + m.String())
	}
	out.WriteString(")")
	return out.String()
}

// Expressions

// Literal holds nil, a bool, a float64 or a string.
type Literal struct {
	Token token.Token
	Value any
}

func (l *Literal) expressionNode()      {}
func (l *Literal) TokenLiteral() string { return l.Token.Lexeme }

func (l *Literal) String() string {
	switch v := l.Value.(type) {
	case nil:
		return "nil"
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case string:
		return strconv.Quote(v)
	default:
		return fmt.Sprint(v)
	}
}

type GroupedExpression struct {
	Token      token.Token // the token.LPAREN token
	Expression Expression
}

func (ge *GroupedExpression) expressionNode()      {}
func (ge *GroupedExpression) TokenLiteral() string { return ge.Token.Lexeme }
func (ge *GroupedExpression) String() string       { return "(group " + ge.Expression.String() + ")" }

type UnaryExpression struct {
	Operator token.Token // ! or -
	Right    Expression
}

func (ue *UnaryExpression) expressionNode()      {}
func (ue *UnaryExpression) TokenLiteral() string { return ue.Operator.Lexeme }
func (ue *UnaryExpression) String() string {
	return "(" + ue.Operator.Lexeme + " " + ue.Right.String() + ")"
}

type BinaryExpression struct {
	Left     Expression
	Operator token.Token
	Right    Expression
}

func (be *BinaryExpression) expressionNode()      {}
func (be *BinaryExpression) TokenLiteral() string { return be.Operator.Lexeme }
func (be *BinaryExpression) String() string {
	return "(" + be.Operator.Lexeme + " " + be.Left.String() + " " + be.Right.String() + ")"
}

// LogicalExpression is a short-circuiting "and" or "or".
type LogicalExpression struct {
	Left     Expression
	Operator token.Token
	Right    Expression
}

func (le *LogicalExpression) expressionNode()      {}
func (le *LogicalExpression) TokenLiteral() string { return le.Operator.Lexeme }
func (le *LogicalExpression) String() string {
	return "(" + le.Operator.Lexeme + " " + le.Left.String() + " " + le.Right.String() + ")"
}

// Identifier is a variable reference.
type Identifier struct {
	Token token.Token // the token.IDENT token
	Value string
}

func (i *Identifier) expressionNode()      {}
func (i *Identifier) TokenLiteral() string { return i.Token.Lexeme }
func (i *Identifier) String() string       { return i.Value }

type AssignExpression struct {
	Name  token.Token
	Value Expression
}

func (ae *AssignExpression) expressionNode()      {}
func (ae *AssignExpression) TokenLiteral() string { return ae.Name.Lexeme }
func (ae *AssignExpression) String() string {
	return "(= " + ae.Name.Lexeme + " " + ae.Value.String() + ")"
}

type CallExpression struct {
	Function  Expression
	Paren     token.Token // the closing paren, used to report errors
	Arguments []Expression
}

func (ce *CallExpression) expressionNode()      {}
func (ce *CallExpression) TokenLiteral() string { return ce.Paren.Lexeme }

func (ce *CallExpression) String() string {
	var out strings.Builder
	out.WriteString("(call " + ce.Function.String())
	for _, a := range ce.Arguments {
		out.WriteString(" " + a.String())
	}
	out.WriteString(")")
	return out.String()
}

type GetExpression struct {
	Object Expression
	Name   token.Token
}

func (ge *GetExpression) expressionNode()      {}
func (ge *GetExpression) TokenLiteral() string { return ge.Name.Lexeme }
func (ge *GetExpression) String() string {
	return "(. " + ge.Object.String() + " " + ge.Name.Lexeme + ")"
}

type SetExpression struct {
	Object Expression
	Name   token.Token
	Value  Expression
}

func (se *SetExpression) expressionNode()      {}
func (se *SetExpression) TokenLiteral() string { return se.Name.Lexeme }
func (se *SetExpression) String() string {
	return "(= (. " + se.Object.String() + " " + se.Name.Lexeme + ") " + se.Value.String() + ")"
}

type ThisExpression struct {
	Token token.Token // the token.THIS token
}

func (te *ThisExpression) expressionNode()      {}
func (te *ThisExpression) TokenLiteral() string { return te.Token.Lexeme }
func (te *ThisExpression) String() string       { return "this" }

type SuperExpression struct {
	Token  token.Token // the token.SUPER token
	Method token.Token
}

func (se *SuperExpression) expressionNode()      {}
func (se *SuperExpression) TokenLiteral() string { return se.Token.Lexeme }
func (se *SuperExpression) String() string       { return "(super " + se.Method.Lexeme + ")" }

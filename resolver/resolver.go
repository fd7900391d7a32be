// Package resolver binds every local variable reference to the scope that
// declares it before anything is evaluated.
package resolver

import (
	"github.com/titivuk/golox/ast"
	"github.com/titivuk/golox/diag"
	"github.com/titivuk/golox/token"
)

// Locals maps a reference (*ast.Identifier, *ast.AssignExpression,
// *ast.ThisExpression or *ast.SuperExpression) to the number of scopes
// between it and its declaration. References missing from the map are
// globals.
type Locals map[ast.Expression]int

type functionType int

const (
	noFunction functionType = iota
	function
	method
	initializer
)

type classType int

const (
	noClass classType = iota
	class
	subclass
)

// scope maps a declared name to whether its initializer has been resolved
type scope map[string]bool

type Resolver struct {
	reporter *diag.Reporter
	scopes   []scope
	locals   Locals

	// globals whose initializer is being resolved right now
	initializing map[string]bool

	currentFunction functionType
	currentClass    classType
}

func New(reporter *diag.Reporter) *Resolver {
	return &Resolver{reporter: reporter}
}

// Resolve walks statements once and returns the distance of every local
// reference. Errors are reported and resolution carries on past them.
func (r *Resolver) Resolve(statements []ast.Statement) Locals {
	r.locals = make(Locals)
	r.scopes = nil
	r.initializing = make(map[string]bool)
	r.currentFunction = noFunction
	r.currentClass = noClass

	r.resolveStatements(statements)

	return r.locals
}

func (r *Resolver) resolveStatements(statements []ast.Statement) {
	for _, stmt := range statements {
		r.resolveStatement(stmt)
	}
}

func (r *Resolver) resolveStatement(stmt ast.Statement) {
	switch stmt := stmt.(type) {
	case *ast.BlockStatement:
		r.beginScope()
		r.resolveStatements(stmt.Statements)
		r.endScope()
	case *ast.VarStatement:
		r.declare(stmt.Name)
		if stmt.Initializer != nil {
			if len(r.scopes) == 0 {
				r.initializing[stmt.Name.Lexeme] = true
			}
			r.resolveExpression(stmt.Initializer)
			delete(r.initializing, stmt.Name.Lexeme)
		}
		r.define(stmt.Name)
	case *ast.FunctionStatement:
		// defined before the body so the function can call itself
		r.declare(stmt.Name)
		r.define(stmt.Name)
		r.resolveFunction(stmt, function)
	case *ast.ClassStatement:
		r.resolveClass(stmt)
	case *ast.ExpressionStatement:
		r.resolveExpression(stmt.Expression)
	case *ast.PrintStatement:
		r.resolveExpression(stmt.Value)
	case *ast.IfStatement:
		r.resolveExpression(stmt.Condition)
		r.resolveStatement(stmt.Consequence)
		if stmt.Alternative != nil {
			r.resolveStatement(stmt.Alternative)
		}
	case *ast.WhileStatement:
		r.resolveExpression(stmt.Condition)
		r.resolveStatement(stmt.Body)
	case *ast.ReturnStatement:
		if r.currentFunction == noFunction {
			r.reporter.TokenError(stmt.Token, "Can't return from top-level code.")
		}
		if stmt.ReturnValue != nil {
			if r.currentFunction == initializer {
				r.reporter.TokenError(stmt.Token, "Can't return a value from an initializer.")
			}
			r.resolveExpression(stmt.ReturnValue)
		}
	}
}

func (r *Resolver) resolveClass(stmt *ast.ClassStatement) {
	enclosingClass := r.currentClass
	r.currentClass = class
	defer func() { r.currentClass = enclosingClass }()

	r.declare(stmt.Name)
	r.define(stmt.Name)

	if stmt.Superclass != nil {
		if stmt.Superclass.Value == stmt.Name.Lexeme {
			r.reporter.TokenError(stmt.Superclass.Token, "A class can't inherit from itself.")
		}
		r.currentClass = subclass
		r.resolveExpression(stmt.Superclass)

		r.beginScope()
		r.peekScope()["super"] = true
		defer r.endScope()
	}

	r.beginScope()
	r.peekScope()["this"] = true

	for _, m := range stmt.Methods {
		declaration := method
		if m.Name.Lexeme == "init" {
			declaration = initializer
		}
		r.resolveFunction(m, declaration)
	}

	r.endScope()
}

func (r *Resolver) resolveFunction(fn *ast.FunctionStatement, kind functionType) {
	enclosingFunction := r.currentFunction
	r.currentFunction = kind

	r.beginScope()
	for _, param := range fn.Params {
		r.declare(param)
		r.define(param)
	}
	r.resolveStatements(fn.Body)
	r.endScope()

	r.currentFunction = enclosingFunction
}

func (r *Resolver) resolveExpression(expr ast.Expression) {
	switch expr := expr.(type) {
	case *ast.Identifier:
		if len(r.scopes) > 0 {
			if ready, declared := r.peekScope()[expr.Value]; declared && !ready {
				r.reporter.TokenError(expr.Token, "Can't read local variable in its own initializer.")
			}
		} else if r.initializing[expr.Value] {
			r.reporter.TokenError(expr.Token, "Can't read variable in its own initializer.")
		}
		r.resolveLocal(expr, expr.Value)
	case *ast.AssignExpression:
		r.resolveExpression(expr.Value)
		r.resolveLocal(expr, expr.Name.Lexeme)
	case *ast.BinaryExpression:
		r.resolveExpression(expr.Left)
		r.resolveExpression(expr.Right)
	case *ast.LogicalExpression:
		r.resolveExpression(expr.Left)
		r.resolveExpression(expr.Right)
	case *ast.UnaryExpression:
		r.resolveExpression(expr.Right)
	case *ast.GroupedExpression:
		r.resolveExpression(expr.Expression)
	case *ast.CallExpression:
		r.resolveExpression(expr.Function)
		for _, arg := range expr.Arguments {
			r.resolveExpression(arg)
		}
	case *ast.GetExpression:
		r.resolveExpression(expr.Object)
	case *ast.SetExpression:
		r.resolveExpression(expr.Value)
		r.resolveExpression(expr.Object)
	case *ast.ThisExpression:
		if r.currentClass == noClass {
			r.reporter.TokenError(expr.Token, "Can't use 'this' outside of a class.")
			return
		}
		r.resolveLocal(expr, "this")
	case *ast.SuperExpression:
		switch r.currentClass {
		case noClass:
			r.reporter.TokenError(expr.Token, "Can't use 'super' outside of a class.")
			return
		case class:
			r.reporter.TokenError(expr.Token, "Can't use 'super' in a class with no superclass.")
			return
		}
		r.resolveLocal(expr, "super")
	case *ast.Literal:
	}
}

// resolveLocal records how many scopes out name is declared. Names found in
// no scope are left for the global environment.
func (r *Resolver) resolveLocal(expr ast.Expression, name string) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if _, ok := r.scopes[i][name]; ok {
			r.locals[expr] = len(r.scopes) - 1 - i
			return
		}
	}
}

func (r *Resolver) beginScope() {
	r.scopes = append(r.scopes, scope{})
}

func (r *Resolver) endScope() {
	r.scopes = r.scopes[:len(r.scopes)-1]
}

func (r *Resolver) peekScope() scope {
	return r.scopes[len(r.scopes)-1]
}

// declare adds name to the innermost scope as not yet ready to be read.
// Globals are not tracked.
func (r *Resolver) declare(name token.Token) {
	if len(r.scopes) == 0 {
		return
	}
	s := r.peekScope()
	if _, ok := s[name.Lexeme]; ok {
		r.reporter.TokenError(name, "Already a variable with this name in this scope.")
	}
	s[name.Lexeme] = false
}

func (r *Resolver) define(name token.Token) {
	if len(r.scopes) == 0 {
		return
	}
	r.peekScope()[name.Lexeme] = true
}

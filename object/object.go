package object

import (
	"math"
	"strconv"

	"github.com/titivuk/golox/ast"
)

type ObjectType string

const (
	NIL_OBJ      = "NIL"
	BOOLEAN_OBJ  = "BOOLEAN"
	NUMBER_OBJ   = "NUMBER"
	STRING_OBJ   = "STRING"
	FUNCTION_OBJ = "FUNCTION"
	BUILTIN_OBJ  = "BUILTIN"
	CLASS_OBJ    = "CLASS"
	INSTANCE_OBJ = "INSTANCE"
)

// Object is every runtime value. Inspect is the text print shows.
type Object interface {
	Type() ObjectType
	Inspect() string
}

// Callable is implemented by the values a call expression accepts.
// The evaluator switches on the concrete type to invoke them.
type Callable interface {
	Object
	Arity() int
}

type Nil struct{}

func (n *Nil) Type() ObjectType { return NIL_OBJ }
func (n *Nil) Inspect() string  { return "nil" }

type Boolean struct {
	Value bool
}

func (b *Boolean) Type() ObjectType { return BOOLEAN_OBJ }
func (b *Boolean) Inspect() string  { return strconv.FormatBool(b.Value) }

type Number struct {
	Value float64
}

func (n *Number) Type() ObjectType { return NUMBER_OBJ }

// Inspect drops the fraction of integral values, so 3.0 prints as 3.
func (n *Number) Inspect() string {
	switch {
	case math.IsInf(n.Value, 1):
		return "Infinity"
	case math.IsInf(n.Value, -1):
		return "-Infinity"
	case math.IsNaN(n.Value):
		return "NaN"
	}
	return strconv.FormatFloat(n.Value, 'f', -1, 64)
}

type String struct {
	Value string
}

func (s *String) Type() ObjectType { return STRING_OBJ }
func (s *String) Inspect() string  { return s.Value }

// Function is a user function or method together with the scope it closes over.
type Function struct {
	Declaration   *ast.FunctionStatement
	Closure       *Environment
	IsInitializer bool
}

func (f *Function) Type() ObjectType { return FUNCTION_OBJ }
func (f *Function) Inspect() string  { return "<fn " + f.Declaration.Name.Lexeme + ">" }
func (f *Function) Arity() int       { return len(f.Declaration.Params) }

// Bind returns a copy of f whose closure is a new scope, enclosed by f's
// closure, holding "this" = instance.
func (f *Function) Bind(instance *Instance) *Function {
	env := NewEnclosedEnvironment(f.Closure)
	env.Define("this", instance)
	return &Function{Declaration: f.Declaration, Closure: env, IsInitializer: f.IsInitializer}
}

type BuiltinFunction func(args ...Object) Object

// Builtin is a function implemented in Go.
type Builtin struct {
	Name   string
	Params int
	Fn     BuiltinFunction
}

func (b *Builtin) Type() ObjectType { return BUILTIN_OBJ }
func (b *Builtin) Inspect() string  { return "<native fn>" }
func (b *Builtin) Arity() int       { return b.Params }

type Class struct {
	Name       string
	Superclass *Class // nil for a root class
	Methods    map[string]*Function
}

func (c *Class) Type() ObjectType { return CLASS_OBJ }
func (c *Class) Inspect() string  { return c.Name }

// Arity is the arity of init, found on c or an ancestor, or 0 without one.
func (c *Class) Arity() int {
	if initializer, ok := c.FindMethod("init"); ok {
		return initializer.Arity()
	}
	return 0
}

// FindMethod looks in c's own methods first, then each ancestor in turn,
// nearest first.
func (c *Class) FindMethod(name string) (*Function, bool) {
	for class := c; class != nil; class = class.Superclass {
		if method, ok := class.Methods[name]; ok {
			return method, true
		}
	}
	return nil, false
}

type Instance struct {
	Class  *Class
	Fields map[string]Object
}

func NewInstance(class *Class) *Instance {
	return &Instance{Class: class, Fields: make(map[string]Object)}
}

func (i *Instance) Type() ObjectType { return INSTANCE_OBJ }
func (i *Instance) Inspect() string  { return i.Class.Name + " instance" }

// Get finds a field, or else a method bound to i. Fields shadow methods.
func (i *Instance) Get(name string) (Object, bool) {
	if value, ok := i.Fields[name]; ok {
		return value, true
	}
	if method, ok := i.Class.FindMethod(name); ok {
		return method.Bind(i), true
	}
	return nil, false
}

func (i *Instance) Set(name string, value Object) {
	i.Fields[name] = value
}

// ReturnValue is the completion of a statement that executed "return".
// A nil *ReturnValue means the statement completed normally.
type ReturnValue struct {
	Value Object
}

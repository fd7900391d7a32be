package object

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/titivuk/golox/ast"
	"github.com/titivuk/golox/token"
)

func TestInspect(t *testing.T) {
	tests := []struct {
		obj      Object
		expected string
	}{
		{&Nil{}, "nil"},
		{&Boolean{Value: true}, "true"},
		{&Boolean{Value: false}, "false"},
		{&Number{Value: 3}, "3"},
		{&Number{Value: -0.5}, "-0.5"},
		{&Number{Value: 1e21}, "1000000000000000000000"},
		{&Number{Value: math.Inf(1)}, "Infinity"},
		{&Number{Value: math.Inf(-1)}, "-Infinity"},
		{&Number{Value: math.NaN()}, "NaN"},
		{&String{Value: "hi there"}, "hi there"},
		{&Builtin{Name: "clock"}, "<native fn>"},
		{newFunction("add", "a", "b"), "<fn add>"},
		{&Class{Name: "Point"}, "Point"},
		{NewInstance(&Class{Name: "Point"}), "Point instance"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.obj.Inspect(), "%T", tt.obj)
	}
}

func newFunction(name string, params ...string) *Function {
	decl := &ast.FunctionStatement{Name: token.Token{Type: token.IDENT, Lexeme: name}}
	for _, p := range params {
		decl.Params = append(decl.Params, token.Token{Type: token.IDENT, Lexeme: p})
	}
	return &Function{Declaration: decl, Closure: NewEnvironment()}
}

func TestFindMethodWalksAncestors(t *testing.T) {
	baseGreet := newFunction("greet")
	base := &Class{Name: "Base", Methods: map[string]*Function{
		"greet": baseGreet,
		"init":  newFunction("init", "a", "b"),
	}}
	middle := &Class{Name: "Middle", Superclass: base, Methods: map[string]*Function{}}
	ownGreet := newFunction("greet")
	leaf := &Class{Name: "Leaf", Superclass: middle, Methods: map[string]*Function{"greet": ownGreet}}

	m, ok := middle.FindMethod("greet")
	require.True(t, ok)
	assert.Same(t, baseGreet, m)

	m, ok = leaf.FindMethod("greet")
	require.True(t, ok)
	assert.Same(t, ownGreet, m)

	_, ok = leaf.FindMethod("missing")
	assert.False(t, ok)

	assert.Equal(t, 2, leaf.Arity(), "arity comes from an inherited init")
	assert.Equal(t, 0, (&Class{Name: "Empty"}).Arity())
}

func TestInstanceGet(t *testing.T) {
	method := newFunction("size")
	class := &Class{Name: "Box", Methods: map[string]*Function{"size": method}}
	instance := NewInstance(class)

	v, ok := instance.Get("size")
	require.True(t, ok)
	bound, ok := v.(*Function)
	require.True(t, ok, "method must come back as a function, got %T", v)
	assert.NotSame(t, method, bound)
	this, ok := bound.Closure.GetAt(0, "this")
	require.True(t, ok)
	assert.Same(t, instance, this)
	assert.Same(t, method.Closure, bound.Closure.Outer())

	// fields shadow methods
	instance.Set("size", &Number{Value: 4})
	v, ok = instance.Get("size")
	require.True(t, ok)
	assert.Equal(t, "4", v.Inspect())

	_, ok = instance.Get("missing")
	assert.False(t, ok)
}

func TestBindKeepsInitializerFlag(t *testing.T) {
	initializer := newFunction("init")
	initializer.IsInitializer = true

	bound := initializer.Bind(NewInstance(&Class{Name: "A"}))
	assert.True(t, bound.IsInitializer)
	assert.Same(t, initializer.Declaration, bound.Declaration)
}

package object

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvironmentDefineAndGet(t *testing.T) {
	globals := NewEnvironment()
	globals.Define("a", &Number{Value: 1})

	inner := NewEnclosedEnvironment(globals)
	inner.Define("b", &String{Value: "b"})

	v, ok := inner.Get("a")
	require.True(t, ok)
	assert.Equal(t, "1", v.Inspect())

	_, ok = globals.Get("b")
	assert.False(t, ok, "outer scope must not see inner bindings")

	// redefinition replaces the binding
	globals.Define("a", &Number{Value: 2})
	v, _ = inner.Get("a")
	assert.Equal(t, "2", v.Inspect())

	assert.Same(t, globals, inner.Outer())
	assert.Nil(t, globals.Outer())
}

func TestEnvironmentShadowing(t *testing.T) {
	outer := NewEnvironment()
	outer.Define("x", &String{Value: "outer"})
	inner := NewEnclosedEnvironment(outer)
	inner.Define("x", &String{Value: "inner"})

	v, _ := inner.Get("x")
	assert.Equal(t, "inner", v.Inspect())

	v, ok := inner.GetAt(1, "x")
	require.True(t, ok)
	assert.Equal(t, "outer", v.Inspect())
}

func TestEnvironmentAssign(t *testing.T) {
	outer := NewEnvironment()
	outer.Define("x", &Number{Value: 1})
	inner := NewEnclosedEnvironment(outer)

	require.True(t, inner.Assign("x", &Number{Value: 2}))
	v, _ := outer.Get("x")
	assert.Equal(t, "2", v.Inspect())

	assert.False(t, inner.Assign("missing", &Nil{}))
	_, ok := inner.Get("missing")
	assert.False(t, ok, "assign must not create a binding")
}

func TestEnvironmentAtDistance(t *testing.T) {
	e0 := NewEnvironment()
	e1 := NewEnclosedEnvironment(e0)
	e2 := NewEnclosedEnvironment(e1)

	e0.Define("x", &Number{Value: 0})
	e1.Define("x", &Number{Value: 1})

	assert.Same(t, e2, e2.Ancestor(0))
	assert.Same(t, e0, e2.Ancestor(2))

	v, ok := e2.GetAt(2, "x")
	require.True(t, ok)
	assert.Equal(t, "0", v.Inspect())

	_, ok = e2.GetAt(0, "x")
	assert.False(t, ok, "GetAt must not walk past the requested scope")

	require.True(t, e2.AssignAt(1, "x", &Number{Value: 10}))
	v, _ = e1.Get("x")
	assert.Equal(t, "10", v.Inspect())
	v, _ = e0.Get("x")
	assert.Equal(t, "0", v.Inspect())

	assert.False(t, e2.AssignAt(0, "x", &Nil{}))
}

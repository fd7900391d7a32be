package resolver

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/titivuk/golox/ast"
	"github.com/titivuk/golox/diag"
	"github.com/titivuk/golox/lexer"
	"github.com/titivuk/golox/parser"
)

func resolve(t *testing.T, input string) (Locals, string) {
	t.Helper()

	var stderr bytes.Buffer
	reporter := diag.New(&stderr)
	program := parser.New(lexer.New(input, reporter).ScanTokens(), reporter).ParseProgram()
	if reporter.HadError() {
		t.Fatalf("unexpected parse errors:\n%s", stderr.String())
	}

	locals := New(reporter).Resolve(program.Statements)
	return locals, stderr.String()
}

// describe keys a resolved reference by what it refers to and where.
func describe(expr ast.Expression) string {
	switch expr := expr.(type) {
	case *ast.Identifier:
		return fmt.Sprintf("%s@%d", expr.Value, expr.Token.Line)
	case *ast.AssignExpression:
		return fmt.Sprintf("%s=@%d", expr.Name.Lexeme, expr.Name.Line)
	case *ast.ThisExpression:
		return fmt.Sprintf("this@%d", expr.Token.Line)
	case *ast.SuperExpression:
		return fmt.Sprintf("super@%d", expr.Token.Line)
	default:
		return fmt.Sprintf("%T", expr)
	}
}

func TestResolveDistances(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected map[string]int
	}{
		{
			name: "globals are left unresolved",
			input: `var g = 1;
print g;
g = 2;`,
			expected: map[string]int{},
		},
		{
			name: "nested blocks",
			input: `var g = 1;
{
  var a = g;
  {
    print a;
    var a = 2;
    print a;
  }
}`,
			expected: map[string]int{"a@5": 1, "a@7": 0},
		},
		{
			name:     "parameters share the body scope",
			input:    `fun f(x) { return x; }`,
			expected: map[string]int{"x@1": 0},
		},
		{
			name:     "local function can refer to itself",
			input:    `{ fun f() { return f; } }`,
			expected: map[string]int{"f@1": 1},
		},
		{
			name: "closure assignment",
			input: `fun outer() {
  var x = 1;
  fun inner() {
    x = 2;
    return x;
  }
}`,
			expected: map[string]int{"x=@4": 1, "x@5": 1},
		},
		{
			name: "this and super",
			input: `class A {
  m() { return this; }
}
class B < A {
  m() { return super.m(); }
  n() { fun f() { return this; } }
}`,
			expected: map[string]int{"this@2": 1, "super@5": 2, "this@6": 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			locals, stderr := resolve(t, tt.input)
			if stderr != "" {
				t.Fatalf("unexpected diagnostics:\n%s", stderr)
			}

			got := make(map[string]int, len(locals))
			for expr, distance := range locals {
				got[describe(expr)] = distance
			}
			if diff := cmp.Diff(tt.expected, got); diff != "" {
				t.Errorf("distances mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResolveErrors(t *testing.T) {
	tests := []struct {
		input       string
		expectedErr string
	}{
		{
			"{ var a = a; }",
			"[line 1] Error at 'a': Can't read local variable in its own initializer.\n",
		},
		{
			"var a = a;",
			"[line 1] Error at 'a': Can't read variable in its own initializer.\n",
		},
		{
			"{ var a; var a; }",
			"[line 1] Error at 'a': Already a variable with this name in this scope.\n",
		},
		{
			"fun f(a, a) {}",
			"[line 1] Error at 'a': Already a variable with this name in this scope.\n",
		},
		{
			"return 1;",
			"[line 1] Error at 'return': Can't return from top-level code.\n",
		},
		{
			"class A { init() { return 1; } }",
			"[line 1] Error at 'return': Can't return a value from an initializer.\n",
		},
		{
			"print this;",
			"[line 1] Error at 'this': Can't use 'this' outside of a class.\n",
		},
		{
			"fun f() { return this; }",
			"[line 1] Error at 'this': Can't use 'this' outside of a class.\n",
		},
		{
			"print super.x;",
			"[line 1] Error at 'super': Can't use 'super' outside of a class.\n",
		},
		{
			"class A { f() { super.f(); } }",
			"[line 1] Error at 'super': Can't use 'super' in a class with no superclass.\n",
		},
		{
			"class A < A {}",
			"[line 1] Error at 'A': A class can't inherit from itself.\n",
		},
		{
			"return;\nprint this;",
			"[line 1] Error at 'return': Can't return from top-level code.\n" +
				"[line 2] Error at 'this': Can't use 'this' outside of a class.\n",
		},
	}

	for _, tt := range tests {
		_, stderr := resolve(t, tt.input)
		if diff := cmp.Diff(tt.expectedErr, stderr); diff != "" {
			t.Errorf("input %q: diagnostics mismatch (-want +got):\n%s", tt.input, diff)
		}
	}
}

func TestResolveAccepts(t *testing.T) {
	tests := []string{
		// globals may be redeclared
		"var a; var a;",
		"var a = 1; { var b = a; var a = b; }",
		"class A { init() { return; } }",
		"fun f(a) { { var a = 2; } }",
		"var a = 1; var b = a;",
	}

	for _, input := range tests {
		_, stderr := resolve(t, input)
		if stderr != "" {
			t.Errorf("input %q: unexpected diagnostics:\n%s", input, stderr)
		}
	}
}

package evaluator

import (
	"github.com/titivuk/golox/ast"
	"github.com/titivuk/golox/object"
)

// evalCallExpression evaluates the callee, then the arguments left to right,
// and checks the arity before anything runs.
func (in *Interpreter) evalCallExpression(expr *ast.CallExpression) (object.Object, error) {
	callee, err := in.evaluate(expr.Function)
	if err != nil {
		return nil, err
	}

	args := make([]object.Object, 0, len(expr.Arguments))
	for _, a := range expr.Arguments {
		arg, err := in.evaluate(a)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}

	callable, ok := callee.(object.Callable)
	if !ok {
		return nil, newError(expr.Paren, "Can only call functions and classes.")
	}

	if len(args) != callable.Arity() {
		return nil, newError(expr.Paren, "Expected %d arguments but got %d.", callable.Arity(), len(args))
	}

	switch callable := callable.(type) {
	case *object.Function:
		return in.callFunction(callable, args)
	case *object.Builtin:
		return callable.Fn(args...), nil
	case *object.Class:
		return in.instantiate(callable, args)
	default:
		return nil, newError(expr.Paren, "Can only call functions and classes.")
	}
}

// callFunction runs fn's body in a new scope enclosed by fn's closure, not by
// the caller's scope.
func (in *Interpreter) callFunction(fn *object.Function, args []object.Object) (object.Object, error) {
	env := object.NewEnclosedEnvironment(fn.Closure)
	for i, param := range fn.Declaration.Params {
		env.Define(param.Lexeme, args[i])
	}

	result, err := in.executeBlock(fn.Declaration.Body, env)
	if err != nil {
		return nil, err
	}

	// an initializer always evaluates to its instance, even after "return;"
	if fn.IsInitializer {
		this, _ := fn.Closure.GetAt(0, "this")
		return this, nil
	}

	if result != nil {
		return result.Value, nil
	}

	return NIL, nil
}

func (in *Interpreter) instantiate(class *object.Class, args []object.Object) (object.Object, error) {
	instance := object.NewInstance(class)

	if initializer, ok := class.FindMethod("init"); ok {
		if _, err := in.callFunction(initializer.Bind(instance), args); err != nil {
			return nil, err
		}
	}

	return instance, nil
}

package evaluator

import (
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"time"

	"github.com/titivuk/golox/ast"
	"github.com/titivuk/golox/object"
	"github.com/titivuk/golox/resolver"
	"github.com/titivuk/golox/token"
)

// reuse some objects (similar to oddbals in v8 engine)
var (
	NIL   = &object.Nil{}
	TRUE  = &object.Boolean{Value: true}
	FALSE = &object.Boolean{Value: false}
)

// RuntimeError aborts the top-level statement being executed. Token is the
// token most directly involved and supplies the line that gets reported.
type RuntimeError struct {
	Token   token.Token
	Message string
}

func (e *RuntimeError) Error() string {
	return e.Message
}

func newError(tok token.Token, format string, a ...interface{}) *RuntimeError {
	return &RuntimeError{Token: tok, Message: fmt.Sprintf(format, a...)}
}

// Interpreter evaluates resolved programs. Global state persists across calls
// to Interpret, which is what an interactive session relies on.
type Interpreter struct {
	globals *object.Environment
	env     *object.Environment
	locals  resolver.Locals

	out    io.Writer
	logger *slog.Logger
	now    func() time.Time
}

type Option func(*Interpreter)

// WithOutput sets where print writes. The default is os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(in *Interpreter) {
		in.out = w
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(in *Interpreter) {
		in.logger = logger
	}
}

// WithClock replaces the time source of the clock builtin.
func WithClock(now func() time.Time) Option {
	return func(in *Interpreter) {
		in.now = now
	}
}

func New(opts ...Option) *Interpreter {
	in := &Interpreter{
		globals: object.NewEnvironment(),
		locals:  make(resolver.Locals),
		out:     os.Stdout,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(in)
	}
	if in.logger == nil {
		in.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	}
	in.env = in.globals

	for name, builtin := range newBuiltins(in.now) {
		in.globals.Define(name, builtin)
	}

	return in
}

// Interpret executes statements in order. The first runtime error stops
// execution and is returned as a *RuntimeError; bindings made before it
// are kept.
func (in *Interpreter) Interpret(statements []ast.Statement, locals resolver.Locals) error {
	maps.Copy(in.locals, locals)

	for _, stmt := range statements {
		if stmt == nil {
			continue
		}
		if _, err := in.execute(stmt); err != nil {
			in.logger.Debug("runtime error", "line", lineOf(err), "error", err)
			return err
		}
	}

	return nil
}

// Global returns the value bound to name in the global scope.
func (in *Interpreter) Global(name string) (object.Object, bool) {
	return in.globals.Get(name)
}

func lineOf(err error) int {
	if rerr, ok := err.(*RuntimeError); ok {
		return rerr.Token.Line
	}
	return 0
}

// execute runs one statement. A non-nil *object.ReturnValue means a return
// statement ran and must unwind to the nearest call.
func (in *Interpreter) execute(stmt ast.Statement) (*object.ReturnValue, error) {
	switch stmt := stmt.(type) {
	case *ast.ExpressionStatement:
		_, err := in.evaluate(stmt.Expression)
		return nil, err
	case *ast.PrintStatement:
		value, err := in.evaluate(stmt.Value)
		if err != nil {
			return nil, err
		}
		fmt.Fprintln(in.out, value.Inspect())
		return nil, nil
	case *ast.VarStatement:
		var value object.Object = NIL
		if stmt.Initializer != nil {
			var err error
			if value, err = in.evaluate(stmt.Initializer); err != nil {
				return nil, err
			}
		}
		in.env.Define(stmt.Name.Lexeme, value)
		return nil, nil
	case *ast.BlockStatement:
		return in.executeBlock(stmt.Statements, object.NewEnclosedEnvironment(in.env))
	case *ast.IfStatement:
		return in.executeIf(stmt)
	case *ast.WhileStatement:
		return in.executeWhile(stmt)
	case *ast.FunctionStatement:
		in.env.Define(stmt.Name.Lexeme, &object.Function{Declaration: stmt, Closure: in.env})
		return nil, nil
	case *ast.ReturnStatement:
		var value object.Object = NIL
		if stmt.ReturnValue != nil {
			var err error
			if value, err = in.evaluate(stmt.ReturnValue); err != nil {
				return nil, err
			}
		}
		return &object.ReturnValue{Value: value}, nil
	case *ast.ClassStatement:
		return nil, in.executeClass(stmt)
	default:
		return nil, fmt.Errorf("unknown statement %T", stmt)
	}
}

// executeBlock runs statements in env and restores the previous scope on
// every way out: completion, return or error.
func (in *Interpreter) executeBlock(statements []ast.Statement, env *object.Environment) (*object.ReturnValue, error) {
	previous := in.env
	in.env = env
	defer func() { in.env = previous }()

	for _, stmt := range statements {
		if stmt == nil {
			continue
		}
		result, err := in.execute(stmt)
		if err != nil || result != nil {
			return result, err
		}
	}

	return nil, nil
}

func (in *Interpreter) executeIf(stmt *ast.IfStatement) (*object.ReturnValue, error) {
	condition, err := in.evaluate(stmt.Condition)
	if err != nil {
		return nil, err
	}

	if isTruthy(condition) {
		return in.execute(stmt.Consequence)
	}

	if stmt.Alternative != nil {
		return in.execute(stmt.Alternative)
	}

	return nil, nil
}

func (in *Interpreter) executeWhile(stmt *ast.WhileStatement) (*object.ReturnValue, error) {
	for {
		condition, err := in.evaluate(stmt.Condition)
		if err != nil {
			return nil, err
		}
		if !isTruthy(condition) {
			return nil, nil
		}

		result, err := in.execute(stmt.Body)
		if err != nil || result != nil {
			return result, err
		}
	}
}

func (in *Interpreter) executeClass(stmt *ast.ClassStatement) error {
	var superclass *object.Class
	if stmt.Superclass != nil {
		value, err := in.evaluate(stmt.Superclass)
		if err != nil {
			return err
		}
		class, ok := value.(*object.Class)
		if !ok {
			return newError(stmt.Superclass.Token, "Superclass must be a class.")
		}
		superclass = class
	}

	in.env.Define(stmt.Name.Lexeme, NIL)

	// methods of a subclass close over one extra scope holding "super"
	methodEnv := in.env
	if superclass != nil {
		methodEnv = object.NewEnclosedEnvironment(in.env)
		methodEnv.Define("super", superclass)
	}

	methods := make(map[string]*object.Function, len(stmt.Methods))
	for _, m := range stmt.Methods {
		methods[m.Name.Lexeme] = &object.Function{
			Declaration:   m,
			Closure:       methodEnv,
			IsInitializer: m.Name.Lexeme == "init",
		}
	}

	in.env.Define(stmt.Name.Lexeme, &object.Class{
		Name:       stmt.Name.Lexeme,
		Superclass: superclass,
		Methods:    methods,
	})
	in.logger.Debug("class defined",
		"name", stmt.Name.Lexeme, "methods", len(methods), "line", stmt.Name.Line)

	return nil
}

func (in *Interpreter) evaluate(expr ast.Expression) (object.Object, error) {
	switch expr := expr.(type) {
	case *ast.Literal:
		return literalToObject(expr.Value), nil
	case *ast.GroupedExpression:
		return in.evaluate(expr.Expression)
	case *ast.Identifier:
		return in.lookUpVariable(expr.Token, expr)
	case *ast.AssignExpression:
		return in.evalAssignExpression(expr)
	case *ast.UnaryExpression:
		right, err := in.evaluate(expr.Right)
		if err != nil {
			return nil, err
		}
		return evalUnaryExpression(expr.Operator, right)
	case *ast.BinaryExpression:
		left, err := in.evaluate(expr.Left)
		if err != nil {
			return nil, err
		}
		right, err := in.evaluate(expr.Right)
		if err != nil {
			return nil, err
		}
		return evalBinaryExpression(left, expr.Operator, right)
	case *ast.LogicalExpression:
		return in.evalLogicalExpression(expr)
	case *ast.CallExpression:
		return in.evalCallExpression(expr)
	case *ast.GetExpression:
		return in.evalGetExpression(expr)
	case *ast.SetExpression:
		return in.evalSetExpression(expr)
	case *ast.ThisExpression:
		return in.lookUpVariable(expr.Token, expr)
	case *ast.SuperExpression:
		return in.evalSuperExpression(expr)
	default:
		return nil, fmt.Errorf("unknown expression %T", expr)
	}
}

func literalToObject(value any) object.Object {
	switch value := value.(type) {
	case bool:
		return nativeBoolToBooleanObject(value)
	case float64:
		return &object.Number{Value: value}
	case string:
		return &object.String{Value: value}
	default:
		return NIL
	}
}

// lookUpVariable reads a resolved reference at its recorded distance, and
// anything the resolver left unbound from the globals.
func (in *Interpreter) lookUpVariable(name token.Token, expr ast.Expression) (object.Object, error) {
	if distance, ok := in.locals[expr]; ok {
		if value, ok := in.env.GetAt(distance, name.Lexeme); ok {
			return value, nil
		}
	} else if value, ok := in.globals.Get(name.Lexeme); ok {
		return value, nil
	}

	return nil, newError(name, "Undefined variable '%s'.", name.Lexeme)
}

func (in *Interpreter) evalAssignExpression(expr *ast.AssignExpression) (object.Object, error) {
	value, err := in.evaluate(expr.Value)
	if err != nil {
		return nil, err
	}

	var assigned bool
	if distance, ok := in.locals[expr]; ok {
		assigned = in.env.AssignAt(distance, expr.Name.Lexeme, value)
	} else {
		assigned = in.globals.Assign(expr.Name.Lexeme, value)
	}
	if !assigned {
		return nil, newError(expr.Name, "Undefined variable '%s'.", expr.Name.Lexeme)
	}

	return value, nil
}

func evalUnaryExpression(operator token.Token, right object.Object) (object.Object, error) {
	switch operator.Type {
	case token.BANG:
		return nativeBoolToBooleanObject(!isTruthy(right)), nil
	case token.MINUS:
		number, ok := right.(*object.Number)
		if !ok {
			return nil, newError(operator, "Operand must be a number.")
		}
		return &object.Number{Value: -number.Value}, nil
	default:
		return nil, newError(operator, "Unknown operator: %s.", operator.Lexeme)
	}
}

func evalBinaryExpression(left object.Object, operator token.Token, right object.Object) (object.Object, error) {
	switch operator.Type {
	case token.EQ:
		return nativeBoolToBooleanObject(isEqual(left, right)), nil
	case token.NOT_EQ:
		return nativeBoolToBooleanObject(!isEqual(left, right)), nil
	case token.PLUS:
		if l, ok := left.(*object.String); ok {
			if r, ok := right.(*object.String); ok {
				return &object.String{Value: l.Value + r.Value}, nil
			}
		}
		l, lok := left.(*object.Number)
		r, rok := right.(*object.Number)
		if !lok || !rok {
			return nil, newError(operator, "Operands must be two numbers or two strings.")
		}
		return &object.Number{Value: l.Value + r.Value}, nil
	}

	l, lok := left.(*object.Number)
	r, rok := right.(*object.Number)
	if !lok || !rok {
		return nil, newError(operator, "Operands must be numbers.")
	}
	return evalNumberInfixExpression(l.Value, operator, r.Value)
}

func evalNumberInfixExpression(leftValue float64, operator token.Token, rightValue float64) (object.Object, error) {
	switch operator.Type {
	case token.MINUS:
		return &object.Number{Value: leftValue - rightValue}, nil
	case token.ASTERISK:
		return &object.Number{Value: leftValue * rightValue}, nil
	case token.SLASH:
		return &object.Number{Value: leftValue / rightValue}, nil
	case token.LT:
		return nativeBoolToBooleanObject(leftValue < rightValue), nil
	case token.LT_EQ:
		return nativeBoolToBooleanObject(leftValue <= rightValue), nil
	case token.GT:
		return nativeBoolToBooleanObject(leftValue > rightValue), nil
	case token.GT_EQ:
		return nativeBoolToBooleanObject(leftValue >= rightValue), nil
	default:
		return nil, newError(operator, "Unknown operator: %s.", operator.Lexeme)
	}
}

// evalLogicalExpression returns one of its operands, not a boolean.
func (in *Interpreter) evalLogicalExpression(expr *ast.LogicalExpression) (object.Object, error) {
	left, err := in.evaluate(expr.Left)
	if err != nil {
		return nil, err
	}

	if expr.Operator.Type == token.OR {
		if isTruthy(left) {
			return left, nil
		}
	} else if !isTruthy(left) {
		return left, nil
	}

	return in.evaluate(expr.Right)
}

func (in *Interpreter) evalGetExpression(expr *ast.GetExpression) (object.Object, error) {
	obj, err := in.evaluate(expr.Object)
	if err != nil {
		return nil, err
	}

	instance, ok := obj.(*object.Instance)
	if !ok {
		return nil, newError(expr.Name, "Only instances have properties.")
	}

	value, ok := instance.Get(expr.Name.Lexeme)
	if !ok {
		return nil, newError(expr.Name, "Undefined property '%s'.", expr.Name.Lexeme)
	}
	return value, nil
}

func (in *Interpreter) evalSetExpression(expr *ast.SetExpression) (object.Object, error) {
	obj, err := in.evaluate(expr.Object)
	if err != nil {
		return nil, err
	}

	instance, ok := obj.(*object.Instance)
	if !ok {
		return nil, newError(expr.Name, "Only instances have fields.")
	}

	value, err := in.evaluate(expr.Value)
	if err != nil {
		return nil, err
	}
	instance.Set(expr.Name.Lexeme, value)

	return value, nil
}

// evalSuperExpression starts the method search at the superclass of the
// class whose body contains the expression, not at the class of "this".
func (in *Interpreter) evalSuperExpression(expr *ast.SuperExpression) (object.Object, error) {
	distance, ok := in.locals[expr]
	if !ok {
		return nil, newError(expr.Token, "Can't use 'super' outside of a class.")
	}

	value, _ := in.env.GetAt(distance, "super")
	superclass, ok := value.(*object.Class)
	if !ok {
		return nil, newError(expr.Token, "Superclass must be a class.")
	}

	// "this" is always bound one scope inside "super"
	value, _ = in.env.GetAt(distance-1, "this")
	instance, ok := value.(*object.Instance)
	if !ok {
		return nil, newError(expr.Token, "Can't use 'super' outside of a method.")
	}

	method, ok := superclass.FindMethod(expr.Method.Lexeme)
	if !ok {
		return nil, newError(expr.Method, "Undefined property '%s'.", expr.Method.Lexeme)
	}

	return method.Bind(instance), nil
}

func nativeBoolToBooleanObject(input bool) *object.Boolean {
	if input {
		return TRUE
	}
	return FALSE
}

// nil and false are falsy, everything else is truthy
func isTruthy(obj object.Object) bool {
	switch obj := obj.(type) {
	case *object.Nil:
		return false
	case *object.Boolean:
		return obj.Value
	default:
		return true
	}
}

// isEqual never converts between types. Callables and instances are equal
// only to themselves.
func isEqual(left, right object.Object) bool {
	switch l := left.(type) {
	case *object.Nil:
		_, ok := right.(*object.Nil)
		return ok
	case *object.Boolean:
		r, ok := right.(*object.Boolean)
		return ok && l.Value == r.Value
	case *object.Number:
		r, ok := right.(*object.Number)
		return ok && l.Value == r.Value
	case *object.String:
		r, ok := right.(*object.String)
		return ok && l.Value == r.Value
	default:
		return left == right
	}
}

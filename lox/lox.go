// Package lox runs source text through the whole pipeline: lexer, parser,
// resolver and evaluator.
package lox

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/titivuk/golox/diag"
	"github.com/titivuk/golox/evaluator"
	"github.com/titivuk/golox/lexer"
	"github.com/titivuk/golox/parser"
	"github.com/titivuk/golox/resolver"
	"github.com/titivuk/golox/token"
)

// Status is the outcome of one Run.
type Status int

const (
	StatusOK Status = iota
	StatusStaticError
	StatusRuntimeError
)

// Exit codes used by the command line shell, following sysexits.h.
const (
	ExitOK           = 0
	ExitUsage        = 64
	ExitStaticError  = 65
	ExitRuntimeError = 70
)

// ExitCode maps s to the process exit code.
func (s Status) ExitCode() int {
	switch s {
	case StatusStaticError:
		return ExitStaticError
	case StatusRuntimeError:
		return ExitRuntimeError
	default:
		return ExitOK
	}
}

func (s Status) String() string {
	switch s {
	case StatusStaticError:
		return "static error"
	case StatusRuntimeError:
		return "runtime error"
	default:
		return "ok"
	}
}

// Runner keeps one interpreter, so globals defined by one Run are visible
// to the next.
type Runner struct {
	reporter    *diag.Reporter
	interpreter *evaluator.Interpreter
	logger      *slog.Logger
}

type Option func(*runnerConfig)

type runnerConfig struct {
	logger   *slog.Logger
	diagOpts []diag.Option
	evalOpts []evaluator.Option
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *runnerConfig) {
		c.logger = logger
	}
}

// WithDiagnosticColor wraps every diagnostic with fn before it is written.
func WithDiagnosticColor(fn func(string) string) Option {
	return func(c *runnerConfig) {
		c.diagOpts = append(c.diagOpts, diag.WithColor(fn))
	}
}

// WithClock replaces the time source of the clock builtin.
func WithClock(now func() time.Time) Option {
	return func(c *runnerConfig) {
		c.evalOpts = append(c.evalOpts, evaluator.WithClock(now))
	}
}

// NewRunner returns a Runner that prints program output to stdout and
// diagnostics to stderr.
func NewRunner(stdout, stderr io.Writer, opts ...Option) *Runner {
	c := &runnerConfig{}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	}

	evalOpts := append([]evaluator.Option{
		evaluator.WithOutput(stdout),
		evaluator.WithLogger(c.logger),
	}, c.evalOpts...)

	return &Runner{
		reporter:    diag.New(stderr, c.diagOpts...),
		interpreter: evaluator.New(evalOpts...),
		logger:      c.logger,
	}
}

// Run scans, parses, resolves and evaluates source. Nothing is evaluated if
// any earlier stage reported an error.
func (r *Runner) Run(source string) Status {
	start := time.Now()

	tokens := lexer.New(source, r.reporter).ScanTokens()
	program := parser.New(tokens, r.reporter).ParseProgram()
	if r.reporter.HadError() {
		r.logger.Debug("parse failed", "tokens", len(tokens), "diagnostics", r.reporter.Count())
		return StatusStaticError
	}

	locals := resolver.New(r.reporter).Resolve(program.Statements)
	if r.reporter.HadError() {
		r.logger.Debug("resolve failed", "diagnostics", r.reporter.Count())
		return StatusStaticError
	}
	r.logger.Debug("program ready",
		"tokens", len(tokens), "statements", len(program.Statements), "locals", len(locals),
		"elapsed", time.Since(start))

	if err := r.interpreter.Interpret(program.Statements, locals); err != nil {
		var rerr *evaluator.RuntimeError
		if errors.As(err, &rerr) {
			r.reporter.RuntimeError(rerr.Token.Line, rerr.Message)
		} else {
			r.reporter.RuntimeError(0, err.Error())
		}
		return StatusRuntimeError
	}

	r.logger.Debug("run finished", "elapsed", time.Since(start))
	return StatusOK
}

// Reset clears the error flags left by the previous Run and keeps every
// global binding.
func (r *Runner) Reset() {
	r.reporter.Reset()
}

// Interpreter exposes the interpreter shared by every Run.
func (r *Runner) Interpreter() *evaluator.Interpreter {
	return r.interpreter
}

// Tokens scans source without parsing it. Scan errors are reported as usual.
func (r *Runner) Tokens(source string) []token.Token {
	return lexer.New(source, r.reporter).ScanTokens()
}

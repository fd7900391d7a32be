// Package diag collects static and runtime diagnostics for one pipeline run.
//
// A Reporter is threaded through the lexer, parser, resolver and evaluator
// instead of process-wide flags. The driver inspects it between stages.
package diag

import (
	"fmt"
	"io"

	"github.com/titivuk/golox/token"
)

// Reporter formats diagnostics onto a writer and remembers whether any were
// static (scan, parse, resolve) or runtime errors.
type Reporter struct {
	w               io.Writer
	colorize        func(string) string
	hadError        bool
	hadRuntimeError bool
	count           int
}

type Option func(*Reporter)

// WithColor wraps every formatted diagnostic with fn before it is written.
func WithColor(fn func(string) string) Option {
	return func(r *Reporter) {
		r.colorize = fn
	}
}

func New(w io.Writer, opts ...Option) *Reporter {
	r := &Reporter{w: w}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Error reports a scan-level error that has no token to point at.
func (r *Reporter) Error(line int, message string) {
	r.report(line, "", message)
}

// TokenError reports a static error located at tok.
func (r *Reporter) TokenError(tok token.Token, message string) {
	if tok.Type == token.EOF {
		r.report(tok.Line, " at end", message)
		return
	}
	r.report(tok.Line, fmt.Sprintf(" at '%s'", tok.Lexeme), message)
}

// RuntimeError reports an error that aborted evaluation.
func (r *Reporter) RuntimeError(line int, message string) {
	r.write(fmt.Sprintf("%s\n[line %d]", message, line))
	r.hadRuntimeError = true
	r.count++
}

func (r *Reporter) report(line int, where, message string) {
	r.write(fmt.Sprintf("[line %d] Error%s: %s", line, where, message))
	r.hadError = true
	r.count++
}

func (r *Reporter) write(msg string) {
	if r.colorize != nil {
		msg = r.colorize(msg)
	}
	fmt.Fprintln(r.w, msg)
}

func (r *Reporter) HadError() bool        { return r.hadError }
func (r *Reporter) HadRuntimeError() bool { return r.hadRuntimeError }

// Count is the number of diagnostics written since the last Reset.
func (r *Reporter) Count() int { return r.count }

// Reset clears the error flags. Interactive sessions call it between lines.
func (r *Reporter) Reset() {
	r.hadError = false
	r.hadRuntimeError = false
	r.count = 0
}

// Package errors defines the diagnostic error type shared by every compiler
// phase, modeled on cuelang.org/go/cue/errors: a Message carries a
// format string plus args so that printing can be deferred (and, in
// principle, localized), and a List accumulates every error a phase finds
// instead of aborting on the first one.
package errors

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/whzard/punybuf/internal/token"
)

// Severity classifies an info panel attached to an Error, per spec §7.
type Severity int

const (
	Fatal Severity = iota
	Warning
	Tip
	Info
)

func (s Severity) String() string {
	switch s {
	case Fatal:
		return "error"
	case Warning:
		return "warning"
	case Tip:
		return "tip"
	default:
		return "info"
	}
}

// Panel is one extended-explanation entry rendered before or after an
// Error's primary message.
type Panel struct {
	Content  string
	Span     token.Span
	Severity Severity
}

// Message is an error format string plus its substitution arguments. It is
// the piece every concrete error type in this module embeds.
type Message struct {
	format string
	args   []interface{}
}

func NewMessage(format string, args []interface{}) Message {
	return Message{format: format, args: args}
}

func (m Message) Msg() (string, []interface{}) { return m.format, m.args }

func (m Message) Error() string { return fmt.Sprintf(m.format, m.args...) }

// Error is the interface every diagnostic in this repository satisfies.
type Error interface {
	error
	Position() token.Span
	InputPositions() []token.Span
	Path() []string
	Panels() []Panel
	Severity() Severity
}

// baseError is the concrete Error used by every phase; phases construct it
// through Newf/Wrapf rather than embedding Message directly, which keeps the
// Path/Panel bookkeeping in one place.
type baseError struct {
	Message
	span     token.Span
	inputs   []token.Span
	path     []string
	panels   []Panel
	wrapped  error
	severity Severity
}

var _ Error = (*baseError)(nil)

func (e *baseError) Position() token.Span         { return e.span }
func (e *baseError) InputPositions() []token.Span { return e.inputs }
func (e *baseError) Path() []string                { return e.path }
func (e *baseError) Panels() []Panel               { return e.panels }
func (e *baseError) Severity() Severity             { return e.severity }

func (e *baseError) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("%s: %s", e.Message.Error(), e.wrapped.Error())
	}
	return e.Message.Error()
}

func (e *baseError) Unwrap() error { return e.wrapped }

// Newf builds a new diagnostic anchored at span.
func Newf(span token.Span, format string, args ...interface{}) Error {
	return &baseError{Message: NewMessage(format, args), span: span}
}

// WithPanels attaches info panels (rendered before/after the primary
// message) and returns the same error for chaining.
func WithPanels(err Error, panels ...Panel) Error {
	b, ok := err.(*baseError)
	if !ok {
		b = &baseError{Message: NewMessage(err.Error(), nil), span: err.Position(), inputs: err.InputPositions(), path: err.Path()}
	}
	b.panels = append(b.panels, panels...)
	return b
}

// WithSeverity overrides the default Fatal severity of err (e.g. include-
// cycle diagnostics are Warning, not Fatal, per spec §4.1/§7) and returns
// the same error for chaining.
func WithSeverity(err Error, sev Severity) Error {
	b, ok := err.(*baseError)
	if !ok {
		b = &baseError{Message: NewMessage(err.Error(), nil), span: err.Position(), inputs: err.InputPositions(), path: err.Path()}
	}
	b.severity = sev
	return b
}

// WithPath attaches a path (e.g. the declaration/field names leading to the
// error) and returns the same error for chaining.
func WithPath(err Error, path ...string) Error {
	b, ok := err.(*baseError)
	if !ok {
		b = &baseError{Message: NewMessage(err.Error(), nil), span: err.Position(), inputs: err.InputPositions()}
	}
	b.path = append(b.path, path...)
	return b
}

// Wrapf wraps a lower-level error (typically an I/O failure) with a span and
// message, keeping the original error reachable through errors.Unwrap.
func Wrapf(span token.Span, wrapped error, format string, args ...interface{}) Error {
	return &baseError{Message: NewMessage(format, args), span: span, wrapped: wrapped}
}

// List accumulates zero or more Errors found in a single compiler phase. A
// nil *List reads as a valid, empty error list (Errs, Len, HasFatal and
// AsError accept it), and Append allocates a List when given nil; Add needs
// a non-nil receiver.
type List struct {
	errs []Error
}

func (l *List) Add(err Error) {
	if err == nil {
		return
	}
	l.errs = append(l.errs, err)
}

// Append merges a into l, flattening nested Lists. Mirrors errors.Append in
// cue/errors: it is safe to call with a nil receiver or nil argument.
func Append(l *List, err error) *List {
	if err == nil {
		return l
	}
	if l == nil {
		l = &List{}
	}
	switch e := err.(type) {
	case *List:
		l.errs = append(l.errs, e.errs...)
	case Error:
		l.errs = append(l.errs, e)
	default:
		l.errs = append(l.errs, Newf(token.NoSpan, "%s", e.Error()))
	}
	return l
}

func (l *List) Errs() []Error {
	if l == nil {
		return nil
	}
	return l.errs
}

func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.errs)
}

// Sanitize sorts errors by position and removes exact-duplicate messages at
// the same span, the way a diagnostic pass that revisits the same node from
// multiple angles (e.g. alias-chain validation) would otherwise double-report.
func (l *List) Sanitize() *List {
	if l == nil || len(l.errs) == 0 {
		return l
	}
	sort.SliceStable(l.errs, func(i, j int) bool {
		return l.errs[i].Position().String() < l.errs[j].Position().String()
	})
	out := l.errs[:0:0]
	seen := make(map[string]bool, len(l.errs))
	for _, e := range l.errs {
		key := e.Position().String() + "|" + e.Error()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, e)
	}
	return &List{errs: out}
}

func (l *List) Error() string {
	var buf bytes.Buffer
	for i, e := range l.Errs() {
		if i > 0 {
			buf.WriteByte('\n')
		}
		fmt.Fprintf(&buf, "%s: %s", e.Position(), e.Error())
	}
	return buf.String()
}

// HasFatal reports whether l contains at least one Fatal-severity
// diagnostic; Warning/Tip/Info entries (e.g. a skipped repeated include)
// are informational and never by themselves fail a compile.
func (l *List) HasFatal() bool {
	for _, e := range l.Errs() {
		if e.Severity() == Fatal {
			return true
		}
	}
	return false
}

// AsError returns nil if l has no fatal (Fatal-severity) diagnostics, or l
// itself (as error) otherwise, so callers can write `return errs.AsError()`
// unconditionally even when l also carries warnings.
func (l *List) AsError() error {
	if !l.HasFatal() {
		return nil
	}
	return l
}

/*
Copyright © 2024 Jeff Berkowitz (pdxjjb@gmail.com)

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU Affero General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU Affero General Public License for more details.

You should have received a copy of the GNU Affero General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/

// Package diag is the compiler's diagnostic sink: it formats errors,
// warnings, and debug traces prefixed by the current source line, the
// way the original tracer in the C source (trace_error/trace_warn/
// trace_debug) did. It is abstracted behind this narrow interface so
// the lexer, parser, and emitter never hardcode an output stream.
package diag

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Kind classifies why a diagnostic was raised. It mirrors the error
// taxonomy of the specification: every error the compiler returns can
// be traced back to exactly one of these.
type Kind int

const (
	InvalidArgument Kind = iota
	OutOfMemory
	UnexpectedEOF
	UnexpectedToken
	UndefinedReference
	ScopeViolation
	ScopeOverflow
	IOFailure
	BadAST
)

func (k Kind) String() string {
	switch k {
	case InvalidArgument:
		return "invalid-argument"
	case OutOfMemory:
		return "out-of-memory"
	case UnexpectedEOF:
		return "unexpected-eof"
	case UnexpectedToken:
		return "unexpected-token"
	case UndefinedReference:
		return "undefined-reference"
	case ScopeViolation:
		return "scope-violation"
	case ScopeOverflow:
		return "scope-overflow"
	case IOFailure:
		return "io-failure"
	case BadAST:
		return "bad-ast"
	default:
		return "unknown"
	}
}

// Error is a diagnostic bound to a specific Kind and source line. It
// implements the error interface so it can flow through ordinary Go
// error-handling, while still letting callers recover Kind via
// errors.As when they need to branch on it (e.g. in tests).
type Error struct {
	Kind Kind
	Line int
	Msg  string
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
	}
	return e.Msg
}

// Sink is the compiler's tracer. source is the path reported in
// structured fields; line is supplied per call because the current
// line advances as the lexer consumes bytes.
type Sink struct {
	log    *logrus.Logger
	source string
}

// New creates a Sink that writes structured, line-prefixed diagnostics
// for the given source path.
func New(source string) *Sink {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
		DisableColors:    true,
	})
	return &Sink{log: log, source: source}
}

// Errorf reports an error at the given line and returns it as an
// *Error so the caller can propagate it up through the pipeline.
func (s *Sink) Errorf(kind Kind, line int, format string, args ...any) *Error {
	msg := fmt.Sprintf(format, args...)
	e := &Error{Kind: kind, Line: line, Msg: msg}
	s.log.WithFields(logrus.Fields{
		"source": s.source,
		"line":   line,
		"kind":   kind.String(),
	}).Error(msg)
	return e
}

// Warnf reports a warning. Warnings are hints and never terminate
// compilation on their own.
func (s *Sink) Warnf(line int, format string, args ...any) {
	s.log.WithFields(logrus.Fields{
		"source": s.source,
		"line":   line,
	}).Warn(fmt.Sprintf(format, args...))
}

// Debugf reports a debug trace, e.g. the token stream as it's scanned.
func (s *Sink) Debugf(line int, format string, args ...any) {
	s.log.WithFields(logrus.Fields{
		"source": s.source,
		"line":   line,
	}).Debug(fmt.Sprintf(format, args...))
}

// SetDebug toggles debug-level tracing on or off.
func (s *Sink) SetDebug(on bool) {
	if on {
		s.log.SetLevel(logrus.DebugLevel)
	} else {
		s.log.SetLevel(logrus.InfoLevel)
	}
}

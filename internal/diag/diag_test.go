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

package diag

import (
	"bytes"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSink() (*Sink, *bytes.Buffer) {
	s := New("test.gup")
	var buf bytes.Buffer
	s.log.SetOutput(&buf)
	return s, &buf
}

func TestKindString(t *testing.T) {
	cases := map[Kind]string{
		InvalidArgument:    "invalid-argument",
		OutOfMemory:        "out-of-memory",
		UnexpectedEOF:      "unexpected-eof",
		UnexpectedToken:    "unexpected-token",
		UndefinedReference: "undefined-reference",
		ScopeViolation:     "scope-violation",
		ScopeOverflow:      "scope-overflow",
		IOFailure:          "io-failure",
		BadAST:             "bad-ast",
		Kind(99):           "unknown",
	}
	for kind, want := range cases {
		assert.Equal(t, want, kind.String())
	}
}

func TestErrorFormatsWithAndWithoutLine(t *testing.T) {
	withLine := &Error{Kind: UnexpectedToken, Line: 12, Msg: "bad token"}
	assert.Equal(t, "line 12: bad token", withLine.Error())

	noLine := &Error{Kind: IOFailure, Line: 0, Msg: "could not open file"}
	assert.Equal(t, "could not open file", noLine.Error())
}

func TestErrorfReturnsTypedErrorAndLogs(t *testing.T) {
	s, buf := newTestSink()

	err := s.Errorf(UndefinedReference, 7, "unknown symbol %q", "foo")
	require.NotNil(t, err)
	assert.Equal(t, UndefinedReference, err.Kind)
	assert.Equal(t, 7, err.Line)
	assert.Contains(t, err.Msg, "foo")

	var derr *Error
	assert.True(t, errors.As(error(err), &derr))
	assert.Equal(t, UndefinedReference, derr.Kind)

	assert.Contains(t, buf.String(), "undefined-reference")
	assert.Contains(t, buf.String(), "foo")
}

func TestWarnfAndDebugfDoNotPanic(t *testing.T) {
	s, buf := newTestSink()
	s.Warnf(3, "missing a semicolon?")
	assert.Contains(t, buf.String(), "missing a semicolon?")

	buf.Reset()
	s.SetDebug(false)
	s.Debugf(1, "should not appear at info level")
	assert.Empty(t, buf.String())

	s.SetDebug(true)
	s.Debugf(1, "token=%s", "IDENT")
	assert.Contains(t, buf.String(), "token=IDENT")
}

func TestSetDebugTogglesLevel(t *testing.T) {
	s, _ := newTestSink()
	s.SetDebug(true)
	assert.Equal(t, logrus.DebugLevel, s.log.GetLevel())
	s.SetDebug(false)
	assert.Equal(t, logrus.InfoLevel, s.log.GetLevel())
}

// This file is part of Scrim.
//
// Scrim is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Scrim is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Scrim.  If not, see <https://www.gnu.org/licenses/>.

package logger_test

import (
	"strings"
	"testing"

	"github.com/scrimgui/scrim/logger"
	"github.com/scrimgui/scrim/test"
)

func TestLog(t *testing.T) {
	logger.Clear()

	s := &strings.Builder{}
	logger.Write(s)
	test.Equate(t, s.String(), "")

	logger.Log("test", "this is a test")
	s.Reset()
	logger.Write(s)
	test.Equate(t, s.String(), "test: this is a test\n")

	logger.Logf("test", "this is test %d", 2)
	s.Reset()
	logger.Write(s)
	test.Equate(t, s.String(), "test: this is a test\ntest: this is test 2\n")

	logger.Clear()
	s.Reset()
	logger.Write(s)
	test.Equate(t, s.String(), "")
}

func TestRepeatFolding(t *testing.T) {
	logger.Clear()

	logger.Log("gl", "vendor: test")
	logger.Log("gl", "vendor: test")
	logger.Log("gl", "vendor: test")

	s := &strings.Builder{}
	logger.Write(s)
	test.Equate(t, s.String(), "gl: vendor: test (repeat x3)\n")

	// a different entry breaks the fold
	logger.Log("gl", "renderer: test")
	s.Reset()
	logger.Write(s)
	test.Equate(t, s.String(), "gl: vendor: test (repeat x3)\ngl: renderer: test\n")
}

func TestTail(t *testing.T) {
	logger.Clear()

	logger.Log("test", "a")
	logger.Log("test", "b")
	logger.Log("test", "c")

	s := &strings.Builder{}
	logger.Tail(s, 2)
	test.Equate(t, s.String(), "test: b\ntest: c\n")

	// tail longer than the log is capped
	s.Reset()
	logger.Tail(s, 100)
	test.Equate(t, s.String(), "test: a\ntest: b\ntest: c\n")
}

func TestEcho(t *testing.T) {
	logger.Clear()

	s := &strings.Builder{}
	logger.SetEcho(s)
	defer logger.SetEcho(nil)

	logger.Log("test", "echoed")
	test.Equate(t, s.String(), "test: echoed\n")
}

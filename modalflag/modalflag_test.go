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

package modalflag_test

import (
	"testing"

	"github.com/scrimgui/scrim/modalflag"
	"github.com/scrimgui/scrim/test"
)

func TestNoModes(t *testing.T) {
	md := modalflag.Modes{}
	md.NewArgs([]string{})

	r, err := md.Parse()
	test.ExpectedSuccess(t, err)
	test.Equate(t, int(r), int(modalflag.ParseContinue))
	test.Equate(t, md.Mode(), "")
}

func TestDefaultSubMode(t *testing.T) {
	md := modalflag.Modes{}
	md.NewArgs([]string{})
	md.AddSubModes("run", "version")

	r, err := md.Parse()
	test.ExpectedSuccess(t, err)
	test.Equate(t, int(r), int(modalflag.ParseContinue))
	test.Equate(t, md.Mode(), "RUN")
}

func TestSubModeSelection(t *testing.T) {
	md := modalflag.Modes{}
	md.NewArgs([]string{"version"})
	md.AddSubModes("run", "version")

	r, err := md.Parse()
	test.ExpectedSuccess(t, err)
	test.Equate(t, int(r), int(modalflag.ParseContinue))

	// sub-mode comparison is case insensitive
	test.Equate(t, md.Mode(), "VERSION")
	test.Equate(t, md.Path(), "VERSION")
}

func TestFlags(t *testing.T) {
	md := modalflag.Modes{}
	md.NewArgs([]string{"run", "-fullscreen", "extra"})
	md.AddSubModes("run", "version")

	r, err := md.Parse()
	test.ExpectedSuccess(t, err)
	test.Equate(t, int(r), int(modalflag.ParseContinue))
	test.Equate(t, md.Mode(), "RUN")

	md.NewMode()
	fullscreen := md.AddBool("fullscreen", false, "run fullscreen")

	r, err = md.Parse()
	test.ExpectedSuccess(t, err)
	test.Equate(t, int(r), int(modalflag.ParseContinue))
	test.Equate(t, *fullscreen, true)
	test.Equate(t, len(md.RemainingArgs()), 1)
	test.Equate(t, md.GetArg(0), "extra")
}

func TestUnrecognisedFlag(t *testing.T) {
	md := modalflag.Modes{}
	md.NewArgs([]string{"-no-such-flag"})

	r, err := md.Parse()
	test.ExpectedFailure(t, err)
	test.Equate(t, int(r), int(modalflag.ParseError))
}

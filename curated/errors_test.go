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

package curated_test

import (
	"errors"
	"testing"

	"github.com/scrimgui/scrim/curated"
	"github.com/scrimgui/scrim/test"
)

func TestDeduplication(t *testing.T) {
	e := curated.Errorf("overlay: %v", curated.Errorf("overlay: %v", errors.New("device lost")))
	test.Equate(t, e.Error(), "overlay: device lost")

	// different adjacent parts are not removed
	f := curated.Errorf("overlay: %v", curated.Errorf("d3d9: %v", errors.New("device lost")))
	test.Equate(t, f.Error(), "overlay: d3d9: device lost")
}

func TestIsHas(t *testing.T) {
	const pattern = "gl: %v"

	e := curated.Errorf(pattern, errors.New("shader compilation failed"))
	test.ExpectedSuccess(t, curated.IsAny(e))
	test.ExpectedSuccess(t, curated.Is(e, pattern))

	// wrapped: Is() fails but Has() succeeds
	f := curated.Errorf("overlay: %v", e)
	test.ExpectedFailure(t, curated.Is(f, pattern))
	test.ExpectedSuccess(t, curated.Has(f, pattern))

	// plain errors are never curated
	g := errors.New("plain")
	test.ExpectedFailure(t, curated.IsAny(g))
	test.ExpectedFailure(t, curated.Is(g, pattern))
	test.ExpectedFailure(t, curated.Has(g, pattern))

	// nil is handled
	test.ExpectedFailure(t, curated.IsAny(nil))
}

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

package prefs_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/scrimgui/scrim/prefs"
	"github.com/scrimgui/scrim/test"
)

func tmpPrefsFile(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "scrim_prefs_test")
}

func cmpFile(t *testing.T, fn string, expected string) {
	t.Helper()

	data, err := os.ReadFile(fn)
	if err != nil {
		t.Fatalf("error reading prefs file: %v", err)
	}

	expected = fmt.Sprintf("%s\n%s", prefs.WarningBoilerPlate, expected)
	test.Equate(t, string(data), expected)
}

func TestBool(t *testing.T) {
	fn := tmpPrefsFile(t)

	dsk, err := prefs.NewDisk(fn)
	test.ExpectedSuccess(t, err)

	var v prefs.Bool
	var w prefs.Bool
	test.ExpectedSuccess(t, dsk.Add("overlay.captured", &v))
	test.ExpectedSuccess(t, dsk.Add("overlay.fps", &w))

	test.ExpectedSuccess(t, v.Set(true))
	test.ExpectedSuccess(t, w.Set("foo"))
	test.Equate(t, v.Get().(bool), true)
	test.Equate(t, w.Get().(bool), false)

	test.ExpectedSuccess(t, dsk.Save())
	cmpFile(t, fn, "overlay.captured :: true\noverlay.fps :: false\n")

	// alter values then load saved values from disk
	test.ExpectedSuccess(t, v.Set(false))
	test.ExpectedSuccess(t, dsk.Load(false))
	test.Equate(t, v.Get().(bool), true)
}

func TestIntAndFloat(t *testing.T) {
	fn := tmpPrefsFile(t)

	dsk, err := prefs.NewDisk(fn)
	test.ExpectedSuccess(t, err)

	var i prefs.Int
	var f prefs.Float
	test.ExpectedSuccess(t, dsk.Add("overlay.swapInterval", &i))
	test.ExpectedSuccess(t, dsk.Add("overlay.scale", &f))

	test.ExpectedSuccess(t, i.Set(2))
	test.ExpectedSuccess(t, f.Set(1.5))

	// strings are parsed
	test.ExpectedSuccess(t, i.Set("3"))
	test.Equate(t, i.Get().(int), 3)
	test.ExpectedFailure(t, i.Set("three"))

	test.ExpectedSuccess(t, dsk.Save())

	test.ExpectedSuccess(t, i.Set(0))
	test.ExpectedSuccess(t, f.Set(0.0))
	test.ExpectedSuccess(t, dsk.Load(false))
	test.Equate(t, i.Get().(int), 3)
	test.Equate(t, f.Get().(float64), 1.5)
}

func TestDuplicateKeys(t *testing.T) {
	dsk, err := prefs.NewDisk(tmpPrefsFile(t))
	test.ExpectedSuccess(t, err)

	var v prefs.Bool
	var w prefs.Bool
	test.ExpectedSuccess(t, dsk.Add("overlay.captured", &v))
	test.ExpectedFailure(t, dsk.Add("overlay.captured", &w))
	test.ExpectedSuccess(t, dsk.HasEntry("overlay.captured"))
	test.ExpectedFailure(t, dsk.HasEntry("overlay.missing"))
}

func TestForeignEntriesSurviveSave(t *testing.T) {
	fn := tmpPrefsFile(t)

	// first disk instance with its own entry
	dskA, err := prefs.NewDisk(fn)
	test.ExpectedSuccess(t, err)
	var a prefs.String
	test.ExpectedSuccess(t, dskA.Add("a.key", &a))
	test.ExpectedSuccess(t, a.Set("alpha"))
	test.ExpectedSuccess(t, dskA.Save())

	// second disk instance on the same file must not destroy the first
	// instance's entry
	dskB, err := prefs.NewDisk(fn)
	test.ExpectedSuccess(t, err)
	var b prefs.String
	test.ExpectedSuccess(t, dskB.Add("b.key", &b))
	test.ExpectedSuccess(t, b.Set("beta"))
	test.ExpectedSuccess(t, dskB.Save())

	cmpFile(t, fn, "a.key :: alpha\nb.key :: beta\n")
}

func TestHook(t *testing.T) {
	var v prefs.Bool

	count := 0
	v.SetHookPost(func(_ prefs.Value) error {
		count++
		return nil
	})

	test.ExpectedSuccess(t, v.Set(true))
	test.ExpectedSuccess(t, v.Set(false))
	test.Equate(t, count, 2)
}

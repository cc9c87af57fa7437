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

package overlay

import (
	"github.com/scrimgui/scrim/curated"
	"github.com/scrimgui/scrim/prefs"
	"github.com/scrimgui/scrim/resources"
	"github.com/veandco/go-sdl2/sdl"
)

const prefsFile = "overlay.prefs"

type preferences struct {
	ov  *Overlay
	dsk *prefs.Disk

	// how the frame rate is limited. one of the sync values defined in
	// platform.go
	swapInterval prefs.Int

	// whether the window is fullscreen. has no effect on foreign windows,
	// those belong to the host
	fullScreen prefs.Bool
}

func newPreferences(ov *Overlay) (*preferences, error) {
	p := &preferences{ov: ov}

	// setup preferences
	pth, err := resources.JoinPath(prefsFile)
	if err != nil {
		return nil, curated.Errorf("prefs: %v", err)
	}

	p.dsk, err = prefs.NewDisk(pth)
	if err != nil {
		return nil, curated.Errorf("prefs: %v", err)
	}

	err = p.dsk.Add("overlay.swapInterval", &p.swapInterval)
	if err != nil {
		return nil, err
	}
	p.swapInterval.SetHookPost(func(v prefs.Value) error {
		ov.plt.setSwapInterval(v.(int))
		return nil
	})

	err = p.dsk.Add("overlay.fullScreen", &p.fullScreen)
	if err != nil {
		return nil, err
	}
	p.fullScreen.SetHookPost(func(v prefs.Value) error {
		if ov.plt.foreign {
			return nil
		}
		if v.(bool) {
			ov.plt.window.SetFullscreen(sdl.WINDOW_FULLSCREEN_DESKTOP)
		} else {
			ov.plt.window.SetFullscreen(0)
		}
		return nil
	})

	err = p.swapInterval.Set(syncWithVerticalRetrace)
	if err != nil {
		return nil, err
	}

	err = p.dsk.Load(true)
	if err != nil {
		return nil, err
	}

	return p, nil
}

func (p *preferences) save() error {
	return p.dsk.Save()
}

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
	"github.com/scrimgui/scrim/logger"
	"github.com/veandco/go-sdl2/sdl"
)

// clipboard connects the imgui io system to the system clipboard, allowing
// cut and paste between GUI text widgets and other applications.
// implements the imgui.Clipboard interface.
type clipboard struct{}

func (cb *clipboard) Text() (string, error) {
	return sdl.GetClipboardText()
}

func (cb *clipboard) SetText(text string) {
	err := sdl.SetClipboardText(text)
	if err != nil {
		logger.Logf("sdl", "clipboard: %s", err.Error())
	}
}

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
	"github.com/inkyblackness/imgui-go/v4"
	"github.com/veandco/go-sdl2/sdl"
)

// setKeyMapping maps SDL scancodes to the imgui key identifiers. keyboard
// events forward the scancode to the imgui io system and this mapping lets
// imgui recognise the special keys.
func (plt *platform) setKeyMapping() {
	io := imgui.CurrentIO()

	io.KeyMap(imgui.KeyTab, sdl.SCANCODE_TAB)
	io.KeyMap(imgui.KeyLeftArrow, sdl.SCANCODE_LEFT)
	io.KeyMap(imgui.KeyRightArrow, sdl.SCANCODE_RIGHT)
	io.KeyMap(imgui.KeyUpArrow, sdl.SCANCODE_UP)
	io.KeyMap(imgui.KeyDownArrow, sdl.SCANCODE_DOWN)
	io.KeyMap(imgui.KeyPageUp, sdl.SCANCODE_PAGEUP)
	io.KeyMap(imgui.KeyPageDown, sdl.SCANCODE_PAGEDOWN)
	io.KeyMap(imgui.KeyHome, sdl.SCANCODE_HOME)
	io.KeyMap(imgui.KeyEnd, sdl.SCANCODE_END)
	io.KeyMap(imgui.KeyInsert, sdl.SCANCODE_INSERT)
	io.KeyMap(imgui.KeyDelete, sdl.SCANCODE_DELETE)
	io.KeyMap(imgui.KeyBackspace, sdl.SCANCODE_BACKSPACE)
	io.KeyMap(imgui.KeySpace, sdl.SCANCODE_SPACE)
	io.KeyMap(imgui.KeyEnter, sdl.SCANCODE_RETURN)
	io.KeyMap(imgui.KeyEscape, sdl.SCANCODE_ESCAPE)
	io.KeyMap(imgui.KeyA, sdl.SCANCODE_A)
	io.KeyMap(imgui.KeyC, sdl.SCANCODE_C)
	io.KeyMap(imgui.KeyV, sdl.SCANCODE_V)
	io.KeyMap(imgui.KeyX, sdl.SCANCODE_X)
	io.KeyMap(imgui.KeyY, sdl.SCANCODE_Y)
	io.KeyMap(imgui.KeyZ, sdl.SCANCODE_Z)
}

// updateKeyModifier tells imgui which modifier keys are currently held.
// called after every keyboard event.
func (ov *Overlay) updateKeyModifier() {
	ov.io.KeyShift(int(sdl.SCANCODE_LSHIFT), int(sdl.SCANCODE_RSHIFT))
	ov.io.KeyCtrl(int(sdl.SCANCODE_LCTRL), int(sdl.SCANCODE_RCTRL))
	ov.io.KeyAlt(int(sdl.SCANCODE_LALT), int(sdl.SCANCODE_RALT))
	ov.io.KeySuper(int(sdl.SCANCODE_LGUI), int(sdl.SCANCODE_RGUI))
}

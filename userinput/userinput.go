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

package userinput

// Event represents the possible type of user input events. A received Event
// should be checked against the event types below with a type switch.
type Event interface{}

// EventQuit is sent when the user requests the program ends, by closing the
// window for example.
type EventQuit struct{}

// MouseButton identifies the mouse button in an EventMouseButton.
type MouseButton int

// List of valid MouseButton values.
const (
	MouseButtonNone MouseButton = iota
	MouseButtonLeft
	MouseButtonRight
	MouseButtonMiddle
	MouseButtonX1
	MouseButtonX2
)

func (b MouseButton) String() string {
	switch b {
	case MouseButtonLeft:
		return "left"
	case MouseButtonRight:
		return "right"
	case MouseButtonMiddle:
		return "middle"
	case MouseButtonX1:
		return "x1"
	case MouseButtonX2:
		return "x2"
	}
	return "none"
}

// KeyMod identifies the modifier key held down in an EventKeyboard.
type KeyMod int

// List of valid KeyMod values.
const (
	KeyModNone KeyMod = iota
	KeyModShift
	KeyModCtrl
	KeyModAlt
	KeyModSuper
)

// EventMouseButton is the press or release of a mouse button.
type EventMouseButton struct {
	// the position of the mouse at the time of the event. in window
	// coordinates
	X int
	Y int

	Button MouseButton
	Down   bool
}

// EventMouseMotion is the movement of the mouse over the window.
type EventMouseMotion struct {
	// position in window coordinates
	X int
	Y int

	// the distance travelled since the previous motion event
	RelX int
	RelY int
}

// EventMouseWheel is the movement of the mouse wheel (or trackpad scroll
// gesture).
type EventMouseWheel struct {
	DeltaX float32
	DeltaY float32
}

// EventKeyboard is the press or release of a keyboard key.
type EventKeyboard struct {
	// the name of the key as reported by the windowing system
	Key string

	Mod  KeyMod
	Down bool

	// true if this event is a repeat of a key that is being held down
	Repeat bool
}

// EventText is unicode text input, as opposed to the press of a physical
// key. Sent only when the GUI is not capturing the keyboard.
type EventText struct {
	Text string
}

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
	"github.com/scrimgui/scrim/logger"
	"github.com/scrimgui/scrim/userinput"
	"github.com/veandco/go-sdl2/sdl"
)

// Service performs one iteration of the overlay: the native event queue is
// drained, events are routed to the GUI or the host, the host's DrawGUI()
// is called and the frame is rendered and presented.
//
// the host should call Service() in a loop from the gui thread until
// HasQuit() returns true.
func (ov *Overlay) Service() {
	// poll for sdl event or timeout
	ev := ov.polling.wait()

	// whether mouse button down events have been polled. if it has and we
	// poll an up event in the same PollEvent() loop below, then we need to
	// "trickle" the up and down events over two frames. see commentary for
	// trickleMouseButton type
	leftMouseDownPolled := false
	rightMouseDownPolled := false

	// events the GUI does not want are forwarded to the host on the
	// userinput channel. the send is wrapped in a select block and the
	// dropped event logged in the default case
	for ; ev != nil; ev = sdl.PollEvent() {
		switch ev := ev.(type) {
		case *sdl.QuitEvent:
			ov.quit()

		case *sdl.TextInputEvent:
			if !ov.isCaptured() && ov.io.WantCaptureKeyboard() {
				ov.io.AddInputCharacters(string(ev.GetText()))
			} else {
				select {
				case ov.userinput <- userinput.EventText{Text: string(ev.GetText())}:
				default:
					logger.Log("overlay", "dropped text input event")
				}
			}

		case *sdl.KeyboardEvent:
			ov.serviceKeyboard(ev)

		case *sdl.MouseMotionEvent:
			// mouse motion is forwarded to the host from the state polled
			// at the end of the event loop. the GUI takes its own mouse
			// position from newFrame()

		case *sdl.MouseButtonEvent:
			// the button event to send
			var button userinput.MouseButton

			switch ev.Button {
			case sdl.BUTTON_LEFT:
				button = userinput.MouseButtonLeft
				switch ev.Type {
				case sdl.MOUSEBUTTONDOWN:
					leftMouseDownPolled = true
				case sdl.MOUSEBUTTONUP:
					if leftMouseDownPolled {
						ov.plt.trickleMouseButtonLeft = trickleMouseDown
					}
				}

			case sdl.BUTTON_RIGHT:
				button = userinput.MouseButtonRight
				switch ev.Type {
				case sdl.MOUSEBUTTONDOWN:
					rightMouseDownPolled = true
				case sdl.MOUSEBUTTONUP:
					if rightMouseDownPolled {
						ov.plt.trickleMouseButtonRight = trickleMouseDown
					}

					// releasing a captured mouse requires a physical click
					if ov.isCaptured() {
						ov.setCapture(false)
					}
				}

			case sdl.BUTTON_MIDDLE:
				button = userinput.MouseButtonMiddle
				if ev.Type == sdl.MOUSEBUTTONUP && ov.isCaptured() {
					ov.setCapture(false)
				}

			case sdl.BUTTON_X1:
				button = userinput.MouseButtonX1

			case sdl.BUTTON_X2:
				button = userinput.MouseButtonX2
			}

			if ov.isCaptured() || !ov.io.WantCaptureMouse() {
				select {
				case ov.userinput <- userinput.EventMouseButton{
					X:      int(ev.X),
					Y:      int(ev.Y),
					Button: button,
					Down:   ev.Type == sdl.MOUSEBUTTONDOWN}:
				default:
					if ev.Type == sdl.MOUSEBUTTONDOWN {
						logger.Log("overlay", "dropped mouse down event")
					} else {
						logger.Log("overlay", "dropped mouse up event")
					}
				}
			}

			// trigger service wake in time for next Service() iteration.
			// without this, the results of the mouse button will not be
			// seen until the timeout (in the next iteration) has elapsed.
			//
			// eg. closing a window: the window will be drawn on *this*
			// frame and *this* mouse button press will be acknowledged.
			// next frame the window will not be drawn. however, the *next*
			// frame will sleep until the time out - *this* mouse button
			// event has been consumed. calling alert() ensures there is no
			// delay in drawing the *next* frame
			ov.polling.alert()

		case *sdl.MouseWheelEvent:
			var deltaX, deltaY float32
			if ev.X > 0 {
				deltaX++
			} else if ev.X < 0 {
				deltaX--
			}
			if ev.Y > 0 {
				deltaY++
			} else if ev.Y < 0 {
				deltaY--
			}

			if !ov.isCaptured() && ov.io.WantCaptureMouse() {
				ov.io.AddMouseWheelDelta(-deltaX/4, deltaY/4)
			} else {
				select {
				case ov.userinput <- userinput.EventMouseWheel{
					DeltaX: deltaX,
					DeltaY: deltaY}:
				default:
					logger.Log("overlay", "dropped mouse wheel event")
				}
			}
		}
	}

	// mouse motion
	if ov.isCaptured() || !ov.io.WantCaptureMouse() {
		mx, my, _ := sdl.GetMouseState()
		if mx != ov.mouseX || my != ov.mouseY {
			select {
			case ov.userinput <- userinput.EventMouseMotion{
				X:    int(mx),
				Y:    int(my),
				RelX: int(mx - ov.mouseX),
				RelY: int(my - ov.mouseY),
			}:
			default:
				logger.Log("overlay", "dropped mouse motion event")
			}
			ov.mouseX = mx
			ov.mouseY = my
		}
	}

	ov.renderFrame()
}

func (ov *Overlay) renderFrame() {
	// start of a new frame
	ov.plt.newFrame()
	imgui.NewFrame()

	// the host declares its interface. when the GUI is hidden we still run
	// the imgui frame so that io state stays consistent
	if ov.guiVisible() {
		ov.host.DrawGUI()
	}

	// rendering. imgui.Render() only creates the draw data list. actual
	// rendering to the framebuffer is done by the renderer
	imgui.Render()
	ov.textures.render()
	ov.rnd.render()
	ov.textures.processFrees()
	ov.plt.postRender()
}

func (ov *Overlay) serviceKeyboard(ev *sdl.KeyboardEvent) {
	if ev.Type == sdl.KEYUP {
		switch ev.Keysym.Scancode {
		case sdl.SCANCODE_F14:
			// F14 is the scroll lock key on Apple keyboards
			fallthrough
		case sdl.SCANCODE_SCROLLLOCK:
			ov.setCapture(!ov.isCaptured())
			return

		case sdl.SCANCODE_ESCAPE:
			if ov.isCaptured() {
				ov.setCapture(false)
				return
			}
		}
	}

	// forward keypresses to userinput.Event channel if the GUI doesn't
	// want them
	if ov.isCaptured() || !ov.io.WantCaptureKeyboard() {
		mod := userinput.KeyModNone

		if sdl.GetModState()&sdl.KMOD_LALT == sdl.KMOD_LALT ||
			sdl.GetModState()&sdl.KMOD_RALT == sdl.KMOD_RALT {
			mod = userinput.KeyModAlt
		} else if sdl.GetModState()&sdl.KMOD_LSHIFT == sdl.KMOD_LSHIFT ||
			sdl.GetModState()&sdl.KMOD_RSHIFT == sdl.KMOD_RSHIFT {
			mod = userinput.KeyModShift
		} else if sdl.GetModState()&sdl.KMOD_LCTRL == sdl.KMOD_LCTRL ||
			sdl.GetModState()&sdl.KMOD_RCTRL == sdl.KMOD_RCTRL {
			mod = userinput.KeyModCtrl
		} else if sdl.GetModState()&sdl.KMOD_LGUI == sdl.KMOD_LGUI ||
			sdl.GetModState()&sdl.KMOD_RGUI == sdl.KMOD_RGUI {
			mod = userinput.KeyModSuper
		}

		switch ev.Type {
		case sdl.KEYDOWN:
			fallthrough
		case sdl.KEYUP:
			select {
			case ov.userinput <- userinput.EventKeyboard{
				Key:    sdl.GetScancodeName(ev.Keysym.Scancode),
				Down:   ev.Type == sdl.KEYDOWN,
				Mod:    mod,
				Repeat: ev.Repeat != 0,
			}:
			default:
				logger.Log("overlay", "dropped keyboard event")
			}
		}
	}

	// remaining keypresses forwarded to imgui io system. imgui handles key
	// repeat itself so repeat events are not passed on
	if ev.Repeat == 1 {
		return
	}

	switch ev.Type {
	case sdl.KEYDOWN:
		ov.io.KeyPress(int(ev.Keysym.Scancode))
		ov.updateKeyModifier()
	case sdl.KEYUP:
		ov.io.KeyRelease(int(ev.Keysym.Scancode))
		ov.updateKeyModifier()
	}
}

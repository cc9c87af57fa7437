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
	"fmt"
	"runtime"
	"time"
	"unsafe"

	"github.com/inkyblackness/imgui-go/v4"
	"github.com/scrimgui/scrim/logger"
	"github.com/veandco/go-sdl2/sdl"
)

const windowTitle = "Scrim"

type platform struct {
	ov     *Overlay
	window *sdl.Window
	mode   sdl.DisplayMode

	// whether the window was created from a native handle supplied by the
	// host. foreign windows are not destroyed with the platform
	foreign bool

	glContext sdl.GLContext

	// trickle mouse buttons
	trickleMouseButtonLeft  trickleMouseButton
	trickleMouseButtonRight trickleMouseButton

	// performance counter value at the previous newFrame(). used to supply
	// imgui with an accurate delta time
	time uint64

	// use ticker to synchronise with monitor
	syncTicker *time.Ticker
}

// trickle mouse button is a mechanism that allows a mouse button down/up
// event that occurs in the same frame to be serviced by the dear imgui io
// system
//
// as of dear imgui version 1.87 this has been solved with the
// AddMouseButtonEvent() function. we're not currently using that version of
// dear imgui but we should consider replacing this trickleMouseButton type
// if we ever move to the new version
//
// the mechanism was added to mitigate a problem with Apple "touchpads" that
// simulate mouse presses simply through touch (as opposed to clicking)
type trickleMouseButton int

// list of valid trickleMouseButton values
const (
	trickleMouseNone trickleMouseButton = 0
	trickleMouseUp   trickleMouseButton = 1
	trickleMouseDown trickleMouseButton = 2
)

// newPlatform is the preferred method of initialisation for the platform type.
func newPlatform(ov *Overlay) (*platform, error) {
	// the SDL package calls LockOSThread() but we call it here too. it can't
	// hurt and we never unlock it in any case
	runtime.LockOSThread()

	err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS)
	if err != nil {
		return nil, fmt.Errorf("sdl: %w", err)
	}

	useOpenGL := true

	switch ov.rnd.requires() {
	case requiresOpenGL32:
		err = sdl.GLSetAttribute(sdl.GL_CONTEXT_MAJOR_VERSION, 3)
		if err != nil {
			return nil, fmt.Errorf("sdl: %w", err)
		}
		err = sdl.GLSetAttribute(sdl.GL_CONTEXT_MINOR_VERSION, 2)
		if err != nil {
			return nil, fmt.Errorf("sdl: %w", err)
		}
		err = sdl.GLSetAttribute(sdl.GL_CONTEXT_FLAGS, sdl.GL_CONTEXT_FORWARD_COMPATIBLE_FLAG)
		if err != nil {
			return nil, fmt.Errorf("sdl: %w", err)
		}
		err = sdl.GLSetAttribute(sdl.GL_CONTEXT_PROFILE_MASK, sdl.GL_CONTEXT_PROFILE_CORE)
		if err != nil {
			return nil, fmt.Errorf("sdl: %w", err)
		}
	case requiresOpenGL21:
		err = sdl.GLSetAttribute(sdl.GL_CONTEXT_MAJOR_VERSION, 2)
		if err != nil {
			return nil, fmt.Errorf("sdl: %w", err)
		}
		err = sdl.GLSetAttribute(sdl.GL_CONTEXT_MINOR_VERSION, 1)
		if err != nil {
			return nil, fmt.Errorf("sdl: %w", err)
		}
	case requiresDirect3D9:
		useOpenGL = false
	}

	var sdlVersion sdl.Version
	sdl.VERSION(&sdlVersion)
	logger.Logf("sdl", "version %d.%d.%d", sdlVersion.Major, sdlVersion.Minor, sdlVersion.Patch)

	plt := &platform{
		ov: ov,
	}

	plt.mode, err = sdl.GetCurrentDisplayMode(0)
	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("sdl: %w", err)
	}
	logger.Logf("sdl", "refresh rate: %dHz", plt.mode.RefreshRate)

	// map sdl key codes to imgui codes
	plt.setKeyMapping()

	if ov.config.AttachTo != 0 {
		// the host has given us an existing native window to draw over
		plt.window, err = sdl.CreateWindowFrom(unsafe.Pointer(ov.config.AttachTo))
		if err != nil {
			sdl.Quit()
			return nil, fmt.Errorf("sdl: attaching to native window: %w", err)
		}
		plt.foreign = true
		logger.Log("sdl", "attached to native window")
	} else {
		w := ov.config.Width
		h := ov.config.Height
		if w <= 0 || h <= 0 {
			w = int32(float32(plt.mode.W) * 0.80)
			h = int32(float32(plt.mode.H) * 0.80)
		}

		title := ov.config.Title
		if title == "" {
			title = windowTitle
		}

		flags := uint32(sdl.WINDOW_ALLOW_HIGHDPI | sdl.WINDOW_RESIZABLE)
		if useOpenGL {
			flags |= sdl.WINDOW_OPENGL
		}

		plt.window, err = sdl.CreateWindow(title,
			sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
			w, h, flags)
		if err != nil {
			sdl.Quit()
			return nil, fmt.Errorf("sdl: %w", err)
		}
	}

	if useOpenGL {
		plt.glContext, err = plt.window.GLCreateContext()
		if err != nil {
			_ = plt.destroy()
			return nil, fmt.Errorf("sdl: %w", err)
		}
		err = plt.window.GLMakeCurrent(plt.glContext)
		if err != nil {
			_ = plt.destroy()
			return nil, fmt.Errorf("sdl: %w", err)
		}

		major, _ := sdl.GLGetAttribute(sdl.GL_CONTEXT_MAJOR_VERSION)
		minor, _ := sdl.GLGetAttribute(sdl.GL_CONTEXT_MINOR_VERSION)
		logger.Logf("sdl", "using GL version %d.%d", major, minor)
	}

	return plt, nil
}

// list of swap interval values. with the exception of syncTicker all of
// these are values defined and expected by the SDL.GLSetSwapInterval()
// function.
const (
	syncImmediateUpdate     = 0
	syncWithVerticalRetrace = 1
	syncAdaptive            = -1
	syncTicker              = 2
)

func (plt *platform) setSwapInterval(i int) {
	if i == syncTicker {
		// ticker to control update frequency
		d := time.Duration(1000000000/int64(plt.mode.RefreshRate)) * time.Nanosecond
		plt.syncTicker = time.NewTicker(d)

		// in reality syncTicker requires us to set GL swap interval to 0
		i = 0
	} else {
		if plt.syncTicker != nil {
			plt.syncTicker.Stop()
		}
		plt.syncTicker = nil
	}

	if plt.glContext != nil {
		err := sdl.GLSetSwapInterval(i)
		if err != nil {
			logger.Logf("sdl", "GLSetSwapInterval(%d): %s", i, err.Error())
		}
	}
}

// destroy cleans up the resources.
func (plt *platform) destroy() error {
	if plt.window != nil {
		// a window created from a host supplied handle belongs to the host
		if !plt.foreign {
			err := plt.window.Destroy()
			if err != nil {
				return err
			}
		}
		plt.window = nil
	}
	sdl.Quit()

	return nil
}

// displaySize returns the dimension of the display.
func (plt *platform) displaySize() [2]float32 {
	w, h := plt.window.GetSize()
	return [2]float32{float32(w), float32(h)}
}

// framebufferSize returns the dimension of the framebuffer.
func (plt *platform) framebufferSize() [2]float32 {
	if plt.glContext != nil {
		w, h := plt.window.GLGetDrawableSize()
		return [2]float32{float32(w), float32(h)}
	}
	w, h := plt.window.GetSize()
	return [2]float32{float32(w), float32(h)}
}

// newFrame marks the begin of a render pass. It forwards all current state
// to imgui.CurrentIO().
func (plt *platform) newFrame() {
	io := imgui.CurrentIO()

	// setup display size (every frame to accommodate for window resizing)
	displaySize := plt.displaySize()
	io.SetDisplaySize(imgui.Vec2{X: displaySize[0], Y: displaySize[1]})

	// delta time from the high resolution counter
	freq := sdl.GetPerformanceFrequency()
	now := sdl.GetPerformanceCounter()
	if plt.time > 0 {
		io.SetDeltaTime(float32(now-plt.time) / float32(freq))
	} else {
		io.SetDeltaTime(1.0 / 60.0)
	}
	plt.time = now

	// if mouse is captured by the host then do not update imgui mouse
	// information
	if !plt.ov.isCaptured() {
		// if a mouse press event came, always pass it as "mouse held this
		// frame", so we don't miss click-release events that are shorter
		// than 1 frame
		x, y, state := sdl.GetMouseState()

		io.SetMousePosition(imgui.Vec2{X: float32(x), Y: float32(y)})
		for i, button := range []uint32{sdl.BUTTON_LEFT, sdl.BUTTON_RIGHT, sdl.BUTTON_MIDDLE} {
			io.SetMouseButtonDown(i, (state&sdl.Button(button)) != 0)
		}

		// trickle event handling will supercede any previous
		// SetMouseButtonDown() calls

		switch plt.trickleMouseButtonLeft {
		case trickleMouseDown:
			io.SetMouseButtonDown(0, true)
			plt.trickleMouseButtonLeft = trickleMouseUp
		case trickleMouseUp:
			io.SetMouseButtonDown(0, false)
			plt.trickleMouseButtonLeft = trickleMouseNone
		case trickleMouseNone:
		}

		switch plt.trickleMouseButtonRight {
		case trickleMouseDown:
			io.SetMouseButtonDown(1, true)
			plt.trickleMouseButtonRight = trickleMouseUp
		case trickleMouseUp:
			io.SetMouseButtonDown(1, false)
			plt.trickleMouseButtonRight = trickleMouseNone
		case trickleMouseNone:
		}
	}
}

// postRender waits on the sync ticker (if one is in use) and asks the
// renderer to present the completed frame.
func (plt *platform) postRender() {
	if plt.syncTicker != nil {
		<-plt.syncTicker.C
	}
	plt.ov.rnd.present()
}

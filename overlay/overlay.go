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
	"image"
	"io"

	"github.com/inkyblackness/imgui-go/v4"
	"github.com/scrimgui/scrim/curated"
	"github.com/scrimgui/scrim/logger"
	"github.com/scrimgui/scrim/resources"
	"github.com/scrimgui/scrim/userinput"
	"github.com/veandco/go-sdl2/sdl"
)

// imguiIniFile is where imgui will store the coordinates of the imgui windows
const imguiIniFile = "overlay_imgui.ini"

// Host is the application the overlay is drawn on top of.
type Host interface {
	// DrawGUI is called once per frame, between imgui.NewFrame() and
	// imgui.Render(). the host declares its imgui windows and widgets here
	DrawGUI()

	// UserInput returns the channel on which the overlay forwards input
	// events that the GUI has not claimed. the channel should be buffered.
	// events that cannot be sent without blocking are dropped
	UserInput() chan userinput.Event
}

// Config modifies how the overlay is created.
type Config struct {
	// a native window handle to attach to. the zero value means the
	// overlay creates (and owns) a window of its own
	AttachTo uintptr

	// title of the created window. ignored when attaching to an existing
	// window
	Title string

	// dimensions of the created window. zero values select a size relative
	// to the desktop. ignored when attaching to an existing window
	Width  int32
	Height int32
}

// Overlay is a dear imgui interface drawn over a host application.
type Overlay struct {
	// the mechanical requirements for the gui
	io      imgui.IO
	context *imgui.Context
	plt     *platform
	rnd     renderer

	host   Host
	config Config

	// the channel on which input events are forwarded to the host. taken
	// from the host field and assigned in New()
	userinput chan userinput.Event

	// all textures except the font atlas
	textures *textureManager

	// polling encapsulates the programmatic communication to the service
	// loop. how pushed functions etc. are handled by the service loop is
	// important to the overlay's responsiveness
	polling *polling

	// mouse coords at last frame. used by service loop to keep track of
	// mouse motion
	mouseX, mouseY int32

	// mouse is grabbed for the host. when captured the GUI receives no
	// mouse input at all
	captured bool

	// whether the GUI is currently drawn. the host's own rendering is
	// unaffected either way
	visible bool

	// set by EventQuit or the Quit() function
	quitting bool

	// overlay specific preferences
	prefs *preferences
}

// New is the preferred method of initialisation for the Overlay type.
//
// MUST ONLY be called from the gui thread.
func New(host Host, config Config) (*Overlay, error) {
	ov := &Overlay{
		context: imgui.CreateContext(nil),
		io:      imgui.CurrentIO(),
		host:    host,
		config:  config,
		visible: true,
	}
	ov.userinput = host.UserInput()

	// path to dear imgui ini file
	iniPath, err := resources.JoinPath(imguiIniFile)
	if err != nil {
		return nil, curated.Errorf("overlay: %v", err)
	}
	ov.io.SetIniFilename(iniPath)

	// connect system clipboard to GUI text widgets
	ov.io.SetClipboard(&clipboard{})

	// the renderer is selected at compile time with build constraints
	ov.rnd = newRenderer(ov)

	ov.plt, err = newPlatform(ov)
	if err != nil {
		return nil, curated.Errorf("overlay: %v", err)
	}

	err = ov.rnd.start()
	if err != nil {
		return nil, curated.Errorf("overlay: %v", err)
	}

	// upload the font atlas and tell imgui where it went
	fnt := ov.rnd.addFontTexture(ov.io.Fonts())
	ov.io.Fonts().SetTextureID(imgui.TextureID(fnt.getID()))

	ov.textures = newTextureManager(ov.rnd)

	// initialise new polling type
	ov.polling = newPolling(ov)

	// load overlay preferences
	ov.prefs, err = newPreferences(ov)
	if err != nil {
		return nil, curated.Errorf("overlay: %v", err)
	}

	return ov, nil
}

// Destroy the overlay and the resources it holds.
//
// MUST ONLY be called from the gui thread.
func (ov *Overlay) Destroy(output io.Writer) {
	err := ov.prefs.save()
	if err != nil {
		output.Write([]byte(err.Error()))
	}

	ov.rnd.destroy()

	err = ov.plt.destroy()
	if err != nil {
		output.Write([]byte(err.Error()))
	}

	ov.context.Destroy()
}

// HasQuit returns true once the user has requested the program ends. the
// host's service loop should check this after every call to Service().
func (ov *Overlay) HasQuit() bool {
	return ov.quitting
}

// Quit ends the service loop. the next call to HasQuit() returns true. no
// EventQuit is forwarded to the host, the host already knows.
func (ov *Overlay) Quit() {
	ov.quitting = true
	ov.polling.alert()
}

// SetVisible shows or hides the GUI. the host's own rendering is unaffected.
func (ov *Overlay) SetVisible(visible bool) {
	ov.visible = visible
	ov.polling.alert()
}

// guiVisible is true when the GUI is being drawn.
func (ov *Overlay) guiVisible() bool {
	return ov.visible
}

// AddImage registers an image with the overlay and returns the texture ID
// to use with imgui.Image() etc. the pixels are copied.
//
// the linear argument selects linear filtering for the texture. nearest
// neighbour filtering is used otherwise.
//
// MUST ONLY be called from the gui thread.
func (ov *Overlay) AddImage(pixels *image.RGBA, linear bool) (imgui.TextureID, error) {
	id, err := ov.textures.add(pixels, linear)
	if err != nil {
		return 0, err
	}
	return imgui.TextureID(id), nil
}

// UpdateImage replaces the pixels of a previously added image, in whole or
// in part. see the commentary for textureManager.update() for how the
// dimensions and offset interact.
//
// MUST ONLY be called from the gui thread.
func (ov *Overlay) UpdateImage(id imgui.TextureID, pixels *image.RGBA, offset image.Point) error {
	return ov.textures.update(uint32(id), pixels, offset)
}

// FreeImage releases an image. the texture ID must not be used after this.
// the GPU side is released once the current frame has been drawn.
//
// MUST ONLY be called from the gui thread.
func (ov *Overlay) FreeImage(id imgui.TextureID) {
	ov.textures.free(uint32(id))
}

// InvalidateDevice releases every GPU side resource the overlay holds,
// without forgetting the images themselves. the textures are rebuilt from
// their CPU copies on the next frame.
//
// hosts that own the rendering device should call this before resetting or
// recreating the device. the Direct3D 9 renderer also calls it internally
// when it detects device loss.
//
// MUST ONLY be called from the gui thread.
func (ov *Overlay) InvalidateDevice() {
	ov.rnd.invalidate()
	ov.textures.invalidate()
}

// Screenshot requests a screenshot of the window. the result is sent on the
// finish channel once a frame has been rendered, which will not be before
// the current call to Service() has returned. the channel should be
// buffered. not supported by every renderer.
func (ov *Overlay) Screenshot(finish chan ScreenshotResult) {
	ov.rnd.screenshot(finish)
}

// PushFunction queues a function for execution on the gui thread. may be
// called from any goroutine. this is how hosts running on another thread
// communicate with the overlay.
func (ov *Overlay) PushFunction(f func()) {
	ov.polling.service <- f
	ov.polling.alert()
}

// quit propagates a quit request to the host.
func (ov *Overlay) quit() {
	ov.quitting = true
	select {
	case ov.userinput <- userinput.EventQuit{}:
	default:
		logger.Log("overlay", "dropped quit event")
	}
}

// has mouse been grabbed. only called from gui thread.
func (ov *Overlay) isCaptured() bool {
	return ov.captured
}

// grab mouse for the host. while captured the GUI receives no mouse input.
// only called from gui thread.
func (ov *Overlay) setCapture(set bool) {
	ov.captured = set

	err := sdl.CaptureMouse(set)
	if err != nil {
		logger.Log("overlay", err.Error())
	}

	ov.plt.window.SetGrab(set)

	if set {
		_, err = sdl.ShowCursor(sdl.DISABLE)
		if err != nil {
			logger.Log("overlay", err.Error())
		}
	} else {
		_, err = sdl.ShowCursor(sdl.ENABLE)
		if err != nil {
			logger.Log("overlay", err.Error())
		}
	}
}

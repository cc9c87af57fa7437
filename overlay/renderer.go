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

	"github.com/inkyblackness/imgui-go/v4"
)

type requirement int

const (
	requiresOpenGL32 requirement = iota
	requiresOpenGL21
	requiresDirect3D9
)

// the renderer interface is implemented by each of the build-constrained
// rendering backends. exactly one backend is compiled into the program and
// it defines the newRenderer() function.
type renderer interface {
	requires() requirement

	// start is called after the platform has been initialised. the
	// rendering context is current on the gui thread at this point
	start() error

	destroy()

	// render the most recent imgui draw data. called once per frame after
	// imgui.Render(). the renderer must leave the host's rendering state
	// as it found it and must not clear the framebuffer
	render()

	// present the completed frame. for the OpenGL renderers this is a
	// buffer swap. the Direct3D renderer additionally uses present() to
	// detect and recover from device loss
	present()

	// invalidate releases all GPU side resources without forgetting the
	// textures themselves. textures are rebuilt from their CPU copies on
	// the next render. called on device loss and also usable by a host
	// before it resets the rendering device
	invalidate()

	addTexture(linear bool, clamp bool) texture
	addFontTexture(fnt imgui.FontAtlas) texture

	// freeTexture releases the GPU object and forgets the texture. freeing
	// an unknown ID is not an error. must not be called while draw data
	// referencing the texture is still to be rendered
	freeTexture(id uint32)

	// screenshot requests are serviced by the renderer at its leisure,
	// usually at the end of the next render(). the channel should be
	// buffered so the renderer never blocks on the send
	screenshot(finish chan ScreenshotResult)
}

type texture interface {
	getID() uint32

	// markForCreation instructs the texture to allocate GPU storage on the
	// next call to render()
	markForCreation()

	// render uploads the whole image, allocating GPU storage first if the
	// texture is marked for creation
	render(*image.RGBA)

	// update uploads a region of the texture in place. the image is placed
	// with its top-left corner at the offset point
	update(pixels *image.RGBA, offset image.Point)
}

// ScreenshotResult is sent on the channel given to Overlay.Screenshot().
type ScreenshotResult struct {
	// the final image
	Image *image.RGBA

	// any errors that were encountered during the screenshot
	Err error
}

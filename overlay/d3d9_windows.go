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

//go:build d3d9

package overlay

import (
	"fmt"
	"image"
	"unsafe"

	"github.com/gonutz/d3d9"
	"github.com/inkyblackness/imgui-go/v4"
	"github.com/scrimgui/scrim/logger"
)

// the vertex format handed to the fixed function pipeline. position,
// diffuse colour (D3D wants BGRA byte order) and one set of texture
// coordinates.
type d3dVertex struct {
	x, y, z float32
	color   uint32
	u, v    float32
}

const d3dVertexFVF = d3d9.FVF_XYZ | d3d9.FVF_DIFFUSE | d3d9.FVF_TEX1

type d3d9Texture struct {
	rnd *dx9

	// id is assigned by the renderer and is stable for the lifetime of the
	// texture, surviving device loss. it is the value used as the imgui
	// texture ID
	id uint32

	tex    *d3d9.Texture
	width  int
	height int
	create bool
}

type dx9 struct {
	ov *Overlay

	d3d    *d3d9.Direct3D
	device *d3d9.Device
	pp     d3d9.PRESENT_PARAMETERS

	// texture ids are assigned sequentially, starting at 1 so that zero
	// can never collide with a valid imgui texture ID
	nextTextureID uint32
	textures      map[uint32]*d3d9Texture
	font          *d3d9Texture

	// the device has been lost and cannot be drawn to until a successful
	// reset
	deviceLost bool

	// screenshot requests are serviced at the end of render(), while the
	// back buffer still holds the completed frame. after Present the swap
	// effect leaves the back buffer contents undefined
	screenshots []chan ScreenshotResult
}

func newRenderer(ov *Overlay) renderer {
	return &dx9{
		ov:            ov,
		nextTextureID: 1,
		textures:      make(map[uint32]*d3d9Texture),
	}
}

func (rnd *dx9) requires() requirement {
	return requiresDirect3D9
}

func (rnd *dx9) start() error {
	wm, err := rnd.ov.plt.window.GetWMInfo()
	if err != nil {
		return fmt.Errorf("d3d9: %w", err)
	}
	hwnd := d3d9.HWND(uintptr(wm.GetWindowsInfo().Window))

	rnd.d3d, err = d3d9.Create(d3d9.SDK_VERSION)
	if err != nil {
		return fmt.Errorf("d3d9: %w", err)
	}

	adapter, err := rnd.d3d.GetAdapterIdentifier(d3d9.ADAPTER_DEFAULT, 0)
	if err == nil {
		logger.Logf("d3d9", "adapter: %s", adapter.Description)
	}

	rnd.pp = d3d9.PRESENT_PARAMETERS{
		Windowed:             1,
		SwapEffect:           d3d9.SWAPEFFECT_DISCARD,
		BackBufferFormat:     d3d9.FMT_UNKNOWN,
		HDeviceWindow:        hwnd,
		PresentationInterval: d3d9.PRESENT_INTERVAL_ONE,
	}

	rnd.device, _, err = rnd.d3d.CreateDevice(
		d3d9.ADAPTER_DEFAULT,
		d3d9.DEVTYPE_HAL,
		hwnd,
		d3d9.CREATE_HARDWARE_VERTEXPROCESSING,
		rnd.pp,
	)
	if err != nil {
		rnd.d3d.Release()
		rnd.d3d = nil
		return fmt.Errorf("d3d9: %w", err)
	}

	return nil
}

func (rnd *dx9) destroy() {
	for _, tex := range rnd.textures {
		if tex.tex != nil {
			tex.tex.Release()
			tex.tex = nil
		}
	}
	rnd.textures = make(map[uint32]*d3d9Texture)

	if rnd.device != nil {
		rnd.device.Release()
		rnd.device = nil
	}
	if rnd.d3d != nil {
		rnd.d3d.Release()
		rnd.d3d = nil
	}
}

// invalidate releases the GPU side of every texture. the CPU copies held by
// the texture manager are untouched so the next frame rebuilds everything.
func (rnd *dx9) invalidate() {
	for _, tex := range rnd.textures {
		if tex.tex != nil {
			tex.tex.Release()
			tex.tex = nil
		}
		tex.create = true
	}
	logger.Log("d3d9", "invalidated")
}

// render translates the imgui draw data to Direct3D 9 commands.
func (rnd *dx9) render() {
	if rnd.deviceLost {
		return
	}

	displaySize := rnd.ov.plt.displaySize()
	drawData := imgui.RenderedDrawData()

	width, height := displaySize[0], displaySize[1]
	if width <= 0 || height <= 0 {
		return
	}

	// the font texture may need recreating after device loss
	if rnd.font != nil && rnd.font.create {
		rnd.uploadFontTexture()
	}

	// capture the whole of the host's pipeline state. restored at the end
	// of the function so that from the host's point of view the device is
	// untouched
	stateBlock, err := rnd.device.CreateStateBlock(d3d9.SBT_ALL)
	if err != nil {
		logger.Logf("d3d9", "state block: %s", err.Error())
		return
	}
	defer func() {
		stateBlock.Apply()
		stateBlock.Release()
	}()

	lastProj, projErr := rnd.device.GetTransform(d3d9.TS_PROJECTION)
	defer func() {
		if projErr == nil {
			rnd.device.SetTransform(d3d9.TS_PROJECTION, lastProj)
		}
	}()

	rnd.applyRenderState(width, height)

	rnd.device.BeginScene()
	defer rnd.device.EndScene()

	indexSize := imgui.IndexBufferLayout()
	indexFormat := d3d9.FMT_INDEX16
	if indexSize == 4 {
		indexFormat = d3d9.FMT_INDEX32
	}
	vertexSize, vertexOffsetPos, vertexOffsetUv, vertexOffsetCol := imgui.VertexBufferLayout()

	for _, list := range drawData.CommandLists() {
		vertexBuffer, vertexBufferSize := list.VertexBuffer()
		indexBuffer, _ := list.IndexBuffer()

		numVertices := vertexBufferSize / vertexSize
		vertices := convertVertices(vertexBuffer, numVertices, vertexSize, vertexOffsetPos, vertexOffsetUv, vertexOffsetCol)
		if len(vertices) == 0 {
			continue
		}

		var indexBufferOffset uintptr

		for _, cmd := range list.Commands() {
			if cmd.HasUserCallback() {
				cmd.CallUserCallback(list)
			} else if cmd.ElementCount()%3 != 0 {
				// refuse to draw a command whose indices do not describe
				// whole triangles
				logger.Logf("d3d9", "dropped malformed draw command (%d indices)", cmd.ElementCount())
			} else if cmd.ElementCount() > 0 {
				clipRect := cmd.ClipRect()
				rnd.device.SetScissorRect(d3d9.RECT{
					Left:   int32(clipRect.X),
					Top:    int32(clipRect.Y),
					Right:  int32(clipRect.Z),
					Bottom: int32(clipRect.W),
				})

				if tex, ok := rnd.textures[uint32(cmd.TextureID())]; ok && tex.tex != nil {
					rnd.device.SetTexture(0, tex.tex)
				} else {
					rnd.device.SetTexture(0, nil)
				}

				rnd.device.DrawIndexedPrimitiveUP(
					d3d9.PT_TRIANGLELIST,
					0,
					uint(len(vertices)),
					uint(cmd.ElementCount()/3),
					uintptr(indexBuffer)+indexBufferOffset,
					indexFormat,
					uintptr(unsafe.Pointer(&vertices[0])),
					uint(unsafe.Sizeof(d3dVertex{})),
				)
			}

			indexBufferOffset += uintptr(cmd.ElementCount() * indexSize)
		}
	}

	// service screenshot requests before the frame is presented
	for _, finish := range rnd.screenshots {
		finish <- rnd.captureBackBuffer()
	}
	rnd.screenshots = rnd.screenshots[:0]
}

// applyRenderState sets up the pipeline for GUI drawing: no culling, no
// depth, alpha blending with separate alpha (so the framebuffer alpha
// channel stays usable), scissor test and modulated texturing.
func (rnd *dx9) applyRenderState(width float32, height float32) {
	dev := rnd.device

	dev.SetFVF(d3dVertexFVF)

	dev.SetRenderState(d3d9.RS_CULLMODE, d3d9.CULL_NONE)
	dev.SetRenderState(d3d9.RS_LIGHTING, 0)
	dev.SetRenderState(d3d9.RS_ZENABLE, 0)
	dev.SetRenderState(d3d9.RS_ZWRITEENABLE, 0)
	dev.SetRenderState(d3d9.RS_FILLMODE, d3d9.FILL_SOLID)
	dev.SetRenderState(d3d9.RS_ALPHATESTENABLE, 0)
	dev.SetRenderState(d3d9.RS_FOGENABLE, 0)

	dev.SetRenderState(d3d9.RS_ALPHABLENDENABLE, 1)
	dev.SetRenderState(d3d9.RS_SRCBLEND, d3d9.BLEND_SRCALPHA)
	dev.SetRenderState(d3d9.RS_DESTBLEND, d3d9.BLEND_INVSRCALPHA)
	dev.SetRenderState(d3d9.RS_SEPARATEALPHABLENDENABLE, 1)
	dev.SetRenderState(d3d9.RS_SRCBLENDALPHA, d3d9.BLEND_ONE)
	dev.SetRenderState(d3d9.RS_DESTBLENDALPHA, d3d9.BLEND_INVSRCALPHA)

	dev.SetRenderState(d3d9.RS_SCISSORTESTENABLE, 1)

	dev.SetTextureStageState(0, d3d9.TSS_COLOROP, d3d9.TOP_MODULATE)
	dev.SetTextureStageState(0, d3d9.TSS_COLORARG1, d3d9.TA_TEXTURE)
	dev.SetTextureStageState(0, d3d9.TSS_COLORARG2, d3d9.TA_DIFFUSE)
	dev.SetTextureStageState(0, d3d9.TSS_ALPHAOP, d3d9.TOP_MODULATE)
	dev.SetTextureStageState(0, d3d9.TSS_ALPHAARG1, d3d9.TA_TEXTURE)
	dev.SetTextureStageState(0, d3d9.TSS_ALPHAARG2, d3d9.TA_DIFFUSE)

	dev.SetSamplerState(0, d3d9.SAMP_MINFILTER, d3d9.TEXF_LINEAR)
	dev.SetSamplerState(0, d3d9.SAMP_MAGFILTER, d3d9.TEXF_LINEAR)
	dev.SetSamplerState(0, d3d9.SAMP_ADDRESSU, d3d9.TADDRESS_CLAMP)
	dev.SetSamplerState(0, d3d9.SAMP_ADDRESSV, d3d9.TADDRESS_CLAMP)

	// orthographic projection. the half texel offset aligns texel centres
	// with pixel centres, without it the GUI looks subtly blurred
	l := float32(0.5)
	r := width + 0.5
	t := float32(0.5)
	b := height + 0.5

	proj := d3d9.MATRIX{
		2.0 / (r - l), 0.0, 0.0, 0.0,
		0.0, 2.0 / (t - b), 0.0, 0.0,
		0.0, 0.0, 1.0, 0.0,
		(l + r) / (l - r), (t + b) / (b - t), 0.0, 1.0,
	}
	dev.SetTransform(d3d9.TS_PROJECTION, proj)

	var identity d3d9.MATRIX
	identity[0] = 1
	identity[5] = 1
	identity[10] = 1
	identity[15] = 1
	dev.SetTransform(d3d9.TS_VIEW, identity)
	dev.SetTransform(d3d9.TSWorldMatrix(0), identity)
}

// convertVertices reads the imgui vertex buffer and builds the vertex slice
// for the fixed function pipeline, converting the colour byte order.
func convertVertices(buffer unsafe.Pointer, count int, stride int, offsetPos int, offsetUv int, offsetCol int) []d3dVertex {
	if count <= 0 {
		return nil
	}

	vertices := make([]d3dVertex, count)
	base := uintptr(buffer)

	for i := 0; i < count; i++ {
		rec := base + uintptr(i*stride)

		pos := (*[2]float32)(unsafe.Pointer(rec + uintptr(offsetPos)))
		uv := (*[2]float32)(unsafe.Pointer(rec + uintptr(offsetUv)))
		col := *(*uint32)(unsafe.Pointer(rec + uintptr(offsetCol)))

		vertices[i] = d3dVertex{
			x: pos[0],
			y: pos[1],
			z: 0.0,
			// imgui colours are RGBA in memory which reads as ABGR in a
			// little endian word. D3DCOLOR is ARGB so swap red and blue
			color: (col & 0xff00ff00) | ((col & 0x00ff0000) >> 16) | ((col & 0x000000ff) << 16),
			u:     uv[0],
			v:     uv[1],
		}
	}

	return vertices
}

// present the frame. device loss is detected here and recovery is
// attempted on subsequent frames.
func (rnd *dx9) present() {
	if !rnd.deviceLost {
		err := rnd.device.Present(nil, nil, 0, nil)
		if err == nil {
			return
		}
		logger.Logf("d3d9", "present: %s", err.Error())
		rnd.deviceLost = true
	}

	// the device is lost. a reset can only happen once the device is ready
	err := rnd.device.TestCooperativeLevel()
	if err == nil {
		rnd.deviceLost = false
		return
	}

	if de, ok := err.(d3d9.Error); ok {
		switch de.Code() {
		case d3d9.ERR_DEVICELOST:
			// not ready to be reset yet. try again next frame

		case d3d9.ERR_DEVICENOTRESET:
			// GPU resources must be released before the reset and rebuilt
			// from the CPU copies afterwards
			rnd.invalidate()
			rnd.ov.textures.invalidate()

			_, err = rnd.device.Reset(rnd.pp)
			if err != nil {
				logger.Logf("d3d9", "reset: %s", err.Error())
				return
			}

			logger.Log("d3d9", "device reset")
			rnd.deviceLost = false
		}
	}
}

func (rnd *dx9) screenshot(finish chan ScreenshotResult) {
	rnd.screenshots = append(rnd.screenshots, finish)
}

// captureBackBuffer copies the back buffer through an off-screen surface
// in system memory. must be called before Present.
func (rnd *dx9) captureBackBuffer() ScreenshotResult {
	backBuffer, err := rnd.device.GetBackBuffer(0, 0, d3d9.BACKBUFFER_TYPE_MONO)
	if err != nil {
		return ScreenshotResult{Err: fmt.Errorf("d3d9: %w", err)}
	}
	defer backBuffer.Release()

	desc, err := backBuffer.GetDesc()
	if err != nil {
		return ScreenshotResult{Err: fmt.Errorf("d3d9: %w", err)}
	}

	surface, err := rnd.device.CreateOffscreenPlainSurface(
		uint(desc.Width), uint(desc.Height),
		d3d9.FMT_A8R8G8B8,
		d3d9.POOL_SYSTEMMEM,
		0,
	)
	if err != nil {
		return ScreenshotResult{Err: fmt.Errorf("d3d9: %w", err)}
	}
	defer surface.Release()

	err = rnd.device.GetRenderTargetData(backBuffer, surface)
	if err != nil {
		return ScreenshotResult{Err: fmt.Errorf("d3d9: %w", err)}
	}

	locked, err := surface.LockRect(nil, d3d9.LOCK_READONLY)
	if err != nil {
		return ScreenshotResult{Err: fmt.Errorf("d3d9: %w", err)}
	}
	defer surface.UnlockRect()

	width := int(desc.Width)
	height := int(desc.Height)
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	for y := 0; y < height; y++ {
		row := unsafe.Pointer(uintptr(locked.PBits) + uintptr(y)*uintptr(locked.Pitch))
		for x := 0; x < width; x++ {
			px := (*[4]byte)(unsafe.Pointer(uintptr(row) + uintptr(x*4)))
			i := y*img.Stride + x*4
			img.Pix[i] = px[2]   // R
			img.Pix[i+1] = px[1] // G
			img.Pix[i+2] = px[0] // B
			img.Pix[i+3] = 0xff
		}
	}

	return ScreenshotResult{Image: img}
}

func (rnd *dx9) addTexture(linear bool, clamp bool) texture {
	tex := &d3d9Texture{
		rnd:    rnd,
		id:     rnd.nextTextureID,
		create: true,
	}
	rnd.nextTextureID++
	rnd.textures[tex.id] = tex

	return tex
}

func (rnd *dx9) freeTexture(id uint32) {
	if tex, ok := rnd.textures[id]; ok {
		if tex.tex != nil {
			tex.tex.Release()
			tex.tex = nil
		}
		delete(rnd.textures, id)
	}
}

func (rnd *dx9) addFontTexture(fnts imgui.FontAtlas) texture {
	tex := rnd.addTexture(true, false).(*d3d9Texture)
	rnd.font = tex
	rnd.uploadFontTexture()
	return tex
}

func (rnd *dx9) uploadFontTexture() {
	img := imgui.CurrentIO().Fonts().TextureDataRGBA32()

	sz := img.Width * img.Height * 4
	pixels := (*[1 << 30]byte)(img.Pixels)[:sz:sz]

	rgba := &image.RGBA{
		Pix:    pixels,
		Stride: img.Width * 4,
		Rect:   image.Rect(0, 0, img.Width, img.Height),
	}

	rnd.font.create = true
	rnd.font.render(rgba)
}

func (tex *d3d9Texture) getID() uint32 {
	return tex.id
}

func (tex *d3d9Texture) markForCreation() {
	if tex.tex != nil {
		tex.tex.Release()
		tex.tex = nil
	}
	tex.create = true
}

func (tex *d3d9Texture) render(pixels *image.RGBA) {
	size := pixels.Bounds().Size()

	if tex.create || tex.tex == nil || size.X != tex.width || size.Y != tex.height {
		if tex.tex != nil {
			tex.tex.Release()
			tex.tex = nil
		}

		t, err := tex.rnd.device.CreateTexture(
			uint(size.X), uint(size.Y),
			1,
			0,
			d3d9.FMT_A8R8G8B8,
			d3d9.POOL_MANAGED,
			0,
		)
		if err != nil {
			logger.Logf("d3d9", "create texture: %s", err.Error())
			return
		}

		tex.tex = t
		tex.width = size.X
		tex.height = size.Y
		tex.create = false
	}

	tex.upload(pixels, nil)
}

func (tex *d3d9Texture) update(pixels *image.RGBA, offset image.Point) {
	if tex.tex == nil {
		return
	}

	size := pixels.Bounds().Size()
	tex.upload(pixels, &d3d9.RECT{
		Left:   int32(offset.X),
		Top:    int32(offset.Y),
		Right:  int32(offset.X + size.X),
		Bottom: int32(offset.Y + size.Y),
	})
}

// upload the pixels to the locked region, converting RGBA to the BGRA
// order that the texture format expects.
func (tex *d3d9Texture) upload(pixels *image.RGBA, region *d3d9.RECT) {
	locked, err := tex.tex.LockRect(0, region, 0)
	if err != nil {
		logger.Logf("d3d9", "lock texture: %s", err.Error())
		return
	}
	defer tex.tex.UnlockRect(0)

	size := pixels.Bounds().Size()
	pitch := size.X * 4
	data := make([]byte, size.Y*pitch)

	for y := 0; y < size.Y; y++ {
		src := y * pixels.Stride
		dst := y * pitch
		for x := 0; x < size.X; x++ {
			data[dst] = pixels.Pix[src+2]     // B
			data[dst+1] = pixels.Pix[src+1]   // G
			data[dst+2] = pixels.Pix[src]     // R
			data[dst+3] = pixels.Pix[src+3]   // A
			src += 4
			dst += 4
		}
	}

	locked.SetAllBytes(data, pitch)
}

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

//go:build !gl21 && !d3d9

package overlay

import (
	"fmt"
	"image"
	"strings"

	"github.com/go-gl/gl/v3.2-core/gl"
	"github.com/inkyblackness/imgui-go/v4"
	"github.com/scrimgui/scrim/logger"
	"github.com/scrimgui/scrim/overlay/shaders"
)

type gl32Texture struct {
	id     uint32
	create bool
	linear bool
	clamp  bool
}

type gl32 struct {
	ov *Overlay

	textures map[uint32]*gl32Texture
	font     texture

	// the single shader used for all GUI drawing
	handle   uint32
	projMtx  int32 // uniform
	position int32
	uv       int32
	color    int32
	texture_ int32 // uniform

	vboHandle      uint32
	elementsHandle uint32

	// screenshot requests are serviced at the end of render(), before the
	// buffer swap
	screenshots []chan ScreenshotResult
}

func newRenderer(ov *Overlay) renderer {
	return &gl32{
		ov:       ov,
		textures: make(map[uint32]*gl32Texture),
	}
}

func (rnd *gl32) requires() requirement {
	return requiresOpenGL32
}

func (rnd *gl32) start() error {
	err := gl.Init()
	if err != nil {
		return fmt.Errorf("gl32: %w", err)
	}

	// log GPU vendor information
	logger.Logf("glsl", "vendor: %s", gl.GoStr(gl.GetString(gl.VENDOR)))
	logger.Logf("glsl", "renderer: %s", gl.GoStr(gl.GetString(gl.RENDERER)))
	logger.Logf("glsl", "driver: %s", gl.GoStr(gl.GetString(gl.VERSION)))

	err = rnd.createProgram(string(shaders.GUIVertexShader), string(shaders.GUIFragmentShader))
	if err != nil {
		return err
	}

	gl.GenBuffers(1, &rnd.vboHandle)
	gl.GenBuffers(1, &rnd.elementsHandle)

	return nil
}

func (rnd *gl32) destroy() {
	if rnd.vboHandle != 0 {
		gl.DeleteBuffers(1, &rnd.vboHandle)
	}
	rnd.vboHandle = 0

	if rnd.elementsHandle != 0 {
		gl.DeleteBuffers(1, &rnd.elementsHandle)
	}
	rnd.elementsHandle = 0

	if rnd.handle != 0 {
		gl.DeleteProgram(rnd.handle)
		rnd.handle = 0
	}

	for _, tex := range rnd.textures {
		gl.DeleteTextures(1, &tex.id)
	}
	rnd.textures = make(map[uint32]*gl32Texture)
}

// invalidate marks every texture for recreation. an OpenGL context does not
// lose its objects the way a Direct3D 9 device does, so there is nothing to
// release, but reallocating the texture storage on the next upload is
// harmless and keeps the renderers symmetrical.
func (rnd *gl32) invalidate() {
	for _, tex := range rnd.textures {
		tex.create = true
	}
	logger.Log("glsl", "invalidated")
}

// render translates the imgui draw data to OpenGL 3.2 commands.
func (rnd *gl32) render() {
	displaySize := rnd.ov.plt.displaySize()
	framebufferSize := rnd.ov.plt.framebufferSize()
	drawData := imgui.RenderedDrawData()

	st := storeGLState()
	defer st.restoreGLState()

	// avoid rendering when minimised, scale coordinates for retina
	// displays (screen coordinates != framebuffer coordinates)
	displayWidth, displayHeight := displaySize[0], displaySize[1]
	fbWidth, fbHeight := framebufferSize[0], framebufferSize[1]
	if (fbWidth <= 0) || (fbHeight <= 0) {
		return
	}
	drawData.ScaleClipRects(imgui.Vec2{
		X: fbWidth / displayWidth,
		Y: fbHeight / displayHeight,
	})

	// setup render state: alpha-blending enabled, no face culling, no
	// depth testing, scissor enabled, polygon fill. the host framebuffer
	// is never cleared, the GUI is composited over whatever is in it
	gl.Enable(gl.BLEND)
	gl.BlendEquation(gl.FUNC_ADD)
	gl.BlendFuncSeparate(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA, gl.ONE, gl.ONE_MINUS_SRC_ALPHA)
	gl.Disable(gl.CULL_FACE)
	gl.Disable(gl.DEPTH_TEST)
	gl.Enable(gl.SCISSOR_TEST)
	gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)

	// orthographic projection. our visible imgui space lies from
	// DisplayPos (top left) to DisplayPos+DisplaySize (bottom right)
	orthoProj := [4][4]float32{
		{2.0 / displayWidth, 0.0, 0.0, 0.0},
		{0.0, 2.0 / -displayHeight, 0.0, 0.0},
		{0.0, 0.0, -1.0, 0.0},
		{-1.0, 1.0, 0.0, 1.0},
	}

	gl.UseProgram(rnd.handle)
	gl.UniformMatrix4fv(rnd.projMtx, 1, false, &orthoProj[0][0])
	gl.Uniform1i(rnd.texture_, 0)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindSampler(0, 0) // rely on combined texture/sampler state

	// recreate the VAO every time. VAOs are not shared among GL contexts
	// and we don't want to depend on the host's context management
	var vaoHandle uint32
	gl.GenVertexArrays(1, &vaoHandle)
	gl.BindVertexArray(vaoHandle)
	gl.BindBuffer(gl.ARRAY_BUFFER, rnd.vboHandle)

	gl.EnableVertexAttribArray(uint32(rnd.uv))
	gl.EnableVertexAttribArray(uint32(rnd.position))
	gl.EnableVertexAttribArray(uint32(rnd.color))

	vertexSize, vertexOffsetPos, vertexOffsetUv, vertexOffsetCol := imgui.VertexBufferLayout()
	gl.VertexAttribPointerWithOffset(uint32(rnd.uv), 2, gl.FLOAT, false, int32(vertexSize), uintptr(vertexOffsetUv))
	gl.VertexAttribPointerWithOffset(uint32(rnd.position), 2, gl.FLOAT, false, int32(vertexSize), uintptr(vertexOffsetPos))
	gl.VertexAttribPointerWithOffset(uint32(rnd.color), 4, gl.UNSIGNED_BYTE, true, int32(vertexSize), uintptr(vertexOffsetCol))

	indexSize := imgui.IndexBufferLayout()
	drawType := gl.UNSIGNED_SHORT
	if indexSize == 4 {
		drawType = gl.UNSIGNED_INT
	}

	gl.Viewport(0, 0, int32(fbWidth), int32(fbHeight))

	for _, list := range drawData.CommandLists() {
		var indexBufferOffset uintptr

		vertexBuffer, vertexBufferSize := list.VertexBuffer()
		gl.BindBuffer(gl.ARRAY_BUFFER, rnd.vboHandle)
		gl.BufferData(gl.ARRAY_BUFFER, vertexBufferSize, vertexBuffer, gl.STREAM_DRAW)

		indexBuffer, indexBufferSize := list.IndexBuffer()
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, rnd.elementsHandle)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, indexBufferSize, indexBuffer, gl.STREAM_DRAW)

		for _, cmd := range list.Commands() {
			if cmd.HasUserCallback() {
				cmd.CallUserCallback(list)
			} else if cmd.ElementCount()%3 != 0 {
				// refuse to draw a command whose indices do not describe
				// whole triangles
				logger.Logf("glsl", "dropped malformed draw command (%d indices)", cmd.ElementCount())
			} else {
				gl.BindTexture(gl.TEXTURE_2D, uint32(cmd.TextureID()))

				clipRect := cmd.ClipRect()
				gl.Scissor(int32(clipRect.X), int32(fbHeight)-int32(clipRect.W), int32(clipRect.Z-clipRect.X), int32(clipRect.W-clipRect.Y))

				gl.DrawElementsWithOffset(gl.TRIANGLES, int32(cmd.ElementCount()), uint32(drawType), indexBufferOffset)
			}

			indexBufferOffset += uintptr(cmd.ElementCount() * indexSize)
		}
	}
	gl.DeleteVertexArrays(1, &vaoHandle)

	// service screenshot requests before the frame is presented
	for _, finish := range rnd.screenshots {
		finish <- readFramebuffer(int(fbWidth), int(fbHeight))
	}
	rnd.screenshots = rnd.screenshots[:0]
}

func (rnd *gl32) present() {
	rnd.ov.plt.window.GLSwap()
}

func (rnd *gl32) screenshot(finish chan ScreenshotResult) {
	rnd.screenshots = append(rnd.screenshots, finish)
}

// readFramebuffer copies the current framebuffer contents, flipping the
// image the right way up.
func readFramebuffer(width int, height int) ScreenshotResult {
	if width <= 0 || height <= 0 {
		return ScreenshotResult{Err: fmt.Errorf("gl32: framebuffer has no size")}
	}

	flipped := image.NewRGBA(image.Rect(0, 0, width, height))
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(flipped.Pix))

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		copy(img.Pix[y*img.Stride:(y+1)*img.Stride], flipped.Pix[(height-1-y)*flipped.Stride:])
	}

	return ScreenshotResult{Image: img}
}

func (rnd *gl32) addTexture(linear bool, clamp bool) texture {
	tex := &gl32Texture{
		create: true,
		linear: linear,
		clamp:  clamp,
	}

	gl.GenTextures(1, &tex.id)
	gl.BindTexture(gl.TEXTURE_2D, tex.id)
	if linear {
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	} else {
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	}
	if clamp {
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	}

	rnd.textures[tex.id] = tex

	return tex
}

func (rnd *gl32) freeTexture(id uint32) {
	if tex, ok := rnd.textures[id]; ok {
		gl.DeleteTextures(1, &tex.id)
		delete(rnd.textures, id)
	}
}

func (rnd *gl32) addFontTexture(fnts imgui.FontAtlas) texture {
	tex := rnd.addTexture(true, false)
	img := fnts.TextureDataRGBA32()

	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, 0)
	gl.BindTexture(gl.TEXTURE_2D, tex.getID())
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(img.Width), int32(img.Height), 0, gl.RGBA, gl.UNSIGNED_BYTE, img.Pixels)

	rnd.font = tex

	return tex
}

func (tex *gl32Texture) getID() uint32 {
	return tex.id
}

func (tex *gl32Texture) markForCreation() {
	tex.create = true
}

func (tex *gl32Texture) render(pixels *image.RGBA) {
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, int32(pixels.Stride)/4)
	defer gl.PixelStorei(gl.UNPACK_ROW_LENGTH, 0)

	gl.BindTexture(gl.TEXTURE_2D, tex.id)
	if tex.create {
		tex.create = false
		gl.TexImage2D(gl.TEXTURE_2D, 0,
			gl.RGBA, int32(pixels.Bounds().Size().X), int32(pixels.Bounds().Size().Y), 0,
			gl.RGBA, gl.UNSIGNED_BYTE,
			gl.Ptr(pixels.Pix))
	} else {
		gl.TexSubImage2D(gl.TEXTURE_2D, 0,
			0, 0, int32(pixels.Bounds().Size().X), int32(pixels.Bounds().Size().Y),
			gl.RGBA, gl.UNSIGNED_BYTE,
			gl.Ptr(pixels.Pix))
	}
}

func (tex *gl32Texture) update(pixels *image.RGBA, offset image.Point) {
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, int32(pixels.Stride)/4)
	defer gl.PixelStorei(gl.UNPACK_ROW_LENGTH, 0)

	gl.BindTexture(gl.TEXTURE_2D, tex.id)
	gl.TexSubImage2D(gl.TEXTURE_2D, 0,
		int32(offset.X), int32(offset.Y), int32(pixels.Bounds().Size().X), int32(pixels.Bounds().Size().Y),
		gl.RGBA, gl.UNSIGNED_BYTE,
		gl.Ptr(pixels.Pix))
}

// compile and link the shader program.
func (rnd *gl32) createProgram(vertProgram string, fragProgram string) error {
	rnd.handle = gl.CreateProgram()

	vertHandle := gl.CreateShader(gl.VERTEX_SHADER)
	fragHandle := gl.CreateShader(gl.FRAGMENT_SHADER)

	glShaderSource := func(handle uint32, source string) {
		csource, free := gl.Strs(source + "\x00")
		defer free()

		gl.ShaderSource(handle, 1, csource, nil)
	}

	glShaderSource(vertHandle, vertProgram)
	glShaderSource(fragHandle, fragProgram)

	gl.CompileShader(vertHandle)
	if log := getShaderCompileError(vertHandle); log != "" {
		return fmt.Errorf("gl32: %s", log)
	}

	gl.CompileShader(fragHandle)
	if log := getShaderCompileError(fragHandle); log != "" {
		return fmt.Errorf("gl32: %s", log)
	}

	gl.AttachShader(rnd.handle, vertHandle)
	gl.AttachShader(rnd.handle, fragHandle)
	gl.LinkProgram(rnd.handle)

	// now that the program has linked we no longer need the individual
	// shaders
	gl.DeleteShader(fragHandle)
	gl.DeleteShader(vertHandle)

	// get references to shader attributes and uniform variables
	rnd.projMtx = gl.GetUniformLocation(rnd.handle, gl.Str("ProjMtx"+"\x00"))
	rnd.position = gl.GetAttribLocation(rnd.handle, gl.Str("Position"+"\x00"))
	rnd.uv = gl.GetAttribLocation(rnd.handle, gl.Str("UV"+"\x00"))
	rnd.color = gl.GetAttribLocation(rnd.handle, gl.Str("Color"+"\x00"))
	rnd.texture_ = gl.GetUniformLocation(rnd.handle, gl.Str("Texture"+"\x00"))

	return nil
}

// getShaderCompileError returns the most recent error generated by the
// shader compiler.
func getShaderCompileError(shader uint32) string {
	var isCompiled int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &isCompiled)
	if isCompiled == 0 {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		if logLength > 0 {
			// the maxLength includes the NULL character
			log := strings.Repeat("\x00", int(logLength+1))
			gl.GetShaderInfoLog(shader, logLength, &logLength, gl.Str(log))
			return log
		}
	}
	return ""
}

// glState stores GL state with the intention of restoration after a short
// period. the host's pipeline state must look untouched after every frame.
type glState struct {
	lastActiveTexture      int32
	lastProgram            int32
	lastTexture            int32
	lastSampler            int32
	lastArrayBuffer        int32
	lastElementArrayBuffer int32
	lastVertexArray        int32
	lastPolygonMode        [2]int32
	lastViewport           [4]int32
	lastScissorBox         [4]int32
	lastBlendSrcRgb        int32
	lastBlendDstRgb        int32
	lastBlendSrcAlpha      int32
	lastBlendDstAlpha      int32
	lastBlendEquationRgb   int32
	lastBlendEquationAlpha int32
	lastEnableBlend        bool
	lastEnableCullFace     bool
	lastEnableDepthTest    bool
	lastEnableScissorTest  bool
}

// storeGLState is the best way of initialising an instance of glState.
func storeGLState() *glState {
	st := &glState{}
	gl.GetIntegerv(gl.ACTIVE_TEXTURE, &st.lastActiveTexture)
	gl.GetIntegerv(gl.CURRENT_PROGRAM, &st.lastProgram)
	gl.GetIntegerv(gl.TEXTURE_BINDING_2D, &st.lastTexture)
	gl.GetIntegerv(gl.SAMPLER_BINDING, &st.lastSampler)
	gl.GetIntegerv(gl.ARRAY_BUFFER_BINDING, &st.lastArrayBuffer)
	gl.GetIntegerv(gl.ELEMENT_ARRAY_BUFFER_BINDING, &st.lastElementArrayBuffer)
	gl.GetIntegerv(gl.VERTEX_ARRAY_BINDING, &st.lastVertexArray)
	gl.GetIntegerv(gl.POLYGON_MODE, &st.lastPolygonMode[0])
	gl.GetIntegerv(gl.VIEWPORT, &st.lastViewport[0])
	gl.GetIntegerv(gl.SCISSOR_BOX, &st.lastScissorBox[0])
	gl.GetIntegerv(gl.BLEND_SRC_RGB, &st.lastBlendSrcRgb)
	gl.GetIntegerv(gl.BLEND_DST_RGB, &st.lastBlendDstRgb)
	gl.GetIntegerv(gl.BLEND_SRC_ALPHA, &st.lastBlendSrcAlpha)
	gl.GetIntegerv(gl.BLEND_DST_ALPHA, &st.lastBlendDstAlpha)
	gl.GetIntegerv(gl.BLEND_EQUATION_RGB, &st.lastBlendEquationRgb)
	gl.GetIntegerv(gl.BLEND_EQUATION_ALPHA, &st.lastBlendEquationAlpha)
	st.lastEnableBlend = gl.IsEnabled(gl.BLEND)
	st.lastEnableCullFace = gl.IsEnabled(gl.CULL_FACE)
	st.lastEnableDepthTest = gl.IsEnabled(gl.DEPTH_TEST)
	st.lastEnableScissorTest = gl.IsEnabled(gl.SCISSOR_TEST)
	return st
}

// restoreGLState previously stored glState.
func (st *glState) restoreGLState() {
	gl.UseProgram(uint32(st.lastProgram))
	gl.BindTexture(gl.TEXTURE_2D, uint32(st.lastTexture))
	gl.BindSampler(0, uint32(st.lastSampler))
	gl.ActiveTexture(uint32(st.lastActiveTexture))
	gl.BindVertexArray(uint32(st.lastVertexArray))
	gl.BindBuffer(gl.ARRAY_BUFFER, uint32(st.lastArrayBuffer))
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, uint32(st.lastElementArrayBuffer))
	gl.BlendEquationSeparate(uint32(st.lastBlendEquationRgb), uint32(st.lastBlendEquationAlpha))
	gl.BlendFuncSeparate(uint32(st.lastBlendSrcRgb), uint32(st.lastBlendDstRgb), uint32(st.lastBlendSrcAlpha), uint32(st.lastBlendDstAlpha))
	if st.lastEnableBlend {
		gl.Enable(gl.BLEND)
	} else {
		gl.Disable(gl.BLEND)
	}
	if st.lastEnableCullFace {
		gl.Enable(gl.CULL_FACE)
	} else {
		gl.Disable(gl.CULL_FACE)
	}
	if st.lastEnableDepthTest {
		gl.Enable(gl.DEPTH_TEST)
	} else {
		gl.Disable(gl.DEPTH_TEST)
	}
	if st.lastEnableScissorTest {
		gl.Enable(gl.SCISSOR_TEST)
	} else {
		gl.Disable(gl.SCISSOR_TEST)
	}
	gl.PolygonMode(gl.FRONT_AND_BACK, uint32(st.lastPolygonMode[0]))
	gl.Viewport(st.lastViewport[0], st.lastViewport[1], st.lastViewport[2], st.lastViewport[3])
	gl.Scissor(st.lastScissorBox[0], st.lastScissorBox[1], st.lastScissorBox[2], st.lastScissorBox[3])
}

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
	"image"
	"image/color"
	"testing"

	"github.com/inkyblackness/imgui-go/v4"
	"github.com/scrimgui/scrim/test"
)

// mockTexture records the calls the textureManager makes against it.
type mockTexture struct {
	id uint32

	creations int
	renders   int
	updates   int

	lastRender *image.RGBA
	lastUpdate *image.RGBA
	lastOffset image.Point
}

func (tex *mockTexture) getID() uint32 {
	return tex.id
}

func (tex *mockTexture) markForCreation() {
	tex.creations++
}

func (tex *mockTexture) render(pixels *image.RGBA) {
	tex.renders++
	tex.lastRender = pixels
}

func (tex *mockTexture) update(pixels *image.RGBA, offset image.Point) {
	tex.updates++
	tex.lastUpdate = pixels
	tex.lastOffset = offset
}

// mockRenderer hands out mockTextures with sequential IDs.
type mockRenderer struct {
	nextID   uint32
	textures map[uint32]*mockTexture

	// IDs released through freeTexture, in order
	freed []uint32
}

func newMockRenderer() *mockRenderer {
	return &mockRenderer{
		nextID:   1,
		textures: make(map[uint32]*mockTexture),
	}
}

func (rnd *mockRenderer) requires() requirement {
	return requiresOpenGL32
}

func (rnd *mockRenderer) start() error {
	return nil
}

func (rnd *mockRenderer) destroy() {
}

func (rnd *mockRenderer) render() {
}

func (rnd *mockRenderer) present() {
}

func (rnd *mockRenderer) invalidate() {
}

func (rnd *mockRenderer) addTexture(linear bool, clamp bool) texture {
	tex := &mockTexture{id: rnd.nextID}
	rnd.nextID++
	rnd.textures[tex.id] = tex
	return tex
}

func (rnd *mockRenderer) addFontTexture(fnt imgui.FontAtlas) texture {
	return rnd.addTexture(true, false)
}

func (rnd *mockRenderer) freeTexture(id uint32) {
	delete(rnd.textures, id)
	rnd.freed = append(rnd.freed, id)
}

func (rnd *mockRenderer) screenshot(finish chan ScreenshotResult) {
	finish <- ScreenshotResult{
		Err: fmt.Errorf("mock: renderer does not support screenshotting"),
	}
}

func testImage(w int, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestAddRejectsEmptyImage(t *testing.T) {
	tm := newTextureManager(newMockRenderer())

	_, err := tm.add(nil, true)
	if err == nil {
		t.Fatalf("expected error when adding nil image")
	}

	_, err = tm.add(image.NewRGBA(image.Rectangle{}), true)
	if err == nil {
		t.Fatalf("expected error when adding empty image")
	}

	test.Equate(t, tm.count(), 0)
}

func TestAddCopiesPixels(t *testing.T) {
	rnd := newMockRenderer()
	tm := newTextureManager(rnd)

	img := testImage(4, 4, color.RGBA{R: 100, A: 255})
	id, err := tm.add(img, true)
	test.ExpectedSuccess(t, err)
	test.Equate(t, tm.count(), 1)

	// mutating the caller's image must not affect the managed copy
	img.SetRGBA(0, 0, color.RGBA{R: 200, A: 255})
	test.Equate(t, int(tm.entries[id].pixels.RGBAAt(0, 0).R), 100)
}

func TestRenderUploadsOnce(t *testing.T) {
	rnd := newMockRenderer()
	tm := newTextureManager(rnd)

	id, err := tm.add(testImage(4, 4, color.RGBA{A: 255}), true)
	test.ExpectedSuccess(t, err)

	tex := rnd.textures[id]
	test.Equate(t, tex.creations, 1)
	test.Equate(t, tex.renders, 0)

	// the pending upload happens on the first render and only the first
	tm.render()
	test.Equate(t, tex.renders, 1)
	tm.render()
	test.Equate(t, tex.renders, 1)
}

func TestWholeImageUpdate(t *testing.T) {
	rnd := newMockRenderer()
	tm := newTextureManager(rnd)

	id, err := tm.add(testImage(4, 4, color.RGBA{A: 255}), true)
	test.ExpectedSuccess(t, err)
	tm.render()

	tex := rnd.textures[id]

	// same dimensions and zero offset replaces the whole image. nothing is
	// uploaded until the next render
	err = tm.update(id, testImage(4, 4, color.RGBA{G: 50, A: 255}), image.Point{})
	test.ExpectedSuccess(t, err)
	test.Equate(t, tex.updates, 0)
	test.Equate(t, int(tm.entries[id].pixels.RGBAAt(0, 0).G), 50)

	tm.render()
	test.Equate(t, tex.renders, 2)
}

func TestRegionUpdate(t *testing.T) {
	rnd := newMockRenderer()
	tm := newTextureManager(rnd)

	id, err := tm.add(testImage(8, 8, color.RGBA{A: 255}), true)
	test.ExpectedSuccess(t, err)
	tm.render()

	tex := rnd.textures[id]

	// a smaller image wholly inside the existing bounds updates in place
	err = tm.update(id, testImage(2, 2, color.RGBA{B: 80, A: 255}), image.Point{X: 4, Y: 4})
	test.ExpectedSuccess(t, err)
	test.Equate(t, tex.updates, 1)
	test.Equate(t, tex.lastOffset.X, 4)
	test.Equate(t, tex.lastOffset.Y, 4)

	// the CPU copy reflects the region
	test.Equate(t, int(tm.entries[id].pixels.RGBAAt(5, 5).B), 80)
	test.Equate(t, int(tm.entries[id].pixels.RGBAAt(0, 0).B), 0)

	// no whole-image upload is pending
	tm.render()
	test.Equate(t, tex.renders, 1)
}

func TestRegionUpdateWhilePendingCreation(t *testing.T) {
	rnd := newMockRenderer()
	tm := newTextureManager(rnd)

	id, err := tm.add(testImage(8, 8, color.RGBA{A: 255}), true)
	test.ExpectedSuccess(t, err)

	tex := rnd.textures[id]

	// the texture has not been uploaded yet so the region update is folded
	// into the upcoming full upload
	err = tm.update(id, testImage(2, 2, color.RGBA{B: 80, A: 255}), image.Point{X: 1, Y: 1})
	test.ExpectedSuccess(t, err)
	test.Equate(t, tex.updates, 0)
	test.Equate(t, int(tm.entries[id].pixels.RGBAAt(1, 1).B), 80)

	tm.render()
	test.Equate(t, tex.renders, 1)
}

func TestSizeChangeRecreates(t *testing.T) {
	rnd := newMockRenderer()
	tm := newTextureManager(rnd)

	id, err := tm.add(testImage(4, 4, color.RGBA{A: 255}), true)
	test.ExpectedSuccess(t, err)
	tm.render()

	tex := rnd.textures[id]

	// a differently sized image that does not fit inside the existing
	// bounds recreates the texture
	err = tm.update(id, testImage(16, 16, color.RGBA{R: 10, A: 255}), image.Point{})
	test.ExpectedSuccess(t, err)
	test.Equate(t, tex.creations, 2)

	tm.render()
	test.Equate(t, tex.renders, 2)
	test.Equate(t, tex.lastRender.Bounds().Size().X, 16)
}

func TestUpdateUnknownTexture(t *testing.T) {
	tm := newTextureManager(newMockRenderer())

	err := tm.update(100, testImage(4, 4, color.RGBA{A: 255}), image.Point{})
	test.ExpectedFailure(t, err)
}

func TestInvalidate(t *testing.T) {
	rnd := newMockRenderer()
	tm := newTextureManager(rnd)

	idA, err := tm.add(testImage(4, 4, color.RGBA{R: 1, A: 255}), true)
	test.ExpectedSuccess(t, err)
	idB, err := tm.add(testImage(4, 4, color.RGBA{R: 2, A: 255}), true)
	test.ExpectedSuccess(t, err)
	tm.render()

	// invalidation marks every texture for recreation and reupload
	tm.invalidate()
	test.Equate(t, rnd.textures[idA].creations, 2)
	test.Equate(t, rnd.textures[idB].creations, 2)

	tm.render()
	test.Equate(t, rnd.textures[idA].renders, 2)
	test.Equate(t, rnd.textures[idB].renders, 2)

	// the CPU copies survive invalidation
	test.Equate(t, int(tm.entries[idA].pixels.RGBAAt(0, 0).R), 1)
	test.Equate(t, int(tm.entries[idB].pixels.RGBAAt(0, 0).R), 2)
}

func TestFree(t *testing.T) {
	rnd := newMockRenderer()
	tm := newTextureManager(rnd)

	id, err := tm.add(testImage(4, 4, color.RGBA{A: 255}), true)
	test.ExpectedSuccess(t, err)
	test.Equate(t, tm.count(), 1)

	tm.free(id)
	test.Equate(t, tm.count(), 0)

	// freeing an unknown ID is not an error
	tm.free(id)
	test.Equate(t, tm.count(), 0)
}

func TestFreeReleasesRendererTexture(t *testing.T) {
	rnd := newMockRenderer()
	tm := newTextureManager(rnd)

	id, err := tm.add(testImage(4, 4, color.RGBA{A: 255}), true)
	test.ExpectedSuccess(t, err)
	tm.render()
	test.Equate(t, len(rnd.textures), 1)

	// the renderer keeps the texture until the frame has been drawn. the
	// draw data prepared this frame may still reference it
	tm.free(id)
	test.Equate(t, len(rnd.textures), 1)
	test.Equate(t, len(rnd.freed), 0)

	tm.processFrees()
	test.Equate(t, len(rnd.textures), 0)
	test.Equate(t, len(rnd.freed), 1)
	test.Equate(t, rnd.freed[0], id)

	// the queue does not release twice
	tm.processFrees()
	test.Equate(t, len(rnd.freed), 1)
}

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
	"image/draw"

	"github.com/scrimgui/scrim/curated"
	"github.com/scrimgui/scrim/logger"
)

// managedTexture associates a renderer texture with a CPU copy of its
// pixels. the CPU copy is authoritative: GPU storage can be dropped at any
// time (device loss) and rebuilt from it.
type managedTexture struct {
	tex    texture
	pixels *image.RGBA

	// pixels have changed since the last upload
	dirty bool
}

// textureManager looks after every image the overlay knows about, with the
// exception of the font atlas which is owned by the renderer.
//
// all functions must be called from the gui thread.
type textureManager struct {
	rnd     renderer
	entries map[uint32]*managedTexture

	// freed IDs are queued and the GPU release deferred until after the
	// frame has been drawn. the draw data prepared this frame may still
	// reference the texture
	pendingFrees []uint32
}

func newTextureManager(rnd renderer) *textureManager {
	return &textureManager{
		rnd:     rnd,
		entries: make(map[uint32]*managedTexture),
	}
}

// add a new image. the pixels are copied so the caller is free to reuse the
// image. returns the texture ID to use in imgui.Image() etc.
func (tm *textureManager) add(pixels *image.RGBA, linear bool) (uint32, error) {
	if pixels == nil || pixels.Bounds().Empty() {
		return 0, curated.Errorf("textures: refusing empty image")
	}

	mt := &managedTexture{
		tex:    tm.rnd.addTexture(linear, true),
		pixels: copyImage(pixels),
		dirty:  true,
	}
	mt.tex.markForCreation()

	id := mt.tex.getID()
	tm.entries[id] = mt

	return id, nil
}

// update an existing image. two forms of update are supported and which is
// used depends on the dimensions of the pixels argument:
//
// if the dimensions equal those of the existing image the whole image is
// replaced (the offset must be the zero point). if the dimensions differ
// and the offset places the new pixels wholly inside the existing image,
// the region at the offset is updated in place. any other combination
// recreates the texture at the new size.
func (tm *textureManager) update(id uint32, pixels *image.RGBA, offset image.Point) error {
	mt, ok := tm.entries[id]
	if !ok {
		return curated.Errorf("textures: no such texture (%d)", id)
	}
	if pixels == nil || pixels.Bounds().Empty() {
		return curated.Errorf("textures: refusing empty image")
	}

	newSize := pixels.Bounds().Size()
	oldSize := mt.pixels.Bounds().Size()

	if newSize == oldSize && offset == (image.Point{}) {
		mt.pixels = copyImage(pixels)
		mt.dirty = true
		return nil
	}

	// region update. the region must fit wholly inside the existing image
	region := image.Rectangle{Min: offset, Max: offset.Add(newSize)}
	if region.In(mt.pixels.Bounds()) {
		draw.Draw(mt.pixels, region, pixels, pixels.Bounds().Min, draw.Src)

		// a region update of a texture that is waiting on (re)creation is
		// subsumed by the full upload that is about to happen
		if !mt.dirty {
			mt.tex.update(copyImage(pixels), offset)
		}
		return nil
	}

	// size has changed. recreate GPU storage at the new size
	logger.Logf("textures", "texture %d resized from %v to %v", id, oldSize, newSize)
	mt.pixels = copyImage(pixels)
	mt.tex.markForCreation()
	mt.dirty = true

	return nil
}

// free the image. freeing an unknown ID is not an error, matching how
// imgui treats stale texture IDs. the GPU object is released after the
// current frame has been drawn.
func (tm *textureManager) free(id uint32) {
	delete(tm.entries, id)
	tm.pendingFrees = append(tm.pendingFrees, id)
}

// processFrees releases the GPU side of freed textures. called once per
// frame after the renderer has drawn.
func (tm *textureManager) processFrees() {
	for _, id := range tm.pendingFrees {
		tm.rnd.freeTexture(id)
	}
	tm.pendingFrees = tm.pendingFrees[:0]
}

// render uploads any pending pixel data. called once per frame before the
// renderer translates the draw data.
func (tm *textureManager) render() {
	for _, mt := range tm.entries {
		if mt.dirty {
			mt.tex.render(mt.pixels)
			mt.dirty = false
		}
	}
}

// invalidate marks every texture for recreation. the GPU storage is assumed
// to be gone, the CPU copies remain.
func (tm *textureManager) invalidate() {
	for _, mt := range tm.entries {
		mt.tex.markForCreation()
		mt.dirty = true
	}
}

func (tm *textureManager) count() int {
	return len(tm.entries)
}

func copyImage(src *image.RGBA) *image.RGBA {
	dst := image.NewRGBA(image.Rectangle{Max: src.Bounds().Size()})
	draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)
	return dst
}

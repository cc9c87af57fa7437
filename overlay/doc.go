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

// Package overlay draws a dear imgui interface over the top of a host
// application's own rendering. The host provides a DrawGUI() function,
// called once per frame, in which it declares its imgui windows and
// widgets. The overlay looks after everything else: the native window (or
// attachment to an existing native window), translation of the imgui draw
// data into renderer commands, texture management, and the forwarding of
// user input that the GUI does not want to the host.
//
// The overlay is serviced from a single goroutine, referred to throughout
// as the gui thread. New() and all subsequent calls to Service() and
// Destroy() must happen on that goroutine, which must also be locked to an
// OS thread.
//
// Three renderers are provided, selected at compile time with build
// constraints. The default renderer requires OpenGL 3.2; the gl21
// constraint selects a fixed-function OpenGL 2.1 renderer for older
// hardware; and on Windows the d3d9 constraint selects a Direct3D 9
// renderer.
//
// Whatever the renderer, the overlay takes care to save and restore any
// rendering state it touches. From the host's point of view the pipeline
// looks untouched after every frame. The overlay never clears the
// framebuffer, it only ever draws on top of what is already there.
//
// Renderer device loss (a Direct3D 9 concern but also possible with lost
// GL contexts) is recovered from automatically. The overlay keeps a CPU
// copy of every image it manages so that GPU textures can be rebuilt
// without reference to the host.
package overlay

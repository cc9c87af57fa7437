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

package main

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"time"

	"github.com/inkyblackness/imgui-go/v4"
	"github.com/scrimgui/scrim/logger"
	"github.com/scrimgui/scrim/overlay"
	"github.com/scrimgui/scrim/resources"
	"github.com/scrimgui/scrim/userinput"
	"github.com/scrimgui/scrim/version"
)

const gradientSize = 128

// demo is a small host application that shows off the overlay. it has no
// rendering of its own so the GUI is drawn over an empty window.
type demo struct {
	ov    *overlay.Overlay
	input chan userinput.Event

	// a generated image, exercised through the overlay's texture management
	gradient imgui.TextureID
	phase    int

	showImguiDemo bool

	// the most recent input event forwarded by the overlay
	lastEvent string

	// screenshot results arrive here, at the earliest one frame after the
	// request
	screenshots chan overlay.ScreenshotResult
}

func newDemo() *demo {
	return &demo{
		input:       make(chan userinput.Event, 32),
		screenshots: make(chan overlay.ScreenshotResult, 1),
	}
}

// UserInput implements the overlay.Host interface.
func (dmo *demo) UserInput() chan userinput.Event {
	return dmo.input
}

// DrawGUI implements the overlay.Host interface.
func (dmo *demo) DrawGUI() {
	imgui.Begin("Scrim Demo")
	defer imgui.End()

	ver, _, _ := version.Version()
	imgui.Text(fmt.Sprintf("%s (%s)", version.ApplicationName, ver))
	imgui.Text(fmt.Sprintf("%.1f fps", imgui.CurrentIO().Framerate()))

	imgui.Separator()

	imgui.Image(dmo.gradient, imgui.Vec2{X: gradientSize, Y: gradientSize})

	if imgui.Button("Cycle Image") {
		dmo.cycleGradient()
	}
	imgui.SameLine()
	if imgui.Button("Invalidate Device") {
		dmo.ov.InvalidateDevice()
	}
	imgui.SameLine()
	if imgui.Button("Screenshot") {
		dmo.ov.Screenshot(dmo.screenshots)
	}

	imgui.Separator()

	imgui.Checkbox("ImGui Demo Window", &dmo.showImguiDemo)

	imgui.Separator()

	imgui.Text("scroll lock captures the mouse for the host")
	if dmo.lastEvent != "" {
		imgui.Text(fmt.Sprintf("last host event: %s", dmo.lastEvent))
	}

	if dmo.showImguiDemo {
		imgui.ShowDemoWindow(&dmo.showImguiDemo)
	}
}

// cycleGradient updates a horizontal band of the image in place,
// exercising the overlay's partial texture update path.
func (dmo *demo) cycleGradient() {
	dmo.phase = (dmo.phase + 1) % 4

	band := image.NewRGBA(image.Rect(0, 0, gradientSize, gradientSize/4))
	for y := 0; y < gradientSize/4; y++ {
		for x := 0; x < gradientSize; x++ {
			band.SetRGBA(x, y, color.RGBA{
				R: uint8(x * 2),
				G: uint8(255 - x*2),
				B: uint8(dmo.phase * 60),
				A: 255,
			})
		}
	}

	err := dmo.ov.UpdateImage(dmo.gradient, band, image.Point{Y: dmo.phase * gradientSize / 4})
	if err != nil {
		logger.Logf("demo", "update image: %s", err.Error())
	}
}

func (dmo *demo) saveScreenshot(img *image.RGBA) {
	fn, err := resources.JoinPath("screenshots", fmt.Sprintf("scrim_%s.png", time.Now().Format("20060102_150405")))
	if err != nil {
		logger.Logf("demo", "screenshot: %s", err.Error())
		return
	}

	f, err := os.Create(fn)
	if err != nil {
		logger.Logf("demo", "screenshot: %s", err.Error())
		return
	}
	defer f.Close()

	err = png.Encode(f, img)
	if err != nil {
		logger.Logf("demo", "screenshot: %s", err.Error())
		return
	}

	logger.Logf("demo", "screenshot saved: %s", fn)
}

func makeGradient() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, gradientSize, gradientSize))
	for y := 0; y < gradientSize; y++ {
		for x := 0; x < gradientSize; x++ {
			img.SetRGBA(x, y, color.RGBA{
				R: uint8(x * 2),
				G: uint8(y * 2),
				B: 128,
				A: 255,
			})
		}
	}
	return img
}

func runDemo() error {
	dmo := newDemo()

	ov, err := overlay.New(dmo, overlay.Config{Title: "Scrim Demo"})
	if err != nil {
		return err
	}
	dmo.ov = ov
	defer ov.Destroy(os.Stderr)

	dmo.gradient, err = ov.AddImage(makeGradient(), true)
	if err != nil {
		return err
	}

	for !ov.HasQuit() {
		ov.Service()

		// drain input the overlay has forwarded to us. a host with its own
		// rendering would use these to drive its camera, player etc.
		drained := false
		for !drained {
			select {
			case ev := <-dmo.input:
				switch ev := ev.(type) {
				case userinput.EventQuit:
					ov.Quit()
				case userinput.EventKeyboard:
					if ev.Down && ev.Key == "Escape" {
						ov.Quit()
					} else {
						dmo.lastEvent = fmt.Sprintf("key %s (down=%v)", ev.Key, ev.Down)
					}
				case userinput.EventMouseButton:
					dmo.lastEvent = fmt.Sprintf("mouse %s (down=%v)", ev.Button, ev.Down)
				case userinput.EventMouseWheel:
					dmo.lastEvent = fmt.Sprintf("wheel %+.0f", ev.DeltaY)
				case userinput.EventMouseMotion:
					// too noisy to report
				case userinput.EventText:
					dmo.lastEvent = fmt.Sprintf("text %q", ev.Text)
				}
			default:
				drained = true
			}
		}

		select {
		case res := <-dmo.screenshots:
			if res.Err != nil {
				logger.Logf("demo", "screenshot: %s", res.Err.Error())
			} else {
				dmo.saveScreenshot(res.Image)
			}
		default:
		}
	}

	return nil
}

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
	"time"

	"github.com/veandco/go-sdl2/sdl"
)

// time periods in milliseconds that the service loop sleeps for at the end
// of each Service() call. the active period is used while the GUI is
// visible and the idle period when it is hidden.
const (
	activeSleepPeriod = 10
	idleSleepPeriod   = 500
)

type polling struct {
	ov *Overlay

	// ticker used to slow down servicing of mouse motion events when the
	// GUI is hidden
	motionTicker *time.Ticker

	// wake is used to preempt the timeout when we want to communicate
	// between iterations of the service loop. for example, closing a GUI
	// window might feel laggy without it (see commentary in service loop)
	wake bool

	// functions that need to be performed in the gui thread are queued for
	// serving by the Service() function
	service chan func()
}

func newPolling(ov *Overlay) *polling {
	pol := &polling{
		ov:      ov,
		service: make(chan func(), 1),
	}

	pol.motionTicker = time.NewTicker(time.Millisecond * activeSleepPeriod)

	return pol
}

// alert() forces the next call to wait() to resolve immediately.
func (pol *polling) alert() {
	pol.wake = true
}

func (pol *polling) wait() sdl.Event {
	select {
	case f := <-pol.service:
		f()
	default:
	}

	var timeout int

	if pol.wake {
		pol.wake = false
	} else {
		if pol.ov.guiVisible() {
			timeout = activeSleepPeriod
		} else {
			timeout = idleSleepPeriod
		}
	}

	// wait for new SDL event or until the selected timeout period has elapsed
	ev := sdl.WaitEventTimeout(timeout)

	// slow down mouse motion events when the GUI is hidden. if we don't do
	// this then waggling the mouse over the window will increase CPU usage
	// significantly
	if !pol.ov.guiVisible() {
		switch ev.(type) {
		case *sdl.MouseMotionEvent:
			<-pol.motionTicker.C
		}
	}

	return ev
}

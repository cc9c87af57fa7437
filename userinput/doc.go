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

// Package userinput defines the events that are passed on to the host
// application when the overlay's GUI has not claimed them.
//
// The overlay services the native event queue itself. Every event is
// offered to the GUI first. Events the GUI does not want, because the
// mouse is not over a GUI window or no text widget has keyboard focus,
// are translated into the types in this package and sent down the
// channel returned by the host's UserInput() function.
//
// The channel should be buffered and the host should drain it promptly.
// Events that cannot be sent without blocking are dropped and the drop
// is logged.
package userinput

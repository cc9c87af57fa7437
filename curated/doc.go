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

// Package curated is a helper package for the plain Go language error type.
// Curated errors implement the error interface.
//
// Curated errors are created with the Errorf() function. This is similar to
// the Errorf() function in the fmt package. It takes a formatting pattern,
// placeholder values and returns an error.
//
// The Is() function can be used to check whether an error was created with a
// specific pattern. The Has() function is similar but checks if a pattern
// occurs somewhere in the error chain.
//
//	e := curated.Errorf("gl: %v", err)
//	if curated.Has(e, "gl: %v") {
//		...
//	}
//
// The Error() function implementation for curated errors normalises the
// error chain, removing duplicate adjacent message parts. The practical
// advantage of this is that it alleviates the problem of when and how to
// wrap errors: wrapping the same context twice will not produce a stuttering
// message.
package curated

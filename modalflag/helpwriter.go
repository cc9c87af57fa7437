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

package modalflag

import (
	"fmt"
	"strings"
)

// helpWriter buffers the output of the flag package's own help message so
// that it can be combined with the sub-mode list and any additional help.
type helpWriter struct {
	buffer strings.Builder
}

func (hw *helpWriter) Write(p []byte) (n int, err error) {
	return hw.buffer.Write(p)
}

func (hw *helpWriter) write(md *Modes) {
	if md.Output == nil {
		return
	}

	if p := md.Path(); p != "" {
		fmt.Fprintf(md.Output, "mode: %s\n", p)
	}

	if s := hw.buffer.String(); s != "" {
		fmt.Fprint(md.Output, s)
	}

	if len(md.subModes) > 0 {
		fmt.Fprintf(md.Output, "available sub-modes: %s\n", strings.Join(md.subModes, ", "))
		fmt.Fprintf(md.Output, "  default: %s\n", md.subModes[0])
	}

	if md.additionalHelp != "" {
		fmt.Fprintf(md.Output, "\n%s\n", md.additionalHelp)
	}
}

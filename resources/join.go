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

// Package resources decides where the application's on-disk resources
// (preference files, imgui ini file, screenshots) live.
package resources

import (
	"os"
	"path/filepath"
	"strings"
)

// the name of the directory the application's resources are stored in,
// relative to the user's config directory.
const resourceDir = "scrim"

// the portable directory. if this directory exists in the current working
// directory then it is used in preference to the user's config directory.
const portableDir = ".scrim"

// JoinPath prepends the supplied path with an OS specific base path.
//
// The function creates all folders necessary to reach the end of the
// sub-path. It does not otherwise touch or create the file.
func JoinPath(path ...string) (string, error) {
	p := filepath.Join(path...)

	var b string

	if _, err := os.Stat(portableDir); err == nil {
		b = portableDir
	} else {
		c, err := os.UserConfigDir()
		if err != nil {
			return "", err
		}
		b = filepath.Join(c, resourceDir)
	}

	// do not prepend base path if it is already present
	if !strings.HasPrefix(p, b) {
		p = filepath.Join(b, p)
	}

	if err := os.MkdirAll(filepath.Dir(p), 0700); err != nil {
		return "", err
	}

	return p, nil
}

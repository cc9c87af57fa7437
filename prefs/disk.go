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

// Package prefs provides a simple file-backed preferences system. Typed
// preference values are registered with a Disk instance against a unique
// key; Load() and Save() transfer all registered values at once.
//
// Only preferences known to the Disk instance are touched on Save(), other
// entries in the file are preserved. This allows several parts of the
// application to share one prefs file.
package prefs

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/scrimgui/scrim/curated"
)

// WarningBoilerPlate is the first line in a prefs file. Files without this
// header are refused, to reduce the chance of scribbling over an unrelated
// file.
const WarningBoilerPlate = "*** do not edit this file by hand ***"

// the string that separates a key from its value in the prefs file.
const keySep = " :: "

// Disk represents preference values as stored on disk.
type Disk struct {
	path    string
	entries map[string]pref
}

// NewDisk is the preferred method of initialisation for the Disk type.
func NewDisk(path string) (*Disk, error) {
	return &Disk{
		path:    path,
		entries: make(map[string]pref),
	}, nil
}

// Add a preference value to the list of values to save/load to/from disk.
// The key must be unique to this Disk instance and must not contain the
// key separator sequence.
func (dsk *Disk) Add(key string, p pref) error {
	if strings.Contains(key, strings.TrimSpace(keySep)) {
		return curated.Errorf("prefs: invalid key (%s)", key)
	}
	if _, ok := dsk.entries[key]; ok {
		return curated.Errorf("prefs: duplicate key (%s)", key)
	}
	dsk.entries[key] = p
	return nil
}

// HasEntry returns true if the named entry has been registered with Add().
func (dsk *Disk) HasEntry(key string) bool {
	_, ok := dsk.entries[key]
	return ok
}

// load the current contents of the prefs file. entries not being serviced
// by this Disk instance are returned so they can be preserved on Save().
func (dsk *Disk) read() (map[string]string, error) {
	other := make(map[string]string)

	f, err := os.Open(dsk.path)
	if err != nil {
		if os.IsNotExist(err) {
			return other, nil
		}
		return nil, curated.Errorf("prefs: %v", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)

	// check boilerplate
	if scanner.Scan() {
		if scanner.Text() != WarningBoilerPlate {
			return nil, curated.Errorf("prefs: not a valid prefs file (%s)", dsk.path)
		}
	}

	for scanner.Scan() {
		s := strings.SplitN(scanner.Text(), keySep, 2)
		if len(s) != 2 {
			continue
		}
		other[s[0]] = s[1]
	}

	if err := scanner.Err(); err != nil {
		return nil, curated.Errorf("prefs: %v", err)
	}

	return other, nil
}

// Load preference values from disk. Values in the prefs file that have no
// registered entry are ignored (but preserved by Save()).
//
// If saveOnFirstUse is true then the file will be written when it does not
// yet exist, seeding it with the current (default) values.
func (dsk *Disk) Load(saveOnFirstUse bool) error {
	if _, err := os.Stat(dsk.path); err != nil {
		if os.IsNotExist(err) && saveOnFirstUse {
			return dsk.Save()
		}
		return nil
	}

	onDisk, err := dsk.read()
	if err != nil {
		return err
	}

	for key, p := range dsk.entries {
		if v, ok := onDisk[key]; ok {
			if err := p.Set(v); err != nil {
				return curated.Errorf("prefs: %v", err)
			}
		}
	}

	return nil
}

// Save current preference values to disk.
func (dsk *Disk) Save() error {
	// begin with whatever is already in the file so that entries belonging
	// to other Disk instances survive
	onDisk, err := dsk.read()
	if err != nil {
		return err
	}

	for key, p := range dsk.entries {
		onDisk[key] = p.String()
	}

	// write entries in a stable order
	keys := make([]string, 0, len(onDisk))
	for key := range onDisk {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	f, err := os.Create(dsk.path)
	if err != nil {
		return curated.Errorf("prefs: %v", err)
	}
	defer f.Close()

	fmt.Fprintln(f, WarningBoilerPlate)
	for _, key := range keys {
		fmt.Fprintf(f, "%s%s%s\n", key, keySep, onDisk[key])
	}

	return nil
}

// String returns a readable representation of all entries registered with
// this Disk instance.
func (dsk *Disk) String() string {
	keys := make([]string, 0, len(dsk.entries))
	for key := range dsk.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	s := strings.Builder{}
	for _, key := range keys {
		s.WriteString(fmt.Sprintf("%s%s%s\n", key, keySep, dsk.entries[key].String()))
	}
	return s.String()
}

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

package prefs

import (
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
)

// Value represents the actual Go preference value.
type Value interface{}

// types supported by the prefs system must implement the pref interface.
type pref interface {
	fmt.Stringer
	Set(value Value) error
	Get() Value
}

// Bool implements a boolean type in the prefs system.
//
// The value is stored atomically so that it is safe to Get() from a
// different goroutine to the one that Set() it. This matters for the
// overlay: preferences are written from the service loop but may be read
// from the host application's thread.
type Bool struct {
	value    atomic.Value // bool
	hookPost func(value Value) error
}

func (p *Bool) String() string {
	ov := p.value.Load()
	if ov == nil {
		return "false"
	}
	return fmt.Sprintf("%v", ov.(bool))
}

// Set new value to Bool type. New value must be of type bool or string. A
// string value of anything other than "true" (case insensitive) will set
// the value to false.
func (p *Bool) Set(v Value) error {
	var nv bool
	switch v := v.(type) {
	case bool:
		nv = v
	case string:
		nv = strings.EqualFold(v, "true")
	default:
		return fmt.Errorf("set: cannot convert %T to prefs.Bool", v)
	}

	p.value.Store(nv)

	if p.hookPost != nil {
		return p.hookPost(nv)
	}

	return nil
}

// Get returns the raw pref value.
func (p *Bool) Get() Value {
	ov := p.value.Load()
	if ov == nil {
		return false
	}
	return ov.(bool)
}

// SetHookPost sets the post-set hook function. The hook is called whenever
// the value changes, including when the value is loaded from disk.
func (p *Bool) SetHookPost(f func(value Value) error) {
	p.hookPost = f
}

// String implements a string type in the prefs system.
type String struct {
	value    atomic.Value // string
	maxLen   int
	hookPost func(value Value) error
}

func (p *String) String() string {
	ov := p.value.Load()
	if ov == nil {
		return ""
	}
	return ov.(string)
}

// SetMaxLen sets the maximum length for a string value. Existing values are
// cropped as necessary. A length of zero means no limit.
func (p *String) SetMaxLen(max int) {
	p.maxLen = max

	ov := p.value.Load()
	if ov != nil {
		p.Set(ov)
	}
}

// Set new value to String type. New value can be of any type, the fmt
// package's Sprintf() function is used for the conversion.
func (p *String) Set(v Value) error {
	nv := fmt.Sprintf("%v", v)

	if p.maxLen > 0 && len(nv) > p.maxLen {
		nv = nv[:p.maxLen]
	}

	p.value.Store(nv)

	if p.hookPost != nil {
		return p.hookPost(nv)
	}

	return nil
}

// Get returns the raw pref value.
func (p *String) Get() Value {
	ov := p.value.Load()
	if ov == nil {
		return ""
	}
	return ov.(string)
}

// SetHookPost sets the post-set hook function.
func (p *String) SetHookPost(f func(value Value) error) {
	p.hookPost = f
}

// Int implements an integer type in the prefs system.
type Int struct {
	value    atomic.Value // int
	hookPost func(value Value) error
}

func (p *Int) String() string {
	ov := p.value.Load()
	if ov == nil {
		return "0"
	}
	return fmt.Sprintf("%d", ov.(int))
}

// Set new value to Int type. New value must be of type int or string.
func (p *Int) Set(v Value) error {
	var nv int
	switch v := v.(type) {
	case int:
		nv = v
	case string:
		var err error
		nv, err = strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("set: cannot convert %s to prefs.Int", v)
		}
	default:
		return fmt.Errorf("set: cannot convert %T to prefs.Int", v)
	}

	p.value.Store(nv)

	if p.hookPost != nil {
		return p.hookPost(nv)
	}

	return nil
}

// Get returns the raw pref value.
func (p *Int) Get() Value {
	ov := p.value.Load()
	if ov == nil {
		return 0
	}
	return ov.(int)
}

// SetHookPost sets the post-set hook function.
func (p *Int) SetHookPost(f func(value Value) error) {
	p.hookPost = f
}

// Float implements a float64 type in the prefs system.
type Float struct {
	value    atomic.Value // float64
	hookPost func(value Value) error
}

func (p *Float) String() string {
	ov := p.value.Load()
	if ov == nil {
		return "0.0"
	}
	return fmt.Sprintf("%f", ov.(float64))
}

// Set new value to Float type. New value must be of type float32, float64
// or string.
func (p *Float) Set(v Value) error {
	var nv float64
	switch v := v.(type) {
	case float64:
		nv = v
	case float32:
		nv = float64(v)
	case int:
		nv = float64(v)
	case string:
		var err error
		nv, err = strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("set: cannot convert %s to prefs.Float", v)
		}
	default:
		return fmt.Errorf("set: cannot convert %T to prefs.Float", v)
	}

	p.value.Store(nv)

	if p.hookPost != nil {
		return p.hookPost(nv)
	}

	return nil
}

// Get returns the raw pref value.
func (p *Float) Get() Value {
	ov := p.value.Load()
	if ov == nil {
		return float64(0)
	}
	return ov.(float64)
}

// SetHookPost sets the post-set hook function.
func (p *Float) SetHookPost(f func(value Value) error) {
	p.hookPost = f
}

/*
NAME
 json.go - minimal single-field JSON extractor.

LICENSE
 netsender is Copyright (C) 2017-2026 the Australian Ocean Lab (AusOcean).

 It is free software: you can redistribute it and/or modify them
 under the terms of the GNU General Public License as published by the
 Free Software Foundation, either version 3 of the License, or (at your
 option) any later version.

 It is distributed in the hope that it will be useful, but WITHOUT
 ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
 FITNESS FOR A PARTICULAR PURPOSE. See the GNU General Public License
 for more details.

 You should have received a copy of the GNU General Public License in
 gpl.txt. If not, see http://www.gnu.org/licenses.
*/

package netsender

import (
	"fmt"
	"strconv"
	"strings"
)

// JSONDecoder is a minimal, single-level flat-key scanner over a JSON
// reply string. It is not a general JSON parser: it locates a literal
// "key" substring, skips the colon and one leading space, then scans a
// value terminated either at the first comma or closing brace
// (numeric/negative values) or at the matching closing quote (string
// values). Nested objects and
// escaped quotes are not supported
type JSONDecoder struct {
	reply string
}

// NewJSONDecoder returns a JSONDecoder over reply.
func NewJSONDecoder(reply string) *JSONDecoder {
	return &JSONDecoder{reply: reply}
}

// find locates the raw value text for "key" in the reply, returning
// the raw text, whether it was quoted, and whether the key and a
// recognizable value opener were both found.
func (d *JSONDecoder) find(key string) (raw string, quoted bool, ok bool) {
	needle := `"` + key + `"`
	i := strings.Index(d.reply, needle)
	if i < 0 {
		return "", false, false
	}
	s := d.reply[i+len(needle):]
	s = strings.TrimLeft(s, " ")
	if len(s) == 0 || s[0] != ':' {
		return "", false, false
	}
	s = s[1:]
	if len(s) > 0 && s[0] == ' ' {
		s = s[1:]
	}
	if len(s) == 0 {
		return "", false, false
	}
	switch {
	case s[0] == '"':
		end := strings.Index(s[1:], `"`)
		if end < 0 {
			return "", false, false
		}
		return s[1 : 1+end], true, true
	case s[0] == '-' || (s[0] >= '0' && s[0] <= '9'):
		end := strings.IndexAny(s, ",}")
		if end < 0 {
			end = len(s)
		}
		return strings.TrimRight(s[:end], " \t\r\n"), false, true
	default:
		return "", false, false
	}
}

// Int returns the integer value for key, or ErrNoKey if key is absent
// or its value is not a bare number.
func (d *JSONDecoder) Int(key string) (int, error) {
	raw, quoted, ok := d.find(key)
	if !ok || quoted {
		return 0, ErrNoKey
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("netsender: %s is not an int: %w", key, err)
	}
	return n, nil
}

// String returns the string value for key, or ErrNoKey if key is
// absent or its value is not a quoted string.
func (d *JSONDecoder) String(key string) (string, error) {
	raw, quoted, ok := d.find(key)
	if !ok || !quoted {
		return "", ErrNoKey
	}
	return raw, nil
}

/*
NAME
  modenv.go - a filemap-backed netsender.NVNamespace.

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

package platform

import (
	"os"
	"sort"
	"sync"

	"github.com/ausocean/utils/filemap"
)

// FileNV is a small key/value NV store backed by a flat text file, one
// "key value" pair per line, the same layout netsender.conf uses.
type FileNV struct {
	path string
	mu   sync.Mutex
}

// NewFileNV returns a FileNV backed by path. The file need not exist
// yet; it is created on the first Set.
func NewFileNV(path string) *FileNV {
	return &FileNV{path: path}
}

// Get reads key from the backing file, returning ok=false if the file
// or the key is absent.
func (nv *FileNV) Get(key string) (string, bool) {
	nv.mu.Lock()
	defer nv.mu.Unlock()

	if _, err := os.Stat(nv.path); err != nil {
		return "", false
	}
	m, err := filemap.ReadFrom(nv.path, "\n", " ")
	if err != nil {
		return "", false
	}
	v, ok := m[key]
	return v, ok
}

// Set writes key=value into the backing file, preserving any other
// keys already present.
func (nv *FileNV) Set(key, value string) error {
	nv.mu.Lock()
	defer nv.mu.Unlock()

	m := make(map[string]string)
	if _, err := os.Stat(nv.path); err == nil {
		if existing, err := filemap.ReadFrom(nv.path, "\n", " "); err == nil {
			m = existing
		}
	}
	m[key] = value

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return filemap.WriteTo(nv.path, "\n", " ", m, keys)
}

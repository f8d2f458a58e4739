/*
NAME
 sdfs.go - netsender.FileSystem over the local file system.

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
	"fmt"
	"os"
	"path/filepath"

	"github.com/ausocean/netsender/netsender"
)

// SDFileSystem is the offline handler's backing store: an SD card (or
// any mounted directory) holding one append-only file per pin, rooted
// at root.
type SDFileSystem struct {
	root string
}

// NewSDFileSystem returns an SDFileSystem rooted at root, creating the
// directory if it does not already exist.
func NewSDFileSystem(root string) (*SDFileSystem, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("platform: could not create offline data directory: %w", err)
	}
	return &SDFileSystem{root: root}, nil
}

// OpenAppend opens (creating if necessary) the file at path, which the
// offline handler treats as rooted at "/".
func (fs *SDFileSystem) OpenAppend(path string) (netsender.AppendFile, error) {
	full := filepath.Join(fs.root, filepath.Clean(path))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return nil, fmt.Errorf("platform: could not create %s: %w", filepath.Dir(full), err)
	}
	f, err := os.OpenFile(full, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("platform: could not open %s: %w", full, err)
	}
	return &sdFile{f: f}, nil
}

// sdFile adapts *os.File to netsender.AppendFile.
type sdFile struct {
	f *os.File
}

func (a *sdFile) Write(p []byte) (int, error) { return a.f.Write(p) }
func (a *sdFile) Close() error { return a.f.Close() }

func (a *sdFile) Size() (int64, error) {
	info, err := a.f.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

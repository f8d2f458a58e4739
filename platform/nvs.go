/*
NAME
 nvs.go - a file-backed netsender.Store.

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

// Package platform supplies the Raspberry Pi implementations of every
// collaborator interface netsender.Init needs: a file-backed config
// blob, GPIO pins, Wi-Fi control, a serial console, the SD card file
// system, and the reset mechanism.
package platform

import (
	"fmt"
	"os"
)

// FileStore persists the packed Config blob as a single fixed-size
// file, standing in for the EEPROM/NVS byte-store of the original
// firmware
type FileStore struct {
	path string
	size int
}

// NewFileStore returns a FileStore of size bytes at path. The file is
// created and erased-flash-filled (0xFF) if it does not already exist
// or is the wrong size.
func NewFileStore(path string, size int) (*FileStore, error) {
	fs := &FileStore{path: path, size: size}
	buf, err := os.ReadFile(path)
	if err != nil || len(buf) != size {
		blank := make([]byte, size)
		for i := range blank {
			blank[i] = 0xFF
		}
		if err := os.WriteFile(path, blank, 0o644); err != nil {
			return nil, fmt.Errorf("platform: could not initialise config store: %w", err)
		}
	}
	return fs, nil
}

// ReadBlob copies the stored bytes into buf.
func (fs *FileStore) ReadBlob(buf []byte) error {
	data, err := os.ReadFile(fs.path)
	if err != nil {
		return fmt.Errorf("platform: read config store: %w", err)
	}
	if len(data) != len(buf) {
		return fmt.Errorf("platform: config store size mismatch: got %d want %d", len(data), len(buf))
	}
	copy(buf, data)
	return nil
}

// WriteBlob overwrites the stored bytes with buf.
func (fs *FileStore) WriteBlob(buf []byte) error {
	if err := os.WriteFile(fs.path, buf, 0o644); err != nil {
		return fmt.Errorf("platform: write config store: %w", err)
	}
	return nil
}

/*
NAME
 interfaces.go - external collaborator interfaces consumed by the control loop.

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

// Package netsender implements the NetSender control loop: cycle timing,
// the service request/response state machine, persistent configuration
// and variables, the alarm subsystem, pulse generation, and the
// pluggable online/offline request handlers. Concrete transports,
// storage, and pin drivers are supplied by callers through the
// interfaces in this file.
package netsender

import (
	"io"
	"time"
)

// Logger is the interface NetSender expects clients to use for logging.
type Logger interface {
	// SetLevel sets the level of the Logger. Calls to Log with a level
	// above the set level will be logged, all others will be omitted.
	SetLevel(int8)

	// Log writes a log entry at the given level with a message and a
	// set of message parameters.
	Log(level int8, message string, params ...interface{})
}

// Log levels, matching the zap levels NetSender clients typically use.
const (
	DebugLevel   int8 = -1
	InfoLevel    int8 = 0
	WarningLevel int8 = 1
	ErrorLevel   int8 = 2
	FatalLevel   int8 = 5
)

// Clock supplies the 32-bit millisecond counter the run loop uses for cycle
// timing. A real implementation wraps an unsigned hardware millis
// counter, which overflows (wraps) every ~49.7 days.
type Clock interface {
	Millis() uint32
}

// Store is the NVS/EEPROM byte-store collaborator backing the packed
// Config blob. ReadBlob/WriteBlob operate on the full blob as a single
// byte image at a fixed offset.
type Store interface {
	ReadBlob(buf []byte) error
	WriteBlob(buf []byte) error
}

// NVNamespace is a small separate key/value NV store, used to persist
// the active handler name and the device Mode across restarts without
// disturbing the main Config blob.
type NVNamespace interface {
	Get(key string) (string, bool)
	Set(key, value string) error
}

// Radio is the Wi-Fi collaborator the Online handler drives. Powering
// the radio on/off and associating with an access point are platform
// concerns; the HTTP exchange itself is not abstracted.
type Radio interface {
	PowerOn() error
	PowerOff() error
	Connect(credentialsCSV string) error
	MAC() (string, error)
}

// AnalogReader reads a hardware analog pin by number.
type AnalogReader interface {
	ReadAnalog(pin int) (int, error)
}

// AnalogWriter writes (e.g. PWM) a hardware analog pin by number.
type AnalogWriter interface {
	WriteAnalog(pin, value int) error
}

// DigitalReader reads a hardware digital pin by number.
type DigitalReader interface {
	ReadDigital(pin int) (int, error)
}

// DigitalWriter writes a hardware digital pin by number.
type DigitalWriter interface {
	WriteDigital(pin, value int) error
}

// ExternalReader services X pins whose index is at or beyond the
// virtual bank size (16). B/T pins are not passed to it; with no
// PostBodyReader they read as -1.
type ExternalReader interface {
	ReadExternal(pin *Pin) error
}

// PostBodyReader services B/T (post-body) pins.
type PostBodyReader interface {
	ReadPostBody(pin *Pin) error
}

// AppendFile is an append-only file handle used by the offline handler.
type AppendFile interface {
	io.Writer
	io.Closer
	// Size returns the file's current size in bytes, used to detect
	// whether the file was just created (and so needs a header).
	Size() (int64, error)
}

// FileSystem is the SD-card (or other local storage) collaborator the
// offline handler uses for per-pin data files.
type FileSystem interface {
	OpenAppend(path string) (AppendFile, error)
}

// Console is the serial console collaborator used to print the full
// configuration and status flashes.
type Console interface {
	Print(s string)
}

// Sleeper provides the cooperative suspension points the run loop uses:
// ordinary blocking pauses within a cycle, and the end-of-cycle deep
// sleep when the monitor period exceeds the actuation period.
type Sleeper interface {
	Sleep(d time.Duration)
	DeepSleep(d time.Duration)
}

// Resetter performs the platform reset invoked by restart.
type Resetter interface {
	Reset()
}

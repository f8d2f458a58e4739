/*
NAME
 config.go - the packed persistent configuration blob and its store.

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
	"encoding/binary"
	"fmt"
)

// Version is the compiled firmware version. Version/10 identifies the
// minor-version family; a stored blob from a different family is
// zeroed and rewritten
const Version uint16 = 214

// Field widths of the packed Config blob
const (
	wifiCSVLen   = 80
	deviceKeyLen = 32
	pinsCSVLen   = 80
	reservedLen  = 32

	// configBlobSize is the total size, in bytes, of the packed blob.
	configBlobSize = 2 /*version*/ + 2 /*monPeriod*/ + 2 /*actPeriod*/ + 2 /*bootReason*/ +
		wifiCSVLen + deviceKeyLen + pinsCSVLen + pinsCSVLen +
		int(NumVars)*2 + reservedLen
)

// BootReason identifies why the node last restarted.
type BootReason uint16

const (
	BootNormal BootReason = iota
	BootWiFi                     // Wi-Fi disconnect failure.
	BootAlarm                    // auto-restart due to a persisting alarm.

	// bootClear is a transient in-memory marker (older variant) coerced
	// to BootAlarm before persisting; see restart.go.
	bootClear BootReason = 255
)

func (r BootReason) String() string {
	switch r {
	case BootNormal:
		return "Normal"
	case BootWiFi:
		return "WiFi"
	case BootAlarm:
		return "Alarm"
	case bootClear:
		return "Clear"
	default:
		return "Unknown"
	}
}

// retryMonPeriod is the monitor period floor applied when a freshly
// zeroed Config would otherwise leave monPeriod at 0.
const retryMonPeriod = 5

// Config is the packed persistent configuration blob. Field order
// matches exactly; it is (de)serialized as a single fixed-
// size byte image.
type Config struct {
	Version    uint16
	MonPeriod  uint16     // seconds
	ActPeriod  uint16     // seconds
	BootReason BootReason
	WiFiCSV    string     // "ssid,key"
	DeviceKey  string
	InputsCSV  string
	OutputsCSV string
	Vars       Vars
}

// marshal packs cfg into a configBlobSize-byte image.
func (cfg *Config) marshal() []byte {
	buf := make([]byte, configBlobSize)
	off := 0
	putU16 := func(v uint16) {
		binary.LittleEndian.PutUint16(buf[off:], v)
		off += 2
	}
	putStr := func(s string, n int) {
		copy(buf[off:off+n], s)
		off += n
	}
	putU16(cfg.Version)
	putU16(cfg.MonPeriod)
	putU16(cfg.ActPeriod)
	putU16(uint16(cfg.BootReason))
	putStr(cfg.WiFiCSV, wifiCSVLen)
	putStr(cfg.DeviceKey, deviceKeyLen)
	putStr(cfg.InputsCSV, pinsCSVLen)
	putStr(cfg.OutputsCSV, pinsCSVLen)
	for _, v := range cfg.Vars {
		putU16(uint16(v))
	}
	// Remaining reservedLen bytes stay zero.
	return buf
}

// unmarshal populates cfg from a configBlobSize-byte image, translating
// 0xFF bytes to 0x00 (erased-flash convention) before interpreting
// fields.
func (cfg *Config) unmarshal(buf []byte) error {
	if len(buf) != configBlobSize {
		return fmt.Errorf("netsender: config blob has wrong size: got %d want %d", len(buf), configBlobSize)
	}
	clean := make([]byte, len(buf))
	for i, b := range buf {
		if b == 0xFF {
			clean[i] = 0x00
		} else {
			clean[i] = b
		}
	}
	off := 0
	getU16 := func() uint16 {
		v := binary.LittleEndian.Uint16(clean[off:])
		off += 2
		return v
	}
	getStr := func(n int) string {
		s := clean[off : off+n]
		off += n
		end := 0
		for end < len(s) && s[end] != 0 {
			end++
		}
		return string(s[:end])
	}
	cfg.Version = getU16()
	cfg.MonPeriod = getU16()
	cfg.ActPeriod = getU16()
	cfg.BootReason = BootReason(getU16())
	cfg.WiFiCSV = getStr(wifiCSVLen)
	cfg.DeviceKey = getStr(deviceKeyLen)
	cfg.InputsCSV = getStr(pinsCSVLen)
	cfg.OutputsCSV = getStr(pinsCSVLen)
	for i := range cfg.Vars {
		cfg.Vars[i] = int16(getU16())
	}
	return nil
}

// PersistentStore reads and writes the packed Config blob through a
// Store collaborator, applying version-family invalidation and the
// monitor-period floor on every read.
type PersistentStore struct {
	store   Store
	console Console
}

// NewPersistentStore returns a PersistentStore backed by store. console
// may be nil, in which case PrintConfig is a no-op.
func NewPersistentStore(store Store, console Console) *PersistentStore {
	return &PersistentStore{store: store, console: console}
}

// Read copies the stored blob into cfg. If the stored version family
// (version/10) differs from the compiled version family, the entire
// blob is zeroed in memory and cfg.Version is set to Version. If
// cfg.MonPeriod is then zero, it is set to retryMonPeriod.
func (ps *PersistentStore) Read(cfg *Config) error {
	buf := make([]byte, configBlobSize)
	if err := ps.store.ReadBlob(buf); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistFailure, err)
	}
	if err := cfg.unmarshal(buf); err != nil {
		return err
	}
	if cfg.Version/10 != Version/10 {
		*cfg = Config{}
		cfg.Version = Version
	}
	if cfg.MonPeriod == 0 {
		cfg.MonPeriod = retryMonPeriod
	}
	return nil
}

// Write persists the full blob and prints it to the console. A store
// failure is reported but is non-fatal: the core continues operating
// on the in-memory cfg.
func (ps *PersistentStore) Write(cfg *Config) error {
	buf := cfg.marshal()
	ps.PrintConfig(cfg)
	if err := ps.store.WriteBlob(buf); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistFailure, err)
	}
	return nil
}

// ReadVars copies the persisted variable tail into cfg.Vars.
func (ps *PersistentStore) ReadVars(cfg *Config) error {
	var stored Config
	if err := ps.Read(&stored); err != nil {
		return err
	}
	cfg.Vars = stored.Vars
	return nil
}

// WriteVars copies vars into cfg and persists the whole blob.
func (ps *PersistentStore) WriteVars(cfg *Config, vars Vars) error {
	cfg.Vars = vars
	return ps.Write(cfg)
}

// PrintConfig emits all fields of cfg in a stable order to the serial
// console.
func (ps *PersistentStore) PrintConfig(cfg *Config) {
	if ps.console == nil {
		return
	}
	ps.console.Print(fmt.Sprintf(
		"config: version=%d monPeriod=%d actPeriod=%d bootReason=%s wifi=%q deviceKey=%q inputs=%q outputs=%q",
		cfg.Version, cfg.MonPeriod, cfg.ActPeriod, cfg.BootReason, cfg.WiFiCSV, cfg.DeviceKey, cfg.InputsCSV, cfg.OutputsCSV))
	for v := Variable(0); v < NumVars; v++ {
		ps.console.Print(fmt.Sprintf(" var %s=%d", v, cfg.Vars[v]))
	}
}

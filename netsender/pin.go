/*
NAME
 pin.go - pin naming, CSV parsing, and the virtual pin bank.

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
	"strconv"
	"strings"
)

// MaxPins bounds the number of pins parsed from a single CSV list.
const MaxPins = 32

// Pin holds a pin name, its integer value, and optional binary payload
// data (for B/T post-body pins). The first character of Name denotes
// the pin kind: A (analog hardware), D (digital hardware), B/T (post
// body, binary/text), X (virtual).
type Pin struct {
	Name     string
	Value    int
	Data     []byte
	MimeType string
}

// Virtual pin bank indices with reserved meanings. Reads of indices at
// or beyond vBankSize delegate to an ExternalReader.
const (
	vxBandwidth0    = 0  // reserved: bandwidth stats.
	vxBandwidth1    = 1  // reserved: bandwidth stats.
	vxBandwidth2    = 2  // reserved: bandwidth stats.
	vxLastBattery   = 10 // last battery reading (initial -1).
	vxAlarmed       = 11 // alarmed flag.
	vxTotalAlarms   = 12 // total alarms raised since boot.
	vxLastBoot      = 13 // echoes last boot reason.
	vxPulseSuppress = 14 // one-shot pulse-suppression flag, cleared each cycle.

	// vBankSize is the size of the fixed virtual pin bank.
	vBankSize = 16
)

// downloadSpeedPin is the historical "X10 except" carve-out: a
// virtual pin that is allowed to carry a negative value in a service
// request. It is a compatibility clause, not a general exception.
const downloadSpeedPin = "X10"

// validPinPrefixes are the single-character pin kind prefixes.
const validPinPrefixes = "ABDTX"

// validPinName reports whether name matches [ABDTX][0-9]{1,2} and has
// total length < 4.
func validPinName(name string) bool {
	if len(name) < 2 || len(name) >= 4 {
		return false
	}
	if !strings.ContainsRune(validPinPrefixes, rune(name[0])) {
		return false
	}
	for _, c := range name[1:] {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// pinNumber returns the numeric suffix of a validated pin name.
func pinNumber(name string) (int, error) {
	return strconv.Atoi(name[1:])
}

// ParseCSV tokenizes csv on commas, keeps only valid pin names matching
// restrictPrefix (a set of allowed first characters, or "" for no
// restriction), and returns at most MaxPins pins with Value -1.
// Invalid names are silently dropped.
func ParseCSV(csv, restrictPrefix string) []Pin {
	if csv == "" {
		return nil
	}
	toks := strings.Split(csv, ",")
	pins := make([]Pin, 0, len(toks))
	for _, tok := range toks {
		if len(pins) >= MaxPins {
			break
		}
		if !validPinName(tok) {
			continue
		}
		if restrictPrefix != "" && !strings.ContainsRune(restrictPrefix, rune(tok[0])) {
			continue
		}
		pins = append(pins, Pin{Name: tok, Value: -1})
	}
	if len(pins) == 0 {
		return nil
	}
	return pins
}

// CheckCSV validates csv as a candidate inputs/outputs list supplied by
// the service. It returns the pin count and true if every token is a
// valid pin name and the count does not exceed MaxPins, or (0, false)
// otherwise. Used to reject a malformed service-supplied list without
// corrupting the currently stored one.
func CheckCSV(csv string) (int, bool) {
	if csv == "" {
		return 0, true
	}
	toks := strings.Split(csv, ",")
	if len(toks) > MaxPins {
		return 0, false
	}
	for _, tok := range toks {
		if !validPinName(tok) {
			return 0, false
		}
	}
	return len(toks), true
}

// VirtualBank is the fixed-size array of signed ints backing X pins.
type VirtualBank struct {
	vals            [vBankSize]int
	simulatedBat    int            // one-shot override for the battery pin, valid while simulatedBatSet.
	simulatedBatSet bool
}

// NewVirtualBank returns a VirtualBank with its reserved slots at their
// documented initial values.
func NewVirtualBank() *VirtualBank {
	vb := &VirtualBank{}
	vb.vals[vxLastBattery] = -1
	return vb
}

// Get returns the value at index, and whether index falls within the
// fixed bank (as opposed to delegating to an ExternalReader).
func (vb *VirtualBank) Get(index int) (int, bool) {
	if index < 0 || index >= vBankSize {
		return 0, false
	}
	return vb.vals[index], true
}

// set stores a raw value at index, if in range.
func (vb *VirtualBank) set(index, value int) {
	if index < 0 || index >= vBankSize {
		return
	}
	vb.vals[index] = value
}

// SetAlarmed mirrors the alarm subsystem's state into the bank.
func (vb *VirtualBank) SetAlarmed(alarmed bool) {
	if alarmed {
		vb.set(vxAlarmed, 1)
	} else {
		vb.set(vxAlarmed, 0)
	}
}

// SetTotalAlarms mirrors the alarm counter into the bank.
func (vb *VirtualBank) SetTotalAlarms(n int) { vb.set(vxTotalAlarms, n) }

// SetLastBoot mirrors the most recent boot reason into the bank.
func (vb *VirtualBank) SetLastBoot(reason int) { vb.set(vxLastBoot, reason) }

// SimulatedBattery returns the one-shot simulated battery value and
// clears it, or returns (0, false) if unset.
func (vb *VirtualBank) SimulatedBattery() (int, bool) {
	if !vb.simulatedBatSet {
		return 0, false
	}
	v := vb.simulatedBat
	vb.simulatedBatSet = false
	return v, true
}

// SetSimulatedBattery latches a one-shot override for the next battery
// read.
func (vb *VirtualBank) SetSimulatedBattery(v int) {
	vb.simulatedBat = v
	vb.simulatedBatSet = true
}

// LastBattery returns the most recently recorded battery reading.
func (vb *VirtualBank) LastBattery() int { return vb.vals[vxLastBattery] }

// SetLastBattery records the most recent battery reading.
func (vb *VirtualBank) SetLastBattery(v int) { vb.set(vxLastBattery, v) }

// PulseSuppressed reports whether the one-shot pulse-suppression flag
// is set.
func (vb *VirtualBank) PulseSuppressed() bool { return vb.vals[vxPulseSuppress] == 1 }

// SetPulseSuppress sets the pulse-suppression flag; it is only ever
// set here (on value==1); it is never cleared by a pin write, only by
// ClearPulseSuppress at cycle end.
func (vb *VirtualBank) SetPulseSuppress(value int) {
	if value == 1 {
		vb.set(vxPulseSuppress, 1)
	}
}

// ClearPulseSuppress clears the one-shot pulse-suppression flag. Called
// once at the end of the pulsing step of each cycle.
func (vb *VirtualBank) ClearPulseSuppress() { vb.set(vxPulseSuppress, 0) }

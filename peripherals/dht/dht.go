/*
NAME
 dht.go - DHT11/DHT22 temperature & humidity readings as X pins.

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

// Package dht implements netsender.ExternalReader for a DHT11 or DHT22
// humidity/temperature sensor wired to a single GPIO data line.
package dht

import (
	"fmt"

	gdht "github.com/d2r2/go-dht"

	"github.com/ausocean/netsender/netsender"
)

// X pins the sensor services.
const (
	DHT11Temp = "X40"
	DHT11Hum = "X41"
	DHT22Temp = "X50"
	DHT22Hum = "X51"
)

// retries bounds the one-wire-style retry the go-dht driver performs
// internally on a noisy read.
const retries = 5

// Sensor reads a DHT11 or DHT22 wired to GPIO line Pin.
type Sensor struct {
	Pin int
}

// New returns a Sensor reading gpioPin.
func New(gpioPin int) *Sensor { return &Sensor{Pin: gpioPin} }

// ReadExternal implements netsender.ExternalReader, dispatching on
// pin.Name to the matching sensor model and measurement. Values are
// reported in tenths of a degree/percent.
func (s *Sensor) ReadExternal(pin *netsender.Pin) error {
	var val float32
	var err error

	switch pin.Name {
	case DHT11Temp:
		val, _, _, err = gdht.ReadDHTxxWithRetry(gdht.DHT11, s.Pin, true, retries)
	case DHT11Hum:
		_, val, _, err = gdht.ReadDHTxxWithRetry(gdht.DHT11, s.Pin, true, retries)
	case DHT22Temp:
		val, _, _, err = gdht.ReadDHTxxWithRetry(gdht.DHT22, s.Pin, true, retries)
	case DHT22Hum:
		_, val, _, err = gdht.ReadDHTxxWithRetry(gdht.DHT22, s.Pin, true, retries)
	default:
		pin.Value = -1
		return fmt.Errorf("dht: pin %s not serviced by this sensor", pin.Name)
	}
	if err != nil {
		pin.Value = -1
		return fmt.Errorf("dht: read failed: %w", err)
	}
	pin.Value = int(val * 10)
	return nil
}

/*
NAME
  dallas.go - DS18B20 one-wire temperature readings as an X pin.

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

// Package dallas implements netsender.ExternalReader for a DS18B20
// one-wire temperature sensor.
package dallas

import (
	"fmt"

	"github.com/yryz/ds18b20"

	"github.com/ausocean/netsender/netsender"
)

// Pin is the X pin this sensor services.
const Pin = "X60"

// Sensor reads the first DS18B20 found on the 1-Wire bus.
type Sensor struct{}

// New returns a Sensor.
func New() Sensor { return Sensor{} }

// ReadExternal implements netsender.ExternalReader.
func (Sensor) ReadExternal(pin *netsender.Pin) error {
	if pin.Name != Pin {
		pin.Value = -1
		return fmt.Errorf("dallas: pin %s not serviced by this sensor", pin.Name)
	}
	sensors, err := ds18b20.Sensors()
	if err != nil {
		pin.Value = -1
		return fmt.Errorf("dallas: could not enumerate sensors: %w", err)
	}
	if len(sensors) < 1 {
		pin.Value = -1
		return fmt.Errorf("dallas: no DS18B20 sensors connected")
	}
	t, err := ds18b20.Temperature(sensors[0])
	if err != nil {
		pin.Value = -1
		return fmt.Errorf("dallas: unable to read temperature: %w", err)
	}
	pin.Value = int(t)
	return nil
}

/*
NAME
 provision.go - writes the first persisted Config blob for a new device.

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

import "fmt"

// Seed captures the fields an installer supplies once, at provisioning
// time, to produce a device's first persisted Config. It mirrors the
// subset of Config fields a human actually chooses; the
// rest (BootReason, most Vars) take their documented defaults.
type Seed struct {
	WiFiSSID   string
	WiFiKey    string
	DeviceKey  string
	InputsCSV  string
	OutputsCSV string
	MonPeriod  uint16
	ActPeriod  uint16
}

// Provision validates seed and writes the first persisted Config blob
// to store, returning the Config written. It is a one-time operation
// run by cmd/netsender-provision before a device's first boot; Init
// never calls it.
func Provision(store Store, seed Seed) (Config, error) {
	if seed.DeviceKey == "" {
		return Config{}, fmt.Errorf("netsender: provisioning seed is missing a device key")
	}
	if _, ok := CheckCSV(seed.InputsCSV); !ok {
		return Config{}, fmt.Errorf("netsender: provisioning seed has an invalid inputs CSV: %q", seed.InputsCSV)
	}
	if _, ok := CheckCSV(seed.OutputsCSV); !ok {
		return Config{}, fmt.Errorf("netsender: provisioning seed has an invalid outputs CSV: %q", seed.OutputsCSV)
	}

	cfg := Config{
		Version:    Version,
		MonPeriod:  seed.MonPeriod,
		ActPeriod:  seed.ActPeriod,
		BootReason: BootNormal,
		WiFiCSV:    seed.WiFiSSID + "," + seed.WiFiKey,
		DeviceKey:  seed.DeviceKey,
		InputsCSV:  seed.InputsCSV,
		OutputsCSV: seed.OutputsCSV,
		Vars:       defaultVars(),
	}
	if cfg.MonPeriod == 0 {
		cfg.MonPeriod = retryMonPeriod
	}

	ps := NewPersistentStore(store, nil)
	if err := ps.Write(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

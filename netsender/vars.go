/*
NAME
 vars.go - the fixed tunable-variable enumeration and its defaults.

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

// Variable indexes the fixed variable enumeration persisted in the
// Config blob. This module carries the newer variant, which adds
// HeartbeatPeriod.
type Variable int

const (
	VarLogLevel Variable = iota
	VarPulses
	VarPulseWidth
	VarPulseDutyCycle
	VarPulseCycle
	VarAutoRestart
	VarAlarmPeriod
	VarAlarmNetwork
	VarAlarmVoltage
	VarAlarmRecoveryVoltage
	VarPeakVoltage
	VarHeartbeatPeriod

	// NumVars is the number of persisted variable slots.
	NumVars
)

// varNames gives each Variable its wire name, used both when sending
// vars as flat keys and when parsing a <id>.<Name> reply key.
var varNames = [NumVars]string{
	VarLogLevel:             "LogLevel",
	VarPulses:               "Pulses",
	VarPulseWidth:           "PulseWidth",
	VarPulseDutyCycle:       "PulseDutyCycle",
	VarPulseCycle:           "PulseCycle",
	VarAutoRestart:          "AutoRestart",
	VarAlarmPeriod:          "AlarmPeriod",
	VarAlarmNetwork:         "AlarmNetwork",
	VarAlarmVoltage:         "AlarmVoltage",
	VarAlarmRecoveryVoltage: "AlarmRecoveryVoltage",
	VarPeakVoltage:          "PeakVoltage",
	VarHeartbeatPeriod:      "HeartbeatPeriod",
}

// String returns the wire name of v.
func (v Variable) String() string {
	if v < 0 || int(v) >= len(varNames) {
		return "Unknown"
	}
	return varNames[v]
}

// Vars is the persisted variable set, indexed by Variable.
type Vars [NumVars]int16

// defaultVars returns the variable set when the service reply carries
// no variables at all: AutoRestart=600, PeakVoltage=845, all others 0.
func defaultVars() Vars {
	var v Vars
	v[VarAutoRestart] = 600
	v[VarPeakVoltage] = 845
	return v
}

// clamp enforces AlarmVoltage <= PeakVoltage and AlarmRecoveryVoltage
// <= PeakVoltage.
func (v *Vars) clamp() {
	if v[VarAlarmVoltage] > v[VarPeakVoltage] {
		v[VarAlarmVoltage] = v[VarPeakVoltage]
	}
	if v[VarAlarmRecoveryVoltage] > v[VarPeakVoltage] {
		v[VarAlarmRecoveryVoltage] = v[VarPeakVoltage]
	}
}

// applyDefaults fills in AutoRestart and PeakVoltage when the caller
// has not supplied them (zero value means "absent" for these two,
// since a configured 0 would disable the feature they gate and is thus
// indistinguishable from absence ).
func (v *Vars) applyDefaults() {
	if v[VarAutoRestart] == 0 {
		v[VarAutoRestart] = 600
	}
	if v[VarPeakVoltage] == 0 {
		v[VarPeakVoltage] = 845
	}
}

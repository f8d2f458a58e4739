/*
NAME
 alarm.go - the alarm subsystem: voltage/network alarms and auto-restart.

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

import "time"

// NumRelays is the number of entries in the power pin table.
const NumRelays = 4

// PowerPin describes one entry of the power distribution unit's relay
// bank.
type PowerPin struct {
	Pin       int
	Name      string // "Power0".."Power3"
	DefaultOn bool
}

// defaultPowerPins returns the fixed power pin table. Power0 defaults
// on; the rest default off.
func defaultPowerPins(base int) [NumRelays]PowerPin {
	var pp [NumRelays]PowerPin
	for i := range pp {
		pp[i] = PowerPin{
			Pin:       base + i,
			Name:      "Power" + string(rune('0'+i)),
			DefaultOn: i == 0,
		}
	}
	return pp
}

// AlarmState holds the alarm subsystem's counters and timing.
type AlarmState struct {
	alarmed         bool
	alarmedAt       *uint32 // ms timestamp of first assertion, per the Clock domain.
	alarms          int     // total alarms raised since boot.
	networkFailures int
}

// Alarmed reports whether the node is currently in an alarmed state.
func (a *AlarmState) Alarmed() bool { return a.alarmed }

// Alarms returns the total number of alarms raised since boot.
func (a *AlarmState) Alarms() int { return a.alarms }

// WriteAlarm implements the alarm assertion/clear policy: an assertion
// drives every power pin off; if continuous is false, the caller's
// sleeper blocks for alarmPeriod seconds between driving pins off and
// restoring defaults.
func (ctx *Context) WriteAlarm(set, continuous bool, alarmPeriod int) {
	a := &ctx.Alarm
	if !set {
		if !a.alarmed {
			return
		}
		ctx.driveDefaultPower()
		a.alarmed = false
		a.alarmedAt = nil
		ctx.VBank.SetAlarmed(false)
		return
	}

	vars := ctx.Config.Vars
	if vars[VarAlarmNetwork] == 0 && vars[VarAlarmVoltage] == 0 {
		return // alarms globally disabled.
	}

	ctx.driveOffPower()
	a.alarms++
	a.alarmed = true
	ctx.VBank.SetAlarmed(true)
	ctx.VBank.SetTotalAlarms(a.alarms)
	if a.alarmedAt == nil {
		now := ctx.Clock.Millis()
		a.alarmedAt = &now
	}

	if continuous {
		return
	}

	// Temporary alarm: block for alarmPeriod seconds, then restore
	// default power levels and clear alarmed. alarmedAt is not cleared
	// here, so auto-restart timing keeps accruing from the first
	// assertion.
	ctx.Sleeper.Sleep(time.Duration(alarmPeriod) * time.Second)
	ctx.driveDefaultPower()
	a.alarmed = false
	ctx.VBank.SetAlarmed(false)
}

// driveOffPower drives every power pin to its inactive level.
func (ctx *Context) driveOffPower() {
	for _, p := range ctx.PowerPins {
		ctx.writePowerPin(p, false)
	}
}

// driveDefaultPower drives every power pin to its configured default.
func (ctx *Context) driveDefaultPower() {
	for _, p := range ctx.PowerPins {
		ctx.writePowerPin(p, p.DefaultOn)
	}
}

func (ctx *Context) writePowerPin(p PowerPin, on bool) {
	v := 0
	if on {
		v = 1
	}
	if ctx.DigitalWriter == nil {
		return
	}
	ctx.DigitalWriter.WriteDigital(p.Pin, v)
}

// NoteRequestFailure increments the network-failure counter after a
// failed request and, if AlarmNetwork is configured and the threshold
// is reached, asserts a temporary alarm and resets the counter.
func (ctx *Context) NoteRequestFailure(alarmPeriod int) {
	a := &ctx.Alarm
	a.networkFailures++
	an := int(ctx.Config.Vars[VarAlarmNetwork])
	if an > 0 && a.networkFailures >= an {
		ctx.WriteAlarm(true, false, alarmPeriod)
		a.networkFailures = 0
	}
}

// NoteRequestSuccess resets the network-failure counter and clears a
// continuous alarm following any successful request.
func (ctx *Context) NoteRequestSuccess() {
	ctx.Alarm.networkFailures = 0
	if ctx.Alarm.alarmed {
		ctx.WriteAlarm(false, false, 0)
	}
}

// CheckAutoRestart reports whether the node should restart due to a
// persisting alarm: alarmedAt is set and its rollover-safe age in
// seconds is >= AutoRestart.
func (ctx *Context) CheckAutoRestart(now uint32) bool {
	a := &ctx.Alarm
	if a.alarmedAt == nil {
		return false
	}
	elapsedMs := elapsedSince(*a.alarmedAt, now)
	autoRestart := int(ctx.Config.Vars[VarAutoRestart])
	return autoRestart > 0 && int(elapsedMs/1000) >= autoRestart
}

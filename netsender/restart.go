/*
NAME
 restart.go - boot reason persistence and the safe-state restart path.

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

// restartSettleDelay is how long Restart waits after asserting a
// continuous alarm before flashing the restart pattern and resetting,
// giving power rails time to settle.
const restartSettleDelay = 2 * time.Second

// Restart persists reason if it differs from the stored value, resets
// power pins to their defaults, optionally asserts a continuous alarm,
// flashes the restart status pattern, and invokes the platform reset.
// The transient bootClear marker is coerced to BootAlarm before
// persisting, so a crash mid-clear is still observable as an
// alarm-caused boot
func (ctx *Context) Restart(reason BootReason, alarm bool) {
	persisted := reason
	if persisted == bootClear {
		persisted = BootAlarm
	}
	if ctx.Config.BootReason != persisted {
		ctx.Config.BootReason = persisted
		ctx.Store.Write(&ctx.Config)
	}

	ctx.driveDefaultPower()

	if alarm {
		ctx.WriteAlarm(true, true, int(ctx.Config.Vars[VarAlarmPeriod]))
		ctx.Sleeper.Sleep(restartSettleDelay)
	}

	ctx.flash(FlashRestart)

	if ctx.Resetter != nil {
		ctx.Resetter.Reset()
	}
}

// flash emits n short pulses on the status LED to signal the given
// status code
func (ctx *Context) flash(code int) {
	if ctx.DigitalWriter == nil {
		return
	}
	for i := 0; i < code; i++ {
		ctx.DigitalWriter.WriteDigital(statusPin, 1)
		ctx.Sleeper.Sleep(100 * time.Millisecond)
		ctx.DigitalWriter.WriteDigital(statusPin, 0)
		ctx.Sleeper.Sleep(100 * time.Millisecond)
	}
}

/*
NAME
 pulse.go - navigation-light pulse generation with suppression.

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
	"errors"
	"time"
)

// ErrPulseRejected is returned by Pulse when n, w, or their product
// against the monitor period make the request invalid.
var ErrPulseRejected = errors.New("netsender: pulse parameters rejected")

// Pulse emits a single pulse train of n pulses, each w seconds wide, at
// duty cycle d percent (0 is remapped to 50; d>100 subtracts 100 and
// inverts polarity), on the hardware pin number pin. If the pulse-
// suppress flag is set, the equivalent total duration is still slept
// but the physical pin is never toggled. Returns the total milliseconds
// spent, for lag accounting.
func (ctx *Context) Pulse(pin, n int, w, d int) (int64, error) {
	if n <= 0 || w <= 0 {
		return 0, ErrPulseRejected
	}
	if n*w > int(ctx.Config.MonPeriod) {
		return 0, ErrPulseRejected
	}
	if d == 0 {
		d = 50
	}
	invert := false
	if d > 100 {
		d -= 100
		invert = true
	}

	activeMs := int64(w) * 1000 * int64(d) / 100
	inactiveMs := int64(w)*1000 - activeMs

	suppressed := ctx.VBank.PulseSuppressed()
	var total int64
	activeLevel, inactiveLevel := 1, 0
	if invert {
		activeLevel, inactiveLevel = 0, 1
	}
	for i := 0; i < n; i++ {
		if !suppressed && ctx.DigitalWriter != nil {
			ctx.DigitalWriter.WriteDigital(pin, activeLevel)
		}
		ctx.Sleeper.Sleep(time.Duration(activeMs) * time.Millisecond)
		if !suppressed && ctx.DigitalWriter != nil {
			ctx.DigitalWriter.WriteDigital(pin, inactiveLevel)
		}
		ctx.Sleeper.Sleep(time.Duration(inactiveMs) * time.Millisecond)
		total += activeMs + inactiveMs
	}
	return total, nil
}

// RunPulseTrains emits the configured pulse trains on the navigation
// pin for this cycle: a first train, then additional trains separated
// by PulseCycle*1000 - pulsedWidth ms gaps, up to monPeriod filling.
// Returns total milliseconds spent pulsing. Clears the pulse-suppress
// flag at the end,.
func (ctx *Context) RunPulseTrains() int64 {
	defer ctx.VBank.ClearPulseSuppress()

	v := ctx.Config.Vars
	n, w, d, cycle := int(v[VarPulses]), int(v[VarPulseWidth]), int(v[VarPulseDutyCycle]), int(v[VarPulseCycle])
	if n == 0 || w == 0 {
		return 0
	}

	var total int64
	pulsedWidthMs, err := ctx.Pulse(navPin, n, w, d)
	if err != nil {
		ctx.Logger.Log(WarningLevel, "pulse rejected", "error", err.Error())
		return 0
	}
	total += pulsedWidthMs

	if cycle <= 0 {
		return total
	}
	gapMs := int64(cycle)*1000 - pulsedWidthMs
	monPeriodMs := int64(ctx.Config.MonPeriod) * 1000
	for total+gapMs+pulsedWidthMs <= monPeriodMs {
		if gapMs > 0 {
			ctx.Sleeper.Sleep(time.Duration(gapMs) * time.Millisecond)
			total += gapMs
		}
		more, err := ctx.Pulse(navPin, n, w, d)
		if err != nil {
			break
		}
		total += more
	}
	return total
}

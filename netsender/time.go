/*
NAME
 time.go - rollover-safe 32-bit millisecond arithmetic and lag tracking.

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

// maxUint32 is the largest value of the millisecond counter (UINT_MAX);
// the counter wraps modulo maxUint32+1 = 2^32.
const maxUint32 = 1<<32 - 1

// elapsedSince computes the rollover-safe elapsed milliseconds between
// prev and now, both in the 32-bit millisecond domain. It always
// computes (now - prev) via wrapping subtraction; across a rollover
// this equals (UINT_MAX-prev)+now+1, one more than the reverse-branch
// convention (UINT_MAX-prev)+now. This module picks wrapping
// subtraction and applies it everywhere.
func elapsedSince(prev, now uint32) uint32 {
	return now - prev // uint32 subtraction wraps, matching rollover semantics.
}

// rolledOver reports whether now < prev, i.e. the millisecond counter
// wrapped between the two samples.
func rolledOver(prev, now uint32) bool {
	return now < prev
}

// CycleTimer tracks per-cycle lag: the time spent beyond the nominal
// monitor period, and RefTimestamp, the absolute epoch anchor used by
// the offline handler, kept in step with millisecond-counter rollover.
type CycleTimer struct {
	clock        Clock
	havePrev     bool
	prevStart    uint32
	lagMs        int64
	pulsedMs     int64
	refTimestamp uint64 // absolute epoch seconds anchor.
}

// NewCycleTimer returns a CycleTimer driven by clock.
func NewCycleTimer(clock Clock) *CycleTimer {
	return &CycleTimer{clock: clock}
}

// LagMs returns the currently accumulated lag in milliseconds.
func (ct *CycleTimer) LagMs() int64 { return ct.lagMs }

// SetRefTimestamp sets the absolute epoch anchor, e.g. from a vars
// reply's ts field.
func (ct *CycleTimer) SetRefTimestamp(ts uint64) { ct.refTimestamp = ts }

// RefTimestamp returns the current absolute epoch anchor.
func (ct *CycleTimer) RefTimestamp() uint64 { return ct.refTimestamp }

// BeginCycle computes lag relative to the previous cycle start,
// records the new cycle start, and returns the millisecond counter
// value used for this cycle. It must be called once at the top of
// every cycle
func (ct *CycleTimer) BeginCycle(monPeriodSec int) uint32 {
	now := ct.clock.Millis()
	if ct.havePrev {
		elapsed := elapsedSince(ct.prevStart, now)
		if rolledOver(ct.prevStart, now) {
			ct.refTimestamp += maxUint32 / 1000
		}
		lag := int64(elapsed) - int64(monPeriodSec)*1000
		if lag < 0 {
			lag = 0
		}
		ct.lagMs = lag
	}
	ct.prevStart = now
	ct.havePrev = true
	return now
}

// ResetLag zeroes the accumulated lag, e.g. after a pause consumes it.
func (ct *CycleTimer) ResetLag() { ct.lagMs = 0 }

// AddPulsedMs accumulates time spent in pulse trains, which offsets the
// end-of-cycle pause.
func (ct *CycleTimer) AddPulsedMs(ms int64) { ct.pulsedMs += ms }

// ResetCyclePulse zeroes the pulse time accrued this cycle.
func (ct *CycleTimer) ResetCyclePulse() { ct.pulsedMs = 0 }

// PulsedMs returns the pulse time accrued so far this cycle.
func (ct *CycleTimer) PulsedMs() int64 { return ct.pulsedMs }

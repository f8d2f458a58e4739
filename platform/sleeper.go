/*
NAME
 sleeper.go - netsender.Sleeper over the OS clock.

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

package platform

import "time"

// OSSleeper implements netsender.Sleeper with ordinary blocking waits.
// The Pi has no true deep-sleep state, so DeepSleep simply blocks like
// Sleep; a battery-powered deployment would instead suspend the
// process here.
type OSSleeper struct{}

// NewOSSleeper returns an OSSleeper.
func NewOSSleeper() OSSleeper { return OSSleeper{} }

func (OSSleeper) Sleep(d time.Duration) { time.Sleep(d) }

func (OSSleeper) DeepSleep(d time.Duration) { time.Sleep(d) }

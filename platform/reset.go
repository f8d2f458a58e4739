/*
NAME
  reset.go - netsender.Resetter via the "syncreboot" utility.

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

import "os/exec"

// rebooter is the helper binary invoked on a reboot request.
const rebooter = "syncreboot"

// SyncReset implements netsender.Resetter by invoking syncreboot, which
// syncs the file system before triggering a hard reset.
type SyncReset struct{}

// NewSyncReset returns a SyncReset.
func NewSyncReset() SyncReset { return SyncReset{} }

// Reset runs the reboot helper. Any error is unrecoverable from the
// caller's perspective (the process is about to be torn down by the
// kernel regardless), so it is simply discarded.
func (SyncReset) Reset() {
	exec.Command(rebooter).Run()
}

/*
NAME
 errors.go - error kinds surfaced by the control loop.

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

import "errors"

// Sentinel errors for the error kinds named in Collaborator
// errors (transport, NV store, SD card) are wrapped with one of these
// using fmt.Errorf("...: %w", err) so callers can errors.Is against them.
var (
	ErrNetworkFailure        = errors.New("netsender: network failure")
	ErrConfigInvalid         = errors.New("netsender: malformed or incomplete config reply")
	ErrPersistFailure        = errors.New("netsender: persistent store write failed")
	ErrPinValidationFailure  = errors.New("netsender: invalid pin CSV from service")
	ErrOfflineStorageFailure = errors.New("netsender: offline storage failure")
	ErrPowerFailure          = errors.New("netsender: failed to drive power pins to a safe state")
	ErrWiFiDisconnectFailure = errors.New("netsender: radio failed to power off")

	// ErrNoKey is returned by the JSON field extractor when the named
	// key is absent from the reply.
	ErrNoKey = errors.New("netsender: key not found in reply")
)

// ServerError represents a service-reported `er` field.
type ServerError struct {
	Err string
}

func (e *ServerError) Error() string { return e.Err }

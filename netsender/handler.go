/*
NAME
 handler.go - the pluggable request-handler abstraction.

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

// Request types
type RequestType int

const (
	ReqConfig RequestType = iota
	ReqPoll
	ReqAct
	ReqVars
)

// Response codes
const (
	RcOK      = 0
	RcUpdate  = 1
	RcReboot  = 2
	RcDebug   = 3
	RcUpgrade = 4
	RcAlarm   = 5
	RcTest    = 6
)

// Handler names, used both as the HandlerManager key and as the
// persisted "mode" NV value.
const (
	HandlerNameOnline  = "Online"
	HandlerNameOffline = "Offline"
)

// Reply carries everything a request produces that the run loop acts
// on.
type Reply struct {
	RC      int
	Varsum  int
	HaveVS  bool
	Error   string // service-reported "er", if any.
	RefTime uint64 // "ts" from a vars reply, if present.
	HaveTS  bool

	// Config fields, populated only for ReqConfig.
	MonPeriod, ActPeriod         int
	HaveMonPeriod, HaveActPeriod bool
	WiFiCSV, DeviceKey           string
	InputsCSV, OutputsCSV        string
	HaveWiFi, HaveDeviceKey      bool
	HaveInputs, HaveOutputs      bool

	// Vars fields, populated only for ReqVars.
	Vars     Vars
	HaveVars bool
	VarsMode string
	HaveMode bool
}

// RequestHandler is the capability set every concrete handler variant
// (Online, Offline) implements
type RequestHandler interface {
	// Name returns the handler's persisted identity.
	Name() string

	// Init performs one-time setup, e.g. caching the MAC address.
	Init(ctx *Context) error

	// Request issues typ against the service (or local store, for
	// Offline), sending inputs and applying outputs in place via
	// ctx.WritePin. On success it returns the decoded Reply.
	Request(ctx *Context, typ RequestType, inputs, outputs []Pin) (Reply, error)

	// Disconnect releases any transport resources (e.g. powers down
	// the radio) so subsequent input reads see a quiet ADC.
	Disconnect(ctx *Context) error
}

// HandlerManager owns a fixed-size set of handlers and tracks which one
// is currently active.
type HandlerManager struct {
	handlers map[string]RequestHandler
	active   string
}

// NewHandlerManager returns an empty HandlerManager.
func NewHandlerManager() *HandlerManager {
	return &HandlerManager{handlers: make(map[string]RequestHandler)}
}

// Add registers h under h.Name.
func (hm *HandlerManager) Add(h RequestHandler) {
	hm.handlers[h.Name()] = h
}

// Get returns the handler registered under name.
func (hm *HandlerManager) Get(name string) (RequestHandler, bool) {
	h, ok := hm.handlers[name]
	return h, ok
}

// Set makes name the active handler and returns it.
func (hm *HandlerManager) Set(name string) (RequestHandler, error) {
	h, ok := hm.handlers[name]
	if !ok {
		return nil, fmt.Errorf("netsender: no handler named %q", name)
	}
	hm.active = name
	return h, nil
}

// Active returns the currently active handler.
func (hm *HandlerManager) Active() RequestHandler {
	return hm.handlers[hm.active]
}

// ActiveName returns the currently active handler's name.
func (hm *HandlerManager) ActiveName() string { return hm.active }

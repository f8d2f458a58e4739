/*
NAME
 context.go - the process-wide owning context threaded through Run.

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

// Device-specific modes and errors
const (
	ModeNormal  = "Normal"
	ModeOffline = "Offline"

	ErrorNone          = ""
	ErrorLowVoltage    = "LowVoltage"
	ErrorSDCardFailure = "SDCardFailure"
)

// Status flash codes
const (
	FlashOK           = 1
	FlashConfigError  = 2
	FlashWiFiError    = 3
	FlashConfigUpdate = 4
	FlashVoltageAlarm = 5
	FlashRestart      = 6
)

// Timing and protocol constants.
const (
	retryPeriod       = 5 * 1000 // ms, RETRY_PERIOD.
	heartbeatAttempts = 3
	analogWarmupReads = 3
	analogWarmupMs    = 20
	navPin            = 0 // hardware pin number of the navigation-light output.
	statusPin         = 1 // hardware pin number of the status LED.
	alarmPin          = 2 // hardware pin number of the hardware alarm line.
	alarmLevel        = 1 // digital level that asserts the hardware alarm.
)


// Context bundles every piece of process-wide state the node owns:
// Config, the virtual pin bank, mode/error, the handler manager, and
// cycle timing. It is constructed once by Init and threaded into every
// call to Run, replacing the hidden globals of the original firmware.
type Context struct {
	Config Config
	VBank *VirtualBank
	PowerPins [NumRelays]PowerPin
	Alarm AlarmState
	Timer *CycleTimer

	Mode string
	Error string

	Handlers *HandlerManager

	Store *PersistentStore
	ModeStore NVNamespace

	Logger Logger
	Clock Clock
	Sleeper Sleeper
	Resetter Resetter
	Console Console

	AnalogReader AnalogReader
	AnalogWriter AnalogWriter
	DigitalReader DigitalReader
	DigitalWriter DigitalWriter
	PostBody PostBodyReader
	External ExternalReader

	// configured mirrors the "Configured" state: true once a
	// config request has completed successfully, reset to false when
	// rc=Update is received.
	configured bool

	// reconfig is set mid-cycle when a pending operation (an Update
	// response, or an initially-empty pin list) requires a config
	// request before the cycle ends.
	reconfig bool

	// varsum is the cached server varsum; a mismatch against the value
	// most recently reported by a request triggers a vars fetch.
	varsum int

	// cycleCount counts completed calls to BeginCycle, used to detect
	// the very first cycle for the heartbeat and ADC warm-up logic.
	cycleCount int
}

// Deps collects the external collaborators Init needs. Any of the
// pointer-to-interface-shaped fields may be nil when the corresponding
// capability is unused by the deployment (e.g. no post-body reader).
type Deps struct {
	Logger Logger
	Clock Clock
	Store Store
	ModeNV NVNamespace
	Sleeper Sleeper
	Resetter Resetter
	Console Console

	AnalogReader AnalogReader
	AnalogWriter AnalogWriter
	DigitalReader DigitalReader
	DigitalWriter DigitalWriter
	PostBody PostBodyReader
	External ExternalReader

	// PowerPinBase is the hardware pin number of Power0; Power1..3
	// follow sequentially.
	PowerPinBase int
}

// Init constructs the owning Context: it reads the persisted Config
// (applying version-family invalidation), restores the active handler
// name from ModeNV (defaulting to "Online"), and wires every
// collaborator. It is the one-time `init()` every node performs before
// entering its run loop.
func Init(deps Deps, online, offline RequestHandler) (*Context, error) {
	if deps.Logger == nil || deps.Clock == nil || deps.Store == nil || deps.Sleeper == nil {
		return nil, fmt.Errorf("netsender: Logger, Clock, Store, and Sleeper are required")
	}

	ctx := &Context{
		VBank:         NewVirtualBank(),
		Timer:         NewCycleTimer(deps.Clock),
		Mode:          ModeNormal,
		Error:         ErrorNone,
		Logger:        deps.Logger,
		Clock:         deps.Clock,
		Sleeper:       deps.Sleeper,
		Resetter:      deps.Resetter,
		Console:       deps.Console,
		AnalogReader:  deps.AnalogReader,
		AnalogWriter:  deps.AnalogWriter,
		DigitalReader: deps.DigitalReader,
		DigitalWriter: deps.DigitalWriter,
		PostBody:      deps.PostBody,
		External:      deps.External,
		ModeStore:     deps.ModeNV,
		varsum:        -1,
	}
	ctx.PowerPins = defaultPowerPins(deps.PowerPinBase)

	ctx.Store = NewPersistentStore(deps.Store, deps.Console)
	if err := ctx.Store.Read(&ctx.Config); err != nil {
		return nil, err
	}
	ctx.VBank.SetLastBoot(int(ctx.Config.BootReason))

	ctx.Handlers = NewHandlerManager()
	ctx.Handlers.Add(online)
	if offline != nil {
		ctx.Handlers.Add(offline)
	}
	activeName := HandlerNameOnline
	if deps.ModeNV != nil {
		if v, ok := deps.ModeNV.Get("mode"); ok && v != "" {
			activeName = v
		}
	}
	if _, err := ctx.Handlers.Set(activeName); err != nil {
		// Unknown persisted name: fall back to Online rather than fail
		// boot over a stale NV entry.
		ctx.Handlers.Set(HandlerNameOnline)
	}

	if err := online.Init(ctx); err != nil {
		return nil, err
	}
	if offline != nil {
		if err := offline.Init(ctx); err != nil {
			return nil, err
		}
	}

	return ctx, nil
}

// SetMode switches the active handler and persists the new name so it
// survives a restart.
func (ctx *Context) SetMode(name string) error {
	if _, err := ctx.Handlers.Set(name); err != nil {
		return err
	}
	ctx.Mode = name
	if ctx.ModeStore != nil {
		return ctx.ModeStore.Set("mode", name)
	}
	return nil
}

// IsConfigured reports whether a config request has completed
// successfully since the last Update response.
func (ctx *Context) IsConfigured() bool { return ctx.configured }

// VarSum returns the cached server varsum, for diagnostic display; it
// is -1 until the first successful vars/config/poll reply.
func (ctx *Context) VarSum() int { return ctx.varsum }

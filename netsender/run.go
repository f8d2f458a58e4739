/*
NAME
 run.go - the per-cycle run loop 

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

// Run executes one cycle of the control loop and returns true when the
// cycle completed its actuation window (after which it deep-sleeps
// the rest of the monitor period itself when MonPeriod exceeds
// ActPeriod), or false when the cycle aborted early (e.g.
// a voltage alarm, a failed reconfigure) after a short retry pause.
// Clients are expected to call Run repeatedly, once per iteration of
// their own host loop callback
func (ctx *Context) Run() bool {
	ctx.Timer.BeginCycle(int(ctx.Config.MonPeriod))
	defer func() { ctx.cycleCount++ }()

	if ctx.checkHeartbeat() {
		// Heartbeat itself never aborts the cycle; it only refreshes
		// vars/config as a side effect.
	}

	if ctx.CheckAutoRestart(ctx.Clock.Millis()) {
		ctx.Restart(BootAlarm, false)
		return false // unreachable on real hardware; kept for testability.
	}

	if !ctx.configured || ctx.Config.DeviceKey == "" {
		ctx.Store.PrintConfig(&ctx.Config)
	}

	pulsedMs := ctx.RunPulseTrains()
	ctx.Timer.AddPulsedMs(pulsedMs)

	if int(ctx.Config.Vars[VarAlarmVoltage]) > 0 {
		if !ctx.checkVoltage() {
			return ctx.pauseAndReturn(false, pulsedMs)
		}
	}

	active := ctx.Handlers.Active()
	if err := active.Disconnect(ctx); err != nil {
		// A radio that won't power off is fatal
		ctx.Restart(BootWiFi, true)
		return false
	}

	inputs := ParseCSV(ctx.Config.InputsCSV, "")
	outputs := ParseCSV(ctx.Config.OutputsCSV, "")
	for i := range inputs {
		if err := ctx.ReadPin(&inputs[i]); err != nil {
			ctx.Logger.Log(WarningLevel, "error reading pin", "pin", inputs[i].Name, "error", err.Error())
		}
	}

	needConfig := ctx.reconfig || (ctx.Config.InputsCSV == "" && ctx.Config.OutputsCSV == "")
	if needConfig {
		if _, err := ctx.doConfig(); err != nil {
			ctx.Logger.Log(WarningLevel, "config request failed", "error", err.Error())
			return ctx.pauseAndReturn(false, pulsedMs)
		}
		ctx.reconfig = false
	}

	var reply Reply
	var reqErr error
	switch {
	case len(inputs) > 0:
		reply, reqErr = active.Request(ctx, ReqPoll, inputs, outputs)
	case len(outputs) > 0:
		reply, reqErr = active.Request(ctx, ReqAct, nil, outputs)
	}
	if reqErr != nil {
		ctx.Logger.Log(WarningLevel, "poll/act request failed", "error", reqErr.Error())
	} else {
		ctx.handleResponseCode(reply)
	}

	if reply.RC == RcUpdate {
		if _, err := ctx.doConfig(); err != nil {
			ctx.Logger.Log(WarningLevel, "post-update config request failed", "error", err.Error())
			return ctx.pauseAndReturn(false, pulsedMs)
		}
		ctx.reconfig = false
	}

	if reqErr == nil && reply.HaveVS && reply.Varsum != ctx.varsum {
		if _, err := ctx.doVars(); err != nil {
			ctx.Logger.Log(WarningLevel, "vars request failed", "error", err.Error())
		} else {
			ctx.varsum = reply.Varsum
		}
	}

	ctx.flash(FlashOK)
	return ctx.pauseAndReturn(true, pulsedMs)
}

// checkHeartbeat issues a forced vars fetch while offline, either
// periodically (HeartbeatPeriod seconds) or on the very first cycle,
// with network alarms temporarily suppressed and a bounded retry
// budget
func (ctx *Context) checkHeartbeat() bool {
	if ctx.Handlers.ActiveName() != HandlerNameOffline {
		return false
	}
	period := int(ctx.Config.Vars[VarHeartbeatPeriod])
	due := ctx.cycleCount == 0 || (period > 0 && ctx.cycleCount%period == 0)
	if !due {
		return false
	}

	savedNetworkAlarm := ctx.Config.Vars[VarAlarmNetwork]
	ctx.Config.Vars[VarAlarmNetwork] = 0
	defer func() { ctx.Config.Vars[VarAlarmNetwork] = savedNetworkAlarm }()

	var reply Reply
	var err error
	for attempt := 0; attempt < heartbeatAttempts; attempt++ {
		reply, err = ctx.doVarsReply()
		if err == nil {
			break
		}
		ctx.Sleeper.Sleep(1 * time.Second)
	}
	online, _ := ctx.Handlers.Get(HandlerNameOnline)
	if online != nil {
		online.Disconnect(ctx)
	}
	if err != nil {
		return false
	}
	if reply.HaveVars {
		ctx.persistVarsIfChanged(reply.Vars)
	}
	if reply.RC == RcAlarm || reply.RC == RcUpdate {
		ctx.doConfig()
	}
	return true
}

// doVarsReply issues a vars request through the active handler and
// returns the decoded reply.
func (ctx *Context) doVarsReply() (Reply, error) {
	active := ctx.Handlers.Active()
	return active.Request(ctx, ReqVars, nil, nil)
}

// doVars fetches vars, persisting them if changed, and applies a
// requested mode change.
func (ctx *Context) doVars() (Reply, error) {
	reply, err := ctx.doVarsReply()
	if err != nil {
		return reply, err
	}
	if reply.HaveVars {
		ctx.persistVarsIfChanged(reply.Vars)
	}
	if reply.HaveMode && reply.VarsMode != "" && reply.VarsMode != ctx.Mode {
		ctx.SetMode(reply.VarsMode)
	}
	return reply, nil
}

func (ctx *Context) persistVarsIfChanged(v Vars) {
	if v == ctx.Config.Vars {
		return
	}
	if err := ctx.Store.WriteVars(&ctx.Config, v); err != nil {
		ctx.Logger.Log(ErrorLevel, "failed to persist vars", "error", err.Error())
	}
}

// doConfig issues a config request and applies the reply: valid
// input/output CSVs are adopted, monitor/actuation periods and
// credentials are updated, and Configured is set true on success.
func (ctx *Context) doConfig() (Reply, error) {
	ctx.configured = false
	active := ctx.Handlers.Active()
	reply, err := active.Request(ctx, ReqConfig, nil, nil)
	if err != nil {
		ctx.flash(FlashConfigError)
		return reply, err
	}

	if reply.HaveMonPeriod && reply.MonPeriod > 0 {
		ctx.Config.MonPeriod = uint16(reply.MonPeriod)
	}
	if reply.HaveActPeriod {
		ctx.Config.ActPeriod = uint16(reply.ActPeriod)
	}
	if reply.HaveWiFi {
		ctx.Config.WiFiCSV = reply.WiFiCSV
	}
	if reply.HaveDeviceKey {
		ctx.Config.DeviceKey = reply.DeviceKey
	}
	if reply.HaveInputs {
		ctx.Config.InputsCSV = reply.InputsCSV
	}
	if reply.HaveOutputs {
		ctx.Config.OutputsCSV = reply.OutputsCSV
	}

	if err := ctx.Store.Write(&ctx.Config); err != nil {
		ctx.Logger.Log(ErrorLevel, "failed to persist config", "error", err.Error())
	}
	ctx.configured = true
	ctx.flash(FlashConfigUpdate)
	return reply, nil
}

// handleResponseCode applies the side effects of a poll/act reply's rc
// field
func (ctx *Context) handleResponseCode(reply Reply) {
	switch reply.RC {
	case RcOK:
	case RcUpdate:
		ctx.reconfig = true
		ctx.configured = false
	case RcReboot:
		if ctx.configured {
			ctx.Restart(BootNormal, false)
		}
	case RcDebug:
		// Reserved for a log-level change delivered via vars.
	case RcUpgrade:
		// Reserved; handled by a host upgrader outside this package.
	case RcAlarm:
		if ctx.configured && ctx.Config.Vars[VarAlarmPeriod] > 0 {
			ctx.WriteAlarm(true, false, int(ctx.Config.Vars[VarAlarmPeriod]))
			ctx.reconfig = true
		}
	case RcTest:
		// Reserved.
	}
}

// checkVoltage reads the battery pin and applies the voltage-alarm
// policy. Returns false when the cycle must abort (alarm asserted or
// still recovering).
func (ctx *Context) checkVoltage() bool {
	bat := Pin{Name: "A0"}
	if err := ctx.ReadPin(&bat); err != nil {
		ctx.Logger.Log(WarningLevel, "battery read failed", "error", err.Error())
		return true
	}

	alarmV := int(ctx.Config.Vars[VarAlarmVoltage])
	recoveryV := int(ctx.Config.Vars[VarAlarmRecoveryVoltage])
	peakV := int(ctx.Config.Vars[VarPeakVoltage])

	if bat.Value < alarmV {
		ctx.Error = ErrorLowVoltage
		ctx.flash(FlashVoltageAlarm)
		ctx.WriteAlarm(true, true, int(ctx.Config.Vars[VarAlarmPeriod]))
		return false
	}
	if ctx.Alarm.Alarmed() {
		if bat.Value < recoveryV {
			return false
		}
	}
	ctx.WriteAlarm(false, false, 0)
	ctx.Error = ErrorNone
	if peakV > 0 && bat.Value > peakV {
		ctx.Logger.Log(WarningLevel, "battery reading exceeds configured peak voltage", "value", bat.Value, "peak", peakV)
	}
	return true
}

// pauseAndReturn implements pausing policy. After a
// failure with no pulse activity, it waits a fixed RETRY_PERIOD and
// returns ok unchanged. Otherwise it computes the remaining actuation
// window relative to lag and pulsing, sleeps it if positive, resets
// lag, and optionally deep-sleeps the remainder of the monitor period.
func (ctx *Context) pauseAndReturn(ok bool, pulsedMs int64) bool {
	if !ok && pulsedMs == 0 {
		ctx.Sleeper.Sleep(retryPeriod * time.Millisecond)
		return ok
	}

	remaining := int64(ctx.Config.ActPeriod)*1000 - pulsedMs - ctx.Timer.LagMs()
	if remaining > 0 {
		ctx.Sleeper.Sleep(time.Duration(remaining) * time.Millisecond)
		ctx.Timer.ResetLag()
	}
	ctx.Timer.ResetCyclePulse()

	if int(ctx.Config.MonPeriod) > int(ctx.Config.ActPeriod) {
		sleepMs := (int64(ctx.Config.MonPeriod) - int64(ctx.Config.ActPeriod)) * 1000
		ctx.Sleeper.DeepSleep(time.Duration(sleepMs) * time.Millisecond)
	}
	return ok
}

/*
NAME
 readwrite.go - pin read/write dispatch by kind prefix.

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
	"fmt"
	"time"
)

// batteryPinNumber is the hardware pin number read for battery voltage.
// It is reached through the A-prefix dispatch below like any other
// analog pin.
const batteryPinNumber = 0

// ReadPin dispatches a pin read by its name's kind prefix
func (ctx *Context) ReadPin(p *Pin) error {
	if len(p.Name) < 1 {
		return fmt.Errorf("netsender: empty pin name")
	}
	switch p.Name[0] {
	case 'A':
		return ctx.readAnalog(p)
	case 'B', 'T':
		if ctx.PostBody == nil {
			p.Value = -1
			p.Data = nil
			return nil
		}
		return ctx.PostBody.ReadPostBody(p)
	case 'D':
		return ctx.readDigital(p)
	case 'X':
		return ctx.readVirtual(p)
	default:
		return fmt.Errorf("netsender: invalid pin kind: %s", p.Name)
	}
}

func (ctx *Context) readAnalog(p *Pin) error {
	n, err := pinNumber(p.Name)
	if err != nil {
		return err
	}
	if n == batteryPinNumber {
		if v, ok := ctx.VBank.SimulatedBattery(); ok {
			p.Value = v
			ctx.VBank.SetLastBattery(v)
			return nil
		}
	}
	if ctx.AnalogReader == nil {
		p.Value = -1
		return nil
	}

	// Warm up the ADC with discarded samples for the first few cycles
	// after boot
	if ctx.Clock.Millis() < uint32(ctx.Config.MonPeriod)*1000 {
		for i := 0; i < analogWarmupReads; i++ {
			ctx.AnalogReader.ReadAnalog(n)
			ctx.Sleeper.Sleep(analogWarmupMs * time.Millisecond)
		}
	}

	v, err := ctx.AnalogReader.ReadAnalog(n)
	if err != nil {
		return err
	}
	p.Value = v
	if n == batteryPinNumber {
		ctx.VBank.SetLastBattery(v)
	}
	return nil
}

func (ctx *Context) readDigital(p *Pin) error {
	n, err := pinNumber(p.Name)
	if err != nil {
		return err
	}
	if ctx.DigitalReader == nil {
		p.Value = -1
		return nil
	}
	v, err := ctx.DigitalReader.ReadDigital(n)
	if err != nil {
		return err
	}
	p.Value = v
	return nil
}

func (ctx *Context) readVirtual(p *Pin) error {
	n, err := pinNumber(p.Name)
	if err != nil {
		return err
	}
	if v, ok := ctx.VBank.Get(n); ok {
		p.Value = v
		return nil
	}
	if ctx.External == nil {
		p.Value = -1
		return nil
	}
	return ctx.External.ReadExternal(p)
}

// WritePin dispatches a pin write by its name's kind prefix. Writing
// the hardware alarm pin also starts or stops the alarm-duration timer.
func (ctx *Context) WritePin(p *Pin) error {
	if len(p.Name) < 1 {
		return fmt.Errorf("netsender: empty pin name")
	}
	switch p.Name[0] {
	case 'A':
		n, err := pinNumber(p.Name)
		if err != nil {
			return err
		}
		if ctx.AnalogWriter == nil {
			return nil
		}
		return ctx.AnalogWriter.WriteAnalog(n, p.Value)
	case 'D':
		n, err := pinNumber(p.Name)
		if err != nil {
			return err
		}
		if n == alarmPin {
			if p.Value == alarmLevel {
				if ctx.Alarm.alarmedAt == nil {
					now := ctx.Clock.Millis()
					ctx.Alarm.alarmedAt = &now
				}
			} else {
				ctx.Alarm.alarmedAt = nil
			}
		}
		if ctx.DigitalWriter == nil {
			return nil
		}
		return ctx.DigitalWriter.WriteDigital(n, p.Value)
	case 'X':
		n, err := pinNumber(p.Name)
		if err != nil {
			return err
		}
		switch n {
		case vxLastBattery:
			ctx.VBank.SetSimulatedBattery(p.Value)
		case vxPulseSuppress:
			ctx.VBank.SetPulseSuppress(p.Value)
		}
		return nil
	default:
		return fmt.Errorf("netsender: invalid pin kind for write: %s", p.Name)
	}
}

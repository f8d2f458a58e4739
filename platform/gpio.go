/*
NAME
  gpio.go - Raspberry Pi GPIO/ADC pin access.

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

import (
	"fmt"
	"sync"

	"github.com/kidoman/embd"
	"github.com/kidoman/embd/convertors/mcp3008"
)

// SPI bus properties for the MCP3008 analog-to-digital converter.
const (
	spiMode    = embd.SPIMode0
	spiChannel = 0
	spiSpeed   = 1000000
	spiBPW     = 0
	spiDelay   = 0
)

// GPIO drives the Pi's digital GPIO lines and, through an MCP3008, its
// analog inputs. It implements netsender's AnalogReader, AnalogWriter,
// DigitalReader, and DigitalWriter.
type GPIO struct {
	mu          sync.Mutex
	adc         *mcp3008.MCP3008
	initialised bool
}

// NewGPIO returns an unopened GPIO; the underlying drivers are brought
// up lazily on first use.
func NewGPIO() *GPIO { return &GPIO{} }

func (g *GPIO) init() error {
	if g.initialised {
		return nil
	}
	if err := embd.InitGPIO(); err != nil {
		return fmt.Errorf("platform: could not initialise GPIO drivers: %w", err)
	}
	if err := embd.InitSPI(); err != nil {
		return fmt.Errorf("platform: could not initialise SPI drivers: %w", err)
	}
	bus := embd.NewSPIBus(spiMode, spiChannel, spiSpeed, spiBPW, spiDelay)
	g.adc = mcp3008.New(mcp3008.SingleMode, bus)
	g.initialised = true
	return nil
}

// ReadAnalog reads channel pin of the MCP3008.
func (g *GPIO) ReadAnalog(pin int) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.init(); err != nil {
		return 0, err
	}
	return g.adc.AnalogValueAt(pin)
}

// WriteAnalog is unsupported on this platform; the MCP3008 is
// read-only and the Pi has no onboard DAC.
func (g *GPIO) WriteAnalog(pin, value int) error {
	return fmt.Errorf("platform: writing to analog pin %d not supported", pin)
}

// ReadDigital reads GPIO line pin.
func (g *GPIO) ReadDigital(pin int) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.init(); err != nil {
		return 0, err
	}
	if err := embd.SetDirection(pin, embd.In); err != nil {
		return 0, err
	}
	return embd.DigitalRead(pin)
}

// WriteDigital drives GPIO line pin high (value != 0) or low.
func (g *GPIO) WriteDigital(pin, value int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.init(); err != nil {
		return err
	}
	if err := embd.SetDirection(pin, embd.Out); err != nil {
		return err
	}
	level := embd.Low
	if value != 0 {
		level = embd.High
	}
	return embd.DigitalWrite(pin, level)
}

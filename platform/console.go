/*
NAME
 console.go - netsender.Console over a serial port.

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
	"io"

	"github.com/jacobsa/go-serial/serial"
)

// SerialConsole prints configuration and status flashes to a serial
// port, over the same go-serial transport a GPS module's UART would
// use.
type SerialConsole struct {
	port io.ReadWriteCloser
}

// OpenSerialConsole opens portName at baudRate for printing.
func OpenSerialConsole(portName string, baudRate uint) (*SerialConsole, error) {
	options := serial.OpenOptions{
		PortName:        portName,
		BaudRate:        baudRate,
		DataBits:        8,
		StopBits:        1,
		MinimumReadSize: 4,
	}
	port, err := serial.Open(options)
	if err != nil {
		return nil, fmt.Errorf("platform: serial.Open failed: %w", err)
	}
	return &SerialConsole{port: port}, nil
}

// Print writes s followed by a newline to the serial port.
func (c *SerialConsole) Print(s string) {
	fmt.Fprintln(c.port, s)
}

// Close releases the underlying serial port.
func (c *SerialConsole) Close() error {
	return c.port.Close()
}

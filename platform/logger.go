/*
NAME
 logger.go - a netsender.Logger backed by the ausocean/utils logging package.

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
	"io"

	"github.com/ausocean/utils/logging"

	"github.com/ausocean/netsender/netsender"
)

// NewLogger returns a netsender.Logger writing through the zap-style
// ausocean/utils logging package at level, to w, optionally duplicated
// to stderr.
func NewLogger(level int8, w io.Writer, alsoStderr bool) netsender.Logger {
	return logging.New(level, w, alsoStderr)
}

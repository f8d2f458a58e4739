/*
NAME
 offline.go - the local-storage request handler.

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
	"encoding/binary"
	"fmt"
	"path"
)

// Offline record markers
const (
	versionMarker  int64 = 0x7FFFFFFE
	timeMarker     int64 = 0x7FFFFFFF
	formatVersion  int64 = 1
	offlineDataDir       = "/NSD"
	recordSize           = 16 // 8-byte value + 8-byte timestamp, little-endian.
)

// OfflineHandler persists sampled inputs to per-pin append-only files
// under offlineDataDir when the network is unavailable. Config and
// Vars requests delegate to the Online handler, looked up through the
// HandlerManager rather than a stored back-pointer.
type OfflineHandler struct {
	FS           FileSystem
	lastSecByPin map[string]uint64
	errByPin     map[string]bool
}

// NewOfflineHandler returns an OfflineHandler backed by fs.
func NewOfflineHandler(fs FileSystem) *OfflineHandler {
	return &OfflineHandler{
		FS:           fs,
		lastSecByPin: make(map[string]uint64),
		errByPin:     make(map[string]bool),
	}
}

func (h *OfflineHandler) Name() string { return HandlerNameOffline }

func (h *OfflineHandler) Init(ctx *Context) error { return nil }

// Disconnect is a no-op: there is no transport to release.
func (h *OfflineHandler) Disconnect(ctx *Context) error { return nil }

// Request implements : Config/Vars delegate to the Online
// handler; Act is a no-op; Poll persists each non-negative input.
func (h *OfflineHandler) Request(ctx *Context, typ RequestType, inputs, outputs []Pin) (Reply, error) {
	switch typ {
	case ReqConfig, ReqVars:
		online, ok := ctx.Handlers.Get(HandlerNameOnline)
		if !ok {
			return Reply{RC: RcOK}, fmt.Errorf("netsender: no online handler registered to delegate to")
		}
		return online.Request(ctx, typ, inputs, outputs)
	case ReqAct:
		return Reply{RC: RcOK}, nil
	case ReqPoll:
		return h.poll(ctx, inputs)
	default:
		return Reply{RC: RcOK}, nil
	}
}

// poll writes each non-negative input pin value to its own append-only
// file, inserting a header on first creation and a fresh time-reference
// record whenever the monotonic clock has rolled over.
func (h *OfflineHandler) poll(ctx *Context, inputs []Pin) (Reply, error) {
	now := ctx.Clock.Millis()
	uptime := uint64(now / 1000)
	ref := ctx.Timer.RefTimestamp()
	if ref == 0 {
		ctx.Logger.Log(WarningLevel, "offline poll with no time reference set")
	}

	var firstErr error
	for _, p := range inputs {
		if p.Value < 0 {
			continue
		}
		if err := h.writePin(ctx, p, ref, uptime); err != nil {
			h.errByPin[p.Name] = true
			ctx.Error = ErrorSDCardFailure
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		h.errByPin[p.Name] = false
	}
	if firstErr != nil {
		return Reply{RC: RcOK}, fmt.Errorf("%w: %v", ErrOfflineStorageFailure, firstErr)
	}
	return Reply{RC: RcOK}, nil
}

func (h *OfflineHandler) writePin(ctx *Context, p Pin, ref, uptime uint64) error {
	file, err := h.FS.OpenAppend(path.Join(offlineDataDir, p.Name))
	if err != nil {
		return err
	}
	defer file.Close()

	size, err := file.Size()
	if err != nil {
		return err
	}

	if size == 0 {
		if err := writeRecord(file, versionMarker, uint64(formatVersion)); err != nil {
			return err
		}
		if err := writeRecord(file, timeMarker, ref); err != nil {
			return err
		}
		h.lastSecByPin[p.Name] = 0
	}

	lastSec := h.lastSecByPin[p.Name]
	if uptime < lastSec {
		// Monotonic clock rolled over: write a fresh time-reference
		// record before the next data record
		if err := writeRecord(file, timeMarker, ref); err != nil {
			return err
		}
	}
	h.lastSecByPin[p.Name] = uptime

	return writeRecord(file, int64(p.Value), ref+uptime)
}

// writeRecord appends one (int64 value, uint64 timestamp) record as raw
// little-endian bytes.
func writeRecord(w interface{ Write([]byte) (int, error) }, value int64, timestamp uint64) error {
	buf := make([]byte, recordSize)
	binary.LittleEndian.PutUint64(buf[0:8], uint64(value))
	binary.LittleEndian.PutUint64(buf[8:16], timestamp)
	_, err := w.Write(buf)
	return err
}

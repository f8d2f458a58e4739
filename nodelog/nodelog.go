/*
NAME
 nodelog.go - rotating log files with upload to the NetSender service.

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

// Package nodelog implements log file rotation and periodic upload of
// rotated log files to the NetSender service as T-pin post bodies.
package nodelog

import (
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ausocean/netsender/netsender"
)

const mimeType = "text/plain"

// Logger rotates a local log file and can later upload its rotated
// backups to the NetSender service, freeing local storage on a
// field-deployed node.
type Logger struct {
	path     string
	Roller   *lumberjack.Logger
	keepLogs bool
}

// New returns a Logger writing to path/netsender.log, keeping up to 10
// backups of 500MB each for 28 days before lumberjack prunes them.
func New(path string) *Logger {
	return &Logger{
		path: path,
		Roller: &lumberjack.Logger{
			Filename:   filepath.Join(path, "netsender.log"),
			MaxSize:    500,
			MaxBackups: 10,
			MaxAge:     28,
		},
	}
}

// Write implements io.Writer, so a Logger can back a netsender.Logger
// (see platform.NewLogger).
func (l *Logger) Write(p []byte) (int, error) { return l.Roller.Write(p) }

// SetKeepLogs controls whether uploaded log files are deleted (false,
// the default) or moved into a local "backups" subdirectory (true).
func (l *Logger) SetKeepLogs(keep bool) { l.keepLogs = keep }

// Rotate closes the current log file, dates it, and opens a fresh one.
func (l *Logger) Rotate() error { return l.Roller.Rotate() }

// SendLogs globs every rotated backup file and uploads each as a T0
// post-body pin through the active request handler, deleting (or
// archiving, if keepLogs) each one that uploads successfully. A file
// that fails to upload is left in place and retried on the next call.
func (l *Logger) SendLogs(ctx *netsender.Context) error {
	files, err := filepath.Glob(filepath.Join(l.path, "netsender-*"))
	if err != nil {
		return err
	}

	active := ctx.Handlers.Active()
	var lastErr error
	for _, full := range files {
		content, err := os.ReadFile(full)
		if err != nil {
			lastErr = err
			continue
		}
		pins := []netsender.Pin{{
			Name:     "T0",
			Value:    len(content),
			Data:     content,
			MimeType: mimeType,
		}}
		if _, err := active.Request(ctx, netsender.ReqPoll, pins, nil); err != nil {
			lastErr = err
			continue
		}
		if err := l.finishUpload(full); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

func (l *Logger) finishUpload(full string) error {
	if !l.keepLogs {
		return os.Remove(full)
	}
	backups := filepath.Join(l.path, "backups")
	if err := os.MkdirAll(backups, 0o755); err != nil {
		return err
	}
	return os.Rename(full, filepath.Join(backups, filepath.Base(full)))
}

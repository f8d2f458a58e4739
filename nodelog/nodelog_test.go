/*
NAME
 nodelog_test.go - SendLogs behaviour under a fault-injected connection.

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

package nodelog

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/Shopify/toxiproxy/client"

	"github.com/ausocean/netsender/netsender"
)

// fixedClock, discardLogger, noSleeper, and memStore are the minimal
// collaborators Init needs; they live here rather than in netsender's
// own test fakes since those are unexported.

type fixedClock struct{}

func (fixedClock) Millis() uint32 { return 0 }

type discardLogger struct{}

func (discardLogger) SetLevel(int8) {}
func (discardLogger) Log(int8, string, ...interface{}) {}

type noSleeper struct{}

func (noSleeper) Sleep(time.Duration) {}
func (noSleeper) DeepSleep(time.Duration) {}

type memStore struct{ buf []byte }

func (s *memStore) ReadBlob(buf []byte) error {
	if s.buf == nil {
		for i := range buf {
			buf[i] = 0xFF // erased-flash convention.
		}
		return nil
	}
	copy(buf, s.buf)
	return nil
}

func (s *memStore) WriteBlob(buf []byte) error {
	s.buf = append([]byte(nil), buf...)
	return nil
}

// newTestContext builds a Context whose active handler speaks HTTP to
// host, with no radio to power (SendLogs never touches Wi-Fi itself).
func newTestContext(t *testing.T, host string) *netsender.Context {
	online := netsender.NewOnlineHandler(host, nil)
	ctx, err := netsender.Init(netsender.Deps{
		Logger:  discardLogger{},
		Clock:   fixedClock{},
		Store:   &memStore{},
		Sleeper: noSleeper{},
	}, online, nil)
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	return ctx
}

// TestSendLogsThroughDropout uploads rotated log files through a
// toxiproxy-fronted endpoint, disabling the proxy mid-stream to confirm
// a dropout leaves the offending file in place for the next retry and
// that it uploads once the connection recovers.
func TestSendLogsThroughDropout(t *testing.T) {
	toxiPath, err := exec.LookPath("toxiproxy-server")
	if err != nil {
		t.Skipf("no toxiproxy server in path: %v", err)
	}
	cmd := exec.Command(toxiPath)
	if err := cmd.Start(); err != nil {
		t.Fatalf("failed to start toxiproxy-server: %v", err)
	}
	defer cmd.Process.Kill()
	time.Sleep(5 * time.Second) // let toxiproxy-server come up.

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]int{"rc": 0})
	}))
	defer upstream.Close()

	tc := toxiproxy.NewClient("localhost:8474")
	proxy, err := tc.CreateProxy("nodelog-test", "localhost:26810", upstream.Listener.Addr().String())
	if err != nil || proxy == nil {
		t.Fatalf("failed to set up proxy: %v", err)
	}
	defer proxy.Delete()

	dir := t.TempDir()
	logger := New(dir)
	ctx := newTestContext(t, "localhost:26810")

	write := func(name string) {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("log line\n"), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	exists := func(name string) bool {
		_, err := os.Stat(filepath.Join(dir, name))
		return err == nil
	}

	write("netsender-a.log")
	if err := logger.SendLogs(ctx); err != nil {
		t.Fatalf("SendLogs failed with the proxy up: %v", err)
	}
	if exists("netsender-a.log") {
		t.Errorf("netsender-a.log should have been removed after a successful upload")
	}

	if err := proxy.Disable(); err != nil {
		t.Fatalf("failed to disable proxy: %v", err)
	}
	write("netsender-b.log")
	if err := logger.SendLogs(ctx); err == nil {
		t.Errorf("SendLogs should report an error while the proxy is disabled")
	}
	if !exists("netsender-b.log") {
		t.Errorf("netsender-b.log should remain in place for retry after a failed upload")
	}

	if err := proxy.Enable(); err != nil {
		t.Fatalf("failed to re-enable proxy: %v", err)
	}
	if err := logger.SendLogs(ctx); err != nil {
		t.Fatalf("SendLogs failed once the proxy recovered: %v", err)
	}
	if exists("netsender-b.log") {
		t.Errorf("netsender-b.log should have been removed once connectivity returned")
	}
}

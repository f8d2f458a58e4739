/*
NAME
 remote_test.go - Node behaviour against a fake SSH dialer.

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

package remote

import (
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/ausocean/netsender/netsender"
)

// fakeClock is driven entirely by test code.
type fakeClock struct{ ms uint32 }

func (c *fakeClock) Millis() uint32 { return c.ms }

// fakeLogger records the last message logged at each level.
type fakeLogger struct {
	last map[int8]string
}

func newFakeLogger() *fakeLogger { return &fakeLogger{last: make(map[int8]string)} }

func (l *fakeLogger) SetLevel(int8) {}
func (l *fakeLogger) Log(level int8, message string, params ...interface{}) {
	l.last[level] = message
}

// fakeSession is a Session whose CombinedOutput result is scripted.
type fakeSession struct {
	out []byte
	err error
	delay time.Duration
}

func (s *fakeSession) CombinedOutput(cmd string) ([]byte, error) {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	return s.out, s.err
}

func (s *fakeSession) Close() error { return nil }

// fakeClient is a Client handing out a scripted session.
type fakeClient struct {
	session *fakeSession
	closed bool
}

func (c *fakeClient) NewSession() (Session, error) { return c.session, nil }
func (c *fakeClient) Close() error { c.closed = true; return nil }

// fakeDialer hands out client or failure, scripted per test.
type fakeDialer struct {
	client *fakeClient
	err error
}

func (d *fakeDialer) Dial(network, addr string, cfg *ssh.ClientConfig) (Client, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.client, nil
}

func TestConnectFailure(t *testing.T) {
	log := newFakeLogger()
	n := NewWithDialer("user", "pass", "10.0.0.5", &fakeDialer{err: errors.New("connection refused")})
	n.Logger = log
	if err := n.Connect(); err == nil {
		t.Fatal("expected Connect to fail")
	}
	if n.connected {
		t.Fatal("Node should not be marked connected after a failed dial")
	}
	if log.last[netsender.ErrorLevel] == "" {
		t.Fatal("expected an error-level log entry for the failed connect")
	}
}

func TestConnectAndConnectedFor(t *testing.T) {
	client := &fakeClient{session: &fakeSession{out: []byte("ok")}}
	clock := &fakeClock{ms: 1000}
	n := NewWithDialer("user", "pass", "10.0.0.5", &fakeDialer{client: client})
	n.Clock = clock

	if err := n.Connect(); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	if err := n.Connect(); err != nil {
		t.Fatalf("second Connect on an open connection should be a no-op: %v", err)
	}

	clock.ms = 2500
	d, ok := n.ConnectedFor()
	if !ok {
		t.Fatal("ConnectedFor should report ok once connected with a Clock set")
	}
	if d != 1500*time.Millisecond {
		t.Fatalf("ConnectedFor = %v, want 1500ms", d)
	}

	if err := n.Disconnect(); err != nil {
		t.Fatalf("Disconnect failed: %v", err)
	}
	if !client.closed {
		t.Fatal("Disconnect should have closed the underlying client")
	}
	if _, ok := n.ConnectedFor(); ok {
		t.Fatal("ConnectedFor should report false once disconnected")
	}
}

func TestExecBeforeConnect(t *testing.T) {
	n := NewWithDialer("user", "pass", "10.0.0.5", &fakeDialer{})
	if _, err := n.Exec("uptime", time.Second); err == nil {
		t.Fatal("Exec should fail before Connect succeeds")
	}
}

func TestExecSuccess(t *testing.T) {
	client := &fakeClient{session: &fakeSession{out: []byte("5 days")}}
	n := NewWithDialer("user", "pass", "10.0.0.5", &fakeDialer{client: client})
	if err := n.Connect(); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	out, err := n.Exec("uptime", time.Second)
	if err != nil {
		t.Fatalf("Exec failed: %v", err)
	}
	if out != "5 days" {
		t.Fatalf("Exec output = %q, want %q", out, "5 days")
	}
}

func TestExecCommandFailure(t *testing.T) {
	client := &fakeClient{session: &fakeSession{err: errors.New("exit status 1")}}
	log := newFakeLogger()
	n := NewWithDialer("user", "pass", "10.0.0.5", &fakeDialer{client: client})
	n.Logger = log
	if err := n.Connect(); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	if _, err := n.Exec("false", time.Second); err == nil {
		t.Fatal("Exec should surface the remote command's failure")
	}
	if log.last[netsender.WarningLevel] == "" {
		t.Fatal("expected a warning-level log entry for the failed command")
	}
}

func TestExecTimeout(t *testing.T) {
	client := &fakeClient{session: &fakeSession{out: []byte("slow"), delay: 50 * time.Millisecond}}
	n := NewWithDialer("user", "pass", "10.0.0.5", &fakeDialer{client: client})
	if err := n.Connect(); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	if _, err := n.Exec("slow-command", 5*time.Millisecond); err == nil {
		t.Fatal("Exec should time out before the scripted delay elapses")
	}
}

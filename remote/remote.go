/*
NAME
 remote.go - SSH access to a sibling NetSender node for field diagnostics.

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

// Package remote provides a type and methods representing a network
// connected NetSender node that can be interacted with via SSH, for
// field diagnostics (cmd/netsender-node --ssh-diagnose).
package remote

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/ausocean/netsender/netsender"
)

// Network configuration.
const (
	defaultSSHPort = 22
	logPort        = 5555
	logProtocol    = "tcp"
	logBufSize     = 1024
)

// Session is the subset of *ssh.Session a Node drives; *ssh.Session
// satisfies it directly.
type Session interface {
	CombinedOutput(cmd string) ([]byte, error)
	Close() error
}

// Client is the subset of *ssh.Client a Node drives.
type Client interface {
	NewSession() (Session, error)
	Close() error
}

// Dialer opens an SSH Client. A Node made by New uses sshDialer, backed by
// golang.org/x/crypto/ssh.Dial; tests substitute a fake to exercise
// Connect/Exec without a live SSH server, the same way the rest of
// this module substitutes fakes for its other external collaborators.
type Dialer interface {
	Dial(network, addr string, cfg *ssh.ClientConfig) (Client, error)
}

type sshDialer struct{}

func (sshDialer) Dial(network, addr string, cfg *ssh.ClientConfig) (Client, error) {
	c, err := ssh.Dial(network, addr, cfg)
	if err != nil {
		return nil, err
	}
	return sshClient{c}, nil
}

// sshClient adapts *ssh.Client's NewSession to return the narrower
// Session interface.
type sshClient struct{ c *ssh.Client }

func (s sshClient) NewSession() (Session, error) { return s.c.NewSession() }
func (s sshClient) Close() error { return s.c.Close() }

// Node represents a remote NetSender node accessible via SSH.
type Node struct {
	user      string
	pass      string
	ipAddr    string
	port      int
	dialer    Dialer
	conn      Client
	connected bool

	// Logger and Clock are optional, matching the rest of this
	// module's collaborator fields: nil means the capability is
	// unused. Logger records connect/disconnect/exec outcomes; Clock
	// timestamps the connection for ConnectedFor.
	Logger        netsender.Logger
	Clock         netsender.Clock
	connectedAtMs uint32
}

// New returns a new Node with the provided username, password, and
// device IP address, dialing over a real SSH connection.
func New(user, pass, ip string) *Node {
	return &Node{user: user, pass: pass, port: defaultSSHPort, ipAddr: ip, dialer: sshDialer{}}
}

// NewWithDialer returns a Node that opens connections through d instead
// of dialing SSH directly, for tests.
func NewWithDialer(user, pass, ip string, d Dialer) *Node {
	n := New(user, pass, ip)
	n.dialer = d
	return n
}

func (n *Node) logf(level int8, message string, params ...interface{}) {
	if n.Logger != nil {
		n.Logger.Log(level, message, params...)
	}
}

// Connect opens an SSH connection to the node using the current
// configuration. If a connection is already open, it is kept open and
// no error is returned.
func (n *Node) Connect() error {
	if n.connected {
		return nil
	}
	cfg := &ssh.ClientConfig{
		User: n.user,
		Auth: []ssh.AuthMethod{
			ssh.Password(n.pass),
		},
		HostKeyCallback: ssh.InsecureIgnoreHostKey,
	}

	var err error
	n.conn, err = n.dialer.Dial("tcp", n.ipAddr+":"+strconv.Itoa(n.port), cfg)
	if err != nil {
		n.logf(netsender.ErrorLevel, "ssh connect failed", "ip", n.ipAddr, "error", err.Error())
		return err
	}
	n.connected = true
	if n.Clock != nil {
		n.connectedAtMs = n.Clock.Millis()
	}
	n.logf(netsender.InfoLevel, "ssh connected", "ip", n.ipAddr)
	return nil
}

// ConnectedFor reports how long the current connection has been open,
// measured against Clock. It returns false if Clock is unset or no
// connection is open.
func (n *Node) ConnectedFor() (time.Duration, bool) {
	if !n.connected || n.Clock == nil {
		return 0, false
	}
	return time.Duration(n.Clock.Millis()-n.connectedAtMs) * time.Millisecond, true
}

// Disconnect closes the SSH connection. If no connection exists, it
// returns without error.
func (n *Node) Disconnect() error {
	if !n.connected {
		return nil
	}
	if err := n.conn.Close(); err != nil {
		n.logf(netsender.ErrorLevel, "ssh disconnect failed", "ip", n.ipAddr, "error", err.Error())
		return fmt.Errorf("remote: disconnect failed: %w", err)
	}
	n.connected = false
	n.logf(netsender.InfoLevel, "ssh disconnected", "ip", n.ipAddr)
	return nil
}

// Exec runs command on the node and returns its combined output. An
// error is returned if the command fails, timeout elapses, or Connect
// has not yet succeeded.
func (n *Node) Exec(command string, timeout time.Duration) (string, error) {
	if timeout < 1 {
		return "", errors.New("remote: timeout must be valid")
	}
	if !n.connected {
		return "", errors.New("remote: no SSH connection established")
	}

	session, err := n.conn.NewSession()
	if err != nil {
		return "", fmt.Errorf("remote: failed to begin SSH session: %w", err)
	}
	defer session.Close()

	t := time.NewTimer(timeout)
	defer t.Stop()
	resCh := make(chan string, 1)
	errCh := make(chan error, 1)

	go func() {
		output, err := session.CombinedOutput(command)
		if err != nil {
			errCh <- err
			return
		}
		resCh <- string(output)
	}()

	select {
	case err := <-errCh:
		n.logf(netsender.WarningLevel, "remote command failed", "command", command, "error", err.Error())
		return "", fmt.Errorf("remote: command failed: %w", err)
	case out := <-resCh:
		return out, nil
	case <-t.C:
		n.logf(netsender.WarningLevel, "remote command timed out", "command", command, "timeout", timeout.String())
		return "", fmt.Errorf("remote: command timed out after %v", timeout)
	}
}

// Listen runs continually, accepting and logging syslog-style lines
// sent via TCP to ip, the way a fleet of NetSender nodes forwards their
// diagnostic output to a collector.
func Listen(l netsender.Logger, ip string) {
	ln, err := net.Listen(logProtocol, ip+":"+strconv.Itoa(logPort))
	if err != nil {
		l.Log(netsender.ErrorLevel, "error listening for connections", "error", err.Error())
		return
	}
	defer ln.Close()

	l.Log(netsender.InfoLevel, "listening", "ip", ip, "port", logPort)
	for {
		conn, err := ln.Accept()
		if err != nil {
			l.Log(netsender.ErrorLevel, "error accepting connection", "error", err.Error())
			continue
		}
		l.Log(netsender.InfoLevel, "connection accepted", "address", conn.RemoteAddr().String())
		if err := handleRequest(conn, l); err != nil {
			l.Log(netsender.ErrorLevel, "error handling request", "error", err.Error())
		}
		conn.Close()
	}
}

// handleRequest reads from conn and logs each line to l.
func handleRequest(conn net.Conn, l netsender.Logger) error {
	buf := make([]byte, logBufSize)
	for {
		n, err := conn.Read(buf)
		if err != nil {
			return fmt.Errorf("remote: could not read from connection: %w", err)
		}
		scan := bufio.NewScanner(bytes.NewReader(buf[:n]))
		for scan.Scan() {
			l.Log(netsender.InfoLevel, "remote syslog received", "log", scan.Text())
		}
		if err := scan.Err(); err != nil {
			return err
		}
	}
}

package netsender

/*
NAME
 testing_test.go - shared fakes used across the netsender package tests.

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

import "time"

// fakeClock is a Clock driven entirely by test code, letting tests
// control rollover and elapsed time directly.
type fakeClock struct {
	ms uint32
}

func (c *fakeClock) Millis() uint32 { return c.ms }

// fakeStore is an in-memory Store, standing in for NVS.
type fakeStore struct {
	buf []byte
}

func newFakeStore(size int) *fakeStore {
	buf := make([]byte, size)
	for i := range buf {
		buf[i] = 0xFF // erased-flash convention.
	}
	return &fakeStore{buf: buf}
}

func (s *fakeStore) ReadBlob(buf []byte) error {
	copy(buf, s.buf)
	return nil
}

func (s *fakeStore) WriteBlob(buf []byte) error {
	s.buf = append([]byte(nil), buf...)
	return nil
}

// fakeSleeper records every sleep/deep-sleep duration instead of
// actually blocking, so cycle tests run instantly.
type fakeSleeper struct {
	slept     []time.Duration
	deptSlept []time.Duration
}

func (s *fakeSleeper) Sleep(d time.Duration) { s.slept = append(s.slept, d) }
func (s *fakeSleeper) DeepSleep(d time.Duration) { s.deptSlept = append(s.deptSlept, d) }

// fakeLogger discards log output but records the last message.
type fakeLogger struct {
	level int8
	last  string
}

func (l *fakeLogger) SetLevel(level int8) { l.level = level }
func (l *fakeLogger) Log(level int8, message string, params ...interface{}) {
	l.last = message
}

// fakeDigital is a DigitalReader/Writer backed by an in-memory pin map.
type fakeDigital struct {
	vals map[int]int
}

func newFakeDigital() *fakeDigital { return &fakeDigital{vals: make(map[int]int)} }

func (d *fakeDigital) ReadDigital(pin int) (int, error) { return d.vals[pin], nil }
func (d *fakeDigital) WriteDigital(pin, value int) error {
	d.vals[pin] = value
	return nil
}

// fakeAnalog is an AnalogReader/Writer returning a fixed or queued
// sequence of values.
type fakeAnalog struct {
	queue map[int][]int
	last  map[int]int
}

func newFakeAnalog() *fakeAnalog {
	return &fakeAnalog{queue: make(map[int][]int), last: make(map[int]int)}
}

func (a *fakeAnalog) push(pin, v int) { a.queue[pin] = append(a.queue[pin], v) }

func (a *fakeAnalog) ReadAnalog(pin int) (int, error) {
	q := a.queue[pin]
	if len(q) == 0 {
		return a.last[pin], nil
	}
	v := q[0]
	a.queue[pin] = q[1:]
	a.last[pin] = v
	return v, nil
}

func (a *fakeAnalog) WriteAnalog(pin, value int) error {
	a.last[pin] = value
	return nil
}

// fakeNV is an in-memory NVNamespace.
type fakeNV struct {
	m map[string]string
}

func newFakeNV() *fakeNV { return &fakeNV{m: make(map[string]string)} }

func (n *fakeNV) Get(key string) (string, bool) { v, ok := n.m[key]; return v, ok }
func (n *fakeNV) Set(key, value string) error { n.m[key] = value; return nil }

// newTestContext builds a minimal Context with fakes wired in, a
// resolved Online handler pointed at no radio (so requests always
// fail cleanly), and no Offline handler, suitable for unit tests that
// exercise pieces of the run loop directly rather than Run itself.
func newTestContext(t interface{ Fatalf(string, ...interface{}) }) (*Context, *fakeSleeper) {
	sleeper := &fakeSleeper{}
	digital := newFakeDigital()
	analog := newFakeAnalog()
	deps := Deps{
		Logger:        &fakeLogger{},
		Clock:         &fakeClock{},
		Store:         newFakeStore(configBlobSize),
		ModeNV:        newFakeNV(),
		Sleeper:       sleeper,
		DigitalReader: digital,
		DigitalWriter: digital,
		AnalogReader:  analog,
		AnalogWriter:  analog,
	}
	online := NewOnlineHandler("test.invalid", nil)
	ctx, err := Init(deps, online, nil)
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	return ctx, sleeper
}

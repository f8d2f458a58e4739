package netsender

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// newRunTestContext builds a Context whose active Online handler talks
// to srv, with the config already marked present (InputsCSV/OutputsCSV
// set) so Run does not force an initial config request.
func newRunTestContext(t *testing.T, srv *httptest.Server) *Context {
	host := strings.TrimPrefix(srv.URL, "http://")
	online := NewOnlineHandler(host, &fakeRadio{mac: "aa:bb:cc:dd:ee:ff"})
	digital := newFakeDigital()
	analog := newFakeAnalog()
	deps := Deps{
		Logger:        &fakeLogger{},
		Clock:         &fakeClock{ms: 1_000_000}, // comfortably past ADC warm-up / auto-restart windows.
		Store:         newFakeStore(configBlobSize),
		ModeNV:        newFakeNV(),
		Sleeper:       &fakeSleeper{},
		DigitalReader: digital,
		DigitalWriter: digital,
		AnalogReader:  analog,
		AnalogWriter:  analog,
	}
	ctx, err := Init(deps, online, nil)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	ctx.Config.MonPeriod = 60
	ctx.Config.ActPeriod = 60
	ctx.Config.InputsCSV = "A4"
	ctx.Config.OutputsCSV = "D5"
	ctx.Config.DeviceKey = "devkey"
	ctx.configured = true
	ctx.Config.Vars[VarAlarmVoltage] = 600
	ctx.Config.Vars[VarAlarmRecoveryVoltage] = 650
	ctx.Config.Vars[VarPeakVoltage] = 845
	ctx.Config.Vars[VarAlarmNetwork] = 3
	ctx.Config.Vars[VarAutoRestart] = 600
	return ctx
}

// TestRunHappyPoll exercises scenario 1 through the
// full Run loop: D5 is written, the failure counter resets, and the
// cached varsum updates.
func TestRunHappyPoll(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/poll"):
			w.Write([]byte(`{"D5":1,"rc":0,"vs":12345}`))
		case strings.HasPrefix(r.URL.Path, "/vars"):
			w.Write([]byte(`{"rc":0,"vs":12345}`))
		default:
			t.Errorf("unexpected request: %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	ctx := newRunTestContext(t, srv)
	analog := ctx.AnalogReader.(*fakeAnalog)
	analog.last[4] = 700 // battery-unrelated analog pin, above any alarm threshold.
	analog.last[batteryPinNumber] = 700

	ok := ctx.Run()
	if !ok {
		t.Fatalf("Run = false, want true")
	}
	digital := ctx.DigitalWriter.(*fakeDigital)
	if digital.vals[5] != 1 {
		t.Errorf("D5 = %d, want 1", digital.vals[5])
	}
	if ctx.varsum != 12345 {
		t.Errorf("cached varsum = %d, want 12345", ctx.varsum)
	}
}

// TestRunUpdateCascade exercises scenario 2: an
// rc=Update poll reply triggers a follow-up config request whose
// mp/ap/ip/op fields are adopted.
func TestRunUpdateCascade(t *testing.T) {
	var configRequested bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/poll"):
			w.Write([]byte(`{"rc":1,"vs":12345}`))
		case strings.HasPrefix(r.URL.Path, "/config"):
			configRequested = true
			w.Write([]byte(`{"ip":"A4","op":"D5,D6","mp":30,"ap":30,"rc":0,"vs":12345}`))
		case strings.HasPrefix(r.URL.Path, "/vars"):
			w.Write([]byte(`{"rc":0,"vs":12345}`))
		default:
			t.Errorf("unexpected request: %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	ctx := newRunTestContext(t, srv)
	analog := ctx.AnalogReader.(*fakeAnalog)
	analog.last[4] = 700
	analog.last[batteryPinNumber] = 700

	ctx.Run()

	if !configRequested {
		t.Fatalf("expected a follow-up config request after rc=Update")
	}
	if ctx.Config.MonPeriod != 30 || ctx.Config.ActPeriod != 30 {
		t.Errorf("MonPeriod/ActPeriod = %d/%d, want 30/30", ctx.Config.MonPeriod, ctx.Config.ActPeriod)
	}
	if ctx.Config.OutputsCSV != "D5,D6" {
		t.Errorf("OutputsCSV = %q, want \"D5,D6\"", ctx.Config.OutputsCSV)
	}
	if !ctx.configured {
		t.Errorf("Configured = false after a successful config request")
	}
}

// TestRunVoltageAlarmAndRecovery exercises scenario
// 3 across three cycles: below AlarmVoltage asserts a continuous
// alarm and aborts the cycle; between AlarmVoltage and
// AlarmRecoveryVoltage the cycle stays aborted; at or above
// AlarmRecoveryVoltage the alarm clears and the cycle completes.
func TestRunVoltageAlarmAndRecovery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"rc":0,"vs":1}`))
	}))
	defer srv.Close()

	ctx := newRunTestContext(t, srv)
	analog := ctx.AnalogReader.(*fakeAnalog)

	analog.last[batteryPinNumber] = 580 // below AlarmVoltage(600).
	if ok := ctx.Run(); ok {
		t.Fatalf("cycle 1 Run = true, want false (voltage alarm)")
	}
	if ctx.Error != ErrorLowVoltage {
		t.Errorf("cycle 1 Error = %q, want LowVoltage", ctx.Error)
	}
	if !ctx.Alarm.Alarmed() {
		t.Errorf("cycle 1: expected alarmed=true")
	}

	ctx.Clock.(*fakeClock).ms += 60_000
	analog.last[batteryPinNumber] = 620 // still below recovery(650).
	if ok := ctx.Run(); ok {
		t.Fatalf("cycle 2 Run = true, want false (still below recovery)")
	}
	if !ctx.Alarm.Alarmed() {
		t.Errorf("cycle 2: expected still alarmed")
	}

	ctx.Clock.(*fakeClock).ms += 60_000
	analog.last[batteryPinNumber] = 660 // at/above recovery.
	if ok := ctx.Run(); !ok {
		t.Fatalf("cycle 3 Run = false, want true (recovered)")
	}
	if ctx.Alarm.Alarmed() {
		t.Errorf("cycle 3: expected alarm cleared")
	}
	if ctx.Error != ErrorNone {
		t.Errorf("cycle 3 Error = %q, want None", ctx.Error)
	}
}

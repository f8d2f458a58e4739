package netsender

import (
	"reflect"
	"testing"
)

var parseCSVTests = []struct {
	csv      string
	restrict string
	want     []Pin
}{
	{csv: "", restrict: "", want: nil},
	{
		csv:  "X1,X2,X3",
		want: []Pin{{Name: "X1", Value: -1}, {Name: "X2", Value: -1}, {Name: "X3", Value: -1}},
	},
	{
		csv:  "X1,A2,V3",
		want: []Pin{{Name: "X1", Value: -1}, {Name: "A2", Value: -1}}, // V is not a valid prefix.
	},
	{
		csv:      "X1,A2,D3",
		restrict: "X",
		want:     []Pin{{Name: "X1", Value: -1}},
	},
	{
		csv:  "X1,A2,D33,",
		want: []Pin{{Name: "X1", Value: -1}, {Name: "A2", Value: -1}, {Name: "D33", Value: -1}},
	},
	{
		// Too long or malformed names are dropped silently.
		csv:  "X123,XA,X",
		want: nil,
	},
}

func TestParseCSV(t *testing.T) {
	for i, test := range parseCSVTests {
		got := ParseCSV(test.csv, test.restrict)
		if !reflect.DeepEqual(got, test.want) {
			t.Errorf("test %d ParseCSV(%q, %q):\ngot : %#v\nwant: %#v", i, test.csv, test.restrict, got, test.want)
		}
	}
}

var checkCSVTests = []struct {
	csv    string
	count  int
	wantOK bool
}{
	{csv: "", count: 0, wantOK: true},
	{csv: "A0,D1,X10", count: 3, wantOK: true},
	{csv: "A0,Z1", count: 0, wantOK: false},
	{csv: "A123", count: 0, wantOK: false}, // too many digits.
}

func TestCheckCSV(t *testing.T) {
	for i, test := range checkCSVTests {
		n, ok := CheckCSV(test.csv)
		if n != test.count || ok != test.wantOK {
			t.Errorf("test %d CheckCSV(%q) = (%d, %v), want (%d, %v)", i, test.csv, n, ok, test.count, test.wantOK)
		}
	}
}

// TestCheckCSVMaxPins checks that a CSV exceeding MaxPins is rejected.
func TestCheckCSVMaxPins(t *testing.T) {
	csv := ""
	for i := 0; i < MaxPins+1; i++ {
		if i > 0 {
			csv += ","
		}
		csv += "X1"
	}
	if _, ok := CheckCSV(csv); ok {
		t.Errorf("CheckCSV with %d pins should be rejected (MaxPins=%d)", MaxPins+1, MaxPins)
	}
}

// TestPostBodyPinNoReader checks that reading a B/T pin with no
// external reader yields Value=-1 and never populates Data
func TestPostBodyPinNoReader(t *testing.T) {
	ctx, _ := newTestContext(t)
	for _, name := range []string{"B0", "T1"} {
		p := Pin{Name: name, Data: []byte("stale")}
		if err := ctx.ReadPin(&p); err != nil {
			t.Fatalf("ReadPin(%q): %v", name, err)
		}
		if p.Value != -1 {
			t.Errorf("ReadPin(%q).Value = %d, want -1", name, p.Value)
		}
		if p.Data != nil {
			t.Errorf("ReadPin(%q).Data = %v, want nil", name, p.Data)
		}
	}
}

// TestSimulatedBatteryOneShot checks that writing the simulated battery
// value causes the next read to return it, and subsequent reads to
// fall back to the real hardware reading
func TestSimulatedBatteryOneShot(t *testing.T) {
	ctx, _ := newTestContext(t)
	analog := ctx.AnalogReader.(*fakeAnalog)
	analog.last[batteryPinNumber] = 700 // hardware baseline.

	write := Pin{Name: "X10", Value: 555}
	if err := ctx.WritePin(&write); err != nil {
		t.Fatalf("WritePin: %v", err)
	}

	read := Pin{Name: "A0"}
	if err := ctx.ReadPin(&read); err != nil {
		t.Fatalf("ReadPin: %v", err)
	}
	if read.Value != 555 {
		t.Errorf("first read after simulated battery write = %d, want 555", read.Value)
	}

	var read2 Pin
	read2.Name = "A0"
	if err := ctx.ReadPin(&read2); err != nil {
		t.Fatalf("ReadPin: %v", err)
	}
	if read2.Value != 700 {
		t.Errorf("second read = %d, want hardware value 700", read2.Value)
	}
}

// TestPulseSuppressLatchAndClear checks that the pulse-suppress flag is
// only set on value==1 and is cleared only by ClearPulseSuppress.
func TestPulseSuppressLatchAndClear(t *testing.T) {
	ctx, _ := newTestContext(t)

	off := Pin{Name: "X14", Value: 0}
	if err := ctx.WritePin(&off); err != nil {
		t.Fatalf("WritePin: %v", err)
	}
	if ctx.VBank.PulseSuppressed() {
		t.Fatalf("PulseSuppressed should still be false after writing 0")
	}

	on := Pin{Name: "X14", Value: 1}
	if err := ctx.WritePin(&on); err != nil {
		t.Fatalf("WritePin: %v", err)
	}
	if !ctx.VBank.PulseSuppressed() {
		t.Fatalf("PulseSuppressed should be true after writing 1")
	}

	// Writing 0 again must NOT clear it; only ClearPulseSuppress does.
	if err := ctx.WritePin(&off); err != nil {
		t.Fatalf("WritePin: %v", err)
	}
	if !ctx.VBank.PulseSuppressed() {
		t.Fatalf("writing 0 must not clear the suppress flag")
	}

	ctx.VBank.ClearPulseSuppress()
	if ctx.VBank.PulseSuppressed() {
		t.Fatalf("ClearPulseSuppress should clear the flag")
	}
}

func TestValidPinName(t *testing.T) {
	valid := []string{"A0", "A12", "D5", "B0", "T9", "X10"}
	invalid := []string{"", "A", "Z1", "A123", "a1", "XX"}
	for _, n := range valid {
		if !validPinName(n) {
			t.Errorf("validPinName(%q) = false, want true", n)
		}
	}
	for _, n := range invalid {
		if validPinName(n) {
			t.Errorf("validPinName(%q) = true, want false", n)
		}
	}
}

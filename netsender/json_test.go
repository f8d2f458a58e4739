package netsender

import "testing"

var jsonIntTests = []struct {
	reply string
	key string
	want int
	wantErr bool
}{
	{reply: `{"rc":0,"vs":12345}`, key: "rc", want: 0},
	{reply: `{"rc":0,"vs":12345}`, key: "vs", want: 12345},
	{reply: `{"D5":1,"rc":0,"vs":12345}`, key: "D5", want: 1},
	{reply: `{"mp":-1}`, key: "mp", want: -1},
	{reply: `{"rc":0}`, key: "missing", wantErr: true},
	{reply: `{"dk":"abc123"}`, key: "dk", wantErr: true}, // quoted, not numeric.
}

func TestJSONDecoderInt(t *testing.T) {
	for i, test := range jsonIntTests {
		got, err := NewJSONDecoder(test.reply).Int(test.key)
		if test.wantErr {
			if err == nil {
				t.Errorf("test %d: Int(%q) over %q: want error, got %d", i, test.key, test.reply, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("test %d: Int(%q) over %q: unexpected error %v", i, test.key, test.reply, err)
			continue
		}
		if got != test.want {
			t.Errorf("test %d: Int(%q) over %q = %d, want %d", i, test.key, test.reply, got, test.want)
		}
	}
}

var jsonStringTests = []struct {
	reply string
	key string
	want string
	wantErr bool
}{
	{reply: `{"dk":"abc123","rc":0}`, key: "dk", want: "abc123"},
	{reply: `{"er":"LowVoltage"}`, key: "er", want: "LowVoltage"},
	{reply: `{"rc":0}`, key: "dk", wantErr: true},
	{reply: `{"rc":0}`, key: "rc", wantErr: true}, // numeric, not quoted.
}

func TestJSONDecoderString(t *testing.T) {
	for i, test := range jsonStringTests {
		got, err := NewJSONDecoder(test.reply).String(test.key)
		if test.wantErr {
			if err == nil {
				t.Errorf("test %d: String(%q) over %q: want error, got %q", i, test.key, test.reply, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("test %d: String(%q) over %q: unexpected error %v", i, test.key, test.reply, err)
			continue
		}
		if got != test.want {
			t.Errorf("test %d: String(%q) over %q = %q, want %q", i, test.key, test.reply, got, test.want)
		}
	}
}

// TestJSONDecoderNested checks that the minimal scanner does not
// attempt to parse nested objects : a key whose
// value is itself an object is not recognized as numeric or quoted.
func TestJSONDecoderNested(t *testing.T) {
	_, err := NewJSONDecoder(`{"outer":{"inner":1}}`).Int("outer")
	if err == nil {
		t.Errorf("Int(\"outer\") over a nested object should fail, not silently parse")
	}
}

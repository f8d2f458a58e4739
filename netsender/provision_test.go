package netsender

import "testing"

// TestProvisionWritesConfig checks that a valid seed produces a
// persisted Config readable back through PersistentStore.Read.
func TestProvisionWritesConfig(t *testing.T) {
	store := newFakeStore(configBlobSize)
	seed := Seed{
		WiFiSSID:   "myssid",
		WiFiKey:    "mykey",
		DeviceKey:  "devkey123",
		InputsCSV:  "A0,A4",
		OutputsCSV: "D5",
		MonPeriod:  60,
		ActPeriod:  60,
	}

	cfg, err := Provision(store, seed)
	if err != nil {
		t.Fatalf("Provision: %v", err)
	}
	if cfg.WiFiCSV != "myssid,mykey" {
		t.Errorf("WiFiCSV = %q, want \"myssid,mykey\"", cfg.WiFiCSV)
	}

	var readBack Config
	ps := NewPersistentStore(store, nil)
	if err := ps.Read(&readBack); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if readBack.DeviceKey != seed.DeviceKey {
		t.Errorf("DeviceKey = %q, want %q", readBack.DeviceKey, seed.DeviceKey)
	}
	if readBack.InputsCSV != seed.InputsCSV || readBack.OutputsCSV != seed.OutputsCSV {
		t.Errorf("CSVs = (%q, %q), want (%q, %q)", readBack.InputsCSV, readBack.OutputsCSV, seed.InputsCSV, seed.OutputsCSV)
	}
}

// TestProvisionRejectsMissingDeviceKey checks that an incomplete seed is
// rejected before anything is persisted.
func TestProvisionRejectsMissingDeviceKey(t *testing.T) {
	store := newFakeStore(configBlobSize)
	_, err := Provision(store, Seed{InputsCSV: "A0"})
	if err == nil {
		t.Fatalf("expected an error for a missing device key")
	}
}

// TestProvisionRejectsInvalidCSV checks that a malformed pin list is
// rejected.
func TestProvisionRejectsInvalidCSV(t *testing.T) {
	store := newFakeStore(configBlobSize)
	_, err := Provision(store, Seed{DeviceKey: "dk", InputsCSV: "notapin"})
	if err == nil {
		t.Fatalf("expected an error for an invalid inputs CSV")
	}
}

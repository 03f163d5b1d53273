// v2
// internal/control/protocols_test.go
package control

import (
	"os"
	"path/filepath"
	"testing"

	"urbantech/twin/internal/model"
)

func TestLoadProtocolsOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "protocols.yaml")
	body := "fire:\n  priority: 1\n  response_time_min: 2.5\nchemical_spill:\n  priority: 1\n  response_time_min: 4\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	table, err := LoadProtocols(path)
	if err != nil {
		t.Fatalf("LoadProtocols: %v", err)
	}
	if p := table.Lookup(model.EmergencyFire); p.ResponseTimeMin != 2.5 {
		t.Fatalf("fire response %.1f, want overlay value 2.5", p.ResponseTimeMin)
	}
	if p := table.Lookup(model.EmergencyType("chemical_spill")); p.ResponseTimeMin != 4 {
		t.Fatalf("chemical_spill response %.1f, want 4", p.ResponseTimeMin)
	}
	// Untouched defaults survive the overlay.
	if p := table.Lookup(model.EmergencyGas); p.Priority != 1 || p.ResponseTimeMin != 2 {
		t.Fatalf("gas dispatch %+v, want defaults 1/2", p)
	}
}

func TestLoadProtocolsEmptyPathIsDefaults(t *testing.T) {
	table, err := LoadProtocols("")
	if err != nil {
		t.Fatalf("LoadProtocols: %v", err)
	}
	if p := table.Lookup(model.EmergencyFire); p.Priority != 1 || p.ResponseTimeMin != 3 {
		t.Fatalf("fire dispatch %+v, want 1/3", p)
	}
}

func TestLoadProtocolsRejectsInvalidEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "protocols.yaml")
	if err := os.WriteFile(path, []byte("fire:\n  priority: 0\n  response_time_min: 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadProtocols(path); err == nil {
		t.Fatal("expected validation error for priority 0")
	}
}

func TestLookupUnknownTypeFallsBack(t *testing.T) {
	table := DefaultProtocols()
	p := table.Lookup(model.EmergencyType("volcano"))
	if p.Priority != fallbackPriority || p.ResponseTimeMin != fallbackResponseTimeMin {
		t.Fatalf("fallback %+v, want %d/%d", p, fallbackPriority, fallbackResponseTimeMin)
	}
}

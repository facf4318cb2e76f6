package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"swesmith/internal/distill"
)

func TestReadTrajectories_RoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "trajectories.json")
	want := []distill.Trajectory{
		{InstanceID: "o__r.abc.k__h", Messages: []distill.Message{{Role: "user", Content: "fix it"}}, ModelPatch: "diff"},
	}
	b, err := json.Marshal(want)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := readTrajectories(path)
	if err != nil {
		t.Fatalf("readTrajectories: %v", err)
	}
	if len(got) != 1 || got[0].InstanceID != want[0].InstanceID || got[0].ModelPatch != want[0].ModelPatch {
		t.Fatalf("readTrajectories = %+v, want %+v", got, want)
	}
}

func TestReadTrajectories_MissingFileErrors(t *testing.T) {
	if _, err := readTrajectories(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("expected an error reading a missing trajectories file")
	}
}

func TestReadTrajectories_MalformedJSONErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := readTrajectories(path); err == nil {
		t.Error("expected an error reading malformed trajectory JSON")
	}
}

package profile

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRegistry_AddAndGet(t *testing.T) {
	r := NewRegistry()
	p := &Profile{Owner: "o", Repo: "r", Commit: "c1", Language: LanguageGo, TestCmd: "go test ./..."}
	if err := r.Add(p); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	got, ok := r.Get("o", "r", "c1")
	if !ok {
		t.Fatalf("Get() did not find registered profile")
	}
	if got != p {
		t.Fatalf("Get() returned a different profile pointer")
	}
}

func TestRegistry_RejectsConflictingProfilesForSameTriple(t *testing.T) {
	r := NewRegistry()
	p1 := &Profile{Owner: "o", Repo: "r", Commit: "c1", Language: LanguageGo, TestCmd: "go test ./..."}
	p2 := &Profile{Owner: "o", Repo: "r", Commit: "c1", Language: LanguagePython, TestCmd: "pytest"}
	if err := r.Add(p1); err != nil {
		t.Fatalf("Add(p1) error = %v", err)
	}
	if err := r.Add(p2); err == nil {
		t.Fatalf("expected conflict error adding a differing profile for the same triple")
	}
}

func TestRegistry_IdenticalReAddIsANoop(t *testing.T) {
	r := NewRegistry()
	p1 := &Profile{Owner: "o", Repo: "r", Commit: "c1", Language: LanguageGo, TestCmd: "go test ./..."}
	p2 := &Profile{Owner: "o", Repo: "r", Commit: "c1", Language: LanguageGo, TestCmd: "go test ./..."}
	if err := r.Add(p1); err != nil {
		t.Fatalf("Add(p1) error = %v", err)
	}
	if err := r.Add(p2); err != nil {
		t.Fatalf("expected identical re-add to succeed, got %v", err)
	}
	if len(r.All()) != 1 {
		t.Fatalf("expected exactly one profile after identical re-add, got %d", len(r.All()))
	}
}

func TestRegistry_MustGetErrorsWhenMissing(t *testing.T) {
	r := NewRegistry()
	if _, err := r.MustGet("o", "r", "c1"); err == nil {
		t.Fatalf("expected error for missing profile")
	}
}

func TestRegistry_LoadFileParsesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "django.yaml")
	content := `
owner: django
repo: django
commit: abc1234567
language: python
log_parser: pytest
test_cmd: pytest -v
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	r := NewRegistry()
	if err := r.LoadFile(path); err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	p, ok := r.Get("django", "django", "abc1234567")
	if !ok {
		t.Fatalf("expected profile loaded from YAML to be registered")
	}
	if p.EffectiveTestCmd() != "pytest -v" {
		t.Fatalf("EffectiveTestCmd() = %q, want %q", p.EffectiveTestCmd(), "pytest -v")
	}
}

func TestRegistry_LoadDirLoadsAllYAMLFiles(t *testing.T) {
	dir := t.TempDir()
	for i, name := range []string{"a.yaml", "b.yml"} {
		content := `
owner: o
repo: r
commit: c` + string(rune('1'+i)) + `
language: go
test_cmd: go test ./...
`
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
	}

	r := NewRegistry()
	if err := r.LoadDir(dir); err != nil {
		t.Fatalf("LoadDir() error = %v", err)
	}
	if len(r.All()) != 2 {
		t.Fatalf("expected 2 profiles loaded, got %d", len(r.All()))
	}
}

package issuegen

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGenerate_SkipModeReturnsEmpty(t *testing.T) {
	g := NewGenerator(nil)
	got, err := g.Generate(context.Background(), ModeSkip, Target{InstanceID: "i1"}, nil, "")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "" {
		t.Fatalf("Generate(skip) = %q, want empty", got)
	}
}

func TestGenerate_LLMModeWithoutClientErrors(t *testing.T) {
	g := NewGenerator(nil)
	if _, err := g.Generate(context.Background(), ModeLLM, Target{}, nil, ""); err == nil {
		t.Fatalf("expected error when ModeLLM has no client")
	}
}

func TestGenerate_StaticModeNamesTouchedFilesNotHunks(t *testing.T) {
	target := Target{
		InstanceID: "i1",
		Diff:       "--- a/pkg/foo.go\n+++ b/pkg/foo.go\n@@ -1,3 +1,3 @@\n-return a < b\n+return a <= b\n",
		FailToPass: []string{"TestFoo"},
	}
	g := NewGenerator(nil)
	got, err := g.Generate(context.Background(), ModeStatic, target, nil, "")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(got, "pkg/foo.go") {
		t.Fatalf("expected static template to name the touched file, got %q", got)
	}
	if strings.Contains(got, "a <= b") {
		t.Fatalf("static template must not quote the diff body, got %q", got)
	}
}

func TestGenerate_TestsModeSummarizesFailingTestSources(t *testing.T) {
	target := Target{InstanceID: "i1", FailToPass: []string{"TestFoo"}}
	sources := map[string]string{"TestFoo": "func TestFoo(t *testing.T) {\n\tif !Add(1, 2) == 3 {\n\t\tt.Fail()\n\t}\n}"}
	g := NewGenerator(nil)
	got, err := g.Generate(context.Background(), ModeTests, target, sources, "")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got == "" {
		t.Fatalf("expected non-empty tests-mode issue text")
	}
}

func TestGenerate_PRModeFallsBackWhenNoBody(t *testing.T) {
	g := NewGenerator(nil)
	got, err := g.Generate(context.Background(), ModePR, Target{}, nil, "")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got == "" {
		t.Fatalf("expected a fallback message when no PR body is available")
	}

	got2, err := g.Generate(context.Background(), ModePR, Target{}, nil, "  original PR text  ")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got2 != "original PR text" {
		t.Fatalf("Generate(pr) = %q, want trimmed PR body", got2)
	}
}

func TestGenerate_UnknownModeErrors(t *testing.T) {
	g := NewGenerator(nil)
	if _, err := g.Generate(context.Background(), Mode("bogus"), Target{}, nil, ""); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}

func TestTouchedFiles(t *testing.T) {
	diffText := "--- a/a.go\n+++ b/a.go\n@@ -1 +1 @@\n-x\n+y\n--- a/b.go\n+++ b/b.go\n@@ -1 +1 @@\n-x\n+y\n"
	got := touchedFiles(diffText)
	if len(got) != 2 || got[0] != "a.go" || got[1] != "b.go" {
		t.Fatalf("touchedFiles() = %v", got)
	}
}

func TestWriteRecords_WritesCanonicalPath(t *testing.T) {
	root := t.TempDir()
	records := []Record{{InstanceID: "o__r.abc.k__h", ProblemStatement: "it's broken"}}
	path, err := WriteRecords(root, "r", "exp1", records)
	if err != nil {
		t.Fatalf("WriteRecords: %v", err)
	}
	if filepath.Base(path) != "r__exp1_n1.json" {
		t.Fatalf("WriteRecords path = %q", path)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var got []Record
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(got) != 1 || got[0].InstanceID != "o__r.abc.k__h" {
		t.Fatalf("round-tripped records = %+v", got)
	}
}

func TestRehomeIfLegacy_MovesFileToCanonicalPath(t *testing.T) {
	root := t.TempDir()
	legacyDir := filepath.Join(root, "legacy")
	if err := os.MkdirAll(legacyDir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	legacyPath := filepath.Join(legacyDir, "old_name.json")
	if err := os.WriteFile(legacyPath, []byte(`[]`), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	canonical, err := RehomeIfLegacy(root, "r", "exp1", legacyPath)
	if err != nil {
		t.Fatalf("RehomeIfLegacy: %v", err)
	}
	if canonical != CanonicalPath(root, "r", "exp1") {
		t.Fatalf("RehomeIfLegacy() = %q", canonical)
	}
	if _, err := os.Stat(legacyPath); !os.IsNotExist(err) {
		t.Fatalf("expected legacy file to be removed after rehoming")
	}
	if _, err := os.Stat(canonical); err != nil {
		t.Fatalf("expected canonical file to exist: %v", err)
	}
}

func TestRehomeIfLegacy_NoopWhenAlreadyCanonical(t *testing.T) {
	root := t.TempDir()
	canonical := CanonicalPath(root, "r", "exp1")
	if err := os.MkdirAll(filepath.Dir(canonical), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(canonical, []byte(`[]`), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := RehomeIfLegacy(root, "r", "exp1", canonical)
	if err != nil {
		t.Fatalf("RehomeIfLegacy: %v", err)
	}
	if got != canonical {
		t.Fatalf("RehomeIfLegacy() = %q, want %q", got, canonical)
	}
}

package gatherer

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestInstanceID_Format(t *testing.T) {
	got := InstanceID("o", "r", "abc1234", "procedural_invert_boundary__deadbeef")
	want := "o__r.abc1234.procedural_invert_boundary__deadbeef"
	if got != want {
		t.Fatalf("InstanceID() = %q, want %q", got, want)
	}
}

func writeReport(t *testing.T, dir string, r candidateReport, patch string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	b, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "report.json"), b, 0o644); err != nil {
		t.Fatalf("WriteFile report.json: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "patch.diff"), []byte(patch), 0o644); err != nil {
		t.Fatalf("WriteFile patch.diff: %v", err)
	}
}

func TestReadCandidate_RoundTrips(t *testing.T) {
	dir := t.TempDir()
	instDir := filepath.Join(dir, "procedural_invert_boundary__deadbeef")
	want := candidateReport{
		InstanceIDStub: "procedural_invert_boundary__deadbeef",
		BugKind:        "procedural:invert_boundary",
		FailToPass:     []string{"t1"},
		PassToPass:     []string{"t2"},
	}
	writeReport(t, instDir, want, "diff-text")

	got, patch, err := readCandidate(instDir)
	if err != nil {
		t.Fatalf("readCandidate: %v", err)
	}
	if patch != "diff-text" {
		t.Fatalf("patch = %q", patch)
	}
	if got.InstanceIDStub != want.InstanceIDStub || len(got.FailToPass) != 1 || len(got.PassToPass) != 1 {
		t.Fatalf("readCandidate() = %+v", got)
	}
	if !got.promotable() {
		t.Fatalf("expected promotable candidate")
	}
}

func TestCandidateReport_PromotableRejectsTerminatedRuns(t *testing.T) {
	cases := []candidateReport{
		{ApplyFailed: true, FailToPass: []string{"a"}, PassToPass: []string{"b"}},
		{TimedOut: true, FailToPass: []string{"a"}, PassToPass: []string{"b"}},
		{HarnessCrashed: true, FailToPass: []string{"a"}, PassToPass: []string{"b"}},
		{FailToPass: nil, PassToPass: []string{"b"}},
		{FailToPass: []string{"a"}, PassToPass: nil},
	}
	for i, c := range cases {
		if c.promotable() {
			t.Errorf("case %d: expected non-promotable, got promotable: %+v", i, c)
		}
	}
}

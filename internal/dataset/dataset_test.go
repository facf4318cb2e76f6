package dataset

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"swesmith/internal/gatherer"
	"swesmith/internal/issuegen"
)

func TestAssemble_JoinsOnInstanceID(t *testing.T) {
	instances := []gatherer.Instance{
		{InstanceID: "o__r.abc.k__h", Repo: "r", Patch: "diff", FailToPass: []string{"t1"}, PassToPass: []string{"t2"}, ImageName: "img"},
	}
	issues := []issuegen.Record{{InstanceID: "o__r.abc.k__h", ProblemStatement: "it's broken"}}

	got, err := Assemble(instances, issues, false)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	want := []FinalInstance{
		{InstanceID: "o__r.abc.k__h", Repo: "r", Patch: "diff", ProblemStatement: "it's broken", FailToPass: []string{"t1"}, PassToPass: []string{"t2"}, ImageName: "img"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Assemble() mismatch (-want +got):\n%s", diff)
	}
}

func TestAssemble_PreservesInsertionOrder(t *testing.T) {
	instances := []gatherer.Instance{
		{InstanceID: "o__r.abc.z__h", Repo: "r", Patch: "diff", FailToPass: []string{"t1"}},
		{InstanceID: "o__r.abc.a__h", Repo: "r", Patch: "diff", FailToPass: []string{"t1"}},
		{InstanceID: "o__r.abc.m__h", Repo: "r", Patch: "diff", FailToPass: []string{"t1"}},
	}
	issues := []issuegen.Record{
		{InstanceID: "o__r.abc.z__h", ProblemStatement: "s"},
		{InstanceID: "o__r.abc.a__h", ProblemStatement: "s"},
		{InstanceID: "o__r.abc.m__h", ProblemStatement: "s"},
	}

	got, err := Assemble(instances, issues, false)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	wantOrder := []string{"o__r.abc.z__h", "o__r.abc.a__h", "o__r.abc.m__h"}
	if len(got) != len(wantOrder) {
		t.Fatalf("got %d records, want %d", len(got), len(wantOrder))
	}
	for i, id := range wantOrder {
		if got[i].InstanceID != id {
			t.Fatalf("Assemble() did not preserve insertion order: got[%d].InstanceID = %q, want %q", i, got[i].InstanceID, id)
		}
	}
}

func TestAssemble_FailsLoudlyOnMissingProblemStatement(t *testing.T) {
	instances := []gatherer.Instance{
		{InstanceID: "o__r.abc.k__h", Repo: "r", Patch: "diff", FailToPass: []string{"t1"}, PassToPass: []string{"t2"}},
	}
	if _, err := Assemble(instances, nil, false); err == nil {
		t.Fatalf("expected error for instance missing a problem_statement")
	}
}

func TestAssemble_AllowsMissingProblemStatementUnderSkipMode(t *testing.T) {
	instances := []gatherer.Instance{
		{InstanceID: "o__r.abc.k__h", Repo: "r", Patch: "diff", FailToPass: []string{"t1"}, PassToPass: []string{"t2"}},
	}
	got, err := Assemble(instances, nil, true)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(got) != 1 || got[0].ProblemStatement != "" {
		t.Fatalf("Assemble() = %+v", got)
	}
}

func TestAssemble_RejectsEmptyPatch(t *testing.T) {
	instances := []gatherer.Instance{
		{InstanceID: "o__r.abc.k__h", Repo: "r", Patch: "", FailToPass: []string{"t1"}, PassToPass: []string{"t2"}},
	}
	if _, err := Assemble(instances, nil, true); err == nil {
		t.Fatalf("expected error for empty patch")
	}
}

func TestAssemble_RejectsEmptyFailToPass(t *testing.T) {
	instances := []gatherer.Instance{
		{InstanceID: "o__r.abc.k__h", Repo: "r", Patch: "diff", PassToPass: []string{"t2"}},
	}
	if _, err := Assemble(instances, nil, true); err == nil {
		t.Fatalf("expected error for empty FAIL_TO_PASS")
	}
}

func TestWriteDataset_PreservesGivenOrder(t *testing.T) {
	root := t.TempDir()
	records := []FinalInstance{
		{InstanceID: "b", Repo: "r"},
		{InstanceID: "a", Repo: "r"},
	}
	path, err := WriteDataset(root, "r", records)
	if err != nil {
		t.Fatalf("WriteDataset: %v", err)
	}
	if filepath.Base(path) != "r_final.json" {
		t.Fatalf("WriteDataset path = %q", path)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var got []FinalInstance
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(got) != 2 || got[0].InstanceID != "b" || got[1].InstanceID != "a" {
		t.Fatalf("WriteDataset() did not preserve record order, got %+v", got)
	}
}

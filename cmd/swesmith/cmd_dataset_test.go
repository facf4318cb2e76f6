package main

import (
	"testing"

	"swesmith/internal/issuegen"
)

func TestReadIssueRecords_RoundTrips(t *testing.T) {
	root := t.TempDir()
	want := []issuegen.Record{{InstanceID: "o__r.abc.k__h", ProblemStatement: "it's broken"}}
	if _, err := issuegen.WriteRecords(root, "r", "static", want); err != nil {
		t.Fatalf("WriteRecords: %v", err)
	}

	got, err := readIssueRecords(root, "r", "static")
	if err != nil {
		t.Fatalf("readIssueRecords: %v", err)
	}
	if len(got) != 1 || got[0].InstanceID != want[0].InstanceID || got[0].ProblemStatement != want[0].ProblemStatement {
		t.Fatalf("readIssueRecords = %+v, want %+v", got, want)
	}
}

func TestReadIssueRecords_MissingSkipModeReturnsEmpty(t *testing.T) {
	root := t.TempDir()
	got, err := readIssueRecords(root, "r", string(issuegen.ModeSkip))
	if err != nil {
		t.Fatalf("readIssueRecords with issue-mode=skip should tolerate a missing file: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no records, got %v", got)
	}
}

func TestReadIssueRecords_MissingNonSkipModeErrors(t *testing.T) {
	root := t.TempDir()
	if _, err := readIssueRecords(root, "r", "static"); err == nil {
		t.Error("expected an error reading a missing issue_gen file outside issue-mode=skip")
	}
}

package mangle

import (
	"context"
	"sort"
	"testing"
)

func TestClassifier_SpecTable(t *testing.T) {
	gold := map[string]Outcome{
		"test_pass_pass":    OutcomePass,
		"test_pass_fail":    OutcomePass,
		"test_pass_missing": OutcomePass,
		"test_fail_pass":    OutcomeFail,
		"test_missing_pass": OutcomeMissing,
	}
	candidate := map[string]Outcome{
		"test_pass_pass":    OutcomePass,
		"test_pass_fail":    OutcomeFail,
		"test_fail_pass":    OutcomePass,
		"test_missing_pass": OutcomePass,
	}

	c := NewClassifier()
	f2p, p2p, err := c.Classify(context.Background(), gold, candidate)
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}

	sort.Strings(f2p)
	sort.Strings(p2p)

	if len(f2p) != 1 || f2p[0] != "test_pass_fail" {
		t.Fatalf("expected FAIL_TO_PASS=[test_pass_fail], got %v", f2p)
	}
	if len(p2p) != 1 || p2p[0] != "test_pass_pass" {
		t.Fatalf("expected PASS_TO_PASS=[test_pass_pass], got %v", p2p)
	}
}

func TestClassifier_ErrorCountsAsFailToPass(t *testing.T) {
	gold := map[string]Outcome{"t": OutcomePass}
	candidate := map[string]Outcome{"t": OutcomeError}

	c := NewClassifier()
	f2p, p2p, err := c.Classify(context.Background(), gold, candidate)
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if len(f2p) != 1 || f2p[0] != "t" {
		t.Fatalf("expected FAIL_TO_PASS=[t], got %v", f2p)
	}
	if len(p2p) != 0 {
		t.Fatalf("expected no PASS_TO_PASS, got %v", p2p)
	}
}

func TestClassifier_EmptyInputsProduceNoClasses(t *testing.T) {
	c := NewClassifier()
	f2p, p2p, err := c.Classify(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if len(f2p) != 0 || len(p2p) != 0 {
		t.Fatalf("expected empty classes, got f2p=%v p2p=%v", f2p, p2p)
	}
}

package profile

import (
	"testing"

	"swesmith/internal/mangle"
)

func TestParseLog_Pytest(t *testing.T) {
	p := &Profile{LogParser: LogParserPytest}
	log := "tests/test_add.py::test_adds PASSED\n" +
		"tests/test_add.py::test_subtracts FAILED\n" +
		"FAILED tests/test_add.py::test_other\n"
	out, err := p.ParseLog(log)
	if err != nil {
		t.Fatalf("ParseLog() error = %v", err)
	}
	if out["tests/test_add.py::test_adds"] != mangle.OutcomePass {
		t.Fatalf("expected test_adds = pass, got %v", out["tests/test_add.py::test_adds"])
	}
	if out["tests/test_add.py::test_subtracts"] != mangle.OutcomeFail {
		t.Fatalf("expected test_subtracts = fail, got %v", out["tests/test_add.py::test_subtracts"])
	}
	if out["tests/test_add.py::test_other"] != mangle.OutcomeFail {
		t.Fatalf("expected test_other = fail, got %v", out["tests/test_add.py::test_other"])
	}
}

func TestParseLog_Jest(t *testing.T) {
	p := &Profile{LogParser: LogParserJest}
	log := "  ✓ add adds (2 ms)\n  ✗ add subtracts\n  ○ add skipped\n"
	out, err := p.ParseLog(log)
	if err != nil {
		t.Fatalf("ParseLog() error = %v", err)
	}
	if out["add adds"] != mangle.OutcomePass {
		t.Fatalf("expected 'add adds' = pass, got %v", out["add adds"])
	}
	if out["add subtracts"] != mangle.OutcomeFail {
		t.Fatalf("expected 'add subtracts' = fail, got %v", out["add subtracts"])
	}
	if out["add skipped"] != mangle.OutcomeSkip {
		t.Fatalf("expected 'add skipped' = skip, got %v", out["add skipped"])
	}
}

func TestParseLog_GoTest(t *testing.T) {
	p := &Profile{LogParser: LogParserGoTest}
	log := "=== RUN   TestAdd\n--- PASS: TestAdd (0.00s)\n--- FAIL: TestSubtract (0.00s)\n"
	out, err := p.ParseLog(log)
	if err != nil {
		t.Fatalf("ParseLog() error = %v", err)
	}
	if out["TestAdd"] != mangle.OutcomePass {
		t.Fatalf("expected TestAdd = pass, got %v", out["TestAdd"])
	}
	if out["TestSubtract"] != mangle.OutcomeFail {
		t.Fatalf("expected TestSubtract = fail, got %v", out["TestSubtract"])
	}
}

func TestParseLog_Cargo(t *testing.T) {
	p := &Profile{LogParser: LogParserCargo}
	log := "test tests::add_works ... ok\ntest tests::sub_works ... FAILED\n"
	out, err := p.ParseLog(log)
	if err != nil {
		t.Fatalf("ParseLog() error = %v", err)
	}
	if out["tests::add_works"] != mangle.OutcomePass {
		t.Fatalf("expected tests::add_works = pass, got %v", out["tests::add_works"])
	}
	if out["tests::sub_works"] != mangle.OutcomeFail {
		t.Fatalf("expected tests::sub_works = fail, got %v", out["tests::sub_works"])
	}
}

func TestParseLog_UnknownKindErrors(t *testing.T) {
	p := &Profile{Owner: "o", Repo: "r", LogParser: LogParserKind("bogus")}
	if _, err := p.ParseLog("anything"); err == nil {
		t.Fatalf("expected error for unknown log parser kind")
	}
}

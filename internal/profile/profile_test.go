package profile

import "testing"

func TestValidate_RequiresIdentityFields(t *testing.T) {
	p := &Profile{Repo: "r", Commit: "c", Language: LanguageGo, TestCmd: "go test ./..."}
	if err := p.Validate(); err == nil {
		t.Fatalf("expected error for missing owner")
	}
}

func TestValidate_RejectsUnknownLanguage(t *testing.T) {
	p := &Profile{Owner: "o", Repo: "r", Commit: "c", Language: "cobol", TestCmd: "run"}
	if err := p.Validate(); err == nil {
		t.Fatalf("expected error for unsupported language")
	}
}

func TestValidate_RequiresTestCmd(t *testing.T) {
	p := &Profile{Owner: "o", Repo: "r", Commit: "c", Language: LanguageGo}
	if err := p.Validate(); err == nil {
		t.Fatalf("expected error for missing test_cmd")
	}
}

func TestValidate_AcceptsWellFormedProfile(t *testing.T) {
	p := &Profile{Owner: "o", Repo: "r", Commit: "c", Language: LanguagePython, TestCmd: "pytest"}
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestSourceGlobs_FallsBackToLanguageDefault(t *testing.T) {
	p := &Profile{Language: LanguageGo}
	globs := p.SourceGlobs()
	if len(globs) != 1 || globs[0] != "**/*.go" {
		t.Fatalf("SourceGlobs() = %v, want default Go globs", globs)
	}
}

func TestSourceGlobs_HonorsExplicitOverride(t *testing.T) {
	p := &Profile{Language: LanguageGo, SourceGlobPatterns: []string{"cmd/**/*.go"}}
	globs := p.SourceGlobs()
	if len(globs) != 1 || globs[0] != "cmd/**/*.go" {
		t.Fatalf("SourceGlobs() = %v, want override", globs)
	}
}

func TestIsFlaky(t *testing.T) {
	p := &Profile{FlakyTests: []string{"test_timing_sensitive"}}
	if !p.IsFlaky("test_timing_sensitive") {
		t.Fatalf("expected test_timing_sensitive to be flaky")
	}
	if p.IsFlaky("test_stable") {
		t.Fatalf("expected test_stable to not be flaky")
	}
}

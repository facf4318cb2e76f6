// Package profile implements the Repo Profile Registry: the per-repository
// descriptor that every other pipeline stage consults for container recipe,
// effective test invocation, log parsing, language selection, and
// deterministic image/mirror naming.
package profile

import "fmt"

// Language is the source language tag used to select a LanguageAdapter and a
// log parser.
type Language string

const (
	LanguageGo         Language = "go"
	LanguagePython     Language = "python"
	LanguageJavaScript Language = "javascript"
	LanguageTypeScript Language = "typescript"
	LanguageRust       Language = "rust"
)

// LogParserKind selects which test-log parser Profile.ParseLog delegates to.
type LogParserKind string

const (
	LogParserPytest LogParserKind = "pytest"
	LogParserJest   LogParserKind = "jest"
	LogParserGoTest LogParserKind = "go_test"
	LogParserCargo  LogParserKind = "cargo_test"
)

// Profile is the immutable descriptor identified by (Owner, Repo, Commit).
// Two Profiles agreeing on that triple must agree on every other field; the
// Registry enforces this at load time.
type Profile struct {
	Owner  string `yaml:"owner"`
	Repo   string `yaml:"repo"`
	Commit string `yaml:"commit"`

	Language  Language      `yaml:"language"`
	LogParser LogParserKind `yaml:"log_parser"`

	// RecipeText is the literal container build recipe (e.g. a Dockerfile
	// body). It participates in the image-build cache digest.
	RecipeText string `yaml:"recipe"`

	// TestCmd is the raw, possibly chained, test invocation as the
	// upstream repo declares it (e.g. in package.json or tox.ini).
	TestCmd string `yaml:"test_cmd"`

	// StripPredicates names command segments that must be dropped from a
	// chained TestCmd before it is run. Matched against each `&&`-joined
	// segment as a substring. Defaults are applied by DefaultStripPredicates
	// when empty.
	StripPredicates []string `yaml:"strip_predicates"`

	SourceGlobPatterns  []string `yaml:"source_globs"`
	ExcludeGlobPatterns []string `yaml:"exclude_globs"`

	MaxContainerMemoryMB int `yaml:"max_container_memory_mb"`
	PerTestTimeoutSec    int `yaml:"per_test_timeout_sec"`

	// FlakyTests lists tests the idempotence invariant (spec §8, item 4)
	// exempts from the "same image+patch yields the same classification"
	// requirement.
	FlakyTests []string `yaml:"flaky_tests"`
}

// Validate checks the structural invariants the Registry requires before a
// Profile is accepted: all three identity fields set, a known language, and
// a non-empty test command.
func (p *Profile) Validate() error {
	if p.Owner == "" || p.Repo == "" || p.Commit == "" {
		return fmt.Errorf("profile: owner, repo, and commit are all required")
	}
	switch p.Language {
	case LanguageGo, LanguagePython, LanguageJavaScript, LanguageTypeScript, LanguageRust:
	default:
		return fmt.Errorf("profile %s/%s: unsupported language %q", p.Owner, p.Repo, p.Language)
	}
	if p.TestCmd == "" {
		return fmt.Errorf("profile %s/%s: test_cmd is required", p.Owner, p.Repo)
	}
	return nil
}

// ContainerRecipe returns the build recipe text this Profile's image is
// built from.
func (p *Profile) ContainerRecipe() string {
	return p.RecipeText
}

// SourceGlobs returns the glob patterns identifying source files to walk.
func (p *Profile) SourceGlobs() []string {
	if len(p.SourceGlobPatterns) == 0 {
		return defaultSourceGlobs[p.Language]
	}
	return p.SourceGlobPatterns
}

// ExcludeGlobs returns the glob patterns identifying build artifacts and
// other paths the adapter must not walk.
func (p *Profile) ExcludeGlobs() []string {
	if len(p.ExcludeGlobPatterns) == 0 {
		return defaultExcludeGlobs
	}
	return p.ExcludeGlobPatterns
}

// IsFlaky reports whether test is exempted from the idempotence invariant.
func (p *Profile) IsFlaky(test string) bool {
	for _, t := range p.FlakyTests {
		if t == test {
			return true
		}
	}
	return false
}

var defaultSourceGlobs = map[Language][]string{
	LanguageGo:         {"**/*.go"},
	LanguagePython:     {"**/*.py"},
	LanguageJavaScript: {"**/*.js", "**/*.jsx"},
	LanguageTypeScript: {"**/*.ts", "**/*.tsx"},
	LanguageRust:       {"**/*.rs"},
}

var defaultExcludeGlobs = []string{
	"**/vendor/**",
	"**/node_modules/**",
	"**/.git/**",
	"**/dist/**",
	"**/build/**",
	"**/*_test.go",
	"**/*.min.js",
}

package profile

import "strings"

// DefaultStripPredicates names the non-test command segments the Registry
// strips from a chained test command when a Profile doesn't override them.
// Upstream repos frequently bundle lint/type-check/doc steps into the same
// CI target that runs tests; left in place these would poison the
// test-differential signal with failures unrelated to the candidate patch.
var DefaultStripPredicates = []string{
	"tsc",
	"dtslint",
	"prettier",
	"eslint",
	"mypy",
	"flake8",
	"pylint",
	"black --check",
	"golangci-lint",
	"go vet",
}

// EffectiveTestCmd strips non-test segments from a shell `&&`-chained
// TestCmd, matching each segment against StripPredicates (or
// DefaultStripPredicates when the Profile declares none) as a substring.
// Segment order is preserved; an empty result after stripping falls back to
// the original, unstripped command, since a profile whose entire declared
// command matches a strip predicate is almost certainly misconfigured and
// silently running nothing would be worse than running the chained command.
func (p *Profile) EffectiveTestCmd() string {
	predicates := p.StripPredicates
	if len(predicates) == 0 {
		predicates = DefaultStripPredicates
	}

	segments := strings.Split(p.TestCmd, "&&")
	kept := make([]string, 0, len(segments))
	for _, seg := range segments {
		trimmed := strings.TrimSpace(seg)
		if trimmed == "" {
			continue
		}
		if matchesAny(trimmed, predicates) {
			continue
		}
		kept = append(kept, trimmed)
	}

	if len(kept) == 0 {
		return strings.TrimSpace(p.TestCmd)
	}
	return strings.Join(kept, " && ")
}

func matchesAny(segment string, predicates []string) bool {
	for _, pred := range predicates {
		if strings.Contains(segment, pred) {
			return true
		}
	}
	return false
}

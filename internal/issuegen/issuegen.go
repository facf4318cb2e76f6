// Package issuegen implements the Issue Generator (C8): produces a
// natural-language problem statement for a gathered instance in one of five
// modes, and writes it under the canonical logs/issue_gen/ location. The
// five modes are a small strategy dispatch: llm calls internal/llm,
// static/tests/pr are pure templates, skip is a no-op — grounded on the teacher's internal/tools dual-dialect dispatch
// style (one function per named strategy, selected by a string tag) rather
// than an interface-per-mode, since none of the five modes carries any
// state beyond its inputs.
package issuegen

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"swesmith/internal/errs"
	"swesmith/internal/llm"
	"swesmith/internal/logging"
)

// Mode selects which strategy produces the problem statement.
type Mode string

const (
	ModeLLM    Mode = "llm"
	ModeStatic Mode = "static"
	ModeTests  Mode = "tests"
	ModePR     Mode = "pr"
	ModeSkip   Mode = "skip"
)

// Target is the subset of a gathered instance the Issue Generator needs:
// decoupled from internal/gatherer.Instance so this package depends only on
// plain data, not on the stage ahead of it in the pipeline.
type Target struct {
	InstanceID string
	Diff       string
	FailToPass []string
}

// Record is one row written to the canonical issue_gen JSON file, per spec
// §4.8's "fields {instance_id, problem_statement}".
type Record struct {
	InstanceID       string `json:"instance_id"`
	ProblemStatement string `json:"problem_statement"`
}

// Generator dispatches to one of the five modes.
type Generator struct {
	client *llm.Client
}

// NewGenerator returns a Generator. client may be nil if only
// static/tests/skip modes will be used.
func NewGenerator(client *llm.Client) *Generator {
	return &Generator{client: client}
}

const llmPromptTemplate = `You are writing a bug report for a software repository, as a user who has hit the bug would write it.

A change was made that causes the following tests to newly fail:
%s

Write a realistic issue description of the symptom a user or developer would observe. Do not mention test names, do not describe the code change, and do not reveal the fix. Describe only the observable broken behavior. Return only the issue text, no preamble.`

// Generate produces a problem statement for target in the given mode.
// testSources maps a failing test's name to its source text, used by
// ModeTests. prBody is the original PR description text ModePR mirrors,
// supplied by the caller (fetching it from GitHub is outside this
// package's scope, per the spec's "hosted LLM endpoint"/external-API
// boundary). ModeSkip returns ("", nil): a record with an empty
// problem_statement, left for --issue-mode=skip to accept downstream.
func (g *Generator) Generate(ctx context.Context, mode Mode, target Target, testSources map[string]string, prBody string) (string, error) {
	switch mode {
	case ModeLLM:
		return g.generateLLM(ctx, target)
	case ModeStatic:
		return staticTemplate(target), nil
	case ModeTests:
		return testsTemplate(target, testSources), nil
	case ModePR:
		return prTemplate(prBody), nil
	case ModeSkip:
		return "", nil
	default:
		return "", fmt.Errorf("issuegen: unknown mode %q", mode)
	}
}

func (g *Generator) generateLLM(ctx context.Context, target Target) (string, error) {
	if g.client == nil {
		return "", errs.New(errs.KindConfig, "issuegen.generateLLM", fmt.Errorf("mode %q requires an LLM client", ModeLLM))
	}
	prompt := fmt.Sprintf(llmPromptTemplate, strings.Join(target.FailToPass, "\n"))
	text, err := g.client.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// staticTemplate builds a diff-derived issue without quoting the diff
// itself (spec's "does not reveal the fix" still applies in spirit): it
// names the touched files, not the change.
func staticTemplate(target Target) string {
	files := touchedFiles(target.Diff)
	sort.Strings(files)
	var b strings.Builder
	if len(files) == 1 {
		fmt.Fprintf(&b, "Something looks broken in %s. ", files[0])
	} else if len(files) > 1 {
		fmt.Fprintf(&b, "Something looks broken, touching %s. ", strings.Join(files, ", "))
	} else {
		b.WriteString("Something looks broken in this repository. ")
	}
	b.WriteString("A recent change appears to have introduced a regression; the following previously-passing behavior no longer works as expected.")
	return b.String()
}

// testsTemplate derives an issue from the failing tests' own source text,
// describing the expectation they encode without naming them directly.
func testsTemplate(target Target, testSources map[string]string) string {
	var b strings.Builder
	b.WriteString("The following behavior, previously covered by this project's test suite, is no longer working correctly:\n\n")
	names := make([]string, 0, len(target.FailToPass))
	for _, t := range target.FailToPass {
		names = append(names, t)
	}
	sort.Strings(names)
	for _, name := range names {
		src, ok := testSources[name]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "- Expected behavior implied by a test exercising this path:\n%s\n\n", summarizeTestSource(src))
	}
	return strings.TrimSpace(b.String())
}

// touchedFiles extracts the "+++ b/<path>" target paths from a unified
// diff (the format internal/diff.FileDiff.Unified produces), without
// parsing hunk bodies.
func touchedFiles(diffText string) []string {
	var files []string
	for _, line := range strings.Split(diffText, "\n") {
		if path, ok := strings.CutPrefix(line, "+++ b/"); ok {
			files = append(files, strings.TrimSpace(path))
		}
	}
	return files
}

// summarizeTestSource trims a test's source down to a short excerpt: full
// source would effectively hand over the assertions (and thus the fix).
func summarizeTestSource(src string) string {
	lines := strings.Split(strings.TrimSpace(src), "\n")
	const maxLines = 5
	if len(lines) > maxLines {
		lines = lines[:maxLines]
	}
	return strings.Join(lines, "\n")
}

// prTemplate mirrors an originating PR's description text verbatim, since
// that text is itself a human-authored issue-like narrative.
func prTemplate(prBody string) string {
	trimmed := strings.TrimSpace(prBody)
	if trimmed == "" {
		return "A regression was introduced; no originating PR description was available to mirror."
	}
	return trimmed
}

// CanonicalPath returns "logs/issue_gen/<repo>__<exp>_n1.json" under root,
// per spec §4.8.
func CanonicalPath(root, repo, exp string) string {
	return filepath.Join(root, fmt.Sprintf("%s__%s_n1.json", repo, exp))
}

// WriteRecords writes records to the canonical path for (repo, exp) under
// root, creating directories as needed.
func WriteRecords(root, repo, exp string, records []Record) (string, error) {
	path := CanonicalPath(root, repo, exp)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", errs.New(errs.KindHarnessCrash, "issuegen.WriteRecords", err)
	}
	b, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", errs.New(errs.KindHarnessCrash, "issuegen.WriteRecords", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", errs.New(errs.KindHarnessCrash, "issuegen.WriteRecords", err)
	}
	return path, nil
}

// RehomeIfLegacy moves a file a mode wrote to a non-canonical location
// (writtenPath) onto the canonical path for (repo, exp) under root, per
// spec §4.8's "Path normalization: if a mode writes to a legacy location it
// must be rehomed to the canonical one." A no-op if writtenPath is already
// canonical.
func RehomeIfLegacy(root, repo, exp, writtenPath string) (string, error) {
	canonical := CanonicalPath(root, repo, exp)
	if writtenPath == canonical {
		return canonical, nil
	}
	data, err := os.ReadFile(writtenPath)
	if err != nil {
		return "", errs.New(errs.KindHarnessCrash, "issuegen.RehomeIfLegacy", err)
	}
	if err := os.MkdirAll(filepath.Dir(canonical), 0o755); err != nil {
		return "", errs.New(errs.KindHarnessCrash, "issuegen.RehomeIfLegacy", err)
	}
	if err := os.WriteFile(canonical, data, 0o644); err != nil {
		return "", errs.New(errs.KindHarnessCrash, "issuegen.RehomeIfLegacy", err)
	}
	if err := os.Remove(writtenPath); err != nil {
		return "", errs.New(errs.KindHarnessCrash, "issuegen.RehomeIfLegacy", err)
	}
	logging.Get(logging.CategoryIssuegen).Info("rehomed legacy issue_gen output %s -> %s", writtenPath, canonical)
	return canonical, nil
}

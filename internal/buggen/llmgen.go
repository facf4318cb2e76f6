package buggen

import (
	"context"
	"fmt"
	"strings"

	"swesmith/internal/adapter"
	"swesmith/internal/llm"
	"swesmith/internal/logging"
)

// LMGenerator produces candidate patches via a chat-completion model, per
// spec §4.4.2 (LM-Modify) and §4.4.3 (LM-Rewrite).
type LMGenerator struct {
	client *llm.Client
}

// NewLMGenerator returns an LMGenerator backed by client.
func NewLMGenerator(client *llm.Client) *LMGenerator {
	return &LMGenerator{client: client}
}

const modifyPromptTemplate = `You are modifying a single %s named %q to introduce a subtle bug.
Keep its signature, declared types, and imports exactly the same. Return
only the replacement source for this %s, nothing else.

%s`

const rewritePromptTemplate = `Reimplement the following %s named %q from scratch, preserving its
signature, declared types, and imports exactly. Introduce a subtle bug in
the new implementation. Return only the replacement source for this %s,
nothing else.

%s`

// GenerateModify implements spec §4.4.2: send (entity source, task
// prompt), splice the returned body back in, diff, and reject anything
// that changes the signature (first non-blank line) or differs only in
// whitespace. The returned body is not parsed, so a body with a syntax
// error is not rejected here.
func (g *LMGenerator) GenerateModify(ctx context.Context, fileSource string, e adapter.Entity) (*Candidate, error) {
	prompt := fmt.Sprintf(modifyPromptTemplate, e.Kind, e.Name, e.Kind, e.SrcCode)
	return g.generate(ctx, KindLMModify, fileSource, e, prompt)
}

// GenerateRewrite implements spec §4.4.3.
func (g *LMGenerator) GenerateRewrite(ctx context.Context, fileSource string, e adapter.Entity) (*Candidate, error) {
	prompt := fmt.Sprintf(rewritePromptTemplate, e.Kind, e.Name, e.Kind, e.SrcCode)
	return g.generate(ctx, KindLMRewrite, fileSource, e, prompt)
}

func (g *LMGenerator) generate(ctx context.Context, kind Kind, fileSource string, e adapter.Entity, prompt string) (*Candidate, error) {
	body, err := g.client.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}
	body = stripCodeFence(strings.TrimRight(body, "\n"))

	if signatureChanged(e.SrcCode, body) {
		logging.Get(logging.CategoryBuggen).Warn("rejecting %s candidate for %s: signature changed", kind, e.Name)
		return nil, nil
	}
	if whitespaceOnlyDiff(e.SrcCode, body) {
		logging.Get(logging.CategoryBuggen).Warn("rejecting %s candidate for %s: whitespace-only change", kind, e.Name)
		return nil, nil
	}

	cand, ok := newCandidate(kind, e, fileSource, body)
	if !ok {
		return nil, nil
	}
	return &cand, nil
}

// signatureChanged compares each source's first non-blank line — the
// function/method/class header — as a cheap proxy for "signature, its
// declared types, its import set" per spec §4.4.2's post-condition.
func signatureChanged(original, modified string) bool {
	return firstLine(original) != firstLine(modified)
}

func firstLine(src string) string {
	for _, line := range strings.Split(src, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func whitespaceOnlyDiff(a, b string) bool {
	return collapseWhitespace(a) == collapseWhitespace(b)
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	lines := strings.Split(s, "\n")
	if len(lines) < 2 {
		return s
	}
	lines = lines[1:]
	if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}

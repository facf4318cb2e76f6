package progress

import "testing"

func TestNewBar_ReturnsNilForZeroTotal(t *testing.T) {
	if b := NewBar("r", 0); b != nil {
		t.Error("expected NewBar to return nil for a zero total regardless of terminal detection")
	}
}

func TestBar_NilReceiverMethodsAreNoops(t *testing.T) {
	var b *Bar
	b.Start()
	b.Advance(1)
	b.Stop()
}

func TestRenderMarkdown_NonTerminalReturnsRawText(t *testing.T) {
	// go test's stdout is never a terminal, so this exercises the
	// fallback path deterministically without mocking term.IsTerminal.
	const md = "**hello**"
	if got := RenderMarkdown(md); got != md {
		t.Errorf("RenderMarkdown(%q) = %q, want the raw string unchanged under a non-terminal stdout", md, got)
	}
}

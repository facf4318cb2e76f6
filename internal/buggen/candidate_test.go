package buggen

import (
	"strings"
	"testing"

	"swesmith/internal/adapter"
)

func TestNewCandidate_ProducesStableHashAndFilename(t *testing.T) {
	fileSource := "package p\n\nfunc add(a, b int) int {\n\treturn a + b\n}\n"
	entitySrc := "func add(a, b int) int {\n\treturn a + b\n}"
	lo := strings.Index(fileSource, entitySrc)
	hi := lo + len(entitySrc)
	e := adapter.Entity{File: "p.go", Lo: lo, Hi: hi, Kind: adapter.KindFunction, Name: "add", SrcCode: entitySrc}

	mutated := "func add(a, b int) int {\n\treturn a - b\n}"
	cand, ok := newCandidate(ProceduralKind(VariantInvertBoundary), e, fileSource, mutated)
	if !ok {
		t.Fatalf("expected a candidate to be produced")
	}
	if cand.Hash == "" {
		t.Fatalf("expected a non-empty hash")
	}
	if cand.DiffFilename() != "bug__procedural:invert_boundary__"+cand.Hash+".diff" {
		t.Fatalf("DiffFilename() = %q", cand.DiffFilename())
	}
	if !strings.Contains(cand.DiffText, "-\treturn a + b") || !strings.Contains(cand.DiffText, "+\treturn a - b") {
		t.Fatalf("DiffText missing expected hunk lines: %q", cand.DiffText)
	}

	cand2, ok := newCandidate(ProceduralKind(VariantInvertBoundary), e, fileSource, mutated)
	if !ok || cand2.Hash != cand.Hash {
		t.Fatalf("expected identical rewrite to produce the same hash")
	}
}

func TestNewCandidate_ByteIdenticalSpliceRejected(t *testing.T) {
	fileSource := "func f() {\n\treturn\n}\n"
	e := adapter.Entity{File: "p.go", Lo: 0, Hi: len("func f() {\n\treturn\n}"), SrcCode: "func f() {\n\treturn\n}"}
	if _, ok := newCandidate(Kind("procedural:noop"), e, fileSource, e.SrcCode); ok {
		t.Fatalf("expected byte-identical splice to be rejected")
	}
}

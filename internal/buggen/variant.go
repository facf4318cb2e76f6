package buggen

import (
	"regexp"
	"strconv"
	"strings"
)

// Variant names one procedural rewrite family per spec §4.4.1.
type Variant string

const (
	VariantRemoveConditional Variant = "remove_conditional"
	VariantInvertBoundary    Variant = "invert_boundary"
	VariantSwapSiblings      Variant = "swap_sibling_statements"
	VariantDropReturn        Variant = "drop_return_value"
	VariantOffByOne          Variant = "off_by_one_loop_bound"
	VariantNegateBoolean     Variant = "negate_boolean_test"
	VariantShuffleBranches   Variant = "shuffle_control_flow_branches"
)

// AllVariants lists every procedural variant in a stable order, so a run
// with max_bugs < len(AllVariants)*len(entities) produces deterministic
// output across repeated invocations.
var AllVariants = []Variant{
	VariantRemoveConditional,
	VariantInvertBoundary,
	VariantSwapSiblings,
	VariantDropReturn,
	VariantOffByOne,
	VariantNegateBoolean,
	VariantShuffleBranches,
}

// rewrite applies variant to src (an entity's span text) and reports
// whether the applicability predicate held. A false ok means the variant
// found nothing to mutate in src; the generator then emits nothing for
// this (entity, variant) pair, per spec §4.4.1.
func rewrite(variant Variant, src string) (mutated string, ok bool) {
	switch variant {
	case VariantRemoveConditional:
		return removeConditional(src)
	case VariantInvertBoundary:
		return invertBoundary(src)
	case VariantSwapSiblings:
		return swapSiblingStatements(src)
	case VariantDropReturn:
		return dropReturnValue(src)
	case VariantOffByOne:
		return offByOneLoopBound(src)
	case VariantNegateBoolean:
		return negateBooleanTest(src)
	case VariantShuffleBranches:
		return shuffleBranches(src)
	default:
		return "", false
	}
}

var ifHeaderRe = regexp.MustCompile(`\bif\b[^{]*\{`)

// findBlock returns the span of the brace-delimited block that opens at
// the first "{" at or after from, matched against its closing "}" by
// brace-depth counting.
func findBlock(src string, from int) (openBrace, closeBrace int, ok bool) {
	openBrace = strings.IndexByte(src[from:], '{')
	if openBrace < 0 {
		return 0, 0, false
	}
	openBrace += from
	depth := 0
	for i := openBrace; i < len(src); i++ {
		switch src[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return openBrace, i, true
			}
		}
	}
	return 0, 0, false
}

// removeConditional deletes the first if-block (header and body) it finds.
func removeConditional(src string) (string, bool) {
	loc := ifHeaderRe.FindStringIndex(src)
	if loc == nil {
		return "", false
	}
	open, close, ok := findBlock(src, loc[0])
	if !ok {
		return "", false
	}
	return src[:loc[0]] + src[close+1:], true
}

type boundaryOp struct{ from, to string }

var boundaryOps = []boundaryOp{
	{"<=", "<"}, {">=", ">"}, {"==", "!="}, {"!=", "=="}, {"<", "<="}, {">", ">="},
}

// invertBoundary flips one comparison operator: the first occurrence of the
// first entry of boundaryOps present in src. Two-character operators are
// tried before "<" and ">", so the flipped one is not always the leftmost.
func invertBoundary(src string) (string, bool) {
	for _, op := range boundaryOps {
		if idx := strings.Index(src, op.from); idx >= 0 {
			return src[:idx] + op.to + src[idx+len(op.from):], true
		}
	}
	return "", false
}

// swapSiblingStatements swaps the first two non-blank, non-brace-only
// lines it finds in src, treated as a naive line-level statement list.
func swapSiblingStatements(src string) (string, bool) {
	lines := strings.Split(src, "\n")
	var idxs []int
	for i, l := range lines {
		trimmed := strings.TrimSpace(l)
		if trimmed == "" || trimmed == "}" || strings.HasSuffix(trimmed, "{") {
			continue
		}
		idxs = append(idxs, i)
		if len(idxs) == 2 {
			break
		}
	}
	if len(idxs) < 2 {
		return "", false
	}
	lines[idxs[0]], lines[idxs[1]] = lines[idxs[1]], lines[idxs[0]]
	return strings.Join(lines, "\n"), true
}

var returnValueRe = regexp.MustCompile(`\breturn\s+[^;\n]+`)

// dropReturnValue removes the expression from the first "return <expr>"
// it finds, leaving a bare return.
func dropReturnValue(src string) (string, bool) {
	loc := returnValueRe.FindStringIndex(src)
	if loc == nil {
		return "", false
	}
	return src[:loc[0]] + "return" + src[loc[1]:], true
}

var loopBoundRe = regexp.MustCompile(`\bfor\b[^{]*?[<>]=?\s*(\d+)`)

// offByOneLoopBound decrements the first numeric loop bound literal it
// finds within a for-loop header.
func offByOneLoopBound(src string) (string, bool) {
	loc := loopBoundRe.FindStringSubmatchIndex(src)
	if loc == nil {
		return "", false
	}
	numStart, numEnd := loc[2], loc[3]
	n, err := strconv.Atoi(src[numStart:numEnd])
	if err != nil {
		return "", false
	}
	return src[:numStart] + strconv.Itoa(n-1) + src[numEnd:], true
}

// negateBooleanTest wraps the first if-condition in a logical negation.
func negateBooleanTest(src string) (string, bool) {
	loc := ifHeaderRe.FindStringIndex(src)
	if loc == nil {
		return "", false
	}
	header := src[loc[0] : loc[1]-1] // drop trailing "{"
	condStart := strings.Index(header, "if") + len("if")
	cond := strings.TrimSpace(header[condStart:])
	if cond == "" {
		return "", false
	}
	negated := "if !(" + cond + ") {"
	return src[:loc[0]] + negated + src[loc[1]:], true
}

// shuffleBranches swaps an if-block's body with its else-block's body.
func shuffleBranches(src string) (string, bool) {
	loc := ifHeaderRe.FindStringIndex(src)
	if loc == nil {
		return "", false
	}
	thenOpen, thenClose, ok := findBlock(src, loc[0])
	if !ok {
		return "", false
	}
	rest := src[thenClose+1:]
	elseIdx := strings.Index(rest, "else")
	if elseIdx < 0 || strings.TrimSpace(rest[:elseIdx]) != "" {
		return "", false
	}
	elseOpenRel, elseCloseRel, ok := findBlock(rest, elseIdx)
	if !ok {
		return "", false
	}
	elseOpen := thenClose + 1 + elseOpenRel
	elseClose := thenClose + 1 + elseCloseRel

	thenBody := src[thenOpen : thenClose+1]
	elseBody := src[elseOpen : elseClose+1]

	var b strings.Builder
	b.WriteString(src[:thenOpen])
	b.WriteString(elseBody)
	b.WriteString(src[thenClose+1 : elseOpen])
	b.WriteString(thenBody)
	b.WriteString(src[elseClose+1:])
	return b.String(), true
}

// Package diff computes unified diffs between a clean and a candidate file
// using the sergi/go-diff library, and renders them as git-apply-compatible
// patch text for candidate patches and task-instance diffs.
package diff

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// LineType is the role a line plays within a hunk.
type LineType int

const (
	LineContext LineType = iota
	LineAdded
	LineRemoved
)

// Line is a single rendered line within a hunk.
type Line struct {
	LineNum int
	Content string
	Type    LineType
}

// Hunk is a contiguous run of changed lines plus their surrounding context.
type Hunk struct {
	OldStart int
	OldCount int
	NewStart int
	NewCount int
	Lines    []Line
}

// FileDiff is the set of hunks that turn OldPath's content into NewPath's.
type FileDiff struct {
	OldPath string
	NewPath string
	Hunks   []Hunk
	IsNew   bool
	IsDelete bool
}

// engine holds the diffmatchpatch configuration used to turn two strings
// into line-level hunks. A single package-level instance is enough: the
// pipeline never diffs concurrently at a volume that would need pooling.
type engine struct {
	dmp *diffmatchpatch.DiffMatchPatch
}

var defaultEngine = newEngine()

func newEngine() *engine {
	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0 // candidate files are small; prefer accuracy over a deadline
	return &engine{dmp: dmp}
}

// ComputeDiff diffs oldContent against newContent at line granularity and
// groups the result into hunks with 3 lines of context, the unified-diff
// default.
func ComputeDiff(oldPath, newPath, oldContent, newContent string) *FileDiff {
	fd := &FileDiff{OldPath: oldPath, NewPath: newPath}
	if oldContent == "" {
		fd.IsNew = true
	}
	if newContent == "" {
		fd.IsDelete = true
	}

	// Reduce to a single rune per line before diffing so the char-level LCS
	// in DiffMain can't split a change mid-line.
	a, b, lineArray := defaultEngine.dmp.DiffLinesToChars(oldContent, newContent)
	diffs := defaultEngine.dmp.DiffMain(a, b, false)
	diffs = defaultEngine.dmp.DiffCleanupSemantic(diffs)
	diffs = defaultEngine.dmp.DiffCharsToLines(diffs, lineArray)

	fd.Hunks = groupIntoHunks(diffsToOperations(diffs), 3)
	return fd
}

type operation struct {
	typ     LineType
	oldLine int
	newLine int
	content string
}

func diffsToOperations(diffs []diffmatchpatch.Diff) []operation {
	var operations []operation
	oldLine, newLine := 0, 0

	for _, d := range diffs {
		lines := strings.Split(d.Text, "\n")
		if len(lines) > 0 && lines[len(lines)-1] == "" {
			lines = lines[:len(lines)-1]
		}

		for _, line := range lines {
			switch d.Type {
			case diffmatchpatch.DiffEqual:
				operations = append(operations, operation{LineContext, oldLine, newLine, line})
				oldLine++
				newLine++
			case diffmatchpatch.DiffDelete:
				operations = append(operations, operation{LineRemoved, oldLine, -1, line})
				oldLine++
			case diffmatchpatch.DiffInsert:
				operations = append(operations, operation{LineAdded, -1, newLine, line})
				newLine++
			}
		}
	}
	return operations
}

func groupIntoHunks(ops []operation, contextLines int) []Hunk {
	if len(ops) == 0 {
		return nil
	}

	var hunks []Hunk
	var current *Hunk
	lastChangeIdx := -1

	for i, op := range ops {
		isChange := op.typ != LineContext

		if isChange && current == nil {
			current = &Hunk{}
			start := i - contextLines
			if start < 0 {
				start = 0
			}
			for j := start; j < i; j++ {
				if ops[j].typ == LineContext {
					current.Lines = append(current.Lines, Line{ops[j].oldLine + 1, ops[j].content, LineContext})
				}
			}
			current.OldStart = ops[start].oldLine + 1
			current.NewStart = ops[start].newLine + 1
			if ops[start].oldLine < 0 {
				current.OldStart = 0
			}
			if ops[start].newLine < 0 {
				current.NewStart = 0
			}
		}
		if isChange {
			lastChangeIdx = i
		}

		if current == nil {
			continue
		}

		lineNum := op.oldLine + 1
		if op.typ == LineAdded {
			lineNum = op.newLine + 1
		}
		current.Lines = append(current.Lines, Line{lineNum, op.content, op.typ})

		if op.typ == LineContext && i-lastChangeIdx > contextLines {
			trimTo := len(current.Lines) - (i - lastChangeIdx - contextLines)
			if trimTo > 0 && trimTo < len(current.Lines) {
				current.Lines = current.Lines[:trimTo]
			}
			computeHunkCounts(current)
			hunks = append(hunks, *current)
			current = nil
		}
	}

	if current != nil && len(current.Lines) > 0 {
		computeHunkCounts(current)
		hunks = append(hunks, *current)
	}
	return hunks
}

func computeHunkCounts(h *Hunk) {
	for _, line := range h.Lines {
		if line.Type == LineRemoved || line.Type == LineContext {
			h.OldCount++
		}
		if line.Type == LineAdded || line.Type == LineContext {
			h.NewCount++
		}
	}
}

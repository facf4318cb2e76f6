package diff

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Unified renders a FileDiff as a standard git-apply-compatible unified
// diff. An empty string is returned if the diff has no hunks (the two
// inputs were byte-identical).
func (fd *FileDiff) Unified() string {
	if len(fd.Hunks) == 0 {
		return ""
	}

	var b strings.Builder
	oldPath, newPath := fd.OldPath, fd.NewPath
	fmt.Fprintf(&b, "--- a/%s\n", oldPath)
	fmt.Fprintf(&b, "+++ b/%s\n", newPath)

	for _, hunk := range fd.Hunks {
		fmt.Fprintf(&b, "@@ -%d,%d +%d,%d @@\n", hunk.OldStart, hunk.OldCount, hunk.NewStart, hunk.NewCount)
		for _, line := range hunk.Lines {
			switch line.Type {
			case LineContext:
				fmt.Fprintf(&b, " %s\n", line.Content)
			case LineAdded:
				fmt.Fprintf(&b, "+%s\n", line.Content)
			case LineRemoved:
				fmt.Fprintf(&b, "-%s\n", line.Content)
			}
		}
	}
	return b.String()
}

// ComputeUnified diffs oldContent against newContent and renders it as a
// unified diff in one step. Returns "" if the contents are identical.
func ComputeUnified(path, oldContent, newContent string) string {
	fd := ComputeDiff(path, path, oldContent, newContent)
	return fd.Unified()
}

// ContentHash returns the short content-addressed hash used to name
// candidate patch files: bug__<kind>__<hash>.diff. It is stable across
// runs so identical diffs collapse onto the same artifact.
func ContentHash(diffBytes []byte) string {
	sum := sha256.Sum256(diffBytes)
	return hex.EncodeToString(sum[:])[:12]
}

// Package collector implements the Patch Collector (C5): walk a repo's
// bug_gen log tree and produce one stable, ordered manifest file listing
// every candidate patch produced by the Bug Generators.
package collector

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"swesmith/internal/buggen"
	"swesmith/internal/errs"
)

// ManifestEntry is one row of the collected manifest, per spec §4.5's
// "{instance_id_stub, patch, bug_kind, source_entity}".
type ManifestEntry struct {
	InstanceIDStub string `json:"instance_id_stub"`
	Patch          string `json:"patch"`
	BugKind        string `json:"bug_kind"`
	SourceEntity   string `json:"source_entity"`
}

// sanitizeKind replaces the ':' in "procedural:<variant>" with '_' so the
// stub is safe to use as a filename and git branch name component.
func sanitizeKind(kind buggen.Kind) string {
	return strings.ReplaceAll(string(kind), ":", "_")
}

// stubFor builds the instance_id_stub: the kind/hash identity of a
// candidate patch, decoupled from the (owner, repo, commit) context the
// Instance Gatherer later supplies when it mints the full instance_id
// (spec §4's "<owner>__<repo>.<commit_short>.<kind>__<hash>").
func stubFor(kind buggen.Kind, hash string) string {
	return fmt.Sprintf("%s__%s", sanitizeKind(kind), hash)
}

// Collect walks bugGenDir (expected to be logs/bug_gen/<repo>) for
// bug__<kind>__<hash>.diff / metadata__<kind>__<hash>.json pairs and
// returns them as a manifest ordered lexicographically by source file path,
// then by hash, then by instance_id_stub, per spec §4.5.
func Collect(bugGenDir string) ([]ManifestEntry, error) {
	var entries []ManifestEntry

	err := filepath.WalkDir(bugGenDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasPrefix(d.Name(), "bug__") || !strings.HasSuffix(d.Name(), ".diff") {
			return nil
		}

		diffBytes, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("collector: read %s: %w", path, err)
		}

		// bug__<kind>__<hash>.diff and metadata__<kind>__<hash>.json share
		// the same "<kind>__<hash>" stem (buggen.Candidate.DiffFilename /
		// MetadataFilename), so swap only the fixed prefix and extension.
		stem := strings.TrimSuffix(strings.TrimPrefix(d.Name(), "bug__"), ".diff")
		metaPath := filepath.Join(filepath.Dir(path), "metadata__"+stem+".json")
		metaBytes, err := os.ReadFile(metaPath)
		if err != nil {
			return fmt.Errorf("collector: read sidecar metadata %s: %w", metaPath, err)
		}
		var meta buggen.Metadata
		if err := json.Unmarshal(metaBytes, &meta); err != nil {
			return fmt.Errorf("collector: decode %s: %w", metaPath, err)
		}

		entries = append(entries, ManifestEntry{
			InstanceIDStub: stubFor(meta.Kind, meta.Hash),
			Patch:          string(diffBytes),
			BugKind:        string(meta.Kind),
			SourceEntity:   fmt.Sprintf("%s::%s", meta.File, meta.EntityName),
		})
		return nil
	})
	if err != nil {
		return nil, errs.New(errs.KindHarnessCrash, "collector.Collect", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		fi, _, _ := strings.Cut(entries[i].SourceEntity, "::")
		fj, _, _ := strings.Cut(entries[j].SourceEntity, "::")
		if fi != fj {
			return fi < fj
		}
		hi := entries[i].InstanceIDStub[strings.LastIndex(entries[i].InstanceIDStub, "__")+2:]
		hj := entries[j].InstanceIDStub[strings.LastIndex(entries[j].InstanceIDStub, "__")+2:]
		if hi != hj {
			return hi < hj
		}
		return entries[i].InstanceIDStub < entries[j].InstanceIDStub
	})
	return entries, nil
}

// WriteManifest writes entries as "<repo>_all_patches.json" under outDir.
func WriteManifest(outDir, repo string, entries []ManifestEntry) (string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", errs.New(errs.KindHarnessCrash, "collector.WriteManifest", err)
	}
	path := filepath.Join(outDir, fmt.Sprintf("%s_all_patches.json", repo))
	b, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return "", errs.New(errs.KindHarnessCrash, "collector.WriteManifest", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", errs.New(errs.KindHarnessCrash, "collector.WriteManifest", err)
	}
	return path, nil
}

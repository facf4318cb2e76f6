// Package buggen implements the Bug Generators (C4): procedural,
// lm-modify, and lm-rewrite variants that each turn one entity into at
// most one candidate patch, written as a unified diff plus a sidecar
// metadata file under a content-addressed name.
package buggen

import (
	"encoding/json"
	"fmt"

	"swesmith/internal/adapter"
	"swesmith/internal/diff"
)

// Kind names a candidate's bug generator per spec §4's
// "bug_kind ∈ {procedural:<variant>, lm_modify, lm_rewrite}".
type Kind string

const (
	KindLMModify  Kind = "lm_modify"
	KindLMRewrite Kind = "lm_rewrite"
)

// ProceduralKind returns the bug_kind string for a procedural variant.
func ProceduralKind(variant Variant) Kind {
	return Kind(fmt.Sprintf("procedural:%s", variant))
}

// Candidate is a unified-diff patch over the clean tree plus the metadata
// spec §4 requires alongside it.
type Candidate struct {
	Kind     Kind
	Hash     string
	DiffText string
	Entity   adapter.Entity
	Metadata Metadata
}

// Metadata is the sidecar JSON document written next to each patch.
type Metadata struct {
	Kind       Kind   `json:"kind"`
	Hash       string `json:"hash"`
	File       string `json:"file"`
	EntityName string `json:"entity_name"`
	EntityKind string `json:"entity_kind"`
	Lo         int    `json:"lo"`
	Hi         int    `json:"hi"`
}

// DiffFilename returns the content-addressed patch filename per spec §4:
// "bug__<kind>__<hash>.diff".
func (c *Candidate) DiffFilename() string {
	return fmt.Sprintf("bug__%s__%s.diff", c.Kind, c.Hash)
}

// MetadataFilename returns the identically-named metadata file.
func (c *Candidate) MetadataFilename() string {
	return fmt.Sprintf("metadata__%s__%s.json", c.Kind, c.Hash)
}

// MetadataJSON marshals c.Metadata for writing alongside the diff.
func (c *Candidate) MetadataJSON() ([]byte, error) {
	return json.MarshalIndent(c.Metadata, "", "  ")
}

// newCandidate splices mutatedEntitySource into fileSource at e's span,
// diffs the result against fileSource, and returns a Candidate. Returns
// ok=false if the splice produced a byte-identical file (spec §4's
// "Entity whose rewrite returns byte-identical source -> dropped").
func newCandidate(kind Kind, e adapter.Entity, fileSource, mutatedEntitySource string) (Candidate, bool) {
	mutatedFile := fileSource[:e.Lo] + mutatedEntitySource + fileSource[e.Hi:]
	if mutatedFile == fileSource {
		return Candidate{}, false
	}
	diffText := diff.ComputeUnified(e.File, fileSource, mutatedFile)
	if diffText == "" {
		return Candidate{}, false
	}
	hash := diff.ContentHash([]byte(diffText))
	return Candidate{
		Kind:     kind,
		Hash:     hash,
		DiffText: diffText,
		Entity:   e,
		Metadata: Metadata{
			Kind:       kind,
			Hash:       hash,
			File:       e.File,
			EntityName: e.Name,
			EntityKind: string(e.Kind),
			Lo:         e.Lo,
			Hi:         e.Hi,
		},
	}, true
}

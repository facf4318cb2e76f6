// Package dataset implements the Dataset Assembler (C9): a pure join of
// gathered instances with generated issue texts, a canonical-schema check,
// and the final corpus write. Grounded on SPEC_FULL.md's own design note
// "Dataset Assembler is a pure join + schema check" — no container,
// network, or git I/O belongs in this package.
package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"swesmith/internal/errs"
	"swesmith/internal/gatherer"
	"swesmith/internal/issuegen"
)

// FinalInstance is one row of the canonical task-instance schema spec §3
// defines (bit-exact): instance_id, repo, patch, problem_statement,
// FAIL_TO_PASS, PASS_TO_PASS, image_name.
type FinalInstance struct {
	InstanceID       string   `json:"instance_id"`
	Repo             string   `json:"repo"`
	Patch            string   `json:"patch"`
	ProblemStatement string   `json:"problem_statement"`
	FailToPass       []string `json:"FAIL_TO_PASS"`
	PassToPass       []string `json:"PASS_TO_PASS"`
	ImageName        string   `json:"image_name"`
}

// Assemble joins instances with issues on instance_id, per spec §4.9,
// preserving instances' insertion order (the canonical schema's order of
// records is insertion order, not instance_id — that ordering requirement
// belongs to the Patch Collector's manifest, not this join). When
// allowMissingProblemStatement is false (the default; set true only for
// `--issue-mode=skip`), any instance without a matching, non-empty
// problem_statement is a hard schema error — spec §4.9's "Fails loudly on
// any instance missing a problem_statement unless --issue-mode=skip."
// Instances with an empty patch or empty FAIL_TO_PASS are always a schema
// error: the Instance Gatherer's own |F2P| >= 1 invariant means either
// should be structurally impossible by the time instances reach here, so
// seeing one indicates upstream corruption, not a data choice to tolerate.
func Assemble(instances []gatherer.Instance, issues []issuegen.Record, allowMissingProblemStatement bool) ([]FinalInstance, error) {
	byID := make(map[string]string, len(issues))
	for _, issue := range issues {
		byID[issue.InstanceID] = issue.ProblemStatement
	}

	final := make([]FinalInstance, 0, len(instances))
	for _, inst := range instances {
		if inst.Patch == "" {
			return nil, errs.New(errs.KindSchema, "dataset.Assemble", fmt.Errorf("instance %s has an empty patch", inst.InstanceID))
		}
		if len(inst.FailToPass) == 0 {
			return nil, errs.New(errs.KindSchema, "dataset.Assemble", fmt.Errorf("instance %s has an empty FAIL_TO_PASS", inst.InstanceID))
		}

		statement, ok := byID[inst.InstanceID]
		if (!ok || statement == "") && !allowMissingProblemStatement {
			return nil, errs.New(errs.KindSchema, "dataset.Assemble", fmt.Errorf("instance %s has no problem_statement (pass --issue-mode=skip to allow this)", inst.InstanceID))
		}

		final = append(final, FinalInstance{
			InstanceID:       inst.InstanceID,
			Repo:             inst.Repo,
			Patch:            inst.Patch,
			ProblemStatement: statement,
			FailToPass:       inst.FailToPass,
			PassToPass:       inst.PassToPass,
			ImageName:        inst.ImageName,
		})
	}

	return final, nil
}

// WriteDataset writes records as "<repo>_final.json" under outDir, per spec
// §4.9's "logs/agent_datasets/<repo>_final.json".
func WriteDataset(outDir, repo string, records []FinalInstance) (string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", errs.New(errs.KindHarnessCrash, "dataset.WriteDataset", err)
	}
	path := filepath.Join(outDir, fmt.Sprintf("%s_final.json", repo))
	b, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", errs.New(errs.KindHarnessCrash, "dataset.WriteDataset", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", errs.New(errs.KindHarnessCrash, "dataset.WriteDataset", err)
	}
	return path, nil
}

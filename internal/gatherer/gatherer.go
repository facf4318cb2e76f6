// Package gatherer implements the Instance Gatherer (C7): scans the
// Validator's per-candidate output, keeps the ones that cleared the bar,
// mints stable instance IDs, and pushes one mirror branch per kept
// candidate. Grounded on the teacher's internal/tactile/swebench/harness.go
// (which walks a results directory and filters by a pass/fail predicate)
// and internal/gitutil for the branch-per-task push model this repo's
// Environment Builder already established.
package gatherer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"swesmith/internal/errs"
	"swesmith/internal/gitutil"
	"swesmith/internal/logging"
)

// candidateReport mirrors the fields of validator.Report this package reads
// out of report.json. Declared locally (rather than importing
// internal/validator) to keep the dependency direction pointing from later
// pipeline stages toward earlier ones, matching the repo's existing
// import graph.
type candidateReport struct {
	InstanceIDStub string   `json:"instance_id_stub"`
	BugKind        string   `json:"bug_kind"`
	SourceEntity   string   `json:"source_entity"`
	ApplyFailed    bool     `json:"apply_failed"`
	TimedOut       bool     `json:"timed_out"`
	HarnessCrashed bool     `json:"harness_crashed"`
	FailToPass     []string `json:"FAIL_TO_PASS"`
	PassToPass     []string `json:"PASS_TO_PASS"`
}

func (r candidateReport) promotable() bool {
	return !r.ApplyFailed && !r.TimedOut && !r.HarnessCrashed && len(r.FailToPass) > 0 && len(r.PassToPass) > 0
}

// Instance is the canonical task-instance record minus problem_statement,
// per spec §4.7 ("write the canonical instance record (minus
// problem_statement)") — the Issue Generator (C8) fills that field in
// later, joined back on InstanceID by the Dataset Assembler.
type Instance struct {
	InstanceID   string   `json:"instance_id"`
	Repo         string   `json:"repo"`
	Patch        string   `json:"patch"`
	FailToPass   []string `json:"FAIL_TO_PASS"`
	PassToPass   []string `json:"PASS_TO_PASS"`
	ImageName    string   `json:"image_name"`
	BugKind      string   `json:"bug_kind"`
	SourceEntity string   `json:"source_entity"`
}

// InstanceID mints spec §4's "<owner>__<repo>.<commit_short>.<kind>__<hash>".
// The "<kind>__<hash>" suffix is exactly the Patch Collector's
// instance_id_stub, so minting is string concatenation, not re-derivation.
func InstanceID(owner, repo, commitShort, instanceIDStub string) string {
	return fmt.Sprintf("%s__%s.%s.%s", owner, repo, commitShort, instanceIDStub)
}

// Gatherer scans one repo's run_validation output and pushes kept instances
// as mirror branches.
type Gatherer struct {
	mirrorDir    string
	mirrorRemote string
	githubToken  string
	pinnedCommit string
	commitShort  string
	owner        string
	repo         string
	imageName    string
}

// NewGatherer returns a Gatherer for one (owner, repo, pinnedCommit). Every
// kept candidate's patch is applied, committed, and pushed against
// mirrorDir — a single shared working copy of the mirror repository at
// mirrorRemote.
func NewGatherer(mirrorDir, mirrorRemote, githubToken, owner, repo, pinnedCommit, commitShort, imageName string) *Gatherer {
	return &Gatherer{
		mirrorDir:    mirrorDir,
		mirrorRemote: mirrorRemote,
		githubToken:  githubToken,
		pinnedCommit: pinnedCommit,
		commitShort:  commitShort,
		owner:        owner,
		repo:         repo,
		imageName:    imageName,
	}
}

// Gather walks runValidationDir (logs/run_validation/<repo>/), reading each
// subdirectory's report.json and patch.diff. Kept candidates (|F2P| >= 1 and
// |P2P| >= 1) are applied over the pinned commit, committed, and pushed as a
// branch named for the instance_id. Pushes are run sequentially against the
// single mirrorDir working copy, which already serializes ref writes per
// repo without needing a separate lock.
func (g *Gatherer) Gather(ctx context.Context, runValidationDir string) ([]Instance, error) {
	entries, err := os.ReadDir(runValidationDir)
	if err != nil {
		return nil, errs.New(errs.KindHarnessCrash, "gatherer.Gather", err)
	}

	var instances []Instance
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		instDir := filepath.Join(runValidationDir, e.Name())

		report, patch, err := readCandidate(instDir)
		if err != nil {
			logging.Get(logging.CategoryGatherer).Warn("skipping %s: %v", instDir, err)
			continue
		}
		if !report.promotable() {
			logging.Get(logging.CategoryGatherer).Info("dropping %s: F2P=%d P2P=%d", report.InstanceIDStub, len(report.FailToPass), len(report.PassToPass))
			continue
		}

		instanceID := InstanceID(g.owner, g.repo, g.commitShort, report.InstanceIDStub)
		if err := g.pushInstanceBranch(ctx, instanceID, patch); err != nil {
			return instances, fmt.Errorf("gatherer: push branch for %s: %w", instanceID, err)
		}

		instances = append(instances, Instance{
			InstanceID:   instanceID,
			Repo:         g.repo,
			Patch:        patch,
			FailToPass:   report.FailToPass,
			PassToPass:   report.PassToPass,
			ImageName:    g.imageName,
			BugKind:      report.BugKind,
			SourceEntity: report.SourceEntity,
		})
	}
	return instances, nil
}

func readCandidate(instDir string) (candidateReport, string, error) {
	reportBytes, err := os.ReadFile(filepath.Join(instDir, "report.json"))
	if err != nil {
		return candidateReport{}, "", fmt.Errorf("read report.json: %w", err)
	}
	var report candidateReport
	if err := json.Unmarshal(reportBytes, &report); err != nil {
		return candidateReport{}, "", fmt.Errorf("decode report.json: %w", err)
	}
	patchBytes, err := os.ReadFile(filepath.Join(instDir, "patch.diff"))
	if err != nil {
		return candidateReport{}, "", fmt.Errorf("read patch.diff: %w", err)
	}
	return report, string(patchBytes), nil
}

// pushInstanceBranch resets the shared mirror checkout to the pinned
// commit, applies patch, commits it, and pushes a branch named instanceID.
// Duplicate branch names under identical contents are idempotent (the
// second reset+apply+commit reproduces the same tree, which
// gitutil.PushBranch accepts even though the new commit is rejected as
// non-fast-forward); mismatched contents under the same name surface as a push
// rejection, which gitutil.PushBranch propagates as a hard error per spec
// §4.7.
func (g *Gatherer) pushInstanceBranch(ctx context.Context, instanceID, patch string) error {
	if err := gitutil.ResetHard(ctx, g.mirrorDir, g.pinnedCommit); err != nil {
		return errs.New(errs.KindTransport, "gatherer.pushInstanceBranch", err)
	}
	if err := gitutil.ApplyPatch(ctx, g.mirrorDir, patch); err != nil {
		return errs.New(errs.KindApply, "gatherer.pushInstanceBranch", err)
	}
	if err := gitutil.CommitAll(ctx, g.mirrorDir, "swesmith: "+instanceID); err != nil {
		return errs.New(errs.KindTransport, "gatherer.pushInstanceBranch", err)
	}
	if err := gitutil.PushBranch(ctx, g.mirrorDir, g.mirrorRemote, g.githubToken, instanceID); err != nil {
		return errs.New(errs.KindTransport, "gatherer.pushInstanceBranch", err)
	}
	return nil
}

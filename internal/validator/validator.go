// Package validator implements the Validator (C6): two-phase differential
// test execution that turns a candidate patch plus a gold report into
// FAIL_TO_PASS/PASS_TO_PASS classifications and the per-instance artifact
// bundle spec §4.6 requires. Grounded on the teacher's
// internal/tactile/swebench/harness.go, which runs the same
// gold-then-candidate comparison shape (run once unpatched, run once
// patched, diff the outcome sets) over a SWE-bench style test suite.
package validator

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"swesmith/internal/cache"
	"swesmith/internal/collector"
	"swesmith/internal/environment"
	"swesmith/internal/errs"
	"swesmith/internal/logging"
	"swesmith/internal/mangle"
	"swesmith/internal/profile"
	"swesmith/internal/workerpool"
)

// Report is the report.json artifact spec §4.6 step 6 requires, plus the
// termination flags needed to implement "a candidate that either fails to
// apply, times out, or exits with the test harness itself crashing is
// reported but never promoted."
type Report struct {
	InstanceIDStub string   `json:"instance_id_stub"`
	BugKind        string   `json:"bug_kind"`
	SourceEntity   string   `json:"source_entity"`
	ApplyFailed    bool     `json:"apply_failed"`
	TimedOut       bool     `json:"timed_out"`
	HarnessCrashed bool     `json:"harness_crashed"`
	FailToPass     []string `json:"FAIL_TO_PASS"`
	PassToPass     []string `json:"PASS_TO_PASS"`
}

// Promotable reports whether this candidate clears the Instance Gatherer's
// bar (spec §4.7's "keeps K iff |F2P| >= 1 and |P2P| >= 1"), purely as a
// read on whether Phase 2 completed at all.
func (r Report) Promotable() bool {
	return !r.ApplyFailed && !r.TimedOut && !r.HarnessCrashed && len(r.FailToPass) > 0 && len(r.PassToPass) > 0
}

// Validator runs Phase 1 (gold) and Phase 2 (per-candidate) per spec §4.6.
type Validator struct {
	builder    *environment.Builder
	classifier *mangle.Classifier
	cache      *cache.Cache
	outputRoot string
}

// NewValidator returns a Validator that writes per-instance artifacts under
// outputRoot/<repo>/<instance_id_stub>/, matching
// "logs/run_validation/<repo>/<instance_id>/{...}" with the stub standing
// in for instance_id ahead of the Instance Gatherer minting the real one.
func NewValidator(builder *environment.Builder, c *cache.Cache, outputRoot string) *Validator {
	return &Validator{builder: builder, classifier: mangle.NewClassifier(), cache: c, outputRoot: outputRoot}
}

// RunGold executes Phase 1: the unpatched test suite once inside a fresh
// container, cached by imageName per spec §4.6 ("Gold is cached by
// image_name()").
func (v *Validator) RunGold(ctx context.Context, p *profile.Profile, imageName string) (map[string]mangle.Outcome, error) {
	if cached, ok, err := v.cache.GoldReport(imageName); err != nil {
		return nil, errs.New(errs.KindHarnessCrash, "validator.RunGold", err)
	} else if ok {
		logging.Get(logging.CategoryValidator).Info("gold report cache hit for %s", imageName)
		return cached, nil
	}

	inst, err := v.builder.StartInstance(ctx, p, imageName)
	if err != nil {
		return nil, err
	}
	defer func() {
		if tdErr := inst.Teardown(context.Background()); tdErr != nil {
			logging.Get(logging.CategoryValidator).Warn("gold instance teardown failed: %v", tdErr)
		}
	}()

	outcomes, _, err := inst.RunTests(ctx)
	if err != nil {
		return nil, err
	}
	if err := v.cache.PutGoldReport(imageName, outcomes); err != nil {
		return nil, errs.New(errs.KindHarnessCrash, "validator.RunGold", err)
	}
	return outcomes, nil
}

// RunCandidate executes Phase 2 for one manifest entry: launch a fresh
// instance, apply K, run tests, classify against gold, and write the
// artifact bundle spec §4.6 step 6 lists.
func (v *Validator) RunCandidate(ctx context.Context, repo string, p *profile.Profile, imageName string, gold map[string]mangle.Outcome, entry collector.ManifestEntry) (Report, error) {
	report := Report{InstanceIDStub: entry.InstanceIDStub, BugKind: entry.BugKind, SourceEntity: entry.SourceEntity}

	inst, err := v.builder.StartInstance(ctx, p, imageName)
	if err != nil {
		return report, err
	}
	defer func() {
		if tdErr := inst.Teardown(context.Background()); tdErr != nil {
			logging.Get(logging.CategoryValidator).Warn("candidate instance teardown failed: %v", tdErr)
		}
	}()

	var testOutput string
	var instanceLog strings.Builder
	fmt.Fprintf(&instanceLog, "container: %s\nimage: %s\n", inst.ContainerID(), imageName)

	if err := inst.ApplyPatch(ctx, entry.Patch); err != nil {
		report.ApplyFailed = true
		fmt.Fprintf(&instanceLog, "apply failed: %v\n", err)
		return report, v.writeArtifacts(repo, p, entry, report, testOutput, instanceLog.String())
	}

	outcomes, rawLog, err := inst.RunTests(ctx)
	testOutput = rawLog
	if err != nil {
		classifyRunError(err, &report)
		fmt.Fprintf(&instanceLog, "run tests failed: %v\n", err)
		return report, v.writeArtifacts(repo, p, entry, report, testOutput, instanceLog.String())
	}

	f2p, p2p, err := v.classifier.Classify(ctx, gold, outcomes)
	if err != nil {
		return report, errs.New(errs.KindHarnessCrash, "validator.RunCandidate", err)
	}
	report.FailToPass = f2p
	report.PassToPass = p2p
	return report, v.writeArtifacts(repo, p, entry, report, testOutput, instanceLog.String())
}

// classifyRunError distinguishes a wall-clock timeout from any other
// harness crash. container.Executor.Exec wraps both as errs.KindHarnessCrash
// (docker exec does not otherwise expose why it was killed), so the
// distinction is made on the wrapped message.
func classifyRunError(err error, report *Report) {
	if strings.Contains(err.Error(), "timed out") {
		report.TimedOut = true
		return
	}
	report.HarnessCrashed = true
}

// RunAll runs Phase 1 then Phase 2 over entries, up to workers concurrently,
// per spec §4.6's "Across stages, stage N begins only after stage N-1's
// outputs are flushed to disk. The Validator's Phase 1 must complete before
// Phase 2 starts."
func (v *Validator) RunAll(ctx context.Context, repo string, p *profile.Profile, imageName string, entries []collector.ManifestEntry, workers int) ([]Report, error) {
	gold, err := v.RunGold(ctx, p, imageName)
	if err != nil {
		return nil, fmt.Errorf("validator: gold run failed, phase 2 not started: %w", err)
	}

	reports := make([]Report, len(entries))
	err = workerpool.RunIndexed(ctx, entries, workers, func(ctx context.Context, i int, entry collector.ManifestEntry) error {
		r, err := v.RunCandidate(ctx, repo, p, imageName, gold, entry)
		reports[i] = r
		return err
	})
	if err != nil {
		return reports, err
	}
	return reports, nil
}

func (v *Validator) writeArtifacts(repo string, p *profile.Profile, entry collector.ManifestEntry, report Report, testOutput, instanceLog string) error {
	dir := filepath.Join(v.outputRoot, repo, entry.InstanceIDStub)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errs.New(errs.KindHarnessCrash, "validator.writeArtifacts", err)
	}

	evalScript := fmt.Sprintf("#!/bin/sh\nset -e\n%s\n", p.EffectiveTestCmd())
	if err := os.WriteFile(filepath.Join(dir, "eval.sh"), []byte(evalScript), 0o755); err != nil {
		return errs.New(errs.KindHarnessCrash, "validator.writeArtifacts", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "patch.diff"), []byte(entry.Patch), 0o644); err != nil {
		return errs.New(errs.KindHarnessCrash, "validator.writeArtifacts", err)
	}
	reportJSON, err := marshalReport(report)
	if err != nil {
		return errs.New(errs.KindHarnessCrash, "validator.writeArtifacts", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "report.json"), reportJSON, 0o644); err != nil {
		return errs.New(errs.KindHarnessCrash, "validator.writeArtifacts", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "run_instance.log"), []byte(instanceLog), 0o644); err != nil {
		return errs.New(errs.KindHarnessCrash, "validator.writeArtifacts", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "test_output.txt"), []byte(testOutput), 0o644); err != nil {
		return errs.New(errs.KindHarnessCrash, "validator.writeArtifacts", err)
	}
	return nil
}

func marshalReport(r Report) ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

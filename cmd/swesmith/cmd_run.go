package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"swesmith/internal/adapter"
	"swesmith/internal/buggen"
	"swesmith/internal/collector"
	"swesmith/internal/dataset"
	"swesmith/internal/errs"
	"swesmith/internal/gatherer"
	"swesmith/internal/issuegen"
	"swesmith/internal/logging"
	"swesmith/internal/profile"
	"swesmith/internal/validator"
)

var (
	runOwner, runRepo, runCommit string
	runBugGenMethod              string
	runMaxBugs                   int
	runIssueMode                 string
	runPRBody                    string
	runSkipBuild                 bool
	runGHOwnerType               string
)

// runCmd is the abstract CLI surface's single pipeline entry: C2 through C9
// in one invocation against one profile, per spec §6's flag list. It is
// deliberately a thin orchestrator over the same internal packages
// generate/validate/gather/issues/dataset already wire individually, so the
// two entry points (one command at a time, or the whole pipeline) never
// drift from each other's semantics.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "run the full synthesis pipeline for one profile: generate, validate, gather, issues, dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		start := time.Now()
		if runGHOwnerType != "" {
			cfg.GitHubOwnerType = runGHOwnerType
		}

		reg, err := loadRegistry()
		if err != nil {
			return err
		}
		p, err := mustProfile(reg, runOwner, runRepo, runCommit)
		if err != nil {
			return errs.New(errs.KindConfig, "run", err)
		}

		builder, c, err := buildEnvironment()
		if err != nil {
			return err
		}
		defer c.Close()

		ctx := cmd.Context()
		out := cmd.OutOrStdout()
		log := logging.Get(logging.CategoryCLI)

		mirrorDir, mirrorCommit, err := builder.EnsureMirror(ctx, p)
		if err != nil {
			return err
		}

		var imageName string
		if runSkipBuild {
			imageName = p.ImageName(cfg.DockerHubOrg)
			log.Info("skip-build set: assuming %s already exists", imageName)
		} else {
			imageName, err = builder.EnsureImage(ctx, p, mirrorCommit)
			if err != nil {
				return err
			}
		}

		// C2 + C4: generate candidates.
		la, err := adapter.New(p.Language)
		if err != nil {
			return errs.New(errs.KindConfig, "run", err)
		}
		var lm *buggen.LMGenerator
		if runBugGenMethod != "procedural" {
			client, err := buildLLMClient()
			if err != nil {
				return err
			}
			lm = buggen.NewLMGenerator(client)
		}
		proc := buggen.NewProceduralGenerator()

		files, err := walkSourceFiles(mirrorDir, p.SourceGlobs(), p.ExcludeGlobs())
		if err != nil {
			return errs.New(errs.KindHarnessCrash, "run", err)
		}
		bugGenDir := filepath.Join("logs", "bug_gen", p.Repo)
		generated := 0
		for _, relPath := range files {
			src, err := os.ReadFile(filepath.Join(mirrorDir, relPath))
			if err != nil {
				return errs.New(errs.KindHarnessCrash, "run", err)
			}
			entities, err := la.EntitiesOf(relPath, src)
			if err != nil || len(entities) == 0 {
				continue
			}
			candidates := generateCandidates(ctx, proc, lm, runBugGenMethod, string(src), entities, runMaxBugs, log, relPath)
			for i := range candidates {
				if err := writeCandidate(bugGenDir, relPath, &candidates[i]); err != nil {
					return err
				}
				generated++
			}
		}
		fmt.Fprintf(out, "[generate] %d candidate(s) (%s)\n", generated, elapsedSince(start))

		// C5 + C6: collect and validate.
		entries, err := collector.Collect(bugGenDir)
		if err != nil {
			return errs.New(errs.KindHarnessCrash, "run", err)
		}
		if _, err := collector.WriteManifest(filepath.Join("logs", "bug_gen"), p.Repo, entries); err != nil {
			return err
		}
		validationDir := filepath.Join("logs", "run_validation")
		v := validator.NewValidator(builder, c, validationDir)
		reports, err := v.RunAll(ctx, p.Repo, p, imageName, entries, cfg.Workers)
		if err != nil {
			return err
		}
		promotable := 0
		for _, r := range reports {
			if r.Promotable() {
				promotable++
			}
		}
		fmt.Fprintf(out, "[validate] %d/%d promotable (%s)\n", promotable, len(reports), elapsedSince(start))
		if len(entries) > 0 && promotable == 0 {
			return errs.NewExit(errs.KindHarnessCrash, "run", fmt.Errorf("all %d instances failed validation", len(entries)), 5)
		}

		// C7: gather.
		mirrorRemote := fmt.Sprintf("https://github.com/%s/%s.git", cfg.GitHubOrg, p.MirrorName(cfg.GitHubOrg))
		g := gathererFor(mirrorDir, mirrorRemote, p, imageName)
		instances, err := g.Gather(ctx, filepath.Join(validationDir, p.Repo))
		if err != nil {
			return err
		}
		if _, err := writeInstancesJSON(instances, p.Repo); err != nil {
			return err
		}
		fmt.Fprintf(out, "[gather] %d instance(s) (%s)\n", len(instances), elapsedSince(start))

		// C8: issues.
		mode := issuegen.Mode(runIssueMode)
		var gen *issuegen.Generator
		if mode == issuegen.ModeLLM {
			client, err := buildLLMClient()
			if err != nil {
				return err
			}
			gen = issuegen.NewGenerator(client)
		} else {
			gen = issuegen.NewGenerator(nil)
		}
		records := make([]issuegen.Record, 0, len(instances))
		for _, inst := range instances {
			target := issuegen.Target{InstanceID: inst.InstanceID, Diff: inst.Patch, FailToPass: inst.FailToPass}
			statement, err := gen.Generate(ctx, mode, target, nil, runPRBody)
			if err != nil {
				log.Warn("issue generation failed for %s: %v", inst.InstanceID, err)
				continue
			}
			records = append(records, issuegen.Record{InstanceID: inst.InstanceID, ProblemStatement: statement})
		}
		if _, err := issuegen.WriteRecords("logs/issue_gen", p.Repo, runIssueMode, records); err != nil {
			return errs.New(errs.KindSchema, "run", err)
		}
		fmt.Fprintf(out, "[issues] %d problem statement(s) (%s)\n", len(records), elapsedSince(start))

		// C9: dataset.
		final, err := dataset.Assemble(instances, records, mode == issuegen.ModeSkip)
		if err != nil {
			return err
		}
		path, err := dataset.WriteDataset("logs/agent_datasets", p.Repo, final)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "[dataset] %d task instance(s) -> %s (%s total)\n", len(final), path, elapsedSince(start))
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runOwner, "owner", "", "profile owner (required)")
	runCmd.Flags().StringVar(&runRepo, "repo", "", "profile repo (required)")
	runCmd.Flags().StringVar(&runCommit, "commit", "", "profile commit (required)")
	runCmd.Flags().StringVar(&runBugGenMethod, "bug-gen-method", "procedural", "procedural|llm-modify|llm-rewrite|all")
	runCmd.Flags().IntVar(&runMaxBugs, "max-bugs", 1, "max procedural bugs per source file")
	runCmd.Flags().StringVar(&runIssueMode, "issue-mode", "static", "llm|static|tests|pr|skip")
	runCmd.Flags().StringVar(&runPRBody, "pr-body", "", "original PR description text, for --issue-mode=pr")
	runCmd.Flags().BoolVar(&runSkipBuild, "skip-build", false, "assume the container image already exists; skip the build/cache step")
	runCmd.Flags().StringVar(&runGHOwnerType, "gh-owner-type", "", "override the configured github_owner_type: user|org")
	runCmd.MarkFlagRequired("owner")
	runCmd.MarkFlagRequired("repo")
	runCmd.MarkFlagRequired("commit")
}

// generateCandidates applies method's requested generator(s) to one
// source file's entities, the same branching cmd_generate.go's RunE does
// per file, factored out so run's single-pass loop stays readable.
func generateCandidates(ctx context.Context, proc *buggen.ProceduralGenerator, lm *buggen.LMGenerator, method, src string, entities []adapter.Entity, maxBugs int, log *logging.Logger, relPath string) []buggen.Candidate {
	var candidates []buggen.Candidate
	if method == "procedural" || method == "all" {
		candidates = append(candidates, proc.Generate(ctx, src, entities, maxBugs)...)
	}
	if lm != nil {
		for _, e := range entities {
			if method == "llm-modify" || method == "all" {
				if cand, err := lm.GenerateModify(ctx, src, e); err != nil {
					log.Warn("llm-modify failed for %s:%s: %v", relPath, e.Name, err)
				} else if cand != nil {
					candidates = append(candidates, *cand)
				}
			}
			if method == "llm-rewrite" || method == "all" {
				if cand, err := lm.GenerateRewrite(ctx, src, e); err != nil {
					log.Warn("llm-rewrite failed for %s:%s: %v", relPath, e.Name, err)
				} else if cand != nil {
					candidates = append(candidates, *cand)
				}
			}
		}
	}
	return candidates
}

// gathererFor builds the Instance Gatherer for p the same way cmd_gather.go
// does, duplicated rather than shared since run never needs gather's
// standalone --validation-dir override.
func gathererFor(mirrorDir, mirrorRemote string, p *profile.Profile, imageName string) *gatherer.Gatherer {
	return gatherer.NewGatherer(mirrorDir, mirrorRemote, cfg.GitHubToken, p.Owner, p.Repo, p.Commit, shortCommit(p.Commit), imageName)
}

package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"swesmith/internal/collector"
	"swesmith/internal/errs"
	"swesmith/internal/logging"
	"swesmith/internal/progress"
	"swesmith/internal/resume"
	"swesmith/internal/validator"
)

var (
	valOwner, valRepo, valCommit string
	valBugGenDir                 string
	valOutDir                    string
	valLiveProgress              bool
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "differentially validate every collected candidate against the gold tree (C5 collect + C6 validate)",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry()
		if err != nil {
			return err
		}
		p, err := mustProfile(reg, valOwner, valRepo, valCommit)
		if err != nil {
			return errs.New(errs.KindConfig, "validate", err)
		}

		repoBugGenDir := filepath.Join(valBugGenDir, p.Repo)
		entries, err := collector.Collect(repoBugGenDir)
		if err != nil {
			return errs.New(errs.KindHarnessCrash, "validate", err)
		}
		if _, err := collector.WriteManifest(valBugGenDir, p.Repo, entries); err != nil {
			return err
		}

		builder, c, err := buildEnvironment()
		if err != nil {
			return err
		}
		defer c.Close()

		ctx := cmd.Context()
		_, mirrorCommit, err := builder.EnsureMirror(ctx, p)
		if err != nil {
			return err
		}
		imageName, err := builder.EnsureImage(ctx, p, mirrorCommit)
		if err != nil {
			return err
		}

		runOutDir := filepath.Join(valOutDir, p.Repo)
		done, err := resume.AlreadyDone(runOutDir)
		if err != nil {
			return errs.New(errs.KindHarnessCrash, "validate", err)
		}
		pending := make([]collector.ManifestEntry, 0, len(entries))
		for _, e := range entries {
			if done[e.InstanceIDStub] {
				continue
			}
			pending = append(pending, e)
		}
		logging.Get(logging.CategoryValidator).Info("resuming run: %d/%d instances already validated, %d pending", len(entries)-len(pending), len(entries), len(pending))

		var watcher *resume.Watcher
		if valLiveProgress {
			bar := progress.NewBar(p.Repo, len(pending))
			if bar != nil {
				bar.Start()
				defer bar.Stop()
			}
			watcher, err = resume.New(runOutDir, func(stub string) {
				if bar != nil {
					bar.Advance(1)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "validated %s\n", stub)
				}
			})
			if err == nil {
				watcher.Start()
				defer watcher.Stop()
			}
		}

		v := validator.NewValidator(builder, c, valOutDir)
		reports, err := v.RunAll(ctx, p.Repo, p, imageName, pending, cfg.Workers)
		if err != nil {
			return err
		}

		promotable := 0
		for _, r := range reports {
			if r.Promotable() {
				promotable++
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "validated %d instance(s), %d promotable\n", len(reports), promotable)

		if len(entries) > 0 && promotable == 0 && len(reports) == len(entries) {
			return errs.NewExit(errs.KindHarnessCrash, "validate", fmt.Errorf("all %d instances failed validation", len(entries)), 5)
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().StringVar(&valOwner, "owner", "", "profile owner (required)")
	validateCmd.Flags().StringVar(&valRepo, "repo", "", "profile repo (required)")
	validateCmd.Flags().StringVar(&valCommit, "commit", "", "profile commit (required)")
	validateCmd.Flags().StringVar(&valBugGenDir, "bug-gen-dir", "logs/bug_gen", "root of per-repo bug_gen artifacts to collect")
	validateCmd.Flags().StringVar(&valOutDir, "out", "logs/run_validation", "output root for per-instance validation artifacts")
	validateCmd.Flags().BoolVar(&valLiveProgress, "live-progress", false, "print each instance as its report.json settles, via a filesystem watch")
	validateCmd.MarkFlagRequired("owner")
	validateCmd.MarkFlagRequired("repo")
	validateCmd.MarkFlagRequired("commit")
}

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"swesmith/internal/errs"
	"swesmith/internal/gatherer"
)

var (
	gatherOwner, gatherRepo, gatherCommit string
	gatherValidationDir                  string
)

var gatherCmd = &cobra.Command{
	Use:   "gather",
	Short: "mint instance IDs and push one mirror branch per promotable candidate (C7)",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry()
		if err != nil {
			return err
		}
		p, err := mustProfile(reg, gatherOwner, gatherRepo, gatherCommit)
		if err != nil {
			return errs.New(errs.KindConfig, "gather", err)
		}

		mirrorDir := filepath.Join("logs", "mirrors", p.Owner, p.Repo)
		mirrorRemote := fmt.Sprintf("https://github.com/%s/%s.git", cfg.GitHubOrg, p.MirrorName(cfg.GitHubOrg))
		imageName := p.ImageName(cfg.DockerHubOrg)

		g := gatherer.NewGatherer(mirrorDir, mirrorRemote, cfg.GitHubToken, p.Owner, p.Repo, p.Commit, shortCommit(p.Commit), imageName)

		runValidationDir := filepath.Join(gatherValidationDir, p.Repo)
		instances, err := g.Gather(cmd.Context(), runValidationDir)
		if err != nil {
			return err
		}

		if _, err := writeInstancesJSON(instances, p.Repo); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "gathered %d instance(s) for %s\n", len(instances), p.Repo)
		return nil
	},
}

func init() {
	gatherCmd.Flags().StringVar(&gatherOwner, "owner", "", "profile owner (required)")
	gatherCmd.Flags().StringVar(&gatherRepo, "repo", "", "profile repo (required)")
	gatherCmd.Flags().StringVar(&gatherCommit, "commit", "", "profile commit (required)")
	gatherCmd.Flags().StringVar(&gatherValidationDir, "validation-dir", "logs/run_validation", "root of per-repo validation artifacts")
	gatherCmd.MarkFlagRequired("owner")
	gatherCmd.MarkFlagRequired("repo")
	gatherCmd.MarkFlagRequired("commit")
}

// shortCommit mirrors Profile's own 7-character short-SHA convention for
// image and mirror names, since that helper is unexported.
func shortCommit(commit string) string {
	if len(commit) <= 7 {
		return commit
	}
	return commit[:7]
}

// writeInstancesJSON persists gathered instances so the issues/dataset
// stages can be invoked as separate commands without re-running Gather.
func writeInstancesJSON(instances []gatherer.Instance, repo string) (string, error) {
	dir := "logs/instances"
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errs.New(errs.KindHarnessCrash, "gather.writeInstancesJSON", err)
	}
	path := filepath.Join(dir, repo+"_instances.json")
	b, err := json.MarshalIndent(instances, "", "  ")
	if err != nil {
		return "", errs.New(errs.KindSchema, "gather.writeInstancesJSON", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", errs.New(errs.KindHarnessCrash, "gather.writeInstancesJSON", err)
	}
	return path, nil
}

func readInstancesJSON(repo string) ([]gatherer.Instance, error) {
	path := filepath.Join("logs/instances", repo+"_instances.json")
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.New(errs.KindConfig, "readInstancesJSON", err)
	}
	var instances []gatherer.Instance
	if err := json.Unmarshal(b, &instances); err != nil {
		return nil, errs.New(errs.KindSchema, "readInstancesJSON", err)
	}
	return instances, nil
}

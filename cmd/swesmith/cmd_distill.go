package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"swesmith/internal/distill"
	"swesmith/internal/errs"
	"swesmith/internal/logging"
)

var (
	distOwner, distRepo, distCommit string
	distTrajectoriesPath            string
	distDialect                     string
	distResolvedOnly                bool
	distOutDir                      string
)

var distillCmd = &cobra.Command{
	Use:   "distill",
	Short: "replay agent trajectories against the gold tree and emit SFT records (C10)",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry()
		if err != nil {
			return err
		}
		p, err := mustProfile(reg, distOwner, distRepo, distCommit)
		if err != nil {
			return errs.New(errs.KindConfig, "distill", err)
		}

		trajectories, err := readTrajectories(distTrajectoriesPath)
		if err != nil {
			return err
		}
		if len(trajectories) == 0 {
			return errs.NewExit(errs.KindHarnessCrash, "distill", fmt.Errorf("no predictions found in %s", distTrajectoriesPath), 4)
		}

		instances, err := readInstancesJSON(distRepo)
		if err != nil {
			return err
		}
		expectByID := make(map[string]distill.TestExpectation, len(instances))
		for _, inst := range instances {
			expectByID[inst.InstanceID] = distill.TestExpectation{FailToPass: inst.FailToPass, PassToPass: inst.PassToPass}
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

		d := distill.NewDistiller(builder)
		log := logging.Get(logging.CategoryDistill)
		resolved := make(map[string]bool, len(trajectories))
		for _, traj := range trajectories {
			expect, ok := expectByID[traj.InstanceID]
			if !ok {
				log.Warn("no gathered instance found for trajectory %s; treating as unresolved", traj.InstanceID)
				continue
			}
			ok2, _, err := d.Evaluate(ctx, p, imageName, traj, expect)
			if err != nil {
				log.Warn("evaluation failed for %s: %v", traj.InstanceID, err)
				continue
			}
			resolved[traj.InstanceID] = ok2
		}

		records, report, err := distill.Distill(trajectories, resolved, distill.Dialect(distDialect), distResolvedOnly)
		if err != nil {
			return err
		}

		if err := os.MkdirAll(distOutDir, 0o755); err != nil {
			return errs.New(errs.KindHarnessCrash, "distill", err)
		}
		outPath := filepath.Join(distOutDir, fmt.Sprintf("%s_sft_%s.jsonl", distRepo, distill.NewRunID()))
		if err := distill.WriteJSONL(outPath, records); err != nil {
			return err
		}

		reportBytes, _ := json.MarshalIndent(report, "", "  ")
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %d SFT record(s) to %s\nlength distribution: %s\n", len(records), outPath, string(reportBytes))
		return nil
	},
}

func init() {
	distillCmd.Flags().StringVar(&distOwner, "owner", "", "profile owner (required)")
	distillCmd.Flags().StringVar(&distRepo, "repo", "", "profile repo (required)")
	distillCmd.Flags().StringVar(&distCommit, "commit", "", "profile commit (required)")
	distillCmd.Flags().StringVar(&distTrajectoriesPath, "trajectories", "", "path to a JSON array of agent trajectories (required)")
	distillCmd.Flags().StringVar(&distDialect, "dialect", string(distill.DialectFunctionCall), "tool-call dialect: function_call|xml_tool_call")
	distillCmd.Flags().BoolVar(&distResolvedOnly, "resolved-only", false, "emit only resolved trajectories")
	distillCmd.Flags().StringVar(&distOutDir, "out", "logs/distill", "output root for the SFT JSONL file")
	distillCmd.MarkFlagRequired("owner")
	distillCmd.MarkFlagRequired("repo")
	distillCmd.MarkFlagRequired("commit")
	distillCmd.MarkFlagRequired("trajectories")
}

// readTrajectories reads a JSON array of distill.Trajectory from path.
func readTrajectories(path string) ([]distill.Trajectory, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.New(errs.KindConfig, "distill.readTrajectories", err)
	}
	var trajectories []distill.Trajectory
	if err := json.Unmarshal(b, &trajectories); err != nil {
		return nil, errs.New(errs.KindSchema, "distill.readTrajectories", err)
	}
	return trajectories, nil
}

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"swesmith/internal/dataset"
	"swesmith/internal/errs"
	"swesmith/internal/issuegen"
)

var (
	dsRepo         string
	dsIssueMode    string
	dsIssueGenDir  string
	dsOutDir       string
	dsAllowNoIssue bool
)

var datasetCmd = &cobra.Command{
	Use:   "dataset",
	Short: "join gathered instances with generated issues into the final corpus (C9)",
	RunE: func(cmd *cobra.Command, args []string) error {
		instances, err := readInstancesJSON(dsRepo)
		if err != nil {
			return err
		}
		issues, err := readIssueRecords(dsIssueGenDir, dsRepo, dsIssueMode)
		if err != nil {
			return err
		}

		allowMissing := dsAllowNoIssue || dsIssueMode == string(issuegen.ModeSkip)
		final, err := dataset.Assemble(instances, issues, allowMissing)
		if err != nil {
			return err
		}

		path, err := dataset.WriteDataset(dsOutDir, dsRepo, final)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "assembled %d task instance(s) into %s\n", len(final), path)
		return nil
	},
}

func init() {
	datasetCmd.Flags().StringVar(&dsRepo, "repo", "", "repo whose gathered instances and issues to assemble (required)")
	datasetCmd.Flags().StringVar(&dsIssueMode, "issue-mode", "static", "issue-mode the issues stage was run with; selects which issue_gen file to join against")
	datasetCmd.Flags().StringVar(&dsIssueGenDir, "issue-gen-dir", "logs/issue_gen", "root of issue_gen output")
	datasetCmd.Flags().StringVar(&dsOutDir, "out", "logs/agent_datasets", "output root for the final dataset")
	datasetCmd.Flags().BoolVar(&dsAllowNoIssue, "allow-missing-problem-statement", false, "tolerate instances with no problem_statement even outside --issue-mode=skip")
	datasetCmd.MarkFlagRequired("repo")
}

// readIssueRecords reads the canonical issue_gen output WriteRecords wrote
// for (repo, exp). A missing file is only tolerated for issue-mode=skip,
// where no issue_gen stage is ever expected to have run.
func readIssueRecords(root, repo, exp string) ([]issuegen.Record, error) {
	path := issuegen.CanonicalPath(root, repo, exp)
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && exp == string(issuegen.ModeSkip) {
			return nil, nil
		}
		return nil, errs.New(errs.KindConfig, "dataset.readIssueRecords", err)
	}
	var records []issuegen.Record
	if err := json.Unmarshal(b, &records); err != nil {
		return nil, errs.New(errs.KindSchema, "dataset.readIssueRecords", err)
	}
	return records, nil
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"swesmith/internal/errs"
	"swesmith/internal/issuegen"
	"swesmith/internal/logging"
	"swesmith/internal/progress"
)

var (
	issueRepo    string
	issueMode    string
	issuePRBody  string
	issueWorkers int
)

var issuesCmd = &cobra.Command{
	Use:   "issues",
	Short: "generate a problem statement per gathered instance (C8)",
	RunE: func(cmd *cobra.Command, args []string) error {
		instances, err := readInstancesJSON(issueRepo)
		if err != nil {
			return err
		}

		var gen *issuegen.Generator
		mode := issuegen.Mode(issueMode)
		if mode == issuegen.ModeLLM {
			c, err := buildLLMClient()
			if err != nil {
				return err
			}
			gen = issuegen.NewGenerator(c)
		} else {
			gen = issuegen.NewGenerator(nil)
		}

		log := logging.Get(logging.CategoryIssuegen)
		records := make([]issuegen.Record, 0, len(instances))
		for _, inst := range instances {
			target := issuegen.Target{InstanceID: inst.InstanceID, Diff: inst.Patch, FailToPass: inst.FailToPass}
			statement, err := gen.Generate(cmd.Context(), mode, target, nil, issuePRBody)
			if err != nil {
				log.Warn("issue generation failed for %s: %v", inst.InstanceID, err)
				continue
			}
			records = append(records, issuegen.Record{InstanceID: inst.InstanceID, ProblemStatement: statement})
		}

		path, err := issuegen.WriteRecords("logs/issue_gen", issueRepo, issueMode, records)
		if err != nil {
			return errs.New(errs.KindSchema, "issues", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %d problem statement(s) to %s\n", len(records), path)
		if verbose && len(records) > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "\npreview of %s:\n\n%s\n", records[0].InstanceID, progress.RenderMarkdown(records[0].ProblemStatement))
		}
		return nil
	},
}

func init() {
	issuesCmd.Flags().StringVar(&issueRepo, "repo", "", "repo whose gathered instances to generate issues for (required)")
	issuesCmd.Flags().StringVar(&issueMode, "issue-mode", "static", "issue-mode: llm|static|tests|pr|skip")
	issuesCmd.Flags().StringVar(&issuePRBody, "pr-body", "", "original PR description text, for --issue-mode=pr")
	issuesCmd.Flags().IntVar(&issueWorkers, "issue-workers", 1, "issue generation concurrency (reserved; generation is sequential today)")
	issuesCmd.MarkFlagRequired("repo")
}

// Package main implements the swesmith CLI: the task-instance synthesis
// pipeline's entry point. The actual command implementations are split
// across multiple cmd_*.go files, one per pipeline stage, mirroring the
// teacher's cmd/nerd/main.go registration-hub layout (main.go owns rootCmd,
// global flags, and init(); each cmd_*.go owns one verb).
//
// # File Index
//
//	main.go          - entry point, rootCmd, global flags, runtime wiring
//	cmd_generate.go  - generate (C2 Language Adapter + C4 Bug Generators)
//	cmd_validate.go  - validate (C6 Validator)
//	cmd_gather.go    - gather (C7 Instance Gatherer)
//	cmd_issues.go    - issues (C8 Issue Generator)
//	cmd_dataset.go   - dataset (C9 Dataset Assembler)
//	cmd_distill.go   - distill (C10 Trajectory/SFT Distiller)
//	cmd_run.go       - run (full pipeline, C1 through C9 in one invocation)
//
// The optional bubbletea/lipgloss TTY progress view lives in
// internal/progress.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"swesmith/internal/cache"
	"swesmith/internal/config"
	"swesmith/internal/container"
	"swesmith/internal/environment"
	"swesmith/internal/errs"
	"swesmith/internal/llm"
	"swesmith/internal/logging"
	"swesmith/internal/profile"
)

var (
	verbose    bool
	configPath string
	profileDir string
	logDir     string
	workers    int

	logger *zap.Logger
	cfg    *config.Config
)

// rootCmd is the base command; run without arguments shows help, since this
// pipeline has no interactive mode to fall back to.
var rootCmd = &cobra.Command{
	Use:   "swesmith",
	Short: "swesmith - task-instance synthesis pipeline",
	Long: `swesmith turns a pinned repository commit into validated SWE-bench-style
task instances: it injects synthetic bugs, validates FAIL_TO_PASS/PASS_TO_PASS
behavior inside disposable containers, generates problem statements, and
assembles the final dataset (optionally distilling agent trajectories into
supervised fine-tuning records).`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		dir := logDir
		if dir == "" {
			dir = "."
		}
		level := logging.LevelInfo
		if verbose {
			level = logging.LevelDebug
		}
		if err := logging.Initialize(dir, level, false); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to initialize file logging: %v\n", err)
		}

		cfg, err = config.Load(configPath)
		if err != nil {
			return errs.New(errs.KindConfig, "main.PersistentPreRunE", err)
		}
		if workers > 0 {
			cfg.Workers = workers
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug-level logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to swesmith.yaml (optional; env overrides always apply)")
	rootCmd.PersistentFlags().StringVar(&profileDir, "profile-dir", "profiles", "directory of per-repo profile YAML documents")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", ".", "workspace root under which logs/run/<category>.log is written")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 0, "override the configured worker concurrency (0 = use config)")

	rootCmd.AddCommand(generateCmd, validateCmd, gatherCmd, issuesCmd, datasetCmd, distillCmd, runCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(errs.ExitCode(err))
	}
}

// loadRegistry loads every profile document under profileDir.
func loadRegistry() (*profile.Registry, error) {
	reg := profile.NewRegistry()
	if err := reg.LoadDir(profileDir); err != nil {
		return nil, errs.New(errs.KindConfig, "main.loadRegistry", err)
	}
	return reg, nil
}

// buildEnvironment wires the container executor, sqlite cache, and
// Environment Builder every stage past C1/C2 needs.
func buildEnvironment() (*environment.Builder, *cache.Cache, error) {
	exec, err := container.NewExecutor()
	if err != nil {
		return nil, nil, errs.New(errs.KindBridge, "main.buildEnvironment", err)
	}
	c, err := cache.Open(cfg.SQLiteCachePath)
	if err != nil {
		return nil, nil, errs.New(errs.KindConfig, "main.buildEnvironment", err)
	}
	builder := environment.NewBuilder(exec, c, "logs/mirrors", cfg.GitHubOrg, cfg.DockerHubOrg, cfg.GitHubToken)
	return builder, c, nil
}

// buildLLMClient wires the key-pool-rotated, rate-limited LLM client shared
// by bug generation, issue generation, and nothing else.
func buildLLMClient() (*llm.Client, error) {
	keys, err := llm.NewKeyPool(cfg.LLMAPIKeys)
	if err != nil {
		return nil, errs.New(errs.KindConfig, "main.buildLLMClient", err)
	}
	limiter := llm.NewRateLimiter(cfg.Workers, 60)
	return llm.NewClient(keys, limiter, cfg.LLMModel), nil
}

func mustProfile(reg *profile.Registry, owner, repo, commit string) (*profile.Profile, error) {
	return reg.MustGet(owner, repo, commit)
}

func elapsedSince(start time.Time) string {
	return time.Since(start).Round(time.Millisecond).String()
}

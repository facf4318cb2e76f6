// Package container wraps the docker CLI for the Environment Builder and
// Validator: build an image from a recipe, run a throwaway instance of it,
// execute commands inside it, and tear it down. Grounded on the teacher's
// internal/tactile/persistent_docker.go (shell out to `docker`, build
// argument slices per concern, capture stdout/stderr into a structured
// result) generalized from the teacher's long-lived container pool down to
// this pipeline's one-shot "build once, run many fresh instances" model.
package container

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"swesmith/internal/errs"
	"swesmith/internal/logging"
)

// ExecResult is the outcome of running a command inside a container.
type ExecResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Combined string
	Duration time.Duration
	Killed   bool
}

// Executor shells out to the `docker` binary.
type Executor struct {
	dockerPath string
}

// NewExecutor locates the docker binary on PATH.
func NewExecutor() (*Executor, error) {
	path, err := exec.LookPath("docker")
	if err != nil {
		return nil, errs.New(errs.KindConfig, "container.NewExecutor", fmt.Errorf("docker not found on PATH: %w", err))
	}
	return &Executor{dockerPath: path}, nil
}

// ImageExists reports whether tag is already present locally.
func (e *Executor) ImageExists(ctx context.Context, tag string) bool {
	cmd := exec.CommandContext(ctx, e.dockerPath, "image", "inspect", tag)
	return cmd.Run() == nil
}

// BuildImage builds recipeText (a Dockerfile's contents) and tags the
// result as tag. The build context is a scratch directory containing only
// the generated Dockerfile, since container_recipe() is expected to fetch
// the pinned tree itself (from the mirror) rather than rely on local
// build-context files.
func (e *Executor) BuildImage(ctx context.Context, recipeText, tag string) error {
	dir, err := os.MkdirTemp("", "swesmith-build-*")
	if err != nil {
		return errs.New(errs.KindHarnessCrash, "container.BuildImage", err)
	}
	defer os.RemoveAll(dir)

	dockerfilePath := filepath.Join(dir, "Dockerfile")
	if err := os.WriteFile(dockerfilePath, []byte(recipeText), 0o644); err != nil {
		return errs.New(errs.KindHarnessCrash, "container.BuildImage", err)
	}

	logging.Get(logging.CategoryContainer).Info("building image %s", tag)
	cmd := exec.CommandContext(ctx, e.dockerPath, "build", "-f", dockerfilePath, "-t", tag, dir)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return errs.New(errs.KindHarnessCrash, "container.BuildImage", fmt.Errorf("docker build %s: %w: %s", tag, err, stderr.String()))
	}
	return nil
}

// CreateOptions configures a throwaway container instance.
type CreateOptions struct {
	Image       string
	WorkingDir  string
	MemoryMB    int
	NetworkMode string // "", "none", "bridge"
	Labels      map[string]string
}

// Run creates, starts, and returns the ID of a container that sleeps
// indefinitely so commands can be exec'd into it until Remove is called.
func (e *Executor) Run(ctx context.Context, opts CreateOptions) (containerID string, err error) {
	args := []string{"create"}
	if opts.WorkingDir != "" {
		args = append(args, "-w", opts.WorkingDir)
	}
	if opts.MemoryMB > 0 {
		args = append(args, "--memory", fmt.Sprintf("%dm", opts.MemoryMB))
	}
	if opts.NetworkMode != "" {
		args = append(args, "--network", opts.NetworkMode)
	}
	args = append(args, "--label", "swesmith.managed=true")
	for k, v := range opts.Labels {
		args = append(args, "--label", fmt.Sprintf("%s=%s", k, v))
	}
	args = append(args, opts.Image, "sleep", "infinity")

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, e.dockerPath, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", errs.New(errs.KindHarnessCrash, "container.Run", fmt.Errorf("docker create: %w: %s", err, stderr.String()))
	}
	id := strings.TrimSpace(stdout.String())

	startCmd := exec.CommandContext(ctx, e.dockerPath, "start", id)
	if out, err := startCmd.CombinedOutput(); err != nil {
		return "", errs.New(errs.KindHarnessCrash, "container.Run", fmt.Errorf("docker start: %w: %s", err, out))
	}
	logging.Get(logging.CategoryContainer).Info("started container %s from %s", id[:min(12, len(id))], opts.Image)
	return id, nil
}

// Exec runs a shell command inside containerID and captures its output.
// A timeout of zero means no deadline beyond ctx's own.
func (e *Executor) Exec(ctx context.Context, containerID, workingDir, command string, timeout time.Duration) (*ExecResult, error) {
	execCtx := ctx
	var cancel context.CancelFunc
	if timeout > 0 {
		execCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	args := []string{"exec"}
	if workingDir != "" {
		args = append(args, "-w", workingDir)
	}
	args = append(args, containerID, "sh", "-c", command)

	cmd := exec.CommandContext(execCtx, e.dockerPath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	runErr := cmd.Run()
	duration := time.Since(start)

	result := &ExecResult{
		ExitCode: -1,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: duration,
	}
	result.Combined = result.Stdout
	if result.Stderr != "" {
		if result.Combined != "" {
			result.Combined += "\n"
		}
		result.Combined += result.Stderr
	}

	if runErr == nil {
		result.ExitCode = 0
		return result, nil
	}
	if execCtx.Err() == context.DeadlineExceeded {
		result.Killed = true
		return result, errs.New(errs.KindHarnessCrash, "container.Exec", fmt.Errorf("command timed out after %s", timeout))
	}
	if exitErr, ok := runErr.(*exec.ExitError); ok {
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}
	return result, errs.New(errs.KindHarnessCrash, "container.Exec", runErr)
}

// Remove force-removes a container.
func (e *Executor) Remove(ctx context.Context, containerID string) error {
	cmd := exec.CommandContext(ctx, e.dockerPath, "rm", "-f", containerID)
	if out, err := cmd.CombinedOutput(); err != nil {
		return errs.New(errs.KindHarnessCrash, "container.Remove", fmt.Errorf("docker rm: %w: %s", err, out))
	}
	return nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

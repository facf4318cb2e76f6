// Package environment implements the Environment Builder (C3): creating or
// reusing a source mirror and a container image for a Repo Profile, then
// running fresh, isolated container instances against that image for the
// Validator and Distiller. Generalized from the teacher's
// internal/tactile/python.Environment lifecycle (Initialize/Setup/Teardown/
// Reset/CloneRepo/CheckoutCommit/ApplyPatch/RunTests) from a hardcoded
// venv+pytest flow to a Profile-driven recipe+parse_log flow, and from the
// teacher's git-clone-inside-container step to a host-side mirror (clone,
// build, push) the container image bakes in at build time.
package environment

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"swesmith/internal/cache"
	"swesmith/internal/container"
	"swesmith/internal/errs"
	"swesmith/internal/gitutil"
	"swesmith/internal/logging"
	"swesmith/internal/mangle"
	"swesmith/internal/profile"
)

// Builder creates mirrors and images idempotently per spec §4.1/§4.3.
type Builder struct {
	containers  *container.Executor
	cache       *cache.Cache
	mirrorsRoot string
	ghOrg       string
	dhOrg       string
	githubToken string
}

// NewBuilder returns a Builder. mirrorsRoot is the local working directory
// under which mirror clones are checked out before being pushed upstream.
func NewBuilder(containers *container.Executor, c *cache.Cache, mirrorsRoot, ghOrg, dhOrg, githubToken string) *Builder {
	return &Builder{containers: containers, cache: c, mirrorsRoot: mirrorsRoot, ghOrg: ghOrg, dhOrg: dhOrg, githubToken: githubToken}
}

// EnsureMirror clones p's pinned tree into a local working copy (creating
// the mirrorsRoot subdirectory if needed) and returns its path and resolved
// HEAD commit. Reuses an existing clone when present, since mirror creation
// is idempotent per spec §4.1.
func (b *Builder) EnsureMirror(ctx context.Context, p *profile.Profile) (dir, commit string, err error) {
	dir = filepath.Join(b.mirrorsRoot, p.Owner, p.Repo)
	if _, statErr := os.Stat(filepath.Join(dir, ".git")); statErr == nil {
		head, err := gitutil.HeadCommit(ctx, dir)
		if err == nil && head != "" {
			logging.Get(logging.CategoryEnvironment).Info("reusing existing mirror clone at %s", dir)
			return dir, head, nil
		}
	}

	httpsURL := fmt.Sprintf("https://github.com/%s/%s.git", p.Owner, p.Repo)
	if err := os.MkdirAll(filepath.Dir(dir), 0o755); err != nil {
		return "", "", errs.New(errs.KindHarnessCrash, "environment.EnsureMirror", err)
	}
	if err := gitutil.CloneMirror(ctx, httpsURL, b.githubToken, p.Commit, dir); err != nil {
		return "", "", errs.New(errs.KindTransport, "environment.EnsureMirror", err)
	}
	head, err := gitutil.HeadCommit(ctx, dir)
	if err != nil {
		return "", "", errs.New(errs.KindTransport, "environment.EnsureMirror", err)
	}

	mirrorRemote := fmt.Sprintf("https://github.com/%s/%s.git", b.ghOrg, p.MirrorName(b.ghOrg))
	if err := gitutil.PushBranch(ctx, dir, mirrorRemote, b.githubToken, "main"); err != nil {
		return "", "", errs.New(errs.KindTransport, "environment.EnsureMirror", err)
	}
	return dir, head, nil
}

// EnsureImage builds (or reuses, per the image-build digest cache)
// p.ImageName()'s container image from p.ContainerRecipe(), keyed by
// digest(recipe text + mirror commit SHA) per spec §4.1.
func (b *Builder) EnsureImage(ctx context.Context, p *profile.Profile, mirrorCommit string) (string, error) {
	imageName := p.ImageName(b.dhOrg)
	digest := cache.ImageDigest(p.ContainerRecipe(), mirrorCommit)

	if cached, ok, err := b.cache.HasImage(digest); err != nil {
		return "", errs.New(errs.KindHarnessCrash, "environment.EnsureImage", err)
	} else if ok {
		logging.Get(logging.CategoryEnvironment).Info("image build cache hit for %s", cached)
		return cached, nil
	}

	if err := b.containers.BuildImage(ctx, p.ContainerRecipe(), imageName); err != nil {
		return "", err
	}
	if err := b.cache.PutImage(digest, imageName); err != nil {
		return "", errs.New(errs.KindHarnessCrash, "environment.EnsureImage", err)
	}
	return imageName, nil
}

// Instance is a fresh, running container instance of an image, the unit of
// isolation for one gold or candidate validation task per spec §4.6's
// "Scheduling model."
type Instance struct {
	executor    *container.Executor
	profile     *profile.Profile
	containerID string
}

// StartInstance launches a fresh container from imageName.
func (b *Builder) StartInstance(ctx context.Context, p *profile.Profile, imageName string) (*Instance, error) {
	id, err := b.containers.Run(ctx, container.CreateOptions{
		Image:    imageName,
		MemoryMB: p.MaxContainerMemoryMB,
		Labels:   map[string]string{"swesmith.repo": p.Repo, "swesmith.owner": p.Owner},
	})
	if err != nil {
		return nil, err
	}
	return &Instance{executor: b.containers, profile: p, containerID: id}, nil
}

// ApplyPatch applies a unified diff to the instance's checked-out tree,
// matching the teacher's heredoc-write-then-git-apply sequence.
func (inst *Instance) ApplyPatch(ctx context.Context, diffText string) error {
	writeCmd := fmt.Sprintf("cat > /tmp/swesmith.patch << 'SWESMITH_PATCH_EOF'\n%s\nSWESMITH_PATCH_EOF", diffText)
	if result, err := inst.executor.Exec(ctx, inst.containerID, "", writeCmd, 30*time.Second); err != nil {
		return err
	} else if result.ExitCode != 0 {
		return errs.New(errs.KindApply, "environment.ApplyPatch", fmt.Errorf("failed to stage patch: %s", result.Combined))
	}

	result, err := inst.executor.Exec(ctx, inst.containerID, "", "git apply --whitespace=nowarn /tmp/swesmith.patch", time.Minute)
	if err != nil {
		return err
	}
	if result.ExitCode != 0 {
		return errs.New(errs.KindApply, "environment.ApplyPatch", fmt.Errorf("git apply failed: %s", result.Combined))
	}
	return nil
}

// RunTests executes the profile's effective test command and parses the
// resulting log into a test-outcome map.
func (inst *Instance) RunTests(ctx context.Context) (map[string]mangle.Outcome, string, error) {
	timeout := time.Duration(inst.profile.PerTestTimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	result, err := inst.executor.Exec(ctx, inst.containerID, "", inst.profile.EffectiveTestCmd(), timeout)
	if err != nil {
		return nil, "", err
	}
	outcomes, err := inst.profile.ParseLog(result.Combined)
	if err != nil {
		return nil, result.Combined, errs.New(errs.KindParse, "environment.RunTests", err)
	}
	return outcomes, result.Combined, nil
}

// Teardown removes the instance's container.
func (inst *Instance) Teardown(ctx context.Context) error {
	return inst.executor.Remove(ctx, inst.containerID)
}

// ContainerID exposes the backing container's ID for diagnostics.
func (inst *Instance) ContainerID() string { return inst.containerID }

package profile

import (
	"fmt"
	"runtime"
)

// shortCommit returns the 7-character short form of a commit SHA, or the
// full string if it is already shorter than that.
func shortCommit(commit string) string {
	if len(commit) <= 7 {
		return commit
	}
	return commit[:7]
}

// ImageName returns the deterministic container image name for this
// Profile: <dh_org>/swesmith.<arch>.<owner>_1776_<repo>.<commit_short>.
// The `1776` token is a literal separator chosen to avoid collisions with
// repo names that themselves contain underscores.
func (p *Profile) ImageName(dhOrg string) string {
	return fmt.Sprintf("%s/swesmith.%s.%s_1776_%s.%s",
		dhOrg, arch(), p.Owner, p.Repo, shortCommit(p.Commit))
}

// MirrorName returns the deterministic mirror repository name for this
// Profile: <gh_org>/<owner>__<repo>.<commit_short>.
func (p *Profile) MirrorName(ghOrg string) string {
	return fmt.Sprintf("%s/%s__%s.%s", ghOrg, p.Owner, p.Repo, shortCommit(p.Commit))
}

// arch reports the architecture token embedded in image names. Containers
// are built for the host's own architecture; cross-arch builds are outside
// this pipeline's scope.
func arch() string {
	switch runtime.GOARCH {
	case "arm64":
		return "arm64"
	default:
		return "amd64"
	}
}

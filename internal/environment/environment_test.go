package environment

import (
	"context"
	"path/filepath"
	"testing"

	"swesmith/internal/cache"
	"swesmith/internal/profile"
)

func TestEnsureImage_CacheHitSkipsBuild(t *testing.T) {
	c, err := cache.Open(filepath.Join(t.TempDir(), "swesmith.db"))
	if err != nil {
		t.Fatalf("cache.Open() error = %v", err)
	}
	defer c.Close()

	p := &profile.Profile{Owner: "acme", Repo: "widget", Commit: "deadbeefcafe", Language: profile.LanguageGo, TestCmd: "go test ./..."}

	digest := cache.ImageDigest(p.ContainerRecipe(), "deadbeefcafe")
	wantImage := p.ImageName("dhorg")
	if err := c.PutImage(digest, wantImage); err != nil {
		t.Fatalf("PutImage() error = %v", err)
	}

	// A nil *container.Executor is safe here because EnsureImage must
	// short-circuit on the cache hit before ever touching b.containers.
	b := NewBuilder(nil, c, t.TempDir(), "ghorg", "dhorg", "tok")
	got, err := b.EnsureImage(context.Background(), p, "deadbeefcafe")
	if err != nil {
		t.Fatalf("EnsureImage() error = %v", err)
	}
	if got != wantImage {
		t.Fatalf("EnsureImage() = %q, want %q", got, wantImage)
	}
}

package cache

import (
	"path/filepath"
	"testing"

	"swesmith/internal/mangle"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	path := filepath.Join(t.TempDir(), "swesmith.db")
	c, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestCache_GoldReport_MissReturnsNotOK(t *testing.T) {
	c := openTestCache(t)
	_, ok, err := c.GoldReport("dh/swesmith.amd64.owner_1776_repo.abc1234")
	if err != nil {
		t.Fatalf("GoldReport() error = %v", err)
	}
	if ok {
		t.Fatalf("expected cache miss")
	}
}

func TestCache_PutAndGetGoldReport(t *testing.T) {
	c := openTestCache(t)
	image := "dh/swesmith.amd64.owner_1776_repo.abc1234"
	report := map[string]mangle.Outcome{
		"pkg/foo_test.go::TestFoo": mangle.OutcomePass,
		"pkg/foo_test.go::TestBar": mangle.OutcomeFail,
	}
	if err := c.PutGoldReport(image, report); err != nil {
		t.Fatalf("PutGoldReport() error = %v", err)
	}
	got, ok, err := c.GoldReport(image)
	if err != nil {
		t.Fatalf("GoldReport() error = %v", err)
	}
	if !ok {
		t.Fatalf("expected cache hit")
	}
	if len(got) != len(report) {
		t.Fatalf("got %d entries, want %d", len(got), len(report))
	}
	for k, v := range report {
		if got[k] != v {
			t.Fatalf("got[%s] = %s, want %s", k, got[k], v)
		}
	}
}

func TestCache_PutGoldReport_OverwritesExisting(t *testing.T) {
	c := openTestCache(t)
	image := "dh/swesmith.amd64.owner_1776_repo.abc1234"
	if err := c.PutGoldReport(image, map[string]mangle.Outcome{"t": mangle.OutcomePass}); err != nil {
		t.Fatalf("PutGoldReport() error = %v", err)
	}
	if err := c.PutGoldReport(image, map[string]mangle.Outcome{"t": mangle.OutcomeFail}); err != nil {
		t.Fatalf("PutGoldReport() error = %v", err)
	}
	got, ok, err := c.GoldReport(image)
	if err != nil || !ok {
		t.Fatalf("GoldReport() = %v, %v, %v", got, ok, err)
	}
	if got["t"] != mangle.OutcomeFail {
		t.Fatalf("got[t] = %s, want fail", got["t"])
	}
}

func TestImageDigest_DeterministicAndDistinguishesInputs(t *testing.T) {
	d1 := ImageDigest("FROM golang:1.22", "abcdef1234567890")
	d2 := ImageDigest("FROM golang:1.22", "abcdef1234567890")
	if d1 != d2 {
		t.Fatalf("ImageDigest() not deterministic: %s vs %s", d1, d2)
	}
	d3 := ImageDigest("FROM golang:1.23", "abcdef1234567890")
	if d1 == d3 {
		t.Fatalf("ImageDigest() collided across different recipe text")
	}
	d4 := ImageDigest("FROM golang:1.22", "0000000000000000")
	if d1 == d4 {
		t.Fatalf("ImageDigest() collided across different commit SHAs")
	}
}

func TestCache_HasImage_MissThenPut(t *testing.T) {
	c := openTestCache(t)
	digest := ImageDigest("FROM golang:1.22", "abcdef1234567890")

	if _, ok, err := c.HasImage(digest); err != nil || ok {
		t.Fatalf("HasImage() = ok:%v err:%v, want miss", ok, err)
	}

	want := "dh/swesmith.amd64.owner_1776_repo.abc1234"
	if err := c.PutImage(digest, want); err != nil {
		t.Fatalf("PutImage() error = %v", err)
	}
	got, ok, err := c.HasImage(digest)
	if err != nil {
		t.Fatalf("HasImage() error = %v", err)
	}
	if !ok || got != want {
		t.Fatalf("HasImage() = %q, %v, want %q, true", got, ok, want)
	}
}

package container

import (
	"context"
	"testing"
	"time"
)

func newTestExecutor(t *testing.T) *Executor {
	t.Helper()
	e, err := NewExecutor()
	if err != nil {
		t.Skipf("docker not available: %v", err)
	}
	return e
}

func TestRunExecRemove_RoundTrip(t *testing.T) {
	e := newTestExecutor(t)
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if !e.ImageExists(ctx, "alpine:latest") {
		t.Skip("alpine:latest not pulled locally; skipping container round-trip")
	}

	id, err := e.Run(ctx, CreateOptions{Image: "alpine:latest"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	defer e.Remove(ctx, id)

	result, err := e.Exec(ctx, id, "", "echo hello", 10*time.Second)
	if err != nil {
		t.Fatalf("Exec() error = %v", err)
	}
	if result.ExitCode != 0 {
		t.Fatalf("ExitCode = %d, want 0", result.ExitCode)
	}
	if result.Stdout != "hello\n" {
		t.Fatalf("Stdout = %q, want %q", result.Stdout, "hello\n")
	}
}

func TestExec_NonZeroExitDoesNotError(t *testing.T) {
	e := newTestExecutor(t)
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if !e.ImageExists(ctx, "alpine:latest") {
		t.Skip("alpine:latest not pulled locally; skipping container round-trip")
	}

	id, err := e.Run(ctx, CreateOptions{Image: "alpine:latest"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	defer e.Remove(ctx, id)

	result, err := e.Exec(ctx, id, "", "exit 7", 10*time.Second)
	if err != nil {
		t.Fatalf("Exec() error = %v", err)
	}
	if result.ExitCode != 7 {
		t.Fatalf("ExitCode = %d, want 7", result.ExitCode)
	}
}

package workerpool

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestRun_ExecutesAllItems(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	var sum int64
	err := Run(context.Background(), items, 2, func(ctx context.Context, item int) error {
		atomic.AddInt64(&sum, int64(item))
		return nil
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if sum != 15 {
		t.Fatalf("sum = %d, want 15", sum)
	}
}

func TestRun_ReturnsFirstError(t *testing.T) {
	items := []int{1, 2, 3}
	wantErr := errors.New("boom")
	err := Run(context.Background(), items, 1, func(ctx context.Context, item int) error {
		if item == 2 {
			return wantErr
		}
		return nil
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("Run() error = %v, want %v", err, wantErr)
	}
}

func TestRunIndexed_WritesIntoPreSizedSlice(t *testing.T) {
	items := []string{"a", "b", "c"}
	results := make([]string, len(items))
	err := RunIndexed(context.Background(), items, 0, func(ctx context.Context, i int, item string) error {
		results[i] = item + item
		return nil
	})
	if err != nil {
		t.Fatalf("RunIndexed() error = %v", err)
	}
	want := []string{"aa", "bb", "cc"}
	for i := range want {
		if results[i] != want[i] {
			t.Fatalf("results = %v, want %v", results, want)
		}
	}
}

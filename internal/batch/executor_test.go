package batch

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakeRunner struct {
	fn func(ctx context.Context, target Target, req Request) Result
}

func (f *fakeRunner) Execute(ctx context.Context, target Target, req Request) Result {
	return f.fn(ctx, target, req)
}

func namedTargets(n int) []Target {
	targets := make([]Target, n)
	for i := range targets {
		targets[i] = Target{Name: fmt.Sprintf("hw1-student%02d", i), Dir: fmt.Sprintf("/tmp/hw1-student%02d", i)}
	}
	return targets
}

func okRunner() *fakeRunner {
	return &fakeRunner{fn: func(ctx context.Context, target Target, req Request) Result {
		return Result{Target: target.Name, Succeeded: true, Duration: time.Millisecond}
	}}
}

func TestNewExecutor_Validates(t *testing.T) {
	if _, err := NewExecutor(nil, 1); err == nil {
		t.Fatal("expected error for nil runner")
	}
	if _, err := NewExecutor(okRunner(), 0); err == nil {
		t.Fatal("expected error for zero concurrency")
	}
}

func TestExecutor_OneResultPerTarget_InResolutionOrder(t *testing.T) {
	// Stagger execution times so completion order differs from dispatch order.
	runner := &fakeRunner{fn: func(ctx context.Context, target Target, req Request) Result {
		var delay time.Duration
		if strings.HasSuffix(target.Name, "0") || strings.HasSuffix(target.Name, "3") {
			delay = 20 * time.Millisecond
		}
		time.Sleep(delay)
		return Result{Target: target.Name, Succeeded: true, Duration: delay}
	}}

	exec, err := NewExecutor(runner, 4)
	if err != nil {
		t.Fatalf("NewExecutor: %v", err)
	}

	targets := namedTargets(7)
	results := exec.Run(context.Background(), targets, CommandRequest("true"))

	if len(results) != len(targets) {
		t.Fatalf("want %d results, got %d", len(targets), len(results))
	}
	for i, res := range results {
		if res.Target != targets[i].Name {
			t.Fatalf("result %d: want target %s, got %s", i, targets[i].Name, res.Target)
		}
	}
}

func TestExecutor_IsolatesPanics(t *testing.T) {
	runner := &fakeRunner{fn: func(ctx context.Context, target Target, req Request) Result {
		if strings.HasSuffix(target.Name, "2") {
			panic("boom")
		}
		return Result{Target: target.Name, Succeeded: true, Stdout: "fine", Duration: time.Millisecond}
	}}

	exec, err := NewExecutor(runner, 5)
	if err != nil {
		t.Fatalf("NewExecutor: %v", err)
	}

	targets := namedTargets(5)
	results := exec.Run(context.Background(), targets, CommandRequest("true"))

	if len(results) != 5 {
		t.Fatalf("want 5 results, got %d", len(results))
	}
	for i, res := range results {
		if i == 2 {
			if res.Succeeded {
				t.Fatal("panicking target must fail")
			}
			if res.ErrorKind != ErrorInternal {
				t.Fatalf("want ErrorInternal, got %q", res.ErrorKind)
			}
			if !strings.Contains(res.Error, "panic") || !strings.Contains(res.Error, "boom") {
				t.Fatalf("want panic description, got %q", res.Error)
			}
			continue
		}
		if !res.Succeeded || res.Stdout != "fine" {
			t.Fatalf("target %d affected by another target's fault: %+v", i, res)
		}
	}
}

func TestExecutor_BoundsConcurrency(t *testing.T) {
	var inflight, peak atomic.Int64
	runner := &fakeRunner{fn: func(ctx context.Context, target Target, req Request) Result {
		cur := inflight.Add(1)
		for {
			old := peak.Load()
			if cur <= old || peak.CompareAndSwap(old, cur) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inflight.Add(-1)
		return Result{Target: target.Name, Succeeded: true}
	}}

	exec, err := NewExecutor(runner, 4)
	if err != nil {
		t.Fatalf("NewExecutor: %v", err)
	}

	results := exec.Run(context.Background(), namedTargets(20), CommandRequest("true"))
	if len(results) != 20 {
		t.Fatalf("want 20 results, got %d", len(results))
	}
	if got := peak.Load(); got > 4 {
		t.Fatalf("concurrency bound exceeded: %d in flight", got)
	}
}

func TestExecutor_CancellationYieldsAResultPerTarget(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var once sync.Once
	runner := &fakeRunner{fn: func(ctx context.Context, target Target, req Request) Result {
		// The first target cancels the batch mid-flight.
		once.Do(cancel)
		return Result{Target: target.Name, Succeeded: true, Duration: time.Millisecond}
	}}

	exec, err := NewExecutor(runner, 1)
	if err != nil {
		t.Fatalf("NewExecutor: %v", err)
	}

	targets := namedTargets(5)
	results := exec.Run(ctx, targets, CommandRequest("true"))

	if len(results) != len(targets) {
		t.Fatalf("want %d results after cancellation, got %d", len(targets), len(results))
	}
	if !results[0].Succeeded {
		t.Fatalf("completed-before-cancellation result must be preserved: %+v", results[0])
	}
	for i, res := range results[1:] {
		if res.Succeeded || res.ErrorKind != ErrorCanceled {
			t.Fatalf("unstarted target %d: want canceled result, got %+v", i+1, res)
		}
		if res.Target != targets[i+1].Name {
			t.Fatalf("canceled result %d carries wrong target %q", i+1, res.Target)
		}
	}
}

func TestInOrder_ReassemblesCompletionOrder(t *testing.T) {
	in := make(chan Result, 4)
	in <- Result{Target: "c", index: 2}
	in <- Result{Target: "a", index: 0}
	in <- Result{Target: "d", index: 3}
	in <- Result{Target: "b", index: 1}
	close(in)

	var got []string
	for res := range InOrder(in, 4) {
		got = append(got, res.Target)
	}

	want := []string{"a", "b", "c", "d"}
	if len(got) != len(want) {
		t.Fatalf("want %d results, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d: want %s, got %s", i, want[i], got[i])
		}
	}
}

func TestCollect_OrdersByIndex(t *testing.T) {
	in := make(chan Result, 3)
	in <- Result{Target: "b", index: 1}
	in <- Result{Target: "c", index: 2}
	in <- Result{Target: "a", index: 0}
	close(in)

	results := Collect(in, 3)
	for i, want := range []string{"a", "b", "c"} {
		if results[i].Target != want {
			t.Fatalf("position %d: want %s, got %s", i, want, results[i].Target)
		}
	}
}

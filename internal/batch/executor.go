package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// TargetRunner executes one request against one target. *Runner is the real
// implementation; tests substitute fakes.
type TargetRunner interface {
	Execute(ctx context.Context, target Target, req Request) Result
}

// Executor fans one request out across a batch of targets with bounded
// concurrency.
type Executor struct {
	runner      TargetRunner
	concurrency int
}

func NewExecutor(runner TargetRunner, concurrency int) (*Executor, error) {
	if runner == nil {
		return nil, errors.New("runner is nil")
	}
	if concurrency <= 0 {
		return nil, fmt.Errorf("concurrency must be >= 1, got %d", concurrency)
	}
	return &Executor{runner: runner, concurrency: concurrency}, nil
}

// Execute dispatches req against every target and streams results in
// completion order.
//
// Channel semantics:
//   - Exactly one Result is sent per target, always: a fault in one target's
//     execution becomes that target's failed Result, and targets that never
//     start because the context was canceled get a canceled Result.
//   - The channel is buffered to len(targets), so no result is lost even if
//     the consumer stops reading early.
//   - Completion order is unconstrained; use InOrder or Collect to recover
//     target resolution order.
func (e *Executor) Execute(ctx context.Context, targets []Target, req Request) <-chan Result {
	results := make(chan Result, len(targets))

	go func() {
		defer close(results)

		sem := semaphore.NewWeighted(int64(e.concurrency))
		var wg sync.WaitGroup

		for i, target := range targets {
			if err := sem.Acquire(ctx, 1); err != nil {
				// Canceled before this target started.
				res := Result{Target: target.Name, index: i}
				res.fail(ErrorCanceled, ctx.Err())
				results <- res
				continue
			}

			wg.Add(1)
			go func(i int, target Target) {
				defer wg.Done()
				defer sem.Release(1)
				results <- e.executeOne(ctx, i, target, req)
			}(i, target)
		}

		wg.Wait()
	}()

	return results
}

// Run is Execute plus collection: it blocks until every target has a result
// and returns them in resolution order.
func (e *Executor) Run(ctx context.Context, targets []Target, req Request) []Result {
	return Collect(e.Execute(ctx, targets, req), len(targets))
}

func (e *Executor) executeOne(ctx context.Context, i int, target Target, req Request) (res Result) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			res = Result{Target: target.Name, Duration: time.Since(start), index: i}
			res.fail(ErrorInternal, fmt.Errorf("panic: %v", r))
		}
	}()

	res = e.runner.Execute(ctx, target, req)
	res.index = i
	return res
}

// Collect drains a result stream and returns one slice in target resolution
// order. n must be the number of targets the stream was started with.
func Collect(results <-chan Result, n int) []Result {
	out := make([]Result, n)
	for res := range results {
		out[res.index] = res
	}
	return out
}

// InOrder converts a completion-order stream into a resolution-order stream.
// Results are held back until all of their predecessors have been forwarded,
// so a consumer sees targets in the same order a summary table would list
// them.
func InOrder(results <-chan Result, n int) <-chan Result {
	out := make(chan Result, n)

	go func() {
		defer close(out)

		pending := make(map[int]Result, n)
		next := 0
		for res := range results {
			pending[res.index] = res
			for {
				head, ok := pending[next]
				if !ok {
					break
				}
				delete(pending, next)
				out <- head
				next++
			}
		}
		// Flush anything stranded behind a gap (possible only if the input
		// stream was truncated).
		for ; next < n; next++ {
			if head, ok := pending[next]; ok {
				out <- head
			}
		}
	}()

	return out
}

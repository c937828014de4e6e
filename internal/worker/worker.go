package worker

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type Options struct {
	Workers int

	// Interval is the minimum spacing between item starts across all workers.
	// Set to <=0 to disable pacing.
	Interval time.Duration
}

// Result holds the output for one input item.
type Result[In any, Out any] struct {
	// Index is the position of Input in the slice passed to ProcessAll.
	Index  int
	Input  In
	Output Out
	Err    error
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = 4
	}
	return o
}

// ProcessAll runs the processor over all input items.
func ProcessAll[In any, Out any](
	ctx context.Context,
	items []In,
	processor func(context.Context, In) (Out, error),
	opts Options,
) ([]Result[In, Out], error) {
	return ProcessAllWithCallback(ctx, items, processor, nil, opts)
}

// ProcessAllWithCallback runs the processor over all input items and invokes onResult
// as each item completes. The callback receives completion-order results and is
// always called from a single goroutine.
//
// Cancelling ctx stops new items from starting. Items already in flight run to
// completion and are returned, in input order, together with ctx.Err().
func ProcessAllWithCallback[In any, Out any](
	ctx context.Context,
	items []In,
	processor func(context.Context, In) (Out, error),
	onResult func(Result[In, Out]) error,
	opts Options,
) ([]Result[In, Out], error) {
	opts = opts.withDefaults()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var limiter *rate.Limiter
	if opts.Interval > 0 {
		limiter = rate.NewLimiter(rate.Every(opts.Interval), 1)
	}

	out := make([]Result[In, Out], len(items))
	completed := make([]bool, len(items))

	type job struct {
		idx int
		in  In
	}

	jobs := make(chan job)
	done := make(chan Result[In, Out], opts.Workers)

	var wg sync.WaitGroup

	var mu sync.Mutex
	var firstErr error
	fail := func(err error) {
		if err == nil {
			return
		}
		mu.Lock()
		if firstErr == nil {
			firstErr = err
			cancel()
		}
		mu.Unlock()
	}

	workerFn := func() {
		defer wg.Done()
		for j := range jobs {
			if runCtx.Err() != nil {
				return
			}
			if limiter != nil {
				if err := limiter.Wait(runCtx); err != nil {
					return
				}
			}
			// Items see the caller's context rather than runCtx: a failing callback
			// stops new work without aborting items that already started.
			output, err := processor(ctx, j.in)
			done <- Result[In, Out]{Index: j.idx, Input: j.in, Output: output, Err: err}
		}
	}

	for i := 0; i < opts.Workers; i++ {
		wg.Add(1)
		go workerFn()
	}

	go func() {
		defer close(jobs)
		for i, item := range items {
			select {
			case jobs <- job{idx: i, in: item}:
			case <-runCtx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(done)
	}()

	for res := range done {
		out[res.Index] = res
		completed[res.Index] = true
		if onResult != nil {
			if err := onResult(res); err != nil {
				fail(err)
			}
		}
	}

	mu.Lock()
	err := firstErr
	mu.Unlock()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return compact(out, completed), err
	}
	return out, nil
}

func compact[In any, Out any](out []Result[In, Out], completed []bool) []Result[In, Out] {
	kept := make([]Result[In, Out], 0, len(out))
	for i, res := range out {
		if completed[i] {
			kept = append(kept, res)
		}
	}
	return kept
}
